// Copyright 2026 The Elnforge Authors
// SPDX-License-Identifier: Apache-2.0

// Package editorui is the terminal shell around the editor kernel. It
// translates keystrokes into kernel messages, dispatches the kernel's
// commands to the executor, and renders the resulting state with
// lipgloss. The one piece of processing it owns outright is thumbnail
// cell art, because only the shell knows the terminal's color profile.
package editorui
