// Copyright 2026 The Elnforge Authors
// SPDX-License-Identifier: Apache-2.0

// Package executor runs kernel commands off the interactive thread.
// It owns all the blocking work the kernel is forbidden to do: hashing
// candidate files, decoding thumbnails, reading metadata templates,
// driving the file chooser, and building archives.
package executor
