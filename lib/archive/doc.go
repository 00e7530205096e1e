// Copyright 2026 The Elnforge Authors
// SPDX-License-Identifier: Apache-2.0

// Package archive builds .eln packages: ZIP archives holding the entry
// body, attachments under sanitized names, and RO-Crate metadata
// describing all of it. Builds are pure functions of a detached
// Request, so they run on worker goroutines without touching editor
// state.
package archive
