// Copyright 2026 The Elnforge Authors
// SPDX-License-Identifier: Apache-2.0

// Package thumbnail decodes attachment images into small previews.
// Decoding runs on worker goroutines; the decoded pixels cross back to
// the interactive thread as values and are converted to terminal cell
// art there, where the terminal's color capabilities are known.
package thumbnail
