// Copyright 2026 The Elnforge Authors
// SPDX-License-Identifier: Apache-2.0

// Package kernel is the pure core of the editor: a single State value,
// a sealed Message set, and an Update function that maps (state,
// message) to commands. All I/O lives behind Commands executed by the
// executor package; Update itself never blocks, which is what makes
// the editor testable without a terminal or a filesystem.
package kernel
