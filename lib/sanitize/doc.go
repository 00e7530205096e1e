// Copyright 2026 The Elnforge Authors
// SPDX-License-Identifier: Apache-2.0

// Package sanitize derives filesystem- and archive-safe names.
//
// Every name that ends up inside an archive — attachment filenames,
// the root folder derived from the output path, the suggested archive
// filename — passes through Component, so one deterministic, idempotent
// mapping governs all path components and collision detection can
// compare sanitized forms directly.
package sanitize
