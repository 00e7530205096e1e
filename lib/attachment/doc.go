// Copyright 2026 The Elnforge Authors
// SPDX-License-Identifier: Apache-2.0

// Package attachment models files bound into an entry package and the
// registry that keeps them unique.
//
// The registry enforces two invariants the archive format depends on:
// no two attachments share a sanitized filename, and no two
// attachments with real content hashes carry identical bytes. Both are
// checked at registration time so the packaging engine can treat its
// input as pre-validated, with AssertUniqueNames as a final gate on
// the detached save payload.
package attachment
