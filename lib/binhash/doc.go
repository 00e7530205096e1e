// Copyright 2026 The Elnforge Authors
// SPDX-License-Identifier: Apache-2.0

// Package binhash computes content hashes for attachment files.
//
// The SHA256 hex digest is the stable content identity used for
// duplicate detection at registration time and for the integrity gate
// at save time (an attachment whose bytes changed between registration
// and save fails the save). Digests are lowercase hex, matching the
// "sha256" field of the archive metadata document.
package binhash
