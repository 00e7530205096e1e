// Copyright 2026 The Elnforge Authors
// SPDX-License-Identifier: Apache-2.0

// Package rocrate builds RO-Crate 1.2 JSON-LD metadata documents
// describing an archived entry: its body text, attachments with
// content digests, structured fields, and the publishing organization.
package rocrate
