// Copyright 2026 The Elnforge Authors
// SPDX-License-Identifier: Apache-2.0

// Package extrafields handles structured metadata fields in the
// eLabFTW extra_fields format: importing definitions from JSON
// exports or YAML templates, validating values per field kind, and
// reconstructing the metadata document for embedding in archives.
package extrafields
