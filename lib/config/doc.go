// Copyright 2026 The Elnforge Authors
// SPDX-License-Identifier: Apache-2.0

// Package config loads elnforge configuration.
//
// Configuration comes from a single JSONC file named by either the
// ELNFORGE_CONFIG environment variable or the --config flag. There is
// no search path and no merging of multiple sources; when no file is
// named, built-in defaults apply and the editor runs unconfigured.
package config
