// Copyright 2026 The Elnforge Authors
// SPDX-License-Identifier: Apache-2.0

// Package version reports the elnforge build version.
package version

import "runtime/debug"

// Version is the release version, overridden at link time via
//
//	-ldflags "-X github.com/elnforge/elnforge/lib/version.Version=v1.2.3"
//
// Development builds fall back to module build info.
var Version = ""

// String returns the best available version identifier: the linked
// release version, the module version from build info, or "devel".
func String() string {
	if Version != "" {
		return Version
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	return "devel"
}
