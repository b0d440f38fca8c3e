// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package version

import "runtime/debug"

// Version is overridden at build time with -ldflags "-X .../internal/version.Version=..."
var Version = "0.1.0-dev"

// Revision returns the VCS revision stamped by the Go toolchain, "unknown" when absent.
func Revision() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "unknown"
	}

	for _, s := range info.Settings {
		if s.Key == "vcs.revision" {
			return s.Value
		}
	}
	return "unknown"
}
