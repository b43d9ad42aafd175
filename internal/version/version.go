/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package version provides build version information.
package version

import "fmt"

// Version is the current version of smartlists.
// This is set at build time via ldflags:
//
//	-X github.com/friendsincode/smartlists/internal/version.Version=X.Y.Z
var Version = "0.4.0"

// Commit is the source revision, set at build time.
var Commit = "unknown"

// String returns the version with its commit.
func String() string {
	return fmt.Sprintf("%s (%s)", Version, Commit)
}
