// Copyright (c) 2019, Sylabs Inc. All rights reserved.
// This software is licensed under a 3-clause BSD license. Please consult the
// LICENSE.md file distributed with the sources of this project regarding your
// rights to use or distribute this software.

// Package buildcfg holds values fixed at build time and the host
// configuration file of rfsbuild.
package buildcfg

// Overridable with -ldflags "-X github.com/sylabs/rfsbuild/internal/pkg/buildcfg.PackageVersion=..."
var (
	PackageName    = "rfsbuild"
	PackageVersion = "0.4.0"
	SysConfDir     = "/etc/rfsbuild"
	DataDir        = "/usr/share/rfsbuild"
)

// ConfFile returns the path of the default host configuration file.
func ConfFile() string {
	return SysConfDir + "/rfsbuild.toml"
}
