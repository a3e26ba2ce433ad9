// Copyright (c) 2019, Sylabs Inc. All rights reserved.
// This software is licensed under a 3-clause BSD license. Please consult the
// LICENSE.md file distributed with the sources of this project regarding your
// rights to use or distribute this software.

package project

import "strings"

// Mode holds how the target tree is reduced from the build environment.
type Mode struct {
	// Tighten restricts the target to files of the listed packages.
	Tighten bool
	// Diet does the same with the dependency closure of the list.
	Diet bool
	// Setsel purges every package not listed from the target.
	Setsel bool
}

// Reduced reports whether the target is built from a file manifest
// instead of a full copy.
func (m Mode) Reduced() bool {
	return m.Tighten || m.Diet
}

// PackageSpec describes one configured artifact.
type PackageSpec struct {
	Name    string
	Options []string
}

// Artifact kinds configurable under target/package.
const (
	PackageTar      = "tar"
	PackageCpio     = "cpio"
	PackageSquashfs = "squashfs"
)

// Name returns the project name.
func (c *Config) Name() string {
	return c.Text("project/name")
}

// Version returns the project version.
func (c *Config) Version() string {
	return c.Text("project/version")
}

// Arch returns the target architecture.
func (c *Config) Arch() string {
	return c.Text("project/buildimage/arch")
}

// Interpreter returns the foreign-architecture interpreter to inject
// into the tree, if any.
func (c *Config) Interpreter() string {
	return c.Text("project/buildimage/interpreter")
}

// PackageList returns the packages listed for the target.
func (c *Config) PackageList() []string {
	return c.Strings("target/pkg-list")
}

// Mode returns the target reduction mode.
func (c *Config) Mode() Mode {
	return Mode{
		Tighten: c.Flag("target/tighten"),
		Diet:    c.Flag("target/diet"),
		Setsel:  c.Flag("target/setsel"),
	}
}

// Package returns the configuration of the artifact of the given kind.
// Options are split on white space.
func (c *Config) Package(kind string) (PackageSpec, bool) {
	n, ok := c.Node.Node("target/package/" + kind)
	if !ok {
		return PackageSpec{}, false
	}
	return PackageSpec{
		Name:    n.Text("name"),
		Options: strings.Fields(n.Text("options")),
	}, true
}

// Fstab returns the configured fstab entries.
func (c *Config) Fstab() []FstabEntry {
	var entries []FstabEntry
	for _, n := range c.Children("target/fstab") {
		entries = append(entries, newFstabEntry(n))
	}
	return entries
}
