// Copyright (c) 2018-2019, Sylabs Inc. All rights reserved.
// This software is licensed under a 3-clause BSD license. Please consult the
// LICENSE.md file distributed with the sources of this project regarding your
// rights to use or distribute this software.

package build

import "github.com/sylabs/rfsbuild/internal/pkg/project"

// Kind identifies the type of an artifact.
type Kind string

// Artifact kinds.
const (
	KindArchive   Kind = "archive"
	KindCpio      Kind = "cpio"
	KindSquashfs  Kind = "squashfs"
	KindDiskImage Kind = "diskImage"
)

// Assembler is responsible for assembling an artifact from a populated
// tree. dest is the path of the artifact and opts are the extra options
// configured for it.
type Assembler interface {
	Assemble(tree, dest string, opts []string) error
}

// optionalStep binds a target/package entry to the kind of artifact it
// produces, in build order.
type optionalStep struct {
	pkg  string
	kind Kind
}

var optionalSteps = []optionalStep{
	{project.PackageTar, KindArchive},
	{project.PackageCpio, KindCpio},
	{project.PackageSquashfs, KindSquashfs},
}
