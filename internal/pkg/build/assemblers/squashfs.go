// Copyright (c) 2019, Sylabs Inc. All rights reserved.
// This software is licensed under a 3-clause BSD license. Please consult the
// LICENSE.md file distributed with the sources of this project regarding your
// rights to use or distribute this software.

package assemblers

import (
	"github.com/sylabs/rfsbuild/pkg/image/packer"
)

// SquashfsAssembler creates a squashfs image of a tree.
type SquashfsAssembler struct {
	Packer *packer.Squashfs
}

// Assemble creates dest from tree, opts are passed to mksquashfs.
func (a *SquashfsAssembler) Assemble(tree, dest string, opts []string) error {
	return a.Packer.Create([]string{tree}, dest, opts)
}
