// Copyright (c) 2019, Sylabs Inc. All rights reserved.
// This software is licensed under a 3-clause BSD license. Please consult the
// LICENSE.md file distributed with the sources of this project regarding your
// rights to use or distribute this software.

package assemblers

import (
	"github.com/sylabs/rfsbuild/internal/pkg/rfs"
)

// TarAssembler creates a gzip compressed tar archive with the host tar.
type TarAssembler struct {
	Runner rfs.Runner
}

// Assemble archives the content of tree to dest, opts are passed to tar
// before the archived path.
func (a *TarAssembler) Assemble(tree, dest string, opts []string) error {
	args := []string{"czf", dest, "-C", tree}
	args = append(args, opts...)
	args = append(args, ".")

	return a.Runner.Run("tar", args...)
}
