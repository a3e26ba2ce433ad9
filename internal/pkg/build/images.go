// Copyright (c) 2019, Sylabs Inc. All rights reserved.
// This software is licensed under a 3-clause BSD license. Please consult the
// LICENSE.md file distributed with the sources of this project regarding your
// rights to use or distribute this software.

package build

import (
	"github.com/sylabs/rfsbuild/internal/pkg/project"
	"github.com/sylabs/rfsbuild/pkg/sylog"
)

// ImageBuilder builds the partitioned disk images of a project from a
// populated tree and returns the names of the images written to
// targetDir.
type ImageBuilder interface {
	Build(cfg *project.Config, targetDir, tree string) ([]string, error)
}

// NoImages is an ImageBuilder producing no disk image.
type NoImages struct{}

// Build implements ImageBuilder.
func (NoImages) Build(cfg *project.Config, targetDir, tree string) ([]string, error) {
	sylog.Verbosef("No disk image builder configured for %s", cfg.Name())
	return nil, nil
}
