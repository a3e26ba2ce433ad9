// Copyright (c) 2019, Sylabs Inc. All rights reserved.
// This software is licensed under a 3-clause BSD license. Please consult the
// LICENSE.md file distributed with the sources of this project regarding your
// rights to use or distribute this software.

// Package build produces the distributable artifacts of a populated
// root filesystem tree.
package build

import (
	"fmt"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/sylabs/rfsbuild/internal/pkg/build/assemblers"
	"github.com/sylabs/rfsbuild/internal/pkg/buildcfg"
	"github.com/sylabs/rfsbuild/internal/pkg/project"
	"github.com/sylabs/rfsbuild/internal/pkg/rfs"
	"github.com/sylabs/rfsbuild/pkg/image/packer"
	"github.com/sylabs/rfsbuild/pkg/sylog"
)

// Artifact is a file produced under the target directory.
type Artifact struct {
	Name string
	Kind Kind
}

// Result is the outcome of one artifact step, Err is nil on success.
type Result struct {
	Artifact Artifact
	Err      error
}

// Packager builds the disk images of a project and then the optional
// archive, cpio and squashfs artifacts configured under target/package.
type Packager struct {
	Images     ImageBuilder
	Assemblers map[Kind]Assembler
}

// NewPackager returns a packager running external tools with runner and
// locating them with the host configuration.
func NewPackager(runner rfs.Runner, host buildcfg.Config) *Packager {
	s := packer.NewSquashfs(host)

	return &Packager{
		Images: NoImages{},
		Assemblers: map[Kind]Assembler{
			KindArchive:  &assemblers.TarAssembler{Runner: runner},
			KindCpio:     &assemblers.CpioAssembler{},
			KindSquashfs: &assemblers.SquashfsAssembler{Packer: s},
		},
	}
}

// BuildResults runs every configured step and returns the outcome of
// each of them in build order. Only a failure of the disk image builder
// is returned as an error, a failing optional step is recorded in its
// Result and logged.
func (p *Packager) BuildResults(cfg *project.Config, targetDir string, tree *rfs.Tree) ([]Result, error) {
	var results []Result

	images := p.Images
	if images == nil {
		images = NoImages{}
	}
	names, err := images.Build(cfg, targetDir, tree.Root())
	if err != nil {
		return nil, errors.Wrap(err, "while building disk images")
	}
	for _, n := range names {
		results = append(results, Result{Artifact: Artifact{Name: n, Kind: KindDiskImage}})
	}

	for _, step := range optionalSteps {
		spec, ok := cfg.Package(step.pkg)
		if !ok {
			continue
		}
		r := Result{Artifact: Artifact{Name: spec.Name, Kind: step.kind}}

		if a, ok := p.Assemblers[step.kind]; !ok {
			r.Err = fmt.Errorf("no assembler for %s artifacts", step.kind)
		} else if spec.Name == "" {
			r.Err = fmt.Errorf("no name configured for %s artifact", step.kind)
		} else {
			sylog.Infof("Creating %s %s", step.kind, spec.Name)
			r.Err = a.Assemble(tree.Root(), filepath.Join(targetDir, spec.Name), spec.Options)
		}

		if r.Err != nil {
			sylog.Errorf("Failed to create %s %s: %s", step.kind, spec.Name, r.Err)
		}
		results = append(results, r)
	}
	return results, nil
}

// BuildArtifacts is BuildResults keeping only the artifacts that were
// successfully produced.
func (p *Packager) BuildArtifacts(cfg *project.Config, targetDir string, tree *rfs.Tree) ([]Artifact, error) {
	results, err := p.BuildResults(cfg, targetDir, tree)
	if err != nil {
		return nil, err
	}

	artifacts := make([]Artifact, 0, len(results))
	for _, r := range results {
		if r.Err == nil {
			artifacts = append(artifacts, r.Artifact)
		}
	}
	return artifacts, nil
}
