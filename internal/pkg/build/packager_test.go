// Copyright (c) 2019, Sylabs Inc. All rights reserved.
// This software is licensed under a 3-clause BSD license. Please consult the
// LICENSE.md file distributed with the sources of this project regarding your
// rights to use or distribute this software.

package build

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/sylabs/rfsbuild/internal/pkg/buildcfg"
	"github.com/sylabs/rfsbuild/internal/pkg/project"
	"github.com/sylabs/rfsbuild/internal/pkg/rfs"
	"gotest.tools/v3/assert"
	"gotest.tools/v3/fs"
)

const packagedProject = `project:
  name: demo
target:
  package:
    tar: {name: rfs.tgz, options: "--numeric-owner"}
    cpio: {name: rfs.cpio}
    squashfs: {name: rfs.squashfs}
`

type call struct {
	tree, dest string
	opts       []string
}

type fakeAssembler struct {
	calls []call
	err   error
}

func (a *fakeAssembler) Assemble(tree, dest string, opts []string) error {
	a.calls = append(a.calls, call{tree: tree, dest: dest, opts: opts})
	return a.err
}

type fakeImages struct {
	names []string
	err   error
}

func (f fakeImages) Build(cfg *project.Config, targetDir, tree string) ([]string, error) {
	return f.names, f.err
}

func newTestPackager(t *testing.T) (*Packager, map[Kind]*fakeAssembler) {
	fakes := map[Kind]*fakeAssembler{
		KindArchive:  {},
		KindCpio:     {},
		KindSquashfs: {},
	}
	p := &Packager{Images: NoImages{}, Assemblers: make(map[Kind]Assembler)}
	for k, a := range fakes {
		p.Assemblers[k] = a
	}
	return p, fakes
}

func setup(t *testing.T, doc string) (*project.Config, *rfs.Tree, string) {
	cfg, err := project.Parse([]byte(doc))
	assert.NilError(t, err)

	dir := fs.NewDir(t, "target")
	t.Cleanup(dir.Remove)
	tree, err := rfs.NewTree(dir.Path())
	assert.NilError(t, err)

	return cfg, tree, t.TempDir()
}

func TestBuildArtifacts(t *testing.T) {
	cfg, tree, out := setup(t, packagedProject)
	p, fakes := newTestPackager(t)

	artifacts, err := p.BuildArtifacts(cfg, out, tree)
	assert.NilError(t, err)
	assert.DeepEqual(t, artifacts, []Artifact{
		{Name: "rfs.tgz", Kind: KindArchive},
		{Name: "rfs.cpio", Kind: KindCpio},
		{Name: "rfs.squashfs", Kind: KindSquashfs},
	})

	assert.Equal(t, len(fakes[KindArchive].calls), 1)
	c := fakes[KindArchive].calls[0]
	assert.Equal(t, c.tree, tree.Root())
	assert.Equal(t, c.dest, filepath.Join(out, "rfs.tgz"))
	assert.DeepEqual(t, c.opts, []string{"--numeric-owner"})
}

func TestBuildArtifactsCpioFailure(t *testing.T) {
	cfg, tree, out := setup(t, packagedProject)
	p, fakes := newTestPackager(t)
	fakes[KindCpio].err = errors.New("disk full")

	artifacts, err := p.BuildArtifacts(cfg, out, tree)
	assert.NilError(t, err)
	assert.DeepEqual(t, artifacts, []Artifact{
		{Name: "rfs.tgz", Kind: KindArchive},
		{Name: "rfs.squashfs", Kind: KindSquashfs},
	})

	results, err := p.BuildResults(cfg, out, tree)
	assert.NilError(t, err)
	assert.Equal(t, len(results), 3)
	assert.ErrorContains(t, results[1].Err, "disk full")
	assert.Equal(t, results[1].Artifact.Kind, KindCpio)
}

func TestBuildArtifactsDiskImages(t *testing.T) {
	cfg, tree, out := setup(t, "project:\n  name: demo\n")
	p, fakes := newTestPackager(t)
	p.Images = fakeImages{names: []string{"sdcard.img"}}

	artifacts, err := p.BuildArtifacts(cfg, out, tree)
	assert.NilError(t, err)
	assert.DeepEqual(t, artifacts, []Artifact{{Name: "sdcard.img", Kind: KindDiskImage}})
	for _, a := range fakes {
		assert.Equal(t, len(a.calls), 0)
	}

	p.Images = fakeImages{err: errors.New("no partition table")}
	_, err = p.BuildArtifacts(cfg, out, tree)
	assert.ErrorContains(t, err, "while building disk images: no partition table")
}

func TestBuildArtifactsMissingName(t *testing.T) {
	cfg, tree, out := setup(t, "project:\n  name: demo\ntarget:\n  package:\n    cpio: {}\n    tar: {name: rfs.tgz}\n")
	p, fakes := newTestPackager(t)
	delete(p.Assemblers, KindArchive)

	results, err := p.BuildResults(cfg, out, tree)
	assert.NilError(t, err)
	assert.Equal(t, len(results), 2)
	assert.ErrorContains(t, results[0].Err, "no assembler for archive")
	assert.ErrorContains(t, results[1].Err, "no name configured for cpio")
	assert.Equal(t, len(fakes[KindCpio].calls), 0)
}

func TestNewPackager(t *testing.T) {
	p := NewPackager(rfs.ExecRunner{}, buildcfg.DefaultConfig())
	for _, k := range []Kind{KindArchive, KindCpio, KindSquashfs} {
		_, ok := p.Assemblers[k]
		assert.Assert(t, ok, k)
	}

	_, ok := p.Assemblers[KindDiskImage]
	assert.Assert(t, !ok)
	assert.Assert(t, p.Images != nil)
}
