// Copyright (c) 2018-2019, Sylabs Inc. All rights reserved.
// This software is licensed under a 3-clause BSD license. Please consult the
// LICENSE.md file distributed with the sources of this project regarding your
// rights to use or distribute this software.

package cli

import (
	"bytes"
	"io/ioutil"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sylabs/rfsbuild/internal/pkg/buildcfg"
	"github.com/sylabs/rfsbuild/internal/pkg/depcache"
	"github.com/sylabs/rfsbuild/internal/pkg/project"
	"github.com/sylabs/rfsbuild/internal/pkg/rfs"
	"github.com/sylabs/rfsbuild/pkg/cmdline"
	"github.com/sylabs/rfsbuild/pkg/sylog"
	"gotest.tools/v3/assert"
	"gotest.tools/v3/fs"
)

func TestSetSylogMessageLevel(t *testing.T) {
	defer sylog.SetLevel(sylog.GetLevel(), true)

	tests := []struct {
		name    string
		debug   bool
		verbose bool
		quiet   bool
		silent  bool
		level   int
	}{
		{name: "default", level: 1},
		{name: "debug wins", debug: true, verbose: true, quiet: true, level: 5},
		{name: "verbose", verbose: true, silent: true, level: 4},
		{name: "quiet", quiet: true, silent: true, level: -1},
		{name: "silent", silent: true, level: -3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			debug, verbose, quiet, silent = tt.debug, tt.verbose, tt.quiet, tt.silent
			defer func() { debug, verbose, quiet, silent = false, false, false, false }()

			setSylogMessageLevel()
			assert.Equal(t, sylog.GetLevel(), tt.level)
		})
	}
}

func TestTraverseParentsUses(t *testing.T) {
	assert.Equal(t, TraverseParentsUses(ChrootCmd), "rfsbuild [global options...] "+ChrootCmd.Use+" ")
}

func TestVersionWithConfig(t *testing.T) {
	defer func() { hostConfig = buildcfg.DefaultConfig() }()

	dir := fs.NewDir(t, "rfsbuild-conf",
		fs.WithFile("rfsbuild.toml", "mksquashfs-path = \"/opt/squashfs/bin\"\n"),
	)
	defer dir.Remove()
	t.Setenv("RFSBUILD_CONFIG", dir.Join("rfsbuild.toml"))

	var out bytes.Buffer
	rfsbuildCmd.PersistentPreRunE = persistentPreRunE
	rfsbuildCmd.SetOut(&out)
	rfsbuildCmd.SetArgs([]string{"version"})
	defer rfsbuildCmd.SetArgs(nil)

	_, err := rfsbuildCmd.ExecuteC()
	assert.NilError(t, err)
	assert.Equal(t, out.String(), buildcfg.PackageVersion+"\n")
	assert.Equal(t, hostConfig.MksquashfsPath, "/opt/squashfs/bin")
}

func TestRunInChrootWithoutCommand(t *testing.T) {
	tree, err := rfs.NewTree(t.TempDir())
	assert.NilError(t, err)

	err = runInChroot(tree, rfs.Options{}, rfs.ExecRunner{}, nil)
	_, ok := err.(cmdline.CommandError)
	assert.Assert(t, ok)
}

func TestExtractTargetErrors(t *testing.T) {
	cfg, err := project.Parse([]byte("project:\n  name: demo\ntarget:\n  diet: true\n  pkg-list: [busybox]\n"))
	assert.NilError(t, err)

	err = extractTarget(cfg, filepath.Join(t.TempDir(), "missing"), t.TempDir())
	assert.ErrorContains(t, err, "is not a directory")

	err = extractTarget(cfg, t.TempDir(), t.TempDir())
	assert.ErrorContains(t, err, "while loading dependency cache")
}

const buildProject = `project:
  name: demo
  version: "2.1"
target:
  tighten: true
  pkg-list: [pkgA]
  fstab:
    - {label: rfs, mountpoint: /, fs: {type: ext4}}
  package:
    cpio: {name: rfs.cpio}
`

func TestBuildTarget(t *testing.T) {
	cfg, err := project.Parse([]byte(buildProject))
	assert.NilError(t, err)

	src := fs.NewDir(t, "buildenv",
		fs.WithDir("var", fs.WithDir("lib", fs.WithDir("dpkg", fs.WithDir("info",
			fs.WithFile("pkgA.list", "/.\n/bin\n/bin/a\n/usr\n/usr/share\n/usr/share/doc\n/usr/share/doc/pkgA\n/usr/share/doc/pkgA/copyright\n"),
		)))),
		fs.WithDir("bin", fs.WithFile("a", "#!/bin/sh\n", fs.WithMode(0755)), fs.WithFile("b", "")),
		fs.WithDir("usr", fs.WithDir("share", fs.WithDir("doc",
			fs.WithDir("pkgA", fs.WithFile("copyright", "License: MIT\n")),
			fs.WithDir("pkgB", fs.WithFile("copyright", "License: BSD\n")),
		))),
	)
	defer src.Remove()
	dst := filepath.Join(t.TempDir(), "target")
	out := filepath.Join(t.TempDir(), "out")

	var w bytes.Buffer
	assert.NilError(t, buildTarget(&w, cfg, src.Path(), dst, out))
	assert.Equal(t, w.String(), "cpio\trfs.cpio\n")

	b, err := ioutil.ReadFile(filepath.Join(dst, "etc/fstab"))
	assert.NilError(t, err)
	assert.Equal(t, string(b), "LABEL=rfs / ext4 defaults 0 1\n")

	b, err = ioutil.ReadFile(filepath.Join(dst, "etc/rfsbuild_version"))
	assert.NilError(t, err)
	assert.Assert(t, strings.HasPrefix(string(b), "demo 2.1\nthis RFS was generated by rfsbuild "+buildcfg.PackageVersion+"\n"))

	b, err = ioutil.ReadFile(filepath.Join(out, LicenseText))
	assert.NilError(t, err)
	assert.Assert(t, strings.HasPrefix(string(b), "pkgA:\n"))
	assert.Assert(t, !strings.Contains(string(b), "pkgB"))

	for _, name := range []string{LicenseManifest, "rfs.cpio"} {
		_, err := ioutil.ReadFile(filepath.Join(out, name))
		assert.NilError(t, err)
	}
	_, err = ioutil.ReadFile(filepath.Join(dst, "bin/b"))
	assert.Assert(t, err != nil, "unlisted file copied")
}

func TestMissingPackages(t *testing.T) {
	status, err := depcache.ParseStatus(strings.NewReader(`Package: busybox
Status: install ok installed
Architecture: armhf

Package: dropbear
Status: deinstall ok config-files
Architecture: armhf
`))
	assert.NilError(t, err)

	missing := missingPackages(status, []string{"busybox:armhf", "dropbear", "nano"})
	assert.DeepEqual(t, missing, []string{"dropbear", "nano"})
	assert.Assert(t, missingPackages(status, []string{"busybox"}) == nil)
}
