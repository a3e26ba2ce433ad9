// Copyright (c) 2019-2021, Sylabs Inc. All rights reserved.
// This software is licensed under a 3-clause BSD license. Please consult the
// LICENSE.md file distributed with the sources of this project regarding your
// rights to use or distribute this software.

package buildcfg

import (
	"os"
	"path/filepath"
	"testing"

	"gotest.tools/v3/assert"
	"gotest.tools/v3/fs"
)

func TestLoadConfig(t *testing.T) {
	dir := fs.NewDir(t, "buildcfg",
		fs.WithFile("partial.toml", `mksquashfs-path = "/opt/squashfs/bin"
interpreter-dirs = ["/opt/qemu"]
`),
		fs.WithFile("broken.toml", "interpreter-dirs = [\n"),
	)
	defer dir.Remove()

	t.Run("missing", func(t *testing.T) {
		c, err := LoadConfig(dir.Join("missing.toml"))
		assert.NilError(t, err)
		assert.DeepEqual(t, c, DefaultConfig())
	})

	t.Run("partial", func(t *testing.T) {
		c, err := LoadConfig(dir.Join("partial.toml"))
		assert.NilError(t, err)
		assert.Equal(t, c.MksquashfsPath, "/opt/squashfs/bin")
		assert.DeepEqual(t, c.InterpreterDirs, []string{"/opt/qemu"})
		assert.Equal(t, c.HostResolvConf, "/etc/resolv.conf")
	})

	t.Run("broken", func(t *testing.T) {
		_, err := LoadConfig(dir.Join("broken.toml"))
		assert.ErrorContains(t, err, "while parsing")
	})
}

func TestShippedConfig(t *testing.T) {
	c, err := LoadConfig(filepath.Join("..", "..", "..", "etc", "rfsbuild.toml"))
	assert.NilError(t, err)
	assert.DeepEqual(t, c, DefaultConfig())
}

func TestPutConfigRoundTrip(t *testing.T) {
	dir := fs.NewDir(t, "buildcfg")
	defer dir.Remove()

	want := DefaultConfig()
	want.MksquashfsPath = "/usr/local/bin/mksquashfs"

	path := dir.Join("rfsbuild.toml")
	assert.NilError(t, PutConfig(want, path))

	got, err := LoadConfig(path)
	assert.NilError(t, err)
	assert.DeepEqual(t, got, want)
}

func TestInterpreter(t *testing.T) {
	dir := fs.NewDir(t, "qemu", fs.WithFile("qemu-fake-static", "", fs.WithMode(0755)))
	defer dir.Remove()

	c := Config{InterpreterDirs: []string{filepath.Join(dir.Path(), "nope"), dir.Path()}}

	p, err := c.Interpreter("qemu-fake-static")
	assert.NilError(t, err)
	assert.Equal(t, p, dir.Join("qemu-fake-static"))

	_, err = c.Interpreter("qemu-does-not-exist-static")
	assert.ErrorContains(t, err, "not found")
}

func TestMksquashfs(t *testing.T) {
	dir := fs.NewDir(t, "squashfs", fs.WithFile("mksquashfs", "#!/bin/sh\n", fs.WithMode(0755)))
	defer dir.Remove()

	for _, p := range []string{dir.Path(), dir.Join("mksquashfs")} {
		c := Config{MksquashfsPath: p}
		got, err := c.Mksquashfs()
		assert.NilError(t, err)
		assert.Equal(t, got, dir.Join("mksquashfs"))
	}

	c := Config{MksquashfsPath: filepath.Join(os.TempDir(), "no-such-dir-rfsbuild")}
	_, err := c.Mksquashfs()
	assert.Assert(t, err != nil)
}
