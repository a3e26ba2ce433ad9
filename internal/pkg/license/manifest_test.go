// Copyright (c) 2019, Sylabs Inc. All rights reserved.
// This software is licensed under a 3-clause BSD license. Please consult the
// LICENSE.md file distributed with the sources of this project regarding your
// rights to use or distribute this software.

package license

import (
	"bytes"
	"testing"

	"gotest.tools/v3/assert"
	"gotest.tools/v3/fs"
	"gotest.tools/v3/golden"
)

func TestManifestWrite(t *testing.T) {
	dir := fs.NewDir(t, "license")
	defer dir.Remove()

	m := NewManifest()
	m.Add("busybox", "GPL-2 <b>")
	m.Add("zlib1g", "Zlib, café")

	path := dir.Join("licence.json")
	assert.NilError(t, m.Write(path))

	got, err := Read(path)
	assert.NilError(t, err)
	assert.DeepEqual(t, got, m)

	var b bytes.Buffer
	assert.NilError(t, m.Encode(&b))
	golden.Assert(t, b.String(), "manifest.golden")
}

func TestReadErrors(t *testing.T) {
	dir := fs.NewDir(t, "license", fs.WithFile("bad.json", "{"))
	defer dir.Remove()

	_, err := Read(dir.Join("missing.json"))
	assert.ErrorContains(t, err, "failed to read")

	_, err = Read(dir.Join("bad.json"))
	assert.ErrorContains(t, err, "failed to decode")
}
