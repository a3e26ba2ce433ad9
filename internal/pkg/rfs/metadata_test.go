// Copyright (c) 2019, Sylabs Inc. All rights reserved.
// This software is licensed under a 3-clause BSD license. Please consult the
// LICENSE.md file distributed with the sources of this project regarding your
// rights to use or distribute this software.

package rfs

import (
	"bytes"
	"errors"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	uuid "github.com/satori/go.uuid"
	"github.com/sylabs/rfsbuild/internal/pkg/license"
	"github.com/sylabs/rfsbuild/internal/pkg/project"
	"github.com/sylabs/rfsbuild/internal/pkg/test"
	"golang.org/x/sys/unix"
	"gotest.tools/v3/assert"
	"gotest.tools/v3/fs"
	"gotest.tools/v3/golden"
)

const stampProject = `project:
  name: demo
  version: "1.0"
target:
  fstab:
    - label: rfs
      mountpoint: /
      fs: {type: ext4}
    - source: proc
      mountpoint: /proc
      fs: {type: proc}
`

func newTestWriter(t *testing.T, tree *Tree) *MetadataWriter {
	t.Helper()

	w, err := NewMetadataWriter(tree, "0.4.0")
	assert.NilError(t, err)
	w.now = func() time.Time { return test.FixedTime }
	w.buildID = func() uuid.UUID {
		return uuid.FromStringOrNil("6ba7b810-9dad-11d1-80b4-00c04fd430c8")
	}
	return w
}

func TestNewMetadataWriter(t *testing.T) {
	tree := newTestTree(t, "target")

	tests := []struct {
		version string
		wantErr bool
	}{
		{"0.4.0", false},
		{"v1.2.3-rc.1", false},
		{"1.2", true},
		{"", true},
	}
	for _, tt := range tests {
		_, err := NewMetadataWriter(tree, tt.version)
		if tt.wantErr {
			assert.ErrorContains(t, err, "invalid tool version")
		} else {
			assert.NilError(t, err)
		}
	}
}

func TestWriteVersionStamp(t *testing.T) {
	cfg, err := project.Parse([]byte(stampProject))
	assert.NilError(t, err)

	tree := newTestTree(t, "target")
	w := newTestWriter(t, tree)

	// stamping again replaces the read-only project copy
	for i := 0; i < 2; i++ {
		assert.NilError(t, w.WriteVersionStamp(cfg))
	}

	b, err := ioutil.ReadFile(tree.Path(VersionFile))
	assert.NilError(t, err)
	assert.Equal(t, string(b), "demo 1.0\n"+
		"this RFS was generated by rfsbuild 0.4.0\n"+
		"build id: 6ba7b810-9dad-11d1-80b4-00c04fd430c8\n"+
		"Tue Mar 12 10:30:00 2019\n")

	b, err = ioutil.ReadFile(tree.Path(UpdatedVersionFile))
	assert.NilError(t, err)
	assert.Equal(t, string(b), "1.0")

	b, err = ioutil.ReadFile(tree.Path(BaseProjectFile))
	assert.NilError(t, err)
	assert.Equal(t, string(b), stampProject)

	fi, err := tree.Lstat(BaseProjectFile)
	assert.NilError(t, err)
	assert.Equal(t, fi.Mode().Perm().String(), "-r--------")
}

func TestWriteLicenseReport(t *testing.T) {
	tree := newTestTree(t, "target",
		fs.WithDir("usr", fs.WithDir("share", fs.WithDir("doc",
			fs.WithDir("busybox", fs.WithFile("copyright", "Copyright: 1999-2005 Erik Andersen\nLicense: GPL-2\n")),
			fs.WithDir("libfoo", fs.WithFile("copyright", "Copyright: 2003 Fran\xe7ois\n")),
			fs.WithSymlink("busybox-static", "busybox"),
			fs.WithFile("README", "not a package\n"),
		))),
	)
	w := newTestWriter(t, tree)

	var report bytes.Buffer
	manifestPath := filepath.Join(t.TempDir(), "licence.json")
	assert.NilError(t, w.WriteLicenseReport(&report, manifestPath))
	golden.Assert(t, report.String(), "licence.golden")

	m, err := license.Read(manifestPath)
	assert.NilError(t, err)
	assert.DeepEqual(t, m.Licenses, []license.Entry{
		{Package: "busybox", Text: "Copyright: 1999-2005 Erik Andersen\nLicense: GPL-2\n"},
		{Package: "libfoo", Text: "Copyright: 2003 François\n"},
	})
}

func TestWriteLicenseReportMissingCopyright(t *testing.T) {
	tree := newTestTree(t, "target",
		fs.WithDir("usr", fs.WithDir("share", fs.WithDir("doc",
			fs.WithDir("nodoc"),
		))),
	)
	w := newTestWriter(t, tree)

	var report bytes.Buffer
	assert.NilError(t, w.WriteLicenseReport(&report, ""))

	path := tree.Path("usr/share/doc/nodoc/copyright")
	want := "Error while processing license file " + path + ": 'No such file or directory'"
	assert.Equal(t, report.String(), "nodoc:\n"+strings.Repeat("=", 80)+"\n"+want+"\n\n")
}

func TestErrorText(t *testing.T) {
	tests := []struct {
		err      error
		expected string
	}{
		{err: &os.PathError{Op: "open", Path: "/doc/copyright", Err: unix.EACCES}, expected: "Permission denied"},
		{err: unix.EISDIR, expected: "Is a directory"},
		{err: errors.New("invalid byte sequence"), expected: "invalid byte sequence"},
	}
	for _, tt := range tests {
		assert.Equal(t, errorText(tt.err), tt.expected)
	}
}

func TestWriteLicenseReportNoDocs(t *testing.T) {
	w := newTestWriter(t, newTestTree(t, "target"))

	manifestPath := filepath.Join(t.TempDir(), "licence.json")
	assert.NilError(t, w.WriteLicenseReport(nil, manifestPath))

	m, err := license.Read(manifestPath)
	assert.NilError(t, err)
	assert.Equal(t, len(m.Licenses), 0)
}

func TestWriteFstab(t *testing.T) {
	tree := newTestTree(t, "target")
	w := newTestWriter(t, tree)

	cfg, err := project.Parse([]byte(stampProject))
	assert.NilError(t, err)
	assert.NilError(t, w.WriteFstab(cfg))

	b, err := ioutil.ReadFile(tree.Path(FstabFile))
	assert.NilError(t, err)
	assert.Equal(t, string(b), "LABEL=rfs / ext4 defaults 0 1\nproc /proc proc defaults 0 0\n")

	cfg, err = project.Parse([]byte("project:\n  name: bare\n"))
	assert.NilError(t, err)
	assert.NilError(t, w.WriteFstab(cfg))

	b, err = ioutil.ReadFile(tree.Path(FstabFile))
	assert.NilError(t, err)
	assert.Equal(t, len(b), 0)
}
