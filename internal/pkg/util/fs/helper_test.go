// Copyright (c) 2018-2019, Sylabs Inc. All rights reserved.
// This software is licensed under a 3-clause BSD license. Please consult the
// LICENSE.md file distributed with the sources of this project regarding your
// rights to use or distribute this software.

package fs

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"
)

func TestIsFile(t *testing.T) {
	if IsFile("/etc/passwd") != true {
		t.Errorf("IsFile returns false for file")
	}
	if IsFile("/etc") != false {
		t.Errorf("IsFile returns true for directory")
	}
}

func TestIsDir(t *testing.T) {
	if IsDir("/etc") != true {
		t.Errorf("IsDir returns false for directory")
	}
}

func TestIsLink(t *testing.T) {
	if IsLink("/proc/mounts") != true {
		t.Errorf("IsLink returns false for link")
	}
}

func TestExists(t *testing.T) {
	tmpdir, err := ioutil.TempDir("", "exists")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(tmpdir)

	dangling := filepath.Join(tmpdir, "dangling")
	if err := os.Symlink("/nonexistent/target", dangling); err != nil {
		t.Fatal(err)
	}
	if !Exists(dangling) {
		t.Errorf("Exists returns false for dangling symlink")
	}
	if Exists(filepath.Join(tmpdir, "missing")) {
		t.Errorf("Exists returns true for missing file")
	}
}

func TestMkdirAll(t *testing.T) {
	tmpdir, err := ioutil.TempDir("", "mkdir")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(tmpdir)

	if err := MkdirAll(filepath.Join(tmpdir, "test/sub"), 0777); err != nil {
		t.Error(err)
	}
	fi, err := os.Stat(filepath.Join(tmpdir, "test"))
	if err != nil {
		t.Fatal(err)
	}
	if fi.Mode().Perm() != 0777 {
		t.Errorf("bad mode applied on %s, got %v", filepath.Join(tmpdir, "test"), fi.Mode().Perm())
	}
}

func TestMkdir(t *testing.T) {
	tmpdir, err := ioutil.TempDir("", "mkdir")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(tmpdir)

	test := filepath.Join(tmpdir, "test")
	if err := Mkdir(test, 0777); err != nil {
		t.Error(err)
	}
	fi, err := os.Stat(test)
	if err != nil {
		t.Fatal(err)
	}
	if fi.Mode().Perm() != 0777 {
		t.Errorf("bad mode applied on %s, got %v", test, fi.Mode().Perm())
	}
	if err := Mkdir(test, 0777); !os.IsExist(err) {
		t.Errorf("unexpected error for existing directory: %v", err)
	}
}

func TestCopyFile(t *testing.T) {
	tmpdir, err := ioutil.TempDir("", "copy")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(tmpdir)

	src := filepath.Join(tmpdir, "src")
	dst := filepath.Join(tmpdir, "dst")
	if err := ioutil.WriteFile(src, []byte("#!/bin/true\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := ioutil.WriteFile(dst, []byte("previous longer content\n"), 0600); err != nil {
		t.Fatal(err)
	}

	if err := CopyFile(src, dst, 0755); err != nil {
		t.Fatal(err)
	}
	b, err := ioutil.ReadFile(dst)
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != "#!/bin/true\n" {
		t.Errorf("unexpected content %q", b)
	}
	fi, err := os.Stat(dst)
	if err != nil {
		t.Fatal(err)
	}
	if fi.Mode().Perm() != 0755 {
		t.Errorf("bad mode applied on %s, got %v", dst, fi.Mode().Perm())
	}

	if err := CopyFile(filepath.Join(tmpdir, "missing"), dst, 0755); err == nil {
		t.Errorf("copy of missing file succeeded")
	}
}

func TestRemoveRenameIfExists(t *testing.T) {
	tmpdir, err := ioutil.TempDir("", "remove")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(tmpdir)

	a := filepath.Join(tmpdir, "a")
	b := filepath.Join(tmpdir, "b")

	if err := RemoveIfExists(a); err != nil {
		t.Errorf("unexpected error for absent file: %s", err)
	}
	if ok, err := RenameIfExists(a, b); ok || err != nil {
		t.Errorf("unexpected rename result for absent file: %v %v", ok, err)
	}

	if err := ioutil.WriteFile(a, nil, 0644); err != nil {
		t.Fatal(err)
	}
	if ok, err := RenameIfExists(a, b); !ok || err != nil {
		t.Errorf("unexpected rename result: %v %v", ok, err)
	}
	if Exists(a) || !Exists(b) {
		t.Errorf("rename did not move %s to %s", a, b)
	}
	if err := RemoveIfExists(b); err != nil || Exists(b) {
		t.Errorf("remove failed: %v", err)
	}
}
