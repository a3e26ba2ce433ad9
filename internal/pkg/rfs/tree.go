// Copyright (c) 2019, Sylabs Inc. All rights reserved.
// This software is licensed under a 3-clause BSD license. Please consult the
// LICENSE.md file distributed with the sources of this project regarding your
// rights to use or distribute this software.

package rfs

import (
	"bufio"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"syscall"

	"github.com/sylabs/rfsbuild/internal/pkg/util/fs"
	"golang.org/x/sys/unix"
)

// Tree is a directory tree addressed with paths relative to its root.
// A leading slash in a relative path is ignored, so "/etc/fstab" and
// "etc/fstab" designate the same file of the tree.
type Tree struct {
	root string
}

// NewTree returns the tree rooted at root. The root is made absolute
// and its symlinks are resolved when it exists.
func NewTree(root string) (*Tree, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("could not resolve %s: %s", root, err)
	}
	if p, err := filepath.EvalSymlinks(abs); err == nil {
		abs = p
	}
	return &Tree{root: abs}, nil
}

// Root returns the absolute path of the tree.
func (t *Tree) Root() string {
	return t.root
}

// IsHostRoot reports whether the tree is the host root filesystem.
func (t *Tree) IsHostRoot() bool {
	return t.root == "/"
}

// Path returns the host path of rel.
func (t *Tree) Path(rel string) string {
	return filepath.Join(t.root, rel)
}

// Exists reports whether rel exists without following a final symlink.
func (t *Tree) Exists(rel string) bool {
	return fs.Exists(t.Path(rel))
}

// IsDir reports whether rel is a directory, following symlinks.
func (t *Tree) IsDir(rel string) bool {
	return fs.IsDir(t.Path(rel))
}

// IsLink reports whether rel is a symlink.
func (t *Tree) IsLink(rel string) bool {
	return fs.IsLink(t.Path(rel))
}

// Lstat returns the file information of rel, not following symlinks.
func (t *Tree) Lstat(rel string) (os.FileInfo, error) {
	return os.Lstat(t.Path(rel))
}

// Mkdir creates the directory rel with mode, ignoring umask.
func (t *Tree) Mkdir(rel string, mode os.FileMode) error {
	return fs.Mkdir(t.Path(rel), mode)
}

// MkdirAll creates the directory rel and its parents with mode,
// ignoring umask.
func (t *Tree) MkdirAll(rel string, mode os.FileMode) error {
	return fs.MkdirAll(t.Path(rel), mode)
}

// Lchown changes the owner and group of rel, not following symlinks.
func (t *Tree) Lchown(rel string, uid, gid int) error {
	return os.Lchown(t.Path(rel), uid, gid)
}

// Chmod changes the mode of rel.
func (t *Tree) Chmod(rel string, mode os.FileMode) error {
	return os.Chmod(t.Path(rel), mode)
}

// WriteFile writes data to rel, creating it with mode if needed.
func (t *Tree) WriteFile(rel string, data []byte, mode os.FileMode) error {
	return ioutil.WriteFile(t.Path(rel), data, mode)
}

// Remove removes rel, its absence is not an error.
func (t *Tree) Remove(rel string) error {
	return fs.RemoveIfExists(t.Path(rel))
}

// Rename renames from to to within the tree and reports whether from
// existed.
func (t *Tree) Rename(from, to string) (bool, error) {
	return fs.RenameIfExists(t.Path(from), t.Path(to))
}

// ReadLines returns the lines of rel. A missing file has no lines.
func (t *Tree) ReadLines(rel string) ([]string, error) {
	f, err := os.Open(t.Path(rel))
	if os.IsNotExist(err) {
		return nil, nil
	} else if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	return lines, scanner.Err()
}

// List returns the sorted host paths of the entries of directory rel.
// Symlinks are left out when skipLinks is set.
func (t *Tree) List(rel string, skipLinks bool) ([]string, error) {
	infos, err := ioutil.ReadDir(t.Path(rel))
	if err != nil {
		return nil, err
	}

	paths := make([]string, 0, len(infos))
	for _, fi := range infos {
		if skipLinks && fi.Mode()&os.ModeSymlink != 0 {
			continue
		}
		paths = append(paths, filepath.Join(t.Path(rel), fi.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}

// Owner returns the owner and group of the file information fi.
func Owner(fi os.FileInfo) (int, int) {
	st, ok := fi.Sys().(*syscall.Stat_t)
	if !ok {
		return os.Getuid(), os.Getgid()
	}
	return int(st.Uid), int(st.Gid)
}

// CopyTimes replicates access and modification time of rel in src onto
// rel in t, symlinks are not followed.
func (t *Tree) CopyTimes(src *Tree, rel string) error {
	var st unix.Stat_t

	if err := unix.Lstat(src.Path(rel), &st); err != nil {
		return fmt.Errorf("could not stat %s: %s", src.Path(rel), err)
	}
	ts := []unix.Timespec{st.Atim, st.Mtim}
	if err := unix.UtimesNanoAt(unix.AT_FDCWD, t.Path(rel), ts, unix.AT_SYMLINK_NOFOLLOW); err != nil {
		return fmt.Errorf("could not set times of %s: %s", t.Path(rel), err)
	}
	return nil
}

// normalize turns a path of a dpkg file list into a tree relative
// path. The tree root, listed as "/.", becomes "." and blank lines an
// empty string.
func normalize(entry string) string {
	entry = strings.TrimRight(entry, "\r\n")
	if strings.TrimSpace(entry) == "" {
		return ""
	}
	entry = filepath.Clean("/" + entry)
	if entry == "/" {
		return "."
	}
	return strings.TrimPrefix(entry, "/")
}
