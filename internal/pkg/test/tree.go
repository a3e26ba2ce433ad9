// Copyright (c) 2019, Sylabs Inc. All rights reserved.
// This software is licensed under a 3-clause BSD license. Please consult the
// LICENSE.md file distributed with the sources of this project regarding your
// rights to use or distribute this software.

package test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"gotest.tools/v3/fs"
)

// FixedTime is stamped on test trees so timestamp comparisons are stable.
var FixedTime = time.Date(2019, time.March, 12, 10, 30, 0, 0, time.UTC)

// NewTree creates a temporary directory populated by ops. The directory
// is removed when the test completes.
func NewTree(t *testing.T, prefix string, ops ...fs.PathOp) *fs.Dir {
	t.Helper()

	dir := fs.NewDir(t, prefix, ops...)
	t.Cleanup(dir.Remove)
	return dir
}

// StampTimes sets access and modification time of every path to
// FixedTime plus an offset of i seconds for the i-th path.
func StampTimes(t *testing.T, paths ...string) {
	t.Helper()

	for i, p := range paths {
		ts := FixedTime.Add(time.Duration(i) * time.Second)
		if err := os.Chtimes(p, ts, ts); err != nil {
			t.Fatalf("could not stamp %s: %s", p, err)
		}
	}
}

// WithRelativeSymlink creates a symlink at path pointing to target as
// given. fs.WithSymlink always links to an absolute path under the
// directory root.
func WithRelativeSymlink(path, target string) fs.PathOp {
	return func(root fs.Path) error {
		return os.Symlink(target, filepath.Join(root.Path(), path))
	}
}
