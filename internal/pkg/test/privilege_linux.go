// Copyright (c) 2018-2021, Sylabs Inc. All rights reserved.
// This software is licensed under a 3-clause BSD license. Please consult the
// LICENSE.md file distributed with the sources of this project regarding your
// rights to use or distribute this software.

// Package test holds helpers shared by the unit tests.
package test

import (
	"os"
	"testing"
)

// EnsurePrivilege skips the calling test unless it runs with
// elevated privileges. Tests performing real mounts or chroots use it.
func EnsurePrivilege(t *testing.T) {
	t.Helper()

	if os.Getuid() != 0 {
		t.Skip("test must be run with privilege")
	}
}

// EnsureNoPrivilege skips the calling test when it runs as root,
// for tests relying on permission checks.
func EnsureNoPrivilege(t *testing.T) {
	t.Helper()

	if os.Getuid() == 0 {
		t.Skip("test must be run without privilege")
	}
}
