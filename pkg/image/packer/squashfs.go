// Copyright (c) 2019, Sylabs Inc. All rights reserved.
// This software is licensed under a 3-clause BSD license. Please consult the
// LICENSE.md file distributed with the sources of this project regarding your
// rights to use or distribute this software.

package packer

import (
	"bytes"
	"fmt"
	"os/exec"

	"github.com/sylabs/rfsbuild/internal/pkg/buildcfg"
	"github.com/sylabs/rfsbuild/pkg/sylog"
)

// Squashfs represents a squashfs packer
type Squashfs struct {
	MksquashfsPath string
}

// NewSquashfs initializes and returns a Squashfs packer instance using
// the mksquashfs binary of the host configuration.
func NewSquashfs(cfg buildcfg.Config) *Squashfs {
	s := &Squashfs{}
	path, err := cfg.Mksquashfs()
	if err != nil {
		sylog.Debugf("mksquashfs not available: %s", err)
	}
	s.MksquashfsPath = path
	return s
}

// HasMksquashfs returns if mksquashfs binary has set or not
func (s *Squashfs) HasMksquashfs() bool {
	return s.MksquashfsPath != ""
}

// Create makes a squashfs filesystem from a list of source directories
// to a destination file. An existing destination is overwritten.
func (s *Squashfs) Create(src []string, dest string, opts []string) error {
	var stderr bytes.Buffer

	if !s.HasMksquashfs() {
		return fmt.Errorf("could not create squashfs, mksquashfs not found")
	}

	// mksquashfs takes args of the form: source1 source2 ... destination [options]
	args := append([]string{}, src...)
	args = append(args, dest, "-noappend", "-no-progress")
	args = append(args, opts...)

	sylog.Verbosef("Running %s %v", s.MksquashfsPath, args)
	cmd := exec.Command(s.MksquashfsPath, args...)
	cmd.Stdout = sylog.Writer()
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("create command failed: %v: %s", err, stderr.String())
	}
	return nil
}
