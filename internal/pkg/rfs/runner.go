// Copyright (c) 2019, Sylabs Inc. All rights reserved.
// This software is licensed under a 3-clause BSD license. Please consult the
// LICENSE.md file distributed with the sources of this project regarding your
// rights to use or distribute this software.

package rfs

import (
	"bytes"
	"io"
	"os/exec"
	"strings"

	"github.com/sylabs/rfsbuild/pkg/sylog"
)

// Runner runs external commands. A non zero exit status is reported
// as a *CommandError.
type Runner interface {
	Run(name string, args ...string) error
}

// ExecRunner runs commands on the host, or inside the current root
// when a chroot is entered.
type ExecRunner struct {
	// Stdout receives the command output, sylog.Writer() when nil.
	Stdout io.Writer
}

// Run implements Runner.
func (r ExecRunner) Run(name string, args ...string) error {
	cmdline := strings.Join(append([]string{name}, args...), " ")
	sylog.Verbosef("Running %s", cmdline)

	var errBuf bytes.Buffer

	stdout := r.Stdout
	if stdout == nil {
		stdout = sylog.Writer()
	}

	cmd := exec.Command(name, args...)
	cmd.Stdout = stdout
	cmd.Stderr = io.MultiWriter(&errBuf, sylog.Writer())

	if err := cmd.Run(); err != nil {
		return &CommandError{Cmd: cmdline, Err: err, Stderr: errBuf.String()}
	}
	return nil
}
