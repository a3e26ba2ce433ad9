// Copyright (c) 2019, Sylabs Inc. All rights reserved.
// This software is licensed under a 3-clause BSD license. Please consult the
// LICENSE.md file distributed with the sources of this project regarding your
// rights to use or distribute this software.

package rfs

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// ErrStateViolation is matched by every chroot misuse error, use
// errors.Is to test for it.
var ErrStateViolation = errors.New("chroot state violation")

var (
	// ErrAlreadyEntered is returned when entering an entered chroot.
	ErrAlreadyEntered = errors.WithMessage(ErrStateViolation, "chroot already entered")
	// ErrNotEntered is returned when leaving a chroot not entered.
	ErrNotEntered = errors.WithMessage(ErrStateViolation, "chroot not entered")
	// ErrNotMounted is returned when entering a chroot whose kernel
	// filesystems are not mounted.
	ErrNotMounted = errors.WithMessage(ErrStateViolation, "chroot not mounted")
)

// CommandError is returned when an external command or a mount
// operation fails.
type CommandError struct {
	Cmd    string
	Err    error
	Stderr string
}

func (e *CommandError) Error() string {
	msg := fmt.Sprintf("%s failed: %s", e.Cmd, e.Err)
	if s := strings.TrimSpace(e.Stderr); s != "" {
		msg += ": " + s
	}
	return msg
}

// Unwrap returns the underlying error.
func (e *CommandError) Unwrap() error {
	return e.Err
}
