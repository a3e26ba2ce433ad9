// Copyright (c) 2019, Sylabs Inc. All rights reserved.
// This software is licensed under a 3-clause BSD license. Please consult the
// LICENSE.md file distributed with the sources of this project regarding your
// rights to use or distribute this software.

package rfs

import (
	"github.com/sylabs/rfsbuild/internal/pkg/util/fs/proc"
	"golang.org/x/sys/unix"
)

// syscalls is the set of process wide operations performed by a chroot
// environment.
type syscalls interface {
	Mount(source, target, fstype string, flags uintptr, data string) error
	Unmount(target string, flags int) error
	Chroot(path string) error
	Chdir(path string) error
	Fchdir(fd int) error
	Open(path string, mode int, perm uint32) (int, error)
	Close(fd int) error
	MountInfo() ([]proc.MountInfoEntry, error)
	HasFilesystem(fstype string) (bool, error)
}

type hostSyscalls struct{}

func (hostSyscalls) Mount(source, target, fstype string, flags uintptr, data string) error {
	return unix.Mount(source, target, fstype, flags, data)
}

func (hostSyscalls) Unmount(target string, flags int) error {
	return unix.Unmount(target, flags)
}

func (hostSyscalls) Chroot(path string) error {
	return unix.Chroot(path)
}

func (hostSyscalls) Chdir(path string) error {
	return unix.Chdir(path)
}

func (hostSyscalls) Fchdir(fd int) error {
	return unix.Fchdir(fd)
}

func (hostSyscalls) Open(path string, mode int, perm uint32) (int, error) {
	return unix.Open(path, mode, perm)
}

func (hostSyscalls) Close(fd int) error {
	return unix.Close(fd)
}

func (hostSyscalls) MountInfo() ([]proc.MountInfoEntry, error) {
	return proc.GetMountInfoEntry(proc.SelfMountInfo)
}

func (hostSyscalls) HasFilesystem(fstype string) (bool, error) {
	return proc.HasFilesystem(fstype)
}
