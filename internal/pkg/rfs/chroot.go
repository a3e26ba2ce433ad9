// Copyright (c) 2019, Sylabs Inc. All rights reserved.
// This software is licensed under a 3-clause BSD license. Please consult the
// LICENSE.md file distributed with the sources of this project regarding your
// rights to use or distribute this software.

package rfs

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"github.com/sylabs/rfsbuild/internal/pkg/buildcfg"
	"github.com/sylabs/rfsbuild/internal/pkg/util/fs"
	"github.com/sylabs/rfsbuild/internal/pkg/util/fs/proc"
	"github.com/sylabs/rfsbuild/pkg/sylog"
	"golang.org/x/sys/unix"
)

const (
	resolvConf = "etc/resolv.conf"
	aptConf    = "etc/apt/apt.conf"
	policyRcD  = "usr/sbin/policy-rc.d"
	backupExt  = ".orig"
)

// refuse every service start requested by maintainer scripts
const policyRcDScript = "#!/bin/sh\nexit 101\n"

// localeVars are forced to C while a chroot is entered.
var localeVars = []string{"LANG", "LANGUAGE", "LC_ALL"}

// MountPoint describes a kernel filesystem mounted into a tree.
type MountPoint struct {
	Source string
	// Target is relative to the tree root.
	Target string
	Type   string
	Flags  uintptr
}

// kernelMounts are mounted in this order.
var kernelMounts = []MountPoint{
	{Source: "proc", Target: "proc", Type: "proc"},
	{Source: "sysfs", Target: "sys", Type: "sysfs"},
	{Source: "/dev", Target: "dev", Flags: unix.MS_BIND},
	{Source: "/dev/pts", Target: "dev/pts", Flags: unix.MS_BIND},
}

// unmountOrder lists the mount points released by Unmount, submounts
// first.
var unmountOrder = []string{
	"proc/sys/fs/binfmt_misc",
	"proc",
	"sys",
	"dev/pts",
	"dev",
}

// Options configures a chroot environment.
type Options struct {
	// Interpreter is the file name of the foreign-architecture
	// interpreter to inject into usr/bin, if any.
	Interpreter string
	// Host is the host tool configuration.
	Host buildcfg.Config
}

// savedContext is the process state captured when entering a chroot.
type savedContext struct {
	rootFd int
	cwdFd  int
	locale map[string]*string
}

func captureLocale() map[string]*string {
	saved := make(map[string]*string, len(localeVars))
	for _, k := range localeVars {
		if v, ok := os.LookupEnv(k); ok {
			saved[k] = &v
		} else {
			saved[k] = nil
		}
	}
	return saved
}

func forceLocale() {
	for _, k := range localeVars {
		os.Setenv(k, "C")
	}
}

func restoreLocale(saved map[string]*string) {
	for k, v := range saved {
		if v == nil {
			os.Unsetenv(k)
		} else {
			os.Setenv(k, *v)
		}
	}
}

// Environment manages the chroot execution context of a tree: injected
// host files, kernel filesystem mounts, and the process root.
//
// Entering a chroot changes the root and working directory of the whole
// process, an Environment must not be used concurrently and only one may
// be entered at a time.
type Environment struct {
	tree *Tree
	opts Options
	sys  syscalls

	prepared bool
	mounted  bool
	entered  bool
	saved    *savedContext

	installedInterpreter string
	injected             []string
}

// NewEnvironment returns the chroot environment of tree.
func NewEnvironment(tree *Tree, opts Options) *Environment {
	return newEnvironment(tree, opts, hostSyscalls{})
}

func newEnvironment(tree *Tree, opts Options, sys syscalls) *Environment {
	return &Environment{
		tree: tree,
		opts: opts,
		sys:  sys,
	}
}

// Mounted reports whether the kernel filesystems are mounted.
func (e *Environment) Mounted() bool {
	return e.mounted
}

// Entered reports whether the process root is the tree.
func (e *Environment) Entered() bool {
	return e.entered
}

func (e *Environment) installInterpreter() error {
	src, err := e.opts.Host.Interpreter(e.opts.Interpreter)
	if err != nil {
		return err
	}
	fi, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("could not stat interpreter: %s", err)
	}

	if err := e.tree.MkdirAll("usr/bin", 0755); err != nil {
		return fmt.Errorf("could not create usr/bin: %s", err)
	}
	dest := filepath.Join("usr/bin", e.opts.Interpreter)
	if err := fs.CopyFile(src, e.tree.Path(dest), fi.Mode().Perm()); err != nil {
		return fmt.Errorf("could not install interpreter: %s", err)
	}
	e.installedInterpreter = dest
	sylog.Debugf("Installed interpreter %s into %s", src, e.tree.Path(dest))
	return nil
}

func (e *Environment) isInjected(rel string) bool {
	for _, r := range e.injected {
		if r == rel {
			return true
		}
	}
	return false
}

// injectHostFile replaces rel of the tree with the host file, moving
// the existing one aside. Nothing is done when the host has no such file.
func (e *Environment) injectHostFile(rel, host string) error {
	if host == "" || !fs.IsFile(host) {
		sylog.Debugf("No host file %q to inject as %s", host, rel)
		return nil
	}

	if !e.isInjected(rel) {
		// an existing backup holds the file of the tree, rel is a
		// leftover copy of the host file
		if e.tree.Exists(rel + backupExt) {
			sylog.Warningf("Keeping existing backup %s", e.tree.Path(rel+backupExt))
		} else {
			moved, err := e.tree.Rename(rel, rel+backupExt)
			if err != nil {
				return fmt.Errorf("could not back up %s: %s", rel, err)
			}
			if moved {
				sylog.Debugf("Saved %s as %s", rel, rel+backupExt)
			}
		}
		// from here Teardown has something to restore
		e.injected = append(e.injected, rel)
	}

	if err := e.tree.MkdirAll(filepath.Dir(rel), 0755); err != nil {
		return fmt.Errorf("could not create %s: %s", filepath.Dir(rel), err)
	}
	return fs.CopyFile(host, e.tree.Path(rel), 0644)
}

// Prepare injects the interpreter, the host resolver and apt
// configuration, and the policy-rc.d stub into the tree. Nothing is
// injected into the host root.
func (e *Environment) Prepare() error {
	if e.tree.IsHostRoot() {
		return nil
	}
	// set first so that Teardown reverts a partial preparation
	e.prepared = true

	if e.opts.Interpreter != "" {
		if err := e.installInterpreter(); err != nil {
			return err
		}
	}
	if err := e.injectHostFile(resolvConf, e.opts.Host.HostResolvConf); err != nil {
		return err
	}
	if err := e.injectHostFile(aptConf, e.opts.Host.HostAptConf); err != nil {
		return err
	}

	if err := e.tree.MkdirAll(filepath.Dir(policyRcD), 0755); err != nil {
		return fmt.Errorf("could not create %s: %s", filepath.Dir(policyRcD), err)
	}
	if err := e.tree.WriteFile(policyRcD, []byte(policyRcDScript), 0755); err != nil {
		return fmt.Errorf("could not write %s: %s", policyRcD, err)
	}
	// WriteFile mode is subject to umask
	return e.tree.Chmod(policyRcD, 0755)
}

// Mount mounts proc, sysfs, /dev and /dev/pts into the tree, in this
// order. Mounts already done are rolled back when one fails.
func (e *Environment) Mount() error {
	if e.tree.IsHostRoot() {
		return nil
	}

	for _, mp := range kernelMounts {
		target := e.tree.Path(mp.Target)

		if mp.Type != "" {
			if ok, err := e.sys.HasFilesystem(mp.Type); err != nil {
				sylog.Warningf("Could not check kernel support of %s: %s", mp.Type, err)
			} else if !ok {
				return e.rollback(fmt.Errorf("kernel does not support %s filesystem", mp.Type))
			}
		}

		if !fs.IsDir(target) {
			if err := fs.MkdirAll(target, 0755); err != nil {
				return e.rollback(fmt.Errorf("could not create mount point %s: %s", target, err))
			}
		}

		sylog.Debugf("Mounting %s on %s", mp.Source, target)
		if err := e.sys.Mount(mp.Source, target, mp.Type, mp.Flags, ""); err != nil {
			return e.rollback(&CommandError{Cmd: fmt.Sprintf("mount %s on %s", mp.Source, target), Err: err})
		}
		e.mounted = true
	}
	return nil
}

func (e *Environment) rollback(err error) error {
	if uerr := e.Unmount(); uerr != nil {
		sylog.Warningf("While rolling back mounts of %s: %s", e.tree.Root(), uerr)
	}
	return err
}

// Unmount releases the kernel filesystems of the tree. Every mount
// point is attempted even if a previous one failed, and paths which
// are not mount points are skipped.
func (e *Environment) Unmount() error {
	if e.tree.IsHostRoot() {
		return nil
	}

	var result *multierror.Error

	entries, err := e.sys.MountInfo()
	if err != nil {
		sylog.Warningf("Could not read mount table, unmounting unconditionally: %s", err)
	}

	for _, rel := range unmountOrder {
		target := e.tree.Path(rel)
		if entries != nil && !proc.IsMountPoint(target, entries) {
			continue
		}

		sylog.Debugf("Unmounting %s", target)
		if err := e.sys.Unmount(target, 0); err != nil {
			if entries == nil && (err == unix.EINVAL || err == unix.ENOENT) {
				continue
			}
			sylog.Warningf("Could not unmount %s: %s", target, err)
			result = multierror.Append(result, &CommandError{Cmd: "umount " + target, Err: err})
		}
	}
	e.mounted = false

	if entries, err := e.sys.MountInfo(); err == nil {
		if left := proc.MountPointsUnder(e.tree.Root(), entries); len(left) > 0 {
			sylog.Warningf("Mount points left under %s: %v", e.tree.Root(), left)
		}
	}
	return result.ErrorOrNil()
}

func (e *Environment) closeSaved() error {
	var result *multierror.Error
	for _, fd := range []int{e.saved.rootFd, e.saved.cwdFd} {
		if fd < 0 {
			continue
		}
		if err := e.sys.Close(fd); err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result.ErrorOrNil()
}

// EnterChroot makes the tree the root of the process with a C locale.
// The previous root, working directory and locale are restored by
// LeaveChroot.
func (e *Environment) EnterChroot() (err error) {
	if e.entered {
		return ErrAlreadyEntered
	}
	if !e.tree.IsHostRoot() && !e.mounted {
		return ErrNotMounted
	}

	e.saved = &savedContext{rootFd: -1, cwdFd: -1, locale: captureLocale()}
	defer func() {
		if err != nil {
			restoreLocale(e.saved.locale)
			e.closeSaved()
			e.saved = nil
		}
	}()

	const dirFlags = unix.O_RDONLY | unix.O_DIRECTORY | unix.O_CLOEXEC

	fd, err := e.sys.Open("/", dirFlags, 0)
	if err != nil {
		return errors.Wrap(err, "could not open current root")
	}
	e.saved.rootFd = fd

	fd, err = e.sys.Open(".", dirFlags, 0)
	if err != nil {
		return errors.Wrap(err, "could not open working directory")
	}
	e.saved.cwdFd = fd

	forceLocale()

	if err := e.sys.Chdir(e.tree.Root()); err != nil {
		return errors.Wrapf(err, "could not change directory to %s", e.tree.Root())
	}
	if !e.tree.IsHostRoot() {
		if err := e.sys.Chroot(e.tree.Root()); err != nil {
			if ferr := e.sys.Fchdir(e.saved.cwdFd); ferr != nil {
				sylog.Errorf("Could not restore working directory: %s", ferr)
			}
			return errors.Wrapf(err, "could not chroot to %s", e.tree.Root())
		}
	}

	e.entered = true
	sylog.Debugf("Entered chroot %s", e.tree.Root())
	return nil
}

// LeaveChroot restores the root, working directory and locale saved by
// EnterChroot.
func (e *Environment) LeaveChroot() error {
	if !e.entered {
		return ErrNotEntered
	}

	var result *multierror.Error

	if !e.tree.IsHostRoot() {
		if err := e.sys.Fchdir(e.saved.rootFd); err != nil {
			result = multierror.Append(result, errors.Wrap(err, "could not change to saved root"))
		} else if err := e.sys.Chroot("."); err != nil {
			result = multierror.Append(result, errors.Wrap(err, "could not restore root"))
		}
	}
	if err := e.sys.Fchdir(e.saved.cwdFd); err != nil {
		result = multierror.Append(result, errors.Wrap(err, "could not restore working directory"))
	}

	restoreLocale(e.saved.locale)
	if err := e.closeSaved(); err != nil {
		result = multierror.Append(result, err)
	}
	e.saved = nil
	e.entered = false

	sylog.Debugf("Left chroot %s", e.tree.Root())
	return result.ErrorOrNil()
}

// restoreFile removes rel and puts its backup back when there is one.
func (e *Environment) restoreFile(rel string) error {
	if err := e.tree.Remove(rel); err != nil {
		return err
	}
	restored, err := e.tree.Rename(rel+backupExt, rel)
	if err != nil {
		return err
	}
	if restored {
		sylog.Debugf("Restored %s", rel)
	}
	return nil
}

// Teardown leaves the chroot if entered, unmounts the kernel
// filesystems and removes everything Prepare injected, restoring the
// files it moved aside. Missing files are ignored, and every step is
// attempted regardless of the failure of another.
func (e *Environment) Teardown() error {
	var result *multierror.Error

	if e.entered {
		if err := e.LeaveChroot(); err != nil {
			result = multierror.Append(result, err)
		}
	}
	if err := e.Unmount(); err != nil {
		result = multierror.Append(result, err)
	}

	if e.installedInterpreter != "" {
		if err := e.tree.Remove(e.installedInterpreter); err != nil {
			result = multierror.Append(result, err)
		}
		e.installedInterpreter = ""
	}

	if e.prepared {
		for _, rel := range e.injected {
			if err := e.restoreFile(rel); err != nil {
				result = multierror.Append(result, err)
			}
		}
		e.injected = nil
		if err := e.tree.Remove(policyRcD); err != nil {
			result = multierror.Append(result, err)
		}
		e.prepared = false
	}

	return result.ErrorOrNil()
}

// WithChroot prepares and mounts the chroot environment of tree, then
// calls fn. The environment is torn down when fn returns or panics.
func WithChroot(tree *Tree, opts Options, fn func(*Environment) error) error {
	return withEnvironment(NewEnvironment(tree, opts), fn)
}

func withEnvironment(env *Environment, fn func(*Environment) error) (err error) {
	defer func() {
		if terr := env.Teardown(); terr != nil {
			if err == nil {
				err = errors.Wrapf(terr, "while tearing down %s", env.tree.Root())
			} else {
				sylog.Errorf("While tearing down %s: %s", env.tree.Root(), terr)
			}
		}
	}()

	if err := env.Prepare(); err != nil {
		return errors.Wrapf(err, "while preparing %s", env.tree.Root())
	}
	if err := env.Mount(); err != nil {
		return errors.Wrapf(err, "while mounting %s", env.tree.Root())
	}
	return fn(env)
}
