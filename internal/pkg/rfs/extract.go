// Copyright (c) 2019, Sylabs Inc. All rights reserved.
// This software is licensed under a 3-clause BSD license. Please consult the
// LICENSE.md file distributed with the sources of this project regarding your
// rights to use or distribute this software.

package rfs

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/sylabs/rfsbuild/internal/pkg/project"
	"github.com/sylabs/rfsbuild/pkg/sylog"
	"gopkg.in/cheggaaa/pb.v1"
)

const (
	dpkgInfoDir = "var/lib/dpkg/info"
	// SelectionsFile receives the package selection of the target.
	SelectionsFile = "var/cache/rfsbuild/pkg-selections"
)

// kernelDirs are always present in a target.
var kernelDirs = []string{"dev", "proc", "sys"}

// Manifest is a sorted list of unique tree relative paths.
type Manifest []string

// Selection is a list of package names, optionally qualified with an
// architecture as in "libc6:armhf".
type Selection []string

// DependencyResolver returns the transitive dependencies of a package.
type DependencyResolver interface {
	Dependencies(pkg string) ([]string, error)
}

// Extractor populates a target tree from a build environment tree.
type Extractor struct {
	Src *Tree
	Dst *Tree

	Runner   Runner
	Resolver DependencyResolver
	// Chroot configures the environment used to apply a package selection.
	Chroot Options
	// Progress shows a progress bar while copying a manifest.
	Progress bool

	withChroot func(*Tree, Options, func(*Environment) error) error
}

// NewExtractor returns an extractor copying src into dst.
func NewExtractor(src, dst *Tree, runner Runner, resolver DependencyResolver) *Extractor {
	return &Extractor{
		Src:        src,
		Dst:        dst,
		Runner:     runner,
		Resolver:   resolver,
		withChroot: WithChroot,
	}
}

func unique(list []string) []string {
	sort.Strings(list)
	out := list[:0]
	for i, s := range list {
		if i > 0 && s == list[i-1] {
			continue
		}
		out = append(out, s)
	}
	return out
}

// expand returns the union of the selection and the dependencies of
// its packages.
func (x *Extractor) expand(sel Selection) (Selection, error) {
	if x.Resolver == nil {
		return nil, fmt.Errorf("no dependency resolver available")
	}

	all := append([]string(nil), sel...)
	for _, p := range sel {
		deps, err := x.Resolver.Dependencies(p)
		if err != nil {
			return nil, errors.Wrapf(err, "while resolving dependencies of %s", p)
		}
		all = append(all, deps...)
	}
	return Selection(unique(all)), nil
}

// packageFiles returns the entries of the file lists and conffiles of
// pkg, with and without architecture qualifier.
func (x *Extractor) packageFiles(pkg, arch string) ([]string, error) {
	var names []string
	for _, ext := range []string{"list", "conffiles"} {
		names = append(names, fmt.Sprintf("%s.%s", pkg, ext))
		if arch != "" && !strings.Contains(pkg, ":") {
			names = append(names, fmt.Sprintf("%s:%s.%s", pkg, arch, ext))
		}
	}

	var files []string
	for _, name := range names {
		lines, err := x.Src.ReadLines(filepath.Join(dpkgInfoDir, name))
		if err != nil {
			return nil, errors.Wrapf(err, "while reading %s", name)
		}
		for _, l := range lines {
			if entry := normalize(l); entry != "" {
				files = append(files, entry)
			}
		}
	}
	return files, nil
}

// ComputeManifest returns the files of the selected packages installed
// in the source tree. With diet mode the selection is first expanded
// to its dependency closure. Nothing is computed when mode does not
// reduce the target.
func (x *Extractor) ComputeManifest(sel Selection, arch string, mode project.Mode) (Manifest, error) {
	if !mode.Reduced() {
		return nil, nil
	}

	if mode.Diet {
		expanded, err := x.expand(sel)
		if err != nil {
			return nil, err
		}
		sylog.Verbosef("Selection expanded from %d to %d packages", len(sel), len(expanded))
		sel = expanded
	}

	var all []string
	for _, pkg := range sel {
		files, err := x.packageFiles(pkg, arch)
		if err != nil {
			return nil, err
		}
		if len(files) == 0 {
			sylog.Warningf("No installed files found for package %s", pkg)
		}
		all = append(all, files...)
	}
	return Manifest(unique(all)), nil
}

func (x *Extractor) copyEntry(f string) error {
	fi, err := x.Src.Lstat(f)
	if os.IsNotExist(err) {
		sylog.Warningf("%s listed but missing from %s, skipping", f, x.Src.Root())
		return nil
	} else if err != nil {
		return err
	}

	if fi.IsDir() {
		if !x.Dst.Exists(f) {
			if err := x.Dst.MkdirAll(f, fi.Mode().Perm()); err != nil {
				return errors.Wrapf(err, "could not create %s", f)
			}
		}
		uid, gid := Owner(fi)
		if err := x.Dst.Lchown(f, uid, gid); err != nil {
			return errors.Wrapf(err, "could not change owner of %s", f)
		}
		mode := fi.Mode() & (os.ModePerm | os.ModeSetuid | os.ModeSetgid | os.ModeSticky)
		if err := x.Dst.Chmod(f, mode); err != nil {
			return errors.Wrapf(err, "could not change mode of %s", f)
		}
		return nil
	}

	if parent := filepath.Dir(f); !x.Dst.Exists(parent) {
		sylog.Debugf("Creating unlisted parent directory %s", parent)
		if err := x.Dst.MkdirAll(parent, 0755); err != nil {
			return errors.Wrapf(err, "could not create %s", parent)
		}
	}
	// -T keeps cp from copying into a symlinked directory
	return x.Runner.Run("cp", "-a", "-T", "--reflink=auto", x.Src.Path(f), x.Dst.Path(f))
}

// CopyManifest copies the manifest entries from the source tree to the
// destination tree. Directories are created with the owner and mode of
// their source, other files are copied with all their attributes.
// Directory times are replicated once every entry has been copied.
func (x *Extractor) CopyManifest(m Manifest) error {
	var bar *pb.ProgressBar
	if x.Progress {
		bar = pb.New(len(m))
		bar.Output = sylog.Writer()
		bar.Start()
		defer bar.Finish()
	}

	for _, f := range m {
		if err := x.copyEntry(f); err != nil {
			return errors.Wrapf(err, "while copying %s", f)
		}
		if bar != nil {
			bar.Increment()
		}
	}

	// entries copied into a directory changed its times
	for _, f := range m {
		fi, err := x.Src.Lstat(f)
		if err != nil || !fi.IsDir() {
			continue
		}
		if err := x.Dst.CopyTimes(x.Src, f); err != nil {
			return err
		}
	}
	return nil
}

// FullCopy copies every top-level entry of the source tree into the
// destination tree with all their attributes.
func (x *Extractor) FullCopy() error {
	entries, err := x.Src.List("", false)
	if err != nil {
		return errors.Wrapf(err, "could not list %s", x.Src.Root())
	}
	for _, e := range entries {
		if err := x.Runner.Run("cp", "-a", "--reflink=auto", e, x.Dst.Root()); err != nil {
			return errors.Wrapf(err, "while copying %s", e)
		}
	}
	return nil
}

// ensureKernelDirs creates the mount points of the kernel filesystems.
func (x *Extractor) ensureKernelDirs() error {
	for _, d := range kernelDirs {
		if err := x.Dst.Mkdir(d, 0755); err != nil && !os.IsExist(err) {
			return errors.Wrapf(err, "could not create %s", d)
		}
	}
	return nil
}

// ApplySelection makes the selection the exact package set of the
// destination tree: every other package is purged by dpkg running in a
// chroot.
func (x *Extractor) ApplySelection(sel Selection) error {
	var b bytes.Buffer
	for _, p := range sel {
		fmt.Fprintf(&b, "%s  install\n", p)
	}

	if err := x.Dst.MkdirAll(filepath.Dir(SelectionsFile), 0755); err != nil {
		return errors.Wrap(err, "could not create selections directory")
	}
	if err := x.Dst.WriteFile(SelectionsFile, b.Bytes(), 0644); err != nil {
		return errors.Wrap(err, "could not write package selections")
	}

	return x.withChroot(x.Dst, x.Chroot, func(env *Environment) error {
		if err := env.EnterChroot(); err != nil {
			return err
		}

		for _, args := range [][]string{
			{"dpkg", "--clear-selections"},
			{"sh", "-c", "dpkg --set-selections < /" + SelectionsFile},
			{"dpkg", "--purge", "-a"},
		} {
			if err := x.Runner.Run(args[0], args[1:]...); err != nil {
				return errors.Wrap(err, "while applying package selection")
			}
		}
		return env.LeaveChroot()
	})
}

// Extract populates the destination tree as configured by the target
// section of the project.
func (x *Extractor) Extract(cfg *project.Config) error {
	mode := cfg.Mode()
	if x.Chroot.Interpreter == "" {
		x.Chroot.Interpreter = cfg.Interpreter()
	}

	if mode.Reduced() {
		sel := Selection(cfg.PackageList())
		m, err := x.ComputeManifest(sel, cfg.Arch(), mode)
		if err != nil {
			return err
		}
		sylog.Infof("Copying %d files of %d packages to %s", len(m), len(sel), x.Dst.Root())
		if err := x.CopyManifest(m); err != nil {
			return err
		}
	} else {
		sylog.Infof("Copying %s to %s", x.Src.Root(), x.Dst.Root())
		if err := x.FullCopy(); err != nil {
			return err
		}
	}

	if err := x.ensureKernelDirs(); err != nil {
		return err
	}

	if mode.Setsel {
		sylog.Infof("Applying package selection to %s", x.Dst.Root())
		return x.ApplySelection(Selection(cfg.PackageList()))
	}
	return nil
}
