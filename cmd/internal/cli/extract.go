// Copyright (c) 2019, Sylabs Inc. All rights reserved.
// This software is licensed under a 3-clause BSD license. Please consult the
// LICENSE.md file distributed with the sources of this project regarding your
// rights to use or distribute this software.

package cli

import (
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/sylabs/rfsbuild/docs"
	"github.com/sylabs/rfsbuild/internal/pkg/depcache"
	"github.com/sylabs/rfsbuild/internal/pkg/project"
	"github.com/sylabs/rfsbuild/internal/pkg/rfs"
	"github.com/sylabs/rfsbuild/internal/pkg/util/fs"
	"github.com/sylabs/rfsbuild/pkg/cmdline"
	"github.com/sylabs/rfsbuild/pkg/sylog"
)

var progress bool

// --progress
var extractProgressFlag = cmdline.Flag{
	ID:           "extractProgressFlag",
	Value:        &progress,
	DefaultValue: false,
	Name:         "progress",
	Usage:        "show a progress bar while copying package files",
	EnvKeys:      []string{"PROGRESS"},
}

func init() {
	cmdManager.RegisterCmd(ExtractCmd)
	cmdManager.RegisterFlagForCmd(&extractProgressFlag, ExtractCmd, BuildCmd)
}

// ExtractCmd populates a target from a build environment.
var ExtractCmd = &cobra.Command{
	DisableFlagsInUseLine: true,
	Args:                  cobra.ExactArgs(3),
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := project.Load(args[0])
		if err != nil {
			sylog.Fatalf("%s", err)
		}
		if err := extractTarget(cfg, args[1], args[2]); err != nil {
			sylog.Fatalf("While extracting target: %s", err)
		}
	},

	Use:     docs.ExtractUse,
	Short:   docs.ExtractShort,
	Long:    docs.ExtractLong,
	Example: docs.ExtractExample,
}

// openTree returns the tree rooted at path, creating the directory
// first when create is set.
func openTree(path string, create bool) (*rfs.Tree, error) {
	if create {
		if err := fs.MkdirAll(path, 0755); err != nil {
			return nil, errors.Wrapf(err, "could not create %s", path)
		}
	} else if !fs.IsDir(path) {
		return nil, errors.Errorf("%s is not a directory", path)
	}
	return rfs.NewTree(path)
}

// missingPackages returns the packages of list which are not installed.
func missingPackages(status *depcache.Status, list []string) []string {
	var missing []string
	for _, pkg := range list {
		if _, ok := status.Package(pkg); !ok {
			missing = append(missing, pkg)
		}
	}
	return missing
}

// newExtractor returns an extractor from src to dst configured for the
// project. The dpkg database of src is only required in diet mode.
func newExtractor(cfg *project.Config, src, dst *rfs.Tree) (*rfs.Extractor, error) {
	var resolver rfs.DependencyResolver

	if cfg.Mode().Diet {
		status, err := depcache.Load(src.Root())
		if err != nil {
			return nil, errors.Wrap(err, "while loading dependency cache")
		}
		for _, pkg := range missingPackages(status, cfg.PackageList()) {
			sylog.Warningf("Package %s is not installed in %s", pkg, src.Root())
		}
		resolver = status
	}

	x := rfs.NewExtractor(src, dst, rfs.ExecRunner{}, resolver)
	x.Chroot = rfs.Options{Interpreter: cfg.Interpreter(), Host: hostConfig}
	x.Progress = progress
	return x, nil
}

func extractTarget(cfg *project.Config, srcPath, dstPath string) error {
	src, err := openTree(srcPath, false)
	if err != nil {
		return err
	}
	dst, err := openTree(dstPath, true)
	if err != nil {
		return err
	}

	x, err := newExtractor(cfg, src, dst)
	if err != nil {
		return err
	}
	return x.Extract(cfg)
}
