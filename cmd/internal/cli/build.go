// Copyright (c) 2018-2019, Sylabs Inc. All rights reserved.
// This software is licensed under a 3-clause BSD license. Please consult the
// LICENSE.md file distributed with the sources of this project regarding your
// rights to use or distribute this software.

package cli

import (
	"io"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/sylabs/rfsbuild/docs"
	"github.com/sylabs/rfsbuild/internal/pkg/buildcfg"
	"github.com/sylabs/rfsbuild/internal/pkg/project"
	"github.com/sylabs/rfsbuild/internal/pkg/rfs"
	"github.com/sylabs/rfsbuild/pkg/cmdline"
	"github.com/sylabs/rfsbuild/pkg/sylog"
)

// License reports written to the output directory by the build command.
const (
	LicenseText     = "licence.txt"
	LicenseManifest = "licence.json"
)

var noLicenses bool

// --no-licenses
var buildNoLicensesFlag = cmdline.Flag{
	ID:           "buildNoLicensesFlag",
	Value:        &noLicenses,
	DefaultValue: false,
	Name:         "no-licenses",
	Usage:        "don't collect the package licenses in the output directory",
	EnvKeys:      []string{"NO_LICENSES"},
}

func init() {
	cmdManager.RegisterCmd(BuildCmd)
	cmdManager.RegisterFlagForCmd(&buildNoLicensesFlag, BuildCmd)
}

// BuildCmd runs every step producing a target and its artifacts.
var BuildCmd = &cobra.Command{
	DisableFlagsInUseLine: true,
	Args:                  cobra.ExactArgs(4),
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := project.Load(args[0])
		if err != nil {
			sylog.Fatalf("%s", err)
		}
		if err := buildTarget(cmd.OutOrStdout(), cfg, args[1], args[2], args[3]); err != nil {
			sylog.Fatalf("While building target: %s", err)
		}
	},

	Use:     docs.BuildUse,
	Short:   docs.BuildShort,
	Long:    docs.BuildLong,
	Example: docs.BuildExample,
}

func buildTarget(w io.Writer, cfg *project.Config, srcPath, dstPath, outDir string) error {
	sylog.Infof("Building target of %s %s", cfg.Name(), cfg.Version())

	if err := extractTarget(cfg, srcPath, dstPath); err != nil {
		return err
	}
	tree, err := openTree(dstPath, false)
	if err != nil {
		return err
	}

	mw, err := rfs.NewMetadataWriter(tree, buildcfg.PackageVersion)
	if err != nil {
		return err
	}
	if err := mw.WriteFstab(cfg); err != nil {
		return err
	}
	if err := mw.WriteVersionStamp(cfg); err != nil {
		return err
	}

	if _, err := openTree(outDir, true); err != nil {
		return err
	}
	if !noLicenses {
		err := writeLicenses(mw, filepath.Join(outDir, LicenseText), filepath.Join(outDir, LicenseManifest))
		if err != nil {
			return err
		}
	}

	return packageTarget(w, cfg, tree, outDir)
}
