// Copyright (c) 2019, Sylabs Inc. All rights reserved.
// This software is licensed under a 3-clause BSD license. Please consult the
// LICENSE.md file distributed with the sources of this project regarding your
// rights to use or distribute this software.

package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/sylabs/rfsbuild/docs"
	"github.com/sylabs/rfsbuild/internal/pkg/build"
	"github.com/sylabs/rfsbuild/internal/pkg/project"
	"github.com/sylabs/rfsbuild/internal/pkg/rfs"
	"github.com/sylabs/rfsbuild/pkg/sylog"
)

func init() {
	cmdManager.RegisterCmd(PackageCmd)
}

// PackageCmd creates the artifacts of a target.
var PackageCmd = &cobra.Command{
	DisableFlagsInUseLine: true,
	Args:                  cobra.ExactArgs(3),
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := project.Load(args[0])
		if err != nil {
			sylog.Fatalf("%s", err)
		}
		tree, err := openTree(args[1], false)
		if err != nil {
			sylog.Fatalf("%s", err)
		}
		if err := packageTarget(cmd.OutOrStdout(), cfg, tree, args[2]); err != nil {
			sylog.Fatalf("While packaging target: %s", err)
		}
	},

	Use:     docs.PackageUse,
	Short:   docs.PackageShort,
	Long:    docs.PackageLong,
	Example: docs.PackageExample,
}

// packageTarget creates the artifacts of tree in outDir and prints the
// name of those successfully created to w.
func packageTarget(w io.Writer, cfg *project.Config, tree *rfs.Tree, outDir string) error {
	if _, err := openTree(outDir, true); err != nil {
		return err
	}

	p := build.NewPackager(rfs.ExecRunner{}, hostConfig)
	artifacts, err := p.BuildArtifacts(cfg, outDir, tree)
	if err != nil {
		return err
	}
	for _, a := range artifacts {
		fmt.Fprintf(w, "%s\t%s\n", a.Kind, a.Name)
	}
	return nil
}
