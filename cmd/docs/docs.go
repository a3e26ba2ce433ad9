// Copyright (c) 2019, Sylabs Inc. All rights reserved.
// This software is licensed under a 3-clause BSD license. Please consult the
// LICENSE.md file distributed with the sources of this project regarding your
// rights to use or distribute this software.

package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"
	"github.com/sylabs/rfsbuild/cmd/internal/cli"
	"github.com/sylabs/rfsbuild/internal/pkg/buildcfg"
	"github.com/sylabs/rfsbuild/pkg/sylog"
	"golang.org/x/sys/unix"
)

func assertAccess(dir string) {
	if err := unix.Access(dir, unix.W_OK); err != nil {
		sylog.Fatalf("Given directory (%s) does not exist or is not writable by calling user", dir)
	}
}

func markdownDocs(rootCmd *cobra.Command, outDir string) {
	assertAccess(outDir)
	sylog.Infof("Creating rfsbuild markdown docs at %s", outDir)
	if err := doc.GenMarkdownTree(rootCmd, outDir); err != nil {
		sylog.Fatalf("Failed to create markdown docs for rfsbuild: %s", err)
	}
}

func manDocs(rootCmd *cobra.Command, outDir string) {
	assertAccess(outDir)
	sylog.Infof("Creating rfsbuild man pages at %s", outDir)
	header := &doc.GenManHeader{
		Title:   "RFSBUILD",
		Section: "1",
		Source:  buildcfg.PackageName + " " + buildcfg.PackageVersion,
	}

	// works recursively on all sub-commands
	if err := doc.GenManTree(rootCmd, header, outDir); err != nil {
		sylog.Fatalf("Failed to create man pages for rfsbuild: %s", err)
	}
}

func main() {
	var dir string
	var rootCmd = &cobra.Command{
		ValidArgs: []string{"markdown", "man"},
		Args:      cobra.ExactValidArgs(1),
		Use:       "makeDocs {markdown | man}",
		Short:     "Generates rfsbuild documentation",
		Run: func(cmd *cobra.Command, args []string) {
			rootCmd := cli.RootCmd()
			rootCmd.DisableAutoGenTag = true
			switch args[0] {
			case "markdown":
				markdownDocs(rootCmd, dir)
			case "man":
				manDocs(rootCmd, dir)
			}
		},
	}
	rootCmd.Flags().StringVarP(&dir, "dir", "d", ".", "Directory in which to put the generated documentation")
	if err := rootCmd.Execute(); err != nil {
		sylog.Fatalf("%s", err)
	}
}
