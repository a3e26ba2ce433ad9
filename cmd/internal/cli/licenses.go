// Copyright (c) 2019, Sylabs Inc. All rights reserved.
// This software is licensed under a 3-clause BSD license. Please consult the
// LICENSE.md file distributed with the sources of this project regarding your
// rights to use or distribute this software.

package cli

import (
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/sylabs/rfsbuild/docs"
	"github.com/sylabs/rfsbuild/internal/pkg/buildcfg"
	"github.com/sylabs/rfsbuild/internal/pkg/rfs"
	"github.com/sylabs/rfsbuild/pkg/cmdline"
	"github.com/sylabs/rfsbuild/pkg/sylog"
)

var (
	licensesText string
	licensesJSON string
)

// --text
var licensesTextFlag = cmdline.Flag{
	ID:           "licensesTextFlag",
	Value:        &licensesText,
	DefaultValue: "",
	Name:         "text",
	Usage:        "write the license texts to this file instead of the standard output",
}

// --json
var licensesJSONFlag = cmdline.Flag{
	ID:           "licensesJSONFlag",
	Value:        &licensesJSON,
	DefaultValue: "",
	Name:         "json",
	Usage:        "also write a JSON license manifest to this file",
}

func init() {
	cmdManager.RegisterCmd(LicensesCmd)
	cmdManager.RegisterFlagForCmd(&licensesTextFlag, LicensesCmd)
	cmdManager.RegisterFlagForCmd(&licensesJSONFlag, LicensesCmd)
}

// LicensesCmd collects the copyright files of a tree.
var LicensesCmd = &cobra.Command{
	DisableFlagsInUseLine: true,
	Args:                  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		tree, err := openTree(args[0], false)
		if err != nil {
			sylog.Fatalf("%s", err)
		}
		mw, err := rfs.NewMetadataWriter(tree, buildcfg.PackageVersion)
		if err != nil {
			sylog.Fatalf("%s", err)
		}

		if licensesText == "" {
			err = mw.WriteLicenseReport(cmd.OutOrStdout(), licensesJSON)
		} else {
			err = writeLicenses(mw, licensesText, licensesJSON)
		}
		if err != nil {
			sylog.Fatalf("While collecting licenses: %s", err)
		}
	},

	Use:     docs.LicensesUse,
	Short:   docs.LicensesShort,
	Long:    docs.LicensesLong,
	Example: docs.LicensesExample,
}

// writeLicenses writes the license report of mw to textPath and its
// manifest to jsonPath when not empty.
func writeLicenses(mw *rfs.MetadataWriter, textPath, jsonPath string) (err error) {
	f, err := os.Create(textPath)
	if err != nil {
		return errors.Wrap(err, "could not create license report")
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = errors.Wrap(cerr, "could not close license report")
		}
	}()

	return mw.WriteLicenseReport(f, jsonPath)
}
