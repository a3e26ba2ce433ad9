// Copyright (c) 2019, Sylabs Inc. All rights reserved.
// This software is licensed under a 3-clause BSD license. Please consult the
// LICENSE.md file distributed with the sources of this project regarding your
// rights to use or distribute this software.

package cli

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/sylabs/rfsbuild/docs"
	"github.com/sylabs/rfsbuild/internal/pkg/rfs"
	"github.com/sylabs/rfsbuild/pkg/cmdline"
	"github.com/sylabs/rfsbuild/pkg/sylog"
)

var chrootInterpreter string

// --interpreter
var chrootInterpreterFlag = cmdline.Flag{
	ID:           "chrootInterpreterFlag",
	Value:        &chrootInterpreter,
	DefaultValue: "",
	Name:         "interpreter",
	Usage:        "foreign architecture interpreter to install in the tree (eg: qemu-arm-static)",
	EnvKeys:      []string{"INTERPRETER"},
}

func init() {
	cmdManager.RegisterCmd(ChrootCmd)
	cmdManager.RegisterFlagForCmd(&chrootInterpreterFlag, ChrootCmd)
}

// ChrootCmd runs a command inside a prepared tree.
var ChrootCmd = &cobra.Command{
	DisableFlagsInUseLine: true,
	Args:                  cobra.MinimumNArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		if os.Geteuid() != 0 {
			sylog.Fatalf("The chroot command requires root privileges")
		}
		tree, err := openTree(args[0], false)
		if err != nil {
			sylog.Fatalf("%s", err)
		}

		opts := rfs.Options{Interpreter: chrootInterpreter, Host: hostConfig}
		runner := rfs.ExecRunner{Stdout: cmd.OutOrStdout()}
		if err := runInChroot(tree, opts, runner, args[1:]); err != nil {
			sylog.Fatalf("%s", err)
		}
	},

	Use:     docs.ChrootUse,
	Short:   docs.ChrootShort,
	Long:    docs.ChrootLong,
	Example: docs.ChrootExample,
}

func runInChroot(tree *rfs.Tree, opts rfs.Options, runner rfs.Runner, argv []string) error {
	if len(argv) == 0 {
		return cmdline.CommandError("no command to run")
	}

	return rfs.WithChroot(tree, opts, func(env *rfs.Environment) error {
		if err := env.EnterChroot(); err != nil {
			return err
		}
		if err := runner.Run(argv[0], argv[1:]...); err != nil {
			return err
		}
		return env.LeaveChroot()
	})
}
