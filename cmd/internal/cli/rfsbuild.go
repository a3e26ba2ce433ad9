// Copyright (c) 2018-2019, Sylabs Inc. All rights reserved.
// This software is licensed under a 3-clause BSD license. Please consult the
// LICENSE.md file distributed with the sources of this project regarding your
// rights to use or distribute this software.

package cli

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"text/template"

	"github.com/spf13/cobra"
	"github.com/sylabs/rfsbuild/docs"
	"github.com/sylabs/rfsbuild/internal/pkg/buildcfg"
	"github.com/sylabs/rfsbuild/pkg/cmdline"
	"github.com/sylabs/rfsbuild/pkg/sylog"
	"golang.org/x/sys/unix"
)

var cmdManager = cmdline.NewCommandManager(rfsbuildCmd)

const (
	envPrefix = "RFSBUILD_"
)

// rfsbuild command flags
var (
	debug    bool
	nocolor  bool
	silent   bool
	verbose  bool
	quiet    bool
	confFile string

	// hostConfig is loaded from confFile before any command runs
	hostConfig = buildcfg.DefaultConfig()
)

// -d|--debug
var rfsDebugFlag = cmdline.Flag{
	ID:           "rfsDebugFlag",
	Value:        &debug,
	DefaultValue: false,
	Name:         "debug",
	ShortHand:    "d",
	Usage:        "print debugging information (highest verbosity)",
}

// --nocolor
var rfsNoColorFlag = cmdline.Flag{
	ID:           "rfsNoColorFlag",
	Value:        &nocolor,
	DefaultValue: false,
	Name:         "nocolor",
	Usage:        "print without color output (default False)",
	EnvKeys:      []string{"NOCOLOR"},
}

// -s|--silent
var rfsSilentFlag = cmdline.Flag{
	ID:           "rfsSilentFlag",
	Value:        &silent,
	DefaultValue: false,
	Name:         "silent",
	ShortHand:    "s",
	Usage:        "only print errors",
}

// -q|--quiet
var rfsQuietFlag = cmdline.Flag{
	ID:           "rfsQuietFlag",
	Value:        &quiet,
	DefaultValue: false,
	Name:         "quiet",
	ShortHand:    "q",
	Usage:        "suppress normal output",
}

// -v|--verbose
var rfsVerboseFlag = cmdline.Flag{
	ID:           "rfsVerboseFlag",
	Value:        &verbose,
	DefaultValue: false,
	Name:         "verbose",
	ShortHand:    "v",
	Usage:        "print additional information",
}

// -c|--config
var rfsConfigFlag = cmdline.Flag{
	ID:           "rfsConfigFlag",
	Value:        &confFile,
	DefaultValue: buildcfg.ConfFile(),
	Name:         "config",
	ShortHand:    "c",
	Usage:        "path to the rfsbuild host configuration file",
	EnvKeys:      []string{"CONFIG"},
}

func init() {
	rfsbuildCmd.Flags().SetInterspersed(false)
	rfsbuildCmd.PersistentFlags().SetInterspersed(false)

	templateFuncs := template.FuncMap{
		"TraverseParentsUses": TraverseParentsUses,
	}
	cobra.AddTemplateFuncs(templateFuncs)

	rfsbuildCmd.SetHelpTemplate(docs.HelpTemplate)
	rfsbuildCmd.SetUsageTemplate(docs.UseTemplate)

	vt := fmt.Sprintf("%s version {{printf \"%%s\" .Version}}\n", buildcfg.PackageName)
	rfsbuildCmd.SetVersionTemplate(vt)

	for _, f := range []*cmdline.Flag{
		&rfsDebugFlag,
		&rfsNoColorFlag,
		&rfsSilentFlag,
		&rfsQuietFlag,
		&rfsVerboseFlag,
		&rfsConfigFlag,
	} {
		f.Persistent = true
		cmdManager.RegisterFlagForCmd(f, rfsbuildCmd)
	}

	cmdManager.RegisterCmd(VersionCmd)
}

func setSylogMessageLevel() {
	var level int

	if debug {
		level = 5
	} else if verbose {
		level = 4
	} else if quiet {
		level = -1
	} else if silent {
		level = -3
	} else {
		level = 1
	}

	sylog.SetLevel(level, !nocolor)
}

func getColumns() int {
	if columns := os.Getenv("COLUMNS"); columns != "" {
		if n, err := strconv.Atoi(columns); err == nil {
			return n
		}
	}
	if ws, err := unix.IoctlGetWinsize(int(os.Stdout.Fd()), unix.TIOCGWINSZ); err == nil && ws.Col > 0 {
		return int(ws.Col)
	}
	return 80
}

// rfsbuildCmd is the base command when called without any subcommands
var rfsbuildCmd = &cobra.Command{
	TraverseChildren:      true,
	DisableFlagsInUseLine: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmdline.CommandError("invalid command")
	},

	Use:           docs.RfsbuildUse,
	Version:       buildcfg.PackageVersion,
	Short:         docs.RfsbuildShort,
	Long:          docs.RfsbuildLong,
	Example:       docs.RfsbuildExample,
	SilenceErrors: true,
	SilenceUsage:  true,
}

func persistentPreRunE(cmd *cobra.Command, _ []string) error {
	if err := cmdManager.UpdateCmdFlagFromEnv(cmd, envPrefix); err != nil {
		return err
	}
	setSylogMessageLevel()

	c, err := buildcfg.LoadConfig(confFile)
	if err != nil {
		return err
	}
	sylog.Debugf("Host configuration loaded from %s", confFile)
	hostConfig = c
	return nil
}

// RootCmd returns the root rfsbuild cobra command.
func RootCmd() *cobra.Command {
	return rfsbuildCmd
}

// ExecuteRfsbuild adds all child commands to the root command and sets
// flags appropriately. This is called by main.main(). It only needs to
// happen once to the root command (rfsbuild).
func ExecuteRfsbuild() {
	// set persistent pre run function here to avoid initialization loop error
	rfsbuildCmd.PersistentPreRunE = persistentPreRunE

	for _, e := range cmdManager.GetError() {
		sylog.Errorf("%s", e)
	}
	// any error reported by command manager is considered as fatal
	cliErrors := len(cmdManager.GetError())
	if cliErrors > 0 {
		sylog.Fatalf("CLI command manager reported %d error(s)", cliErrors)
	}

	if cmd, err := rfsbuildCmd.ExecuteC(); err != nil {
		name := cmd.Name()
		switch err.(type) {
		case cmdline.FlagError:
			usage := cmd.Flags().FlagUsagesWrapped(getColumns())
			rfsbuildCmd.Printf("Error for command %q: %s\n\n", name, err)
			rfsbuildCmd.Printf("Options for %s command:\n\n%s\n", name, usage)
		case cmdline.CommandError:
			rfsbuildCmd.Println(cmd.UsageString())
		default:
			rfsbuildCmd.Printf("Error for command %q: %s\n\n", name, err)
		}
		rfsbuildCmd.Printf("Run '%s --help' for more detailed usage information.\n",
			cmd.CommandPath())
		os.Exit(1)
	}
}

// GenBashCompletion writes the bash completion script of rfsbuild to w.
func GenBashCompletion(w io.Writer) error {
	return rfsbuildCmd.GenBashCompletion(w)
}

// TraverseParentsUses walks the parent commands and outputs a properly formatted use string
func TraverseParentsUses(cmd *cobra.Command) string {
	if cmd.HasParent() {
		return TraverseParentsUses(cmd.Parent()) + cmd.Use + " "
	}

	return cmd.Use + " "
}
