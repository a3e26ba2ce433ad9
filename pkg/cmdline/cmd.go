// Copyright (c) 2019, Sylabs Inc. All rights reserved.
// This software is licensed under a 3-clause BSD license. Please consult the
// LICENSE.md file distributed with the sources of this project regarding your
// rights to use or distribute this software.

package cmdline

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/cobra"
)

// CommandError is returned by commands invoked with an invalid
// command line, the CLI prints usage in this case.
type CommandError string

func (e CommandError) Error() string {
	return string(e)
}

// FlagError is returned when a flag value is rejected.
type FlagError string

func (e FlagError) Error() string {
	return string(e)
}

// CommandManager holds the root command and the flag manager
// used to register flags of its child commands.
type CommandManager struct {
	rootCmd *cobra.Command
	errPool []error
	fm      *flagManager
}

// NewCommandManager instantiates a CommandManager
func NewCommandManager(rootCmd *cobra.Command) *CommandManager {
	if rootCmd == nil {
		panic("nil root command passed")
	}
	return &CommandManager{
		rootCmd: rootCmd,
		errPool: make([]error, 0),
		fm:      newFlagManager(),
	}
}

func (m *CommandManager) pushError(f string, a ...interface{}) {
	m.errPool = append(m.errPool, fmt.Errorf(f, a...))
}

// GetError returns the error pool
func (m *CommandManager) GetError() []error {
	return m.errPool
}

// RegisterCmd registers a child command for the root command
func (m *CommandManager) RegisterCmd(cmd *cobra.Command) {
	// misuse of the API from init() functions
	if cmd == nil {
		panic("nil command passed")
	}
	m.rootCmd.AddCommand(cmd)
}

// RegisterFlagForCmd registers a flag for one or more commands
func (m *CommandManager) RegisterFlagForCmd(flag *Flag, cmds ...*cobra.Command) {
	if flag == nil {
		m.pushError("nil flag provided")
		return
	}
	if err := m.fm.registerCmdFlag(flag, cmds...); err != nil {
		m.pushError("while registering flag %s: %s", flag.Name, err)
	}
}

// UpdateCmdFlagFromEnv updates flag's values based on environment variables
// associated with all flags belonging to command provided as argument
func (m *CommandManager) UpdateCmdFlagFromEnv(cmd *cobra.Command, envPrefix string) error {
	var result *multierror.Error
	for _, err := range m.fm.updateCmdFlagFromEnv(cmd, envPrefix) {
		result = multierror.Append(result, err)
	}
	return result.ErrorOrNil()
}
