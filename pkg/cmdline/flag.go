// Copyright (c) 2019, Sylabs Inc. All rights reserved.
// This software is licensed under a 3-clause BSD license. Please consult the
// LICENSE.md file distributed with the sources of this project regarding your
// rights to use or distribute this software.

package cmdline

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Flag holds information about a command flag
type Flag struct {
	ID           string
	Value        interface{}
	DefaultValue interface{}
	Name         string
	ShortHand    string
	Usage        string
	Deprecated   string
	Hidden       bool
	Required     bool
	Persistent   bool
	EnvKeys      []string
	EnvHandler   EnvHandler
}

// flagManager manages cobra command flags and stores them
// in a hash map
type flagManager struct {
	flags map[string]*Flag
}

func newFlagManager() *flagManager {
	return &flagManager{
		flags: make(map[string]*Flag),
	}
}

func flagSet(flag *Flag, cmd *cobra.Command) *pflag.FlagSet {
	if flag.Persistent {
		return cmd.PersistentFlags()
	}
	return cmd.Flags()
}

func (m *flagManager) setFlagOptions(flag *Flag, cmd *cobra.Command) error {
	fs := flagSet(flag, cmd)

	if len(flag.EnvKeys) > 0 {
		if err := fs.SetAnnotation(flag.Name, "envkey", flag.EnvKeys); err != nil {
			return fmt.Errorf("could not set envkey annotation: %s", err)
		}
	}
	if err := fs.SetAnnotation(flag.Name, "ID", []string{flag.ID}); err != nil {
		return fmt.Errorf("could not set ID annotation: %s", err)
	}
	if flag.Deprecated != "" {
		if err := fs.MarkDeprecated(flag.Name, flag.Deprecated); err != nil {
			return fmt.Errorf("could not mark flag as deprecated: %s", err)
		}
	}
	if flag.Hidden {
		if err := fs.MarkHidden(flag.Name); err != nil {
			return fmt.Errorf("could not mark flag as hidden: %s", err)
		}
	}
	if flag.Required {
		if err := cobra.MarkFlagRequired(fs, flag.Name); err != nil {
			return fmt.Errorf("could not mark flag as required: %s", err)
		}
	}
	return nil
}

func (m *flagManager) registerCmdFlag(flag *Flag, cmds ...*cobra.Command) error {
	if len(cmds) == 0 {
		return fmt.Errorf("no command provided")
	}
	for _, c := range cmds {
		if c == nil {
			return fmt.Errorf("nil command provided")
		}
	}

	var err error
	switch t := flag.DefaultValue.(type) {
	case string:
		if flag.EnvHandler == nil && len(flag.EnvKeys) > 0 {
			flag.EnvHandler = EnvString
		}
		err = m.registerVar(flag, cmds, func(fs *pflag.FlagSet) {
			fs.StringVarP(flag.Value.(*string), flag.Name, flag.ShortHand, t, flag.Usage)
		})
	case []string:
		if flag.EnvHandler == nil && len(flag.EnvKeys) > 0 {
			flag.EnvHandler = EnvString
		}
		err = m.registerVar(flag, cmds, func(fs *pflag.FlagSet) {
			fs.StringSliceVarP(flag.Value.(*[]string), flag.Name, flag.ShortHand, t, flag.Usage)
		})
	case bool:
		if flag.EnvHandler == nil && len(flag.EnvKeys) > 0 {
			flag.EnvHandler = EnvBool
		}
		err = m.registerVar(flag, cmds, func(fs *pflag.FlagSet) {
			fs.BoolVarP(flag.Value.(*bool), flag.Name, flag.ShortHand, t, flag.Usage)
		})
	case int:
		if flag.EnvHandler == nil && len(flag.EnvKeys) > 0 {
			flag.EnvHandler = EnvString
		}
		err = m.registerVar(flag, cmds, func(fs *pflag.FlagSet) {
			fs.IntVarP(flag.Value.(*int), flag.Name, flag.ShortHand, t, flag.Usage)
		})
	default:
		return fmt.Errorf("flag of type %T are not supported", t)
	}
	if err != nil {
		return err
	}

	m.flags[flag.ID] = flag
	return nil
}

func (m *flagManager) registerVar(flag *Flag, cmds []*cobra.Command, define func(*pflag.FlagSet)) error {
	for _, c := range cmds {
		define(flagSet(flag, c))
		if err := m.setFlagOptions(flag, c); err != nil {
			return err
		}
	}
	return nil
}

func (m *flagManager) updateCmdFlagFromEnv(cmd *cobra.Command, prefix string) (errs []error) {
	fn := func(flag *pflag.Flag) {
		envKeys, ok := flag.Annotations["envkey"]
		if !ok {
			return
		}
		id, ok := flag.Annotations["ID"]
		if !ok {
			return
		}
		mflag, ok := m.flags[id[0]]
		if !ok || mflag.EnvHandler == nil {
			return
		}
		for _, key := range envKeys {
			val, set := os.LookupEnv(prefix + key)
			if !set {
				continue
			}
			if err := mflag.EnvHandler(flag, val); err != nil {
				errs = append(errs, err)
				break
			}
		}
	}

	// inherited flags first, then the command's own
	cmd.InheritedFlags().VisitAll(fn)
	cmd.Flags().VisitAll(fn)
	return
}
