// Copyright (c) 2019, Sylabs Inc. All rights reserved.
// This software is licensed under a 3-clause BSD license. Please consult the
// LICENSE.md file distributed with the sources of this project regarding your
// rights to use or distribute this software.

package cmdline

import (
	"strconv"

	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"github.com/sylabs/rfsbuild/pkg/sylog"
)

// EnvHandler sets the value of a flag from the value of an environment
// variable. Handlers never override a flag set on the command line.
type EnvHandler func(*pflag.Flag, string) error

func setFromEnv(flag *pflag.Flag, value string) error {
	if err := flag.Value.Set(value); err != nil {
		return errors.Wrapf(err, "while setting flag %s from environment value %q", flag.Name, value)
	}
	flag.Changed = true
	sylog.Debugf("Flag %s set to %s from environment", flag.Name, flag.Value)
	return nil
}

// EnvBool enables a boolean flag. Values understood by strconv.ParseBool
// are used as is, any other non-empty value enables the flag.
func EnvBool(flag *pflag.Flag, value string) error {
	if flag.Changed || value == "" {
		return nil
	}
	if _, err := strconv.ParseBool(value); err != nil {
		value = "true"
	}
	return setFromEnv(flag, value)
}

// EnvString sets a string or string slice flag. Slices take a comma
// separated list.
func EnvString(flag *pflag.Flag, value string) error {
	if flag.Changed {
		return nil
	}
	return setFromEnv(flag, value)
}
