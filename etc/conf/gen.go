// Copyright (c) 2018-2019, Sylabs Inc. All rights reserved.
// This software is licensed under a 3-clause BSD license. Please consult the
// LICENSE.md file distributed with the sources of this project regarding your
// rights to use or distribute this software.

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/sylabs/rfsbuild/internal/pkg/buildcfg"
)

func main() {
	var err error

	switch len(os.Args) {
	case 3:
		err = genConf(filepath.Clean(os.Args[1]), filepath.Clean(os.Args[2]))
	case 2:
		err = genConf("", filepath.Clean(os.Args[1]))
	default:
		fmt.Println("Usage: go run ... [infile] <outfile>")
		os.Exit(1)
	}
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

// genConf produces a rfsbuild.toml file at out. It retains set
// configurations from in (leave blank for default)
func genConf(in, out string) error {
	c := buildcfg.DefaultConfig()
	if in != "" {
		var err error
		if c, err = buildcfg.LoadConfig(in); err != nil {
			return fmt.Errorf("unable to parse %s: %s", in, err)
		}
	}

	if err := buildcfg.PutConfig(c, out); err != nil {
		return fmt.Errorf("unable to generate config file %s: %s", out, err)
	}
	return nil
}
