// Copyright (c) 2018, Sylabs Inc. All rights reserved.
// This software is licensed under a 3-clause BSD license. Please consult the
// LICENSE.md file distributed with the sources of this project regarding your
// rights to use or distribute this software.

package main

import (
	"fmt"
	"os"

	"github.com/sylabs/rfsbuild/cmd/internal/cli"
)

func main() {
	if len(os.Args) != 2 {
		fmt.Println("Usage: bash_completion <outfile>")
		os.Exit(1)
	}

	f, err := os.Create(os.Args[1])
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	defer f.Close()

	if err := cli.GenBashCompletion(f); err != nil {
		fmt.Println(err)
		return
	}
}
