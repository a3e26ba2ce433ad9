// Copyright (c) 2019, Sylabs Inc. All rights reserved.
// This software is licensed under a 3-clause BSD license. Please consult the
// LICENSE.md file distributed with the sources of this project regarding your
// rights to use or distribute this software.

// Package project reads rfsbuild project files.
//
// A project file is a YAML document queried with slash separated paths
// such as "target/package/tar/name". Key order of the document is kept.
package project

import (
	"fmt"
	"io/ioutil"

	"gopkg.in/yaml.v2"
)

// Config is a parsed project file.
type Config struct {
	Node

	raw []byte
}

// Parse parses a project document.
func Parse(data []byte) (*Config, error) {
	var doc yaml.MapSlice

	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode project: %s", err)
	}
	return &Config{
		Node: Node{value: doc},
		raw:  data,
	}, nil
}

// Load reads and parses the project file at path.
func Load(path string) (*Config, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("while reading project %s: %s", path, err)
	}

	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("while parsing project %s: %s", path, err)
	}
	return c, nil
}

// Raw returns the document exactly as it was read.
func (c *Config) Raw() []byte {
	return c.raw
}
