// Copyright (c) 2019-2021, Sylabs Inc. All rights reserved.
// This software is licensed under a 3-clause BSD license. Please consult the
// LICENSE.md file distributed with the sources of this project regarding your
// rights to use or distribute this software.

package buildcfg

import (
	"fmt"
	"io/ioutil"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/pelletier/go-toml"
)

// Config describes the host configuration file of rfsbuild.
type Config struct {
	// MksquashfsPath is a mksquashfs binary or a directory holding one.
	MksquashfsPath string `toml:"mksquashfs-path"`
	// InterpreterDirs are searched in order for the foreign-architecture
	// interpreter before falling back to /usr/bin.
	InterpreterDirs []string `toml:"interpreter-dirs"`
	// HostResolvConf is copied into the tree while it is prepared.
	HostResolvConf string `toml:"host-resolv-conf"`
	// HostAptConf is copied into the tree while it is prepared, if present.
	HostAptConf string `toml:"host-apt-conf"`
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() Config {
	return Config{
		InterpreterDirs: []string{filepath.Join(DataDir, "qemu")},
		HostResolvConf:  "/etc/resolv.conf",
		HostAptConf:     "/etc/apt/apt.conf",
	}
}

// LoadConfig reads the configuration file at confPath. A missing file
// yields the default configuration, keys absent from the file keep their
// default value.
func LoadConfig(confPath string) (Config, error) {
	config := DefaultConfig()

	b, err := ioutil.ReadFile(confPath)
	if os.IsNotExist(err) {
		return config, nil
	} else if err != nil {
		return config, fmt.Errorf("while reading %s: %s", confPath, err)
	}

	if err := toml.Unmarshal(b, &config); err != nil {
		return config, fmt.Errorf("while parsing %s: %s", confPath, err)
	}
	return config, nil
}

// PutConfig marshals config to confPath.
func PutConfig(config Config, confPath string) error {
	data, err := toml.Marshal(config)
	if err != nil {
		return err
	}
	return ioutil.WriteFile(confPath, data, 0644)
}

// Mksquashfs figures out where the mksquashfs binary is and returns an
// error if it is not available or not usable.
func (c Config) Mksquashfs() (string, error) {
	p := c.MksquashfsPath
	if p == "" {
		return exec.LookPath("mksquashfs")
	}
	if filepath.Base(p) != "mksquashfs" {
		p = filepath.Join(p, "mksquashfs")
	}
	// LookPath works on absolute paths too, ignoring $PATH
	return exec.LookPath(p)
}

// Interpreter returns the host path of the named foreign-architecture
// interpreter, searching the configured directories then /usr/bin.
func (c Config) Interpreter(name string) (string, error) {
	dirs := append(append([]string{}, c.InterpreterDirs...), "/usr/bin")
	for _, d := range dirs {
		p := filepath.Join(d, name)
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	return "", fmt.Errorf("interpreter %s not found in %v", name, dirs)
}
