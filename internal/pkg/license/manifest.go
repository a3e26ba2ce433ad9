// Copyright (c) 2019, Sylabs Inc. All rights reserved.
// This software is licensed under a 3-clause BSD license. Please consult the
// LICENSE.md file distributed with the sources of this project regarding your
// rights to use or distribute this software.

// Package license collects the copyright texts of the packages of a
// root filesystem into a machine readable manifest.
package license

import (
	"encoding/json"
	"fmt"
	"io"
	"io/ioutil"
)

// Entry is the copyright text of one package.
type Entry struct {
	Package string `json:"package"`
	Text    string `json:"text"`
}

// Manifest accumulates entries in insertion order.
type Manifest struct {
	Version  int     `json:"version"`
	Licenses []Entry `json:"licenses"`
}

// NewManifest returns an empty manifest.
func NewManifest() *Manifest {
	return &Manifest{
		Version:  1,
		Licenses: make([]Entry, 0),
	}
}

// Add appends the copyright text of pkg.
func (m *Manifest) Add(pkg, text string) {
	m.Licenses = append(m.Licenses, Entry{Package: pkg, Text: text})
}

// Encode writes the manifest as indented JSON to w.
func (m *Manifest) Encode(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(m)
}

// Write writes the manifest to path.
func (m *Manifest) Write(path string) error {
	b, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode license manifest: %s", err)
	}
	if err := ioutil.WriteFile(path, append(b, '\n'), 0644); err != nil {
		return fmt.Errorf("failed to write license manifest %s: %s", path, err)
	}
	return nil
}

// Read loads a manifest previously written to path.
func Read(path string) (*Manifest, error) {
	b, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read license manifest %s: %s", path, err)
	}

	m := NewManifest()
	if err := json.Unmarshal(b, m); err != nil {
		return nil, fmt.Errorf("failed to decode license manifest %s: %s", path, err)
	}
	return m, nil
}
