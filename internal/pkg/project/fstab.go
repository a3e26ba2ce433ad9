// Copyright (c) 2019, Sylabs Inc. All rights reserved.
// This software is licensed under a 3-clause BSD license. Please consult the
// LICENSE.md file distributed with the sources of this project regarding your
// rights to use or distribute this software.

package project

import (
	"fmt"
	"strconv"
)

// FstabEntry is one target/fstab element.
type FstabEntry struct {
	Label      string
	Source     string
	MountPoint string
	FSType     string
	Options    string
	Dump       int
	PassNo     int
}

// filesystems without a backing block device are never checked
var virtualFS = map[string]bool{
	"tmpfs":  true,
	"proc":   true,
	"sysfs":  true,
	"devpts": true,
	"none":   true,
	"bind":   true,
}

func newFstabEntry(n Node) FstabEntry {
	e := FstabEntry{
		Label:      n.Text("label"),
		Source:     n.Text("source"),
		MountPoint: n.Text("mountpoint"),
		FSType:     n.Text("fs/type"),
		Options:    n.Text("options"),
	}
	if e.Options == "" {
		e.Options = "defaults"
	}
	if e.FSType == "" {
		e.FSType = "auto"
	}

	if d, err := strconv.Atoi(n.Text("dump")); err == nil {
		e.Dump = d
	}
	if p, err := strconv.Atoi(n.Text("passno")); err == nil {
		e.PassNo = p
	} else if virtualFS[e.FSType] {
		e.PassNo = 0
	} else if e.MountPoint == "/" {
		e.PassNo = 1
	} else {
		e.PassNo = 2
	}
	return e
}

func (e FstabEntry) spec() string {
	switch {
	case e.Source != "":
		return e.Source
	case e.Label != "":
		return "LABEL=" + e.Label
	default:
		return "none"
	}
}

// String renders the entry as an fstab line, newline included.
func (e FstabEntry) String() string {
	return fmt.Sprintf("%s %s %s %s %d %d\n", e.spec(), e.MountPoint, e.FSType, e.Options, e.Dump, e.PassNo)
}
