// Copyright (c) 2018-2019, Sylabs Inc. All rights reserved.
// This software is licensed under a 3-clause BSD license. Please consult the
// LICENSE.md file distributed with the sources of this project regarding your
// rights to use or distribute this software.

// Package proc gives access to the kernel mount table.
package proc

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// SelfMountInfo is the mount table of the calling process.
const SelfMountInfo = "/proc/self/mountinfo"

// MountInfoEntry contains parsed fields of a mountinfo line.
type MountInfoEntry struct {
	ID           string
	ParentID     string
	Dev          string
	Root         string
	Point        string
	Options      []string
	Fields       string
	FSType       string
	Source       string
	SuperOptions []string
}

// unescape decodes the octal sequences (\040 for space and so on) the
// kernel uses for special characters in mountinfo paths.
func unescape(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+3 < len(s) {
			if v, err := strconv.ParseUint(s[i+1:i+4], 8, 8); err == nil {
				b.WriteByte(byte(v))
				i += 3
				continue
			}
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

// parseMountInfoLine parses a mountinfo line and returns
// a MountInfoEntry containing parsed fields associated
// to the line.
func parseMountInfoLine(line string) (MountInfoEntry, error) {
	fields := strings.Fields(line)
	entry := MountInfoEntry{}

	if len(fields) < 10 {
		return entry, fmt.Errorf("malformed mountinfo line: %q", line)
	}

	entry.ID = fields[0]
	entry.ParentID = fields[1]
	entry.Dev = fields[2]
	entry.Root = unescape(fields[3])
	entry.Point = unescape(fields[4])
	entry.Options = strings.Split(fields[5], ",")

	// optional fields are terminated by a single hyphen
	index := 6
	for ; index < len(fields) && fields[index] != "-"; index++ {
		entry.Fields += " " + fields[index]
	}
	entry.Fields = strings.TrimSpace(entry.Fields)

	if index+3 >= len(fields) {
		return entry, fmt.Errorf("malformed mountinfo line: %q", line)
	}
	entry.FSType = fields[index+1]
	entry.Source = unescape(fields[index+2])
	entry.SuperOptions = strings.Split(fields[index+3], ",")

	return entry, nil
}

// ParseMountInfo parses every line read from r.
func ParseMountInfo(r io.Reader) ([]MountInfoEntry, error) {
	entries := make([]MountInfoEntry, 0)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if strings.TrimSpace(scanner.Text()) == "" {
			continue
		}
		entry, err := parseMountInfoLine(scanner.Text())
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, scanner.Err()
}

// GetMountInfoEntry parses a mountinfo file and returns all
// parsed entries as an array of MountInfoEntry.
func GetMountInfoEntry(path string) ([]MountInfoEntry, error) {
	p, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("can't open %s: %s", path, err)
	}
	defer p.Close()

	entries, err := ParseMountInfo(p)
	if err != nil {
		return nil, fmt.Errorf("while parsing %s: %s", path, err)
	}
	return entries, nil
}

// IsMountPoint reports whether path is the mount point of one of the
// entries. The path is compared lexically after cleaning.
func IsMountPoint(path string, entries []MountInfoEntry) bool {
	path = filepath.Clean(path)
	for _, e := range entries {
		if e.Point == path {
			return true
		}
	}
	return false
}

// MountPointsUnder returns the sorted, unique mount points located
// strictly below root.
func MountPointsUnder(root string, entries []MountInfoEntry) []string {
	root = filepath.Clean(root)
	prefix := root + "/"
	if root == "/" {
		prefix = "/"
	}

	seen := make(map[string]bool)
	points := make([]string, 0)
	for _, e := range entries {
		if e.Point == root || !strings.HasPrefix(e.Point, prefix) || seen[e.Point] {
			continue
		}
		seen[e.Point] = true
		points = append(points, e.Point)
	}
	sort.Strings(points)
	return points
}

// HasFilesystem returns whether kernel support filesystem or not
func HasFilesystem(fs string) (bool, error) {
	p, err := os.Open("/proc/filesystems")
	if err != nil {
		return false, fmt.Errorf("can't open /proc/filesystems: %s", err)
	}
	defer p.Close()

	suffix := "\t" + fs
	scanner := bufio.NewScanner(p)
	for scanner.Scan() {
		if strings.HasSuffix(scanner.Text(), suffix) {
			return true, nil
		}
	}
	return false, nil
}
