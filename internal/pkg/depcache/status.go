// Copyright (c) 2019, Sylabs Inc. All rights reserved.
// This software is licensed under a 3-clause BSD license. Please consult the
// LICENSE.md file distributed with the sources of this project regarding your
// rights to use or distribute this software.

// Package depcache resolves package dependencies from the dpkg status
// database of a root filesystem.
package depcache

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"pault.ag/go/debian/control"
	"pault.ag/go/debian/dependency"
)

// StatusFile is the dpkg status database, relative to a tree root.
const StatusFile = "var/lib/dpkg/status"

// Package is an installed package record.
type Package struct {
	Name         string
	Architecture string
	Version      string
	// Depends holds Pre-Depends and Depends, each element is a list
	// of alternatives.
	Depends  [][]string
	Provides []string
}

// Status is an index of the installed packages of a tree.
type Status struct {
	packages  map[string]*Package
	providers map[string][]string
}

// baseName strips the architecture qualifier of a package name,
// "libc6:armhf" becomes "libc6".
func baseName(name string) string {
	if i := strings.IndexByte(name, ':'); i >= 0 {
		return name[:i]
	}
	return name
}

func installed(status string) bool {
	fields := strings.Fields(status)
	return len(fields) == 3 && fields[2] == "installed"
}

// relations parses the relation field of a paragraph into alternative
// groups of package names. Version constraints and architecture
// qualifiers are dropped.
func relations(p *control.Paragraph, field string) ([][]string, error) {
	value := strings.TrimSpace(p.Values[field])
	if value == "" {
		return nil, nil
	}

	dep, err := dependency.Parse(value)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid %s field", field)
	}

	var groups [][]string
	for _, rel := range dep.Relations {
		var alts []string
		for _, possi := range rel.Possibilities {
			if possi.Name != "" {
				alts = append(alts, possi.Name)
			}
		}
		if len(alts) > 0 {
			groups = append(groups, alts)
		}
	}
	return groups, nil
}

// ParseStatus reads a dpkg status database. Packages that are not in
// the installed state are ignored.
func ParseStatus(r io.Reader) (*Status, error) {
	s := &Status{
		packages:  make(map[string]*Package),
		providers: make(map[string][]string),
	}

	pr, err := control.NewParagraphReader(r, nil)
	if err != nil {
		return nil, errors.Wrap(err, "while reading dpkg status")
	}
	for {
		p, err := pr.Next()
		if err == io.EOF {
			break
		} else if err != nil {
			return nil, errors.Wrap(err, "while reading dpkg status")
		}
		if err := s.add(p); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *Status) add(para *control.Paragraph) error {
	name := para.Values["Package"]
	if name == "" || !installed(para.Values["Status"]) {
		return nil
	}

	p := &Package{
		Name:         name,
		Architecture: para.Values["Architecture"],
		Version:      para.Values["Version"],
	}
	for _, field := range []string{"Pre-Depends", "Depends"} {
		groups, err := relations(para, field)
		if err != nil {
			return errors.Wrapf(err, "package %s", name)
		}
		p.Depends = append(p.Depends, groups...)
	}

	provides, err := relations(para, "Provides")
	if err != nil {
		return errors.Wrapf(err, "package %s", name)
	}
	for _, group := range provides {
		for _, v := range group {
			p.Provides = append(p.Provides, v)
			s.providers[v] = append(s.providers[v], name)
		}
	}
	s.packages[name] = p
	return nil
}

// Load reads the dpkg status database of the tree rooted at root.
func Load(root string) (*Status, error) {
	path := filepath.Join(root, StatusFile)

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not open %s: %s", path, err)
	}
	defer f.Close()

	return ParseStatus(f)
}

// Package returns the installed package named name, an architecture
// qualifier is ignored.
func (s *Status) Package(name string) (*Package, bool) {
	p, ok := s.packages[baseName(name)]
	return p, ok
}

// resolve returns the installed package satisfying a relation name,
// either directly or through a virtual package.
func (s *Status) resolve(name string) (string, bool) {
	if _, ok := s.packages[name]; ok {
		return name, true
	}
	if prov := s.providers[name]; len(prov) > 0 {
		p := append([]string(nil), prov...)
		sort.Strings(p)
		return p[0], true
	}
	return "", false
}

// Dependencies returns the sorted transitive dependency closure of the
// named package, the package itself excluded. For each alternative
// group the first installed candidate is followed. Unknown packages
// have no dependencies.
func (s *Status) Dependencies(name string) ([]string, error) {
	root, ok := s.resolve(baseName(name))
	if !ok {
		return nil, nil
	}

	seen := map[string]bool{root: true}
	queue := []string{root}
	for len(queue) > 0 {
		cur := s.packages[queue[0]]
		queue = queue[1:]

		for _, alts := range cur.Depends {
			for _, alt := range alts {
				dep, ok := s.resolve(alt)
				if !ok {
					continue
				}
				if !seen[dep] {
					seen[dep] = true
					queue = append(queue, dep)
				}
				break
			}
		}
	}

	delete(seen, root)
	deps := make([]string, 0, len(seen))
	for d := range seen {
		deps = append(deps, d)
	}
	sort.Strings(deps)
	return deps, nil
}
