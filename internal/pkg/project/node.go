// Copyright (c) 2019, Sylabs Inc. All rights reserved.
// This software is licensed under a 3-clause BSD license. Please consult the
// LICENSE.md file distributed with the sources of this project regarding your
// rights to use or distribute this software.

package project

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v2"
)

// Node is a value of the project document.
type Node struct {
	value interface{}
	key   string
}

// Key returns the mapping key the node was found under, if any.
func (n Node) Key() string {
	return n.key
}

func lookup(m yaml.MapSlice, key string) (interface{}, bool) {
	for _, item := range m {
		if fmt.Sprint(item.Key) == key {
			return item.Value, true
		}
	}
	return nil, false
}

// Node returns the node found at path below n.
func (n Node) Node(path string) (Node, bool) {
	cur := n
	for _, elem := range strings.Split(strings.Trim(path, "/"), "/") {
		if elem == "" {
			continue
		}
		m, ok := cur.value.(yaml.MapSlice)
		if !ok {
			return Node{}, false
		}
		v, ok := lookup(m, elem)
		if !ok {
			return Node{}, false
		}
		cur = Node{value: v, key: elem}
	}
	return cur, true
}

// Has reports whether path exists below n. A key with an empty
// value exists.
func (n Node) Has(path string) bool {
	_, ok := n.Node(path)
	return ok
}

// Text returns the scalar found at path rendered as text, or an
// empty string when path is absent or is not a scalar.
func (n Node) Text(path string) string {
	c, ok := n.Node(path)
	if !ok {
		return ""
	}
	switch v := c.value.(type) {
	case nil, yaml.MapSlice, []interface{}:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

// Flag reports whether path is present and not explicitly disabled,
// so "diet:" and "diet: true" both enable diet while "diet: false"
// does not.
func (n Node) Flag(path string) bool {
	c, ok := n.Node(path)
	if !ok {
		return false
	}
	if b, ok := c.value.(bool); ok {
		return b
	}
	return true
}

// Children returns the elements of the sequence or the values of the
// mapping found at path, in document order.
func (n Node) Children(path string) []Node {
	c, ok := n.Node(path)
	if !ok {
		return nil
	}

	var children []Node
	switch v := c.value.(type) {
	case []interface{}:
		for _, e := range v {
			children = append(children, Node{value: e})
		}
	case yaml.MapSlice:
		for _, item := range v {
			children = append(children, Node{value: item.Value, key: fmt.Sprint(item.Key)})
		}
	}
	return children
}

// Strings returns the scalar elements of the sequence found at path.
// A single scalar yields a one element list.
func (n Node) Strings(path string) []string {
	c, ok := n.Node(path)
	if !ok {
		return nil
	}
	if _, ok := c.value.([]interface{}); !ok {
		if s := c.Text(""); s != "" {
			return []string{s}
		}
		return nil
	}

	var list []string
	for _, child := range c.Children("") {
		if s := child.Text(""); s != "" {
			list = append(list, s)
		}
	}
	return list
}
