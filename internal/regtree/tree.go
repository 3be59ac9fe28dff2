// internal/regtree/tree.go
package regtree

import (
	"errors"
	"fmt"
	"strings"
)

// Root is the path of the tree's root node.
const Root = "."

// HiddenPrefix marks implementation-private children.
// The tree keeps them; listings hide them.
const HiddenPrefix = "_"

var (
	// ErrNotFound is returned when a path segment does not exist.
	ErrNotFound = errors.New("regtree: no such register")

	// ErrNoMap is returned by every lookup on a tree without metadata.
	ErrNoMap = errors.New("regtree: no register map available")

	// ErrNoMatches is the "not found" outcome of a search.
	ErrNoMatches = errors.New("regtree: not found")
)

// Node is one entry of the register namespace.
// A node without children is a leaf register.
type Node struct {
	Name     string
	Path     string
	Offset   uint32
	Size     uint32
	Children []*Node

	byName map[string]*Node
}

// Leaf reports whether n is a register rather than a block.
func (n *Node) Leaf() bool {
	return len(n.Children) == 0
}

// Tree is a read-only register namespace for one device generation.
type Tree struct {
	Generation string
	root       *Node
}

// Empty returns a tree with no metadata. Every lookup fails with ErrNoMap.
func Empty() *Tree {
	return &Tree{}
}

// Available reports whether the tree carries register metadata.
func (t *Tree) Available() bool {
	return t != nil && t.root != nil
}

// Node resolves a dotted path by walking the tree from the root.
func (t *Tree) Node(path string) (*Node, error) {
	if !t.Available() {
		return nil, ErrNoMap
	}

	rel := strings.TrimLeft(path, ".")
	if rel == "" {
		return t.root, nil
	}

	n := t.root
	for _, seg := range strings.Split(rel, ".") {
		next, ok := n.byName[seg]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		n = next
	}
	return n, nil
}

// Offset returns the byte offset of the node at path.
func (t *Tree) Offset(path string) (uint32, error) {
	n, err := t.Node(path)
	if err != nil {
		return 0, err
	}
	return n.Offset, nil
}

// Children returns n's immediate child names in declaration order.
// Hidden children are included.
func (t *Tree) Children(n *Node) []string {
	out := make([]string, 0, len(n.Children))
	for _, c := range n.Children {
		out = append(out, c.Name)
	}
	return out
}

// Hidden reports whether a child name is implementation-private.
func Hidden(name string) bool {
	return strings.HasPrefix(name, HiddenPrefix)
}

// SearchResult is the outcome of a leaf search.
// Total counts every match even past the requested maximum.
type SearchResult struct {
	Matches []string
	Total   int
}

// Truncated reports whether more matches exist than were kept.
func (r SearchResult) Truncated() bool {
	return r.Total > len(r.Matches)
}

// Search visits every leaf depth-first in declaration order and collects
// the full paths containing target, keeping at most max of them.
// Zero matches yields ErrNoMatches.
func (t *Tree) Search(target string, max int) (SearchResult, error) {
	var res SearchResult
	if !t.Available() {
		return res, ErrNoMap
	}

	var walk func(n *Node)
	walk = func(n *Node) {
		if n.Leaf() {
			if n != t.root && strings.Contains(n.Path, target) {
				res.Total++
				if res.Total <= max {
					res.Matches = append(res.Matches, n.Path)
				}
			}
			return
		}
		for _, c := range n.Children {
			walk(c)
		}
	}
	walk(t.root)

	if res.Total == 0 {
		return res, fmt.Errorf("%w: %q", ErrNoMatches, target)
	}
	return res, nil
}
