// Package catalog holds the tree model shared by the source catalog and the
// per-language catalogs rebuilt from translations.
package catalog

import (
	"strconv"
	"strings"
)

// Separator joins keys into a Path.
const Separator = "."

// Node is one of Leaf, *Map or *List.
type Node interface {
	isNode()
}

// Leaf is a literal text value.
type Leaf string

// Map is a branch whose keys keep insertion order.
type Map struct {
	keys   []string
	values map[string]Node
}

// List is a branch indexed by position. Unset positions hold nil and are
// encoded as null.
type List struct {
	items []Node
}

func (Leaf) isNode()  {}
func (*Map) isNode()  {}
func (*List) isNode() {}

// NewMap returns an empty Map.
func NewMap() *Map {
	return &Map{values: make(map[string]Node)}
}

// Set stores n under key. A new key is appended to the key order; an existing
// key keeps its position.
func (m *Map) Set(key string, n Node) {
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = n
}

// Get returns the node stored under key.
func (m *Map) Get(key string) (Node, bool) {
	n, ok := m.values[key]
	return n, ok
}

// Keys returns the keys in insertion order. The slice must not be modified.
func (m *Map) Keys() []string { return m.keys }

// Len returns the number of keys.
func (m *Map) Len() int { return len(m.keys) }

// NewList returns an empty List.
func NewList() *List { return &List{} }

// Set stores n at position i, growing the list with gaps as needed.
func (l *List) Set(i int, n Node) {
	for len(l.items) <= i {
		l.items = append(l.items, nil)
	}
	l.items[i] = n
}

// Get returns the node at position i. Gaps report false.
func (l *List) Get(i int) (Node, bool) {
	if i < 0 || i >= len(l.items) || l.items[i] == nil {
		return nil, false
	}
	return l.items[i], true
}

// Items returns the positions in order, gaps included as nil.
func (l *List) Items() []Node { return l.items }

// Len returns the list length including gaps.
func (l *List) Len() int { return len(l.items) }

// Path is a dot-joined key sequence from the root to a leaf.
type Path string

// Join extends parent with key. An empty parent yields key alone.
func Join(parent Path, key string) Path {
	if parent == "" {
		return Path(key)
	}
	return parent + Separator + Path(key)
}

// Segments splits the path back into keys.
func (p Path) Segments() []string {
	if p == "" {
		return nil
	}
	return strings.Split(string(p), Separator)
}

// String implements fmt.Stringer.
func (p Path) String() string { return string(p) }

// IsIndexKey reports whether key is a canonical list index: "0" or ASCII
// digits without a leading zero. Only such keys can mark a branch as a list,
// so two distinct keys never share a position.
func IsIndexKey(key string) bool {
	if key == "" || (len(key) > 1 && key[0] == '0') {
		return false
	}
	for i := 0; i < len(key); i++ {
		if key[i] < '0' || key[i] > '9' {
			return false
		}
	}
	return true
}

// Index parses an index key. ok is false for non-index keys or values that do
// not fit in an int.
func Index(key string) (int, bool) {
	if !IsIndexKey(key) {
		return 0, false
	}
	n, err := strconv.Atoi(key)
	if err != nil {
		return 0, false
	}
	return n, true
}

// Lookup resolves p inside root. Map branches are searched by key and List
// branches by index.
func Lookup(root *Map, p Path) (Node, bool) {
	var cur Node = root
	for _, seg := range p.Segments() {
		switch n := cur.(type) {
		case *Map:
			next, ok := n.Get(seg)
			if !ok {
				return nil, false
			}
			cur = next
		case *List:
			i, ok := Index(seg)
			if !ok {
				return nil, false
			}
			next, ok := n.Get(i)
			if !ok {
				return nil, false
			}
			cur = next
		default:
			return nil, false
		}
	}
	return cur, true
}

// CountLeaves returns the number of leaves under n. List gaps are not counted.
func CountLeaves(n Node) int {
	switch v := n.(type) {
	case Leaf:
		return 1
	case *Map:
		total := 0
		for _, key := range v.keys {
			total += CountLeaves(v.values[key])
		}
		return total
	case *List:
		total := 0
		for _, item := range v.items {
			total += CountLeaves(item)
		}
		return total
	}
	return 0
}
