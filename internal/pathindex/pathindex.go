// Package pathindex maps every leaf text of a catalog to the paths where it
// occurs. The text itself is the join key against the translation table.
package pathindex

import (
	"strconv"

	"catalog-sync/internal/catalog"
)

// Entry is one text and the paths holding it, in traversal order. Paths is
// never empty.
type Entry struct {
	Text  string
	Paths []catalog.Path
}

// Index is the text -> paths correspondence of a catalog. It is immutable once
// built and safe for concurrent readers.
type Index struct {
	entries   []Entry
	byText    map[string]int
	positions map[catalog.Path]int
}

// Build walks root depth-first, keys in declared order, and records each leaf
// path under its text.
func Build(root *catalog.Map) *Index {
	idx := &Index{
		byText:    make(map[string]int),
		positions: make(map[catalog.Path]int),
	}
	if root != nil {
		idx.walk(root, "")
	}
	return idx
}

func (idx *Index) walk(n catalog.Node, parent catalog.Path) {
	switch v := n.(type) {
	case *catalog.Map:
		for _, key := range v.Keys() {
			child, _ := v.Get(key)
			idx.visit(child, catalog.Join(parent, key))
		}
	case *catalog.List:
		for i, child := range v.Items() {
			if child == nil {
				continue
			}
			idx.visit(child, catalog.Join(parent, strconv.Itoa(i)))
		}
	}
}

func (idx *Index) visit(n catalog.Node, p catalog.Path) {
	if leaf, ok := n.(catalog.Leaf); ok {
		idx.add(string(leaf), p)
		return
	}
	idx.walk(n, p)
}

func (idx *Index) add(text string, p catalog.Path) {
	if _, ok := idx.positions[p]; !ok {
		idx.positions[p] = len(idx.positions)
	}
	if i, ok := idx.byText[text]; ok {
		idx.entries[i].Paths = append(idx.entries[i].Paths, p)
		return
	}
	idx.byText[text] = len(idx.entries)
	idx.entries = append(idx.entries, Entry{Text: text, Paths: []catalog.Path{p}})
}

// Entries returns every text in first-seen order. The slice must not be
// modified.
func (idx *Index) Entries() []Entry { return idx.entries }

// Paths returns the paths recorded for text.
func (idx *Index) Paths(text string) ([]catalog.Path, bool) {
	i, ok := idx.byText[text]
	if !ok {
		return nil, false
	}
	return idx.entries[i].Paths, true
}

// Contains reports whether text occurs in the catalog.
func (idx *Index) Contains(text string) bool {
	_, ok := idx.byText[text]
	return ok
}

// Texts returns the indexed texts in first-seen order.
func (idx *Index) Texts() []string {
	texts := make([]string, len(idx.entries))
	for i, e := range idx.entries {
		texts[i] = e.Text
	}
	return texts
}

// Position returns the pre-order rank of the leaf at p.
func (idx *Index) Position(p catalog.Path) (int, bool) {
	n, ok := idx.positions[p]
	return n, ok
}

// Len returns the number of distinct texts.
func (idx *Index) Len() int { return len(idx.entries) }

// Leaves returns the total number of indexed paths.
func (idx *Index) Leaves() int {
	n := 0
	for _, e := range idx.entries {
		n += len(e.Paths)
	}
	return n
}
