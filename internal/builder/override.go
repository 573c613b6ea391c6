package builder

import (
	"errors"
	"fmt"
	"strconv"

	"catalog-sync/internal/catalog"
)

// ErrOverrideNotFound is returned when an override path is absent from the
// source catalog.
var ErrOverrideNotFound = errors.New("override path not in catalog")

// Override pins a catalog position to its source value in every language.
type Override struct {
	Path  catalog.Path
	Value catalog.Node
}

// ResolveOverrides reads the source value of each path from root.
func ResolveOverrides(root *catalog.Map, paths []catalog.Path) ([]Override, error) {
	overrides := make([]Override, 0, len(paths))
	for _, p := range paths {
		n, ok := catalog.Lookup(root, p)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrOverrideNotFound, p)
		}
		overrides = append(overrides, Override{Path: p, Value: n})
	}
	return overrides, nil
}

type leafWrite struct {
	path  catalog.Path
	value string
}

// leaves flattens the override value into leaf writes. A subtree override
// pins every leaf below it.
func (o Override) leaves() []leafWrite {
	var out []leafWrite
	var walk func(n catalog.Node, p catalog.Path)
	walk = func(n catalog.Node, p catalog.Path) {
		switch v := n.(type) {
		case catalog.Leaf:
			out = append(out, leafWrite{path: p, value: string(v)})
		case *catalog.Map:
			for _, k := range v.Keys() {
				c, _ := v.Get(k)
				walk(c, catalog.Join(p, k))
			}
		case *catalog.List:
			for i, c := range v.Items() {
				if c != nil {
					walk(c, catalog.Join(p, strconv.Itoa(i)))
				}
			}
		}
	}
	walk(o.Value, o.Path)
	return out
}
