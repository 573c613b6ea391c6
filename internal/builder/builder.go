// Package builder rebuilds a nested catalog for one target language from the
// path index of the source catalog and the translation table.
package builder

import (
	"errors"
	"fmt"
	"html"
	"math"
	"regexp"
	"sort"
	"strings"

	"catalog-sync/internal/catalog"
	"catalog-sync/internal/interpolation"
	"catalog-sync/internal/pathindex"
	"catalog-sync/internal/report"
	"catalog-sync/internal/translation"
)

// ErrStructuralInvariant marks a path that cannot be placed in the tree being
// built without overwriting a node of another kind.
var ErrStructuralInvariant = errors.New("structural invariant violation")

// StructuralError reports where the tree assembly collided.
type StructuralError struct {
	Language string
	Path     catalog.Path
	Reason   string
}

func (e *StructuralError) Error() string {
	return fmt.Sprintf("%s: language %s, path %s: %s", ErrStructuralInvariant, e.Language, e.Path, e.Reason)
}

func (e *StructuralError) Unwrap() error { return ErrStructuralInvariant }

// Options carries the per-build collaborators.
type Options struct {
	// Ledger receives pending, missing and anomaly records. Required.
	Ledger *report.Ledger
	// Overrides are applied after the translations.
	Overrides []Override
}

type write struct {
	path     catalog.Path
	segs     []string
	value    string
	pos      int
	override bool
}

// Build reconstructs the catalog of lang. Texts without a table row go to the
// ledger as pending, texts without a value for lang as missing. The returned
// tree is complete or nil: a structural collision aborts the build.
func Build(idx *pathindex.Index, table *translation.Table, lang string, opts Options) (*catalog.Map, error) {
	if opts.Ledger == nil {
		return nil, errors.New("builder: nil ledger")
	}

	var writes []write
	for _, e := range idx.Entries() {
		entry, ok := table.Lookup(e.Text)
		if !ok {
			opts.Ledger.Pending(e.Paths[0], e.Text)
			continue
		}
		translated, ok := entry.Get(lang)
		if !ok {
			opts.Ledger.Missing(lang, e.Text)
			continue
		}

		verified, mismatches := interpolation.Verify(translated, e.Text)
		for _, m := range mismatches {
			opts.Ledger.Anomaly(report.Anomaly{Language: lang, Path: e.Paths[0], Text: e.Text, Mismatch: m})
		}
		value := strings.TrimSpace(decodeEntities(verified))

		for _, p := range e.Paths {
			writes = append(writes, newWrite(idx, p, value, false))
		}
	}

	for _, o := range opts.Overrides {
		for _, lw := range o.leaves() {
			writes = append(writes, newWrite(idx, lw.path, lw.value, true))
		}
	}

	// Source order first; overrides follow a translation of the same path.
	sort.SliceStable(writes, func(i, j int) bool { return writes[i].pos < writes[j].pos })

	shapes := inferShapes(writes)
	root := catalog.NewMap()
	written := make(map[catalog.Path]struct{}, len(writes))
	for _, w := range writes {
		if _, dup := written[w.path]; dup && !w.override {
			return nil, &StructuralError{Language: lang, Path: w.path, Reason: "path written by two texts"}
		}
		written[w.path] = struct{}{}
		if err := place(root, w, shapes); err != nil {
			return nil, &StructuralError{Language: lang, Path: w.path, Reason: err.Error()}
		}
	}
	return root, nil
}

// entityRef matches semicolon-terminated character references. Legacy forms
// without the semicolon, such as "&amp=", stay literal.
var entityRef = regexp.MustCompile(`&(?:#[0-9]+|#[xX][0-9a-fA-F]+|[A-Za-z][A-Za-z0-9]*);`)

func decodeEntities(s string) string {
	if !strings.Contains(s, "&") {
		return s
	}
	return entityRef.ReplaceAllStringFunc(s, func(ref string) string {
		decoded := html.UnescapeString(ref)
		// "&notit;" decodes only its "&not" prefix; keep such references whole.
		if ref[1] != '#' && decoded != ";" && strings.HasSuffix(decoded, ";") {
			return ref
		}
		return decoded
	})
}

func newWrite(idx *pathindex.Index, p catalog.Path, value string, override bool) write {
	pos, ok := idx.Position(p)
	if !ok {
		pos = math.MaxInt
	}
	return write{path: p, segs: p.Segments(), value: value, pos: pos, override: override}
}

// listSlack is how far past twice its child count a list's largest index may
// reach. Sparser digit-keyed branches are kept as maps.
const listSlack = 8

type branch struct {
	index    bool
	maxIndex int
	children map[string]struct{}
}

// inferShapes decides, for every branch prefix, whether it is a list: all of
// its populated child keys are index keys and the largest index stays within
// listSlack of twice the child count. The root is always a map.
func inferShapes(writes []write) map[string]bool {
	branches := make(map[string]*branch)
	for _, w := range writes {
		prefix := ""
		for i := 0; i < len(w.segs)-1; i++ {
			if i == 0 {
				prefix = w.segs[0]
			} else {
				prefix += catalog.Separator + w.segs[i]
			}
			b, ok := branches[prefix]
			if !ok {
				b = &branch{index: true, children: make(map[string]struct{})}
				branches[prefix] = b
			}
			key := w.segs[i+1]
			b.children[key] = struct{}{}
			n, isIndex := catalog.Index(key)
			b.index = b.index && isIndex
			b.maxIndex = max(b.maxIndex, n)
		}
	}

	shapes := make(map[string]bool, len(branches))
	for prefix, b := range branches {
		shapes[prefix] = b.index && b.maxIndex < 2*len(b.children)+listSlack
	}
	return shapes
}

func place(root *catalog.Map, w write, shapes map[string]bool) error {
	if len(w.segs) == 0 {
		return errors.New("empty path")
	}

	var cur catalog.Node = root
	prefix := ""
	for i, seg := range w.segs[:len(w.segs)-1] {
		if i == 0 {
			prefix = seg
		} else {
			prefix += catalog.Separator + seg
		}

		next, ok, err := child(cur, seg)
		if err != nil {
			return err
		}
		if !ok {
			if shapes[prefix] {
				next = catalog.NewList()
			} else {
				next = catalog.NewMap()
			}
			if err := setChild(cur, seg, next); err != nil {
				return err
			}
		} else if _, leaf := next.(catalog.Leaf); leaf {
			return fmt.Errorf("branch expected at %s, leaf found", prefix)
		}
		cur = next
	}

	key := w.segs[len(w.segs)-1]
	existing, ok, err := child(cur, key)
	if err != nil {
		return err
	}
	if ok {
		if _, leaf := existing.(catalog.Leaf); !leaf {
			return errors.New("leaf expected, branch found")
		}
	}
	return setChild(cur, key, catalog.Leaf(w.value))
}

func child(n catalog.Node, key string) (catalog.Node, bool, error) {
	switch b := n.(type) {
	case *catalog.Map:
		c, ok := b.Get(key)
		return c, ok, nil
	case *catalog.List:
		i, ok := catalog.Index(key)
		if !ok {
			return nil, false, fmt.Errorf("list branch cannot hold key %q", key)
		}
		c, ok := b.Get(i)
		return c, ok, nil
	default:
		return nil, false, fmt.Errorf("cannot descend into %T", n)
	}
}

func setChild(n catalog.Node, key string, c catalog.Node) error {
	switch b := n.(type) {
	case *catalog.Map:
		b.Set(key, c)
		return nil
	case *catalog.List:
		i, ok := catalog.Index(key)
		if !ok {
			return fmt.Errorf("list branch cannot hold key %q", key)
		}
		b.Set(i, c)
		return nil
	default:
		return fmt.Errorf("cannot store into %T", n)
	}
}
