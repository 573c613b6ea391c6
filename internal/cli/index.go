package cli

import (
	"fmt"
	"io"

	"catalog-sync/internal/catalog"
	"catalog-sync/internal/parser"
	"catalog-sync/internal/pathindex"

	json "github.com/goccy/go-json"
)

// indexEntry is the JSON form of one path index entry.
type indexEntry struct {
	Text  string         `json:"text"`
	Paths []catalog.Path `json:"paths"`
}

// runIndex handles the `index` command.
func runIndex(w io.Writer, catalogPath string) error {
	root, _, err := parser.ParseFile(catalogPath)
	if err != nil {
		return err
	}

	idx := pathindex.Build(root)
	entries := make([]indexEntry, 0, idx.Len())
	for _, e := range idx.Entries() {
		entries = append(entries, indexEntry{Text: e.Text, Paths: e.Paths})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(entries); err != nil {
		return fmt.Errorf("encode index: %w", err)
	}
	return nil
}
