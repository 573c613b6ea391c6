// Package snapshot keeps versioned copies of the translation table: a JSON
// file for version control and, optionally, rows in PostgreSQL.
package snapshot

import (
	"fmt"
	"os"
	"path/filepath"

	"catalog-sync/internal/catalog"
	"catalog-sync/internal/parser"
	"catalog-sync/internal/translation"

	"github.com/rs/zerolog/log"
)

// Tree converts table into a catalog keyed by source text, each entry holding
// the translations of codes in that order. Absent translations are left out.
func Tree(table *translation.Table, codes []string) *catalog.Map {
	root := catalog.NewMap()
	for _, text := range table.Keys() {
		entry, _ := table.Lookup(text)
		langs := catalog.NewMap()
		for _, code := range codes {
			if v, ok := entry.Get(code); ok {
				langs.Set(code, catalog.Leaf(v))
			}
		}
		root.Set(text, langs)
	}
	return root
}

// WriteJSON writes the table snapshot to outputPath.
func WriteJSON(outputPath string, table *translation.Table, codes []string) error {
	data, err := parser.NewJSONParser().Encode(Tree(table, codes))
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if dir := filepath.Dir(outputPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create snapshot directory: %w", err)
		}
	}
	if err := os.WriteFile(outputPath, data, 0644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}

	log.Info().Str("path", outputPath).Int("texts", table.Len()).Msg("Exported translation snapshot")
	return nil
}
