package filewalker

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"catalog-sync/internal/parser"

	"github.com/rs/zerolog/log"
)

// Walker finds catalog files in a directory tree.
type Walker struct {
	parsers []parser.Parser
}

// NewWalker creates a Walker over the available catalog formats.
func NewWalker() *Walker {
	return &Walker{parsers: parser.Parsers()}
}

// FileEntry is a discovered catalog file. Name is the base name without
// extension, which by convention is the language code.
type FileEntry struct {
	Path   string
	Name   string
	Ext    string
	Parser parser.Parser
}

// Walk discovers all catalog files under root, in lexical order.
func (w *Walker) Walk(root string) ([]FileEntry, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("root is not a directory: %s", root)
	}

	var entries []FileEntry
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			log.Warn().Err(err).Str("path", path).Msg("Error walking path")
			return nil
		}
		if d.IsDir() {
			return nil
		}

		ext := strings.ToLower(filepath.Ext(path))
		for _, p := range w.parsers {
			if p.CanParse(ext) {
				entries = append(entries, FileEntry{
					Path:   path,
					Name:   strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
					Ext:    ext,
					Parser: p,
				})
				break
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk directory: %w", err)
	}

	log.Debug().Int("count", len(entries)).Str("root", root).Msg("Discovered catalog files")
	return entries, nil
}

// Resolve returns path itself when it is a file. For a directory it returns
// the catalog named name (e.g. "es" for es.json) found beneath it.
func (w *Walker) Resolve(path, name string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("stat catalog: %w", err)
	}
	if !info.IsDir() {
		return path, nil
	}

	entries, err := w.Walk(path)
	if err != nil {
		return "", err
	}
	var found []FileEntry
	for _, e := range entries {
		if e.Name == name {
			found = append(found, e)
		}
	}
	switch len(found) {
	case 0:
		return "", fmt.Errorf("no %s catalog under %s", name, path)
	case 1:
	default:
		log.Warn().Str("using", found[0].Path).Int("candidates", len(found)).Msg("Several source catalogs found")
	}
	return found[0].Path, nil
}
