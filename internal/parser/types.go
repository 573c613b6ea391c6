package parser

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"catalog-sync/internal/catalog"
)

// ErrUnsupportedFormat is returned for catalog files no parser handles.
var ErrUnsupportedFormat = errors.New("unsupported catalog format")

// Parser reads and writes catalog files of one format.
type Parser interface {
	// CanParse returns true if this parser handles the given file extension.
	CanParse(ext string) bool
	// Ext is the extension written for output catalogs, dot included.
	Ext() string
	// Decode reads a catalog. Key order follows the document.
	Decode(data []byte) (*catalog.Map, error)
	// Encode serializes a catalog tree, maps in insertion order.
	Encode(root catalog.Node) ([]byte, error)
}

// Parsers returns the available catalog formats.
func Parsers() []Parser {
	return []Parser{
		NewJSONParser(),
		NewYAMLParser(),
	}
}

// ForPath picks the parser for filePath by extension.
func ForPath(filePath string) (Parser, error) {
	ext := strings.ToLower(filepath.Ext(filePath))
	for _, p := range Parsers() {
		if p.CanParse(ext) {
			return p, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
}

// ParseFile reads and decodes the catalog at filePath.
func ParseFile(filePath string) (*catalog.Map, Parser, error) {
	p, err := ForPath(filePath)
	if err != nil {
		return nil, nil, err
	}
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, nil, fmt.Errorf("read catalog: %w", err)
	}
	root, err := p.Decode(data)
	if err != nil {
		return nil, nil, fmt.Errorf("decode catalog %s: %w", filePath, err)
	}
	return root, p, nil
}
