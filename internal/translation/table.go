// Package translation holds the flat source text -> translations table built
// from the spreadsheet rows.
package translation

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNoSourceColumn is returned when no header matches the source language tag.
var ErrNoSourceColumn = errors.New("no source language column")

// Language is a supported language code and the tag that identifies its
// spreadsheet column (e.g. "de" and "de_DE").
type Language struct {
	Code string `yaml:"code" json:"code"`
	Tag  string `yaml:"tag" json:"tag"`
}

// Entry holds the translations of one source text keyed by language code.
type Entry map[string]string

// Get returns the translation for lang. Blank values count as absent.
func (e Entry) Get(lang string) (string, bool) {
	v, ok := e[lang]
	if !ok || strings.TrimSpace(v) == "" {
		return "", false
	}
	return v, true
}

// Table maps source texts to their translations. Keys keep the order in
// which they were first set.
type Table struct {
	keys    []string
	entries map[string]Entry
}

// NewTable returns an empty table.
func NewTable() *Table {
	return &Table{entries: make(map[string]Entry)}
}

// Set stores e for source, replacing any previous entry.
func (t *Table) Set(source string, e Entry) {
	if _, ok := t.entries[source]; !ok {
		t.keys = append(t.keys, source)
	}
	t.entries[source] = e
}

// Lookup returns the entry for source.
func (t *Table) Lookup(source string) (Entry, bool) {
	e, ok := t.entries[source]
	return e, ok
}

// Keys returns the source texts in first-set order. The slice must not be
// modified.
func (t *Table) Keys() []string { return t.keys }

// Len returns the number of source texts.
func (t *Table) Len() int { return len(t.keys) }

// Columns finds the header column of each language by tag substring. The
// first matching column wins; languages without a column are omitted.
func Columns(header []string, langs []Language) map[string]int {
	cols := make(map[string]int, len(langs))
	for _, lang := range langs {
		for i, label := range header {
			if strings.Contains(label, lang.Tag) {
				cols[lang.Code] = i
				break
			}
		}
	}
	return cols
}

// FromRows builds a table from spreadsheet rows. The column matching the
// source language holds the key; rows with a blank key are skipped. Blank
// translation cells are left out of the entry.
func FromRows(header []string, rows [][]string, langs []Language, source string) (*Table, error) {
	cols := Columns(header, langs)
	srcCol, ok := cols[source]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoSourceColumn, source)
	}

	t := NewTable()
	for _, row := range rows {
		key := cell(row, srcCol)
		if key == "" {
			continue
		}
		entry := make(Entry, len(cols)-1)
		for _, lang := range langs {
			if lang.Code == source {
				continue
			}
			col, ok := cols[lang.Code]
			if !ok {
				continue
			}
			if v := cell(row, col); strings.TrimSpace(v) != "" {
				entry[lang.Code] = v
			}
		}
		t.Set(key, entry)
	}
	return t, nil
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}
