// Package report accumulates the reconciliation ledgers of a run: texts
// pending translation, translations missing per language, stale spreadsheet
// rows and placeholder anomalies.
package report

import (
	"slices"

	"catalog-sync/internal/catalog"
	"catalog-sync/internal/interpolation"
)

// PendingRecord is a catalog text with no translation row at all.
type PendingRecord struct {
	Ticket string
	Path   catalog.Path
	Text   string
}

// Anomaly is a placeholder the verifier could not fully reconcile. The leaf is
// still written.
type Anomaly struct {
	Language string
	Path     catalog.Path
	Text     string
	Mismatch interpolation.Mismatch
}

// Ledger is not safe for concurrent use. Each build owns one and the run
// merges them after all builds have joined.
type Ledger struct {
	ticket    string
	denylist  map[string]struct{}
	pending   []PendingRecord
	seen      map[string]struct{}
	missing   map[string][]string
	missOrder []string
	anomalies []Anomaly
}

// NewLedger returns an empty ledger. Pending records carry ticket; texts in
// denylist are never recorded as pending.
func NewLedger(ticket string, denylist []string) *Ledger {
	deny := make(map[string]struct{}, len(denylist))
	for _, d := range denylist {
		deny[d] = struct{}{}
	}
	return &Ledger{
		ticket:   ticket,
		denylist: deny,
		seen:     make(map[string]struct{}),
		missing:  make(map[string][]string),
	}
}

// Fork returns an empty ledger sharing the ticket and denylist.
func (l *Ledger) Fork() *Ledger {
	return &Ledger{
		ticket:   l.ticket,
		denylist: l.denylist,
		seen:     make(map[string]struct{}),
		missing:  make(map[string][]string),
	}
}

// Pending records text as untranslated, found at p. Denylisted and already
// recorded texts are ignored.
func (l *Ledger) Pending(p catalog.Path, text string) {
	if _, deny := l.denylist[text]; deny {
		return
	}
	if _, dup := l.seen[text]; dup {
		return
	}
	l.seen[text] = struct{}{}
	l.pending = append(l.pending, PendingRecord{Ticket: l.ticket, Path: p, Text: text})
}

// Missing records that text has no translation for lang.
func (l *Ledger) Missing(lang, text string) {
	langs, ok := l.missing[text]
	if !ok {
		l.missOrder = append(l.missOrder, text)
	}
	if slices.Contains(langs, lang) {
		return
	}
	l.missing[text] = append(langs, lang)
}

// Anomaly records a placeholder diagnostic.
func (l *Ledger) Anomaly(a Anomaly) {
	l.anomalies = append(l.anomalies, a)
}

// Merge folds other into l. Order of first appearance is preserved, so
// merging per-language ledgers in language order is deterministic.
func (l *Ledger) Merge(other *Ledger) {
	if other == nil {
		return
	}
	for _, r := range other.pending {
		l.Pending(r.Path, r.Text)
	}
	for _, text := range other.missOrder {
		for _, lang := range other.missing[text] {
			l.Missing(lang, text)
		}
	}
	l.anomalies = append(l.anomalies, other.anomalies...)
}

// PendingRecords returns the pending records in recording order.
func (l *Ledger) PendingRecords() []PendingRecord { return l.pending }

// MissingTexts returns the texts with missing translations in recording order.
func (l *Ledger) MissingTexts() []string { return l.missOrder }

// MissingLanguages returns the languages lacking a translation of text.
func (l *Ledger) MissingLanguages(text string) []string { return l.missing[text] }

// MissingByLanguage returns a copy of the text -> languages ledger.
func (l *Ledger) MissingByLanguage() map[string][]string {
	out := make(map[string][]string, len(l.missing))
	for text, langs := range l.missing {
		out[text] = slices.Clone(langs)
	}
	return out
}

// Anomalies returns the placeholder diagnostics in recording order.
func (l *Ledger) Anomalies() []Anomaly { return l.anomalies }

// NotFound returns the translation keys absent from the catalog index, in the
// order of translationKeys.
func NotFound(translationKeys, indexKeys []string) []string {
	known := make(map[string]struct{}, len(indexKeys))
	for _, k := range indexKeys {
		known[k] = struct{}{}
	}
	var stale []string
	for _, k := range translationKeys {
		if _, ok := known[k]; !ok {
			stale = append(stale, k)
		}
	}
	return stale
}
