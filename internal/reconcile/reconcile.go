// Package reconcile runs one reconciliation: index the source catalog once,
// rebuild every target language concurrently and merge the per-build ledgers.
package reconcile

import (
	"context"
	"errors"
	"fmt"
	"time"

	"catalog-sync/internal/builder"
	"catalog-sync/internal/catalog"
	"catalog-sync/internal/pathindex"
	"catalog-sync/internal/report"
	"catalog-sync/internal/textutil"
	"catalog-sync/internal/translation"
	"catalog-sync/internal/worker"

	"github.com/rs/zerolog/log"
)

// Input is everything one run needs.
type Input struct {
	Catalog   *catalog.Map
	Table     *translation.Table
	Languages []string
	Overrides []catalog.Path
	Ticket    string
	Denylist  []string
	Workers   int
}

// Output is a successfully rebuilt catalog.
type Output struct {
	Language string
	Catalog  *catalog.Map
	Leaves   int
}

// Failure is a language whose build was aborted.
type Failure struct {
	Language string
	Err      error
}

// Result of a run. Outputs and Failures follow the order of Input.Languages.
type Result struct {
	Index    *pathindex.Index
	Outputs  []Output
	Failures []Failure
	Ledger   *report.Ledger
	NotFound []string
	Duration time.Duration
}

// Err joins the failures, or returns nil if every language was built.
func (r *Result) Err() error {
	var errs []error
	for _, f := range r.Failures {
		errs = append(errs, fmt.Errorf("build %s: %w", f.Language, f.Err))
	}
	return errors.Join(errs...)
}

type build struct {
	root   *catalog.Map
	ledger *report.Ledger
}

// Run reconciles in.Catalog with in.Table. It returns an error only when the
// run cannot start; per-language failures are reported in the result.
func Run(ctx context.Context, in Input) (*Result, error) {
	if in.Catalog == nil || in.Table == nil {
		return nil, errors.New("reconcile: catalog and table are required")
	}
	start := time.Now()

	overrides, err := builder.ResolveOverrides(in.Catalog, in.Overrides)
	if err != nil {
		return nil, fmt.Errorf("resolve overrides: %w", err)
	}

	idx := pathindex.Build(in.Catalog)
	log.Debug().Int("texts", idx.Len()).Int("leaves", idx.Leaves()).Msg("Indexed source catalog")

	ledger := report.NewLedger(in.Ticket, in.Denylist)
	res := &Result{
		Index:    idx,
		Ledger:   ledger,
		NotFound: report.NotFound(in.Table.Keys(), idx.Texts()),
	}

	pool := worker.NewPool[string, *build](in.Workers, func(ctx context.Context, lang string) (*build, error) {
		b := &build{ledger: ledger.Fork()}
		root, err := builder.Build(idx, in.Table, lang, builder.Options{Ledger: b.ledger, Overrides: overrides})
		b.root = root
		return b, err
	})
	tasks := pool.Execute(ctx, in.Languages)
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("reconcile: %w", err)
	}

	for _, task := range tasks {
		if task.Result != nil {
			ledger.Merge(task.Result.ledger)
		}
		if task.Err != nil {
			res.Failures = append(res.Failures, Failure{Language: task.Input, Err: task.Err})
			continue
		}
		out := Output{
			Language: task.Input,
			Catalog:  task.Result.root,
			Leaves:   catalog.CountLeaves(task.Result.root),
		}
		res.Outputs = append(res.Outputs, out)
		log.Debug().Str("language", out.Language).Int("leaves", out.Leaves).Msg("Catalog rebuilt")
	}

	res.Duration = time.Since(start)
	return res, nil
}

// Log writes the run summary: stale spreadsheet texts, incomplete
// translations, pending count and placeholder anomalies.
func (r *Result) Log() {
	for _, text := range r.NotFound {
		log.Warn().Str("text", textutil.Truncate(text, 80)).Msg("Text not found in catalog")
	}
	for _, text := range r.Ledger.MissingTexts() {
		log.Warn().
			Str("text", textutil.Truncate(text, 80)).
			Strs("languages", r.Ledger.MissingLanguages(text)).
			Msg("Incomplete translation")
	}
	for _, a := range r.Ledger.Anomalies() {
		log.Warn().
			Str("language", a.Language).
			Str("path", a.Path.String()).
			Str("detail", a.Mismatch.String()).
			Msg("Placeholder mismatch")
	}
	for _, f := range r.Failures {
		log.Error().Err(f.Err).Str("language", f.Language).Msg("Catalog build failed")
	}

	log.Info().
		Int("texts", r.Index.Len()).
		Int("built", len(r.Outputs)).
		Int("failed", len(r.Failures)).
		Int("not_found", len(r.NotFound)).
		Int("incomplete", len(r.Ledger.MissingTexts())).
		Int("pending", len(r.Ledger.PendingRecords())).
		Int("anomalies", len(r.Ledger.Anomalies())).
		Dur("took", r.Duration).
		Msg("Reconciliation complete")
}
