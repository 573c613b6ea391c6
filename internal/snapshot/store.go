package snapshot

import (
	"context"
	"fmt"

	"catalog-sync/internal/textutil"
	"catalog-sync/internal/translation"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog/log"
)

// DB is the subset of *pgxpool.Pool the store needs.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Begin(ctx context.Context) (pgx.Tx, error)
}

const schemaSQL = `CREATE TABLE IF NOT EXISTS translation_snapshots (
	run_id          UUID        NOT NULL,
	hash            TEXT        NOT NULL,
	source_text     TEXT        NOT NULL,
	language        TEXT        NOT NULL,
	translated_text TEXT        NOT NULL,
	created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (run_id, hash, language)
)`

var (
	snapshotTable   = pgx.Identifier{"translation_snapshots"}
	snapshotColumns = []string{"run_id", "hash", "source_text", "language", "translated_text"}
)

// Store persists translation table snapshots in PostgreSQL.
type Store struct {
	db DB
}

// NewStore creates a snapshot store.
func NewStore(db DB) *Store {
	return &Store{db: db}
}

// EnsureSchema creates the snapshot table if needed.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create snapshot table: %w", err)
	}
	return nil
}

// Save copies one row per present translation of codes under a new run id,
// in a single transaction.
func (s *Store) Save(ctx context.Context, table *translation.Table, codes []string) (uuid.UUID, error) {
	runID := uuid.New()
	rows := snapshotRows(runID, table, codes)

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return uuid.Nil, fmt.Errorf("begin snapshot: %w", err)
	}

	n, err := tx.CopyFrom(ctx, snapshotTable, snapshotColumns, pgx.CopyFromRows(rows))
	if err != nil {
		rollback(ctx, tx)
		return uuid.Nil, fmt.Errorf("copy snapshot rows: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return uuid.Nil, fmt.Errorf("commit snapshot: %w", err)
	}

	log.Info().Str("run", runID.String()).Int64("rows", n).Msg("Stored translation snapshot")
	return runID, nil
}

// snapshotRows lays out the table in snapshotColumns order, skipping absent
// translations.
func snapshotRows(runID uuid.UUID, table *translation.Table, codes []string) [][]any {
	var rows [][]any
	for _, text := range table.Keys() {
		entry, _ := table.Lookup(text)
		hash := textutil.Hash(text)
		for _, code := range codes {
			if v, ok := entry.Get(code); ok {
				rows = append(rows, []any{runID, hash, text, code, v})
			}
		}
	}
	return rows
}

func rollback(ctx context.Context, tx pgx.Tx) {
	if err := tx.Rollback(ctx); err != nil {
		log.Warn().Err(err).Msg("Rollback snapshot failed")
	}
}
