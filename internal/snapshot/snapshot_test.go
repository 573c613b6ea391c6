package snapshot

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"catalog-sync/internal/textutil"
	"catalog-sync/internal/translation"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTable() *translation.Table {
	t := translation.NewTable()
	t.Set("Bienvenido", translation.Entry{"en": "Welcome", "fr": "Bienvenue"})
	t.Set("Salir", translation.Entry{"en": "Exit", "fr": "  "})
	return t
}

func TestWriteJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "archivos", "dataVersion.json")

	require.NoError(t, WriteJSON(path, sampleTable(), []string{"fr", "en"}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	want := `{
    "Bienvenido": {
        "fr": "Bienvenue",
        "en": "Welcome"
    },
    "Salir": {
        "en": "Exit"
    }
}
`
	assert.Equal(t, want, string(data))
}

func TestStore_EnsureSchema(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS translation_snapshots").
		WillReturnResult(pgxmock.NewResult("CREATE", 0))

	require.NoError(t, NewStore(mock).EnsureSchema(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_Save(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(mock pgxmock.PgxPoolIface)
		wantErr bool
	}{
		{
			name: "copies present translations in one transaction",
			setup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectBegin()
				mock.ExpectCopyFrom(pgx.Identifier{"translation_snapshots"},
					[]string{"run_id", "hash", "source_text", "language", "translated_text"}).
					WillReturnResult(3)
				mock.ExpectCommit()
			},
		},
		{
			name: "begin fails",
			setup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectBegin().WillReturnError(errors.New("connection refused"))
			},
			wantErr: true,
		},
		{
			name: "copy fails rolls back",
			setup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectBegin()
				mock.ExpectCopyFrom(pgx.Identifier{"translation_snapshots"},
					[]string{"run_id", "hash", "source_text", "language", "translated_text"}).
					WillReturnError(errors.New("disk full"))
				mock.ExpectRollback()
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			require.NoError(t, err)
			defer mock.Close()
			tt.setup(mock)

			runID, err := NewStore(mock).Save(context.Background(), sampleTable(), []string{"en", "fr"})

			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, uuid.Nil, runID)
			} else {
				require.NoError(t, err)
				assert.NotEqual(t, uuid.Nil, runID)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestSnapshotRows(t *testing.T) {
	runID := uuid.New()

	rows := snapshotRows(runID, sampleTable(), []string{"en", "fr"})

	assert.Equal(t, [][]any{
		{runID, textutil.Hash("Bienvenido"), "Bienvenido", "en", "Welcome"},
		{runID, textutil.Hash("Bienvenido"), "Bienvenido", "fr", "Bienvenue"},
		{runID, textutil.Hash("Salir"), "Salir", "en", "Exit"},
	}, rows)
}
