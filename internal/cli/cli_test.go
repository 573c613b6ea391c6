package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

const esCatalog = `{
    "menu": {
        "title": "Bienvenido",
        "steps": ["Inserte la tarjeta", "Introduzca el PIN"]
    },
    "salir": "Salir",
    "nuevo": "Texto nuevo"
}`

const testPolicy = `
source_language: es
languages:
  - {code: es, tag: es_ES}
  - {code: en, tag: en_UK}
  - {code: fr, tag: fr_FR}
ticket: P00027789
overrides: []
`

type fixture struct {
	dir      string
	catalog  string
	workbook string
	policy   string
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	for _, key := range []string{"POLICY_FILE", "WORKER_COUNT", "SHEET_NAME", "SNAPSHOT_PATH", "PENDING_DIR", "DATABASE_URL", "METRICS_FILE"} {
		t.Setenv(key, "")
	}

	dir := t.TempDir()
	fx := fixture{
		dir:      dir,
		catalog:  filepath.Join(dir, "es.json"),
		workbook: filepath.Join(dir, "literales.xlsx"),
		policy:   filepath.Join(dir, "policy.yaml"),
	}
	require.NoError(t, os.WriteFile(fx.catalog, []byte(esCatalog), 0644))
	require.NoError(t, os.WriteFile(fx.policy, []byte(testPolicy), 0644))

	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, f.SetSheetName(f.GetSheetName(0), "Cajeros"))
	rows := [][]any{
		{"CODIGO Literal", "Texto a traducir en castellano(es_ES)", "Texto traducido a inglés(en_UK)", "Texto traducido a francés(fr_FR)"},
		{"L1", "Bienvenido", "Welcome", "Bienvenue"},
		{"L2", "Inserte la tarjeta", "Insert card", "Insérez la carte"},
		{"L3", "Introduzca el PIN", "Enter PIN", ""},
		{"L4", "Salir", "Exit", "Sortir"},
		{"L5", "Obsoleto", "Old", "Vieux"},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Cajeros", cell, &row))
	}
	require.NoError(t, f.SaveAs(fx.workbook))

	return fx
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestImportCommand(t *testing.T) {
	fx := newFixture(t)
	outDir := filepath.Join(fx.dir, "lang")
	reports := filepath.Join(fx.dir, "reports")
	snapshotPath := filepath.Join(fx.dir, "archivos", "dataVersion.json")
	metricsPath := filepath.Join(fx.dir, "catalog_sync.prom")

	_, err := execute(t, "import",
		"--policy", fx.policy,
		"--snapshot", snapshotPath,
		"--pending-dir", reports,
		"--metrics-file", metricsPath,
		fx.catalog, fx.workbook, outDir)
	require.NoError(t, err)

	en, err := os.ReadFile(filepath.Join(outDir, "en.json"))
	require.NoError(t, err)
	assert.Equal(t, `{
    "menu": {
        "title": "Welcome",
        "steps": [
            "Insert card",
            "Enter PIN"
        ]
    },
    "salir": "Exit"
}
`, string(en))

	fr, err := os.ReadFile(filepath.Join(outDir, "fr.json"))
	require.NoError(t, err)
	assert.Contains(t, string(fr), `"Insérez la carte"`)
	assert.NotContains(t, string(fr), "PIN")

	_, err = os.Stat(filepath.Join(outDir, "es.json"))
	assert.True(t, os.IsNotExist(err), "source language is not written")

	snap, err := os.ReadFile(snapshotPath)
	require.NoError(t, err)
	assert.Contains(t, string(snap), `"Obsoleto"`)

	matches, err := filepath.Glob(filepath.Join(reports, "Traducciones_*.xlsx"))
	require.NoError(t, err)
	require.Len(t, matches, 1)
	f, err := excelize.OpenFile(matches[0])
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("textos")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"P00027789", "nuevo", "Texto nuevo"}, rows[1])

	prom, err := os.ReadFile(metricsPath)
	require.NoError(t, err)
	assert.Contains(t, string(prom), "catalog_sync_pending_texts 1")
}

func TestCheckCommand(t *testing.T) {
	fx := newFixture(t)

	_, err := execute(t, "check", "--policy", fx.policy, fx.catalog, fx.workbook)
	require.NoError(t, err)

	_, err = execute(t, "check", "--strict", "--policy", fx.policy, fx.catalog, fx.workbook)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 pending, 1 incomplete, 1 not found")

	entries, err := os.ReadDir(fx.dir)
	require.NoError(t, err)
	assert.Len(t, entries, 3, "check writes nothing")
}

func TestCheckCommand_UnknownOverride(t *testing.T) {
	fx := newFixture(t)

	_, err := execute(t, "check", fx.catalog, fx.workbook)
	require.Error(t, err, "default overrides are not in the test catalog")
	assert.Contains(t, err.Error(), "contacto.cancelacion")
}

func TestIndexCommand(t *testing.T) {
	fx := newFixture(t)

	out, err := execute(t, "index", fx.catalog)
	require.NoError(t, err)

	assert.Contains(t, out, `"text": "Inserte la tarjeta"`)
	assert.Contains(t, out, `"menu.steps.0"`)
}

func TestImportCommand_Args(t *testing.T) {
	_, err := execute(t, "import", "only-one")
	assert.Error(t, err)
}

func TestCheckCommand_ResolvesSourceInDirectory(t *testing.T) {
	fx := newFixture(t)

	_, err := execute(t, "check", "--policy", fx.policy, fx.dir, fx.workbook)
	require.NoError(t, err)
}
