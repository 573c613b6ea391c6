package filewalker

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0644))
}

func TestWalker_Walk(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "es.json"))
	touch(t, filepath.Join(root, "en.json"))
	touch(t, filepath.Join(root, "legacy", "fr.YML"))
	touch(t, filepath.Join(root, "README.md"))

	entries, err := NewWalker().Walk(root)
	require.NoError(t, err)

	var names []string
	for _, e := range entries {
		names = append(names, e.Name)
	}
	assert.Equal(t, []string{"en", "es", "fr"}, names)
	assert.Equal(t, ".yml", entries[2].Ext)
	assert.Equal(t, ".yaml", entries[2].Parser.Ext())
}

func TestWalker_WalkRejectsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "es.json")
	touch(t, path)

	_, err := NewWalker().Walk(path)
	assert.Error(t, err)
}

func TestWalker_Resolve(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(root, "lang", "es.json")
	touch(t, src)
	touch(t, filepath.Join(root, "lang", "en.json"))

	w := NewWalker()

	got, err := w.Resolve(root, "es")
	require.NoError(t, err)
	assert.Equal(t, src, got)

	got, err = w.Resolve(src, "ignored")
	require.NoError(t, err)
	assert.Equal(t, src, got)

	_, err = w.Resolve(root, "pt")
	assert.Error(t, err)

	_, err = w.Resolve(filepath.Join(root, "missing"), "es")
	assert.Error(t, err)
}
