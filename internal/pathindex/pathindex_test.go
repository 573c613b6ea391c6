package pathindex

import (
	"testing"

	"catalog-sync/internal/catalog"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleCatalog() *catalog.Map {
	steps := catalog.NewMap()
	steps.Set("0", catalog.Leaf("Insert card"))
	steps.Set("1", catalog.Leaf("Enter PIN"))

	menu := catalog.NewMap()
	menu.Set("title", catalog.Leaf("Welcome"))
	menu.Set("steps", steps)
	menu.Set("retry", catalog.Leaf("Enter PIN"))

	root := catalog.NewMap()
	root.Set("menu", menu)
	root.Set("greeting", catalog.Leaf("Welcome"))
	return root
}

func TestBuild_RecordsEveryLeafInTraversalOrder(t *testing.T) {
	idx := Build(sampleCatalog())

	assert.Equal(t, []string{"Welcome", "Insert card", "Enter PIN"}, idx.Texts())
	assert.Equal(t, 3, idx.Len())
	assert.Equal(t, 5, idx.Leaves())

	paths, ok := idx.Paths("Welcome")
	require.True(t, ok)
	assert.Equal(t, []catalog.Path{"menu.title", "greeting"}, paths)

	paths, ok = idx.Paths("Enter PIN")
	require.True(t, ok)
	assert.Equal(t, []catalog.Path{"menu.steps.1", "menu.retry"}, paths)

	pos, ok := idx.Position("menu.retry")
	require.True(t, ok)
	assert.Equal(t, 3, pos)
	_, ok = idx.Position("menu")
	assert.False(t, ok)
}

func TestBuild_Idempotent(t *testing.T) {
	root := sampleCatalog()

	first := Build(root)
	second := Build(root)

	assert.Equal(t, first.Entries(), second.Entries())
}

func TestBuild_ListBranchesSkipGaps(t *testing.T) {
	items := catalog.NewList()
	items.Set(0, catalog.Leaf("a"))
	items.Set(2, catalog.Leaf("c"))
	root := catalog.NewMap()
	root.Set("items", items)

	idx := Build(root)

	paths, ok := idx.Paths("c")
	require.True(t, ok)
	assert.Equal(t, []catalog.Path{"items.2"}, paths)
	assert.Equal(t, 2, idx.Leaves())
}

func TestBuild_EmptyAndNil(t *testing.T) {
	assert.Equal(t, 0, Build(nil).Len())
	assert.Equal(t, 0, Build(catalog.NewMap()).Len())
	assert.False(t, Build(catalog.NewMap()).Contains("x"))
}

func TestBuild_LanguageCodeKeysAreLeaves(t *testing.T) {
	root := catalog.NewMap()
	root.Set("en", catalog.Leaf("English"))

	idx := Build(root)

	assert.True(t, idx.Contains("English"))
}
