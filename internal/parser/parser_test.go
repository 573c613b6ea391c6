package parser

import (
	"os"
	"path/filepath"
	"testing"

	"catalog-sync/internal/catalog"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleJSON = `{
  "zeta": "Último",
  "menu": {
    "title": "Bienvenido <b>cliente</b>",
    "steps": ["Inserte la tarjeta", 3, "Introduzca el PIN"],
    "enabled": true,
    "empty": null
  },
  "alpha": "Primero"
}`

func TestJSONParser_DecodeKeepsOrder(t *testing.T) {
	root, err := NewJSONParser().Decode([]byte(sampleJSON))
	require.NoError(t, err)

	assert.Equal(t, []string{"zeta", "menu", "alpha"}, root.Keys())

	menu, ok := root.Get("menu")
	require.True(t, ok)
	assert.Equal(t, []string{"title", "steps"}, menu.(*catalog.Map).Keys())

	steps, ok := catalog.Lookup(root, "menu.steps")
	require.True(t, ok)
	assert.Equal(t, []string{"0", "2"}, steps.(*catalog.Map).Keys())
}

func TestJSONParser_DecodeErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"array root", `["a"]`},
		{"string root", `"a"`},
		{"truncated", `{"a": {"b": "c"}`},
		{"trailing", `{"a": "b"} {"c": "d"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewJSONParser().Decode([]byte(tt.input))
			assert.Error(t, err)
		})
	}
}

func TestJSONParser_Encode(t *testing.T) {
	list := catalog.NewList()
	list.Set(0, catalog.Leaf("One"))
	list.Set(2, catalog.Leaf("Three"))
	inner := catalog.NewMap()
	inner.Set("steps", list)
	inner.Set("none", catalog.NewMap())
	root := catalog.NewMap()
	root.Set("title", catalog.Leaf(`Welcome <b>"client"</b> & co`))
	root.Set("menu", inner)

	out, err := NewJSONParser().Encode(root)
	require.NoError(t, err)

	want := `{
    "title": "Welcome <b>\"client\"</b> & co",
    "menu": {
        "steps": [
            "One",
            null,
            "Three"
        ],
        "none": {}
    }
}
`
	assert.Equal(t, want, string(out))
}

func TestJSONParser_RoundTripPreservesOrder(t *testing.T) {
	p := NewJSONParser()
	root, err := p.Decode([]byte(sampleJSON))
	require.NoError(t, err)

	out, err := p.Encode(root)
	require.NoError(t, err)
	again, err := p.Decode(out)
	require.NoError(t, err)

	assert.Equal(t, root.Keys(), again.Keys())
	title, ok := catalog.Lookup(again, "menu.title")
	require.True(t, ok)
	assert.Equal(t, catalog.Leaf("Bienvenido <b>cliente</b>"), title)
}

const sampleYAML = `
zeta: Último
menu:
  title: Bienvenido
  steps:
    - Inserte la tarjeta
    - 42
    - Introduzca el PIN
  enabled: true
alpha: "007"
`

func TestYAMLParser_DecodeKeepsOrder(t *testing.T) {
	root, err := NewYAMLParser().Decode([]byte(sampleYAML))
	require.NoError(t, err)

	assert.Equal(t, []string{"zeta", "menu", "alpha"}, root.Keys())
	steps, ok := catalog.Lookup(root, "menu.steps")
	require.True(t, ok)
	assert.Equal(t, []string{"0", "2"}, steps.(*catalog.Map).Keys())
	alpha, ok := root.Get("alpha")
	require.True(t, ok)
	assert.Equal(t, catalog.Leaf("007"), alpha)
}

func TestYAMLParser_RootMustBeMapping(t *testing.T) {
	_, err := NewYAMLParser().Decode([]byte("- a\n- b\n"))
	assert.Error(t, err)

	root, err := NewYAMLParser().Decode(nil)
	require.NoError(t, err)
	assert.Equal(t, 0, root.Len())
}

func TestYAMLParser_EncodeRoundTrip(t *testing.T) {
	list := catalog.NewList()
	list.Set(0, catalog.Leaf("One"))
	list.Set(1, catalog.Leaf("123"))
	root := catalog.NewMap()
	root.Set("b", catalog.Leaf("yes"))
	root.Set("a", list)

	p := NewYAMLParser()
	out, err := p.Encode(root)
	require.NoError(t, err)

	again, err := p.Decode(out)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a"}, again.Keys())
	b, _ := again.Get("b")
	assert.Equal(t, catalog.Leaf("yes"), b)
	n, ok := catalog.Lookup(again, "a.1")
	require.True(t, ok)
	assert.Equal(t, catalog.Leaf("123"), n)
}

func TestForPath(t *testing.T) {
	p, err := ForPath("lang/es.JSON")
	require.NoError(t, err)
	assert.Equal(t, ".json", p.Ext())

	p, err = ForPath("lang/es.yml")
	require.NoError(t, err)
	assert.Equal(t, ".yaml", p.Ext())

	_, err = ForPath("lang/es.po")
	require.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestParseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "es.json")
	require.NoError(t, os.WriteFile(path, []byte(sampleJSON), 0644))

	root, p, err := ParseFile(path)
	require.NoError(t, err)
	assert.Equal(t, ".json", p.Ext())
	assert.Equal(t, 3, root.Len())

	_, _, err = ParseFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
