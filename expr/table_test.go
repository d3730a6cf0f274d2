package expr

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/alecthomas/assert/v2"
)

func TestDefaultGrammarTable(t *testing.T) {
	table := DefaultGrammarTable()

	ct, ok := table.castType("signed")
	assert.True(t, ok)
	assert.Equal(t, " INTEGER", ct.Suffix)

	ct, ok = table.castType("DECIMAL")
	assert.True(t, ok)
	assert.Equal(t, 2, ct.Dims)

	_, ok = table.castType("varchar")
	assert.False(t, ok)

	unit, ok := table.unit("day")
	assert.True(t, ok)
	assert.Equal(t, "DAY", unit)

	_, ok = table.unit("fortnight")
	assert.False(t, ok)
}

func TestLoadGrammarTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "grammar.yaml")
	content := `units:
  - FORTNIGHT
  - DAY
`
	assert.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	table, err := LoadGrammarTable(path)
	assert.NoError(t, err)

	// the file overrides units and keeps the built-in cast types
	_, ok := table.unit("fortnight")
	assert.True(t, ok)
	_, ok = table.unit("month")
	assert.False(t, ok)
	_, ok = table.castType("decimal")
	assert.True(t, ok)
}

func TestLoadGrammarTableErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "not yaml", content: "\tcast_types: ["},
		{name: "missing name", content: "cast_types:\n  - dims: 1\n"},
		{name: "bad dims", content: "cast_types:\n  - name: BLOB\n    dims: 3\n"},
		{name: "empty unit", content: "units:\n  - ''\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "grammar.yaml")
			assert.NoError(t, os.WriteFile(path, []byte(tt.content), 0o644))
			_, err := LoadGrammarTable(path)
			assert.Error(t, err)
		})
	}
}

func TestLoadGrammarTableValidation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "grammar.yaml")
	assert.NoError(t, os.WriteFile(path, []byte("cast_types:\n  - name: BLOB\n    dims: 3\n"), 0o644))
	_, err := LoadGrammarTable(path)
	assert.IsError(t, err, ErrGrammarTable)
}

func TestLoadGrammarTableMissingFile(t *testing.T) {
	_, err := LoadGrammarTable(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestWithGrammarTable(t *testing.T) {
	table := &GrammarTable{
		CastTypes: []CastType{{Name: "UUID"}},
		Units:     []string{"FORTNIGHT"},
	}

	assert.Equal(t, `cast($.x,B"UUID")`,
		renderExpr(t, Document, "CAST(x AS UUID)", WithGrammarTable(table)))
	assert.Equal(t, `+($.d,interval(1,B"FORTNIGHT"))`,
		renderExpr(t, Document, "d + INTERVAL 1 fortnight", WithGrammarTable(table)))

	// the built-in sets no longer apply
	_, err := Parse(Document, "CAST(x AS SIGNED)", WithGrammarTable(table))
	assert.Equal(t, "Unexpected cast type", parseMsg(t, err))
	_, err = Parse(Document, "d + INTERVAL 1 DAY", WithGrammarTable(table))
	assert.Equal(t, "Expected interval unit", parseMsg(t, err))
}
