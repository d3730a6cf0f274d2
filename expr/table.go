package expr

import (
	"errors"
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
)

// ErrGrammarTable reports an invalid grammar table definition.
var ErrGrammarTable = errors.New("invalid grammar table")

// CastType describes one target type accepted inside CAST(... AS type).
// The parser spells the type back as Name plus any parsed dimension and
// the Suffix, so "CAST(x AS unsigned int)" reports "UNSIGNED INTEGER".
type CastType struct {
	// Name is the type word as it appears after AS, matched ASCII
	// case-insensitively.
	Name string `yaml:"name"`
	// Dims is how many "(N[,M])" dimension values the type accepts:
	// 0 for none, 1 for "(N)", 2 for "(N,M)". The dimension is always
	// optional in the input.
	Dims int `yaml:"dims,omitempty"`
	// Absorbs lists words consumed after the name without changing the
	// reported type, such as the INTEGER in "UNSIGNED INTEGER".
	Absorbs []string `yaml:"absorbs,omitempty"`
	// Suffix is appended to the reported type string.
	Suffix string `yaml:"suffix,omitempty"`
}

// GrammarTable holds the word sets the expression grammar consults at
// parse time. The zero value is not usable; start from DefaultGrammarTable
// or LoadGrammarTable.
type GrammarTable struct {
	CastTypes []CastType `yaml:"cast_types"`
	// Units are the interval units accepted after INTERVAL expr.
	Units []string `yaml:"units"`
}

// DefaultGrammarTable returns the built-in table matching the X DevAPI
// expression dialect.
func DefaultGrammarTable() *GrammarTable {
	return &GrammarTable{
		CastTypes: []CastType{
			{Name: "BINARY", Dims: 1},
			{Name: "CHAR", Dims: 1},
			{Name: "DECIMAL", Dims: 2},
			{Name: "SIGNED", Suffix: " INTEGER", Absorbs: []string{"INTEGER", "INT"}},
			{Name: "UNSIGNED", Suffix: " INTEGER", Absorbs: []string{"INTEGER", "INT"}},
			{Name: "DATE"},
			{Name: "DATETIME"},
			{Name: "TIME"},
			{Name: "INTEGER"},
			{Name: "JSON"},
		},
		Units: []string{
			"MICROSECOND", "SECOND", "MINUTE", "HOUR",
			"DAY", "WEEK", "MONTH", "QUARTER", "YEAR",
		},
	}
}

// LoadGrammarTable reads a grammar table from a YAML file. A section left
// out of the file keeps the built-in defaults, so a file can override just
// the interval units or just the cast types.
func LoadGrammarTable(path string) (*GrammarTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read grammar table: %w", err)
	}

	var table GrammarTable
	if err := yaml.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("failed to parse grammar table: %w", err)
	}

	def := DefaultGrammarTable()
	if table.CastTypes == nil {
		table.CastTypes = def.CastTypes
	}
	if table.Units == nil {
		table.Units = def.Units
	}
	if err := table.validate(); err != nil {
		return nil, err
	}
	return &table, nil
}

func (t *GrammarTable) validate() error {
	for i, ct := range t.CastTypes {
		if ct.Name == "" {
			return fmt.Errorf("%w: cast_types[%d]: name is required", ErrGrammarTable, i)
		}
		if ct.Dims < 0 || ct.Dims > 2 {
			return fmt.Errorf("%w: cast type '%s': dims must be 0, 1 or 2, got %d", ErrGrammarTable, ct.Name, ct.Dims)
		}
	}
	for i, u := range t.Units {
		if u == "" {
			return fmt.Errorf("%w: units[%d]: unit is required", ErrGrammarTable, i)
		}
	}
	return nil
}

// castType looks up word among the cast types, ASCII case-insensitively.
func (t *GrammarTable) castType(word string) (CastType, bool) {
	up := asciiUpper(word)
	for _, ct := range t.CastTypes {
		if asciiUpper(ct.Name) == up {
			return ct, true
		}
	}
	return CastType{}, false
}

// unit looks up word among the interval units, ASCII case-insensitively,
// and returns its canonical spelling from the table.
func (t *GrammarTable) unit(word string) (string, bool) {
	up := asciiUpper(word)
	for _, u := range t.Units {
		if asciiUpper(u) == up {
			return u, true
		}
	}
	return "", false
}
