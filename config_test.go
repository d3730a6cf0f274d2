package xgram

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/alecthomas/assert/v2"
)

func TestLoadConfigDefaults(t *testing.T) {
	// Missing file falls back to defaults.
	config, err := LoadConfig(filepath.Join(t.TempDir(), "xgram.yaml"))
	assert.NoError(t, err)
	assert.Equal(t, "document", config.Mode)
	assert.Equal(t, "text", config.Output.Format)
	assert.Equal(t, "auto", config.Output.Color)
	assert.False(t, config.URI.RequireScheme)
}

func TestLoadConfigFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "xgram.yaml")
	content := `mode: table
grammar_table: ${XGRAM_TEST_TABLE_DIR}/grammar.yaml
uri:
  require_scheme: true
output:
  format: xml
  color: never
`
	assert.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	t.Setenv("XGRAM_TEST_TABLE_DIR", "/etc/xgram")

	config, err := LoadConfig(path)
	assert.NoError(t, err)
	assert.Equal(t, "table", config.Mode)
	assert.Equal(t, "/etc/xgram/grammar.yaml", config.GrammarTable)
	assert.True(t, config.URI.RequireScheme)
	assert.Equal(t, "xml", config.Output.Format)
	assert.Equal(t, "never", config.Output.Color)
}

func TestLoadConfigValidation(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"invalid mode", "mode: json\n"},
		{"invalid format", "output:\n  format: csv\n"},
		{"invalid color", "output:\n  color: sometimes\n"},
		{"unknown field", "dialect: mysql\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "xgram.yaml")
			assert.NoError(t, os.WriteFile(path, []byte(tt.content), 0o644))

			_, err := LoadConfig(path)
			assert.Error(t, err)
		})
	}
}
