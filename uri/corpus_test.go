package uri_test

import (
	"path/filepath"
	"testing"

	"github.com/alecthomas/assert/v2"

	"github.com/shibukawa/xgram/corpus"
	"github.com/shibukawa/xgram/format"
	"github.com/shibukawa/xgram/uri"
)

// TestCorpus replays the shared connection-string corpora. The checker
// renders the callback stream the same way the check command does.
func TestCorpus(t *testing.T) {
	corpora, err := corpus.LoadDir(filepath.Join("..", "testdata", "corpus"))
	assert.NoError(t, err)

	check := func(input string) (string, error) {
		rec := format.NewURI()
		if err := uri.ParseConnString(input, rec); err != nil {
			return "", err
		}
		return rec.String(), nil
	}

	cases := 0
	for _, c := range corpora {
		if c.Meta.Grammar != "uri" {
			continue
		}
		t.Run(filepath.Base(c.Path), func(t *testing.T) {
			for _, m := range c.Verify(check) {
				t.Errorf("case %q: input %q: got %q", m.Case.Name, m.Case.Input, m.Got)
			}
		})
		cases += len(c.Cases)
	}
	assert.True(t, cases > 0)
}
