package corpus

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alecthomas/assert/v2"

	"github.com/shibukawa/xgram"
)

func writeCorpus(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	assert.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadTables(t *testing.T) {
	content := "---\n" +
		"grammar: expr\n" +
		"mode: document\n" +
		"title: Sample expressions\n" +
		"---\n" +
		"\n" +
		"# Sample expressions\n" +
		"\n" +
		"Prose between sections is ignored.\n" +
		"\n" +
		"## Cases\n" +
		"\n" +
		"| input | expect |\n" +
		"|-------|--------|\n" +
		"| `a > 5` | >($.a,5) |\n" +
		"| 1 + 2 | +(1,2) |\n" +
		"\n" +
		"## Failures\n" +
		"\n" +
		"| name | input | error |\n" +
		"|------|-------|-------|\n" +
		"| dangling operator | a + | Expected an expression |\n"

	path := writeCorpus(t, t.TempDir(), "expr.md", content)
	c, err := Load(path)
	assert.NoError(t, err)
	assert.Equal(t, path, c.Path)
	assert.Equal(t, Meta{Grammar: "expr", Mode: "document", Title: "Sample expressions"}, c.Meta)
	assert.Equal(t, []Case{
		{Name: "a > 5", Input: "a > 5", Expect: ">($.a,5)"},
		{Name: "1 + 2", Input: "1 + 2", Expect: "+(1,2)"},
		{Name: "dangling operator", Input: "a +", Error: "Expected an expression"},
	}, c.Cases)
}

func TestLoadLinkifiedCells(t *testing.T) {
	// the GFM linkify pass must not eat URL- or email-shaped cells
	content := "---\n" +
		"grammar: uri\n" +
		"---\n" +
		"\n" +
		"| input | expect |\n" +
		"|-------|--------|\n" +
		"| user@host.example.com | user=user; host(0)=host.example.com |\n"

	c, err := Load(writeCorpus(t, t.TempDir(), "uri.md", content))
	assert.NoError(t, err)
	assert.Equal(t, "user@host.example.com", c.Cases[0].Input)
}

func TestLoadFencedCases(t *testing.T) {
	content := "---\n" +
		"grammar: expr\n" +
		"---\n" +
		"\n" +
		"# Fenced cases\n" +
		"\n" +
		"## Case: disjunction precedence\n" +
		"\n" +
		"~~~input\n" +
		"a OR b AND c\n" +
		"~~~\n" +
		"\n" +
		"~~~expect\n" +
		"||($.a,&&($.b,$.c))\n" +
		"~~~\n" +
		"\n" +
		"## Case: juxtaposed terms\n" +
		"\n" +
		"~~~input\n" +
		"a b\n" +
		"~~~\n" +
		"\n" +
		"~~~error\n" +
		"Unexpected characters after expression\n" +
		"~~~\n" +
		"\n" +
		"## Notes\n" +
		"\n" +
		"Closing prose, and a stray block that belongs to no case:\n" +
		"\n" +
		"~~~input\n" +
		"ignored\n" +
		"~~~\n"

	c, err := Load(writeCorpus(t, t.TempDir(), "fenced.md", content))
	assert.NoError(t, err)
	assert.Equal(t, []Case{
		{Name: "disjunction precedence", Input: "a OR b AND c", Expect: "||($.a,&&($.b,$.c))"},
		{Name: "juxtaposed terms", Input: "a b", Error: "Unexpected characters after expression"},
	}, c.Cases)
}

func TestLoadMultilineInput(t *testing.T) {
	content := "---\n" +
		"grammar: expr\n" +
		"---\n" +
		"\n" +
		"## Case: document literal\n" +
		"\n" +
		"~~~input\n" +
		"{\"name\": \"Joe\",\n" +
		" \"tags\": [1, 2]}\n" +
		"~~~\n" +
		"\n" +
		"~~~expect\n" +
		"{\"name\":\"Joe\",\"tags\":[1,2]}\n" +
		"~~~\n"

	c, err := Load(writeCorpus(t, t.TempDir(), "multi.md", content))
	assert.NoError(t, err)
	assert.Equal(t, "{\"name\": \"Joe\",\n \"tags\": [1, 2]}", c.Cases[0].Input)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    error
	}{
		{
			name:    "missing front matter",
			content: "# No metadata\n\n| input | expect |\n|--|--|\n| a | a |\n",
			want:    ErrFrontMatter,
		},
		{
			name:    "unterminated front matter",
			content: "---\ngrammar: expr\n",
			want:    ErrFrontMatter,
		},
		{
			name:    "unknown metadata key",
			content: "---\ngrammar: expr\nflavour: spicy\n---\n\n| input | expect |\n|--|--|\n| a | a |\n",
			want:    ErrFrontMatter,
		},
		{
			name:    "missing grammar",
			content: "---\ntitle: Untyped\n---\n\n| input | expect |\n|--|--|\n| a | a |\n",
			want:    ErrCorpus,
		},
		{
			name:    "no cases",
			content: "---\ngrammar: expr\n---\n\nOnly prose here.\n",
			want:    ErrCorpus,
		},
		{
			name:    "expect and error together",
			content: "---\ngrammar: expr\n---\n\n| input | expect | error |\n|--|--|--|\n| a | a | boom |\n",
			want:    ErrCorpus,
		},
		{
			name:    "table without input column",
			content: "---\ngrammar: expr\n---\n\n| name | expect |\n|--|--|\n| x | a |\n",
			want:    ErrCorpus,
		},
		{
			name:    "fenced case without input",
			content: "---\ngrammar: expr\n---\n\n## Case: hollow\n\n~~~expect\na\n~~~\n",
			want:    ErrCorpus,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeCorpus(t, t.TempDir(), "bad.md", tt.content))
			assert.IsError(t, err, tt.want)
		})
	}
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	one := "---\ngrammar: expr\n---\n\n| input | expect |\n|--|--|\n| 1 | 1 |\n"
	two := "---\ngrammar: uri\n---\n\n| input | expect |\n|--|--|\n| host | host(0)=host |\n"
	writeCorpus(t, dir, "b_uri.md", two)
	writeCorpus(t, dir, "a_expr.md", one)
	writeCorpus(t, dir, "notes.txt", "not a corpus")

	corpora, err := LoadDir(dir)
	assert.NoError(t, err)
	assert.Equal(t, 2, len(corpora))
	assert.Equal(t, "expr", corpora[0].Meta.Grammar)
	assert.Equal(t, "uri", corpora[1].Meta.Grammar)
}

func TestVerify(t *testing.T) {
	c := &Corpus{Cases: []Case{
		{Name: "renders", Input: "a", Expect: "A"},
		{Name: "fails", Input: "b", Error: "boom"},
	}}

	upper := func(in string) (string, error) {
		if in == "b" {
			return "", errors.New("boom")
		}
		return strings.ToUpper(in), nil
	}
	assert.Equal(t, 0, len(c.Verify(upper)))

	lenient := func(in string) (string, error) {
		return strings.ToUpper(in), nil
	}
	bad := c.Verify(lenient)
	assert.Equal(t, 1, len(bad))
	assert.Equal(t, "fails", bad[0].Case.Name)
	assert.Equal(t, "parsed as B", bad[0].Got)

	broken := func(in string) (string, error) {
		return "", errors.New("kaput")
	}
	bad = c.Verify(broken)
	assert.Equal(t, 2, len(bad))
	assert.Equal(t, "error: kaput", bad[0].Got)
	assert.Equal(t, "kaput", bad[1].Got)
}

func TestMessage(t *testing.T) {
	err := xgram.NewError(xgram.Syntax, errors.New("Expected ')'"), "f(1", 3)
	assert.Equal(t, "Expected ')'", Message(err))
	assert.Equal(t, "plain", Message(errors.New("plain")))
}
