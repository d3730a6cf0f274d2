// Package corpus loads grammar test corpora from markdown files. A corpus
// file carries YAML front matter naming the grammar it exercises, GFM tables
// of input/expect (or input/error) rows for one-line cases, and "Case:"
// sections with fenced input and expectation blocks for inputs that do not
// fit a table cell. The loader only collects cases; Verify runs them through
// a caller-supplied Checker, so the file format stays independent of any one
// grammar.
package corpus

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
	"gopkg.in/yaml.v3"

	"github.com/shibukawa/xgram"
)

var (
	ErrFrontMatter = errors.New("invalid front matter")
	ErrCorpus      = errors.New("invalid corpus")
)

// Meta is the corpus front matter.
type Meta struct {
	Grammar string `yaml:"grammar"`
	Mode    string `yaml:"mode"`
	Title   string `yaml:"title"`
}

// Case is one corpus entry. Expect holds the canonical rendering for an
// input that must parse, Error the diagnostic message for an input that must
// fail; exactly one of the two is set.
type Case struct {
	Name   string
	Input  string
	Expect string
	Error  string
}

// Corpus is one loaded corpus file.
type Corpus struct {
	Path  string
	Meta  Meta
	Cases []Case
}

// Load reads and parses a single corpus file.
func Load(path string) (*Corpus, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	c, err := parse(string(raw))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	c.Path = path
	return c, nil
}

// LoadDir loads every .md file directly under dir, in lexical order.
func LoadDir(dir string) ([]*Corpus, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.md"))
	if err != nil {
		return nil, err
	}
	corpora := make([]*Corpus, 0, len(paths))
	for _, path := range paths {
		c, err := Load(path)
		if err != nil {
			return nil, err
		}
		corpora = append(corpora, c)
	}
	return corpora, nil
}

func parse(content string) (*Corpus, error) {
	meta, body, err := parseFrontMatter(content)
	if err != nil {
		return nil, err
	}
	if meta.Grammar == "" {
		return nil, fmt.Errorf("%w: front matter must name a grammar", ErrCorpus)
	}

	src := []byte(body)
	md := goldmark.New(goldmark.WithExtensions(extension.GFM))
	doc := md.Parser().Parse(text.NewReader(src))

	l := &loader{src: src}
	if err := l.walk(doc); err != nil {
		return nil, err
	}
	if err := l.flush(); err != nil {
		return nil, err
	}
	if len(l.cases) == 0 {
		return nil, fmt.Errorf("%w: no cases", ErrCorpus)
	}
	return &Corpus{Meta: meta, Cases: l.cases}, nil
}

// parseFrontMatter splits the leading YAML block from the markdown body.
// Unlike query templates, a corpus without front matter is useless, so a
// missing block is an error rather than an empty Meta.
func parseFrontMatter(content string) (Meta, string, error) {
	if !strings.HasPrefix(content, "---\n") {
		return Meta{}, "", fmt.Errorf("%w: missing leading '---' block", ErrFrontMatter)
	}
	end := strings.Index(content[4:], "\n---")
	if end == -1 {
		return Meta{}, "", fmt.Errorf("%w: unterminated '---' block", ErrFrontMatter)
	}
	end += 4

	var meta Meta
	dec := yaml.NewDecoder(strings.NewReader(content[4:end]))
	dec.KnownFields(true)
	if err := dec.Decode(&meta); err != nil && !errors.Is(err, io.EOF) {
		return Meta{}, "", fmt.Errorf("%w: %w", ErrFrontMatter, err)
	}
	return meta, content[end+4:], nil
}

type loader struct {
	src   []byte
	cases []Case

	// fenced-block case under construction, opened by a "Case:" heading
	pending  *Case
	hasInput bool
}

func (l *loader) walk(doc ast.Node) error {
	return ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *ast.Heading:
			if err := l.flush(); err != nil {
				return ast.WalkStop, err
			}
			if name, ok := strings.CutPrefix(nodeText(node, l.src), "Case:"); ok {
				l.pending = &Case{Name: strings.TrimSpace(name)}
			}
			return ast.WalkSkipChildren, nil
		case *extast.Table:
			if err := l.table(node); err != nil {
				return ast.WalkStop, err
			}
			return ast.WalkSkipChildren, nil
		case *ast.FencedCodeBlock:
			l.fence(node)
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
}

// flush closes the pending fenced-block case, if any.
func (l *loader) flush() error {
	if l.pending == nil {
		return nil
	}
	c := *l.pending
	l.pending = nil
	if !l.hasInput {
		return fmt.Errorf("%w: case %q has no input block", ErrCorpus, c.Name)
	}
	l.hasInput = false
	return l.add(c)
}

func (l *loader) add(c Case) error {
	if c.Name == "" {
		if c.Input == "" {
			c.Name = "empty input"
		} else {
			c.Name = c.Input
		}
	}
	if (c.Expect == "") == (c.Error == "") {
		return fmt.Errorf("%w: case %q needs exactly one of expect and error", ErrCorpus, c.Name)
	}
	l.cases = append(l.cases, c)
	return nil
}

// table collects one case per body row. Column roles come from the
// lowercased header cells; unknown columns are ignored so corpora can carry
// extra commentary columns.
func (l *loader) table(node *extast.Table) error {
	var cols []string
	return ast.Walk(node, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch row := n.(type) {
		case *extast.TableHeader:
			cols = cellTexts(row, l.src)
			for i := range cols {
				cols[i] = strings.ToLower(cols[i])
			}
			return ast.WalkSkipChildren, nil
		case *extast.TableRow:
			if len(cols) == 0 {
				return ast.WalkSkipChildren, nil
			}
			cells := cellTexts(row, l.src)
			var c Case
			hasInput := false
			for i, col := range cols {
				if i >= len(cells) {
					break
				}
				switch col {
				case "name":
					c.Name = cells[i]
				case "input":
					c.Input = cells[i]
					hasInput = true
				case "expect":
					c.Expect = cells[i]
				case "error":
					c.Error = cells[i]
				}
			}
			if !hasInput {
				return ast.WalkStop, fmt.Errorf("%w: table without an input column", ErrCorpus)
			}
			if err := l.add(c); err != nil {
				return ast.WalkStop, err
			}
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
}

func (l *loader) fence(node *ast.FencedCodeBlock) {
	if l.pending == nil {
		return
	}
	content := blockText(node, l.src)
	switch string(node.Language(l.src)) {
	case "input":
		l.pending.Input = content
		l.hasInput = true
	case "expect":
		l.pending.Expect = content
	case "error":
		l.pending.Error = content
	}
}

// nodeText collects the plain text of an inline subtree. Code spans decode
// to their inner text, so cells can quote grammar snippets verbatim.
func nodeText(node ast.Node, src []byte) string {
	var sb strings.Builder
	_ = ast.Walk(node, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch t := n.(type) {
		case *ast.Text:
			sb.Write(src[t.Segment.Start:t.Segment.Stop])
		case *ast.String:
			sb.Write(t.Value)
		case *ast.AutoLink:
			// the GFM linkify pass turns URL- and email-shaped cell text
			// into leaf links; recover the raw text
			sb.Write(t.Label(src))
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(sb.String())
}

func cellTexts(row ast.Node, src []byte) []string {
	var cells []string
	for cell := row.FirstChild(); cell != nil; cell = cell.NextSibling() {
		cells = append(cells, nodeText(cell, src))
	}
	return cells
}

// blockText joins the raw lines of a fenced block, without the trailing
// newline of the last line.
func blockText(node *ast.FencedCodeBlock, src []byte) string {
	var sb strings.Builder
	lines := node.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		sb.Write(src[seg.Start:seg.Stop])
	}
	return strings.TrimSuffix(sb.String(), "\n")
}

// Checker parses one input and returns its canonical rendering.
type Checker func(input string) (string, error)

// Mismatch is one failed case. Got holds what the checker actually produced,
// a rendering or a diagnostic message.
type Mismatch struct {
	Case Case
	Got  string
}

// Verify runs every case through check. Error cases compare the diagnostic
// message of the returned error, expect cases the rendering.
func (c *Corpus) Verify(check Checker) []Mismatch {
	var bad []Mismatch
	for _, tc := range c.Cases {
		got, err := check(tc.Input)
		switch {
		case tc.Error != "":
			if err == nil {
				bad = append(bad, Mismatch{Case: tc, Got: "parsed as " + got})
			} else if msg := Message(err); msg != tc.Error {
				bad = append(bad, Mismatch{Case: tc, Got: msg})
			}
		case err != nil:
			bad = append(bad, Mismatch{Case: tc, Got: "error: " + Message(err)})
		case got != tc.Expect:
			bad = append(bad, Mismatch{Case: tc, Got: got})
		}
	}
	return bad
}

// Message extracts the bare diagnostic from a parse error, without the
// seen/ahead context decoration.
func Message(err error) string {
	var xe *xgram.Error
	if errors.As(err, &xe) {
		return xe.Err.Error()
	}
	return err.Error()
}
