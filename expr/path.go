package expr

import (
	"math"
	"strconv"

	"github.com/shibukawa/xgram"
	"github.com/shibukawa/xgram/tokenizer"
)

// parseDocField parses a document field: "$" followed by an optional
// path, or a bare path. With prefix set the dollar sign is mandatory, the
// form used after "->" and for free standing "$..." references.
func (p *Parser) parseDocField(prefix bool) (xgram.Path, error) {
	if _, ok := p.consumeIf(tokenizer.DOLLAR); ok {
		path, ok, err := p.parseDocumentPath(true)
		if err != nil {
			return nil, err
		}
		if !ok {
			// "$" alone addresses the whole document
			return xgram.Path{}, nil
		}
		return path, nil
	}
	if prefix {
		return nil, p.fail("Expected '$' to start a document path")
	}
	path, ok, err := p.parseDocumentPath(false)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, p.fail("Expected a document path")
	}
	return path, nil
}

// parseDocumentPath parses a sequence of member, index and wildcard
// steps. With requireDot set the first member step needs a leading dot,
// as it does after "$". ok is false, with nothing consumed, when no path
// starts here.
func (p *Parser) parseDocumentPath(requireDot bool) (xgram.Path, bool, error) {
	var path xgram.Path

	doubleStar := false
	if _, ok := p.consumeIf(tokenizer.DOUBLESTAR); ok {
		path = append(path, xgram.PathStep{Kind: xgram.AnyPath})
		doubleStar = true
	} else if step, ok, err := p.parseDotMember(); err != nil {
		return nil, false, err
	} else if ok {
		path = append(path, step)
	} else if requireDot {
		return nil, false, nil
	} else if step, ok := p.parseMember(); ok {
		path = append(path, step)
	} else {
		return nil, false, nil
	}

	more, err := p.parseDocumentPath1(&path)
	if err != nil {
		return nil, false, err
	}
	if doubleStar && !more {
		return nil, false, p.fail("Document path ending in '**'")
	}
	return path, true, nil
}

// parseDocumentPath1 parses the continuation of a path: any run of "**",
// ".member" and "[index]" steps. It reports whether a step was added.
func (p *Parser) parseDocumentPath1(path *xgram.Path) (bool, error) {
	has := false
	lastDoubleStar := false

	for {
		t, ok := p.cur.Peek()
		if !ok {
			break
		}
		if t.Type != tokenizer.DOUBLESTAR && t.Type != tokenizer.DOT && t.Type != tokenizer.LSQBRACKET {
			break
		}
		switch t.Type {
		case tokenizer.DOUBLESTAR:
			p.cur.Next()
			*path = append(*path, xgram.PathStep{Kind: xgram.AnyPath})
			lastDoubleStar = true
		case tokenizer.DOT:
			step, _, err := p.parseDotMember()
			if err != nil {
				return false, err
			}
			*path = append(*path, step)
			lastDoubleStar = false
		case tokenizer.LSQBRACKET:
			step, err := p.parseIndexStep()
			if err != nil {
				return false, err
			}
			*path = append(*path, step)
			lastDoubleStar = false
		}
		has = true
	}

	if lastDoubleStar {
		return false, p.fail("Document path ending in '**'")
	}
	return has, nil
}

// parseDotMember parses ".member". The dot commits: once seen, a member
// must follow.
func (p *Parser) parseDotMember() (xgram.PathStep, bool, error) {
	if _, ok := p.consumeIf(tokenizer.DOT); !ok {
		return xgram.PathStep{}, false, nil
	}
	step, ok := p.parseMember()
	if !ok {
		return xgram.PathStep{}, false, p.fail("Expected member name or '*' after '.' in a document path")
	}
	return step, true, nil
}

// parseMember parses one member step: a name, a quoted string or '*'.
func (p *Parser) parseMember() (xgram.PathStep, bool) {
	t, ok := p.cur.Peek()
	if !ok {
		return xgram.PathStep{}, false
	}
	switch t.Type {
	case tokenizer.STAR:
		p.cur.Next()
		return xgram.PathStep{Kind: xgram.MemberAny}, true
	case tokenizer.WORD, tokenizer.QQSTRING, tokenizer.QSTRING:
		p.cur.Next()
		return xgram.PathStep{Kind: xgram.Member, Name: t.Text}, true
	}
	return xgram.PathStep{}, false
}

// parseIndexStep parses "[N]" or "[*]". The caller has seen the opening
// bracket.
func (p *Parser) parseIndexStep() (xgram.PathStep, error) {
	p.cur.Next()

	var step xgram.PathStep
	if _, ok := p.consumeIf(tokenizer.STAR); ok {
		step = xgram.PathStep{Kind: xgram.IndexAny}
	} else {
		t, ok := p.cur.Peek()
		if !ok || t.Type != tokenizer.INTEGER {
			return xgram.PathStep{}, p.fail("Expected '*' or integer index after '[' in a document path")
		}
		idx, err := strconv.ParseUint(t.Text, 10, 64)
		if err != nil {
			return xgram.PathStep{}, p.convErr(t.Text)
		}
		if idx > math.MaxUint32 {
			return xgram.PathStep{}, p.semantic("Array index too large")
		}
		p.cur.Next()
		step = xgram.PathStep{Kind: xgram.Index, Idx: uint32(idx)}
	}

	if _, ok := p.consumeIf(tokenizer.RSQBRACKET); !ok {
		return xgram.PathStep{}, p.fail("Expected ']' to close a document path array component")
	}
	return step, nil
}

// parseColumnRest finishes a column reference whose leading identifiers
// are in q: an optional ".column" step, then an optional "->" or "->>"
// document path suffix. "->>" wraps the reference in JSON_UNQUOTE.
func (p *Parser) parseColumnRest(q qualIdent) (node, error) {
	var col xgram.ColumnRef

	if _, ok := p.consumeIf(tokenizer.DOT); ok {
		t, ok := p.cur.NextIf(isIdentToken)
		if !ok {
			return nil, p.fail("Expected identifier after '.'")
		}
		if q.n == 2 {
			col = xgram.ColumnRef{Name: t.Text, Table: &xgram.ObjectRef{Name: q.names[1], Schema: &xgram.SchemaRef{Name: q.names[0]}}}
		} else {
			col = xgram.ColumnRef{Name: t.Text, Table: &xgram.ObjectRef{Name: q.names[0]}}
		}
	} else if q.n == 2 {
		col = xgram.ColumnRef{Name: q.names[1], Table: &xgram.ObjectRef{Name: q.names[0]}}
	} else {
		col = xgram.ColumnRef{Name: q.names[0]}
	}

	t, ok := p.cur.Peek()
	if !ok || (t.Type != tokenizer.ARROW && t.Type != tokenizer.ARROW2) {
		return &colRefNode{col: col}, nil
	}
	p.cur.Next()

	var path xgram.Path
	if qt, ok := p.cur.NextIf(func(tok tokenizer.Token) bool {
		return tok.Type == tokenizer.QSTRING || tok.Type == tokenizer.QQSTRING
	}); ok {
		// quoted form: the path lives inside the string literal and is
		// parsed with its own token stream
		sub := NewParser(p.mode, qt.Text, WithGrammarTable(p.table))
		defer sub.cur.Stop()
		subPath, err := sub.parseDocField(true)
		if err != nil {
			return nil, err
		}
		if sub.cur.More() {
			return nil, p.syntax("Unexpected characters in a quoted path component")
		}
		if err := sub.cur.Err(); err != nil {
			return nil, err
		}
		path = subPath
	} else {
		inline, err := p.parseDocField(true)
		if err != nil {
			return nil, err
		}
		path = inline
	}

	ref := &colRefNode{col: col, path: path}
	if t.Type == tokenizer.ARROW2 {
		return &callNode{fn: xgram.ObjectRef{Name: "JSON_UNQUOTE"}, args: []node{ref}}, nil
	}
	return ref, nil
}
