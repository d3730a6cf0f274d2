package expr

import (
	"strconv"

	"github.com/shibukawa/xgram"
	"github.com/shibukawa/xgram/tokenizer"
)

// parseAtomic parses the highest precedence alternatives: literals,
// placeholders, grouped sub-expressions, document and array literals,
// CAST and INTERVAL, and the identifier-led references.
func (p *Parser) parseAtomic() (node, error) {
	t, ok := p.cur.Peek()
	if !ok {
		return nil, p.fail("Expected an expression")
	}

	switch t.Type {
	case tokenizer.LCURLY:
		return p.parseDoc()

	case tokenizer.LSQBRACKET:
		return p.parseArr()

	case tokenizer.LPAREN:
		p.cur.Next()
		sub, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if _, ok := p.consumeIf(tokenizer.RPAREN); !ok {
			return nil, p.fail("Expected ')' to close parenthesized sub-expression")
		}
		return sub, nil

	case tokenizer.COLON:
		p.cur.Next()
		w, err := p.expect(tokenizer.WORD, "Expected parameter name after ':'")
		if err != nil {
			return nil, err
		}
		return &paramNode{name: w.Text}, nil

	case tokenizer.QUESTION:
		p.cur.Next()
		pos := p.posCount
		p.posCount++
		return &posParamNode{pos: pos}, nil

	case tokenizer.STAR:
		p.cur.Next()
		return &opNode{name: "*"}, nil

	case tokenizer.DOLLAR:
		if name, ok := p.matchVar(); ok {
			return &varNode{name: name}, nil
		}
		// a lone '$' continues as a document path in parseRef
	}

	if n, matched, err := p.parseCast(); matched {
		return n, err
	}
	if n, matched, err := p.parseInterval(); matched {
		return n, err
	}

	switch lookupKeyword(t) {
	case kwNull:
		p.cur.Next()
		return nullNode{}, nil
	case kwTrue:
		p.cur.Next()
		return boolNode(true), nil
	case kwFalse:
		p.cur.Next()
		return boolNode(false), nil
	}

	switch t.Type {
	case tokenizer.QSTRING, tokenizer.QQSTRING:
		p.cur.Next()
		if p.blobs {
			return octetsNode(t.Text), nil
		}
		return strNode(t.Text), nil

	case tokenizer.NUMBER, tokenizer.INTEGER:
		return p.parseNumber(false)

	case tokenizer.HEX:
		v, err := strconv.ParseUint(t.Text, 16, 64)
		if err != nil {
			return nil, p.convErr(t.Text)
		}
		p.cur.Next()
		return uintNode(v), nil
	}

	return p.parseRef()
}

// matchVar matches a "$name" variable reference. The name must directly
// follow the dollar sign; "$ name" and "$.name" are left for the document
// path grammar.
func (p *Parser) matchVar() (string, bool) {
	g := p.cur.Guard()
	defer g.Done()

	d, ok := p.consumeIf(tokenizer.DOLLAR)
	if !ok {
		return "", false
	}
	w, ok := p.cur.NextIf(func(t tokenizer.Token) bool {
		return t.Type == tokenizer.WORD && t.Offset == d.End
	})
	if !ok {
		return "", false
	}
	g.Commit()
	return w.Text, true
}

// parseCast parses CAST(expr AS type). The type is reported as an octets
// argument holding its canonical spelling, "DECIMAL(10,2)" style. matched
// is false, with nothing consumed, when the CAST keyword is absent.
func (p *Parser) parseCast() (node, bool, error) {
	if !p.consumeKeyword(kwCast) {
		return nil, false, nil
	}
	if _, err := p.expect(tokenizer.LPAREN, "Expected '(' after CAST"); err != nil {
		return nil, true, err
	}
	arg, err := p.parseOr()
	if err != nil {
		return nil, true, err
	}
	if err := p.expectKeyword(kwAs, "Expected AS after expression inside CAST operator"); err != nil {
		return nil, true, err
	}
	typ, err := p.parseCastType()
	if err != nil {
		return nil, true, err
	}
	if _, err := p.expect(tokenizer.RPAREN, "Expected ')' closing CAST operator call"); err != nil {
		return nil, true, err
	}
	return &opNode{name: "cast", args: []node{arg, octetsNode(typ)}}, true, nil
}

// parseCastType parses the target type after AS against the grammar
// table and builds its canonical spelling.
func (p *Parser) parseCastType() (string, error) {
	t, ok := p.cur.Peek()
	if !ok {
		return "", p.fail("Expected cast type")
	}

	var ct CastType
	found := false
	if t.Type == tokenizer.WORD {
		ct, found = p.table.castType(t.Text)
	}
	if !found {
		return "", p.semantic("Unexpected cast type")
	}
	p.cur.Next()

	typ := ct.Name
	if len(ct.Absorbs) > 0 {
		p.cur.NextIf(func(tok tokenizer.Token) bool {
			if tok.Type != tokenizer.WORD {
				return false
			}
			word := asciiUpper(tok.Text)
			for _, a := range ct.Absorbs {
				if asciiUpper(a) == word {
					return true
				}
			}
			return false
		})
	}
	if ct.Dims > 0 && p.typeIs(tokenizer.LPAREN) {
		dim, err := p.parseTypeDimension(ct.Dims == 2)
		if err != nil {
			return "", err
		}
		typ += dim
	}
	return typ + ct.Suffix, nil
}

// parseTypeDimension parses "(N)", or "(N,M)" when two is set.
func (p *Parser) parseTypeDimension(two bool) (string, error) {
	if _, ok := p.consumeIf(tokenizer.LPAREN); !ok {
		return "", p.fail("Expected type dimension specification")
	}
	n, err := p.expect(tokenizer.INTEGER, "Expected integer type dimension")
	if err != nil {
		return "", err
	}
	dim := "(" + n.Text
	if two {
		if _, ok := p.consumeIf(tokenizer.COMMA); ok {
			m, err := p.expect(tokenizer.INTEGER, "Expected second type dimension after ','")
			if err != nil {
				return "", err
			}
			dim += "," + m.Text
		}
	}
	dim += ")"
	if _, ok := p.consumeIf(tokenizer.RPAREN); !ok {
		return "", p.fail("Expected ')' closing type dimension specification")
	}
	return dim, nil
}

// parseInterval parses INTERVAL expr UNIT into an "interval" operator
// whose second argument is the canonical unit name as octets, mirroring
// how CAST reports its target type.
func (p *Parser) parseInterval() (node, bool, error) {
	if !p.consumeKeyword(kwInterval) {
		return nil, false, nil
	}
	arg, err := p.parseAdd()
	if err != nil {
		return nil, true, err
	}

	unit := ""
	if t, ok := p.cur.Peek(); ok && t.Type == tokenizer.WORD {
		unit, _ = p.table.unit(t.Text)
	}
	if unit == "" {
		return nil, true, p.fail("Expected interval unit")
	}
	p.cur.Next()
	return &opNode{name: "interval", args: []node{arg, octetsNode(unit)}}, true, nil
}

// qualIdent holds up to two leading identifiers and their token types.
// Quoted identifiers are legal in table and column names but not in
// document paths, so the types matter later.
type qualIdent struct {
	names [2]string
	types [2]tokenizer.TokenType
	n     int
}

// objectRef reads the identifiers as a possibly schema qualified object
// name.
func (q qualIdent) objectRef() xgram.ObjectRef {
	if q.n == 2 {
		return xgram.ObjectRef{Name: q.names[1], Schema: &xgram.SchemaRef{Name: q.names[0]}}
	}
	return xgram.ObjectRef{Name: q.names[0]}
}

func isIdentToken(t tokenizer.Token) bool {
	return t.Type == tokenizer.WORD || t.Type == tokenizer.QWORD
}

// parseQualIdent parses "ident" or "ident.ident". Nothing is consumed
// when no identifier starts here, and a dot not followed by a second
// identifier is rolled back rather than committed.
func (p *Parser) parseQualIdent() (qualIdent, bool) {
	var q qualIdent

	t, ok := p.cur.NextIf(isIdentToken)
	if !ok {
		return q, false
	}
	q.names[0], q.types[0] = t.Text, t.Type
	q.n = 1

	g := p.cur.Guard()
	defer g.Done()
	if _, ok := p.consumeIf(tokenizer.DOT); ok {
		if t2, ok := p.cur.NextIf(isIdentToken); ok {
			q.names[1], q.types[1] = t2.Text, t2.Type
			q.n = 2
			g.Commit()
		}
	}
	return q, true
}

// parseRef parses the identifier-led alternatives: a function call, then
// a column reference in Table mode or a document path in Document mode.
func (p *Parser) parseRef() (node, error) {
	q, ok := p.parseQualIdent()

	if ok {
		if n, called, err := p.parseFunctionCall(q.objectRef()); called {
			return n, err
		}
	}

	if p.mode == Table {
		if !ok {
			return nil, p.fail("Expected atomic expression")
		}
		return p.parseColumnRest(q)
	}

	if !ok {
		path, err := p.parseDocField(true)
		if err != nil {
			return nil, err
		}
		return &pathRefNode{path: path}, nil
	}
	if q.types[0] == tokenizer.QWORD || (q.n == 2 && q.types[1] == tokenizer.QWORD) {
		return nil, p.fail("Expected atomic expression")
	}

	path := make(xgram.Path, 0, q.n+2)
	for i := 0; i < q.n; i++ {
		path = append(path, xgram.PathStep{Kind: xgram.Member, Name: q.names[i]})
	}
	if _, err := p.parseDocumentPath1(&path); err != nil {
		return nil, err
	}
	return &pathRefNode{path: path}, nil
}

// parseFunctionCall parses a call argument list for fn. called reports
// whether an opening parenthesis was found; nothing is consumed otherwise.
// Unqualified names get the built-in specials: POSITION takes IN as its
// argument separator and reports as "locate", and the SQL clause forms of
// TRIM and CHAR are rejected.
func (p *Parser) parseFunctionCall(fn xgram.ObjectRef) (node, bool, error) {
	if _, ok := p.consumeIf(tokenizer.LPAREN); !ok {
		return nil, false, nil
	}

	special := ""
	if fn.Schema == nil {
		special = asciiUpper(fn.Name)
	}
	if special == "POSITION" {
		fn = xgram.ObjectRef{Name: "locate"}
	}

	call := &callNode{fn: fn}
	if !p.typeIs(tokenizer.RPAREN) {
		if special == "POSITION" {
			needle, err := p.parseComp()
			if err != nil {
				return nil, true, err
			}
			if err := p.expectKeyword(kwIn, "Expected IN inside POSITION(... IN ...)"); err != nil {
				return nil, true, err
			}
			haystack, err := p.parseOr()
			if err != nil {
				return nil, true, err
			}
			call.args = []node{needle, haystack}
		} else {
			if special == "TRIM" && p.keywordIsAny(kwBoth, kwLeading, kwTrailing) {
				return nil, true, p.unsupported("LEADING, TRAILING or BOTH clause inside function TRIM()")
			}
			first, err := p.parseOr()
			if err != nil {
				return nil, true, err
			}
			call.args = []node{first}
			switch {
			case p.typeIs(tokenizer.COMMA):
				p.cur.Next()
				rest, err := p.parseArgsList(p.blobs)
				if err != nil {
					return nil, true, err
				}
				call.args = append(call.args, rest...)
			case special == "CHAR" && p.keywordIs(kwUsing):
				return nil, true, p.unsupported("USING clause inside function CHAR()")
			case special == "TRIM" && p.keywordIs(kwFrom):
				return nil, true, p.unsupported("FROM clause inside function TRIM()")
			}
		}
	}
	if _, ok := p.consumeIf(tokenizer.RPAREN); !ok {
		return nil, true, p.fail("Expected ')' to close function argument list")
	}
	return call, true, nil
}
