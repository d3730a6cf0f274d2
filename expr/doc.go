package expr

import "github.com/shibukawa/xgram/tokenizer"

// parseDoc parses a JSON-style document literal. The opening brace is at
// the cursor. String values inside a document parse as plain strings
// regardless of the surrounding blob context.
func (p *Parser) parseDoc() (node, error) {
	p.cur.Next() // {

	saved := p.blobs
	p.blobs = false
	defer func() { p.blobs = saved }()

	doc := &docNode{}
	if _, ok := p.consumeIf(tokenizer.RCURLY); ok {
		return doc, nil
	}

	for first := true; ; first = false {
		pair, ok, err := p.parseKeyVal()
		if err != nil {
			return nil, err
		}
		if !ok {
			if first {
				return nil, p.fail("Expected a key-value pair in a document")
			}
			return nil, p.fail("Expected next list element")
		}
		doc.pairs = append(doc.pairs, pair)
		if _, ok := p.consumeIf(tokenizer.COMMA); !ok {
			break
		}
	}
	if _, ok := p.consumeIf(tokenizer.RCURLY); !ok {
		return nil, p.fail("Expected '}' closing a document")
	}
	return doc, nil
}

// parseKeyVal parses one "key: value" member. ok is false, with nothing
// consumed, when no key token starts here.
func (p *Parser) parseKeyVal() (docPair, bool, error) {
	key, ok := p.cur.NextIf(func(t tokenizer.Token) bool {
		switch t.Type {
		case tokenizer.QQSTRING, tokenizer.QSTRING, tokenizer.WORD:
			return true
		}
		return false
	})
	if !ok {
		return docPair{}, false, nil
	}
	if _, ok := p.consumeIf(tokenizer.COLON); !ok {
		return docPair{}, false, p.fail("Expected ':' after key name in a document")
	}
	val, err := p.parseAny()
	if err != nil {
		return docPair{}, false, err
	}
	return docPair{key: key.Text, val: val}, true, nil
}

// parseArr parses an array literal. The opening bracket is at the cursor.
// Elements are documents, arrays or full expressions; like documents,
// arrays clear the blob context for their contents.
func (p *Parser) parseArr() (node, error) {
	p.cur.Next() // [

	saved := p.blobs
	p.blobs = false
	defer func() { p.blobs = saved }()

	arr := &listNode{}
	if _, ok := p.consumeIf(tokenizer.RSQBRACKET); ok {
		return arr, nil
	}
	for {
		el, err := p.parseAny()
		if err != nil {
			return nil, err
		}
		arr.elems = append(arr.elems, el)
		if _, ok := p.consumeIf(tokenizer.COMMA); !ok {
			break
		}
	}
	if _, ok := p.consumeIf(tokenizer.RSQBRACKET); !ok {
		return nil, p.fail("Expected ']' to close array")
	}
	return arr, nil
}

// parseAny parses a document, an array or a full expression, whichever
// starts here.
func (p *Parser) parseAny() (node, error) {
	if t, ok := p.cur.Peek(); ok {
		switch t.Type {
		case tokenizer.LCURLY:
			return p.parseDoc()
		case tokenizer.LSQBRACKET:
			return p.parseArr()
		}
	}
	return p.parseOr()
}
