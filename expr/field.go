package expr

import "github.com/shibukawa/xgram"

// ParseDocField parses a standalone document field path such as
// "$.a.b[0]", "date[*]" or "**.name". The leading "$" is optional; the
// empty non-nil result means the whole document.
func ParseDocField(input string) (xgram.Path, error) {
	p := NewParser(Document, input)
	defer p.cur.Stop()

	path, err := p.parseDocField(false)
	if err != nil {
		return nil, err
	}
	if p.cur.More() {
		return nil, p.syntax("Unexpected characters at the end")
	}
	if err := p.cur.Err(); err != nil {
		return nil, err
	}
	return path, nil
}

// ParseTableField parses a table field address: "[[schema.]table.]column"
// with an optional "->" or "->>" document path suffix. The path is nil
// when no suffix is present.
func ParseTableField(input string) (xgram.ColumnRef, xgram.Path, error) {
	p := NewParser(Table, input)
	defer p.cur.Stop()

	q, ok := p.parseQualIdent()
	if !ok {
		return xgram.ColumnRef{}, nil, p.fail("Expected a column identifier")
	}
	n, err := p.parseColumnRest(q)
	if err != nil {
		return xgram.ColumnRef{}, nil, err
	}
	if p.cur.More() {
		return xgram.ColumnRef{}, nil, p.syntax("Unexpected characters at the end")
	}
	if err := p.cur.Err(); err != nil {
		return xgram.ColumnRef{}, nil, err
	}

	// "->>" wraps the reference in a JSON_UNQUOTE call; the field address
	// is the reference inside it.
	if call, ok := n.(*callNode); ok {
		n = call.args[0]
	}
	ref := n.(*colRefNode)
	path := ref.path
	if len(path) == 0 {
		path = nil
	}
	return ref.col, path, nil
}
