package expr

import "github.com/shibukawa/xgram"

// Direction is the direction of a sort key.
type Direction int

const (
	// Asc sorts ascending, the default when no direction is written.
	Asc Direction = iota
	// Desc sorts descending.
	Desc
)

func (d Direction) String() string {
	if d == Desc {
		return "DESC"
	}
	return "ASC"
}

// OrderVisitor receives the result of an order specification parse.
type OrderVisitor interface {
	// SortKey reports the sort direction; the key expression follows on
	// the returned visitor. Returning nil skips it.
	SortKey(dir Direction) xgram.ExprVisitor
}

// OrderParser parses a sorting order specification: an expression with an
// optional trailing ASC or DESC. Like Parser it is single use.
type OrderParser struct {
	p *Parser
}

// NewOrderParser creates a parser for the order specification input.
func NewOrderParser(mode Mode, input string, opts ...Option) *OrderParser {
	return &OrderParser{p: NewParser(mode, input, opts...)}
}

// Process parses the input and reports the sort key into v.
func (o *OrderParser) Process(v OrderVisitor) error {
	p := o.p
	if p.consumed {
		return xgram.ErrConsumed
	}
	p.consumed = true
	defer p.cur.Stop()

	if !p.cur.More() {
		if err := p.cur.Err(); err != nil {
			return err
		}
		return p.syntax("Expected sorting order specification")
	}
	root, err := p.parseOr()
	if err != nil {
		return err
	}

	dir := Asc
	if t, ok := p.cur.Peek(); ok {
		switch lookupKeyword(t) {
		case kwAsc:
			p.cur.Next()
		case kwDesc:
			p.cur.Next()
			dir = Desc
		default:
			return p.syntax("Expected sorting direction ASC or DESC")
		}
	}
	if p.cur.More() {
		return p.syntax("Unexpected characters after sorting order specification")
	}
	if err := p.cur.Err(); err != nil {
		return err
	}

	if v != nil {
		root.replay(v.SortKey(dir))
	}
	return nil
}

// ProjectionVisitor receives the result of a projection parse. Alias runs
// before Expr and only when an alias was written; Document mode always
// has one since there the alias is mandatory.
type ProjectionVisitor interface {
	Alias(name string)
	// Expr returns the visitor for the projected expression. Returning
	// nil skips it.
	Expr() xgram.ExprVisitor
}

// ProjectionParser parses a projection: an expression with an "AS name"
// alias, optional in Table mode and required in Document mode. Like
// Parser it is single use.
type ProjectionParser struct {
	p *Parser
}

// NewProjectionParser creates a parser for the projection input.
func NewProjectionParser(mode Mode, input string, opts ...Option) *ProjectionParser {
	return &ProjectionParser{p: NewParser(mode, input, opts...)}
}

// Process parses the input and reports the projection into v.
func (pp *ProjectionParser) Process(v ProjectionVisitor) error {
	p := pp.p
	if p.consumed {
		return xgram.ErrConsumed
	}
	p.consumed = true
	defer p.cur.Stop()

	if !p.cur.More() {
		if err := p.cur.Err(); err != nil {
			return err
		}
		return p.syntax("Expected projection specification")
	}
	root, err := p.parseOr()
	if err != nil {
		return err
	}

	alias := ""
	hasAlias := false
	if p.mode == Document {
		if !p.consumeKeyword(kwAs) {
			return p.syntax("Expected AS in projection specification")
		}
		t, ok := p.cur.NextIf(isIdentToken)
		if !ok {
			return p.fail("Expected identifier after AS")
		}
		alias, hasAlias = t.Text, true
		if p.cur.More() {
			return p.syntax("Invalid characters after projection specification")
		}
	} else if p.cur.More() {
		if !p.consumeKeyword(kwAs) {
			return p.syntax("Invalid characters in projection specification, only AS <name> allowed after the projection expression")
		}
		t, ok := p.cur.NextIf(isIdentToken)
		if !ok {
			return p.fail("Expected identifier after AS")
		}
		alias, hasAlias = t.Text, true
		if p.cur.More() {
			return p.syntax("Unexpected characters after projection specification")
		}
	}
	if err := p.cur.Err(); err != nil {
		return err
	}

	if v != nil {
		if hasAlias {
			v.Alias(alias)
		}
		root.replay(v.Expr())
	}
	return nil
}
