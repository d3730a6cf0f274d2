// Package expr parses the X DevAPI expression dialect: a boolean and
// arithmetic operator grammar over literals, placeholders, function calls,
// document paths and column references, with JSON-style document and array
// literals embedded in it.
//
// A Parser works in one of two modes. Document mode resolves bare
// identifiers to document paths, Table mode to column references; both
// share every other rule. Parsers are single use: the token stream is
// consumed by the first Parse or Process call and later calls return
// ErrConsumed. The parse result is a stored Expression that replays into
// any number of visitors.
package expr

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/shibukawa/xgram"
	"github.com/shibukawa/xgram/cursor"
	"github.com/shibukawa/xgram/tokenizer"
)

// Mode selects how bare identifiers resolve.
type Mode int

const (
	// Document mode resolves bare identifiers to document paths.
	Document Mode = iota
	// Table mode resolves bare identifiers to column references.
	Table
)

func (m Mode) String() string {
	if m == Table {
		return "table"
	}
	return "document"
}

// Parser parses one expression string.
type Parser struct {
	mode  Mode
	in    string
	cur   *cursor.Cursor[tokenizer.Token]
	table *GrammarTable

	// blobs makes plain string literals parse as octets. It is set inside
	// IN (...) lists and cleared inside document and array literals.
	blobs    bool
	posCount uint16
	consumed bool
}

// Option configures a Parser.
type Option func(*Parser)

// WithGrammarTable overrides the built-in cast type and interval unit
// tables.
func WithGrammarTable(t *GrammarTable) Option {
	return func(p *Parser) { p.table = t }
}

// NewParser creates a parser for input in the given mode.
func NewParser(mode Mode, input string, opts ...Option) *Parser {
	p := &Parser{
		mode:  mode,
		in:    input,
		cur:   cursor.New(tokenizer.New(input).Tokens()),
		table: DefaultGrammarTable(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse consumes the input and returns the stored expression.
func (p *Parser) Parse() (*Expression, error) {
	if p.consumed {
		return nil, xgram.ErrConsumed
	}
	p.consumed = true
	defer p.cur.Stop()

	if !p.cur.More() {
		if err := p.cur.Err(); err != nil {
			return nil, err
		}
		return nil, p.syntax("Expected an expression")
	}
	root, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if p.cur.More() {
		return nil, p.syntax("Unexpected characters after expression")
	}
	if err := p.cur.Err(); err != nil {
		return nil, err
	}
	return &Expression{root: root}, nil
}

// Process parses the input and replays the result into v.
func (p *Parser) Process(v xgram.ExprVisitor) error {
	e, err := p.Parse()
	if err != nil {
		return err
	}
	e.Process(v)
	return nil
}

// Parse is a convenience for NewParser followed by Parse.
func Parse(mode Mode, input string, opts ...Option) (*Expression, error) {
	return NewParser(mode, input, opts...).Parse()
}

// --- cursor helpers ---

func (p *Parser) typeIs(tt tokenizer.TokenType) bool {
	t, ok := p.cur.Peek()
	return ok && t.Type == tt
}

func (p *Parser) consumeIf(tt tokenizer.TokenType) (tokenizer.Token, bool) {
	return p.cur.NextIf(func(t tokenizer.Token) bool { return t.Type == tt })
}

func (p *Parser) keywordIs(kw keyword) bool {
	t, ok := p.cur.Peek()
	return ok && lookupKeyword(t) == kw
}

func (p *Parser) keywordIsAny(kws ...keyword) bool {
	t, ok := p.cur.Peek()
	if !ok {
		return false
	}
	kw := lookupKeyword(t)
	for _, k := range kws {
		if kw == k {
			return true
		}
	}
	return false
}

func (p *Parser) consumeKeyword(kw keyword) bool {
	_, ok := p.cur.NextIf(func(t tokenizer.Token) bool { return lookupKeyword(t) == kw })
	return ok
}

func (p *Parser) expect(tt tokenizer.TokenType, msg string) (tokenizer.Token, error) {
	t, ok := p.consumeIf(tt)
	if !ok {
		return tokenizer.Token{}, p.fail(msg)
	}
	return t, nil
}

func (p *Parser) expectKeyword(kw keyword, msg string) error {
	if !p.consumeKeyword(kw) {
		return p.fail(msg)
	}
	return nil
}

// --- error helpers ---

// offset is the byte position errors point at: the next unconsumed token,
// or the end of the input.
func (p *Parser) offset() int {
	if t, ok := p.cur.Peek(); ok {
		return t.Offset
	}
	return len(p.in)
}

func (p *Parser) syntax(msg string) error {
	return xgram.NewError(xgram.Syntax, errors.New(msg), p.in, p.offset())
}

func (p *Parser) semantic(msg string) error {
	return xgram.NewError(xgram.Semantic, errors.New(msg), p.in, p.offset())
}

// fail reports a syntax error at the current position. When the token
// stream stopped on a lexical error the parse ran into it, so that error
// is surfaced instead.
func (p *Parser) fail(msg string) error {
	if !p.cur.More() {
		if err := p.cur.Err(); err != nil {
			return err
		}
	}
	return p.syntax(msg)
}

func (p *Parser) unsupported(what string) error {
	return p.fail(what + " not supported yet")
}

func (p *Parser) convErr(text string) error {
	return p.semantic(fmt.Sprintf("Failed to convert string '%s' to a number", text))
}

// --- binary operator ladder ---

// opSpec matches one binary operator alternative by token type, keyword
// spelling, or both, and gives the name it reports as.
type opSpec struct {
	tok  tokenizer.TokenType
	kw   keyword
	name string
}

var (
	orOps  = []opSpec{{tok: tokenizer.BAR2, name: "||"}, {kw: kwOr, name: "||"}}
	andOps = []opSpec{{tok: tokenizer.AMP2, name: "&&"}, {kw: kwAnd, name: "&&"}}

	compOps = []opSpec{
		{tok: tokenizer.GE, name: ">="},
		{tok: tokenizer.GT, name: ">"},
		{tok: tokenizer.LE, name: "<="},
		{tok: tokenizer.LT, name: "<"},
		{tok: tokenizer.EQ, name: "=="},
		{tok: tokenizer.EQ2, name: "=="},
		{tok: tokenizer.NE, name: "!="},
		{tok: tokenizer.DF, name: "!="},
	}

	bitOps = []opSpec{
		{tok: tokenizer.BAR, name: "|"},
		{tok: tokenizer.AMP, name: "&"},
		{tok: tokenizer.HAT, name: "^"},
	}

	shiftOps = []opSpec{{tok: tokenizer.LSHIFT, name: "<<"}, {tok: tokenizer.RSHIFT, name: ">>"}}
	addOps   = []opSpec{{tok: tokenizer.PLUS, name: "+"}, {tok: tokenizer.MINUS, name: "-"}}

	mulOps = []opSpec{
		{tok: tokenizer.STAR, name: "*"},
		{tok: tokenizer.SLASH, name: "/"},
		{tok: tokenizer.PERCENT, name: "%"},
		{kw: kwMod, name: "%"},
	}
)

// matchOp consumes the next token when it spells one of specs.
func (p *Parser) matchOp(specs []opSpec) (string, bool) {
	t, ok := p.cur.Peek()
	if !ok {
		return "", false
	}
	kw := lookupKeyword(t)
	for _, s := range specs {
		if (s.tok != tokenizer.EMPTY && t.Type == s.tok) || (s.kw != kwNone && kw == s.kw) {
			p.cur.Next()
			return s.name, true
		}
	}
	return "", false
}

// binary parses a chain of same-level binary operators, left associative:
// a-b-c nests as (a-b)-c.
func (p *Parser) binary(specs []opSpec, operand func() (node, error)) (node, error) {
	lhs, err := operand()
	if err != nil {
		return nil, err
	}
	for {
		name, ok := p.matchOp(specs)
		if !ok {
			return lhs, nil
		}
		rhs, err := operand()
		if err != nil {
			return nil, err
		}
		lhs = &opNode{name: name, args: []node{lhs, rhs}}
	}
}

func (p *Parser) parseOr() (node, error)    { return p.binary(orOps, p.parseAnd) }
func (p *Parser) parseAnd() (node, error)   { return p.binary(andOps, p.parseIlri) }
func (p *Parser) parseComp() (node, error)  { return p.binary(compOps, p.parseBit) }
func (p *Parser) parseBit() (node, error)   { return p.binary(bitOps, p.parseShift) }
func (p *Parser) parseShift() (node, error) { return p.binary(shiftOps, p.parseAdd) }
func (p *Parser) parseAdd() (node, error)   { return p.binary(addOps, p.parseMul) }
func (p *Parser) parseMul() (node, error)   { return p.binary(mulOps, p.parseUnary) }

// parseIlri parses the membership and pattern operators sitting between
// AND and the comparisons: IS, IN, LIKE, RLIKE, REGEXP, BETWEEN, OVERLAPS
// and their NOT forms. At most one such operator applies; they do not
// chain.
func (p *Parser) parseIlri() (node, error) {
	first, err := p.parseComp()
	if err != nil {
		return nil, err
	}

	neg := p.consumeKeyword(kwNot)

	var op keyword
	if t, ok := p.cur.Peek(); ok {
		switch k := lookupKeyword(t); k {
		case kwIs, kwIn, kwLike, kwRlike, kwBetween, kwRegexp, kwSounds, kwOverlaps:
			p.cur.Next()
			op = k
		}
	}

	if op == kwNone {
		if neg {
			return nil, p.fail("Expected IN, (R)LIKE, BETWEEN, OVERLAPS or REGEXP after NOT")
		}
		return first, nil
	}

	if neg && op == kwIs {
		return nil, p.fail("Operator NOT before IS, should be IS NOT")
	}
	if op == kwIs && p.consumeKeyword(kwNot) {
		neg = true
	}
	if op == kwSounds {
		return nil, p.unsupported("Operator SOUNDS LIKE")
	}

	pick := func(name, negName string) string {
		if neg {
			return negName
		}
		return name
	}

	switch op {
	case kwIs:
		t, ok := p.cur.Next()
		if ok {
			var arg node
			switch lookupKeyword(t) {
			case kwTrue:
				arg = boolNode(true)
			case kwFalse:
				arg = boolNode(false)
			case kwNull:
				arg = nullNode{}
			}
			if arg != nil {
				return &opNode{name: pick("is", "is_not"), args: []node{first, arg}}, nil
			}
		}
		return nil, p.fail("expected TRUE, FALSE or NULL after IS")

	case kwIn:
		if _, ok := p.consumeIf(tokenizer.LPAREN); !ok {
			rhs, err := p.parseComp()
			if err != nil {
				return nil, err
			}
			return &opNode{name: pick("cont_in", "not_cont_in"), args: []node{first, rhs}}, nil
		}
		args, err := p.parseArgsList(true)
		if err != nil {
			return nil, err
		}
		if _, ok := p.consumeIf(tokenizer.RPAREN); !ok {
			return nil, p.fail("Expected ')' to close IN(... expression")
		}
		return &opNode{name: pick("in", "not_in"), args: append([]node{first}, args...)}, nil

	case kwLike, kwRlike:
		rhs, err := p.parseComp()
		if err != nil {
			return nil, err
		}
		if p.keywordIs(kwEscape) {
			return nil, p.unsupported("ESCAPE clause for (R)LIKE operator")
		}
		if op == kwLike {
			return &opNode{name: pick("like", "not_like"), args: []node{first, rhs}}, nil
		}
		return &opNode{name: pick("regexp", "not_regexp"), args: []node{first, rhs}}, nil

	case kwRegexp:
		rhs, err := p.parseComp()
		if err != nil {
			return nil, err
		}
		return &opNode{name: pick("regexp", "not_regexp"), args: []node{first, rhs}}, nil

	case kwOverlaps:
		rhs, err := p.parseComp()
		if err != nil {
			return nil, err
		}
		return &opNode{name: pick("overlaps", "not_overlaps"), args: []node{first, rhs}}, nil

	case kwBetween:
		lo, err := p.parseComp()
		if err != nil {
			return nil, err
		}
		if err := p.expectKeyword(kwAnd, "Expected AND in BETWEEN ... expression"); err != nil {
			return nil, err
		}
		hi, err := p.parseComp()
		if err != nil {
			return nil, err
		}
		return &opNode{name: pick("between", "not_between"), args: []node{first, lo, hi}}, nil
	}
	return first, nil
}

// parseUnary parses prefix operators. A sign directly followed by a
// numeric literal folds into the literal instead of reporting an operator.
func (p *Parser) parseUnary() (node, error) {
	t, ok := p.cur.Peek()
	if !ok {
		return p.parseAtomic()
	}

	var name string
	switch {
	case t.Type == tokenizer.PLUS || t.Type == tokenizer.MINUS:
		p.cur.Next()
		if nt, ok := p.cur.Peek(); ok && (nt.Type == tokenizer.NUMBER || nt.Type == tokenizer.INTEGER) {
			return p.parseNumber(t.Type == tokenizer.MINUS)
		}
		name = "+"
		if t.Type == tokenizer.MINUS {
			name = "-"
		}
	case t.Type == tokenizer.BANG:
		p.cur.Next()
		name = "!"
	case t.Type == tokenizer.TILDE:
		p.cur.Next()
		name = "~"
	case lookupKeyword(t) == kwNot:
		p.cur.Next()
		name = "not"
	default:
		return p.parseAtomic()
	}

	arg, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	return &opNode{name: name, args: []node{arg}}, nil
}

// parseNumber converts the numeric literal at the cursor. neg applies the
// sign of a folded leading minus; the digits themselves never carry one.
func (p *Parser) parseNumber(neg bool) (node, error) {
	t, _ := p.cur.Peek()

	var n node
	switch t.Type {
	case tokenizer.NUMBER:
		v, err := strconv.ParseFloat(t.Text, 64)
		if err != nil {
			return nil, p.convErr(t.Text)
		}
		if neg {
			v = -v
		}
		n = floatNode(v)
	case tokenizer.INTEGER:
		if neg {
			v, err := strconv.ParseInt(t.Text, 10, 64)
			if err != nil {
				return nil, p.convErr(t.Text)
			}
			n = intNode(-v)
		} else {
			v, err := strconv.ParseUint(t.Text, 10, 64)
			if err != nil {
				return nil, p.convErr(t.Text)
			}
			n = uintNode(v)
		}
	default:
		return nil, p.fail("Expected an expression")
	}
	p.cur.Next()
	return n, nil
}

// parseArgsList parses a comma separated list of full expressions. blobs
// selects whether plain strings in the list parse as octets; the previous
// setting is restored afterwards.
func (p *Parser) parseArgsList(blobs bool) ([]node, error) {
	saved := p.blobs
	p.blobs = blobs
	defer func() { p.blobs = saved }()

	var args []node
	for {
		arg, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		if _, ok := p.consumeIf(tokenizer.COMMA); !ok {
			return args, nil
		}
	}
}
