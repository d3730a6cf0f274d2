// Package tokenizer splits expression strings into the token sequence
// shared by the expression and document grammars. Tokens are produced
// lazily; scanning stops at the first lexical error, which is reported
// with positioned context.
package tokenizer

import (
	"fmt"
	"iter"
	"strings"

	"github.com/shibukawa/xgram"
)

// TokenIterator uses Go 1.24 iterator pattern
type TokenIterator = iter.Seq2[Token, error]

// Tokenizer is a tokenizer that returns an iterator
type Tokenizer struct {
	input string
}

// New creates a new Tokenizer over input.
func New(input string) *Tokenizer {
	return &Tokenizer{input: input}
}

// Tokens returns an iterator of tokens. On a lexical error the sequence
// yields the error as its final element and stops.
func (t *Tokenizer) Tokens() TokenIterator {
	return func(yield func(Token, error) bool) {
		s := scanner{chars: newChars(t.input)}

		for {
			tok, ok, err := s.scan()
			if err != nil {
				yield(Token{}, err)
				return
			}
			if !ok {
				return
			}
			if !yield(tok, nil) {
				return
			}
		}
	}
}

// All tokenizes input eagerly.
func All(input string) ([]Token, error) {
	var tokens []Token
	for tok, err := range New(input).Tokens() {
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
	}
	return tokens, nil
}

// symbols lists all symbol tokens longest first, so that a prefix match
// is always the longest one.
var symbols = []struct {
	text string
	typ  TokenType
}{
	{"->>", ARROW2},
	{"!=", NE},
	{"<>", DF},
	{">=", GE},
	{"<=", LE},
	{"<<", LSHIFT},
	{">>", RSHIFT},
	{"**", DOUBLESTAR},
	{"->", ARROW},
	{"&&", AMP2},
	{"||", BAR2},
	{"==", EQ2},
	{"(", LPAREN},
	{")", RPAREN},
	{"{", LCURLY},
	{"}", RCURLY},
	{"[", LSQBRACKET},
	{"]", RSQBRACKET},
	{".", DOT},
	{",", COMMA},
	{"=", EQ},
	{">", GT},
	{"<", LT},
	{"&", AMP},
	{"|", BAR},
	{"^", HAT},
	{"+", PLUS},
	{"-", MINUS},
	{"*", STAR},
	{"/", SLASH},
	{"%", PERCENT},
	{"!", BANG},
	{"~", TILDE},
	{"?", QUESTION},
	{":", COLON},
	{"$", DOLLAR},
}

type scanner struct {
	chars
}

// fail wraps cause into a lexical error positioned at the current scan
// position.
func (s *scanner) fail(cause error) error {
	return xgram.NewError(xgram.Lexical, cause, s.in, s.pos)
}

// scan produces the next token. It returns ok=false at end of input.
func (s *scanner) scan() (Token, bool, error) {
	s.skipSpace()
	if !s.more() {
		return Token{}, false, nil
	}
	if s.invalid() {
		return Token{}, false, s.fail(ErrInvalidEncoding)
	}

	// Words are tried last: symbol and numeric forms are prefixes of
	// word-looking input such as "x'41'" or "0xff".
	switch c := s.cur; {
	case c == '\'':
		return s.scanQuoted(QSTRING, true)
	case c == '"':
		return s.scanQuoted(QQSTRING, true)
	case c == '`':
		return s.scanQuoted(QWORD, false)
	case (c == 'x' || c == 'X') && s.peek() == '\'':
		return s.scanQuotedHex()
	case c == '0' && (s.peek() == 'x' || s.peek() == 'X'):
		return s.scanPrefixHex()
	case isDigit(c):
		return s.scanNumber()
	case c == '.' && isDigit(s.peek()):
		return s.scanNumber()
	}

	start := s.pos
	for _, sym := range symbols {
		if s.consumeString(sym.text) {
			return Token{Type: sym.typ, Text: sym.text, Offset: start, End: s.pos}, true, nil
		}
	}

	if isWordChar(s.cur) {
		return s.scanWord(), true, nil
	}

	return Token{}, false, s.fail(ErrUnexpectedCharacter)
}

func (s *scanner) scanWord() Token {
	start := s.pos
	for s.more() && isWordChar(s.cur) {
		s.advance()
	}
	return Token{Type: WORD, Text: s.in[start:s.pos], Offset: start, End: s.pos}
}

// scanNumber scans "digit* ('.' digit+)? ([eE][+-]? digit+)?". Entry is
// guaranteed at least one digit by the dispatch conditions; once a decimal
// point or exponent marker is consumed the digits after it are mandatory.
func (s *scanner) scanNumber() (Token, bool, error) {
	start := s.pos
	typ := INTEGER

	for s.more() && isDigit(s.cur) {
		s.advance()
	}

	if s.consumeChar('.') {
		if !s.digits() {
			return Token{}, false, s.fail(ErrNoDecimalDigits)
		}
		typ = NUMBER
	}

	if s.consumeAny("eE") {
		s.consumeAny("+-")
		if !s.digits() {
			return Token{}, false, s.fail(ErrNoExponentDigits)
		}
		typ = NUMBER
	}

	return Token{Type: typ, Text: s.in[start:s.pos], Offset: start, End: s.pos}, true, nil
}

// digits consumes a run of decimal digits, reporting whether there was at
// least one.
func (s *scanner) digits() bool {
	if !s.more() || !isDigit(s.cur) {
		return false
	}
	for s.more() && isDigit(s.cur) {
		s.advance()
	}
	return true
}

// scanQuoted scans a quoted string or identifier delimited by the current
// code point. A doubled delimiter is an embedded literal delimiter; when
// backslash is set, a backslash makes the next code point literal.
func (s *scanner) scanQuoted(typ TokenType, backslash bool) (Token, bool, error) {
	start := s.pos
	delim := s.cur
	s.advance()

	var sb strings.Builder

	for s.more() {
		if s.invalid() {
			return Token{}, false, s.fail(ErrInvalidEncoding)
		}

		c := s.cur
		s.advance()

		if c == delim {
			if s.consumeChar(delim) {
				sb.WriteRune(delim)
				continue
			}
			return Token{Type: typ, Text: sb.String(), Offset: start, End: s.pos}, true, nil
		}

		if c == '\\' && backslash {
			if !s.more() {
				break
			}
			if s.invalid() {
				return Token{}, false, s.fail(ErrInvalidEncoding)
			}
			c = s.cur
			s.advance()
		}

		sb.WriteRune(c)
	}

	return Token{}, false, s.fail(s.unterminated(start))
}

// unterminated builds the cause for an unterminated string, quoting the
// first few characters starting at the opening delimiter.
func (s *scanner) unterminated(start int) error {
	head := s.in[start:]
	n := 0
	for i := range head {
		n++
		if n > 8 {
			head = head[:i]
			break
		}
	}
	return fmt.Errorf("%w '%s'", ErrUnterminatedString, head)
}

// scanQuotedHex scans X'hexdigits' with the cursor on the x.
func (s *scanner) scanQuotedHex() (Token, bool, error) {
	start := s.pos
	s.advance() // x or X
	s.advance() // opening quote

	digits := s.hexDigits()
	if digits == "" || !s.consumeChar('\'') {
		return Token{}, false, s.fail(ErrInvalidHex)
	}

	return Token{Type: HEX, Text: digits, Offset: start, End: s.pos}, true, nil
}

// scanPrefixHex scans 0xhexdigits with the cursor on the 0.
func (s *scanner) scanPrefixHex() (Token, bool, error) {
	start := s.pos
	s.advance() // 0
	s.advance() // x or X

	digits := s.hexDigits()
	if digits == "" {
		return Token{}, false, s.fail(ErrInvalidHex)
	}

	return Token{Type: HEX, Text: digits, Offset: start, End: s.pos}, true, nil
}

func (s *scanner) hexDigits() string {
	start := s.pos
	for s.more() && isHexDigit(s.cur) {
		s.advance()
	}
	return s.in[start:s.pos]
}
