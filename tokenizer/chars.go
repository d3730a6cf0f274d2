package tokenizer

import (
	"strings"
	"unicode/utf8"
)

// chars is a UTF-8 aware cursor over an in-memory string. It keeps the
// current code point decoded; w is its byte width, zero at end of input.
type chars struct {
	in  string
	pos int
	cur rune
	w   int
}

func newChars(in string) chars {
	c := chars{in: in}
	c.decode()
	return c
}

func (c *chars) decode() {
	if c.pos >= len(c.in) {
		c.cur, c.w = 0, 0
		return
	}
	c.cur, c.w = utf8.DecodeRuneInString(c.in[c.pos:])
}

// more reports whether a code point is available at the current position.
func (c *chars) more() bool {
	return c.w > 0
}

// invalid reports whether the current position holds a byte sequence that
// does not decode as UTF-8. A genuine U+FFFD in the input decodes with
// width 3 and is not flagged.
func (c *chars) invalid() bool {
	return c.cur == utf8.RuneError && c.w == 1
}

// advance moves past the current code point.
func (c *chars) advance() {
	c.pos += c.w
	c.decode()
}

// peek returns the code point after the current one, or 0 at end.
func (c *chars) peek() rune {
	if !c.more() {
		return 0
	}
	r, w := utf8.DecodeRuneInString(c.in[c.pos+c.w:])
	if w == 0 {
		return 0
	}
	return r
}

// consumeChar advances past the current code point if it equals r.
func (c *chars) consumeChar(r rune) bool {
	if !c.more() || c.cur != r {
		return false
	}
	c.advance()
	return true
}

// consumeAny advances past the current code point if it is one of set.
func (c *chars) consumeAny(set string) bool {
	if !c.more() || !strings.ContainsRune(set, c.cur) {
		return false
	}
	c.advance()
	return true
}

// consumeString advances past s if the input continues with it. The
// pattern must be ASCII.
func (c *chars) consumeString(s string) bool {
	if !strings.HasPrefix(c.in[c.pos:], s) {
		return false
	}
	c.pos += len(s)
	c.decode()
	return true
}

func (c *chars) skipSpace() {
	for c.more() && isSpace(c.cur) {
		c.advance()
	}
}

// Classification uses fixed ASCII tables, never the process locale.

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\r' || r == '\n'
}

func isDigit(r rune) bool {
	return '0' <= r && r <= '9'
}

func isHexDigit(r rune) bool {
	return isDigit(r) || ('a' <= r && r <= 'f') || ('A' <= r && r <= 'F')
}

func isWordChar(r rune) bool {
	return r == '_' || isDigit(r) || ('a' <= r && r <= 'z') || ('A' <= r && r <= 'Z')
}
