package uri

import (
	"errors"
	"fmt"
	"iter"

	"github.com/shibukawa/xgram"
)

// Connection strings are scanned one character at a time. Letters and
// digits keep their own classes, every character the grammar assigns
// meaning to gets its own type, and a %XX sequence decodes into a pct
// token that counts as a plain character wherever characters are
// allowed, never as a delimiter.
type token struct {
	ch  byte
	typ tokType
	pct bool
	off int
}

type tokType int

const (
	tkChar tokType = iota
	tkDigit
	tkMinus
	tkDot
	tkUnderscore
	tkTilde
	tkBackslash
	tkBang
	tkDollar
	tkAmp
	tkQuote
	tkStar
	tkPlus
	tkSemicolon
	tkEq
	tkColon
	tkSlash
	tkQuestion
	tkAt
	tkLBracket
	tkRBracket
	tkLParen
	tkRParen
	tkComma
)

// tokSet is a bit set of token types.
type tokSet uint32

func (s tokSet) has(t tokType) bool { return s&(1<<t) != 0 }

// Character classes of the grammar. '#' belongs to none of them: it must
// always be pct-encoded.
const (
	unreservedChars tokSet = 1<<tkChar | 1<<tkDigit | 1<<tkMinus | 1<<tkDot |
		1<<tkUnderscore | 1<<tkTilde | 1<<tkBackslash | 1<<tkBang | 1<<tkDollar |
		1<<tkAmp | 1<<tkQuote | 1<<tkStar | 1<<tkPlus | 1<<tkSemicolon | 1<<tkEq

	genDelims tokSet = 1<<tkColon | 1<<tkSlash | 1<<tkQuestion | 1<<tkAt |
		1<<tkLBracket | 1<<tkRBracket

	userChars = unreservedChars | 1<<tkLParen | 1<<tkRParen | 1<<tkComma
	hostChars = unreservedChars | 1<<tkLParen | 1<<tkRParen | 1<<tkAt
	dbChars   = userChars | 1<<tkLBracket | 1<<tkRBracket | 1<<tkColon | 1<<tkAt
	npChars   = unreservedChars | genDelims | 1<<tkComma

	digits tokSet = 1 << tkDigit
)

// classify maps a raw byte to its token type. The comma-ok result is
// false for bytes the grammar does not allow unencoded.
func classify(c byte) (tokType, bool) {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z':
		return tkChar, true
	case '0' <= c && c <= '9':
		return tkDigit, true
	}
	switch c {
	case '-':
		return tkMinus, true
	case '.':
		return tkDot, true
	case '_':
		return tkUnderscore, true
	case '~':
		return tkTilde, true
	case '\\':
		return tkBackslash, true
	case '!':
		return tkBang, true
	case '$':
		return tkDollar, true
	case '&':
		return tkAmp, true
	case '\'':
		return tkQuote, true
	case '*':
		return tkStar, true
	case '+':
		return tkPlus, true
	case ';':
		return tkSemicolon, true
	case '=':
		return tkEq, true
	case ':':
		return tkColon, true
	case '/':
		return tkSlash, true
	case '?':
		return tkQuestion, true
	case '@':
		return tkAt, true
	case '[':
		return tkLBracket, true
	case ']':
		return tkRBracket, true
	case '(':
		return tkLParen, true
	case ')':
		return tkRParen, true
	case ',':
		return tkComma, true
	}
	return 0, false
}

// scan yields one token per character starting at byte offset start,
// decoding %XX sequences as it goes. Scanning stops with a lexical error
// at the first character outside the connection string alphabet and at
// any malformed pct-encoding.
func scan(in string, start int) iter.Seq2[token, error] {
	return func(yield func(token, error) bool) {
		for pos := start; pos < len(in); {
			c := in[pos]
			if c == '%' {
				if pos+2 >= len(in) || hexVal(in[pos+1]) < 0 || hexVal(in[pos+2]) < 0 {
					yield(token{}, xgram.NewError(xgram.Lexical,
						errors.New("Invalid pct-encoded character"), in, pos))
					return
				}
				dec := byte(hexVal(in[pos+1])<<4 | hexVal(in[pos+2]))
				if !yield(token{ch: dec, typ: tkChar, pct: true, off: pos}, nil) {
					return
				}
				pos += 3
				continue
			}
			typ, ok := classify(c)
			if !ok {
				yield(token{}, xgram.NewError(xgram.Lexical,
					fmt.Errorf("Invalid character '%c' (you can embed such character as '%%%02x')", c, c),
					in, pos))
				return
			}
			if !yield(token{ch: c, typ: typ, off: pos}, nil) {
				return
			}
			pos++
		}
	}
}

// hexVal returns the value of a hex digit, or -1.
func hexVal(c byte) int {
	switch {
	case '0' <= c && c <= '9':
		return int(c - '0')
	case 'a' <= c && c <= 'f':
		return int(c-'a') + 10
	case 'A' <= c && c <= 'F':
		return int(c-'A') + 10
	}
	return -1
}
