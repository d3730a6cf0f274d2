package xgram

import (
	"errors"
	"strings"
	"unicode/utf8"
)

// Failure classes shared by every grammar in this module. Concrete errors
// wrap exactly one of these, so callers can route on errors.Is without
// inspecting message text.
var (
	// ErrLexical is the class of invalid bytes and unterminated literals.
	ErrLexical = errors.New("lexical error")
	// ErrSyntax is the class of missing productions at a committed point.
	ErrSyntax = errors.New("syntax error")
	// ErrSemantic is the class of well-formed input with an invalid meaning
	// (unknown cast type, out-of-range priority, bad percent encoding).
	ErrSemantic = errors.New("semantic error")
)

// ErrConsumed is returned when a single-use parser is run twice. Parsers in
// this module own their token stream and cannot be rewound; parse once and
// replay the stored result instead.
var ErrConsumed = errors.New("parser already consumed")

// Kind selects one of the failure classes above.
type Kind int

const (
	Lexical Kind = iota
	Syntax
	Semantic
)

func (k Kind) class() error {
	switch k {
	case Lexical:
		return ErrLexical
	case Semantic:
		return ErrSemantic
	default:
		return ErrSyntax
	}
}

// Context window capacities, in bytes. The windows are diagnostics only;
// they are clipped to UTF-8 boundaries so a truncated window never splits
// a character.
const (
	SeenWindow  = 64
	AheadWindow = 12
)

// Error is a parse failure with positional context. Seen holds up to
// SeenWindow bytes before the failure point, Ahead up to AheadWindow bytes
// after it; SeenMore/AheadMore report that the window was truncated.
type Error struct {
	Kind      Kind
	Err       error
	Offset    int
	Seen      string
	Ahead     string
	SeenMore  bool
	AheadMore bool
}

func (e *Error) Error() string {
	var b strings.Builder

	switch {
	case e.Seen == "" && e.Ahead == "":
		b.WriteString("While looking at empty string")
	case e.Seen == "":
		b.WriteString("While looking at '")
		b.WriteString(e.Ahead)

		if e.AheadMore {
			b.WriteString("...")
		}

		b.WriteString("'")
	default:
		b.WriteString("After seeing '")

		if e.SeenMore {
			b.WriteString("...")
		}

		b.WriteString(e.Seen)
		b.WriteString("'")

		if e.Ahead == "" {
			b.WriteString(", with no more characters in the string")
		} else {
			b.WriteString(", looking at '")
			b.WriteString(e.Ahead)

			if e.AheadMore {
				b.WriteString("...")
			}

			b.WriteString("'")
		}
	}

	b.WriteString(": ")
	b.WriteString(e.Err.Error())

	return b.String()
}

// Unwrap exposes both the failure class and the wrapped reason, so
// errors.Is matches either.
func (e *Error) Unwrap() []error {
	return []error{e.Kind.class(), e.Err}
}

// NewError builds an Error for a failure at byte offset off of input,
// capturing the seen/ahead context windows around that point.
func NewError(kind Kind, err error, input string, off int) *Error {
	if off < 0 {
		off = 0
	}

	if off > len(input) {
		off = len(input)
	}

	e := &Error{Kind: kind, Err: err, Offset: off}
	e.Seen, e.SeenMore = clipTail(input[:off], SeenWindow)
	e.Ahead, e.AheadMore = clipHead(input[off:], AheadWindow)

	return e
}

// clipHead returns at most max leading bytes of s, shortened so the cut
// never lands inside a UTF-8 sequence.
func clipHead(s string, max int) (string, bool) {
	if len(s) <= max {
		return s, false
	}

	end := max
	for end > 0 && !utf8.RuneStart(s[end]) {
		end--
	}

	return s[:end], true
}

// clipTail returns at most max trailing bytes of s, shortened at the front
// to a UTF-8 boundary.
func clipTail(s string, max int) (string, bool) {
	if len(s) <= max {
		return s, false
	}

	start := len(s) - max
	for start < len(s) && !utf8.RuneStart(s[start]) {
		start++
	}

	return s[start:], true
}
