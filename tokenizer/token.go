package tokenizer

import "errors"

// Sentinel errors. The capitalized wording is kept because these strings
// surface verbatim inside positioned diagnostics shown to users.
var (
	ErrUnexpectedCharacter = errors.New("Unexpected character")
	ErrInvalidEncoding     = errors.New("Invalid utf8 string")
	ErrUnterminatedString  = errors.New("Unterminated quoted string starting with")
	ErrNoDecimalDigits     = errors.New("No digits after decimal point")
	ErrNoExponentDigits    = errors.New("No digits after exponent marker")
	ErrInvalidHex          = errors.New("Invalid hexadecimal literal")
)

// TokenType represents the type of a token
type TokenType int

const (
	// EMPTY is the zero value; the tokenizer never produces it
	EMPTY TokenType = iota

	// Tokens recognized by scanner logic
	WORD     // bare word: identifiers, keywords
	QWORD    // word in backtick quotes
	QSTRING  // string in single quotes
	QQSTRING // string in double quotes
	NUMBER   // floating number
	INTEGER  // integer number
	HEX      // hexadecimal number

	// Two-character symbols
	NE         // !=
	DF         // <>
	GE         // >=
	LE         // <=
	LSHIFT     // <<
	RSHIFT     // >>
	DOUBLESTAR // **
	ARROW2     // ->>
	ARROW      // ->
	AMP2       // &&
	BAR2       // ||
	EQ2        // ==

	// One-character symbols
	LPAREN     // (
	RPAREN     // )
	LCURLY     // {
	RCURLY     // }
	LSQBRACKET // [
	RSQBRACKET // ]
	DOT        // .
	COMMA      // ,
	EQ         // =
	GT         // >
	LT         // <
	AMP        // &
	BAR        // |
	HAT        // ^
	PLUS       // +
	MINUS      // -
	STAR       // *
	SLASH      // /
	PERCENT    // %
	BANG       // !
	TILDE      // ~
	QUESTION   // ?
	COLON      // :
	DOLLAR     // $
)

// String returns the string representation of TokenType
func (t TokenType) String() string {
	switch t {
	case EMPTY:
		return "EMPTY"
	case WORD:
		return "WORD"
	case QWORD:
		return "QWORD"
	case QSTRING:
		return "QSTRING"
	case QQSTRING:
		return "QQSTRING"
	case NUMBER:
		return "NUMBER"
	case INTEGER:
		return "INTEGER"
	case HEX:
		return "HEX"
	case NE:
		return "NE"
	case DF:
		return "DF"
	case GE:
		return "GE"
	case LE:
		return "LE"
	case LSHIFT:
		return "LSHIFT"
	case RSHIFT:
		return "RSHIFT"
	case DOUBLESTAR:
		return "DOUBLESTAR"
	case ARROW2:
		return "ARROW2"
	case ARROW:
		return "ARROW"
	case AMP2:
		return "AMP2"
	case BAR2:
		return "BAR2"
	case EQ2:
		return "EQ2"
	case LPAREN:
		return "LPAREN"
	case RPAREN:
		return "RPAREN"
	case LCURLY:
		return "LCURLY"
	case RCURLY:
		return "RCURLY"
	case LSQBRACKET:
		return "LSQBRACKET"
	case RSQBRACKET:
		return "RSQBRACKET"
	case DOT:
		return "DOT"
	case COMMA:
		return "COMMA"
	case EQ:
		return "EQ"
	case GT:
		return "GT"
	case LT:
		return "LT"
	case AMP:
		return "AMP"
	case BAR:
		return "BAR"
	case HAT:
		return "HAT"
	case PLUS:
		return "PLUS"
	case MINUS:
		return "MINUS"
	case STAR:
		return "STAR"
	case SLASH:
		return "SLASH"
	case PERCENT:
		return "PERCENT"
	case BANG:
		return "BANG"
	case TILDE:
		return "TILDE"
	case QUESTION:
		return "QUESTION"
	case COLON:
		return "COLON"
	case DOLLAR:
		return "DOLLAR"
	default:
		return "UNKNOWN"
	}
}

// Token represents a token. Offset and End delimit the token's byte span
// within the input, including any quotes. Text holds the decoded content:
// for quoted forms the quotes are stripped and escapes resolved, for hex
// literals only the digits remain.
type Token struct {
	Type   TokenType
	Text   string
	Offset int
	End    int
}

// String returns the string representation of Token
func (t Token) String() string {
	return t.Type.String() + ": " + t.Text
}
