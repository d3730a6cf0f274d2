package expr

import "github.com/shibukawa/xgram/tokenizer"

// keyword identifies a reserved word of the expression grammar. Keywords
// are matched ASCII case-insensitively and only against plain WORD tokens;
// a quoted identifier is never a keyword.
type keyword int

const (
	kwNone keyword = iota
	kwNot
	kwAnd
	kwOr
	kwXor
	kwIs
	kwBetween
	kwTrue
	kwFalse
	kwNull
	kwLike
	kwRlike
	kwInterval
	kwRegexp
	kwOverlaps
	kwEscape
	kwHex
	kwBin
	kwMod
	kwAs
	kwUsing
	kwAsc
	kwDesc
	kwCast
	kwCharacter
	kwSet
	kwCharset
	kwAscii
	kwUnicode
	kwByte
	kwBinary
	kwChar
	kwNchar
	kwDate
	kwDatetime
	kwTime
	kwDecimal
	kwSigned
	kwUnsigned
	kwInteger
	kwInt
	kwJSON
	kwIn
	kwSounds
	kwLeading
	kwTrailing
	kwBoth
	kwFrom
	kwMicrosecond
	kwSecond
	kwMinute
	kwHour
	kwDay
	kwWeek
	kwMonth
	kwQuarter
	kwYear
)

var keywords = map[string]keyword{
	"NOT":         kwNot,
	"AND":         kwAnd,
	"OR":          kwOr,
	"XOR":         kwXor,
	"IS":          kwIs,
	"BETWEEN":     kwBetween,
	"TRUE":        kwTrue,
	"FALSE":       kwFalse,
	"NULL":        kwNull,
	"LIKE":        kwLike,
	"RLIKE":       kwRlike,
	"INTERVAL":    kwInterval,
	"REGEXP":      kwRegexp,
	"OVERLAPS":    kwOverlaps,
	"ESCAPE":      kwEscape,
	"HEX":         kwHex,
	"BIN":         kwBin,
	"MOD":         kwMod,
	"AS":          kwAs,
	"USING":       kwUsing,
	"ASC":         kwAsc,
	"DESC":        kwDesc,
	"CAST":        kwCast,
	"CHARACTER":   kwCharacter,
	"SET":         kwSet,
	"CHARSET":     kwCharset,
	"ASCII":       kwAscii,
	"UNICODE":     kwUnicode,
	"BYTE":        kwByte,
	"BINARY":      kwBinary,
	"CHAR":        kwChar,
	"NCHAR":       kwNchar,
	"DATE":        kwDate,
	"DATETIME":    kwDatetime,
	"TIME":        kwTime,
	"DECIMAL":     kwDecimal,
	"SIGNED":      kwSigned,
	"UNSIGNED":    kwUnsigned,
	"INTEGER":     kwInteger,
	"INT":         kwInt,
	"JSON":        kwJSON,
	"IN":          kwIn,
	"SOUNDS":      kwSounds,
	"LEADING":     kwLeading,
	"TRAILING":    kwTrailing,
	"BOTH":        kwBoth,
	"FROM":        kwFrom,
	"MICROSECOND": kwMicrosecond,
	"SECOND":      kwSecond,
	"MINUTE":      kwMinute,
	"HOUR":        kwHour,
	"DAY":         kwDay,
	"WEEK":        kwWeek,
	"MONTH":       kwMonth,
	"QUARTER":     kwQuarter,
	"YEAR":        kwYear,
}

// lookupKeyword returns the keyword tok spells, or kwNone.
func lookupKeyword(tok tokenizer.Token) keyword {
	if tok.Type != tokenizer.WORD {
		return kwNone
	}
	return keywords[asciiUpper(tok.Text)]
}

// asciiUpper folds ASCII letters to upper case. Keyword matching is fixed
// to ASCII and must not shift with the process locale, so this avoids
// strings.ToUpper and its Unicode tables.
func asciiUpper(s string) string {
	upper := []byte(s)
	changed := false
	for i := 0; i < len(upper); i++ {
		if c := upper[i]; 'a' <= c && c <= 'z' {
			upper[i] = c - 'a' + 'A'
			changed = true
		}
	}
	if !changed {
		return s
	}
	return string(upper)
}
