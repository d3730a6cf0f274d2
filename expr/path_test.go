package expr

import (
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/shibukawa/xgram"
)

func TestParseDocField(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected xgram.Path
	}{
		{
			name:     "dollar path",
			input:    "$.a.b[0]",
			expected: xgram.Path{{Kind: xgram.Member, Name: "a"}, {Kind: xgram.Member, Name: "b"}, {Kind: xgram.Index, Idx: 0}},
		},
		{
			name:     "bare path",
			input:    "a.b",
			expected: xgram.Path{{Kind: xgram.Member, Name: "a"}, {Kind: xgram.Member, Name: "b"}},
		},
		{
			name:     "whole document",
			input:    "$",
			expected: xgram.Path{},
		},
		{
			name:     "leading double star",
			input:    "**.x",
			expected: xgram.Path{{Kind: xgram.AnyPath}, {Kind: xgram.Member, Name: "x"}},
		},
		{
			name:     "array wildcard",
			input:    "date[*]",
			expected: xgram.Path{{Kind: xgram.Member, Name: "date"}, {Kind: xgram.IndexAny}},
		},
		{
			name:     "member wildcard",
			input:    "$.a.*",
			expected: xgram.Path{{Kind: xgram.Member, Name: "a"}, {Kind: xgram.MemberAny}},
		},
		{
			name:     "quoted member",
			input:    `$."first name".last`,
			expected: xgram.Path{{Kind: xgram.Member, Name: "first name"}, {Kind: xgram.Member, Name: "last"}},
		},
		{
			name:     "index chain",
			input:    "a[0][1]",
			expected: xgram.Path{{Kind: xgram.Member, Name: "a"}, {Kind: xgram.Index, Idx: 0}, {Kind: xgram.Index, Idx: 1}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path, err := ParseDocField(tt.input)
			assert.NoError(t, err)
			assert.Equal(t, tt.expected, path)
		})
	}
}

func TestParseDocFieldErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		msg   string
	}{
		{name: "empty", input: "", msg: "Expected a document path"},
		{name: "starts with index", input: "[0].a", msg: "Expected a document path"},
		{name: "ends in double star", input: "a.b**", msg: "Document path ending in '**'"},
		{name: "only double star", input: "**", msg: "Document path ending in '**'"},
		{name: "trailing junk", input: "a.b extra", msg: "Unexpected characters at the end"},
		{name: "bad index", input: "a[x]", msg: "Expected '*' or integer index after '[' in a document path"},
		{name: "missing member", input: "$.", msg: "Expected member name or '*' after '.' in a document path"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseDocField(tt.input)
			assert.Equal(t, tt.msg, parseMsg(t, err))
		})
	}
}

func TestParseTableField(t *testing.T) {
	tests := []struct {
		name  string
		input string
		col   string
		path  xgram.Path
	}{
		{name: "bare column", input: "c", col: "`c`"},
		{name: "table qualified", input: "t.c", col: "`t`.`c`"},
		{name: "schema qualified", input: "s.t.c", col: "`s`.`t`.`c`"},
		{name: "quoted parts", input: "`my table`.c", col: "`my table`.`c`"},
		{
			name:  "with quoted path",
			input: "doc->'$.a.b'",
			col:   "`doc`",
			path:  xgram.Path{{Kind: xgram.Member, Name: "a"}, {Kind: xgram.Member, Name: "b"}},
		},
		{
			name:  "with inline path",
			input: "doc->$.a[0]",
			col:   "`doc`",
			path:  xgram.Path{{Kind: xgram.Member, Name: "a"}, {Kind: xgram.Index, Idx: 0}},
		},
		{
			name:  "double arrow",
			input: "doc->>'$.a'",
			col:   "`doc`",
			path:  xgram.Path{{Kind: xgram.Member, Name: "a"}},
		},
		{name: "whole document path", input: "doc->'$'", col: "`doc`"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			col, path, err := ParseTableField(tt.input)
			assert.NoError(t, err)
			assert.Equal(t, tt.col, col.String())
			assert.Equal(t, tt.path, path)
		})
	}
}

func TestParseTableFieldErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		msg   string
	}{
		{name: "empty", input: "", msg: "Expected a column identifier"},
		{name: "number", input: "42", msg: "Expected a column identifier"},
		{name: "dangling dot", input: "t.", msg: "Expected identifier after '.'"},
		{name: "trailing junk", input: "t.c extra", msg: "Unexpected characters at the end"},
		{name: "junk in quoted path", input: "doc->'$.a b'", msg: "Unexpected characters in a quoted path component"},
		{name: "path needs dollar", input: "doc->'a.b'", msg: "Expected '$' to start a document path"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := ParseTableField(tt.input)
			assert.Equal(t, tt.msg, parseMsg(t, err))
		})
	}
}
