package xgram

import (
	"errors"
	"strings"
	"testing"

	"github.com/alecthomas/assert/v2"
)

func TestErrorMessageRendering(t *testing.T) {
	cause := errors.New("Unexpected character")

	tests := []struct {
		name     string
		input    string
		offset   int
		expected string
	}{
		{
			name:     "seen and ahead",
			input:    "foo # bar",
			offset:   4,
			expected: "After seeing 'foo ', looking at '# bar': Unexpected character",
		},
		{
			name:     "seen only",
			input:    "foo ",
			offset:   4,
			expected: "After seeing 'foo ', with no more characters in the string: Unexpected character",
		},
		{
			name:     "ahead only",
			input:    "# bar",
			offset:   0,
			expected: "While looking at '# bar': Unexpected character",
		},
		{
			name:     "empty input",
			input:    "",
			offset:   0,
			expected: "While looking at empty string: Unexpected character",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewError(Lexical, cause, tt.input, tt.offset)
			assert.Equal(t, tt.expected, err.Error())
		})
	}
}

func TestErrorWindowClipping(t *testing.T) {
	cause := errors.New("boom")

	seen := strings.Repeat("a", 100)
	ahead := strings.Repeat("b", 40)
	err := NewError(Syntax, cause, seen+ahead, len(seen))

	assert.Equal(t, SeenWindow, len(err.Seen))
	assert.True(t, err.SeenMore)
	assert.Equal(t, AheadWindow, len(err.Ahead))
	assert.True(t, err.AheadMore)
	assert.True(t, strings.HasPrefix(err.Error(), "After seeing '..."))
	assert.True(t, strings.Contains(err.Error(), "', looking at 'bbbbbbbbbbbb...': boom"))
}

func TestErrorWindowRuneBoundaries(t *testing.T) {
	cause := errors.New("boom")

	// Multi-byte runes straddling the window edges must be dropped whole,
	// never split into invalid byte sequences.
	seen := strings.Repeat("あ", 30) // 90 bytes
	ahead := strings.Repeat("か", 10) // 30 bytes
	err := NewError(Lexical, cause, seen+ahead, len(seen))

	assert.True(t, len(err.Seen) <= SeenWindow)
	assert.Equal(t, 0, len(err.Seen)%3)
	assert.True(t, len(err.Ahead) <= AheadWindow)
	assert.Equal(t, 0, len(err.Ahead)%3)
}

func TestErrorUnwrap(t *testing.T) {
	cause := errors.New("Unexpected token")

	tests := []struct {
		name  string
		kind  Kind
		class error
	}{
		{"lexical", Lexical, ErrLexical},
		{"syntax", Syntax, ErrSyntax},
		{"semantic", Semantic, ErrSemantic},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewError(tt.kind, cause, "input", 2)
			assert.True(t, errors.Is(err, tt.class))
			assert.True(t, errors.Is(err, cause))
			assert.False(t, errors.Is(err, errors.New("other")))
		})
	}
}
