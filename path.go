package xgram

import (
	"strconv"
	"strings"
)

// StepKind enumerates the kinds of document path steps.
type StepKind int

const (
	// Member selects a named member (".name").
	Member StepKind = iota
	// MemberAny selects any member (".*").
	MemberAny
	// Index selects an array element ("[N]").
	Index
	// IndexAny selects any array element ("[*]").
	IndexAny
	// AnyPath matches any sequence of steps ("**").
	AnyPath
)

// PathStep is one step of a document path. Name is set for Member steps,
// Idx for Index steps.
type PathStep struct {
	Kind StepKind
	Name string
	Idx  uint32
}

// Path is a parsed document path. The empty path addresses the whole
// document.
type Path []PathStep

// String renders the path in document path syntax without the leading "$".
func (p Path) String() string {
	var sb strings.Builder
	for i, s := range p {
		switch s.Kind {
		case Member:
			if i > 0 {
				sb.WriteByte('.')
			}
			sb.WriteString(s.Name)
		case MemberAny:
			if i > 0 {
				sb.WriteByte('.')
			}
			sb.WriteByte('*')
		case Index:
			sb.WriteByte('[')
			sb.WriteString(strconv.FormatUint(uint64(s.Idx), 10))
			sb.WriteByte(']')
		case IndexAny:
			sb.WriteString("[*]")
		case AnyPath:
			if i > 0 {
				sb.WriteByte('.')
			}
			sb.WriteString("**")
		}
	}
	return sb.String()
}
