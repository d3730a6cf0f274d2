// Package format renders expression callback streams for display. Text
// produces the compact canonical form used by this module's tooling and
// XML mirrors the stream into an etree document for XML dumps. Both
// implement the expression visitor contract, so anything that replays
// through visitors (parsed expressions, JSON documents, projections) can
// be rendered without knowing where the stream came from.
package format

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shibukawa/xgram"
)

// Text renders an expression stream as compact canonical text: operators
// and calls as name(args), array and document literals in literal form,
// references in backtick and $-path notation. Replay an expression into
// it and read the result with String.
type Text struct {
	sb strings.Builder
}

func NewText() *Text { return &Text{} }

func (t *Text) String() string { return t.sb.String() }

func (t *Text) Scalar() xgram.ScalarVisitor { return textScalar{&t.sb} }

func (t *Text) Arr() xgram.ListVisitor { return &textList{sb: &t.sb, open: "[", close: "]"} }

func (t *Text) Doc() xgram.DocVisitor { return &textDoc{sb: &t.sb} }

type textExpr struct {
	sb *strings.Builder
}

func (e textExpr) Scalar() xgram.ScalarVisitor { return textScalar(e) }

func (e textExpr) Arr() xgram.ListVisitor { return &textList{sb: e.sb, open: "[", close: "]"} }

func (e textExpr) Doc() xgram.DocVisitor { return &textDoc{sb: e.sb} }

type textScalar struct {
	sb *strings.Builder
}

func (s textScalar) Val() xgram.ValueVisitor { return textValue(s) }

func (s textScalar) Op(name string) xgram.ListVisitor {
	s.sb.WriteString(name)
	return &textList{sb: s.sb, open: "(", close: ")"}
}

func (s textScalar) Call(fn xgram.ObjectRef) xgram.ListVisitor {
	s.sb.WriteString(fn.String())
	return &textList{sb: s.sb, open: "(", close: ")"}
}

func (s textScalar) ColumnRef(col xgram.ColumnRef, path xgram.Path) {
	s.sb.WriteString(col.String())
	if path != nil {
		s.sb.WriteString("->")
		writePath(s.sb, path)
	}
}

func (s textScalar) PathRef(path xgram.Path) { writePath(s.sb, path) }

func (s textScalar) Param(name string) { s.sb.WriteString(":" + name) }

func (s textScalar) PosParam(pos uint16) { fmt.Fprintf(s.sb, "?%d", pos) }

func (s textScalar) Var(name string) { s.sb.WriteString("$" + name) }

type textValue struct {
	sb *strings.Builder
}

func (v textValue) Null() { v.sb.WriteString("null") }

func (v textValue) Str(s string) { v.sb.WriteString(strconv.Quote(s)) }

func (v textValue) Int(n int64) { v.sb.WriteString(strconv.FormatInt(n, 10)) }

func (v textValue) Uint(n uint64) { v.sb.WriteString(strconv.FormatUint(n, 10)) }

func (v textValue) Float(f float64) { v.sb.WriteString(strconv.FormatFloat(f, 'g', -1, 64)) }

func (v textValue) Bool(b bool) { v.sb.WriteString(strconv.FormatBool(b)) }

func (v textValue) Octets(b []byte) { v.sb.WriteString("B" + strconv.Quote(string(b))) }

type textList struct {
	sb          *strings.Builder
	open, close string
	n           int
}

func (l *textList) ListBegin() { l.sb.WriteString(l.open) }

func (l *textList) Elem() xgram.ExprVisitor {
	if l.n > 0 {
		l.sb.WriteByte(',')
	}
	l.n++
	return textExpr{l.sb}
}

func (l *textList) ListEnd() { l.sb.WriteString(l.close) }

type textDoc struct {
	sb *strings.Builder
	n  int
}

func (d *textDoc) DocBegin() { d.sb.WriteByte('{') }

func (d *textDoc) Key(key string) xgram.ExprVisitor {
	if d.n > 0 {
		d.sb.WriteByte(',')
	}
	d.n++
	d.sb.WriteString(strconv.Quote(key))
	d.sb.WriteByte(':')
	return textExpr{d.sb}
}

func (d *textDoc) DocEnd() { d.sb.WriteByte('}') }

// PathString renders a document path in $-notation.
func PathString(path xgram.Path) string {
	var sb strings.Builder
	writePath(&sb, path)
	return sb.String()
}

// writePath joins "$" with the path's own rendering; member-like first
// steps need a separating dot, index steps attach directly.
func writePath(sb *strings.Builder, path xgram.Path) {
	sb.WriteByte('$')
	if len(path) == 0 {
		return
	}
	if k := path[0].Kind; k == xgram.Member || k == xgram.MemberAny {
		sb.WriteByte('.')
	}
	sb.WriteString(path.String())
}
