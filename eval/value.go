package eval

import (
	"github.com/shibukawa/xgram"
	"github.com/shibukawa/xgram/jsonparser"
)

// Document parses a JSON document into plain Go values: objects become
// map[string]any, arrays []any, numbers keep the widest lossless type the
// parser reports. The result is what Eval reads through DocVar.
func Document(in string) (map[string]any, error) {
	b := &docBuilder{m: map[string]any{}}
	if err := jsonparser.Parse(in, b); err != nil {
		return nil, err
	}
	return b.m, nil
}

// setter receives one finished value. Scalars deliver on the spot;
// containers deliver when their closing callback fires.
type setter func(v any)

type docBuilder struct {
	m   map[string]any
	set setter
}

func (d *docBuilder) DocBegin() {}

func (d *docBuilder) Key(key string) xgram.ExprVisitor {
	return exprSlot{set: func(v any) { d.m[key] = v }}
}

func (d *docBuilder) DocEnd() {
	if d.set != nil {
		d.set(d.m)
	}
}

type arrBuilder struct {
	vals []any
	set  setter
}

func (a *arrBuilder) ListBegin() {}

func (a *arrBuilder) Elem() xgram.ExprVisitor {
	a.vals = append(a.vals, nil)
	i := len(a.vals) - 1
	return exprSlot{set: func(v any) { a.vals[i] = v }}
}

func (a *arrBuilder) ListEnd() { a.set(a.vals) }

type exprSlot struct {
	set setter
}

func (e exprSlot) Scalar() xgram.ScalarVisitor { return scalarSlot(e) }

func (e exprSlot) Arr() xgram.ListVisitor {
	return &arrBuilder{vals: []any{}, set: e.set}
}

func (e exprSlot) Doc() xgram.DocVisitor {
	return &docBuilder{m: map[string]any{}, set: e.set}
}

type scalarSlot struct {
	set setter
}

func (s scalarSlot) Val() xgram.ValueVisitor { return valueSlot(s) }

// The JSON stream reports literal values only; the remaining scalar forms
// cannot occur there and are skipped.
func (s scalarSlot) Op(string) xgram.ListVisitor            { return nil }
func (s scalarSlot) Call(xgram.ObjectRef) xgram.ListVisitor { return nil }
func (s scalarSlot) ColumnRef(xgram.ColumnRef, xgram.Path)  {}
func (s scalarSlot) PathRef(xgram.Path)                     {}
func (s scalarSlot) Param(string)                           {}
func (s scalarSlot) PosParam(uint16)                        {}
func (s scalarSlot) Var(string)                             {}

type valueSlot struct {
	set setter
}

func (v valueSlot) Null()           { v.set(nil) }
func (v valueSlot) Str(s string)    { v.set(s) }
func (v valueSlot) Int(i int64)     { v.set(i) }
func (v valueSlot) Uint(u uint64)   { v.set(u) }
func (v valueSlot) Float(f float64) { v.set(f) }
func (v valueSlot) Bool(b bool)     { v.set(b) }
func (v valueSlot) Octets(b []byte) { v.set(b) }
