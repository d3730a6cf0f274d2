package eval

import "github.com/shibukawa/xgram"

// The collectors rebuild a replayed expression as a small tree the
// translator walks. Replay cannot fail, so constructs with no CEL
// rendering are rejected later, when the tree is translated.

type cnode interface{}

// litNode holds a literal as one of nil, string, int64, uint64, float64,
// bool or []byte.
type litNode struct {
	v any
}

type opNode struct {
	name string
	args []cnode
}

type callNode struct {
	fn   xgram.ObjectRef
	args []cnode
}

type colNode struct {
	col  xgram.ColumnRef
	path xgram.Path
}

type pathNode struct {
	path xgram.Path
}

type paramNode struct {
	name string
}

type posParamNode struct {
	pos uint16
}

type varNode struct {
	name string
}

type arrNode struct {
	elems []cnode
}

type docEntry struct {
	key string
	val cnode
}

type docNode struct {
	pairs []docEntry
}

// exprCollector writes whatever the producer reports into its slot.
type exprCollector struct {
	slot *cnode
}

func (c exprCollector) Scalar() xgram.ScalarVisitor { return scalarCollector(c) }

func (c exprCollector) Arr() xgram.ListVisitor {
	n := &arrNode{}
	*c.slot = n
	return &listCollector{dst: &n.elems}
}

func (c exprCollector) Doc() xgram.DocVisitor {
	n := &docNode{}
	*c.slot = n
	return &docCollector{n: n}
}

type scalarCollector struct {
	slot *cnode
}

func (c scalarCollector) Val() xgram.ValueVisitor { return valueCollector(c) }

func (c scalarCollector) Op(name string) xgram.ListVisitor {
	n := &opNode{name: name}
	*c.slot = n
	return &listCollector{dst: &n.args}
}

func (c scalarCollector) Call(fn xgram.ObjectRef) xgram.ListVisitor {
	n := &callNode{fn: fn}
	*c.slot = n
	return &listCollector{dst: &n.args}
}

func (c scalarCollector) ColumnRef(col xgram.ColumnRef, path xgram.Path) {
	*c.slot = &colNode{col: col, path: path}
}

func (c scalarCollector) PathRef(path xgram.Path) { *c.slot = &pathNode{path: path} }

func (c scalarCollector) Param(name string) { *c.slot = &paramNode{name: name} }

func (c scalarCollector) PosParam(pos uint16) { *c.slot = &posParamNode{pos: pos} }

func (c scalarCollector) Var(name string) { *c.slot = &varNode{name: name} }

type valueCollector struct {
	slot *cnode
}

func (c valueCollector) Null() { *c.slot = &litNode{} }

func (c valueCollector) Str(v string) { *c.slot = &litNode{v: v} }

func (c valueCollector) Int(v int64) { *c.slot = &litNode{v: v} }

func (c valueCollector) Uint(v uint64) { *c.slot = &litNode{v: v} }

func (c valueCollector) Float(v float64) { *c.slot = &litNode{v: v} }

func (c valueCollector) Bool(v bool) { *c.slot = &litNode{v: v} }

func (c valueCollector) Octets(v []byte) { *c.slot = &litNode{v: v} }

type listCollector struct {
	dst *[]cnode
}

func (l *listCollector) ListBegin() {}

// Elem appends a slot for the next element. The returned collector is
// filled before the producer asks for another element, so taking the
// address of the freshly appended entry is safe.
func (l *listCollector) Elem() xgram.ExprVisitor {
	*l.dst = append(*l.dst, nil)
	return exprCollector{slot: &(*l.dst)[len(*l.dst)-1]}
}

func (l *listCollector) ListEnd() {}

type docCollector struct {
	n *docNode
}

func (d *docCollector) DocBegin() {}

func (d *docCollector) Key(key string) xgram.ExprVisitor {
	d.n.pairs = append(d.n.pairs, docEntry{key: key})
	return exprCollector{slot: &d.n.pairs[len(d.n.pairs)-1].val}
}

func (d *docCollector) DocEnd() {}
