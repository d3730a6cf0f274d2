package expr

import "github.com/shibukawa/xgram"

// node is one stored expression. A parse builds a node tree once; replay
// walks it into a visitor and can run any number of times.
type node interface {
	replay(v xgram.ExprVisitor)
}

// scalarVal descends to the value visitor of v, skipping the replay when
// any hop returns nil.
func scalarVal(v xgram.ExprVisitor) xgram.ValueVisitor {
	if v == nil {
		return nil
	}
	s := v.Scalar()
	if s == nil {
		return nil
	}
	return s.Val()
}

// replayArgs feeds args to a list visitor, bracketing them with ListBegin
// and ListEnd.
func replayArgs(l xgram.ListVisitor, args []node) {
	if l == nil {
		return
	}
	l.ListBegin()
	for _, a := range args {
		a.replay(l.Elem())
	}
	l.ListEnd()
}

type nullNode struct{}

func (nullNode) replay(v xgram.ExprVisitor) {
	if val := scalarVal(v); val != nil {
		val.Null()
	}
}

type strNode string

func (n strNode) replay(v xgram.ExprVisitor) {
	if val := scalarVal(v); val != nil {
		val.Str(string(n))
	}
}

type intNode int64

func (n intNode) replay(v xgram.ExprVisitor) {
	if val := scalarVal(v); val != nil {
		val.Int(int64(n))
	}
}

type uintNode uint64

func (n uintNode) replay(v xgram.ExprVisitor) {
	if val := scalarVal(v); val != nil {
		val.Uint(uint64(n))
	}
}

type floatNode float64

func (n floatNode) replay(v xgram.ExprVisitor) {
	if val := scalarVal(v); val != nil {
		val.Float(float64(n))
	}
}

type boolNode bool

func (n boolNode) replay(v xgram.ExprVisitor) {
	if val := scalarVal(v); val != nil {
		val.Bool(bool(n))
	}
}

type octetsNode []byte

func (n octetsNode) replay(v xgram.ExprVisitor) {
	if val := scalarVal(v); val != nil {
		val.Octets([]byte(n))
	}
}

// opNode is an operator application. Nullary operators, such as the lone
// "*" of count(*), have no args.
type opNode struct {
	name string
	args []node
}

func (n *opNode) replay(v xgram.ExprVisitor) {
	if v == nil {
		return
	}
	if s := v.Scalar(); s != nil {
		replayArgs(s.Op(n.name), n.args)
	}
}

type callNode struct {
	fn   xgram.ObjectRef
	args []node
}

func (n *callNode) replay(v xgram.ExprVisitor) {
	if v == nil {
		return
	}
	if s := v.Scalar(); s != nil {
		replayArgs(s.Call(n.fn), n.args)
	}
}

// colRefNode is a column reference with an optional document path. An
// empty path replays as nil so that "col->'$'" and plain "col" report the
// same way.
type colRefNode struct {
	col  xgram.ColumnRef
	path xgram.Path
}

func (n *colRefNode) replay(v xgram.ExprVisitor) {
	if v == nil {
		return
	}
	if s := v.Scalar(); s != nil {
		path := n.path
		if len(path) == 0 {
			path = nil
		}
		s.ColumnRef(n.col, path)
	}
}

// pathRefNode is a document field reference. The empty path addresses the
// whole document.
type pathRefNode struct {
	path xgram.Path
}

func (n *pathRefNode) replay(v xgram.ExprVisitor) {
	if v == nil {
		return
	}
	if s := v.Scalar(); s != nil {
		s.PathRef(n.path)
	}
}

type paramNode struct {
	name string
}

func (n *paramNode) replay(v xgram.ExprVisitor) {
	if v == nil {
		return
	}
	if s := v.Scalar(); s != nil {
		s.Param(n.name)
	}
}

type posParamNode struct {
	pos uint16
}

func (n *posParamNode) replay(v xgram.ExprVisitor) {
	if v == nil {
		return
	}
	if s := v.Scalar(); s != nil {
		s.PosParam(n.pos)
	}
}

type varNode struct {
	name string
}

func (n *varNode) replay(v xgram.ExprVisitor) {
	if v == nil {
		return
	}
	if s := v.Scalar(); s != nil {
		s.Var(n.name)
	}
}

// listNode is an array literal.
type listNode struct {
	elems []node
}

func (n *listNode) replay(v xgram.ExprVisitor) {
	if v == nil {
		return
	}
	replayArgs(v.Arr(), n.elems)
}

type docPair struct {
	key string
	val node
}

// docNode is a document literal. Pairs replay in the order they were
// written.
type docNode struct {
	pairs []docPair
}

func (n *docNode) replay(v xgram.ExprVisitor) {
	if v == nil {
		return
	}
	d := v.Doc()
	if d == nil {
		return
	}
	d.DocBegin()
	for _, kv := range n.pairs {
		kv.val.replay(d.Key(kv.key))
	}
	d.DocEnd()
}

// Expression is a parsed expression. It is detached from the source text
// and can be replayed into any number of visitors.
type Expression struct {
	root node
}

// Process replays the expression into v. A nil visitor, or a nil returned
// from any visitor hop, skips that part of the tree.
func (e *Expression) Process(v xgram.ExprVisitor) {
	if e == nil || e.root == nil {
		return
	}
	e.root.replay(v)
}
