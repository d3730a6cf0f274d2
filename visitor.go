package xgram

// The visitor contracts below are how every engine in this module delivers
// its output: the expression grammar, the document/array sub-grammar and the
// standalone JSON parser all report through them. A visitor method that
// returns a sub-visitor may return nil to skip that subtree; parsing
// continues and only the callbacks are suppressed.

// ExprVisitor receives a single expression. Exactly one of its methods is
// invoked per expression: Scalar for plain values, operators, calls and
// references, Arr for array literals, Doc for document literals.
type ExprVisitor interface {
	Scalar() ScalarVisitor
	Arr() ListVisitor
	Doc() DocVisitor
}

// ScalarVisitor receives the scalar alternatives of an expression.
type ScalarVisitor interface {
	// Val reports a literal value.
	Val() ValueVisitor
	// Op reports an operator application; arguments follow on the
	// returned list visitor.
	Op(name string) ListVisitor
	// Call reports a function call; arguments follow on the returned
	// list visitor.
	Call(fn ObjectRef) ListVisitor
	// ColumnRef reports a column reference with an optional document
	// path suffix. A nil path means the reference has no path; an empty
	// non-nil path addresses the whole document.
	ColumnRef(col ColumnRef, path Path)
	// PathRef reports a document field reference. An empty path
	// addresses the whole document.
	PathRef(path Path)
	// Param reports a named placeholder (":name").
	Param(name string)
	// PosParam reports a positional placeholder ("?"), numbered in
	// order of appearance starting at zero.
	PosParam(pos uint16)
	// Var reports a variable reference ("$name").
	Var(name string)
}

// ValueVisitor receives literal values.
type ValueVisitor interface {
	Null()
	Str(v string)
	Int(v int64)
	Uint(v uint64)
	Float(v float64)
	Bool(v bool)
	// Octets reports raw bytes: strings parsed in blob context and
	// auxiliary byte payloads such as cast target types.
	Octets(v []byte)
}

// ListVisitor receives the elements of an array literal or an argument
// list, bracketed by ListBegin and ListEnd.
type ListVisitor interface {
	ListBegin()
	// Elem is called once per element; the element's expression is
	// reported on the returned visitor.
	Elem() ExprVisitor
	ListEnd()
}

// DocVisitor receives the members of a document literal, bracketed by
// DocBegin and DocEnd.
type DocVisitor interface {
	DocBegin()
	// Key is called once per member; the member's value expression is
	// reported on the returned visitor.
	Key(key string) ExprVisitor
	DocEnd()
}
