package format

import (
	"encoding/hex"
	"io"
	"strconv"

	"github.com/beevik/etree"
	"github.com/shibukawa/xgram"
)

// XML mirrors an expression stream into an XML document, one element per
// event: <op> and <call> wrap their arguments, <value> carries the
// literal with a type attribute, references flatten into <column>,
// <field>, <param> and <variable>, containers become <array> and
// <doc>/<member>. It implements xgram.ExprVisitor with the document
// rooted at <expr>.
type XML struct {
	doc  *etree.Document
	root *etree.Element
}

func NewXML() *XML {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
	return &XML{doc: doc, root: doc.CreateElement("expr")}
}

// Document exposes the underlying etree document.
func (x *XML) Document() *etree.Document { return x.doc }

// WriteTo writes the document indented by two spaces.
func (x *XML) WriteTo(w io.Writer) (int64, error) {
	x.doc.Indent(2)
	return x.doc.WriteTo(w)
}

func (x *XML) Scalar() xgram.ScalarVisitor { return xmlScalar{x.root} }

func (x *XML) Arr() xgram.ListVisitor { return &xmlList{parent: x.root, name: "array"} }

func (x *XML) Doc() xgram.DocVisitor { return &xmlDoc{parent: x.root} }

type xmlExpr struct {
	el *etree.Element
}

func (e xmlExpr) Scalar() xgram.ScalarVisitor { return xmlScalar(e) }

func (e xmlExpr) Arr() xgram.ListVisitor { return &xmlList{parent: e.el, name: "array"} }

func (e xmlExpr) Doc() xgram.DocVisitor { return &xmlDoc{parent: e.el} }

type xmlScalar struct {
	el *etree.Element
}

func (s xmlScalar) Val() xgram.ValueVisitor { return xmlValue(s) }

func (s xmlScalar) Op(name string) xgram.ListVisitor {
	op := s.el.CreateElement("op")
	op.CreateAttr("name", name)
	return &xmlList{el: op}
}

func (s xmlScalar) Call(fn xgram.ObjectRef) xgram.ListVisitor {
	call := s.el.CreateElement("call")
	call.CreateAttr("name", fn.Name)
	if fn.Schema != nil {
		call.CreateAttr("schema", fn.Schema.Name)
	}
	return &xmlList{el: call}
}

func (s xmlScalar) ColumnRef(col xgram.ColumnRef, path xgram.Path) {
	el := s.el.CreateElement("column")
	el.CreateAttr("name", col.Name)
	if col.Table != nil {
		el.CreateAttr("table", col.Table.Name)
		if col.Table.Schema != nil {
			el.CreateAttr("schema", col.Table.Schema.Name)
		}
	}
	if path != nil {
		el.CreateAttr("path", PathString(path))
	}
}

func (s xmlScalar) PathRef(path xgram.Path) {
	s.el.CreateElement("field").CreateAttr("path", PathString(path))
}

func (s xmlScalar) Param(name string) {
	s.el.CreateElement("param").CreateAttr("name", name)
}

func (s xmlScalar) PosParam(pos uint16) {
	s.el.CreateElement("param").CreateAttr("pos", strconv.FormatUint(uint64(pos), 10))
}

func (s xmlScalar) Var(name string) {
	s.el.CreateElement("variable").CreateAttr("name", name)
}

type xmlValue struct {
	el *etree.Element
}

func (v xmlValue) value(typ, text string) {
	el := v.el.CreateElement("value")
	el.CreateAttr("type", typ)
	if text != "" {
		el.SetText(text)
	}
}

func (v xmlValue) Null() { v.value("null", "") }

func (v xmlValue) Str(s string) { v.value("string", s) }

func (v xmlValue) Int(n int64) { v.value("int", strconv.FormatInt(n, 10)) }

func (v xmlValue) Uint(n uint64) { v.value("uint", strconv.FormatUint(n, 10)) }

func (v xmlValue) Float(f float64) { v.value("float", strconv.FormatFloat(f, 'g', -1, 64)) }

func (v xmlValue) Bool(b bool) { v.value("bool", strconv.FormatBool(b)) }

func (v xmlValue) Octets(b []byte) { v.value("octets", hex.EncodeToString(b)) }

type xmlList struct {
	parent *etree.Element
	name   string
	el     *etree.Element
}

func (l *xmlList) ListBegin() {
	if l.el == nil {
		l.el = l.parent.CreateElement(l.name)
	}
}

func (l *xmlList) Elem() xgram.ExprVisitor { return xmlExpr{l.el} }

func (l *xmlList) ListEnd() {}

type xmlDoc struct {
	parent *etree.Element
	el     *etree.Element
}

func (d *xmlDoc) DocBegin() { d.el = d.parent.CreateElement("doc") }

func (d *xmlDoc) Key(key string) xgram.ExprVisitor {
	m := d.el.CreateElement("member")
	m.CreateAttr("key", key)
	return xmlExpr{m}
}

func (d *xmlDoc) DocEnd() {}
