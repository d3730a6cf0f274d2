// Package jsonparser parses standalone JSON documents into the visitor
// contract shared with the expression grammar. It drives
// github.com/creachadair/jtree's streaming scanner and adapts its events
// onto the Document/List/Value callbacks, so a JSON document and a
// document literal inside an expression report through identical code
// paths.
//
// The top-level value must be an object. Numbers keep the widest lossless
// representation: integers report uint64 (int64 when negative) and
// fractional or exponent forms report float64.
package jsonparser

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/creachadair/jtree"
	"github.com/shibukawa/xgram"
)

// Parse parses in as a single JSON document and reports it to v. A nil v
// validates the input without reporting. Trailing input after the closing
// brace is an error.
func Parse(in string, v xgram.DocVisitor) error {
	h := &handler{in: in, root: v}
	sc := jtree.NewScanner(strings.NewReader(in))
	if err := jtree.NewStreamWithScanner(sc).Parse(h); err != nil {
		var se *jtree.SyntaxError
		if errors.As(err, &se) {
			// jtree.SyntaxError carries only a LineCol; the byte offset of
			// the same location is still on the scanner.
			return xgram.NewError(xgram.Syntax, errors.New(se.Message), in, sc.Location().Pos)
		}
		return err
	}
	if !h.done {
		return xgram.NewError(xgram.Syntax, errors.New("Expected '{'"), in, len(in))
	}
	return nil
}

type frameKind int

const (
	frameDoc frameKind = iota
	frameKey
	frameList
)

// frame tracks one open container or pending member. A doc frame is pushed
// by '{' and popped by '}', a list frame by '[' and ']', a key frame by a
// member key and popped when the member's value ends. Visitors inside a
// frame may be nil when a caller skipped the subtree; events still arrive
// and keep the stack balanced, only the callbacks are suppressed.
type frame struct {
	kind frameKind
	doc  xgram.DocVisitor
	list xgram.ListVisitor
	key  xgram.ExprVisitor
}

type handler struct {
	in    string
	root  xgram.DocVisitor
	stack []frame
	done  bool
}

// target resolves the visitor for a value in the current position: the
// member's expression visitor inside a key frame, a fresh element visitor
// inside a list frame. At the top level only an object may start, and only
// one of them.
func (h *handler) target(loc jtree.Anchor) (xgram.ExprVisitor, error) {
	if len(h.stack) == 0 {
		if h.done {
			return nil, h.errAt(xgram.Syntax, "Unexpected characters at the end", loc)
		}
		return nil, h.errAt(xgram.Syntax, "Expected '{'", loc)
	}
	top := &h.stack[len(h.stack)-1]
	switch top.kind {
	case frameKey:
		return top.key, nil
	case frameList:
		if top.list == nil {
			return nil, nil
		}
		return top.list.Elem(), nil
	}
	return nil, nil
}

func (h *handler) BeginObject(loc jtree.Anchor) error {
	if len(h.stack) == 0 {
		if h.done {
			return h.errAt(xgram.Syntax, "Unexpected characters at the end", loc)
		}
		if h.root != nil {
			h.root.DocBegin()
		}
		h.stack = append(h.stack, frame{kind: frameDoc, doc: h.root})
		return nil
	}
	ev, err := h.target(loc)
	if err != nil {
		return err
	}
	var dv xgram.DocVisitor
	if ev != nil {
		dv = ev.Doc()
	}
	if dv != nil {
		dv.DocBegin()
	}
	h.stack = append(h.stack, frame{kind: frameDoc, doc: dv})
	return nil
}

func (h *handler) EndObject(jtree.Anchor) error {
	top := h.stack[len(h.stack)-1]
	h.stack = h.stack[:len(h.stack)-1]
	if top.doc != nil {
		top.doc.DocEnd()
	}
	if len(h.stack) == 0 {
		h.done = true
	}
	return nil
}

func (h *handler) BeginArray(loc jtree.Anchor) error {
	ev, err := h.target(loc)
	if err != nil {
		return err
	}
	var lv xgram.ListVisitor
	if ev != nil {
		lv = ev.Arr()
	}
	if lv != nil {
		lv.ListBegin()
	}
	h.stack = append(h.stack, frame{kind: frameList, list: lv})
	return nil
}

func (h *handler) EndArray(jtree.Anchor) error {
	top := h.stack[len(h.stack)-1]
	h.stack = h.stack[:len(h.stack)-1]
	if top.list != nil {
		top.list.ListEnd()
	}
	return nil
}

func (h *handler) BeginMember(loc jtree.Anchor) error {
	key, err := jtree.Unquote(loc.Text())
	if err != nil {
		return h.errAt(xgram.Syntax, err.Error(), loc)
	}
	var ev xgram.ExprVisitor
	if top := &h.stack[len(h.stack)-1]; top.doc != nil {
		ev = top.doc.Key(string(key))
	}
	h.stack = append(h.stack, frame{kind: frameKey, key: ev})
	return nil
}

func (h *handler) EndMember(jtree.Anchor) error {
	h.stack = h.stack[:len(h.stack)-1]
	return nil
}

func (h *handler) Value(loc jtree.Anchor) error {
	ev, err := h.target(loc)
	if err != nil {
		return err
	}
	if ev == nil {
		return nil
	}
	sv := ev.Scalar()
	if sv == nil {
		return nil
	}
	vv := sv.Val()
	if vv == nil {
		return nil
	}
	text := loc.Text()
	switch loc.Token() {
	case jtree.String:
		dec, err := jtree.Unquote(text)
		if err != nil {
			return h.errAt(xgram.Syntax, err.Error(), loc)
		}
		vv.Str(string(dec))
	case jtree.Integer:
		if len(text) > 0 && text[0] == '-' {
			n, err := strconv.ParseInt(string(text), 10, 64)
			if err != nil {
				return h.convErr(string(text), loc)
			}
			vv.Int(n)
		} else {
			n, err := strconv.ParseUint(string(text), 10, 64)
			if err != nil {
				return h.convErr(string(text), loc)
			}
			vv.Uint(n)
		}
	case jtree.Number:
		f, err := strconv.ParseFloat(string(text), 64)
		if err != nil {
			return h.convErr(string(text), loc)
		}
		vv.Float(f)
	case jtree.True:
		vv.Bool(true)
	case jtree.False:
		vv.Bool(false)
	case jtree.Null:
		vv.Null()
	}
	return nil
}

func (h *handler) EndOfInput(jtree.Anchor) {}

func (h *handler) errAt(kind xgram.Kind, msg string, loc jtree.Anchor) error {
	return xgram.NewError(kind, errors.New(msg), h.in, loc.Location().Pos)
}

func (h *handler) convErr(text string, loc jtree.Anchor) error {
	return xgram.NewError(xgram.Semantic,
		fmt.Errorf("Failed to convert string '%s' to a number", text), h.in, loc.Location().Pos)
}
