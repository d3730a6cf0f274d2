// Package eval evaluates parsed filter expressions against in-memory
// values by translating them into CEL programs. It covers the operator
// subset a client can decide locally: logic, comparisons, arithmetic,
// IN, BETWEEN and literal LIKE patterns. Server-side constructs such as
// function calls, IS tests, regular expressions and wildcard document
// paths report ErrUnsupported.
package eval

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/google/cel-go/cel"
	"github.com/shibukawa/xgram"
	"github.com/shibukawa/xgram/expr"
)

// ErrUnsupported marks expression constructs that have no client-side
// evaluation.
var ErrUnsupported = errors.New("not evaluable client-side")

// CEL variable names the translation selects from: document paths read
// DocVar, column references read RowVar. Named parameters keep their own
// names.
const (
	DocVar = "doc"
	RowVar = "row"
)

// Predicate is a compiled filter.
type Predicate struct {
	src string
	prg cel.Program
}

// Compile translates a parsed expression into a CEL program.
func Compile(e *expr.Expression) (*Predicate, error) {
	var root cnode
	e.Process(exprCollector{slot: &root})
	if root == nil {
		return nil, fmt.Errorf("%w: empty expression", ErrUnsupported)
	}

	tr := &translator{vars: map[string]bool{}}
	if err := tr.render(root); err != nil {
		return nil, err
	}
	src := tr.sb.String()

	names := make([]string, 0, len(tr.vars))
	for name := range tr.vars {
		names = append(names, name)
	}
	slices.Sort(names)

	opts := []cel.EnvOption{cel.CrossTypeNumericComparisons(true)}
	for _, name := range names {
		opts = append(opts, cel.Variable(name, cel.DynType))
	}
	env, err := cel.NewEnv(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}

	ast, issues := env.Compile(src)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("failed to compile %q: %w", src, issues.Err())
	}
	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("failed to build program for %q: %w", src, err)
	}
	return &Predicate{src: src, prg: prg}, nil
}

// CompileString parses input in the given mode and compiles it.
func CompileString(mode expr.Mode, input string) (*Predicate, error) {
	e, err := expr.Parse(mode, input)
	if err != nil {
		return nil, err
	}
	return Compile(e)
}

// CEL returns the translated CEL source.
func (p *Predicate) CEL() string { return p.src }

// Eval runs the predicate. vars supplies DocVar or RowVar plus any named
// parameters the expression uses; a missing variable is an evaluation
// error. The result must be a boolean.
func (p *Predicate) Eval(vars map[string]any) (bool, error) {
	out, _, err := p.prg.Eval(vars)
	if err != nil {
		return false, fmt.Errorf("evaluating %q: %w", p.src, err)
	}
	b, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("predicate %q evaluated to %T, not bool", p.src, out.Value())
	}
	return b, nil
}

type translator struct {
	sb   strings.Builder
	vars map[string]bool
}

// celBinary maps operator names with a direct two-argument CEL spelling.
var celBinary = map[string]string{
	"&&": "&&", "||": "||",
	"==": "==", "!=": "!=",
	"<": "<", "<=": "<=", ">": ">", ">=": ">=",
	"+": "+", "-": "-", "*": "*", "/": "/", "%": "%",
}

func (t *translator) render(n cnode) error {
	switch n := n.(type) {
	case *litNode:
		t.lit(n.v)
		return nil
	case *opNode:
		return t.op(n)
	case *callNode:
		return fmt.Errorf("%w: function call %s", ErrUnsupported, n.fn.String())
	case *colNode:
		return t.column(n)
	case *pathNode:
		t.vars[DocVar] = true
		t.sb.WriteString(DocVar)
		return t.path(n.path)
	case *paramNode:
		t.vars[n.name] = true
		t.sb.WriteString(n.name)
		return nil
	case *posParamNode:
		return fmt.Errorf("%w: positional parameter ?%d", ErrUnsupported, n.pos)
	case *varNode:
		return fmt.Errorf("%w: session variable $%s", ErrUnsupported, n.name)
	case *arrNode:
		return t.list(n.elems)
	case *docNode:
		t.sb.WriteByte('{')
		for i, kv := range n.pairs {
			if i > 0 {
				t.sb.WriteString(", ")
			}
			t.sb.WriteString(strconv.Quote(kv.key))
			t.sb.WriteString(": ")
			if err := t.render(kv.val); err != nil {
				return err
			}
		}
		t.sb.WriteByte('}')
		return nil
	}
	return fmt.Errorf("%w: empty expression", ErrUnsupported)
}

func (t *translator) op(n *opNode) error {
	if sym, ok := celBinary[n.name]; ok && len(n.args) == 2 {
		return t.binary(sym, n.args[0], n.args[1])
	}
	switch n.name {
	case "!", "not":
		if len(n.args) == 1 {
			return t.unary(n.args[0])
		}
	case "-":
		if len(n.args) == 1 {
			t.sb.WriteString("-(")
			if err := t.render(n.args[0]); err != nil {
				return err
			}
			t.sb.WriteByte(')')
			return nil
		}
	case "in", "not_in":
		if len(n.args) >= 1 {
			return t.inList(n.name == "not_in", n.args)
		}
	case "cont_in", "not_cont_in":
		if len(n.args) == 2 {
			return t.contains(n.name == "not_cont_in", n.args[0], n.args[1])
		}
	case "between", "not_between":
		if len(n.args) == 3 {
			return t.between(n.name == "not_between", n.args[0], n.args[1], n.args[2])
		}
	case "like", "not_like":
		if len(n.args) == 2 {
			return t.like(n.name == "not_like", n.args[0], n.args[1])
		}
	}
	return fmt.Errorf("%w: operator '%s'", ErrUnsupported, n.name)
}

func (t *translator) binary(sym string, l, r cnode) error {
	t.sb.WriteByte('(')
	if err := t.render(l); err != nil {
		return err
	}
	t.sb.WriteByte(' ')
	t.sb.WriteString(sym)
	t.sb.WriteByte(' ')
	if err := t.render(r); err != nil {
		return err
	}
	t.sb.WriteByte(')')
	return nil
}

func (t *translator) unary(a cnode) error {
	t.sb.WriteString("!(")
	if err := t.render(a); err != nil {
		return err
	}
	t.sb.WriteByte(')')
	return nil
}

func (t *translator) inList(neg bool, args []cnode) error {
	if neg {
		t.sb.WriteByte('!')
	}
	t.sb.WriteByte('(')
	if err := t.render(args[0]); err != nil {
		return err
	}
	t.sb.WriteString(" in ")
	if err := t.list(args[1:]); err != nil {
		return err
	}
	t.sb.WriteByte(')')
	return nil
}

func (t *translator) contains(neg bool, elem, coll cnode) error {
	if neg {
		t.sb.WriteByte('!')
	}
	t.sb.WriteByte('(')
	if err := t.render(elem); err != nil {
		return err
	}
	t.sb.WriteString(" in ")
	if err := t.render(coll); err != nil {
		return err
	}
	t.sb.WriteByte(')')
	return nil
}

func (t *translator) between(neg bool, v, lo, hi cnode) error {
	if neg {
		t.sb.WriteByte('!')
	}
	t.sb.WriteByte('(')
	if err := t.binary(">=", v, lo); err != nil {
		return err
	}
	t.sb.WriteString(" && ")
	if err := t.binary("<=", v, hi); err != nil {
		return err
	}
	t.sb.WriteByte(')')
	return nil
}

func (t *translator) like(neg bool, val, pat cnode) error {
	lit, ok := pat.(*litNode)
	if !ok {
		return fmt.Errorf("%w: non-literal LIKE pattern", ErrUnsupported)
	}
	s, ok := lit.v.(string)
	if !ok {
		return fmt.Errorf("%w: non-string LIKE pattern", ErrUnsupported)
	}
	if neg {
		t.sb.WriteByte('!')
	}
	t.sb.WriteByte('(')
	if err := t.render(val); err != nil {
		return err
	}
	t.sb.WriteString(".matches(")
	t.sb.WriteString(strconv.Quote(likePattern(s)))
	t.sb.WriteString("))")
	return nil
}

// likePattern translates a LIKE pattern into an anchored RE2 expression:
// '%' matches any run, '_' one character, backslash escapes the next
// character.
func likePattern(pat string) string {
	var sb strings.Builder
	sb.WriteByte('^')
	esc := false
	for _, r := range pat {
		if esc {
			sb.WriteString(regexp.QuoteMeta(string(r)))
			esc = false
			continue
		}
		switch r {
		case '\\':
			esc = true
		case '%':
			sb.WriteString(".*")
		case '_':
			sb.WriteByte('.')
		default:
			sb.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	if esc {
		sb.WriteString(`\\`)
	}
	sb.WriteByte('$')
	return sb.String()
}

func (t *translator) lit(v any) {
	switch v := v.(type) {
	case nil:
		t.sb.WriteString("null")
	case string:
		t.sb.WriteString(strconv.Quote(v))
	case int64:
		t.sb.WriteString(strconv.FormatInt(v, 10))
	case uint64:
		t.sb.WriteString(strconv.FormatUint(v, 10))
		if v > math.MaxInt64 {
			t.sb.WriteByte('u')
		}
	case float64:
		s := strconv.FormatFloat(v, 'g', -1, 64)
		if !strings.ContainsAny(s, ".eE") {
			s += ".0"
		}
		t.sb.WriteString(s)
	case bool:
		t.sb.WriteString(strconv.FormatBool(v))
	case []byte:
		t.sb.WriteByte('b')
		t.sb.WriteString(strconv.Quote(string(v)))
	}
}

func (t *translator) column(n *colNode) error {
	if n.col.Table != nil {
		return fmt.Errorf("%w: qualified column %s", ErrUnsupported, n.col.String())
	}
	t.vars[RowVar] = true
	t.sb.WriteString(RowVar)
	t.member(n.col.Name)
	return t.path(n.path)
}

func (t *translator) path(path xgram.Path) error {
	for _, step := range path {
		switch step.Kind {
		case xgram.Member:
			t.member(step.Name)
		case xgram.Index:
			t.sb.WriteByte('[')
			t.sb.WriteString(strconv.FormatUint(uint64(step.Idx), 10))
			t.sb.WriteByte(']')
		default:
			return fmt.Errorf("%w: wildcard document path", ErrUnsupported)
		}
	}
	return nil
}

func (t *translator) list(elems []cnode) error {
	t.sb.WriteByte('[')
	for i, el := range elems {
		if i > 0 {
			t.sb.WriteString(", ")
		}
		if err := t.render(el); err != nil {
			return err
		}
	}
	t.sb.WriteByte(']')
	return nil
}

var celIdent = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// CEL keywords cannot appear as select identifiers; such members use the
// index form instead.
var celReserved = map[string]bool{
	"true": true, "false": true, "null": true, "in": true,
	"as": true, "break": true, "const": true, "continue": true,
	"else": true, "for": true, "function": true, "if": true,
	"import": true, "let": true, "loop": true, "package": true,
	"namespace": true, "return": true, "var": true, "void": true,
	"while": true,
}

func (t *translator) member(name string) {
	if celIdent.MatchString(name) && !celReserved[name] {
		t.sb.WriteByte('.')
		t.sb.WriteString(name)
		return
	}
	t.sb.WriteByte('[')
	t.sb.WriteString(strconv.Quote(name))
	t.sb.WriteByte(']')
}
