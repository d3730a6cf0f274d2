package expr

import (
	"strings"
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/shibukawa/xgram"
)

type orderRecord struct {
	dir Direction
	sb  strings.Builder
}

func (o *orderRecord) SortKey(dir Direction) xgram.ExprVisitor {
	o.dir = dir
	return render{&o.sb}
}

func TestOrderParser(t *testing.T) {
	tests := []struct {
		name  string
		mode  Mode
		input string
		dir   Direction
		expr  string
	}{
		{name: "default ascending", mode: Document, input: "a", dir: Asc, expr: "$.a"},
		{name: "explicit ascending", mode: Document, input: "a ASC", dir: Asc, expr: "$.a"},
		{name: "descending", mode: Document, input: "a DESC", dir: Desc, expr: "$.a"},
		{name: "lowercase direction", mode: Document, input: "a desc", dir: Desc, expr: "$.a"},
		{name: "expression key", mode: Document, input: "age + 1 DESC", dir: Desc, expr: "+($.age,1)"},
		{name: "table mode key", mode: Table, input: "t.c DESC", dir: Desc, expr: "`t`.`c`"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &orderRecord{}
			err := NewOrderParser(tt.mode, tt.input).Process(rec)
			assert.NoError(t, err)
			assert.Equal(t, tt.dir, rec.dir)
			assert.Equal(t, tt.expr, rec.sb.String())
		})
	}
}

func TestOrderParserErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		msg   string
	}{
		{name: "empty", input: "", msg: "Expected sorting order specification"},
		{name: "bad direction", input: "a banana", msg: "Expected sorting direction ASC or DESC"},
		{name: "junk after direction", input: "a ASC banana", msg: "Unexpected characters after sorting order specification"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewOrderParser(Document, tt.input).Process(&orderRecord{})
			assert.Equal(t, tt.msg, parseMsg(t, err))
		})
	}
}

func TestOrderParserSingleUse(t *testing.T) {
	p := NewOrderParser(Document, "a DESC")
	assert.NoError(t, p.Process(&orderRecord{}))
	assert.IsError(t, p.Process(&orderRecord{}), xgram.ErrConsumed)
}

type projRecord struct {
	events []string
	sb     strings.Builder
}

func (p *projRecord) Alias(name string) {
	p.events = append(p.events, "alias:"+name)
}

func (p *projRecord) Expr() xgram.ExprVisitor {
	p.events = append(p.events, "expr")
	return render{&p.sb}
}

func TestProjectionParserTableMode(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		events []string
		expr   string
	}{
		{name: "no alias", input: "a", events: []string{"expr"}, expr: "`a`"},
		{name: "with alias", input: "a AS b", events: []string{"alias:b", "expr"}, expr: "`a`"},
		{name: "expression with alias", input: "a + 1 AS total", events: []string{"alias:total", "expr"}, expr: "+(`a`,1)"},
		{name: "quoted alias", input: "a AS `the a`", events: []string{"alias:the a", "expr"}, expr: "`a`"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &projRecord{}
			err := NewProjectionParser(Table, tt.input).Process(rec)
			assert.NoError(t, err)
			assert.Equal(t, tt.events, rec.events)
			assert.Equal(t, tt.expr, rec.sb.String())
		})
	}
}

func TestProjectionParserDocumentMode(t *testing.T) {
	rec := &projRecord{}
	err := NewProjectionParser(Document, "a.b AS flat").Process(rec)
	assert.NoError(t, err)
	assert.Equal(t, []string{"alias:flat", "expr"}, rec.events)
	assert.Equal(t, "$.a.b", rec.sb.String())
}

func TestProjectionParserErrors(t *testing.T) {
	tests := []struct {
		name  string
		mode  Mode
		input string
		msg   string
	}{
		{name: "empty", mode: Table, input: "", msg: "Expected projection specification"},
		{name: "junk instead of as", mode: Table, input: "a b", msg: "Invalid characters in projection specification, only AS <name> allowed after the projection expression"},
		{name: "bad alias", mode: Table, input: "a AS 1", msg: "Expected identifier after AS"},
		{name: "junk after alias", mode: Table, input: "a AS b c", msg: "Unexpected characters after projection specification"},
		{name: "document mode needs alias", mode: Document, input: "a", msg: "Expected AS in projection specification"},
		{name: "document mode junk after alias", mode: Document, input: "a AS b c", msg: "Invalid characters after projection specification"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewProjectionParser(tt.mode, tt.input).Process(&projRecord{})
			assert.Equal(t, tt.msg, parseMsg(t, err))
		})
	}
}
