package eval

import (
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/shibukawa/xgram/expr"
)

func TestTranslation(t *testing.T) {
	tests := []struct {
		name  string
		mode  expr.Mode
		input string
		want  string
	}{
		{"comparison", expr.Document, "a > 10", "(doc.a > 10)"},
		{"logic", expr.Document, "a AND NOT b", "(doc.a && !(doc.b))"},
		{"in list", expr.Document, "a IN (1, 2)", "(doc.a in [1, 2])"},
		{"not in list", expr.Document, "a NOT IN (1, 2)", "!(doc.a in [1, 2])"},
		{"containment", expr.Document, "1 IN list", "(1 in doc.list)"},
		{"between", expr.Document, "a BETWEEN 1 AND 5", "((doc.a >= 1) && (doc.a <= 5))"},
		{"not between", expr.Document, "a NOT BETWEEN 1 AND 5", "!((doc.a >= 1) && (doc.a <= 5))"},
		{"like", expr.Document, "name LIKE 'J%_'", `(doc.name.matches("^J.*.$"))`},
		{"nested path", expr.Document, "a.b[0] = 1", "(doc.a.b[0] == 1)"},
		{"quoted member", expr.Document, `$."first name" = 1`, `(doc["first name"] == 1)`},
		{"keyword member", expr.Document, "$.in = 1", `(doc["in"] == 1)`},
		{"parameter", expr.Document, ":min < a", "(min < doc.a)"},
		{"unary minus", expr.Document, "-a + 1", "(-(doc.a) + 1)"},
		{"float literal", expr.Document, "x = 1500.0", "(doc.x == 1500.0)"},
		{"large uint", expr.Document, "a = 18446744073709551615", "(doc.a == 18446744073709551615u)"},
		{"column", expr.Table, "c = 1", "(row.c == 1)"},
		{"column path", expr.Table, "meta->'$.a' = 1", "(row.meta.a == 1)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := CompileString(tt.mode, tt.input)
			assert.NoError(t, err)
			assert.Equal(t, tt.want, p.CEL())
		})
	}
}

func TestEvalDocumentFilters(t *testing.T) {
	doc := map[string]any{
		"age":  30,
		"name": "Joe",
		"address": map[string]any{
			"city": "Berlin",
		},
		"tags": []any{"a", "b"},
	}
	tests := []struct {
		input string
		vars  map[string]any
		want  bool
	}{
		{"age > 18", nil, true},
		{"age > 40", nil, false},
		{"age > 17.5", nil, true},
		{"age BETWEEN 20 AND 40", nil, true},
		{"age NOT BETWEEN 20 AND 40", nil, false},
		{"name LIKE 'J%'", nil, true},
		{"name LIKE '_oe'", nil, true},
		{"name NOT LIKE '%x'", nil, true},
		{"address.city = 'Berlin'", nil, true},
		{"age IN (29, 30, 31)", nil, true},
		{"age NOT IN (1, 2)", nil, true},
		{"'a' IN tags", nil, true},
		{"'z' NOT IN tags", nil, true},
		{"age = 30 AND name = 'Joe'", nil, true},
		{"age < 18 OR name = 'Joe'", nil, true},
		{"NOT (age < 18)", nil, true},
		{"age + 5 = 35", nil, true},
		{"age % 7 = 2", nil, true},
		{`{"a": 1} = {"a": 1}`, nil, true},
		{"age > :min", map[string]any{"min": 25}, true},
		{"age > :min", map[string]any{"min": 35}, false},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			p, err := CompileString(expr.Document, tt.input)
			assert.NoError(t, err)

			vars := map[string]any{DocVar: doc}
			for k, v := range tt.vars {
				vars[k] = v
			}
			got, err := p.Eval(vars)
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEvalRowFilters(t *testing.T) {
	row := map[string]any{
		"price": 12.5,
		"qty":   3,
		"sku":   "A-1",
		"meta":  map[string]any{"a": 1},
	}
	tests := []struct {
		input string
		want  bool
	}{
		{"price > 12", true},
		{"price * 2.0 > 30", false},
		{"qty * 2 >= 6", true},
		{"sku LIKE 'A-%'", true},
		{"meta->'$.a' = 1", true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			p, err := CompileString(expr.Table, tt.input)
			assert.NoError(t, err)

			got, err := p.Eval(map[string]any{RowVar: row})
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestUnsupported(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"is", "a IS NULL"},
		{"regexp", "a REGEXP 'x'"},
		{"overlaps", "a OVERLAPS b"},
		{"function call", "concat(a, 'x')"},
		{"wildcard path", "a[*] = 1"},
		{"double star path", "a**.b = 1"},
		{"session variable", "$env = 1"},
		{"positional parameter", "? = 1"},
		{"bitwise", "a & 1 = 0"},
		{"cast", "CAST(a AS SIGNED) = 1"},
		{"interval", "d + INTERVAL 1 DAY > d"},
		{"non-literal like", "a LIKE b"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := CompileString(expr.Document, tt.input)
			assert.IsError(t, err, ErrUnsupported)
		})
	}
}

func TestEvalErrors(t *testing.T) {
	// not a boolean
	p, err := CompileString(expr.Document, "age + 1")
	assert.NoError(t, err)
	_, err = p.Eval(map[string]any{DocVar: map[string]any{"age": 1}})
	assert.Error(t, err)

	// missing parameter variable
	p, err = CompileString(expr.Document, "age > :min")
	assert.NoError(t, err)
	_, err = p.Eval(map[string]any{DocVar: map[string]any{"age": 1}})
	assert.Error(t, err)
}
