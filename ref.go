package xgram

import "strings"

// SchemaRef identifies a schema by name.
type SchemaRef struct {
	Name string
}

// ObjectRef identifies a schema object such as a table or a function,
// optionally qualified by a schema.
type ObjectRef struct {
	Name   string
	Schema *SchemaRef
}

// String renders the reference with backtick quoting, schema first.
func (r ObjectRef) String() string {
	var sb strings.Builder
	if r.Schema != nil {
		writeQuoted(&sb, r.Schema.Name)
		sb.WriteByte('.')
	}
	writeQuoted(&sb, r.Name)
	return sb.String()
}

// ColumnRef identifies a column, optionally qualified by a table which may
// itself be qualified by a schema.
type ColumnRef struct {
	Name  string
	Table *ObjectRef
}

// String renders the reference with backtick quoting, qualifiers first.
func (r ColumnRef) String() string {
	var sb strings.Builder
	if r.Table != nil {
		sb.WriteString(r.Table.String())
		sb.WriteByte('.')
	}
	writeQuoted(&sb, r.Name)
	return sb.String()
}

func writeQuoted(sb *strings.Builder, name string) {
	sb.WriteByte('`')
	sb.WriteString(strings.ReplaceAll(name, "`", "``"))
	sb.WriteByte('`')
}
