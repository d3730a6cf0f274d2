package uri

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/shibukawa/xgram"
)

// uriRecord collects visitor calls as one string per event.
type uriRecord struct {
	events []string
}

func (r *uriRecord) add(ev string)       { r.events = append(r.events, ev) }
func (r *uriRecord) Scheme(name string)  { r.add("scheme=" + name) }
func (r *uriRecord) User(name string)    { r.add("user=" + name) }
func (r *uriRecord) Password(pwd string) { r.add("password=" + pwd) }
func (r *uriRecord) Schema(db string)    { r.add("schema=" + db) }
func (r *uriRecord) Option(key string)   { r.add("option " + key) }

func (r *uriRecord) Host(priority uint16, host string) {
	r.add(fmt.Sprintf("host(%d)=%s", priority, host))
}

func (r *uriRecord) HostPort(priority uint16, host string, port uint16) {
	r.add(fmt.Sprintf("host(%d)=%s:%d", priority, host, port))
}

func (r *uriRecord) Socket(priority uint16, path string) {
	r.add(fmt.Sprintf("socket(%d)=%s", priority, path))
}

func (r *uriRecord) Pipe(priority uint16, path string) {
	r.add(fmt.Sprintf("pipe(%d)=%s", priority, path))
}

func (r *uriRecord) OptionValue(key, val string) {
	r.add("option " + key + "=" + val)
}

func (r *uriRecord) OptionList(key string, vals []string) {
	r.add("option " + key + "=[" + strings.Join(vals, "|") + "]")
}

func parseMsg(t *testing.T, err error) string {
	t.Helper()
	var xe *xgram.Error
	assert.True(t, errors.As(err, &xe))
	return xe.Err.Error()
}

func TestParseConnString(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"bare host", "host", []string{"host(0)=host"}},
		{"host and port", "host:123", []string{"host(0)=host:123"}},
		{"empty port", "host:", []string{"host(0)=host"}},
		{"port zero", "host:0", []string{"host(0)=host:0"}},
		{"max port", "host:65535", []string{"host(0)=host:65535"}},
		{"ipv6", "[::1]", []string{"host(0)=::1"}},
		{"ipv6 with port", "[::1]:123", []string{"host(0)=::1:123"}},
		{"schema", "host/path", []string{"host(0)=host", "schema=path"}},
		{"empty schema", "host/", []string{"host(0)=host", "schema="}},
		{"empty port with schema", "host:/db", []string{"host(0)=host", "schema=db"}},
		{"port schema query", "host:123/foo?key=val",
			[]string{"host(0)=host:123", "schema=foo", "option key=val"}},
		{"query without schema", "host:123?key=val",
			[]string{"host(0)=host:123", "option key=val"}},
		{"empty schema before query", "host:123/?key=val",
			[]string{"host(0)=host:123", "schema=", "option key=val"}},
		{"userinfo", "user@host", []string{"user=user", "host(0)=host"}},
		{"empty password", "user:@host",
			[]string{"user=user", "password=", "host(0)=host"}},
		{"user and password", "user:pwd@host:123",
			[]string{"user=user", "password=pwd", "host(0)=host:123"}},
		{"pct encoded password", "user:p%40ss@host",
			[]string{"user=user", "password=p@ss", "host(0)=host"}},
		{"scheme", "mysqlx://host", []string{"scheme=mysqlx", "host(0)=host"}},
		{"srv scheme", "mysqlx+srv://host", []string{"scheme=mysqlx+srv", "host(0)=host"}},
		{"single host list", "[host1]", []string{"host(0)=host1"}},
		{"bracketed ipv4", "[127.0.0.1]", []string{"host(0)=127.0.0.1"}},
		{"nested ipv6", "[[::1]]", []string{"host(0)=::1"}},
		{"two host list", "[host1,host2]", []string{"host(0)=host1", "host(0)=host2"}},
		{"mixed list", "[127.0.0.1,host,[::1]]",
			[]string{"host(0)=127.0.0.1", "host(0)=host", "host(0)=::1"}},
		{"list with query", "[127.0.0.1,127.0.0.2]/?key1=val1&key2=val2",
			[]string{"host(0)=127.0.0.1", "host(0)=127.0.0.2", "schema=",
				"option key1=val1", "option key2=val2"}},
		{"list with ports and schema",
			"[server.example.com,192.0.2.11:33060,[2001:db8:85a3:8d3:1319:8a2e:370:7348]:1]/database",
			[]string{"host(0)=server.example.com", "host(0)=192.0.2.11:33060",
				"host(0)=2001:db8:85a3:8d3:1319:8a2e:370:7348:1", "schema=database"}},
		{"priority pairs",
			"[(address=127.0.0.1,priority=2),(address=example.com,priority=100)]/database",
			[]string{"host(3)=127.0.0.1", "host(101)=example.com", "schema=database"}},
		{"priority keywords case insensitive", "[(Address=h1,Priority=0)]",
			[]string{"host(1)=h1"}},
		{"windows pipe", `\\.\named_pipe.socket`,
			[]string{`pipe(0)=\\.\named_pipe.socket`}},
		{"pipe with encoded space", `\\.\named%20pipe.socket/database`,
			[]string{`pipe(0)=\\.\named pipe.socket`, "schema=database"}},
		{"parenthesized pipe", `(\\.\named:/?%232[1]@pipe.socket)/database`,
			[]string{`pipe(0)=\\.\named:/?#2[1]@pipe.socket`, "schema=database"}},
		{"parenthesized socket", `(/mysql:/?%23(2[1)]@socket)/database`,
			[]string{"socket(0)=/mysql:/?#(2[1)]@socket", "schema=database"}},
		{"relative socket", ".mysql.sock", []string{"socket(0)=.mysql.sock"}},
		{"socket schema query", ".mysql.sock/database?qry=val&qry2=2017",
			[]string{"socket(0)=.mysql.sock", "schema=database",
				"option qry=val", "option qry2=2017"}},
		{"query value list", "host?a=[a,b,c]&b=valB&c",
			[]string{"host(0)=host", "option a=[a|b|c]", "option b=valB", "option c"}},
		{"query key only", "host?compress", []string{"host(0)=host", "option compress"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &uriRecord{}
			err := ParseConnString(tt.input, rec)
			assert.NoError(t, err)
			assert.Equal(t, tt.want, rec.events)
		})
	}
}

func TestParseRequiresScheme(t *testing.T) {
	rec := &uriRecord{}
	err := Parse("mysqlx://user@host:33060/db", rec)
	assert.NoError(t, err)
	assert.Equal(t,
		[]string{"scheme=mysqlx", "user=user", "host(0)=host:33060", "schema=db"},
		rec.events)

	err = Parse("user@host:33060/db", &uriRecord{})
	assert.Equal(t, "URI scheme expected", parseMsg(t, err))
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		msg   string
	}{
		{"unknown scheme", "http://host", "Scheme http is not valid"},
		{"missing scheme separator", "mysqlx", "Expected '://'"},
		{"scheme colon only", "mysqlx:", "Expected '://'"},
		{"scheme single slash", "mysqlx:/host", "Expected '://'"},
		{"empty credentials", "@host", "Expected user credentials before '@'"},
		{"invalid character", "host#",
			"Invalid character '#' (you can embed such character as '%23')"},
		{"invalid character in schema", "host/db#foo",
			"Invalid character '#' (you can embed such character as '%23')"},
		{"invalid character in query", "host/db?query#foo",
			"Invalid character '#' (you can embed such character as '%23')"},
		{"angle brackets", "<foo.example.com:123/db>",
			"Invalid character '<' (you can embed such character as '%3c')"},
		{"truncated pct encoding", "host%2", "Invalid pct-encoded character"},
		{"bad pct digits", "host%zz", "Invalid pct-encoded character"},
		{"junk after port", "host:foo", "Unexpected characters at the end"},
		{"negative port", "host:-127", "Unexpected characters at the end"},
		{"port out of range", "host:1234567", "Invalid value"},
		{"second path segment", "host/db/foo", "Unexpected characters at the end"},
		{"unterminated ipv6", "[::1", "Expected ']' to close list of hosts"},
		{"junk after ipv6", "[::1]:port:123", "Unexpected characters at the end"},
		{"unterminated host list", "[host1,host2", "Expected ']' to close list of hosts"},
		{"missing priority", "[(address=h1)]",
			"Expected priority specification for a host"},
		{"misspelled priority", "[(address=h1,prio=1)]",
			"Expected priority specification for a host"},
		{"empty priority", "[(address=h1,priority=)]", "Expected priority value"},
		{"unclosed priority pair", "[(address=h1,priority=1]",
			"Expected ')' to close a host-priority pair"},
		{"priority out of range", "[(address=h1,priority=99999)]", "Invalid value"},
		{"unterminated parens", "(/path/to.sock", "Expected closing ')'"},
		{"opaque host", "(foobar)", "Unrecognized host address"},
		{"unterminated value list", "host/db?a=[a,b,c&b",
			"Missing ']' while parsing list value of query key 'a'"},
		{"junk after value list", "host/db?a=[a,b,c]foo=bar",
			"Unexpected characters at the end"},
		{"value list eats equals", "host/db?a=[a,b=foo",
			"Missing ']' while parsing list value of query key 'a'"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ParseConnString(tt.input, &uriRecord{})
			assert.Equal(t, tt.msg, parseMsg(t, err))
		})
	}
}

func TestParseErrorKinds(t *testing.T) {
	tests := []struct {
		name  string
		input string
		kind  error
	}{
		{"invalid character is lexical", "host#", xgram.ErrLexical},
		{"bad pct encoding is lexical", "host%2", xgram.ErrLexical},
		{"trailing junk is syntax", "host/db/foo", xgram.ErrSyntax},
		{"port range is semantic", "host:1234567", xgram.ErrSemantic},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ParseConnString(tt.input, &uriRecord{})
			assert.IsError(t, err, tt.kind)
		})
	}
}

func TestParseErrorPosition(t *testing.T) {
	var xe *xgram.Error

	err := ParseConnString("host:foo", &uriRecord{})
	assert.True(t, errors.As(err, &xe))
	assert.Equal(t, 5, xe.Offset)

	err = ParseConnString("mysqlx", &uriRecord{})
	assert.True(t, errors.As(err, &xe))
	assert.Equal(t, 6, xe.Offset)
}
