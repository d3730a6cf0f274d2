package uri

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/shibukawa/xgram"
	"github.com/shibukawa/xgram/cursor"
)

// parser holds one parse run. The grammar works on single character
// tokens; alternatives that need look-ahead run under cursor guards and
// roll back without consuming anything.
type parser struct {
	in          string
	v           Visitor
	forceScheme bool
	cur         *cursor.Cursor[token]
}

func (p *parser) parse() error {
	start, err := p.scheme()
	if err != nil {
		return err
	}
	p.cur = cursor.New(scan(p.in, start))
	defer p.cur.Stop()

	if err := p.connection(); err != nil {
		return err
	}
	p.path()
	if err := p.query(); err != nil {
		return err
	}
	if p.cur.More() {
		return p.fail("Unexpected characters at the end")
	}
	return p.cur.Err()
}

// scheme checks the scheme prefix at the string level and returns the
// byte offset parsing proper starts at.
func (p *parser) scheme() (int, error) {
	if i := strings.Index(p.in, "://"); i >= 0 {
		name := p.in[:i]
		if name != "mysqlx" && name != "mysqlx+srv" {
			return 0, xgram.NewError(xgram.Syntax,
				fmt.Errorf("Scheme %s is not valid", name), p.in, 0)
		}
		p.v.Scheme(name)
		return i + 3, nil
	}
	if strings.HasPrefix(p.in, "mysqlx") {
		return 0, xgram.NewError(xgram.Syntax,
			errors.New("Expected '://'"), p.in, len("mysqlx"))
	}
	if p.forceScheme {
		return 0, xgram.NewError(xgram.Syntax,
			errors.New("URI scheme expected"), p.in, 0)
	}
	return 0, nil
}

// connection parses the userinfo and host part. A leading '[' is tried
// as an IPv6 literal first and reparsed as a host list when that does
// not match.
func (p *parser) connection() error {
	if p.peekIs(tkAt) {
		return p.fail("Expected user credentials before '@'")
	}
	p.userinfo()

	g := p.cur.Guard()
	defer g.Done()

	list := p.peekIs(tkLBracket)
	host, port, opts, err := p.host()
	if err != nil {
		return err
	}
	if !list || !opts.has(addrOther) {
		g.Commit()
		return p.reportAddress(opts, 0, host, port)
	}

	g.Done()
	p.consume(tkLBracket)
	for {
		if err := p.listEntry(); err != nil {
			return err
		}
		if !p.consume(tkComma) {
			break
		}
	}
	if !p.consume(tkRBracket) {
		return p.fail("Expected ']' to close list of hosts")
	}
	return nil
}

// userinfo consumes <user[:password]@> when present. Without the
// closing '@' the attempt rolls back and reports nothing.
func (p *parser) userinfo() {
	g := p.cur.Guard()
	defer g.Done()

	user := p.takeWhile(userChars)
	if user == "" {
		return
	}
	pwd := ""
	hasPwd := p.consume(tkColon)
	if hasPwd {
		pwd = p.takeWhile(userChars | 1<<tkColon)
	}
	if !p.consume(tkAt) {
		return
	}
	g.Commit()
	p.v.User(user)
	if hasPwd {
		p.v.Password(pwd)
	}
}

// addrOpts narrows what a parsed address can still be.
type addrOpts uint8

const (
	addrIP addrOpts = 1 << iota
	addrOther
)

func (o addrOpts) has(f addrOpts) bool { return o&f != 0 }

// host parses one host address: a balanced-paren escape is never TCP, a
// recognized IP form is always TCP, and a plain character run could
// still be either.
func (p *parser) host() (host, port string, opts addrOpts, err error) {
	if p.peekIs(tkLParen) {
		host, err = p.balanced()
		return host, "", addrOther, err
	}
	if host, port, ok := p.ipAddress(); ok {
		return host, port, addrIP, nil
	}
	return p.takeWhile(hostChars), "", addrIP | addrOther, nil
}

// ipAddress matches a bracketed IPv6 literal, a four-group dotted IPv4
// address, or a plain host directly followed by a port, each with an
// optional ':port'. The digits after the colon may be absent: 'host:'
// is a valid address without a port.
func (p *parser) ipAddress() (host, port string, ok bool) {
	g := p.cur.Guard()
	defer g.Done()

	var addr strings.Builder
	if p.consume(tkLBracket) {
		// Any run of hex digits and colons counts as an IPv6 literal.
		for {
			t, found := p.cur.NextIf(func(t token) bool {
				return t.typ == tkDigit || t.typ == tkChar || t.typ == tkColon
			})
			if !found {
				break
			}
			if t.pct || (t.typ == tkChar && !isHexLetter(t.ch)) {
				return "", "", false
			}
			addr.WriteByte(t.ch)
		}
		if addr.Len() == 0 || !p.consume(tkRBracket) {
			return "", "", false
		}
	} else {
		groups := 0
		for {
			if !p.peekIs(tkDigit) {
				break
			}
			if groups > 0 {
				addr.WriteByte('.')
			}
			p.takeWhileInto(&addr, digits)
			groups++
			if groups == 4 {
				break
			}
			if !p.consume(tkDot) {
				break
			}
		}
		if groups < 4 {
			p.takeWhileInto(&addr, hostChars)
			if !p.peekIs(tkColon) {
				return "", "", false
			}
		}
	}

	g.Commit()
	if p.consume(tkColon) {
		port = p.takeWhile(digits)
	}
	return addr.String(), port, true
}

func isHexLetter(c byte) bool {
	return 'a' <= c && c <= 'f' || 'A' <= c && c <= 'F'
}

// balanced parses a (...) escape and returns its content with the outer
// parentheses stripped. One nested pair is kept as written.
func (p *parser) balanced() (string, error) {
	var sb strings.Builder
	if err := p.balancedInto(&sb, false); err != nil {
		return "", err
	}
	return sb.String(), nil
}

func (p *parser) balancedInto(sb *strings.Builder, keepParens bool) error {
	if !p.consume(tkLParen) {
		return p.fail("Expected opening '('")
	}
	if keepParens {
		sb.WriteByte('(')
	}
	p.takeWhileInto(sb, npChars)
	if p.peekIs(tkLParen) {
		if err := p.balancedInto(sb, true); err != nil {
			return err
		}
	}
	p.takeWhileInto(sb, npChars)
	if !p.consume(tkRParen) {
		return p.fail("Expected closing ')'")
	}
	if keepParens {
		sb.WriteByte(')')
	}
	return nil
}

// listEntry parses one host list entry: either an (address=H,priority=N)
// pair or a bare host. The pair form commits once "(address=" is seen.
func (p *parser) listEntry() error {
	g := p.cur.Guard()
	defer g.Done()

	if p.consume(tkLParen) && p.consumeWordCI("address") && p.consume(tkEq) {
		host, port, opts, err := p.host()
		if err != nil {
			return err
		}
		if !p.consume(tkComma) || !p.consumeWordCI("priority") || !p.consume(tkEq) {
			return p.fail("Expected priority specification for a host")
		}
		prio := p.takeWhile(digits)
		if prio == "" {
			return p.fail("Expected priority value")
		}
		if !p.consume(tkRParen) {
			return p.fail("Expected ')' to close a host-priority pair")
		}
		n, err := p.rangeVal(prio)
		if err != nil {
			return err
		}
		g.Commit()
		return p.reportAddress(opts, 1+n, host, port)
	}

	g.Done()
	host, port, opts, err := p.host()
	if err != nil {
		return err
	}
	return p.reportAddress(opts, 0, host, port)
}

// reportAddress classifies a parsed address and reports it: socket paths
// start with '.' or '/', pipe names with '\\.\', anything still allowed
// to be TCP is a host.
func (p *parser) reportAddress(opts addrOpts, priority uint16, host, port string) error {
	if opts.has(addrOther) {
		if len(host) > 0 && (host[0] == '.' || host[0] == '/') {
			p.v.Socket(priority, host)
			return nil
		}
		if strings.HasPrefix(host, `\\.\`) {
			p.v.Pipe(priority, host)
			return nil
		}
	}
	if opts.has(addrIP) {
		if port == "" {
			p.v.Host(priority, host)
			return nil
		}
		n, err := p.rangeVal(port)
		if err != nil {
			return err
		}
		p.v.HostPort(priority, host, n)
		return nil
	}
	return p.fail("Unrecognized host address")
}

// rangeVal converts a digit run into a port or priority value.
func (p *parser) rangeVal(s string) (uint16, error) {
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			return 0, p.semantic("Invalid value")
		}
		return 0, p.semantic("Expected number")
	}
	if n > 65535 {
		return 0, p.semantic("Invalid value")
	}
	return uint16(n), nil
}

// path consumes </schema> and reports the schema name, possibly empty.
func (p *parser) path() {
	if !p.consume(tkSlash) {
		return
	}
	p.v.Schema(p.takeWhile(dbChars))
}

// query parses <?key=value&...>. A key without '=' reports alone; a
// value starting with '[' is a comma separated list.
func (p *parser) query() error {
	if !p.consume(tkQuestion) {
		return nil
	}
	for {
		key := p.takeUntil(1<<tkEq | 1<<tkAmp)
		switch {
		case !p.consume(tkEq):
			p.v.Option(key)
		case p.peekIs(tkLBracket):
			if err := p.valList(key); err != nil {
				return err
			}
		default:
			p.v.OptionValue(key, p.takeUntil(1<<tkAmp))
		}
		if !p.consume(tkAmp) {
			return nil
		}
	}
}

// valList parses a [v1,v2,...] query value.
func (p *parser) valList(key string) error {
	p.consume(tkLBracket)
	var vals []string
	for {
		vals = append(vals, p.takeUntil(1<<tkComma|1<<tkRBracket))
		if !p.consume(tkComma) {
			break
		}
	}
	if !p.consume(tkRBracket) {
		return p.fail(fmt.Sprintf("Missing ']' while parsing list value of query key '%s'", key))
	}
	p.v.OptionList(key, vals)
	return nil
}

// --- cursor helpers ---

func (p *parser) peekIs(t tokType) bool {
	tok, ok := p.cur.Peek()
	return ok && tok.typ == t
}

func (p *parser) consume(t tokType) bool {
	_, ok := p.cur.NextIf(func(tok token) bool { return tok.typ == t })
	return ok
}

// consumeWordCI matches word case-insensitively one character token at a
// time, rolling back on a mismatch.
func (p *parser) consumeWordCI(word string) bool {
	g := p.cur.Guard()
	defer g.Done()
	for i := 0; i < len(word); i++ {
		t, ok := p.cur.Next()
		if !ok || lowerByte(t.ch) != lowerByte(word[i]) {
			return false
		}
	}
	g.Commit()
	return true
}

func lowerByte(c byte) byte {
	if 'A' <= c && c <= 'Z' {
		return c + 'a' - 'A'
	}
	return c
}

// takeWhile consumes tokens while they belong to set and returns their
// decoded characters.
func (p *parser) takeWhile(set tokSet) string {
	var sb strings.Builder
	p.takeWhileInto(&sb, set)
	return sb.String()
}

func (p *parser) takeWhileInto(sb *strings.Builder, set tokSet) {
	for {
		t, ok := p.cur.NextIf(func(t token) bool { return set.has(t.typ) })
		if !ok {
			return
		}
		sb.WriteByte(t.ch)
	}
}

// takeUntil consumes tokens up to the first one in set or the end of the
// input.
func (p *parser) takeUntil(set tokSet) string {
	var sb strings.Builder
	for {
		t, ok := p.cur.NextIf(func(t token) bool { return !set.has(t.typ) })
		if !ok {
			return sb.String()
		}
		sb.WriteByte(t.ch)
	}
}

// --- error helpers ---

func (p *parser) offset() int {
	if t, ok := p.cur.Peek(); ok {
		return t.off
	}
	return len(p.in)
}

func (p *parser) syntax(msg string) error {
	return xgram.NewError(xgram.Syntax, errors.New(msg), p.in, p.offset())
}

func (p *parser) semantic(msg string) error {
	return xgram.NewError(xgram.Semantic, errors.New(msg), p.in, p.offset())
}

// fail reports a syntax error at the current position, preferring the
// scanner's lexical error when the character stream stopped on one.
func (p *parser) fail(msg string) error {
	if !p.cur.More() {
		if err := p.cur.Err(); err != nil {
			return err
		}
	}
	return p.syntax(msg)
}
