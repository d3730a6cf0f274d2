// Package uri parses X Protocol connection URIs and bare connection
// strings:
//
//	[scheme://][user[:password]@]host[:port][/schema][?key=value&...]
//
// including host lists with priorities, IPv6 literals, Unix socket paths
// and Windows pipe names. Parts are reported through a Visitor as the
// parse proceeds; there is no stored form.
package uri

// Visitor receives the parts of a connection string in source order.
// Each address arrives through exactly one of Host, HostPort, Socket or
// Pipe, with priority 0 when the string does not specify one and 1+N for
// an explicit priority N.
type Visitor interface {
	Scheme(name string)
	User(name string)
	Password(pwd string)

	Host(priority uint16, host string)
	HostPort(priority uint16, host string, port uint16)
	Socket(priority uint16, path string)
	Pipe(priority uint16, path string)

	Schema(db string)

	// Option reports a query key without a value; OptionValue and
	// OptionList report single and bracketed list values.
	Option(key string)
	OptionValue(key, val string)
	OptionList(key string, vals []string)
}

// Parse parses a full URI into v. The scheme part is required.
func Parse(in string, v Visitor) error {
	return (&parser{in: in, v: v, forceScheme: true}).parse()
}

// ParseConnString parses a connection string into v. The scheme part is
// optional, but when present it must be a valid URI scheme.
func ParseConnString(in string, v Visitor) error {
	return (&parser{in: in, v: v}).parse()
}
