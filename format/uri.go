package format

import (
	"fmt"
	"strings"

	"github.com/shibukawa/xgram/uri"
)

// URI records connection-string callbacks as one line per event, in
// callback order. Host, socket and pipe events carry the priority so that
// multi-host strings stay unambiguous.
type URI struct {
	events []string
}

var _ uri.Visitor = (*URI)(nil)

func NewURI() *URI {
	return &URI{}
}

// Lines returns the recorded events, one per callback.
func (u *URI) Lines() []string {
	return u.events
}

// String joins the events with "; " for single-line contexts.
func (u *URI) String() string {
	return strings.Join(u.events, "; ")
}

func (u *URI) add(event string) {
	u.events = append(u.events, event)
}

func (u *URI) Scheme(name string) { u.add("scheme=" + name) }
func (u *URI) User(name string)   { u.add("user=" + name) }
func (u *URI) Password(pwd string) {
	u.add("password=" + pwd)
}

func (u *URI) Host(priority uint16, host string) {
	u.add(fmt.Sprintf("host(%d)=%s", priority, host))
}

func (u *URI) HostPort(priority uint16, host string, port uint16) {
	u.add(fmt.Sprintf("host(%d)=%s:%d", priority, host, port))
}

func (u *URI) Socket(priority uint16, path string) {
	u.add(fmt.Sprintf("socket(%d)=%s", priority, path))
}

func (u *URI) Pipe(priority uint16, path string) {
	u.add(fmt.Sprintf("pipe(%d)=%s", priority, path))
}

func (u *URI) Schema(db string) { u.add("schema=" + db) }

func (u *URI) Option(key string) { u.add("option " + key) }

func (u *URI) OptionValue(key, val string) {
	u.add("option " + key + "=" + val)
}

func (u *URI) OptionList(key string, vals []string) {
	u.add("option " + key + "=[" + strings.Join(vals, "|") + "]")
}
