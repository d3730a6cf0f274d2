// Package dsn turns connection strings into go-sql-driver/mysql
// configurations. The uri grammar reports its findings as callbacks; this
// package collects them into Parts, picks an endpoint and maps the X-style
// options onto mysql.Config fields.
package dsn

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/shibukawa/xgram/uri"
)

var ErrNoEndpoint = errors.New("connection string names no endpoint")

type EndpointKind int

const (
	TCP EndpointKind = iota
	Unix
	Pipe
)

// Endpoint is one target named by a connection string. Host holds the
// address for TCP endpoints and the path for sockets and pipes. Priority is
// the stated value plus one, zero when the string gives none.
type Endpoint struct {
	Kind     EndpointKind
	Host     string
	Port     uint16
	HasPort  bool
	Priority uint16
}

type OptionKind int

const (
	Flag OptionKind = iota
	Value
	List
)

// Option is one query-string option, in source order.
type Option struct {
	Kind   OptionKind
	Key    string
	Value  string
	Values []string
}

// Parts holds everything a connection string carries, before any
// driver-specific interpretation.
type Parts struct {
	Scheme      string
	User        string
	Password    string
	HasPassword bool
	Endpoints   []Endpoint
	Schema      string
	HasSchema   bool
	Options     []Option
}

// Collect parses a connection string, the form without a scheme prefix.
func Collect(connstr string) (*Parts, error) {
	var c collector
	if err := uri.ParseConnString(connstr, &c); err != nil {
		return nil, err
	}
	return &c.parts, nil
}

// CollectURI parses a full URI, scheme included.
func CollectURI(rawuri string) (*Parts, error) {
	var c collector
	if err := uri.Parse(rawuri, &c); err != nil {
		return nil, err
	}
	return &c.parts, nil
}

// collector adapts the callback stream to Parts. Parts itself cannot be the
// visitor since its field names mirror the callback names.
type collector struct {
	parts Parts
}

var _ uri.Visitor = (*collector)(nil)

func (c *collector) Scheme(name string) { c.parts.Scheme = name }
func (c *collector) User(name string)   { c.parts.User = name }

func (c *collector) Password(pwd string) {
	c.parts.Password = pwd
	c.parts.HasPassword = true
}

func (c *collector) Host(priority uint16, host string) {
	c.add(Endpoint{Kind: TCP, Host: host, Priority: priority})
}

func (c *collector) HostPort(priority uint16, host string, port uint16) {
	c.add(Endpoint{Kind: TCP, Host: host, Port: port, HasPort: true, Priority: priority})
}

func (c *collector) Socket(priority uint16, path string) {
	c.add(Endpoint{Kind: Unix, Host: path, Priority: priority})
}

func (c *collector) Pipe(priority uint16, path string) {
	c.add(Endpoint{Kind: Pipe, Host: path, Priority: priority})
}

func (c *collector) add(e Endpoint) {
	c.parts.Endpoints = append(c.parts.Endpoints, e)
}

func (c *collector) Schema(db string) {
	c.parts.Schema = db
	c.parts.HasSchema = true
}

func (c *collector) Option(key string) {
	c.parts.Options = append(c.parts.Options, Option{Kind: Flag, Key: key})
}

func (c *collector) OptionValue(key, val string) {
	c.parts.Options = append(c.parts.Options, Option{Kind: Value, Key: key, Value: val})
}

func (c *collector) OptionList(key string, vals []string) {
	c.parts.Options = append(c.parts.Options, Option{Kind: List, Key: key, Values: vals})
}

// Endpoint picks the connection target: the highest priority wins, source
// order breaks ties. Multi-host failover stays with the caller.
func (p *Parts) Endpoint() (Endpoint, error) {
	if len(p.Endpoints) == 0 {
		return Endpoint{}, ErrNoEndpoint
	}
	best := p.Endpoints[0]
	for _, e := range p.Endpoints[1:] {
		if e.Priority > best.Priority {
			best = e
		}
	}
	return best, nil
}

// Config builds a driver configuration for the picked endpoint.
func (p *Parts) Config() (*mysql.Config, error) {
	e, err := p.Endpoint()
	if err != nil {
		return nil, err
	}

	cfg := mysql.NewConfig()
	cfg.User = p.User
	cfg.Passwd = p.Password
	cfg.DBName = p.Schema

	switch e.Kind {
	case Unix:
		cfg.Net = "unix"
		cfg.Addr = e.Host
	case Pipe:
		// dialing a pipe needs a registered dialer, the config just names it
		cfg.Net = "pipe"
		cfg.Addr = e.Host
	default:
		cfg.Net = "tcp"
		cfg.Addr = e.Host
		if e.HasPort {
			cfg.Addr = fmt.Sprintf("%s:%d", e.Host, e.Port)
		}
	}

	for _, opt := range p.Options {
		if err := applyOption(cfg, opt); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

func applyOption(cfg *mysql.Config, opt Option) error {
	switch strings.ToLower(opt.Key) {
	case "ssl-mode":
		tls, err := tlsValue(opt.Value)
		if err != nil {
			return err
		}
		cfg.TLSConfig = tls
	case "connect-timeout":
		ms, err := strconv.Atoi(opt.Value)
		if err != nil || ms < 0 {
			return fmt.Errorf("invalid connect-timeout %q", opt.Value)
		}
		cfg.Timeout = time.Duration(ms) * time.Millisecond
	case "compression":
		// the driver only knows zlib, any requested compression enables it
		if !strings.EqualFold(opt.Value, "DISABLED") {
			setParam(cfg, "compress", "true")
		}
	default:
		switch opt.Kind {
		case Flag:
			setParam(cfg, opt.Key, "true")
		case List:
			setParam(cfg, opt.Key, strings.Join(opt.Values, ","))
		default:
			setParam(cfg, opt.Key, opt.Value)
		}
	}
	return nil
}

func setParam(cfg *mysql.Config, key, val string) {
	if cfg.Params == nil {
		cfg.Params = map[string]string{}
	}
	cfg.Params[key] = val
}

func tlsValue(mode string) (string, error) {
	switch strings.ToUpper(mode) {
	case "DISABLED":
		return "false", nil
	case "PREFERRED":
		return "preferred", nil
	case "REQUIRED":
		return "skip-verify", nil
	case "VERIFY_CA", "VERIFY_IDENTITY":
		return "true", nil
	}
	return "", fmt.Errorf("unknown ssl-mode %q", mode)
}

// FormatDSN is the one-call form: parse a connection string and render the
// driver DSN for it.
func FormatDSN(connstr string) (string, error) {
	p, err := Collect(connstr)
	if err != nil {
		return "", err
	}
	cfg, err := p.Config()
	if err != nil {
		return "", err
	}
	return cfg.FormatDSN(), nil
}
