// Package cli implements the xgram command line tool: parse expressions,
// connection strings and JSON documents, dump the resulting callback
// streams, and replay grammar corpora.
package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/alecthomas/kong"
	"github.com/fatih/color"

	"github.com/shibukawa/xgram"
)

var (
	ErrNoInput        = errors.New("no input given")
	ErrInvalidMode    = errors.New("invalid mode")
	ErrInvalidFormat  = errors.New("invalid output format")
	ErrUnknownGrammar = errors.New("unknown corpus grammar")
	ErrChecksFailed   = errors.New("corpus check failed")
)

// Version is printed by the version command.
const Version = "xgram v0.1.0"

// Context carries the global flags to every command.
type Context struct {
	Config  string
	Verbose bool
	Quiet   bool
}

// loadConfig reads the configuration and applies its color policy.
func (c *Context) loadConfig() (*xgram.Config, error) {
	config, err := xgram.LoadConfig(c.Config)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	switch config.Output.Color {
	case "always":
		color.NoColor = false
	case "never":
		color.NoColor = true
	}

	return config, nil
}

// CLI is the command tree handed to kong.
var CLI struct {
	Config  string `help:"Configuration file path" default:"xgram.yaml"`
	Verbose bool   `help:"Enable verbose output" short:"v"`
	Quiet   bool   `help:"Suppress output" short:"q"`

	Expr    ExprCmd    `cmd:"" help:"Parse an expression and dump its structure"`
	URI     URICmd     `cmd:"" help:"Parse a connection string or URI"`
	JSON    JSONCmd    `cmd:"" help:"Parse a JSON document and dump its structure"`
	Check   CheckCmd   `cmd:"" help:"Run grammar corpora"`
	Version VersionCmd `cmd:"" help:"Show version information"`
}

// VersionCmd represents the version command
type VersionCmd struct{}

// Run executes the version command
func (cmd *VersionCmd) Run() error {
	fmt.Println(Version)
	return nil
}

// Main parses the arguments and runs the selected command.
func Main() {
	ctx := kong.Parse(&CLI)

	appCtx := &Context{
		Config:  CLI.Config,
		Verbose: CLI.Verbose,
		Quiet:   CLI.Quiet,
	}

	err := ctx.Run(appCtx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
