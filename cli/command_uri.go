package cli

import (
	"fmt"
	"os"

	"github.com/fatih/color"

	"github.com/shibukawa/xgram/dsn"
	"github.com/shibukawa/xgram/format"
	"github.com/shibukawa/xgram/uri"
)

// URICmd represents the uri command
type URICmd struct {
	URI           string `arg:"" optional:"" help:"Connection string, defaults to $MYSQLX_URI"`
	DSN           bool   `help:"Print a go-sql-driver DSN instead of the parse events"`
	RequireScheme bool   `help:"Reject input without a scheme prefix"`
}

// Run executes the uri command
func (cmd *URICmd) Run(ctx *Context) error {
	// loading the config also loads .env, so MYSQLX_URI may come from there
	config, err := ctx.loadConfig()
	if err != nil {
		return err
	}

	input := cmd.URI
	if input == "" {
		input = os.Getenv("MYSQLX_URI")
	}
	if input == "" {
		return fmt.Errorf("%w: pass a connection string or set MYSQLX_URI", ErrNoInput)
	}

	requireScheme := cmd.RequireScheme || config.URI.RequireScheme
	if ctx.Verbose {
		color.Blue("Parsing connection string: %s", input)
	}

	if cmd.DSN {
		parts, err := collect(input, requireScheme)
		if err != nil {
			if !ctx.Quiet {
				printDiag(os.Stderr, input, err)
			}
			return err
		}
		cfg, err := parts.Config()
		if err != nil {
			return err
		}
		fmt.Println(cfg.FormatDSN())
		return nil
	}

	rec := format.NewURI()
	if requireScheme {
		err = uri.Parse(input, rec)
	} else {
		err = uri.ParseConnString(input, rec)
	}
	if err != nil {
		if !ctx.Quiet {
			printDiag(os.Stderr, input, err)
		}
		return err
	}

	for _, line := range rec.Lines() {
		fmt.Println(line)
	}
	return nil
}

func collect(input string, requireScheme bool) (*dsn.Parts, error) {
	if requireScheme {
		return dsn.CollectURI(input)
	}
	return dsn.Collect(input)
}
