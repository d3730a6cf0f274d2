package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"

	"github.com/shibukawa/xgram"
	"github.com/shibukawa/xgram/expr"
	"github.com/shibukawa/xgram/format"
)

// ExprCmd represents the expr command
type ExprCmd struct {
	Mode       string `help:"Parsing mode (document or table), defaults to the configured mode"`
	Format     string `help:"Output format (text or xml), defaults to the configured format"`
	Expression string `arg:"" help:"Expression to parse"`
}

// Run executes the expr command
func (cmd *ExprCmd) Run(ctx *Context) error {
	config, err := ctx.loadConfig()
	if err != nil {
		return err
	}

	modeName := cmd.Mode
	if modeName == "" {
		modeName = config.Mode
	}
	mode, err := modeFor(modeName)
	if err != nil {
		return err
	}

	opts, err := grammarOptions(config)
	if err != nil {
		return err
	}

	if ctx.Verbose {
		color.Blue("Parsing in %s mode: %s", modeName, cmd.Expression)
	}

	e, err := expr.Parse(mode, cmd.Expression, opts...)
	if err != nil {
		if !ctx.Quiet {
			printDiag(os.Stderr, cmd.Expression, err)
		}
		return err
	}

	formatName := cmd.Format
	if formatName == "" {
		formatName = config.Output.Format
	}
	return renderExpression(os.Stdout, e, formatName)
}

// modeFor maps a mode name onto the expression dialect. The empty name means
// document mode, for corpora that do not state one.
func modeFor(name string) (expr.Mode, error) {
	switch name {
	case "", "document":
		return expr.Document, nil
	case "table":
		return expr.Table, nil
	}
	return 0, fmt.Errorf("%w: '%s': must be document or table", ErrInvalidMode, name)
}

// grammarOptions builds the parser options the configuration asks for.
func grammarOptions(config *xgram.Config) ([]expr.Option, error) {
	if config.GrammarTable == "" {
		return nil, nil
	}
	table, err := expr.LoadGrammarTable(config.GrammarTable)
	if err != nil {
		return nil, fmt.Errorf("failed to load grammar table: %w", err)
	}
	return []expr.Option{expr.WithGrammarTable(table)}, nil
}

func renderExpression(w io.Writer, e *expr.Expression, formatName string) error {
	switch formatName {
	case "text":
		txt := format.NewText()
		e.Process(txt)
		fmt.Fprintln(w, txt.String())
	case "xml":
		x := format.NewXML()
		e.Process(x)
		if _, err := x.WriteTo(w); err != nil {
			return err
		}
		fmt.Fprintln(w)
	default:
		return fmt.Errorf("%w: '%s': must be text or xml", ErrInvalidFormat, formatName)
	}
	return nil
}
