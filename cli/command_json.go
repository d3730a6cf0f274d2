package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"

	"github.com/shibukawa/xgram/format"
	"github.com/shibukawa/xgram/jsonparser"
)

// JSONCmd represents the json command
type JSONCmd struct {
	File   string `arg:"" help:"JSON file to parse, or - for stdin"`
	Format string `help:"Output format (text or xml), defaults to the configured format"`
}

// Run executes the json command
func (cmd *JSONCmd) Run(ctx *Context) error {
	config, err := ctx.loadConfig()
	if err != nil {
		return err
	}

	var data []byte
	if cmd.File == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(cmd.File)
	}
	if err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}
	input := string(data)

	if ctx.Verbose {
		color.Blue("Parsing %d bytes of JSON", len(input))
	}

	formatName := cmd.Format
	if formatName == "" {
		formatName = config.Output.Format
	}

	switch formatName {
	case "text":
		txt := format.NewText()
		if err := jsonparser.Parse(input, txt.Doc()); err != nil {
			if !ctx.Quiet {
				printDiag(os.Stderr, input, err)
			}
			return err
		}
		fmt.Println(txt.String())
	case "xml":
		x := format.NewXML()
		if err := jsonparser.Parse(input, x.Doc()); err != nil {
			if !ctx.Quiet {
				printDiag(os.Stderr, input, err)
			}
			return err
		}
		if _, err := x.WriteTo(os.Stdout); err != nil {
			return err
		}
		fmt.Println()
	default:
		return fmt.Errorf("%w: '%s': must be text or xml", ErrInvalidFormat, formatName)
	}
	return nil
}
