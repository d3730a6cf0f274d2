package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"

	"github.com/shibukawa/xgram"
	"github.com/shibukawa/xgram/corpus"
	"github.com/shibukawa/xgram/expr"
	"github.com/shibukawa/xgram/format"
	"github.com/shibukawa/xgram/uri"
)

// CheckCmd represents the check command
type CheckCmd struct {
	Paths []string `arg:"" help:"Corpus files or directories" type:"path"`
}

// Run executes the check command
func (cmd *CheckCmd) Run(ctx *Context) error {
	config, err := ctx.loadConfig()
	if err != nil {
		return err
	}

	var corpora []*corpus.Corpus
	for _, path := range cmd.Paths {
		info, err := os.Stat(path)
		if err != nil {
			return fmt.Errorf("failed to read corpus path: %w", err)
		}
		if info.IsDir() {
			loaded, err := corpus.LoadDir(path)
			if err != nil {
				return err
			}
			corpora = append(corpora, loaded...)
		} else {
			c, err := corpus.Load(path)
			if err != nil {
				return err
			}
			corpora = append(corpora, c)
		}
	}

	total, failed := 0, 0
	for _, c := range corpora {
		check, err := checkerFor(c.Meta, config)
		if err != nil {
			return fmt.Errorf("%s: %w", c.Path, err)
		}

		name := filepath.Base(c.Path)
		bad := c.Verify(check)
		total += len(c.Cases)
		failed += len(bad)

		for _, m := range bad {
			color.Red("FAIL %s: %s", name, m.Case.Name)
			fmt.Printf("  input: %s\n", m.Case.Input)
			if m.Case.Error != "" {
				fmt.Printf("  want error: %s\n", m.Case.Error)
			} else {
				fmt.Printf("  want: %s\n", m.Case.Expect)
			}
			fmt.Printf("  got:  %s\n", m.Got)
		}
		if ctx.Verbose && len(bad) == 0 {
			color.Green("ok %s: %d cases", name, len(c.Cases))
		}
	}

	if failed > 0 {
		return fmt.Errorf("%w: %d of %d cases", ErrChecksFailed, failed, total)
	}
	if !ctx.Quiet {
		color.Green("All %d cases passed", total)
	}
	return nil
}

// checkerFor builds the checker for the grammar a corpus names. The checkers
// render with the same format visitors the dump commands use, so a corpus
// expectation is exactly what the CLI would print.
func checkerFor(meta corpus.Meta, config *xgram.Config) (corpus.Checker, error) {
	switch meta.Grammar {
	case "expr":
		mode, err := modeFor(meta.Mode)
		if err != nil {
			return nil, err
		}
		opts, err := grammarOptions(config)
		if err != nil {
			return nil, err
		}
		return func(input string) (string, error) {
			e, err := expr.Parse(mode, input, opts...)
			if err != nil {
				return "", err
			}
			txt := format.NewText()
			e.Process(txt)
			return txt.String(), nil
		}, nil
	case "uri":
		return func(input string) (string, error) {
			rec := format.NewURI()
			if err := uri.ParseConnString(input, rec); err != nil {
				return "", err
			}
			return rec.String(), nil
		}, nil
	}
	return nil, fmt.Errorf("%w: '%s'", ErrUnknownGrammar, meta.Grammar)
}
