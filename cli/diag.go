package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"golang.org/x/text/width"

	"github.com/shibukawa/xgram"
)

// printDiag writes the source line around a parse failure with a caret under
// the failing position. Errors without positional context print nothing; the
// caller still reports them.
func printDiag(w io.Writer, input string, err error) {
	var xe *xgram.Error
	if !errors.As(err, &xe) {
		return
	}

	start := strings.LastIndexByte(input[:xe.Offset], '\n') + 1
	end := strings.IndexByte(input[xe.Offset:], '\n')
	if end < 0 {
		end = len(input)
	} else {
		end += xe.Offset
	}
	line := input[start:end]

	fmt.Fprintln(w, line)
	pad := strings.Repeat(" ", displayWidth(line[:xe.Offset-start]))
	fmt.Fprintln(w, pad+color.New(color.FgRed, color.Bold).Sprint("^"))
}

// displayWidth measures a string in terminal columns, counting East Asian
// wide and fullwidth runes as two.
func displayWidth(s string) int {
	w := 0
	for _, r := range s {
		switch width.LookupRune(r).Kind() {
		case width.EastAsianWide, width.EastAsianFullwidth:
			w += 2
		default:
			w++
		}
	}
	return w
}
