package diag

import (
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"
)

var complainColor = color.New(color.FgRed, color.Bold)

// ShowError shows an error. It uses the Show method if the error (or any error
// it wraps) implements Shower, and uses Complain to print the error message
// otherwise.
func ShowError(w io.Writer, err error) {
	var shower Shower
	if errors.As(err, &shower) {
		fmt.Fprintln(w, shower.Show(""))
	} else {
		Complain(w, err.Error())
	}
}

// Complain prints a message to w in bold and red, adding a trailing newline.
// Colors are dropped when standard output is not a terminal.
func Complain(w io.Writer, msg string) {
	complainColor.Fprintln(w, msg)
}

// Complainf is like Complain, but accepts a format string and arguments.
func Complainf(w io.Writer, format string, args ...any) {
	Complain(w, fmt.Sprintf(format, args...))
}
