package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/reactcs/create-react-cs/internal/scaffold"
)

// printError reports err the way users expect: the message in red, then the
// corrective hint. Unexpected failures also get their full detail.
func printError(w io.Writer, err error) {
	red := color.New(color.FgRed)

	var se *scaffold.Error
	if !errors.As(err, &se) {
		red.Fprintln(w, err.Error())
		return
	}

	switch se.Kind {
	case scaffold.KindDirectoryConflict:
		// The conflict list was already printed.
	case scaffold.KindUnexpected:
		red.Fprintln(w, "Unexpected error. Please report it as a bug:")
		fmt.Fprintf(w, "%+v\n", se.Err)
	default:
		red.Fprintln(w, se.Error())
	}
	if se.Hint != "" {
		fmt.Fprintln(w, se.Hint)
	}
}
