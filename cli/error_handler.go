package cli

import (
	"fmt"
	"io"

	"github.com/grovetools/places/errors"
)

// ErrorHandler turns coded errors into messages with a hint.
type ErrorHandler struct {
	Verbose bool
	Out     io.Writer
}

// NewErrorHandler creates a new error handler writing to out.
func NewErrorHandler(out io.Writer, verbose bool) *ErrorHandler {
	return &ErrorHandler{Verbose: verbose, Out: out}
}

var hints = map[errors.ErrorCode]string{
	errors.ErrCodeConfigNotFound:   "Check the --config path, or run 'places paths' to see where config is read from.",
	errors.ErrCodeConfigInvalid:    "Run 'places config validate' for details.",
	errors.ErrCodeConfigValidation: "Run 'places config schema' to see the allowed keys and values.",
	errors.ErrCodeNotFound:         "Run 'places list' to see the available places.",
	errors.ErrCodeNotMounted:       "Mount the location first, e.g. with 'gio mount'.",
	errors.ErrCodeCommandNotFound:  "Install gio (glib2) or xdg-utils to open places.",
	errors.ErrCodeDaemonNotRunning: "Start it with 'places daemon start'.",
}

// Handle prints err with a hint for its code and returns it.
func (h *ErrorHandler) Handle(err error) error {
	if err == nil {
		return nil
	}
	t := DefaultTheme
	fmt.Fprintf(h.Out, "%s %v\n", t.Error.Render("Error:"), err)

	code := errors.GetCode(err)
	if hint, ok := hints[code]; ok {
		fmt.Fprintln(h.Out, t.Muted.Render(hint))
	}
	if h.Verbose {
		if perr, ok := err.(*errors.Error); ok {
			fmt.Fprintf(h.Out, "\nError details:\n%s\n", perr.ToJSON())
		}
	}
	return err
}
