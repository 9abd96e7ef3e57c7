package interpreter

import (
	"fmt"
	"io"

	"github.com/npillmayer/tytex/engine/context"
)

// ErrorHandler is consulted for every recoverable error. It returns false
// to abort the run.
//
// A handler may use src to insert tokens, e.g. a replacement typed in by
// a user.
type ErrorHandler interface {
	HandleError(e *Error, ctx *context.Context, src TokenSource) bool
}

// ErrorHandlerFunc adapts a function to interface ErrorHandler.
type ErrorHandlerFunc func(e *Error, ctx *context.Context, src TokenSource) bool

// HandleError calls f.
func (f ErrorHandlerFunc) HandleError(e *Error, ctx *context.Context, src TokenSource) bool {
	return f(e, ctx, src)
}

// DefaultHandler prints errors and continues. Nothing is printed in batch
// mode; help texts are printed in scroll mode and error-stop mode.
type DefaultHandler struct {
	Out io.Writer
}

// HandleError is part of interface ErrorHandler.
func (h DefaultHandler) HandleError(e *Error, ctx *context.Context, src TokenSource) bool {
	mode := ctx.Interaction()
	if h.Out == nil || mode == context.BatchMode {
		return true
	}
	fmt.Fprintf(h.Out, "! %s.\n", e.UserMessage())
	if e.Locator.Line > 0 {
		fmt.Fprintf(h.Out, "l.%d %s\n", e.Locator.Line, e.Locator.Source)
	}
	if mode >= context.ScrollMode {
		if help := e.Help(); help != "" {
			fmt.Fprintln(h.Out, help)
		}
	}
	return true
}
