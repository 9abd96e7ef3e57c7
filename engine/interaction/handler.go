package interaction

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/npillmayer/tytex/engine/context"
	"github.com/npillmayer/tytex/engine/interpreter"
	"github.com/peterh/liner"
	"golang.org/x/term"
)

// Prompter reads a line of input from the user.
type Prompter interface {
	Prompt(prompt string) (string, error)
	Close() error
}

// Handler is an interpreter.ErrorHandler asking the user how to proceed.
type Handler struct {
	prompter Prompter
	out      io.Writer
}

var _ interpreter.ErrorHandler = &Handler{}

// New creates a handler writing to out. If standard input is a terminal,
// responses are read with a line editor, otherwise the handler never stops.
// Clients should call Close when the run is done.
func New(out io.Writer) *Handler {
	h := &Handler{out: out}
	if term.IsTerminal(int(os.Stdin.Fd())) {
		h.prompter = NewLinerPrompter()
	} else {
		tracer().Infof("standard input is not a terminal, will not stop on errors")
	}
	return h
}

// NewWithPrompter creates a handler reading responses from p.
func NewWithPrompter(p Prompter, out io.Writer) *Handler {
	return &Handler{prompter: p, out: out}
}

// Close releases the terminal.
func (h *Handler) Close() error {
	if h.prompter == nil {
		return nil
	}
	return h.prompter.Close()
}

const menu = "Type <return> to proceed, S to scroll future error messages,\n" +
	"R to run without stopping, Q to run quietly,\n" +
	"I to insert something, 1-9 to delete the next tokens,\n" +
	"H for help, X to quit."

// HandleError is part of interface interpreter.ErrorHandler.
func (h *Handler) HandleError(e *interpreter.Error, ctx *context.Context, src interpreter.TokenSource) bool {
	mode := ctx.Interaction()
	if mode == context.BatchMode {
		return true
	}
	h.printf("! %s.\n", e.UserMessage())
	if e.Locator.Line > 0 {
		h.printf("l.%d %s\n", e.Locator.Line, e.Locator.Source)
	}
	if mode != context.ErrorStopMode || h.prompter == nil {
		if mode == context.ScrollMode {
			h.printf("%s\n", e.Help())
		}
		return true
	}
	for {
		line, err := h.prompter.Prompt("? ")
		if err != nil {
			if !errors.Is(err, io.EOF) && !errors.Is(err, liner.ErrPromptAborted) {
				tracer().Errorf("cannot read response: %v", err)
			}
			return false
		}
		line = strings.TrimSpace(line)
		if line == "" {
			return true
		}
		switch c := line[0]; {
		case c == 'h' || c == 'H':
			h.printf("%s\n", e.Help())
		case c == 'i' || c == 'I':
			if text := strings.TrimSpace(line[1:]); text != "" {
				src.PushString(text, "insert")
			}
			return true
		case c >= '1' && c <= '9':
			for n := int(c - '0'); n > 0; n-- {
				if _, err := src.Next(); err != nil {
					break
				}
			}
			return true
		case c == 'q' || c == 'Q':
			ctx.SetInteraction(context.BatchMode, true)
			return true
		case c == 'r' || c == 'R':
			ctx.SetInteraction(context.NonStopMode, true)
			return true
		case c == 's' || c == 'S':
			ctx.SetInteraction(context.ScrollMode, true)
			return true
		case c == 'x' || c == 'X':
			return false
		default:
			h.printf("%s\n", menu)
		}
	}
}

func (h *Handler) printf(format string, args ...interface{}) {
	if h.out != nil {
		fmt.Fprintf(h.out, format, args...)
	}
}

// --- liner -------------------------------------------------------------------

type linerPrompter struct {
	state *liner.State
}

// NewLinerPrompter creates a prompter with line editing and a history of
// responses. Ctrl-C aborts the prompt.
func NewLinerPrompter() Prompter {
	state := liner.NewLiner()
	state.SetCtrlCAborts(true)
	return &linerPrompter{state: state}
}

func (lp *linerPrompter) Prompt(prompt string) (string, error) {
	line, err := lp.state.Prompt(prompt)
	if err == nil && strings.TrimSpace(line) != "" {
		lp.state.AppendHistory(line)
	}
	return line, err
}

func (lp *linerPrompter) Close() error {
	return lp.state.Close()
}
