package interaction

import (
	"bytes"
	"io"
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/npillmayer/tytex/engine/context"
	"github.com/npillmayer/tytex/engine/interpreter"
	"github.com/npillmayer/tytex/engine/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// script is a prompter answering with prepared lines.
type script struct {
	lines   []string
	prompts int
}

func (s *script) Prompt(string) (string, error) {
	s.prompts++
	if len(s.lines) == 0 {
		return "", io.EOF
	}
	line := s.lines[0]
	s.lines = s.lines[1:]
	return line, nil
}

func (s *script) Close() error { return nil }

func setup(lines ...string) (*Handler, *script, *bytes.Buffer, *interpreter.Interpreter) {
	ctx := context.New("test", context.Environment{})
	intp := interpreter.New(ctx, interpreter.DefaultConfig())
	out := &bytes.Buffer{}
	s := &script{lines: lines}
	return NewWithPrompter(s, out), s, out, intp
}

func undefined() *interpreter.Error {
	return interpreter.NewError(interpreter.ErrUndefinedCS, token.Locator{Source: "doc.tex", Line: 2}, `\foo`)
}

func TestContinueAndHelp(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "tytex.interaction")
	defer teardown()
	//
	h, s, out, intp := setup("?", "h", "")
	assert.True(t, h.HandleError(undefined(), intp.Context(), intp))
	assert.Equal(t, 3, s.prompts)
	assert.Contains(t, out.String(), `! Undefined control sequence \foo.`)
	assert.Contains(t, out.String(), "l.2 doc.tex")
	assert.Contains(t, out.String(), "H for help")
	assert.Contains(t, out.String(), "has never been defined")
}

func TestQuit(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "tytex.interaction")
	defer teardown()
	//
	h, _, _, intp := setup("x")
	assert.False(t, h.HandleError(undefined(), intp.Context(), intp))
	h, _, _, intp = setup() // end of input
	assert.False(t, h.HandleError(undefined(), intp.Context(), intp))
}

func TestSwitchModes(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "tytex.interaction")
	defer teardown()
	//
	h, s, out, intp := setup("s", "r")
	ctx := intp.Context()
	assert.True(t, h.HandleError(undefined(), ctx, intp))
	assert.Equal(t, context.ScrollMode, ctx.Interaction())
	// scroll mode does not stop, but prints the help text
	out.Reset()
	assert.True(t, h.HandleError(undefined(), ctx, intp))
	assert.Equal(t, 1, s.prompts)
	assert.Contains(t, out.String(), "has never been defined")
	//
	ctx.SetInteraction(context.ErrorStopMode, true)
	assert.True(t, h.HandleError(undefined(), ctx, intp))
	assert.Equal(t, context.NonStopMode, ctx.Interaction())
	ctx.SetInteraction(context.BatchMode, true)
	out.Reset()
	assert.True(t, h.HandleError(undefined(), ctx, intp))
	assert.Empty(t, out.String())
}

func TestInsertAndDelete(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "tytex.interaction")
	defer teardown()
	//
	h, _, _, intp := setup("2", `I\relax`)
	intp.PushString("abc", "input")
	require.True(t, h.HandleError(undefined(), intp.Context(), intp))
	tok, err := intp.Next()
	require.NoError(t, err)
	assert.Equal(t, "c", tok.Name)
	require.True(t, h.HandleError(undefined(), intp.Context(), intp))
	tok, err = intp.Next()
	require.NoError(t, err)
	assert.True(t, tok.IsCS())
	assert.Equal(t, "relax", tok.Name)
}

func TestNoTerminal(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "tytex.interaction")
	defer teardown()
	//
	out := &bytes.Buffer{}
	h := &Handler{out: out}
	ctx := context.New("test", context.Environment{})
	intp := interpreter.New(ctx, interpreter.DefaultConfig())
	assert.True(t, h.HandleError(undefined(), ctx, intp))
	assert.Contains(t, out.String(), "Undefined control sequence")
	assert.NoError(t, h.Close())
}
