package interpreter

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/derekparker/trie"
	"github.com/emirpasic/gods/stacks/arraystack"
	"github.com/npillmayer/cords"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/tytex/core/dimen"
	"github.com/npillmayer/tytex/engine/context"
	"github.com/npillmayer/tytex/engine/khipu"
	"github.com/npillmayer/tytex/engine/lexer"
	"github.com/npillmayer/tytex/engine/token"
	"github.com/npillmayer/tytex/engine/typesetter"
)

// TokenSource is the view of the interpreter primitives work with. It
// delivers tokens, scans quantities and gives access to the machinery of
// the run.
//
// Scanning operations report recoverable errors themselves and continue
// with a substitute value. A non-nil error returned from one of them has to
// be passed on, as the run is about to end.
type TokenSource interface {
	Next() (token.Token, error)
	NextExpanded() (token.Token, error)
	ExpandOnce(tok token.Token) error
	PushBack(tok token.Token)
	PushTokens(l token.List)
	PushString(s string, name string)
	PushFile(fileName string) error
	Locator() token.Locator

	ScanNonBlank() (token.Token, error)
	ScanKeyword(kw string) (bool, error)
	ScanOptionalEquals() error
	ScanNumber() (int64, error)
	ScanRegisterName() (string, error)
	ScanDimen() (dimen.Dimen, error)
	ScanGlue() (dimen.Glue, error)
	ScanBalancedText(expand bool) (token.List, error)
	ScanControlSequence() (token.Token, error)
	ScanName() (string, error)

	CloseGroup(kind context.GroupKind) error
	ExecuteGroup() error
	Report(e *Error) error
	MagnificationError(err error, mag int64) error
	Message(s string)
	Stop()
}

var _ TokenSource = &Interpreter{}

// Interpreter reads tokens from a stack of input streams, expands macros and
// conditionals and executes primitives, which in turn drive a typesetter.
type Interpreter struct {
	ctx         *context.Context
	ts          typesetter.Typesetter
	streams     StreamFactory
	input       *arraystack.Stack
	handler     ErrorHandler
	config      Config
	errorCount  int
	halted      bool
	prefixes    Prefixes
	spaceFactor int64
	names       *trie.Trie // names of primitives, for suggestions
	transcript  cords.Cord
	logged      bool // transcript is non-empty
	terminal    io.Writer
	quiet       bool // batch mode: no terminal output
	output      *khipu.Khipu
	frozenRelax token.Token
}

// New creates an interpreter working on ctx. The run-time settings of ctx
// (maximum magnification and interaction mode) are initialized from conf.
// Tokens are read using a lexer.Factory for ctx.
func New(ctx *context.Context, conf Config) *Interpreter {
	intp := &Interpreter{
		ctx:         ctx,
		input:       arraystack.New(),
		config:      conf,
		spaceFactor: 1000,
		names:       trie.New(),
		terminal:    os.Stdout,
	}
	intp.handler = DefaultHandler{Out: os.Stderr}
	intp.streams = lexer.NewFactory(ctx, ctx.Tokens())
	intp.frozenRelax = ctx.Tokens().CS("relax", frozenNamespace)
	ctx.SetCode(intp.frozenRelax, relaxCode{}, true)
	ctx.SetMaxMagnification(conf.MaxMagnification)
	ctx.ObserveInteraction(func(mode context.Interaction) {
		intp.quiet = mode == context.BatchMode
		tracer().Debugf("interaction is now %s", mode)
	})
	ctx.SetInteraction(conf.Interaction, true)
	intp.quiet = conf.Interaction == context.BatchMode
	ctx.ObserveCount("tracingcommands", func(_ string, v int64) {
		if v > 0 {
			tracer().SetTraceLevel(tracing.LevelDebug)
		}
	})
	return intp
}

// SetTypesetter sets the typesetter receiving the material of the run.
func (intp *Interpreter) SetTypesetter(ts typesetter.Typesetter) {
	intp.ts = ts
}

// SetStreamFactory replaces the factory for input streams. A nil factory
// makes runs fail.
func (intp *Interpreter) SetStreamFactory(f StreamFactory) {
	intp.streams = f
}

// SetErrorHandler sets the handler consulted for recoverable errors. A nil
// handler continues after every error.
func (intp *Interpreter) SetErrorHandler(h ErrorHandler) {
	intp.handler = h
}

// SetTerminal sets the writer for terminal output like \message.
func (intp *Interpreter) SetTerminal(w io.Writer) {
	intp.terminal = w
}

// Context returns the context of the interpreter.
func (intp *Interpreter) Context() *context.Context {
	return intp.ctx
}

// Typesetter returns the typesetter of the interpreter.
func (intp *Interpreter) Typesetter() typesetter.Typesetter {
	return intp.ts
}

// ErrorCount returns the number of recoverable errors reported so far.
func (intp *Interpreter) ErrorCount() int {
	return intp.errorCount
}

// Output returns the list produced by the last run.
func (intp *Interpreter) Output() *khipu.Khipu {
	return intp.output
}

// Transcript returns everything written to the log, i.e. messages and
// errors.
func (intp *Interpreter) Transcript() string {
	if !intp.logged {
		return ""
	}
	return intp.transcript.String()
}

// Define binds the control sequence \name to a primitive. The binding is
// global and the name is remembered for suggestions on undefined control
// sequences.
func (intp *Interpreter) Define(name string, code context.Code) {
	intp.ctx.SetCode(intp.ctx.Tokens().CS(name, ""), code, true)
	intp.names.Add(name, code)
}

// --- Running ----------------------------------------------------------------

// RunString runs the interpreter on a string.
func (intp *Interpreter) RunString(s string, name string) error {
	intp.PushString(s, name)
	return intp.Run()
}

// RunFile runs the interpreter on a file.
func (intp *Interpreter) RunFile(fileName string) error {
	if intp.streams != nil {
		if err := intp.PushFile(fileName); err != nil {
			return err
		}
	}
	return intp.Run()
}

// Run interprets the streams on the input stack until the input is
// exhausted or \end is executed. Recoverable errors are reported to the
// error handler, the returned error is fatal.
func (intp *Interpreter) Run() error {
	if intp.ts == nil {
		return NewError(ErrNoTypesetter, token.Locator{})
	}
	if intp.streams == nil {
		return NewError(ErrNoStreamFactory, token.Locator{})
	}
	intp.halted = false
	intp.errorCount = 0
	err := intp.loop(nil)
	if err != nil && !errors.Is(err, io.EOF) {
		intp.input.Clear()
		return err
	}
	intp.input.Clear()
	if d := intp.ctx.Depth(); d > 0 {
		if err := intp.report(NewError(ErrUnbalancedEnd, intp.Locator(), d)); err != nil {
			return err
		}
	}
	for intp.ctx.ConditionalDepth() > 0 {
		c := intp.ctx.PopConditional()
		tracer().Infof(`\end occurred when \%s at %s was incomplete`, c.Primitive, c.Locator)
	}
	intp.output = intp.ts.Finish()
	return nil
}

// Stop ends the run after the current command, as \end does.
func (intp *Interpreter) Stop() {
	intp.halted = true
}

// loop executes commands until done reports true, the run is stopped or
// the input ends with io.EOF.
func (intp *Interpreter) loop(done func() bool) error {
	for !intp.halted && (done == nil || !done()) {
		tok, err := intp.NextExpanded()
		if err != nil {
			return err
		}
		if err = intp.handle(intp.dispatch(tok)); err != nil {
			return err
		}
	}
	return nil
}

// ExecuteGroup executes commands until the current group is closed. Boxes
// use it to build their contents.
func (intp *Interpreter) ExecuteGroup() error {
	if intp.ctx.Depth() == 0 {
		return NewError(ErrInternal, intp.Locator(), "no group to execute")
	}
	depth := intp.ctx.Depth()
	closed := false
	intp.ctx.AfterGroupFunc(func() { closed = true })
	err := intp.loop(func() bool { return closed })
	if errors.Is(err, io.EOF) {
		for intp.ctx.Depth() >= depth {
			intp.ctx.CloseGroup(intp.ctx.CurrentGroup().Kind(), intp)
		}
		return intp.report(NewError(ErrMissingToken, intp.Locator(), "}"))
	}
	return err
}

// --- Expansion --------------------------------------------------------------

// NextExpanded returns the next token which is not expandable. Macros and
// conditionals are expanded on the way.
func (intp *Interpreter) NextExpanded() (token.Token, error) {
	for {
		tok, err := intp.Next()
		if err != nil || !tok.IsCode() {
			return tok, err
		}
		code, ok := intp.ctx.Code(tok)
		if !ok {
			return tok, nil
		}
		expanded, err := intp.expand(tok, code)
		if err != nil {
			return tok, err
		}
		if !expanded {
			return tok, nil
		}
	}
}

// ExpandOnce expands tok a single level and pushes the result to the input.
// Tokens which are not expandable are pushed back unchanged.
func (intp *Interpreter) ExpandOnce(tok token.Token) error {
	if tok.IsCode() {
		if code, ok := intp.ctx.Code(tok); ok {
			expanded, err := intp.expand(tok, code)
			if expanded || err != nil {
				return err
			}
		}
	}
	intp.PushBack(tok)
	return nil
}

// expand expands a code if it is expandable. Recoverable errors have been
// reported when expand returns.
func (intp *Interpreter) expand(tok token.Token, code context.Code) (bool, error) {
	switch c := code.(type) {
	case SwitchCode:
		intp.traceCommand(tok)
		return true, intp.conditional(tok, c, false)
	case IfCode:
		intp.traceCommand(tok)
		return true, intp.conditional(tok, c, false)
	case Terminator:
		intp.traceCommand(tok)
		return true, intp.terminate(tok, c)
	case *UnlessCode:
		intp.traceCommand(tok)
		return true, intp.unless(c)
	case Expandable:
		intp.traceCommand(tok)
		l, err := c.Expand(intp.ctx, intp)
		if err = intp.handle(err); err != nil {
			return true, err
		}
		intp.PushTokens(l)
		return true, nil
	}
	return false, nil
}

// --- Execution --------------------------------------------------------------

// dispatch executes a single unexpandable token.
func (intp *Interpreter) dispatch(tok token.Token) error {
	if tok.IsCode() {
		code, ok := intp.ctx.Code(tok)
		if !ok {
			intp.prefixes = 0
			return intp.undefined(tok)
		}
		return intp.execute(tok, code)
	}
	if intp.prefixes != 0 {
		if tok.Cat == token.Space {
			return nil
		}
		intp.prefixes = 0
		intp.PushBack(tok)
		return NewError(ErrCantUsePrefix, intp.Locator(), describe(tok))
	}
	intp.traceCommand(tok)
	tc := intp.ctx.TypesettingContext()
	switch tok.Cat {
	case token.LeftBrace:
		intp.ctx.OpenGroup(context.SimpleGroup, intp.Locator())
	case token.RightBrace:
		return intp.CloseGroup(context.SimpleGroup)
	case token.Letter, token.Other:
		r := tok.Char()
		intp.ts.Add(tc, r)
		if sf := intp.ctx.Charcode(context.SfCode, r); sf != 0 {
			intp.spaceFactor = sf
		}
	case token.Space:
		intp.ts.AddSpace(tc, intp.spaceFactor)
	case token.MathShift:
		return intp.mathShift()
	case token.SupMark, token.SubMark:
		if intp.ts.Mode().IsMath() {
			intp.ts.Add(tc, tok.Char())
			return nil
		}
		return NewError(ErrMisplaced, intp.Locator(), describe(tok))
	case token.TabMark, token.MacroParam:
		return NewError(ErrMisplaced, intp.Locator(), describe(tok))
	default:
		return NewError(ErrInternal, intp.Locator(), "unexpected token "+tok.Debug())
	}
	return nil
}

// execute executes a code, collecting prefixes for the next assignment.
func (intp *Interpreter) execute(tok token.Token, code context.Code) error {
	if p, ok := code.(Prefix); ok {
		intp.prefixes |= p.Prefix()
		return nil
	}
	prefixes := intp.prefixes
	intp.prefixes = 0
	if prefixes != 0 {
		a, ok := code.(Assignment)
		if !ok || prefixes&^a.AcceptedPrefixes() != 0 {
			intp.PushBack(tok)
			return NewError(ErrCantUsePrefix, intp.Locator(), tok.String())
		}
	}
	c, ok := code.(Code)
	if !ok {
		return NewError(ErrMisplaced, intp.Locator(), tok.String())
	}
	intp.traceCommand(tok)
	return c.Execute(prefixes, intp.ctx, intp, intp.ts)
}

// CloseGroup closes the current group, which has to be of the given kind.
func (intp *Interpreter) CloseGroup(kind context.GroupKind) error {
	err := intp.ctx.CloseGroup(kind, intp)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, context.ErrTooManyClosingBraces):
		if kind == context.SimpleGroup {
			return NewError(ErrExtraRightBrace, intp.Locator())
		}
		return NewError(ErrGroupMismatch, intp.Locator(), `\endgroup`, `\begingroup`)
	case errors.Is(err, context.ErrGroupMismatch):
		if kind == context.SimpleGroup {
			return NewError(ErrGroupMismatch, intp.Locator(), "}", `\endgroup`)
		}
		return NewError(ErrGroupMismatch, intp.Locator(), `\endgroup`, "}")
	}
	return NewError(ErrInternal, intp.Locator(), err.Error()).Wrap(err)
}

// mathShift processes $ and $$.
func (intp *Interpreter) mathShift() error {
	mode := intp.ts.Mode()
	switch mode {
	case typesetter.MathMode:
		return intp.typesetterError(intp.ts.ToggleMath())
	case typesetter.DisplayMathMode:
		tok, err := intp.NextExpanded()
		if err != nil && !errors.Is(err, io.EOF) {
			return err
		}
		if err == nil && tok.Cat != token.MathShift {
			intp.PushBack(tok)
			intp.ts.ToggleDisplayMath()
			return NewError(ErrDisplayMathEnd, intp.Locator())
		}
		return intp.typesetterError(intp.ts.ToggleDisplayMath())
	case typesetter.RestrictedHorizontalMode:
		return intp.typesetterError(intp.ts.ToggleMath())
	}
	tok, err := intp.NextExpanded()
	if err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	if err == nil {
		if tok.Cat == token.MathShift {
			return intp.typesetterError(intp.ts.ToggleDisplayMath())
		}
		intp.PushBack(tok)
	}
	return intp.typesetterError(intp.ts.ToggleMath())
}

func (intp *Interpreter) typesetterError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, typesetter.ErrDisplayMathEnd):
		return NewError(ErrDisplayMathEnd, intp.Locator())
	}
	return NewError(ErrInternal, intp.Locator(), err.Error()).Wrap(err)
}

// undefined creates the error for an undefined control sequence, with a
// suggestion of a similar primitive, if there is one.
func (intp *Interpreter) undefined(tok token.Token) error {
	e := NewError(ErrUndefinedCS, intp.Locator(), tok.String())
	if tok.IsCS() {
		e.Hint = intp.suggest(tok.Name)
	}
	return e
}

func (intp *Interpreter) suggest(name string) string {
	if name == "" {
		return ""
	}
	best := ""
	for _, candidate := range intp.names.FuzzySearch(name) {
		if candidate == name {
			continue
		}
		if best == "" || len(candidate) < len(best) {
			best = candidate
		}
	}
	if best == "" {
		return ""
	}
	return `\` + best
}

func describe(tok token.Token) string {
	return fmt.Sprintf("%s character %s", tok.Cat, tok.Name)
}

func (intp *Interpreter) traceCommand(tok token.Token) {
	if intp.ctx.Count("tracingcommands") > 0 {
		tracer().Infof("{%s: %s}", intp.ts.Mode(), tok)
	}
}

// --- Errors and messages ----------------------------------------------------

// handle reports err if it is recoverable. It returns a non-nil error if
// the run has to stop.
func (intp *Interpreter) handle(err error) error {
	if err == nil {
		return nil
	}
	e, ok := AsError(err)
	if !ok {
		if errors.Is(err, io.EOF) {
			return err
		}
		return NewError(ErrInternal, intp.Locator(), err.Error()).Wrap(err)
	}
	return intp.report(e)
}

// Report reports a recoverable error and returns nil if the run may go
// on. Fatal errors are returned unchanged.
func (intp *Interpreter) Report(e *Error) error {
	return intp.report(e)
}

func (intp *Interpreter) report(e *Error) error {
	e.Lang = intp.config.Language
	if e.Fatal {
		intp.log(e)
		return e
	}
	intp.errorCount++
	if intp.errorCount > intp.config.MaxErrors {
		intp.log(e)
		limit := NewError(ErrErrorLimit, e.Locator, intp.errorCount).Wrap(e)
		limit.Lang = intp.config.Language
		intp.log(limit)
		return limit
	}
	intp.log(e)
	if intp.handler != nil && !intp.handler.HandleError(e, intp.ctx, intp) {
		aborted := NewError(ErrAborted, e.Locator).Wrap(e)
		aborted.Lang = intp.config.Language
		return aborted
	}
	return nil
}

func (intp *Interpreter) log(e *Error) {
	tracer().Errorf("%v", e)
	s := "! " + e.UserMessage() + ".\n"
	if e.Locator.Line > 0 {
		s += fmt.Sprintf("l.%d %s\n", e.Locator.Line, e.Locator.Source)
	}
	intp.appendTranscript(s)
}

// Message writes a message to the terminal and the transcript.
func (intp *Interpreter) Message(s string) {
	intp.appendTranscript(s + "\n")
	if !intp.quiet && intp.terminal != nil {
		fmt.Fprintln(intp.terminal, s)
	}
}

func (intp *Interpreter) appendTranscript(s string) {
	if s == "" {
		return
	}
	if !intp.logged {
		intp.transcript = cords.FromString(s)
		intp.logged = true
		return
	}
	intp.transcript = cords.Concat(intp.transcript, cords.FromString(s))
}

// magnificationError maps errors of context.SetMagnification to errors of
// the run.
func (intp *Interpreter) magnificationError(err error, mag int64) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, context.ErrIllegalMagnification):
		return intp.report(NewError(ErrIllegalMag, intp.Locator(), mag, intp.config.MaxMagnification))
	case errors.Is(err, context.ErrIncompatibleMagnification):
		return intp.report(NewError(ErrIncompatibleMag, intp.Locator(), mag, intp.ctx.Magnification()))
	}
	return NewError(ErrInternal, intp.Locator(), err.Error()).Wrap(err)
}

// MagnificationError maps an error of context.SetMagnification to an
// error of the run, reporting it if it is recoverable.
func (intp *Interpreter) MagnificationError(err error, mag int64) error {
	return intp.magnificationError(err, mag)
}
