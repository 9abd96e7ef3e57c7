package interpreter

import (
	"errors"
	"strings"
	"testing"

	"github.com/npillmayer/schuko/testconfig"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/npillmayer/tytex/engine/context"
	"github.com/npillmayer/tytex/engine/khipu"
	"github.com/npillmayer/tytex/engine/token"
	"github.com/npillmayer/tytex/engine/typesetter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"golang.org/x/text/language"
)

// --- Codes for testing -------------------------------------------------------

type constIf struct {
	name  string
	value bool
}

func (c constIf) Name() string { return c.name }
func (c constIf) Evaluate(*context.Context, TokenSource, typesetter.Typesetter) (bool, error) {
	return c.value, nil
}

type caseCode struct{}

func (caseCode) Name() string { return "ifcase" }
func (caseCode) Case(ctx *context.Context, src TokenSource) (int64, error) {
	return src.ScanNumber()
}

type procCode struct {
	name string
	proc func(Prefixes, *context.Context, TokenSource, typesetter.Typesetter) error
}

func (c procCode) Name() string { return c.name }
func (c procCode) Execute(p Prefixes, ctx *context.Context, src TokenSource, ts typesetter.Typesetter) error {
	return c.proc(p, ctx, src, ts)
}

type setCode struct{}

func (setCode) Name() string               { return "setx" }
func (setCode) AcceptedPrefixes() Prefixes { return Global }
func (setCode) Execute(p Prefixes, ctx *context.Context, src TokenSource, ts typesetter.Typesetter) error {
	n, err := src.ScanNumber()
	if err != nil {
		return err
	}
	ctx.SetCount("x", n, p&Global != 0)
	return nil
}

type globalCode struct{}

func (globalCode) Name() string       { return "global" }
func (globalCode) Prefix() Prefixes { return Global }

type macroCode struct {
	name string
	body string
}

func (m macroCode) Name() string { return m.name }
func (m macroCode) Expand(ctx *context.Context, src TokenSource) (token.List, error) {
	return ctx.Tokens().FromString(m.body), nil
}

// --- Suite ------------------------------------------------------------------

type InterpreterSuite struct {
	suite.Suite
	teardown func()
	ctx      *context.Context
	intp     *Interpreter
	rec      *typesetter.Recorder
	errors   []*Error
}

func TestInterpreterSuite(t *testing.T) {
	suite.Run(t, new(InterpreterSuite))
}

func (s *InterpreterSuite) SetupTest() {
	s.teardown = gotestingadapter.QuickConfig(s.T(), "tytex.interpreter")
	tracing.Select("tytex.interpreter").SetTraceLevel(tracing.LevelError)
	s.errors = nil
	s.ctx = context.New("test", context.Environment{})
	conf := DefaultConfig()
	conf.Interaction = context.BatchMode
	s.intp = New(s.ctx, conf)
	s.rec = typesetter.NewRecorder(nil)
	s.intp.SetTypesetter(s.rec)
	s.intp.SetErrorHandler(ErrorHandlerFunc(func(e *Error, ctx *context.Context, src TokenSource) bool {
		s.errors = append(s.errors, e)
		return true
	}))
	define(s.intp)
}

func (s *InterpreterSuite) TearDownTest() {
	s.teardown()
}

func define(intp *Interpreter) {
	intp.Define("iftrue", constIf{"iftrue", true})
	intp.Define("iffalse", constIf{"iffalse", false})
	intp.Define("ifcase", caseCode{})
	intp.Define("or", NewTerminator("or", OrTag))
	intp.Define("else", NewTerminator("else", ElseTag))
	intp.Define("fi", NewTerminator("fi", FiTag))
	intp.Define("unless", NewUnless("unless"))
	intp.Define("global", globalCode{})
	intp.Define("setx", setCode{})
	intp.Define("ab", macroCode{"ab", "ab"})
	intp.Define("end", procCode{"end", func(_ Prefixes, _ *context.Context, src TokenSource, _ typesetter.Typesetter) error {
		src.Stop()
		return nil
	}})
	intp.Define("relax", procCode{"relax", func(Prefixes, *context.Context, TokenSource, typesetter.Typesetter) error {
		return nil
	}})
	intp.Define("after", procCode{"after", func(_ Prefixes, ctx *context.Context, src TokenSource, _ typesetter.Typesetter) error {
		tok, err := src.Next()
		if err != nil {
			return eof(err)
		}
		ctx.AfterGroupToken(tok)
		return nil
	}})
	intp.Define("box", procCode{"box", func(_ Prefixes, ctx *context.Context, src TokenSource, ts typesetter.Typesetter) error {
		tok, err := src.ScanNonBlank()
		if err != nil {
			return err
		}
		if tok.Cat != token.LeftBrace {
			src.PushBack(tok)
			return NewError(ErrMissingToken, src.Locator(), "{")
		}
		ctx.OpenGroup(context.SimpleGroup, src.Locator())
		ts.OpenList(typesetter.RestrictedHorizontalMode)
		if err := src.ExecuteGroup(); err != nil {
			return err
		}
		list, err := ts.CloseList()
		if err != nil {
			return err
		}
		ts.AddBox(khipu.Pack(khipu.HBox, list))
		return nil
	}})
}

func (s *InterpreterSuite) run(input string) error {
	return s.intp.RunString(input, "test")
}

func (s *InterpreterSuite) kinds() []ErrorKind {
	var kinds []ErrorKind
	for _, e := range s.errors {
		kinds = append(kinds, e.Kind)
	}
	return kinds
}

func (s *InterpreterSuite) TestConditionals() {
	s.Require().NoError(s.run(`\iftrue a\else b\fi\end`))
	s.Equal([]string{"a"}, s.rec.Letters())
	s.Empty(s.errors)
}

func (s *InterpreterSuite) TestConditionalInText() {
	s.Require().NoError(s.run(`x\iftrue a\fi x\end`))
	s.Equal([]string{"x", "a", "x"}, s.rec.Letters())
}

func (s *InterpreterSuite) TestElseBranch() {
	s.Require().NoError(s.run(`\iffalse a\else b\fi c\end`))
	s.Equal([]string{"b", "c"}, s.rec.Letters())
}

func (s *InterpreterSuite) TestNestedConditionals() {
	s.Require().NoError(s.run(`\iffalse \iftrue a\else b\fi c\else d\fi\end`))
	s.Equal([]string{"d"}, s.rec.Letters())
	s.Equal(0, s.ctx.ConditionalDepth())
}

func (s *InterpreterSuite) TestUnless() {
	s.Require().NoError(s.run(`\unless\iffalse a\else b\fi\end`))
	s.Equal([]string{"a"}, s.rec.Letters())
}

func (s *InterpreterSuite) TestIfCase() {
	s.Require().NoError(s.run(`\ifcase 2 a\or b\or c\else d\fi\end`))
	s.Equal([]string{"c"}, s.rec.Letters())
}

func (s *InterpreterSuite) TestIfCaseSelectsElse() {
	s.Require().NoError(s.run(`\ifcase -1 a\or b\else d\fi\end`))
	s.Equal([]string{"d"}, s.rec.Letters())
}

func (s *InterpreterSuite) TestIfCaseWithoutMatch() {
	s.Require().NoError(s.run(`\ifcase 5 a\or b\fi x\end`))
	s.Equal([]string{"x"}, s.rec.Letters())
}

func (s *InterpreterSuite) TestEOFWhileSkipping() {
	err := s.run(`\iffalse a`)
	s.Require().Error(err)
	e, ok := AsError(err)
	s.Require().True(ok)
	s.Equal(ErrEOFInSkip, e.Kind)
	s.True(IsFatal(err))
}

func (s *InterpreterSuite) TestEOFWhileSkippingCases() {
	err := s.run(`\ifcase 2 a\or b`)
	s.Require().Error(err)
	e, ok := AsError(err)
	s.Require().True(ok)
	s.Equal(ErrEOFInSkip, e.Kind)
	s.Equal(`Incomplete \ifcase; all text was ignored after line 1`, e.UserMessage())
	s.True(IsFatal(err))
}

func (s *InterpreterSuite) TestTerminatorEndsCaseNumber() {
	s.Require().NoError(s.run(`\ifcase 1\or a\else b\fi\end`))
	s.Equal([]string{"a"}, s.rec.Letters())
	s.Empty(s.errors)
	s.Equal(0, s.ctx.ConditionalDepth())
}

func (s *InterpreterSuite) TestTerminatorsEndCaseNumber() {
	s.Require().NoError(s.run(`\ifcase 3\or\or\or\else\fi x\end`))
	s.Equal([]string{"x"}, s.rec.Letters())
	s.Empty(s.errors)
	s.Equal(0, s.ctx.ConditionalDepth())
}

func (s *InterpreterSuite) TestTerminatorInsideOuterConditional() {
	s.Require().NoError(s.run(`\iftrue \ifcase 0\fi a\else b\fi c\end`))
	s.Equal([]string{"a", "c"}, s.rec.Letters())
	s.Empty(s.errors)
	s.Equal(0, s.ctx.ConditionalDepth())
}

func (s *InterpreterSuite) TestExtraTerminators() {
	s.Require().NoError(s.run(`a\fi b\or\iftrue c\else d\else e\fi\end`))
	s.Equal([]string{"a", "b", "c"}, s.rec.Letters())
	s.Equal([]ErrorKind{ErrExtraFi, ErrExtraOr}, s.kinds())
}

func (s *InterpreterSuite) TestErrorLimit() {
	conf := DefaultConfig()
	conf.MaxErrors = 3
	conf.Interaction = context.BatchMode
	s.intp.config = conf
	err := s.run(`\x\x\x\x\x\end`)
	s.Require().Error(err)
	e, _ := AsError(err)
	s.Require().NotNil(e)
	s.Equal(ErrErrorLimit, e.Kind)
	s.Len(s.errors, 3)
	s.Equal(4, s.intp.ErrorCount())
}

func (s *InterpreterSuite) TestAbortByHandler() {
	s.intp.SetErrorHandler(ErrorHandlerFunc(func(*Error, *context.Context, TokenSource) bool {
		return false
	}))
	err := s.run(`\undefined a\end`)
	e, ok := AsError(err)
	s.Require().True(ok)
	s.Equal(ErrAborted, e.Kind)
}

func (s *InterpreterSuite) TestBraces() {
	s.Require().NoError(s.run(`a}b{c\end`))
	s.Equal([]string{"a", "b", "c"}, s.rec.Letters())
	s.Equal([]ErrorKind{ErrExtraRightBrace, ErrUnbalancedEnd}, s.kinds())
}

func (s *InterpreterSuite) TestGlobalPrefix() {
	s.Require().NoError(s.run(`{\setx 5 }\end`))
	s.Equal(int64(0), s.ctx.Count("x"))
	s.Require().NoError(s.run(`{\global\setx 7 }\end`))
	s.Equal(int64(7), s.ctx.Count("x"))
	s.Empty(s.errors)
}

func (s *InterpreterSuite) TestMisusedPrefix() {
	s.Require().NoError(s.run(`\global\relax\global a\end`))
	s.Equal([]string{"a"}, s.rec.Letters())
	s.Equal([]ErrorKind{ErrCantUsePrefix, ErrCantUsePrefix}, s.kinds())
}

func (s *InterpreterSuite) TestMacroExpansion() {
	s.Require().NoError(s.run(`x\ab y\end`))
	s.Equal([]string{"x", "a", "b", "y"}, s.rec.Letters())
}

func (s *InterpreterSuite) TestAfterGroup() {
	s.Require().NoError(s.run(`{\after x\after y a}\end`))
	s.Equal([]string{"a", "x", "y"}, s.rec.Letters())
}

func (s *InterpreterSuite) TestMath() {
	s.Require().NoError(s.run(`a $x$ $$y$$\end`))
	var math, display int
	for _, e := range s.rec.Events {
		switch e {
		case "math":
			math++
		case "displaymath":
			display++
		}
	}
	s.Equal(2, math)
	s.Equal(2, display)
	s.Empty(s.errors)
}

func (s *InterpreterSuite) TestExecuteGroup() {
	s.Require().NoError(s.run(`\box{ab}c\end`))
	s.Contains(s.rec.Events, "box")
	s.Equal(0, s.ctx.Depth())
	s.Empty(s.errors)
}

func (s *InterpreterSuite) TestUndefinedWithSuggestion() {
	s.Require().NoError(s.run(`\relx\end`))
	s.Require().Len(s.errors, 1)
	e := s.errors[0]
	s.Equal(ErrUndefinedCS, e.Kind)
	s.Equal(`\relax`, e.Hint)
	s.Contains(e.Help(), `Did you mean \relax?`)
	s.Contains(s.intp.Transcript(), `Undefined control sequence \relx`)
}

func (s *InterpreterSuite) TestLocalizedMessages() {
	s.intp.config.Language = language.German
	s.Require().NoError(s.run(`\relx\end`))
	s.Require().Len(s.errors, 1)
	s.Equal(`Undefinierte Steuersequenz \relx`, s.errors[0].UserMessage())
	s.True(strings.HasPrefix(s.errors[0].Error(), "test:1"), s.errors[0].Error())
}

func (s *InterpreterSuite) TestMessage() {
	s.intp.Message("hello")
	s.Equal("hello\n", s.intp.Transcript())
}

// --- Plain tests --------------------------------------------------------------

func TestPreconditions(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "tytex.interpreter")
	defer teardown()
	//
	intp := New(context.New("test", context.Environment{}), DefaultConfig())
	err := intp.RunString("a", "test")
	e, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, ErrNoTypesetter, e.Kind)
	//
	intp.SetTypesetter(typesetter.NewKhipuTypesetter())
	intp.SetStreamFactory(nil)
	err = intp.Run()
	e, ok = AsError(err)
	require.True(t, ok)
	assert.Equal(t, ErrNoStreamFactory, e.Kind)
}

func TestErrorTexts(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "tytex.interpreter")
	defer teardown()
	//
	e := NewError(ErrIllegalMag, token.Locator{Source: "doc.tex", Line: 3, Column: 1}, 0, 32768)
	assert.Equal(t, "Illegal magnification (0), must be between 1 and 32768", e.UserMessage())
	assert.Contains(t, e.Error(), "Illegal magnification")
	assert.False(t, e.Fatal)
	assert.True(t, NewError(ErrEOFInSkip, token.Locator{}, `\iffalse`, 1).Fatal)
	assert.True(t, IsFatal(errors.New("something else")))
	assert.False(t, IsFatal(nil))
	e.Lang = language.German
	assert.Equal(t, "Unzulässige Vergrößerung (0), erlaubt ist 1 bis 32768", e.UserMessage())
	//
	e = NewError(ErrBadCharCode, token.Locator{}, int64(1114112), 1114111)
	assert.Equal(t, "Invalid code (1114112), should be in the range 0..1114111", e.UserMessage())
	e.Lang = language.German
	assert.Equal(t, "Ungültiger Code (1114112), erlaubt ist 0..1114111", e.UserMessage())
	assert.Equal(t, "That makes 101 errors; please try again.",
		NewError(ErrErrorLimit, token.Locator{}, 101).Error())
}

func TestConfigDefaults(t *testing.T) {
	teardown := testconfig.QuickConfig(t)
	defer teardown()
	//
	conf, err := ConfigFromGlobal()
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), conf)
	assert.Equal(t, 100, conf.MaxErrors)
	assert.Equal(t, int64(context.DefaultMaxMagnification), conf.MaxMagnification)
}
