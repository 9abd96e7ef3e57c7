package primitives

import (
	"errors"
	"testing"

	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/npillmayer/tytex/core"
	"github.com/npillmayer/tytex/core/dimen"
	"github.com/npillmayer/tytex/core/font"
	"github.com/npillmayer/tytex/engine/context"
	"github.com/npillmayer/tytex/engine/interpreter"
	"github.com/npillmayer/tytex/engine/token"
	"github.com/npillmayer/tytex/engine/typesetter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"golang.org/x/text/unicode/bidi"
)

// noFonts is a font factory which knows no fonts at all.
type noFonts struct{}

func (noFonts) Font(name string, size dimen.Dimen) (font.Font, error) {
	return font.NullFont, core.WrapError(errors.New("no such font"), core.EMISSING, "font not found: %s", name)
}

type PrimitivesSuite struct {
	suite.Suite
	teardown func()
	ctx      *context.Context
	intp     *interpreter.Interpreter
	rec      *typesetter.Recorder
	errors   []*interpreter.Error
}

func TestPrimitivesSuite(t *testing.T) {
	suite.Run(t, new(PrimitivesSuite))
}

func (s *PrimitivesSuite) SetupTest() {
	s.teardown = gotestingadapter.QuickConfig(s.T(), "tytex.primitives")
	tracing.Select("tytex.interpreter").SetTraceLevel(tracing.LevelError)
	s.errors = nil
	s.ctx = context.New("test", context.Environment{})
	s.ctx.Reinit(context.Environment{}, noFonts{}, nil)
	conf := interpreter.DefaultConfig()
	conf.Interaction = context.BatchMode
	s.intp = interpreter.New(s.ctx, conf)
	s.rec = typesetter.NewRecorder(nil)
	s.intp.SetTypesetter(s.rec)
	s.intp.SetErrorHandler(interpreter.ErrorHandlerFunc(func(e *interpreter.Error, _ *context.Context,
		_ interpreter.TokenSource) bool {
		s.errors = append(s.errors, e)
		return true
	}))
	s.Require().NoError(Install(s.intp))
}

func (s *PrimitivesSuite) TearDownTest() {
	s.teardown()
}

func (s *PrimitivesSuite) run(input string) {
	s.Require().NoError(s.intp.RunString(input, "test"))
}

func (s *PrimitivesSuite) kinds() []interpreter.ErrorKind {
	var kinds []interpreter.ErrorKind
	for _, e := range s.errors {
		kinds = append(kinds, e.Kind)
	}
	return kinds
}

func (s *PrimitivesSuite) TestDefaults() {
	s.Equal(int64(10000), s.ctx.Count("tolerance"))
	s.Equal(int64(92), s.ctx.Count("escapechar"))
	s.Equal(int64(1776), s.ctx.Count("year"))
}

func (s *PrimitivesSuite) TestMacroWithParameters() {
	s.run(`\def\a#1#2{[#2#1]}\a xy\end`)
	s.Equal([]string{"[", "y", "x", "]"}, s.rec.Letters())
	s.Empty(s.errors)
}

func (s *PrimitivesSuite) TestDelimitedParameter() {
	s.run(`\def\a#1.{(#1)}\a xy.z\end`)
	s.Equal([]string{"(", "x", "y", ")", "z"}, s.rec.Letters())
}

func (s *PrimitivesSuite) TestMacroUseDoesntMatch() {
	s.run(`\def\a.{x}\a y\end`)
	s.Equal([]interpreter.ErrorKind{interpreter.ErrUseDoesntMatch}, s.kinds())
}

func (s *PrimitivesSuite) TestGlobalDefinition() {
	s.run(`{\def\a{x}\gdef\b{y}}\a\b\end`)
	s.Equal([]string{"y"}, s.rec.Letters())
	s.Equal([]interpreter.ErrorKind{interpreter.ErrUndefinedCS}, s.kinds())
}

func (s *PrimitivesSuite) TestEdef() {
	s.run(`\def\a{x}\edef\b{\a\a}\def\a{y}\b\end`)
	s.Equal([]string{"x", "x"}, s.rec.Letters())
}

func (s *PrimitivesSuite) TestLet() {
	s.run(`\let\x=a \x\let\r\relax\ifx\r\relax y\fi\end`)
	s.Equal([]string{"a", "y"}, s.rec.Letters())
	s.Empty(s.errors)
}

func (s *PrimitivesSuite) TestIfx() {
	s.run(`\def\a{x}\def\b{x}\def\c{z}\ifx\a\b 1\fi\ifx\a\c 2\fi\ifx\undefined\alsoundefined 3\fi\end`)
	s.Equal([]string{"1", "3"}, s.rec.Letters())
}

func (s *PrimitivesSuite) TestCountRegisters() {
	s.run(`\count1=5 \advance\count1 by 3 \multiply\count1 2 \the\count1\end`)
	s.Equal(int64(16), s.ctx.Count("1"))
	s.Equal([]string{"1", "6"}, s.rec.Letters())
}

func (s *PrimitivesSuite) TestDimenRegisters() {
	s.run(`\dimen0=2pt \advance\dimen0 by 1pt \the\dimen0\end`)
	s.Equal(3*dimen.PT, s.ctx.Dimen("0"))
	s.Equal([]string{"3", ".", "0", "p", "t"}, s.rec.Letters())
}

func (s *PrimitivesSuite) TestDivisionByZero() {
	s.run(`\count1=7 \divide\count1 by 0 \end`)
	s.Equal(int64(7), s.ctx.Count("1"))
	s.Equal([]interpreter.ErrorKind{interpreter.ErrArithmetic}, s.kinds())
}

func (s *PrimitivesSuite) TestRegisterDefinitions() {
	s.run(`\countdef\n=5 \n=7 \toksdef\t=2 \t={ab}\the\count5 \the\toks2 \end`)
	s.Equal(int64(7), s.ctx.Count("5"))
	s.Equal([]string{"7", "a", "b"}, s.rec.Letters())
	s.Empty(s.errors)
}

func (s *PrimitivesSuite) TestLocalAndGlobalAssignment() {
	s.run(`{\count1=3 \global\count2=4 }\begingroup\count3=5 \endgroup\end`)
	s.Equal(int64(0), s.ctx.Count("1"))
	s.Equal(int64(4), s.ctx.Count("2"))
	s.Equal(int64(0), s.ctx.Count("3"))
	s.Empty(s.errors)
}

func (s *PrimitivesSuite) TestIllegalRegister() {
	s.run(`\count40000=1 \end`)
	s.Equal([]interpreter.ErrorKind{interpreter.ErrIllegalRegister}, s.kinds())
}

func (s *PrimitivesSuite) TestConditionals() {
	s.run(`\count1=5 \ifnum\count1>3 a\else b\fi\ifdim 1pt<2pt c\fi\ifodd 3 d\fi\unless\ifodd 3 e\fi\end`)
	s.Equal([]string{"a", "c", "d"}, s.rec.Letters())
}

func (s *PrimitivesSuite) TestTerminatorEndsNumber() {
	s.run(`\ifnum 1<2\else x\fi y\ifdim 2pt>1pt\fi z\ifcase 1\or a\else b\fi\end`)
	s.Equal([]string{"y", "z", "a"}, s.rec.Letters())
	s.Empty(s.errors)
	s.Equal(0, s.ctx.ConditionalDepth())
}

func (s *PrimitivesSuite) TestIfCharAndCat() {
	s.run(`\if aa 1\fi\if ab 2\fi\ifcat ab 3\fi\ifcat a1 4\fi\end`)
	s.Equal([]string{"1", "3"}, s.rec.Letters())
}

func (s *PrimitivesSuite) TestIfMode() {
	s.run(`\ifvmode a\fi\ifhmode b\fi\ifinner c\fi\end`)
	s.Equal([]string{"a", "b"}, s.rec.Letters())
}

func (s *PrimitivesSuite) TestIfCase() {
	s.run(`\ifcase 1 a\or b\else c\fi\end`)
	s.Equal([]string{"b"}, s.rec.Letters())
}

func (s *PrimitivesSuite) TestBoxes() {
	s.run(`\setbox1=\hbox{ab}\copy1 \box1 \box1 \end`)
	s.Nil(s.ctx.Box("1"))
	var boxes int
	for _, e := range s.rec.Events {
		if e == "box" {
			boxes++
		}
	}
	s.Equal(2, boxes)
	s.Equal(0, s.ctx.Depth())
	s.Empty(s.errors)
}

func (s *PrimitivesSuite) TestBoxToWidth() {
	s.run(`\setbox2=\vbox to 20pt{}\end`)
	s.Require().NotNil(s.ctx.Box("2"))
	s.Equal(20*dimen.PT, s.ctx.Box("2").Width)
}

func (s *PrimitivesSuite) TestCatcode() {
	s.run(`\catcode 33=11 \the\catcode 33 \end`)
	s.Equal(token.Letter, s.ctx.Catcode('!'))
	s.Equal([]string{"1", "1"}, s.rec.Letters())
	s.run(`\catcode 33=16 \end`)
	s.Equal([]interpreter.ErrorKind{interpreter.ErrBadCharCode}, s.kinds())
}

func (s *PrimitivesSuite) TestCaseChange() {
	s.run(`\uppercase{ab}\lowercase{CD}\end`)
	s.Equal([]string{"A", "B", "c", "d"}, s.rec.Letters())
}

func (s *PrimitivesSuite) TestCsname() {
	s.run(`\def\foo{x}\csname foo\endcsname\csname bar\endcsname y\end`)
	s.Equal([]string{"x", "y"}, s.rec.Letters())
	s.Empty(s.errors)
	s.run(`\endcsname\end`)
	s.Equal([]interpreter.ErrorKind{interpreter.ErrMisplaced}, s.kinds())
}

func (s *PrimitivesSuite) TestExpandafter() {
	s.run(`\def\x{y}\expandafter\string\x\end`)
	s.Equal([]string{"y"}, s.rec.Letters())
}

func (s *PrimitivesSuite) TestNumbers() {
	s.run(`\romannumeral 14 \number 007\end`)
	s.Equal([]string{"x", "i", "v", "7"}, s.rec.Letters())
}

func (s *PrimitivesSuite) TestMessageAndMeaning() {
	s.run(`\def\a#1{x#1}\message{\meaning\a}\message{\meaning\relax}\end`)
	s.Contains(s.intp.Transcript(), "macro:#1->x#1\n")
	s.Contains(s.intp.Transcript(), `\relax`)
}

func (s *PrimitivesSuite) TestTheWithoutQuantity() {
	s.run(`\the\relax\end`)
	s.Equal([]interpreter.ErrorKind{interpreter.ErrCantUseAfterThe}, s.kinds())
	s.Equal([]string{"0"}, s.rec.Letters())
}

func (s *PrimitivesSuite) TestMagnification() {
	s.run(`\mag=2000 \end`)
	s.Equal(int64(2000), s.ctx.Magnification())
	s.run(`\mag=0 \end`)
	s.Equal([]interpreter.ErrorKind{interpreter.ErrIllegalMag}, s.kinds())
	s.Equal(int64(2000), s.ctx.Magnification())
	s.run(`\mag=40000 \end`)
	s.Require().Len(s.errors, 2)
	s.Equal("Illegal magnification (40000), must be between 1 and 32768", s.errors[1].UserMessage())
}

func (s *PrimitivesSuite) TestIncompatibleMagnification() {
	err := s.intp.RunString(`\kern 1truept\mag=1000 \mag=3000 \end`, "test")
	s.Require().Error(err)
	e, ok := interpreter.AsError(err)
	s.Require().True(ok)
	s.Equal(interpreter.ErrIncompatibleMag, e.Kind)
}

func (s *PrimitivesSuite) TestFontNotFound() {
	s.run(`\font\x=nofont at 12pt \x a\end`)
	s.Equal([]interpreter.ErrorKind{interpreter.ErrFontNotFound}, s.kinds())
	s.Contains(s.errors[0].Help(), "(font not found: nofont)")
	s.Equal(core.EMISSING, core.Code(errors.Unwrap(s.errors[0])))
	s.Equal([]string{"a"}, s.rec.Letters())
	s.True(font.IsNull(s.ctx.TypesettingContext().Font))
}

func (s *PrimitivesSuite) TestDirections() {
	s.run(`\beginR a\beginL b\endL\endR\end`)
	s.Empty(s.errors)
	s.Equal(0, s.ctx.DirectionDepth())
	s.Equal(bidi.LeftToRight, s.ctx.TypesettingContext().Direction)
	s.run(`\beginL\endR\end`)
	s.Equal([]interpreter.ErrorKind{interpreter.ErrMisplaced}, s.kinds())
}

func (s *PrimitivesSuite) TestTypesettingCommands() {
	s.run(`a\kern 1pt\hskip 2pt\penalty 50\char 66\vskip 3pt\end`)
	s.Equal([]string{"letter a", "kern 1.0pt", "glue 2.0pt", "penalty 50", "letter B", "par",
		"glue 3.0pt", "par"}, s.rec.Events)
}

func (s *PrimitivesSuite) TestEndStopsRun() {
	s.run(`a\end b`)
	s.Equal([]string{"a"}, s.rec.Letters())
}

func (s *PrimitivesSuite) TestInteraction() {
	s.run(`\scrollmode\end`)
	s.Equal(context.ScrollMode, s.ctx.Interaction())
}

func (s *PrimitivesSuite) TestIgnorespaces() {
	s.run(`\def\a{x}\a\ignorespaces   \a\end`)
	s.Equal([]string{"x", "x"}, s.rec.Letters())
	s.NotContains(s.rec.Events, "space")
}

func (s *PrimitivesSuite) TestInputMissingFile() {
	s.run(`\input nonexistent.tex a\end`)
	s.Equal([]interpreter.ErrorKind{interpreter.ErrFileNotFound}, s.kinds())
	s.Equal([]string{"a"}, s.rec.Letters())
}

// --- Declarations -----------------------------------------------------------

func TestDeclarations(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "tytex.primitives")
	defer teardown()
	//
	decls := Declarations()
	require.NotEmpty(t, decls)
	classNames := Classes()
	for _, d := range decls {
		assert.Contains(t, classNames, d.Class, d.Name)
	}
}

func TestConfigurationErrors(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "tytex.primitives")
	defer teardown()
	//
	_, err := Parse([]byte("primitives: [ { name: x } ]"))
	assertConfigError(t, err)
	_, err = Parse([]byte("primitives: {"))
	assertConfigError(t, err)
	//
	intp := interpreter.New(context.New("test", context.Environment{}), interpreter.DefaultConfig())
	err = InstallDeclarations(intp, []Declaration{{Name: "x", Class: "nosuchclass"}})
	assertConfigError(t, err)
	err = InstallDeclarations(intp, []Declaration{{Name: "x", Class: "register",
		Params: map[string]string{"kind": "float"}}})
	assertConfigError(t, err)
	err = InstallDeclarations(intp, []Declaration{{Name: "x", Class: "parameter",
		Params: map[string]string{"kind": "count", "default": "ten"}}})
	assertConfigError(t, err)
}

func assertConfigError(t *testing.T, err error) {
	t.Helper()
	e, ok := interpreter.AsError(err)
	require.True(t, ok, "expected an interpreter error, got %v", err)
	assert.Equal(t, interpreter.ErrConfig, e.Kind)
	assert.True(t, e.Fatal)
}

func TestRomanNumerals(t *testing.T) {
	assert.Equal(t, "mcmxcix", roman(1999))
	assert.Equal(t, "", roman(0))
	assert.Equal(t, "xliv", roman(44))
}
