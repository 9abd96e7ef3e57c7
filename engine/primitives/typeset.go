package primitives

import (
	"strings"

	"github.com/npillmayer/tytex/core/dimen"
	"github.com/npillmayer/tytex/core/font"
	"github.com/npillmayer/tytex/engine/context"
	"github.com/npillmayer/tytex/engine/interpreter"
	"github.com/npillmayer/tytex/engine/token"
	"github.com/npillmayer/tytex/engine/typesetter"
	"golang.org/x/text/unicode/bidi"
)

// --- Grouping ---------------------------------------------------------------

func begingroup(_ interpreter.Prefixes, ctx *context.Context, src interpreter.TokenSource, _ typesetter.Typesetter) error {
	ctx.OpenGroup(context.SemiSimpleGroup, src.Locator())
	return nil
}

func endgroup(_ interpreter.Prefixes, _ *context.Context, src interpreter.TokenSource, _ typesetter.Typesetter) error {
	return src.CloseGroup(context.SemiSimpleGroup)
}

// aftergroup saves the next token for the end of the current group.
func aftergroup(_ interpreter.Prefixes, ctx *context.Context, src interpreter.TokenSource, _ typesetter.Typesetter) error {
	tok, err := src.Next()
	if err != nil {
		return eof(err)
	}
	ctx.AfterGroupToken(tok)
	return nil
}

// --- Typesetting ------------------------------------------------------------

func relax(interpreter.Prefixes, *context.Context, interpreter.TokenSource, typesetter.Typesetter) error {
	return nil
}

// end ends the run after the current paragraph.
func end(_ interpreter.Prefixes, _ *context.Context, src interpreter.TokenSource, ts typesetter.Typesetter) error {
	ts.Par()
	src.Stop()
	return nil
}

func par(_ interpreter.Prefixes, _ *context.Context, _ interpreter.TokenSource, ts typesetter.Typesetter) error {
	ts.Par()
	return nil
}

func kern(_ interpreter.Prefixes, _ *context.Context, src interpreter.TokenSource, ts typesetter.Typesetter) error {
	d, err := src.ScanDimen()
	if err != nil {
		return err
	}
	ts.AddKern(d)
	return nil
}

// newGlueCommand creates \hskip or \vskip. Vertical glue ends a paragraph.
func newGlueCommand(name string, p params) (context.Code, error) {
	v, err := p.oneOf("list", "horizontal", "vertical")
	if err != nil {
		return nil, err
	}
	vertical := v == "vertical"
	return &primitive{name: name, exec: func(_ interpreter.Prefixes, _ *context.Context,
		src interpreter.TokenSource, ts typesetter.Typesetter) error {
		g, err := src.ScanGlue()
		if err != nil {
			return err
		}
		if vertical && ts.Mode() == typesetter.HorizontalMode {
			ts.Par()
		}
		ts.AddGlue(g)
		return nil
	}}, nil
}

func penalty(_ interpreter.Prefixes, _ *context.Context, src interpreter.TokenSource, ts typesetter.Typesetter) error {
	n, err := src.ScanNumber()
	if err != nil {
		return err
	}
	ts.AddPenalty(n)
	return nil
}

// char typesets the character with a given code.
func char(_ interpreter.Prefixes, ctx *context.Context, src interpreter.TokenSource, ts typesetter.Typesetter) error {
	n, err := src.ScanNumber()
	if err != nil {
		return err
	}
	if n < 0 || n > 0x10FFFF {
		return interpreter.NewError(interpreter.ErrBadCharCode, src.Locator(), n, 0x10FFFF)
	}
	ts.Add(ctx.TypesettingContext(), rune(n))
	return nil
}

// --- Fonts ------------------------------------------------------------------

// fontSelector is the meaning of a control sequence defined with \font.
// Executing it makes its font the current font.
type fontSelector struct {
	name     string
	fontname string
}

var _ interpreter.Assignment = &fontSelector{}

func (fs *fontSelector) Name() string { return fs.name }

func (fs *fontSelector) Meaning() string {
	return "select font " + fs.fontname
}

func (fs *fontSelector) AcceptedPrefixes() interpreter.Prefixes { return interpreter.Global }

func (fs *fontSelector) Execute(p interpreter.Prefixes, ctx *context.Context, _ interpreter.TokenSource,
	_ typesetter.Typesetter) error {
	tc := ctx.TypesettingContext().WithFont(ctx.Font(fs.name))
	ctx.SetTypesettingContext(tc, isGlobal(p))
	return nil
}

// defaultFontSize is the size of a font loaded without "at" or "scaled".
const defaultFontSize = 10 * dimen.PT

func newFontDef(name string, _ params) (context.Code, error) {
	return &assigner{
		primitive: primitive{name: name, exec: fontDef},
		accepts:   interpreter.Global,
	}, nil
}

// fontDef is \font\cs=name, optionally followed by "at <dimen>" or
// "scaled <number>".
func fontDef(p interpreter.Prefixes, ctx *context.Context, src interpreter.TokenSource, _ typesetter.Typesetter) error {
	cs, err := src.ScanControlSequence()
	if err != nil {
		return err
	}
	if err := src.ScanOptionalEquals(); err != nil {
		return err
	}
	fontname, err := src.ScanName()
	if err != nil {
		return err
	}
	size := defaultFontSize
	if at, err := src.ScanKeyword("at"); err != nil {
		return err
	} else if at {
		if size, err = src.ScanDimen(); err != nil {
			return err
		}
	} else if scaled, err := src.ScanKeyword("scaled"); err != nil {
		return err
	} else if scaled {
		n, err := src.ScanNumber()
		if err != nil {
			return err
		}
		size = size * dimen.Dimen(n) / 1000
	}
	global := isGlobal(p)
	ctx.SetCode(cs, &fontSelector{name: cs.Name, fontname: fontname}, global)
	f, err := ctx.Fonts().Font(fontname, size)
	if f == nil {
		f = font.NullFont
	}
	ctx.SetFont(cs.Name, f, global)
	if err != nil {
		tracer().Errorf("font %s: %v", fontname, err)
		return interpreter.NewError(interpreter.ErrFontNotFound, src.Locator(), cs.String(), fontname).Wrap(err)
	}
	return nil
}

func newNullFont(name string, _ params) (context.Code, error) {
	return &assigner{
		primitive: primitive{name: name, exec: func(p interpreter.Prefixes, ctx *context.Context,
			_ interpreter.TokenSource, _ typesetter.Typesetter) error {
			ctx.SetTypesettingContext(ctx.TypesettingContext().WithFont(font.NullFont), isGlobal(p))
			return nil
		}},
		accepts: interpreter.Global,
	}, nil
}

// --- Writing direction ------------------------------------------------------

// newDirection creates \beginL, \endL, \beginR or \endR. Runs of text in a
// direction nest; an end has to match the innermost begin.
func newDirection(name string, p params) (context.Code, error) {
	dir, err := p.oneOf("dir", "L", "R")
	if err != nil {
		return nil, err
	}
	op, err := p.oneOf("op", "begin", "end")
	if err != nil {
		return nil, err
	}
	d := bidi.LeftToRight
	if dir == "R" {
		d = bidi.RightToLeft
	}
	if op == "begin" {
		return &primitive{name: name, exec: func(_ interpreter.Prefixes, ctx *context.Context,
			_ interpreter.TokenSource, _ typesetter.Typesetter) error {
			ctx.PushDirection(d)
			ctx.SetTypesettingContext(ctx.TypesettingContext().WithDirection(d), false)
			return nil
		}}, nil
	}
	return &primitive{name: name, exec: func(_ interpreter.Prefixes, ctx *context.Context,
		src interpreter.TokenSource, _ typesetter.Typesetter) error {
		if ctx.DirectionDepth() == 0 || ctx.Direction() != d {
			return interpreter.NewError(interpreter.ErrMisplaced, src.Locator(), `\`+name)
		}
		ctx.PopDirection()
		outer := bidi.LeftToRight
		if ctx.DirectionDepth() > 0 {
			outer = ctx.Direction()
		}
		ctx.SetTypesettingContext(ctx.TypesettingContext().WithDirection(outer), false)
		return nil
	}}, nil
}

// --- Interaction and miscellaneous ------------------------------------------

func newInteraction(name string, p params) (context.Code, error) {
	v, err := p.oneOf("mode", "batch", "nonstop", "scroll", "errorstop")
	if err != nil {
		return nil, err
	}
	mode, err := context.ParseInteraction(v)
	if err != nil {
		return nil, err
	}
	return &primitive{name: name, exec: func(_ interpreter.Prefixes, ctx *context.Context,
		_ interpreter.TokenSource, _ typesetter.Typesetter) error {
		ctx.SetInteraction(mode, true)
		return nil
	}}, nil
}

// message writes an expanded balanced text to the terminal and the
// transcript.
func message(_ interpreter.Prefixes, _ *context.Context, src interpreter.TokenSource, _ typesetter.Typesetter) error {
	text, err := src.ScanBalancedText(true)
	if err != nil {
		return err
	}
	src.Message(text.String())
	return nil
}

// namespace selects the namespace for control sequences read from now on.
// An empty name selects the default namespace.
func namespace(p interpreter.Prefixes, ctx *context.Context, src interpreter.TokenSource, _ typesetter.Typesetter) error {
	text, err := src.ScanBalancedText(true)
	if err != nil {
		return err
	}
	ns := strings.TrimSpace(text.String())
	tracer().Debugf("namespace is now %q", ns)
	ctx.SetNamespace(ns, isGlobal(p))
	return nil
}

func ignorespaces(_ interpreter.Prefixes, _ *context.Context, src interpreter.TokenSource, _ typesetter.Typesetter) error {
	tok, err := src.NextExpanded()
	for err == nil && tok.Cat == token.Space {
		tok, err = src.NextExpanded()
	}
	if err != nil {
		return eof(err)
	}
	src.PushBack(tok)
	return nil
}

// input reads a file. The file is read before the rest of the current
// input.
func input(_ interpreter.Prefixes, _ *context.Context, src interpreter.TokenSource, _ typesetter.Typesetter) error {
	name, err := src.ScanName()
	if err != nil {
		return err
	}
	if name == "" {
		return interpreter.NewError(interpreter.ErrMissingToken, src.Locator(), "file name")
	}
	return src.PushFile(name)
}
