package primitives

import (
	"github.com/npillmayer/tytex/core/dimen"
	"github.com/npillmayer/tytex/engine/context"
	"github.com/npillmayer/tytex/engine/interpreter"
	"github.com/npillmayer/tytex/engine/token"
	"github.com/npillmayer/tytex/engine/typesetter"
)

type evalFunc func(ctx *context.Context, src interpreter.TokenSource, ts typesetter.Typesetter) (bool, error)

// ifCode is a boolean conditional implemented by a function.
type ifCode struct {
	name string
	eval evalFunc
}

var _ interpreter.IfCode = &ifCode{}

func (c *ifCode) Name() string { return c.name }

func (c *ifCode) Evaluate(ctx *context.Context, src interpreter.TokenSource, ts typesetter.Typesetter) (bool, error) {
	return c.eval(ctx, src, ts)
}

func conditional(eval evalFunc) constructor {
	return func(name string, _ params) (context.Code, error) {
		return &ifCode{name: name, eval: eval}, nil
	}
}

var (
	newIfNum = conditional(ifnum)
	newIfDim = conditional(ifdim)
	newIfOdd = conditional(ifodd)
	newIfx   = conditional(ifx)
)

func newIfConst(name string, p params) (context.Code, error) {
	v, err := p.flag("value")
	if err != nil {
		return nil, err
	}
	return &ifCode{name: name, eval: func(*context.Context, interpreter.TokenSource, typesetter.Typesetter) (bool, error) {
		return v, nil
	}}, nil
}

// scanRelation scans one of <, = and >. A missing relation is reported
// and = is assumed.
func scanRelation(src interpreter.TokenSource) (rune, error) {
	tok, err := src.ScanNonBlank()
	if err == nil && tok.Cat == token.Other {
		switch r := tok.Char(); r {
		case '<', '=', '>':
			return r, nil
		}
	}
	if err = eof(err); err != nil {
		return '=', err
	}
	if tok.Name != "" {
		src.PushBack(tok)
	}
	return '=', src.Report(interpreter.NewError(interpreter.ErrMissingToken, src.Locator(), "="))
}

func compare[T int64 | dimen.Dimen](a T, rel rune, b T) bool {
	switch rel {
	case '<':
		return a < b
	case '>':
		return a > b
	}
	return a == b
}

func ifnum(_ *context.Context, src interpreter.TokenSource, _ typesetter.Typesetter) (bool, error) {
	a, err := src.ScanNumber()
	if err != nil {
		return false, err
	}
	rel, err := scanRelation(src)
	if err != nil {
		return false, err
	}
	b, err := src.ScanNumber()
	return compare(a, rel, b), err
}

func ifdim(_ *context.Context, src interpreter.TokenSource, _ typesetter.Typesetter) (bool, error) {
	a, err := src.ScanDimen()
	if err != nil {
		return false, err
	}
	rel, err := scanRelation(src)
	if err != nil {
		return false, err
	}
	b, err := src.ScanDimen()
	return compare(a, rel, b), err
}

func ifodd(_ *context.Context, src interpreter.TokenSource, _ typesetter.Typesetter) (bool, error) {
	n, err := src.ScanNumber()
	return n%2 != 0, err
}

// ifx compares the meanings of the next two tokens without expanding them.
func ifx(ctx *context.Context, src interpreter.TokenSource, _ typesetter.Typesetter) (bool, error) {
	a, err := src.Next()
	if err != nil {
		return false, eof(err)
	}
	b, err := src.Next()
	if err != nil {
		return false, eof(err)
	}
	return sameMeaning(resolve(ctx, a), resolve(ctx, b)), nil
}

// resolve returns the meaning of a token. Characters mean themselves, an
// undefined control sequence has meaning nil.
func resolve(ctx *context.Context, tok token.Token) context.Code {
	if !tok.IsCode() {
		return &charMeaning{tok: tok}
	}
	if code, ok := ctx.Code(tok); ok {
		if _, ok := code.(*undefined); ok {
			return nil
		}
		return code
	}
	return nil
}

func sameMeaning(a, b context.Code) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	switch x := a.(type) {
	case *charMeaning:
		y, ok := b.(*charMeaning)
		return ok && x.tok.Cat == y.tok.Cat && x.tok.Name == y.tok.Name
	case *macro:
		y, ok := b.(*macro)
		return ok && x.equals(y)
	}
	return a == b
}

// --- \if and \ifcat ---------------------------------------------------------

// charCat is a character and its category, as compared by \if and \ifcat.
// Control sequences which do not denote a character are (256, 16).
type charCat struct {
	char rune
	cat  token.Catcode
}

var noChar = charCat{char: 256, cat: 16}

func newIfChar(name string, p params) (context.Code, error) {
	v, err := p.oneOf("compare", "char", "cat")
	if err != nil {
		return nil, err
	}
	byCat := v == "cat"
	return &ifCode{name: name, eval: func(ctx *context.Context, src interpreter.TokenSource,
		_ typesetter.Typesetter) (bool, error) {
		a, err := nextCharCat(ctx, src)
		if err != nil {
			return false, err
		}
		b, err := nextCharCat(ctx, src)
		if err != nil {
			return false, err
		}
		if byCat {
			return a.cat == b.cat, nil
		}
		return a.char == b.char, nil
	}}, nil
}

func nextCharCat(ctx *context.Context, src interpreter.TokenSource) (charCat, error) {
	tok, err := src.NextExpanded()
	if err != nil {
		return noChar, eof(err)
	}
	if tok.IsCode() {
		if c, ok := resolve(ctx, tok).(*charMeaning); ok {
			tok = c.tok
		} else {
			return noChar, nil
		}
	}
	return charCat{char: tok.Char(), cat: tok.Cat}, nil
}

// --- Modes ------------------------------------------------------------------

func newIfMode(name string, p params) (context.Code, error) {
	v, err := p.oneOf("mode", "vertical", "horizontal", "math", "inner")
	if err != nil {
		return nil, err
	}
	test := map[string]func(typesetter.Mode) bool{
		"vertical":   typesetter.Mode.IsVertical,
		"horizontal": typesetter.Mode.IsHorizontal,
		"math":       typesetter.Mode.IsMath,
		"inner":      typesetter.Mode.IsInner,
	}[v]
	return &ifCode{name: name, eval: func(_ *context.Context, _ interpreter.TokenSource,
		ts typesetter.Typesetter) (bool, error) {
		return test(ts.Mode()), nil
	}}, nil
}

// --- \ifcase, \unless and terminators ---------------------------------------

type switchCode struct {
	name string
}

var _ interpreter.SwitchCode = &switchCode{}

func newIfCase(name string, _ params) (context.Code, error) {
	return &switchCode{name: name}, nil
}

func (s *switchCode) Name() string { return s.name }

func (s *switchCode) Case(_ *context.Context, src interpreter.TokenSource) (int64, error) {
	return src.ScanNumber()
}

func newUnless(name string, _ params) (context.Code, error) {
	return interpreter.NewUnless(name), nil
}

func newTerminator(name string, p params) (context.Code, error) {
	v, err := p.oneOf("tag", "or", "else", "fi")
	if err != nil {
		return nil, err
	}
	tag := map[string]interpreter.Tag{
		"or":   interpreter.OrTag,
		"else": interpreter.ElseTag,
		"fi":   interpreter.FiTag,
	}[v]
	return interpreter.NewTerminator(name, tag), nil
}
