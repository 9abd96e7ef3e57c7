package primitives

import (
	"errors"
	"io"
	"strconv"
	"strings"

	"github.com/npillmayer/tytex/engine/context"
	"github.com/npillmayer/tytex/engine/interpreter"
	"github.com/npillmayer/tytex/engine/token"
	"github.com/npillmayer/tytex/engine/typesetter"
)

// --- Prefixes ---------------------------------------------------------------

type prefix struct {
	name   string
	prefix interpreter.Prefixes
}

var _ interpreter.Prefix = &prefix{}

func (p *prefix) Name() string                 { return p.name }
func (p *prefix) Prefix() interpreter.Prefixes { return p.prefix }

func newPrefix(name string, p params) (context.Code, error) {
	v, err := p.oneOf("prefix", "global", "long", "outer", "protected")
	if err != nil {
		return nil, err
	}
	return &prefix{name: name, prefix: map[string]interpreter.Prefixes{
		"global":    interpreter.Global,
		"long":      interpreter.Long,
		"outer":     interpreter.Outer,
		"protected": interpreter.Protected,
	}[v]}, nil
}

// --- Macros -----------------------------------------------------------------

// macro is a control sequence defined with \def.
type macro struct {
	name      string
	delims    []token.List // delims[0] precedes #1, delims[i] follows #i
	body      []bodyItem
	long      bool
	outer     bool
	protected bool
}

// bodyItem is a token of the replacement text or a reference to an argument.
type bodyItem struct {
	tok   token.Token
	param int // > 0 for #1…#9
}

var _ interpreter.Expandable = &macro{}

func (m *macro) Name() string { return m.name }

func (m *macro) arity() int {
	return len(m.delims) - 1
}

// Meaning shows a macro as \meaning does, e.g. "macro:#1.->[#1]".
func (m *macro) Meaning() string {
	var b strings.Builder
	if m.protected {
		b.WriteString(`\protected`)
	}
	if m.long {
		b.WriteString(`\long`)
	}
	if m.outer {
		b.WriteString(`\outer`)
	}
	b.WriteString("macro:")
	for i, delim := range m.delims {
		if i > 0 {
			b.WriteString("#" + strconv.Itoa(i))
		}
		b.WriteString(delim.String())
	}
	b.WriteString("->")
	var body token.List
	for _, item := range m.body {
		if item.param > 0 {
			b.WriteString(body.String())
			body = body[:0]
			b.WriteString("#" + strconv.Itoa(item.param))
			continue
		}
		if item.tok.Cat == token.MacroParam {
			body = append(body, item.tok)
		}
		body = append(body, item.tok)
	}
	b.WriteString(body.String())
	return b.String()
}

// equals compares two macros as \ifx does.
func (m *macro) equals(other *macro) bool {
	if m.long != other.long || m.outer != other.outer || m.protected != other.protected {
		return false
	}
	if len(m.delims) != len(other.delims) || len(m.body) != len(other.body) {
		return false
	}
	for i := range m.delims {
		if !m.delims[i].Equals(other.delims[i]) {
			return false
		}
	}
	for i := range m.body {
		if m.body[i] != other.body[i] {
			return false
		}
	}
	return true
}

// Expand reads the arguments of the macro and returns the replacement text
// with the arguments substituted.
func (m *macro) Expand(ctx *context.Context, src interpreter.TokenSource) (token.List, error) {
	if ok, err := m.matchDelimiter(src, m.delims[0]); !ok || err != nil {
		return nil, err
	}
	args := make([]token.List, m.arity())
	for i := range args {
		var ok bool
		var err error
		if len(m.delims[i+1]) == 0 {
			args[i], ok, err = m.undelimitedArgument(src)
		} else {
			args[i], ok, err = m.delimitedArgument(src, m.delims[i+1])
		}
		if !ok || err != nil {
			return nil, err
		}
	}
	var out token.List
	for _, item := range m.body {
		if item.param > 0 {
			out = append(out, args[item.param-1]...)
		} else {
			out = append(out, item.tok)
		}
	}
	return out, nil
}

func (m *macro) cs() string {
	return `\` + m.name
}

// matchDelimiter reads the tokens of delim. If the input does not match,
// the error is returned and ok is false.
func (m *macro) matchDelimiter(src interpreter.TokenSource, delim token.List) (bool, error) {
	for _, expected := range delim {
		tok, err := src.Next()
		if err != nil {
			return false, m.runaway(src, err)
		}
		if tok != expected {
			src.PushBack(tok)
			return false, interpreter.NewError(interpreter.ErrUseDoesntMatch, src.Locator(), m.cs())
		}
	}
	return true, nil
}

func (m *macro) runaway(src interpreter.TokenSource, err error) error {
	if errors.Is(err, io.EOF) {
		return interpreter.NewError(interpreter.ErrRunawayArgument, src.Locator(), m.cs())
	}
	return err
}

// isPar checks for a \par token in the argument of a macro which is not
// \long.
func (m *macro) isPar(tok token.Token) bool {
	return !m.long && tok.IsCS() && tok.Name == "par"
}

// undelimitedArgument reads a single token or a group, skipping spaces.
// The braces of a group are removed.
func (m *macro) undelimitedArgument(src interpreter.TokenSource) (token.List, bool, error) {
	tok, err := src.Next()
	for err == nil && tok.Cat == token.Space {
		tok, err = src.Next()
	}
	if err != nil {
		return nil, false, m.runaway(src, err)
	}
	if m.isPar(tok) {
		src.PushBack(tok)
		return nil, false, interpreter.NewError(interpreter.ErrRunawayArgument, src.Locator(), m.cs())
	}
	switch tok.Cat {
	case token.RightBrace:
		src.PushBack(tok)
		return nil, false, interpreter.NewError(interpreter.ErrUseDoesntMatch, src.Locator(), m.cs())
	case token.LeftBrace:
		return m.group(src)
	}
	return token.List{tok}, true, nil
}

// group reads the rest of a group, after its left brace.
func (m *macro) group(src interpreter.TokenSource) (token.List, bool, error) {
	var l token.List
	level := 0
	for {
		tok, err := src.Next()
		if err != nil {
			return nil, false, m.runaway(src, err)
		}
		if m.isPar(tok) {
			src.PushBack(tok)
			return nil, false, interpreter.NewError(interpreter.ErrRunawayArgument, src.Locator(), m.cs())
		}
		switch tok.Cat {
		case token.LeftBrace:
			level++
		case token.RightBrace:
			if level == 0 {
				return l, true, nil
			}
			level--
		}
		l = append(l, tok)
	}
}

// delimitedArgument reads tokens up to delim, which must occur outside of
// groups. If the argument is a single group, its braces are removed.
func (m *macro) delimitedArgument(src interpreter.TokenSource, delim token.List) (token.List, bool, error) {
	var l token.List
	level := 0
	for {
		tok, err := src.Next()
		if err != nil {
			return nil, false, m.runaway(src, err)
		}
		if m.isPar(tok) {
			src.PushBack(tok)
			return nil, false, interpreter.NewError(interpreter.ErrRunawayArgument, src.Locator(), m.cs())
		}
		switch tok.Cat {
		case token.LeftBrace:
			level++
		case token.RightBrace:
			if level == 0 {
				src.PushBack(tok)
				return nil, false, interpreter.NewError(interpreter.ErrUseDoesntMatch, src.Locator(), m.cs())
			}
			level--
		}
		l = append(l, tok)
		if level == 0 && len(l) >= len(delim) && l[len(l)-len(delim):].Equals(delim) {
			l = l[:len(l)-len(delim)]
			if enclosed(l) {
				l = l[1 : len(l)-1]
			}
			return l, true, nil
		}
	}
}

// enclosed is true if a list is a single group.
func enclosed(l token.List) bool {
	if len(l) < 2 || l[0].Cat != token.LeftBrace || l[len(l)-1].Cat != token.RightBrace {
		return false
	}
	level := 0
	for i, tok := range l {
		switch tok.Cat {
		case token.LeftBrace:
			level++
		case token.RightBrace:
			level--
			if level == 0 && i < len(l)-1 {
				return false
			}
		}
	}
	return true
}

// --- \def -------------------------------------------------------------------

func newDef(name string, p params) (context.Code, error) {
	global, err := p.flag("global")
	if err != nil {
		return nil, err
	}
	expand, err := p.flag("expand")
	if err != nil {
		return nil, err
	}
	return &assigner{
		primitive: primitive{name: name, exec: func(pfx interpreter.Prefixes, ctx *context.Context,
			src interpreter.TokenSource, _ typesetter.Typesetter) error {
			if global {
				pfx |= interpreter.Global
			}
			return define(pfx, ctx, src, expand)
		}},
		accepts: interpreter.Global | interpreter.Long | interpreter.Outer | interpreter.Protected,
	}, nil
}

// define reads the parameter text and the replacement text of a macro
// and binds the macro to a control sequence.
func define(pfx interpreter.Prefixes, ctx *context.Context, src interpreter.TokenSource, expand bool) error {
	cs, err := src.ScanControlSequence()
	if err != nil {
		return err
	}
	m := &macro{
		name:      cs.Name,
		delims:    []token.List{nil},
		long:      pfx&interpreter.Long != 0,
		outer:     pfx&interpreter.Outer != 0,
		protected: pfx&interpreter.Protected != 0,
	}
	for {
		tok, err := src.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return interpreter.NewError(interpreter.ErrMissingToken, src.Locator(), "{")
			}
			return err
		}
		if tok.Cat == token.LeftBrace {
			src.PushBack(tok)
			break
		}
		if tok.Cat == token.RightBrace {
			src.PushBack(tok)
			return interpreter.NewError(interpreter.ErrMissingToken, src.Locator(), "{")
		}
		if tok.Cat == token.MacroParam {
			next, err := src.Next()
			if err != nil && !errors.Is(err, io.EOF) {
				return err
			}
			if err == nil && paramNumber(next) == m.arity()+1 {
				m.delims = append(m.delims, nil)
				continue
			}
			if err == nil {
				src.PushBack(next)
			}
			if err := src.Report(interpreter.NewError(interpreter.ErrMisplaced, src.Locator(),
				"macro parameter character #")); err != nil {
				return err
			}
			continue
		}
		last := len(m.delims) - 1
		m.delims[last] = append(m.delims[last], tok)
	}
	text, err := src.ScanBalancedText(expand)
	if err != nil {
		return err
	}
	if m.body, err = parseBody(src, text, m.arity()); err != nil {
		return err
	}
	tracer().Debugf("define %s as %s", cs, m.Meaning())
	ctx.SetCode(cs, m, isGlobal(pfx))
	return nil
}

// paramNumber returns the digit of a parameter reference, or 0.
func paramNumber(tok token.Token) int {
	if tok.Cat != token.Other {
		return 0
	}
	if r := tok.Char(); r >= '1' && r <= '9' {
		return int(r - '0')
	}
	return 0
}

// parseBody resolves parameter references in a replacement text. ##
// stands for a single macro parameter character.
func parseBody(src interpreter.TokenSource, text token.List, arity int) ([]bodyItem, error) {
	body := make([]bodyItem, 0, len(text))
	for i := 0; i < len(text); i++ {
		tok := text[i]
		if tok.Cat != token.MacroParam || i+1 == len(text) {
			body = append(body, bodyItem{tok: tok})
			continue
		}
		next := text[i+1]
		if next.Cat == token.MacroParam {
			body = append(body, bodyItem{tok: next})
			i++
			continue
		}
		if n := paramNumber(next); n > 0 && n <= arity {
			body = append(body, bodyItem{param: n})
			i++
			continue
		}
		if err := src.Report(interpreter.NewError(interpreter.ErrMisplaced, src.Locator(),
			"macro parameter character #")); err != nil {
			return nil, err
		}
	}
	return body, nil
}

// --- \let -------------------------------------------------------------------

// charMeaning is the meaning of a control sequence \let to a character.
type charMeaning struct {
	name string
	tok  token.Token
}

var _ interpreter.Code = &charMeaning{}

func (c *charMeaning) Name() string { return c.name }

func (c *charMeaning) Meaning() string {
	return describeChar(c.tok)
}

// Execute acts as if the character had been read.
func (c *charMeaning) Execute(_ interpreter.Prefixes, _ *context.Context, src interpreter.TokenSource,
	_ typesetter.Typesetter) error {
	src.PushBack(c.tok)
	return nil
}

// undefined is the meaning of a control sequence \let to an undefined one.
type undefined struct {
	name string
}

var _ interpreter.Code = &undefined{}

func (u *undefined) Name() string    { return u.name }
func (u *undefined) Meaning() string { return "undefined" }

func (u *undefined) Execute(_ interpreter.Prefixes, _ *context.Context, src interpreter.TokenSource,
	_ typesetter.Typesetter) error {
	return interpreter.NewError(interpreter.ErrUndefinedCS, src.Locator(), `\`+u.name)
}

func newLet(name string, _ params) (context.Code, error) {
	return &assigner{
		primitive: primitive{name: name, exec: let},
		accepts:   interpreter.Global,
	}, nil
}

// let assigns the meaning of a token to a control sequence:
// \let\cs=<token>, with an optional equals sign and one optional space.
func let(pfx interpreter.Prefixes, ctx *context.Context, src interpreter.TokenSource, _ typesetter.Typesetter) error {
	cs, err := src.ScanControlSequence()
	if err != nil {
		return err
	}
	tok, err := src.Next()
	for err == nil && tok.Cat == token.Space {
		tok, err = src.Next()
	}
	if err == nil && tok.Cat == token.Other && tok.Char() == '=' {
		if tok, err = src.Next(); err == nil && tok.Cat == token.Space {
			tok, err = src.Next()
		}
	}
	if err != nil {
		if errors.Is(err, io.EOF) {
			return interpreter.NewError(interpreter.ErrMissingToken, src.Locator(), "token")
		}
		return err
	}
	ctx.SetCode(cs, meaningOf(ctx, tok, cs.Name), isGlobal(pfx))
	return nil
}

// meaningOf returns the code a control sequence \let to tok gets.
func meaningOf(ctx *context.Context, tok token.Token, name string) context.Code {
	if !tok.IsCode() {
		return &charMeaning{name: name, tok: tok}
	}
	if code, ok := ctx.Code(tok); ok {
		return code
	}
	return &undefined{name: name}
}

// describeChar describes a character token as \meaning does.
func describeChar(tok token.Token) string {
	switch tok.Cat {
	case token.LeftBrace:
		return "begin-group character " + tok.Name
	case token.RightBrace:
		return "end-group character " + tok.Name
	case token.MathShift:
		return "math shift character " + tok.Name
	case token.TabMark:
		return "alignment tab character " + tok.Name
	case token.MacroParam:
		return "macro parameter character " + tok.Name
	case token.SupMark:
		return "superscript character " + tok.Name
	case token.SubMark:
		return "subscript character " + tok.Name
	case token.Space:
		return "blank space " + tok.Name
	case token.Letter:
		return "the letter " + tok.Name
	}
	return "the character " + tok.Name
}
