package primitives

import (
	"strconv"
	"strings"

	"github.com/npillmayer/tytex/engine/context"
	"github.com/npillmayer/tytex/engine/interpreter"
	"github.com/npillmayer/tytex/engine/token"
	"github.com/npillmayer/tytex/engine/typesetter"
)

// expandafter reads two tokens and expands the second one before the first
// one is read again.
func expandafter(ctx *context.Context, src interpreter.TokenSource) (token.List, error) {
	first, err := src.Next()
	if err != nil {
		return nil, eof(err)
	}
	second, err := src.Next()
	if err != nil {
		src.PushBack(first)
		return nil, eof(err)
	}
	if err := src.ExpandOnce(second); err != nil {
		return nil, err
	}
	src.PushBack(first)
	return nil, nil
}

// the converts an internal quantity to tokens. Token lists are inserted as
// they are, all other values as characters.
func the(ctx *context.Context, src interpreter.TokenSource) (token.List, error) {
	tok, err := src.NextExpanded()
	if err != nil {
		return nil, eof(err)
	}
	var code context.Code
	if tok.IsCode() {
		code, _ = ctx.Code(tok)
	}
	switch c := code.(type) {
	case interpreter.TokensConvertible:
		return c.TokensValue(ctx, src)
	case interpreter.GlueConvertible:
		g, err := c.GlueValue(ctx, src)
		return otherTokens(ctx, g.String()), err
	case interpreter.DimenConvertible:
		d, err := c.DimenValue(ctx, src)
		return otherTokens(ctx, d.String()), err
	case interpreter.CountConvertible:
		n, err := c.CountValue(ctx, src)
		return otherTokens(ctx, strconv.FormatInt(n, 10)), err
	}
	return otherTokens(ctx, "0"), interpreter.NewError(interpreter.ErrCantUseAfterThe, src.Locator(), tok.String())
}

func number(ctx *context.Context, src interpreter.TokenSource) (token.List, error) {
	n, err := src.ScanNumber()
	if err != nil {
		return nil, err
	}
	return otherTokens(ctx, strconv.FormatInt(n, 10)), nil
}

func romannumeral(ctx *context.Context, src interpreter.TokenSource) (token.List, error) {
	n, err := src.ScanNumber()
	if err != nil {
		return nil, err
	}
	return otherTokens(ctx, roman(n)), nil
}

var romanDigits = []struct {
	value  int64
	digits string
}{
	{1000, "m"}, {900, "cm"}, {500, "d"}, {400, "cd"}, {100, "c"}, {90, "xc"},
	{50, "l"}, {40, "xl"}, {10, "x"}, {9, "ix"}, {5, "v"}, {4, "iv"}, {1, "i"},
}

// roman formats a positive number as lowercase roman numeral. Numbers
// below 1 result in an empty string.
func roman(n int64) string {
	var b strings.Builder
	for _, d := range romanDigits {
		for n >= d.value {
			b.WriteString(d.digits)
			n -= d.value
		}
	}
	return b.String()
}

// stringify is \string. Control sequences are written with the current
// escape character.
func stringify(ctx *context.Context, src interpreter.TokenSource) (token.List, error) {
	tok, err := src.Next()
	if err != nil {
		return nil, eof(err)
	}
	if !tok.IsCS() {
		if tok.Cat == token.Space {
			return token.List{ctx.Tokens().Space()}, nil
		}
		return token.List{ctx.Tokens().Other(tok.Char())}, nil
	}
	return otherTokens(ctx, escaped(ctx, tok.Name)), nil
}

// escaped prefixes a name with the escape character. An \escapechar
// outside the range of characters omits it.
func escaped(ctx *context.Context, name string) string {
	esc := ctx.Count("escapechar")
	if esc < 0 || esc > 0x10FFFF {
		return name
	}
	return string(rune(esc)) + name
}

func meaning(ctx *context.Context, src interpreter.TokenSource) (token.List, error) {
	tok, err := src.Next()
	if err != nil {
		return nil, eof(err)
	}
	if !tok.IsCode() {
		return otherTokens(ctx, describeChar(tok)), nil
	}
	code, _ := ctx.Code(tok)
	m := interpreter.Meaning(code)
	if strings.HasPrefix(m, `\`) {
		m = escaped(ctx, m[1:])
	}
	return otherTokens(ctx, m), nil
}

// --- \csname ----------------------------------------------------------------

// endcsname ends the name started by \csname. On its own it is misplaced.
type endcsname struct {
	name string
}

var _ interpreter.Code = &endcsname{}

func newEndcsname(name string, _ params) (context.Code, error) {
	return &endcsname{name: name}, nil
}

func (e *endcsname) Name() string { return e.name }

func (e *endcsname) Execute(_ interpreter.Prefixes, _ *context.Context, src interpreter.TokenSource,
	_ typesetter.Typesetter) error {
	return interpreter.NewError(interpreter.ErrMisplaced, src.Locator(), `\`+e.name)
}

// csname builds a control sequence from the characters up to \endcsname.
// An undefined control sequence is made equal to \relax.
func csname(ctx *context.Context, src interpreter.TokenSource) (token.List, error) {
	var name strings.Builder
	var missing *interpreter.Error
	for {
		tok, err := src.NextExpanded()
		if err != nil {
			if err = eof(err); err != nil {
				return nil, err
			}
			missing = interpreter.NewError(interpreter.ErrMissingEndcsname, src.Locator())
			break
		}
		if tok.IsCode() {
			if code, ok := ctx.Code(tok); ok {
				if _, ok := code.(*endcsname); ok {
					break
				}
			}
			src.PushBack(tok)
			missing = interpreter.NewError(interpreter.ErrMissingEndcsname, src.Locator())
			break
		}
		name.WriteString(tok.Name)
	}
	cs := ctx.Tokens().CS(name.String(), ctx.Namespace())
	if _, ok := ctx.Code(cs); !ok {
		ctx.SetCode(cs, &primitive{name: "relax", exec: relax}, false)
	}
	if missing != nil {
		return token.List{cs}, missing
	}
	return token.List{cs}, nil
}
