package primitives

import (
	"github.com/npillmayer/tytex/engine/context"
	"github.com/npillmayer/tytex/engine/interpreter"
	"github.com/npillmayer/tytex/engine/token"
	"github.com/npillmayer/tytex/engine/typesetter"
)

// charcode is one of the character code tables, like \catcode or \sfcode.
// \catcode`\a=11 assigns, \the\catcode`\a reads an entry.
type charcode struct {
	name     string
	catcodes bool
	table    context.CodeTable
	min, max int64
}

var _ interpreter.CountConvertible = &charcode{}
var _ interpreter.Assignment = &charcode{}

func newCharcode(name string, p params) (context.Code, error) {
	v, err := p.oneOf("table", "cat", "lc", "uc", "sf", "math", "del")
	if err != nil {
		return nil, err
	}
	cc := &charcode{name: name}
	switch v {
	case "cat":
		cc.catcodes, cc.max = true, 15
	case "lc":
		cc.table, cc.max = context.LcCode, 0x10FFFF
	case "uc":
		cc.table, cc.max = context.UcCode, 0x10FFFF
	case "sf":
		cc.table, cc.max = context.SfCode, 32767
	case "math":
		cc.table, cc.max = context.MathCode, 0x8000
	case "del":
		cc.table, cc.min, cc.max = context.DelCode, -1, 0xFFFFFF
	}
	return cc, nil
}

func (cc *charcode) Name() string { return cc.name }

func (cc *charcode) AcceptedPrefixes() interpreter.Prefixes { return interpreter.Global }

func (cc *charcode) scanChar(src interpreter.TokenSource) (rune, error) {
	n, err := src.ScanNumber()
	if err != nil {
		return 0, err
	}
	if n < 0 || n > 0x10FFFF {
		if err := src.Report(interpreter.NewError(interpreter.ErrBadCharCode, src.Locator(), n, 0x10FFFF)); err != nil {
			return 0, err
		}
		n = 0
	}
	return rune(n), nil
}

func (cc *charcode) CountValue(ctx *context.Context, src interpreter.TokenSource) (int64, error) {
	r, err := cc.scanChar(src)
	if err != nil {
		return 0, err
	}
	if cc.catcodes {
		return int64(ctx.Catcode(r)), nil
	}
	return ctx.Charcode(cc.table, r), nil
}

func (cc *charcode) Execute(p interpreter.Prefixes, ctx *context.Context, src interpreter.TokenSource,
	_ typesetter.Typesetter) error {
	r, err := cc.scanChar(src)
	if err != nil {
		return err
	}
	if err := src.ScanOptionalEquals(); err != nil {
		return err
	}
	v, err := src.ScanNumber()
	if err != nil {
		return err
	}
	if v < cc.min || v > cc.max {
		return interpreter.NewError(interpreter.ErrBadCharCode, src.Locator(), v, cc.max)
	}
	if cc.catcodes {
		ctx.SetCatcode(r, token.Catcode(v), isGlobal(p))
	} else {
		ctx.SetCharcode(cc.table, r, v, isGlobal(p))
	}
	return nil
}

// --- \lowercase and \uppercase ----------------------------------------------

func newCaseChange(name string, p params) (context.Code, error) {
	v, err := p.oneOf("table", "lc", "uc")
	if err != nil {
		return nil, err
	}
	table := context.LcCode
	if v == "uc" {
		table = context.UcCode
	}
	return &primitive{name: name, exec: func(_ interpreter.Prefixes, ctx *context.Context,
		src interpreter.TokenSource, _ typesetter.Typesetter) error {
		text, err := src.ScanBalancedText(false)
		if err != nil {
			return err
		}
		src.PushTokens(changeCase(ctx, table, text))
		return nil
	}}, nil
}

// changeCase maps the characters of a token list through a case table.
// Control sequences and characters with a zero code stay as they are; the
// category codes are kept.
func changeCase(ctx *context.Context, table context.CodeTable, l token.List) token.List {
	out := make(token.List, len(l))
	for i, tok := range l {
		out[i] = tok
		if tok.IsCS() {
			continue
		}
		if c := ctx.Charcode(table, tok.Char()); c != 0 {
			out[i] = ctx.Tokens().Char(tok.Cat, rune(c))
		}
	}
	return out
}
