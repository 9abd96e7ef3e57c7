package primitives

import (
	"errors"
	"io"

	"github.com/npillmayer/tytex/core/dimen"
	"github.com/npillmayer/tytex/engine/context"
	"github.com/npillmayer/tytex/engine/interpreter"
	"github.com/npillmayer/tytex/engine/khipu"
	"github.com/npillmayer/tytex/engine/token"
	"github.com/npillmayer/tytex/engine/typesetter"
)

// register is a register like \count, or a control sequence bound to a
// single register, like a parameter or a control sequence defined with
// \countdef.
type register struct {
	name  string
	kind  interpreter.RegisterKind
	fixed string // name of the register, empty if a number follows
}

func (r *register) Name() string { return r.name }

func (r *register) AcceptedPrefixes() interpreter.Prefixes { return interpreter.Global }

// Locate is part of interface interpreter.Register.
func (r *register) Locate(ctx *context.Context, src interpreter.TokenSource) (interpreter.RegisterRef, error) {
	if r.fixed != "" {
		return interpreter.RegisterRef{Kind: r.kind, Name: r.fixed}, nil
	}
	n, err := src.ScanRegisterName()
	return interpreter.RegisterRef{Kind: r.kind, Name: n}, err
}

// Execute assigns a value to the register.
func (r *register) Execute(p interpreter.Prefixes, ctx *context.Context, src interpreter.TokenSource,
	_ typesetter.Typesetter) error {
	ref, err := r.Locate(ctx, src)
	if err != nil {
		return err
	}
	if err := src.ScanOptionalEquals(); err != nil {
		return err
	}
	return assign(ref, isGlobal(p), ctx, src)
}

func (r *register) Meaning() string {
	if r.fixed == "" || r.fixed == r.name {
		return `\` + r.name
	}
	return `\` + kindNames[r.kind] + r.fixed
}

var kindNames = map[interpreter.RegisterKind]string{
	interpreter.CountRegister: "count",
	interpreter.DimenRegister: "dimen",
	interpreter.GlueRegister:  "skip",
	interpreter.ToksRegister:  "toks",
}

type countRegister struct{ register }
type dimenRegister struct{ register }
type glueRegister struct{ register }
type toksRegister struct{ register }

var (
	_ interpreter.Assignment        = &countRegister{}
	_ interpreter.Register          = &countRegister{}
	_ interpreter.CountConvertible  = &countRegister{}
	_ interpreter.DimenConvertible  = &dimenRegister{}
	_ interpreter.GlueConvertible   = &glueRegister{}
	_ interpreter.TokensConvertible = &toksRegister{}
)

func (r *countRegister) CountValue(ctx *context.Context, src interpreter.TokenSource) (int64, error) {
	ref, err := r.Locate(ctx, src)
	return ctx.Count(ref.Name), err
}

func (r *dimenRegister) DimenValue(ctx *context.Context, src interpreter.TokenSource) (dimen.Dimen, error) {
	ref, err := r.Locate(ctx, src)
	return ctx.Dimen(ref.Name), err
}

func (r *glueRegister) GlueValue(ctx *context.Context, src interpreter.TokenSource) (dimen.Glue, error) {
	ref, err := r.Locate(ctx, src)
	return ctx.Glue(ref.Name), err
}

func (r *toksRegister) TokensValue(ctx *context.Context, src interpreter.TokenSource) (token.List, error) {
	ref, err := r.Locate(ctx, src)
	return ctx.Toks(ref.Name).Copy(), err
}

func newRegister(name string, kind interpreter.RegisterKind, fixed string) context.Code {
	r := register{name: name, kind: kind, fixed: fixed}
	switch kind {
	case interpreter.DimenRegister:
		return &dimenRegister{r}
	case interpreter.GlueRegister:
		return &glueRegister{r}
	case interpreter.ToksRegister:
		return &toksRegister{r}
	}
	return &countRegister{r}
}

func newRegisterClass(name string, p params) (context.Code, error) {
	kind, err := p.registerKind()
	if err != nil {
		return nil, err
	}
	return newRegister(name, kind, ""), nil
}

// newParameter creates a parameter, which is a register named like its
// control sequence.
func newParameter(name string, p params) (context.Code, error) {
	kind, err := p.registerKind()
	if err != nil {
		return nil, err
	}
	return newRegister(name, kind, name), nil
}

// assign scans a value for a register and stores it.
func assign(ref interpreter.RegisterRef, global bool, ctx *context.Context, src interpreter.TokenSource) error {
	switch ref.Kind {
	case interpreter.CountRegister:
		n, err := src.ScanNumber()
		if err != nil {
			return err
		}
		ctx.SetCount(ref.Name, n, global)
	case interpreter.DimenRegister:
		d, err := src.ScanDimen()
		if err != nil {
			return err
		}
		ctx.SetDimen(ref.Name, d, global)
	case interpreter.GlueRegister:
		g, err := src.ScanGlue()
		if err != nil {
			return err
		}
		ctx.SetGlue(ref.Name, g, global)
	case interpreter.ToksRegister:
		l, err := scanToks(ctx, src)
		if err != nil {
			return err
		}
		ctx.SetToks(ref.Name, l, global)
	}
	return nil
}

// scanToks scans a token list in braces or a token register.
func scanToks(ctx *context.Context, src interpreter.TokenSource) (token.List, error) {
	tok, err := src.ScanNonBlank()
	if err != nil {
		return nil, eof(err)
	}
	if tok.IsCode() {
		if code, ok := ctx.Code(tok); ok {
			if tc, ok := code.(interpreter.TokensConvertible); ok {
				return tc.TokensValue(ctx, src)
			}
		}
	}
	src.PushBack(tok)
	return src.ScanBalancedText(false)
}

// --- \countdef and friends --------------------------------------------------

func newRegisterDef(name string, p params) (context.Code, error) {
	kind, err := p.registerKind()
	if err != nil {
		return nil, err
	}
	return &assigner{
		primitive: primitive{name: name, exec: func(pfx interpreter.Prefixes, ctx *context.Context,
			src interpreter.TokenSource, _ typesetter.Typesetter) error {
			cs, err := src.ScanControlSequence()
			if err != nil {
				return err
			}
			if err := src.ScanOptionalEquals(); err != nil {
				return err
			}
			n, err := src.ScanRegisterName()
			if err != nil {
				return err
			}
			ctx.SetCode(cs, newRegister(cs.Name, kind, n), isGlobal(pfx))
			return nil
		}},
		accepts: interpreter.Global,
	}, nil
}

// --- \mag -------------------------------------------------------------------

// magnification is \mag. Assignments are checked against the magnification
// of the context, which may have been locked by a true dimension.
type magnification struct {
	name string
}

var _ interpreter.CountConvertible = &magnification{}
var _ interpreter.Assignment = &magnification{}

func newMag(name string, _ params) (context.Code, error) {
	return &magnification{name: name}, nil
}

func (m *magnification) Name() string { return m.name }

func (m *magnification) AcceptedPrefixes() interpreter.Prefixes { return interpreter.Global }

func (m *magnification) CountValue(ctx *context.Context, _ interpreter.TokenSource) (int64, error) {
	return ctx.Magnification(), nil
}

func (m *magnification) Execute(p interpreter.Prefixes, ctx *context.Context, src interpreter.TokenSource,
	_ typesetter.Typesetter) error {
	if err := src.ScanOptionalEquals(); err != nil {
		return err
	}
	n, err := src.ScanNumber()
	if err != nil {
		return err
	}
	if err := ctx.SetMagnification(n, false); err != nil {
		return src.MagnificationError(err, n)
	}
	ctx.SetCount(m.name, n, isGlobal(p))
	return nil
}

// --- Arithmetic -------------------------------------------------------------

type arithmeticOp int8

const (
	advance arithmeticOp = iota
	multiply
	divide
)

func newArithmetic(name string, p params) (context.Code, error) {
	v, err := p.oneOf("op", "advance", "multiply", "divide")
	if err != nil {
		return nil, err
	}
	op := map[string]arithmeticOp{"advance": advance, "multiply": multiply, "divide": divide}[v]
	return &assigner{
		primitive: primitive{name: name, exec: func(pfx interpreter.Prefixes, ctx *context.Context,
			src interpreter.TokenSource, _ typesetter.Typesetter) error {
			return arithmetic(op, `\`+name, pfx, ctx, src)
		}},
		accepts: interpreter.Global,
	}, nil
}

// arithmetic implements \advance, \multiply and \divide. On overflow or
// division by zero the register is unchanged.
func arithmetic(op arithmeticOp, cs string, pfx interpreter.Prefixes, ctx *context.Context,
	src interpreter.TokenSource) error {
	tok, err := src.ScanNonBlank()
	if err != nil {
		return eof(err)
	}
	var reg interpreter.Register
	if code, ok := ctx.Code(tok); ok && tok.IsCode() {
		reg, _ = code.(interpreter.Register)
	}
	if reg == nil {
		src.PushBack(tok)
		return interpreter.NewError(interpreter.ErrMisplaced, src.Locator(), tok.String()+" after "+cs)
	}
	ref, err := reg.Locate(ctx, src)
	if err != nil {
		return err
	}
	if _, err := src.ScanKeyword("by"); err != nil {
		return err
	}
	overflow := interpreter.NewError(interpreter.ErrArithmetic, src.Locator())
	global := isGlobal(pfx)
	switch ref.Kind {
	case interpreter.CountRegister:
		v := ctx.Count(ref.Name)
		n, err := src.ScanNumber()
		if err != nil {
			return err
		}
		switch op {
		case advance:
			v += n
		case multiply:
			v *= n
		case divide:
			if n == 0 {
				return overflow
			}
			v /= n
		}
		if v > interpreter.MaxInt || v < -interpreter.MaxInt {
			return overflow
		}
		ctx.SetCount(ref.Name, v, global)
	case interpreter.DimenRegister:
		v := ctx.Dimen(ref.Name)
		if op == advance {
			d, err := src.ScanDimen()
			if err != nil {
				return err
			}
			v += d
		} else {
			n, err := src.ScanNumber()
			if err != nil {
				return err
			}
			if op == multiply {
				v *= dimen.Dimen(n)
			} else if n == 0 {
				return overflow
			} else {
				v /= dimen.Dimen(n)
			}
		}
		if v > dimen.MaxDimen || v < -dimen.MaxDimen {
			return overflow
		}
		ctx.SetDimen(ref.Name, v, global)
	case interpreter.GlueRegister:
		g := ctx.Glue(ref.Name)
		if op == advance {
			other, err := src.ScanGlue()
			if err != nil {
				return err
			}
			g = g.Add(other)
		} else {
			n, err := src.ScanNumber()
			if err != nil {
				return err
			}
			if op == multiply {
				g = g.Multiply(n)
			} else if n == 0 {
				return overflow
			} else {
				g = g.Divide(n)
			}
		}
		if g.Natural > dimen.MaxDimen || g.Natural < -dimen.MaxDimen {
			return overflow
		}
		ctx.SetGlue(ref.Name, g, global)
	default:
		return interpreter.NewError(interpreter.ErrMisplaced, src.Locator(), cs+" with a token register")
	}
	return nil
}

// --- Boxes ------------------------------------------------------------------

// boxMaker is a code producing a box, as required after \setbox.
type boxMaker interface {
	makeBox(ctx *context.Context, src interpreter.TokenSource, ts typesetter.Typesetter) (*khipu.Box, error)
}

// boxRegister is \box or \copy. \box empties the register.
type boxRegister struct {
	name string
	copy bool
}

func newBoxRegister(name string, p params) (context.Code, error) {
	cp, err := p.flag("copy")
	if err != nil {
		return nil, err
	}
	return &boxRegister{name: name, copy: cp}, nil
}

func (b *boxRegister) Name() string { return b.name }

func (b *boxRegister) makeBox(ctx *context.Context, src interpreter.TokenSource, _ typesetter.Typesetter) (*khipu.Box, error) {
	n, err := src.ScanRegisterName()
	if err != nil {
		return nil, err
	}
	box := ctx.Box(n)
	if b.copy {
		return box.Copy(), nil
	}
	if box != nil {
		ctx.SetBox(n, nil, false)
	}
	return box, nil
}

func (b *boxRegister) Execute(_ interpreter.Prefixes, ctx *context.Context, src interpreter.TokenSource,
	ts typesetter.Typesetter) error {
	box, err := b.makeBox(ctx, src, ts)
	if err != nil || box == nil {
		return err
	}
	ts.AddBox(box)
	return nil
}

// makeBox is \hbox or \vbox, with an optional "to <dimen>".
type makeBox struct {
	name string
	kind khipu.BoxKind
}

func newMakebox(name string, p params) (context.Code, error) {
	v, err := p.oneOf("kind", "h", "v")
	if err != nil {
		return nil, err
	}
	if v == "v" {
		return &makeBox{name: name, kind: khipu.VBox}, nil
	}
	return &makeBox{name: name, kind: khipu.HBox}, nil
}

func (mb *makeBox) Name() string { return mb.name }

func (mb *makeBox) makeBox(ctx *context.Context, src interpreter.TokenSource, ts typesetter.Typesetter) (*khipu.Box, error) {
	var to *dimen.Dimen
	if ok, err := src.ScanKeyword("to"); err != nil {
		return nil, err
	} else if ok {
		d, err := src.ScanDimen()
		if err != nil {
			return nil, err
		}
		to = &d
	}
	tok, err := src.ScanNonBlank()
	if err != nil && eof(err) != nil {
		return nil, err
	}
	if err != nil || tok.Cat != token.LeftBrace {
		if err == nil {
			src.PushBack(tok)
		}
		if err := src.Report(interpreter.NewError(interpreter.ErrMissingToken, src.Locator(), "{")); err != nil {
			return nil, err
		}
	}
	ctx.OpenGroup(context.SimpleGroup, src.Locator())
	if mb.kind == khipu.VBox {
		ts.OpenList(typesetter.InternalVerticalMode)
	} else {
		ts.OpenList(typesetter.RestrictedHorizontalMode)
	}
	if err := src.ExecuteGroup(); err != nil {
		return nil, err
	}
	list, err := ts.CloseList()
	if err != nil {
		return nil, interpreter.NewError(interpreter.ErrInternal, src.Locator(), err.Error())
	}
	box := khipu.Pack(mb.kind, list)
	if to != nil {
		box.Width = *to
	}
	return box, nil
}

func (mb *makeBox) Execute(_ interpreter.Prefixes, ctx *context.Context, src interpreter.TokenSource,
	ts typesetter.Typesetter) error {
	box, err := mb.makeBox(ctx, src, ts)
	if err != nil {
		return err
	}
	ts.AddBox(box)
	return nil
}

func newSetbox(name string, _ params) (context.Code, error) {
	return &assigner{
		primitive: primitive{name: name, exec: setbox},
		accepts:   interpreter.Global,
	}, nil
}

// setbox is \setbox n = <box>.
func setbox(pfx interpreter.Prefixes, ctx *context.Context, src interpreter.TokenSource, ts typesetter.Typesetter) error {
	n, err := src.ScanRegisterName()
	if err != nil {
		return err
	}
	if err := src.ScanOptionalEquals(); err != nil {
		return err
	}
	tok, err := src.ScanNonBlank()
	if err != nil {
		return eof(err)
	}
	var maker boxMaker
	if code, ok := ctx.Code(tok); ok && tok.IsCode() {
		maker, _ = code.(boxMaker)
	}
	if maker == nil {
		src.PushBack(tok)
		return interpreter.NewError(interpreter.ErrMissingToken, src.Locator(), "box")
	}
	box, err := maker.makeBox(ctx, src, ts)
	if err != nil {
		return err
	}
	ctx.SetBox(n, box, isGlobal(pfx))
	return nil
}

// eof turns io.EOF into nil.
func eof(err error) error {
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}
