package context

import (
	"errors"
	"time"

	"github.com/emirpasic/gods/stacks/arraystack"
	"github.com/npillmayer/tytex/core/dimen"
	"github.com/npillmayer/tytex/core/font"
	"github.com/npillmayer/tytex/core/parameters"
	"github.com/npillmayer/tytex/engine/khipu"
	"github.com/npillmayer/tytex/engine/token"
)

// Errors returned by group and magnification operations. None of them
// changes the state of the context.
var (
	ErrTooManyClosingBraces      = errors.New("too many closing braces")
	ErrGroupMismatch             = errors.New("extra }, or forgotten \\endgroup")
	ErrIllegalMagnification      = errors.New("illegal magnification")
	ErrIncompatibleMagnification = errors.New("incompatible magnification")
)

// DefaultMaxMagnification is the largest magnification allowed unless
// configured otherwise.
const DefaultMaxMagnification = 32768

// Environment carries the parts of the outside world a context depends on.
type Environment struct {
	Now time.Time // zero value selects noon of July 4, 1776
}

func (env Environment) now() time.Time {
	if env.Now.IsZero() {
		return time.Date(1776, time.July, 4, 12, 0, 0, 0, time.UTC)
	}
	return env.Now
}

// TokenPusher receives tokens which have been deferred to the end of a group.
type TokenPusher interface {
	PushTokens(token.List)
}

// Context is the state of an interpreter run.
type Context struct {
	id           string
	groups       []*Group // index 0 is the outermost group
	conditionals *arraystack.Stack
	directions   *arraystack.Stack
	mag          int64
	magLocked    bool
	maxMag       int64
	env          Environment
	fonts        font.Factory
	tokens       *token.Factory
	observers    observers
}

// New creates a context with a single outermost group.
func New(id string, env Environment) *Context {
	ctx := &Context{
		id:           id,
		groups:       []*Group{newGroup(OuterGroup, token.Locator{}, nil)},
		conditionals: arraystack.New(),
		directions:   arraystack.New(),
		mag:          1000,
		maxMag:       DefaultMaxMagnification,
		fonts:        font.GlobalRegistry(),
		tokens:       token.NewFactory(),
	}
	ctx.SetCount("mag", 1000, true)
	ctx.setCalendar(env)
	return ctx
}

// Reinit injects the transient parts of a context, which are not part of
// its persistent state. A nil font factory or token factory keeps the
// current one.
func (ctx *Context) Reinit(env Environment, fonts font.Factory, tokens *token.Factory) {
	if fonts != nil {
		ctx.fonts = fonts
	}
	if tokens != nil {
		ctx.tokens = tokens
	}
	ctx.setCalendar(env)
}

func (ctx *Context) setCalendar(env Environment) {
	ctx.env = env
	now := env.now()
	ctx.SetCount("time", int64(now.Hour()*60+now.Minute()), true)
	ctx.SetCount("day", int64(now.Day()), true)
	ctx.SetCount("month", int64(now.Month()), true)
	ctx.SetCount("year", int64(now.Year()), true)
}

// ID returns the identifier of the context.
func (ctx *Context) ID() string {
	return ctx.id
}

// Environment returns the environment the context has been created with.
func (ctx *Context) Environment() Environment {
	return ctx.env
}

// Fonts returns the font factory.
func (ctx *Context) Fonts() font.Factory {
	return ctx.fonts
}

// Tokens returns the token factory.
func (ctx *Context) Tokens() *token.Factory {
	return ctx.tokens
}

func (ctx *Context) current() *Group {
	return ctx.groups[len(ctx.groups)-1]
}

// --- Groups -----------------------------------------------------------------

// Depth returns the group nesting level. The outermost group has depth 0.
func (ctx *Context) Depth() int {
	return len(ctx.groups) - 1
}

// CurrentGroup returns the innermost group.
func (ctx *Context) CurrentGroup() *Group {
	return ctx.current()
}

// OpenGroup opens a new group. It inherits the typesetting context, the
// interaction mode and the namespace of the current group.
func (ctx *Context) OpenGroup(kind GroupKind, loc token.Locator) {
	if kind == OuterGroup {
		kind = SimpleGroup
	}
	ctx.groups = append(ctx.groups, newGroup(kind, loc, ctx.current()))
	tracer().Debugf("open %s at depth %d", kind, ctx.Depth())
}

// CloseGroup closes the current group, which has to be of the given kind.
// Tokens deferred with AfterGroupToken are pushed to pusher, which may be
// nil if no tokens are expected.
//
// Closing the outermost group returns ErrTooManyClosingBraces, closing a
// group of a different kind returns ErrGroupMismatch. In both cases the
// group stack is left unchanged.
func (ctx *Context) CloseGroup(kind GroupKind, pusher TokenPusher) error {
	if ctx.Depth() == 0 {
		return ErrTooManyClosingBraces
	}
	g := ctx.current()
	if g.kind != kind {
		return ErrGroupMismatch
	}
	ctx.groups = ctx.groups[:len(ctx.groups)-1]
	tracer().Debugf("close %s, back at depth %d", kind, ctx.Depth())
	parent := ctx.current()
	if g.interaction != parent.interaction {
		ctx.observers.notifyInteraction(parent.interaction)
	}
	if g.tc.Direction != parent.tc.Direction {
		tracer().Debugf("direction restored to %s", parameters.DirectionString(parent.tc.Direction))
	}
	if tokens := g.runAfterGroup(); len(tokens) > 0 && pusher != nil {
		pusher.PushTokens(tokens)
	}
	return nil
}

// AfterGroupToken defers a token to the end of the current group.
// At the outermost level the token is dropped.
func (ctx *Context) AfterGroupToken(tok token.Token) {
	if ctx.Depth() == 0 {
		return
	}
	g := ctx.current()
	g.after = append(g.after, afterAction{tok: tok, isTok: true})
}

// AfterGroupFunc registers a callback to be called when the current group
// is closed.
func (ctx *Context) AfterGroupFunc(action func()) {
	g := ctx.current()
	g.after = append(g.after, afterAction{action: action})
}

// --- Registers --------------------------------------------------------------

// Count returns the value of a count register or integer parameter.
func (ctx *Context) Count(name string) int64 {
	v, _ := lookup(ctx.groups, selCounts, name)
	return v
}

// SetCount assigns a count register or integer parameter.
func (ctx *Context) SetCount(name string, v int64, global bool) {
	assign(ctx.groups, selCounts, name, v, global)
	ctx.observers.notifyCount(name, v)
}

// Dimen returns the value of a dimen register or dimension parameter.
func (ctx *Context) Dimen(name string) dimen.Dimen {
	v, _ := lookup(ctx.groups, selDimens, name)
	return v
}

// SetDimen assigns a dimen register or dimension parameter.
func (ctx *Context) SetDimen(name string, v dimen.Dimen, global bool) {
	assign(ctx.groups, selDimens, name, v, global)
}

// Glue returns the value of a skip register or glue parameter.
func (ctx *Context) Glue(name string) dimen.Glue {
	v, _ := lookup(ctx.groups, selGlues, name)
	return v
}

// SetGlue assigns a skip register or glue parameter.
func (ctx *Context) SetGlue(name string, v dimen.Glue, global bool) {
	assign(ctx.groups, selGlues, name, v, global)
}

// Toks returns the value of a token register. Unbound registers are empty.
func (ctx *Context) Toks(name string) token.List {
	v, _ := lookup(ctx.groups, selToks, name)
	return v
}

// SetToks assigns a token register.
func (ctx *Context) SetToks(name string, v token.List, global bool) {
	assign(ctx.groups, selToks, name, v.Copy(), global)
}

// Box returns the contents of a box register. A void box is nil.
func (ctx *Context) Box(name string) *khipu.Box {
	v, _ := lookup(ctx.groups, selBoxes, name)
	return v
}

// SetBox assigns a box register. Assigning nil makes the register void.
func (ctx *Context) SetBox(name string, b *khipu.Box, global bool) {
	assign(ctx.groups, selBoxes, name, b, global)
}

// Font returns a font bound to a name, or the null font.
func (ctx *Context) Font(name string) font.Font {
	if f, ok := lookup(ctx.groups, selFonts, name); ok && f != nil {
		return f
	}
	return font.NullFont
}

// SetFont binds a font to a name.
func (ctx *Context) SetFont(name string, f font.Font, global bool) {
	assign(ctx.groups, selFonts, name, f, global)
}

// Catcode returns the category code of a character. It is part of
// interface lexer.Environment.
func (ctx *Context) Catcode(r rune) token.Catcode {
	if c, ok := lookup(ctx.groups, selCatcodes, r); ok {
		return c
	}
	return InitialCatcode(r)
}

// SetCatcode assigns the category code of a character.
func (ctx *Context) SetCatcode(r rune, c token.Catcode, global bool) {
	assign(ctx.groups, selCatcodes, r, c, global)
}

// Charcode returns an entry of one of the character code tables.
func (ctx *Context) Charcode(table CodeTable, r rune) int64 {
	if v, ok := lookup(ctx.groups, selCharcodes(table), r); ok {
		return v
	}
	return InitialCharcode(table, r)
}

// SetCharcode assigns an entry of one of the character code tables.
func (ctx *Context) SetCharcode(table CodeTable, r rune, v int64, global bool) {
	assign(ctx.groups, selCharcodes(table), r, v, global)
}

// Code returns the meaning of a control sequence or active character.
// The namespace of the token is searched first, then the default namespace.
// ok is false for undefined tokens.
func (ctx *Context) Code(tok token.Token) (code Code, ok bool) {
	if code, ok = lookup(ctx.groups, selCodes, tok); ok && code != nil {
		return code, true
	}
	if tok.Namespace != "" {
		code, ok = lookup(ctx.groups, selCodes, tok.InNamespace(""))
		return code, ok && code != nil
	}
	return nil, false
}

// SetCode binds a meaning to a control sequence or active character.
// Assigning nil makes the token undefined.
func (ctx *Context) SetCode(tok token.Token, code Code, global bool) {
	assign(ctx.groups, selCodes, tok, code, global)
	ctx.observers.notifyCode(tok, code)
}

// --- Typesetting attributes, interaction and namespace ----------------------

// TypesettingContext returns the current typesetting attributes.
func (ctx *Context) TypesettingContext() parameters.TypesettingContext {
	return ctx.current().tc
}

// SetTypesettingContext changes the current typesetting attributes.
func (ctx *Context) SetTypesettingContext(tc parameters.TypesettingContext, global bool) {
	if global {
		for _, g := range ctx.groups {
			g.tc = tc
		}
		return
	}
	ctx.current().tc = tc
}

// Interaction returns the current interaction mode.
func (ctx *Context) Interaction() Interaction {
	return ctx.current().interaction
}

// SetInteraction changes the interaction mode. Observers are notified if the
// mode changes.
func (ctx *Context) SetInteraction(mode Interaction, global bool) {
	old := ctx.Interaction()
	if global {
		for _, g := range ctx.groups {
			g.interaction = mode
		}
	} else {
		ctx.current().interaction = mode
	}
	if old != mode {
		ctx.observers.notifyInteraction(mode)
	}
}

// Namespace returns the current namespace. It is part of interface
// lexer.Environment.
func (ctx *Context) Namespace() string {
	return ctx.current().namespace
}

// SetNamespace changes the namespace new control sequences are bound to.
func (ctx *Context) SetNamespace(ns string, global bool) {
	if global {
		for _, g := range ctx.groups {
			g.namespace = ns
		}
		return
	}
	ctx.current().namespace = ns
}

// --- Magnification ----------------------------------------------------------

// Magnification returns the current magnification in per mille.
func (ctx *Context) Magnification() int64 {
	return ctx.mag
}

// SetMaxMagnification sets the upper bound for magnifications.
func (ctx *Context) SetMaxMagnification(max int64) {
	if max >= 1 {
		ctx.maxMag = max
	}
}

// SetMagnification changes the magnification. Once a magnification has been
// locked, only the same value may be set again. Values outside of
// [1…max] return ErrIllegalMagnification, a conflict with a locked value
// returns ErrIncompatibleMagnification.
func (ctx *Context) SetMagnification(v int64, lock bool) error {
	if v < 1 || v > ctx.maxMag {
		return ErrIllegalMagnification
	}
	if ctx.magLocked && v != ctx.mag {
		return ErrIncompatibleMagnification
	}
	ctx.mag = v
	if lock {
		ctx.magLocked = true
	}
	return nil
}
