package context

import (
	"fmt"

	"github.com/npillmayer/tytex/engine/token"
	"golang.org/x/text/unicode/bidi"
)

// Conditional records a conditional whose body is being executed, or whose
// condition is being evaluated.
type Conditional struct {
	Locator    token.Locator
	Value      bool   // branch taken
	Primitive  string // name of the conditional, e.g. "ifnum"
	Branch     int64  // selected case for \ifcase
	Negated    bool   // preceded by \unless
	Switch     bool   // \ifcase, terminated by \or
	Evaluating bool   // condition not yet decided
}

func (c *Conditional) String() string {
	if c.Switch {
		return fmt.Sprintf("\\%s[%d] at %s", c.Primitive, c.Branch, c.Locator)
	}
	return fmt.Sprintf("\\%s[%v] at %s", c.Primitive, c.Value, c.Locator)
}

// PushConditional pushes a conditional onto the conditional stack.
func (ctx *Context) PushConditional(c *Conditional) {
	tracer().Debugf("push conditional %s", c)
	ctx.conditionals.Push(c)
}

// PopConditional removes the innermost conditional. It returns nil if there
// is no open conditional.
func (ctx *Context) PopConditional() *Conditional {
	c, ok := ctx.conditionals.Pop()
	if !ok {
		return nil
	}
	tracer().Debugf("pop conditional %s", c)
	return c.(*Conditional)
}

// DropConditional removes c from the conditional stack, wherever it is.
// Conditionals above c keep their order.
func (ctx *Context) DropConditional(c *Conditional) {
	var above []interface{}
	for !ctx.conditionals.Empty() {
		v, _ := ctx.conditionals.Pop()
		if v.(*Conditional) == c {
			break
		}
		above = append(above, v)
	}
	for i := len(above) - 1; i >= 0; i-- {
		ctx.conditionals.Push(above[i])
	}
}

// PeekConditional returns the innermost conditional or nil.
func (ctx *Context) PeekConditional() *Conditional {
	c, ok := ctx.conditionals.Peek()
	if !ok {
		return nil
	}
	return c.(*Conditional)
}

// ConditionalDepth returns the number of open conditionals.
func (ctx *Context) ConditionalDepth() int {
	return ctx.conditionals.Size()
}

// --- Directions -------------------------------------------------------------

// PushDirection starts a run of text in direction d.
func (ctx *Context) PushDirection(d bidi.Direction) {
	ctx.directions.Push(d)
}

// PopDirection ends the innermost run of directional text. ok is false if
// no run is open.
func (ctx *Context) PopDirection() (d bidi.Direction, ok bool) {
	v, ok := ctx.directions.Pop()
	if !ok {
		return ctx.TypesettingContext().Direction, false
	}
	return v.(bidi.Direction), true
}

// Direction returns the direction of the innermost run of directional text,
// or the direction of the typesetting context.
func (ctx *Context) Direction() bidi.Direction {
	if v, ok := ctx.directions.Peek(); ok {
		return v.(bidi.Direction)
	}
	return ctx.TypesettingContext().Direction
}

// DirectionDepth returns the number of open runs of directional text.
func (ctx *Context) DirectionDepth() int {
	return ctx.directions.Size()
}
