package interpreter

import (
	"errors"
	"io"

	"github.com/npillmayer/tytex/engine/context"
	"github.com/npillmayer/tytex/engine/token"
	"github.com/npillmayer/tytex/engine/typesetter"
)

// TerminatorCode is the meaning of \or, \else and \fi.
type TerminatorCode struct {
	name string
	tag  Tag
}

var _ Terminator = &TerminatorCode{}

// NewTerminator creates a conditional terminator.
func NewTerminator(name string, tag Tag) *TerminatorCode {
	return &TerminatorCode{name: name, tag: tag}
}

// Name is part of interface context.Code.
func (t *TerminatorCode) Name() string { return t.name }

// Tag is part of interface Terminator.
func (t *TerminatorCode) Tag() Tag { return t.tag }

// UnlessCode is the meaning of \unless, which negates the following
// boolean conditional.
type UnlessCode struct {
	name string
}

// NewUnless creates the code for \unless.
func NewUnless(name string) *UnlessCode {
	return &UnlessCode{name: name}
}

// Name is part of interface context.Code.
func (u *UnlessCode) Name() string { return u.name }

// --- Conditional processing --------------------------------------------------

// conditional starts a conditional. If the branch to execute is not the
// first one, text is skipped up to the branch. While the condition is
// evaluated, the conditional is on the stack marked as evaluating.
func (intp *Interpreter) conditional(tok token.Token, code context.Code, negated bool) error {
	loc := intp.Locator()
	cond := &context.Conditional{
		Locator:    loc,
		Primitive:  code.Name(),
		Negated:    negated,
		Evaluating: true,
	}
	switch c := code.(type) {
	case SwitchCode:
		cond.Switch = true
		intp.ctx.PushConditional(cond)
		n, err := c.Case(intp.ctx, intp)
		intp.decided(cond)
		if err = intp.handle(err); err != nil {
			return err
		}
		cond.Branch, cond.Value = n, true
		return intp.selectCase(cond)
	case IfCode:
		intp.ctx.PushConditional(cond)
		v, err := c.Evaluate(intp.ctx, intp, intp.ts)
		intp.decided(cond)
		if err = intp.handle(err); err != nil {
			return err
		}
		if negated {
			v = !v
		}
		cond.Value = v
		if v {
			intp.ctx.PushConditional(cond)
			return nil
		}
		tag, err := intp.skip(cond, false)
		if err != nil {
			return err
		}
		if tag == ElseTag {
			intp.ctx.PushConditional(cond)
		}
		return nil
	}
	return NewError(ErrInternal, loc, tok.String()+" is not a conditional")
}

// decided takes a conditional off the stack after its condition has been
// evaluated.
func (intp *Interpreter) decided(cond *context.Conditional) {
	cond.Evaluating = false
	intp.ctx.DropConditional(cond)
}

// selectCase skips to the branch selected by \ifcase. A branch number
// without a matching \or selects the \else branch, if present.
func (intp *Interpreter) selectCase(cond *context.Conditional) error {
	if cond.Branch == 0 {
		intp.ctx.PushConditional(cond)
		return nil
	}
	var n int64
	for {
		tag, err := intp.skip(cond, true)
		if err != nil {
			return err
		}
		switch tag {
		case OrTag:
			n++
			if n == cond.Branch {
				intp.ctx.PushConditional(cond)
				return nil
			}
		case ElseTag:
			cond.Value = false
			intp.ctx.PushConditional(cond)
			return nil
		case FiTag:
			return nil
		}
	}
}

// skip reads tokens without executing them, up to the terminator of the
// conditional at nesting level 0. \or terminates only if stopAtOr is set.
// End of input while skipping is fatal.
func (intp *Interpreter) skip(cond *context.Conditional, stopAtOr bool) (Tag, error) {
	level := 0
	for {
		tok, err := intp.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return FiTag, NewError(ErrEOFInSkip, intp.Locator(), `\`+cond.Primitive, cond.Locator.Line)
			}
			return FiTag, err
		}
		if !tok.IsCode() {
			continue
		}
		code, ok := intp.ctx.Code(tok)
		if !ok {
			continue
		}
		switch c := code.(type) {
		case SwitchCode, IfCode:
			level++
		case Terminator:
			switch c.Tag() {
			case FiTag:
				if level == 0 {
					return FiTag, nil
				}
				level--
			case ElseTag:
				if level == 0 {
					return ElseTag, nil
				}
			case OrTag:
				if level == 0 && stopAtOr {
					return OrTag, nil
				}
			}
		}
	}
}

// terminate processes \or, \else and \fi reached by normal execution.
// A terminator met while a condition is evaluated ends the scan: it is read
// again after an inserted \relax.
func (intp *Interpreter) terminate(tok token.Token, c Terminator) error {
	loc := intp.Locator()
	cond := intp.ctx.PeekConditional()
	if cond != nil && cond.Evaluating {
		intp.PushBack(tok)
		intp.PushBack(intp.frozenRelax)
		return nil
	}
	switch c.Tag() {
	case FiTag:
		if cond == nil {
			return intp.report(NewError(ErrExtraFi, loc))
		}
		intp.ctx.PopConditional()
		return nil
	case ElseTag:
		if cond == nil || !cond.Value {
			return intp.report(NewError(ErrExtraElse, loc))
		}
	case OrTag:
		if cond == nil || !cond.Switch || !cond.Value {
			return intp.report(NewError(ErrExtraOr, loc))
		}
	}
	// the branch being executed ends: skip the rest up to \fi
	intp.ctx.PopConditional()
	for {
		tag, err := intp.skip(cond, false)
		if err != nil || tag == FiTag {
			return err
		}
	}
}

// relaxCode is the meaning of the \relax inserted in front of a
// terminator. It cannot be redefined.
type relaxCode struct{}

func (relaxCode) Name() string { return "relax" }

func (relaxCode) Execute(Prefixes, *context.Context, TokenSource, typesetter.Typesetter) error {
	return nil
}

// frozenNamespace holds control sequences which input cannot redefine.
const frozenNamespace = "\x00frozen"

// unless applies \unless to the next token, which has to be a boolean
// conditional.
func (intp *Interpreter) unless(u *UnlessCode) error {
	tok, err := intp.Next()
	if err != nil {
		return eof(err)
	}
	if tok.IsCode() {
		if code, ok := intp.ctx.Code(tok); ok {
			if _, isSwitch := code.(SwitchCode); !isSwitch {
				if _, isIf := code.(IfCode); isIf {
					return intp.conditional(tok, code, true)
				}
			}
		}
	}
	intp.PushBack(tok)
	return intp.report(NewError(ErrMisplaced, intp.Locator(), `\`+u.Name()))
}
