package interpreter

import (
	"strings"

	"github.com/npillmayer/tytex/core/dimen"
	"github.com/npillmayer/tytex/engine/context"
	"github.com/npillmayer/tytex/engine/token"
	"github.com/npillmayer/tytex/engine/typesetter"
)

// Prefixes is a set of assignment prefixes.
type Prefixes uint8

// Prefixes for assignments and macro definitions
const (
	Global Prefixes = 1 << iota
	Long
	Outer
	Protected
)

func (p Prefixes) String() string {
	var names []string
	for i, name := range []string{"global", "long", "outer", "protected"} {
		if p&(1<<i) != 0 {
			names = append(names, `\`+name)
		}
	}
	return strings.Join(names, " ")
}

// Code is a primitive or a macro which is executed by the interpreter.
type Code interface {
	context.Code
	Execute(p Prefixes, ctx *context.Context, src TokenSource, ts typesetter.Typesetter) error
}

// Expandable is a code which is replaced by a list of tokens. Expansion
// happens whenever the interpreter reads tokens with expansion, e.g. before
// executing or while scanning numbers.
type Expandable interface {
	context.Code
	Expand(ctx *context.Context, src TokenSource) (token.List, error)
}

// IfCode is a boolean conditional like \ifnum.
type IfCode interface {
	context.Code
	Evaluate(ctx *context.Context, src TokenSource, ts typesetter.Typesetter) (bool, error)
}

// SwitchCode is a conditional selecting a branch by number, like \ifcase.
type SwitchCode interface {
	context.Code
	Case(ctx *context.Context, src TokenSource) (int64, error)
}

// Tag is the kind of a conditional terminator.
type Tag int8

// Conditional terminators
const (
	OrTag Tag = iota
	ElseTag
	FiTag
)

func (t Tag) String() string {
	switch t {
	case OrTag:
		return `\or`
	case ElseTag:
		return `\else`
	}
	return `\fi`
}

// Terminator is a code ending a branch of a conditional: \or, \else or \fi.
type Terminator interface {
	context.Code
	Tag() Tag
}

// Prefix is a code which modifies the next assignment, like \global.
type Prefix interface {
	context.Code
	Prefix() Prefixes
}

// Assignment is a code which accepts prefixes.
type Assignment interface {
	Code
	AcceptedPrefixes() Prefixes
}

// CountConvertible is a code which denotes an integer quantity, e.g. a count
// register or \catcode.
type CountConvertible interface {
	context.Code
	CountValue(ctx *context.Context, src TokenSource) (int64, error)
}

// DimenConvertible is a code which denotes a dimension.
type DimenConvertible interface {
	context.Code
	DimenValue(ctx *context.Context, src TokenSource) (dimen.Dimen, error)
}

// GlueConvertible is a code which denotes a glue.
type GlueConvertible interface {
	context.Code
	GlueValue(ctx *context.Context, src TokenSource) (dimen.Glue, error)
}

// TokensConvertible is a code which denotes a token list, e.g. a token
// register.
type TokensConvertible interface {
	context.Code
	TokensValue(ctx *context.Context, src TokenSource) (token.List, error)
}

// RegisterKind is the kind of value a register holds.
type RegisterKind int8

// Kinds of registers
const (
	CountRegister RegisterKind = iota
	DimenRegister
	GlueRegister
	ToksRegister
)

// RegisterRef names a register in the context.
type RegisterRef struct {
	Kind RegisterKind
	Name string
}

// Register is a code denoting a register or parameter, which can be used
// with arithmetic like \advance.
type Register interface {
	context.Code
	Locate(ctx *context.Context, src TokenSource) (RegisterRef, error)
}

// Meaning returns the meaning of a code as \meaning would show it.
func Meaning(code context.Code) string {
	if code == nil {
		return "undefined"
	}
	if m, ok := code.(interface{ Meaning() string }); ok {
		return m.Meaning()
	}
	return `\` + code.Name()
}
