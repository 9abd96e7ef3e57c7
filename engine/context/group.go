package context

import (
	"unicode"

	"github.com/npillmayer/tytex/core/dimen"
	"github.com/npillmayer/tytex/core/font"
	"github.com/npillmayer/tytex/core/parameters"
	"github.com/npillmayer/tytex/engine/khipu"
	"github.com/npillmayer/tytex/engine/token"
)

// GroupKind tells how a group has been opened.
type GroupKind int8

// Kinds of groups
const (
	OuterGroup      GroupKind = iota // the bottom group, never closed
	SimpleGroup                      // { … }
	SemiSimpleGroup                  // \begingroup … \endgroup
)

func (k GroupKind) String() string {
	switch k {
	case OuterGroup:
		return "bottom level"
	case SimpleGroup:
		return "simple group"
	case SemiSimpleGroup:
		return "semi simple group"
	}
	return "?"
}

// Code is the meaning of a control sequence or active character.
// The interpreter defines richer interfaces on top of it.
type Code interface {
	Name() string
}

// CodeTable selects one of the character code tables.
type CodeTable int8

// Character code tables
const (
	LcCode CodeTable = iota
	UcCode
	SfCode
	MathCode
	DelCode
	numCodeTables
)

var codeTableNames = [...]string{"lccode", "uccode", "sfcode", "mathcode", "delcode"}

func (ct CodeTable) String() string {
	if ct >= 0 && ct < numCodeTables {
		return codeTableNames[ct]
	}
	return "?"
}

// afterAction is either a token or a callback, deferred to the end of a group.
type afterAction struct {
	tok    token.Token
	isTok  bool
	action func()
}

// Group is a scope layer.
type Group struct {
	kind        GroupKind
	locator     token.Locator
	counts      map[string]int64
	dimens      map[string]dimen.Dimen
	glues       map[string]dimen.Glue
	toks        map[string]token.List
	boxes       map[string]*khipu.Box
	fonts       map[string]font.Font
	catcodes    map[rune]token.Catcode
	charcodes   [numCodeTables]map[rune]int64
	codes       map[token.Token]Code
	tc          parameters.TypesettingContext
	interaction Interaction
	namespace   string
	after       []afterAction
}

// Kind returns how the group was opened.
func (g *Group) Kind() GroupKind {
	return g.kind
}

// Locator returns the position where the group was opened.
func (g *Group) Locator() token.Locator {
	return g.locator
}

func newGroup(kind GroupKind, loc token.Locator, parent *Group) *Group {
	g := &Group{kind: kind, locator: loc}
	if parent != nil {
		g.tc = parent.tc
		g.interaction = parent.interaction
		g.namespace = parent.namespace
	} else {
		g.tc = parameters.DefaultTypesettingContext()
		g.interaction = ErrorStopMode
	}
	return g
}

// runAfterGroup executes the deferred actions of g in the order they have
// been registered. Deferred tokens are collected and returned, callbacks are
// called immediately.
func (g *Group) runAfterGroup() token.List {
	var tokens token.List
	for _, a := range g.after {
		if a.isTok {
			tokens = append(tokens, a.tok)
		} else if a.action != nil {
			a.action()
		}
	}
	g.after = nil
	return tokens
}

// --- Generic lookup and assignment ------------------------------------------

// lookup walks the group stack from the innermost group outwards.
func lookup[K comparable, V any](groups []*Group, sel func(*Group) *map[K]V, key K) (V, bool) {
	for i := len(groups) - 1; i >= 0; i-- {
		if v, ok := (*sel(groups[i]))[key]; ok {
			return v, true
		}
	}
	var zero V
	return zero, false
}

// assign binds a value in the innermost group. For global assignments the
// value is written to all groups holding a binding for key and to the
// outermost group.
func assign[K comparable, V any](groups []*Group, sel func(*Group) *map[K]V, key K, v V, global bool) {
	put := func(g *Group) {
		m := sel(g)
		if *m == nil {
			*m = make(map[K]V)
		}
		(*m)[key] = v
	}
	if !global {
		put(groups[len(groups)-1])
		return
	}
	put(groups[0])
	for _, g := range groups[1:] {
		if _, ok := (*sel(g))[key]; ok {
			put(g)
		}
	}
}

func selCounts(g *Group) *map[string]int64         { return &g.counts }
func selDimens(g *Group) *map[string]dimen.Dimen   { return &g.dimens }
func selGlues(g *Group) *map[string]dimen.Glue     { return &g.glues }
func selToks(g *Group) *map[string]token.List      { return &g.toks }
func selBoxes(g *Group) *map[string]*khipu.Box     { return &g.boxes }
func selFonts(g *Group) *map[string]font.Font      { return &g.fonts }
func selCatcodes(g *Group) *map[rune]token.Catcode { return &g.catcodes }
func selCodes(g *Group) *map[token.Token]Code      { return &g.codes }
func selCharcodes(t CodeTable) func(*Group) *map[rune]int64 {
	return func(g *Group) *map[rune]int64 { return &g.charcodes[t] }
}

// --- Initial code tables ----------------------------------------------------

// InitialCatcode returns the category code a character has if no group
// binds it. The table resembles the one of plain TeX.
func InitialCatcode(r rune) token.Catcode {
	switch r {
	case '\\':
		return token.Escape
	case '{':
		return token.LeftBrace
	case '}':
		return token.RightBrace
	case '$':
		return token.MathShift
	case '&':
		return token.TabMark
	case '\r':
		return token.CR
	case '#':
		return token.MacroParam
	case '^':
		return token.SupMark
	case '_':
		return token.SubMark
	case 0:
		return token.Ignore
	case ' ', '\t':
		return token.Space
	case '~':
		return token.Active
	case '%':
		return token.Comment
	case 0x7f:
		return token.Invalid
	}
	if unicode.IsLetter(r) {
		return token.Letter
	}
	return token.Other
}

// InitialCharcode returns the value of a character code table entry if no
// group binds it.
func InitialCharcode(table CodeTable, r rune) int64 {
	switch table {
	case LcCode:
		if unicode.IsLetter(r) {
			return int64(unicode.ToLower(r))
		}
	case UcCode:
		if unicode.IsLetter(r) {
			return int64(unicode.ToUpper(r))
		}
	case SfCode:
		if unicode.IsUpper(r) {
			return 999
		}
		return 1000
	case MathCode:
		switch {
		case r >= '0' && r <= '9':
			return 0x7000 + int64(r)
		case r < 128 && unicode.IsLetter(r):
			return 0x7100 + int64(r)
		}
		return int64(r)
	case DelCode:
		if r == '.' {
			return 0
		}
		return -1
	}
	return 0
}
