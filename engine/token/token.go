/*
Package token implements the lexical tokens of the interpreter.

A token is either a character with a category code or a control sequence.
Tokens are small immutable values; two tokens are equal if their category
code, their name and their namespace are equal, which is plain Go struct
equality. Tokens may therefore be used as map keys.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package token

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Catcode is a category code as in TeX.
type Catcode uint8

// Category codes. The numeric values are those of TeX.
const (
	Escape     Catcode = iota // 0, control sequences
	LeftBrace                 // 1
	RightBrace                // 2
	MathShift                 // 3
	TabMark                   // 4
	CR                        // 5, end of line
	MacroParam                // 6
	SupMark                   // 7
	SubMark                   // 8
	Ignore                    // 9
	Space                     // 10
	Letter                    // 11
	Other                     // 12
	Active                    // 13
	Comment                   // 14
	Invalid                   // 15
)

var catcodeNames = [...]string{
	"escape", "begin-group", "end-group", "math shift", "alignment tab",
	"end of line", "macro parameter", "superscript", "subscript", "ignored",
	"blank space", "letter", "other character", "active character",
	"comment", "invalid character",
}

func (c Catcode) String() string {
	if int(c) < len(catcodeNames) {
		return catcodeNames[c]
	}
	return fmt.Sprintf("catcode(%d)", int(c))
}

// Valid is true for catcodes in the range 0…15.
func (c Catcode) Valid() bool {
	return c <= Invalid
}

// Token is a lexical token.
//
// For control sequences, Cat is Escape and Name is the name without the
// escape character. For all other tokens, Name holds the character.
// Namespace is empty for the default namespace.
type Token struct {
	Cat       Catcode
	Name      string
	Namespace string
}

// Char returns the character of a character token. For control sequences
// it returns the first character of the name, or utf8.RuneError if the
// name is empty.
func (t Token) Char() rune {
	r, _ := utf8.DecodeRuneInString(t.Name)
	return r
}

// IsCS is true for control sequence tokens.
func (t Token) IsCS() bool {
	return t.Cat == Escape
}

// IsCode is true for tokens which get their meaning from the context,
// i.e. control sequences and active characters.
func (t Token) IsCode() bool {
	return t.Cat == Escape || t.Cat == Active
}

// IsChar is true for tokens which carry a single character.
func (t Token) IsChar() bool {
	return t.Cat != Escape
}

// InNamespace returns a copy of t bound to namespace ns. Only code tokens
// are bound to namespaces; other tokens are returned unchanged.
func (t Token) InNamespace(ns string) Token {
	if t.IsCode() {
		t.Namespace = ns
	}
	return t
}

// IsSingleLetterCS is true for control sequences like \a, which consist of a
// single character.
func (t Token) IsSingleLetterCS() bool {
	return t.IsCS() && utf8.RuneCountInString(t.Name) == 1
}

// String returns the token as it would be printed by TeX's \string, using
// the backslash as escape character.
func (t Token) String() string {
	if t.IsCS() {
		return `\` + t.Name
	}
	return t.Name
}

// Debug returns a representation of a token including its catcode.
func (t Token) Debug() string {
	if t.IsCS() {
		if t.Namespace != "" {
			return fmt.Sprintf(`\%s [ns=%s]`, t.Name, t.Namespace)
		}
		return `\` + t.Name
	}
	return fmt.Sprintf("%s %q", t.Cat, t.Name)
}

// Locator describes a position in an input source.
type Locator struct {
	Source string
	Line   int
	Column int
}

func (loc Locator) String() string {
	if loc.Source == "" {
		return fmt.Sprintf("l.%d", loc.Line)
	}
	return fmt.Sprintf("%s:%d:%d", loc.Source, loc.Line, loc.Column)
}

// List is a list of tokens.
type List []Token

// String prints a token list the way TeX shows token lists: control
// sequences named by letters are followed by a space.
func (l List) String() string {
	var b strings.Builder
	for _, t := range l {
		b.WriteString(t.String())
		if t.IsCS() && !t.IsSingleLetterCS() {
			b.WriteByte(' ')
		} else if t.IsSingleLetterCS() && isLetterName(t.Name) {
			b.WriteByte(' ')
		}
	}
	return b.String()
}

func isLetterName(name string) bool {
	r, _ := utf8.DecodeRuneInString(name)
	return r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z'
}

// Equals compares two token lists.
func (l List) Equals(other List) bool {
	if len(l) != len(other) {
		return false
	}
	for i := range l {
		if l[i] != other[i] {
			return false
		}
	}
	return true
}

// Copy returns a copy of l.
func (l List) Copy() List {
	if l == nil {
		return nil
	}
	c := make(List, len(l))
	copy(c, l)
	return c
}
