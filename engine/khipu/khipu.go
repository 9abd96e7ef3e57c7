package khipu

/*
BSD License

Copyright (c) 2017–20, Norbert Pillmayer

All rights reserved.

Redistribution and use in source and binary forms, with or without
modification, are permitted provided that the following conditions
are met:

1. Redistributions of source code must retain the above copyright
notice, this list of conditions and the following disclaimer.

2. Redistributions in binary form must reproduce the above copyright
notice, this list of conditions and the following disclaimer in the
documentation and/or other materials provided with the distribution.

3. Neither the name of this software nor the names of its contributors
may be used to endorse or promote products derived from this software
without specific prior written permission.

THIS SOFTWARE IS PROVIDED BY THE COPYRIGHT HOLDERS AND CONTRIBUTORS
"AS IS" AND ANY EXPRESS OR IMPLIED WARRANTIES, INCLUDING, BUT NOT
LIMITED TO, THE IMPLIED WARRANTIES OF MERCHANTABILITY AND FITNESS FOR
A PARTICULAR PURPOSE ARE DISCLAIMED. IN NO EVENT SHALL THE COPYRIGHT
HOLDER OR CONTRIBUTORS BE LIABLE FOR ANY DIRECT, INDIRECT, INCIDENTAL,
SPECIAL, EXEMPLARY, OR CONSEQUENTIAL DAMAGES (INCLUDING, BUT NOT
LIMITED TO, PROCUREMENT OF SUBSTITUTE GOODS OR SERVICES; LOSS OF USE,
DATA, OR PROFITS; OR BUSINESS INTERRUPTION) HOWEVER CAUSED AND ON ANY
THEORY OF LIABILITY, WHETHER IN CONTRACT, STRICT LIABILITY, OR TORT
(INCLUDING NEGLIGENCE OR OTHERWISE) ARISING IN ANY WAY OUT OF THE USE
OF THIS SOFTWARE, EVEN IF ADVISED OF THE POSSIBILITY OF SUCH DAMAGE.
*/

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/npillmayer/tytex/core/dimen"
	"github.com/npillmayer/tytex/core/parameters"
)

// KnotType is a type for the different kinds of knots.
type KnotType int8

// Types of knots
const (
	KTGlyph KnotType = iota
	KTGlue
	KTKern
	KTPenalty
	KTMath
	KTBox
	KTPar
)

func (kt KnotType) String() string {
	switch kt {
	case KTGlyph:
		return "glyph"
	case KTGlue:
		return "glue"
	case KTKern:
		return "kern"
	case KTPenalty:
		return "penalty"
	case KTMath:
		return "math"
	case KTBox:
		return "box"
	case KTPar:
		return "par"
	}
	return "?"
}

// Knot is a node of a khipu.
type Knot interface {
	Type() KnotType
	W() dimen.Dimen // width
	String() string
}

// --- Glyphs ----------------------------------------------------------------

// Glyph is a character set in a font.
type Glyph struct {
	Char    rune
	Context parameters.TypesettingContext
	Width   dimen.Dimen
	Height  dimen.Dimen
	Depth   dimen.Dimen
}

// NewGlyph creates a glyph knot, taking the metrics from the font in tc.
func NewGlyph(r rune, tc parameters.TypesettingContext) *Glyph {
	g := &Glyph{Char: r, Context: tc}
	if tc.Font != nil {
		g.Width = tc.Font.Width(r)
		g.Height = tc.Font.Height(r)
		g.Depth = tc.Font.Depth(r)
	}
	return g
}

// Type is part of interface Knot.
func (g *Glyph) Type() KnotType { return KTGlyph }

// W is part of interface Knot.
func (g *Glyph) W() dimen.Dimen { return g.Width }

func (g *Glyph) String() string {
	return fmt.Sprintf("\\glyph %q", g.Char)
}

// --- Glue, kerns and penalties ---------------------------------------------

// Glue is a flexible space. Space marks glue inserted for a space token.
type Glue struct {
	dimen.Glue
	Space bool
}

// NewGlue creates a glue knot with finite stretch and shrink.
func NewGlue(w, stretch, shrink dimen.Dimen) Glue {
	return Glue{Glue: dimen.NewGlue(w, stretch, shrink)}
}

// Type is part of interface Knot.
func (g Glue) Type() KnotType { return KTGlue }

// W is part of interface Knot.
func (g Glue) W() dimen.Dimen { return g.Natural }

func (g Glue) String() string {
	if g.Space {
		return "\\space " + g.Glue.String()
	}
	return "\\glue " + g.Glue.String()
}

// Kern is an unbreakable, rigid space.
type Kern dimen.Dimen

// Type is part of interface Knot.
func (k Kern) Type() KnotType { return KTKern }

// W is part of interface Knot.
func (k Kern) W() dimen.Dimen { return dimen.Dimen(k) }

func (k Kern) String() string {
	return "\\kern " + dimen.Dimen(k).String()
}

// Penalty is the cost of breaking at a position.
type Penalty int64

// Type is part of interface Knot.
func (p Penalty) Type() KnotType { return KTPenalty }

// W is part of interface Knot.
func (p Penalty) W() dimen.Dimen { return 0 }

func (p Penalty) String() string {
	return "\\penalty " + strconv.FormatInt(int64(p), 10)
}

// --- Math and paragraphs ---------------------------------------------------

// Math marks the begin or end of a formula.
type Math struct {
	Begin   bool
	Display bool
}

// Type is part of interface Knot.
func (m Math) Type() KnotType { return KTMath }

// W is part of interface Knot.
func (m Math) W() dimen.Dimen { return 0 }

func (m Math) String() string {
	s := "\\mathoff"
	if m.Begin {
		s = "\\mathon"
	}
	if m.Display {
		s += "[display]"
	}
	return s
}

// Par marks the end of a paragraph.
type Par struct{}

// Type is part of interface Knot.
func (p Par) Type() KnotType { return KTPar }

// W is part of interface Knot.
func (p Par) W() dimen.Dimen { return 0 }

func (p Par) String() string { return "\\par" }

// --- Boxes -----------------------------------------------------------------

// BoxKind distinguishes horizontal and vertical boxes.
type BoxKind int8

// Kinds of boxes
const (
	HBox BoxKind = iota
	VBox
)

// Box is a list of knots packaged into a box.
type Box struct {
	Kind   BoxKind
	List   *Khipu
	Width  dimen.Dimen
	Height dimen.Dimen
	Depth  dimen.Dimen
}

// Pack packages a khipu into a box of natural size.
func Pack(kind BoxKind, k *Khipu) *Box {
	if k == nil {
		k = NewKhipu()
	}
	box := &Box{Kind: kind, List: k}
	for _, knot := range k.knots {
		var h, d dimen.Dimen
		switch kn := knot.(type) {
		case *Glyph:
			h, d = kn.Height, kn.Depth
		case *Box:
			h, d = kn.Height, kn.Depth
		}
		if kind == HBox {
			box.Width += knot.W()
			box.Height = dimen.Max(box.Height, h)
			box.Depth = dimen.Max(box.Depth, d)
		} else {
			box.Width = dimen.Max(box.Width, knot.W())
			box.Height += box.Depth + h
			box.Depth = d
		}
	}
	return box
}

// Copy returns a copy of a box, sharing the knots.
func (b *Box) Copy() *Box {
	if b == nil {
		return nil
	}
	c := *b
	c.List = NewKhipu().AppendKhipu(b.List)
	return &c
}

// Type is part of interface Knot.
func (b *Box) Type() KnotType { return KTBox }

// W is part of interface Knot.
func (b *Box) W() dimen.Dimen { return b.Width }

func (b *Box) String() string {
	kind := "hbox"
	if b.Kind == VBox {
		kind = "vbox"
	}
	return fmt.Sprintf("\\%s(%s+%s)x%s{%s}", kind, b.Height, b.Depth, b.Width, b.List)
}

// --- Khipu -----------------------------------------------------------------

// Khipu is a list of knots.
type Khipu struct {
	knots []Knot
}

// NewKhipu creates an empty khipu.
func NewKhipu() *Khipu {
	return &Khipu{knots: make([]Knot, 0, 16)}
}

// AppendKnot appends a knot at the end of a khipu. It returns the khipu to
// allow chaining.
func (kh *Khipu) AppendKnot(knot Knot) *Khipu {
	kh.knots = append(kh.knots, knot)
	return kh
}

// AppendKhipu appends all the knots of another khipu.
func (kh *Khipu) AppendKhipu(other *Khipu) *Khipu {
	if other != nil {
		kh.knots = append(kh.knots, other.knots...)
	}
	return kh
}

// Length returns the number of knots.
func (kh *Khipu) Length() int {
	if kh == nil {
		return 0
	}
	return len(kh.knots)
}

// At returns the knot at position i.
func (kh *Khipu) At(i int) Knot {
	return kh.knots[i]
}

// Last returns the last knot or nil for an empty khipu.
func (kh *Khipu) Last() Knot {
	if kh.Length() == 0 {
		return nil
	}
	return kh.knots[len(kh.knots)-1]
}

// RemoveLast removes the last knot and returns it.
func (kh *Khipu) RemoveLast() Knot {
	last := kh.Last()
	if last != nil {
		kh.knots = kh.knots[:len(kh.knots)-1]
	}
	return last
}

// Text returns the characters of the glyphs in range [from…to), with glues
// from spaces as blanks.
func (kh *Khipu) Text(from, to int) string {
	var b strings.Builder
	for _, knot := range kh.knots[from:to] {
		switch k := knot.(type) {
		case *Glyph:
			b.WriteRune(k.Char)
		case Glue:
			if k.Space {
				b.WriteByte(' ')
			}
		case *Box:
			b.WriteString(k.List.Text(0, k.List.Length()))
		}
	}
	return b.String()
}

func (kh *Khipu) String() string {
	var b strings.Builder
	for i, knot := range kh.knots {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(knot.String())
	}
	return b.String()
}

// Cursor iterates over the knots of a khipu.
type Cursor struct {
	khipu *Khipu
	pos   int
}

// NewCursor creates a cursor positioned before the first knot.
func NewCursor(khipu *Khipu) *Cursor {
	return &Cursor{khipu: khipu, pos: -1}
}

// Next moves the cursor to the next knot.
func (c *Cursor) Next() bool {
	c.pos++
	return c.pos < c.khipu.Length()
}

// Knot returns the knot at the cursor position.
func (c *Cursor) Knot() Knot {
	return c.khipu.knots[c.pos]
}

// AsGlyph returns the knot at the cursor position as a glyph, or nil.
func (c *Cursor) AsGlyph() *Glyph {
	g, _ := c.Knot().(*Glyph)
	return g
}
