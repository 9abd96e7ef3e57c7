/*
Package typesetter receives typesetting events from the interpreter and
builds node lists from them.

The interpreter does not know how characters become glyphs. It forwards
characters, spaces, glues, kerns and penalties to a Typesetter, which is
responsible for the current mode and the lists under construction.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package typesetter

import (
	"errors"

	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/tytex/core/dimen"
	"github.com/npillmayer/tytex/core/font"
	"github.com/npillmayer/tytex/core/parameters"
	"github.com/npillmayer/tytex/engine/khipu"
)

// tracer traces with key 'tytex.typesetter'.
func tracer() tracing.Trace {
	return tracing.Select("tytex.typesetter")
}

// Mode is the typesetting mode of a list under construction.
type Mode int8

// Modes of the typesetter
const (
	VerticalMode Mode = iota
	InternalVerticalMode
	HorizontalMode
	RestrictedHorizontalMode
	MathMode
	DisplayMathMode
)

func (m Mode) String() string {
	switch m {
	case VerticalMode:
		return "vertical mode"
	case InternalVerticalMode:
		return "internal vertical mode"
	case HorizontalMode:
		return "horizontal mode"
	case RestrictedHorizontalMode:
		return "restricted horizontal mode"
	case MathMode:
		return "math mode"
	case DisplayMathMode:
		return "display math mode"
	}
	return "no mode"
}

// IsVertical is true for vertical and internal vertical mode.
func (m Mode) IsVertical() bool {
	return m == VerticalMode || m == InternalVerticalMode
}

// IsHorizontal is true for horizontal and restricted horizontal mode.
func (m Mode) IsHorizontal() bool {
	return m == HorizontalMode || m == RestrictedHorizontalMode
}

// IsMath is true for math and display math mode.
func (m Mode) IsMath() bool {
	return m == MathMode || m == DisplayMathMode
}

// IsInner is true for the modes TeX calls inner: internal vertical,
// restricted horizontal and non-display math.
func (m Mode) IsInner() bool {
	return m == InternalVerticalMode || m == RestrictedHorizontalMode || m == MathMode
}

// Errors returned for mode changes which are not possible.
var (
	ErrDisplayMathEnd = errors.New("display math should end with $$")
	ErrNoListToClose  = errors.New("no list to close")
)

// Typesetter is the receiver of typesetting events.
type Typesetter interface {
	Add(tc parameters.TypesettingContext, r rune)
	AddSpace(tc parameters.TypesettingContext, sf int64)
	AddGlue(g dimen.Glue)
	AddKern(k dimen.Dimen)
	AddPenalty(p int64)
	AddBox(b *khipu.Box)
	Par()
	ToggleMath() error
	ToggleDisplayMath() error
	Mode() Mode
	LastNode() khipu.Knot
	RemoveLastNode() khipu.Knot
	OpenList(mode Mode)
	CloseList() (*khipu.Khipu, error)
	Finish() *khipu.Khipu
}

// --- Khipu typesetter --------------------------------------------------------

type nest struct {
	mode Mode
	list *khipu.Khipu
}

// KhipuTypesetter is a Typesetter which appends knots to a stack of
// khipus, one for every list under construction. It starts in vertical mode.
// Characters in vertical mode start a paragraph, which is ended by Par.
// Paragraphs are not broken into lines.
type KhipuTypesetter struct {
	nests []nest
}

var _ Typesetter = &KhipuTypesetter{}

// NewKhipuTypesetter creates a typesetter in vertical mode.
func NewKhipuTypesetter() *KhipuTypesetter {
	return &KhipuTypesetter{
		nests: []nest{{mode: VerticalMode, list: khipu.NewKhipu()}},
	}
}

func (ts *KhipuTypesetter) top() *nest {
	return &ts.nests[len(ts.nests)-1]
}

func (ts *KhipuTypesetter) push(mode Mode) {
	ts.nests = append(ts.nests, nest{mode: mode, list: khipu.NewKhipu()})
}

func (ts *KhipuTypesetter) pop() *khipu.Khipu {
	n := ts.top()
	ts.nests = ts.nests[:len(ts.nests)-1]
	return n.list
}

// startParagraph switches from vertical to horizontal mode.
func (ts *KhipuTypesetter) startParagraph() {
	if ts.top().mode.IsVertical() {
		tracer().Debugf("start paragraph")
		ts.push(HorizontalMode)
	}
}

// Mode returns the mode of the innermost list.
func (ts *KhipuTypesetter) Mode() Mode {
	return ts.top().mode
}

// Add appends a glyph for r, set with the attributes of tc.
func (ts *KhipuTypesetter) Add(tc parameters.TypesettingContext, r rune) {
	ts.startParagraph()
	if tc.Font != nil && !font.IsNull(tc.Font) && !tc.Font.HasGlyph(r) {
		tracer().Infof("Missing character: There is no %c in font %s!", r, tc.Font.Name())
	}
	ts.top().list.AppendKnot(khipu.NewGlyph(r, tc))
}

// AddSpace appends interword glue. The glue is taken from the font and
// adjusted by the space factor sf, with 1000 leaving it unchanged.
// Spaces are ignored in vertical mode.
func (ts *KhipuTypesetter) AddSpace(tc parameters.TypesettingContext, sf int64) {
	if ts.top().mode.IsVertical() {
		return
	}
	var g dimen.Glue
	if tc.Font != nil {
		g = tc.Font.Space()
	}
	if sf > 0 && sf != 1000 {
		g.Stretch.Value = g.Stretch.Value * dimen.Dimen(sf) / 1000
		g.Shrink.Value = g.Shrink.Value * 1000 / dimen.Dimen(sf)
	}
	ts.top().list.AppendKnot(khipu.Glue{Glue: g, Space: true})
}

// AddGlue appends glue to the current list.
func (ts *KhipuTypesetter) AddGlue(g dimen.Glue) {
	ts.top().list.AppendKnot(khipu.Glue{Glue: g})
}

// AddKern appends a kern to the current list.
func (ts *KhipuTypesetter) AddKern(k dimen.Dimen) {
	ts.top().list.AppendKnot(khipu.Kern(k))
}

// AddPenalty appends a penalty to the current list.
func (ts *KhipuTypesetter) AddPenalty(p int64) {
	ts.top().list.AppendKnot(khipu.Penalty(p))
}

// AddBox appends a box to the current list. A nil box is ignored.
func (ts *KhipuTypesetter) AddBox(b *khipu.Box) {
	if b == nil {
		return
	}
	ts.top().list.AppendKnot(b)
}

// Par ends the current paragraph. Trailing glue is removed and the
// paragraph's knots are appended to the enclosing vertical list, followed by
// a paragraph marker. In other modes Par does nothing.
func (ts *KhipuTypesetter) Par() {
	if ts.top().mode != HorizontalMode || len(ts.nests) < 2 {
		return
	}
	if last := ts.top().list.Last(); last != nil && last.Type() == khipu.KTGlue {
		ts.top().list.RemoveLast()
	}
	para := ts.pop()
	tracer().Debugf("end paragraph with %d knots", para.Length())
	ts.top().list.AppendKhipu(para).AppendKnot(khipu.Par{})
}

// ToggleMath starts or ends a formula in text.
func (ts *KhipuTypesetter) ToggleMath() error {
	switch ts.top().mode {
	case MathMode:
		formula := ts.pop().AppendKnot(khipu.Math{})
		ts.top().list.AppendKhipu(formula)
		return nil
	case DisplayMathMode:
		return ErrDisplayMathEnd
	}
	ts.startParagraph()
	ts.top().list.AppendKnot(khipu.Math{Begin: true})
	ts.push(MathMode)
	return nil
}

// ToggleDisplayMath starts or ends a displayed formula.
func (ts *KhipuTypesetter) ToggleDisplayMath() error {
	switch ts.top().mode {
	case DisplayMathMode:
		formula := ts.pop().AppendKnot(khipu.Math{Display: true})
		ts.top().list.AppendKhipu(formula)
		return nil
	case MathMode:
		return ErrDisplayMathEnd
	}
	ts.startParagraph()
	ts.top().list.AppendKnot(khipu.Math{Begin: true, Display: true})
	ts.push(DisplayMathMode)
	return nil
}

// LastNode returns the last knot of the current list, or nil.
func (ts *KhipuTypesetter) LastNode() khipu.Knot {
	return ts.top().list.Last()
}

// RemoveLastNode removes the last knot of the current list and returns it.
func (ts *KhipuTypesetter) RemoveLastNode() khipu.Knot {
	return ts.top().list.RemoveLast()
}

// OpenList starts a new list in the given mode, e.g. for the contents of a
// box.
func (ts *KhipuTypesetter) OpenList(mode Mode) {
	tracer().Debugf("open list in %s", mode)
	ts.push(mode)
}

// CloseList ends the innermost list and returns its knots. An open paragraph
// within an internal vertical list is ended first. The main vertical list
// cannot be closed.
func (ts *KhipuTypesetter) CloseList() (*khipu.Khipu, error) {
	ts.Par()
	if len(ts.nests) < 2 {
		return nil, ErrNoListToClose
	}
	return ts.pop(), nil
}

// Finish ends an open paragraph and returns the main vertical list. Lists
// which are still open are appended to it.
func (ts *KhipuTypesetter) Finish() *khipu.Khipu {
	ts.Par()
	for len(ts.nests) > 1 {
		l := ts.pop()
		ts.top().list.AppendKhipu(l)
	}
	return ts.top().list
}
