/*
Package font is for typeface and font handling.

There is a certain confusion in the nomenclature of typesetting. We will
stick to the following definitions:

* A "typeface" is a family of fonts. An example is "Helvetica".

* A "scalable font" is a font, i.e. a variant of a typeface with a
certain weight, slant, etc.  An example is "Helvetica regular".

* A "typecase" is a scaled font, i.e. a font in a certain size.
The name is reminiscend on the wooden boxes of typesetters in the aera of
metal type. An example is "Helvetica regular 11pt".

The interpreter sees fonts only through interface Font, which exposes the
glyph metrics a typesetter needs. Fonts are created by a Factory; the
Registry in this package is a factory backed by OpenType fonts found on
the system, with Go Sans as a fallback.

Please note that Go (Golang) does use the terms "font" and "face"
differently–actually more or less in an opposite manner.

----------------------------------------------------------------------

BSD License

Copyright (c) 2017-21, Norbert Pillmayer

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
OF THIS SOFTWARE, EVEN IF ADVISED OF THE POSSIBILITY OF SUCH DAMAGE. */
package font

import (
	"os"
	"sync"

	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/tytex/core/dimen"
	xfont "golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
)

// tracer traces with key 'tytex.font'.
func tracer() tracing.Trace {
	return tracing.Select("tytex.font")
}

// Font is a scaled font as seen by the interpreter and the typesetter.
type Font interface {
	Name() string
	Size() dimen.Dimen
	HasGlyph(r rune) bool
	Width(r rune) dimen.Dimen
	Height(r rune) dimen.Dimen
	Depth(r rune) dimen.Dimen
	ItalicCorrection(r rune) dimen.Dimen
	Space() dimen.Glue // inter-word glue
}

// Factory resolves a font name and a size to a Font.
type Factory interface {
	Font(name string, size dimen.Dimen) (Font, error)
}

// --- Null font -------------------------------------------------------------

type nullFont struct{}

// NullFont is the font which is current if no font has been selected.
// It has no glyphs and all its metrics are zero.
var NullFont Font = nullFont{}

func (nullFont) Name() string                        { return "nullfont" }
func (nullFont) Size() dimen.Dimen                   { return 0 }
func (nullFont) HasGlyph(r rune) bool                { return false }
func (nullFont) Width(r rune) dimen.Dimen            { return 0 }
func (nullFont) Height(r rune) dimen.Dimen           { return 0 }
func (nullFont) Depth(r rune) dimen.Dimen            { return 0 }
func (nullFont) ItalicCorrection(r rune) dimen.Dimen { return 0 }
func (nullFont) Space() dimen.Glue                   { return dimen.ZeroGlue }

// IsNull is true for the null font and for nil.
func IsNull(f Font) bool {
	return f == nil || f == NullFont
}

// --- OpenType fonts --------------------------------------------------------

// ScalableFont is an OpenType font before it has been scaled to a size.
type ScalableFont struct {
	Fontname string
	Filepath string     // file path
	Binary   []byte     // raw data
	SFNT     *sfnt.Font // the font's container
}

// TypeCase is a scalable font at a given size. It implements interface Font.
type TypeCase struct {
	name string
	face xfont.Face // Go uses 'face' and 'font' in an inverse manner
	size dimen.Dimen
}

var _ Font = &TypeCase{}

// LoadOpenTypeFont loads a font from a file.
func LoadOpenTypeFont(fontfile string) (*ScalableFont, error) {
	bytez, err := os.ReadFile(fontfile)
	if err != nil {
		return nil, err
	}
	f, err := ParseOpenTypeFont(bytez)
	if err == nil {
		f.Filepath = fontfile
	}
	return f, err
}

// ParseOpenTypeFont parses the binary data of an OpenType font.
func ParseOpenTypeFont(fbytes []byte) (f *ScalableFont, err error) {
	f = &ScalableFont{Binary: fbytes}
	f.SFNT, err = sfnt.Parse(f.Binary)
	if err != nil {
		return nil, err
	}
	f.Fontname, _ = f.SFNT.Name(nil, sfnt.NameIDFull)
	return
}

// PrepareCase scales a font. We set the resolution to 72.27 dpi, thus one
// pixel of the resulting face is one printers point.
func (sf *ScalableFont) PrepareCase(size dimen.Dimen) (*TypeCase, error) {
	typecase := &TypeCase{name: sf.Fontname}
	if size < dimen.PT || size > 2048*dimen.PT {
		tracer().Errorf("font size must be 1pt < size < 2048pt, is %s (set to 10pt)", size)
		size = 10 * dimen.PT
	}
	options := &opentype.FaceOptions{
		Size: size.Points(),
		DPI:  72.27,
	}
	f, err := opentype.NewFace(sf.SFNT, options)
	if err != nil {
		return nil, err
	}
	typecase.face = f
	typecase.size = size
	return typecase, nil
}

// Name is part of interface Font.
func (tc *TypeCase) Name() string {
	return tc.name
}

// Size is part of interface Font.
func (tc *TypeCase) Size() dimen.Dimen {
	return tc.size
}

// HasGlyph is part of interface Font.
func (tc *TypeCase) HasGlyph(r rune) bool {
	_, ok := tc.face.GlyphAdvance(r)
	return ok
}

// Width is part of interface Font.
func (tc *TypeCase) Width(r rune) dimen.Dimen {
	adv, ok := tc.face.GlyphAdvance(r)
	if !ok {
		return 0
	}
	return fromFixed(adv)
}

// Height is part of interface Font.
func (tc *TypeCase) Height(r rune) dimen.Dimen {
	bounds, _, ok := tc.face.GlyphBounds(r)
	if !ok {
		return 0
	}
	return dimen.Max(0, -fromFixed(bounds.Min.Y))
}

// Depth is part of interface Font.
func (tc *TypeCase) Depth(r rune) dimen.Dimen {
	bounds, _, ok := tc.face.GlyphBounds(r)
	if !ok {
		return 0
	}
	return dimen.Max(0, fromFixed(bounds.Max.Y))
}

// ItalicCorrection is part of interface Font. OpenType fonts do not carry
// an italic correction per glyph outside of the MATH table, so we
// approximate it as the overhang of the glyph's ink over its advance.
func (tc *TypeCase) ItalicCorrection(r rune) dimen.Dimen {
	bounds, adv, ok := tc.face.GlyphBounds(r)
	if !ok {
		return 0
	}
	return dimen.Max(0, fromFixed(bounds.Max.X-adv))
}

// Space is part of interface Font. Stretch and shrink follow the
// proportions of Computer Modern.
func (tc *TypeCase) Space() dimen.Glue {
	w := tc.Width(' ')
	if w == 0 {
		w = tc.size / 3
	}
	return dimen.NewGlue(w, w/2, w/3)
}

// fixed.Int26_6 has 6 bits of fraction, Dimen has 16.
func fromFixed(x fixed.Int26_6) dimen.Dimen {
	return dimen.Dimen(int64(x) << 10)
}

// --- Fallback font ---------------------------------------------------------

// FallbackFont returns a font to be used if everything else failes. It is
// always present. Currently we use Go Sans.
func FallbackFont() *ScalableFont {
	fallbackFontLoading.Do(func() {
		fallbackFont = loadFallbackFont()
	})
	return fallbackFont
}

var fallbackFontLoading sync.Once

// fallbackFont is a font that is used if everything else failes.
// Currently we use Go Sans.
var fallbackFont *ScalableFont

func loadFallbackFont() *ScalableFont {
	var err error
	gofont := &ScalableFont{
		Fontname: "Go Sans",
		Filepath: "internal",
		Binary:   goregular.TTF,
	}
	gofont.SFNT, err = sfnt.Parse(gofont.Binary)
	if err != nil {
		panic("cannot load default font") // this cannot happen
	}
	return gofont
}
