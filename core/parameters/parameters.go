/*
License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/

// Package parameters holds the typesetting attributes which travel with
// every character handed to a typesetter.
package parameters

import (
	"image/color"

	"golang.org/x/text/language"
	"golang.org/x/text/unicode/bidi"

	"github.com/npillmayer/tytex/core/font"
)

// TypesettingContext is the set of attributes in effect for a character:
// font, color, writing direction and language. Values are immutable;
// the With… methods return modified copies.
type TypesettingContext struct {
	Font      font.Font
	Color     color.Color
	Direction bidi.Direction
	Language  language.Tag
}

// DefaultTypesettingContext returns the attributes in effect at the start
// of a run: null font, black, left-to-right, English.
func DefaultTypesettingContext() TypesettingContext {
	return TypesettingContext{
		Font:      font.NullFont,
		Color:     color.Black,
		Direction: bidi.LeftToRight,
		Language:  language.English,
	}
}

// WithFont returns a copy with a different font.
func (tc TypesettingContext) WithFont(f font.Font) TypesettingContext {
	if f == nil {
		f = font.NullFont
	}
	tc.Font = f
	return tc
}

// WithColor returns a copy with a different color.
func (tc TypesettingContext) WithColor(c color.Color) TypesettingContext {
	tc.Color = c
	return tc
}

// WithDirection returns a copy with a different writing direction.
func (tc TypesettingContext) WithDirection(d bidi.Direction) TypesettingContext {
	tc.Direction = d
	return tc
}

// WithLanguage returns a copy with a different language.
func (tc TypesettingContext) WithLanguage(l language.Tag) TypesettingContext {
	tc.Language = l
	return tc
}

// ParseLanguage parses a BCP 47 language tag, returning English for
// malformed tags.
func ParseLanguage(s string) (language.Tag, error) {
	tag, err := language.Parse(s)
	if err != nil {
		return language.English, err
	}
	return tag, nil
}

// DirectionString returns a short name for a writing direction.
func DirectionString(d bidi.Direction) string {
	switch d {
	case bidi.LeftToRight:
		return "LTR"
	case bidi.RightToLeft:
		return "RTL"
	case bidi.Mixed:
		return "mixed"
	}
	return "neutral"
}
