package parameters

import (
	"image/color"
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/npillmayer/tytex/core/font"
	"github.com/stretchr/testify/assert"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/bidi"
)

func TestTypesettingContextCopies(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "tytex.core")
	defer teardown()
	//
	tc := DefaultTypesettingContext()
	assert.True(t, font.IsNull(tc.Font))
	rtl := tc.WithDirection(bidi.RightToLeft)
	assert.Equal(t, bidi.LeftToRight, tc.Direction, "original must not change")
	assert.Equal(t, "RTL", DirectionString(rtl.Direction))
	red := tc.WithColor(color.RGBA{R: 255, A: 255})
	assert.Equal(t, color.Black, tc.Color)
	assert.NotEqual(t, tc.Color, red.Color)
	assert.True(t, font.IsNull(tc.WithFont(nil).Font))
}

func TestParseLanguage(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "tytex.core")
	defer teardown()
	//
	de, err := ParseLanguage("de-AT")
	assert.NoError(t, err)
	base, _ := de.Base()
	assert.Equal(t, "de", base.String())
	l, err := ParseLanguage("not a language!")
	assert.Error(t, err)
	assert.Equal(t, language.English, l)
}
