package font

import (
	"errors"
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/npillmayer/tytex/core"
	"github.com/npillmayer/tytex/core/dimen"
	xfont "golang.org/x/image/font"
)

type sw struct {
	s xfont.Style
	w xfont.Weight
}

func TestGuess(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "tytex.font")
	defer teardown()
	//
	for k, v := range map[string]sw{
		"fonts/Clarendon-bold.ttf":               {xfont.StyleNormal, xfont.WeightBold},
		"Microsoft/Gill Sans MT Bold Italic.ttf": {xfont.StyleItalic, xfont.WeightBold},
		"Cambria Math.ttf":                       {xfont.StyleNormal, xfont.WeightNormal},
	} {
		style, weight := GuessStyleAndWeight(k)
		if style != v.s || weight != v.w {
			t.Errorf("expected different style or weight for %s", k)
		}
	}
}

func TestNormalizeFont(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "tytex.font")
	defer teardown()
	//
	n := NormalizeFontname("Clarendon", xfont.StyleItalic, xfont.WeightBold)
	if n != "clarendon-italic-bold" {
		t.Errorf("expected different normalized name for clarendon, got %s", n)
	}
}

func TestNullFont(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "tytex.font")
	defer teardown()
	//
	if !IsNull(NullFont) || !IsNull(nil) {
		t.Errorf("expected null font to be recognized")
	}
	if NullFont.Width('x') != 0 || NullFont.HasGlyph('x') {
		t.Errorf("null font must not have glyphs")
	}
	r := NewRegistry()
	f, err := r.Font("nullfont", 10*dimen.PT)
	if err != nil || !IsNull(f) {
		t.Errorf("expected registry to deliver the null font for 'nullfont'")
	}
}

func TestFallbackTypeCase(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "tytex.font")
	defer teardown()
	//
	r := NewRegistry()
	r.locate = func(string) (string, error) {
		return "", errors.New("no system fonts during tests")
	}
	f, err := r.Font("does-not-exist", 10*dimen.PT)
	if err == nil {
		t.Fatalf("expected missing font to be reported")
	}
	if core.Code(err) != core.EMISSING {
		t.Errorf("expected error code EMISSING, have %d", core.Code(err))
	}
	if IsNull(f) {
		t.Fatalf("expected fallback font, have null font")
	}
	if f.Size() != 10*dimen.PT {
		t.Errorf("expected fallback at 10pt, is %s", f.Size())
	}
	if f.Width('M') <= 0 || f.Height('M') <= 0 {
		t.Errorf("expected fallback glyph 'M' to have positive width and height")
	}
	if f.Depth('g') <= 0 {
		t.Errorf("expected 'g' to have a descender")
	}
	if f.Space().Natural <= 0 {
		t.Errorf("expected positive inter-word space")
	}
	g, _ := r.Font("does-not-exist", 10*dimen.PT)
	if g != f {
		t.Errorf("expected fallback typecase to be cached")
	}
}
