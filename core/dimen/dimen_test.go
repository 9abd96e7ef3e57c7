package dimen

import (
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

func TestParseDimen(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "tytex.core")
	defer teardown()
	//
	d, err := ParseDimen("12pt")
	if err != nil {
		t.Errorf("(1) %s", err.Error())
	} else if d != 12*PT {
		t.Errorf("(1) expected d to be 12pt (%d), is %d", 12*PT, d)
	}
	//
	d, err = ParseDimen("0")
	if err != nil {
		t.Errorf("(2) %s", err.Error())
	} else if d != 0 {
		t.Errorf("(2) expected d to be 0, is %d", d)
	}
	//
	d, err = ParseDimen("1in")
	if err != nil {
		t.Errorf("(3) %s", err.Error())
	} else if d != 4736286 {
		t.Errorf("(3) expected 1in to be 4736286sp, is %d", d)
	}
	//
	d, err = ParseDimen("-.5pt")
	if err != nil {
		t.Errorf("(4) %s", err.Error())
	} else if d != -PT/2 {
		t.Errorf("(4) expected -0.5pt, is %s", d)
	}
	//
	if _, err = ParseDimen("12xy"); err == nil {
		t.Errorf("(5) expected unknown unit to be rejected")
	}
}

func TestFormatScaled(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "tytex.core")
	defer teardown()
	//
	for d, s := range map[Dimen]string{
		0:          "0.0pt",
		PT:         "1.0pt",
		12 * PT:    "12.0pt",
		PT / 2:     "0.5pt",
		-3 * PT:    "-3.0pt",
		PT + PT/4:  "1.25pt",
		Dimen(1):   "0.00002pt",
		Dimen(-1):  "-0.00002pt",
		Dimen(655): "0.01pt",
	} {
		if d.String() != s {
			t.Errorf("expected %d sp to print as %q, is %q", int64(d), s, d.String())
		}
	}
}

func TestGlue(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "tytex.core")
	defer teardown()
	//
	g := NewGlue(3*PT, 1*PT, 2*PT)
	if g.String() != "3.0pt plus 1.0pt minus 2.0pt" {
		t.Errorf("unexpected glue format: %s", g)
	}
	fil := Glue{Natural: 0, Stretch: GlueComponent{PT, Fil}}
	sum := g.Add(fil)
	if sum.Stretch.Order != Fil || sum.Stretch.Value != PT {
		t.Errorf("expected fil stretch to dominate, have %s", sum.Stretch)
	}
	if g.Multiply(2).Natural != 6*PT {
		t.Errorf("expected doubled glue to be 6pt, is %s", g.Multiply(2).Natural)
	}
	if !ZeroGlue.IsZero() || g.IsZero() {
		t.Errorf("IsZero broken")
	}
}
