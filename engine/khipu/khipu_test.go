package khipu

import (
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/npillmayer/tytex/core/dimen"
	"github.com/npillmayer/tytex/core/parameters"
)

func TestDimen(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "tytex.khipu")
	defer teardown()
	//
	if dimen.PT.String() != "1.0pt" {
		t.Error("a printers point PT should print as 1.0pt")
	}
}

func TestKhipu(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "tytex.khipu")
	defer teardown()
	//
	tc := parameters.DefaultTypesettingContext()
	kh := NewKhipu()
	kh.AppendKnot(Kern(dimen.PT)).AppendKnot(NewGlue(5*dimen.PT, dimen.PT, 2*dimen.PT))
	kh.AppendKnot(NewGlyph('H', tc)).AppendKnot(Penalty(100))
	t.Logf("khipu = %s\n", kh.String())
	if kh.Length() != 4 {
		t.Errorf("Length of khipu should be 4")
	}
	if kh.Last().Type() != KTPenalty {
		t.Errorf("last knot should be a penalty, is %s", kh.Last().Type())
	}
	kh.RemoveLast()
	if kh.Length() != 3 || kh.Last().Type() != KTGlyph {
		t.Errorf("expected glyph to be last after removing the penalty")
	}
}

func TestText(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "tytex.khipu")
	defer teardown()
	//
	tc := parameters.DefaultTypesettingContext()
	kh := NewKhipu()
	for _, r := range "lime" {
		kh.AppendKnot(NewGlyph(r, tc))
	}
	kh.AppendKnot(Glue{Glue: dimen.FixedGlue(dimen.PT), Space: true})
	kh.AppendKnot(Pack(HBox, NewKhipu().AppendKnot(NewGlyph('x', tc))))
	if out := kh.Text(0, kh.Length()); out != "lime x" {
		t.Errorf("expected text 'lime x', have %q", out)
	}
	n := 0
	c := NewCursor(kh)
	for c.Next() {
		if c.AsGlyph() != nil {
			n++
		}
	}
	if n != 4 {
		t.Errorf("expected 4 glyphs, counted %d", n)
	}
}

func TestPack(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "tytex.khipu")
	defer teardown()
	//
	kh := NewKhipu().AppendKnot(Kern(2 * dimen.PT)).AppendKnot(NewGlue(3*dimen.PT, 0, 0))
	box := Pack(HBox, kh)
	if box.Width != 5*dimen.PT {
		t.Errorf("expected box width of 5pt, is %s", box.Width)
	}
	cp := box.Copy()
	cp.List.AppendKnot(Kern(dimen.PT))
	if box.List.Length() != 2 {
		t.Errorf("copy must not share the knot list")
	}
}
