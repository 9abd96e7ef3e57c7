package dimen

import (
	"fmt"
	"strings"
)

// Order is the order of infinity of a glue component.
type Order int8

// Orders of infinity
const (
	Finite Order = iota
	Fil
	Fill
	Filll
)

func (o Order) String() string {
	switch o {
	case Fil:
		return "fil"
	case Fill:
		return "fill"
	case Filll:
		return "filll"
	}
	return "pt"
}

// GlueComponent is the stretch or shrink part of a glue.
type GlueComponent struct {
	Value Dimen
	Order Order
}

func (c GlueComponent) String() string {
	return FormatScaled(int64(c.Value)) + c.Order.String()
}

// Glue is a length with stretchability and shrinkability.
type Glue struct {
	Natural Dimen
	Stretch GlueComponent
	Shrink  GlueComponent
}

// ZeroGlue is a glue of zero length which can neither stretch nor shrink.
var ZeroGlue = Glue{}

// FixedGlue returns a glue with a natural length and no flexibility.
func FixedGlue(d Dimen) Glue {
	return Glue{Natural: d}
}

// NewGlue creates a glue with finite stretch and shrink.
func NewGlue(w, stretch, shrink Dimen) Glue {
	return Glue{
		Natural: w,
		Stretch: GlueComponent{Value: stretch},
		Shrink:  GlueComponent{Value: shrink},
	}
}

// IsZero is true for a glue without natural size and flexibility.
func (g Glue) IsZero() bool {
	return g == ZeroGlue
}

// Add adds two glues. Infinite components of higher order dominate
// components of lower order.
func (g Glue) Add(other Glue) Glue {
	return Glue{
		Natural: g.Natural + other.Natural,
		Stretch: addComponent(g.Stretch, other.Stretch),
		Shrink:  addComponent(g.Shrink, other.Shrink),
	}
}

func addComponent(a, b GlueComponent) GlueComponent {
	switch {
	case a.Order == b.Order:
		return GlueComponent{a.Value + b.Value, a.Order}
	case b.Value != 0 && (b.Order > a.Order || a.Value == 0):
		return b
	}
	return a
}

// Multiply multiplies all components of a glue by n.
func (g Glue) Multiply(n int64) Glue {
	g.Natural *= Dimen(n)
	g.Stretch.Value *= Dimen(n)
	g.Shrink.Value *= Dimen(n)
	return g
}

// Divide divides all components of a glue by n, truncating. n must not be 0.
func (g Glue) Divide(n int64) Glue {
	g.Natural /= Dimen(n)
	g.Stretch.Value /= Dimen(n)
	g.Shrink.Value /= Dimen(n)
	return g
}

// String formats a glue as TeX does, e.g. "3.0pt plus 1.0fil minus 2.0pt".
func (g Glue) String() string {
	var b strings.Builder
	b.WriteString(g.Natural.String())
	if g.Stretch.Value != 0 {
		fmt.Fprintf(&b, " plus %s", g.Stretch)
	}
	if g.Shrink.Value != 0 {
		fmt.Fprintf(&b, " minus %s", g.Shrink)
	}
	return b.String()
}
