package typesetter

import (
	"fmt"

	"github.com/npillmayer/tytex/core/dimen"
	"github.com/npillmayer/tytex/core/parameters"
	"github.com/npillmayer/tytex/engine/khipu"
)

// Recorder is a Typesetter which records a textual trace of every event and
// forwards it to another typesetter. Events are recorded as, e.g.,
// "letter a", "space", "kern 1.0pt" or "par".
type Recorder struct {
	Typesetter
	Events []string
}

var _ Typesetter = &Recorder{}

// NewRecorder creates a recorder forwarding to ts. If ts is nil, a
// KhipuTypesetter is used.
func NewRecorder(ts Typesetter) *Recorder {
	if ts == nil {
		ts = NewKhipuTypesetter()
	}
	return &Recorder{Typesetter: ts}
}

func (rec *Recorder) record(format string, args ...interface{}) {
	rec.Events = append(rec.Events, fmt.Sprintf(format, args...))
}

// Letters returns the characters of all "letter" events.
func (rec *Recorder) Letters() []string {
	var letters []string
	for _, e := range rec.Events {
		var s string
		if n, _ := fmt.Sscanf(e, "letter %s", &s); n == 1 {
			letters = append(letters, s)
		}
	}
	return letters
}

// Add records "letter c".
func (rec *Recorder) Add(tc parameters.TypesettingContext, r rune) {
	rec.record("letter %c", r)
	rec.Typesetter.Add(tc, r)
}

// AddSpace records "space".
func (rec *Recorder) AddSpace(tc parameters.TypesettingContext, sf int64) {
	rec.record("space")
	rec.Typesetter.AddSpace(tc, sf)
}

// AddGlue records "glue g".
func (rec *Recorder) AddGlue(g dimen.Glue) {
	rec.record("glue %s", g)
	rec.Typesetter.AddGlue(g)
}

// AddKern records "kern k".
func (rec *Recorder) AddKern(k dimen.Dimen) {
	rec.record("kern %s", k)
	rec.Typesetter.AddKern(k)
}

// AddPenalty records "penalty p".
func (rec *Recorder) AddPenalty(p int64) {
	rec.record("penalty %d", p)
	rec.Typesetter.AddPenalty(p)
}

// AddBox records "box".
func (rec *Recorder) AddBox(b *khipu.Box) {
	rec.record("box")
	rec.Typesetter.AddBox(b)
}

// Par records "par".
func (rec *Recorder) Par() {
	rec.record("par")
	rec.Typesetter.Par()
}

// ToggleMath records "math".
func (rec *Recorder) ToggleMath() error {
	rec.record("math")
	return rec.Typesetter.ToggleMath()
}

// ToggleDisplayMath records "displaymath".
func (rec *Recorder) ToggleDisplayMath() error {
	rec.record("displaymath")
	return rec.Typesetter.ToggleDisplayMath()
}
