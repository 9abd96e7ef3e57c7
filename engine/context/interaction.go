package context

import (
	"fmt"
	"strings"
)

// Interaction is the interaction mode of a run.
type Interaction int8

// Interaction modes, from the least to the most interactive.
const (
	BatchMode      Interaction = iota // omits all stops and terminal output
	NonStopMode                       // omits all stops
	ScrollMode                        // omits error stops
	ErrorStopMode                     // stops at every opportunity to interact
)

var interactionNames = [...]string{"batchmode", "nonstopmode", "scrollmode", "errorstopmode"}

func (i Interaction) String() string {
	if i >= BatchMode && i <= ErrorStopMode {
		return interactionNames[i]
	}
	return fmt.Sprintf("interaction(%d)", int(i))
}

// ParseInteraction reads an interaction mode by name. The suffix "mode" may
// be omitted, e.g. "batch" and "batchmode" are equivalent.
func ParseInteraction(s string) (Interaction, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if !strings.HasSuffix(s, "mode") {
		s += "mode"
	}
	for i, name := range interactionNames {
		if name == s {
			return Interaction(i), nil
		}
	}
	return ErrorStopMode, fmt.Errorf("unknown interaction mode: %q", s)
}
