package interpreter

import (
	"strconv"
	"strings"

	"github.com/npillmayer/schuko/gconf"
	"github.com/npillmayer/tytex/core"
	"github.com/npillmayer/tytex/core/parameters"
	"github.com/npillmayer/tytex/engine/context"
	"golang.org/x/text/language"
)

// Configuration keys
const (
	KeyMaxErrors   = "tytex.maxerrors"
	KeyMaxMag      = "tytex.maxmag"
	KeyInteraction = "tytex.interaction"
	KeyLanguage    = "tytex.language"
)

// Config holds the settings of a run.
type Config struct {
	MaxErrors        int                 // recoverable errors allowed before the run stops
	MaxMagnification int64               // upper bound for \mag
	Interaction      context.Interaction // initial interaction mode
	Language         language.Tag        // language of error messages
}

// DefaultConfig returns the settings used if nothing is configured.
func DefaultConfig() Config {
	return Config{
		MaxErrors:        100,
		MaxMagnification: context.DefaultMaxMagnification,
		Interaction:      context.ErrorStopMode,
		Language:         language.English,
	}
}

// ConfigFromGlobal reads the settings from the global configuration. Keys
// which are not set keep their default value. Malformed values result in an
// error with code core.ECONFIG.
func ConfigFromGlobal() (Config, error) {
	c := DefaultConfig()
	if s := strings.TrimSpace(gconf.GetString(KeyMaxErrors)); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			return c, core.Error(core.ECONFIG, "%s must be a non-negative number: %q", KeyMaxErrors, s)
		}
		c.MaxErrors = n
	}
	if s := strings.TrimSpace(gconf.GetString(KeyMaxMag)); s != "" {
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil || n < 1 {
			return c, core.Error(core.ECONFIG, "%s must be a positive number: %q", KeyMaxMag, s)
		}
		c.MaxMagnification = n
	}
	if s := gconf.GetString(KeyInteraction); s != "" {
		mode, err := context.ParseInteraction(s)
		if err != nil {
			return c, core.WrapError(err, core.ECONFIG, "%s: %v", KeyInteraction, err)
		}
		c.Interaction = mode
	}
	if s := gconf.GetString(KeyLanguage); s != "" {
		tag, err := parameters.ParseLanguage(s)
		if err != nil {
			return c, core.WrapError(err, core.ECONFIG, "%s: %v", KeyLanguage, err)
		}
		c.Language = tag
	}
	tracer().Debugf("config: max errors = %d, max mag = %d, interaction = %s, language = %s",
		c.MaxErrors, c.MaxMagnification, c.Interaction, c.Language)
	return c, nil
}
