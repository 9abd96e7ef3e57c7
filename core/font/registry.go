package font

import (
	"fmt"
	"path"
	"strings"
	"sync"

	"github.com/flopp/go-findfont"
	"github.com/npillmayer/tytex/core"
	"github.com/npillmayer/tytex/core/dimen"
	xfont "golang.org/x/image/font"
)

// Registry is a type for holding information about loaded fonts for a
// typesetter. It implements interface Factory.
type Registry struct {
	sync.Mutex
	fonts     map[string]*ScalableFont
	typecases map[string]*TypeCase
	locate    func(name string) (string, error)
}

var _ Factory = &Registry{}

var globalFontRegistry *Registry

var globalRegistryCreation sync.Once

// GlobalRegistry is an application-wide singleton to hold information about
// loaded fonts and typecases.
func GlobalRegistry() *Registry {
	globalRegistryCreation.Do(func() {
		globalFontRegistry = NewRegistry()
	})
	return globalFontRegistry
}

// NewRegistry creates a registry which looks up system fonts with
// go-findfont.
func NewRegistry() *Registry {
	fr := &Registry{
		fonts:     make(map[string]*ScalableFont),
		typecases: make(map[string]*TypeCase),
		locate:    findfont.Find,
	}
	return fr
}

// Font returns a typecase for a font name at a given size. Font is part of
// interface Factory.
//
// If a suitable typecase has already been cached, Font will return the cached
// typecase. If a font has previously been stored under the normalized name,
// a typecase will be derived from this font. Otherwise the registry tries to
// locate a system font file.
//
// If not typecase can be produced, Font will derive one from a system-wide
// fallback font and return it, together with an error.
func (fr *Registry) Font(name string, size dimen.Dimen) (Font, error) {
	if name == "" || name == "nullfont" {
		return NullFont, nil
	}
	style, weight := GuessStyleAndWeight(name)
	normalized := NormalizeFontname(name, style, weight)
	tracer().Debugf("registry searches for font %s at %s", normalized, size)
	fr.Lock()
	defer fr.Unlock()
	tname := appendSize(normalized, size)
	if t, ok := fr.typecases[tname]; ok {
		tracer().Infof("registry found font %s", tname)
		return t, nil
	}
	f, ok := fr.fonts[normalized]
	if !ok {
		f = fr.loadSystemFont(name)
	}
	if f != nil {
		fr.fonts[normalized] = f
		t, err := f.PrepareCase(size)
		if err == nil {
			t.name = name
			tracer().Infof("font registry has font %s, caches at %s", normalized, size)
			fr.typecases[tname] = t
			return t, nil
		}
		tracer().Errorf("cannot scale font %s: %v", name, err)
	}
	tracer().Infof("registry does not contain font %s", name)
	err := core.WrapError(fmt.Errorf("font missing: %s", name), core.EMISSING,
		"font not found: %s", name)
	//
	// store typecase from fallback font, if not present yet, and return it
	fname := "fallback"
	tname = appendSize(fname, size)
	if t, ok := fr.typecases[tname]; ok {
		return t, err
	}
	fallback := FallbackFont()
	t, _ := fallback.PrepareCase(size)
	tracer().Infof("font registry caches fallback font %s at %s", fname, size)
	fr.fonts[fname] = fallback
	fr.typecases[tname] = t
	return t, err
}

func (fr *Registry) loadSystemFont(name string) *ScalableFont {
	if fr.locate == nil {
		return nil
	}
	candidates := []string{name}
	if path.Ext(name) == "" {
		candidates = append(candidates, name+".ttf", name+".otf")
	}
	for _, c := range candidates {
		fpath, err := fr.locate(c)
		if err != nil || fpath == "" {
			continue
		}
		tracer().Debugf("%s is a system font at %s", name, fpath)
		f, err := LoadOpenTypeFont(fpath)
		if err != nil {
			tracer().Errorf("cannot load font file %s: %v", fpath, err)
			continue
		}
		return f
	}
	return nil
}

// NormalizeFontname derives a registry key from a font name, a style and
// a weight.
func NormalizeFontname(fname string, style xfont.Style, weight xfont.Weight) string {
	fname = strings.TrimSpace(fname)
	fname = strings.ReplaceAll(fname, " ", "_")
	if dot := strings.LastIndex(fname, "."); dot > 0 {
		fname = fname[:dot]
	}
	fname = strings.ToLower(fname)
	switch style {
	case xfont.StyleItalic, xfont.StyleOblique:
		fname += "-italic"
	}
	switch weight {
	case xfont.WeightLight, xfont.WeightExtraLight:
		fname += "-light"
	case xfont.WeightBold, xfont.WeightExtraBold, xfont.WeightSemiBold:
		fname += "-bold"
	}
	return fname
}

func appendSize(fname string, size dimen.Dimen) string {
	return fmt.Sprintf("%s-%s", fname, dimen.FormatScaled(int64(size)))
}

// GuessStyleAndWeight trys to guess a font's style and weight from the
// font's file name.
func GuessStyleAndWeight(fontfilename string) (xfont.Style, xfont.Weight) {
	fontfilename = path.Base(fontfilename)
	ext := path.Ext(fontfilename)
	fontfilename = strings.ToLower(fontfilename[:len(fontfilename)-len(ext)])
	s := strings.Split(fontfilename, "-")
	if len(s) > 1 {
		switch s[len(s)-1] {
		case "light", "xlight":
			return xfont.StyleNormal, xfont.WeightLight
		case "normal", "medium", "regular", "r":
			return xfont.StyleNormal, xfont.WeightNormal
		case "bold", "b":
			return xfont.StyleNormal, xfont.WeightBold
		case "xbold", "black":
			return xfont.StyleNormal, xfont.WeightExtraBold
		}
	}
	style, weight := xfont.StyleNormal, xfont.WeightNormal
	if strings.Contains(fontfilename, "italic") {
		style = xfont.StyleItalic
	}
	if strings.Contains(fontfilename, "light") {
		weight = xfont.WeightLight
	}
	if strings.Contains(fontfilename, "bold") {
		weight = xfont.WeightBold
	}
	return style, weight
}
