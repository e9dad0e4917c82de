package render

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gomedium"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/opentype"
)

// DefaultFontFamily is used for empty or unresolvable family names.
const DefaultFontFamily = "go"

var builtinFonts = map[string][]byte{
	"go":        gobold.TTF,
	"go bold":   gobold.TTF,
	"go medium": gomedium.TTF,
	"go mono":   gomonobold.TTF,
}

type faceKey struct {
	family string
	size   float64
}

// FontCache resolves family names to faces and keeps them for reuse.
// Faces are not safe for concurrent use, so every Renderer owns its own
// cache.
type FontCache struct {
	// OnFallback is called once per family that could not be loaded.
	OnFallback func(family string, err error)

	fonts map[string]*opentype.Font
	faces map[faceKey]font.Face
}

func NewFontCache() *FontCache {
	return &FontCache{
		fonts: make(map[string]*opentype.Font),
		faces: make(map[faceKey]font.Face),
	}
}

// Face returns a face for family at size pixels. family is a builtin name
// or a path to a .ttf/.otf file; anything else uses the default family.
func (fc *FontCache) Face(family string, size float64) font.Face {
	key := faceKey{family: normalizeFamily(family), size: size}
	if face, ok := fc.faces[key]; ok {
		return face
	}

	var face font.Face = basicfont.Face7x13
	if f := fc.font(key.family); f != nil {
		var err error
		face, err = opentype.NewFace(f, &opentype.FaceOptions{
			Size:    size,
			DPI:     72,
			Hinting: font.HintingNone,
		})
		if err != nil {
			fc.fallback(key.family, fmt.Errorf("failed to create face: %w", err))
			face = basicfont.Face7x13
		}
	}

	fc.faces[key] = face
	return face
}

func (fc *FontCache) font(family string) *opentype.Font {
	if f, ok := fc.fonts[family]; ok {
		return f
	}

	f, err := loadFont(family)
	if err != nil {
		fc.fallback(family, err)
		f = nil
		if family != DefaultFontFamily {
			f = fc.font(DefaultFontFamily)
		}
	}
	fc.fonts[family] = f
	return f
}

func (fc *FontCache) fallback(family string, err error) {
	if fc.OnFallback != nil {
		fc.OnFallback(family, err)
	}
}

func loadFont(family string) (*opentype.Font, error) {
	if data, ok := builtinFonts[family]; ok {
		return opentype.Parse(data)
	}

	if !isFontFile(family) {
		return nil, fmt.Errorf("unknown font family %q", family)
	}
	data, err := os.ReadFile(family)
	if err != nil {
		return nil, fmt.Errorf("failed to read font file: %w", err)
	}
	f, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse font file: %w", err)
	}
	return f, nil
}

func normalizeFamily(family string) string {
	family = strings.TrimSpace(family)
	if family == "" {
		return DefaultFontFamily
	}
	if isFontFile(family) {
		return family
	}
	return strings.ToLower(family)
}

func isFontFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".ttf", ".otf":
		return true
	}
	return false
}
