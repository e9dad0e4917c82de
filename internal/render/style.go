package render

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// FontSize is a named caption size category.
type FontSize string

const (
	FontSmall      FontSize = "small"
	FontMedium     FontSize = "medium"
	FontLarge      FontSize = "large"
	FontExtraLarge FontSize = "extra-large"
)

var fontSizePixels = map[FontSize]float64{
	FontSmall:      48,
	FontMedium:     64,
	FontLarge:      80,
	FontExtraLarge: 96,
}

// Pixels maps the category to its pixel size. Unknown categories are
// treated as medium.
func (s FontSize) Pixels() float64 {
	if px, ok := fontSizePixels[s]; ok {
		return px
	}
	return fontSizePixels[FontMedium]
}

// Background selects what is painted behind the captions.
type Background string

const (
	BackgroundGreen       Background = "green"
	BackgroundBlue        Background = "blue"
	BackgroundBlack       Background = "black"
	BackgroundTransparent Background = "transparent"
)

// Style is an immutable snapshot of the caption look. It is read once per
// frame so edits apply on the next frame.
type Style struct {
	FontFamily        string     `mapstructure:"font_family"`
	FontColor         string     `mapstructure:"font_color" validate:"omitempty,hexcolor"`
	FontSize          FontSize   `mapstructure:"font_size" validate:"omitempty,oneof=small medium large extra-large"`
	HighlightKeywords bool       `mapstructure:"highlight_keywords"`
	AnimatedPopIn     bool       `mapstructure:"animated_pop_in"`
	Background        Background `mapstructure:"background" validate:"omitempty,oneof=green blue black transparent"`
	CaptionBackdrop   bool       `mapstructure:"caption_backdrop"`
}

// DefaultStyle is white medium text on green with no effects.
func DefaultStyle() Style {
	return Style{
		FontFamily: DefaultFontFamily,
		FontColor:  "#ffffff",
		FontSize:   FontMedium,
		Background: BackgroundGreen,
	}
}

// StyleSource hands out the current style. Implementations used by an
// export must be safe for concurrent use.
type StyleSource interface {
	Style() Style
}

// StaticStyle is a StyleSource that never changes.
type StaticStyle Style

func (s StaticStyle) Style() Style {
	return Style(s)
}

// ParseHexColor parses #rgb, #rgba, #rrggbb and #rrggbbaa. The leading
// '#' is optional.
func ParseHexColor(s string) (color.NRGBA, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")

	switch len(hex) {
	case 3, 4:
		var sb strings.Builder
		for _, r := range hex {
			sb.WriteRune(r)
			sb.WriteRune(r)
		}
		hex = sb.String()
	case 6, 8:
	default:
		return color.NRGBA{}, fmt.Errorf("invalid hex color %q", s)
	}
	if len(hex) == 6 {
		hex += "ff"
	}

	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid hex color %q: %w", s, err)
	}
	return color.NRGBA{
		R: uint8(v >> 24),
		G: uint8(v >> 16),
		B: uint8(v >> 8),
		A: uint8(v),
	}, nil
}

// pure white and pure yellow get a drop shadow for legibility
func needsShadow(c color.NRGBA) bool {
	return c.A == 0xff && c.R == 0xff && c.G == 0xff && (c.B == 0xff || c.B == 0)
}
