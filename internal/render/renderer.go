package render

import (
	"image/color"
	"math"
	"strings"

	"github.com/mgpai22/capcanvas/internal/logging"
	"github.com/mgpai22/capcanvas/internal/subtitle"
)

const (
	lineHeightFactor = 1.2
	maxWidthFactor   = 0.9
	checkerSize      = 20
	backdropPadding  = 20
	popDuration      = 0.4
	strokeWidth      = 3
)

var (
	backgroundColors = map[Background]color.NRGBA{
		BackgroundGreen: {G: 0xff, A: 0xff},
		BackgroundBlue:  {B: 0xff, A: 0xff},
		BackgroundBlack: {A: 0xff},
	}
	checkerDark  = color.NRGBA{R: 0xcc, G: 0xcc, B: 0xcc, A: 0xff}
	checkerLight = color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}

	defaultFontColor = color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	outlineColor     = color.NRGBA{A: 0xff}
	highlightColor   = color.NRGBA{R: 0xff, G: 0xff, A: 179}
	backdropFill     = color.NRGBA{A: 179}
	backdropBorder   = color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 77}

	legibilityShadow = Shadow{
		Color:   color.NRGBA{A: 204},
		Blur:    8,
		OffsetX: 2,
		OffsetY: 2,
	}

	keywords = map[string]bool{
		"amazing":    true,
		"technology": true,
		"future":     true,
		"digital":    true,
		"create":     true,
		"better":     true,
	}
)

// Renderer draws caption frames. It keeps per-instance font state and is
// not safe for concurrent use; give each goroutine its own.
type Renderer struct {
	fonts  *FontCache
	logger *logging.Logger
}

func NewRenderer(logger *logging.Logger) *Renderer {
	if logger == nil {
		logger = logging.Nop()
	}
	r := &Renderer{
		fonts:  NewFontCache(),
		logger: logger,
	}
	r.fonts.OnFallback = func(family string, err error) {
		r.logger.Warnw("Font unavailable, using default",
			"family", family,
			"error", err,
		)
	}
	return r
}

// RenderFrame paints the frame for progress in [0,1] of a session lasting
// durationMs. The canvas state is neutral again when it returns.
func (r *Renderer) RenderFrame(
	c *Canvas,
	seq subtitle.Sequence,
	durationMs, progress float64,
	style Style,
) {
	defer c.ResetState()

	c.Clear()
	drawBackground(c, style.Background)

	t := subtitle.ProgressToElapsed(progress, durationMs)
	active, ok := seq.Active(t)
	if !ok {
		return
	}
	r.drawCaption(c, active, t, style)
}

func drawBackground(c *Canvas, bg Background) {
	if bg == BackgroundTransparent {
		for x := 0; x < Width; x += checkerSize {
			for y := 0; y < Height; y += checkerSize {
				col := checkerLight
				if (x+y)%(checkerSize*2) == 0 {
					col = checkerDark
				}
				c.FillRect(float64(x), float64(y), checkerSize, checkerSize, col)
			}
		}
		return
	}

	col, ok := backgroundColors[bg]
	if !ok {
		col = backgroundColors[BackgroundGreen]
	}
	c.FillRect(0, 0, Width, Height, col)
}

func (r *Renderer) drawCaption(c *Canvas, active subtitle.Caption, t float64, style Style) {
	size := style.FontSize.Pixels()
	face := r.fonts.Face(style.FontFamily, size)
	measure := func(s string) float64 { return MeasureText(face, s) }

	fill, err := ParseHexColor(style.FontColor)
	if err != nil {
		fill = defaultFontColor
	}

	lineHeight := size * lineHeightFactor
	lines := WrapLines(measure, DrawableText(active.Text), Width*maxWidthFactor)

	var pop float64
	if style.AnimatedPopIn {
		pop = PopOffset(t-active.StartTime, active.Duration())
	}

	if style.CaptionBackdrop {
		drawBackdrop(c, lines, measure, lineHeight)
	}

	if needsShadow(fill) {
		c.SetShadow(legibilityShadow)
	}
	c.SetStroke(outlineColor, strokeWidth)

	c.Save()
	c.Translate(Width/2, Height/2+pop)

	y := -float64(len(lines))*lineHeight/2 + lineHeight/2
	for _, line := range lines {
		words := strings.Split(line, " ")
		widths := make([]float64, len(words))
		var lineWidth float64
		for i, w := range words {
			widths[i] = measure(w + " ")
			lineWidth += widths[i]
		}

		x := -lineWidth / 2
		for i, w := range words {
			if style.HighlightKeywords && IsKeyword(w) {
				c.FillRect(x, y-lineHeight/2+8, widths[i], lineHeight-12, highlightColor)
			}
			cx := x + widths[i]/2
			c.StrokeText(face, w, cx, y)
			c.FillText(face, w, cx, y, fill)
			x += widths[i]
		}
		y += lineHeight
	}

	c.Restore()
}

// backdrop is centered on the canvas and does not follow the pop offset
func drawBackdrop(c *Canvas, lines []string, measure func(string) float64, lineHeight float64) {
	var maxWidth float64
	for _, line := range lines {
		maxWidth = math.Max(maxWidth, measure(line))
	}

	w := maxWidth + backdropPadding*2
	h := float64(len(lines))*lineHeight + backdropPadding*2
	x := (Width - w) / 2
	y := (Height - h) / 2

	c.FillRect(x, y, w, h, backdropFill)
	c.StrokeRect(x, y, w, h, 2, backdropBorder)
}

// DrawableText replaces tab, line feed, form feed and carriage return with
// spaces. Fonts have no glyph for them and would draw a placeholder box.
func DrawableText(s string) string {
	if !strings.ContainsAny(s, "\t\n\f\r") {
		return s
	}
	return strings.Map(func(r rune) rune {
		switch r {
		case '\t', '\n', '\f', '\r':
			return ' '
		}
		return r
	}, s)
}

// IsKeyword reports whether the word, lowercased, is a highlight keyword.
// Punctuation is not stripped.
func IsKeyword(word string) bool {
	return keywords[strings.ToLower(word)]
}

// WrapLines greedily packs space-separated words into lines no wider than
// maxWidth. A single word wider than maxWidth gets a line of its own.
func WrapLines(measure func(string) float64, text string, maxWidth float64) []string {
	var lines []string
	var current []string

	for _, word := range strings.Split(text, " ") {
		candidate := append(current[:len(current):len(current)], word)
		if len(current) > 0 && measure(strings.Join(candidate, " ")) > maxWidth {
			lines = append(lines, strings.Join(current, " "))
			current = []string{word}
			continue
		}
		current = candidate
	}
	return append(lines, strings.Join(current, " "))
}

// PopOffset returns the vertical pop-in offset in pixels, elapsed seconds
// into a caption lasting duration seconds. The curve eases from 16px down
// to -5px and settles at 0 after 0.4s.
func PopOffset(elapsed, duration float64) float64 {
	p := math.Min(elapsed, duration)
	t := math.Max(0, math.Min(p/popDuration, 1))
	t = 1 - math.Pow(1-t, 3)

	if t < 0.5 {
		return 16 - 21*(t*2)
	}
	return -5 + 5*((t-0.5)*2)
}
