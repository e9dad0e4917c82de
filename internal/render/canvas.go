package render

import (
	"image"
	"image/color"
	"math"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

// fixed output resolution
const (
	Width  = 1920
	Height = 1080
)

// blur is approximated with repeated box blurs
const blurPasses = 3

// Shadow describes a drop shadow applied to text drawing.
type Shadow struct {
	Color   color.NRGBA
	Blur    float64
	OffsetX float64
	OffsetY float64
}

func (s Shadow) visible() bool {
	return s.Color.A > 0
}

type canvasState struct {
	tx, ty      float64
	shadow      Shadow
	strokeColor color.NRGBA
	lineWidth   float64
}

// Canvas is an RGBA raster with a small 2D drawing context: a translation,
// a text shadow, a stroke style and a save/restore stack.
type Canvas struct {
	img   *image.RGBA
	st    canvasState
	stack []canvasState
}

func NewCanvas() *Canvas {
	return &Canvas{img: image.NewRGBA(image.Rect(0, 0, Width, Height))}
}

// Image exposes the backing raster. It is overwritten by the next render.
func (c *Canvas) Image() *image.RGBA {
	return c.img
}

func (c *Canvas) Save() {
	c.stack = append(c.stack, c.st)
}

// Restore pops the last saved state. Unbalanced calls are ignored.
func (c *Canvas) Restore() {
	if len(c.stack) == 0 {
		return
	}
	c.st = c.stack[len(c.stack)-1]
	c.stack = c.stack[:len(c.stack)-1]
}

// ResetState drops the save stack and returns to the neutral state.
func (c *Canvas) ResetState() {
	c.st = canvasState{}
	c.stack = c.stack[:0]
}

func (c *Canvas) Translate(dx, dy float64) {
	c.st.tx += dx
	c.st.ty += dy
}

func (c *Canvas) SetShadow(s Shadow) {
	c.st.shadow = s
}

func (c *Canvas) SetStroke(col color.NRGBA, lineWidth float64) {
	c.st.strokeColor = col
	c.st.lineWidth = lineWidth
}

// Clear makes every pixel transparent.
func (c *Canvas) Clear() {
	draw.Draw(c.img, c.img.Bounds(), image.Transparent, image.Point{}, draw.Src)
}

// FillRect composites col over the rectangle, honoring the translation.
func (c *Canvas) FillRect(x, y, w, h float64, col color.Color) {
	r := image.Rect(
		round(x+c.st.tx), round(y+c.st.ty),
		round(x+w+c.st.tx), round(y+h+c.st.ty),
	)
	draw.Draw(c.img, r, image.NewUniform(col), image.Point{}, draw.Over)
}

// StrokeRect outlines the rectangle with a line centered on its edges.
func (c *Canvas) StrokeRect(x, y, w, h, lineWidth float64, col color.Color) {
	half := lineWidth / 2
	c.FillRect(x-half, y-half, w+lineWidth, lineWidth, col)
	c.FillRect(x-half, y+h-half, w+lineWidth, lineWidth, col)
	c.FillRect(x-half, y+half, lineWidth, h-lineWidth, col)
	c.FillRect(x+w-half, y+half, lineWidth, h-lineWidth, col)
}

// FillText draws s centered horizontally on x with its middle on y.
func (c *Canvas) FillText(face font.Face, s string, x, y float64, col color.NRGBA) {
	c.paintMask(c.textMask(face, s, x, y), col)
}

// StrokeText outlines s with the current stroke style.
func (c *Canvas) StrokeText(face font.Face, s string, x, y float64) {
	if c.st.lineWidth <= 0 || c.st.strokeColor.A == 0 {
		return
	}
	mask := dilate(c.textMask(face, s, x, y), c.st.lineWidth/2)
	c.paintMask(mask, c.st.strokeColor)
}

// MeasureText returns the advance width of s in pixels.
func MeasureText(face font.Face, s string) float64 {
	return fixedToFloat(font.MeasureString(face, s))
}

func (c *Canvas) paintMask(mask *image.Alpha, col color.NRGBA) {
	if sh := c.st.shadow; sh.visible() {
		shadowMask := mask
		if r := blurRadius(sh.Blur); r > 0 {
			shadowMask = boxBlur(mask, r, blurPasses)
		}
		off := image.Pt(round(sh.OffsetX), round(sh.OffsetY))
		draw.DrawMask(c.img, shadowMask.Bounds().Add(off), image.NewUniform(sh.Color),
			image.Point{}, shadowMask, shadowMask.Bounds().Min, draw.Over)
	}
	draw.DrawMask(c.img, mask.Bounds(), image.NewUniform(col),
		image.Point{}, mask, mask.Bounds().Min, draw.Over)
}

// textMask rasterizes s into an alpha mask in canvas coordinates, padded
// so that stroke and blur have room to spread.
func (c *Canvas) textMask(face font.Face, s string, x, y float64) *image.Alpha {
	width := MeasureText(face, s)
	m := face.Metrics()
	ascent, descent := fixedToFloat(m.Ascent), fixedToFloat(m.Descent)

	left := x + c.st.tx - width/2
	baseline := y + c.st.ty + (ascent-descent)/2

	pad := int(math.Ceil(c.st.lineWidth/2)) + 4
	if c.st.shadow.visible() {
		pad += blurRadius(c.st.shadow.Blur) * blurPasses
	}

	bounds := image.Rect(
		int(math.Floor(left))-pad,
		int(math.Floor(baseline-ascent))-pad,
		int(math.Ceil(left+width))+pad,
		int(math.Ceil(baseline+descent))+pad,
	)
	mask := image.NewAlpha(bounds)

	d := font.Drawer{
		Dst:  mask,
		Src:  image.Opaque,
		Face: face,
		Dot:  fixed.Point26_6{X: floatToFixed(left), Y: floatToFixed(baseline)},
	}
	d.DrawString(s)
	return mask
}

// blurRadius converts a blur amount (sigma = blur/2) into the radius of
// the box filter that approximates it in blurPasses passes.
func blurRadius(blur float64) int {
	if blur <= 0 {
		return 0
	}
	sigma := blur / 2
	w := math.Sqrt(12*sigma*sigma/blurPasses + 1)
	return int(math.Round((w - 1) / 2))
}

func boxBlur(src *image.Alpha, radius, passes int) *image.Alpha {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()

	buf := make([]int, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			buf[y*w+x] = int(src.Pix[y*src.Stride+x])
		}
	}
	tmp := make([]int, w*h)

	for p := 0; p < passes; p++ {
		blurLines(buf, tmp, h, w, w, 1, radius)
		blurLines(tmp, buf, w, h, 1, w, radius)
	}

	dst := image.NewAlpha(b)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			dst.Pix[y*dst.Stride+x] = uint8(buf[y*w+x])
		}
	}
	return dst
}

// blurLines runs a sliding-window average along each line. Samples past
// either end count as zero.
func blurLines(src, dst []int, lines, length, lineStride, step, r int) {
	div := 2*r + 1
	for l := 0; l < lines; l++ {
		base := l * lineStride
		sum := 0
		for i := 0; i <= r && i < length; i++ {
			sum += src[base+i*step]
		}
		for i := 0; i < length; i++ {
			dst[base+i*step] = sum / div
			if i+r+1 < length {
				sum += src[base+(i+r+1)*step]
			}
			if i-r >= 0 {
				sum -= src[base+(i-r)*step]
			}
		}
	}
}

// dilate grows the mask by radius pixels, taking the max alpha under a
// disc.
func dilate(src *image.Alpha, radius float64) *image.Alpha {
	ri := int(math.Ceil(radius))
	var offsets []image.Point
	for dy := -ri; dy <= ri; dy++ {
		for dx := -ri; dx <= ri; dx++ {
			if float64(dx*dx+dy*dy) <= radius*radius {
				offsets = append(offsets, image.Pt(dx, dy))
			}
		}
	}

	b := src.Bounds()
	dst := image.NewAlpha(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			var best uint8
			for _, o := range offsets {
				p := image.Pt(x+o.X, y+o.Y)
				if !p.In(b) {
					continue
				}
				if a := src.AlphaAt(p.X, p.Y).A; a > best {
					best = a
				}
			}
			dst.SetAlpha(x, y, color.Alpha{A: best})
		}
	}
	return dst
}

func round(v float64) int {
	return int(math.Round(v))
}

func fixedToFloat(v fixed.Int26_6) float64 {
	return float64(v) / 64
}

func floatToFixed(v float64) fixed.Int26_6 {
	return fixed.Int26_6(math.Round(v * 64))
}
