package playback

import (
	"fmt"
	"io"

	"github.com/mgpai22/capcanvas/internal/subtitle"
)

// Readout displays playback position. Values are in seconds.
type Readout interface {
	Update(elapsed, total float64)
}

// FormatReadout renders "M:SS / M:SS".
func FormatReadout(elapsed, total float64) string {
	return subtitle.FormatClock(elapsed) + " / " + subtitle.FormatClock(total)
}

// TextReadout rewrites a single terminal line with the current position.
type TextReadout struct {
	W    io.Writer
	last string
}

func (r *TextReadout) Update(elapsed, total float64) {
	text := FormatReadout(elapsed, total)
	if text == r.last {
		return
	}
	r.last = text
	fmt.Fprintf(r.W, "\r%s", text)
}

// Text returns the last value shown.
func (r *TextReadout) Text() string {
	return r.last
}

type nopReadout struct{}

func (nopReadout) Update(float64, float64) {}
