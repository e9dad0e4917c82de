package subtitle

import (
	"errors"
	"fmt"
)

// represents single timed caption, times in seconds
type Caption struct {
	ID        int
	StartTime float64
	EndTime   float64
	Text      string
}

// Duration returns the caption length in seconds.
func (c Caption) Duration() float64 {
	return c.EndTime - c.StartTime
}

// ordered caption track; replaced wholesale, never edited in place
type Sequence []Caption

// End returns the end time of the last caption, or 0 for an empty sequence.
func (s Sequence) End() float64 {
	if len(s) == 0 {
		return 0
	}
	return s[len(s)-1].EndTime
}

// Texts returns the caption texts in order.
func (s Sequence) Texts() []string {
	texts := make([]string, len(s))
	for i, c := range s {
		texts[i] = c.Text
	}
	return texts
}

// WithTexts returns a copy of the sequence with replaced texts and the
// original timing. The receiver is left untouched.
func (s Sequence) WithTexts(texts []string) (Sequence, error) {
	if len(texts) != len(s) {
		return nil, fmt.Errorf(
			"expected %d texts, got %d",
			len(s),
			len(texts),
		)
	}
	out := make(Sequence, len(s))
	for i, c := range s {
		c.Text = texts[i]
		out[i] = c
	}
	return out, nil
}

// represents supported caption file formats
type Format string

const (
	FormatSRT Format = "srt"
	FormatVTT Format = "vtt"
	FormatASS Format = "ass"
)

var (
	// ErrEmptyInput is returned when freeform text is empty or whitespace.
	ErrEmptyInput = errors.New("caption text is empty")

	// ErrNoCaptions is returned by callers when an import yields nothing.
	ErrNoCaptions = errors.New("no subtitles found")
)

// FormatError describes a malformed timestamp or block. The SRT parser
// records these and keeps going.
type FormatError struct {
	Line   int
	Input  string
	Reason string
}

func (e *FormatError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s: %q", e.Line, e.Reason, e.Input)
	}
	return fmt.Sprintf("%s: %q", e.Reason, e.Input)
}

// interface for writing captions to files
type Writer interface {
	Write(seq Sequence, path string) error
}
