package subtitle

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
)

// SubRip format
type SRTWriter struct{}

// WebVTT format
type VTTWriter struct{}

// Advanced SubStation Alpha format
type ASSWriter struct {
	Title    string
	FontName string
	FontSize int
}

func NewWriter(format Format) (Writer, error) {
	switch format {
	case FormatSRT:
		return &SRTWriter{}, nil
	case FormatVTT:
		return &VTTWriter{}, nil
	case FormatASS:
		return &ASSWriter{
			Title:    "capcanvas captions",
			FontName: "Arial",
			FontSize: 64,
		}, nil
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}

// WriteSRT serializes captions as SRT with LF line endings and 1-based
// indices taken from slice position.
func WriteSRT(w io.Writer, seq Sequence) error {
	for i, c := range seq {
		_, err := fmt.Fprintf(w, "%d\n%s --> %s\n%s\n\n",
			i+1,
			FormatTimestamp(c.StartTime),
			FormatTimestamp(c.EndTime),
			c.Text,
		)
		if err != nil {
			return err
		}
	}
	return nil
}

// writes the captions to an SRT file
func (w *SRTWriter) Write(seq Sequence, path string) error {
	var buf bytes.Buffer
	if err := WriteSRT(&buf, seq); err != nil {
		return err
	}
	return writeFile(path, buf.Bytes())
}

// writes the captions to a VTT file
func (w *VTTWriter) Write(seq Sequence, path string) error {
	var sb strings.Builder

	sb.WriteString("WEBVTT\n\n")

	for i, c := range seq {
		// optional cue identifier
		sb.WriteString(fmt.Sprintf("%d\n", i+1))

		// VTT uses a dot before the milliseconds
		sb.WriteString(fmt.Sprintf("%s --> %s\n",
			strings.Replace(FormatTimestamp(c.StartTime), ",", ".", 1),
			strings.Replace(FormatTimestamp(c.EndTime), ",", ".", 1)))

		sb.WriteString(c.Text)
		sb.WriteString("\n\n")
	}

	return writeFile(path, []byte(sb.String()))
}

// writes the captions to an ASS file
func (w *ASSWriter) Write(seq Sequence, path string) error {
	var sb strings.Builder

	sb.WriteString("[Script Info]\n")
	sb.WriteString(fmt.Sprintf("Title: %s\n", w.Title))
	sb.WriteString("ScriptType: v4.00+\n")
	sb.WriteString("PlayResX: 1920\n")
	sb.WriteString("PlayResY: 1080\n\n")

	sb.WriteString("[V4+ Styles]\n")
	sb.WriteString("Format: Name, Fontname, Fontsize, PrimaryColour, SecondaryColour, OutlineColour, BackColour, Bold, Italic, Underline, StrikeOut, ScaleX, ScaleY, Spacing, Angle, BorderStyle, Outline, Shadow, Alignment, MarginL, MarginR, MarginV, Encoding\n")
	// alignment 5 centers on both axes like the rendered frames
	sb.WriteString(fmt.Sprintf("Style: Default,%s,%d,&H00FFFFFF,&H000000FF,&H00000000,&H00000000,-1,0,0,0,100,100,0,0,1,3,2,5,10,10,10,1\n\n",
		w.FontName, w.FontSize))

	sb.WriteString("[Events]\n")
	sb.WriteString("Format: Layer, Start, End, Style, Name, MarginL, MarginR, MarginV, Effect, Text\n")

	for _, c := range seq {
		sb.WriteString(fmt.Sprintf("Dialogue: 0,%s,%s,Default,,0,0,0,,%s\n",
			formatASSTime(c.StartTime),
			formatASSTime(c.EndTime),
			escapeASSText(c.Text)))
	}

	return writeFile(path, []byte(sb.String()))
}

func formatASSTime(seconds float64) string {
	total := int64(math.Floor(seconds*1000 + msEpsilon))
	centis := (total % 1000) / 10
	total /= 1000

	return fmt.Sprintf("%d:%02d:%02d.%02d",
		total/3600, (total%3600)/60, total%60, centis)
}

func escapeASSText(text string) string {
	return strings.ReplaceAll(text, "\n", "\\N")
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// subtitle format based on file extension
func GetFormatFromExtension(path string) Format {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".vtt":
		return FormatVTT
	case ".ass", ".ssa":
		return FormatASS
	default:
		return FormatSRT
	}
}

// file extension for a format
func GetExtensionForFormat(format Format) string {
	switch format {
	case FormatVTT:
		return ".vtt"
	case FormatASS:
		return ".ass"
	default:
		return ".srt"
	}
}
