package subtitle

import (
	"fmt"
	"io"
	"math"
	"os"
	"regexp"
	"strconv"
	"strings"
)

var (
	lineBreakRegex = regexp.MustCompile(`\r?\n`)
	timingRegex    = regexp.MustCompile(
		`(\d{2}:\d{2}:\d{2},\d{3})\s*-->\s*(\d{2}:\d{2}:\d{2},\d{3})`,
	)
)

// parsed SRT file plus the blocks that had to be skipped
type SRTFile struct {
	captions Sequence
	skipped  []*FormatError
}

// ParseSRT reads SRT blocks from r. Malformed blocks never abort the
// parse; they are recorded in Skipped. Only read failures are returned.
func ParseSRT(r io.Reader) (*SRTFile, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read SRT data: %w", err)
	}

	content := strings.TrimPrefix(string(data), "\ufeff")
	lines := lineBreakRegex.Split(content, -1)

	f := &SRTFile{captions: Sequence{}}
	i := 0
	for i < len(lines) {
		if !isIndexLine(lines[i]) {
			i++
			continue
		}
		i++

		if i >= len(lines) {
			f.skip(i, "", "missing timing line")
			break
		}

		matches := timingRegex.FindStringSubmatch(lines[i])
		if matches == nil {
			f.skip(i+1, lines[i], "malformed timing line")
			i++
			continue
		}
		timingLine := i + 1

		start, err := ParseTimestamp(matches[1])
		if err != nil {
			f.skip(timingLine, lines[i], "invalid start timestamp")
			i++
			continue
		}
		end, err := ParseTimestamp(matches[2])
		if err != nil {
			f.skip(timingLine, lines[i], "invalid end timestamp")
			i++
			continue
		}
		i++

		var textLines []string
		for i < len(lines) && strings.TrimSpace(lines[i]) != "" {
			textLines = append(textLines, strings.TrimSpace(lines[i]))
			i++
		}
		i++

		text := strings.Join(textLines, " ")
		switch {
		case text == "":
			f.skip(timingLine, matches[0], "block has no text")
			continue
		case end < start:
			f.skip(timingLine, matches[0], "end time before start time")
			continue
		}

		f.captions = append(f.captions, Caption{
			ID:        len(f.captions) + 1,
			StartTime: start,
			EndTime:   end,
			Text:      text,
		})
	}

	return f, nil
}

// ParseSRTString parses SRT content held in memory.
func ParseSRTString(content string) (*SRTFile, error) {
	return ParseSRT(strings.NewReader(content))
}

func parseSRTFile(path string) (*SRTFile, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open SRT file: %w", err)
	}
	defer file.Close()

	return ParseSRT(file)
}

// index lines are anything numeric once trimmed
func isIndexLine(line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}
	v, err := strconv.ParseFloat(line, 64)
	return err == nil && !math.IsNaN(v)
}

func (f *SRTFile) skip(line int, input, reason string) {
	f.skipped = append(f.skipped, &FormatError{
		Line:   line,
		Input:  input,
		Reason: reason,
	})
}

func (f *SRTFile) Format() Format {
	return FormatSRT
}

// Captions returns the parsed captions with sequential ids.
func (f *SRTFile) Captions() Sequence {
	return f.captions
}

// Skipped lists the blocks that were dropped while parsing.
func (f *SRTFile) Skipped() []*FormatError {
	return f.skipped
}

// DurationMs is the session duration implied by the file.
func (f *SRTFile) DurationMs() float64 {
	return f.captions.End() * 1000
}

func (f *SRTFile) Write(path string) error {
	writer, err := NewWriter(FormatSRT)
	if err != nil {
		return err
	}
	return writer.Write(f.captions, path)
}
