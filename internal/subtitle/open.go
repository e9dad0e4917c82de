package subtitle

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Open parses a caption file, choosing the parser by extension.
func Open(path string) (*SRTFile, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".srt":
		return parseSRTFile(path)
	default:
		return nil, fmt.Errorf("unsupported subtitle format: %s", ext)
	}
}

// IsSubtitleFile reports whether path looks like an importable caption file.
func IsSubtitleFile(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".srt")
}
