package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/mgpai22/capcanvas/internal/playback"
	"github.com/mgpai22/capcanvas/internal/subtitle"
)

// loadCaptions fills session from path. SRT files are imported; anything
// else, or "-" for stdin, is read as a freeform script.
func loadCaptions(ctx context.Context, session *playback.Session, path string) error {
	if path != "-" && subtitle.IsSubtitleFile(path) {
		return importSRT(session, path)
	}

	text, err := readText(path)
	if err != nil {
		return err
	}

	session.SetInputMethod(playback.InputScript)
	err = session.Generate(ctx, text, func(p playback.Phase) {
		logger.Infow(p.Name, "progress", fmt.Sprintf("%d%%", p.Percent))
	})
	if err != nil {
		return err
	}

	logger.Infow("Captions ready",
		"captions", len(session.Captions()),
		"duration", subtitle.FormatClock(session.DurationMs()/1000),
	)
	return nil
}

func importSRT(session *playback.Session, path string) error {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("file not found: %s", path)
		}
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	session.SetInputMethod(playback.InputSRT)
	srt, err := session.Import(f)
	if err != nil {
		return fmt.Errorf("failed to import %s: %w", path, err)
	}

	logger.Infow("Imported captions",
		"file", path,
		"captions", len(srt.Captions()),
		"skipped", len(srt.Skipped()),
	)
	return nil
}

func readText(path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("file not found: %s", path)
		}
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return string(data), nil
}

// outputPath returns the --output flag, or fallback when it is unset.
func outputPath(flag, fallback string) string {
	if flag != "" {
		return flag
	}
	return fallback
}

func printResult(what, path string) {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	fmt.Printf("%s: %s\n", what, abs)
}
