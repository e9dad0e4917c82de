package video

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/mgpai22/capcanvas/internal/ffmpeg"
	"github.com/mgpai22/capcanvas/internal/logging"
)

// Open returns a sink for outputPath. Video containers go through ffmpeg;
// when no ffmpeg binary can be found the frames are written as PNGs into a
// directory named after the output file instead.
func Open(outputPath string, opts Options, logger *logging.Logger) (FrameSink, string, error) {
	container, err := ContainerFor(outputPath)
	if err != nil {
		return nil, "", err
	}

	if container != ContainerPNG {
		ffmpegPath, err := ffmpeg.FFmpegPath()
		if err == nil {
			sink, err := NewFFmpegSink(ffmpegPath, outputPath, opts)
			if err != nil {
				return nil, "", err
			}
			return sink, outputPath, nil
		}
		logger.Warnw("ffmpeg unavailable, writing PNG frames instead",
			"error", err,
		)
		outputPath = FrameDir(outputPath)
	}

	sink, err := NewPNGSink(outputPath, opts)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create frame sink: %w", err)
	}
	return sink, outputPath, nil
}

// FrameDir is the PNG fallback directory for a video path.
func FrameDir(videoPath string) string {
	return strings.TrimSuffix(videoPath, filepath.Ext(videoPath)) + "-frames"
}
