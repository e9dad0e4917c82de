package audio

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	ffmpeg "github.com/u2takey/ffmpeg-go"

	ffmpegbin "github.com/mgpai22/capcanvas/internal/ffmpeg"
)

// JSON output from ffprobe
type ffprobeOutput struct {
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

// GetDuration probes the length of an audio or video file.
func GetDuration(ctx context.Context, filePath string) (time.Duration, error) {
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		return 0, fmt.Errorf("file not found: %s", filePath)
	}

	ffprobePath, err := ffmpegbin.FFprobePath()
	if err != nil {
		return 0, err
	}

	cmd := exec.CommandContext(ctx, ffprobePath,
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		filePath,
	)

	var out bytes.Buffer
	cmd.Stdout = &out

	if err := cmd.Run(); err != nil {
		return 0, fmt.Errorf("ffprobe failed: %w", err)
	}

	return parseProbe(out.Bytes())
}

func parseProbe(data []byte) (time.Duration, error) {
	var probe ffprobeOutput
	if err := json.Unmarshal(data, &probe); err != nil {
		return 0, fmt.Errorf("failed to parse ffprobe output: %w", err)
	}

	seconds, err := strconv.ParseFloat(probe.Format.Duration, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse duration: %w", err)
	}

	return time.Duration(seconds * float64(time.Second)), nil
}

// soundtrack codec matching the video container
func audioCodecFor(outputPath string) string {
	if strings.EqualFold(filepath.Ext(outputPath), ".webm") {
		return "libopus"
	}
	return "aac"
}

// MuxSoundtrack copies the video stream of videoPath and adds audioPath as
// its soundtrack. The result is cut to the shorter of the two.
func MuxSoundtrack(ctx context.Context, videoPath, audioPath, outputPath string) error {
	for _, p := range []string{videoPath, audioPath} {
		if _, err := os.Stat(p); os.IsNotExist(err) {
			return fmt.Errorf("input file not found: %s", p)
		}
	}
	if !IsAudioFile(audioPath) {
		return fmt.Errorf("unsupported audio file: %s", filepath.Ext(audioPath))
	}

	ffmpegPath, err := ffmpegbin.FFmpegPath()
	if err != nil {
		return err
	}

	video := ffmpeg.Input(videoPath)
	track := ffmpeg.Input(audioPath)

	kwargs := ffmpeg.KwArgs{
		"c:v":      "copy",
		"c:a":      audioCodecFor(outputPath),
		"shortest": "",
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- ffmpeg.Output(
			[]*ffmpeg.Stream{video.Video(), track.Audio()},
			outputPath,
			kwargs,
		).
			OverWriteOutput().
			SetFfmpegPath(ffmpegPath).
			Run()
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("failed to mux soundtrack: %w", err)
		}
	}
	return nil
}

// checks if the file is an audio file based on extension
func IsAudioFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	audioExts := map[string]bool{
		".mp3":  true,
		".wav":  true,
		".aac":  true,
		".flac": true,
		".ogg":  true,
		".opus": true,
		".m4a":  true,
	}
	return audioExts[ext]
}
