package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mgpai22/capcanvas/internal/audio"
	"github.com/mgpai22/capcanvas/internal/config"
	"github.com/mgpai22/capcanvas/internal/playback"
	"github.com/mgpai22/capcanvas/internal/render"
	"github.com/mgpai22/capcanvas/internal/subtitle"
	"github.com/mgpai22/capcanvas/internal/video"
	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export [input]",
	Short: "Export captions as a video or an SRT file",
	Long: `Export captions from a script or an SRT file.

With the burned caption style every frame is rendered from start to end and
encoded with ffmpeg as WebM (VP9 with alpha) or MP4. Without an ffmpeg
binary the frames are written as numbered PNG files instead. With the srt
caption style the timed captions are written as an SRT file.

Style edits to the config file apply to the next rendered frame.

Examples:
  capcanvas export script.txt
  capcanvas export talk.srt --video-format mp4 --fps 25 -o talk.mp4
  capcanvas export talk.srt --soundtrack voice.mp3 -o talk.webm
  capcanvas export script.txt --caption-style srt`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().
		String("video-format", "", "Video container (webm, mp4, png)")
	exportCmd.Flags().
		Int("fps", 0, "Frames per second of the exported video")
	exportCmd.Flags().
		String("caption-style", "", "burned renders a video, srt writes a caption file")
	exportCmd.Flags().
		String("soundtrack", "", "Audio file to mux into the exported video")
	config.AddStyleFlags(exportCmd.Flags())
}

func runExport(cmd *cobra.Command, args []string) error {
	output, _ := cmd.Flags().GetString("output")
	ctx := cmd.Context()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	session := playback.NewSession(nil, logger)
	session.PhaseDelay = nil
	if err := loadCaptions(ctx, session, args[0]); err != nil {
		return err
	}

	if cfg.Export.CaptionStyle == "srt" {
		return exportSRT(session, output, cfg.Export.Soundtrack)
	}

	ext := "." + cfg.Export.Format
	if cfg.Export.Format == string(video.ContainerPNG) {
		ext = ""
	}
	output = outputPath(output, session.ExportName(ext))

	soundtrack := cfg.Export.Soundtrack
	target := output
	if soundtrack != "" {
		tmp, err := prepareSoundtrack(ctx, soundtrack, output, session.DurationMs())
		if err != nil {
			return err
		}
		defer os.Remove(tmp)
		target = tmp
	}

	live := config.NewLiveStyle(cfg, logger)
	if live.Watch() {
		logger.Infow("Watching config for style changes", "file", cfg.File)
	}

	fps := cfg.Export.FPS
	sink, written, err := video.Open(target, video.Options{
		Width:  render.Width,
		Height: render.Height,
		FPS:    fps,
	}, logger)
	if err != nil {
		return err
	}

	total := playback.FrameCount(session.DurationMs(), fps)
	totalSeconds := session.DurationMs() / 1000
	exporter := &playback.Exporter{
		FPS:    fps,
		Styles: live,
		Logger: logger,
		OnProgress: func(frame int, progress float64) {
			if frame%fps == 0 || progress >= 1 {
				logger.Debugw("Exporting",
					"frame", frame,
					"frames", total,
					"at", playback.FormatReadout(progress*totalSeconds, totalSeconds),
				)
			}
		},
	}

	logger.Infow("Starting export",
		"output", output,
		"frames", total,
		"fps", fps,
	)
	started := time.Now()

	job := exporter.Export(ctx, session.Captions(), session.DurationMs(), sink)
	if err := job.Wait(); err != nil {
		return fmt.Errorf("export failed: %w", err)
	}

	switch {
	case soundtrack == "":
		output = written
	case written != target:
		logger.Warnw("Skipping soundtrack, frames were written as PNG",
			"dir", written,
		)
		output = written
	default:
		logger.Infow("Adding soundtrack", "audio", soundtrack)
		if err := audio.MuxSoundtrack(ctx, target, soundtrack, output); err != nil {
			return err
		}
	}

	printResult("Export complete", output)
	fmt.Printf("  Frames: %d\n", job.Frames())
	fmt.Printf("  Duration: %s\n", subtitle.FormatClock(totalSeconds))
	fmt.Printf("  Took: %s\n", time.Since(started).Round(time.Millisecond))
	return nil
}

func exportSRT(session *playback.Session, output, soundtrack string) error {
	if soundtrack != "" {
		logger.Warnw("Soundtrack ignored for SRT export", "audio", soundtrack)
	}

	output = outputPath(output, session.ExportName(".srt"))
	if err := (&subtitle.SRTWriter{}).Write(session.Captions(), output); err != nil {
		return fmt.Errorf("failed to write SRT file: %w", err)
	}

	printResult("Export complete", output)
	fmt.Printf("  Captions: %d\n", len(session.Captions()))
	return nil
}

// prepareSoundtrack checks the audio file and returns a temporary video
// path to render into before muxing.
func prepareSoundtrack(ctx context.Context, soundtrack, output string, durationMs float64) (string, error) {
	if _, err := os.Stat(soundtrack); os.IsNotExist(err) {
		return "", fmt.Errorf("soundtrack not found: %s", soundtrack)
	}
	if !audio.IsAudioFile(soundtrack) {
		return "", fmt.Errorf("unsupported soundtrack type: %s", filepath.Ext(soundtrack))
	}
	container, err := video.ContainerFor(output)
	if err != nil {
		return "", err
	}
	if container == video.ContainerPNG {
		return "", fmt.Errorf("a soundtrack needs a webm or mp4 output, got %s", output)
	}

	if d, err := audio.GetDuration(ctx, soundtrack); err != nil {
		logger.Debugw("Could not probe soundtrack", "error", err)
	} else if float64(d.Milliseconds()) < durationMs {
		logger.Warnw("Soundtrack is shorter than the captions, video will be cut",
			"soundtrack", d.Round(time.Millisecond),
			"captions", subtitle.FormatClock(durationMs/1000),
		)
	}

	tmp, err := os.CreateTemp("", "capcanvas-*"+filepath.Ext(output))
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	tmp.Close()
	return tmp.Name(), nil
}
