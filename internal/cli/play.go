package cli

import (
	"context"
	"errors"
	"fmt"
	"image"
	"os"

	"github.com/mgpai22/capcanvas/internal/config"
	"github.com/mgpai22/capcanvas/internal/playback"
	"github.com/mgpai22/capcanvas/internal/render"
	"github.com/mgpai22/capcanvas/internal/video"
	"github.com/spf13/cobra"
)

var playCmd = &cobra.Command{
	Use:   "play [input]",
	Short: "Play captions in real time with a terminal readout",
	Long: `Play captions against the wall clock, showing the position as
"M:SS / M:SS". Frames are rendered at the configured frame rate and can be
saved as PNG files. While playing, controls typed on stdin pause, resume
and seek (disable with --no-controls). Press Ctrl+C to stop.

Examples:
  capcanvas play script.txt
  capcanvas play talk.srt --seek 0.5
  capcanvas play talk.srt --frames-dir ./frames --fps 10`,
	Args: cobra.ExactArgs(1),
	RunE: runPlay,
}

func init() {
	rootCmd.AddCommand(playCmd)

	playCmd.Flags().
		Float64("seek", 0, "Start playback at this fraction of the duration (0 to 1)")
	playCmd.Flags().
		String("frames-dir", "", "Save every rendered frame as PNG into this directory")
	playCmd.Flags().
		Int("fps", 0, "Frames per second")
	playCmd.Flags().
		Bool("no-controls", false, "Do not read playback controls from stdin")
	config.AddStyleFlags(playCmd.Flags())
}

func runPlay(cmd *cobra.Command, args []string) error {
	seek, _ := cmd.Flags().GetFloat64("seek")
	framesDir, _ := cmd.Flags().GetString("frames-dir")
	noControls, _ := cmd.Flags().GetBool("no-controls")

	if seek < 0 || seek > 1 {
		return fmt.Errorf("seek must be between 0 and 1, got %g", seek)
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	loop := playback.NewLoop(cfg.Export.FPS)
	live := config.NewLiveStyle(cfg, logger)
	readout := &playback.TextReadout{W: os.Stdout}
	driver := playback.NewDriver(loop, live, readout, logger)
	session := playback.NewSession(driver, logger)

	// the loop is not running yet, so the driver can be loaded from here
	if err := loadCaptions(ctx, session, args[0]); err != nil {
		return err
	}

	var frames *video.PNGSink
	if framesDir != "" {
		frames, err = video.NewPNGSink(framesDir, video.Options{
			Width:  render.Width,
			Height: render.Height,
			FPS:    cfg.Export.FPS,
		})
		if err != nil {
			return err
		}
		driver.OnFrame = func(progress float64, img *image.RGBA) {
			if err := frames.WriteFrame(img); err != nil {
				logger.Warnw("Failed to save frame", "error", err)
			}
		}
	}

	live.OnChange = func(render.Style) {
		if !loop.Post(driver.Preview) {
			logger.Debugw("Playback ended, style change not previewed")
		}
	}
	if live.Watch() {
		logger.Infow("Watching config for style changes", "file", cfg.File)
	}

	driver.OnEnd = cancel

	var startErr error
	loop.Post(func() {
		if seek > 0 {
			track := playback.Track{Width: 1}
			driver.SeekPress(seek, track)
			driver.SeekRelease(seek, track)
		}
		if err := driver.Start(); err != nil {
			startErr = err
			cancel()
		}
	})

	// stdin already held the captions when the input is "-"
	if !noControls && args[0] != "-" {
		fmt.Fprintln(os.Stderr, controlsHelp)
		go readControls(ctx, os.Stdin, loop, driver, session.DurationMs(), cancel)
	}

	logger.Infow("Playing",
		"session", session.ID,
		"captions", len(session.Captions()),
		"seek", seek,
	)

	err = loop.Run(ctx)
	fmt.Println()

	if startErr != nil {
		return fmt.Errorf("failed to start playback: %w", startErr)
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	if cmd.Context().Err() != nil {
		logger.Infow("Playback stopped", "at", readout.Text())
	} else {
		logger.Infow("Playback finished")
	}

	if frames != nil {
		if err := frames.Close(); err != nil {
			return err
		}
		printResult("Frames saved", framesDir)
		fmt.Printf("  Frames: %d\n", frames.Frames())
	}
	return nil
}
