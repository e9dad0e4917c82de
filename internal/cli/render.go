package cli

import (
	"fmt"

	"github.com/mgpai22/capcanvas/internal/config"
	"github.com/mgpai22/capcanvas/internal/playback"
	"github.com/mgpai22/capcanvas/internal/render"
	"github.com/mgpai22/capcanvas/internal/subtitle"
	"github.com/mgpai22/capcanvas/internal/video"
	"github.com/spf13/cobra"
)

var renderCmd = &cobra.Command{
	Use:   "render [input]",
	Short: "Render a single caption frame as PNG",
	Long: `Render the frame shown at a given point of playback and save it as a
PNG image. Useful for previewing a style before exporting.

Examples:
  capcanvas render script.txt
  capcanvas render talk.srt --progress 0.25 --font-color "#ffff00" --backdrop
  capcanvas render talk.srt --background transparent -o overlay.png`,
	Args: cobra.ExactArgs(1),
	RunE: runRender,
}

func init() {
	rootCmd.AddCommand(renderCmd)

	renderCmd.Flags().
		Float64P("progress", "p", 0.5, "Playback position to render, from 0 to 1")
	config.AddStyleFlags(renderCmd.Flags())
}

func runRender(cmd *cobra.Command, args []string) error {
	progress, _ := cmd.Flags().GetFloat64("progress")
	output, _ := cmd.Flags().GetString("output")

	if progress < 0 || progress > 1 {
		return fmt.Errorf("progress must be between 0 and 1, got %g", progress)
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	session := playback.NewSession(nil, logger)
	session.PhaseDelay = nil
	if err := loadCaptions(cmd.Context(), session, args[0]); err != nil {
		return err
	}

	output = outputPath(output, session.ExportName(".png"))

	renderer := render.NewRenderer(logger)
	canvas := render.NewCanvas()
	renderer.RenderFrame(canvas, session.Captions(), session.DurationMs(), progress, cfg.Style)

	elapsed := subtitle.ProgressToElapsed(progress, session.DurationMs())
	logger.Infow("Rendered frame",
		"progress", progress,
		"at", playback.FormatReadout(elapsed, session.DurationMs()/1000),
	)

	if err := video.WritePNG(output, canvas.Image()); err != nil {
		return fmt.Errorf("failed to write frame: %w", err)
	}

	printResult("Frame rendered successfully", output)
	return nil
}
