package cli

import (
	"fmt"

	"github.com/mgpai22/capcanvas/internal/playback"
	"github.com/mgpai22/capcanvas/internal/subtitle"
	"github.com/spf13/cobra"
)

var generateCmd = &cobra.Command{
	Use:   "generate [text_file|-]",
	Short: "Generate a timed caption file from a script",
	Long: `Generate timed captions from a freeform script and write them as a
caption file.

The script is split into three-word captions, each timed by its word count.
An existing .srt file is imported instead, which converts it to another
caption format.

Examples:
  capcanvas generate script.txt
  capcanvas generate script.txt --format vtt -o captions.vtt
  echo "hello world from capcanvas" | capcanvas generate -
  capcanvas generate talk.srt --format ass`,
	Args: cobra.ExactArgs(1),
	RunE: runGenerate,
}

func init() {
	rootCmd.AddCommand(generateCmd)

	generateCmd.Flags().
		StringP("format", "f", "srt", "Output caption format (srt, vtt, ass)")
	generateCmd.Flags().
		Bool("paced", false, "Pause between generation phases like the interactive player")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	formatStr, _ := cmd.Flags().GetString("format")
	paced, _ := cmd.Flags().GetBool("paced")
	output, _ := cmd.Flags().GetString("output")

	format := subtitle.Format(formatStr)
	writer, err := subtitle.NewWriter(format)
	if err != nil {
		return err
	}

	session := playback.NewSession(nil, logger)
	if !paced {
		session.PhaseDelay = nil
	}

	if err := loadCaptions(cmd.Context(), session, args[0]); err != nil {
		return err
	}

	output = outputPath(output, session.ExportName(subtitle.GetExtensionForFormat(format)))

	logger.Infow("Writing caption file",
		"output", output,
		"format", format,
	)
	if err := writer.Write(session.Captions(), output); err != nil {
		return fmt.Errorf("failed to write caption file: %w", err)
	}

	printResult("Captions generated successfully", output)
	fmt.Printf("  Captions: %d\n", len(session.Captions()))
	fmt.Printf("  Duration: %s\n", subtitle.FormatClock(session.DurationMs()/1000))
	return nil
}
