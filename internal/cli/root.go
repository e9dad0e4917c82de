package cli

import (
	"context"
	"fmt"

	"github.com/mgpai22/capcanvas/internal/config"
	"github.com/mgpai22/capcanvas/internal/logging"
	"github.com/spf13/cobra"
)

var (
	verbose    bool
	configPath string
	logger     *logging.Logger
)

var rootCmd = &cobra.Command{
	Use:   "capcanvas",
	Short: "Render timed captions onto a 1920x1080 canvas",
	Long: `Capcanvas turns a script or an SRT file into timed captions and renders
them onto a fixed 1920x1080 canvas.

Captions can be written out as SRT, VTT or ASS, rendered as single frames,
played back in real time, or exported as a captioned video.

Style settings come from capcanvas.yml, CAPCANVAS_* environment variables
and command-line flags, in increasing order of precedence.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger = logging.NewLogger(verbose)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

// ExecuteContext runs the root command with ctx, which commands use to
// stop long-running work.
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().
		BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().
		StringVarP(&configPath, "config", "c", "", "Config file (default ./capcanvas.yml if present)")
	rootCmd.PersistentFlags().StringP("output", "o", "", "Output file path")
}

// loadConfig resolves the config for cmd, including any style flags the
// command registers.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(
		config.WithConfigFile(configPath),
		config.WithFlags(cmd.Flags()),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.File != "" {
		logger.Debugw("Loaded config", "file", cfg.File)
	}
	return cfg, nil
}
