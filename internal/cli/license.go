package cli

import (
	_ "embed"
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

var (
	//go:embed license.txt
	licenseText string

	//go:embed notices.txt
	noticesText string
)

var licenseCmd = &cobra.Command{
	Use:   "license",
	Short: "Print license information",
	Long: `Print the capcanvas license.

With --notices the attributions for the bundled Go fonts and for ffmpeg
(downloaded or embedded for video export) are printed as well.`,
	Args: cobra.NoArgs,
	RunE: runLicense,
}

func init() {
	rootCmd.AddCommand(licenseCmd)

	licenseCmd.Flags().
		Bool("notices", false, "Also print notices for bundled fonts and ffmpeg")
	licenseCmd.Flags().
		Bool("notices-only", false, "Print only the third-party notices")
}

func runLicense(cmd *cobra.Command, args []string) error {
	notices, _ := cmd.Flags().GetBool("notices")
	noticesOnly, _ := cmd.Flags().GetBool("notices-only")
	return writeLicense(cmd.OutOrStdout(), notices || noticesOnly, !noticesOnly)
}

func writeLicense(w io.Writer, notices, license bool) error {
	if license {
		if _, err := io.WriteString(w, licenseText); err != nil {
			return err
		}
	}
	if !notices {
		return nil
	}
	if license {
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, noticesText)
	return err
}
