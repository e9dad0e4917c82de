package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/mgpai22/capcanvas/internal/playback"
	"github.com/mgpai22/capcanvas/internal/subtitle"
	"github.com/mgpai22/capcanvas/internal/translate"
	"github.com/spf13/cobra"
)

var translateCmd = &cobra.Command{
	Use:   "translate [input]",
	Short: "Translate captions to another language using AI",
	Long: `Translate the captions of a script or an SRT file using an LLM provider.
Timing is kept as is; only the caption text changes.

The --overlay flag creates bilingual captions with the translated text
first, followed by the original text on the next line.

API keys are read from --api-key, the config file, CAPCANVAS_TRANSLATE_API_KEYS_*
or the provider's usual variable (GEMINI_API_KEY, OPENAI_API_KEY,
ANTHROPIC_API_KEY).

Examples:
  capcanvas translate talk.srt --target-language japanese
  capcanvas translate talk.srt -t es --overlay --format vtt
  capcanvas translate script.txt -t german --provider anthropic -o german.srt`,
	Args: cobra.ExactArgs(1),
	RunE: runTranslate,
}

func init() {
	rootCmd.AddCommand(translateCmd)

	translateCmd.Flags().
		StringP("target-language", "t", "", "Target language for translation (required)")
	translateCmd.Flags().
		StringP("language", "l", "", "Language of the input captions (e.g., en, es, fr)")
	translateCmd.Flags().
		StringP("format", "f", "srt", "Output caption format (srt, vtt, ass)")
	translateCmd.Flags().
		Bool("overlay", false, "Overlay translated text with original (bilingual captions)")
	translateCmd.Flags().
		StringP("api-key", "k", "", "API key for the provider")
	translateCmd.Flags().
		String("provider", "", "Translation provider (gemini, openai, anthropic)")
	translateCmd.Flags().
		String("model", "", "Model to use for translation (provider-specific, uses sensible defaults)")
	translateCmd.Flags().
		Bool("model-override", false, "Allow any custom model, bypassing provider model validation")
	translateCmd.Flags().
		Int("concurrency", 0, "Number of parallel translation workers")
	translateCmd.Flags().
		Int("batch-size", 0, "Number of captions per API request")
	translateCmd.Flags().
		String("prompt", "", "Additional instructions for the translator")

	_ = translateCmd.MarkFlagRequired("target-language")
}

func runTranslate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	inputPath := args[0]

	targetLang, _ := cmd.Flags().GetString("target-language")
	inputLang, _ := cmd.Flags().GetString("language")
	formatStr, _ := cmd.Flags().GetString("format")
	overlay, _ := cmd.Flags().GetBool("overlay")
	apiKey, _ := cmd.Flags().GetString("api-key")
	modelOverride, _ := cmd.Flags().GetBool("model-override")
	prompt, _ := cmd.Flags().GetString("prompt")
	output, _ := cmd.Flags().GetString("output")

	if strings.TrimSpace(targetLang) == "" {
		return fmt.Errorf("target language is required")
	}
	if inputLang != "" &&
		strings.EqualFold(strings.TrimSpace(inputLang), strings.TrimSpace(targetLang)) {
		return fmt.Errorf(
			"input language %q and target language %q cannot be the same",
			inputLang,
			targetLang,
		)
	}

	format := subtitle.Format(formatStr)
	writer, err := subtitle.NewWriter(format)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	tc := cfg.Translate
	provider := translate.Provider(tc.Provider)

	if apiKey == "" {
		apiKey = tc.APIKey(tc.Provider)
	}
	if apiKey == "" {
		return fmt.Errorf(
			"API key is required: use --api-key or set %s",
			providerKeyEnv(provider),
		)
	}

	if tc.Model != "" && !modelOverride && !translate.IsKnownModel(provider, tc.Model) {
		return fmt.Errorf(
			"unsupported %s model %q: valid models are %s (use --model-override to bypass)",
			provider,
			tc.Model,
			strings.Join(translate.KnownModels(provider), ", "),
		)
	}

	session := playback.NewSession(nil, logger)
	session.PhaseDelay = nil
	if err := loadCaptions(ctx, session, inputPath); err != nil {
		return err
	}

	if output == "" {
		base := strings.TrimSuffix(inputPath, filepath.Ext(inputPath))
		if inputPath == "-" {
			base = session.ExportName("")
		}
		suffix := "." + targetLang
		if overlay {
			suffix += ".overlay"
		}
		output = base + suffix + subtitle.GetExtensionForFormat(format)
	}

	logger.Infow("Starting caption translation",
		"input", inputPath,
		"output", output,
		"provider", provider,
		"target_language", targetLang,
		"input_language", inputLang,
		"overlay", overlay,
		"model", tc.Model,
	)

	translator, err := translate.Factory(ctx, provider, apiKey, translate.Options{
		InputLanguage:  inputLang,
		TargetLanguage: targetLang,
		Model:          tc.Model,
		Prompt:         prompt,
		BatchSize:      tc.BatchSize,
	})
	if err != nil {
		return fmt.Errorf("failed to create translator: %w", err)
	}

	logger.Infow("Translating captions",
		"captions", len(session.Captions()),
		"concurrency", tc.Concurrency,
	)

	translated, err := translate.TranslateCaptions(
		ctx,
		translator,
		session.Captions(),
		tc.Concurrency,
		overlay,
	)
	if err != nil {
		return fmt.Errorf("translation failed: %w", err)
	}
	session.Load(translated, session.DurationMs())

	if err := writer.Write(session.Captions(), output); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}

	printResult("Captions translated successfully", output)
	fmt.Printf("  Captions: %d\n", len(translated))
	fmt.Printf("  Target language: %s\n", targetLang)
	if overlay {
		fmt.Printf("  Mode: bilingual overlay\n")
	}
	return nil
}

func providerKeyEnv(p translate.Provider) string {
	switch p {
	case translate.ProviderGemini:
		return "GEMINI_API_KEY"
	case translate.ProviderOpenAI:
		return "OPENAI_API_KEY"
	case translate.ProviderAnthropic:
		return "ANTHROPIC_API_KEY"
	default:
		return "an API key variable"
	}
}
