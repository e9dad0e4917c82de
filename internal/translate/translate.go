package translate

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/mgpai22/capcanvas/internal/subtitle"
)

// single caption text to translate
type Item struct {
	Index int    `json:"index"`
	Text  string `json:"text"`
}

// translated caption text
type Result struct {
	Index int    `json:"index"`
	Text  string `json:"text"`
}

// Translator turns items into results with matching indices. Batches run
// on up to concurrency workers.
type Translator interface {
	Translate(ctx context.Context, items []Item, concurrency int) ([]Result, error)
}

// translation service provider
type Provider string

const (
	ProviderGemini    Provider = "gemini"
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
)

const (
	DefaultBatchSize   = 50
	DefaultConcurrency = 3
)

type Options struct {
	InputLanguage  string
	TargetLanguage string
	Model          string
	Prompt         string
	BatchSize      int // items per API request (default 50)
}

var knownModels = map[Provider][]string{
	ProviderGemini: {
		"gemini-3-pro-preview",
		"gemini-3-flash-preview",
		"gemini-2.5-pro",
		"gemini-2.5-flash",
		"gemini-2.5-flash-lite",
	},
	ProviderOpenAI: {
		"o1", "o3-mini", "o1-pro", "o3",
		"gpt-5", "gpt-5-nano", "gpt-5-mini", "gpt-5-pro",
		"gpt-5.1", "gpt-5.2", "gpt-5.2-pro",
	},
}

// IsKnownModel reports whether model is one of the provider's tested
// models. Providers without a list accept anything.
func IsKnownModel(provider Provider, model string) bool {
	models, ok := knownModels[provider]
	if !ok {
		return true
	}
	return slices.Contains(models, model)
}

// KnownModels lists the tested models for provider.
func KnownModels(provider Provider) []string {
	return slices.Clone(knownModels[provider])
}

// creates Translator based on provider
func Factory(
	ctx context.Context,
	provider Provider,
	apiKey string,
	opts Options,
) (Translator, error) {
	if opts.TargetLanguage == "" {
		return nil, fmt.Errorf("target language is required")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	var (
		c   completer
		err error
	)
	switch provider {
	case ProviderGemini:
		c, err = newGeminiClient(ctx, apiKey, opts.Model)
	case ProviderOpenAI:
		c = newOpenAIClient(apiKey, opts.Model)
	case ProviderAnthropic:
		c = newAnthropicClient(apiKey, opts.Model)
	default:
		return nil, fmt.Errorf("unsupported translation provider: %s", provider)
	}
	if err != nil {
		return nil, err
	}

	return &batchTranslator{provider: provider, client: c, options: opts}, nil
}

// TranslateCaptions returns a new sequence with translated texts and the
// original timing. With overlay set each caption shows the translation
// followed by the original on the next line.
func TranslateCaptions(
	ctx context.Context,
	tr Translator,
	seq subtitle.Sequence,
	concurrency int,
	overlay bool,
) (subtitle.Sequence, error) {
	if len(seq) == 0 {
		return nil, subtitle.ErrNoCaptions
	}

	items := make([]Item, len(seq))
	for i, c := range seq {
		items[i] = Item{Index: i, Text: c.Text}
	}

	results, err := tr.Translate(ctx, items, concurrency)
	if err != nil {
		return nil, err
	}

	texts := make([]string, len(seq))
	seen := make([]bool, len(seq))
	for _, r := range results {
		if r.Index < 0 || r.Index >= len(seq) {
			return nil, fmt.Errorf("translation returned unknown index %d", r.Index)
		}
		text := r.Text
		if overlay {
			text = text + "\n" + seq[r.Index].Text
		}
		texts[r.Index] = text
		seen[r.Index] = true
	}
	for i, ok := range seen {
		if !ok {
			return nil, fmt.Errorf("translation missing caption %d", seq[i].ID)
		}
	}

	return seq.WithTexts(texts)
}

// BuildPrompt creates the translation prompt for LLM providers
func BuildPrompt(opts Options, items []Item) string {
	var sb strings.Builder

	if opts.InputLanguage != "" {
		fmt.Fprintf(&sb,
			"Translate the following %s caption texts to %s.\n\n",
			opts.InputLanguage,
			opts.TargetLanguage,
		)
	} else {
		fmt.Fprintf(&sb,
			"Translate the following caption texts to %s.\n\n",
			opts.TargetLanguage,
		)
	}

	sb.WriteString("IMPORTANT INSTRUCTIONS:\n")
	sb.WriteString("1. Translate ONLY the text content, preserving the meaning.\n")
	sb.WriteString("2. Keep captions short enough to read on screen.\n")
	sb.WriteString("3. Preserve line breaks in the same positions.\n")
	sb.WriteString("4. Return ONLY a JSON array with the same structure.\n")
	sb.WriteString("5. Each object must have 'index' and 'text' fields.\n")
	sb.WriteString("6. The 'index' values must match the input indices exactly.\n")
	sb.WriteString("7. Do not add any explanation or markdown formatting.\n\n")

	if opts.Prompt != "" {
		fmt.Fprintf(&sb, "Additional instructions: %s\n\n", opts.Prompt)
	}

	sb.WriteString(promptInputMarker)

	inputJSON, _ := json.MarshalIndent(items, "", "  ")
	sb.Write(inputJSON)

	sb.WriteString(promptOutputMarker)

	return sb.String()
}

const (
	promptInputMarker  = "Input JSON:\n"
	promptOutputMarker = "\n\nOutput the translated JSON array only:"
)
