package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/mgpai22/capcanvas/internal/render"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g.
// CAPCANVAS_STYLE_FONT_SIZE=large.
const EnvPrefix = "CAPCANVAS"

// searched in order when no --config is given
var defaultConfigFiles = []string{
	"./capcanvas.yml",
	"./capcanvas.yaml",
	"./config/capcanvas.yml",
}

// ExportConfig controls how captions leave the program.
type ExportConfig struct {
	Format       string `mapstructure:"format" validate:"oneof=webm mp4 png"`
	FPS          int    `mapstructure:"fps" validate:"gte=1,lte=120"`
	CaptionStyle string `mapstructure:"caption_style" validate:"oneof=burned srt"`
	Soundtrack   string `mapstructure:"soundtrack"`
}

// APIKeys holds provider credentials. Each is also read from the
// provider's conventional environment variable.
type APIKeys struct {
	Gemini    string `mapstructure:"gemini"`
	OpenAI    string `mapstructure:"openai"`
	Anthropic string `mapstructure:"anthropic"`
}

// TranslateConfig configures caption translation.
type TranslateConfig struct {
	Provider    string  `mapstructure:"provider" validate:"oneof=gemini openai anthropic"`
	Model       string  `mapstructure:"model"`
	Concurrency int     `mapstructure:"concurrency" validate:"gte=1"`
	BatchSize   int     `mapstructure:"batch_size" validate:"gte=1"`
	APIKeys     APIKeys `mapstructure:"api_keys"`
}

// APIKey returns the credential for the named provider.
func (t TranslateConfig) APIKey(provider string) string {
	switch provider {
	case "gemini":
		return t.APIKeys.Gemini
	case "openai":
		return t.APIKeys.OpenAI
	case "anthropic":
		return t.APIKeys.Anthropic
	}
	return ""
}

type Config struct {
	Style     render.Style    `mapstructure:"style"`
	Export    ExportConfig    `mapstructure:"export"`
	Translate TranslateConfig `mapstructure:"translate"`

	// File is the config file that was read, empty if none.
	File string `mapstructure:"-"`

	v *viper.Viper
}

// Validate checks the loaded values against their struct tags.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("invalid config: %w", err)
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fieldKey(fe)+": "+describe(fe))
	}
	return &ValidationError{Fields: msgs, err: err}
}

// ValidationError lists every field that failed validation.
type ValidationError struct {
	Fields []string
	err    error
}

func (e *ValidationError) Error() string {
	return "invalid config: " + strings.Join(e.Fields, "; ")
}

func (e *ValidationError) Unwrap() error {
	return e.err
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// flag name to config key
var flagKeys = map[string]string{
	"font-family":        "style.font_family",
	"font-color":         "style.font_color",
	"font-size":          "style.font_size",
	"highlight-keywords": "style.highlight_keywords",
	"pop-in":             "style.animated_pop_in",
	"background":         "style.background",
	"backdrop":           "style.caption_backdrop",
	"video-format":       "export.format",
	"fps":                "export.fps",
	"caption-style":      "export.caption_style",
	"soundtrack":         "export.soundtrack",
	"provider":           "translate.provider",
	"model":              "translate.model",
	"concurrency":        "translate.concurrency",
	"batch-size":         "translate.batch_size",
}

// conventional provider variables, checked after the prefixed form
var apiKeyEnv = map[string]string{
	"translate.api_keys.gemini":    "GEMINI_API_KEY",
	"translate.api_keys.openai":    "OPENAI_API_KEY",
	"translate.api_keys.anthropic": "ANTHROPIC_API_KEY",
}

type loaderConfig struct {
	configFile string
	envFile    string
	flags      *pflag.FlagSet
}

// Option configures Load.
type Option func(*loaderConfig)

// WithConfigFile reads the given YAML file. It must exist.
func WithConfigFile(path string) Option {
	return func(lc *loaderConfig) { lc.configFile = path }
}

// WithEnvFile loads the given .env file before reading the environment.
func WithEnvFile(path string) Option {
	return func(lc *loaderConfig) { lc.envFile = path }
}

// WithFlags binds the known flags present in fs. Only flags the user
// actually set take precedence over file and environment values.
func WithFlags(fs *pflag.FlagSet) Option {
	return func(lc *loaderConfig) { lc.flags = fs }
}

// Load resolves configuration from defaults, a YAML file, a .env file,
// CAPCANVAS_* environment variables and command-line flags, then
// validates the result.
func Load(opts ...Option) (*Config, error) {
	var lc loaderConfig
	for _, opt := range opts {
		opt(&lc)
	}

	v := viper.New()
	setDefaults(v)

	configFile := lc.configFile
	if configFile != "" {
		if !fileExists(configFile) {
			return nil, fmt.Errorf("config file %s: %w", configFile, os.ErrNotExist)
		}
	} else {
		for _, p := range defaultConfigFiles {
			if fileExists(p) {
				configFile = p
				break
			}
		}
	}
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
		}
	}

	envFile := lc.envFile
	if envFile == "" && fileExists(".env") {
		envFile = ".env"
	}
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("failed to load env file %s: %w", envFile, err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, name := range apiKeyEnv {
		prefixed := EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, prefixed, name); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", name, err)
		}
	}

	if lc.flags != nil {
		if err := bindFlags(v, lc.flags); err != nil {
			return nil, err
		}
	}

	cfg := &Config{v: v}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.File = configFile
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns the built-in configuration without touching the
// filesystem or environment.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	cfg := &Config{v: v}
	_ = v.Unmarshal(cfg)
	return cfg
}

func setDefaults(v *viper.Viper) {
	style := render.DefaultStyle()
	v.SetDefault("style.font_family", style.FontFamily)
	v.SetDefault("style.font_color", style.FontColor)
	v.SetDefault("style.font_size", string(style.FontSize))
	v.SetDefault("style.highlight_keywords", style.HighlightKeywords)
	v.SetDefault("style.animated_pop_in", style.AnimatedPopIn)
	v.SetDefault("style.background", string(style.Background))
	v.SetDefault("style.caption_backdrop", style.CaptionBackdrop)

	v.SetDefault("export.format", "webm")
	v.SetDefault("export.fps", 30)
	v.SetDefault("export.caption_style", "burned")
	v.SetDefault("export.soundtrack", "")

	v.SetDefault("translate.provider", "gemini")
	v.SetDefault("translate.model", "")
	v.SetDefault("translate.concurrency", 3)
	v.SetDefault("translate.batch_size", 50)
	for key := range apiKeyEnv {
		v.SetDefault(key, "")
	}
}

func bindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	for name, key := range flagKeys {
		f := fs.Lookup(name)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("failed to bind flag --%s: %w", name, err)
		}
	}
	return nil
}

// AddStyleFlags registers the caption style flags on fs.
func AddStyleFlags(fs *pflag.FlagSet) {
	fs.String("font-family", "", "Font family (go, go bold, go medium, go mono, or a .ttf/.otf path)")
	fs.String("font-color", "", "Caption color as hex, e.g. #ffffff")
	fs.String("font-size", "", "Caption size (small, medium, large, extra-large)")
	fs.Bool("highlight-keywords", false, "Highlight emphasis words")
	fs.Bool("pop-in", false, "Animate captions popping in")
	fs.String("background", "", "Background (green, blue, black, transparent)")
	fs.Bool("backdrop", false, "Draw a translucent box behind captions")
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// config key for a failed field, e.g. style.font_color
func fieldKey(fe validator.FieldError) string {
	parts := strings.Split(fe.StructNamespace(), ".")
	if len(parts) > 0 && parts[0] == "Config" {
		parts = parts[1:]
	}
	for i, p := range parts {
		parts[i] = toSnakeCase(p)
	}
	return strings.Join(parts, ".")
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "hexcolor":
		return fmt.Sprintf("%q is not a hex color", fe.Value())
	case "oneof":
		return fmt.Sprintf("%q must be one of [%s]", fe.Value(), fe.Param())
	case "gte":
		return "must be at least " + fe.Param()
	case "lte":
		return "must be at most " + fe.Param()
	default:
		return "failed " + fe.Tag()
	}
}

func toSnakeCase(s string) string {
	var sb strings.Builder
	runes := []rune(s)
	for i, r := range runes {
		upper := r >= 'A' && r <= 'Z'
		if upper && i > 0 {
			prevLower := runes[i-1] >= 'a' && runes[i-1] <= 'z'
			nextLower := i+1 < len(runes) && runes[i+1] >= 'a' && runes[i+1] <= 'z'
			if prevLower || nextLower {
				sb.WriteByte('_')
			}
		}
		if upper {
			r += 'a' - 'A'
		}
		sb.WriteRune(r)
	}
	return sb.String()
}
