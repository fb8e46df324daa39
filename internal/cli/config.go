package cli

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes the environment override of every flag, e.g. TLRUN_TARGET.
const EnvPrefix = "TLRUN"

// Environment variables honoured besides the prefixed flag overrides.
const (
	EnvLibreURL      = "LIBRE_TRANSLATE_URL"
	EnvOpenAIKey     = "OPENAI_API_KEY"
	EnvGeminiKey     = "GEMINI_API_KEY"
	EnvFakeUppercase = "TRANSLATE_FAKE_UPPERCASE"
)

// Config keys that have no flag and are only read from the environment.
const (
	KeyLibreURL      = "libre-url"
	KeyOpenAIKey     = "openai-api-key"
	KeyGeminiKey     = "gemini-api-key"
	KeyFakeUppercase = "fake-uppercase"
)

// Flags holds the flags both runners accept.
type Flags struct {
	Target     string
	Source     string
	HTML       bool
	Text       bool
	Debug      bool
	DryRun     bool
	CacheFile  string
	CacheTTL   int
	Stats      bool
	IgnoreTags []string
}

// AddFlags registers the shared runner flags on cmd.
func AddFlags(cmd *cobra.Command, f *Flags) {
	cmd.Flags().StringVar(&f.Target, "target", "en", "Target language (ISO 639-1 code)")
	cmd.Flags().StringVar(&f.Source, "source", "", "Source language (detected when empty)")
	cmd.Flags().BoolVar(&f.HTML, "html", false, "Input is HTML")
	cmd.Flags().BoolVar(&f.Text, "text", false, "Input is plain text (default)")
	cmd.Flags().BoolVar(&f.Debug, "debug", false, "Enable debug logging")
	cmd.Flags().BoolVar(&f.DryRun, "dry-run", false, "Show what would be translated without translating")
	cmd.Flags().StringVar(&f.CacheFile, "cache-file", "", "Keep translations in this JSON file between runs")
	cmd.Flags().IntVar(&f.CacheTTL, "cache-ttl", 0, "Cache entry lifetime in seconds (0 = forever)")
	cmd.Flags().BoolVar(&f.Stats, "stats", false, "Print translation statistics to stderr")
	cmd.Flags().StringSliceVar(&f.IgnoreTags, "ignore-tags", nil, "Extra HTML tags whose text is never translated")
}

// NewConfig returns a viper instance layered over cmd's flags: an explicit
// flag wins, then TLRUN_<FLAG>, then the flag default. The environment-only
// keys also accept their conventional variable names.
func NewConfig(cmd *cobra.Command) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return nil, err
	}

	for key, env := range map[string]string{
		KeyLibreURL:      EnvLibreURL,
		KeyOpenAIKey:     EnvOpenAIKey,
		KeyGeminiKey:     EnvGeminiKey,
		KeyFakeUppercase: EnvFakeUppercase,
	} {
		if err := v.BindEnv(key, prefixed(key), env); err != nil {
			return nil, err
		}
	}
	return v, nil
}

func prefixed(key string) string {
	return EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, "-", "_"))
}

// Resolve reads the shared flags back through v so environment overrides apply.
func Resolve(v *viper.Viper) Flags {
	return Flags{
		Target:     v.GetString("target"),
		Source:     v.GetString("source"),
		HTML:       v.GetBool("html") && !v.GetBool("text"),
		Text:       v.GetBool("text"),
		Debug:      v.GetBool("debug"),
		DryRun:     v.GetBool("dry-run"),
		CacheFile:  v.GetString("cache-file"),
		CacheTTL:   v.GetInt("cache-ttl"),
		Stats:      v.GetBool("stats"),
		IgnoreTags: v.GetStringSlice("ignore-tags"),
	}
}

// FakeUppercase reports whether TRANSLATE_FAKE_UPPERCASE=1 asks for the
// uppercasing test backend.
func FakeUppercase(v *viper.Viper) bool {
	return v.GetString(KeyFakeUppercase) == "1"
}
