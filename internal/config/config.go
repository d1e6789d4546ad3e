package config

import (
	"strings"
	"unicode/utf8"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
	Link    LinkConfig    `yaml:"link" mapstructure:"link"`
	Input   InputConfig   `yaml:"input" mapstructure:"input"`
	HTTP    HTTPConfig    `yaml:"http" mapstructure:"http"`
	Output  OutputConfig  `yaml:"output" mapstructure:"output"`
	Convert ConvertConfig `yaml:"convert" mapstructure:"convert"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// LinkConfig configures the linkage run.
type LinkConfig struct {
	Threshold     int  `yaml:"threshold" mapstructure:"threshold"`
	Concurrency   int  `yaml:"concurrency" mapstructure:"concurrency"`
	ProgressEvery int  `yaml:"progress_every" mapstructure:"progress_every"`
	DropUnmapped  bool `yaml:"drop_unmapped" mapstructure:"drop_unmapped"`
	Preprocess    bool `yaml:"preprocess" mapstructure:"preprocess"`
	SampleSize    int  `yaml:"sample_size" mapstructure:"sample_size"`
}

// InputConfig configures how input tables are decoded.
type InputConfig struct {
	Encodings []string `yaml:"encodings" mapstructure:"encodings"`
	Delimiter string   `yaml:"delimiter" mapstructure:"delimiter"`
	Sheet     string   `yaml:"sheet" mapstructure:"sheet"`
}

// HTTPConfig configures remote source downloads.
type HTTPConfig struct {
	TimeoutSecs int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxRetries  int     `yaml:"max_retries" mapstructure:"max_retries"`
	UserAgent   string  `yaml:"user_agent" mapstructure:"user_agent"`
	RatePerHost float64 `yaml:"rate_per_host" mapstructure:"rate_per_host"`
}

// OutputConfig configures the linked output.
type OutputConfig struct {
	Format string `yaml:"format" mapstructure:"format"`
}

// ConvertConfig configures the convert command.
type ConvertConfig struct {
	Delimiter  string `yaml:"delimiter" mapstructure:"delimiter"`
	DateLayout string `yaml:"date_layout" mapstructure:"date_layout"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("STATIONLINK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("link.threshold", 70)
	v.SetDefault("link.concurrency", 1)
	v.SetDefault("link.progress_every", 50)
	v.SetDefault("link.drop_unmapped", false)
	v.SetDefault("link.preprocess", false)
	v.SetDefault("link.sample_size", 5)
	v.SetDefault("input.encodings", []string{"UTF-8", "ISO-8859-1", "windows-1252"})
	v.SetDefault("input.delimiter", ",")
	v.SetDefault("http.timeout_secs", 60)
	v.SetDefault("http.max_retries", 3)
	v.SetDefault("http.user_agent", "station-linker/1.0")
	v.SetDefault("http.rate_per_host", 5.0)
	v.SetDefault("output.format", "csv")
	v.SetDefault("convert.delimiter", "\t")
	v.SetDefault("convert.date_layout", "2/1/2006")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks the settings a command depends on. mode is the command
// name: "link" or "convert".
func (c *Config) Validate(mode string) error {
	var errs []string

	switch mode {
	case "link":
		if c.Link.Threshold < 0 || c.Link.Threshold > 100 {
			errs = append(errs, "link.threshold must be between 0 and 100")
		}
		if c.Link.Concurrency < 1 || c.Link.Concurrency > 64 {
			errs = append(errs, "link.concurrency must be between 1 and 64")
		}
		if c.Link.ProgressEvery < 0 {
			errs = append(errs, "link.progress_every must be >= 0")
		}
		if len(c.Input.Encodings) == 0 {
			errs = append(errs, "input.encodings must not be empty")
		}
		if !singleRune(c.Input.Delimiter) {
			errs = append(errs, "input.delimiter must be a single character")
		}
		if c.HTTP.MaxRetries < 0 {
			errs = append(errs, "http.max_retries must be >= 0")
		}
		switch c.Output.Format {
		case "csv", "json", "xlsx":
		default:
			errs = append(errs, "output.format must be one of csv, json, xlsx")
		}
	case "convert":
		if !singleRune(c.Convert.Delimiter) {
			errs = append(errs, "convert.delimiter must be a single character")
		}
		if c.Convert.DateLayout == "" {
			errs = append(errs, "convert.date_layout is required")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(errs) > 0 {
		return eris.Errorf("config: %s", strings.Join(errs, "; "))
	}
	return nil
}

// Delimiter returns the first rune of s, or def when s is empty.
func Delimiter(s string, def rune) rune {
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 || r == utf8.RuneError {
		return def
	}
	return r
}

func singleRune(s string) bool {
	return utf8.RuneCountInString(s) == 1
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
