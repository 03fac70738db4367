package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Dive      DiveConfig      `yaml:"dive" mapstructure:"dive"`
	Extract   ExtractConfig   `yaml:"extract" mapstructure:"extract"`
	Prompt    PromptConfig    `yaml:"prompt" mapstructure:"prompt"`
	Anthropic AnthropicConfig `yaml:"anthropic" mapstructure:"anthropic"`
	Brave     BraveConfig     `yaml:"brave" mapstructure:"brave"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// ServerConfig configures the HTTP API server and its gates.
type ServerConfig struct {
	Port           int     `yaml:"port" mapstructure:"port"`
	SessionToken   string  `yaml:"session_token" mapstructure:"session_token"`
	RateLimitRPS   float64 `yaml:"rate_limit_rps" mapstructure:"rate_limit_rps"`
	RateLimitBurst int     `yaml:"rate_limit_burst" mapstructure:"rate_limit_burst"`
}

// DiveConfig configures the acquisition and synthesis phases.
type DiveConfig struct {
	FetchTimeoutMs  int     `yaml:"fetch_timeout_ms" mapstructure:"fetch_timeout_ms"`
	MaxConcurrency  int     `yaml:"max_concurrency" mapstructure:"max_concurrency"`
	TargetPages     int     `yaml:"target_pages" mapstructure:"target_pages"`
	MinContentChars int     `yaml:"min_content_chars" mapstructure:"min_content_chars"`
	OverfetchFactor int     `yaml:"overfetch_factor" mapstructure:"overfetch_factor"`
	MaxTokens       int64   `yaml:"max_tokens" mapstructure:"max_tokens"`
	Temperature     float64 `yaml:"temperature" mapstructure:"temperature"`
}

// ExtractConfig configures HTML content extraction.
type ExtractConfig struct {
	MaxChars int `yaml:"max_chars" mapstructure:"max_chars"`
}

// PromptConfig configures synthesis prompt assembly.
type PromptConfig struct {
	MaxSourceChars int `yaml:"max_source_chars" mapstructure:"max_source_chars"`
}

// AnthropicConfig holds Anthropic API settings.
type AnthropicConfig struct {
	Key   string `yaml:"key" mapstructure:"key"`
	Model string `yaml:"model" mapstructure:"model"`
}

// BraveConfig holds Brave Search API settings.
type BraveConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("FATHOM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults. Credential keys need an explicit empty default too — viper
	// only surfaces env-var overrides for keys it already knows about.
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.session_token", "")
	v.SetDefault("server.rate_limit_rps", 5)
	v.SetDefault("server.rate_limit_burst", 10)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("dive.fetch_timeout_ms", 3000)
	v.SetDefault("dive.max_concurrency", 4)
	v.SetDefault("dive.target_pages", 2)
	v.SetDefault("dive.min_content_chars", 100)
	v.SetDefault("dive.overfetch_factor", 2)
	v.SetDefault("dive.max_tokens", 1024)
	v.SetDefault("dive.temperature", 0.3)
	v.SetDefault("extract.max_chars", 10000)
	v.SetDefault("prompt.max_source_chars", 1000)
	v.SetDefault("anthropic.key", "")
	v.SetDefault("anthropic.model", "claude-haiku-4-5-20251001")
	v.SetDefault("brave.key", "")
	v.SetDefault("brave.base_url", "https://api.search.brave.com/res/v1")

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

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks cross-field invariants that viper defaults alone cannot
// guarantee once overridden.
func (c *Config) Validate() error {
	if c.Dive.TargetPages < 1 {
		return eris.New("config: dive.target_pages must be >= 1")
	}
	if c.Dive.MaxConcurrency < 1 {
		return eris.New("config: dive.max_concurrency must be >= 1")
	}
	if c.Dive.OverfetchFactor < 1 {
		return eris.New("config: dive.overfetch_factor must be >= 1")
	}
	if c.Dive.FetchTimeoutMs < 1 {
		return eris.New("config: dive.fetch_timeout_ms must be >= 1")
	}
	if c.Extract.MaxChars < 1 {
		return eris.New("config: extract.max_chars must be >= 1")
	}
	if c.Prompt.MaxSourceChars < 1 {
		return eris.New("config: prompt.max_source_chars must be >= 1")
	}
	// The prompt cap must stay below the extractor cap so per-source prompt
	// truncation is always the tighter bound.
	if c.Prompt.MaxSourceChars >= c.Extract.MaxChars {
		return eris.New("config: prompt.max_source_chars must be < extract.max_chars")
	}
	return nil
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
