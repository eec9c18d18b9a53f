package config

import (
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Log       LogConfig
	CORS      CORSConfig
	Extractor ExtractorConfig
	Summary   SummaryConfig
	Image     ImageConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// ProviderConfig holds settings for a single LLM extractor provider.
type ProviderConfig struct {
	Provider     string `mapstructure:"provider"`
	APIKey       string `mapstructure:"api_key"`
	DefaultModel string `mapstructure:"default_model"`
	TimeoutSecs  int    `mapstructure:"timeout_secs"`
}

// ExtractorConfig holds LLM extractor settings with multi-provider support.
// Mode is one of "single", "fallback", or "merge".
type ExtractorConfig struct {
	Mode      string         `mapstructure:"mode"`
	Primary   ProviderConfig `mapstructure:"primary"`
	Secondary ProviderConfig `mapstructure:"secondary"`
	Tertiary  ProviderConfig `mapstructure:"tertiary"`
}

// PrimaryConfig returns the primary provider config.
func (e *ExtractorConfig) PrimaryConfig() *ProviderConfig {
	return &e.Primary
}

// SecondaryConfig returns the secondary provider config, or nil if not configured.
func (e *ExtractorConfig) SecondaryConfig() *ProviderConfig {
	if e.Secondary.Provider != "" {
		return &e.Secondary
	}
	return nil
}

// TertiaryConfig returns the tertiary provider config, or nil if not configured.
func (e *ExtractorConfig) TertiaryConfig() *ProviderConfig {
	if e.Tertiary.Provider != "" {
		return &e.Tertiary
	}
	return nil
}

// SummaryConfig holds settings for the post-extraction summary call.
type SummaryConfig struct {
	Enabled   bool `mapstructure:"enabled"`
	MaxTokens int  `mapstructure:"max_tokens"`
}

// ImageConfig holds image preprocessing limits.
type ImageConfig struct {
	MaxDimension  int   `mapstructure:"max_dimension"`
	MaxFileSizeMB int64 `mapstructure:"max_file_size_mb"`
}

// Load reads configuration from environment variables with the INVEX_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("INVEX")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "120s")
	v.SetDefault("server.environment", "development")

	// Log defaults
	v.SetDefault("log.level", "debug")
	v.SetDefault("log.format", "console")

	// CORS defaults (localhost origins for development)
	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000")

	// Extractor defaults
	v.SetDefault("extractor.mode", "single")
	v.SetDefault("extractor.primary.provider", "claude")
	v.SetDefault("extractor.primary.api_key", "")
	v.SetDefault("extractor.primary.default_model", "")
	v.SetDefault("extractor.primary.timeout_secs", 120)
	v.SetDefault("extractor.secondary.provider", "")
	v.SetDefault("extractor.secondary.api_key", "")
	v.SetDefault("extractor.secondary.default_model", "")
	v.SetDefault("extractor.secondary.timeout_secs", 120)
	v.SetDefault("extractor.tertiary.provider", "")
	v.SetDefault("extractor.tertiary.api_key", "")
	v.SetDefault("extractor.tertiary.default_model", "")
	v.SetDefault("extractor.tertiary.timeout_secs", 120)

	// Summary defaults
	v.SetDefault("summary.enabled", true)
	v.SetDefault("summary.max_tokens", 1024)

	// Image defaults
	v.SetDefault("image.max_dimension", 2048)
	v.SetDefault("image.max_file_size_mb", 20)

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":                       "INVEX_SERVER_PORT",
		"server.read_timeout":               "INVEX_SERVER_READ_TIMEOUT",
		"server.write_timeout":              "INVEX_SERVER_WRITE_TIMEOUT",
		"server.environment":                "INVEX_SERVER_ENVIRONMENT",
		"log.level":                         "INVEX_LOG_LEVEL",
		"log.format":                        "INVEX_LOG_FORMAT",
		"cors.allowed_origins":              "INVEX_CORS_ALLOWED_ORIGINS",
		"extractor.mode":                    "INVEX_EXTRACTOR_MODE",
		"extractor.primary.provider":        "INVEX_EXTRACTOR_PRIMARY_PROVIDER",
		"extractor.primary.api_key":         "INVEX_EXTRACTOR_PRIMARY_API_KEY",
		"extractor.primary.default_model":   "INVEX_EXTRACTOR_PRIMARY_DEFAULT_MODEL",
		"extractor.primary.timeout_secs":    "INVEX_EXTRACTOR_PRIMARY_TIMEOUT_SECS",
		"extractor.secondary.provider":      "INVEX_EXTRACTOR_SECONDARY_PROVIDER",
		"extractor.secondary.api_key":       "INVEX_EXTRACTOR_SECONDARY_API_KEY",
		"extractor.secondary.default_model": "INVEX_EXTRACTOR_SECONDARY_DEFAULT_MODEL",
		"extractor.secondary.timeout_secs":  "INVEX_EXTRACTOR_SECONDARY_TIMEOUT_SECS",
		"extractor.tertiary.provider":       "INVEX_EXTRACTOR_TERTIARY_PROVIDER",
		"extractor.tertiary.api_key":        "INVEX_EXTRACTOR_TERTIARY_API_KEY",
		"extractor.tertiary.default_model":  "INVEX_EXTRACTOR_TERTIARY_DEFAULT_MODEL",
		"extractor.tertiary.timeout_secs":   "INVEX_EXTRACTOR_TERTIARY_TIMEOUT_SECS",
		"summary.enabled":                   "INVEX_SUMMARY_ENABLED",
		"summary.max_tokens":                "INVEX_SUMMARY_MAX_TOKENS",
		"image.max_dimension":               "INVEX_IMAGE_MAX_DIMENSION",
		"image.max_file_size_mb":            "INVEX_IMAGE_MAX_FILE_SIZE_MB",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Railway/Heroku/Render set a PORT env var. Use it if INVEX_SERVER_PORT is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("INVEX_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
	}
	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}

	// Parse CORS allowed origins from comma-separated string
	var corsOrigins []string
	for _, o := range strings.Split(v.GetString("cors.allowed_origins"), ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			corsOrigins = append(corsOrigins, o)
		}
	}
	cfg.CORS = CORSConfig{
		AllowedOrigins: corsOrigins,
	}

	cfg.Extractor = ExtractorConfig{
		Mode: v.GetString("extractor.mode"),
		Primary: ProviderConfig{
			Provider:     v.GetString("extractor.primary.provider"),
			APIKey:       v.GetString("extractor.primary.api_key"),
			DefaultModel: v.GetString("extractor.primary.default_model"),
			TimeoutSecs:  v.GetInt("extractor.primary.timeout_secs"),
		},
		Secondary: ProviderConfig{
			Provider:     v.GetString("extractor.secondary.provider"),
			APIKey:       v.GetString("extractor.secondary.api_key"),
			DefaultModel: v.GetString("extractor.secondary.default_model"),
			TimeoutSecs:  v.GetInt("extractor.secondary.timeout_secs"),
		},
		Tertiary: ProviderConfig{
			Provider:     v.GetString("extractor.tertiary.provider"),
			APIKey:       v.GetString("extractor.tertiary.api_key"),
			DefaultModel: v.GetString("extractor.tertiary.default_model"),
			TimeoutSecs:  v.GetInt("extractor.tertiary.timeout_secs"),
		},
	}

	cfg.Summary = SummaryConfig{
		Enabled:   v.GetBool("summary.enabled"),
		MaxTokens: v.GetInt("summary.max_tokens"),
	}

	cfg.Image = ImageConfig{
		MaxDimension:  v.GetInt("image.max_dimension"),
		MaxFileSizeMB: v.GetInt64("image.max_file_size_mb"),
	}

	return cfg, nil
}
