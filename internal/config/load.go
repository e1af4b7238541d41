package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Load configuration from environment variables and optionally a
// config file. Environment variables (prefix REDINK, dots replaced by
// underscores, e.g. REDINK_SERVER_PORT) take precedence over values
// from the config file. Returns a populated Config struct or an error
// if loading/validation fails.
func Load() (*Config, error) {
	v := viper.New()

	// Defaults. Empty defaults register the keys so AutomaticEnv can
	// override them.
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("database.url", "")
	v.SetDefault("ocr.api_key", "")
	v.SetDefault("ocr.secret_key", "")
	v.SetDefault("ocr.token_url", "")
	v.SetDefault("ocr.endpoint_url", "")
	v.SetDefault("ocr.timeout", 30*time.Second)
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.model_id", "")
	v.SetDefault("llm.base_url", "")
	v.SetDefault("llm.timeout", 120*time.Second)
	v.SetDefault("task.idle_poll_interval", time.Second)
	v.SetDefault("task.terminal_ttl", time.Duration(0))

	// Optional config file in the working directory.
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix("REDINK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}
