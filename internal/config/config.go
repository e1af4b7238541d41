package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"   validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	OCR      OCRConfig      `mapstructure:"ocr"      validate:"required"`
	LLM      LLMConfig      `mapstructure:"llm"      validate:"required"`
	Task     TaskConfig     `mapstructure:"task"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required"`
}

// OCRConfig contains the text recognition client settings.
type OCRConfig struct {
	APIKey      string        `mapstructure:"api_key"      validate:"required"`
	SecretKey   string        `mapstructure:"secret_key"   validate:"required"`
	TokenURL    string        `mapstructure:"token_url"    validate:"omitempty,url"`
	EndpointURL string        `mapstructure:"endpoint_url" validate:"omitempty,url"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

// LLMConfig contains the structuring client settings.
type LLMConfig struct {
	APIKey  string        `mapstructure:"api_key"  validate:"required"`
	ModelID string        `mapstructure:"model_id" validate:"required"`
	BaseURL string        `mapstructure:"base_url" validate:"omitempty,url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// TaskConfig contains the task engine settings.
type TaskConfig struct {
	IdlePollInterval time.Duration `mapstructure:"idle_poll_interval"`
	TerminalTTL      time.Duration `mapstructure:"terminal_ttl"`
}
