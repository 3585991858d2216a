package config

import "time"

// Config holds the application configuration.
type Config struct {
	ListenAddress  string        `mapstructure:"listen_address"`
	MetricsAddress string        `mapstructure:"metrics_address"`
	APIRoot        string        `mapstructure:"api_root"`
	APIKey         string        `mapstructure:"api_key"`
	Model          string        `mapstructure:"model"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	MaxBodyBytes   int64         `mapstructure:"max_body_bytes"`
	LogLevel       string        `mapstructure:"log_level"`
}

// MissingCredential reports whether no Gemini API key was configured.
// The proxy still starts in that case; every generation call will fail.
func (c *Config) MissingCredential() bool {
	return c.APIKey == ""
}
