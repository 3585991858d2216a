package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	DefaultModel = "gemini-2.0-flash"

	// APIKeyEnv is read without the GEMINI_PROXY_ prefix.
	APIKeyEnv = "GEMINI_API_KEY"
	envPrefix = "GEMINI_PROXY"
)

// LoadConfig builds the configuration from defaults, an optional YAML file,
// an optional .env file and the environment, in increasing precedence.
// An empty configFile means "config.yaml in the working directory, if any".
func LoadConfig(configFile string) (*Config, error) {
	if err := loadEnvFile(".env"); err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetConfigType("yaml")
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("api_key", APIKeyEnv); err != nil {
		return nil, fmt.Errorf("error binding %s: %w", APIKeyEnv, err)
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("error reading config file: %w", err)
			}
		}
	}

	var configuration Config
	if err := v.Unmarshal(&configuration); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := validate(&configuration); err != nil {
		return nil, err
	}
	return &configuration, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("listen_address", "0.0.0.0:8080")
	v.SetDefault("metrics_address", "")
	// Empty keeps the SDK's default endpoint.
	v.SetDefault("api_root", "")
	v.SetDefault("api_key", "")
	v.SetDefault("model", DefaultModel)
	v.SetDefault("request_timeout", "60s")
	v.SetDefault("max_body_bytes", 10<<20)
	v.SetDefault("log_level", "info")
}

// loadEnvFile never overrides variables already present in the environment.
func loadEnvFile(path string) error {
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("error loading %s: %w", path, err)
	}
	return nil
}

func validate(c *Config) error {
	// api_key may be empty on purpose.
	switch {
	case c.ListenAddress == "":
		return errors.New("listen_address is required")
	case c.Model == "":
		return errors.New("model is required")
	case c.MaxBodyBytes <= 0:
		return fmt.Errorf("max_body_bytes must be positive, got %d", c.MaxBodyBytes)
	case c.RequestTimeout < 0:
		return fmt.Errorf("request_timeout must not be negative, got %s", c.RequestTimeout)
	}
	return nil
}
