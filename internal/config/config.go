// Package config loads application configuration from an optional YAML file
// with environment-variable overrides.
package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/tailordocs/go-tailor/internal/logger"
)

// LLMConfig holds the settings of the chat-completions backend used for
// keyword extraction and schema tailoring.
type LLMConfig struct {
	APIKey         string `yaml:"api_key"`
	APIURL         string `yaml:"api_url"`
	Model          string `yaml:"model"`
	MaxAttempts    int    `yaml:"max_attempts"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// Config is the application configuration.
type Config struct {
	LLM    LLMConfig     `yaml:"llm"`
	Logger logger.Config `yaml:"logger"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		LLM: LLMConfig{
			APIURL:         "https://api.openai.com/v1/chat/completions",
			Model:          "gpt-4o-mini",
			MaxAttempts:    3,
			TimeoutSeconds: 120,
		},
		Logger: logger.Config{
			Level:  "info",
			Format: "pretty",
		},
	}
}

// Load builds the configuration from defaults, the YAML file at path (may be
// empty or absent), and finally environment variables. A .env file in the
// working directory is loaded first so local setups need no exported vars.
func Load(path string) (*Config, error) {
	// Best effort; a missing .env file is the normal case.
	_ = godotenv.Load()

	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("read config file: %w", err)
			}
		} else if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		cfg.LLM.APIKey = v
	}
	if v := os.Getenv("OPENAI_API_URL"); v != "" {
		cfg.LLM.APIURL = v
	}
	if v := os.Getenv("OPENAI_MODEL"); v != "" {
		cfg.LLM.Model = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logger.Level = v
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks configuration bounds. The API key is deliberately not
// required here; only the commands that call the backend need one.
func (c *Config) Validate() error {
	if c.LLM.MaxAttempts < 1 {
		return fmt.Errorf("llm.max_attempts must be at least 1, got %d", c.LLM.MaxAttempts)
	}
	if c.LLM.TimeoutSeconds < 1 {
		return fmt.Errorf("llm.timeout_seconds must be at least 1, got %d", c.LLM.TimeoutSeconds)
	}
	if c.LLM.APIURL == "" {
		return fmt.Errorf("llm.api_url must not be empty")
	}
	if c.LLM.Model == "" {
		return fmt.Errorf("llm.model must not be empty")
	}
	return nil
}
