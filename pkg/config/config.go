// Package config holds the pagehand server configuration. Defaults are fixed
// at values suitable for unattended operation; an optional YAML file and a
// small set of environment variables can override them.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Default engine settings. These match the fixed construction parameters the
// server was designed around.
const (
	DefaultModel     = "gpt-4o"
	DefaultVerbosity = 2
)

// EngineConfig configures the browser-automation engine.
type EngineConfig struct {
	// Headless controls whether the browser runs without a visible window
	Headless bool `yaml:"headless"`

	// Model is the identifier of the model used for page interpretation
	Model string `yaml:"model"`

	// Verbosity is the engine's own log verbosity (0-2)
	Verbosity int `yaml:"verbosity"`

	// DebugDOM enables DOM-level debug output in the engine
	DebugDOM bool `yaml:"debug_dom"`

	// APIKey authenticates against the model provider. Usually supplied via
	// the OPENAI_API_KEY environment variable rather than the config file.
	APIKey string `yaml:"api_key"`

	// BaseURL overrides the model provider endpoint (optional)
	BaseURL string `yaml:"base_url"`
}

// Config is the root configuration for the pagehand server.
type Config struct {
	// Debug mirrors every log line to stderr in addition to the log file
	Debug bool `yaml:"debug"`

	Engine EngineConfig `yaml:"engine"`
}

// Default returns the fixed baseline configuration.
func Default() *Config {
	return &Config{
		Engine: EngineConfig{
			Headless:  true,
			Model:     DefaultModel,
			Verbosity: DefaultVerbosity,
			DebugDOM:  true,
		},
	}
}

// Load builds the configuration from defaults, an optional YAML file, and
// environment overrides, in that order. An empty path skips the file step; a
// named file that does not exist is an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

// applyEnv layers environment variables over the current values.
func (c *Config) applyEnv() {
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		c.Engine.APIKey = key
	}
	if baseURL := os.Getenv("OPENAI_BASE_URL"); baseURL != "" {
		c.Engine.BaseURL = baseURL
	}
	if model := os.Getenv("PAGEHAND_MODEL"); model != "" {
		c.Engine.Model = model
	}
	if os.Getenv("PAGEHAND_DEBUG") != "" {
		c.Debug = true
	}
}
