// Package config handles configuration loading and management for reviewcrew.
// It supports XDG config paths, project-level overrides, and environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for reviewcrew.
type Config struct {
	Anthropic AnthropicConfig `mapstructure:"anthropic"`
	Engine    EngineConfig    `mapstructure:"engine"`
	Worker    WorkerConfig    `mapstructure:"worker"`
}

// AnthropicConfig holds inference collaborator settings.
type AnthropicConfig struct {
	// APIKey is the Anthropic API key; ${VAR} references are expanded.
	APIKey string `mapstructure:"api_key"`
	// Model is the model identifier used for every worker call.
	Model string `mapstructure:"model"`
	// MaxTokens caps the response length per call.
	MaxTokens int64 `mapstructure:"max_tokens"`
	// UseAWSBedrock routes calls through Amazon Bedrock instead of the
	// Anthropic API.
	UseAWSBedrock bool `mapstructure:"use_aws_bedrock"`
	// AWSRegion overrides the Bedrock region.
	AWSRegion string `mapstructure:"aws_region"`
	// AWSProfile selects an AWS credentials profile for Bedrock.
	AWSProfile string `mapstructure:"aws_profile"`
}

// EngineConfig holds scheduler settings.
type EngineConfig struct {
	// MaxInFlight bounds concurrent task executions; zero means unbounded.
	MaxInFlight int64 `mapstructure:"max_in_flight"`
}

// WorkerConfig holds per-task execution settings.
type WorkerConfig struct {
	// CallTimeout bounds each collaborator call; zero means no deadline.
	CallTimeout time.Duration `mapstructure:"call_timeout"`
	// MaxAttempts is the total attempt budget per task, retries included.
	MaxAttempts int `mapstructure:"max_attempts"`
	// BackoffBase is the first retry delay; it doubles per attempt.
	BackoffBase time.Duration `mapstructure:"backoff_base"`
}

// Load loads configuration from XDG paths, project overrides, and environment variables.
// Precedence (highest to lowest):
// 1. Environment variables (ANTHROPIC_API_KEY, REVIEWCREW_MODEL)
// 2. Project config (.reviewcrew.yaml in current directory or parent)
// 3. User config (~/.config/reviewcrew/config.yaml)
// 4. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	userConfigDir := getUserConfigDir()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(userConfigDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading user config: %w", err)
		}
	}

	// Load project config if present
	projectConfig := findProjectConfig()
	if projectConfig != "" {
		projectViper := viper.New()
		projectViper.SetConfigFile(projectConfig)
		if err := projectViper.ReadInConfig(); err == nil {
			// Merge project config (takes precedence)
			if err := v.MergeConfigMap(projectViper.AllSettings()); err != nil {
				return nil, fmt.Errorf("merging project config: %w", err)
			}
		}
	}

	// Environment variable overrides
	v.AutomaticEnv()
	v.BindEnv("anthropic.api_key", "ANTHROPIC_API_KEY")
	v.BindEnv("anthropic.model", "REVIEWCREW_MODEL")
	v.BindEnv("anthropic.use_aws_bedrock", "CLAUDE_CODE_USE_BEDROCK")
	v.BindEnv("anthropic.aws_region", "AWS_REGION")

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	// Expand ${VAR} references
	cfg.Anthropic.APIKey = os.ExpandEnv(cfg.Anthropic.APIKey)

	return cfg, nil
}

// LoadFromPath loads configuration from a specific path (for testing).
func LoadFromPath(path string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	cfg.Anthropic.APIKey = os.ExpandEnv(cfg.Anthropic.APIKey)

	return cfg, nil
}

// Save writes the current configuration to the user config file.
func Save(cfg *Config) error {
	userConfigDir := getUserConfigDir()
	if err := os.MkdirAll(userConfigDir, 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	configPath := filepath.Join(userConfigDir, "config.yaml")

	v := viper.New()
	v.SetConfigFile(configPath)

	v.Set("anthropic.api_key", cfg.Anthropic.APIKey)
	v.Set("anthropic.model", cfg.Anthropic.Model)
	v.Set("anthropic.max_tokens", cfg.Anthropic.MaxTokens)
	v.Set("anthropic.use_aws_bedrock", cfg.Anthropic.UseAWSBedrock)
	v.Set("engine.max_in_flight", cfg.Engine.MaxInFlight)
	v.Set("worker.call_timeout", cfg.Worker.CallTimeout.String())
	v.Set("worker.max_attempts", cfg.Worker.MaxAttempts)
	v.Set("worker.backoff_base", cfg.Worker.BackoffBase.String())

	return v.WriteConfig()
}

// GetUserConfigPath returns the path to the user config file.
func GetUserConfigPath() string {
	return filepath.Join(getUserConfigDir(), "config.yaml")
}

// GetProjectConfigPath returns the path to the project config file if it exists.
func GetProjectConfigPath() string {
	return findProjectConfig()
}

// setDefaults configures default values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("anthropic.api_key", "")
	v.SetDefault("anthropic.model", "claude-sonnet-4-20250514")
	v.SetDefault("anthropic.max_tokens", 8192)
	v.SetDefault("anthropic.use_aws_bedrock", false)

	// Unbounded: the collaborator's rate limits are the real bottleneck.
	v.SetDefault("engine.max_in_flight", 0)

	v.SetDefault("worker.call_timeout", "5m")
	v.SetDefault("worker.max_attempts", 3)
	v.SetDefault("worker.backoff_base", "2s")
}

// getUserConfigDir returns the XDG config directory for reviewcrew.
func getUserConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "reviewcrew")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".config", "reviewcrew")
	}
	return filepath.Join(home, ".config", "reviewcrew")
}

// findProjectConfig searches for .reviewcrew.yaml in the current directory and parents.
func findProjectConfig() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		configPath := filepath.Join(cwd, ".reviewcrew.yaml")
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(cwd)
		if parent == cwd {
			break
		}
		cwd = parent
	}

	return ""
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		Anthropic: AnthropicConfig{
			Model:     "claude-sonnet-4-20250514",
			MaxTokens: 8192,
		},
		Engine: EngineConfig{
			MaxInFlight: 0,
		},
		Worker: WorkerConfig{
			CallTimeout: 5 * time.Minute,
			MaxAttempts: 3,
			BackoffBase: 2 * time.Second,
		},
	}
}
