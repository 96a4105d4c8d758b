package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ExoZora/exozora-core/internal/core/policy"
	"github.com/spf13/viper"
)

const (
	ConfigFileName  = "config"
	ConfigFileType  = "yaml"
	ExoZoraDirName  = ".exozora"
	HistoryFileName = "runs.json"
	EnvPrefix       = "EXOZORA"
)

var config *Config

// Config holds the application configuration
type Config struct {
	Policy   policy.Policy  `mapstructure:"policy"`
	Executor ExecutorConfig `mapstructure:"executor"`
	Output   OutputConfig   `mapstructure:"output"`
	History  HistoryConfig  `mapstructure:"history"`
}

// ExecutorConfig holds executor settings
type ExecutorConfig struct {
	// Timeout bounds each command, in seconds. Zero disables the limit.
	Timeout int  `mapstructure:"timeout"`
	DryRun  bool `mapstructure:"dry_run"`
}

// OutputConfig holds terminal output settings
type OutputConfig struct {
	RenderMarkdown bool `mapstructure:"render_markdown"`
	Width          int  `mapstructure:"width"`
}

// HistoryConfig holds run history settings
type HistoryConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// CommandTimeout returns the executor timeout as a duration.
func (c ExecutorConfig) CommandTimeout() time.Duration {
	return time.Duration(c.Timeout) * time.Second
}

// GetConfigDir returns the exozora config directory path
func GetConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ExoZoraDirName), nil
}

// GetHistoryPath returns the run history file path
func GetHistoryPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, HistoryFileName), nil
}

func setDefaults(v *viper.Viper) {
	// Policy defaults
	v.SetDefault("policy.extra_network_commands", []string{})

	// Executor defaults
	v.SetDefault("executor.timeout", 30)
	v.SetDefault("executor.dry_run", false)

	// Output defaults
	v.SetDefault("output.render_markdown", true)
	v.SetDefault("output.width", 100)

	// History defaults
	v.SetDefault("history.enabled", true)
}

// InitConfig initializes the configuration
func InitConfig() (*Config, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetConfigName(ConfigFileName)
	v.SetConfigType(ConfigFileType)
	v.AddConfigPath(configDir)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// Read config file (ignore if not exists)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.Executor.Timeout < 0 {
		return nil, fmt.Errorf("invalid executor.timeout %d: must not be negative", cfg.Executor.Timeout)
	}

	config = &cfg
	return config, nil
}

// GetConfig returns the loaded config
func GetConfig() *Config {
	return config
}

// SaveConfig saves the config to file
func SaveConfig(cfg *Config) error {
	configDir, err := GetConfigDir()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	v := viper.New()
	v.SetConfigName(ConfigFileName)
	v.SetConfigType(ConfigFileType)
	v.AddConfigPath(configDir)

	v.Set("policy.extra_network_commands", cfg.Policy.ExtraNetworkCommands)
	v.Set("executor.timeout", cfg.Executor.Timeout)
	v.Set("executor.dry_run", cfg.Executor.DryRun)
	v.Set("output.render_markdown", cfg.Output.RenderMarkdown)
	v.Set("output.width", cfg.Output.Width)
	v.Set("history.enabled", cfg.History.Enabled)

	configPath := filepath.Join(configDir, ConfigFileName+"."+ConfigFileType)
	return v.WriteConfigAs(configPath)
}
