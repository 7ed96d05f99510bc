package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	DefaultLogLevel = "info"
	DefaultTarget   = ""
	StoreFileName   = "presets.json"

	// HomeEnv overrides the directory holding the preset store.
	HomeEnv = "PAM_HOME"
)

type Config struct {
	StorePath string `yaml:"store_path"`
	LogLevel  string `yaml:"log_level"`
	AssumeYes bool   `yaml:"assume_yes"`
	Target    string `yaml:"target"`
}

func DefaultConfig() *Config {
	return &Config{
		StorePath: DefaultStorePath(),
		LogLevel:  DefaultLogLevel,
		Target:    DefaultTarget,
	}
}

// DefaultStorePath is $PAM_HOME/presets.json, falling back to the user
// config directory and then the working directory.
func DefaultStorePath() string {
	if home := os.Getenv(HomeEnv); home != "" {
		return filepath.Join(home, StoreFileName)
	}
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "pam", StoreFileName)
	}
	return StoreFileName
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if _, err := cfg.Level(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadOptional is Load that returns defaults when path is empty or missing.
func LoadOptional(path string) (*Config, error) {
	if path == "" {
		return DefaultConfig(), nil
	}
	cfg, err := Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return DefaultConfig(), nil
	}
	return cfg, err
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ResolveStorePath picks the store location: an explicit flag wins over the
// config file, which wins over the default.
func (c *Config) ResolveStorePath(flag string) string {
	if flag != "" {
		return flag
	}
	if c.StorePath != "" {
		return c.StorePath
	}
	return DefaultStorePath()
}

// Level parses LogLevel.
func (c *Config) Level() (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(c.LogLevel)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level %q", c.LogLevel)
}
