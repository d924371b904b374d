package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

const envModelsDir = "GGUFSCOPE_MODELS_DIR"

// Config represents the ggufscope configuration file
// (~/.config/ggufscope/config.yaml). Pointer fields distinguish "not set"
// from zero values.
type Config struct {
	ModelsDir string `yaml:"models_dir"`

	// Parsing and reporting
	MaxDepth   *int64 `yaml:"max_depth"`
	ArrayLimit *int64 `yaml:"array_limit"`
	Workers    *int64 `yaml:"workers"`

	// Output
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`

	// Server
	ServerAddress  string `yaml:"server_address"`
	MaxUploadBytes *int64 `yaml:"max_upload_bytes"`
}

func configPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "ggufscope", "config.yaml")
}

// LoadConfig reads the config file at path, or the default location when
// path is empty. A missing default file yields a zero Config.
func LoadConfig(path string) (Config, error) {
	explicit := path != ""
	if !explicit {
		path = configPath()
	}
	if path == "" {
		return Config{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return Config{}, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

func applyLogConfig(c *cli.Command, cfg Config) {
	if cfg.LogLevel != "" && !c.IsSet("log-level") {
		logLevel = cfg.LogLevel
	}
	if cfg.LogFormat != "" && !c.IsSet("log-format") {
		logFormat = cfg.LogFormat
	}
}

// applyParseConfig applies config file defaults to the parse flags when the
// corresponding CLI flag was not explicitly set.
func applyParseConfig(c *cli.Command, cfg Config) {
	if cfg.MaxDepth != nil && !c.IsSet("max-depth") {
		maxDepth = *cfg.MaxDepth
	}
	if cfg.ArrayLimit != nil && !c.IsSet("array-limit") {
		arrayLimit = *cfg.ArrayLimit
	}
}

// resolveModelsDir picks the models directory: flag, then config, then env.
func resolveModelsDir(flagValue string, cfg Config) (string, error) {
	if dir := strings.TrimSpace(flagValue); dir != "" {
		return filepath.Clean(dir), nil
	}
	if dir := strings.TrimSpace(cfg.ModelsDir); dir != "" {
		return filepath.Clean(dir), nil
	}
	if dir := strings.TrimSpace(os.Getenv(envModelsDir)); dir != "" {
		return filepath.Clean(dir), nil
	}
	return "", fmt.Errorf("--models-path is required unless %s is set", envModelsDir)
}
