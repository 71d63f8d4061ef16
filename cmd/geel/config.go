package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/metaphox/geel/interp"
)

const (
	configFile  = ".geel.yaml"
	historyFile = ".geel_taariikh"
)

// Config is the optional ~/.geel.yaml file. Fields left out keep their
// defaults.
type Config struct {
	History      string `yaml:"history"`
	Prompt       string `yaml:"prompt"`
	Continuation string `yaml:"continuation"`
	Color        bool   `yaml:"color"`
	MaxDepth     int    `yaml:"max_depth"`
}

func defaultConfig() Config {
	return Config{
		History:      filepath.Join("~", historyFile),
		Prompt:       ">>> ",
		Continuation: "... ",
		Color:        true,
		MaxDepth:     interp.DefaultMaxDepth,
	}
}

// loadConfig reads the config at path over the defaults. A missing file is
// only an error when the path was given explicitly.
func loadConfig(path string, explicit bool) (Config, error) {
	cfg := defaultConfig()
	if path == "" {
		path = filepath.Join("~", configFile)
	}
	abs, err := expandHome(path)
	if err != nil {
		return cfg, fmt.Errorf("config: resolve %s: %w", path, err)
	}

	file, err := os.Open(abs)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !explicit {
			return finish(cfg)
		}
		return cfg, fmt.Errorf("config: %w", err)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return cfg, fmt.Errorf("config: parse %s: %w", abs, err)
	}
	if cfg.MaxDepth < 0 {
		return cfg, fmt.Errorf("config: %s: max_depth must not be negative", abs)
	}
	return finish(cfg)
}

func finish(cfg Config) (Config, error) {
	if cfg.MaxDepth == 0 {
		cfg.MaxDepth = interp.DefaultMaxDepth
	}
	hist, err := expandHome(cfg.History)
	if err != nil {
		return cfg, fmt.Errorf("config: resolve history %s: %w", cfg.History, err)
	}
	cfg.History = hist
	return cfg, nil
}

// expandHome replaces a leading ~ with the user's home directory.
func expandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}
