package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/metaphox/geel/interp"
)

func TestLoadConfig_Defaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg, err := loadConfig("", false)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Prompt != ">>> " || cfg.Continuation != "... " || !cfg.Color {
		t.Errorf("defaults: %+v", cfg)
	}
	if cfg.MaxDepth != interp.DefaultMaxDepth {
		t.Errorf("max depth: got %d", cfg.MaxDepth)
	}
	if want := filepath.Join(home, historyFile); cfg.History != want {
		t.Errorf("history: got %q, want %q", cfg.History, want)
	}
}

func TestLoadConfig_HomeFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	data := "prompt: \"geel> \"\nhistory: ~/taariikh\ncolor: false\nmax_depth: 64\n"
	if err := os.WriteFile(filepath.Join(home, configFile), []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := loadConfig("", false)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Prompt != "geel> " || cfg.Color || cfg.MaxDepth != 64 {
		t.Errorf("config: %+v", cfg)
	}
	if cfg.Continuation != "... " {
		t.Errorf("continuation default lost: %q", cfg.Continuation)
	}
	if want := filepath.Join(home, "taariikh"); cfg.History != want {
		t.Errorf("history: got %q, want %q", cfg.History, want)
	}
}

func TestLoadConfig_Errors(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	dir := t.TempDir()

	if _, err := loadConfig(filepath.Join(dir, "maqan.yaml"), true); err == nil {
		t.Error("missing explicit config: expected an error")
	}

	unknown := filepath.Join(dir, "unknown.yaml")
	os.WriteFile(unknown, []byte("promt: \"> \"\n"), 0o644)
	_, err := loadConfig(unknown, true)
	if err == nil || !strings.Contains(err.Error(), "promt") {
		t.Errorf("unknown field: got %v", err)
	}

	negative := filepath.Join(dir, "negative.yaml")
	os.WriteFile(negative, []byte("max_depth: -1\n"), 0o644)
	if _, err := loadConfig(negative, true); err == nil {
		t.Error("negative max_depth: expected an error")
	}
}

func TestLoadConfig_EmptyFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	empty := filepath.Join(t.TempDir(), "empty.yaml")
	os.WriteFile(empty, nil, 0o644)
	cfg, err := loadConfig(empty, true)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Prompt != ">>> " {
		t.Errorf("prompt: got %q", cfg.Prompt)
	}
}
