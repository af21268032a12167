package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/verte-zerg/keysprint/internal/config"
	"github.com/verte-zerg/keysprint/internal/model"
)

func ptr[T any](v T) *T { return &v }

func TestBuildConfigDefaultsToWordsMode(t *testing.T) {
	cmd := newRootCmd()
	if err := cmd.Flags().Parse(nil); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	cfg, err := buildConfig(cmd, config.FileConfig{})
	if err != nil {
		t.Fatalf("build config: %v", err)
	}
	if cfg.Mode != model.ModeWords || cfg.Words != defaultWords {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg.SinkPolicy != model.SinkWarn {
		t.Fatalf("expected warn sink policy, got %v", cfg.SinkPolicy)
	}
}

func TestBuildConfigTimeMode(t *testing.T) {
	cmd := newRootCmd()
	if err := cmd.Flags().Parse([]string{"--seconds", "30"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	cfg, err := buildConfig(cmd, config.FileConfig{})
	if err != nil {
		t.Fatalf("build config: %v", err)
	}
	if cfg.Mode != model.ModeTime || cfg.Seconds != 30 {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg.Words != defaultTimeWords {
		t.Fatalf("expected %d words in time mode, got %d", defaultTimeWords, cfg.Words)
	}
}

func TestBuildConfigFlagsOverrideFile(t *testing.T) {
	cmd := newRootCmd()
	if err := cmd.Flags().Parse([]string{"--words", "7", "--sink-policy", "fail"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	fileCfg := config.FileConfig{
		Practice: config.PracticeConfig{
			Words:     ptr(40),
			Sentences: ptr(3),
			Pace:      ptr(55),
		},
		Results: config.ResultsConfig{SinkPolicy: ptr("warn")},
	}
	cfg, err := buildConfig(cmd, fileCfg)
	if err != nil {
		t.Fatalf("build config: %v", err)
	}
	if cfg.Words != 7 {
		t.Fatalf("expected flag words 7, got %d", cfg.Words)
	}
	if cfg.Mode != model.ModeSentences || cfg.Sentences != 3 {
		t.Fatalf("expected sentences mode from file, got %+v", cfg)
	}
	if cfg.PaceWPM != 55 {
		t.Fatalf("expected pace from file, got %d", cfg.PaceWPM)
	}
	if cfg.SinkPolicy != model.SinkFail {
		t.Fatalf("expected fail sink policy from flag")
	}
}

func TestBuildConfigRejectsContradictions(t *testing.T) {
	cases := [][]string{
		{"--seconds", "10", "--sentences", "2"},
		{"--sink-policy", "panic"},
		{"--caps", "2"},
		{"--seconds", "-1"},
	}
	for _, args := range cases {
		cmd := newRootCmd()
		if err := cmd.Flags().Parse(args); err != nil {
			t.Fatalf("parse flags %v: %v", args, err)
		}
		_, err := buildConfig(cmd, config.FileConfig{})
		if !errors.Is(err, model.ErrConfig) {
			t.Fatalf("expected config error for %v, got %v", args, err)
		}
	}
}

func TestBuildStatsConfig(t *testing.T) {
	newStatsCmd()
	statsSince = "2024-03-01"
	statsLast = 5
	cfg, err := buildStatsConfig()
	if err != nil {
		t.Fatalf("build stats config: %v", err)
	}
	if cfg.Since == nil || cfg.Since.Day() != 1 || cfg.Last != 5 || cfg.CurveWindow != defaultCurveWindow {
		t.Fatalf("unexpected stats config: %+v", cfg)
	}

	statsSince = "yesterday"
	if _, err := buildStatsConfig(); err == nil {
		t.Fatalf("expected invalid --since error")
	}
	statsSince = ""
}

func TestListLangsIncludesEmbeddedPool(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "de.txt"), []byte("hallo\n"), 0o644); err != nil {
		t.Fatalf("write list: %v", err)
	}
	var out bytes.Buffer
	if err := listLangs(&out, dir); err != nil {
		t.Fatalf("list langs: %v", err)
	}
	if out.String() != "de\nen\n" {
		t.Fatalf("unexpected langs output: %q", out.String())
	}
}

func TestConfigTemplatesDecode(t *testing.T) {
	var tomlCfg config.FileConfig
	if _, err := toml.Decode(defaultTOMLTemplate(), &tomlCfg); err != nil {
		t.Fatalf("decode toml template: %v", err)
	}
	var yamlCfg config.FileConfig
	if err := yaml.Unmarshal([]byte(defaultYAMLTemplate()), &yamlCfg); err != nil {
		t.Fatalf("decode yaml template: %v", err)
	}

	dir := t.TempDir()
	path := filepath.Join(dir, "keysprint", "config.toml")
	if err := writeConfigTemplate(path); err != nil {
		t.Fatalf("write template: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read template: %v", err)
	}
	if !strings.Contains(string(data), "[practice]") {
		t.Fatalf("unexpected template: %s", data)
	}
	if err := os.WriteFile(path, []byte("custom\n"), 0o644); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	if err := writeConfigTemplate(path); err != nil {
		t.Fatalf("rewrite template: %v", err)
	}
	data, _ = os.ReadFile(path)
	if string(data) != "custom\n" {
		t.Fatalf("existing config must be kept, got %q", data)
	}
}
