package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "config.toml"))
	if err != nil {
		t.Fatalf("expected no error for missing file, got %v", err)
	}
	if cfg.Practice.Words != nil {
		t.Fatalf("expected empty config, got %+v", cfg)
	}
}

func TestLoadConfigTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	body := `log-level = "debug"

[practice]
words = 40
death = true
caps = 0.25

[results]
sink-policy = "fail"
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.LogLevel == nil || *cfg.LogLevel != "debug" {
		t.Fatalf("unexpected log level: %v", cfg.LogLevel)
	}
	if cfg.Practice.Words == nil || *cfg.Practice.Words != 40 {
		t.Fatalf("unexpected words: %v", cfg.Practice.Words)
	}
	if cfg.Practice.Death == nil || !*cfg.Practice.Death {
		t.Fatalf("expected death mode set")
	}
	if cfg.Practice.CapsPct == nil || *cfg.Practice.CapsPct != 0.25 {
		t.Fatalf("unexpected caps: %v", cfg.Practice.CapsPct)
	}
	if cfg.Practice.Seconds != nil {
		t.Fatalf("expected seconds unset")
	}
	if cfg.Results.SinkPolicy == nil || *cfg.Results.SinkPolicy != "fail" {
		t.Fatalf("unexpected sink policy: %v", cfg.Results.SinkPolicy)
	}
}

func TestLoadConfigYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := "practice:\n  seconds: 30\n  punct-set: \".,\"\nresults:\n  log-csv: /tmp/keysprint.csv\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Practice.Seconds == nil || *cfg.Practice.Seconds != 30 {
		t.Fatalf("unexpected seconds: %v", cfg.Practice.Seconds)
	}
	if cfg.Practice.PunctSet == nil || *cfg.Practice.PunctSet != ".," {
		t.Fatalf("unexpected punct set: %v", cfg.Practice.PunctSet)
	}
	if cfg.Results.CSV == nil || *cfg.Results.CSV != "/tmp/keysprint.csv" {
		t.Fatalf("unexpected csv path: %v", cfg.Results.CSV)
	}
}

func TestLoadConfigInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("words = ["), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestDirsHonorOverrides(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/xdg/config")
	t.Setenv("XDG_DATA_HOME", "/xdg/data")
	t.Setenv(EnvConfigHome, "")
	t.Setenv(EnvDataHome, "")

	if got := DefaultDBPath(); got != filepath.Join("/xdg/data", "keysprint", "keysprint.db") {
		t.Fatalf("unexpected db path: %s", got)
	}
	if got := DefaultWordListDir(); got != filepath.Join("/xdg/config", "keysprint", "wordlists") {
		t.Fatalf("unexpected wordlist dir: %s", got)
	}

	t.Setenv(EnvDataHome, "/custom/data")
	if got := DefaultCSVPath(); got != filepath.Join("/custom/data", "log.csv") {
		t.Fatalf("unexpected csv path: %s", got)
	}
}

func TestDefaultConfigPathPrefersYAML(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(EnvConfigHome, dir)
	if got := DefaultConfigPath(); got != filepath.Join(dir, "config.toml") {
		t.Fatalf("expected toml default, got %s", got)
	}
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("{}"), 0o644); err != nil {
		t.Fatalf("write yaml: %v", err)
	}
	if got := DefaultConfigPath(); got != filepath.Join(dir, "config.yaml") {
		t.Fatalf("expected yaml config, got %s", got)
	}
}

func TestLoadEnv(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env")
	if err := os.WriteFile(envPath, []byte("KEYSPRINT_DATA_HOME="+dir+"/data\n"), 0o644); err != nil {
		t.Fatalf("write env: %v", err)
	}
	t.Setenv(EnvDataHome, "")
	if err := os.Unsetenv(EnvDataHome); err != nil {
		t.Fatalf("unset env: %v", err)
	}
	if err := LoadEnv(filepath.Join(dir, "missing.env"), envPath); err != nil {
		t.Fatalf("load env: %v", err)
	}
	if got := DataDir(); got != filepath.Join(dir, "data") {
		t.Fatalf("expected data dir from env file, got %s", got)
	}
}
