package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// FileConfig represents the configuration file. The same keys are accepted
// in TOML and YAML.
type FileConfig struct {
	LogLevel *string        `toml:"log-level" yaml:"log-level"`
	Practice PracticeConfig `toml:"practice" yaml:"practice"`
	Results  ResultsConfig  `toml:"results" yaml:"results"`
}

// PracticeConfig maps test settings. Nil fields keep the flag defaults.
type PracticeConfig struct {
	Lang       *string  `toml:"lang" yaml:"lang"`
	Words      *int     `toml:"words" yaml:"words"`
	Seconds    *int     `toml:"seconds" yaml:"seconds"`
	Sentences  *int     `toml:"sentences" yaml:"sentences"`
	Death      *bool    `toml:"death" yaml:"death"`
	Pace       *int     `toml:"pace" yaml:"pace"`
	PoolSize   *int     `toml:"pool-size" yaml:"pool-size"`
	CapsPct    *float64 `toml:"caps" yaml:"caps"`
	PunctPct   *float64 `toml:"punct" yaml:"punct"`
	PunctSet   *string  `toml:"punct-set" yaml:"punct-set"`
	FocusWeak  *bool    `toml:"focus-weak" yaml:"focus-weak"`
	WeakTop    *int     `toml:"weak-top" yaml:"weak-top"`
	WeakFactor *float64 `toml:"weak-factor" yaml:"weak-factor"`
	WeakWindow *int     `toml:"weak-window" yaml:"weak-window"`
}

// ResultsConfig maps result sink settings.
type ResultsConfig struct {
	CSV        *string `toml:"log-csv" yaml:"log-csv"`
	SinkPolicy *string `toml:"sink-policy" yaml:"sink-policy"`
}

// LoadConfig reads a config file from the given path, choosing the decoder by
// extension. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to read config: %w", err)
	}
	var cfg FileConfig
	if IsYAML(path) {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
		}
		return cfg, nil
	}
	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}

// IsYAML reports whether path names a YAML file.
func IsYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	default:
		return false
	}
}
