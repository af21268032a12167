// Package config provides configuration file parsing and path helpers.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

const appName = "keysprint"

// Environment overrides for the application directories.
const (
	EnvConfigHome = "KEYSPRINT_CONFIG_HOME"
	EnvDataHome   = "KEYSPRINT_DATA_HOME"
)

// LoadEnv loads KEY=VALUE pairs from the given dotenv files into the process
// environment. Missing files are skipped and variables already set win.
func LoadEnv(paths ...string) error {
	for _, path := range paths {
		if err := godotenv.Load(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("failed to load env file %s: %w", path, err)
		}
	}
	return nil
}

// XDGConfigHome returns the XDG config home or a default fallback.
func XDGConfigHome() string {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "."
	}
	return filepath.Join(home, ".config")
}

// XDGDataHome returns the XDG data home or a default fallback.
func XDGDataHome() string {
	if v := os.Getenv("XDG_DATA_HOME"); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "."
	}
	return filepath.Join(home, ".local", "share")
}

// ConfigDir is where the config file and word lists live.
func ConfigDir() string {
	if v := os.Getenv(EnvConfigHome); v != "" {
		return v
	}
	return filepath.Join(XDGConfigHome(), appName)
}

// DataDir is where recorded sessions live.
func DataDir() string {
	if v := os.Getenv(EnvDataHome); v != "" {
		return v
	}
	return filepath.Join(XDGDataHome(), appName)
}

// DefaultWordListDir returns the directory searched for <lang>.txt pools.
func DefaultWordListDir() string {
	return filepath.Join(ConfigDir(), "wordlists")
}

// DefaultDBPath returns the default path for the SQLite database.
func DefaultDBPath() string {
	return filepath.Join(DataDir(), appName+".db")
}

// DefaultCSVPath returns the results log used when --log-csv is given
// without a path.
func DefaultCSVPath() string {
	return filepath.Join(DataDir(), "log.csv")
}

// DefaultEnvPath returns the dotenv file read from the config directory.
func DefaultEnvPath() string {
	return filepath.Join(XDGConfigHome(), appName, ".env")
}

// DefaultConfigPath returns config.yaml when it exists in the config
// directory and config.toml otherwise.
func DefaultConfigPath() string {
	dir := ConfigDir()
	for _, name := range []string{"config.yaml", "config.yml"} {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return filepath.Join(dir, "config.toml")
}
