package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"seasonmetrics/internal/models"
)

// ConfigError wraps any failure to read, parse, or validate one of the YAML
// documents. It is fatal: the run aborts before any network activity.
type ConfigError struct {
	Path string
	Err  error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config %s: %v", e.Path, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// LoadTrackers reads the tracker document (pairs and diffs with their
// games-played cursors).
func LoadTrackers(path string) (*models.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ConfigError{Path: path, Err: err}
	}

	var cfg models.Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, &ConfigError{Path: path, Err: fmt.Errorf("failed to parse: %w", err)}
	}

	for i, p := range cfg.Pairs {
		if p == nil || p.TeamA == "" || p.TeamB == "" || p.YearA == 0 || p.YearB == 0 {
			return nil, &ConfigError{Path: path, Err: fmt.Errorf("pairs[%d]: teamA/yearA/teamB/yearB are required", i)}
		}
		if p.GamesPlayed < 0 {
			return nil, &ConfigError{Path: path, Err: fmt.Errorf("pairs[%d]: games_played must not be negative", i)}
		}
	}
	for i, d := range cfg.Diffs {
		if d == nil || d.Team == "" || d.Year == 0 {
			return nil, &ConfigError{Path: path, Err: fmt.Errorf("diffs[%d]: team and year are required", i)}
		}
		if d.GamesPlayed < 0 {
			return nil, &ConfigError{Path: path, Err: fmt.Errorf("diffs[%d]: games_played must not be negative", i)}
		}
	}

	return &cfg, nil
}

// LoadSecrets reads the credentials document.
func LoadSecrets(path string) (*models.Secrets, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ConfigError{Path: path, Err: err}
	}

	var sec models.Secrets
	if err := yaml.Unmarshal(data, &sec); err != nil {
		return nil, &ConfigError{Path: path, Err: fmt.Errorf("failed to parse: %w", err)}
	}

	if sec.Bluesky.Username == "" || sec.Bluesky.Password == "" {
		return nil, &ConfigError{Path: path, Err: fmt.Errorf("bluesky.username and bluesky.password are required")}
	}

	return &sec, nil
}

// SaveTrackers writes the tracker document back. The write goes to a temp
// file in the same directory followed by a rename, so a crash mid-write
// never leaves a truncated document behind.
func SaveTrackers(cfg *models.Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return &ConfigError{Path: path, Err: fmt.Errorf("failed to marshal: %w", err)}
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return &ConfigError{Path: path, Err: err}
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return &ConfigError{Path: path, Err: err}
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return &ConfigError{Path: path, Err: err}
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return &ConfigError{Path: path, Err: err}
	}
	return nil
}
