package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
)

// Config represents the tribunal configuration.
type Config struct {
	Provider            string          `json:"provider"`
	Model               string          `json:"model"`
	Format              string          `json:"format"`
	FailUnder           float64         `json:"failUnder"`
	RubricFile          string          `json:"rubricFile,omitempty"`
	DocPath             string          `json:"docPath,omitempty"`
	CloneTimeoutSeconds int             `json:"cloneTimeoutSeconds"`
	Cache               CacheConfig     `json:"cache"`
	Privacy             PrivacyConfig   `json:"privacy"`
	Narrative           NarrativeConfig `json:"narrative"`
}

// CacheConfig controls reviewer-response caching.
type CacheConfig struct {
	Enabled    bool   `json:"enabled"`
	Dir        string `json:"dir,omitempty"`
	TTLSeconds int    `json:"ttlSeconds"`
}

// PrivacyConfig controls redaction of prompt-bound text.
type PrivacyConfig struct {
	RedactSecrets bool `json:"redactSecrets"`
}

// NarrativeConfig bounds the mid-band remediation narrator.
type NarrativeConfig struct {
	MaxAttempts    int `json:"maxAttempts"`
	TimeoutSeconds int `json:"timeoutSeconds"`
}

// Default returns a Config with all defaults applied.
func Default() Config {
	return Config{
		Provider:            "anthropic",
		Model:               "claude-sonnet-4-20250514",
		Format:              "text",
		FailUnder:           0,
		CloneTimeoutSeconds: 90,
		Cache: CacheConfig{
			Enabled:    true,
			TTLSeconds: 86400,
		},
		Privacy: PrivacyConfig{
			RedactSecrets: true,
		},
		Narrative: NarrativeConfig{
			MaxAttempts:    2,
			TimeoutSeconds: 30,
		},
	}
}

// ConfigDir returns the platform-appropriate config directory for tribunal.
func ConfigDir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "tribunal"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "tribunal"), nil
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, "tribunal"), nil
		}
		return filepath.Join(home, "AppData", "Roaming", "tribunal"), nil
	default:
		return filepath.Join(home, ".config", "tribunal"), nil
	}
}

// ConfigPath returns the full path to the config file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// LoadFile loads config from the config file. Returns zero Config and nil
// error if the file doesn't exist.
func LoadFile() (Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return Config{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Config{}, nil
		}
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config file: %w", err)
	}
	return cfg, nil
}

// Save writes the config to the config file.
func Save(cfg Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// Load builds the effective config by merging: defaults <- file <- env <-
// overrides. The overrides map comes from CLI flags (only non-zero values
// should be set).
func Load(overrides map[string]string) (Config, error) {
	cfg := Default()

	fileCfg, err := LoadFile()
	if err != nil {
		return Config{}, err
	}
	mergeFile(&cfg, fileCfg)
	mergeEnv(&cfg)
	mergeOverrides(&cfg, overrides)

	return cfg, nil
}

func mergeFile(dst *Config, src Config) {
	if src.Provider != "" {
		dst.Provider = src.Provider
	}
	if src.Model != "" {
		dst.Model = src.Model
	}
	if src.Format != "" {
		dst.Format = src.Format
	}
	if src.FailUnder > 0 {
		dst.FailUnder = src.FailUnder
	}
	if src.RubricFile != "" {
		dst.RubricFile = src.RubricFile
	}
	if src.DocPath != "" {
		dst.DocPath = src.DocPath
	}
	if src.CloneTimeoutSeconds > 0 {
		dst.CloneTimeoutSeconds = src.CloneTimeoutSeconds
	}
	if src.Cache.Dir != "" {
		dst.Cache.Dir = src.Cache.Dir
	}
	if src.Cache.TTLSeconds > 0 {
		dst.Cache.TTLSeconds = src.Cache.TTLSeconds
	}
	// Bool fields from file: JSON zero value for bool is false, so a simple
	// merge cannot distinguish unset from false.
	dst.Cache.Enabled = src.Cache.Enabled || dst.Cache.Enabled
	if src.Narrative.MaxAttempts > 0 {
		dst.Narrative.MaxAttempts = src.Narrative.MaxAttempts
	}
	if src.Narrative.TimeoutSeconds > 0 {
		dst.Narrative.TimeoutSeconds = src.Narrative.TimeoutSeconds
	}
}

func mergeEnv(cfg *Config) {
	if v := os.Getenv("TRIBUNAL_PROVIDER"); v != "" {
		cfg.Provider = v
	}
	if v := os.Getenv("TRIBUNAL_MODEL"); v != "" {
		cfg.Model = v
	}
	if v := os.Getenv("TRIBUNAL_FORMAT"); v != "" {
		cfg.Format = v
	}
	if v := os.Getenv("TRIBUNAL_FAIL_UNDER"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.FailUnder = f
		}
	}
	if v := os.Getenv("TRIBUNAL_RUBRIC_FILE"); v != "" {
		cfg.RubricFile = v
	}
	if v := os.Getenv("TRIBUNAL_CLONE_TIMEOUT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.CloneTimeoutSeconds = n
		}
	}
}

func mergeOverrides(cfg *Config, overrides map[string]string) {
	if overrides == nil {
		return
	}
	if v, ok := overrides["provider"]; ok && v != "" {
		cfg.Provider = v
	}
	if v, ok := overrides["model"]; ok && v != "" {
		cfg.Model = v
	}
	if v, ok := overrides["format"]; ok && v != "" {
		cfg.Format = v
	}
	if v, ok := overrides["failUnder"]; ok && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.FailUnder = f
		}
	}
	if v, ok := overrides["rubricFile"]; ok && v != "" {
		cfg.RubricFile = v
	}
	if v, ok := overrides["doc"]; ok && v != "" {
		cfg.DocPath = v
	}
	if v, ok := overrides["cloneTimeout"]; ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.CloneTimeoutSeconds = n
		}
	}
}

// SetField sets a single config field by key name. Returns an error if the
// key is unknown.
func SetField(cfg *Config, key, value string) error {
	switch key {
	case "provider":
		cfg.Provider = value
	case "model":
		cfg.Model = value
	case "format":
		cfg.Format = value
	case "failUnder":
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("failUnder must be a number: %w", err)
		}
		cfg.FailUnder = f
	case "rubricFile":
		cfg.RubricFile = value
	case "docPath":
		cfg.DocPath = value
	case "cloneTimeoutSeconds":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("cloneTimeoutSeconds must be an integer: %w", err)
		}
		cfg.CloneTimeoutSeconds = n
	case "narrative.maxAttempts":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("narrative.maxAttempts must be an integer: %w", err)
		}
		cfg.Narrative.MaxAttempts = n
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}
	return nil
}
