package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// RefreshIntervals is the enumerated set of allowed refresh cadences, in
// seconds.
var RefreshIntervals = []int{30, 60, 300, 900}

const defaultIntervalSeconds = 60

type Config struct {
	Provider               string `json:"provider"`
	RefreshIntervalSeconds int    `json:"refresh_interval_seconds"`
	APIKeyEnv              string `json:"api_key_env,omitempty"`
	BaseURL                string `json:"base_url,omitempty"`
	ProbeModel             string `json:"probe_model,omitempty"`
}

func DefaultConfig() Config {
	return Config{
		Provider:               "anthropic",
		RefreshIntervalSeconds: defaultIntervalSeconds,
		APIKeyEnv:              "ANTHROPIC_API_KEY",
	}
}

func ConfigDir() string {
	if runtime.GOOS == "windows" {
		return filepath.Join(os.Getenv("APPDATA"), "tokenmeter")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "tokenmeter")
}

func ConfigPath() string {
	return filepath.Join(ConfigDir(), "settings.json")
}

func Load() (Config, error) {
	return LoadFrom(ConfigPath())
}

// LoadFrom reads settings, treating a missing or corrupt file as "use
// defaults" rather than a startup failure.
func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := json.Unmarshal(data, &cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("parsing config %s: %w", path, err)
	}

	if cfg.Provider == "" {
		cfg.Provider = DefaultConfig().Provider
	}
	cfg.RefreshIntervalSeconds = NormalizeInterval(cfg.RefreshIntervalSeconds)

	return cfg, nil
}

func Save(cfg Config) error {
	return SaveTo(ConfigPath(), cfg)
}

func SaveTo(path string, cfg Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// NormalizeInterval snaps a stored interval onto the enumerated set,
// defaulting when it is not a member.
func NormalizeInterval(seconds int) int {
	for _, s := range RefreshIntervals {
		if s == seconds {
			return seconds
		}
	}
	return defaultIntervalSeconds
}

// NextInterval returns the next interval in the enumerated cycle.
func NextInterval(seconds int) int {
	for i, s := range RefreshIntervals {
		if s == seconds {
			return RefreshIntervals[(i+1)%len(RefreshIntervals)]
		}
	}
	return RefreshIntervals[0]
}

// IntervalLabel renders an interval for menus: 30 -> "30 seconds",
// 300 -> "5 minutes".
func IntervalLabel(seconds int) string {
	switch {
	case seconds < 60:
		return fmt.Sprintf("%d seconds", seconds)
	case seconds == 60:
		return "1 minute"
	default:
		return fmt.Sprintf("%d minutes", seconds/60)
	}
}
