// Package config handles loading and saving eo configuration.
//
// Configuration follows the XDG Base Directory specification:
//   - Config:  ~/.config/eoview/config.yaml
//   - State:   ~/.local/state/eoview/ (default export directory)
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/vanderheijden86/eoview/pkg/model"
	"github.com/vanderheijden86/eoview/pkg/view"
)

const appName = "eoview"

// Policies for records whose forecast or impact cannot be classified.
const (
	OnMalformedSkip = "skip"
	OnMalformedHalt = "halt"
)

// UIConfig holds UI preference settings.
type UIConfig struct {
	DefaultSort      string  `yaml:"default_sort,omitempty"`      // none, id, title, summary, status, forecast, impact
	DefaultDirection string  `yaml:"default_direction,omitempty"` // asc, desc
	SplitRatio       float64 `yaml:"split_ratio,omitempty"`       // List pane share of the width (0.2-0.8)
	ShowDetail       bool    `yaml:"show_detail,omitempty"`
}

// FilterConfig is the filter state a session starts with.
type FilterConfig struct {
	Category string `yaml:"category,omitempty"`
	Forecast string `yaml:"forecast,omitempty"` // low, medium, high
	Impact   int    `yaml:"impact,omitempty"`   // 1-5, 0 for any
}

// WatchConfig controls live reload of the data file.
type WatchConfig struct {
	Enabled        bool `yaml:"enabled"`
	DebounceMs     int  `yaml:"debounce_ms,omitempty"`
	PollIntervalMs int  `yaml:"poll_interval_ms,omitempty"`
}

// Config is the top-level configuration for eo.
type Config struct {
	DataPath    string       `yaml:"data_path,omitempty"`
	OnMalformed string       `yaml:"on_malformed,omitempty"`
	Categories  []string     `yaml:"categories,omitempty"` // Extra category tokens
	UI          UIConfig     `yaml:"ui,omitempty"`
	Filters     FilterConfig `yaml:"filters,omitempty"`
	Watch       WatchConfig  `yaml:"watch"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		OnMalformed: OnMalformedSkip,
		UI: UIConfig{
			DefaultSort:      "none",
			DefaultDirection: "asc",
			SplitRatio:       0.55,
			ShowDetail:       true,
		},
		Watch: WatchConfig{
			Enabled:        true,
			DebounceMs:     200,
			PollIntervalMs: 2000,
		},
	}
}

// ConfigDir returns the XDG config directory for eo.
func ConfigDir() string {
	return xdgDir("XDG_CONFIG_HOME", ".config")
}

// StateDir returns the XDG state directory for eo.
func StateDir() string {
	return xdgDir("XDG_STATE_HOME", filepath.Join(".local", "state"))
}

func xdgDir(env, fallback string) string {
	if dir := os.Getenv(env); dir != "" {
		return filepath.Join(dir, appName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, fallback, appName)
}

// ConfigPath returns the full path to config.yaml.
func ConfigPath() string {
	dir := ConfigDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "config.yaml")
}

// Load reads the config file from the XDG config directory.
// Returns DefaultConfig if the file doesn't exist.
func Load() (Config, error) {
	path := ConfigPath()
	if path == "" {
		return DefaultConfig(), nil
	}
	return LoadFrom(path)
}

// LoadFrom reads config from a specific path.
// Returns DefaultConfig if the file doesn't exist.
func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	cfg.DataPath = expandHome(cfg.DataPath)
	cfg.OnMalformed = strings.ToLower(strings.TrimSpace(cfg.OnMalformed))
	if cfg.OnMalformed == "" {
		cfg.OnMalformed = OnMalformedSkip
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the enumerated settings.
func (c Config) Validate() error {
	if c.OnMalformed != OnMalformedSkip && c.OnMalformed != OnMalformedHalt {
		return fmt.Errorf("on_malformed must be %q or %q, got %q", OnMalformedSkip, OnMalformedHalt, c.OnMalformed)
	}
	if c.UI.SplitRatio != 0 && (c.UI.SplitRatio < 0.2 || c.UI.SplitRatio > 0.8) {
		return fmt.Errorf("ui.split_ratio must be within 0.2-0.8, got %v", c.UI.SplitRatio)
	}
	if _, err := c.InitialSort(); err != nil {
		return err
	}
	if _, err := c.InitialFilter(); err != nil {
		return err
	}
	return nil
}

// Save writes the config to the XDG config directory.
func Save(cfg Config) error {
	path := ConfigPath()
	if path == "" {
		return fmt.Errorf("cannot determine config directory")
	}
	return SaveTo(cfg, path)
}

// SaveTo writes the config to a specific path.
func SaveTo(cfg Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

// Vocabulary returns the default categories extended with Categories.
func (c Config) Vocabulary() model.Vocabulary {
	extra := make([]model.Category, len(c.Categories))
	for i, s := range c.Categories {
		extra[i] = model.Category(s)
	}
	return model.DefaultVocabulary().With(extra...)
}

// InitialFilter parses Filters against Vocabulary.
func (c Config) InitialFilter() (view.FilterState, error) {
	impact := ""
	if c.Filters.Impact != 0 {
		impact = strconv.Itoa(c.Filters.Impact)
	}
	return view.ParseFilter(c.Filters.Category, c.Filters.Forecast, impact, c.Vocabulary())
}

// InitialSort parses the UI default sort.
func (c Config) InitialSort() (view.SortState, error) {
	field, err := view.ParseSortField(c.UI.DefaultSort)
	if err != nil {
		return view.SortState{}, err
	}
	dir, err := view.ParseDirection(c.UI.DefaultDirection)
	if err != nil {
		return view.SortState{}, err
	}
	if field == view.SortNone {
		return view.SortState{}, nil
	}
	return view.SortState{Field: field, Direction: dir}, nil
}

// HaltOnMalformed reports whether malformed records abort the session.
func (c Config) HaltOnMalformed() bool {
	return c.OnMalformed == OnMalformedHalt
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
