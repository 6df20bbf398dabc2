package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/b/tabdeck/pkg/paths"
	"github.com/b/tabdeck/pkg/validate"
)

var ErrInvalidConfig = errors.New("invalid config")

// envOverrides are read from TABDECK_* variables after the file is parsed.
type envOverrides struct {
	Theme        string        `envconfig:"THEME"`
	Tick         time.Duration `envconfig:"TICK"`
	ColorProfile string        `envconfig:"COLOR_PROFILE"`
	LogLevel     string        `envconfig:"LOG_LEVEL"`
	LogPath      string        `envconfig:"LOG_PATH"`
	LogDev       bool          `envconfig:"LOG_DEV"`
}

// LoadConfig reads, defaults, overrides and validates the config at path.
// A missing file yields the defaults.
func LoadConfig(path string, v *validate.Validator) (*Config, error) {
	var cfg Config
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse yaml %s: %w", path, err)
		}
	}
	applyDefaults(&cfg)
	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}
	if v != nil {
		if err := v.Struct(&cfg); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrInvalidConfig, path, err)
		}
	}
	return &cfg, nil
}

// SaveConfig writes the config to the specified path
func SaveConfig(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

func applyEnv(cfg *Config) error {
	var o envOverrides
	if err := envconfig.Process("tabdeck", &o); err != nil {
		return fmt.Errorf("failed to read environment: %w", err)
	}
	if o.Theme != "" {
		cfg.Theme = o.Theme
	}
	if o.Tick > 0 {
		cfg.Tick = o.Tick
	}
	if o.ColorProfile != "" {
		cfg.ColorProfile = o.ColorProfile
	}
	if o.LogLevel != "" {
		cfg.Log.Level = o.LogLevel
	}
	if o.LogPath != "" {
		cfg.Log.Path = o.LogPath
	}
	if o.LogDev {
		cfg.Log.Development = true
	}
	return nil
}

func applyDefaults(cfg *Config) {
	if cfg.Tick == 0 {
		cfg.Tick = 100 * time.Millisecond
	}
	if cfg.HeaderHeight == 0 {
		cfg.HeaderHeight = 1
	}
	if cfg.Theme == "" {
		cfg.Theme = "midnight"
	}
	if cfg.ColorProfile == "" {
		cfg.ColorProfile = "ansi256"
	}
	if len(cfg.Markers) == 0 {
		cfg.Markers = []string{".git", "go.mod", "pyproject.toml", "package.json"}
	}
	if cfg.VCSTTL == 0 {
		cfg.VCSTTL = 5 * time.Second
	}
	if cfg.VCSPoll == 0 {
		cfg.VCSPoll = 3 * time.Second
	}
	if cfg.NoticeTTL == 0 {
		cfg.NoticeTTL = 6 * time.Second
	}
	if len(cfg.Tools) == 0 {
		cfg.Tools = []Tool{
			{Name: "git", VersionArgs: []string{"--version"}, Required: true},
			{Name: "uv", VersionArgs: []string{"--version"}},
		}
	}
	for i := range cfg.Tools {
		if len(cfg.Tools[i].VersionArgs) == 0 {
			cfg.Tools[i].VersionArgs = []string{"--version"}
		}
	}
	if len(cfg.Commands) == 0 {
		cfg.Commands = []Command{
			{Name: "status", Tool: "git", Args: []string{"status", "--short"}, Description: "Working tree status"},
			{Name: "log", Tool: "git", Args: []string{"log", "--oneline", "-n", "20"}, Description: "Recent commits"},
			{Name: "sync", Tool: "uv", Args: []string{"sync"}, Description: "Sync the environment"},
		}
	}
	if len(cfg.Mask) == 0 {
		cfg.Mask = []MaskRule{
			{Pattern: `(?i)((?:token|password|secret|api[_-]?key)=)\S+`, Replacement: "${1}****"},
			{Pattern: `https://[^:@/\s]+:[^@/\s]+@`, Replacement: "https://****@"},
		}
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Path == "" {
		cfg.Log.Path = paths.StatePath("tabdeck.log")
	}
	applyBindingDefaults(&cfg.Bindings)
}

func applyBindingDefaults(b *Bindings) {
	def := func(keys *[]string, d ...string) {
		if len(*keys) == 0 {
			*keys = d
		}
	}
	def(&b.Quit, "q", "ctrl+c")
	def(&b.NextTab, "l", "right")
	def(&b.PrevTab, "h", "left")
	def(&b.NextJob, "]")
	def(&b.PrevJob, "[")
	def(&b.FocusNext, "tab")
	def(&b.FocusPrev, "shift+tab")
	def(&b.Prompt, ":")
	def(&b.Help, "?")
	def(&b.Refresh, "r")
	def(&b.CloseJob, "x")
	def(&b.Run, "enter")
	def(&b.Copy, "y")
	def(&b.Up, "k", "up")
	def(&b.Down, "j", "down")
	def(&b.Dismiss, "esc")
	def(&b.Paste, "ctrl+v")
}
