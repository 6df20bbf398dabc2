package config

import "time"

type Config struct {
	Tick         time.Duration `yaml:"tick" validate:"min=10ms,max=2s"`
	HeaderHeight int           `yaml:"header_height" validate:"min=1,max=3"`
	Theme        string        `yaml:"theme"`
	ColorProfile string        `yaml:"color_profile" validate:"omitempty,oneof=ascii ansi ansi256 truecolor"`
	Markers      []string      `yaml:"markers" validate:"min=1,dive,required"`
	VCSTTL       time.Duration `yaml:"vcs_ttl" validate:"min=0"`
	VCSPoll      time.Duration `yaml:"vcs_poll" validate:"min=0"`
	NoticeTTL    time.Duration `yaml:"notice_ttl" validate:"min=0"`
	Tools        []Tool        `yaml:"tools" validate:"dive"`
	Commands     []Command     `yaml:"commands" validate:"dive"`
	Bindings     Bindings      `yaml:"bindings"`
	Mask         []MaskRule    `yaml:"mask" validate:"dive"`
	Log          Log           `yaml:"log"`
}

// Tool is an external program the dashboard probes at startup.
type Tool struct {
	Name        string   `yaml:"name" validate:"required"`
	VersionArgs []string `yaml:"version_args"`
	Constraint  string   `yaml:"constraint"` // e.g. ">= 0.4" (hashicorp/go-version syntax)
	Required    bool     `yaml:"required"`
}

// Command is a named invocation shown in the command list and accepted by
// the prompt.
type Command struct {
	Name        string   `yaml:"name" validate:"required,commandname"`
	Tool        string   `yaml:"tool" validate:"required"`
	Args        []string `yaml:"args"`
	Description string   `yaml:"description"`
}

// Bindings lists the keys for each dashboard action. Empty entries fall back
// to defaults.
type Bindings struct {
	Quit      []string `yaml:"quit"`
	NextTab   []string `yaml:"next_tab"`
	PrevTab   []string `yaml:"prev_tab"`
	NextJob   []string `yaml:"next_job"`
	PrevJob   []string `yaml:"prev_job"`
	FocusNext []string `yaml:"focus_next"`
	FocusPrev []string `yaml:"focus_prev"`
	Prompt    []string `yaml:"prompt"`
	Help      []string `yaml:"help"`
	Refresh   []string `yaml:"refresh"`
	CloseJob  []string `yaml:"close_job"`
	Run       []string `yaml:"run"`
	Copy      []string `yaml:"copy"`
	Up        []string `yaml:"up"`
	Down      []string `yaml:"down"`
	Dismiss   []string `yaml:"dismiss"`
	Paste     []string `yaml:"paste"`
}

type MaskRule struct {
	Pattern     string `yaml:"pattern" validate:"required"`
	Replacement string `yaml:"replacement"`
}

type Log struct {
	Level       string `yaml:"level" validate:"oneof=debug info warn error"`
	Development bool   `yaml:"development"`
	Path        string `yaml:"path"` // default: <state dir>/tabdeck.log
}

// FindCommand returns the command with the given name, or nil if not found
func FindCommand(cfg *Config, name string) *Command {
	for i := range cfg.Commands {
		if cfg.Commands[i].Name == name {
			return &cfg.Commands[i]
		}
	}
	return nil
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}
