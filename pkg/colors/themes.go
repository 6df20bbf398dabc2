// Package colors provides the dashboard color themes and the contrast math
// used to keep text readable on them.
package colors

import (
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/muesli/termenv"
)

// Theme is a complete dashboard palette of #rrggbb colors.
type Theme struct {
	Name string
	Dark bool

	Bg     string
	Fg     string
	Muted  string
	Border string
	Focus  string // border of the focused region

	TabActiveBg   string
	TabActiveFg   string
	TabInactiveFg string
	Indicator     string

	StatusBg string
	StatusFg string
	PromptFg string
	PromptBg string

	Info    string
	Warn    string
	Error   string
	Success string
}

// Themes are the built-in palettes by config name.
var Themes = map[string]Theme{
	"midnight": {
		Name: "Midnight", Dark: true,
		Bg: "#11131a", Fg: "#d7dae0", Muted: "#6b7280", Border: "#2f3440", Focus: "#7aa2f7",
		TabActiveBg: "#7aa2f7", TabActiveFg: "#11131a", TabInactiveFg: "#8b93a7", Indicator: "#bb9af7",
		StatusBg: "#1b1e28", StatusFg: "#a9b1d6", PromptFg: "#e0e6f0", PromptBg: "#1b1e28",
		Info: "#7dcfff", Warn: "#e0af68", Error: "#f7768e", Success: "#9ece6a",
	},
	"paper": {
		Name: "Paper", Dark: false,
		Bg: "#fbfaf7", Fg: "#2b2b2b", Muted: "#8a8a8a", Border: "#d9d6cf", Focus: "#2f6feb",
		TabActiveBg: "#2f6feb", TabActiveFg: "#ffffff", TabInactiveFg: "#6a6a6a", Indicator: "#d73a49",
		StatusBg: "#efece6", StatusFg: "#3a3a3a", PromptFg: "#2b2b2b", PromptBg: "#efece6",
		Info: "#0366d6", Warn: "#b08800", Error: "#cb2431", Success: "#22863a",
	},
	"rose-pine": {
		Name: "Rose Pine", Dark: true,
		Bg: "#191724", Fg: "#e0def4", Muted: "#6e6a86", Border: "#403d52", Focus: "#ebbcba",
		TabActiveBg: "#31748f", TabActiveFg: "#e0def4", TabInactiveFg: "#908caa", Indicator: "#ebbcba",
		StatusBg: "#1f1d2e", StatusFg: "#908caa", PromptFg: "#e0def4", PromptBg: "#26233a",
		Info: "#9ccfd8", Warn: "#f6c177", Error: "#eb6f92", Success: "#31748f",
	},
	"rose-pine-dawn": {
		Name: "Rose Pine Dawn", Dark: false,
		Bg: "#faf4ed", Fg: "#575279", Muted: "#9893a5", Border: "#dfdad9", Focus: "#d7827e",
		TabActiveBg: "#286983", TabActiveFg: "#faf4ed", TabInactiveFg: "#797593", Indicator: "#d7827e",
		StatusBg: "#fffaf3", StatusFg: "#575279", PromptFg: "#575279", PromptBg: "#f2e9e1",
		Info: "#56949f", Warn: "#ea9d34", Error: "#b4637a", Success: "#286983",
	},
	"nord": {
		Name: "Nord", Dark: true,
		Bg: "#2e3440", Fg: "#eceff4", Muted: "#4c566a", Border: "#4c566a", Focus: "#88c0d0",
		TabActiveBg: "#88c0d0", TabActiveFg: "#2e3440", TabInactiveFg: "#d8dee9", Indicator: "#bf616a",
		StatusBg: "#3b4252", StatusFg: "#d8dee9", PromptFg: "#eceff4", PromptBg: "#3b4252",
		Info: "#81a1c1", Warn: "#ebcb8b", Error: "#bf616a", Success: "#a3be8c",
	},
}

// Names returns the built-in theme names in sorted order.
func Names() []string {
	names := make([]string, 0, len(Themes))
	for n := range Themes {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Get returns the named theme with text colors adjusted to reach WCAG AA
// against their backgrounds. "auto" and unknown names pick midnight or
// paper depending on the terminal background.
func Get(name string) Theme {
	t, ok := Themes[name]
	if !ok {
		if DetectDark() {
			t = Themes["midnight"]
		} else {
			t = Themes["paper"]
		}
	}
	return t.readable()
}

func (t Theme) readable() Theme {
	const aa = 4.5
	t.Fg = EnsureContrast(t.Fg, t.Bg, aa)
	t.TabActiveFg = EnsureContrast(t.TabActiveFg, t.TabActiveBg, aa)
	t.StatusFg = EnsureContrast(t.StatusFg, t.StatusBg, aa)
	t.PromptFg = EnsureContrast(t.PromptFg, t.PromptBg, aa)
	return t
}

// DetectDark guesses whether the terminal background is dark. COLORFGBG is
// consulted first, then the terminal is queried through termenv. Dark is
// the default.
func DetectDark() bool {
	if v := os.Getenv("COLORFGBG"); v != "" {
		parts := strings.Split(v, ";")
		if bg, err := strconv.Atoi(parts[len(parts)-1]); err == nil {
			return bg < 8 || bg == 16
		}
	}
	return termenv.NewOutput(os.Stdout).HasDarkBackground()
}

// Profile maps a config color_profile name to a termenv profile.
func Profile(name string) termenv.Profile {
	switch name {
	case "ascii":
		return termenv.Ascii
	case "ansi":
		return termenv.ANSI
	case "truecolor":
		return termenv.TrueColor
	}
	return termenv.ANSI256
}
