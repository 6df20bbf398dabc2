package app

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"

	"github.com/b/tabdeck/pkg/config"
)

// KeyMap holds the dashboard bindings. It implements help.KeyMap.
type KeyMap struct {
	Quit      key.Binding
	NextTab   key.Binding
	PrevTab   key.Binding
	NextJob   key.Binding
	PrevJob   key.Binding
	FocusNext key.Binding
	FocusPrev key.Binding
	Prompt    key.Binding
	Help      key.Binding
	Refresh   key.Binding
	CloseJob  key.Binding
	Run       key.Binding
	Copy      key.Binding
	Up        key.Binding
	Down      key.Binding
	Dismiss   key.Binding
	Paste     key.Binding
}

// NewKeyMap builds bindings from configuration.
func NewKeyMap(b config.Bindings) KeyMap {
	return KeyMap{
		Quit:      binding(b.Quit, "quit"),
		NextTab:   binding(b.NextTab, "next tab"),
		PrevTab:   binding(b.PrevTab, "prev tab"),
		NextJob:   binding(b.NextJob, "next job"),
		PrevJob:   binding(b.PrevJob, "prev job"),
		FocusNext: binding(b.FocusNext, "next pane"),
		FocusPrev: binding(b.FocusPrev, "prev pane"),
		Prompt:    binding(b.Prompt, "command"),
		Help:      binding(b.Help, "help"),
		Refresh:   binding(b.Refresh, "refresh"),
		CloseJob:  binding(b.CloseJob, "close job"),
		Run:       binding(b.Run, "run"),
		Copy:      binding(b.Copy, "copy output"),
		Up:        binding(b.Up, "up"),
		Down:      binding(b.Down, "down"),
		Dismiss:   binding(b.Dismiss, "dismiss"),
		Paste:     binding(b.Paste, "paste"),
	}
}

// DefaultKeyMap returns the bindings of the default configuration.
func DefaultKeyMap() KeyMap {
	return NewKeyMap(config.Default().Bindings)
}

func binding(keys []string, desc string) key.Binding {
	shown := keys
	if len(shown) > 2 {
		shown = shown[:2]
	}
	return key.NewBinding(
		key.WithKeys(keys...),
		key.WithHelp(strings.Join(shown, "/"), desc),
	)
}

func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Help, k.Prompt, k.NextTab, k.FocusNext, k.Quit}
}

func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.NextTab, k.PrevTab, k.NextJob, k.PrevJob},
		{k.FocusNext, k.FocusPrev},
		{k.Up, k.Down, k.Run, k.Prompt},
		{k.Refresh, k.CloseJob, k.Copy, k.Dismiss},
		{k.Paste, k.Help, k.Quit},
	}
}
