package app

import (
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/b/tabdeck/pkg/layout"
)

// TickMsg is delivered by the runtime's frame timer.
type TickMsg time.Time

// MapEvent turns a bubbletea message into an Action, or nil when the message
// means nothing in the current mode. The same key can map to different
// actions: in text entry every printable key is text, in the help and
// confirm overlays only their own keys apply. Actions arriving as messages
// (effect feedback, control socket) pass through unchanged. Mouse input is
// handled by MapMouse.
func MapEvent(msg tea.Msg, mode Mode, focus string, input InputMode, keys KeyMap) Action {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return Resize{Width: msg.Width, Height: msg.Height}
	case TickMsg:
		return Tick{}
	case Action:
		return msg
	case tea.KeyMsg:
		switch {
		case mode == ModeConfirmQuit:
			return mapConfirmKey(msg)
		case mode == ModeHelp:
			return mapHelpKey(msg, keys)
		case input == InputText:
			return mapTextKey(msg)
		}
		return mapDashboardKey(msg, focus, keys)
	}
	return nil
}

func mapConfirmKey(msg tea.KeyMsg) Action {
	switch msg.String() {
	case "y", "Y", "enter", "ctrl+c":
		return ConfirmQuit{}
	case "n", "N", "esc":
		return CancelQuit{}
	}
	return nil
}

func mapHelpKey(msg tea.KeyMsg, keys KeyMap) Action {
	if msg.Type == tea.KeyCtrlC {
		return Quit{}
	}
	if msg.Type == tea.KeyEsc || key.Matches(msg, keys.Help, keys.Quit) {
		return ToggleHelp{}
	}
	return nil
}

func mapTextKey(msg tea.KeyMsg) Action {
	switch msg.Type {
	case tea.KeyRunes:
		if msg.Alt || len(msg.Runes) == 0 {
			return nil
		}
		return InsertText{Text: string(msg.Runes)}
	case tea.KeySpace:
		return InsertText{Text: " "}
	case tea.KeyBackspace:
		return DeleteBackward{}
	case tea.KeyLeft:
		return CursorLeft{}
	case tea.KeyRight:
		return CursorRight{}
	case tea.KeyUp:
		return HistoryPrev{}
	case tea.KeyDown:
		return HistoryNext{}
	case tea.KeyEnter:
		return SubmitInput{}
	case tea.KeyEsc:
		return CancelInput{}
	case tea.KeyCtrlC:
		return Quit{}
	}
	return nil
}

func mapDashboardKey(msg tea.KeyMsg, focus string, keys KeyMap) Action {
	_, onJob := ParseJobRegion(focus)
	switch {
	case key.Matches(msg, keys.Quit):
		return Quit{}
	case key.Matches(msg, keys.Help):
		return ToggleHelp{}
	case key.Matches(msg, keys.Prompt):
		return EnterInput{}
	case key.Matches(msg, keys.Refresh):
		return RefreshStatus{}
	case key.Matches(msg, keys.NextTab):
		return NextTab{}
	case key.Matches(msg, keys.PrevTab):
		return PrevTab{}
	case key.Matches(msg, keys.NextJob):
		return NextJob{}
	case key.Matches(msg, keys.PrevJob):
		return PrevJob{}
	case key.Matches(msg, keys.FocusNext):
		return FocusNext{}
	case key.Matches(msg, keys.FocusPrev):
		return FocusPrev{}
	case key.Matches(msg, keys.Up):
		return MoveCursor{Delta: -1}
	case key.Matches(msg, keys.Down):
		return MoveCursor{Delta: 1}
	case key.Matches(msg, keys.Run) && focus == RegionCommands:
		return RunCommand{}
	case key.Matches(msg, keys.CloseJob) && onJob:
		return CloseJob{}
	case key.Matches(msg, keys.Copy) && onJob:
		return CopyOutput{}
	case key.Matches(msg, keys.Dismiss):
		return DismissNotice{}
	}
	if msg.Type == tea.KeyRunes && !msg.Alt && len(msg.Runes) == 1 {
		if r := msg.Runes[0]; r >= '1' && r <= '9' {
			return SelectTab{Container: RootTabs, Index: int(r - '1')}
		}
	}
	return nil
}

// HitTester resolves screen positions against the last rendered frame.
type HitTester interface {
	// TabAt reports the tab label under p.
	TabAt(p layout.Point) (container string, index int, ok bool)
	// RegionAt reports the topmost region under p.
	RegionAt(p layout.Point) (string, bool)
}

// MapMouse turns a mouse message into an Action. Clicking a tab label
// selects it, clicking a region focuses it and the wheel moves the cursor
// of the focused region.
func MapMouse(msg tea.MouseMsg, mode Mode, input InputMode, hit HitTester) Action {
	if hit == nil || mode != ModeDashboard || msg.Action != tea.MouseActionPress {
		return nil
	}
	p := layout.Point{X: msg.X, Y: msg.Y}
	switch msg.Button {
	case tea.MouseButtonLeft:
		if container, i, ok := hit.TabAt(p); ok {
			return SelectTab{Container: container, Index: i}
		}
		if id, ok := hit.RegionAt(p); ok && input == InputNormal {
			return FocusRegion{ID: id}
		}
	case tea.MouseButtonWheelUp:
		return MoveCursor{Delta: -1}
	case tea.MouseButtonWheelDown:
		return MoveCursor{Delta: 1}
	}
	return nil
}
