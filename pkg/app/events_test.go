package app

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"

	"github.com/b/tabdeck/pkg/layout"
)

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestMapEventSameKeyDependsOnMode(t *testing.T) {
	keys := DefaultKeyMap()
	tests := []struct {
		name  string
		msg   tea.Msg
		mode  Mode
		focus string
		input InputMode
		want  Action
	}{
		{"q quits on dashboard", runes("q"), ModeDashboard, "", InputNormal, Quit{}},
		{"q is text in prompt", runes("q"), ModeDashboard, "", InputText, InsertText{Text: "q"}},
		{"q closes help", runes("q"), ModeHelp, "", InputNormal, ToggleHelp{}},
		{"q ignored when confirming", runes("q"), ModeConfirmQuit, "", InputNormal, nil},
		{"l next tab", runes("l"), ModeDashboard, "", InputNormal, NextTab{}},
		{"] next job", runes("]"), ModeDashboard, "job-1", InputNormal, NextJob{}},
		{"[ prev job", runes("["), ModeDashboard, RegionGit, InputNormal, PrevJob{}},
		{"l is text", runes("l"), ModeDashboard, "", InputText, InsertText{Text: "l"}},
		{"tab focus", tea.KeyMsg{Type: tea.KeyTab}, ModeDashboard, "", InputNormal, FocusNext{}},
		{"tab ignored in prompt", tea.KeyMsg{Type: tea.KeyTab}, ModeDashboard, "", InputText, nil},
		{"shift+tab", tea.KeyMsg{Type: tea.KeyShiftTab}, ModeDashboard, "", InputNormal, FocusPrev{}},
		{"colon prompt", runes(":"), ModeDashboard, "", InputNormal, EnterInput{}},
		{"space text", tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}, ModeDashboard, "", InputText, InsertText{Text: " "}},
		{"enter submits", tea.KeyMsg{Type: tea.KeyEnter}, ModeDashboard, "", InputText, SubmitInput{}},
		{"enter runs on command list", tea.KeyMsg{Type: tea.KeyEnter}, ModeDashboard, RegionCommands, InputNormal, RunCommand{}},
		{"enter elsewhere", tea.KeyMsg{Type: tea.KeyEnter}, ModeDashboard, RegionGit, InputNormal, nil},
		{"enter confirms", tea.KeyMsg{Type: tea.KeyEnter}, ModeConfirmQuit, "", InputNormal, ConfirmQuit{}},
		{"esc cancels prompt", tea.KeyMsg{Type: tea.KeyEsc}, ModeDashboard, "", InputText, CancelInput{}},
		{"esc cancels quit", tea.KeyMsg{Type: tea.KeyEsc}, ModeConfirmQuit, "", InputNormal, CancelQuit{}},
		{"esc closes help", tea.KeyMsg{Type: tea.KeyEsc}, ModeHelp, "", InputNormal, ToggleHelp{}},
		{"esc dismisses", tea.KeyMsg{Type: tea.KeyEsc}, ModeDashboard, "", InputNormal, DismissNotice{}},
		{"x closes job", runes("x"), ModeDashboard, "job-3", InputNormal, CloseJob{}},
		{"x elsewhere", runes("x"), ModeDashboard, RegionGit, InputNormal, nil},
		{"y copies job", runes("y"), ModeDashboard, "job-3", InputNormal, CopyOutput{}},
		{"y confirms", runes("y"), ModeConfirmQuit, "", InputNormal, ConfirmQuit{}},
		{"digit selects", runes("3"), ModeDashboard, "", InputNormal, SelectTab{Container: RootTabs, Index: 2}},
		{"digit is text", runes("3"), ModeDashboard, "", InputText, InsertText{Text: "3"}},
		{"up in prompt", tea.KeyMsg{Type: tea.KeyUp}, ModeDashboard, "", InputText, HistoryPrev{}},
		{"up in list", tea.KeyMsg{Type: tea.KeyUp}, ModeDashboard, RegionCommands, InputNormal, MoveCursor{Delta: -1}},
		{"ctrl+c in prompt", tea.KeyMsg{Type: tea.KeyCtrlC}, ModeDashboard, "", InputText, Quit{}},
		{"ctrl+c in help", tea.KeyMsg{Type: tea.KeyCtrlC}, ModeHelp, "", InputNormal, Quit{}},
		{"backspace", tea.KeyMsg{Type: tea.KeyBackspace}, ModeDashboard, "", InputText, DeleteBackward{}},
		{"unmapped key", tea.KeyMsg{Type: tea.KeyF7}, ModeDashboard, "", InputNormal, nil},
		{"alt rune in prompt", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'b'}, Alt: true}, ModeDashboard, "", InputText, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapEvent(tt.msg, tt.mode, tt.focus, tt.input, keys)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMapEventResizeInEveryMode(t *testing.T) {
	keys := DefaultKeyMap()
	for _, mode := range []Mode{ModeDashboard, ModeHelp, ModeConfirmQuit} {
		for _, input := range []InputMode{InputNormal, InputText} {
			got := MapEvent(tea.WindowSizeMsg{Width: 100, Height: 30}, mode, "", input, keys)
			assert.Equal(t, Resize{Width: 100, Height: 30}, got)
		}
	}
}

type unknownMsg struct{}

func TestMapEventPassThroughAndUnknown(t *testing.T) {
	keys := DefaultKeyMap()
	assert.Equal(t, Tick{}, MapEvent(TickMsg(time.Now()), ModeHelp, "", InputNormal, keys))
	assert.Equal(t, DocumentSaved{}, MapEvent(DocumentSaved{}, ModeDashboard, "", InputNormal, keys))
	assert.Nil(t, MapEvent(unknownMsg{}, ModeDashboard, "", InputNormal, keys))
	assert.Nil(t, MapEvent(nil, ModeDashboard, "", InputNormal, keys))
	assert.Nil(t, MapEvent(tea.MouseMsg{}, ModeDashboard, "", InputNormal, keys))
}

func TestCustomBindings(t *testing.T) {
	b := DefaultKeyMap()
	b.NextTab.SetKeys("n")
	assert.Equal(t, NextTab{}, MapEvent(runes("n"), ModeDashboard, "", InputNormal, b))
	assert.Nil(t, MapEvent(runes("l"), ModeDashboard, "", InputNormal, b))
}

type fakeHits struct{}

func (fakeHits) TabAt(p layout.Point) (string, int, bool) {
	if p.Y == 0 && p.X < 30 {
		return RootTabs, p.X / 10, true
	}
	return "", 0, false
}

func (fakeHits) RegionAt(p layout.Point) (string, bool) {
	if p.Y > 0 {
		return RegionGit, true
	}
	return "", false
}

func TestMapMouse(t *testing.T) {
	press := func(x, y int, b tea.MouseButton) tea.MouseMsg {
		return tea.MouseMsg{X: x, Y: y, Button: b, Action: tea.MouseActionPress}
	}
	assert.Equal(t, SelectTab{Container: RootTabs, Index: 1}, MapMouse(press(12, 0, tea.MouseButtonLeft), ModeDashboard, InputNormal, fakeHits{}))
	assert.Equal(t, FocusRegion{ID: RegionGit}, MapMouse(press(5, 4, tea.MouseButtonLeft), ModeDashboard, InputNormal, fakeHits{}))
	assert.Nil(t, MapMouse(press(5, 4, tea.MouseButtonLeft), ModeDashboard, InputText, fakeHits{}))
	assert.Nil(t, MapMouse(press(40, 0, tea.MouseButtonLeft), ModeDashboard, InputNormal, fakeHits{}))
	assert.Equal(t, MoveCursor{Delta: 1}, MapMouse(press(5, 4, tea.MouseButtonWheelDown), ModeDashboard, InputNormal, fakeHits{}))
	assert.Nil(t, MapMouse(press(12, 0, tea.MouseButtonLeft), ModeHelp, InputNormal, fakeHits{}))
	assert.Nil(t, MapMouse(tea.MouseMsg{X: 12, Y: 0, Button: tea.MouseButtonLeft, Action: tea.MouseActionRelease}, ModeDashboard, InputNormal, fakeHits{}))
	assert.Nil(t, MapMouse(press(12, 0, tea.MouseButtonLeft), ModeDashboard, InputNormal, nil))
}
