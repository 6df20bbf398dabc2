package render

import (
	"io"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/b/tabdeck/pkg/app"
	"github.com/b/tabdeck/pkg/colors"
	"github.com/b/tabdeck/pkg/config"
	"github.com/b/tabdeck/pkg/dashboard"
	"github.com/b/tabdeck/pkg/layout"
	"github.com/b/tabdeck/pkg/mask"
)

func newRenderer(t *testing.T) *Renderer {
	t.Helper()
	m, err := mask.New(config.Default().Mask)
	require.NoError(t, err)
	return New(Options{
		Theme:   colors.Themes["midnight"],
		Profile: termenv.Ascii,
		Keys:    app.DefaultKeyMap(),
		Masker:  m,
		Output:  io.Discard,
	})
}

func settle(st app.State) (app.State, layout.Result) {
	calc := layout.Calculate(dashboard.Build(st, dashboard.Options{}), dashboard.Area(st), st.UI.Layout)
	st.UI.Layout = calc.Update.Apply(st.UI.Layout)
	return st, calc.Result
}

func newState(w, h int) app.State {
	st := app.NewState(config.Default(), "/repo")
	st.UI.Width, st.UI.Height = w, h
	return st
}

func TestStylesUseThemeColors(t *testing.T) {
	theme := colors.Themes["midnight"]
	st := newStyles(lipgloss.NewRenderer(io.Discard), theme)
	assert.Equal(t, lipgloss.Color(theme.Fg), st.text.GetForeground())
	assert.Equal(t, lipgloss.Color(theme.TabActiveBg), st.selected.GetBackground())
	assert.Equal(t, lipgloss.Color(theme.Error), st.err.GetForeground())
}

func TestFrameFillsScreen(t *testing.T) {
	r := newRenderer(t)
	st, res := settle(newState(80, 24))

	out := r.Frame(st, res)
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 24)
	for i, l := range lines {
		assert.Equal(t, 80, lipgloss.Width(l), "line %d", i)
	}
	assert.Contains(t, out, "1:Overview")
	assert.Contains(t, out, "4:Jobs")
	assert.Contains(t, out, "/repo")
	assert.Contains(t, out, "press : to run a command")
}

func TestFrameEmptyScreen(t *testing.T) {
	r := newRenderer(t)
	st, res := settle(newState(0, 0))
	assert.Equal(t, "", r.Frame(st, res))
}

func TestHelpOverlay(t *testing.T) {
	r := newRenderer(t)
	st, _ := settle(newState(100, 30))
	st, _ = app.Process(st, app.ToggleHelp{})
	st, res := settle(st)

	out := r.Frame(st, res)
	assert.Contains(t, out, "Keys")
	assert.Contains(t, out, "next tab")
}

func TestJobOutputIsMasked(t *testing.T) {
	r := newRenderer(t)
	st, _ := settle(newState(100, 30))
	st, _ = app.Process(st, app.InvokeCommand{Name: "status"})
	st, _ = app.Process(st, app.CommandFinished{JobID: 1, Output: "deploy token=abc123\nsecond line\n"})
	st, res := settle(st)
	require.True(t, res.Visible[app.JobRegion(1)])

	out := r.Frame(st, res)
	assert.Contains(t, out, "token=****")
	assert.NotContains(t, out, "abc123")
	assert.Contains(t, out, "second line")
	assert.Contains(t, out, "$ git status --short")
}

func TestPromptShowsText(t *testing.T) {
	r := newRenderer(t)
	st, _ := settle(newState(80, 24))
	st, _ = app.Process(st, app.EnterInput{})
	st, _ = app.Process(st, app.InsertText{Text: "log -n 5"})
	st, res := settle(st)

	out := r.Frame(st, res)
	assert.Contains(t, out, ": log -n 5")
}

func TestStatusShowsNotice(t *testing.T) {
	r := newRenderer(t)
	st, _ := settle(newState(80, 24))
	st, _ = app.Process(st, app.InvokeCommand{Name: "nope"})
	st, res := settle(st)

	assert.Contains(t, r.Frame(st, res), `warning: unknown command "nope"`)
}

func TestCommandsGroupedByTool(t *testing.T) {
	r := newRenderer(t)
	st := newState(100, 30)
	st.UI.Layout.Focus = app.RegionCommands
	st, _ = app.Process(st, app.MoveCursor{Delta: 1})

	lines := strings.Split(plain(r.commands(st)), "\n")
	assert.Equal(t, []string{"Commands", "", "git", "  status", "> log", "uv", "  sync"}, lines)
}

func TestHitMap(t *testing.T) {
	st, res := settle(newState(80, 24))
	h := NewHitMap(st, res)

	// " 1:Overview " spans x 1..12, " 2:Commands " starts at 14.
	id, i, ok := h.TabAt(layout.Point{X: 14, Y: 0})
	require.True(t, ok)
	assert.Equal(t, app.RootTabs, id)
	assert.Equal(t, 1, i)

	_, i, ok = h.TabAt(layout.Point{X: 5, Y: 0})
	assert.True(t, ok)
	assert.Equal(t, 0, i)

	_, _, ok = h.TabAt(layout.Point{X: 13, Y: 0})
	assert.False(t, ok, "gap between labels")
	_, _, ok = h.TabAt(layout.Point{X: 5, Y: 1})
	assert.False(t, ok, "indicator rule")

	git := res.Regions[app.RegionGit]
	got, ok := h.RegionAt(layout.Point{X: git.X + 2, Y: git.Y + 2})
	require.True(t, ok)
	assert.Equal(t, app.RegionGit, got)

	sum := res.Regions[app.RegionSummary]
	_, ok = h.RegionAt(layout.Point{X: sum.X + 2, Y: sum.Y + 2})
	assert.False(t, ok, "summary is not focusable")

	// The hit map satisfies the mapper's interface.
	act := app.MapMouse(leftClick(14, 0), app.ModeDashboard, app.InputNormal, h)
	assert.Equal(t, app.SelectTab{Container: app.RootTabs, Index: 1}, act)
}

func TestIndicatorSlides(t *testing.T) {
	r := newRenderer(t)
	st, res := settle(newState(80, 24))
	st, _ = app.Process(st, app.NextTab{})
	st, res = settle(st)
	ts := res.Tabs[app.RootTabs]
	spans := tabSpans(app.RootTabs, ts, st)
	sel := st.UI.Layout.Selections[app.RootTabs]
	require.Equal(t, 1, sel.Selected)
	require.Equal(t, 0, sel.Previous)

	offset := func(rule string) int {
		return strings.Index(rule, "━") / len("─")
	}

	st.UI.Frame = sel.ChangedAt
	start := r.rule(app.RootTabs, spans, ts, 80, st)
	assert.Equal(t, spans[0].x, offset(start))

	st.UI.Frame = sel.ChangedAt + indicatorFrames
	end := r.rule(app.RootTabs, spans, ts, 80, st)
	assert.Equal(t, spans[1].x, offset(end))
	assert.Equal(t, 80, lipgloss.Width(end))

	st.UI.Frame = sel.ChangedAt + 1
	mid := offset(r.rule(app.RootTabs, spans, ts, 80, st))
	assert.Greater(t, mid, spans[0].x)
	assert.Less(t, mid, spans[1].x)
}

func TestTabSpansScrollToSelection(t *testing.T) {
	ts := layout.TabState{Bar: layout.Rect{Width: 20, Height: 1}, Selected: 5}
	for i := 0; i < 6; i++ {
		ts.Tabs = append(ts.Tabs, layout.TabLabel{ID: string(rune('a' + i)), Title: "tab-long"})
	}
	spans := tabSpans("x", ts, app.State{})
	require.NotEmpty(t, spans)
	assert.Greater(t, spans[0].index, 0)
	last := spans[len(spans)-1]
	assert.Equal(t, 5, last.index)
	assert.LessOrEqual(t, last.x+last.w, 20)
}

func TestCanvasDraw(t *testing.T) {
	c := newCanvas(6, 2)
	c.draw(layout.Rect{Width: 6, Height: 2}, "aaaaaa\nbbbbbb")
	c.draw(layout.Rect{X: 2, Y: 1, Width: 3, Height: 1}, "XYZW")
	c.draw(layout.Rect{X: 5, Y: 0, Width: 4, Height: 1}, "QQ")
	assert.Equal(t, "aaaaaQ\nbbXYZb", c.String())
}

func TestFit(t *testing.T) {
	assert.Equal(t, "ab \n   ", fit("ab", 3, 2))
	assert.Equal(t, "abc", fit("abcdef\nxyz", 3, 1))
	assert.Equal(t, "", fit("x", 0, 3))
}

func leftClick(x, y int) tea.MouseMsg {
	return tea.MouseMsg{X: x, Y: y, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft}
}
