package dashboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/b/tabdeck/pkg/app"
	"github.com/b/tabdeck/pkg/config"
	"github.com/b/tabdeck/pkg/layout"
)

func newState() app.State {
	st := app.NewState(config.Default(), "/repo")
	st.UI.Width, st.UI.Height = 100, 30
	return st
}

// settle runs one layout pass and applies its update.
func settle(st app.State) (app.State, layout.Result) {
	calc := layout.Calculate(Build(st, Options{}), Area(st), st.UI.Layout)
	st.UI.Layout = calc.Update.Apply(st.UI.Layout)
	return st, calc.Result
}

func TestTreeIsValid(t *testing.T) {
	st := newState()
	require.NoError(t, layout.Validate(Build(st, Options{})))

	st, _ = app.Process(st, app.InvokeCommand{Name: "status"})
	st, _ = app.Process(st, app.InvokeCommand{Name: "log"})
	require.Len(t, st.Jobs, 2)
	require.NoError(t, layout.Validate(Build(st, Options{HeaderHeight: 2})))
}

func TestInitialFrame(t *testing.T) {
	st, res := settle(newState())

	for _, id := range []string{app.RootTabs, app.TabOverview, app.RegionSummary, app.RegionGit, app.RegionStatus, app.RegionPrompt} {
		assert.True(t, res.Visible[id], id)
	}
	for _, id := range []string{app.RegionCommands, app.RegionTools, app.TabJobs, app.RegionHelp} {
		assert.False(t, res.Visible[id], id)
	}

	assert.Equal(t, app.RegionGit, st.Focus(), "first focusable is proposed")
	assert.Equal(t, app.RootTabs, st.UI.Layout.FocusContainer)
	assert.Equal(t, []string{app.TabOverview, app.TabCommands, app.RegionTools, app.TabJobs},
		st.UI.Layout.Selections[app.RootTabs].Tabs)

	assert.Equal(t, layout.Rect{X: 0, Y: 28, Width: 100, Height: 1}, res.Regions[app.RegionStatus])
	assert.Equal(t, layout.Rect{X: 0, Y: 29, Width: 100, Height: 1}, res.Regions[app.RegionPrompt])

	// A settled state proposes nothing further.
	again := layout.Calculate(Build(st, Options{}), Area(st), st.UI.Layout)
	assert.Nil(t, again.Update)
}

func TestNextTabShowsCommands(t *testing.T) {
	st, _ := settle(newState())
	st, _ = app.Process(st, app.NextTab{})
	st, res := settle(st)

	assert.True(t, res.Visible[app.RegionCommands])
	assert.False(t, res.Visible[app.RegionGit])
	assert.Equal(t, app.RegionCommands, st.Focus())
}

func TestJobTabs(t *testing.T) {
	st, res := settle(newState())
	assert.Contains(t, res.Regions, app.RootTabs)

	st, effs := app.Process(st, app.InvokeCommand{Name: "status"})
	require.Len(t, effs, 1)
	st, res = settle(st)

	region := app.JobRegion(1)
	assert.True(t, res.Visible[region])
	assert.True(t, res.Visible[app.TabJobs])
	assert.Equal(t, region, st.Focus())
	assert.Equal(t, app.TabJobs, st.UI.Layout.FocusContainer)
	assert.Equal(t, "Jobs (1)", res.Tabs[app.RootTabs].Tabs[3].Title)
	assert.Equal(t, []string{region}, st.UI.Layout.Selections[app.TabJobs].Tabs)

	st, _ = app.Process(st, app.CommandFinished{JobID: 1})
	st, _ = app.Process(st, app.CloseJob{})
	st, res = settle(st)
	assert.True(t, res.Visible[RegionNoJobs])
	assert.Equal(t, RegionNoJobs, st.Focus(), "focus leaves the closed job")
}

func TestHelpOverlayKeepsFocus(t *testing.T) {
	st, _ := settle(newState())
	st, _ = app.Process(st, app.ToggleHelp{})
	st, res := settle(st)

	assert.True(t, res.Visible[app.RegionHelp])
	assert.Equal(t, app.OverlayHelp, res.Focus)
	assert.Empty(t, st.UI.Layout.Focusables)
	assert.Equal(t, app.RegionGit, st.Focus())
	assert.Equal(t, []string{app.OverlayHelp, app.RegionHelp}, res.ZOrder)

	st, _ = app.Process(st, app.ToggleHelp{})
	st, res = settle(st)
	assert.False(t, res.Visible[app.RegionHelp])
	assert.Equal(t, app.RegionGit, st.Focus())
	assert.NotEmpty(t, st.UI.Layout.Focusables)
}

func TestTinyTerminal(t *testing.T) {
	st := newState()
	st.UI.Width, st.UI.Height = 0, 0
	_, res := settle(st)
	assert.Empty(t, res.Regions)

	st.UI.Width, st.UI.Height = 10, 2
	_, res = settle(st)
	assert.Contains(t, res.Regions, app.RegionStatus)
	assert.Contains(t, res.Regions, app.RegionPrompt)
	assert.NotContains(t, res.Regions, app.RegionGit)
}
