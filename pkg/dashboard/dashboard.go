// Package dashboard describes the screen as a layout tree derived from
// application state.
package dashboard

import (
	"fmt"

	"github.com/b/tabdeck/pkg/app"
	"github.com/b/tabdeck/pkg/layout"
)

const (
	// Root is the vertical split holding the tabs, status line and prompt.
	Root = "root"
	// RegionNoJobs is the placeholder tab shown before any job has run.
	RegionNoJobs = "jobs-empty"
)

type Options struct {
	HeaderHeight int
}

// Build returns the layout tree for st. The tree only depends on state that
// changes the set of regions (jobs); selections and focus are resolved by
// layout.Calculate.
func Build(st app.State, opts Options) layout.Node {
	main := layout.Tabs{
		ID:           app.RootTabs,
		HeaderHeight: max(opts.HeaderHeight, 1) + 1, // labels plus the indicator rule
		Border:       true,
		Children: []layout.Tab{
			{Title: "Overview", Node: overview()},
			{Title: "Commands", Node: commands()},
			{Title: "Tools", Node: layout.Leaf{ID: app.RegionTools, Border: true, Focusable: true}},
			{Title: jobsTitle(st), Node: jobs(st, opts)},
		},
	}

	body := layout.Split{
		ID:        Root,
		Direction: layout.Vertical,
		Children: []layout.Pane{
			{Node: main, Size: layout.Size{Weight: 1}},
			{Node: layout.Leaf{ID: app.RegionStatus}, Size: layout.Size{Fixed: 1}},
			{Node: layout.Leaf{ID: app.RegionPrompt}, Size: layout.Size{Fixed: 1}},
		},
	}

	confirm := layout.Overlay{
		ID:        app.OverlayConfirm,
		Base:      body,
		Popup:     layout.Leaf{ID: app.RegionConfirm},
		WidthPct:  50,
		HeightPct: 30,
	}
	return layout.Overlay{
		ID:        app.OverlayHelp,
		Base:      confirm,
		Popup:     layout.Leaf{ID: app.RegionHelp},
		WidthPct:  70,
		HeightPct: 70,
	}
}

// Area is the screen rectangle for st's terminal size.
func Area(st app.State) layout.Rect {
	return layout.Rect{Width: st.UI.Width, Height: st.UI.Height}
}

func overview() layout.Node {
	return layout.Split{
		ID:        app.TabOverview,
		Direction: layout.Horizontal,
		Gap:       1,
		Children: []layout.Pane{
			{Node: layout.Leaf{ID: app.RegionSummary, Border: true}, Size: layout.Size{Weight: 1}},
			{Node: layout.Leaf{ID: app.RegionGit, Border: true, Focusable: true}, Size: layout.Size{Weight: 1}},
		},
	}
}

func commands() layout.Node {
	return layout.Split{
		ID:        app.TabCommands,
		Direction: layout.Horizontal,
		Gap:       1,
		Children: []layout.Pane{
			{Node: layout.Leaf{ID: app.RegionCommands, Border: true, Focusable: true}, Size: layout.Size{Weight: 1}},
			{Node: layout.Leaf{ID: app.RegionDetail, Border: true}, Size: layout.Size{Weight: 2}},
		},
	}
}

func jobs(st app.State, opts Options) layout.Node {
	t := layout.Tabs{ID: app.TabJobs, HeaderHeight: opts.HeaderHeight}
	for _, j := range st.Jobs {
		t.Children = append(t.Children, layout.Tab{
			Title: fmt.Sprintf("%d %s", j.ID, j.Name),
			Node:  layout.Leaf{ID: app.JobRegion(j.ID), Border: true, Focusable: true},
		})
	}
	if len(t.Children) == 0 {
		t.Children = []layout.Tab{{Title: "none", Node: layout.Leaf{ID: RegionNoJobs, Border: true, Focusable: true}}}
	}
	return t
}

func jobsTitle(st app.State) string {
	if n := st.RunningJobs(); n > 0 {
		return fmt.Sprintf("Jobs (%d)", n)
	}
	return "Jobs"
}
