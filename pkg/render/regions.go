package render

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/b/tabdeck/pkg/app"
	"github.com/b/tabdeck/pkg/dashboard"
	"github.com/b/tabdeck/pkg/grouping"
	"github.com/b/tabdeck/pkg/layout"
)

// region returns the unframed content of a leaf. Composite regions are
// blank backgrounds.
func (r *Renderer) region(id string, rect layout.Rect, st app.State) string {
	switch id {
	case app.RegionSummary:
		return r.summary(st)
	case app.RegionGit:
		return r.git(st)
	case app.RegionCommands:
		return r.commands(st)
	case app.RegionDetail:
		return r.detail(st)
	case app.RegionTools:
		return r.tools(st)
	case app.RegionStatus:
		return r.status(st, rect.Width)
	case app.RegionPrompt:
		return r.prompt(st, rect.Width)
	case app.RegionHelp:
		return r.helpBody(rect.Width)
	case app.RegionConfirm:
		return r.confirm(st)
	case dashboard.RegionNoJobs:
		return r.st.muted.Render("No jobs yet. Press : and enter a command name, or !tool args.")
	}
	if jobID, ok := app.ParseJobRegion(id); ok {
		return r.job(st, jobID, rect.Height)
	}
	return ""
}

func (r *Renderer) heading(s string) string {
	return r.st.title.Render(s)
}

func (r *Renderer) summary(st app.State) string {
	ok := 0
	for _, t := range st.Context.Tools {
		if t.OK() {
			ok++
		}
	}
	branch := "-"
	if st.Context.VCS.IsRepo {
		branch = st.Context.VCS.Branch
	}
	lines := []string{
		r.heading("Project"),
		"",
		kv("root", st.Context.Root),
		kv("branch", branch),
		kv("jobs", fmt.Sprintf("%d running, %d total", st.RunningJobs(), len(st.Jobs))),
		kv("tools", fmt.Sprintf("%d/%d ok", ok, len(st.Context.Tools))),
	}
	return strings.Join(lines, "\n")
}

func kv(k, v string) string {
	return fmt.Sprintf("%-8s %s", k, v)
}

func (r *Renderer) git(st app.State) string {
	lines := []string{r.heading("Git")}
	if st.Context.Refreshing {
		lines[0] += " " + r.st.muted.Render(jobSpinner.Frames[st.UI.Frame%len(jobSpinner.Frames)])
	}
	lines = append(lines, "")
	vcs := st.Context.VCS
	switch {
	case st.Context.VCSErr != "":
		lines = append(lines, r.st.err.Render(st.Context.VCSErr))
	case vcs.CheckedAt.IsZero():
		lines = append(lines, r.st.muted.Render("reading status..."))
	case !vcs.IsRepo:
		lines = append(lines, r.st.muted.Render("not a git repository"))
	default:
		branch := vcs.Branch
		if branch == "" {
			branch = "(detached)"
		}
		lines = append(lines, kv("branch", branch+" "+r.st.muted.Render(vcs.Head)))
		if vcs.Upstream != "" {
			lines = append(lines, kv("upstream", fmt.Sprintf("%s ↑%d ↓%d", vcs.Upstream, vcs.Ahead, vcs.Behind)))
		}
		state := r.st.ok.Render("clean")
		if vcs.Dirty() {
			state = r.st.warn.Render("dirty")
		}
		lines = append(lines,
			kv("tree", state),
			kv("staged", fmt.Sprint(vcs.Staged)),
			kv("changed", fmt.Sprint(vcs.Unstaged)),
			kv("new", fmt.Sprint(vcs.Untracked)),
		)
		if vcs.Conflicts > 0 {
			lines = append(lines, r.st.err.Render(kv("conflict", fmt.Sprint(vcs.Conflicts))))
		}
	}
	return strings.Join(lines, "\n")
}

func (r *Renderer) commands(st app.State) string {
	lines := []string{r.heading("Commands"), ""}
	if len(st.Commands) == 0 {
		lines = append(lines, r.st.muted.Render("no commands configured"))
	}
	i := 0
	for _, g := range grouping.By(st.Commands, app.CommandGroup) {
		lines = append(lines, r.st.muted.Render(g.Name))
		for _, c := range g.Items {
			if i == st.UI.CommandCursor {
				lines = append(lines, r.st.selected.Render("> "+c.Name))
			} else {
				lines = append(lines, "  "+c.Name)
			}
			i++
		}
	}
	return strings.Join(lines, "\n")
}

func (r *Renderer) detail(st app.State) string {
	i := st.UI.CommandCursor
	if i < 0 || i >= len(st.Commands) {
		return r.st.muted.Render("select a command")
	}
	c := st.Commands[i]
	line := strings.TrimSpace(c.Tool + " " + strings.Join(c.Args, " "))
	lines := []string{
		r.heading(c.Name),
		"",
		r.st.muted.Render(c.Description),
		"",
		"$ " + r.masked(line),
		"",
		r.st.muted.Render(fmt.Sprintf("enter runs it, or type :%s <args>", c.Name)),
	}
	return strings.Join(lines, "\n")
}

func (r *Renderer) tools(st app.State) string {
	lines := []string{r.heading("Tools"), ""}
	if len(st.Context.Tools) == 0 {
		lines = append(lines, r.st.muted.Render("detecting..."))
	}
	for _, t := range st.Context.Tools {
		mark, style := "✓", r.st.ok
		switch {
		case !t.Found:
			mark, style = "✗", r.st.err
		case !t.Satisfied:
			mark, style = "!", r.st.warn
		}
		if !t.Required && !t.Found {
			style = r.st.muted
		}
		detail := t.Version
		if detail == "" {
			detail = t.Raw
		}
		if t.Err != "" {
			detail = t.Err
		}
		lines = append(lines, style.Render(mark)+" "+fmt.Sprintf("%-10s %s", t.Name, detail))
	}
	return strings.Join(lines, "\n")
}

func (r *Renderer) job(st app.State, id, height int) string {
	i := st.FindJob(id)
	if i < 0 {
		return ""
	}
	j := st.Jobs[i]
	head := r.st.title.Render("$ " + r.masked(j.CommandLine()))

	var state string
	switch j.Status {
	case app.JobRunning:
		state = r.st.info.Render(jobGlyph(j, st.UI.Frame) + " running")
	case app.JobSucceeded:
		state = r.st.ok.Render(fmt.Sprintf("✓ done in %s", j.Duration.Round(time.Millisecond)))
	case app.JobFailed:
		msg := fmt.Sprintf("✗ failed (exit %d)", j.ExitCode)
		if j.ExitCode < 0 {
			msg = "✗ failed"
		}
		state = r.st.err.Render(msg)
	}
	lines := []string{head, state, ""}
	if j.Status == app.JobFailed && j.Err != "" {
		lines = append(lines, r.st.err.Render(r.masked(j.Err)))
	}

	out := strings.Split(strings.TrimRight(plain(r.masked(j.Output)), "\n"), "\n")
	start := min(max(j.Scroll, 0), len(out))
	room := max(height-2-len(lines), 0) // inside the border
	end := min(start+room, len(out))
	lines = append(lines, out[start:end]...)
	return strings.Join(lines, "\n")
}

func (r *Renderer) status(st app.State, width int) string {
	var left string
	if n := len(st.Notices); n > 0 {
		notice := st.Notices[n-1]
		style := r.st.info
		switch notice.Level {
		case app.NoticeWarn:
			style = r.st.warn
		case app.NoticeError:
			style = r.st.err
		}
		left = style.Render(notice.String())
	} else {
		left = fmt.Sprintf(" %s", st.Mode)
		if st.Context.VCS.Branch != "" {
			left += "  ⎇ " + st.Context.VCS.Branch
		}
		if n := st.RunningJobs(); n > 0 {
			left += fmt.Sprintf("  %d running", n)
		}
	}
	r.help.Width = max(width-lipgloss.Width(left)-2, 0)
	right := r.help.ShortHelpView(r.keys.ShortHelp())
	gap := max(width-lipgloss.Width(left)-lipgloss.Width(right), 1)
	return r.st.status.Render(fitLine(left+strings.Repeat(" ", gap)+right, width))
}

func (r *Renderer) prompt(st app.State, width int) string {
	if st.Input != app.InputText {
		return r.st.muted.Render(" press : to run a command, ? for help")
	}
	r.input.Width = max(width-len(r.input.Prompt)-1, 1)
	r.input.SetValue(st.Prompt.Text)
	r.input.SetCursor(st.Prompt.Cursor)
	return r.input.View()
}

func (r *Renderer) helpBody(width int) string {
	r.help.Width = width
	r.help.ShowAll = true
	body := r.help.View(r.keys)
	r.help.ShowAll = false
	return strings.Join([]string{
		r.heading("Keys"),
		"",
		body,
		"",
		r.st.muted.Render("1-9 jump to a tab, click tabs and panes, wheel scrolls"),
		r.st.muted.Render(":name args runs a command, :!tool args runs any tool"),
	}, "\n")
}

func (r *Renderer) confirm(st app.State) string {
	return strings.Join([]string{
		r.heading("Quit?"),
		"",
		fmt.Sprintf("%d job(s) still running.", st.RunningJobs()),
		"y quits, n or esc goes back",
	}, "\n")
}
