// Package render paints a frame from a layout result and application state.
// It only reads state.
package render

import (
	"io"
	"os"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/b/tabdeck/pkg/app"
	"github.com/b/tabdeck/pkg/colors"
	"github.com/b/tabdeck/pkg/layout"
	"github.com/b/tabdeck/pkg/mask"
)

type Options struct {
	Theme   colors.Theme
	Profile termenv.Profile
	Keys    app.KeyMap
	Masker  *mask.Masker
	// Output is the terminal the frame is written to; defaults to stdout.
	Output io.Writer
}

type Renderer struct {
	lg    *lipgloss.Renderer
	theme colors.Theme
	st    styles
	keys  app.KeyMap
	help  help.Model
	input textinput.Model
	mask  *mask.Masker
}

type styles struct {
	text        lipgloss.Style
	muted       lipgloss.Style
	title       lipgloss.Style
	selected    lipgloss.Style
	border      lipgloss.Style
	focusBorder lipgloss.Style
	tabActive   lipgloss.Style
	tabFocused  lipgloss.Style
	tabInactive lipgloss.Style
	rule        lipgloss.Style
	indicator   lipgloss.Style
	status      lipgloss.Style
	info        lipgloss.Style
	warn        lipgloss.Style
	err         lipgloss.Style
	ok          lipgloss.Style
}

func New(opts Options) *Renderer {
	out := opts.Output
	if out == nil {
		out = os.Stdout
	}
	lg := lipgloss.NewRenderer(out)
	lg.SetColorProfile(opts.Profile)
	lg.SetHasDarkBackground(opts.Theme.Dark)

	r := &Renderer{
		lg:    lg,
		theme: opts.Theme,
		keys:  opts.Keys,
		mask:  opts.Masker,
		help:  help.New(),
		input: textinput.New(),
	}
	r.st = newStyles(lg, opts.Theme)
	r.input.Prompt = ": "
	r.input.PromptStyle = lg.NewStyle().Foreground(lipgloss.Color(opts.Theme.Focus)).Bold(true)
	r.input.TextStyle = lg.NewStyle().Foreground(lipgloss.Color(opts.Theme.PromptFg))
	r.input.Focus()
	r.help.Styles.ShortKey = r.st.text.Bold(true)
	r.help.Styles.ShortDesc = r.st.muted
	r.help.Styles.FullKey = r.st.text.Bold(true)
	r.help.Styles.FullDesc = r.st.muted
	return r
}

func newStyles(lg *lipgloss.Renderer, t colors.Theme) styles {
	c := func(s string) lipgloss.Color { return lipgloss.Color(s) }
	return styles{
		text:        lg.NewStyle().Foreground(c(t.Fg)),
		muted:       lg.NewStyle().Foreground(c(t.Muted)),
		title:       lg.NewStyle().Foreground(c(t.Fg)).Bold(true),
		selected:    lg.NewStyle().Foreground(c(t.TabActiveFg)).Background(c(t.TabActiveBg)).Bold(true),
		border:      lg.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(c(t.Border)),
		focusBorder: lg.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(c(t.Focus)),
		tabActive:   lg.NewStyle().Foreground(c(t.TabActiveFg)).Background(c(t.TabActiveBg)).Bold(true),
		tabFocused:  lg.NewStyle().Foreground(c(t.TabActiveFg)).Background(c(t.TabActiveBg)).Bold(true).Underline(true),
		tabInactive: lg.NewStyle().Foreground(c(t.TabInactiveFg)),
		rule:        lg.NewStyle().Foreground(c(t.Border)),
		indicator:   lg.NewStyle().Foreground(c(t.Indicator)),
		status:      lg.NewStyle().Foreground(c(t.StatusFg)).Background(c(t.StatusBg)),
		info:        lg.NewStyle().Foreground(c(t.Info)),
		warn:        lg.NewStyle().Foreground(c(t.Warn)).Bold(true),
		err:         lg.NewStyle().Foreground(c(t.Error)).Bold(true),
		ok:          lg.NewStyle().Foreground(c(t.Success)),
	}
}

// Frame paints every visible region of res in paint order onto a screen of
// st's size.
func (r *Renderer) Frame(st app.State, res layout.Result) string {
	cv := newCanvas(st.UI.Width, st.UI.Height)
	for _, id := range res.PaintOrder() {
		rect := res.Regions[id]
		if ts, ok := res.Tabs[id]; ok {
			cv.draw(rect, r.tabBar(id, ts, rect, res.Borders[id], st))
			continue
		}
		body := r.region(id, rect, st)
		if res.Borders[id] {
			cv.draw(rect, r.box(body, rect, id == st.Focus() || id == res.Focus))
		} else {
			cv.draw(rect, fit(body, rect.Width, rect.Height))
		}
	}
	return cv.String()
}

// box draws content inside a rounded border sized to rect.
func (r *Renderer) box(content string, rect layout.Rect, focused bool) string {
	if rect.Width < 3 || rect.Height < 3 {
		return fit(content, rect.Width, rect.Height)
	}
	style := r.st.border
	if focused {
		style = r.st.focusBorder
	}
	return style.Render(fit(content, rect.Width-2, rect.Height-2))
}

func (r *Renderer) masked(s string) string {
	return r.mask.Apply(s)
}
