package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/mattn/go-runewidth"

	"github.com/b/tabdeck/pkg/anim"
	"github.com/b/tabdeck/pkg/app"
	"github.com/b/tabdeck/pkg/layout"
)

const (
	tabGap          = 1
	tabPad          = 1
	indicatorFrames = 4
)

var jobSpinner = spinner.MiniDot

// span is the horizontal extent of one visible tab label, relative to the
// bar's left edge.
type span struct {
	index int
	x, w  int
	text  string
}

// labelText is the text of a tab label: root tabs carry their jump digit and
// job tabs a status glyph.
func labelText(container string, i int, l layout.TabLabel, st app.State) string {
	if container == app.RootTabs && i < 9 {
		return fmt.Sprintf("%d:%s", i+1, l.Title)
	}
	if id, ok := app.ParseJobRegion(l.ID); ok {
		if j := st.FindJob(id); j >= 0 {
			return jobGlyph(st.Jobs[j], st.UI.Frame) + " " + l.Title
		}
	}
	return l.Title
}

func jobGlyph(j app.Job, frame int) string {
	switch j.Status {
	case app.JobSucceeded:
		return "✓"
	case app.JobFailed:
		return "✗"
	}
	frames := jobSpinner.Frames
	return frames[max(frame-j.StartedFrame, 0)%len(frames)]
}

// tabSpans lays the labels of ts out left to right. When they do not fit
// the leading labels are scrolled away until the selected one is visible.
func tabSpans(container string, ts layout.TabState, st app.State) []span {
	all := make([]span, len(ts.Tabs))
	for i, l := range ts.Tabs {
		text := labelText(container, i, l, st)
		all[i] = span{index: i, text: text, w: runewidth.StringWidth(text) + 2*tabPad}
	}
	avail := ts.Bar.Width - 1
	first := 0
	if sel := ts.Selected; sel >= 0 && sel < len(all) {
		for first < sel && extent(all[first:sel+1]) > avail {
			first++
		}
	}
	var out []span
	x := 1
	for _, s := range all[first:] {
		if x+s.w > ts.Bar.Width && len(out) > 0 {
			break
		}
		s.x = x
		out = append(out, s)
		x += s.w + tabGap
	}
	return out
}

func extent(spans []span) int {
	n := 0
	for i, s := range spans {
		if i > 0 {
			n += tabGap
		}
		n += s.w
	}
	return n
}

// tabBar renders the header band of a tab container. A bordered header of
// two or more rows ends with a rule carrying the selection indicator, which
// slides from the previous tab to the selected one.
func (r *Renderer) tabBar(id string, ts layout.TabState, rect layout.Rect, bordered bool, st app.State) string {
	spans := tabSpans(id, ts, st)
	focused := st.UI.Layout.FocusContainer == id

	var b strings.Builder
	b.WriteString(" ")
	x := 1
	for _, s := range spans {
		if s.x > x {
			b.WriteString(strings.Repeat(" ", s.x-x))
		}
		style := r.st.tabInactive
		if s.index == ts.Selected {
			style = r.st.tabActive
			if focused {
				style = r.st.tabFocused
			}
		}
		b.WriteString(style.Render(strings.Repeat(" ", tabPad) + s.text + strings.Repeat(" ", tabPad)))
		x = s.x + s.w
	}
	if len(ts.Tabs) == 0 {
		b.WriteString(r.st.muted.Render("(empty)"))
	}

	rows := []string{b.String()}
	if bordered && rect.Height >= 2 {
		for len(rows) < rect.Height-1 {
			rows = append(rows, "")
		}
		rows = append(rows, r.rule(id, spans, ts, rect.Width, st))
	}
	return strings.Join(rows, "\n")
}

func (r *Renderer) rule(id string, spans []span, ts layout.TabState, width int, st app.State) string {
	cur, ok := find(spans, ts.Selected)
	if !ok {
		return r.st.rule.Render(strings.Repeat("─", width))
	}
	from := cur
	sel := st.UI.Layout.Selections[id]
	if prev, ok := find(spans, sel.Previous); ok {
		from = prev
	}
	x, w := cur.x, cur.w
	if tw := (anim.Tween{Start: sel.ChangedAt, Frames: indicatorFrames, Ease: anim.EaseOutCubic}); !tw.Done(st.UI.Frame) {
		tw.From, tw.To = float64(from.x), float64(cur.x)
		x = tw.Round(st.UI.Frame)
		tw.From, tw.To = float64(from.w), float64(cur.w)
		w = tw.Round(st.UI.Frame)
	}
	x = min(max(x, 0), width)
	w = min(max(w, 0), width-x)

	return r.st.rule.Render(strings.Repeat("─", x)) +
		r.st.indicator.Render(strings.Repeat("━", w)) +
		r.st.rule.Render(strings.Repeat("─", width-x-w))
}

func find(spans []span, index int) (span, bool) {
	for _, s := range spans {
		if s.index == index {
			return s, true
		}
	}
	return span{}, false
}

// HitMap answers mouse hit tests against one rendered frame.
type HitMap struct {
	res  layout.Result
	bars map[string]layout.Rect
	tabs map[string][]span
}

// NewHitMap records the tab label positions of a frame.
func NewHitMap(st app.State, res layout.Result) HitMap {
	h := HitMap{res: res, bars: make(map[string]layout.Rect), tabs: make(map[string][]span)}
	for id, ts := range res.Tabs {
		if !res.Visible[id] {
			continue
		}
		h.bars[id] = ts.Bar
		h.tabs[id] = tabSpans(id, ts, st)
	}
	return h
}

func (h HitMap) TabAt(p layout.Point) (string, int, bool) {
	if id, ok := h.res.Hit(p); ok {
		if bar, isBar := h.bars[id]; isBar {
			if local, in := bar.ToLocal(p); in && local.Y == 0 {
				for _, s := range h.tabs[id] {
					if local.X >= s.x && local.X < s.x+s.w {
						return id, s.index, true
					}
				}
			}
		}
	}
	return "", 0, false
}

// RegionAt reports the focusable region under p.
func (h HitMap) RegionAt(p layout.Point) (string, bool) {
	id, ok := h.res.Hit(p)
	if !ok {
		return "", false
	}
	for _, f := range h.res.Focusables {
		if f == id {
			return id, true
		}
	}
	return "", false
}
