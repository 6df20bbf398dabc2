package render

import (
	"strings"

	"github.com/charmbracelet/x/ansi"

	"github.com/b/tabdeck/pkg/layout"
)

// canvas is a screen of styled rows. Blocks are spliced into rows by cell
// column so later draws cover earlier ones.
type canvas struct {
	w, h int
	rows []string
}

func newCanvas(w, h int) *canvas {
	w, h = max(w, 0), max(h, 0)
	c := &canvas{w: w, h: h, rows: make([]string, h)}
	blank := strings.Repeat(" ", w)
	for i := range c.rows {
		c.rows[i] = blank
	}
	return c
}

// draw places block at rect, clipped to the canvas. Missing lines and short
// lines are padded with spaces.
func (c *canvas) draw(rect layout.Rect, block string) {
	if rect.Empty() || rect.X >= c.w || rect.Y >= c.h {
		return
	}
	x := max(rect.X, 0)
	w := min(rect.Width-(x-rect.X), c.w-x)
	if w <= 0 {
		return
	}
	lines := strings.Split(block, "\n")
	for i := 0; i < rect.Height; i++ {
		y := rect.Y + i
		if y < 0 || y >= c.h {
			continue
		}
		var line string
		if i < len(lines) {
			line = lines[i]
		}
		row := c.rows[y]
		c.rows[y] = ansi.Truncate(row, x, "") + fitLine(line, w) + ansi.TruncateLeft(row, x+w, "")
	}
}

func (c *canvas) String() string {
	return strings.Join(c.rows, "\n")
}

// fitLine truncates or pads s to exactly w cells.
func fitLine(s string, w int) string {
	if w <= 0 {
		return ""
	}
	if ansi.StringWidth(s) > w {
		s = ansi.Truncate(s, w, "")
	}
	if n := w - ansi.StringWidth(s); n > 0 {
		s += strings.Repeat(" ", n)
	}
	return s
}

// fit shapes s into a w by h block.
func fit(s string, w, h int) string {
	if w <= 0 || h <= 0 {
		return ""
	}
	lines := strings.Split(s, "\n")
	if len(lines) > h {
		lines = lines[:h]
	}
	out := make([]string, h)
	for i := range out {
		var line string
		if i < len(lines) {
			line = lines[i]
		}
		out[i] = fitLine(line, w)
	}
	return strings.Join(out, "\n")
}

// plain prepares captured process output for display: escape sequences are
// dropped and tabs expanded.
func plain(s string) string {
	s = ansi.Strip(s)
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\t", "    ")
}
