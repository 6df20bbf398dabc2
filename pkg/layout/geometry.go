package layout

// Rect is a rectangle in screen space: cells, origin at the terminal's
// top-left corner.
type Rect struct {
	X, Y          int
	Width, Height int
}

// Point is a cell position in screen space.
type Point struct {
	X, Y int
}

// Local is a cell position relative to the top-left corner of a region.
// Screen and region coordinates are different types so they cannot be mixed
// up in hit-testing code.
type Local struct {
	X, Y int
}

// Empty reports whether r covers no cells.
func (r Rect) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Area returns the number of cells in r.
func (r Rect) Area() int {
	if r.Empty() {
		return 0
	}
	return r.Width * r.Height
}

func (r Rect) Contains(p Point) bool {
	return !r.Empty() &&
		p.X >= r.X && p.X < r.X+r.Width &&
		p.Y >= r.Y && p.Y < r.Y+r.Height
}

// ToLocal converts a screen point into r's coordinate space. ok is false when
// p lies outside r.
func (r Rect) ToLocal(p Point) (Local, bool) {
	if !r.Contains(p) {
		return Local{}, false
	}
	return Local{X: p.X - r.X, Y: p.Y - r.Y}, true
}

// ToScreen converts a region-local point back into screen space.
func (r Rect) ToScreen(l Local) Point {
	return Point{X: r.X + l.X, Y: r.Y + l.Y}
}

// SplitTop cuts a band of height h off the top of r. h is clamped to r.
func (r Rect) SplitTop(h int) (top, rest Rect) {
	h = clamp(h, 0, max(r.Height, 0))
	top = Rect{X: r.X, Y: r.Y, Width: r.Width, Height: h}
	rest = Rect{X: r.X, Y: r.Y + h, Width: r.Width, Height: r.Height - h}
	return top, rest.normalize()
}

// Inset shrinks r by n cells on every side.
func (r Rect) Inset(n int) Rect {
	return Rect{X: r.X + n, Y: r.Y + n, Width: r.Width - 2*n, Height: r.Height - 2*n}.normalize()
}

// Centered returns a rectangle of the given percentage of r, centered in r.
func (r Rect) Centered(widthPct, heightPct int) Rect {
	if r.Empty() {
		return Rect{X: r.X, Y: r.Y}
	}
	w := max(1, r.Width*clamp(widthPct, 1, 100)/100)
	h := max(1, r.Height*clamp(heightPct, 1, 100)/100)
	return Rect{
		X:      r.X + (r.Width-w)/2,
		Y:      r.Y + (r.Height-h)/2,
		Width:  w,
		Height: h,
	}
}

func (r Rect) normalize() Rect {
	if r.Width < 0 {
		r.Width = 0
	}
	if r.Height < 0 {
		r.Height = 0
	}
	return r
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
