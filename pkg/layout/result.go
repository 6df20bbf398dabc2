package layout

import (
	"slices"
	"sort"
)

// TabLabel is one entry of a tab bar.
type TabLabel struct {
	ID    string
	Title string
}

// TabState is the part of a Result specific to one tabbed container.
type TabState struct {
	Bar      Rect
	Tabs     []TabLabel
	Selected int
}

// Result is the accumulated output of one layout pass.
type Result struct {
	Regions map[string]Rect
	Visible map[string]bool
	Borders map[string]bool
	// ZOrder is the explicit paint order of overlapping regions, bottom
	// first. Regions not listed are painted before it.
	ZOrder []string
	// Focus is the region holding input focus this frame, or "".
	Focus string
	Tabs  map[string]TabState
	// Focusables lists visible focusable leaves in traversal order.
	Focusables []string
	// Owners maps each region to its innermost enclosing tab container.
	Owners map[string]string
}

// Calculation is a Result plus the deferred patch proposed while computing
// it. Update is nil when state needs no change.
type Calculation struct {
	Result Result
	Update *StateUpdate
}

func NewResult() Result {
	return Result{
		Regions: make(map[string]Rect),
		Visible: make(map[string]bool),
		Borders: make(map[string]bool),
		Tabs:    make(map[string]TabState),
		Owners:  make(map[string]string),
	}
}

// register records a region. Empty rectangles are dropped and an existing
// identifier is never replaced. It reports whether the region was added.
func (r *Result) register(id string, rect Rect, border bool) bool {
	if id == "" || rect.Empty() {
		return false
	}
	if _, exists := r.Regions[id]; exists {
		return false
	}
	r.Regions[id] = rect
	r.Visible[id] = true
	r.Borders[id] = border
	return true
}

// merge unions child into r. Identifiers already in r win. The child's focus
// overrides r's. Z-order is left to the caller because each composite
// combines it differently.
func (r *Result) merge(child Result) {
	for id, rect := range child.Regions {
		if _, exists := r.Regions[id]; exists {
			continue
		}
		r.Regions[id] = rect
		r.Borders[id] = child.Borders[id]
		if owner, ok := child.Owners[id]; ok {
			r.Owners[id] = owner
		}
	}
	for id, v := range child.Visible {
		if v {
			r.Visible[id] = true
		}
	}
	for id, ts := range child.Tabs {
		if _, exists := r.Tabs[id]; !exists {
			r.Tabs[id] = ts
		}
	}
	r.Focusables = append(r.Focusables, child.Focusables...)
	if child.Focus != "" {
		r.Focus = child.Focus
	}
}

// PaintOrder returns the visible regions in the order they should be drawn:
// regions outside ZOrder first (larger areas before smaller, so containers
// come before their contents), then ZOrder.
func (r Result) PaintOrder() []string {
	inZ := make(map[string]bool, len(r.ZOrder))
	for _, id := range r.ZOrder {
		inZ[id] = true
	}
	var base []string
	for id := range r.Regions {
		if r.Visible[id] && !inZ[id] {
			base = append(base, id)
		}
	}
	sortByArea(base, r.Regions)
	out := base
	seen := make(map[string]bool, len(r.ZOrder))
	for _, id := range r.ZOrder {
		if r.Visible[id] && !seen[id] {
			if _, ok := r.Regions[id]; ok {
				out = append(out, id)
				seen[id] = true
			}
		}
	}
	return out
}

// Hit returns the topmost visible region containing p.
func (r Result) Hit(p Point) (string, bool) {
	order := r.PaintOrder()
	for i := len(order) - 1; i >= 0; i-- {
		if r.Regions[order[i]].Contains(p) {
			return order[i], true
		}
	}
	return "", false
}

func sortByArea(ids []string, regions map[string]Rect) {
	sort.Slice(ids, func(i, j int) bool {
		ai, aj := regions[ids[i]].Area(), regions[ids[j]].Area()
		if ai != aj {
			return ai > aj
		}
		return ids[i] < ids[j]
	})
}

// StateUpdate is a deferred patch to layout State proposed by a layout pass.
// It is applied once by the caller after the whole tree has been evaluated.
type StateUpdate struct {
	// Selections replaces whole entries by container id.
	Selections map[string]Selection
	// Focusables replaces the focus ring when non-nil (an empty, non-nil
	// slice clears it).
	Focusables []string
	// Focus and FocusContainer replace their fields when non-nil.
	Focus          *string
	FocusContainer *string
}

// Empty reports whether u changes nothing.
func (u *StateUpdate) Empty() bool {
	return u == nil ||
		(len(u.Selections) == 0 && u.Focusables == nil && u.Focus == nil && u.FocusContainer == nil)
}

// Merge combines two patches. Entries of b win over a; ids are unique across
// a tree so selection keys do not collide in practice.
func Merge(a, b *StateUpdate) *StateUpdate {
	if a.Empty() {
		if b.Empty() {
			return nil
		}
		return b
	}
	if b.Empty() {
		return a
	}
	out := &StateUpdate{
		Selections:     make(map[string]Selection, len(a.Selections)+len(b.Selections)),
		Focusables:     a.Focusables,
		Focus:          a.Focus,
		FocusContainer: a.FocusContainer,
	}
	for k, v := range a.Selections {
		out.Selections[k] = v
	}
	for k, v := range b.Selections {
		out.Selections[k] = v
	}
	if b.Focusables != nil {
		out.Focusables = b.Focusables
	}
	if b.Focus != nil {
		out.Focus = b.Focus
	}
	if b.FocusContainer != nil {
		out.FocusContainer = b.FocusContainer
	}
	return out
}

// Apply returns st with u applied. st is not modified.
func (u *StateUpdate) Apply(st State) State {
	out := st.Clone()
	if u.Empty() {
		return out
	}
	for k, v := range u.Selections {
		out.Selections[k] = v.clone()
	}
	if u.Focusables != nil {
		out.Focusables = slices.Clone(u.Focusables)
	}
	if u.Focus != nil {
		out.Focus = *u.Focus
	}
	if u.FocusContainer != nil {
		out.FocusContainer = *u.FocusContainer
	}
	return out
}
