package layout

import "slices"

// Selection is the state of one tabbed container: the tab identifiers last
// seen by layout and the selected index into them (-1 when there are none).
// Previous and ChangedAt describe the last change and drive the tab
// indicator animation.
type Selection struct {
	Tabs      []string
	Selected  int
	Previous  int
	ChangedAt int
}

// Current returns the selected tab id, or "".
func (s Selection) Current() string {
	if s.Selected < 0 || s.Selected >= len(s.Tabs) {
		return ""
	}
	return s.Tabs[s.Selected]
}

// Valid reports whether Selected indexes Tabs, or is -1 for an empty list.
func (s Selection) Valid() bool {
	if len(s.Tabs) == 0 {
		return s.Selected == -1
	}
	return s.Selected >= 0 && s.Selected < len(s.Tabs)
}

func (s Selection) clone() Selection {
	s.Tabs = slices.Clone(s.Tabs)
	return s
}

// State is the layout-specific part of application state. Layout reads it;
// only StateUpdate.Apply and the reducer produce new values.
type State struct {
	Selections map[string]Selection
	Open       map[string]bool
	Focus      string
	// Focusables are the visible focusable leaves of the last frame in
	// traversal order; FocusContainer is the innermost tab container of the
	// focused region (or the outermost container when nothing is focused).
	// Both are written by layout through StateUpdate.
	Focusables     []string
	FocusContainer string
}

// Clone returns a deep copy so callers can modify the result freely.
func (s State) Clone() State {
	out := State{
		Selections:     make(map[string]Selection, len(s.Selections)),
		Open:           make(map[string]bool, len(s.Open)),
		Focus:          s.Focus,
		Focusables:     slices.Clone(s.Focusables),
		FocusContainer: s.FocusContainer,
	}
	for k, v := range s.Selections {
		out.Selections[k] = v.clone()
	}
	for k, v := range s.Open {
		if v {
			out.Open[k] = true
		}
	}
	return out
}
