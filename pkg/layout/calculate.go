package layout

import "slices"

const (
	defaultHeaderHeight = 1
	defaultPopupPct     = 60
)

// Calculate evaluates the tree rooted at root against area and st. It never
// fails: zero areas, empty child lists and stale selections degrade to fewer
// regions and, where structure forces it, a proposed StateUpdate. st is only
// read.
func Calculate(root Node, area Rect, st State) Calculation {
	calc := calculate(root, area, st)
	res := &calc.Result

	var post StateUpdate
	if !slices.Equal(res.Focusables, st.Focusables) {
		post.Focusables = res.Focusables
		if post.Focusables == nil {
			post.Focusables = []string{}
		}
	}

	focus := st.Focus
	if len(res.Focusables) > 0 && !slices.Contains(res.Focusables, focus) {
		focus = res.Focusables[0]
		post.Focus = &focus
		res.Focus = focus
	}

	container, ok := res.Owners[focus]
	if !ok {
		container = firstTabs(root)
	}
	if container != st.FocusContainer {
		post.FocusContainer = &container
	}

	calc.Update = Merge(calc.Update, &post)
	return calc
}

func calculate(n Node, area Rect, st State) Calculation {
	switch n := n.(type) {
	case Leaf:
		return calcLeaf(n, area, st)
	case Tabs:
		return calcTabs(n, area, st)
	case Split:
		return calcSplit(n, area, st)
	case Overlay:
		return calcOverlay(n, area, st)
	}
	return Calculation{Result: NewResult()}
}

func calcLeaf(n Leaf, area Rect, st State) Calculation {
	r := NewResult()
	if !r.register(n.ID, area, n.Border) {
		return Calculation{Result: r}
	}
	if n.Focusable {
		r.Focusables = []string{n.ID}
	}
	if st.Focus == n.ID {
		r.Focus = n.ID
	}
	return Calculation{Result: r}
}

func calcTabs(n Tabs, area Rect, st State) Calculation {
	r := NewResult()

	ids := make([]string, len(n.Children))
	labels := make([]TabLabel, len(n.Children))
	for i, c := range n.Children {
		ids[i] = IDOf(c.Node)
		labels[i] = TabLabel{ID: ids[i], Title: c.Title}
	}

	prev, known := st.Selections[n.ID]
	sel := reconcile(prev, known, ids)

	var update *StateUpdate
	if !known || sel.Selected != prev.Selected || !slices.Equal(sel.Tabs, prev.Tabs) {
		update = &StateUpdate{Selections: map[string]Selection{n.ID: sel}}
	}

	h := n.HeaderHeight
	if h <= 0 {
		h = defaultHeaderHeight
	}
	header, content := area.SplitTop(h)
	if r.register(n.ID, header, n.Border) {
		r.Tabs[n.ID] = TabState{Bar: header, Tabs: labels, Selected: sel.Selected}
	}

	if sel.Selected < 0 || n.Children[sel.Selected].Node == nil {
		return Calculation{Result: r, Update: update}
	}

	active := n.Children[sel.Selected].Node
	child := calculate(active, content, st)
	for id := range child.Result.Regions {
		if _, owned := child.Result.Owners[id]; !owned {
			child.Result.Owners[id] = n.ID
		}
	}
	r.merge(child.Result)
	if _, ok := r.Regions[ids[sel.Selected]]; ok {
		r.Visible[ids[sel.Selected]] = true
	}
	if len(child.Result.ZOrder) > 0 {
		r.ZOrder = slices.Clone(child.Result.ZOrder)
	}
	return Calculation{Result: r, Update: Merge(child.Update, update)}
}

// reconcile maps the previous selection onto the current tab ids. The
// selected tab is followed by id when it still exists, a missing selection
// defaults to the first tab, and a stale index is clamped.
func reconcile(prev Selection, known bool, ids []string) Selection {
	sel := Selection{
		Tabs:      slices.Clone(ids),
		Selected:  -1,
		Previous:  prev.Previous,
		ChangedAt: prev.ChangedAt,
	}
	if len(ids) == 0 {
		return sel
	}
	switch {
	case !known || prev.Selected < 0:
		sel.Selected = 0
	case slices.Index(ids, prev.Current()) >= 0 && prev.Current() != "":
		sel.Selected = slices.Index(ids, prev.Current())
	default:
		sel.Selected = clamp(prev.Selected, 0, len(ids)-1)
	}
	return sel
}

func calcSplit(n Split, area Rect, st State) Calculation {
	r := NewResult()
	inner := area
	if n.Border {
		inner = area.Inset(1)
	}
	r.register(n.ID, area, n.Border)

	total := inner.Height
	if n.Direction == Horizontal {
		total = inner.Width
	}
	sizes := make([]Size, len(n.Children))
	for i, c := range n.Children {
		sizes[i] = c.Size
	}
	lengths := partition(total, sizes, n.Gap)

	var update *StateUpdate
	offset := 0
	for i, c := range n.Children {
		var cell Rect
		if n.Direction == Horizontal {
			cell = Rect{X: inner.X + offset, Y: inner.Y, Width: lengths[i], Height: inner.Height}
		} else {
			cell = Rect{X: inner.X, Y: inner.Y + offset, Width: inner.Width, Height: lengths[i]}
		}
		offset += lengths[i] + max(n.Gap, 0)

		child := calculate(c.Node, cell, st)
		r.merge(child.Result)
		r.ZOrder = append(r.ZOrder, child.Result.ZOrder...)
		update = Merge(update, child.Update)
	}
	return Calculation{Result: r, Update: update}
}

// partition divides total cells among panes separated by gap. Fixed sizes are
// satisfied first in order, the remainder is shared by weight and any cells
// left by integer division go one at a time to weighted panes in order.
func partition(total int, sizes []Size, gap int) []int {
	out := make([]int, len(sizes))
	if len(sizes) == 0 {
		return out
	}
	avail := total - max(gap, 0)*(len(sizes)-1)
	if avail <= 0 {
		return out
	}

	var weighted []int
	wsum := 0
	for i, s := range sizes {
		if s.Fixed > 0 {
			out[i] = min(s.Fixed, avail)
			avail -= out[i]
			continue
		}
		weighted = append(weighted, i)
		wsum += weight(s)
	}
	if len(weighted) == 0 || avail == 0 {
		return out
	}

	rest := avail
	for _, i := range weighted {
		out[i] = avail * weight(sizes[i]) / wsum
		rest -= out[i]
	}
	for k := 0; rest > 0; k++ {
		out[weighted[k%len(weighted)]]++
		rest--
	}
	return out
}

func weight(s Size) int {
	if s.Weight <= 0 {
		return 1
	}
	return s.Weight
}

func calcOverlay(n Overlay, area Rect, st State) Calculation {
	base := calculate(n.Base, area, st)
	r := NewResult()
	r.merge(base.Result)
	r.ZOrder = slices.Clone(base.Result.ZOrder)
	update := base.Update

	if !st.Open[n.ID] || n.Popup == nil {
		return Calculation{Result: r, Update: update}
	}

	wp, hp := n.WidthPct, n.HeightPct
	if wp <= 0 {
		wp = defaultPopupPct
	}
	if hp <= 0 {
		hp = defaultPopupPct
	}
	frame := area.Centered(wp, hp)
	if !r.register(n.ID, frame, true) {
		return Calculation{Result: r, Update: update}
	}

	popup := calculate(n.Popup, frame.Inset(1), st)
	r.merge(popup.Result)
	r.ZOrder = append(r.ZOrder, n.ID)
	if len(popup.Result.ZOrder) > 0 {
		r.ZOrder = append(r.ZOrder, popup.Result.ZOrder...)
	} else {
		r.ZOrder = append(r.ZOrder, popup.Result.PaintOrder()...)
	}

	// The popup is modal: only its focusables take part in the focus ring.
	r.Focusables = slices.Clone(popup.Result.Focusables)
	r.Focus = popup.Result.Focus
	if r.Focus == "" {
		r.Focus = n.ID
	}
	return Calculation{Result: r, Update: Merge(update, popup.Update)}
}

// firstTabs returns the outermost tab container reachable without entering
// another tab container's children, or "".
func firstTabs(n Node) string {
	switch n := n.(type) {
	case Tabs:
		return n.ID
	case Split:
		for _, c := range n.Children {
			if id := firstTabs(c.Node); id != "" {
				return id
			}
		}
	case Overlay:
		return firstTabs(n.Base)
	}
	return ""
}
