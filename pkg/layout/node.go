// Package layout is the layout composition engine: a closed tree of node
// variants evaluated by one recursive function into screen regions plus an
// optional deferred patch for the layout part of application state.
package layout

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyID     = errors.New("layout node has empty id")
	ErrDuplicateID = errors.New("duplicate layout id")
)

// Node is one element of the layout tree. The set of variants is closed:
// Leaf, Tabs, Split and Overlay.
type Node interface {
	nodeID() string
}

// Leaf occupies the area it is given.
type Leaf struct {
	ID        string
	Border    bool
	Focusable bool
}

// Tab is one child of a Tabs container.
type Tab struct {
	Title string
	Node  Node
}

// Tabs shows a header band with one label per child and evaluates only the
// selected child in the remaining area. The header region is registered
// under the container's own ID. Border flags the header for a separator
// rule.
type Tabs struct {
	ID           string
	HeaderHeight int // default 1
	Border       bool
	Children     []Tab
}

type Direction int

const (
	Vertical Direction = iota // children stacked top to bottom
	Horizontal
)

// Size is a pane's share of a split. Fixed cells are handed out first, the
// rest is divided by Weight (default 1).
type Size struct {
	Fixed  int
	Weight int
}

type Pane struct {
	Node Node
	Size Size
}

// Split partitions its area among all children.
type Split struct {
	ID        string
	Direction Direction
	Gap       int
	Border    bool
	Children  []Pane
}

// Overlay draws Popup above Base while State.Open[ID] is set. The popup is
// centered and sized as a percentage of the overlay's area.
type Overlay struct {
	ID        string
	Base      Node
	Popup     Node
	WidthPct  int
	HeightPct int
}

func (n Leaf) nodeID() string    { return n.ID }
func (n Tabs) nodeID() string    { return n.ID }
func (n Split) nodeID() string   { return n.ID }
func (n Overlay) nodeID() string { return n.ID }

// IDOf returns the identifier of n, or "" for a nil node.
func IDOf(n Node) string {
	if n == nil {
		return ""
	}
	return n.nodeID()
}

// Validate checks that every node in the tree, including inactive tabs and
// closed overlays, has a non-empty identifier that no other node uses.
func Validate(root Node) error {
	seen := make(map[string]bool)
	var walk func(n Node) error
	walk = func(n Node) error {
		if n == nil {
			return nil
		}
		id := n.nodeID()
		if id == "" {
			return fmt.Errorf("%w (%T)", ErrEmptyID, n)
		}
		if seen[id] {
			return fmt.Errorf("%w: %q", ErrDuplicateID, id)
		}
		seen[id] = true
		switch n := n.(type) {
		case Tabs:
			for _, c := range n.Children {
				if err := walk(c.Node); err != nil {
					return err
				}
			}
		case Split:
			for _, c := range n.Children {
				if err := walk(c.Node); err != nil {
					return err
				}
			}
		case Overlay:
			if err := walk(n.Base); err != nil {
				return err
			}
			return walk(n.Popup)
		}
		return nil
	}
	return walk(root)
}
