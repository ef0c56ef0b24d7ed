package tree

import (
	"fmt"

	"github.com/ammiranda/notetree/models"
)

// Position is where a dragged node lands relative to its drop target
type Position int

const (
	None Position = iota
	Before
	After
	Inside
)

// RootID is the synthetic drop target meaning "append to the top level"
const RootID = "ROOT"

// Drop zone thresholds, as fractions of the hovered element's height
const (
	folderBeforeBelow = 0.25
	folderAfterAbove  = 0.75
	fileSplit         = 0.5
)

func (p Position) String() string {
	switch p {
	case Before:
		return "before"
	case After:
		return "after"
	case Inside:
		return "inside"
	default:
		return ""
	}
}

// ParsePosition converts "before", "after" or "inside" into a Position
func ParsePosition(s string) (Position, error) {
	switch s {
	case "before":
		return Before, nil
	case "after":
		return After, nil
	case "inside":
		return Inside, nil
	default:
		return None, fmt.Errorf("invalid drop position %q", s)
	}
}

// PositionFor infers the drop position from the pointer's vertical offset
// within the target's bounding box. Folders accept Inside for the middle
// half; files split evenly between Before and After.
func PositionFor(target models.Node, offsetY, height float64) Position {
	f := 0.0
	if height > 0 {
		f = offsetY / height
	}
	if f < 0 {
		f = 0
	} else if f > 1 {
		f = 1
	}

	if target.NodeType() == models.TypeFolder {
		switch {
		case f < folderBeforeBelow:
			return Before
		case f > folderAfterAbove:
			return After
		default:
			return Inside
		}
	}
	if f < fileSplit {
		return Before
	}
	return After
}
