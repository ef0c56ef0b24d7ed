package tree

import (
	"errors"

	"github.com/ammiranda/notetree/models"
)

// Diagnostics for drops that were abandoned without changing the forest.
// They are not user warnings.
var (
	ErrSourceNotFound  = errors.New("drag source not found")
	ErrTargetNotFound  = errors.New("drop target not found")
	ErrInvalidPosition = errors.New("drop target cannot take this position")
)

// DragState is the state of a Drag
type DragState int

const (
	Idle DragState = iota
	Dragging
)

func (s DragState) String() string {
	if s == Dragging {
		return "dragging"
	}
	return "idle"
}

// Drag is the scratch state of one drag-and-drop gesture. The zero value is idle.
// It is owned by the host; nothing here touches the forest until Drop.
type Drag struct {
	sourceID string
	targetID string
	position Position
}

// State reports whether a drag is in progress
func (d *Drag) State() DragState {
	if d.sourceID == "" {
		return Idle
	}
	return Dragging
}

// Source returns the id of the node being dragged
func (d *Drag) Source() string {
	return d.sourceID
}

// Indicator returns the current drop target and position
func (d *Drag) Indicator() (string, Position) {
	return d.targetID, d.position
}

// Start begins dragging node. A node that is being renamed cannot be dragged.
func (d *Drag) Start(node models.Node, editingID string) bool {
	if node == nil || (editingID != "" && node.NodeID() == editingID) {
		return false
	}
	d.sourceID = node.NodeID()
	d.targetID = ""
	d.position = None
	return true
}

// Over records the hovered node and the position inferred from the pointer
// offset. Hovering the dragged node itself clears the indicator.
func (d *Drag) Over(target models.Node, offsetY, height float64) {
	if d.sourceID == "" || target == nil || target.NodeID() == d.sourceID {
		d.targetID, d.position = "", None
		return
	}
	d.targetID = target.NodeID()
	d.position = PositionFor(target, offsetY, height)
}

// OverRoot targets the empty space around the tree: append to the top level
func (d *Drag) OverRoot() {
	if d.sourceID == "" {
		return
	}
	d.targetID = RootID
	d.position = Inside
}

// Reset returns to idle
func (d *Drag) Reset() {
	*d = Drag{}
}

// Drop commits the gesture against forest and returns to idle.
// See Move for the result contract.
func (d *Drag) Drop(forest models.Forest) (models.Forest, bool, error) {
	defer d.Reset()
	return Move(forest, d.sourceID, d.targetID, d.position)
}

// Move relocates the subtree rooted at sourceID to pos relative to targetID.
//
// moved is true only when the returned forest differs from the input. A
// cycle-forming move returns a *Warning wrapping ErrCycle. Missing
// arguments and self-drops are silent no-ops. A vanished source or target
// returns one of the diagnostic errors with the forest unchanged; the
// remove and insert steps are never observable separately.
func Move(forest models.Forest, sourceID, targetID string, pos Position) (out models.Forest, moved bool, err error) {
	if sourceID == "" || targetID == "" || pos == None {
		return forest, false, nil
	}
	if sourceID == targetID {
		return forest, false, nil
	}
	if targetID != RootID && IsDescendant(sourceID, targetID, forest) {
		return forest, false, warn(ErrCycle, MsgCycle)
	}

	pruned, node, ok := RemoveNode(forest, sourceID)
	if !ok {
		return forest, false, ErrSourceNotFound
	}

	if targetID == RootID {
		return appendNode(pruned, node), true, nil
	}

	target, ok := FindNode(targetID, pruned)
	if !ok {
		return forest, false, ErrTargetNotFound
	}
	if pos == Inside && target.NodeType() != models.TypeFolder {
		return forest, false, ErrInvalidPosition
	}
	result, ok := InsertNode(pruned, targetID, pos, node)
	if !ok {
		return forest, false, ErrTargetNotFound
	}
	return result, true, nil
}
