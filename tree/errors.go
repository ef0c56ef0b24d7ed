package tree

import "errors"

// Common warnings. Operations that return one of these leave the forest unchanged.
var (
	// ErrCycle is returned when a move would make a node its own ancestor
	ErrCycle = errors.New("cannot move a folder into itself")
	// ErrLocked is returned when renaming or editing a locked node
	ErrLocked = errors.New("node is locked")
	// ErrLockedSelection is returned when a delete batch contains a locked node
	ErrLockedSelection = errors.New("selection contains locked items")
	// ErrEmptySelection is returned when deleting with nothing selected
	ErrEmptySelection = errors.New("nothing selected")
)

// Warning carries a user-facing message for a rejected operation
type Warning struct {
	Err     error
	Message string
}

func (w *Warning) Error() string {
	return w.Message
}

func (w *Warning) Unwrap() error {
	return w.Err
}

// ErrNotAFile is returned when content is written to a folder
var ErrNotAFile = errors.New("node is not a file")

func warn(err error, msg string) *Warning {
	return &Warning{Err: err, Message: msg}
}

// Messages shown to the user
const (
	MsgCycle          = "Cannot move a folder into itself."
	MsgRenameLocked   = "Unlock the item to rename it."
	MsgEditLocked     = "Unlock the note to edit it."
	MsgEmptySelection = "Select items with the checkboxes to delete them."
	MsgLockedDelete   = "Cannot delete: the selection contains locked items."
)
