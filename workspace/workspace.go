package workspace

import (
	"errors"

	"github.com/ammiranda/notetree/models"
	"github.com/ammiranda/notetree/tree"

	"github.com/sirupsen/logrus"
)

// Default names for newly created nodes
const (
	DefaultNoteName   = "New Note"
	DefaultFolderName = "New Folder"
)

// SaveFunc receives the complete forest after every successful mutation
type SaveFunc func(models.Forest)

// Notifier shows warnings to the user
type Notifier interface {
	Warn(message string)
}

// NotifierFunc adapts a function to Notifier
type NotifierFunc func(message string)

// Warn calls f(message)
func (f NotifierFunc) Warn(message string) { f(message) }

// Options configures a Workspace
type Options struct {
	Save     SaveFunc
	Notifier Notifier
	IDs      *IDGenerator
	Logger   *logrus.Entry
}

// Workspace is the host of one campaign's note tree. It holds the
// authoritative forest plus the UI state around it (active note,
// selection, rename in progress, drag gesture) and routes every change
// through the tree package. A Workspace is not safe for concurrent use.
type Workspace struct {
	nodes     models.Forest
	activeID  string
	selection tree.Selection
	editingID string
	tempName  string
	drag      tree.Drag

	save     SaveFunc
	notifier Notifier
	ids      *IDGenerator
	logger   *logrus.Entry
}

// New creates a workspace around an initial forest
func New(initial models.Forest, opts Options) *Workspace {
	if initial == nil {
		initial = models.Forest{}
	}
	if opts.Save == nil {
		opts.Save = func(models.Forest) {}
	}
	if opts.Notifier == nil {
		opts.Notifier = NotifierFunc(func(string) {})
	}
	if opts.IDs == nil {
		opts.IDs = NewIDGenerator(nil)
	}
	if opts.Logger == nil {
		opts.Logger = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Workspace{
		nodes:     initial,
		selection: tree.NewSelection(),
		save:      opts.Save,
		notifier:  opts.Notifier,
		ids:       opts.IDs,
		logger:    opts.Logger,
	}
}

// Nodes returns the current forest
func (w *Workspace) Nodes() models.Forest {
	return w.nodes
}

// Active returns the active node, if it still exists
func (w *Workspace) Active() (models.Node, bool) {
	if w.activeID == "" {
		return nil, false
	}
	return tree.FindNode(w.activeID, w.nodes)
}

// Select makes id the active node. An empty id clears the selection.
func (w *Workspace) Select(id string) {
	w.activeID = id
}

// ToggleSelection adds or removes id from the delete selection
func (w *Workspace) ToggleSelection(id string) {
	w.selection.Toggle(id)
}

// Selection returns the selected ids in sorted order
func (w *Workspace) Selection() []string {
	return w.selection.IDs()
}

// Editing returns the id being renamed and its pending name
func (w *Workspace) Editing() (string, string) {
	return w.editingID, w.tempName
}

// Drag exposes the drag gesture state for rendering drop indicators
func (w *Workspace) Drag() *tree.Drag {
	return &w.drag
}

func (w *Workspace) commit(nodes models.Forest) {
	w.nodes = nodes
	w.save(nodes)
}

func (w *Workspace) reject(err error) error {
	var warning *tree.Warning
	if errors.As(err, &warning) {
		w.notifier.Warn(warning.Message)
	}
	return err
}

// NewNote appends an empty file and makes it active
func (w *Workspace) NewNote(parentID, name string) (models.Node, error) {
	if name == "" {
		name = DefaultNoteName
	}
	return w.create(parentID, tree.NewFile(w.ids.Next(), name))
}

// NewFolder appends an empty folder
func (w *Workspace) NewFolder(parentID, name string) (models.Node, error) {
	if name == "" {
		name = DefaultFolderName
	}
	return w.create(parentID, tree.NewFolder(w.ids.Next(), name))
}

// ErrParentNotFound is returned when creating under a missing or non-folder parent
var ErrParentNotFound = errors.New("parent folder not found")

func (w *Workspace) create(parentID string, node models.Node) (models.Node, error) {
	nodes, ok := tree.Create(w.nodes, parentID, node)
	if !ok {
		return nil, ErrParentNotFound
	}
	w.commit(nodes)
	if node.NodeType() == models.TypeFile {
		w.activeID = node.NodeID()
	}
	return node, nil
}

// StartEditing enters rename mode for id. Locked nodes are refused.
func (w *Workspace) StartEditing(id string) error {
	node, ok := tree.FindNode(id, w.nodes)
	if !ok {
		return nil
	}
	if err := tree.CanRename(node); err != nil {
		return w.reject(err)
	}
	w.editingID = id
	w.tempName = node.NodeName()
	return nil
}

// SetTempName updates the pending name while editing
func (w *Workspace) SetTempName(name string) {
	w.tempName = name
}

// CommitRename applies the pending name and leaves rename mode
func (w *Workspace) CommitRename() error {
	if w.editingID == "" {
		return nil
	}
	nodes, err := tree.Rename(w.nodes, w.editingID, w.tempName)
	if err != nil {
		w.editingID = ""
		return w.reject(err)
	}
	w.editingID = ""
	w.commit(nodes)
	return nil
}

// CancelEditing leaves rename mode without changing the name
func (w *Workspace) CancelEditing() {
	w.editingID = ""
	w.tempName = ""
}

// Rename is StartEditing, SetTempName and CommitRename in one call
func (w *Workspace) Rename(id, name string) error {
	if err := w.StartEditing(id); err != nil {
		return err
	}
	if w.editingID != id {
		return nil
	}
	w.SetTempName(name)
	return w.CommitRename()
}

// ToggleLock flips the lock on id. Unknown ids are ignored.
func (w *Workspace) ToggleLock(id string) {
	if _, ok := tree.FindNode(id, w.nodes); !ok {
		return
	}
	w.commit(tree.ToggleLock(w.nodes, id))
}

// ToggleOpen expands or collapses the folder id. Files and unknown ids are ignored.
func (w *Workspace) ToggleOpen(id string) {
	node, ok := tree.FindNode(id, w.nodes)
	if !ok || node.NodeType() != models.TypeFolder {
		return
	}
	w.commit(tree.ToggleOpen(w.nodes, id))
}

// UpdateContent replaces the content of file id. Locked files are refused.
func (w *Workspace) UpdateContent(id, content string) error {
	if _, ok := tree.FindNode(id, w.nodes); !ok {
		return nil
	}
	nodes, err := tree.SetContent(w.nodes, id, content)
	if err != nil {
		return w.reject(err)
	}
	w.commit(nodes)
	return nil
}

// DeleteSelected removes every selected node. On success the selection
// and the active note are cleared.
func (w *Workspace) DeleteSelected() error {
	nodes, err := tree.DeleteSelected(w.nodes, w.selection)
	if err != nil {
		return w.reject(err)
	}
	w.selection = tree.NewSelection()
	w.activeID = ""
	w.commit(nodes)
	return nil
}

// Delete selects exactly ids and deletes them
func (w *Workspace) Delete(ids ...string) error {
	w.selection = tree.NewSelection(ids...)
	return w.DeleteSelected()
}

// DragStart begins dragging id. It reports false when the node is being renamed or missing.
func (w *Workspace) DragStart(id string) bool {
	node, ok := tree.FindNode(id, w.nodes)
	if !ok {
		return false
	}
	return w.drag.Start(node, w.editingID)
}

// DragOver updates the drop indicator for the hovered node
func (w *Workspace) DragOver(targetID string, offsetY, height float64) {
	target, _ := tree.FindNode(targetID, w.nodes)
	w.drag.Over(target, offsetY, height)
}

// DragOverRoot targets the top level of the tree
func (w *Workspace) DragOverRoot() {
	w.drag.OverRoot()
}

// Drop commits the current drag gesture
func (w *Workspace) Drop() error {
	return w.finishMove(w.drag.Drop(w.nodes))
}

// Move commits a drop in one call
func (w *Workspace) Move(sourceID, targetID string, pos tree.Position) error {
	return w.finishMove(tree.Move(w.nodes, sourceID, targetID, pos))
}

func (w *Workspace) finishMove(nodes models.Forest, moved bool, err error) error {
	if err != nil {
		var warning *tree.Warning
		if !errors.As(err, &warning) {
			w.logger.WithError(err).Debug("drop abandoned")
		}
		return w.reject(err)
	}
	if moved {
		w.commit(nodes)
	}
	return nil
}

// Escape closes rename mode if open, otherwise clears the active note
func (w *Workspace) Escape() {
	if w.editingID != "" {
		w.CancelEditing()
		return
	}
	w.activeID = ""
}
