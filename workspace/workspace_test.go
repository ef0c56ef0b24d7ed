package workspace

import (
	"testing"
	"time"

	"github.com/ammiranda/notetree/models"
	"github.com/ammiranda/notetree/tree"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	saves    []models.Forest
	warnings []string
}

func (r *recorder) Warn(message string) {
	r.warnings = append(r.warnings, message)
}

func (r *recorder) save(f models.Forest) {
	r.saves = append(r.saves, f)
}

func fixedClock() func() time.Time {
	t := time.UnixMilli(1700000000000)
	return func() time.Time { return t }
}

func newTestWorkspace(initial models.Forest) (*Workspace, *recorder) {
	rec := &recorder{}
	ws := New(initial, Options{
		Save:     rec.save,
		Notifier: rec,
		IDs:      NewIDGenerator(fixedClock()),
	})
	return ws, rec
}

func sample() models.Forest {
	return models.Forest{
		&models.Folder{ID: "F", Name: "Sessions", Children: []models.Node{
			&models.File{ID: "x", Name: "Session 1"},
		}},
		&models.File{ID: "y", Name: "Loot"},
		&models.File{ID: "z", Name: "Rules", IsLocked: true},
	}
}

func TestIDGeneratorIsStrictlyIncreasing(t *testing.T) {
	g := NewIDGenerator(fixedClock())
	assert.Equal(t, "1700000000000", g.Next())
	assert.Equal(t, "1700000000001", g.Next())
	assert.Equal(t, "1700000000002", g.Next())
}

func TestNewNoteBecomesActive(t *testing.T) {
	ws, rec := newTestWorkspace(sample())

	node, err := ws.NewNote("", "")
	require.NoError(t, err)
	assert.Equal(t, DefaultNoteName, node.NodeName())
	assert.Equal(t, "1700000000000", node.NodeID())

	active, ok := ws.Active()
	require.True(t, ok)
	assert.Equal(t, node.NodeID(), active.NodeID())
	assert.Len(t, rec.saves, 1)
	assert.Equal(t, []string{"F", "x", "y", "z", node.NodeID()}, tree.IDs(rec.saves[0]))
}

func TestNewFolderInsideParent(t *testing.T) {
	ws, rec := newTestWorkspace(sample())

	node, err := ws.NewFolder("F", "Arcs")
	require.NoError(t, err)
	f, _ := tree.FindNode("F", ws.Nodes())
	assert.True(t, f.(*models.Folder).IsOpen)
	assert.Equal(t, node.NodeID(), f.(*models.Folder).Children[1].NodeID())
	_, ok := ws.Active()
	assert.False(t, ok, "folders do not become active")

	_, err = ws.NewFolder("y", "")
	assert.ErrorIs(t, err, ErrParentNotFound)
	assert.Len(t, rec.saves, 1)
}

func TestRenameFlow(t *testing.T) {
	ws, rec := newTestWorkspace(sample())

	require.NoError(t, ws.StartEditing("y"))
	id, name := ws.Editing()
	assert.Equal(t, "y", id)
	assert.Equal(t, "Loot", name)

	ws.SetTempName("Treasure")
	require.NoError(t, ws.CommitRename())
	node, _ := tree.FindNode("y", ws.Nodes())
	assert.Equal(t, "Treasure", node.NodeName())
	id, _ = ws.Editing()
	assert.Empty(t, id)
	assert.Len(t, rec.saves, 1)
}

func TestRenameLockedWarns(t *testing.T) {
	ws, rec := newTestWorkspace(sample())

	err := ws.Rename("z", "Other")
	assert.ErrorIs(t, err, tree.ErrLocked)
	assert.Equal(t, []string{tree.MsgRenameLocked}, rec.warnings)
	assert.Empty(t, rec.saves)
	node, _ := tree.FindNode("z", ws.Nodes())
	assert.Equal(t, "Rules", node.NodeName())
}

func TestEscapePrecedence(t *testing.T) {
	ws, _ := newTestWorkspace(sample())
	ws.Select("y")
	require.NoError(t, ws.StartEditing("x"))

	ws.Escape()
	id, _ := ws.Editing()
	assert.Empty(t, id)
	_, ok := ws.Active()
	assert.True(t, ok, "first escape only closes rename mode")

	ws.Escape()
	_, ok = ws.Active()
	assert.False(t, ok)
}

func TestUpdateContent(t *testing.T) {
	ws, rec := newTestWorkspace(sample())

	require.NoError(t, ws.UpdateContent("y", "<p>200 gp</p>"))
	node, _ := tree.FindNode("y", ws.Nodes())
	assert.Equal(t, "<p>200 gp</p>", node.(*models.File).Content)

	err := ws.UpdateContent("z", "nope")
	assert.ErrorIs(t, err, tree.ErrLocked)
	assert.Equal(t, []string{tree.MsgEditLocked}, rec.warnings)
	assert.Len(t, rec.saves, 1)

	err = ws.UpdateContent("F", "folders have no content")
	assert.ErrorIs(t, err, tree.ErrNotAFile)
	assert.Len(t, rec.warnings, 1, "not a user warning")
	assert.Len(t, rec.saves, 1)
}

func TestTogglesSaveEveryTime(t *testing.T) {
	ws, rec := newTestWorkspace(sample())
	original := ws.Nodes()

	ws.ToggleOpen("F")
	ws.ToggleOpen("F")
	ws.ToggleLock("y")
	ws.ToggleLock("y")

	assert.Len(t, rec.saves, 4)
	assert.Equal(t, original, ws.Nodes())
}

func TestTogglesIgnoreUnknownIDs(t *testing.T) {
	ws, rec := newTestWorkspace(sample())

	ws.ToggleLock("missing")
	ws.ToggleOpen("missing")
	ws.ToggleOpen("y")
	require.NoError(t, ws.UpdateContent("missing", "nope"))

	assert.Empty(t, rec.saves)
	assert.Empty(t, rec.warnings)
}

func TestDeleteSelectedScenarioE(t *testing.T) {
	ws, rec := newTestWorkspace(models.Forest{
		&models.File{ID: "a", Name: "a"},
		&models.File{ID: "b", Name: "b"},
		&models.File{ID: "c", Name: "c"},
	})
	ws.Select("a")
	ws.ToggleSelection("a")
	ws.ToggleSelection("b")

	require.NoError(t, ws.DeleteSelected())
	assert.Equal(t, []string{"c"}, tree.IDs(ws.Nodes()))
	assert.Empty(t, ws.Selection())
	_, ok := ws.Active()
	assert.False(t, ok)
	assert.Len(t, rec.saves, 1)
}

func TestDeleteWarnings(t *testing.T) {
	ws, rec := newTestWorkspace(sample())

	err := ws.DeleteSelected()
	assert.ErrorIs(t, err, tree.ErrEmptySelection)

	ws.ToggleSelection("y")
	ws.ToggleSelection("z")
	err = ws.DeleteSelected()
	assert.ErrorIs(t, err, tree.ErrLockedSelection)
	assert.Equal(t, []string{"y", "z"}, ws.Selection(), "selection survives a refused delete")

	assert.Equal(t, []string{tree.MsgEmptySelection, tree.MsgLockedDelete}, rec.warnings)
	assert.Empty(t, rec.saves)
	assert.Equal(t, sample(), ws.Nodes())
}

func TestDragAndDrop(t *testing.T) {
	ws, rec := newTestWorkspace(sample())

	require.True(t, ws.DragStart("y"))
	ws.DragOver("F", 50, 100)
	target, pos := ws.Drag().Indicator()
	assert.Equal(t, "F", target)
	assert.Equal(t, tree.Inside, pos)

	require.NoError(t, ws.Drop())
	assert.Equal(t, []string{"F", "x", "y", "z"}, tree.IDs(ws.Nodes()))
	f, _ := tree.FindNode("F", ws.Nodes())
	assert.True(t, f.(*models.Folder).IsOpen)
	assert.Equal(t, tree.Idle, ws.Drag().State())
	assert.Len(t, rec.saves, 1)
}

func TestDragBlockedWhileRenaming(t *testing.T) {
	ws, _ := newTestWorkspace(sample())
	require.NoError(t, ws.StartEditing("y"))
	assert.False(t, ws.DragStart("y"))
	assert.True(t, ws.DragStart("x"))
}

func TestDropCycleWarns(t *testing.T) {
	ws, rec := newTestWorkspace(sample())

	require.True(t, ws.DragStart("F"))
	ws.DragOver("x", 10, 100)
	err := ws.Drop()
	assert.ErrorIs(t, err, tree.ErrCycle)
	assert.Equal(t, []string{tree.MsgCycle}, rec.warnings)
	assert.Empty(t, rec.saves)
	assert.Equal(t, tree.Idle, ws.Drag().State())
}

func TestDropOnRoot(t *testing.T) {
	ws, rec := newTestWorkspace(sample())

	require.True(t, ws.DragStart("x"))
	ws.DragOverRoot()
	require.NoError(t, ws.Drop())
	assert.Equal(t, []string{"F", "y", "z", "x"}, tree.IDs(ws.Nodes()))
	assert.Len(t, rec.saves, 1)
}

func TestSilentDropDoesNotSave(t *testing.T) {
	ws, rec := newTestWorkspace(sample())

	require.True(t, ws.DragStart("y"))
	require.NoError(t, ws.Drop())
	assert.NoError(t, ws.Move("y", "y", tree.After))
	assert.Empty(t, rec.saves)
	assert.Empty(t, rec.warnings)
}

func TestMoveMissingTargetIsDiagnosedNotWarned(t *testing.T) {
	ws, rec := newTestWorkspace(sample())

	err := ws.Move("y", "gone", tree.After)
	assert.ErrorIs(t, err, tree.ErrTargetNotFound)
	assert.Empty(t, rec.warnings)
	assert.Empty(t, rec.saves)
	assert.Equal(t, sample(), ws.Nodes())
}
