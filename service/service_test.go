package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ammiranda/notetree/cache"
	"github.com/ammiranda/notetree/models"
	"github.com/ammiranda/notetree/repository"
	"github.com/ammiranda/notetree/store"
	"github.com/ammiranda/notetree/tree"
	"github.com/ammiranda/notetree/workspace"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	svc      *NotesService
	store    *store.CampaignStore
	repo     *repository.MockRepository
	campaign string
}

func newFixture(t *testing.T, forest models.Forest) *fixture {
	t.Helper()
	ctx := context.Background()
	repo := repository.NewMockRepository()
	st, err := store.New(repo, cache.NewMemoryCache())
	require.NoError(t, err)

	campaign, err := st.CreateCampaign(ctx, &models.CreateCampaignRequest{Title: "Strahd"})
	require.NoError(t, err)
	require.NoError(t, st.SaveNotes(ctx, campaign.ID, forest))

	return &fixture{svc: New(st, nil), store: st, repo: repo, campaign: campaign.ID}
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

func (f *fixture) stored(t *testing.T) models.Forest {
	t.Helper()
	forest, err := f.store.LoadNotes(context.Background(), f.campaign)
	require.NoError(t, err)
	return forest
}

func TestCreatePersists(t *testing.T) {
	f := newFixture(t, sample())
	ctx := context.Background()

	node, err := f.svc.Create(ctx, f.campaign, &models.CreateNoteRequest{Type: models.TypeFile, ParentID: "F"})
	require.NoError(t, err)
	assert.Equal(t, workspace.DefaultNoteName, node.NodeName())
	assert.Equal(t, []string{"F", "x", node.NodeID(), "y", "z"}, tree.IDs(f.stored(t)))

	folder, err := f.svc.Create(ctx, f.campaign, &models.CreateNoteRequest{Type: models.TypeFolder, Name: "NPCs"})
	require.NoError(t, err)
	assert.Equal(t, models.TypeFolder, folder.NodeType())

	_, err = f.svc.Create(ctx, f.campaign, &models.CreateNoteRequest{Type: models.TypeFile, ParentID: "y"})
	assert.ErrorIs(t, err, workspace.ErrParentNotFound)
}

func TestUnknownCampaignAndNote(t *testing.T) {
	f := newFixture(t, sample())
	ctx := context.Background()

	_, err := f.svc.Notes(ctx, "missing")
	assert.ErrorIs(t, err, store.ErrCampaignNotFound)

	_, err = f.svc.Rename(ctx, f.campaign, "missing", "x")
	assert.ErrorIs(t, err, ErrNoteNotFound)

	_, err = f.svc.Note(ctx, f.campaign, "missing")
	assert.ErrorIs(t, err, ErrNoteNotFound)
}

func TestRenameAndContent(t *testing.T) {
	f := newFixture(t, sample())
	ctx := context.Background()

	node, err := f.svc.Rename(ctx, f.campaign, "y", "Treasure")
	require.NoError(t, err)
	assert.Equal(t, "Treasure", node.NodeName())

	node, err = f.svc.UpdateContent(ctx, f.campaign, "y", "<p>gold</p>")
	require.NoError(t, err)
	assert.Equal(t, "<p>gold</p>", node.(*models.File).Content)

	_, err = f.svc.Rename(ctx, f.campaign, "z", "Nope")
	var warning *tree.Warning
	require.ErrorAs(t, err, &warning)
	assert.Equal(t, tree.MsgRenameLocked, warning.Message)

	_, err = f.svc.UpdateContent(ctx, f.campaign, "z", "nope")
	assert.ErrorIs(t, err, tree.ErrLocked)

	stored, _ := tree.FindNode("y", f.stored(t))
	assert.Equal(t, "Treasure", stored.NodeName())
}

func TestToggles(t *testing.T) {
	f := newFixture(t, sample())
	ctx := context.Background()

	node, err := f.svc.ToggleLock(ctx, f.campaign, "z")
	require.NoError(t, err)
	assert.False(t, node.Locked())

	node, err = f.svc.ToggleOpen(ctx, f.campaign, "F")
	require.NoError(t, err)
	assert.True(t, node.(*models.Folder).IsOpen)

	stored, _ := tree.FindNode("F", f.stored(t))
	assert.True(t, stored.(*models.Folder).IsOpen)
}

func TestDelete(t *testing.T) {
	f := newFixture(t, sample())
	ctx := context.Background()

	assert.ErrorIs(t, f.svc.Delete(ctx, f.campaign, nil), tree.ErrEmptySelection)
	assert.ErrorIs(t, f.svc.Delete(ctx, f.campaign, []string{"y", "z"}), tree.ErrLockedSelection)

	require.NoError(t, f.svc.Delete(ctx, f.campaign, []string{"F", "y"}))
	assert.Equal(t, []string{"z"}, tree.IDs(f.stored(t)))
}

func TestMove(t *testing.T) {
	f := newFixture(t, sample())
	ctx := context.Background()

	forest, err := f.svc.Move(ctx, f.campaign, &models.MoveNoteRequest{SourceID: "y", TargetID: "F", OffsetY: 50, Height: 100})
	require.NoError(t, err)
	assert.Equal(t, []string{"F", "x", "y", "z"}, tree.IDs(forest))

	forest, err = f.svc.Move(ctx, f.campaign, &models.MoveNoteRequest{SourceID: "x", TargetID: tree.RootID})
	require.NoError(t, err)
	assert.Equal(t, []string{"F", "y", "z", "x"}, tree.IDs(forest))

	forest, err = f.svc.Move(ctx, f.campaign, &models.MoveNoteRequest{SourceID: "z", TargetID: "F", Position: "before"})
	require.NoError(t, err)
	assert.Equal(t, []string{"z", "F", "y", "x"}, tree.IDs(forest))
	assert.Equal(t, tree.IDs(forest), tree.IDs(f.stored(t)))
}

func TestMoveRejections(t *testing.T) {
	f := newFixture(t, sample())
	ctx := context.Background()

	_, err := f.svc.Move(ctx, f.campaign, &models.MoveNoteRequest{SourceID: "F", TargetID: "x", Position: "after"})
	assert.ErrorIs(t, err, tree.ErrCycle)

	_, err = f.svc.Move(ctx, f.campaign, &models.MoveNoteRequest{SourceID: "y", TargetID: "z", Position: "inside"})
	assert.ErrorIs(t, err, tree.ErrInvalidPosition)

	_, err = f.svc.Move(ctx, f.campaign, &models.MoveNoteRequest{SourceID: "y", TargetID: "gone", Position: "after"})
	assert.ErrorIs(t, err, ErrNoteNotFound)

	_, err = f.svc.Move(ctx, f.campaign, &models.MoveNoteRequest{SourceID: "gone", TargetID: "y", Position: "after"})
	assert.ErrorIs(t, err, ErrNoteNotFound)

	assert.Equal(t, sample(), f.stored(t))
}

func TestSaveFailureKeepsInMemoryTree(t *testing.T) {
	f := newFixture(t, sample())
	ctx := context.Background()
	_, err := f.svc.Notes(ctx, f.campaign)
	require.NoError(t, err)

	f.repo.FailWith = errors.New("disk full")
	_, err = f.svc.Rename(ctx, f.campaign, "y", "Treasure")
	require.NoError(t, err, "persistence failures are logged, not returned")

	forest, err := f.svc.Notes(ctx, f.campaign)
	require.NoError(t, err)
	node, _ := tree.FindNode("y", forest)
	assert.Equal(t, "Treasure", node.NodeName())
}

func TestSearchAndCampaigns(t *testing.T) {
	f := newFixture(t, sample())
	ctx := context.Background()

	matches, err := f.svc.Search(ctx, f.campaign, "SESSION")
	require.NoError(t, err)
	require.Len(t, matches, 2)

	campaign, err := f.svc.GetCampaign(ctx, f.campaign)
	require.NoError(t, err)
	assert.Len(t, campaign.Data, 3)

	list, err := f.svc.ListCampaigns(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 4, list[0].NoteCount)

	require.NoError(t, f.svc.DeleteCampaign(ctx, f.campaign))
	_, err = f.svc.Notes(ctx, f.campaign)
	assert.ErrorIs(t, err, store.ErrCampaignNotFound)
}

func TestConcurrentCallsAreSerialized(t *testing.T) {
	f := newFixture(t, models.Forest{})
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.Create(ctx, f.campaign, &models.CreateNoteRequest{Type: models.TypeFile})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	forest, err := f.svc.Notes(ctx, f.campaign)
	require.NoError(t, err)
	assert.Len(t, forest, 20)
	assert.Len(t, f.stored(t), 20)
}

func TestImportReplacesWorkspace(t *testing.T) {
	f := newFixture(t, sample())
	ctx := context.Background()
	_, err := f.svc.Notes(ctx, f.campaign)
	require.NoError(t, err)

	_, err = f.svc.Import(ctx, f.campaign, []byte(`[{"id":"a","name":"A","type":"scroll"}]`))
	assert.ErrorIs(t, err, store.ErrInvalidForest)

	forest, err := f.svc.Import(ctx, f.campaign, []byte(`[{"id":"a","name":"A","type":"file","content":"hi"}]`))
	require.NoError(t, err)
	assert.Len(t, forest, 1)

	current, err := f.svc.Notes(ctx, f.campaign)
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, tree.IDs(current))
}

// gatedStore stalls the next SaveNotes, or every LoadNotes of loadID,
// until release is closed.
type gatedStore struct {
	*store.CampaignStore
	holdSave atomic.Bool
	loadID   string
	entered  chan struct{}
	release  chan struct{}
}

func newGatedStore(st *store.CampaignStore) *gatedStore {
	return &gatedStore{CampaignStore: st, entered: make(chan struct{}), release: make(chan struct{})}
}

func (g *gatedStore) SaveNotes(ctx context.Context, id string, forest models.Forest) error {
	if g.holdSave.CompareAndSwap(true, false) {
		close(g.entered)
		<-g.release
	}
	return g.CampaignStore.SaveNotes(ctx, id, forest)
}

func (g *gatedStore) LoadNotes(ctx context.Context, id string) (models.Forest, error) {
	if id == g.loadID {
		close(g.entered)
		<-g.release
	}
	return g.CampaignStore.LoadNotes(ctx, id)
}

// stalledRename starts a rename whose save blocks until gate.release is closed
func stalledRename(t *testing.T, svc *NotesService, gate *gatedStore, campaign string) chan error {
	t.Helper()
	_, err := svc.Notes(context.Background(), campaign)
	require.NoError(t, err)

	gate.holdSave.Store(true)
	done := make(chan error, 1)
	go func() {
		_, err := svc.Rename(context.Background(), campaign, "y", "Treasure")
		done <- err
	}()
	<-gate.entered
	return done
}

func assertPending(t *testing.T, ch chan error, msg string) {
	t.Helper()
	select {
	case err := <-ch:
		t.Fatalf("%s: finished early with %v", msg, err)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestImportWaitsForSaveInProgress(t *testing.T) {
	f := newFixture(t, sample())
	gate := newGatedStore(f.store)
	svc := New(gate, nil)
	renamed := stalledRename(t, svc, gate, f.campaign)

	imported := make(chan error, 1)
	go func() {
		_, err := svc.Import(context.Background(), f.campaign, []byte(`[{"id":"imp","name":"Imported","type":"file","content":""}]`))
		imported <- err
	}()
	assertPending(t, imported, "import")

	close(gate.release)
	require.NoError(t, <-renamed)
	require.NoError(t, <-imported)

	current, err := svc.Notes(context.Background(), f.campaign)
	require.NoError(t, err)
	assert.Equal(t, []string{"imp"}, tree.IDs(current))
	assert.Equal(t, []string{"imp"}, tree.IDs(f.stored(t)))
}

func TestDeleteCampaignWaitsForSaveInProgress(t *testing.T) {
	f := newFixture(t, sample())
	gate := newGatedStore(f.store)
	svc := New(gate, nil)
	renamed := stalledRename(t, svc, gate, f.campaign)

	deleted := make(chan error, 1)
	go func() { deleted <- svc.DeleteCampaign(context.Background(), f.campaign) }()
	assertPending(t, deleted, "delete")

	close(gate.release)
	require.NoError(t, <-renamed)
	require.NoError(t, <-deleted)

	_, err := f.repo.Get(context.Background(), "notes:"+f.campaign)
	assert.ErrorIs(t, err, repository.ErrKeyNotFound)
	_, err = svc.Notes(context.Background(), f.campaign)
	assert.ErrorIs(t, err, store.ErrCampaignNotFound)
}

func TestClosedSessionDoesNotSave(t *testing.T) {
	f := newFixture(t, sample())
	ctx := context.Background()
	_, err := f.svc.Notes(ctx, f.campaign)
	require.NoError(t, err)

	sess := f.svc.session(f.campaign)
	ws := sess.ws
	f.svc.Close()

	require.NoError(t, ws.Rename("y", "Treasure"))
	node, ok := tree.FindNode("y", f.stored(t))
	require.True(t, ok)
	assert.Equal(t, "Loot", node.NodeName())
}

func TestSlowLoadDoesNotBlockOtherCampaigns(t *testing.T) {
	f := newFixture(t, sample())
	ctx := context.Background()
	other, err := f.store.CreateCampaign(ctx, &models.CreateCampaignRequest{Title: "Barovia"})
	require.NoError(t, err)

	gate := newGatedStore(f.store)
	gate.loadID = f.campaign
	svc := New(gate, nil)

	slow := make(chan error, 1)
	go func() {
		_, err := svc.Notes(ctx, f.campaign)
		slow <- err
	}()
	<-gate.entered

	forest, err := svc.Notes(ctx, other.ID)
	require.NoError(t, err)
	assert.Empty(t, forest)
	assertPending(t, slow, "stalled load")

	close(gate.release)
	require.NoError(t, <-slow)
}
