package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ammiranda/notetree/cache"
	"github.com/ammiranda/notetree/models"
	"github.com/ammiranda/notetree/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock() func() time.Time {
	t := time.UnixMilli(1700000000000).UTC()
	return func() time.Time { return t }
}

func newTestStore(t *testing.T) (*CampaignStore, *repository.MockRepository, *cache.MockCache) {
	t.Helper()
	repo := repository.NewMockRepository()
	c := cache.NewMockCache()
	s, err := New(repo, c, WithClock(fixedClock()))
	require.NoError(t, err)
	return s, repo, c
}

func notes() models.Forest {
	return models.Forest{
		&models.Folder{ID: "F", Name: "Sessions", Children: []models.Node{
			&models.File{ID: "x", Name: "Session 1", Content: "<p>hi</p>"},
		}},
		&models.File{ID: "y", Name: "Loot"},
	}
}

func TestCreateAndGetCampaign(t *testing.T) {
	s, _, _ := newTestStore(t)
	ctx := context.Background()

	campaign, err := s.CreateCampaign(ctx, &models.CreateCampaignRequest{Title: "  Curse of Strahd ", Description: "Barovia"})
	require.NoError(t, err)
	assert.Equal(t, "1700000000000", campaign.ID)
	assert.Equal(t, "Curse of Strahd", campaign.Title)
	assert.Empty(t, campaign.Data)

	got, err := s.GetCampaign(ctx, campaign.ID)
	require.NoError(t, err)
	assert.Equal(t, campaign.Title, got.Title)
	assert.Equal(t, models.Forest{}, got.Data)
}

func TestCreateCampaignValidates(t *testing.T) {
	s, _, _ := newTestStore(t)
	_, err := s.CreateCampaign(context.Background(), &models.CreateCampaignRequest{})
	assert.ErrorIs(t, err, repository.ErrInvalidInput)
}

func TestListCampaignsCountsNotes(t *testing.T) {
	s, _, _ := newTestStore(t)
	ctx := context.Background()

	first, err := s.CreateCampaign(ctx, &models.CreateCampaignRequest{Title: "One"})
	require.NoError(t, err)
	second, err := s.CreateCampaign(ctx, &models.CreateCampaignRequest{Title: "Two"})
	require.NoError(t, err)
	require.NoError(t, s.SaveNotes(ctx, second.ID, notes()))

	list, err := s.ListCampaigns(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, first.ID, list[0].ID)
	assert.Equal(t, 0, list[0].NoteCount)
	assert.Equal(t, 3, list[1].NoteCount)
}

func TestLoadNotesUsesCache(t *testing.T) {
	s, repo, c := newTestStore(t)
	ctx := context.Background()

	campaign, err := s.CreateCampaign(ctx, &models.CreateCampaignRequest{Title: "One"})
	require.NoError(t, err)
	require.NoError(t, s.SaveNotes(ctx, campaign.ID, notes()))

	c.Reset()
	forest, err := s.LoadNotes(ctx, campaign.ID)
	require.NoError(t, err)
	assert.Equal(t, notes(), forest)
	_, set, _, _, _ := c.GetCallCounts()
	assert.Equal(t, 1, set, "a miss fills the cache")

	// A second load is served from cache even if the repository changes underneath
	require.NoError(t, repo.Set(ctx, notesPrefix+campaign.ID, []byte("[]")))
	forest, err = s.LoadNotes(ctx, campaign.ID)
	require.NoError(t, err)
	assert.Len(t, forest, 2)
}

func TestLoadNotesDefaultsToEmpty(t *testing.T) {
	s, repo, _ := newTestStore(t)
	ctx := context.Background()

	campaign, err := s.CreateCampaign(ctx, &models.CreateCampaignRequest{Title: "One"})
	require.NoError(t, err)
	require.NoError(t, repo.Remove(ctx, notesPrefix+campaign.ID))
	s.cache.InvalidateCache(campaign.ID)

	forest, err := s.LoadNotes(ctx, campaign.ID)
	require.NoError(t, err)
	assert.Empty(t, forest)
}

func TestUnknownCampaign(t *testing.T) {
	s, _, _ := newTestStore(t)
	ctx := context.Background()

	_, err := s.GetCampaign(ctx, "nope")
	assert.ErrorIs(t, err, ErrCampaignNotFound)
	_, err = s.LoadNotes(ctx, "nope")
	assert.ErrorIs(t, err, ErrCampaignNotFound)
	assert.ErrorIs(t, s.DeleteCampaign(ctx, "nope"), ErrCampaignNotFound)
}

func TestDeleteCampaign(t *testing.T) {
	s, repo, c := newTestStore(t)
	ctx := context.Background()

	campaign, err := s.CreateCampaign(ctx, &models.CreateCampaignRequest{Title: "One"})
	require.NoError(t, err)
	require.NoError(t, s.DeleteCampaign(ctx, campaign.ID))

	entries, err := repo.List(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, entries)
	_, ok := c.GetForest(campaign.ID)
	assert.False(t, ok)
}

func TestStoredForestIsSchemaChecked(t *testing.T) {
	s, repo, _ := newTestStore(t)
	ctx := context.Background()

	campaign, err := s.CreateCampaign(ctx, &models.CreateCampaignRequest{Title: "One"})
	require.NoError(t, err)
	s.cache.InvalidateCache(campaign.ID)

	bad := `[{"id":"a","name":"A","type":"file","children":[]}]`
	require.NoError(t, repo.Set(ctx, notesPrefix+campaign.ID, []byte(bad)))
	_, err = s.LoadNotes(ctx, campaign.ID)
	assert.ErrorIs(t, err, ErrInvalidForest)

	_, err = s.ImportNotes(ctx, campaign.ID, []byte(`[{"id":"a","name":"A","type":"scroll"}]`))
	assert.ErrorIs(t, err, ErrInvalidForest)

	forest, err := s.ImportNotes(ctx, campaign.ID, []byte(`[{"id":"F","name":"Arc","type":"folder","children":[{"id":"a","name":"A","type":"file"}]}]`))
	require.NoError(t, err)
	assert.Len(t, forest, 1)
}

func TestSaveNotesFailureInvalidatesCache(t *testing.T) {
	s, repo, c := newTestStore(t)
	ctx := context.Background()

	campaign, err := s.CreateCampaign(ctx, &models.CreateCampaignRequest{Title: "One"})
	require.NoError(t, err)

	repo.FailWith = errors.New("disk full")
	err = s.SaveNotes(ctx, campaign.ID, notes())
	assert.ErrorContains(t, err, "disk full")
	_, ok := c.GetForest(campaign.ID)
	assert.False(t, ok)
}
