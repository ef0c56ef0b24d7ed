// Package store persists campaigns and their note forests in a
// key-value repository, reading forests through a cache.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ammiranda/notetree/cache"
	"github.com/ammiranda/notetree/models"
	"github.com/ammiranda/notetree/repository"
	"github.com/ammiranda/notetree/tree"
	"github.com/ammiranda/notetree/workspace"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/sirupsen/logrus"
)

// Common errors
var (
	// ErrCampaignNotFound is returned when a campaign id is unknown
	ErrCampaignNotFound = errors.New("campaign not found")
	// ErrInvalidForest is returned when a stored or submitted forest fails schema validation
	ErrInvalidForest = errors.New("invalid note forest")
)

const (
	campaignPrefix = "campaign:"
	notesPrefix    = "notes:"
)

// campaignRecord is the stored campaign metadata; the forest lives under its own key
type campaignRecord struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// CampaignStore owns campaign records and their forests
type CampaignStore struct {
	repo   repository.Repository
	cache  cache.CacheProvider
	schema *jsonschema.Schema
	ids    *workspace.IDGenerator
	now    func() time.Time
	logger *logrus.Entry
}

// Option customizes a CampaignStore
type Option func(*CampaignStore)

// WithClock sets the clock used for ids and creation times
func WithClock(now func() time.Time) Option {
	return func(s *CampaignStore) {
		s.now = now
		s.ids = workspace.NewIDGenerator(now)
	}
}

// WithLogger sets the logger
func WithLogger(logger *logrus.Entry) Option {
	return func(s *CampaignStore) { s.logger = logger }
}

// New creates a store over an initialized repository. A nil cache disables caching.
func New(repo repository.Repository, c cache.CacheProvider, opts ...Option) (*CampaignStore, error) {
	schema, err := compileForestSchema()
	if err != nil {
		return nil, err
	}
	if c == nil {
		c = cache.NoopCache{}
	}
	s := &CampaignStore{
		repo:   repo,
		cache:  c,
		schema: schema,
		ids:    workspace.NewIDGenerator(time.Now),
		now:    time.Now,
		logger: logrus.NewEntry(logrus.StandardLogger()),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// CreateCampaign stores a new campaign with an empty forest
func (s *CampaignStore) CreateCampaign(ctx context.Context, req *models.CreateCampaignRequest) (*models.Campaign, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", repository.ErrInvalidInput, err)
	}

	record := campaignRecord{
		ID:          s.ids.Next(),
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		CreatedAt:   s.now().UTC(),
	}
	data, err := json.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("error encoding campaign: %w", err)
	}
	if err := s.repo.Set(ctx, campaignPrefix+record.ID, data); err != nil {
		return nil, fmt.Errorf("error storing campaign: %w", err)
	}
	if err := s.SaveNotes(ctx, record.ID, models.Forest{}); err != nil {
		return nil, err
	}

	s.logger.WithField("campaign", record.ID).Info("Campaign created")
	return record.campaign(models.Forest{}), nil
}

// ListCampaigns returns every campaign in creation order
func (s *CampaignStore) ListCampaigns(ctx context.Context) ([]models.CampaignSummary, error) {
	entries, err := s.repo.List(ctx, campaignPrefix)
	if err != nil {
		return nil, fmt.Errorf("error listing campaigns: %w", err)
	}

	summaries := make([]models.CampaignSummary, 0, len(entries))
	for _, entry := range entries {
		var record campaignRecord
		if err := json.Unmarshal(entry.Value, &record); err != nil {
			return nil, fmt.Errorf("error decoding campaign %s: %w", entry.Key, err)
		}
		forest, err := s.LoadNotes(ctx, record.ID)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, models.CampaignSummary{
			ID:          record.ID,
			Title:       record.Title,
			Description: record.Description,
			CreatedAt:   record.CreatedAt,
			NoteCount:   tree.Count(forest),
		})
	}
	return summaries, nil
}

// GetCampaign returns a campaign with its forest
func (s *CampaignStore) GetCampaign(ctx context.Context, id string) (*models.Campaign, error) {
	record, err := s.record(ctx, id)
	if err != nil {
		return nil, err
	}
	forest, err := s.LoadNotes(ctx, id)
	if err != nil {
		return nil, err
	}
	return record.campaign(forest), nil
}

// DeleteCampaign removes a campaign and its forest
func (s *CampaignStore) DeleteCampaign(ctx context.Context, id string) error {
	if _, err := s.record(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Remove(ctx, notesPrefix+id); err != nil {
		return fmt.Errorf("error removing notes: %w", err)
	}
	if err := s.repo.Remove(ctx, campaignPrefix+id); err != nil {
		return fmt.Errorf("error removing campaign: %w", err)
	}
	s.cache.InvalidateCache(id)

	s.logger.WithField("campaign", id).Info("Campaign deleted")
	return nil
}

// LoadNotes returns the forest of a campaign. A campaign without stored
// notes has an empty forest.
func (s *CampaignStore) LoadNotes(ctx context.Context, id string) (models.Forest, error) {
	if forest, ok := s.cache.GetForest(id); ok {
		return forest, nil
	}
	if _, err := s.record(ctx, id); err != nil {
		return nil, err
	}

	data, err := repository.GetOrDefault(ctx, s.repo, notesPrefix+id, []byte("[]"))
	if err != nil {
		return nil, fmt.Errorf("error loading notes: %w", err)
	}
	if err := s.validateForest(data); err != nil {
		return nil, fmt.Errorf("campaign %s: %w", id, err)
	}

	var forest models.Forest
	if err := json.Unmarshal(data, &forest); err != nil {
		return nil, fmt.Errorf("error decoding notes: %w", err)
	}
	s.cache.SetForest(id, forest)
	return forest, nil
}

// SaveNotes replaces the forest of a campaign
func (s *CampaignStore) SaveNotes(ctx context.Context, id string, forest models.Forest) error {
	data, err := json.Marshal(forest)
	if err != nil {
		return fmt.Errorf("error encoding notes: %w", err)
	}
	if err := s.validateForest(data); err != nil {
		return err
	}
	if err := s.repo.Set(ctx, notesPrefix+id, data); err != nil {
		s.cache.InvalidateCache(id)
		return fmt.Errorf("error storing notes: %w", err)
	}
	s.cache.SetForest(id, forest)
	return nil
}

// ImportNotes validates raw forest JSON and stores it for a campaign
func (s *CampaignStore) ImportNotes(ctx context.Context, id string, data []byte) (models.Forest, error) {
	if _, err := s.record(ctx, id); err != nil {
		return nil, err
	}
	if err := s.validateForest(data); err != nil {
		return nil, err
	}
	var forest models.Forest
	if err := json.Unmarshal(data, &forest); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidForest, err)
	}
	if err := s.SaveNotes(ctx, id, forest); err != nil {
		return nil, err
	}
	return forest, nil
}

func (s *CampaignStore) record(ctx context.Context, id string) (*campaignRecord, error) {
	entry, err := s.repo.Get(ctx, campaignPrefix+id)
	if errors.Is(err, repository.ErrKeyNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrCampaignNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("error loading campaign: %w", err)
	}
	var record campaignRecord
	if err := json.Unmarshal(entry.Value, &record); err != nil {
		return nil, fmt.Errorf("error decoding campaign: %w", err)
	}
	return &record, nil
}

func (r *campaignRecord) campaign(forest models.Forest) *models.Campaign {
	return &models.Campaign{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		CreatedAt:   r.CreatedAt,
		Data:        forest,
	}
}
