// Package service hosts one workspace per open campaign and persists
// every change through the campaign store.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ammiranda/notetree/models"
	"github.com/ammiranda/notetree/tree"
	"github.com/ammiranda/notetree/workspace"

	"github.com/sirupsen/logrus"
)

// ErrNoteNotFound is returned when a note id does not exist in the campaign
var ErrNoteNotFound = errors.New("note not found")

// Store is the persistence the service needs
type Store interface {
	CreateCampaign(ctx context.Context, req *models.CreateCampaignRequest) (*models.Campaign, error)
	ListCampaigns(ctx context.Context) ([]models.CampaignSummary, error)
	GetCampaign(ctx context.Context, id string) (*models.Campaign, error)
	DeleteCampaign(ctx context.Context, id string) error
	LoadNotes(ctx context.Context, id string) (models.Forest, error)
	SaveNotes(ctx context.Context, id string, forest models.Forest) error
	ImportNotes(ctx context.Context, id string, data []byte) (models.Forest, error)
}

// session is one open campaign. Its mutex serializes every call on the
// workspace, including the load, import and delete of the campaign.
type session struct {
	mu     sync.Mutex
	ws     *workspace.Workspace
	closed bool
}

// NotesService routes note operations to per-campaign workspaces
type NotesService struct {
	store       Store
	logger      *logrus.Entry
	saveTimeout time.Duration

	mu       sync.Mutex
	sessions map[string]*session
}

// New creates a notes service over store
func New(store Store, logger *logrus.Entry) *NotesService {
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}
	return &NotesService{
		store:       store,
		logger:      logger,
		saveTimeout: 10 * time.Second,
		sessions:    make(map[string]*session),
	}
}

// CreateCampaign creates a campaign with an empty forest
func (s *NotesService) CreateCampaign(ctx context.Context, req *models.CreateCampaignRequest) (*models.Campaign, error) {
	return s.store.CreateCampaign(ctx, req)
}

// ListCampaigns lists every campaign
func (s *NotesService) ListCampaigns(ctx context.Context) ([]models.CampaignSummary, error) {
	return s.store.ListCampaigns(ctx)
}

// GetCampaign returns a campaign with its current forest
func (s *NotesService) GetCampaign(ctx context.Context, id string) (*models.Campaign, error) {
	campaign, err := s.store.GetCampaign(ctx, id)
	if err != nil {
		return nil, err
	}
	var forest models.Forest
	if err := s.with(ctx, id, func(ws *workspace.Workspace) error {
		forest = ws.Nodes()
		return nil
	}); err != nil {
		return nil, err
	}
	campaign.Data = forest
	return campaign, nil
}

// DeleteCampaign deletes a campaign and closes its workspace. It waits
// for any call in progress on the campaign, including its save.
func (s *NotesService) DeleteCampaign(ctx context.Context, id string) error {
	sess := s.acquire(id)
	defer sess.mu.Unlock()
	defer s.forget(id, sess)
	return s.store.DeleteCampaign(ctx, id)
}

// session returns the session for campaignID, registering an empty one
// on first use. No I/O happens under s.mu.
func (s *NotesService) session(campaignID string) *session {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[campaignID]
	if !ok {
		sess = &session{}
		s.sessions[campaignID] = sess
	}
	return sess
}

// acquire returns the locked, live session for campaignID. The caller unlocks it.
func (s *NotesService) acquire(campaignID string) *session {
	for {
		sess := s.session(campaignID)
		sess.mu.Lock()
		if !sess.closed {
			return sess
		}
		sess.mu.Unlock()
	}
}

// forget closes sess and unregisters it. sess.mu must be held.
func (s *NotesService) forget(campaignID string, sess *session) {
	sess.closed = true
	sess.ws = nil

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sessions[campaignID] == sess {
		delete(s.sessions, campaignID)
	}
}

func (s *NotesService) newWorkspace(campaignID string, sess *session, forest models.Forest) *workspace.Workspace {
	logger := s.logger.WithField("campaign", campaignID)
	return workspace.New(forest, workspace.Options{
		Save: func(nodes models.Forest) {
			if sess.closed {
				return
			}
			s.save(campaignID, nodes)
		},
		Notifier: workspace.NotifierFunc(func(message string) {
			logger.WithField("op", "warn").Info(message)
		}),
		Logger: logger,
	})
}

// save persists without blocking the caller on failure; the in-memory tree stays authoritative
func (s *NotesService) save(campaignID string, nodes models.Forest) {
	ctx, cancel := context.WithTimeout(context.Background(), s.saveTimeout)
	defer cancel()
	if err := s.store.SaveNotes(ctx, campaignID, nodes); err != nil {
		s.logger.WithError(err).WithField("campaign", campaignID).Error("Error saving notes")
	}
}

// with runs fn on the campaign's workspace, loading the forest on first use
func (s *NotesService) with(ctx context.Context, campaignID string, fn func(*workspace.Workspace) error) error {
	sess := s.acquire(campaignID)
	defer sess.mu.Unlock()

	if sess.ws == nil {
		forest, err := s.store.LoadNotes(ctx, campaignID)
		if err != nil {
			s.forget(campaignID, sess)
			return err
		}
		sess.ws = s.newWorkspace(campaignID, sess, forest)
	}
	return fn(sess.ws)
}

func requireNode(ws *workspace.Workspace, id string) (models.Node, error) {
	node, ok := tree.FindNode(id, ws.Nodes())
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoteNotFound, id)
	}
	return node, nil
}

// Notes returns the forest of a campaign
func (s *NotesService) Notes(ctx context.Context, campaignID string) (models.Forest, error) {
	var forest models.Forest
	err := s.with(ctx, campaignID, func(ws *workspace.Workspace) error {
		forest = ws.Nodes()
		return nil
	})
	return forest, err
}

// Note returns one node of a campaign
func (s *NotesService) Note(ctx context.Context, campaignID, noteID string) (models.Node, error) {
	var node models.Node
	err := s.with(ctx, campaignID, func(ws *workspace.Workspace) error {
		var err error
		node, err = requireNode(ws, noteID)
		return err
	})
	return node, err
}

// Search finds nodes whose name contains query, ignoring case
func (s *NotesService) Search(ctx context.Context, campaignID, query string) ([]tree.Match, error) {
	var matches []tree.Match
	err := s.with(ctx, campaignID, func(ws *workspace.Workspace) error {
		matches = tree.Search(ws.Nodes(), query)
		return nil
	})
	return matches, err
}

// Create adds a file or folder, at the top level or inside req.ParentID
func (s *NotesService) Create(ctx context.Context, campaignID string, req *models.CreateNoteRequest) (models.Node, error) {
	var node models.Node
	err := s.with(ctx, campaignID, func(ws *workspace.Workspace) error {
		var err error
		if req.Type == models.TypeFolder {
			node, err = ws.NewFolder(req.ParentID, req.Name)
		} else {
			node, err = ws.NewNote(req.ParentID, req.Name)
		}
		return err
	})
	return node, err
}

// Rename renames a node. Locked nodes are refused with a warning.
func (s *NotesService) Rename(ctx context.Context, campaignID, noteID, name string) (models.Node, error) {
	return s.mutate(ctx, campaignID, noteID, func(ws *workspace.Workspace) error {
		return ws.Rename(noteID, name)
	})
}

// UpdateContent replaces a file's content. Locked files are refused with a warning.
func (s *NotesService) UpdateContent(ctx context.Context, campaignID, noteID, content string) (models.Node, error) {
	return s.mutate(ctx, campaignID, noteID, func(ws *workspace.Workspace) error {
		return ws.UpdateContent(noteID, content)
	})
}

// ToggleLock flips the lock of a node
func (s *NotesService) ToggleLock(ctx context.Context, campaignID, noteID string) (models.Node, error) {
	return s.mutate(ctx, campaignID, noteID, func(ws *workspace.Workspace) error {
		ws.ToggleLock(noteID)
		return nil
	})
}

// ToggleOpen expands or collapses a folder
func (s *NotesService) ToggleOpen(ctx context.Context, campaignID, noteID string) (models.Node, error) {
	return s.mutate(ctx, campaignID, noteID, func(ws *workspace.Workspace) error {
		ws.ToggleOpen(noteID)
		return nil
	})
}

func (s *NotesService) mutate(ctx context.Context, campaignID, noteID string, fn func(*workspace.Workspace) error) (models.Node, error) {
	var node models.Node
	err := s.with(ctx, campaignID, func(ws *workspace.Workspace) error {
		if _, err := requireNode(ws, noteID); err != nil {
			return err
		}
		if err := fn(ws); err != nil {
			return err
		}
		node, _ = tree.FindNode(noteID, ws.Nodes())
		return nil
	})
	return node, err
}

// Delete removes the given nodes and their descendants in one batch
func (s *NotesService) Delete(ctx context.Context, campaignID string, ids []string) error {
	return s.with(ctx, campaignID, func(ws *workspace.Workspace) error {
		return ws.Delete(ids...)
	})
}

// Move commits a drag-and-drop. When req.Position is empty the position
// is inferred from req.OffsetY within req.Height over the target.
func (s *NotesService) Move(ctx context.Context, campaignID string, req *models.MoveNoteRequest) (models.Forest, error) {
	var forest models.Forest
	err := s.with(ctx, campaignID, func(ws *workspace.Workspace) error {
		if _, err := requireNode(ws, req.SourceID); err != nil {
			return err
		}

		pos, err := s.position(ws, req)
		if err != nil {
			return err
		}
		if err := ws.Move(req.SourceID, req.TargetID, pos); err != nil {
			return err
		}
		forest = ws.Nodes()
		return nil
	})
	return forest, err
}

func (s *NotesService) position(ws *workspace.Workspace, req *models.MoveNoteRequest) (tree.Position, error) {
	if req.TargetID == tree.RootID {
		return tree.After, nil
	}
	target, err := requireNode(ws, req.TargetID)
	if err != nil {
		return tree.None, err
	}
	if req.Position != "" {
		return tree.ParsePosition(req.Position)
	}
	return tree.PositionFor(target, req.OffsetY, req.Height), nil
}

// Import replaces a campaign's forest with raw forest JSON, such as an
// earlier export. The open workspace is replaced and loses its selection.
// Import waits for any call in progress on the campaign, including its save.
func (s *NotesService) Import(ctx context.Context, campaignID string, data []byte) (models.Forest, error) {
	sess := s.acquire(campaignID)
	defer sess.mu.Unlock()

	forest, err := s.store.ImportNotes(ctx, campaignID, data)
	if err != nil {
		if sess.ws == nil {
			s.forget(campaignID, sess)
		}
		return nil, err
	}
	sess.ws = s.newWorkspace(campaignID, sess, forest)
	return forest, nil
}

// Close drops every open workspace. Later calls reload from the store.
func (s *NotesService) Close() {
	s.mu.Lock()
	sessions := s.sessions
	s.sessions = make(map[string]*session)
	s.mu.Unlock()

	for _, sess := range sessions {
		sess.mu.Lock()
		sess.closed = true
		sess.ws = nil
		sess.mu.Unlock()
	}
}
