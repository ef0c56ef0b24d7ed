// Package app wires configuration, storage, cache and the notes service
// together for the HTTP server, the Lambda function and the CLI.
package app

import (
	"context"
	"fmt"
	"os"

	"github.com/ammiranda/notetree/cache"
	"github.com/ammiranda/notetree/config"
	"github.com/ammiranda/notetree/repository"
	"github.com/ammiranda/notetree/service"
	"github.com/ammiranda/notetree/store"

	"github.com/sirupsen/logrus"
)

// App holds the initialized components
type App struct {
	Repo    repository.Repository
	Cache   cache.CacheProvider
	Store   *store.CampaignStore
	Service *service.NotesService
	Logger  *logrus.Logger
}

// NewLogger builds the process logger at the given level
func NewLogger(level string) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		logger.WithField("level", level).Warn("Unknown log level, using info")
		lvl = logrus.InfoLevel
	}
	logger.SetLevel(lvl)
	return logger
}

// NewRepository creates the repository selected by the storage config
func NewRepository(ctx context.Context, provider config.Provider, cfg *config.StorageConfig) (repository.Repository, error) {
	switch cfg.Backend {
	case config.BackendPostgres:
		return repository.NewPostgresRepository(ctx, provider)
	case config.BackendMemory:
		return repository.NewMockRepository(), nil
	default:
		return repository.NewSQLiteRepository(cfg.SQLitePath), nil
	}
}

// New reads configuration from provider and initializes every component
func New(ctx context.Context, provider config.Provider, logger *logrus.Logger) (*App, error) {
	storageCfg, err := config.GetStorageConfig(ctx, provider)
	if err != nil {
		return nil, fmt.Errorf("failed to get storage config: %w", err)
	}
	cacheCfg, err := config.GetCacheConfig(ctx, provider)
	if err != nil {
		return nil, fmt.Errorf("failed to get cache config: %w", err)
	}

	repo, err := NewRepository(ctx, provider, storageCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create repository: %w", err)
	}
	if err := repo.Initialize(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize repository: %w", err)
	}

	cacheProvider, err := cache.New(cacheCfg)
	if err != nil {
		repo.Cleanup(ctx)
		return nil, fmt.Errorf("failed to initialize cache: %w", err)
	}

	entry := logrus.NewEntry(logger)
	st, err := store.New(repo, cacheProvider, store.WithLogger(entry))
	if err != nil {
		repo.Cleanup(ctx)
		return nil, err
	}

	logger.WithFields(logrus.Fields{
		"storage": storageCfg.Backend,
		"cache":   cacheCfg.Backend,
	}).Debug("Components initialized")

	return &App{
		Repo:    repo,
		Cache:   cacheProvider,
		Store:   st,
		Service: service.New(st, entry),
		Logger:  logger,
	}, nil
}

// Close releases the repository
func (a *App) Close(ctx context.Context) error {
	a.Service.Close()
	return a.Repo.Cleanup(ctx)
}
