package config

import (
	"context"
	"errors"
	"fmt"
	"net"
	"regexp"
	"time"
)

var (
	validSSLModes = map[string]bool{
		"disable":     true,
		"require":     true,
		"verify-ca":   true,
		"verify-full": true,
	}
	dbNamePattern = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_]*$`)
	upperPattern  = regexp.MustCompile(`[A-Z]`)
	lowerPattern  = regexp.MustCompile(`[a-z]`)
	digitPattern  = regexp.MustCompile(`[0-9]`)
	symbolPattern = regexp.MustCompile(`[^A-Za-z0-9]`)
)

// StorageBackend selects the Repository implementation
type StorageBackend string

const (
	BackendSQLite   StorageBackend = "sqlite"
	BackendPostgres StorageBackend = "postgres"
	BackendMemory   StorageBackend = "memory"
)

// CacheBackend selects the CacheProvider implementation
type CacheBackend string

const (
	CacheMemory   CacheBackend = "memory"
	CacheRedis    CacheBackend = "redis"
	CacheDynamoDB CacheBackend = "dynamodb"
	CacheNone     CacheBackend = "none"
)

// DatabaseConfig holds database connection configuration
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// DSN returns the lib/pq connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

// Validate checks if the database configuration is valid
func (c *DatabaseConfig) Validate(env Environment) error {
	if c.Host == "" {
		return &ValidationError{Field: "Host", Message: "host cannot be empty"}
	}

	if host := net.ParseIP(c.Host); host == nil {
		if _, err := net.LookupHost(c.Host); err != nil {
			return &ValidationError{Field: "Host", Message: "invalid hostname or IP address"}
		}
	}

	if c.Port <= 0 || c.Port > 65535 {
		return &ValidationError{Field: "Port", Message: "port must be between 1 and 65535"}
	}

	if c.User == "" {
		return &ValidationError{Field: "User", Message: "user cannot be empty"}
	}

	if c.Password == "" {
		return &ValidationError{Field: "Password", Message: "password cannot be empty"}
	}

	if env == Production {
		if err := validateProductionPassword(c.Password); err != nil {
			return err
		}
	}

	if c.DBName == "" {
		return &ValidationError{Field: "DBName", Message: "database name cannot be empty"}
	}
	if !dbNamePattern.MatchString(c.DBName) {
		return &ValidationError{Field: "DBName", Message: "database name must start with a letter and contain only letters, numbers, and underscores"}
	}

	if !validSSLModes[c.SSLMode] {
		return &ValidationError{Field: "SSLMode", Message: "invalid SSL mode"}
	}
	if env == Production && c.SSLMode == "disable" {
		return &ValidationError{Field: "SSLMode", Message: "SSL cannot be disabled in production"}
	}

	return nil
}

func validateProductionPassword(password string) error {
	switch {
	case len(password) < 12:
		return &ValidationError{Field: "Password", Message: "password must be at least 12 characters long in production"}
	case !upperPattern.MatchString(password):
		return &ValidationError{Field: "Password", Message: "password must contain at least one uppercase letter in production"}
	case !lowerPattern.MatchString(password):
		return &ValidationError{Field: "Password", Message: "password must contain at least one lowercase letter in production"}
	case !digitPattern.MatchString(password):
		return &ValidationError{Field: "Password", Message: "password must contain at least one number in production"}
	case !symbolPattern.MatchString(password):
		return &ValidationError{Field: "Password", Message: "password must contain at least one special character in production"}
	}
	return nil
}

// GetDatabaseConfig retrieves database configuration using the provided config provider
func GetDatabaseConfig(ctx context.Context, provider Provider) (*DatabaseConfig, error) {
	host, err := provider.GetString(ctx, "DB_HOST")
	if err != nil {
		return nil, fmt.Errorf("failed to get DB_HOST: %w", err)
	}

	port, err := provider.GetInt(ctx, "DB_PORT")
	if err != nil {
		return nil, fmt.Errorf("failed to get DB_PORT: %w", err)
	}

	user, err := provider.GetString(ctx, "DB_USER")
	if err != nil {
		return nil, fmt.Errorf("failed to get DB_USER: %w", err)
	}

	password, err := provider.GetSecret(ctx, "DB_PASSWORD")
	if err != nil {
		return nil, fmt.Errorf("failed to get DB_PASSWORD: %w", err)
	}

	dbname, err := provider.GetString(ctx, "DB_NAME")
	if err != nil {
		return nil, fmt.Errorf("failed to get DB_NAME: %w", err)
	}

	cfg := &DatabaseConfig{
		Host:     host,
		Port:     port,
		User:     user,
		Password: password,
		DBName:   dbname,
		SSLMode:  stringOr(ctx, provider, "DB_SSLMODE", "disable"),
	}

	if err := cfg.Validate(provider.GetEnvironment()); err != nil {
		return nil, fmt.Errorf("invalid database configuration: %w", err)
	}

	return cfg, nil
}

// StorageConfig selects where campaigns are persisted
type StorageConfig struct {
	Backend    StorageBackend
	SQLitePath string
}

// GetStorageConfig reads STORAGE_BACKEND (default sqlite) and SQLITE_PATH
func GetStorageConfig(ctx context.Context, provider Provider) (*StorageConfig, error) {
	cfg := &StorageConfig{
		Backend:    StorageBackend(stringOr(ctx, provider, "STORAGE_BACKEND", string(BackendSQLite))),
		SQLitePath: stringOr(ctx, provider, "SQLITE_PATH", ""),
	}
	switch cfg.Backend {
	case BackendSQLite, BackendPostgres, BackendMemory:
	default:
		return nil, &ValidationError{Field: "STORAGE_BACKEND", Message: fmt.Sprintf("unknown backend %q", cfg.Backend)}
	}
	return cfg, nil
}

// CacheConfig selects and tunes the forest cache
type CacheConfig struct {
	Backend   CacheBackend
	RedisAddr string
	TableName string
	TTL       time.Duration
}

// GetCacheConfig reads CACHE_BACKEND, REDIS_HOST, REDIS_PORT, CACHE_TABLE and CACHE_TTL_SECONDS.
// Without CACHE_BACKEND, redis is chosen when REDIS_HOST is set and memory otherwise.
func GetCacheConfig(ctx context.Context, provider Provider) (*CacheConfig, error) {
	redisHost := stringOr(ctx, provider, "REDIS_HOST", "")
	defaultBackend := CacheMemory
	if redisHost != "" {
		defaultBackend = CacheRedis
	}
	if redisHost == "" {
		redisHost = "localhost"
	}

	ttl, err := intOr(ctx, provider, "CACHE_TTL_SECONDS", 300)
	if err != nil {
		return nil, fmt.Errorf("failed to get CACHE_TTL_SECONDS: %w", err)
	}
	if ttl <= 0 {
		return nil, &ValidationError{Field: "CACHE_TTL_SECONDS", Message: "ttl must be positive"}
	}

	cfg := &CacheConfig{
		Backend:   CacheBackend(stringOr(ctx, provider, "CACHE_BACKEND", string(defaultBackend))),
		RedisAddr: net.JoinHostPort(redisHost, stringOr(ctx, provider, "REDIS_PORT", "6379")),
		TableName: stringOr(ctx, provider, "CACHE_TABLE", "NoteTreeCache"),
		TTL:       time.Duration(ttl) * time.Second,
	}
	switch cfg.Backend {
	case CacheMemory, CacheRedis, CacheDynamoDB, CacheNone:
	default:
		return nil, &ValidationError{Field: "CACHE_BACKEND", Message: fmt.Sprintf("unknown backend %q", cfg.Backend)}
	}
	return cfg, nil
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port     int
	LogLevel string
}

// GetServerConfig reads PORT (default 8080) and LOG_LEVEL (default info)
func GetServerConfig(ctx context.Context, provider Provider) (*ServerConfig, error) {
	port, err := intOr(ctx, provider, "PORT", 8080)
	if err != nil {
		return nil, fmt.Errorf("failed to get PORT: %w", err)
	}
	if port <= 0 || port > 65535 {
		return nil, &ValidationError{Field: "PORT", Message: "port must be between 1 and 65535"}
	}
	return &ServerConfig{
		Port:     port,
		LogLevel: stringOr(ctx, provider, "LOG_LEVEL", "info"),
	}, nil
}

func stringOr(ctx context.Context, provider Provider, key, def string) string {
	value, err := provider.GetString(ctx, key)
	if err != nil || value == "" {
		return def
	}
	return value
}

func intOr(ctx context.Context, provider Provider, key string, def int) (int, error) {
	value, err := provider.GetInt(ctx, key)
	if errors.Is(err, ErrNotSet) {
		return def, nil
	}
	return value, err
}
