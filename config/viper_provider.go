package config

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// ViperProvider implements Provider on top of viper: an optional config
// file (yaml, toml or json) overridden by environment variables.
type ViperProvider struct {
	v           *viper.Viper
	environment Environment
}

// NewViperProvider loads configFile when non-empty. Keys are looked up
// case-insensitively; DB_HOST in the environment overrides db_host in the file.
func NewViperProvider(configFile string) (*ViperProvider, error) {
	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
		}
	}

	env := Environment(v.GetString("APP_ENV"))
	if env == "" {
		env = Development
	}
	return &ViperProvider{v: v, environment: env}, nil
}

// Set overrides a key, used for command-line flags
func (p *ViperProvider) Set(key string, value interface{}) {
	p.v.Set(key, value)
}

// GetEnvironment returns the current environment
func (p *ViperProvider) GetEnvironment() Environment {
	return p.environment
}

// GetString retrieves a string configuration value
func (p *ViperProvider) GetString(ctx context.Context, key string) (string, error) {
	if !p.v.IsSet(key) || p.v.GetString(key) == "" {
		return "", fmt.Errorf("config key %s: %w", key, ErrNotSet)
	}
	return p.v.GetString(key), nil
}

// GetInt retrieves an integer configuration value
func (p *ViperProvider) GetInt(ctx context.Context, key string) (int, error) {
	if _, err := p.GetString(ctx, key); err != nil {
		return 0, err
	}
	return p.v.GetInt(key), nil
}

// GetBool retrieves a boolean configuration value
func (p *ViperProvider) GetBool(ctx context.Context, key string) (bool, error) {
	if _, err := p.GetString(ctx, key); err != nil {
		return false, err
	}
	return p.v.GetBool(key), nil
}

// GetSecret retrieves a secret value
func (p *ViperProvider) GetSecret(ctx context.Context, key string) (string, error) {
	return p.GetString(ctx, key)
}
