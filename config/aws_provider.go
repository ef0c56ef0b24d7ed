package config

import (
	"context"
	"errors"
	"os"
	"strconv"
)

// ChainProvider implements Provider by asking each provider in turn.
// The first provider that has a value for a key wins.
type ChainProvider struct {
	providers []Provider
}

// NewChainProvider creates a provider that consults providers in order
func NewChainProvider(providers ...Provider) *ChainProvider {
	return &ChainProvider{providers: providers}
}

// NewAWSConfigProvider layers AWS Secrets Manager over environment variables.
// Without AWS_SECRET_NAME it is the environment alone.
func NewAWSConfigProvider(ctx context.Context) (Provider, error) {
	env := NewEnvProvider("")
	secretName := os.Getenv("AWS_SECRET_NAME")
	if secretName == "" {
		return env, nil
	}

	secrets, err := NewAWSSecretsProvider(ctx, secretName)
	if err != nil {
		return nil, err
	}
	return NewChainProvider(secrets, env), nil
}

// GetEnvironment returns the environment of the first provider
func (p *ChainProvider) GetEnvironment() Environment {
	if len(p.providers) == 0 {
		return environmentFromEnv()
	}
	return p.providers[0].GetEnvironment()
}

// GetString retrieves a string from the first provider that has it
func (p *ChainProvider) GetString(ctx context.Context, key string) (string, error) {
	var lastErr error = ErrNotSet
	for _, provider := range p.providers {
		value, err := provider.GetString(ctx, key)
		if err == nil {
			return value, nil
		}
		if !errors.Is(err, ErrNotSet) {
			return "", err
		}
		lastErr = err
	}
	return "", lastErr
}

// GetInt retrieves an integer from the first provider that has it
func (p *ChainProvider) GetInt(ctx context.Context, key string) (int, error) {
	value, err := p.GetString(ctx, key)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(value)
}

// GetBool retrieves a boolean from the first provider that has it
func (p *ChainProvider) GetBool(ctx context.Context, key string) (bool, error) {
	value, err := p.GetString(ctx, key)
	if err != nil {
		return false, err
	}
	return strconv.ParseBool(value)
}

// GetSecret retrieves a secret from the first provider that has it
func (p *ChainProvider) GetSecret(ctx context.Context, key string) (string, error) {
	return p.GetString(ctx, key)
}
