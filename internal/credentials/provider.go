// Package credentials supplies the model API key. The key is injected into
// the completion service through a Source, and each Source states how the
// key is refreshed while the process runs.
package credentials

import (
	"context"
	"fmt"

	"atsmatch/internal/config"
	"atsmatch/internal/errors"
)

// Provider returns the current model API key
type Provider interface {
	APIKey(ctx context.Context) (string, error)
}

// Source is a Provider that may hold background resources
type Source interface {
	Provider
	Policy() RefreshPolicy
	Close() error
}

// RefreshPolicy states how a Source keeps its key current
type RefreshPolicy string

const (
	RefreshNone  RefreshPolicy = "none"  // read once at startup
	RefreshWatch RefreshPolicy = "watch" // re-read the key file when it changes
	RefreshPoll  RefreshPolicy = "poll"  // poll the secret store for new versions
)

// Static is a fixed key that never refreshes
type Static struct {
	key string
}

// NewStatic returns a Source for a fixed key
func NewStatic(key string) *Static {
	return &Static{key: key}
}

func (s *Static) APIKey(ctx context.Context) (string, error) {
	return s.key, nil
}

func (s *Static) Policy() RefreshPolicy { return RefreshNone }

func (s *Static) Close() error { return nil }

// New builds the Source selected by cfg.Credentials and starts its refresh
// loop when the policy asks for one
func New(cfg *config.Config, logger *errors.Logger) (Source, error) {
	cr := cfg.Credentials
	policy := RefreshPolicy(cr.Refresh)
	if policy == "" {
		policy = RefreshNone
	}

	switch cr.Source {
	case "", "static":
		return NewStatic(cfg.AI.APIKey), nil

	case "file":
		return NewFileSource(cr.KeyFile, policy, cr.DebounceDelay, logger)

	case "vault":
		client, err := config.NewVaultClient(cfg.Vault, logger)
		if err != nil {
			return nil, errors.NewConfigError(errors.ErrCodeInvalidConfig,
				"Failed to connect to Vault for credentials", err)
		}
		if client == nil {
			return nil, errors.NewConfigError(errors.ErrCodeInvalidConfig,
				"Vault credentials require vault.enabled", nil)
		}
		return NewVaultSource(client, cfg.Vault.Secrets.APIKeyPath, cfg.Vault.Secrets.KeyField(),
			policy, cr.PollInterval, logger)
	}

	return nil, errors.NewConfigError(errors.ErrCodeInvalidConfig,
		fmt.Sprintf("Unsupported credentials source: %s", cr.Source), nil)
}
