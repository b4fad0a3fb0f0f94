package credentials

import (
	"context"
	"fmt"
	"sync"
	"time"

	"atsmatch/internal/config"
	"atsmatch/internal/errors"
)

// SecretReader reads KVv2 secrets; *config.VaultClient satisfies it
type SecretReader interface {
	GetSecretV2(path string) (*config.VaultSecret, error)
}

// VaultSource reads the API key from a Vault KVv2 secret and, with
// RefreshPoll, polls for newer secret versions
type VaultSource struct {
	mu           sync.RWMutex
	client       SecretReader
	path         string
	field        string
	policy       RefreshPolicy
	pollInterval time.Duration

	key         string
	lastVersion int64

	stopChan chan struct{}
	running  bool
	logger   *errors.Logger
}

// NewVaultSource fetches the current key and starts polling when policy is
// RefreshPoll
func NewVaultSource(client SecretReader, path, field string, policy RefreshPolicy, pollInterval time.Duration, logger *errors.Logger) (*VaultSource, error) {
	if policy != RefreshNone && policy != RefreshPoll {
		return nil, errors.NewConfigError(errors.ErrCodeInvalidConfig,
			fmt.Sprintf("vault credentials do not support refresh policy %q", policy), nil)
	}
	if policy == RefreshPoll && pollInterval <= 0 {
		return nil, errors.NewConfigError(errors.ErrCodeInvalidConfig,
			"vault credentials poll interval must be positive", nil)
	}

	vs := &VaultSource{
		client:       client,
		path:         path,
		field:        field,
		policy:       policy,
		pollInterval: pollInterval,
		stopChan:     make(chan struct{}),
		logger:       logger,
	}

	if _, err := vs.checkForUpdates(); err != nil {
		return nil, err
	}

	if policy == RefreshPoll {
		vs.running = true
		go vs.pollLoop()
		if logger != nil {
			logger.Info("Vault credentials watcher started",
				"secret_path", path,
				"poll_interval", pollInterval)
		}
	}
	return vs, nil
}

func (vs *VaultSource) APIKey(ctx context.Context) (string, error) {
	vs.mu.RLock()
	defer vs.mu.RUnlock()
	return vs.key, nil
}

func (vs *VaultSource) Policy() RefreshPolicy { return vs.policy }

// Version returns the secret version the current key came from
func (vs *VaultSource) Version() int64 {
	vs.mu.RLock()
	defer vs.mu.RUnlock()
	return vs.lastVersion
}

// checkForUpdates reads the secret and swaps in the key when the version
// is newer than the one held
func (vs *VaultSource) checkForUpdates() (bool, error) {
	secret, err := vs.client.GetSecretV2(vs.path)
	if err != nil {
		return false, errors.NewConfigError(errors.ErrCodeMissingAPIKey,
			"Failed to read API key from Vault", err).WithContext("path", vs.path)
	}
	if secret == nil {
		return false, errors.NewConfigError(errors.ErrCodeMissingAPIKey,
			"API key secret not found in Vault", nil).WithContext("path", vs.path)
	}

	vs.mu.RLock()
	stale := vs.key != "" && secret.Version <= vs.lastVersion
	vs.mu.RUnlock()
	if stale {
		return false, nil
	}

	key, err := secret.StringField(vs.field)
	if err != nil {
		return false, errors.NewConfigError(errors.ErrCodeMissingAPIKey,
			"API key field missing from Vault secret", err).WithContext("path", vs.path)
	}
	if key == "" {
		return false, errors.NewConfigError(errors.ErrCodeMissingAPIKey,
			"API key in Vault is empty", nil).WithContext("path", vs.path)
	}

	vs.mu.Lock()
	vs.key = key
	vs.lastVersion = secret.Version
	vs.mu.Unlock()

	if vs.logger != nil {
		vs.logger.Info("API key loaded from Vault",
			"secret_path", vs.path,
			"version", secret.Version,
			"masked_key", config.MaskSecret(key))
	}
	return true, nil
}

func (vs *VaultSource) pollLoop() {
	ticker := time.NewTicker(vs.pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if _, err := vs.checkForUpdates(); err != nil && vs.logger != nil {
				vs.logger.LogError(err, "Failed to check Vault for a new API key")
			}
		case <-vs.stopChan:
			return
		}
	}
}

// Close stops polling
func (vs *VaultSource) Close() error {
	vs.mu.Lock()
	defer vs.mu.Unlock()
	if !vs.running {
		return nil
	}
	close(vs.stopChan)
	vs.running = false
	if vs.logger != nil {
		vs.logger.Info("Vault credentials watcher stopped")
	}
	return nil
}
