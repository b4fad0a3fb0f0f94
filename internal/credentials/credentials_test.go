package credentials

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"atsmatch/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeVault struct {
	mu      sync.Mutex
	secrets map[string]*config.VaultSecret
	reads   int
}

func (f *fakeVault) GetSecretV2(path string) (*config.VaultSecret, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reads++
	secret, ok := f.secrets[path]
	if !ok {
		return nil, fmt.Errorf("secret not found at path: %s", path)
	}
	return secret, nil
}

func (f *fakeVault) set(path string, key string, version int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.secrets[path] = &config.VaultSecret{Data: map[string]any{"api_key": key}, Version: version}
}

func TestStatic(t *testing.T) {
	s := NewStatic("static-key")
	key, err := s.APIKey(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "static-key", key)
	assert.Equal(t, RefreshNone, s.Policy())
	assert.NoError(t, s.Close())
}

func TestNewFromConfig(t *testing.T) {
	cfg := &config.Config{
		AI:          config.AIConfig{APIKey: "from-config"},
		Credentials: config.CredentialsConfig{Source: "static", Refresh: "none"},
	}
	src, err := New(cfg, nil)
	require.NoError(t, err)
	key, _ := src.APIKey(context.Background())
	assert.Equal(t, "from-config", key)

	cfg.Credentials.Source = "carrier-pigeon"
	_, err = New(cfg, nil)
	assert.Error(t, err)
}

func TestFileSourceReadsAndReloads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gemini.key")
	require.NoError(t, os.WriteFile(path, []byte("  first-key\n"), 0600))

	fs, err := NewFileSource(path, RefreshNone, 0, nil)
	require.NoError(t, err)
	defer fs.Close()

	key, _ := fs.APIKey(context.Background())
	assert.Equal(t, "first-key", key)

	require.NoError(t, os.WriteFile(path, []byte("second-key"), 0600))
	assert.True(t, fs.reload())
	key, _ = fs.APIKey(context.Background())
	assert.Equal(t, "second-key", key)

	// empty file keeps the previous key
	require.NoError(t, os.WriteFile(path, []byte(""), 0600))
	assert.False(t, fs.reload())
	key, _ = fs.APIKey(context.Background())
	assert.Equal(t, "second-key", key)
}

func TestFileSourceWatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gemini.key")
	require.NoError(t, os.WriteFile(path, []byte("old-key"), 0600))

	fs, err := NewFileSource(path, RefreshWatch, 10*time.Millisecond, nil)
	require.NoError(t, err)
	defer fs.Close()

	require.NoError(t, os.WriteFile(path, []byte("rotated-key"), 0600))

	assert.Eventually(t, func() bool {
		key, _ := fs.APIKey(context.Background())
		return key == "rotated-key"
	}, 3*time.Second, 20*time.Millisecond)
}

func TestFileSourceErrors(t *testing.T) {
	_, err := NewFileSource(filepath.Join(t.TempDir(), "missing.key"), RefreshNone, 0, nil)
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "gemini.key")
	require.NoError(t, os.WriteFile(path, []byte("k"), 0600))
	_, err = NewFileSource(path, RefreshPoll, 0, nil)
	assert.Error(t, err, "file sources cannot poll")
}

func TestVaultSourcePicksUpNewVersions(t *testing.T) {
	vault := &fakeVault{secrets: map[string]*config.VaultSecret{}}
	vault.set("secret/data/gemini", "v1-key", 1)

	vs, err := NewVaultSource(vault, "secret/data/gemini", "api_key", RefreshNone, 0, nil)
	require.NoError(t, err)
	defer vs.Close()

	key, _ := vs.APIKey(context.Background())
	assert.Equal(t, "v1-key", key)
	assert.Equal(t, int64(1), vs.Version())

	changed, err := vs.checkForUpdates()
	require.NoError(t, err)
	assert.False(t, changed, "same version is not a change")

	vault.set("secret/data/gemini", "v2-key", 2)
	changed, err = vs.checkForUpdates()
	require.NoError(t, err)
	assert.True(t, changed)
	key, _ = vs.APIKey(context.Background())
	assert.Equal(t, "v2-key", key)
}

func TestVaultSourcePolling(t *testing.T) {
	vault := &fakeVault{secrets: map[string]*config.VaultSecret{}}
	vault.set("secret/data/gemini", "v1-key", 1)

	vs, err := NewVaultSource(vault, "secret/data/gemini", "api_key", RefreshPoll, 10*time.Millisecond, nil)
	require.NoError(t, err)
	defer vs.Close()

	vault.set("secret/data/gemini", "v2-key", 2)
	assert.Eventually(t, func() bool {
		key, _ := vs.APIKey(context.Background())
		return key == "v2-key"
	}, 2*time.Second, 10*time.Millisecond)
}

func TestVaultSourceErrors(t *testing.T) {
	vault := &fakeVault{secrets: map[string]*config.VaultSecret{}}

	_, err := NewVaultSource(vault, "secret/data/missing", "api_key", RefreshNone, 0, nil)
	assert.Error(t, err)

	vault.set("secret/data/gemini", "", 1)
	_, err = NewVaultSource(vault, "secret/data/gemini", "api_key", RefreshNone, 0, nil)
	assert.Error(t, err, "empty key is rejected")

	_, err = NewVaultSource(vault, "secret/data/gemini", "api_key", RefreshPoll, 0, nil)
	assert.Error(t, err, "polling needs an interval")
}
