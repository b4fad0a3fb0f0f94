package config

import (
	"os"
	"path/filepath"
	"testing"

	"atsmatch/internal/errors"

	"github.com/hashicorp/vault/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger() *errors.Logger {
	logger, _ := errors.New("debug")
	return logger
}

func TestParseVersionValue(t *testing.T) {
	tests := []struct {
		name        string
		input       any
		expected    int64
		expectError bool
	}{
		{name: "int64 value", input: int64(42), expected: 42},
		{name: "float64 value", input: float64(7), expected: 7},
		{name: "string value", input: "13", expected: 13},
		{name: "invalid string value", input: "v2", expectError: true},
		{name: "unsupported type", input: []string{"42"}, expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := parseVersionValue(tt.input, "secret/data/atsmatch")
			if tt.expectError {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestResolveVaultToken(t *testing.T) {
	logger := newTestLogger()

	t.Run("token from config", func(t *testing.T) {
		token, err := resolveVaultToken(VaultConfig{Token: "direct-token"}, logger)
		assert.NoError(t, err)
		assert.Equal(t, "direct-token", token)
	})

	t.Run("token from file", func(t *testing.T) {
		tokenFile := filepath.Join(t.TempDir(), "vault-token")
		require.NoError(t, os.WriteFile(tokenFile, []byte("  file-token  \n"), 0600))

		token, err := resolveVaultToken(VaultConfig{TokenFile: tokenFile}, logger)
		assert.NoError(t, err)
		assert.Equal(t, "file-token", token)
	})

	t.Run("missing token file", func(t *testing.T) {
		_, err := resolveVaultToken(VaultConfig{TokenFile: "/nonexistent/token/file"}, logger)
		assert.ErrorContains(t, err, "failed to read vault token file")
	})

	t.Run("no token provided", func(t *testing.T) {
		_, err := resolveVaultToken(VaultConfig{}, nil)
		assert.ErrorContains(t, err, "vault token is required")
	})
}

func TestVaultSecretStringField(t *testing.T) {
	secret := &VaultSecret{
		Data:    map[string]any{"api_key": "abc123", "count": 3},
		Version: 2,
	}

	value, err := secret.StringField("api_key")
	require.NoError(t, err)
	assert.Equal(t, "abc123", value)

	_, err = secret.StringField("missing")
	assert.Error(t, err)

	_, err = secret.StringField("count")
	assert.Error(t, err)
}

func TestVaultSecretsKeyField(t *testing.T) {
	assert.Equal(t, "api_key", VaultSecrets{}.KeyField())
	assert.Equal(t, "token", VaultSecrets{APIKeyField: "token"}.KeyField())
}

func TestMaskSecret(t *testing.T) {
	assert.Equal(t, "AIza****wxyz", MaskSecret("AIzaSyD-0123456789wxyz"))
	assert.Equal(t, "****", MaskSecret("short"))
	assert.Equal(t, "", MaskSecret(""))
}

func TestVaultClientExtractSecretData(t *testing.T) {
	vc := &VaultClient{logger: newTestLogger()}

	tests := []struct {
		name        string
		secret      *api.Secret
		expectError bool
		expected    map[string]any
	}{
		{
			name: "valid KVv2 secret",
			secret: &api.Secret{Data: map[string]any{
				"data": map[string]any{"api_key": "value1"},
			}},
			expected: map[string]any{"api_key": "value1"},
		},
		{
			name:        "missing data field",
			secret:      &api.Secret{Data: map[string]any{"metadata": map[string]any{}}},
			expectError: true,
		},
		{
			name:        "data field wrong type",
			secret:      &api.Secret{Data: map[string]any{"data": "not-a-map"}},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := vc.extractSecretData(tt.secret, "secret/data/atsmatch")
			if tt.expectError {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestVaultClientExtractSecretVersion(t *testing.T) {
	vc := &VaultClient{logger: newTestLogger()}

	tests := []struct {
		name        string
		secret      *api.Secret
		expectError bool
		expected    int64
	}{
		{
			name: "json number version",
			secret: &api.Secret{Data: map[string]any{
				"metadata": map[string]any{"version": float64(5)},
			}},
			expected: 5,
		},
		{
			name:        "missing metadata field",
			secret:      &api.Secret{Data: map[string]any{"data": map[string]any{}}},
			expectError: true,
		},
		{
			name: "missing version field",
			secret: &api.Secret{Data: map[string]any{
				"metadata": map[string]any{"created_time": "2024-01-01"},
			}},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := vc.extractSecretVersion(tt.secret, "secret/data/atsmatch")
			if tt.expectError {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.expected, result)
		})
	}
}
