package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "DealerConnect", cfg.App.Name)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "modelos_segmentados.csv", cfg.Pipeline.CatalogFile)
	assert.Equal(t, "tabela_pessoa_para_banco.csv", cfg.Pipeline.RosterFile)
	assert.Equal(t, "vendas_processado.csv", cfg.Pipeline.SalesFile)
	assert.Equal(t, ",", cfg.Pipeline.Delimiter)
	assert.Equal(t, uint64(42), cfg.Pipeline.Seed)
	assert.Empty(t, cfg.Pipeline.Schedule)
	assert.Equal(t, 30*time.Minute, cfg.Pipeline.TimeoutDuration())
	assert.Equal(t, 6, cfg.Classifier.Threshold)
	assert.Equal(t, int64(50), cfg.Storage.MaxUploadSizeMB)
	assert.Contains(t, cfg.RateLimit.WhitelistPaths, "/metrics")
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("PIPELINE_SEED", "7")
	t.Setenv("PIPELINE_DELIMITER", ";")
	t.Setenv("DATABASE_DRIVER", "sqlite")
	t.Setenv("JWT_SECRET", "from-env")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, uint64(7), cfg.Pipeline.Seed)
	assert.Equal(t, ";", cfg.Pipeline.Delimiter)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "from-env", cfg.Auth.JWTSecret)
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	body := `{"pipeline": {"rosterFile": "pessoas.xlsx", "schedule": "@daily"}, "classifier": {"threshold": 8}}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.json"), []byte(body), 0o600))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "pessoas.xlsx", cfg.Pipeline.RosterFile)
	assert.Equal(t, "@daily", cfg.Pipeline.Schedule)
	assert.Equal(t, 8, cfg.Classifier.Threshold)
	assert.Equal(t, "modelos_segmentados.csv", cfg.Pipeline.CatalogFile)
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"delimiter longer than one character", "PIPELINE_DELIMITER", ";;"},
		{"unknown driver", "DATABASE_DRIVER", "mssql"},
		{"threshold out of range", "CLASSIFIER_THRESHOLD", "11"},
		{"malformed classifier url", "CLASSIFIER_URL", "not a url"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Chdir(t.TempDir())
			t.Setenv(tt.key, tt.val)

			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestLoadWithSecrets_EnvironmentOnly(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("USE_AZURE_KEY_VAULT", "true")
	t.Setenv("APP_ENVIRONMENT", "development")

	cfg, err := LoadWithSecrets(context.Background(), zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, "development", cfg.App.Environment)
}

func TestLoadWithSecrets_VaultRequiresName(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("USE_AZURE_KEY_VAULT", "true")
	t.Setenv("APP_ENVIRONMENT", "production")
	t.Setenv("AZURE_KEY_VAULT_NAME", "")

	_, err := LoadWithSecrets(context.Background(), zap.NewNop())
	assert.ErrorContains(t, err, "AZURE_KEY_VAULT_NAME")
}

type fakeSecrets map[string]string

func (f fakeSecrets) GetSecretOrEnv(_ context.Context, secretName, _ string) (string, error) {
	if v, ok := f[secretName]; ok {
		return v, nil
	}
	return "", errors.New("secret not found")
}

func TestApplySecrets(t *testing.T) {
	cfg := &Config{}
	cfg.Database.Host = "localhost"
	cfg.Auth.APIKey = "keep-me"

	applySecrets(context.Background(), cfg, fakeSecrets{
		"POSTGRES-HOST":             "db.internal",
		"POSTGRES-PASSWORD":         "s3cret",
		"jwt-secret":                "signing-key",
		"storage-connection-string": "DefaultEndpointsProtocol=https",
		"admin-api-key":             "",
	})

	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, "s3cret", cfg.Database.Password)
	assert.Equal(t, "signing-key", cfg.Auth.JWTSecret)
	assert.Equal(t, "DefaultEndpointsProtocol=https", cfg.Storage.CloudConnectionString)
	assert.Equal(t, "keep-me", cfg.Auth.APIKey)
	assert.Empty(t, cfg.Database.User)
}

func TestDurations(t *testing.T) {
	s := ServerConfig{ReadTimeout: 30, WriteTimeout: 120, RequestTimeout: 60}
	assert.Equal(t, 30*time.Second, s.ReadTimeoutDuration())
	assert.Equal(t, 2*time.Minute, s.WriteTimeoutDuration())
	assert.Equal(t, time.Minute, s.RequestTimeoutDuration())

	c := ClassifierConfig{Timeout: 10}
	assert.Equal(t, 10*time.Second, c.TimeoutDuration())

	d := DatabaseConfig{Host: "h", Port: 5432, User: "u", Password: "p", Name: "n", SSLMode: "disable", ConnMaxLifetime: 300}
	assert.Equal(t, "host=h port=5432 user=u password=p dbname=n sslmode=disable", d.ConnectionString())
	assert.Equal(t, 5*time.Minute, d.ConnMaxLifetimeDuration())
}
