package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, 600, cfg.Interview.TimeBudget)
	assert.Equal(t, 30, cfg.Interview.MinRemaining)
	assert.Equal(t, 1, cfg.Interview.MaxProbesPerTopic)
	assert.Equal(t, 3, cfg.Evidence.K)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 24*time.Hour, cfg.Server.TokenTTL)
	assert.Equal(t, "text-embedding-004", cfg.LLM.Gemini.EmbeddingModel)
}

func TestLoad_FileThenEnv(t *testing.T) {
	t.Setenv("INTERVIEWER_LLM_PROVIDER", "mock")
	t.Setenv("INTERVIEWER_TIME_BUDGET", "900")
	t.Setenv("INTERVIEWER_DB", "file:cfgtest?mode=memory")

	path := writeFile(t, "interviewer.yaml", `
interview:
  time_budget: 300
  min_remaining: 20
  live_analysis: true
decision:
  language: English
server:
  token_ttl: 2h
s3:
  endpoint: localhost:9000
  access_key: minio
  secret_key: minio123
  bucket: records
log:
  format: json
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 900, cfg.Interview.TimeBudget, "env overrides file")
	assert.Equal(t, 20, cfg.Interview.MinRemaining)
	assert.True(t, cfg.Interview.LiveAnalysis)
	assert.Equal(t, 1, cfg.Interview.MaxProbesPerTopic, "defaults survive partial files")
	assert.Equal(t, "English", cfg.Decision.Language)
	assert.Equal(t, 2*time.Hour, cfg.Server.TokenTTL)
	assert.Equal(t, "file:cfgtest?mode=memory", cfg.Database.DSN)
	assert.Equal(t, "mock", cfg.LLM.Provider)
	assert.True(t, cfg.S3.Enabled())
	assert.NoError(t, cfg.Validate())
}

func TestLoad_ConfigPathFromEnv(t *testing.T) {
	t.Setenv("INTERVIEWER_LLM_PROVIDER", "mock")
	t.Setenv("INTERVIEWER_CONFIG", writeFile(t, "c.yaml", "evidence:\n  k: 5\n"))

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.Evidence.K)
	assert.NotEmpty(t, cfg.Database.DSN, "falls back to the default database path")
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "reading config")

	_, err = Load(writeFile(t, "bad.yaml", "interview: [1, 2"))
	assert.ErrorContains(t, err, "parsing config")

	t.Setenv("INTERVIEWER_MAX_PROBES", "many")
	_, err = Load("")
	assert.ErrorContains(t, err, "INTERVIEWER_MAX_PROBES")
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Database.DSN = "x.db"
	require.NoError(t, cfg.Validate())

	cfg.Interview.MinRemaining = cfg.Interview.TimeBudget
	cfg.Log.Format = "xml"
	cfg.S3.Endpoint = "localhost:9000"
	err := cfg.Validate()
	require.Error(t, err)
	for _, want := range []string{"min_remaining", "log.format", "s3 access key"} {
		assert.True(t, strings.Contains(err.Error(), want), "missing %q in %v", want, err)
	}
}

func TestValidateServer(t *testing.T) {
	cfg := Default()
	assert.ErrorContains(t, cfg.ValidateServer(), "jwt_secret")

	cfg.Server.JWTSecret = "0123456789abcdef"
	assert.NoError(t, cfg.ValidateServer())
}

func TestNewLogger(t *testing.T) {
	var b strings.Builder
	logger, err := LogConfig{Level: "warn", Format: "json"}.NewLogger(&b)
	require.NoError(t, err)

	logger.Info("hidden")
	logger.Warn("shown", "session_id", "s1")
	assert.NotContains(t, b.String(), "hidden")
	assert.Contains(t, b.String(), `"session_id":"s1"`)

	_, err = LogConfig{Level: "loud"}.NewLogger(&b)
	assert.Error(t, err)

	lvl, err := ParseLevel("DEBUG")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, lvl)
}
