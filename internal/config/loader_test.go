package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validConfigYAML = `
server:
  host: "127.0.0.1"
  port: 8081
  grpc_port: 9091
  read_timeout: 10s
hierarchy:
  duplicate_policy: last
  display_epsilon: 0.25
  threshold_options: [25, 50, 100]
cache:
  backend: redis
  ttl: 5m
redis:
  addr: "localhost:6380"
sources:
  interns_path: "data/AIInterns.csv"
  leads_path: "data/TechLeads.csv"
  watch: true
log:
  level: debug
  format: console
`

func createTempConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_FromFile_ValidConfig(t *testing.T) {
	cfg, err := Load(createTempConfigFile(t, validConfigYAML))
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:8081", cfg.Server.Addr())
	assert.Equal(t, 10*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, DefaultWriteTimeout, cfg.Server.WriteTimeout)
	assert.Equal(t, "last", cfg.Hierarchy.DuplicatePolicy)
	assert.Equal(t, 0.25, cfg.Hierarchy.DisplayEpsilon)
	assert.Equal(t, []float64{25, 50, 100}, cfg.Hierarchy.ThresholdOptions)
	assert.Equal(t, BackendRedis, cfg.Cache.Backend)
	assert.Equal(t, 5*time.Minute, cfg.Cache.TTL)
	assert.Equal(t, BackendMemory, cfg.Session.Backend)
	assert.True(t, cfg.Sources.Watch)
	assert.Equal(t, "console", cfg.Log.Format)
}

func TestLoad_FromFile_FileNotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, ErrConfigFileNotFound)
}

func TestLoad_FromFile_InvalidYAML(t *testing.T) {
	_, err := Load(createTempConfigFile(t, "server: ["))
	assert.ErrorIs(t, err, ErrConfigParseError)
}

func TestLoad_FromFile_ValidationFailure(t *testing.T) {
	_, err := Load(createTempConfigFile(t, "server:\n  port: 0\n"))
	assert.ErrorIs(t, err, ErrConfigInvalid)
	assert.Contains(t, err.Error(), "server.port")
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("COHORTMAP_SERVER_PORT", "9999")
	t.Setenv("COHORTMAP_HIERARCHY_ROOT_LABEL", "Director")
	t.Setenv("COHORTMAP_CORS_ALLOWED_ORIGINS", "http://a.test, http://b.test")

	cfg, err := Load(createTempConfigFile(t, validConfigYAML))
	require.NoError(t, err)
	assert.Equal(t, 9999, cfg.Server.Port)
	assert.Equal(t, "Director", cfg.Hierarchy.Structure().RootLabel)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORS.AllowedOrigins)
}

func TestLoadFromEnv_NoFile(t *testing.T) {
	t.Setenv("COHORTMAP_SESSION_BACKEND", "redis")
	t.Setenv("COHORTMAP_SESSION_TTL", "45m")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	assert.Equal(t, BackendRedis, cfg.Session.Backend)
	assert.Equal(t, 45*time.Minute, cfg.Session.TTL)
	assert.Equal(t, DefaultServerPort, cfg.Server.Port)
	assert.Equal(t, DefaultGRPCPort, cfg.Server.GRPCPort)
}

func TestLoad_EmptyPathUsesEnv(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, DefaultCookieName, cfg.Session.CookieName)
}

func TestMustLoad(t *testing.T) {
	path := createTempConfigFile(t, validConfigYAML)
	assert.NotPanics(t, func() { MustLoad(path) })
	assert.Panics(t, func() { MustLoad(filepath.Join(t.TempDir(), "none.yaml")) })
}

//Personal.AI order the ending
