package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/CohortMap/internal/application/orgchart"
	"github.com/turtacn/CohortMap/internal/config"
	"github.com/turtacn/CohortMap/internal/testutil"
)

func writeSources(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()
	interns := filepath.Join(dir, testutil.InternsUpload().Name)
	leads := filepath.Join(dir, testutil.LeadsUpload().Name)
	require.NoError(t, os.WriteFile(interns, testutil.InternsUpload().Data, 0o600))
	require.NoError(t, os.WriteFile(leads, testutil.LeadsUpload().Data, 0o600))
	return interns, leads
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Server.Host = "127.0.0.1"
	cfg.Server.GRPCPort = 0
	cfg.Metrics.Enabled = true
	return cfg
}

func TestNew_MemoryBackends_ServesDefaultDataset(t *testing.T) {
	cfg := testConfig(t)
	cfg.Sources.InternsPath, cfg.Sources.LeadsPath = writeSources(t)
	log := testutil.NewMockLogger()

	a, err := New(cfg, log)
	require.NoError(t, err)
	defer a.Close()

	require.NoError(t, a.LoadSources(context.Background()))
	assert.True(t, log.HasMessage("info", "default dataset loaded"))

	rec := httptest.NewRecorder()
	a.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/regions", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Regions []string `json:"regions"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body.Regions, "Kerala")

	rec = httptest.NewRecorder()
	a.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	a.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, cfg.Metrics.Path, nil))
	assert.Contains(t, rec.Body.String(), "cohortmap_dataset_ingest_total")
}

func TestNew_WithoutSources(t *testing.T) {
	a, err := New(testConfig(t), nil)
	require.NoError(t, err)
	defer a.Close()

	assert.NoError(t, a.LoadSources(context.Background()))
	_, err = a.Service.Regions(context.Background(), "")
	assert.Error(t, err)
}

func TestNew_RedisBackends(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := testConfig(t)
	cfg.Cache.Backend = config.BackendRedis
	cfg.Session.Backend = config.BackendRedis
	cfg.Redis.Addr = mr.Addr()

	a, err := New(cfg, nil)
	require.NoError(t, err)
	defer a.Close()

	res, err := a.Service.Ingest(context.Background(), &orgchart.IngestInput{
		Interns: orgchart.Upload{Name: "AIInterns.csv", Data: []byte(testutil.InternsCSV)},
		Leads:   orgchart.Upload{Name: "TechLeads.csv", Data: []byte(testutil.LeadsCSV)},
	})
	require.NoError(t, err)
	assert.True(t, mr.Exists(cfg.Redis.KeyPrefix+"session:"+res.SessionID))

	regions, err := a.Service.Regions(context.Background(), res.SessionID)
	require.NoError(t, err)
	assert.Contains(t, regions, "Goa")
}

func TestNew_UnreachableObjectStoreClosesRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := testConfig(t)
	cfg.Session.Backend = config.BackendRedis
	cfg.Redis.Addr = mr.Addr()
	cfg.MinIO.Enabled = true
	cfg.MinIO.Endpoint = "127.0.0.1:1"
	cfg.MinIO.Bucket = "exports"

	_, err := New(cfg, nil)
	assert.Error(t, err)
}

func TestNew_InvalidPolicy(t *testing.T) {
	cfg := testConfig(t)
	cfg.Hierarchy.DuplicatePolicy = "median"

	_, err := New(cfg, nil)
	assert.Error(t, err)
}

func TestRun_StopsOnCancel(t *testing.T) {
	cfg := testConfig(t)
	cfg.Server.Port = 0
	cfg.Server.ShutdownTimeout = time.Second
	a, err := New(cfg, nil)
	require.NoError(t, err)
	defer a.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

//Personal.AI order the ending
