package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthHandler_Liveness(t *testing.T) {
	h := NewHealthHandler("1.2.3")
	w := httptest.NewRecorder()
	h.Liveness(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var resp LivenessResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "alive", resp.Status)
	assert.Equal(t, "1.2.3", resp.Version)
}

func TestHealthHandler_ReadinessNoCheckers(t *testing.T) {
	w := httptest.NewRecorder()
	NewHealthHandler("dev").Readiness(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ready"}`, w.Body.String())
}

func TestHealthHandler_Readiness(t *testing.T) {
	ok := CheckFunc{ComponentName: "sessions", Fn: func(context.Context) error { return nil }}
	bad := CheckFunc{ComponentName: "objects", Fn: func(context.Context) error { return fmt.Errorf("connection refused") }}

	t.Run("all healthy", func(t *testing.T) {
		w := httptest.NewRecorder()
		NewHealthHandler("dev", ok).Readiness(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("one failing", func(t *testing.T) {
		h := NewHealthHandler("dev", ok, bad)
		var mu sync.Mutex
		seen := map[string]bool{}
		h.OnCheck(func(component string, up bool) {
			mu.Lock()
			seen[component] = up
			mu.Unlock()
		})

		w := httptest.NewRecorder()
		h.Readiness(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
		require.Equal(t, http.StatusServiceUnavailable, w.Code)

		var resp ReadinessResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "not_ready", resp.Status)
		assert.Equal(t, "healthy", resp.Components["sessions"].Status)
		assert.Equal(t, "unhealthy", resp.Components["objects"].Status)
		assert.Equal(t, "connection refused", resp.Components["objects"].Error)
		assert.Equal(t, map[string]bool{"sessions": true, "objects": false}, seen)
	})
}

//Personal.AI order the ending
