package handlers

import (
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scoutx/analytics-service/internal/similarity"
)

func newHealthRouter(t *testing.T, datasetPath string) (*gin.Engine, *similarity.Engine) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	log := testLogger()
	engine := similarity.NewEngine([]string{datasetPath}, log)
	h := NewHealthHandler(redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	}), engine, log)

	r := gin.New()
	r.GET("/health", h.GetHealth)
	r.GET("/ready", h.GetReady)
	return r, engine
}

func TestGetHealth_RedisDown(t *testing.T) {
	r, _ := newHealthRouter(t, filepath.Join(t.TempDir(), "missing.csv"))

	w, body := doJSON(t, r, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "unhealthy", body["status"])

	checks := body["checks"].(map[string]interface{})
	assert.Contains(t, checks["redis"], "failed")
	assert.Equal(t, "pending", checks["similarity_index"])
}

func TestGetReady_TriggersLazyBuild(t *testing.T) {
	path := filepath.Join(t.TempDir(), "players.csv")
	require.NoError(t, os.WriteFile(path, []byte(playersCSV), 0o644))
	r, engine := newHealthRouter(t, path)

	assert.False(t, engine.Ready())

	w, body := doJSON(t, r, http.MethodGet, "/ready", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["ready"])
	assert.True(t, engine.Ready())
}

func TestGetReady_DatasetMissing(t *testing.T) {
	r, _ := newHealthRouter(t, filepath.Join(t.TempDir(), "missing.csv"))

	w, body := doJSON(t, r, http.MethodGet, "/ready", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, false, body["ready"])
}
