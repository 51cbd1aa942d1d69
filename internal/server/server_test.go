package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/secador-solar/sensorhub/internal/config"
	"github.com/secador-solar/sensorhub/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Server: config.ServerConfig{Host: "127.0.0.1", Port: 0, ShutdownTimeout: time.Second},
		Database: config.DatabaseConfig{
			Driver: config.DriverSQLite,
			SQLite: config.SQLiteConfig{Path: filepath.Join(t.TempDir(), "hub.db")},
		},
		Auth:       config.AuthConfig{JWTSecret: "test-secret", TokenTTL: 30 * time.Minute},
		Monitoring: config.MonitoringConfig{LogLevel: "info", MetricsPath: "/metrics"},
		CORS:       config.CORSConfig{AllowedOrigins: []string{"http://localhost:5173"}},
		Time:       config.TimeConfig{Zone: "America/Bogota"},
	}
}

func TestSetupServesHealth(t *testing.T) {
	s := New(testConfig(t), "1.2.3")
	require.NoError(t, s.Setup(context.Background()))
	t.Cleanup(func() { s.Close() })

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body healthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, healthResponse{Status: "ok", Version: "1.2.3", Database: "ok"}, body)
}

func TestHealthReportsUnreachableDatabase(t *testing.T) {
	s := New(testConfig(t), "dev")
	require.NoError(t, s.Setup(context.Background()))
	require.NoError(t, s.db.GetDB().Close())

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health/", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), `"database":"unreachable"`)
}

func TestCleanupEventsReachMetrics(t *testing.T) {
	ctx := context.Background()
	s := New(testConfig(t), "dev")
	require.NoError(t, s.Setup(ctx))
	t.Cleanup(func() { s.Close() })

	svc := s.HubService()
	created, err := svc.CreateController(ctx, models.ControllerCreate{Name: "C1"})
	require.NoError(t, err)
	_, err = svc.DeleteController(ctx, created.Controller.ID)
	require.NoError(t, err)

	expected := `
# HELP sensorhub_events_total Domain events recorded by the hub.
# TYPE sensorhub_events_total counter
sensorhub_events_total{event="controller.deleted"} 1
sensorhub_events_total{event="ensayo.deleted"} 1
sensorhub_events_total{event="readings.deleted"} 1
`
	assert.Eventually(t, func() bool {
		return promtest.GatherAndCompare(s.monitoring.Registry(), strings.NewReader(expected),
			"sensorhub_events_total") == nil
	}, time.Second, 10*time.Millisecond)
}

func TestSetupRejectsBadZone(t *testing.T) {
	cfg := testConfig(t)
	cfg.Time.Zone = "Mars/Olympus"

	s := New(cfg, "dev")
	assert.Error(t, s.Setup(context.Background()))
	assert.Nil(t, s.db)
}
