package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/digital-station/platform/internal/shared/config"
	"github.com/digital-station/platform/internal/shared/events"
	"github.com/digital-station/platform/internal/shared/ratelimit"
)

func testApp() *App {
	return &App{
		Config: &config.Config{
			Server: config.ServerConfig{Env: "test", RequestTimeout: time.Second, AllowedOrigins: []string{"http://localhost:5173"}},
			Auth:   config.AuthConfig{JWTSecret: "router-test", TokenTTL: time.Hour},
		},
		Publisher: events.Nop{},
		Limiter:   ratelimit.NewLocal(10, time.Minute),
	}
}

func TestOpsEndpointsWithoutDatabase(t *testing.T) {
	r, err := newRouter(testApp())
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"healthy"}`, rec.Body.String())
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	var ready map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&ready))
	assert.Equal(t, "not ready", ready["status"])
	checks := ready["checks"].(map[string]any)
	assert.Equal(t, "not ready", checks["database"])
	assert.Equal(t, "not configured", checks["kurrentdb"])

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestDomainRoutesWithoutDatabase(t *testing.T) {
	r, err := newRouter(testApp())
	require.NoError(t, err)

	tests := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/fir/register_incident"},
		{http.MethodGet, "/fir/details?fir_id=abc"},
		{http.MethodPost, "/citizen/citizenAuth"},
		{http.MethodGet, "/citizen/myfirs"},
		{http.MethodGet, "/government/escalations"},
		{http.MethodPost, "/policeauth/policeauth"},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))
			assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
			assert.JSONEq(t, `{"detail":"database unavailable"}`, rec.Body.String())
		})
	}
}

func TestRouterRejectsMissingSecret(t *testing.T) {
	app := testApp()
	app.Config.Auth.JWTSecret = ""
	_, err := newRouter(app)
	assert.Error(t, err)
}
