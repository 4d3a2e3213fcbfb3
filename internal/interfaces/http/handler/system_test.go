package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSystemHandler_Ready(t *testing.T) {
	ok := func(context.Context) error { return nil }
	down := func(context.Context) error { return errors.New("dial tcp: connection refused") }

	tests := []struct {
		name   string
		checks map[string]ReadinessCheck
		status int
		state  string
	}{
		{"all dependencies up", map[string]ReadinessCheck{"database": ok, "redis": ok}, http.StatusOK, "ready"},
		{"database down", map[string]ReadinessCheck{"database": down, "redis": ok}, http.StatusServiceUnavailable, "not_ready"},
		{"no checks", nil, http.StatusOK, "ready"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewSystemHandler("ngo-pm", "test", tt.checks)
			router := gin.New()
			router.GET("/ready", h.Ready)

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ready", nil))

			assert.Equal(t, tt.status, w.Code)
			var resp ReadinessResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tt.state, resp.Status)
			assert.Len(t, resp.Checks, len(tt.checks))
		})
	}
}

func TestSystemHandler_HealthAndInfo(t *testing.T) {
	h := NewSystemHandler("ngo-pm", "1.2.0", nil)
	router := gin.New()
	router.GET("/health", h.Health)
	router.GET("/info", h.Info)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"healthy"}`, w.Body.String())

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/info", nil))
	require.Equal(t, http.StatusOK, w.Code)
	data := decodeResponse(t, w).Data.(map[string]any)
	assert.Equal(t, "ngo-pm", data["name"])
	assert.Equal(t, "1.2.0", data["version"])
}
