package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ngo-pm/backend/internal/application/deadline"
	"github.com/ngo-pm/backend/internal/infrastructure/scheduler"
	"github.com/ngo-pm/backend/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSweepController struct {
	result *deadline.SweepResult
	err    error
	status scheduler.Status
	calls  int
}

func (f *fakeSweepController) TriggerImmediateSweep(context.Context) (*deadline.SweepResult, error) {
	f.calls++
	return f.result, f.err
}

func (f *fakeSweepController) Status() scheduler.Status {
	return f.status
}

func deadlineRouter(ctrl SweepController) *gin.Engine {
	h := NewDeadlineHandler(ctrl)
	router := gin.New()
	router.POST("/deadlines/sweep", h.Sweep)
	router.GET("/deadlines/status", h.Status)
	return router
}

func TestDeadlineHandler_Sweep(t *testing.T) {
	tests := []struct {
		name   string
		ctrl   *fakeSweepController
		status int
		code   string
	}{
		{
			name:   "completed sweep",
			ctrl:   &fakeSweepController{result: &deadline.SweepResult{Scanned: 3, Updated: 3, NewlyOverdue: 1, Notified: 1}},
			status: http.StatusOK,
		},
		{
			name:   "scheduler busy",
			ctrl:   &fakeSweepController{err: scheduler.ErrSweepInProgress},
			status: http.StatusConflict,
			code:   dto.ErrCodeSweepInProgress,
		},
		{
			name:   "another replica holds the lock",
			ctrl:   &fakeSweepController{err: deadline.ErrSweepInProgress},
			status: http.StatusConflict,
			code:   dto.ErrCodeSweepInProgress,
		},
		{
			name:   "scheduler stopped",
			ctrl:   &fakeSweepController{err: scheduler.ErrSchedulerNotRunning},
			status: http.StatusServiceUnavailable,
			code:   dto.ErrCodeSchedulerNotRunning,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			deadlineRouter(tt.ctrl).ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/deadlines/sweep", nil))

			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, 1, tt.ctrl.calls)
			resp := decodeResponse(t, w)
			if tt.code == "" {
				require.True(t, resp.Success)
				data := resp.Data.(map[string]any)
				assert.EqualValues(t, 3, data["scanned"])
				assert.EqualValues(t, 1, data["newly_overdue"])
				return
			}
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.code, resp.Error.Code)
		})
	}
}

func TestDeadlineHandler_Status(t *testing.T) {
	lastRun := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	ctrl := &fakeSweepController{status: scheduler.Status{
		Running:     true,
		Interval:    "24h0m0s",
		LastRunAt:   &lastRun,
		SweepsTotal: 4,
	}}

	w := httptest.NewRecorder()
	deadlineRouter(ctrl).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/deadlines/status", nil))

	require.Equal(t, http.StatusOK, w.Code)
	data := decodeResponse(t, w).Data.(map[string]any)
	assert.Equal(t, true, data["running"])
	assert.Equal(t, "24h0m0s", data["interval"])
	assert.EqualValues(t, 4, data["sweeps_total"])
	assert.Equal(t, 0, ctrl.calls)
}
