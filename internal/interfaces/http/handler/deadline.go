package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ngo-pm/backend/internal/application/deadline"
	"github.com/ngo-pm/backend/internal/infrastructure/scheduler"
	"github.com/ngo-pm/backend/internal/interfaces/http/dto"
)

// SweepController is the part of the deadline scheduler the API drives
type SweepController interface {
	TriggerImmediateSweep(ctx context.Context) (*deadline.SweepResult, error)
	Status() scheduler.Status
}

// DeadlineHandler exposes the deadline scheduler
type DeadlineHandler struct {
	BaseHandler
	scheduler SweepController
}

// NewDeadlineHandler creates a new deadline handler
func NewDeadlineHandler(scheduler SweepController) *DeadlineHandler {
	return &DeadlineHandler{scheduler: scheduler}
}

// Sweep godoc
// @Summary      Run a deadline sweep now
// @Description  Recomputes days left for every trackable project and notifies members about newly overdue ones
// @Tags         deadlines
// @Security     BearerAuth
// @Produce      json
// @Success      200 {object} dto.Response{data=deadline.SweepResult}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      503 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /deadlines/sweep [post]
func (h *DeadlineHandler) Sweep(c *gin.Context) {
	result, err := h.scheduler.TriggerImmediateSweep(c.Request.Context())
	switch {
	case errors.Is(err, scheduler.ErrSweepInProgress), errors.Is(err, deadline.ErrSweepInProgress):
		h.Error(c, http.StatusConflict, dto.ErrCodeSweepInProgress, "A deadline sweep is already running")
		return
	case errors.Is(err, scheduler.ErrSchedulerNotRunning):
		h.Error(c, http.StatusServiceUnavailable, dto.ErrCodeSchedulerNotRunning, "The deadline scheduler is not running")
		return
	case err != nil:
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Status godoc
// @Summary      Deadline scheduler state
// @Tags         deadlines
// @Security     BearerAuth
// @Produce      json
// @Success      200 {object} dto.Response{data=scheduler.Status}
// @Router       /deadlines/status [get]
func (h *DeadlineHandler) Status(c *gin.Context) {
	h.Success(c, h.scheduler.Status())
}
