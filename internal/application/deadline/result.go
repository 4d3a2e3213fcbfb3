package deadline

import (
	"time"

	"github.com/google/uuid"
	"github.com/ngo-pm/backend/internal/domain/notification"
)

// ProjectError records a per-project failure within a sweep
type ProjectError struct {
	ProjectID uuid.UUID `json:"project_id"`
	Stage     string    `json:"stage"`
	Error     string    `json:"error"`
}

// Sweep stages used in ProjectError
const (
	StageUpdate = "update"
	StageNotify = "notify"
	StageMark   = "mark_notified"
)

// SweepResult summarizes one run of the deadline tracker
type SweepResult struct {
	StartedAt    time.Time                 `json:"started_at"`
	FinishedAt   time.Time                 `json:"finished_at"`
	DurationMs   int64                     `json:"duration_ms"`
	Skipped      bool                      `json:"skipped"`
	Scanned      int                       `json:"scanned"`
	Updated      int                       `json:"updated"`
	Failed       int                       `json:"failed"`
	Transitioned int                       `json:"transitioned"`
	NewlyOverdue int                       `json:"newly_overdue"`
	Notified     int                       `json:"notified"`
	Messages     notification.FanOutResult `json:"messages"`
	Errors       []ProjectError            `json:"errors,omitempty"`
}

func (r *SweepResult) addError(id uuid.UUID, stage string, err error) {
	r.Errors = append(r.Errors, ProjectError{ProjectID: id, Stage: stage, Error: err.Error()})
}

func (r *SweepResult) finish(at time.Time) {
	r.FinishedAt = at
	r.DurationMs = at.Sub(r.StartedAt).Milliseconds()
}
