// Package report models the progress reports officers submit against a
// project and the review workflow administrators apply to them.
package report

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ngo-pm/backend/internal/domain/shared"
)

// Status of a progress report
type Status string

const (
	StatusSubmitted Status = "submitted"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
)

// ProgressReport is an officer's account of work done on a project
type ProgressReport struct {
	shared.OrgAggregateRoot
	ProjectID   uuid.UUID
	SubmittedBy uuid.UUID
	Title       string
	Summary     string
	Progress    int
	Status      Status
	ReviewedBy  *uuid.UUID
	ReviewNote  string
	ReviewedAt  *time.Time
}

// NewProgressReport creates a submitted report
func NewProgressReport(orgID, projectID, submittedBy uuid.UUID, title, summary string, progress int) (*ProgressReport, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, shared.NewDomainError("INVALID_TITLE", "Report title cannot be empty")
	}
	if len(title) > 200 {
		return nil, shared.NewDomainError("INVALID_TITLE", "Report title cannot exceed 200 characters")
	}
	if strings.TrimSpace(summary) == "" {
		return nil, shared.NewDomainError("INVALID_SUMMARY", "Report summary cannot be empty")
	}
	if progress < 0 || progress > 100 {
		return nil, shared.NewDomainError("INVALID_PROGRESS", "Progress must be between 0 and 100")
	}

	return &ProgressReport{
		OrgAggregateRoot: shared.NewOrgAggregateRootWithCreator(orgID, submittedBy),
		ProjectID:        projectID,
		SubmittedBy:      submittedBy,
		Title:            title,
		Summary:          summary,
		Progress:         progress,
		Status:           StatusSubmitted,
	}, nil
}

// Approve accepts the report
func (r *ProgressReport) Approve(reviewer uuid.UUID, note string) error {
	return r.review(StatusApproved, reviewer, note)
}

// Reject sends the report back; a note explaining why is required
func (r *ProgressReport) Reject(reviewer uuid.UUID, note string) error {
	if strings.TrimSpace(note) == "" {
		return shared.NewDomainError("INVALID_NOTE", "A note is required when rejecting a report")
	}
	return r.review(StatusRejected, reviewer, note)
}

// IsPending reports whether the report still awaits review
func (r *ProgressReport) IsPending() bool {
	return r.Status == StatusSubmitted
}

func (r *ProgressReport) review(status Status, reviewer uuid.UUID, note string) error {
	if !r.IsPending() {
		return shared.NewDomainError("INVALID_STATE", "Report has already been reviewed")
	}
	now := time.Now()
	r.Status = status
	r.ReviewedBy = &reviewer
	r.ReviewNote = strings.TrimSpace(note)
	r.ReviewedAt = &now
	r.UpdatedAt = now
	r.IncrementVersion()
	return nil
}

// Repository persists progress reports
type Repository interface {
	Create(ctx context.Context, r *ProgressReport) error
	Save(ctx context.Context, r *ProgressReport) error
	FindByIDForOrg(ctx context.Context, orgID, id uuid.UUID) (*ProgressReport, error)
	ListByProject(ctx context.Context, orgID, projectID uuid.UUID) ([]*ProgressReport, error)
	ListPending(ctx context.Context, orgID uuid.UUID) ([]*ProgressReport, error)
}
