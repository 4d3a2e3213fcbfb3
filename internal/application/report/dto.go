package report

import (
	"time"

	"github.com/google/uuid"
	"github.com/ngo-pm/backend/internal/domain/report"
)

// SubmitReportRequest represents a new progress report
type SubmitReportRequest struct {
	Title       string    `json:"title" binding:"required,min=1,max=200"`
	Summary     string    `json:"summary" binding:"required,min=1,max=10000"`
	Progress    *int      `json:"progress" binding:"required,min=0,max=100"`
	SubmittedBy uuid.UUID `json:"-"`
}

// ReviewReportRequest represents an approval or rejection
type ReviewReportRequest struct {
	Note       string    `json:"note" binding:"max=2000"`
	ReviewedBy uuid.UUID `json:"-"`
}

// ReportResponse represents a progress report in API responses
type ReportResponse struct {
	ID          uuid.UUID  `json:"id"`
	ProjectID   uuid.UUID  `json:"project_id"`
	SubmittedBy uuid.UUID  `json:"submitted_by"`
	Title       string     `json:"title"`
	Summary     string     `json:"summary"`
	Progress    int        `json:"progress"`
	Status      string     `json:"status"`
	ReviewedBy  *uuid.UUID `json:"reviewed_by,omitempty"`
	ReviewNote  string     `json:"review_note,omitempty"`
	ReviewedAt  *time.Time `json:"reviewed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// ToReportResponse converts a domain ProgressReport to ReportResponse
func ToReportResponse(r *report.ProgressReport) ReportResponse {
	return ReportResponse{
		ID:          r.ID,
		ProjectID:   r.ProjectID,
		SubmittedBy: r.SubmittedBy,
		Title:       r.Title,
		Summary:     r.Summary,
		Progress:    r.Progress,
		Status:      string(r.Status),
		ReviewedBy:  r.ReviewedBy,
		ReviewNote:  r.ReviewNote,
		ReviewedAt:  r.ReviewedAt,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

// ToReportResponses converts a list of reports
func ToReportResponses(reports []*report.ProgressReport) []ReportResponse {
	out := make([]ReportResponse, len(reports))
	for i, r := range reports {
		out[i] = ToReportResponse(r)
	}
	return out
}
