package project

import (
	"time"

	"github.com/google/uuid"
	"github.com/ngo-pm/backend/internal/domain/project"
	"github.com/shopspring/decimal"
)

// DeadlineLayout is the calendar date format accepted for deadlines
const DeadlineLayout = "2006-01-02"

// CreateProjectRequest represents a request to create a new project
type CreateProjectRequest struct {
	Name        string           `json:"name" binding:"required,min=1,max=200"`
	Description string           `json:"description" binding:"max=5000"`
	Budget      *decimal.Decimal `json:"budget"`
	Deadline    *string          `json:"deadline" binding:"omitempty,deadline_date"`
	CreatedBy   uuid.UUID        `json:"-"`
}

// UpdateProjectRequest represents a partial project update
type UpdateProjectRequest struct {
	Name          *string          `json:"name" binding:"omitempty,min=1,max=200"`
	Description   *string          `json:"description" binding:"omitempty,max=5000"`
	Budget        *decimal.Decimal `json:"budget"`
	Deadline      *string          `json:"deadline" binding:"omitempty,deadline_date"`
	ClearDeadline bool             `json:"clear_deadline"`
	Progress      *int             `json:"progress" binding:"omitempty,min=0,max=100"`
}

// ChangeStatusRequest represents an explicit status change
type ChangeStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=active on-hold completed cancelled overdue"`
}

// ProjectListFilter represents filter options for project list
type ProjectListFilter struct {
	Search   string `form:"search"`
	Status   string `form:"status" binding:"omitempty,oneof=active on-hold completed cancelled overdue"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string `form:"order_by" binding:"omitempty,oneof=name deadline days_left status budget created_at updated_at progress"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ProjectResponse represents a project in API responses
type ProjectResponse struct {
	ID                      uuid.UUID              `json:"id"`
	OrganizationID          uuid.UUID              `json:"organization_id"`
	Name                    string                 `json:"name"`
	Description             string                 `json:"description"`
	Budget                  decimal.Decimal        `json:"budget"`
	Progress                int                    `json:"progress"`
	Status                  string                 `json:"status"`
	Deadline                *string                `json:"deadline"`
	DaysLeft                *int                   `json:"days_left"`
	IsOverdue               bool                   `json:"is_overdue"`
	OverdueNotificationSent bool                   `json:"overdue_notification_sent"`
	DeadlineStatus          project.DeadlineStatus `json:"deadline_status"`
	CreatedBy               *uuid.UUID             `json:"created_by,omitempty"`
	CreatedAt               time.Time              `json:"created_at"`
	UpdatedAt               time.Time              `json:"updated_at"`
	Version                 int                    `json:"version"`
}

// DeadlineStatusResponse is the deadline label of one project
type DeadlineStatusResponse struct {
	ProjectID uuid.UUID `json:"project_id"`
	Deadline  *string   `json:"deadline"`
	project.DeadlineStatus
}

// ToProjectResponse converts a domain Project to ProjectResponse
func ToProjectResponse(p *project.Project, now time.Time) ProjectResponse {
	return ProjectResponse{
		ID:                      p.ID,
		OrganizationID:          p.OrganizationID,
		Name:                    p.Name,
		Description:             p.Description,
		Budget:                  p.Budget,
		Progress:                p.Progress,
		Status:                  p.Status.String(),
		Deadline:                formatDeadline(p.Deadline),
		DaysLeft:                p.DaysLeft,
		IsOverdue:               p.IsOverdue,
		OverdueNotificationSent: p.OverdueNotificationSent,
		DeadlineStatus:          p.DeadlineStatus(now),
		CreatedBy:               p.CreatedBy,
		CreatedAt:               p.CreatedAt,
		UpdatedAt:               p.UpdatedAt,
		Version:                 p.Version,
	}
}

func formatDeadline(deadline *time.Time) *string {
	if deadline == nil {
		return nil
	}
	s := deadline.Format(DeadlineLayout)
	return &s
}
