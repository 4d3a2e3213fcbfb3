package models

import (
	"time"

	"github.com/ngo-pm/backend/internal/domain/project"
	"github.com/shopspring/decimal"
)

// ProjectModel is the persistence model for the Project aggregate. The
// days_left, is_overdue and overdue_notification_sent columns belong to the
// deadline tracker.
type ProjectModel struct {
	OrgAggregateModel
	Name                    string          `gorm:"type:varchar(200);not null"`
	Description             string          `gorm:"type:text"`
	Budget                  decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	Progress                int             `gorm:"not null;default:0"`
	Status                  project.Status  `gorm:"type:varchar(20);not null;default:'active';index"`
	Deadline                *time.Time      `gorm:"index"`
	DaysLeft                *int
	IsOverdue               bool `gorm:"not null;default:false"`
	OverdueNotificationSent bool `gorm:"not null;default:false"`
	OverdueNotifiedAt       *time.Time
}

// TableName returns the table name for GORM
func (ProjectModel) TableName() string {
	return "projects"
}

// ToDomain converts the persistence model to a domain Project.
func (m *ProjectModel) ToDomain() *project.Project {
	return &project.Project{
		OrgAggregateRoot:        m.orgRoot(),
		Name:                    m.Name,
		Description:             m.Description,
		Budget:                  m.Budget,
		Progress:                m.Progress,
		Status:                  m.Status,
		Deadline:                m.Deadline,
		DaysLeft:                m.DaysLeft,
		IsOverdue:               m.IsOverdue,
		OverdueNotificationSent: m.OverdueNotificationSent,
	}
}

// FromDomain populates the persistence model from a domain Project.
func (m *ProjectModel) FromDomain(p *project.Project) {
	m.setOrgRoot(p.OrgAggregateRoot)
	m.Name = p.Name
	m.Description = p.Description
	m.Budget = p.Budget
	m.Progress = p.Progress
	m.Status = p.Status
	m.Deadline = p.Deadline
	m.DaysLeft = p.DaysLeft
	m.IsOverdue = p.IsOverdue
	m.OverdueNotificationSent = p.OverdueNotificationSent
}

// ProjectModelFromDomain creates a new persistence model from a domain Project.
func ProjectModelFromDomain(p *project.Project) *ProjectModel {
	m := &ProjectModel{}
	m.FromDomain(p)
	return m
}
