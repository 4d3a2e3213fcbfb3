package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/ngo-pm/backend/internal/domain/report"
)

// ProgressReportModel is the persistence model for the ProgressReport aggregate.
type ProgressReportModel struct {
	OrgAggregateModel
	ProjectID   uuid.UUID     `gorm:"type:uuid;not null;index"`
	SubmittedBy uuid.UUID     `gorm:"type:uuid;not null"`
	Title       string        `gorm:"type:varchar(200);not null"`
	Summary     string        `gorm:"type:text;not null"`
	Progress    int           `gorm:"not null"`
	Status      report.Status `gorm:"type:varchar(20);not null;default:'submitted';index"`
	ReviewedBy  *uuid.UUID    `gorm:"type:uuid"`
	ReviewNote  string        `gorm:"type:text"`
	ReviewedAt  *time.Time
}

// TableName returns the table name for GORM
func (ProgressReportModel) TableName() string {
	return "progress_reports"
}

// ToDomain converts the persistence model to a domain ProgressReport.
func (m *ProgressReportModel) ToDomain() *report.ProgressReport {
	return &report.ProgressReport{
		OrgAggregateRoot: m.orgRoot(),
		ProjectID:        m.ProjectID,
		SubmittedBy:      m.SubmittedBy,
		Title:            m.Title,
		Summary:          m.Summary,
		Progress:         m.Progress,
		Status:           m.Status,
		ReviewedBy:       m.ReviewedBy,
		ReviewNote:       m.ReviewNote,
		ReviewedAt:       m.ReviewedAt,
	}
}

// FromDomain populates the persistence model from a domain ProgressReport.
func (m *ProgressReportModel) FromDomain(r *report.ProgressReport) {
	m.setOrgRoot(r.OrgAggregateRoot)
	m.ProjectID = r.ProjectID
	m.SubmittedBy = r.SubmittedBy
	m.Title = r.Title
	m.Summary = r.Summary
	m.Progress = r.Progress
	m.Status = r.Status
	m.ReviewedBy = r.ReviewedBy
	m.ReviewNote = r.ReviewNote
	m.ReviewedAt = r.ReviewedAt
}

// ProgressReportModelFromDomain creates a new persistence model from a domain ProgressReport.
func ProgressReportModelFromDomain(r *report.ProgressReport) *ProgressReportModel {
	m := &ProgressReportModel{}
	m.FromDomain(r)
	return m
}
