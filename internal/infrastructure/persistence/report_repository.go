package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/ngo-pm/backend/internal/domain/report"
	"github.com/ngo-pm/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormProgressReportRepository implements report.Repository using GORM
type GormProgressReportRepository struct {
	db *gorm.DB
}

// NewGormProgressReportRepository creates a new GormProgressReportRepository
func NewGormProgressReportRepository(db *gorm.DB) *GormProgressReportRepository {
	return &GormProgressReportRepository{db: db}
}

// Create inserts a report
func (r *GormProgressReportRepository) Create(ctx context.Context, rep *report.ProgressReport) error {
	return translateError(r.db.WithContext(ctx).Create(models.ProgressReportModelFromDomain(rep)).Error)
}

// Save writes the review state of a report
func (r *GormProgressReportRepository) Save(ctx context.Context, rep *report.ProgressReport) error {
	model := models.ProgressReportModelFromDomain(rep)
	result := r.db.WithContext(ctx).
		Model(&models.ProgressReportModel{}).
		Where("id = ? AND organization_id = ?", rep.ID, rep.OrganizationID).
		Select("status", "reviewed_by", "review_note", "reviewed_at", "version", "updated_at").
		Updates(model)
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return translateError(gorm.ErrRecordNotFound)
	}
	return nil
}

// FindByIDForOrg finds a report by ID within an organization
func (r *GormProgressReportRepository) FindByIDForOrg(ctx context.Context, orgID, id uuid.UUID) (*report.ProgressReport, error) {
	var model models.ProgressReportModel
	if err := r.db.WithContext(ctx).
		Scopes(forOrganization(orgID)).
		Where("id = ?", id).
		First(&model).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// ListByProject returns a project's reports, newest first
func (r *GormProgressReportRepository) ListByProject(ctx context.Context, orgID, projectID uuid.UUID) ([]*report.ProgressReport, error) {
	return r.find(ctx, orgID, "created_at DESC", "project_id = ?", projectID)
}

// ListPending returns the organization's reports awaiting review, oldest first
func (r *GormProgressReportRepository) ListPending(ctx context.Context, orgID uuid.UUID) ([]*report.ProgressReport, error) {
	return r.find(ctx, orgID, "created_at ASC", "status = ?", report.StatusSubmitted)
}

func (r *GormProgressReportRepository) find(ctx context.Context, orgID uuid.UUID, order, where string, args ...any) ([]*report.ProgressReport, error) {
	var rows []models.ProgressReportModel
	if err := r.db.WithContext(ctx).
		Scopes(forOrganization(orgID)).
		Where(where, args...).
		Order(order).
		Find(&rows).Error; err != nil {
		return nil, err
	}

	reports := make([]*report.ProgressReport, len(rows))
	for i := range rows {
		reports[i] = rows[i].ToDomain()
	}
	return reports, nil
}

var _ report.Repository = (*GormProgressReportRepository)(nil)
