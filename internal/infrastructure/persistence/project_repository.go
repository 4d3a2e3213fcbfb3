package persistence

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ngo-pm/backend/internal/domain/project"
	"github.com/ngo-pm/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// projectAdminColumns are the columns written by Save. The tracker-owned
// columns (days_left, is_overdue, overdue_notification_sent) are absent.
var projectAdminColumns = []string{
	"name", "description", "budget", "progress", "status", "deadline", "version", "updated_at",
}

// GormProjectRepository implements project.Repository and project.TrackerStore using GORM
type GormProjectRepository struct {
	db *gorm.DB
}

// NewGormProjectRepository creates a new GormProjectRepository
func NewGormProjectRepository(db *gorm.DB) *GormProjectRepository {
	return &GormProjectRepository{db: db}
}

// Create inserts a project
func (r *GormProjectRepository) Create(ctx context.Context, p *project.Project) error {
	return translateError(r.db.WithContext(ctx).Create(models.ProjectModelFromDomain(p)).Error)
}

// Save writes the administrator-editable columns of a project
func (r *GormProjectRepository) Save(ctx context.Context, p *project.Project) error {
	model := models.ProjectModelFromDomain(p)
	result := r.db.WithContext(ctx).
		Model(&models.ProjectModel{}).
		Where("id = ? AND organization_id = ?", p.ID, p.OrganizationID).
		Select(projectAdminColumns).
		Updates(model)
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return translateError(gorm.ErrRecordNotFound)
	}
	return nil
}

// FindByID finds a project by its ID regardless of organization
func (r *GormProjectRepository) FindByID(ctx context.Context, id uuid.UUID) (*project.Project, error) {
	var model models.ProjectModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindByIDForOrg finds a project by ID within an organization
func (r *GormProjectRepository) FindByIDForOrg(ctx context.Context, orgID, id uuid.UUID) (*project.Project, error) {
	var model models.ProjectModel
	if err := r.db.WithContext(ctx).
		Scopes(forOrganization(orgID)).
		Where("id = ?", id).
		First(&model).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// List returns one page of an organization's projects and the total match count
func (r *GormProjectRepository) List(ctx context.Context, orgID uuid.UUID, filter project.ListFilter) ([]*project.Project, int64, error) {
	query := r.db.WithContext(ctx).
		Model(&models.ProjectModel{}).
		Scopes(forOrganization(orgID))

	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.ProjectModel
	if err := query.
		Order(projectSort.orderBy(filter.OrderBy, filter.OrderDir)).
		Order(tieBreaker).
		Offset(filter.Offset()).
		Limit(filter.Limit()).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	return toDomainProjects(rows), total, nil
}

// Delete removes a project of the organization
func (r *GormProjectRepository) Delete(ctx context.Context, orgID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Scopes(forOrganization(orgID)).
		Where("id = ?", id).
		Delete(&models.ProjectModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return translateError(gorm.ErrRecordNotFound)
	}
	return nil
}

// ListTrackable returns every project with a deadline that is neither
// completed nor cancelled, across all organizations
func (r *GormProjectRepository) ListTrackable(ctx context.Context) ([]*project.Project, error) {
	var rows []models.ProjectModel
	if err := r.db.WithContext(ctx).
		Where("deadline IS NOT NULL AND status NOT IN ?", terminalStatuses()).
		Order("deadline ASC").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list trackable projects: %w", err)
	}
	return toDomainProjects(rows), nil
}

// ApplyDeadlineUpdate overwrites the tracker columns of one project. A
// project that became terminal since it was read is left alone.
func (r *GormProjectRepository) ApplyDeadlineUpdate(ctx context.Context, update project.DeadlineUpdate) error {
	result := r.db.WithContext(ctx).
		Model(&models.ProjectModel{}).
		Where("id = ? AND status NOT IN ?", update.ProjectID, terminalStatuses()).
		Updates(map[string]any{
			"days_left":  update.DaysLeft,
			"is_overdue": update.IsOverdue,
			"status":     update.Status,
			"updated_at": update.UpdatedAt,
		})
	if result.Error != nil {
		return fmt.Errorf("apply deadline update to project %s: %w", update.ProjectID, result.Error)
	}
	return nil
}

// MarkOverdueNotificationSent sets the one-shot notification flag
func (r *GormProjectRepository) MarkOverdueNotificationSent(ctx context.Context, id uuid.UUID, at time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&models.ProjectModel{}).
		Where("id = ?", id).
		UpdateColumns(map[string]any{
			"overdue_notification_sent": true,
			"overdue_notified_at":       at,
		})
	if result.Error != nil {
		return fmt.Errorf("mark overdue notification sent for project %s: %w", id, result.Error)
	}
	return nil
}

func terminalStatuses() []project.Status {
	return []project.Status{project.StatusCompleted, project.StatusCancelled}
}

func toDomainProjects(rows []models.ProjectModel) []*project.Project {
	projects := make([]*project.Project, len(rows))
	for i := range rows {
		projects[i] = rows[i].ToDomain()
	}
	return projects
}

var (
	_ project.Repository   = (*GormProjectRepository)(nil)
	_ project.TrackerStore = (*GormProjectRepository)(nil)
)
