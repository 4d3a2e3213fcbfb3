package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/ngo-pm/backend/internal/domain/notification"
	"github.com/ngo-pm/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormDeliveryRepository implements notification.DeliveryRepository using GORM
type GormDeliveryRepository struct {
	db *gorm.DB
}

// NewGormDeliveryRepository creates a new GORM-based delivery repository
func NewGormDeliveryRepository(db *gorm.DB) *GormDeliveryRepository {
	return &GormDeliveryRepository{db: db}
}

// Save persists one or more new deliveries
func (r *GormDeliveryRepository) Save(ctx context.Context, deliveries ...*notification.Delivery) error {
	if len(deliveries) == 0 {
		return nil
	}

	rows := make([]*models.DeliveryModel, len(deliveries))
	for i, d := range deliveries {
		rows[i] = models.DeliveryModelFromDomain(d)
	}
	return r.db.WithContext(ctx).Create(rows).Error
}

// ClaimDue locks up to limit due deliveries, moves them to PROCESSING and
// returns them. Rows locked by another dispatcher are skipped.
func (r *GormDeliveryRepository) ClaimDue(ctx context.Context, now time.Time, limit int) ([]*notification.Delivery, error) {
	if limit <= 0 {
		return nil, nil
	}

	var rows []models.DeliveryModel
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Clauses(clause.Locking{
				Strength: "UPDATE",
				Options:  "SKIP LOCKED",
			}).
			Where("status = ? OR (status = ? AND next_retry_at <= ?)",
				notification.DeliveryPending, notification.DeliveryFailed, now).
			Order("created_at ASC").
			Limit(limit).
			Find(&rows).Error; err != nil {
			return err
		}

		if len(rows) == 0 {
			return nil
		}

		ids := make([]uuid.UUID, len(rows))
		for i := range rows {
			ids[i] = rows[i].ID
		}

		if err := tx.Model(&models.DeliveryModel{}).
			Where("id IN ?", ids).
			Updates(map[string]any{
				"status":     notification.DeliveryProcessing,
				"updated_at": now,
			}).Error; err != nil {
			return err
		}

		for i := range rows {
			rows[i].Status = notification.DeliveryProcessing
			rows[i].UpdatedAt = now
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	deliveries := make([]*notification.Delivery, len(rows))
	for i := range rows {
		deliveries[i] = rows[i].ToDomain()
	}
	return deliveries, nil
}

// Update writes back a delivery after a send attempt
func (r *GormDeliveryRepository) Update(ctx context.Context, d *notification.Delivery) error {
	return r.db.WithContext(ctx).Save(models.DeliveryModelFromDomain(d)).Error
}

// FindByID retrieves a single delivery
func (r *GormDeliveryRepository) FindByID(ctx context.Context, id uuid.UUID) (*notification.Delivery, error) {
	var model models.DeliveryModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindDead lists an organization's dead-lettered deliveries, most recent first
func (r *GormDeliveryRepository) FindDead(ctx context.Context, orgID uuid.UUID, page, pageSize int) ([]*notification.Delivery, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}

	query := r.db.WithContext(ctx).
		Model(&models.DeliveryModel{}).
		Scopes(forOrganization(orgID)).
		Where("status = ?", notification.DeliveryDead)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.DeliveryModel
	if err := query.
		Order("updated_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	deliveries := make([]*notification.Delivery, len(rows))
	for i := range rows {
		deliveries[i] = rows[i].ToDomain()
	}
	return deliveries, total, nil
}

// DeleteSentBefore purges sent deliveries older than before
func (r *GormDeliveryRepository) DeleteSentBefore(ctx context.Context, before time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("status = ? AND sent_at < ?", notification.DeliverySent, before).
		Delete(&models.DeliveryModel{})
	return result.RowsAffected, result.Error
}

// CountByStatus returns the number of deliveries per status
func (r *GormDeliveryRepository) CountByStatus(ctx context.Context) (map[notification.DeliveryStatus]int64, error) {
	type statusCount struct {
		Status notification.DeliveryStatus
		Count  int64
	}

	var results []statusCount
	if err := r.db.WithContext(ctx).
		Model(&models.DeliveryModel{}).
		Select("status, count(*) as count").
		Group("status").
		Scan(&results).Error; err != nil {
		return nil, err
	}

	counts := make(map[notification.DeliveryStatus]int64, len(results))
	for _, c := range results {
		counts[c.Status] = c.Count
	}
	return counts, nil
}

var _ notification.DeliveryRepository = (*GormDeliveryRepository)(nil)
