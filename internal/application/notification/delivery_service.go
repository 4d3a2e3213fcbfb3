package notification

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	domain "github.com/ngo-pm/backend/internal/domain/notification"
	"github.com/ngo-pm/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// DeliveryService exposes the outbox dead letter queue to organization admins
type DeliveryService struct {
	repo   domain.DeliveryRepository
	logger *zap.Logger
}

// NewDeliveryService creates a new delivery service
func NewDeliveryService(repo domain.DeliveryRepository, logger *zap.Logger) *DeliveryService {
	return &DeliveryService{repo: repo, logger: logger}
}

// DeliveryDTO represents an outbox delivery
type DeliveryDTO struct {
	ID             uuid.UUID  `json:"id"`
	OrganizationID uuid.UUID  `json:"organization_id"`
	ProjectID      uuid.UUID  `json:"project_id"`
	Kind           string     `json:"kind"`
	RecipientEmail string     `json:"recipient_email"`
	Subject        string     `json:"subject"`
	Status         string     `json:"status"`
	RetryCount     int        `json:"retry_count"`
	MaxRetries     int        `json:"max_retries"`
	LastError      string     `json:"last_error,omitempty"`
	NextRetryAt    *time.Time `json:"next_retry_at,omitempty"`
	SentAt         *time.Time `json:"sent_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// DeliveryFilter represents pagination for dead letter listing
type DeliveryFilter struct {
	Page     int `form:"page,omitempty" binding:"omitempty,min=1"`
	PageSize int `form:"page_size,omitempty" binding:"omitempty,min=1,max=100"`
}

// DeliveryListResult is a page of deliveries
type DeliveryListResult struct {
	Deliveries []DeliveryDTO `json:"deliveries"`
	Total      int64         `json:"total"`
	Page       int           `json:"page"`
	PageSize   int           `json:"page_size"`
	TotalPages int           `json:"total_pages"`
}

// DeliveryStatsDTO counts deliveries per status
type DeliveryStatsDTO struct {
	Pending    int64 `json:"pending"`
	Processing int64 `json:"processing"`
	Sent       int64 `json:"sent"`
	Failed     int64 `json:"failed"`
	Dead       int64 `json:"dead"`
	Total      int64 `json:"total"`
}

// ListDead returns the dead-lettered deliveries of an organization
func (s *DeliveryService) ListDead(ctx context.Context, orgID uuid.UUID, filter DeliveryFilter) (*DeliveryListResult, error) {
	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}

	deliveries, total, err := s.repo.FindDead(ctx, orgID, page, pageSize)
	if err != nil {
		s.logger.Error("Failed to find dead deliveries", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to retrieve dead deliveries")
	}

	totalPages := int(total) / pageSize
	if int(total)%pageSize > 0 {
		totalPages++
	}

	dtos := make([]DeliveryDTO, len(deliveries))
	for i, d := range deliveries {
		dtos[i] = toDeliveryDTO(d)
	}
	return &DeliveryListResult{
		Deliveries: dtos,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}, nil
}

// RetryDead moves a dead delivery of the organization back to pending
func (s *DeliveryService) RetryDead(ctx context.Context, orgID, id uuid.UUID) (*DeliveryDTO, error) {
	delivery, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("DELIVERY_NOT_FOUND", "Delivery not found")
		}
		s.logger.Error("Failed to find delivery", zap.Error(err), zap.String("id", id.String()))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to retrieve delivery")
	}
	if delivery.OrganizationID != orgID {
		return nil, shared.NewDomainError("DELIVERY_NOT_FOUND", "Delivery not found")
	}

	if err := delivery.ResetForRetry(); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, delivery); err != nil {
		s.logger.Error("Failed to update delivery", zap.Error(err), zap.String("id", id.String()))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to retry delivery")
	}

	s.logger.Info("Dead delivery reset for retry",
		zap.String("id", id.String()),
		zap.String("recipient", delivery.RecipientEmail),
	)
	dto := toDeliveryDTO(delivery)
	return &dto, nil
}

// Stats returns delivery counts per status
func (s *DeliveryService) Stats(ctx context.Context) (*DeliveryStatsDTO, error) {
	counts, err := s.repo.CountByStatus(ctx)
	if err != nil {
		s.logger.Error("Failed to get delivery stats", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to get delivery stats")
	}

	var total int64
	for _, count := range counts {
		total += count
	}
	return &DeliveryStatsDTO{
		Pending:    counts[domain.DeliveryPending],
		Processing: counts[domain.DeliveryProcessing],
		Sent:       counts[domain.DeliverySent],
		Failed:     counts[domain.DeliveryFailed],
		Dead:       counts[domain.DeliveryDead],
		Total:      total,
	}, nil
}

func toDeliveryDTO(d *domain.Delivery) DeliveryDTO {
	return DeliveryDTO{
		ID:             d.ID,
		OrganizationID: d.OrganizationID,
		ProjectID:      d.ProjectID,
		Kind:           d.Kind,
		RecipientEmail: d.RecipientEmail,
		Subject:        d.Subject,
		Status:         string(d.Status),
		RetryCount:     d.RetryCount,
		MaxRetries:     d.MaxRetries,
		LastError:      d.LastError,
		NextRetryAt:    d.NextRetryAt,
		SentAt:         d.SentAt,
		CreatedAt:      d.CreatedAt,
		UpdatedAt:      d.UpdatedAt,
	}
}
