package notification

import (
	"context"
	"fmt"

	domain "github.com/ngo-pm/backend/internal/domain/notification"
	"github.com/ngo-pm/backend/internal/domain/project"
	"go.uber.org/zap"
)

// OutboxNotifier persists one pending delivery per member instead of
// sending inline. The outbox dispatcher sends them with retries.
type OutboxNotifier struct {
	builder    messageBuilder
	repo       domain.DeliveryRepository
	logger     *zap.Logger
	maxRetries int
}

// NewOutboxNotifier creates a notifier that enqueues deliveries
func NewOutboxNotifier(
	directory MemberDirectory,
	orgs OrganizationLookup,
	composer Composer,
	repo domain.DeliveryRepository,
	logger *zap.Logger,
	maxRetries int,
) *OutboxNotifier {
	return &OutboxNotifier{
		builder:    messageBuilder{directory: directory, orgs: orgs, composer: composer, logger: logger},
		repo:       repo,
		logger:     logger,
		maxRetries: maxRetries,
	}
}

// NotifyOverdue implements deadline.Notifier. Enqueue failures are returned
// so the project is retried on the next sweep.
func (n *OutboxNotifier) NotifyOverdue(ctx context.Context, p *project.Project) (domain.FanOutResult, error) {
	messages, result, err := n.builder.build(ctx, p)
	if err != nil {
		return result, err
	}
	if len(messages) == 0 {
		return result, nil
	}

	deliveries := make([]*domain.Delivery, 0, len(messages))
	for _, msg := range messages {
		deliveries = append(deliveries, domain.NewDelivery(p.OrganizationID, p.ID, domain.KindProjectOverdue, msg, n.maxRetries))
	}
	if err := n.repo.Save(ctx, deliveries...); err != nil {
		return result, fmt.Errorf("enqueue overdue notifications: %w", err)
	}

	result.Queued = len(deliveries)
	n.logger.Info("Overdue notifications queued",
		zap.String("project_id", p.ID.String()),
		zap.Int("queued", result.Queued),
	)
	return result, nil
}
