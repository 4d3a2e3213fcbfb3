package notification

import (
	"context"
	"net/mail"
	"time"

	"github.com/google/uuid"
)

// DeliveryStatus is the lifecycle state of an outbox delivery
type DeliveryStatus string

const (
	DeliveryPending    DeliveryStatus = "PENDING"
	DeliveryProcessing DeliveryStatus = "PROCESSING"
	DeliverySent       DeliveryStatus = "SENT"
	DeliveryFailed     DeliveryStatus = "FAILED"
	DeliveryDead       DeliveryStatus = "DEAD"
)

// Retry defaults for outbox deliveries
const (
	DefaultMaxRetries  = 5
	DefaultBaseBackoff = time.Second
	MaxBackoff         = time.Hour
)

// Delivery is a persisted, pending email for one recipient. It is written
// when notifications run in outbox mode and consumed by the dispatcher.
type Delivery struct {
	ID             uuid.UUID
	OrganizationID uuid.UUID
	ProjectID      uuid.UUID
	Kind           string
	RecipientEmail string
	RecipientName  string
	FromEmail      string
	FromName       string
	Subject        string
	HTMLBody       string
	TextBody       string
	Status         DeliveryStatus
	RetryCount     int
	MaxRetries     int
	LastError      string
	NextRetryAt    *time.Time
	SentAt         *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// KindProjectOverdue marks deliveries produced by the overdue fan-out
const KindProjectOverdue = "project.overdue"

// NewDelivery creates a pending delivery for msg
func NewDelivery(orgID, projectID uuid.UUID, kind string, msg Message, maxRetries int) *Delivery {
	if maxRetries <= 0 {
		maxRetries = DefaultMaxRetries
	}
	now := time.Now()
	return &Delivery{
		ID:             uuid.New(),
		OrganizationID: orgID,
		ProjectID:      projectID,
		Kind:           kind,
		RecipientEmail: msg.To.Address,
		RecipientName:  msg.To.Name,
		FromEmail:      msg.From.Address,
		FromName:       msg.From.Name,
		Subject:        msg.Subject,
		HTMLBody:       msg.HTML,
		TextBody:       msg.Text,
		Status:         DeliveryPending,
		MaxRetries:     maxRetries,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// Message rebuilds the email this delivery carries
func (d *Delivery) Message() Message {
	return Message{
		To:      mail.Address{Name: d.RecipientName, Address: d.RecipientEmail},
		From:    mail.Address{Name: d.FromName, Address: d.FromEmail},
		Subject: d.Subject,
		HTML:    d.HTMLBody,
		Text:    d.TextBody,
	}
}

// CanRetry returns true if the delivery failed and has attempts left
func (d *Delivery) CanRetry() bool {
	return d.Status == DeliveryFailed && d.RetryCount < d.MaxRetries
}

// MarkProcessing claims the delivery for sending
func (d *Delivery) MarkProcessing() error {
	if d.Status != DeliveryPending && d.Status != DeliveryFailed {
		return ErrNotClaimable
	}
	d.Status = DeliveryProcessing
	d.UpdatedAt = time.Now()
	return nil
}

// MarkSent records a successful send
func (d *Delivery) MarkSent() {
	now := time.Now()
	d.Status = DeliverySent
	d.SentAt = &now
	d.LastError = ""
	d.NextRetryAt = nil
	d.UpdatedAt = now
}

// MarkFailed records a failed attempt and schedules the next retry with
// exponential backoff (1s, 2s, 4s, ... capped at MaxBackoff). Once the
// retry budget is spent the delivery is dead-lettered.
func (d *Delivery) MarkFailed(errMsg string) {
	d.RetryCount++
	d.LastError = errMsg
	d.UpdatedAt = time.Now()

	if d.RetryCount >= d.MaxRetries {
		d.Status = DeliveryDead
		d.NextRetryAt = nil
		return
	}

	d.Status = DeliveryFailed
	next := d.UpdatedAt.Add(Backoff(d.RetryCount))
	d.NextRetryAt = &next
}

// Backoff returns the wait before retry number attempt (1-based)
func Backoff(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	if attempt > 22 {
		return MaxBackoff
	}
	backoff := DefaultBaseBackoff * time.Duration(1<<uint(attempt-1))
	if backoff > MaxBackoff {
		return MaxBackoff
	}
	return backoff
}

// ResetForRetry moves a dead delivery back to pending
func (d *Delivery) ResetForRetry() error {
	if d.Status != DeliveryDead {
		return ErrNotDead
	}
	d.Status = DeliveryPending
	d.RetryCount = 0
	d.LastError = ""
	d.NextRetryAt = nil
	d.UpdatedAt = time.Now()
	return nil
}

// IsDead returns true if the delivery is dead-lettered
func (d *Delivery) IsDead() bool {
	return d.Status == DeliveryDead
}

// DeliveryRepository persists outbox deliveries
type DeliveryRepository interface {
	// Save persists one or more new deliveries
	Save(ctx context.Context, deliveries ...*Delivery) error
	// ClaimDue atomically moves up to limit pending deliveries, and failed
	// deliveries whose retry time has passed, to PROCESSING and returns them
	ClaimDue(ctx context.Context, now time.Time, limit int) ([]*Delivery, error)
	// Update writes back a delivery after a send attempt
	Update(ctx context.Context, delivery *Delivery) error
	// FindByID retrieves a delivery
	FindByID(ctx context.Context, id uuid.UUID) (*Delivery, error)
	// FindDead lists dead-lettered deliveries of an organization
	FindDead(ctx context.Context, orgID uuid.UUID, page, pageSize int) ([]*Delivery, int64, error)
	// DeleteSentBefore purges sent deliveries older than before
	DeleteSentBefore(ctx context.Context, before time.Time) (int64, error)
	// CountByStatus returns the number of deliveries per status
	CountByStatus(ctx context.Context) (map[DeliveryStatus]int64, error)
}
