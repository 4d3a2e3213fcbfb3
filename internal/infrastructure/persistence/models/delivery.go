package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/ngo-pm/backend/internal/domain/notification"
)

// DeliveryModel is the persistence model for outbox email deliveries.
type DeliveryModel struct {
	ID             uuid.UUID                   `gorm:"type:uuid;primaryKey"`
	OrganizationID uuid.UUID                   `gorm:"type:uuid;not null;index:idx_deliveries_org_status,priority:1"`
	ProjectID      uuid.UUID                   `gorm:"type:uuid;not null;index"`
	Kind           string                      `gorm:"type:varchar(100);not null"`
	RecipientEmail string                      `gorm:"type:varchar(255);not null"`
	RecipientName  string                      `gorm:"type:varchar(200)"`
	FromEmail      string                      `gorm:"type:varchar(255);not null"`
	FromName       string                      `gorm:"type:varchar(200)"`
	Subject        string                      `gorm:"type:varchar(500);not null"`
	HTMLBody       string                      `gorm:"column:html_body;type:text"`
	TextBody       string                      `gorm:"type:text"`
	Status         notification.DeliveryStatus `gorm:"type:varchar(20);not null;default:'PENDING';index:idx_deliveries_org_status,priority:2;index:idx_deliveries_status_created,priority:1"`
	RetryCount     int                         `gorm:"not null;default:0"`
	MaxRetries     int                         `gorm:"not null;default:5"`
	LastError      string                      `gorm:"type:text"`
	NextRetryAt    *time.Time                  `gorm:"index:idx_deliveries_next_retry"`
	SentAt         *time.Time
	CreatedAt      time.Time `gorm:"not null;index:idx_deliveries_status_created,priority:2"`
	UpdatedAt      time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (DeliveryModel) TableName() string {
	return "notification_deliveries"
}

// ToDomain converts the persistence model to a domain Delivery
func (m *DeliveryModel) ToDomain() *notification.Delivery {
	return &notification.Delivery{
		ID:             m.ID,
		OrganizationID: m.OrganizationID,
		ProjectID:      m.ProjectID,
		Kind:           m.Kind,
		RecipientEmail: m.RecipientEmail,
		RecipientName:  m.RecipientName,
		FromEmail:      m.FromEmail,
		FromName:       m.FromName,
		Subject:        m.Subject,
		HTMLBody:       m.HTMLBody,
		TextBody:       m.TextBody,
		Status:         m.Status,
		RetryCount:     m.RetryCount,
		MaxRetries:     m.MaxRetries,
		LastError:      m.LastError,
		NextRetryAt:    m.NextRetryAt,
		SentAt:         m.SentAt,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

// FromDomain populates the persistence model from a domain Delivery
func (m *DeliveryModel) FromDomain(d *notification.Delivery) {
	m.ID = d.ID
	m.OrganizationID = d.OrganizationID
	m.ProjectID = d.ProjectID
	m.Kind = d.Kind
	m.RecipientEmail = d.RecipientEmail
	m.RecipientName = d.RecipientName
	m.FromEmail = d.FromEmail
	m.FromName = d.FromName
	m.Subject = d.Subject
	m.HTMLBody = d.HTMLBody
	m.TextBody = d.TextBody
	m.Status = d.Status
	m.RetryCount = d.RetryCount
	m.MaxRetries = d.MaxRetries
	m.LastError = d.LastError
	m.NextRetryAt = d.NextRetryAt
	m.SentAt = d.SentAt
	m.CreatedAt = d.CreatedAt
	m.UpdatedAt = d.UpdatedAt
}

// DeliveryModelFromDomain creates a new persistence model from a domain Delivery
func DeliveryModelFromDomain(d *notification.Delivery) *DeliveryModel {
	m := &DeliveryModel{}
	m.FromDomain(d)
	return m
}
