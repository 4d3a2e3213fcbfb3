package notification

import "github.com/ngo-pm/backend/internal/domain/shared"

var (
	ErrMissingRecipient = shared.NewDomainError("INVALID_INPUT", "Notification recipient email is required")
	ErrMissingSubject   = shared.NewDomainError("INVALID_INPUT", "Notification subject is required")
	ErrEmptyBody        = shared.NewDomainError("INVALID_INPUT", "Notification body is empty")
	ErrNotDead          = shared.NewDomainError("INVALID_STATE", "Only dead deliveries can be retried")
	ErrNotClaimable     = shared.NewDomainError("INVALID_STATE", "Only pending or failed deliveries can be claimed")
)
