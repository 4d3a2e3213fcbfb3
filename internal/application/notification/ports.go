package notification

import (
	"context"
	"net/mail"
	"time"

	"github.com/google/uuid"
	"github.com/ngo-pm/backend/internal/domain/identity"
	domain "github.com/ngo-pm/backend/internal/domain/notification"
)

// MemberDirectory resolves the members of an organization
type MemberDirectory interface {
	ListMembers(ctx context.Context, orgID uuid.UUID) ([]*identity.User, error)
}

// OrganizationLookup resolves organization display data
type OrganizationLookup interface {
	FindByID(ctx context.Context, id uuid.UUID) (*identity.Organization, error)
}

// OverdueNotice is the data rendered into one overdue email
type OverdueNotice struct {
	Recipient        mail.Address
	FirstName        string
	ProjectID        uuid.UUID
	ProjectName      string
	OrganizationName string
	DaysOverdue      int
	Deadline         time.Time
	Progress         int
}

// Composer renders an overdue notice into a deliverable message
type Composer interface {
	ComposeOverdue(notice OverdueNotice) (domain.Message, error)
}
