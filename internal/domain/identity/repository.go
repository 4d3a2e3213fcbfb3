package identity

import (
	"context"

	"github.com/google/uuid"
)

// OrganizationRepository persists organizations
type OrganizationRepository interface {
	// CreateWithAdmin stores a new organization and its first administrator atomically
	CreateWithAdmin(ctx context.Context, org *Organization, admin *User) error
	Save(ctx context.Context, org *Organization) error
	FindByID(ctx context.Context, id uuid.UUID) (*Organization, error)
	FindBySlug(ctx context.Context, slug string) (*Organization, error)
	ExistsBySlug(ctx context.Context, slug string) (bool, error)
}

// UserRepository persists users
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	Save(ctx context.Context, user *User) error
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	// ListMembers returns every user of the organization
	ListMembers(ctx context.Context, orgID uuid.UUID) ([]*User, error)
}
