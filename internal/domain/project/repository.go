package project

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/ngo-pm/backend/internal/domain/shared"
)

// ListFilter narrows project listings
type ListFilter struct {
	shared.Filter
	Status *Status
}

// Repository persists projects for the CRUD use cases. Save writes the
// administrator-editable columns only; tracker-owned fields are written
// through TrackerStore.
type Repository interface {
	Create(ctx context.Context, p *Project) error
	Save(ctx context.Context, p *Project) error
	FindByID(ctx context.Context, id uuid.UUID) (*Project, error)
	FindByIDForOrg(ctx context.Context, orgID, id uuid.UUID) (*Project, error)
	List(ctx context.Context, orgID uuid.UUID, filter ListFilter) ([]*Project, int64, error)
	Delete(ctx context.Context, orgID, id uuid.UUID) error
}

// TrackerStore is the narrow store used by the deadline tracker
type TrackerStore interface {
	// ListTrackable returns every project with a deadline whose status is
	// neither completed nor cancelled
	ListTrackable(ctx context.Context) ([]*Project, error)
	// ApplyDeadlineUpdate overwrites the tracker fields of one project
	ApplyDeadlineUpdate(ctx context.Context, update DeadlineUpdate) error
	// MarkOverdueNotificationSent sets the one-shot notification flag
	MarkOverdueNotificationSent(ctx context.Context, id uuid.UUID, at time.Time) error
}
