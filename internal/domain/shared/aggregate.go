// Package shared holds the building blocks every aggregate of the system is
// made of: identity and timestamps, an optimistic version counter and the
// organization that owns the record.
package shared

import (
	"time"

	"github.com/google/uuid"
)

// BaseEntity carries identity and audit timestamps
type BaseEntity struct {
	ID        uuid.UUID
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewBaseEntity returns an entity with a fresh ID, created now
func NewBaseEntity() BaseEntity {
	now := time.Now()
	return BaseEntity{
		ID:        uuid.New(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Touch bumps UpdatedAt to now
func (e *BaseEntity) Touch() {
	e.UpdatedAt = time.Now()
}

// BaseAggregateRoot adds a version that is bumped on every administrator edit
type BaseAggregateRoot struct {
	BaseEntity
	Version int
}

// NewBaseAggregateRoot returns an aggregate at version 1
func NewBaseAggregateRoot() BaseAggregateRoot {
	return BaseAggregateRoot{
		BaseEntity: NewBaseEntity(),
		Version:    1,
	}
}

// IncrementVersion records one more change to the aggregate
func (a *BaseAggregateRoot) IncrementVersion() {
	a.Version++
}

// OrgAggregateRoot is an aggregate owned by one organization. Organizations
// are the isolation boundary: every read and write is scoped by OrganizationID.
type OrgAggregateRoot struct {
	BaseAggregateRoot
	OrganizationID uuid.UUID
	CreatedBy      *uuid.UUID
}

// NewOrgAggregateRoot creates an aggregate owned by orgID
func NewOrgAggregateRoot(orgID uuid.UUID) OrgAggregateRoot {
	return OrgAggregateRoot{
		BaseAggregateRoot: NewBaseAggregateRoot(),
		OrganizationID:    orgID,
	}
}

// NewOrgAggregateRootWithCreator creates an aggregate owned by orgID and
// records the member who created it
func NewOrgAggregateRootWithCreator(orgID, createdBy uuid.UUID) OrgAggregateRoot {
	root := NewOrgAggregateRoot(orgID)
	root.CreatedBy = &createdBy
	return root
}

// BelongsTo reports whether the aggregate is owned by orgID
func (o *OrgAggregateRoot) BelongsTo(orgID uuid.UUID) bool {
	return o.OrganizationID == orgID
}
