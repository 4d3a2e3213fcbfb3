// Package project contains the Project aggregate and the day-granularity
// deadline rules applied to it.
package project

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ngo-pm/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Field limits
const (
	MaxNameLength        = 200
	MaxDescriptionLength = 5000
)

// Project is a piece of organization work with an optional deadline.
//
// DaysLeft, IsOverdue, OverdueNotificationSent and the active to overdue
// status edge are written only by the deadline tracker.
type Project struct {
	shared.OrgAggregateRoot
	Name                    string
	Description             string
	Budget                  decimal.Decimal
	Progress                int
	Status                  Status
	Deadline                *time.Time
	DaysLeft                *int
	IsOverdue               bool
	OverdueNotificationSent bool
}

// NewProject creates an active project owned by orgID
func NewProject(orgID, createdBy uuid.UUID, name, description string, budget decimal.Decimal, deadline *time.Time) (*Project, error) {
	name = strings.TrimSpace(name)
	if err := validateName(name); err != nil {
		return nil, err
	}
	if err := validateDescription(description); err != nil {
		return nil, err
	}
	if err := validateBudget(budget); err != nil {
		return nil, err
	}

	return &Project{
		OrgAggregateRoot: shared.NewOrgAggregateRootWithCreator(orgID, createdBy),
		Name:             name,
		Description:      description,
		Budget:           budget,
		Status:           StatusActive,
		Deadline:         deadline,
	}, nil
}

// Update changes the descriptive fields
func (p *Project) Update(name, description string) error {
	name = strings.TrimSpace(name)
	if err := validateName(name); err != nil {
		return err
	}
	if err := validateDescription(description); err != nil {
		return err
	}

	p.Name = name
	p.Description = description
	p.touch()
	return nil
}

// SetBudget replaces the project budget
func (p *Project) SetBudget(budget decimal.Decimal) error {
	if err := validateBudget(budget); err != nil {
		return err
	}
	p.Budget = budget
	p.touch()
	return nil
}

// SetDeadline moves or clears the deadline. The computed deadline fields are
// refreshed by the next sweep.
func (p *Project) SetDeadline(deadline *time.Time) {
	p.Deadline = deadline
	p.touch()
}

// UpdateProgress sets completion percentage (0-100)
func (p *Project) UpdateProgress(progress int) error {
	if progress < 0 || progress > 100 {
		return shared.NewDomainError("INVALID_PROGRESS", "Progress must be between 0 and 100")
	}
	if p.Status.IsTerminal() {
		return shared.NewDomainError("INVALID_STATE", "Cannot update progress of a "+p.Status.String()+" project")
	}
	p.Progress = progress
	p.touch()
	return nil
}

// ChangeStatus applies an explicit status change made by an administrator.
// This is the only path out of overdue.
func (p *Project) ChangeStatus(status Status) error {
	if !status.IsValid() {
		return shared.NewDomainError("INVALID_STATUS", "Unknown project status: "+status.String())
	}
	if p.Status == status {
		return nil
	}
	if status == StatusCompleted {
		p.Progress = 100
	}
	p.Status = status
	p.touch()
	return nil
}

// IsTrackable reports whether the deadline tracker should evaluate the project
func (p *Project) IsTrackable() bool {
	return p.Deadline != nil && !p.Status.IsTerminal()
}

// DeadlineUpdate is the set of tracker-owned fields written for one project
type DeadlineUpdate struct {
	ProjectID uuid.UUID
	DaysLeft  int
	IsOverdue bool
	Status    Status
	UpdatedAt time.Time
}

// DeadlineEvaluation is the outcome of evaluating one project at a point in time
type DeadlineEvaluation struct {
	Update DeadlineUpdate
	// StatusChanged is true only on the active to overdue edge
	StatusChanged bool
	// NewlyOverdue is computed from the notification flag as it was before
	// any write of the current sweep
	NewlyOverdue bool
}

// EvaluateDeadline computes the tracker update for the project at now. It
// does not mutate the project. The caller must only pass trackable projects.
func (p *Project) EvaluateDeadline(now time.Time) DeadlineEvaluation {
	daysLeft := CalculateDaysLeft(*p.Deadline, now)
	overdue := IsOverdueDays(daysLeft)

	status := p.Status
	if overdue && p.Status == StatusActive {
		status = StatusOverdue
	}

	return DeadlineEvaluation{
		Update: DeadlineUpdate{
			ProjectID: p.ID,
			DaysLeft:  daysLeft,
			IsOverdue: overdue,
			Status:    status,
			UpdatedAt: now,
		},
		StatusChanged: status != p.Status,
		NewlyOverdue:  overdue && !p.OverdueNotificationSent,
	}
}

// ApplyDeadlineUpdate copies a tracker update onto the in-memory aggregate
func (p *Project) ApplyDeadlineUpdate(u DeadlineUpdate) {
	days := u.DaysLeft
	p.DaysLeft = &days
	p.IsOverdue = u.IsOverdue
	p.Status = u.Status
	p.UpdatedAt = u.UpdatedAt
}

// DaysOverdue returns how many days the deadline has passed, or 0
func (p *Project) DaysOverdue() int {
	if p.DaysLeft == nil || *p.DaysLeft >= 0 {
		return 0
	}
	return -*p.DaysLeft
}

func (p *Project) touch() {
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
}

func validateName(name string) error {
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Project name cannot be empty")
	}
	if len(name) > MaxNameLength {
		return shared.NewDomainError("INVALID_NAME", "Project name cannot exceed 200 characters")
	}
	return nil
}

func validateDescription(description string) error {
	if len(description) > MaxDescriptionLength {
		return shared.NewDomainError("INVALID_DESCRIPTION", "Project description cannot exceed 5000 characters")
	}
	return nil
}

func validateBudget(budget decimal.Decimal) error {
	if budget.IsNegative() {
		return shared.NewDomainError("INVALID_BUDGET", "Budget cannot be negative")
	}
	return nil
}
