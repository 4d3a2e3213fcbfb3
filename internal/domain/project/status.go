package project

import "github.com/ngo-pm/backend/internal/domain/shared"

// Status is the lifecycle state of a project
type Status string

const (
	StatusActive    Status = "active"
	StatusOnHold    Status = "on-hold"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
	StatusOverdue   Status = "overdue"
)

// AllStatuses lists every valid status
var AllStatuses = []Status{
	StatusActive,
	StatusOnHold,
	StatusCompleted,
	StatusCancelled,
	StatusOverdue,
}

// IsValid reports whether s is a known status
func (s Status) IsValid() bool {
	for _, v := range AllStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the project is finished. Terminal projects are
// never touched by the deadline tracker.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// String returns the status value
func (s Status) String() string {
	return string(s)
}

// ParseStatus converts a string into a Status
func ParseStatus(value string) (Status, error) {
	s := Status(value)
	if !s.IsValid() {
		return "", shared.NewDomainError("INVALID_STATUS", "Unknown project status: "+value)
	}
	return s, nil
}
