package project

import (
	"fmt"
	"time"
)

// Urgency is the display tier for a deadline
type Urgency string

const (
	UrgencySafe    Urgency = "safe"
	UrgencyWarning Urgency = "warning"
	UrgencyDanger  Urgency = "danger"
	UrgencyOverdue Urgency = "overdue"
)

// Urgency thresholds in days
const (
	dangerMaxDays  = 1
	warningMaxDays = 7
)

// DeadlineStatus is a human readable deadline label with its urgency tier.
type DeadlineStatus struct {
	Label    string  `json:"label"`
	Urgency  Urgency `json:"urgency"`
	DaysLeft *int    `json:"days_left,omitempty"`
}

// DescribeDeadline classifies a deadline for display. daysLeft is used when
// present; otherwise it is recomputed from deadline relative to now. The
// result is informational only and has no side effects.
func DescribeDeadline(deadline *time.Time, daysLeft *int, now time.Time) DeadlineStatus {
	if deadline == nil {
		return DeadlineStatus{Label: "No deadline", Urgency: UrgencySafe}
	}

	days := 0
	if daysLeft != nil {
		days = *daysLeft
	} else {
		days = CalculateDaysLeft(*deadline, now)
	}

	status := DeadlineStatus{DaysLeft: &days}
	switch {
	case days < 0:
		status.Label = pluralDays(-days) + " overdue"
		status.Urgency = UrgencyOverdue
	case days == 0:
		status.Label = "Due today"
		status.Urgency = UrgencyDanger
	case days <= dangerMaxDays:
		status.Label = pluralDays(days) + " left"
		status.Urgency = UrgencyDanger
	case days <= warningMaxDays:
		status.Label = pluralDays(days) + " left"
		status.Urgency = UrgencyWarning
	default:
		status.Label = pluralDays(days) + " left"
		status.Urgency = UrgencySafe
	}
	return status
}

// DeadlineStatus describes the project's deadline using its stored daysLeft
func (p *Project) DeadlineStatus(now time.Time) DeadlineStatus {
	return DescribeDeadline(p.Deadline, p.DaysLeft, now)
}

func pluralDays(n int) string {
	if n == 1 {
		return "1 day"
	}
	return fmt.Sprintf("%d days", n)
}
