package deadline

import (
	"context"

	"github.com/ngo-pm/backend/internal/domain/notification"
	"github.com/ngo-pm/backend/internal/domain/project"
)

// Notifier delivers the overdue alert for one project to its organization.
// A non-nil error means no delivery was attempted (for example the member
// lookup failed); individual recipient failures are reported in the result.
type Notifier interface {
	NotifyOverdue(ctx context.Context, p *project.Project) (notification.FanOutResult, error)
}

// SweepLock serializes sweeps across processes. TryAcquire returns
// acquired=false without error when another holder owns the lock.
type SweepLock interface {
	TryAcquire(ctx context.Context) (release func(context.Context) error, acquired bool, err error)
}

// Recorder receives sweep outcomes for metrics
type Recorder interface {
	RecordSweep(ctx context.Context, result *SweepResult, err error)
}

type nopRecorder struct{}

func (nopRecorder) RecordSweep(context.Context, *SweepResult, error) {}
