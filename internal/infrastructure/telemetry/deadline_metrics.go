package telemetry

import (
	"context"
	"time"

	"github.com/ngo-pm/backend/internal/application/deadline"
	"github.com/ngo-pm/backend/internal/infrastructure/outbox"
	"go.opentelemetry.io/otel/metric"
)

// MeterName is the instrumentation scope of the service metrics
const MeterName = "github.com/ngo-pm/backend"

// Sweep result attribute values
const (
	SweepResultOK      = "ok"
	SweepResultFailed  = "failed"
	SweepResultSkipped = "skipped"
)

// DeadlineMetrics records deadline sweeps and notification deliveries
type DeadlineMetrics struct {
	sweeps               *Counter
	sweepDuration        *Histogram
	projectsUpdated      *Counter
	projectsTransitioned *Counter
	projectsFailed       *Counter
	notificationsAttempt *Counter
	notificationsDeliver *Counter
	notificationsFailed  *Counter
	notificationsQueued  *Counter
	deliveriesDispatched *Counter
}

// NewDeadlineMetrics creates the deadline instruments on meter
func NewDeadlineMetrics(meter metric.Meter) (*DeadlineMetrics, error) {
	m := &DeadlineMetrics{}
	var err error

	counters := []struct {
		dst        **Counter
		name, desc string
	}{
		{&m.sweeps, "deadline.sweeps", "Deadline sweeps by result"},
		{&m.projectsUpdated, "deadline.projects.updated", "Projects whose deadline fields were written"},
		{&m.projectsTransitioned, "deadline.projects.transitioned", "Projects moved from active to overdue"},
		{&m.projectsFailed, "deadline.projects.failed", "Per-project failures inside sweeps"},
		{&m.notificationsAttempt, "deadline.notifications.attempted", "Overdue emails attempted inline"},
		{&m.notificationsDeliver, "deadline.notifications.delivered", "Overdue emails accepted by the gateway"},
		{&m.notificationsFailed, "deadline.notifications.failed", "Overdue emails rejected by the gateway"},
		{&m.notificationsQueued, "deadline.notifications.queued", "Overdue emails written to the outbox"},
		{&m.deliveriesDispatched, "notification.deliveries.dispatched", "Outbox deliveries processed by outcome"},
	}
	for _, c := range counters {
		if *c.dst, err = NewCounter(meter, c.name, c.desc, "{count}"); err != nil {
			return nil, err
		}
	}

	m.sweepDuration, err = NewHistogram(meter, "deadline.sweep.duration", "Deadline sweep duration", "ms", SweepDurationBuckets...)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// RecordSweep implements deadline.Recorder
func (m *DeadlineMetrics) RecordSweep(ctx context.Context, result *deadline.SweepResult, err error) {
	outcome := SweepResultOK
	switch {
	case err != nil:
		outcome = SweepResultFailed
	case result != nil && result.Skipped:
		outcome = SweepResultSkipped
	}
	m.sweeps.Inc(ctx, AttrResult.String(outcome))

	if result == nil {
		return
	}
	m.sweepDuration.RecordMillis(ctx, time.Duration(result.DurationMs)*time.Millisecond, AttrResult.String(outcome))
	m.projectsUpdated.Add(ctx, int64(result.Updated))
	m.projectsTransitioned.Add(ctx, int64(result.Transitioned))
	m.projectsFailed.Add(ctx, int64(result.Failed))
	m.notificationsAttempt.Add(ctx, int64(result.Messages.Delivered+result.Messages.Failed))
	m.notificationsDeliver.Add(ctx, int64(result.Messages.Delivered))
	m.notificationsFailed.Add(ctx, int64(result.Messages.Failed))
	m.notificationsQueued.Add(ctx, int64(result.Messages.Queued))
}

// RecordDispatch implements outbox.Recorder
func (m *DeadlineMetrics) RecordDispatch(ctx context.Context, stats outbox.BatchStats) {
	m.deliveriesDispatched.Add(ctx, int64(stats.Sent), AttrOutcome.String("sent"))
	m.deliveriesDispatched.Add(ctx, int64(stats.Retried), AttrOutcome.String("retried"))
	m.deliveriesDispatched.Add(ctx, int64(stats.Dead), AttrOutcome.String("dead"))
}

var (
	_ deadline.Recorder = (*DeadlineMetrics)(nil)
	_ outbox.Recorder   = (*DeadlineMetrics)(nil)
)
