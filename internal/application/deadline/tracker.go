// Package deadline implements the deadline tracker: the sweep that
// recomputes day-granularity deadline state for every trackable project,
// moves active projects to overdue and sends one overdue alert per project.
package deadline

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/ngo-pm/backend/internal/domain/notification"
	"github.com/ngo-pm/backend/internal/domain/project"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const tracerName = "github.com/ngo-pm/backend/internal/application/deadline"

// markTimeout bounds the flag write that follows a delivered fan-out. The
// write is detached from the sweep context so a sweep deadline expiring
// after emails went out cannot leave the flag unset.
const markTimeout = 30 * time.Second

// TrackerConfig holds tracker tuning
type TrackerConfig struct {
	// NotifyTimeout bounds the fan-out for a single project
	NotifyTimeout time.Duration
}

// DefaultTrackerConfig returns the default tracker configuration
func DefaultTrackerConfig() TrackerConfig {
	return TrackerConfig{
		NotifyTimeout: 2 * time.Minute,
	}
}

// TrackerOption customizes a Tracker
type TrackerOption func(*Tracker)

// WithClock overrides the time source
func WithClock(now func() time.Time) TrackerOption {
	return func(t *Tracker) {
		t.now = now
	}
}

// WithSweepLock adds a cross-process lock around each sweep
func WithSweepLock(lock SweepLock) TrackerOption {
	return func(t *Tracker) {
		t.lock = lock
	}
}

// WithRecorder reports sweep outcomes to r
func WithRecorder(r Recorder) TrackerOption {
	return func(t *Tracker) {
		t.recorder = r
	}
}

// Tracker is the only writer of the tracker-owned project fields
// (daysLeft, isOverdue, overdueNotificationSent and the active to overdue edge).
type Tracker struct {
	store    project.TrackerStore
	notifier Notifier
	logger   *zap.Logger
	config   TrackerConfig
	now      func() time.Time
	lock     SweepLock
	recorder Recorder
	tracer   trace.Tracer
	running  atomic.Bool
}

// NewTracker creates a deadline tracker
func NewTracker(store project.TrackerStore, notifier Notifier, logger *zap.Logger, config TrackerConfig, opts ...TrackerOption) *Tracker {
	if config.NotifyTimeout <= 0 {
		config.NotifyTimeout = DefaultTrackerConfig().NotifyTimeout
	}
	t := &Tracker{
		store:    store,
		notifier: notifier,
		logger:   logger,
		config:   config,
		now:      time.Now,
		recorder: nopRecorder{},
		tracer:   otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// InProgress reports whether a sweep is currently running in this process
func (t *Tracker) InProgress() bool {
	return t.running.Load()
}

// RunSweep executes one sweep. It returns ErrSweepInProgress when a sweep of
// this tracker is already running. Only a failure to list the trackable
// projects is returned as an error; per-project failures are recorded in the
// result and never abort the sweep.
func (t *Tracker) RunSweep(ctx context.Context) (result *SweepResult, err error) {
	if !t.running.CompareAndSwap(false, true) {
		return nil, ErrSweepInProgress
	}
	defer t.running.Store(false)

	ctx, span := t.tracer.Start(ctx, "deadline.sweep")
	defer span.End()

	result = &SweepResult{StartedAt: t.now()}

	defer func() {
		if r := recover(); r != nil {
			t.logger.Error("Deadline sweep panicked",
				zap.Any("panic", r),
				zap.Stack("stack"),
			)
			err = fmt.Errorf("%w: %v", ErrSweepPanicked, r)
		}
		result.finish(t.now())
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.SetAttributes(
			attribute.Bool("deadline.skipped", result.Skipped),
			attribute.Int("deadline.scanned", result.Scanned),
			attribute.Int("deadline.newly_overdue", result.NewlyOverdue),
		)
		t.recorder.RecordSweep(ctx, result, err)
	}()

	if t.lock != nil {
		release, acquired, lockErr := t.lock.TryAcquire(ctx)
		switch {
		case lockErr != nil:
			// Overlapping sweeps only repeat idempotent writes, so a lock
			// backend outage does not stop the sweep.
			t.logger.Warn("Sweep lock unavailable, continuing without it", zap.Error(lockErr))
		case !acquired:
			t.logger.Info("Deadline sweep skipped, another instance holds the lock")
			result.Skipped = true
			return result, nil
		default:
			defer func() {
				if relErr := release(context.WithoutCancel(ctx)); relErr != nil {
					t.logger.Warn("Failed to release sweep lock", zap.Error(relErr))
				}
			}()
		}
	}

	if err := t.sweep(ctx, result); err != nil {
		return result, err
	}
	return result, nil
}

type evaluatedProject struct {
	project *project.Project
	eval    project.DeadlineEvaluation
}

func (t *Tracker) sweep(ctx context.Context, result *SweepResult) error {
	now := result.StartedAt

	t.logger.Info("Starting deadline sweep", zap.Time("now", now))

	projects, err := t.store.ListTrackable(ctx)
	if err != nil {
		t.logger.Error("Failed to list trackable projects, sweep aborted", zap.Error(err))
		return fmt.Errorf("list trackable projects: %w", err)
	}

	// Every evaluation, including the newly-overdue decision, is taken from
	// the state read above before any write of this sweep is issued.
	evaluated := make([]evaluatedProject, 0, len(projects))
	for _, p := range projects {
		if !p.IsTrackable() {
			continue
		}
		evaluated = append(evaluated, evaluatedProject{project: p, eval: p.EvaluateDeadline(now)})
	}
	result.Scanned = len(evaluated)

	var newlyOverdue []*project.Project
	for _, ep := range evaluated {
		if ep.eval.NewlyOverdue {
			newlyOverdue = append(newlyOverdue, ep.project)
		}
	}
	result.NewlyOverdue = len(newlyOverdue)

	for _, ep := range evaluated {
		t.applyUpdate(ctx, ep, result)
	}

	for _, p := range newlyOverdue {
		t.notifyAndMark(ctx, p, result)
	}

	t.logger.Info("Deadline sweep completed",
		zap.Int("scanned", result.Scanned),
		zap.Int("updated", result.Updated),
		zap.Int("failed", result.Failed),
		zap.Int("transitioned", result.Transitioned),
		zap.Int("newly_overdue", result.NewlyOverdue),
		zap.Int("notified", result.Notified),
		zap.Int("messages_delivered", result.Messages.Delivered),
		zap.Int("messages_failed", result.Messages.Failed),
		zap.Int("messages_queued", result.Messages.Queued),
	)
	return nil
}

func (t *Tracker) applyUpdate(ctx context.Context, ep evaluatedProject, result *SweepResult) {
	update := ep.eval.Update
	// The in-memory copy carries the fresh values into the notification
	// even when the write below fails.
	defer ep.project.ApplyDeadlineUpdate(update)

	if err := t.store.ApplyDeadlineUpdate(ctx, update); err != nil {
		result.Failed++
		result.addError(update.ProjectID, StageUpdate, err)
		t.logger.Warn("Failed to update project deadline fields",
			zap.String("project_id", update.ProjectID.String()),
			zap.Error(err),
		)
		return
	}

	result.Updated++
	if ep.eval.StatusChanged {
		result.Transitioned++
		t.logger.Info("Project marked overdue",
			zap.String("project_id", update.ProjectID.String()),
			zap.String("organization_id", ep.project.OrganizationID.String()),
			zap.Int("days_left", update.DaysLeft),
		)
	}
}

func (t *Tracker) notifyAndMark(ctx context.Context, p *project.Project, result *SweepResult) {
	log := t.logger.With(
		zap.String("project_id", p.ID.String()),
		zap.String("organization_id", p.OrganizationID.String()),
	)

	notifyCtx, cancel := context.WithTimeout(ctx, t.config.NotifyTimeout)
	fanOut, err := t.safeNotify(notifyCtx, p)
	cancel()

	result.Messages.Add(fanOut)
	if err != nil {
		// Nothing was attempted, so the flag stays unset and the next
		// sweep tries again.
		result.Failed++
		result.addError(p.ID, StageNotify, err)
		log.Warn("Overdue notification not attempted", zap.Error(err))
		return
	}

	if fanOut.Failed > 0 {
		log.Warn("Some overdue notifications failed",
			zap.Int("recipients", fanOut.Recipients),
			zap.Int("failed", fanOut.Failed),
		)
	}

	markCtx, cancelMark := context.WithTimeout(context.WithoutCancel(ctx), markTimeout)
	defer cancelMark()
	if err := t.store.MarkOverdueNotificationSent(markCtx, p.ID, t.now()); err != nil {
		result.Failed++
		result.addError(p.ID, StageMark, err)
		log.Error("Failed to mark overdue notification as sent", zap.Error(err))
		return
	}
	p.OverdueNotificationSent = true
	result.Notified++
}

func (t *Tracker) safeNotify(ctx context.Context, p *project.Project) (res notification.FanOutResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			t.logger.Error("Overdue notifier panicked",
				zap.String("project_id", p.ID.String()),
				zap.Any("panic", r),
			)
			err = fmt.Errorf("notifier panic: %v", r)
		}
	}()
	return t.notifier.NotifyOverdue(ctx, p)
}
