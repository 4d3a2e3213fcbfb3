// Package scheduler runs the deadline sweep on a fixed interval for the
// lifetime of the server process.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ngo-pm/backend/internal/application/deadline"
	"go.uber.org/zap"
)

// Sweeper runs one deadline sweep
type Sweeper interface {
	RunSweep(ctx context.Context) (*deadline.SweepResult, error)
}

// DeadlineSchedulerConfig holds configuration for the deadline scheduler
type DeadlineSchedulerConfig struct {
	// Interval between two scheduled sweeps
	Interval time.Duration
	// RunOnStart runs one sweep as soon as the scheduler starts
	RunOnStart bool
	// SweepTimeout bounds a single sweep
	SweepTimeout time.Duration
}

// DefaultDeadlineSchedulerConfig returns the daily schedule
func DefaultDeadlineSchedulerConfig() DeadlineSchedulerConfig {
	return DeadlineSchedulerConfig{
		Interval:     24 * time.Hour,
		RunOnStart:   true,
		SweepTimeout: 30 * time.Minute,
	}
}

// Validate checks the configuration
func (c DeadlineSchedulerConfig) Validate() error {
	if c.Interval <= 0 {
		return fmt.Errorf("%w: interval must be positive", ErrInvalidConfig)
	}
	if c.SweepTimeout < 0 {
		return fmt.Errorf("%w: sweep timeout must not be negative", ErrInvalidConfig)
	}
	return nil
}

// Status is a snapshot of the scheduler state
type Status struct {
	Running     bool                  `json:"running"`
	Sweeping    bool                  `json:"sweeping"`
	Interval    string                `json:"interval"`
	LastRunAt   *time.Time            `json:"last_run_at,omitempty"`
	NextRunAt   *time.Time            `json:"next_run_at,omitempty"`
	LastError   string                `json:"last_error,omitempty"`
	LastResult  *deadline.SweepResult `json:"last_result,omitempty"`
	SweepsTotal int64                 `json:"sweeps_total"`
}

// DeadlineScheduler runs one sweep on start, then one per interval. Sweeps
// never overlap: a tick that finds a sweep running is skipped. Stop cancels
// the pending timer and lets an in-flight sweep finish.
type DeadlineScheduler struct {
	sweeper Sweeper
	config  DeadlineSchedulerConfig
	logger  *zap.Logger

	sweeping atomic.Bool
	total    atomic.Int64

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool

	lastRunAt  *time.Time
	nextRunAt  *time.Time
	lastResult *deadline.SweepResult
	lastErr    error
}

// NewDeadlineScheduler creates a scheduler for sweeper
func NewDeadlineScheduler(sweeper Sweeper, logger *zap.Logger, config DeadlineSchedulerConfig) *DeadlineScheduler {
	if config.Interval <= 0 {
		config.Interval = DefaultDeadlineSchedulerConfig().Interval
	}
	return &DeadlineScheduler{
		sweeper: sweeper,
		config:  config,
		logger:  logger.Named("deadline-scheduler"),
	}
}

// Start begins the schedule. Calling Start on a running scheduler is a no-op.
func (s *DeadlineScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = true
	loopCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancel = cancel
	s.mu.Unlock()

	s.wg.Add(1)
	go s.loop(loopCtx)

	s.logger.Info("Deadline scheduler started",
		zap.Duration("interval", s.config.Interval),
		zap.Bool("run_on_start", s.config.RunOnStart),
	)
	return nil
}

// Stop cancels the pending timer and waits for an in-flight sweep, bounded
// by ctx. It is safe to call on a scheduler that was never started.
func (s *DeadlineScheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	s.nextRunAt = nil
	cancel := s.cancel
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Deadline scheduler stopped")
		return nil
	case <-ctx.Done():
		s.logger.Warn("Deadline scheduler stop timed out, sweep still running")
		return ctx.Err()
	}
}

// IsRunning reports whether the schedule is active
func (s *DeadlineScheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isRunning
}

// LastResult returns the result of the most recent completed sweep
func (s *DeadlineScheduler) LastResult() *deadline.SweepResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastResult
}

// Status returns a snapshot of the scheduler state
func (s *DeadlineScheduler) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := Status{
		Running:     s.isRunning,
		Sweeping:    s.sweeping.Load(),
		Interval:    s.config.Interval.String(),
		LastRunAt:   s.lastRunAt,
		NextRunAt:   s.nextRunAt,
		LastResult:  s.lastResult,
		SweepsTotal: s.total.Load(),
	}
	if s.lastErr != nil {
		st.LastError = s.lastErr.Error()
	}
	return st
}

// TriggerImmediateSweep runs a sweep now and waits for its result. The sweep
// is detached from ctx cancellation so an HTTP client disconnect does not
// abort it halfway.
func (s *DeadlineScheduler) TriggerImmediateSweep(ctx context.Context) (*deadline.SweepResult, error) {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil, ErrSchedulerNotRunning
	}
	s.wg.Add(1)
	s.mu.Unlock()
	defer s.wg.Done()

	result, ran, err := s.runSweep(context.WithoutCancel(ctx), "manual")
	if !ran {
		return nil, ErrSweepInProgress
	}
	return result, err
}

func (s *DeadlineScheduler) loop(ctx context.Context) {
	defer s.wg.Done()

	if s.config.RunOnStart {
		s.runSweep(ctx, "startup")
	}

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()
	s.setNextRun(time.Now().Add(s.config.Interval))

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			s.runSweep(ctx, "interval")
			s.setNextRun(now.Add(s.config.Interval))
		}
	}
}

// runSweep returns ran=false when another sweep holds the in-progress flag
func (s *DeadlineScheduler) runSweep(ctx context.Context, trigger string) (*deadline.SweepResult, bool, error) {
	if !s.sweeping.CompareAndSwap(false, true) {
		s.logger.Warn("Deadline sweep skipped, previous sweep still running", zap.String("trigger", trigger))
		return nil, false, nil
	}
	defer s.sweeping.Store(false)

	// Cancelling the schedule must not abort a sweep already under way.
	sweepCtx := context.WithoutCancel(ctx)
	if s.config.SweepTimeout > 0 {
		var cancel context.CancelFunc
		sweepCtx, cancel = context.WithTimeout(sweepCtx, s.config.SweepTimeout)
		defer cancel()
	}

	startedAt := time.Now()
	result, err := s.sweeper.RunSweep(sweepCtx)
	if errors.Is(err, deadline.ErrSweepInProgress) {
		s.logger.Warn("Deadline sweep skipped, tracker busy", zap.String("trigger", trigger))
		return nil, false, nil
	}
	s.total.Add(1)

	s.mu.Lock()
	s.lastRunAt = &startedAt
	s.lastErr = err
	if result != nil {
		s.lastResult = result
	}
	s.mu.Unlock()

	if err != nil {
		s.logger.Error("Deadline sweep failed", zap.String("trigger", trigger), zap.Error(err))
	} else if result != nil {
		s.logger.Debug("Deadline sweep finished",
			zap.String("trigger", trigger),
			zap.Int64("duration_ms", result.DurationMs),
		)
	}
	return result, true, err
}

func (s *DeadlineScheduler) setNextRun(at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.isRunning {
		s.nextRunAt = &at
	}
}
