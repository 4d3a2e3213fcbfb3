// Package outbox sends the notification deliveries queued by the overdue
// fan-out when notifications run in outbox mode.
package outbox

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ngo-pm/backend/internal/domain/notification"
	"go.uber.org/zap"
)

// DispatcherConfig holds configuration for the dispatcher
type DispatcherConfig struct {
	BatchSize        int
	PollInterval     time.Duration
	SendTimeout      time.Duration
	CleanupEnabled   bool
	CleanupRetention time.Duration
	CleanupInterval  time.Duration
}

// DefaultDispatcherConfig returns default configuration
func DefaultDispatcherConfig() DispatcherConfig {
	return DispatcherConfig{
		BatchSize:        50,
		PollInterval:     30 * time.Second,
		SendTimeout:      30 * time.Second,
		CleanupEnabled:   true,
		CleanupRetention: 7 * 24 * time.Hour,
		CleanupInterval:  time.Hour,
	}
}

// BatchStats summarizes one dispatch batch
type BatchStats struct {
	Claimed int
	Sent    int
	Retried int
	Dead    int
}

// Recorder receives dispatch outcomes for metrics
type Recorder interface {
	RecordDispatch(ctx context.Context, stats BatchStats)
}

// Dispatcher claims due deliveries and sends them through the gateway.
// Failed sends are retried with exponential backoff until the delivery's
// retry budget is spent, then dead-lettered.
type Dispatcher struct {
	repo     notification.DeliveryRepository
	gateway  notification.Gateway
	config   DispatcherConfig
	logger   *zap.Logger
	recorder Recorder
	now      func() time.Time

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// DispatcherOption customizes a Dispatcher
type DispatcherOption func(*Dispatcher)

// WithRecorder reports batch outcomes to r
func WithRecorder(r Recorder) DispatcherOption {
	return func(d *Dispatcher) {
		d.recorder = r
	}
}

// WithClock overrides the time source used to find due deliveries
func WithClock(now func() time.Time) DispatcherOption {
	return func(d *Dispatcher) {
		d.now = now
	}
}

// NewDispatcher creates a new dispatcher
func NewDispatcher(
	repo notification.DeliveryRepository,
	gateway notification.Gateway,
	config DispatcherConfig,
	logger *zap.Logger,
	opts ...DispatcherOption,
) *Dispatcher {
	def := DefaultDispatcherConfig()
	if config.BatchSize <= 0 {
		config.BatchSize = def.BatchSize
	}
	if config.PollInterval <= 0 {
		config.PollInterval = def.PollInterval
	}
	if config.SendTimeout <= 0 {
		config.SendTimeout = def.SendTimeout
	}
	if config.CleanupInterval <= 0 {
		config.CleanupInterval = def.CleanupInterval
	}
	if config.CleanupRetention <= 0 {
		config.CleanupRetention = def.CleanupRetention
	}
	d := &Dispatcher{
		repo:    repo,
		gateway: gateway,
		config:  config,
		logger:  logger.Named("outbox"),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Start starts the background loops
func (d *Dispatcher) Start(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.cancel != nil {
		return nil
	}

	ctx, cancel := context.WithCancel(ctx)
	d.cancel = cancel

	d.wg.Add(1)
	go d.processLoop(ctx)

	if d.config.CleanupEnabled {
		d.wg.Add(1)
		go d.cleanupLoop(ctx)
	}

	d.logger.Info("Notification dispatcher started",
		zap.Int("batch_size", d.config.BatchSize),
		zap.Duration("poll_interval", d.config.PollInterval),
	)
	return nil
}

// Stop gracefully stops the dispatcher
func (d *Dispatcher) Stop(ctx context.Context) error {
	d.mu.Lock()
	cancel := d.cancel
	d.cancel = nil
	d.mu.Unlock()

	if cancel == nil {
		return nil
	}
	cancel()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		d.logger.Info("Notification dispatcher stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Dispatcher) processLoop(ctx context.Context) {
	defer d.wg.Done()

	ticker := time.NewTicker(d.config.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			// Drain the backlog before waiting for the next tick.
			for {
				stats, err := d.ProcessBatch(ctx)
				if err != nil || stats.Claimed < d.config.BatchSize || ctx.Err() != nil {
					break
				}
			}
		}
	}
}

// ProcessBatch claims and sends one batch of due deliveries
func (d *Dispatcher) ProcessBatch(ctx context.Context) (BatchStats, error) {
	var stats BatchStats

	claimed, err := d.repo.ClaimDue(ctx, d.now(), d.config.BatchSize)
	if err != nil {
		d.logger.Error("Failed to claim due deliveries", zap.Error(err))
		return stats, fmt.Errorf("claim due deliveries: %w", err)
	}
	stats.Claimed = len(claimed)

	for _, delivery := range claimed {
		switch d.deliver(ctx, delivery) {
		case notification.DeliverySent:
			stats.Sent++
		case notification.DeliveryDead:
			stats.Dead++
		default:
			stats.Retried++
		}
	}

	if stats.Claimed > 0 {
		d.logger.Info("Processed notification deliveries",
			zap.Int("claimed", stats.Claimed),
			zap.Int("sent", stats.Sent),
			zap.Int("retried", stats.Retried),
			zap.Int("dead", stats.Dead),
		)
	}
	if d.recorder != nil {
		d.recorder.RecordDispatch(ctx, stats)
	}
	return stats, nil
}

func (d *Dispatcher) deliver(ctx context.Context, delivery *notification.Delivery) notification.DeliveryStatus {
	sendCtx, cancel := context.WithTimeout(ctx, d.config.SendTimeout)
	err := d.safeSend(sendCtx, delivery.Message())
	cancel()

	if err != nil {
		delivery.MarkFailed(err.Error())
		if delivery.IsDead() {
			d.logger.Warn("Delivery moved to dead letter queue",
				zap.String("delivery_id", delivery.ID.String()),
				zap.String("project_id", delivery.ProjectID.String()),
				zap.String("recipient", delivery.RecipientEmail),
				zap.Int("retry_count", delivery.RetryCount),
				zap.String("last_error", delivery.LastError),
			)
		} else {
			d.logger.Warn("Delivery failed, retry scheduled",
				zap.String("delivery_id", delivery.ID.String()),
				zap.String("recipient", delivery.RecipientEmail),
				zap.Int("retry_count", delivery.RetryCount),
				zap.Timep("next_retry_at", delivery.NextRetryAt),
				zap.Error(err),
			)
		}
	} else {
		delivery.MarkSent()
	}

	// The write back must survive a dispatcher shutdown mid-batch, or the
	// row would stay PROCESSING.
	if updateErr := d.repo.Update(context.WithoutCancel(ctx), delivery); updateErr != nil {
		d.logger.Error("Failed to update delivery",
			zap.String("delivery_id", delivery.ID.String()),
			zap.Error(updateErr),
		)
	}
	return delivery.Status
}

func (d *Dispatcher) safeSend(ctx context.Context, msg notification.Message) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("gateway panic: %v", r)
		}
	}()
	return d.gateway.Send(ctx, msg)
}

func (d *Dispatcher) cleanupLoop(ctx context.Context) {
	defer d.wg.Done()

	ticker := time.NewTicker(d.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_, _ = d.Cleanup(ctx)
		}
	}
}

// Cleanup removes sent deliveries older than the retention window
func (d *Dispatcher) Cleanup(ctx context.Context) (int64, error) {
	cutoff := d.now().Add(-d.config.CleanupRetention)
	deleted, err := d.repo.DeleteSentBefore(ctx, cutoff)
	if err != nil {
		d.logger.Error("Failed to clean up sent deliveries", zap.Error(err))
		return 0, err
	}

	if deleted > 0 {
		d.logger.Info("Cleaned up sent deliveries",
			zap.Int64("deleted", deleted),
			zap.Time("cutoff", cutoff),
		)
	}
	return deleted, nil
}
