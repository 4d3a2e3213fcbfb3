// Package notification implements the overdue fan-out: one message per
// organization member, delivered inline or queued in the outbox.
package notification

import (
	"context"
	"fmt"
	"sync"

	domain "github.com/ngo-pm/backend/internal/domain/notification"
	"github.com/ngo-pm/backend/internal/domain/project"
	"go.uber.org/zap"
)

// BroadcastConfig holds inline fan-out settings
type BroadcastConfig struct {
	// MaxConcurrency caps simultaneous gateway calls for one project
	MaxConcurrency int
}

// DefaultBroadcastConfig returns default broadcast settings
func DefaultBroadcastConfig() BroadcastConfig {
	return BroadcastConfig{MaxConcurrency: 10}
}

// BroadcastNotifier sends the overdue alert to every member concurrently and
// waits for all attempts. There is no retry: a failed recipient is logged
// and counted, and does not affect the others.
type BroadcastNotifier struct {
	builder messageBuilder
	gateway domain.Gateway
	logger  *zap.Logger
	config  BroadcastConfig
}

// NewBroadcastNotifier creates an inline notifier
func NewBroadcastNotifier(
	directory MemberDirectory,
	orgs OrganizationLookup,
	composer Composer,
	gateway domain.Gateway,
	logger *zap.Logger,
	config BroadcastConfig,
) *BroadcastNotifier {
	if config.MaxConcurrency <= 0 {
		config.MaxConcurrency = DefaultBroadcastConfig().MaxConcurrency
	}
	return &BroadcastNotifier{
		builder: messageBuilder{directory: directory, orgs: orgs, composer: composer, logger: logger},
		gateway: gateway,
		logger:  logger,
		config:  config,
	}
}

// NotifyOverdue implements deadline.Notifier
func (n *BroadcastNotifier) NotifyOverdue(ctx context.Context, p *project.Project) (domain.FanOutResult, error) {
	messages, result, err := n.builder.build(ctx, p)
	if err != nil {
		return result, err
	}

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		delivered int
		failed    int
		sem       = make(chan struct{}, n.config.MaxConcurrency)
	)

	for _, msg := range messages {
		wg.Add(1)
		go func(msg domain.Message) {
			defer wg.Done()

			sem <- struct{}{}
			defer func() { <-sem }()

			err := n.send(ctx, msg)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failed++
				n.logger.Warn("Overdue notification delivery failed",
					zap.String("project_id", p.ID.String()),
					zap.String("recipient", msg.To.Address),
					zap.Error(err),
				)
				return
			}
			delivered++
		}(msg)
	}
	wg.Wait()

	result.Delivered += delivered
	result.Failed += failed

	n.logger.Info("Overdue notification broadcast finished",
		zap.String("project_id", p.ID.String()),
		zap.Int("recipients", result.Recipients),
		zap.Int("delivered", result.Delivered),
		zap.Int("failed", result.Failed),
		zap.Int("skipped", result.Skipped),
	)
	return result, nil
}

// send isolates one recipient: gateway panics become errors
func (n *BroadcastNotifier) send(ctx context.Context, msg domain.Message) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("email gateway panic: %v", r)
		}
	}()
	return n.gateway.Send(ctx, msg)
}
