package email

import (
	"context"
	"sync"

	"github.com/ngo-pm/backend/internal/domain/notification"
	"go.uber.org/zap"
)

// ConsoleGateway logs messages instead of sending them. Sent messages are
// kept in memory for inspection.
type ConsoleGateway struct {
	logger *zap.Logger

	mu   sync.Mutex
	sent []notification.Message
}

// NewConsoleGateway creates a development gateway
func NewConsoleGateway(logger *zap.Logger) *ConsoleGateway {
	return &ConsoleGateway{logger: logger.Named("email")}
}

// Send implements notification.Gateway
func (g *ConsoleGateway) Send(ctx context.Context, msg notification.Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	g.mu.Lock()
	g.sent = append(g.sent, msg)
	g.mu.Unlock()

	g.logger.Info("Email",
		zap.String("to", msg.To.String()),
		zap.String("from", msg.From.String()),
		zap.String("subject", msg.Subject),
		zap.String("text", msg.Text),
	)
	return nil
}

// Sent returns a copy of the messages sent so far
func (g *ConsoleGateway) Sent() []notification.Message {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]notification.Message, len(g.sent))
	copy(out, g.sent)
	return out
}

var _ notification.Gateway = (*ConsoleGateway)(nil)
