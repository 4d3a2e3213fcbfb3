package email

import (
	"fmt"

	"github.com/ngo-pm/backend/internal/domain/notification"
	"github.com/ngo-pm/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// NewGateway builds the gateway selected by the notification provider
func NewGateway(cfg config.NotificationConfig, logger *zap.Logger) (notification.Gateway, error) {
	switch cfg.Provider {
	case config.EmailProviderSendGrid:
		if cfg.SendGridAPIKey == "" {
			return nil, fmt.Errorf("sendgrid provider requires an api key")
		}
		return NewSendGridGateway(cfg.SendGridAPIKey), nil
	case config.EmailProviderConsole, "":
		return NewConsoleGateway(logger), nil
	default:
		return nil, fmt.Errorf("unknown email provider %q", cfg.Provider)
	}
}

// NewComposerFromConfig builds a Composer from the notification settings
func NewComposerFromConfig(cfg config.NotificationConfig) (*Composer, error) {
	return NewComposer(ComposerConfig{
		AppName:      cfg.AppName,
		FromEmail:    cfg.FromEmail,
		FromName:     cfg.FromName,
		DashboardURL: cfg.DashboardURL,
	})
}
