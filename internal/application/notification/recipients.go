package notification

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"

	domain "github.com/ngo-pm/backend/internal/domain/notification"
	"github.com/ngo-pm/backend/internal/domain/project"
	"go.uber.org/zap"
)

// messageBuilder turns an overdue project into one message per member
type messageBuilder struct {
	directory MemberDirectory
	orgs      OrganizationLookup
	composer  Composer
	logger    *zap.Logger
}

// build returns the composed messages. Members without an email are counted
// as skipped, and members whose message fails to render as failed.
func (b *messageBuilder) build(ctx context.Context, p *project.Project) ([]domain.Message, domain.FanOutResult, error) {
	var result domain.FanOutResult

	members, err := b.directory.ListMembers(ctx, p.OrganizationID)
	if err != nil {
		return nil, result, fmt.Errorf("list members of organization %s: %w", p.OrganizationID, err)
	}

	orgName := ""
	if b.orgs != nil {
		if org, err := b.orgs.FindByID(ctx, p.OrganizationID); err != nil {
			b.logger.Warn("Failed to load organization for notification",
				zap.String("organization_id", p.OrganizationID.String()),
				zap.Error(err),
			)
		} else {
			orgName = org.Name
		}
	}

	var deadline time.Time
	if p.Deadline != nil {
		deadline = *p.Deadline
	}

	messages := make([]domain.Message, 0, len(members))
	for _, member := range members {
		if !member.HasEmail() {
			result.Skipped++
			continue
		}
		result.Recipients++

		msg, err := b.composer.ComposeOverdue(OverdueNotice{
			Recipient:        mail.Address{Name: member.FullName(), Address: strings.TrimSpace(member.Email)},
			FirstName:        member.FirstName,
			ProjectID:        p.ID,
			ProjectName:      p.Name,
			OrganizationName: orgName,
			DaysOverdue:      p.DaysOverdue(),
			Deadline:         deadline,
			Progress:         p.Progress,
		})
		if err != nil {
			result.Failed++
			b.logger.Warn("Failed to compose overdue notification",
				zap.String("project_id", p.ID.String()),
				zap.String("user_id", member.ID.String()),
				zap.Error(err),
			)
			continue
		}
		messages = append(messages, msg)
	}
	return messages, result, nil
}
