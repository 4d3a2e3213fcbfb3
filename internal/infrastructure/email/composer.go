// Package email renders notification emails and delivers them through
// SendGrid or, in development, the log.
package email

import (
	"bytes"
	"embed"
	"fmt"
	htmltmpl "html/template"
	"net/mail"
	"strings"
	texttmpl "text/template"
	"time"

	appnotification "github.com/ngo-pm/backend/internal/application/notification"
	"github.com/ngo-pm/backend/internal/domain/notification"
)

//go:embed templates/*
var templateFS embed.FS

const (
	overdueTemplate = "overdue_project"
	deadlineLayout  = "January 2, 2006"
)

// ComposerConfig holds the sender identity and links used in every email
type ComposerConfig struct {
	AppName      string
	FromEmail    string
	FromName     string
	DashboardURL string
	// Location is the calendar deadlines are shown in. It must match the
	// tracker clock's location; nil means time.Local.
	Location *time.Location
}

// Composer renders notices with the embedded html and text templates
type Composer struct {
	config ComposerConfig
	html   *htmltmpl.Template
	text   *texttmpl.Template
}

// overdueData is the template context for overdue_project
type overdueData struct {
	FirstName        string
	ProjectName      string
	OrganizationName string
	DaysOverdue      int
	DaysOverdueLabel string
	DeadlineLabel    string
	Progress         int
	DashboardURL     string
	AppName          string
}

// NewComposer parses the embedded templates
func NewComposer(cfg ComposerConfig) (*Composer, error) {
	html, err := htmltmpl.ParseFS(templateFS, "templates/"+overdueTemplate+".html")
	if err != nil {
		return nil, fmt.Errorf("parse html templates: %w", err)
	}
	text, err := texttmpl.ParseFS(templateFS, "templates/"+overdueTemplate+".txt")
	if err != nil {
		return nil, fmt.Errorf("parse text templates: %w", err)
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	return &Composer{config: cfg, html: html, text: text}, nil
}

// ComposeOverdue implements notification.Composer
func (c *Composer) ComposeOverdue(n appnotification.OverdueNotice) (notification.Message, error) {
	data := overdueData{
		FirstName:        n.FirstName,
		ProjectName:      n.ProjectName,
		OrganizationName: n.OrganizationName,
		DaysOverdue:      n.DaysOverdue,
		DaysOverdueLabel: dayCount(n.DaysOverdue),
		DeadlineLabel:    "not set",
		Progress:         n.Progress,
		DashboardURL:     c.projectURL(n),
		AppName:          c.config.AppName,
	}
	if !n.Deadline.IsZero() {
		data.DeadlineLabel = n.Deadline.In(c.config.Location).Format(deadlineLayout)
	}
	if data.FirstName == "" {
		data.FirstName = "there"
	}

	var html, text bytes.Buffer
	if err := c.html.Execute(&html, data); err != nil {
		return notification.Message{}, fmt.Errorf("render html: %w", err)
	}
	if err := c.text.Execute(&text, data); err != nil {
		return notification.Message{}, fmt.Errorf("render text: %w", err)
	}

	msg := notification.Message{
		To:      n.Recipient,
		From:    mail.Address{Name: c.config.FromName, Address: c.config.FromEmail},
		Subject: OverdueSubject(c.config.AppName, n.ProjectName, n.DaysOverdue),
		HTML:    html.String(),
		Text:    text.String(),
	}
	return msg, msg.Validate()
}

// OverdueSubject builds `[App] Project "name" is N day(s) overdue`
func OverdueSubject(appName, projectName string, daysOverdue int) string {
	return fmt.Sprintf(`[%s] Project "%s" is %s overdue`, appName, projectName, dayCount(daysOverdue))
}

func (c *Composer) projectURL(n appnotification.OverdueNotice) string {
	base := strings.TrimRight(c.config.DashboardURL, "/")
	if base == "" {
		return ""
	}
	return base + "/projects/" + n.ProjectID.String()
}

func dayCount(n int) string {
	if n == 1 {
		return "1 day"
	}
	return fmt.Sprintf("%d days", n)
}

var _ appnotification.Composer = (*Composer)(nil)
