// Package notification holds the messages sent to organization members and
// the durable delivery records used when notifications go through the outbox.
package notification

import (
	"context"
	"net/mail"
	"strings"
)

// Message is one formatted email addressed to a single recipient.
type Message struct {
	To      mail.Address
	From    mail.Address
	Subject string
	HTML    string
	Text    string
}

// Validate checks the message has a deliverable recipient and some content
func (m Message) Validate() error {
	if strings.TrimSpace(m.To.Address) == "" {
		return ErrMissingRecipient
	}
	if m.Subject == "" {
		return ErrMissingSubject
	}
	if m.HTML == "" && m.Text == "" {
		return ErrEmptyBody
	}
	return nil
}

// Gateway delivers a single message. Implementations return an error when the
// provider rejects or cannot be reached; they must not panic.
type Gateway interface {
	Send(ctx context.Context, msg Message) error
}

// GatewayFunc adapts a function to the Gateway interface
type GatewayFunc func(ctx context.Context, msg Message) error

// Send calls f(ctx, msg)
func (f GatewayFunc) Send(ctx context.Context, msg Message) error {
	return f(ctx, msg)
}

// FanOutResult summarizes one overdue broadcast for a project
type FanOutResult struct {
	Recipients int `json:"recipients"`
	Delivered  int `json:"delivered"`
	Failed     int `json:"failed"`
	Skipped    int `json:"skipped"`
	Queued     int `json:"queued"`
}

// Add accumulates another result into r
func (r *FanOutResult) Add(other FanOutResult) {
	r.Recipients += other.Recipients
	r.Delivered += other.Delivered
	r.Failed += other.Failed
	r.Skipped += other.Skipped
	r.Queued += other.Queued
}
