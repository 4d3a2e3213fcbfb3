package email

import (
	"context"
	"fmt"
	"net/http"

	"github.com/ngo-pm/backend/internal/domain/notification"
	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

const (
	sendGridHost     = "https://api.sendgrid.com"
	sendGridEndpoint = "/v3/mail/send"
)

// SendGridGateway delivers messages through the SendGrid v3 mail API. A
// response status of 400 or above is a failed send.
type SendGridGateway struct {
	apiKey string
	host   string
	client *rest.Client
}

// SendGridOption configures a SendGridGateway
type SendGridOption func(*SendGridGateway)

// WithSendGridHost overrides the API host
func WithSendGridHost(host string) SendGridOption {
	return func(g *SendGridGateway) {
		g.host = host
	}
}

// NewSendGridGateway creates a gateway using apiKey
func NewSendGridGateway(apiKey string, opts ...SendGridOption) *SendGridGateway {
	g := &SendGridGateway{apiKey: apiKey, host: sendGridHost, client: rest.DefaultClient}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Send implements notification.Gateway
func (g *SendGridGateway) Send(ctx context.Context, msg notification.Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}

	req := sendgrid.GetRequest(g.apiKey, sendGridEndpoint, g.host)
	req.Method = http.MethodPost
	req.Body = sgmail.GetRequestBody(buildSGMail(msg))

	// sendgrid.API has no context variant, so the request is built and sent
	// through the rest client directly.
	httpReq, err := rest.BuildRequestObject(req)
	if err != nil {
		return fmt.Errorf("build sendgrid request: %w", err)
	}
	httpRes, err := g.client.MakeRequest(httpReq.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("sendgrid request: %w", err)
	}
	res, err := rest.BuildResponse(httpRes)
	if err != nil {
		return fmt.Errorf("read sendgrid response: %w", err)
	}
	if res.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("sendgrid rejected message to %s: status %d: %s", msg.To.Address, res.StatusCode, res.Body)
	}
	return nil
}

func buildSGMail(msg notification.Message) *sgmail.SGMailV3 {
	p := sgmail.NewPersonalization()
	p.Subject = msg.Subject
	p.AddTos(sgmail.NewEmail(msg.To.Name, msg.To.Address))

	m := sgmail.NewV3Mail()
	m.SetFrom(sgmail.NewEmail(msg.From.Name, msg.From.Address))
	m.Subject = msg.Subject
	m.AddPersonalizations(p)

	// text/plain must precede text/html
	if msg.Text != "" {
		m.AddContent(sgmail.NewContent("text/plain", msg.Text))
	}
	if msg.HTML != "" {
		m.AddContent(sgmail.NewContent("text/html", msg.HTML))
	}
	return m
}

var _ notification.Gateway = (*SendGridGateway)(nil)
