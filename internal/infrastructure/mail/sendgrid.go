package mail

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

const (
	sendGridEndpoint = "/v3/mail/send"
	sendGridHost     = "https://api.sendgrid.com"
)

// SendGridTransport is the HTTP alternative for hosts without SMTP egress.
type SendGridTransport struct {
	cfg  Config
	host string
}

func NewSendGridTransport(cfg Config) *SendGridTransport {
	return &SendGridTransport{cfg: cfg, host: sendGridHost}
}

func (t *SendGridTransport) message(subject, body string) *sgmail.SGMailV3 {
	m := sgmail.NewV3Mail()
	m.SetFrom(sgmail.NewEmail(t.cfg.FromName, t.cfg.Sender()))
	m.Subject = subject
	p := sgmail.NewPersonalization()
	p.AddTos(sgmail.NewEmail("", t.cfg.To))
	m.AddPersonalizations(p)
	m.AddContent(sgmail.NewContent("text/plain", body))
	return m
}

func (t *SendGridTransport) Send(ctx context.Context, subject, body string) error {
	request := sendgrid.GetRequest(t.cfg.SendGridApiKey, sendGridEndpoint, t.host)
	request.Method = "POST"
	request.Body = sgmail.GetRequestBody(t.message(subject, body))

	response, err := sendgrid.MakeRequestWithContext(ctx, request)
	if err != nil {
		return fmt.Errorf("failed to call sendgrid: %w", err)
	}
	if response.StatusCode >= 400 {
		return fmt.Errorf("sendgrid error: status %d: %s", response.StatusCode, response.Body)
	}
	return nil
}
