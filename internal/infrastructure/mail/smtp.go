// Package mail delivers plain-text alerts through an SMTP relay or SendGrid.
package mail

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"mime"
	"net"
	netmail "net/mail"
	"net/smtp"
	"strings"
	"time"
)

var ErrStartTLSUnsupported = errors.New("smtp relay does not offer STARTTLS")

// SMTPTransport opens one connection per message: dial, STARTTLS, AUTH, send, QUIT.
type SMTPTransport struct {
	cfg       Config
	tlsConfig *tls.Config
	now       func() time.Time
}

func NewSMTPTransport(cfg Config) *SMTPTransport {
	return &SMTPTransport{
		cfg: cfg,
		tlsConfig: &tls.Config{
			ServerName: cfg.Host,
			MinVersion: tls.VersionTLS12,
		},
		now: time.Now,
	}
}

func (t *SMTPTransport) Send(ctx context.Context, subject, body string) error {
	var dialer net.Dialer
	conn, err := dialer.DialContext(ctx, "tcp", t.cfg.Addr())
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", t.cfg.Addr(), err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	client, err := smtp.NewClient(conn, t.cfg.Host)
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("failed to start smtp session: %w", err)
	}
	defer client.Close()

	if ok, _ := client.Extension("STARTTLS"); !ok {
		return ErrStartTLSUnsupported
	}
	if err := client.StartTLS(t.tlsConfig); err != nil {
		return fmt.Errorf("failed to upgrade to tls: %w", err)
	}
	if err := client.Auth(smtp.PlainAuth("", t.cfg.Username, t.cfg.Password, t.cfg.Host)); err != nil {
		return fmt.Errorf("failed to authenticate as %s: %w", t.cfg.Username, err)
	}
	if err := client.Mail(t.cfg.Sender()); err != nil {
		return fmt.Errorf("smtp MAIL FROM rejected: %w", err)
	}
	if err := client.Rcpt(t.cfg.To); err != nil {
		return fmt.Errorf("smtp RCPT TO rejected: %w", err)
	}
	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("smtp DATA rejected: %w", err)
	}
	if _, err := w.Write(buildMessage(t.cfg, subject, body, t.now())); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("smtp relay refused message: %w", err)
	}
	return client.Quit()
}

// buildMessage renders an RFC 5322 plain-text message with CRLF line endings.
func buildMessage(cfg Config, subject, body string, date time.Time) []byte {
	from := netmail.Address{Name: cfg.FromName, Address: cfg.Sender()}
	to := netmail.Address{Address: cfg.To}

	var buf bytes.Buffer
	header := func(key, value string) {
		fmt.Fprintf(&buf, "%s: %s\r\n", key, value)
	}
	header("From", from.String())
	header("To", to.String())
	header("Subject", mime.QEncoding.Encode("utf-8", subject))
	header("Date", date.Format(time.RFC1123Z))
	header("MIME-Version", "1.0")
	header("Content-Type", "text/plain; charset=UTF-8")
	header("Content-Transfer-Encoding", "8bit")
	buf.WriteString("\r\n")

	normalized := strings.ReplaceAll(body, "\r\n", "\n")
	buf.WriteString(strings.ReplaceAll(normalized, "\n", "\r\n"))
	if !strings.HasSuffix(normalized, "\n") {
		buf.WriteString("\r\n")
	}
	return buf.Bytes()
}
