// Package notify formats failure alerts and hands them to a mail transport.
package notify

import (
	"bytes"
	"context"
	"fmt"
	"text/template"
	"time"

	"go.uber.org/zap"

	"github.com/accidents-lab/pipeline-orchestrator/internal/core/logger"
	"github.com/accidents-lab/pipeline-orchestrator/internal/metrics"
)

const (
	ResultSent   = "sent"
	ResultFailed = "failed"
)

type FailureEvent struct {
	JobName      string `json:"job_name"`
	RunId        string `json:"run_id"`
	ErrorMessage string `json:"error_message"`
}

type AlertMessage struct {
	Subject string
	Body    string
}

var bodyTemplate = template.Must(template.New("alert").Parse(`Hello Engineer,

A critical failure occurred in your pipeline execution.

--------------------------------------------------
Job Name: {{ .JobName }}
Run ID:   {{ .RunId }}
--------------------------------------------------

Error Details:
{{ .ErrorMessage }}

Please check the Hatchet dashboard for logs.
`))

// FormatAlert renders the alert for ev. The same event always yields the same message.
func FormatAlert(ev FailureEvent) AlertMessage {
	var body bytes.Buffer
	// Execute only fails on writer errors; bytes.Buffer never returns one.
	_ = bodyTemplate.Execute(&body, ev)
	return AlertMessage{
		Subject: fmt.Sprintf("Alert: Job '%s' Failed!", ev.JobName),
		Body:    body.String(),
	}
}

type Transport interface {
	Send(ctx context.Context, subject, body string) error
}

type DeliveryError struct {
	Err error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("failed to deliver alert: %v", e.Err)
}

func (e *DeliveryError) Unwrap() error {
	return e.Err
}

// Notifier sends one message per call through its transport. There is no
// retry and no queue.
type Notifier struct {
	transport Transport
	timeout   time.Duration
}

func NewNotifier(transport Transport, timeout time.Duration) *Notifier {
	return &Notifier{transport: transport, timeout: timeout}
}

func (n *Notifier) SendAlert(ctx context.Context, subject, body string) (err error) {
	lg := logger.NewFromCtx(ctx).Named("notify")
	if n.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, n.timeout)
		defer cancel()
	}
	defer func() {
		if r := recover(); r != nil {
			err = &DeliveryError{Err: fmt.Errorf("transport panic: %v", r)}
		}
		if err != nil {
			metrics.RecordAlert(ResultFailed)
			lg.Error("failed to send alert", zap.String("subject", subject), zap.Error(err))
			return
		}
		metrics.RecordAlert(ResultSent)
		lg.Info("alert sent", zap.String("subject", subject))
	}()

	if err := n.transport.Send(ctx, subject, body); err != nil {
		return &DeliveryError{Err: err}
	}
	return nil
}
