// Package sensor turns failed workflow runs into email alerts.
package sensor

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/accidents-lab/pipeline-orchestrator/internal/core/ids"
	"github.com/accidents-lab/pipeline-orchestrator/internal/core/logger"
	"github.com/accidents-lab/pipeline-orchestrator/internal/domain/notify"
)

type Outcome string

const (
	OutcomeAlerted        Outcome = "alerted"
	OutcomeDuplicate      Outcome = "duplicate"
	OutcomeDeliveryFailed Outcome = "delivery-failed"
)

type Alerter interface {
	SendAlert(ctx context.Context, subject, body string) error
}

// Guard claims the right to alert for a key. A false claim means another
// delivery of the same failure already alerted. Release gives the claim
// back so a later delivery can retry the alert.
type Guard interface {
	Claim(ctx context.Context, key string) (bool, error)
	Release(ctx context.Context, key string) error
}

type Sensor struct {
	alerter Alerter
	guard   Guard
}

// NewSensor builds a sensor; guard may be nil.
func NewSensor(alerter Alerter, guard Guard) *Sensor {
	return &Sensor{alerter: alerter, guard: guard}
}

// Handle sends one alert for ev. Failures are logged and reported through
// the Outcome only.
func (s *Sensor) Handle(ctx context.Context, ev notify.FailureEvent) (outcome Outcome) {
	lg := logger.NewFromCtx(ctx).Named("sensor").With(
		zap.String("job", ev.JobName),
		zap.String("run_id", ev.RunId),
	)
	key := ids.AlertKey(ev.JobName, ids.ParseRunId(ev.RunId))
	claimed := false
	defer func() {
		if r := recover(); r != nil {
			lg.Error("failure sensor panicked", zap.String("panic", fmt.Sprint(r)))
			outcome = OutcomeDeliveryFailed
		}
		if outcome == OutcomeDeliveryFailed && claimed {
			if err := s.guard.Release(ctx, key); err != nil {
				lg.Warn("failed to release alert claim", zap.String("key", key), zap.Error(err))
			}
		}
	}()

	if s.guard != nil {
		ok, err := s.guard.Claim(ctx, key)
		switch {
		case err != nil:
			lg.Warn("alert dedupe unavailable, alerting anyway", zap.Error(err))
		case !ok:
			lg.Info("alert already sent for this run")
			return OutcomeDuplicate
		default:
			claimed = true
		}
	}

	msg := notify.FormatAlert(ev)
	if err := s.alerter.SendAlert(ctx, msg.Subject, msg.Body); err != nil {
		lg.Error("failure alert not delivered", zap.Error(err))
		return OutcomeDeliveryFailed
	}
	lg.Info("failure alert delivered")
	return OutcomeAlerted
}
