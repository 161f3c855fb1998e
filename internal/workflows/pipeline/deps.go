package pipeline

import (
	"context"
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/accidents-lab/pipeline-orchestrator/internal/config"
	"github.com/accidents-lab/pipeline-orchestrator/internal/core/httpx"
	"github.com/accidents-lab/pipeline-orchestrator/internal/core/uow"
	"github.com/accidents-lab/pipeline-orchestrator/internal/domain/notify"
	"github.com/accidents-lab/pipeline-orchestrator/internal/domain/sensor"
	"github.com/accidents-lab/pipeline-orchestrator/internal/domain/tasks"
	"github.com/accidents-lab/pipeline-orchestrator/internal/infrastructure/airbyte"
	"github.com/accidents-lab/pipeline-orchestrator/internal/infrastructure/dbt"
	"github.com/accidents-lab/pipeline-orchestrator/internal/infrastructure/mail"
	"github.com/accidents-lab/pipeline-orchestrator/internal/infrastructure/powerbi"
	"github.com/accidents-lab/pipeline-orchestrator/internal/infrastructure/s3"
	"github.com/accidents-lab/pipeline-orchestrator/internal/infrastructure/valkey"
)

type FailureHandler interface {
	Handle(ctx context.Context, ev notify.FailureEvent) sensor.Outcome
}

// Deps holds the task units and the failure sensor of one pipeline.
// Archive is nil when artifact archiving is not configured.
type Deps struct {
	Ingestion tasks.Unit
	Transform tasks.Unit
	Reporting tasks.Unit
	Archive   tasks.Unit
	Sensor    FailureHandler

	resources *uow.Uow
}

func NewDeps(ctx context.Context, cfg *config.Config, lg *zap.Logger) (*Deps, error) {
	deps := &Deps{}
	unitOfWork := uow.UnitOfWork()
	httpClient := httpx.NewClient()

	deps.Ingestion = tasks.NewIngestion(airbyte.NewClient(cfg.Airbyte, httpClient), cfg.Pipeline.SoftErrorPolicy)

	builder, err := dbt.NewRunner(cfg.Dbt)
	if err != nil {
		return nil, fmt.Errorf("failed to create dbt runner: %w", err)
	}
	deps.Transform = tasks.NewTransform(builder)

	var refresher tasks.Refresher
	if cfg.PowerBI.Mode == powerbi.ModeLive {
		refresher = powerbi.NewClient(cfg.PowerBI, httpClient)
	}
	deps.Reporting = tasks.NewReporting(refresher)

	var transport notify.Transport
	switch cfg.Mail.Transport {
	case mail.TransportSendGrid:
		transport = mail.NewSendGridTransport(cfg.Mail)
	default:
		transport = mail.NewSMTPTransport(cfg.Mail)
	}
	notifier := notify.NewNotifier(transport, cfg.Mail.Timeout)

	var guard sensor.Guard
	if cfg.Valkey.Enabled() {
		client, err := valkey.NewValkey(&cfg.Valkey)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to valkey: %w", err)
		}
		unitOfWork.Add("valkey", func() error {
			client.Close()
			return nil
		})
		guard = valkey.NewAlertGuard(client, cfg.Valkey.AlertTTL)
	}

	deps.Sensor = sensor.NewSensor(notifier, guard)

	if cfg.S3.Enabled() {
		s3Client, err := s3.NewS3Client(ctx, &cfg.S3, lg.Named("s3"))
		if err != nil {
			return nil, unitOfWork.Rollback(err)
		}
		if cfg.S3.CreateBucket {
			if err := s3.CreateS3BucketIfNotExists(ctx, s3Client, cfg.S3.Bucket); err != nil {
				return nil, unitOfWork.Rollback(fmt.Errorf("failed to create bucket %s: %w", cfg.S3.Bucket, err))
			}
		}
		deps.Archive = tasks.NewArchive(
			s3.NewUploader(s3Client, &cfg.S3),
			filepath.Join(cfg.Dbt.ProjectDir, "target"),
		)
	}

	deps.resources = unitOfWork.Commit()
	return deps, nil
}

func (d *Deps) Close() error {
	if d.resources == nil {
		return nil
	}
	return d.resources.Rollback(nil)
}

// Stages lists units in dependency order. Units within a stage only
// depend on earlier stages.
func (d *Deps) Stages() [][]tasks.Unit {
	downstream := []tasks.Unit{d.Reporting}
	if d.Archive != nil {
		downstream = append(downstream, d.Archive)
	}
	return [][]tasks.Unit{
		{d.Ingestion},
		{d.Transform},
		downstream,
	}
}
