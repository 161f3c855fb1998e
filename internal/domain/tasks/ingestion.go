package tasks

import (
	"context"
	"errors"
	"strconv"

	"github.com/iancoleman/strcase"
	"go.uber.org/zap"

	"github.com/accidents-lab/pipeline-orchestrator/internal/core/httpx"
	"github.com/accidents-lab/pipeline-orchestrator/internal/core/logger"
	"github.com/accidents-lab/pipeline-orchestrator/internal/domain/runconfig"
	"github.com/accidents-lab/pipeline-orchestrator/internal/infrastructure/airbyte"
)

const IngestionAssetKey = "us_accidents_raw"

type SyncTrigger interface {
	TriggerSync(ctx context.Context) (*airbyte.Job, error)
}

// Ingestion starts the Airbyte sync that lands the raw accidents data.
type Ingestion struct {
	trigger SyncTrigger
	policy  SoftErrorPolicy
}

func NewIngestion(trigger SyncTrigger, policy SoftErrorPolicy) *Ingestion {
	if policy == "" {
		policy = ContinueOnSoftError
	}
	return &Ingestion{trigger: trigger, policy: policy}
}

func (i *Ingestion) Name() string {
	return strcase.ToKebab(IngestionAssetKey)
}

func (i *Ingestion) Run(ctx context.Context, cfg runconfig.RunConfig) (*Result, error) {
	return Guard(ctx, i.Name(), cfg, func(ctx context.Context) (*Result, error) {
		lg := logger.NewFromCtx(ctx)
		lg.Info("triggering airbyte sync")
		job, err := i.trigger.TriggerSync(ctx)
		if err != nil {
			var statusErr *httpx.StatusError
			if !errors.As(err, &statusErr) {
				return nil, &ExternalCallError{Task: i.Name(), Target: "airbyte", Err: err}
			}
			soft := &SoftAPIError{Target: "airbyte", StatusCode: statusErr.StatusCode, Body: statusErr.Body}
			lg.Warn(soft.Error())
			if i.policy == FailOnSoftError {
				return nil, soft
			}
			lg.Warn("continuing without a new sync; run it manually from airbyte if fresh data is needed")
			return &Result{Status: StatusSoftFailed, Detail: soft.Error()}, nil
		}
		jobId := strconv.FormatInt(job.JobId, 10)
		logger.SetCtxFields(ctx, zap.String("airbyte_job_id", jobId))
		lg.Info("airbyte sync started", zap.String("job_id", jobId), zap.String("job_status", job.Status))
		return &Result{Status: StatusSucceeded, ExternalId: jobId, Detail: job.Status}, nil
	})
}
