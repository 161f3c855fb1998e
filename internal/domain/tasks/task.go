// Package tasks implements the pipeline steps and the run configuration
// policy they share.
package tasks

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/accidents-lab/pipeline-orchestrator/internal/core/ids"
	"github.com/accidents-lab/pipeline-orchestrator/internal/core/logger"
	"github.com/accidents-lab/pipeline-orchestrator/internal/domain/runconfig"
	"github.com/accidents-lab/pipeline-orchestrator/internal/metrics"
)

type Status string

const (
	StatusSucceeded  Status = "succeeded"
	StatusSkipped    Status = "skipped"
	StatusSoftFailed Status = "soft-failed"
	StatusStubbed    Status = "stubbed"
	// StatusFailed is only reported to metrics; failed tasks return an error instead of a Result.
	StatusFailed Status = "failed"
)

type Result struct {
	Task       string         `json:"task"`
	Status     Status         `json:"status"`
	Detail     string         `json:"detail,omitempty"`
	ExternalId string         `json:"external_id,omitempty"`
	Nodes      map[string]int `json:"nodes,omitempty"`
}

type Unit interface {
	Name() string
	Run(ctx context.Context, cfg runconfig.RunConfig) (*Result, error)
}

type SoftErrorPolicy string

const (
	ContinueOnSoftError SoftErrorPolicy = "continue-on-soft-error"
	FailOnSoftError     SoftErrorPolicy = "fail-on-soft-error"
)

type runIdKey struct{}

func WithRunId(ctx context.Context, runId ids.RunId) context.Context {
	return context.WithValue(ctx, runIdKey{}, runId)
}

func RunIdFromCtx(ctx context.Context) (ids.RunId, bool) {
	runId, ok := ctx.Value(runIdKey{}).(ids.RunId)
	return runId, ok && runId != ""
}

// Guard applies cfg before fn runs: a simulated failure returns
// *SimulatedFailureError, a dry run returns StatusSkipped, otherwise fn
// is called with a context whose logger carries the task name. Fields fn
// adds with logger.SetCtxFields show up on the closing log line.
func Guard(
	ctx context.Context,
	name string,
	cfg runconfig.RunConfig,
	fn func(ctx context.Context) (*Result, error),
) (res *Result, err error) {
	ctx = logger.CtxWithAttrs(ctx, zap.String("task", name))
	lg := logger.NewFromCtx(ctx)
	start := time.Now()

	switch decision := cfg.Decide(); decision {
	case runconfig.DecisionSimulateFailure:
		err = &SimulatedFailureError{Task: name}
	case runconfig.DecisionSkip:
		lg.Warn("dry run: skipping " + name)
		res = &Result{Status: StatusSkipped, Detail: "dry run"}
	default:
		res, err = fn(ctx)
	}

	if err != nil {
		lg.Error("task failed", zap.Error(err))
		metrics.RecordTaskRun(name, string(StatusFailed), time.Since(start))
		return nil, err
	}
	if res == nil {
		res = &Result{Status: StatusSucceeded}
	}
	res.Task = name
	metrics.RecordTaskRun(name, string(res.Status), time.Since(start))
	logger.NewFromCtx(ctx).Info("task finished",
		zap.String("status", string(res.Status)),
		zap.Duration("took", time.Since(start)),
	)
	return res, nil
}
