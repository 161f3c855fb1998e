package pipeline

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/accidents-lab/pipeline-orchestrator/internal/core/ids"
	"github.com/accidents-lab/pipeline-orchestrator/internal/core/logger"
	"github.com/accidents-lab/pipeline-orchestrator/internal/domain/runconfig"
	"github.com/accidents-lab/pipeline-orchestrator/internal/domain/sensor"
	"github.com/accidents-lab/pipeline-orchestrator/internal/domain/tasks"
)

type Report struct {
	RunId   ids.RunId       `json:"run_id"`
	Results []*tasks.Result `json:"results"`
	// Outcome is set when the run failed and the sensor was invoked.
	Outcome sensor.Outcome `json:"outcome,omitempty"`
}

// RunLocal executes the pipeline in this process, stage by stage, without
// Hatchet. A failing stage stops the run after its siblings finish and
// hands the collected step errors to the sensor once.
func RunLocal(
	ctx context.Context,
	jobName string,
	deps *Deps,
	cfg runconfig.RunConfig,
) (*Report, error) {
	report := &Report{RunId: ids.NewRunId()}
	ctx = logger.CtxWithAttrs(ctx, zap.String("run_id", report.RunId.String()))
	ctx = tasks.WithRunId(ctx, report.RunId)
	lg := logger.NewFromCtx(ctx)

	for _, stage := range deps.Stages() {
		stepErrors := map[string]string{}
		var errs []error
		for _, unit := range stage {
			res, err := unit.Run(ctx, cfg)
			if err != nil {
				stepErrors[unit.Name()] = err.Error()
				errs = append(errs, err)
				continue
			}
			report.Results = append(report.Results, res)
		}
		if len(errs) > 0 {
			report.Outcome = deps.Sensor.Handle(ctx, failureEvent(jobName, report.RunId.String(), stepErrors))
			return report, errors.Join(errs...)
		}
	}
	lg.Info("pipeline run finished", zap.Int("tasks", len(report.Results)))
	return report, nil
}
