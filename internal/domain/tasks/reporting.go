package tasks

import (
	"context"

	"github.com/iancoleman/strcase"

	"github.com/accidents-lab/pipeline-orchestrator/internal/core/logger"
	"github.com/accidents-lab/pipeline-orchestrator/internal/domain/runconfig"
)

const ReportingAssetKey = "powerbi_refresh"

type Refresher interface {
	TriggerRefresh(ctx context.Context) error
}

// Reporting asks Power BI to refresh the dataset. Without a Refresher it
// runs as a placeholder and reports StatusStubbed.
type Reporting struct {
	refresher Refresher
}

func NewReporting(refresher Refresher) *Reporting {
	return &Reporting{refresher: refresher}
}

func (r *Reporting) Name() string {
	return strcase.ToKebab(ReportingAssetKey)
}

func (r *Reporting) Run(ctx context.Context, cfg runconfig.RunConfig) (*Result, error) {
	return Guard(ctx, r.Name(), cfg, func(ctx context.Context) (*Result, error) {
		lg := logger.NewFromCtx(ctx)
		if r.refresher == nil {
			lg.Warn("placeholder: power bi refresh not performed")
			return &Result{Status: StatusStubbed, Detail: "power bi refresh not configured"}, nil
		}
		lg.Info("triggering power bi dataset refresh")
		if err := r.refresher.TriggerRefresh(ctx); err != nil {
			return nil, &ExternalCallError{Task: r.Name(), Target: "powerbi", Err: err}
		}
		lg.Info("power bi refresh accepted")
		return &Result{Status: StatusSucceeded}, nil
	})
}
