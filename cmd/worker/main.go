package main

import (
	"log"
	"log/slog"

	"github.com/hatchet-dev/hatchet/pkg/cmdutils"
	hatchetLib "github.com/hatchet-dev/hatchet/sdks/go"
	"go.uber.org/zap"

	"github.com/accidents-lab/pipeline-orchestrator/internal/config"
	"github.com/accidents-lab/pipeline-orchestrator/internal/core/build"
	hatchet_ext "github.com/accidents-lab/pipeline-orchestrator/internal/core/hatchet-ext"
	"github.com/accidents-lab/pipeline-orchestrator/internal/core/logger"
	"github.com/accidents-lab/pipeline-orchestrator/internal/metrics"
	"github.com/accidents-lab/pipeline-orchestrator/internal/workflows/pipeline"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.ValidateIngestion(); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	lg := logger.NewFromConfig(&cfg.Logger)
	slog.SetDefault(logger.Slog())
	lg.Debug("config loaded", zap.Any("config", cfg.Redacted()))

	c, err := hatchet_ext.HatchetClient()
	if err != nil {
		log.Fatalf("Failed to create Hatchet client: %v", err)
	}

	interruptCtx, cancel := cmdutils.NewInterruptContext()
	defer cancel()

	deps, err := pipeline.NewDeps(interruptCtx, cfg, lg)
	if err != nil {
		log.Fatalf("Failed to create pipeline dependencies: %v", err)
	}
	defer func() {
		if err := deps.Close(); err != nil {
			lg.Warn("failed to release pipeline dependencies", zap.Error(err))
		}
	}()

	worker, err := c.NewWorker(
		cfg.Pipeline.WorkerName,
		hatchetLib.WithWorkflows(
			pipeline.PipelineWorkflow(c, cfg.Pipeline, deps),
		),
	)
	if err != nil {
		log.Fatalf("Failed to create Hatchet worker: %v", err)
	}

	go func() {
		if err := metrics.Serve(interruptCtx, cfg.Metrics.Addr, lg.Named("metrics")); err != nil {
			lg.Error("metrics server stopped", zap.Error(err))
		}
	}()

	lg.Info("starting worker",
		zap.String("worker", cfg.Pipeline.WorkerName),
		zap.String("workflow", cfg.Pipeline.WorkflowName),
		zap.String("service", build.ServiceName),
		zap.String("instance", build.GlobalInstanceId),
	)
	err = worker.StartBlocking(interruptCtx)
	if err != nil {
		log.Fatalf("Failed to start Hatchet worker: %v", err)
	}
}
