package tasks

import (
	"context"
	"errors"
	"strings"

	"github.com/iancoleman/strcase"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/accidents-lab/pipeline-orchestrator/internal/core/logger"
	"github.com/accidents-lab/pipeline-orchestrator/internal/domain/runconfig"
	"github.com/accidents-lab/pipeline-orchestrator/internal/infrastructure/dbt"
)

const TransformAssetKey = "dbt_analytics"

type Builder interface {
	Build(ctx context.Context, sink dbt.Sink) (*dbt.Summary, error)
}

// Transform runs `dbt build` and streams its events to the task logger.
type Transform struct {
	builder Builder
}

func NewTransform(builder Builder) *Transform {
	return &Transform{builder: builder}
}

func (t *Transform) Name() string {
	return strcase.ToKebab(TransformAssetKey)
}

func (t *Transform) Run(ctx context.Context, cfg runconfig.RunConfig) (*Result, error) {
	return Guard(ctx, t.Name(), cfg, func(ctx context.Context) (*Result, error) {
		lg := logger.NewFromCtx(ctx).Named("dbt")
		summary, err := t.builder.Build(ctx, func(ev dbt.Event) {
			if ev.Msg == "" {
				return
			}
			fields := make([]zap.Field, 0, 3)
			if ev.Name != "" {
				fields = append(fields, zap.String("event", ev.Name))
			}
			if ev.NodeId != "" {
				fields = append(fields, zap.String("node", ev.NodeId), zap.String("node_status", ev.NodeStatus))
			}
			lg.Log(eventLevel(ev.Level), ev.Msg, fields...)
		})
		if err != nil {
			var exitErr *dbt.ExitError
			if errors.As(err, &exitErr) && exitErr.Summary != nil {
				lg.Error("dbt build failed", zap.Strings("failed_nodes", exitErr.Summary.Failed))
			}
			return nil, &ExternalCallError{Task: t.Name(), Target: "dbt", Err: err}
		}
		res := &Result{Status: StatusSucceeded}
		if summary != nil {
			res.Nodes = summary.Statuses
			lg.Info("dbt build finished", zap.Int("nodes", summary.Total()))
		}
		return res, nil
	})
}

func eventLevel(level string) zapcore.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}
