package hatchet_ext

import (
	"context"
	"maps"
	"slices"
	"strings"

	hatchet "github.com/hatchet-dev/hatchet/sdks/go"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/accidents-lab/pipeline-orchestrator/internal/core/logger"
)

// LogSink is the part of hatchet.Context that accepts run log lines.
type LogSink interface {
	Log(message string)
}

type logSinkCore struct {
	zapcore.LevelEnabler
	enc  zapcore.Encoder
	sink LogSink
}

func newLogSinkCore(sink LogSink, level zapcore.LevelEnabler) zapcore.Core {
	return &logSinkCore{
		LevelEnabler: level,
		enc: zapcore.NewConsoleEncoder(zapcore.EncoderConfig{
			LevelKey:         "level",
			NameKey:          "logger",
			MessageKey:       "msg",
			EncodeLevel:      zapcore.CapitalLevelEncoder,
			EncodeDuration:   zapcore.StringDurationEncoder,
			EncodeName:       zapcore.FullNameEncoder,
			ConsoleSeparator: " ",
		}),
		sink: sink,
	}
}

func (c *logSinkCore) With(fields []zapcore.Field) zapcore.Core {
	enc := c.enc.Clone()
	for _, f := range fields {
		f.AddTo(enc)
	}
	return &logSinkCore{LevelEnabler: c.LevelEnabler, enc: enc, sink: c.sink}
}

func (c *logSinkCore) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(ent.Level) {
		return ce.AddCore(ent, c)
	}
	return ce
}

func (c *logSinkCore) Write(ent zapcore.Entry, fields []zapcore.Field) error {
	buf, err := c.enc.EncodeEntry(ent, fields)
	if err != nil {
		return err
	}
	c.sink.Log(strings.TrimSuffix(buf.String(), "\n"))
	buf.Free()
	return nil
}

func (c *logSinkCore) Sync() error {
	return nil
}

// TeeToSink returns lg writing info and above to sink as well.
func TeeToSink(lg *zap.Logger, sink LogSink) *zap.Logger {
	return lg.WithOptions(zap.WrapCore(func(core zapcore.Core) zapcore.Core {
		return zapcore.NewTee(core, newLogSinkCore(sink, zapcore.InfoLevel))
	}))
}

// TaskContext carries a logger that mirrors task logs into the Hatchet run view.
func TaskContext(ctx hatchet.Context) context.Context {
	lg := TeeToSink(logger.NewFromCtx(ctx), ctx).With(zap.String("workflow_run_id", ctx.WorkflowRunId()))
	return logger.WrapInCtx(ctx, lg)
}

// FormatStepErrors renders step errors as sorted "step: error" lines.
func FormatStepErrors(stepErrors map[string]string) string {
	lines := make([]string, 0, len(stepErrors))
	for _, step := range slices.Sorted(maps.Keys(stepErrors)) {
		lines = append(lines, step+": "+stepErrors[step])
	}
	return strings.Join(lines, "\n")
}
