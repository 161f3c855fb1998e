package logger

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

type ctxKey int

const (
	ctxLoggerKey ctxKey = iota
	ctxFieldsKey
)

type ctxFields struct {
	mu     sync.Mutex
	fields []zap.Field
}

// WrapInCtx stores lg in ctx; NewFromCtx returns it.
func WrapInCtx(ctx context.Context, lg *zap.Logger) context.Context {
	return context.WithValue(ctx, ctxLoggerKey, lg)
}

// NewFromCtx returns the logger carried by ctx, or the global logger,
// with the fields attached by CtxWithAttrs.
func NewFromCtx(ctx context.Context) *zap.Logger {
	lg, ok := ctx.Value(ctxLoggerKey).(*zap.Logger)
	if !ok || lg == nil {
		lg = Global()
	}
	if fields := GetCtxFields(ctx); len(fields) > 0 {
		return lg.With(fields...)
	}
	return lg
}

// CtxWithAttrs returns a child context carrying fields in addition to the parent's.
func CtxWithAttrs(ctx context.Context, fields ...zap.Field) context.Context {
	return context.WithValue(ctx, ctxFieldsKey, &ctxFields{fields: WithCtxFields(ctx, fields...)})
}

// SetCtxFields appends fields to the holder created by CtxWithAttrs. No-op otherwise.
func SetCtxFields(ctx context.Context, fields ...zap.Field) {
	holder, ok := ctx.Value(ctxFieldsKey).(*ctxFields)
	if !ok {
		return
	}
	holder.mu.Lock()
	defer holder.mu.Unlock()
	holder.fields = append(holder.fields, fields...)
}

func GetCtxFields(ctx context.Context) []zap.Field {
	holder, ok := ctx.Value(ctxFieldsKey).(*ctxFields)
	if !ok {
		return nil
	}
	holder.mu.Lock()
	defer holder.mu.Unlock()
	return append([]zap.Field(nil), holder.fields...)
}

// WithCtxFields returns the ctx fields followed by fields, without touching ctx.
func WithCtxFields(ctx context.Context, fields ...zap.Field) []zap.Field {
	return append(GetCtxFields(ctx), fields...)
}
