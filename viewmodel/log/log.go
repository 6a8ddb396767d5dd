// Package log carries structured logging through a context.
//
// A zap logger is registered on a context with WithZapLogEffectHandler and
// written to with LogEff. Writes are queued and handled on a single worker,
// so callers never block on the logger. LogEff is a no-op when no handler is
// registered.
package log

import (
	"context"

	"github.com/howettl/udf-view-model/viewmodel/internal/handlers"
	"github.com/howettl/udf-view-model/viewmodel/internal/model"
	"go.uber.org/zap"
)

// LogLevel defines the severity level for log messages.
type LogLevel string

const (
	// LogInfo is used for general informational messages.
	LogInfo LogLevel = "info"

	// LogWarn is used for potentially harmful situations.
	LogWarn LogLevel = "warn"

	// LogError is used for error events that might still allow the application to continue running.
	LogError LogLevel = "error"

	// LogDebug is used for debugging messages with detailed internal information.
	LogDebug LogLevel = "debug"
)

// LogPayload is the payload structure for the log handler.
type LogPayload struct {
	Level   LogLevel
	Message string
	Fields  map[string]interface{}
}

// WithZapLogEffectHandler registers a fire-and-forget log handler using zap.Logger.
// The returned function closes the handler, syncs the logger and gives back
// the parent context.
func WithZapLogEffectHandler(
	ctx context.Context,
	bufferSize int,
	logger *zap.Logger,
) (context.Context, func() context.Context) {
	return handlers.WithFireAndForgetHandler(
		ctx,
		bufferSize,
		model.HandlerLog,
		func(ctx context.Context, payload LogPayload) {
			write(logger, payload)
		},
		func() {
			// Sync on stdout/stderr returns EINVAL on some platforms.
			_ = logger.Sync()
		},
	)
}

// LogEff emits a structured log through the handler registered on ctx.
func LogEff(ctx context.Context, level LogLevel, msg string, fields map[string]interface{}) {
	_ = handlers.FireAndForget(ctx, model.HandlerLog, LogPayload{
		Level:   level,
		Message: msg,
		Fields:  fields,
	})
}

func write(logger *zap.Logger, payload LogPayload) {
	fields := make([]zap.Field, 0, len(payload.Fields))
	for k, v := range payload.Fields {
		if err, ok := v.(error); ok {
			fields = append(fields, zap.NamedError(k, err))
			continue
		}
		fields = append(fields, zap.Any(k, v))
	}

	switch payload.Level {
	case LogInfo:
		logger.Info(payload.Message, fields...)
	case LogWarn:
		logger.Warn(payload.Message, fields...)
	case LogError:
		logger.Error(payload.Message, fields...)
	case LogDebug:
		logger.Debug(payload.Message, fields...)
	default:
		logger.Info(payload.Message, fields...)
	}
}
