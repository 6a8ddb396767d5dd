package log

import (
	"context"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// WithTestLogEffectHandler registers a debug-level console logger on ctx.
func WithTestLogEffectHandler(
	ctx context.Context,
) (context.Context, func() context.Context) {
	consoleCore := zapcore.NewCore(
		zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
		zapcore.Lock(os.Stdout),
		zap.DebugLevel,
	)
	return WithZapLogEffectHandler(
		ctx,
		1,
		zap.New(consoleCore),
	)
}
