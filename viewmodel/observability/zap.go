package observability

import (
	"context"

	"go.uber.org/zap"
)

// ZapObserver emits events to a zap.Logger. The event type becomes the log
// message and Data keys become top-level fields.
type ZapObserver struct {
	logger *zap.Logger
}

// NewZapObserver creates a ZapObserver that emits to the given logger.
func NewZapObserver(logger *zap.Logger) *ZapObserver {
	return &ZapObserver{logger: logger}
}

func (o *ZapObserver) OnEvent(ctx context.Context, event Event) {
	ce := o.logger.Check(event.Level.ZapLevel(), string(event.Type))
	if ce == nil {
		return
	}

	fields := make([]zap.Field, 0, len(event.Data)+3)
	fields = append(fields,
		zap.String("source", event.Source),
		zap.Time("start", event.Span.Start()),
		zap.Duration("elapsed", event.Span.Duration()),
	)
	for k, v := range event.Data {
		if err, ok := v.(error); ok {
			fields = append(fields, zap.NamedError(k, err))
			continue
		}
		fields = append(fields, zap.Any(k, v))
	}
	ce.Write(fields...)
}
