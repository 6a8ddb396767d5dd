// Package observability provides event-based observability for view model
// containers. Level values align with OpenTelemetry SeverityNumbers.
package observability

import (
	"context"
	"time"

	"github.com/rickb777/date/v2/timespan"
	"go.uber.org/zap/zapcore"
)

// Level represents event severity aligned with OTel SeverityNumber ranges.
type Level int

const (
	LevelVerbose Level = 5  // OTel DEBUG (5-8)
	LevelInfo    Level = 9  // OTel INFO (9-12)
	LevelWarning Level = 13 // OTel WARN (13-16)
	LevelError   Level = 17 // OTel ERROR (17-20)
)

// String returns the OTel severity text for the level.
func (l Level) String() string {
	switch {
	case l <= 4:
		return "TRACE"
	case l <= 8:
		return "DEBUG"
	case l <= 12:
		return "INFO"
	case l <= 16:
		return "WARN"
	case l <= 20:
		return "ERROR"
	default:
		return "FATAL"
	}
}

// ZapLevel maps this level to the corresponding zap level.
func (l Level) ZapLevel() zapcore.Level {
	switch {
	case l <= 8:
		return zapcore.DebugLevel
	case l <= 12:
		return zapcore.InfoLevel
	case l <= 16:
		return zapcore.WarnLevel
	default:
		return zapcore.ErrorLevel
	}
}

// EventType identifies the kind of event.
type EventType string

const (
	EventCreated           EventType = "viewmodel.created"
	EventStarted           EventType = "viewmodel.started"
	EventInitStart         EventType = "viewmodel.init.start"
	EventInitComplete      EventType = "viewmodel.init.complete"
	EventInitFailed        EventType = "viewmodel.init.failed"
	EventMutationDerived   EventType = "viewmodel.mutation.derived"
	EventMutationConflated EventType = "viewmodel.mutation.conflated"
	EventMutationFailed    EventType = "viewmodel.mutation.failed"
	EventEffectHandled     EventType = "viewmodel.effect.handled"
	EventEffectFailed      EventType = "viewmodel.effect.failed"
	EventSubscribed        EventType = "viewmodel.subscribed"
	EventUnsubscribed      EventType = "viewmodel.unsubscribed"
	EventClosed            EventType = "viewmodel.closed"
)

// Event is an observability event emitted by a container. Span covers the
// observed work; for instantaneous events it is empty and starts at the
// moment the event was raised.
type Event struct {
	Type   EventType
	Level  Level
	Span   TimeSpan
	Source string
	Data   map[string]any
}

// Timestamp is the moment the observed work started.
func (e Event) Timestamp() time.Time {
	return e.Span.Start()
}

// Observer receives events for logging, tracing, or metrics.
// OnEvent may be called from several goroutines at once.
type Observer interface {
	OnEvent(ctx context.Context, event Event)
}

type TimeSpan = timespan.TimeSpan

// Between returns the span from start until now.
func Between(start time.Time) TimeSpan {
	return timespan.BetweenTimes(start, time.Now())
}

// Instant returns an empty span at now.
func Instant() TimeSpan {
	now := time.Now()
	return timespan.BetweenTimes(now, now)
}
