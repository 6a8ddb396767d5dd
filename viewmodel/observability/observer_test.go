package observability_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/howettl/udf-view-model/viewmodel/observability"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLevel_String(t *testing.T) {
	tests := []struct {
		name  string
		level observability.Level
		want  string
	}{
		{name: "trace range", level: 1, want: "TRACE"},
		{name: "verbose maps to DEBUG", level: observability.LevelVerbose, want: "DEBUG"},
		{name: "info maps to INFO", level: observability.LevelInfo, want: "INFO"},
		{name: "warning maps to WARN", level: observability.LevelWarning, want: "WARN"},
		{name: "error maps to ERROR", level: observability.LevelError, want: "ERROR"},
		{name: "fatal range", level: 21, want: "FATAL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.level.String())
		})
	}
}

func TestLevel_ZapLevel(t *testing.T) {
	tests := []struct {
		name  string
		level observability.Level
		want  zapcore.Level
	}{
		{name: "verbose maps to Debug", level: observability.LevelVerbose, want: zapcore.DebugLevel},
		{name: "info maps to Info", level: observability.LevelInfo, want: zapcore.InfoLevel},
		{name: "warning maps to Warn", level: observability.LevelWarning, want: zapcore.WarnLevel},
		{name: "error maps to Error", level: observability.LevelError, want: zapcore.ErrorLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.level.ZapLevel())
		})
	}
}

func TestSpans(t *testing.T) {
	start := time.Now()
	time.Sleep(2 * time.Millisecond)
	span := observability.Between(start)

	assert.True(t, span.Start().Equal(start))
	assert.GreaterOrEqual(t, span.Duration(), 2*time.Millisecond)

	instant := observability.Instant()
	assert.Equal(t, time.Duration(0), instant.Duration())

	event := observability.Event{Span: span}
	assert.True(t, event.Timestamp().Equal(start))
}

func TestZapObserver_OnEvent(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	obs := observability.NewZapObserver(zap.New(core))

	obs.OnEvent(context.Background(), observability.Event{
		Type:   observability.EventEffectFailed,
		Level:  observability.LevelError,
		Span:   observability.Instant(),
		Source: "auth/1",
		Data: map[string]any{
			"effect": "ContinuePressed",
			"error":  errors.New("boom"),
		},
	})

	assert.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, string(observability.EventEffectFailed), entry.Message)
	assert.Equal(t, zapcore.ErrorLevel, entry.Level)

	fields := entry.ContextMap()
	assert.Equal(t, "auth/1", fields["source"])
	assert.Equal(t, "ContinuePressed", fields["effect"])
	assert.Equal(t, "boom", fields["error"])
}

func TestZapObserver_RespectsLevel(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	obs := observability.NewZapObserver(zap.New(core))

	obs.OnEvent(context.Background(), observability.Event{
		Type:  observability.EventMutationDerived,
		Level: observability.LevelVerbose,
		Span:  observability.Instant(),
	})
	assert.Equal(t, 0, logs.Len())
}

func TestMultiObserver_FansOutAndSkipsNil(t *testing.T) {
	a := observability.NewRecorder()
	b := observability.NewRecorder()
	multi := observability.NewMultiObserver(a, nil, b)

	event := observability.Event{Type: observability.EventCreated, Span: observability.Instant()}
	multi.OnEvent(context.Background(), event)

	assert.Len(t, a.Events(), 1)
	assert.Len(t, b.Events(), 1)
	assert.Equal(t, 1, a.Count(observability.EventCreated))
	assert.Equal(t, 0, a.Count(observability.EventClosed))
}

func TestNoOpObserver(t *testing.T) {
	assert.NotPanics(t, func() {
		observability.NoOpObserver{}.OnEvent(context.Background(), observability.Event{})
	})
}
