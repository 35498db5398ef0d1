// Package observability carries planner events to logs, metrics and test
// recorders.
//
// Producers build an Event with NewEvent and hand it to an Observer; they never
// know whether it ends up in slog, a Prometheus counter or a Recorder. Level
// numbers sit inside the OpenTelemetry SeverityNumber bands, so an exporter
// can pass them through unchanged.
package observability

import (
	"context"
	"log/slog"
	"time"
)

// Level is an event severity.
type Level int

const (
	LevelVerbose Level = 5  // per-node detail such as plan.leaf
	LevelInfo    Level = 9  // run boundaries: plan.start, plan.complete
	LevelWarning Level = 13 // searches stopped early
	LevelError   Level = 17
)

// String returns the severity band name ("DEBUG", "INFO", ...).
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

// SlogLevel returns the slog level a handler filters this level by.
func (l Level) SlogLevel() slog.Level {
	switch {
	case l <= 8:
		return slog.LevelDebug
	case l <= 12:
		return slog.LevelInfo
	case l <= 16:
		return slog.LevelWarn
	default:
		return slog.LevelError
	}
}

// EventType names an event, namespaced by the emitting package
// ("plan.complete", "library.load").
type EventType string

// Event is one observation. Data holds event-specific values keyed by
// snake_case names; the typed accessors below read them without panicking
// on a missing key or a producer that changed a value's type.
type Event struct {
	Type      EventType
	Level     Level
	Timestamp time.Time
	Source    string
	Data      map[string]any
}

// NewEvent stamps an event with the current time.
func NewEvent(typ EventType, level Level, source string, data map[string]any) Event {
	return Event{
		Type:      typ,
		Level:     level,
		Timestamp: time.Now(),
		Source:    source,
		Data:      data,
	}
}

func (e Event) Int(key string) (int, bool) {
	v, ok := e.Data[key].(int)
	return v, ok
}

func (e Event) Bool(key string) bool {
	v, _ := e.Data[key].(bool)
	return v
}

func (e Event) Text(key string) string {
	v, _ := e.Data[key].(string)
	return v
}

func (e Event) Duration(key string) (time.Duration, bool) {
	v, ok := e.Data[key].(time.Duration)
	return v, ok
}

// Observer consumes events. PlanAll emits from several goroutines at once, so
// implementations must be safe for concurrent use.
type Observer interface {
	OnEvent(ctx context.Context, event Event)
}

// ObserverFunc lets a plain function act as an Observer.
type ObserverFunc func(ctx context.Context, event Event)

func (f ObserverFunc) OnEvent(ctx context.Context, event Event) {
	f(ctx, event)
}

// NoOpObserver ignores everything. Planners built without an observer use it.
type NoOpObserver struct{}

func (NoOpObserver) OnEvent(context.Context, Event) {}
