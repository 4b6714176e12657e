package service

import (
	"context"
	"sync"

	"ventanita/internal/logger"
)

// ─────────────────────────────────────────────────────────────
// EventEmitter: decouples services from their side effects
// ─────────────────────────────────────────────────────────────

// EventEmitter receives page lifecycle events. Services receive this
// interface instead of concrete sinks (archive, cache, logs), which makes
// them independently testable with a mock emitter.
type EventEmitter interface {
	Emit(ctx context.Context, event string, data any)
}

// Emitters fans one event out to several emitters in order.
type Emitters []EventEmitter

func (e Emitters) Emit(ctx context.Context, event string, data any) {
	for _, em := range e {
		if em != nil {
			em.Emit(ctx, event, data)
		}
	}
}

// LogEmitter writes every event to the log at debug level.
type LogEmitter struct {
	Log *logger.Logger
}

func (l LogEmitter) Emit(_ context.Context, event string, _ any) {
	l.Log.Debug("event", "name", event)
}

// MockEmitter is a test-friendly EventEmitter that records all calls.
type MockEmitter struct {
	mu     sync.Mutex
	Events []EmittedEvent
}

// EmittedEvent holds a single recorded emission for test assertions.
type EmittedEvent struct {
	Event string
	Data  any
}

func (m *MockEmitter) Emit(_ context.Context, event string, data any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events = append(m.Events, EmittedEvent{Event: event, Data: data})
}

// Names returns the recorded event names in order.
func (m *MockEmitter) Names() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.Events))
	for i, e := range m.Events {
		out[i] = e.Event
	}
	return out
}
