package events

import (
	"context"
	"sync"
)

// Noop drops every event. It is used when no broker is configured.
type Noop struct{}

func (Noop) Publish(context.Context, MatchEvent) error { return nil }
func (Noop) Close()                                    {}

// Mock records published events. It is safe for concurrent use.
type Mock struct {
	mu sync.Mutex

	PublishFunc func(event MatchEvent) error
	events      []MatchEvent
}

func NewMock() *Mock {
	return &Mock{}
}

func (m *Mock) Publish(_ context.Context, event MatchEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	if m.PublishFunc != nil {
		return m.PublishFunc(event)
	}
	return nil
}

func (m *Mock) Close() {}

// Events returns a copy of every recorded event.
func (m *Mock) Events() []MatchEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]MatchEvent(nil), m.events...)
}

// Types returns the recorded event types in publish order.
func (m *Mock) Types() []EventType {
	m.mu.Lock()
	defer m.mu.Unlock()
	types := make([]EventType, len(m.events))
	for i, e := range m.events {
		types[i] = e.Type
	}
	return types
}
