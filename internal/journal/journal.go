// Package journal records the notable events of a backtest run.
package journal

import (
	"sync"
	"time"
)

// Event is one journaled occurrence, e.g. a signal or a trade transition.
type Event struct {
	Time        time.Time
	Type        string // "signal", "trade"
	Description string
	Data        map[string]any
}

// Journaler records events during a run.
type Journaler interface {
	LogEvent(event Event)
	Events(eventType string) []Event
}

// Memory is an in-process Journaler. A run is single-threaded, but the lock
// keeps concurrent parameter-sweep runs free to share one journal if wanted.
type Memory struct {
	mu     sync.Mutex
	events []Event
}

func NewMemory() *Memory { return &Memory{} }

func (m *Memory) LogEvent(event Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
}

// Events returns the journaled events of the given type, in insertion order.
// An empty type matches everything.
func (m *Memory) Events(eventType string) []Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Event
	for _, e := range m.events {
		if eventType == "" || e.Type == eventType {
			out = append(out, e)
		}
	}
	return out
}
