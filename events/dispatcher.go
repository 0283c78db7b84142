package events

import (
	"sync"
)

// Kind identifies what happened.
type Kind int

const (
	FileSaved Kind = iota
	FileRemoved
	RulesChanged
	RescanRequested
)

// String returns the name used in logs.
func (k Kind) String() string {
	switch k {
	case FileSaved:
		return "file_saved"
	case FileRemoved:
		return "file_removed"
	case RulesChanged:
		return "rules_changed"
	case RescanRequested:
		return "rescan_requested"
	default:
		return "unknown"
	}
}

// Event is a single notification. Path is empty for events not tied to a file.
type Event struct {
	Kind Kind
	Path string
}

// Handler reacts to one event.
type Handler func(Event)

// Dispatcher maps event kinds to the handlers subscribed to them.
// Dispatch runs handlers synchronously, in subscription order, on the caller's goroutine.
type Dispatcher struct {
	mu       sync.RWMutex
	handlers map[Kind][]Handler
}

// NewDispatcher creates a dispatcher with no subscriptions.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{handlers: make(map[Kind][]Handler)}
}

// On subscribes handler to kind.
func (d *Dispatcher) On(kind Kind, handler Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[kind] = append(d.handlers[kind], handler)
}

// Dispatch delivers event to every handler of its kind and reports how many ran.
func (d *Dispatcher) Dispatch(event Event) int {
	d.mu.RLock()
	handlers := append([]Handler(nil), d.handlers[event.Kind]...)
	d.mu.RUnlock()

	for _, handler := range handlers {
		handler(event)
	}
	return len(handlers)
}
