package event

import (
	"sync"
)

type Handler[Event any] interface {
	OnEvent(e Event)
}

// HandlerFunc is an adapter to allow the use of ordinary
// functions as Handlers.
type HandlerFunc[Event any] func(Event)

// OnEvent calls f(e).
func (f HandlerFunc[Event]) OnEvent(e Event) {
	f(e)
}

// Bus fans events out to registered handlers.
//
// Handlers are invoked synchronously, in registration order, on the goroutine
// calling OnEvent. Consecutive events are therefore observed in emission order
// by every handler. Handlers that do slow work must hand it off.
type Bus[Event any] struct {
	handlersMu sync.RWMutex
	handlers   []*registration[Event]
}

type registration[Event any] struct {
	h Handler[Event]
}

func NewBus[Event any]() *Bus[Event] {
	return &Bus[Event]{}
}

// AddHandler registers h and returns a func that removes it again.
func (b *Bus[Event]) AddHandler(h Handler[Event]) (remove func()) {
	r := &registration[Event]{h: h}

	b.handlersMu.Lock()
	b.handlers = append(b.handlers, r)
	b.handlersMu.Unlock()

	return func() {
		b.handlersMu.Lock()
		defer b.handlersMu.Unlock()

		for i, existing := range b.handlers {
			if existing == r {
				b.handlers = append(b.handlers[:i:i], b.handlers[i+1:]...)
				return
			}
		}
	}
}

func (b *Bus[Event]) OnEvent(e Event) {
	b.handlersMu.RLock()
	// Copy handlers to prevent race conditions
	handlers := make([]*registration[Event], len(b.handlers))
	copy(handlers, b.handlers)
	b.handlersMu.RUnlock()

	// Execute handlers outside the lock
	for _, r := range handlers {
		r.h.OnEvent(e)
	}
}
