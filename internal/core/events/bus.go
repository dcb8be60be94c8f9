package events

import "sync"

// Event is anything the engine loop or the host window layer can broadcast.
type Event interface {
	Type() string
}

// Resize is published when the host surface changes size.
type Resize struct {
	Width  uint32
	Height uint32
}

func (Resize) Type() string { return "engine.resize" }

// Quit requests the frame loop to stop at the start of the next tick.
type Quit struct{}

func (Quit) Type() string { return "engine.quit" }

// Handler receives published events for a subscribed type.
type Handler func(Event)

// Bus is a minimal in-memory event bus: synchronous delivery, per-type
// subscriptions, no topics. The frame driver publishes, subsystems subscribe.
type Bus struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
}

func NewBus() *Bus {
	return &Bus{
		handlers: make(map[string][]Handler),
	}
}

// Subscribe registers a handler for the given event type. Handlers run on the
// publisher's goroutine in subscription order.
func (b *Bus) Subscribe(eventType string, h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[eventType] = append(b.handlers[eventType], h)
}

// Publish delivers the event to every handler subscribed to its type.
func (b *Bus) Publish(event Event) {
	b.mu.RLock()
	handlers := b.handlers[event.Type()]
	b.mu.RUnlock()

	for _, h := range handlers {
		h(event)
	}
}
