package debate

import (
	"sync"

	"github.com/symposium-ai/symposium/internal/models"
)

// EventType names one kind of orchestrator event. The wire value is
// used verbatim as the SSE event name.
type EventType string

const (
	EventMeta             EventType = "meta"
	EventRoundStart       EventType = "round_start"
	EventChunk            EventType = "chunk"
	EventMessage          EventType = "message"
	EventProviderError    EventType = "provider_error"
	EventRoundEnd         EventType = "round_end"
	EventModeratorChunk   EventType = "moderator_chunk"
	EventModeratorMessage EventType = "moderator_message"
	EventError            EventType = "error"
	EventDone             EventType = "done"
)

// Event is one entry in the ordered stream a client consumes. Only the
// fields relevant to the event type are populated; the JSON form is the
// event's data payload.
type Event struct {
	Type      EventType           `json:"-"`
	DebateID  string              `json:"debate_id,omitempty"`
	Provider  models.ProviderID   `json:"provider,omitempty"`
	Round     int                 `json:"round,omitempty"`
	Text      string              `json:"text,omitempty"`
	Message   string              `json:"message,omitempty"`
	Providers []models.ProviderID `json:"providers,omitempty"`
	Rounds    int                 `json:"rounds,omitempty"`
	Language  string              `json:"language,omitempty"`
	Serious   bool                `json:"serious,omitempty"`
	Style     string              `json:"moderator_style,omitempty"`
}

// Sink receives orchestrator events in order. Implementations must be
// safe for concurrent use: provider tasks forward their fragments from
// separate goroutines. A sink whose consumer has gone away must drop
// events rather than block or panic.
type Sink interface {
	Emit(ev Event)
}

// ChannelSink bridges the orchestrator to a transport goroutine through
// a channel. Closing the sink detaches it: subsequent and in-flight
// emits are dropped, which lets an orchestrator keep draining provider
// output after the client has disconnected.
type ChannelSink struct {
	ch        chan Event
	done      chan struct{}
	closeOnce sync.Once
}

// NewChannelSink creates a sink with the given channel buffer.
func NewChannelSink(buffer int) *ChannelSink {
	return &ChannelSink{
		ch:   make(chan Event, buffer),
		done: make(chan struct{}),
	}
}

// Emit forwards ev to the consumer, or drops it if the sink is closed.
func (s *ChannelSink) Emit(ev Event) {
	select {
	case <-s.done:
		return
	default:
	}
	select {
	case s.ch <- ev:
	case <-s.done:
	}
}

// Events returns the consumer side of the sink.
func (s *ChannelSink) Events() <-chan Event {
	return s.ch
}

// Close detaches the sink. Safe to call more than once and concurrently
// with Emit.
func (s *ChannelSink) Close() {
	s.closeOnce.Do(func() { close(s.done) })
}

// MemorySink records every event in order. It backs the in-process
// harness used by tests.
type MemorySink struct {
	mu     sync.Mutex
	events []Event
}

// NewMemorySink creates an empty recording sink.
func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

// Emit records ev.
func (s *MemorySink) Emit(ev Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
}

// Events returns a copy of everything recorded so far.
func (s *MemorySink) Events() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Event, len(s.events))
	copy(out, s.events)
	return out
}

// ByType returns recorded events of one type, in order.
func (s *MemorySink) ByType(t EventType) []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Event
	for _, ev := range s.events {
		if ev.Type == t {
			out = append(out, ev)
		}
	}
	return out
}
