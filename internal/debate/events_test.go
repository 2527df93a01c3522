package debate

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/symposium-ai/symposium/internal/models"
)

func TestChannelSink_DeliversInOrder(t *testing.T) {
	sink := NewChannelSink(8)
	defer sink.Close()

	go func() {
		for i := 1; i <= 3; i++ {
			sink.Emit(Event{Type: EventChunk, Round: i})
		}
	}()

	for i := 1; i <= 3; i++ {
		select {
		case ev := <-sink.Events():
			assert.Equal(t, i, ev.Round)
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for event")
		}
	}
}

func TestChannelSink_DropsAfterClose(t *testing.T) {
	sink := NewChannelSink(1)
	sink.Close()

	// Emit must not block or panic once the consumer detached, even
	// with the buffer full.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 100; i++ {
			sink.Emit(Event{Type: EventChunk})
		}
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Emit blocked after Close")
	}
}

func TestChannelSink_CloseUnblocksEmitters(t *testing.T) {
	sink := NewChannelSink(0)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sink.Emit(Event{Type: EventChunk})
		}()
	}

	time.Sleep(10 * time.Millisecond)
	sink.Close()

	blocked := make(chan struct{})
	go func() {
		wg.Wait()
		close(blocked)
	}()
	select {
	case <-blocked:
	case <-time.After(time.Second):
		t.Fatal("emitters stayed blocked after Close")
	}
}

func TestChannelSink_CloseIdempotent(t *testing.T) {
	sink := NewChannelSink(1)
	sink.Close()
	sink.Close()
}

func TestMemorySink_ByType(t *testing.T) {
	sink := NewMemorySink()
	sink.Emit(Event{Type: EventChunk, Text: "a"})
	sink.Emit(Event{Type: EventMessage, Text: "b"})
	sink.Emit(Event{Type: EventChunk, Text: "c"})

	chunks := sink.ByType(EventChunk)
	require.Len(t, chunks, 2)
	assert.Equal(t, "a", chunks[0].Text)
	assert.Equal(t, "c", chunks[1].Text)
	assert.Len(t, sink.Events(), 3)
}

func TestEvent_JSONShape(t *testing.T) {
	ev := Event{
		Type:     EventChunk,
		DebateID: "d1",
		Provider: models.ProviderOpenAI,
		Round:    2,
		Text:     "hello",
	}
	data, err := json.Marshal(ev)
	require.NoError(t, err)

	var payload map[string]any
	require.NoError(t, json.Unmarshal(data, &payload))

	// The type travels as the SSE event name, not in the payload, and
	// unset fields stay off the wire.
	assert.NotContains(t, payload, "type")
	assert.NotContains(t, payload, "message")
	assert.Equal(t, "openai", payload["provider"])
	assert.Equal(t, float64(2), payload["round"])
}
