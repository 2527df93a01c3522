package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/symposium-ai/symposium/internal/debate"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// wsEvent is the frame sent to WebSocket clients: the event type moves
// into the payload since WebSocket has no named events.
type wsEvent struct {
	Type debate.EventType `json:"type"`
	debate.Event
}

// HandleDebateWS runs a debate over a WebSocket. The client sends one
// JSON request as its first message and then receives the same event
// stream the SSE endpoint produces, one JSON frame per event.
func (h *DebateHandler) HandleDebateWS(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.WithError(err).Warn("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	var body DebateRequest
	conn.SetReadDeadline(time.Now().Add(30 * time.Second))
	if err := conn.ReadJSON(&body); err != nil {
		conn.WriteJSON(gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	req, err := h.toDebateRequest(&body)
	if err != nil {
		conn.WriteJSON(gin.H{"error": err.Error()})
		return
	}

	h.metrics.ActiveStreams.Inc()
	defer h.metrics.ActiveStreams.Dec()

	sink := debate.NewChannelSink(sinkBuffer)
	defer sink.Close()

	runDone := make(chan struct{})
	go func() {
		defer close(runDone)
		h.runAndPersist(context.WithoutCancel(c.Request.Context()), req, sink)
	}()

	// Reads only surface client disconnects; the protocol has no
	// further client messages after the request.
	disconnected := make(chan struct{})
	go func() {
		defer close(disconnected)
		conn.SetReadDeadline(time.Time{})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case <-disconnected:
			h.logger.Debug("WebSocket client disconnected")
			return
		case ev := <-sink.Events():
			if err := conn.WriteJSON(wsEvent{Type: ev.Type, Event: ev}); err != nil {
				return
			}
		case <-heartbeat.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second)); err != nil {
				return
			}
		case <-runDone:
			for {
				select {
				case ev := <-sink.Events():
					if err := conn.WriteJSON(wsEvent{Type: ev.Type, Event: ev}); err != nil {
						return
					}
				default:
					conn.WriteMessage(websocket.CloseMessage,
						websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
					return
				}
			}
		}
	}
}
