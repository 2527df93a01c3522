// Package handlers exposes the debate service over HTTP: an SSE
// streaming endpoint, a WebSocket equivalent, and JSON endpoints for
// discovery and history.
package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/symposium-ai/symposium/internal/debate"
	"github.com/symposium-ai/symposium/internal/history"
	"github.com/symposium-ai/symposium/internal/llm"
	"github.com/symposium-ai/symposium/internal/models"
	"github.com/symposium-ai/symposium/internal/observability/metrics"
)

const (
	sinkBuffer        = 64
	heartbeatInterval = 15 * time.Second
)

// DebateHandler serves debate requests over SSE and WebSocket.
type DebateHandler struct {
	orchestrator *debate.Orchestrator
	registry     *llm.Registry
	store        *history.Store
	metrics      *metrics.Collector
	logger       *logrus.Logger
}

// NewDebateHandler wires the handler with its collaborators. The store
// may be nil, in which case finished debates are not persisted.
func NewDebateHandler(
	orchestrator *debate.Orchestrator,
	registry *llm.Registry,
	store *history.Store,
	collector *metrics.Collector,
	logger *logrus.Logger,
) *DebateHandler {
	return &DebateHandler{
		orchestrator: orchestrator,
		registry:     registry,
		store:        store,
		metrics:      collector,
		logger:       logger,
	}
}

// RegisterRoutes registers the debate endpoints.
func (h *DebateHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/debate", h.HandleDebate)
	router.GET("/debate/ws", h.HandleDebateWS)
	router.GET("/providers", h.HandleProviders)
	router.GET("/styles", h.HandleStyles)
	router.GET("/debates", h.HandleListDebates)
	router.GET("/debates/:id", h.HandleGetDebate)
}

// DebateRequest is the JSON body of a debate request.
type DebateRequest struct {
	Prompt          string   `json:"prompt"`
	Language        string   `json:"language,omitempty"`
	Rounds          int      `json:"rounds,omitempty"`
	Providers       []string `json:"providers,omitempty"`
	ModeratorEngine string   `json:"moderator_engine,omitempty"`
	ModeratorStyle  string   `json:"moderator_style,omitempty"`
}

// toDebateRequest validates the wire request and resolves identifiers.
// An empty provider list means every configured provider joins the
// panel.
func (h *DebateHandler) toDebateRequest(req *DebateRequest) (*debate.Request, error) {
	style, err := debate.ParseModeratorStyle(req.ModeratorStyle)
	if err != nil {
		return nil, err
	}

	var providers []models.ProviderID
	if len(req.Providers) == 0 {
		providers = h.registry.Available()
	} else {
		for _, raw := range req.Providers {
			id, err := models.ParseProviderID(raw)
			if err != nil {
				return nil, err
			}
			providers = append(providers, id)
		}
	}

	return &debate.Request{
		Prompt:          req.Prompt,
		Language:        req.Language,
		Rounds:          req.Rounds,
		Providers:       providers,
		ModeratorEngine: req.ModeratorEngine,
		ModeratorStyle:  style,
	}, nil
}

// HandleDebate runs a debate and streams its events as SSE. The
// debate keeps running if the client disconnects mid-stream; events
// for a gone client are dropped, and the finished debate still lands
// in history.
func (h *DebateHandler) HandleDebate(c *gin.Context) {
	var body DebateRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid request body: %v", err)})
		return
	}

	req, err := h.toDebateRequest(&body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		h.logger.Error("Streaming not supported")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "streaming not supported"})
		return
	}
	c.Writer.WriteHeader(http.StatusOK)
	flusher.Flush()

	h.metrics.ActiveStreams.Inc()
	defer h.metrics.ActiveStreams.Dec()

	sink := debate.NewChannelSink(sinkBuffer)
	defer sink.Close()

	runDone := make(chan struct{})
	go func() {
		defer close(runDone)
		h.runAndPersist(context.WithoutCancel(c.Request.Context()), req, sink)
	}()

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case <-c.Request.Context().Done():
			h.logger.Debug("SSE client disconnected")
			return
		case ev := <-sink.Events():
			h.writeSSE(c, flusher, ev)
		case <-heartbeat.C:
			c.Writer.Write([]byte(": heartbeat\n\n"))
			flusher.Flush()
		case <-runDone:
			for {
				select {
				case ev := <-sink.Events():
					h.writeSSE(c, flusher, ev)
				default:
					return
				}
			}
		}
	}
}

// runAndPersist executes the debate on a context detached from the
// request so a client disconnect does not abort in-flight provider
// calls.
func (h *DebateHandler) runAndPersist(ctx context.Context, req *debate.Request, sink debate.Sink) {
	res, err := h.orchestrator.Run(ctx, req, sink)
	if err != nil || res == nil {
		return
	}
	if h.store == nil {
		return
	}
	if err := h.store.Save(ctx, history.FromResult(res)); err != nil {
		h.logger.WithError(err).WithField("debate_id", res.ID).Error("Failed to persist debate")
	}
}

func (h *DebateHandler) writeSSE(c *gin.Context, flusher http.Flusher, ev debate.Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		h.logger.WithError(err).Error("Failed to encode event")
		return
	}
	fmt.Fprintf(c.Writer, "event: %s\ndata: %s\n\n", ev.Type, data)
	flusher.Flush()
}
