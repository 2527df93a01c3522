package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/symposium-ai/symposium/internal/debate"
	"github.com/symposium-ai/symposium/internal/history"
)

// ProviderInfo describes one configured provider for discovery.
type ProviderInfo struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Healthy     bool   `json:"healthy"`
}

// HandleProviders lists the configured providers with a live health
// probe per provider.
func (h *DebateHandler) HandleProviders(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	infos := []ProviderInfo{}
	for _, id := range h.registry.Available() {
		info := ProviderInfo{ID: string(id), DisplayName: id.DisplayName()}
		if p, err := h.registry.Get(id); err == nil {
			info.Healthy = p.HealthCheck(ctx) == nil
		}
		infos = append(infos, info)
	}

	c.JSON(http.StatusOK, gin.H{"providers": infos})
}

// HandleStyles lists the moderator styles a client can request.
func (h *DebateHandler) HandleStyles(c *gin.Context) {
	styles := make([]string, 0, len(debate.AllModeratorStyles()))
	for _, s := range debate.AllModeratorStyles() {
		styles = append(styles, string(s))
	}
	c.JSON(http.StatusOK, gin.H{"styles": styles})
}

// HandleListDebates returns recent debates, newest first.
func (h *DebateHandler) HandleListDebates(c *gin.Context) {
	if h.store == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "history is disabled"})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	summaries, err := h.store.List(c.Request.Context(), limit)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list debates")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list debates"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"debates": summaries})
}

// HandleGetDebate returns one stored debate with its full transcript.
func (h *DebateHandler) HandleGetDebate(c *gin.Context) {
	if h.store == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "history is disabled"})
		return
	}

	rec, err := h.store.Get(c.Request.Context(), c.Param("id"))
	if errors.Is(err, history.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "debate not found"})
		return
	}
	if err != nil {
		h.logger.WithError(err).Error("Failed to load debate")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load debate"})
		return
	}
	c.JSON(http.StatusOK, rec)
}

// HealthHandler reports service liveness.
type HealthHandler struct {
	startedAt time.Time
	version   string
}

// NewHealthHandler creates the health endpoint handler.
func NewHealthHandler(version string) *HealthHandler {
	return &HealthHandler{startedAt: time.Now(), version: version}
}

// HandleHealth reports status and uptime.
func (h *HealthHandler) HandleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"version": h.version,
		"uptime":  time.Since(h.startedAt).String(),
	})
}
