package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/voxo-cms/internal/models"
	"github.com/voxo-cms/internal/service"
)

// SubscriberHandler handles subscriptions and newsletter broadcasts
type SubscriberHandler struct {
	services *service.Services
	log      zerolog.Logger
}

// NewSubscriberHandler creates a new SubscriberHandler
func NewSubscriberHandler(services *service.Services, log zerolog.Logger) *SubscriberHandler {
	return &SubscriberHandler{
		services: services,
		log:      log.With().Str("handler", "subscriber").Logger(),
	}
}

type emailRequest struct {
	Email string `json:"email"`
}

// Subscribe handles POST /api/subscribe
func (h *SubscriberHandler) Subscribe(c *gin.Context) {
	var req emailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON body"})
		return
	}

	subscriber, err := h.services.Subscriber.Subscribe(c.Request.Context(), req.Email)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, subscriber)
}

// Unsubscribe handles POST /api/unsubscribe
func (h *SubscriberHandler) Unsubscribe(c *gin.Context) {
	var req emailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON body"})
		return
	}

	if err := h.services.Subscriber.Unsubscribe(c.Request.Context(), req.Email); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": models.SubscriberUnsubscribed})
}

// List handles GET /api/admin/subscribers
func (h *SubscriberHandler) List(c *gin.Context) {
	subscribers, err := h.services.Subscriber.List(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"subscribers": subscribers, "total": len(subscribers)})
}

// Delete handles DELETE /api/admin/subscribers/:id
func (h *SubscriberHandler) Delete(c *gin.Context) {
	if err := h.services.Subscriber.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// CreateBroadcast handles POST /api/admin/broadcasts. The broadcast is
// queued and sent by the background processor.
func (h *SubscriberHandler) CreateBroadcast(c *gin.Context) {
	var req models.BroadcastRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON body"})
		return
	}

	broadcast, err := h.services.Newsletter.CreateBroadcast(c.Request.Context(), &req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusAccepted, broadcast)
}

// ListBroadcasts handles GET /api/admin/broadcasts
func (h *SubscriberHandler) ListBroadcasts(c *gin.Context) {
	broadcasts, err := h.services.Newsletter.ListBroadcasts(c.Request.Context(), queryInt(c, "limit", 0))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"broadcasts": broadcasts})
}

// GetBroadcast handles GET /api/admin/broadcasts/:id
func (h *SubscriberHandler) GetBroadcast(c *gin.Context) {
	broadcast, err := h.services.Newsletter.GetBroadcast(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, broadcast)
}
