package webhook

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/eventtrackpro/eventtrack-backend/middleware"
)

// EventPayloadSource builds a canonical event payload from stored event
// data; implemented by the event service.
type EventPayloadSource interface {
	EventPayload(eventID uint) (map[string]interface{}, error)
}

type Handler struct {
	Service     *Service
	EventSource EventPayloadSource
}

func NewHandler(service *Service, eventSource EventPayloadSource) *Handler {
	return &Handler{Service: service, EventSource: eventSource}
}

// POST /api/v1/webhooks
func (h *Handler) CreateWebhook(c *gin.Context) {
	var req CreateWebhookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	accessContext, ok := middleware.GetAccessContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "access context missing"})
		return
	}

	wh, err := h.Service.CreateWebhook(&req, accessContext, middleware.GetIPFromContext(c))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, wh)
}

// GET /api/v1/webhooks
func (h *Handler) ListWebhooks(c *gin.Context) {
	webhooks, err := h.Service.ListWebhooks()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list webhooks"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": webhooks})
}

// GET /api/v1/webhooks/:id
func (h *Handler) GetWebhook(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid webhook ID"})
		return
	}

	wh, err := h.Service.GetWebhook(uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Webhook not found"})
		return
	}
	c.JSON(http.StatusOK, wh)
}

// PUT /api/v1/webhooks/:id
func (h *Handler) UpdateWebhook(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid webhook ID"})
		return
	}

	var req UpdateWebhookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	accessContext, ok := middleware.GetAccessContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "access context missing"})
		return
	}

	wh, err := h.Service.UpdateWebhook(uint(id), &req, accessContext, middleware.GetIPFromContext(c))
	if err != nil {
		if errors.Is(err, ErrWebhookNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Webhook not found"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, wh)
}

// DELETE /api/v1/webhooks/:id
func (h *Handler) DeleteWebhook(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid webhook ID"})
		return
	}

	accessContext, ok := middleware.GetAccessContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "access context missing"})
		return
	}

	if err := h.Service.DeleteWebhook(uint(id), accessContext, middleware.GetIPFromContext(c)); err != nil {
		if errors.Is(err, ErrWebhookNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Webhook not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete webhook"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Webhook deleted"})
}

// GET /api/v1/webhooks/:id/deliveries
func (h *Handler) ListDeliveries(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid webhook ID"})
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	deliveries, err := h.Service.ListDeliveries(uint(id), limit)
	if err != nil {
		if errors.Is(err, ErrWebhookNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Webhook not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list deliveries"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": deliveries})
}

// POST /api/v1/webhooks/trigger
//
// Fans out a caller-supplied payload to all active subscribers of the
// given event type. Returns 200 whether or not any subscriber existed;
// the message field distinguishes the two.
func (h *Handler) Trigger(c *gin.Context) {
	var req TriggerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	payload := req.Data
	if payload == nil {
		payload = map[string]interface{}{}
	}
	if req.EventID != nil {
		payload["event_id"] = *req.EventID
	}

	result, err := h.Service.Trigger(c.Request.Context(), req.EventType, payload)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}

// POST /api/v1/webhooks/test
//
// Single-target delivery with diagnostic response
func (h *Handler) Test(c *gin.Context) {
	var req TestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.Service.TestWebhook(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, ErrWebhookNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Webhook not found"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}

// POST /api/v1/webhooks/test-event
//
// Builds a canonical event.created payload from stored event data and
// dispatches it through the normal registry fan-out.
func (h *Handler) TestEvent(c *gin.Context) {
	var req TestEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	payload, err := h.EventSource.EventPayload(req.EventID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Event not found"})
		return
	}

	result, err := h.Service.Trigger(c.Request.Context(), EventEventCreated, payload)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}
