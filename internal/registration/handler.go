package registration

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/eventtrackpro/eventtrack-backend/internal/event"
	"github.com/eventtrackpro/eventtrack-backend/internal/form"
	"github.com/eventtrackpro/eventtrack-backend/middleware"
)

type Handler struct {
	Service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{Service: service}
}

// POST /api/v1/public/registrations
// Unauthenticated submission endpoint behind the public rate limiter.
func (h *Handler) CreatePublic(c *gin.Context) {
	var req PublicCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	reg, err := h.Service.CreatePublic(c.Request.Context(), &req, middleware.GetIPFromContext(c))
	if err != nil {
		var verr *ValidationFailedError
		switch {
		case errors.As(err, &verr):
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "validation failed",
				"details": verr.Errors,
			})
		case errors.Is(err, event.ErrEventNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Event not found"})
		case errors.Is(err, form.ErrFormNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Form not found"})
		case errors.Is(err, ErrEventFull):
			c.JSON(http.StatusConflict, gin.H{"error": "Event is at full capacity"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create registration"})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"registration": reg,
		"waitlisted":   reg.Status == StatusPending,
	})
}

// GET /api/v1/registrations
func (h *Handler) ListRegistrations(c *gin.Context) {
	filter := ListFilter{
		Status: c.Query("status"),
		Search: c.Query("search"),
	}

	if eventIDStr := c.Query("event_id"); eventIDStr != "" {
		if eventID, err := strconv.ParseUint(eventIDStr, 10, 32); err == nil {
			eid := uint(eventID)
			filter.EventID = &eid
		}
	}
	if attendedStr := c.Query("attended"); attendedStr != "" {
		if attended, err := strconv.ParseBool(attendedStr); err == nil {
			filter.Attended = &attended
		}
	}
	filter.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	filter.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))

	regs, total, err := h.Service.ListRegistrations(filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list registrations"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":  regs,
		"total": total,
		"page":  filter.Page,
		"limit": filter.Limit,
	})
}

// GET /api/v1/registrations/:id
func (h *Handler) GetRegistration(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid registration ID"})
		return
	}

	reg, err := h.Service.GetRegistration(uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Registration not found"})
		return
	}
	c.JSON(http.StatusOK, reg)
}

// PATCH /api/v1/registrations/:id/attendance
func (h *Handler) UpdateAttendance(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid registration ID"})
		return
	}

	var req AttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	accessContext, ok := middleware.GetAccessContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "access context missing"})
		return
	}

	reg, err := h.Service.UpdateAttendance(c.Request.Context(), uint(id), &req, accessContext, middleware.GetIPFromContext(c))
	if err != nil {
		if errors.Is(err, ErrRegistrationNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Registration not found"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, reg)
}

// POST /api/v1/registrations/:id/retrigger-webhooks
func (h *Handler) RetriggerWebhooks(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid registration ID"})
		return
	}

	accessContext, ok := middleware.GetAccessContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "access context missing"})
		return
	}

	result, err := h.Service.RetriggerWebhooks(c.Request.Context(), uint(id), accessContext, middleware.GetIPFromContext(c))
	if err != nil {
		if errors.Is(err, ErrRegistrationNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Registration not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}

// DELETE /api/v1/registrations/:id
func (h *Handler) DeleteRegistration(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid registration ID"})
		return
	}

	accessContext, ok := middleware.GetAccessContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "access context missing"})
		return
	}

	if err := h.Service.DeleteRegistration(uint(id), accessContext, middleware.GetIPFromContext(c)); err != nil {
		if errors.Is(err, ErrRegistrationNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Registration not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete registration"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Registration deleted"})
}
