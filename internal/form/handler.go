package form

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/eventtrackpro/eventtrack-backend/middleware"
)

type Handler struct {
	Service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{Service: service}
}

// POST /api/v1/forms
func (h *Handler) CreateForm(c *gin.Context) {
	var req CreateFormRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	accessContext, ok := middleware.GetAccessContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "access context missing"})
		return
	}

	f, err := h.Service.CreateForm(&req, accessContext, middleware.GetIPFromContext(c))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, f)
}

// GET /api/v1/forms
func (h *Handler) ListForms(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	search := c.Query("search")

	forms, total, err := h.Service.ListForms(page, limit, search)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list forms"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":  forms,
		"total": total,
		"page":  page,
		"limit": limit,
	})
}

// GET /api/v1/forms/:id
func (h *Handler) GetForm(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid form ID"})
		return
	}

	f, err := h.Service.GetForm(uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Form not found"})
		return
	}

	c.JSON(http.StatusOK, f)
}

// PUT /api/v1/forms/:id
func (h *Handler) UpdateForm(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid form ID"})
		return
	}

	var req UpdateFormRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	req.ID = uint(id)

	accessContext, ok := middleware.GetAccessContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "access context missing"})
		return
	}

	f, err := h.Service.UpdateForm(&req, accessContext, middleware.GetIPFromContext(c))
	if err != nil {
		if errors.Is(err, ErrFormNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Form not found"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, f)
}

// DELETE /api/v1/forms/:id
func (h *Handler) DeleteForm(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid form ID"})
		return
	}

	accessContext, ok := middleware.GetAccessContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "access context missing"})
		return
	}

	if err := h.Service.DeleteForm(uint(id), accessContext, middleware.GetIPFromContext(c)); err != nil {
		if errors.Is(err, ErrFormNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Form not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete form"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Form deleted"})
}

// GET /api/v1/public/forms/:id
// Public form definition used to render the registration page.
func (h *Handler) GetPublicForm(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid form ID"})
		return
	}

	f, err := h.Service.GetForm(uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Form not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":                   f.ID,
		"title":                f.Title,
		"description":          f.Description,
		"fields":               f.Fields,
		"success_message":      f.SuccessMessage,
		"show_remaining_spots": f.ShowRemainingSpots,
		"enable_waitlist":      f.EnableWaitlist,
		"require_all_fields":   f.RequireAllFields,
		"theme_color":          f.ThemeColor,
		"button_style":         f.ButtonStyle,
	})
}
