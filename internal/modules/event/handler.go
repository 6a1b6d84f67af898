package event

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"stagegear/internal/domain"
	"stagegear/internal/middleware"
	"stagegear/internal/pkg/response"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts read routes on the authenticated group and mutating
// routes behind the manager gate.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, managers *gin.RouterGroup) {
	rg.GET("/events", h.List)
	rg.GET("/events/:id", h.Get)
	rg.GET("/events/code/:code", h.GetByCode)

	managers.POST("/events", h.Create)
	managers.PUT("/events/:id", h.Update)
	managers.DELETE("/events/:id", h.Delete)
}

func (h *Handler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	events, err := h.service.List(c.Request.Context(), domain.EventStatus(c.Query("status")), limit, offset)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list events")
		return
	}

	response.Success(c, http.StatusOK, gin.H{"events": events})
}

func (h *Handler) Get(c *gin.Context) {
	e, err := h.service.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"event": e})
}

func (h *Handler) GetByCode(c *gin.Context) {
	e, err := h.service.GetByCode(c.Request.Context(), c.Param("code"))
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"event": e})
}

func (h *Handler) Create(c *gin.Context) {
	var req CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	e, err := h.service.Create(c.Request.Context(), req, middleware.UserID(c))
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"event": e})
}

func (h *Handler) Update(c *gin.Context) {
	var req UpdateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	e, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"event": e})
}

func (h *Handler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.writeError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", err.Error())

	case errors.Is(err, ErrDuplicateCode):
		response.Error(c, http.StatusConflict, "DUPLICATE", err.Error())

	case errors.Is(err, ErrInvalidWindow):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())

	default:
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Event operation failed")
	}
}
