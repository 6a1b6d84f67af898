package equipment

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"stagegear/internal/domain"
	"stagegear/internal/pkg/response"
	"stagegear/internal/repository"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts read routes on the authenticated group and mutating
// routes behind the admin gate.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, admins *gin.RouterGroup) {
	rg.GET("/equipment", h.List)
	rg.GET("/equipment/:id", h.Get)
	rg.GET("/equipment/code/:code", h.GetByCode)
	rg.GET("/equipment/qr/:qr", h.GetByQRCode)

	admins.POST("/equipment", h.Create)
	admins.PUT("/equipment/:id", h.Update)
	admins.DELETE("/equipment/:id", h.Delete)
}

func (h *Handler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	f := repository.EquipmentFilters{
		Category: c.Query("category"),
		Status:   domain.EquipmentStatus(c.Query("status")),
		Limit:    limit,
		Offset:   offset,
	}

	items, err := h.service.List(c.Request.Context(), f)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list equipment")
		return
	}

	response.Success(c, http.StatusOK, gin.H{"equipment": items})
}

func (h *Handler) Get(c *gin.Context) {
	eq, err := h.service.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"equipment": eq})
}

func (h *Handler) GetByCode(c *gin.Context) {
	eq, err := h.service.GetByCode(c.Request.Context(), c.Param("code"))
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"equipment": eq})
}

func (h *Handler) GetByQRCode(c *gin.Context) {
	eq, err := h.service.GetByQRCode(c.Request.Context(), c.Param("qr"))
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"equipment": eq})
}

func (h *Handler) Create(c *gin.Context) {
	var req CreateEquipmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	eq, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"equipment": eq})
}

func (h *Handler) Update(c *gin.Context) {
	var req UpdateEquipmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	eq, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"equipment": eq})
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

	case errors.Is(err, ErrDuplicateCode),
		errors.Is(err, ErrDuplicateSerial),
		errors.Is(err, ErrDuplicateQRCode):
		response.Error(c, http.StatusConflict, "DUPLICATE", err.Error())

	default:
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Equipment operation failed")
	}
}
