package bag

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"stagegear/internal/domain"
	"stagegear/internal/pkg/response"
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
	rg.GET("/bags", h.List)
	rg.GET("/bags/:id", h.Get)
	rg.GET("/bags/:id/equipment", h.Contents)
	rg.GET("/bags/code/:code", h.GetByCode)

	admins.POST("/bags", h.Create)
	admins.PUT("/bags/:id", h.Update)
	admins.DELETE("/bags/:id", h.Delete)
	admins.POST("/bags/:id/equipment/:code", h.AddEquipment)
	admins.DELETE("/bags/:id/equipment/:equipmentID", h.RemoveEquipment)
}

func (h *Handler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	bags, err := h.service.List(c.Request.Context(), domain.BagStatus(c.Query("status")), limit, offset)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list bags")
		return
	}

	response.Success(c, http.StatusOK, gin.H{"bags": bags})
}

func (h *Handler) Get(c *gin.Context) {
	b, err := h.service.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"bag": b})
}

func (h *Handler) GetByCode(c *gin.Context) {
	b, err := h.service.GetByCode(c.Request.Context(), c.Param("code"))
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"bag": b})
}

func (h *Handler) Contents(c *gin.Context) {
	items, err := h.service.Contents(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"equipment": items})
}

func (h *Handler) Create(c *gin.Context) {
	var req CreateBagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	b, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"bag": b})
}

func (h *Handler) Update(c *gin.Context) {
	var req UpdateBagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	b, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"bag": b})
}

func (h *Handler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.writeError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *Handler) AddEquipment(c *gin.Context) {
	b, err := h.service.AddEquipment(c.Request.Context(), c.Param("id"), c.Param("code"))
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"bag": b})
}

func (h *Handler) RemoveEquipment(c *gin.Context) {
	if err := h.service.RemoveEquipment(c.Request.Context(), c.Param("id"), c.Param("equipmentID")); err != nil {
		h.writeError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, ErrEquipmentNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", err.Error())

	case errors.Is(err, ErrDuplicateCode):
		response.Error(c, http.StatusConflict, "DUPLICATE", err.Error())

	case errors.Is(err, ErrExcluded),
		errors.Is(err, ErrInOtherBag),
		errors.Is(err, ErrAlreadyInBag),
		errors.Is(err, ErrNotInBag):
		response.Error(c, http.StatusBadRequest, "PRECONDITION_FAILED", err.Error())

	default:
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Bag operation failed")
	}
}
