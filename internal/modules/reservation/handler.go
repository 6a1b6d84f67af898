package reservation

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"stagegear/internal/domain"
	"stagegear/internal/middleware"
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
// routes behind the manager gate.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, managers *gin.RouterGroup) {
	rg.GET("/reservations", h.List)
	rg.GET("/reservations/:id", h.Get)

	managers.POST("/reservations", h.Create)
	managers.PUT("/reservations/:id", h.Update)
	managers.DELETE("/reservations/:id", h.Cancel)
}

func (h *Handler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	f := repository.ReservationFilters{
		Status:  domain.ReservationStatus(c.Query("status")),
		EventID: c.Query("event_id"),
		Limit:   limit,
		Offset:  offset,
	}

	reservations, err := h.service.List(c.Request.Context(), f)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list reservations")
		return
	}

	response.Success(c, http.StatusOK, gin.H{"reservations": reservations})
}

func (h *Handler) Get(c *gin.Context) {
	res, err := h.service.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "Reservation not found")
			return
		}
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to fetch reservation")
		return
	}

	response.Success(c, http.StatusOK, gin.H{"reservation": res})
}

func (h *Handler) Create(c *gin.Context) {
	var req CreateReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	res, err := h.service.Create(c.Request.Context(), req, middleware.UserID(c))
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"reservation": res})
}

func (h *Handler) Update(c *gin.Context) {
	var req UpdateReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	res, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"reservation": res})
}

func (h *Handler) Cancel(c *gin.Context) {
	if err := h.service.Cancel(c.Request.Context(), c.Param("id")); err != nil {
		h.writeError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, ErrEventNotFound),
		errors.Is(err, ErrEquipmentNotFound),
		errors.Is(err, ErrBagNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", err.Error())

	case errors.Is(err, ErrConflict):
		response.Error(c, http.StatusConflict, "RESERVATION_CONFLICT", err.Error())

	case errors.Is(err, ErrResourceExclusive),
		errors.Is(err, ErrInvalidWindow):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())

	case errors.Is(err, ErrEventNotAccepting),
		errors.Is(err, ErrEquipmentInBag),
		errors.Is(err, ErrEquipmentUnavailable),
		errors.Is(err, ErrBagInactive),
		errors.Is(err, ErrBagUnavailable),
		errors.Is(err, ErrNotActive):
		response.Error(c, http.StatusBadRequest, "PRECONDITION_FAILED", err.Error())

	default:
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Reservation operation failed")
	}
}
