package transaction

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"stagegear/internal/audit"
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
// routes behind the operator gate.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, operators *gin.RouterGroup) {
	rg.GET("/transactions", h.List)
	rg.GET("/transactions/:id", h.Get)

	operators.POST("/transactions", h.Create)
	operators.PUT("/transactions/:id", h.Update)
	operators.DELETE("/transactions/:id", h.Cancel)
}

func (h *Handler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	f := repository.TransactionFilters{
		Type:   domain.TransactionType(c.Query("transaction_type")),
		Status: domain.TransactionStatus(c.Query("status")),
		Limit:  limit,
		Offset: offset,
	}

	transactions, err := h.service.List(c.Request.Context(), f)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list transactions")
		return
	}

	response.Success(c, http.StatusOK, gin.H{"transactions": transactions})
}

func (h *Handler) Get(c *gin.Context) {
	txn, err := h.service.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "Transaction not found")
			return
		}
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to fetch transaction")
		return
	}

	response.Success(c, http.StatusOK, gin.H{"transaction": txn})
}

func (h *Handler) Create(c *gin.Context) {
	var req CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	txn, err := h.service.Create(c.Request.Context(), req, h.actor(c))
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"transaction": txn})
}

func (h *Handler) Update(c *gin.Context) {
	var req UpdateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	txn, err := h.service.Update(c.Request.Context(), c.Param("id"), req, h.actor(c))
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"transaction": txn})
}

func (h *Handler) Cancel(c *gin.Context) {
	if err := h.service.Cancel(c.Request.Context(), c.Param("id"), h.actor(c)); err != nil {
		h.writeError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *Handler) actor(c *gin.Context) audit.Actor {
	return audit.Actor{
		UserID:    middleware.UserID(c),
		IPAddress: c.ClientIP(),
	}
}

func (h *Handler) writeError(c *gin.Context, err error) {
	var inUse *InUseError

	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, ErrEventNotFound),
		errors.Is(err, ErrEquipmentNotFound),
		errors.Is(err, ErrBagNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", err.Error())

	case errors.Is(err, ErrResourceExclusive),
		errors.Is(err, ErrInvalidType):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())

	case errors.As(err, &inUse):
		response.Error(c, http.StatusBadRequest, "RESOURCE_IN_USE", inUse.Error())

	case errors.Is(err, ErrEventNotAccepting),
		errors.Is(err, ErrEquipmentNotInUse),
		errors.Is(err, ErrAlreadyCompleted):
		response.Error(c, http.StatusBadRequest, "PRECONDITION_FAILED", err.Error())

	default:
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Transaction operation failed")
	}
}
