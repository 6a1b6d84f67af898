package report

import (
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

// RegisterRoutes mounts the dashboard and usage reports on the authenticated
// group; the audit trail is admin only.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, admins *gin.RouterGroup) {
	rg.GET("/reports/dashboard", h.Dashboard)
	rg.GET("/reports/equipment-usage", h.EquipmentUsage)

	admins.GET("/reports/audit-log", h.AuditLog)
	admins.GET("/reports/audit-log/summary", h.AuditLogSummary)
}

func (h *Handler) Dashboard(c *gin.Context) {
	stats, err := h.service.Dashboard(c.Request.Context())
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to compute dashboard stats")
		return
	}

	response.Success(c, http.StatusOK, gin.H{"stats": stats})
}

func (h *Handler) EquipmentUsage(c *gin.Context) {
	report, err := h.service.EquipmentUsage(c.Request.Context())
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to compute usage report")
		return
	}

	response.Success(c, http.StatusOK, gin.H{"report": report})
}

func (h *Handler) AuditLog(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	f := repository.AuditLogFilters{
		TableName: c.Query("table_name"),
		Action:    domain.AuditAction(c.Query("action")),
		UserID:    c.Query("user_id"),
		Limit:     limit,
		Offset:    offset,
	}

	entries, err := h.service.AuditLog(c.Request.Context(), f)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list audit log")
		return
	}

	response.Success(c, http.StatusOK, gin.H{"audit_log": entries})
}

func (h *Handler) AuditLogSummary(c *gin.Context) {
	summary, err := h.service.AuditLogSummary(c.Request.Context())
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to compute audit summary")
		return
	}

	response.Success(c, http.StatusOK, gin.H{"summary": summary})
}
