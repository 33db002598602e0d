package handler

import (
	"net/http"

	"hospital-resource-booking/internal/service"
	"hospital-resource-booking/pkg/utils"

	"github.com/gin-gonic/gin"
)

// MaintenanceHandler exposes the admin-only retention operations on the
// append-only ledgers.
type MaintenanceHandler struct {
	resourceService *service.ResourceService
	bookingService  *service.BookingService
}

func NewMaintenanceHandler(resourceService *service.ResourceService, bookingService *service.BookingService) *MaintenanceHandler {
	return &MaintenanceHandler{
		resourceService: resourceService,
		bookingService:  bookingService,
	}
}

type RetentionRequest struct {
	OlderThanDays int `json:"older_than_days" binding:"required,min=1"`
}

// Retention deletes audit and history entries older than the window
func (h *MaintenanceHandler) Retention(c *gin.Context) {
	var req RetentionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	auditRemoved, err := h.resourceService.CleanupAuditLog(req.OlderThanDays)
	if err != nil {
		respondError(c, err)
		return
	}
	historyRemoved, err := h.bookingService.CleanupHistory(req.OlderThanDays)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"audit_entries_removed":   auditRemoved,
		"history_entries_removed": historyRemoved,
	})
}
