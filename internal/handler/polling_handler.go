package handler

import (
	"net/http"
	"strings"
	"time"

	"hospital-resource-booking/internal/models"
	"hospital-resource-booking/internal/service"
	"hospital-resource-booking/pkg/utils"

	"github.com/gin-gonic/gin"
)

type PollingHandler struct {
	pollingService *service.PollingService
}

func NewPollingHandler(pollingService *service.PollingService) *PollingHandler {
	return &PollingHandler{
		pollingService: pollingService,
	}
}

// ResourceUpdates returns pools changed since the given timestamp
func (h *PollingHandler) ResourceUpdates(c *gin.Context) {
	hospitalID, since, ok := pollingScope(c)
	if !ok {
		return
	}

	var resourceTypes []models.ResourceType
	if raw := c.Query("resource_types"); raw != "" {
		for _, s := range strings.Split(raw, ",") {
			rt := models.ResourceType(strings.TrimSpace(s))
			if !rt.Valid() {
				utils.ErrorResponse(c, http.StatusBadRequest, "Unknown resource type: "+s)
				return
			}
			resourceTypes = append(resourceTypes, rt)
		}
	}

	updates, err := h.pollingService.GetResourceUpdates(hospitalID, since, resourceTypes)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, updates)
}

// BookingUpdates returns bookings changed since the given timestamp
func (h *PollingHandler) BookingUpdates(c *gin.Context) {
	hospitalID, since, ok := pollingScope(c)
	if !ok {
		return
	}

	var statuses []models.BookingStatus
	if raw := c.Query("statuses"); raw != "" {
		for _, s := range strings.Split(raw, ",") {
			status := models.BookingStatus(strings.TrimSpace(s))
			if !status.Valid() {
				utils.ErrorResponse(c, http.StatusBadRequest, "Unknown status: "+s)
				return
			}
			statuses = append(statuses, status)
		}
	}

	updates, err := h.pollingService.GetBookingUpdates(hospitalID, since, statuses)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, updates)
}

// Check is the count-only existence probe; since is required here
func (h *PollingHandler) Check(c *gin.Context) {
	hospitalID, since, ok := pollingScope(c)
	if !ok {
		return
	}
	if since == nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "since is required")
		return
	}

	hasChanges, err := h.pollingService.HasChanges(hospitalID, *since)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"has_changes": hasChanges,
		"checked_at":  time.Now().UTC(),
	})
}

// pollingScope parses the shared hospital_id and since query parameters
func pollingScope(c *gin.Context) (*uint, *time.Time, bool) {
	var hospitalID *uint
	if raw := c.Query("hospital_id"); raw != "" {
		n, err := parsePositiveInt(raw)
		if err != nil || n == 0 {
			utils.ErrorResponse(c, http.StatusBadRequest, "Invalid hospital_id")
			return nil, nil, false
		}
		id := uint(n)
		hospitalID = &id
	}

	var since *time.Time
	if raw := c.Query("since"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			utils.ErrorResponse(c, http.StatusBadRequest, "since must be RFC3339")
			return nil, nil, false
		}
		since = &t
	}

	return hospitalID, since, true
}
