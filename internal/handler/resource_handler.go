package handler

import (
	"net/http"

	"hospital-resource-booking/internal/models"
	"hospital-resource-booking/internal/service"
	"hospital-resource-booking/pkg/utils"

	"github.com/gin-gonic/gin"
)

type ResourceHandler struct {
	resourceService *service.ResourceService
}

func NewResourceHandler(resourceService *service.ResourceService) *ResourceHandler {
	return &ResourceHandler{
		resourceService: resourceService,
	}
}

// ListPools returns all resource pools of a hospital
func (h *ResourceHandler) ListPools(c *gin.Context) {
	hospitalID, err := parseUintParam(c, "hospital_id")
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid hospital ID")
		return
	}

	pools, err := h.resourceService.GetPools(hospitalID)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"pools": pools,
		"count": len(pools),
	})
}

// CheckAvailability answers whether a quantity could currently be allocated
func (h *ResourceHandler) CheckAvailability(c *gin.Context) {
	hospitalID, err := parseUintParam(c, "hospital_id")
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid hospital ID")
		return
	}

	resourceType := models.ResourceType(c.Query("resource_type"))
	if !resourceType.Valid() {
		utils.ErrorResponse(c, http.StatusBadRequest, "Unknown resource type")
		return
	}

	quantity := 1
	if v := c.Query("quantity"); v != "" {
		n, err := parsePositiveInt(v)
		if err != nil || n == 0 {
			utils.ErrorResponse(c, http.StatusBadRequest, "Quantity must be a positive integer")
			return
		}
		quantity = n
	}

	result, err := h.resourceService.CheckAvailability(hospitalID, resourceType, quantity)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, result)
}

type RegisterPoolRequest struct {
	ResourceType string `json:"resource_type" binding:"required,oneof=bed icu operation_theatre ventilator"`
	Total        int    `json:"total" binding:"min=0"`
}

// RegisterPool creates the counter row for a new resource type
func (h *ResourceHandler) RegisterPool(c *gin.Context) {
	hospitalID, err := parseUintParam(c, "hospital_id")
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid hospital ID")
		return
	}

	var req RegisterPoolRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	userID, _ := currentUser(c)
	pool, err := h.resourceService.RegisterPool(hospitalID, models.ResourceType(req.ResourceType), req.Total, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.CreatedResponse(c, pool)
}

type ManualUpdateRequest struct {
	Total       int    `json:"total" binding:"min=0"`
	Available   int    `json:"available" binding:"min=0"`
	Occupied    int    `json:"occupied" binding:"min=0"`
	Reserved    int    `json:"reserved" binding:"min=0"`
	Maintenance int    `json:"maintenance" binding:"min=0"`
	Reason      string `json:"reason" binding:"required,max=255"`
}

// ManualUpdate lets hospital staff correct the pool counters
func (h *ResourceHandler) ManualUpdate(c *gin.Context) {
	hospitalID, err := parseUintParam(c, "hospital_id")
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid hospital ID")
		return
	}

	resourceType := models.ResourceType(c.Param("resource_type"))
	if !resourceType.Valid() {
		utils.ErrorResponse(c, http.StatusBadRequest, "Unknown resource type")
		return
	}

	var req ManualUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	userID, _ := currentUser(c)
	pool, err := h.resourceService.ManualUpdate(hospitalID, resourceType, service.PoolCounts{
		Total:       req.Total,
		Available:   req.Available,
		Occupied:    req.Occupied,
		Reserved:    req.Reserved,
		Maintenance: req.Maintenance,
	}, userID, req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, pool)
}

// AuditLog returns a hospital's resource mutations, newest first
func (h *ResourceHandler) AuditLog(c *gin.Context) {
	hospitalID, err := parseUintParam(c, "hospital_id")
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid hospital ID")
		return
	}

	var resourceType *models.ResourceType
	if raw := c.Query("resource_type"); raw != "" {
		rt := models.ResourceType(raw)
		if !rt.Valid() {
			utils.ErrorResponse(c, http.StatusBadRequest, "Unknown resource type")
			return
		}
		resourceType = &rt
	}

	limit, offset := paginationParams(c)
	entries, err := h.resourceService.GetAuditLog(hospitalID, resourceType, limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"entries": entries,
		"count":   len(entries),
	})
}

// AuditStats returns per-cause mutation counts for a hospital
func (h *ResourceHandler) AuditStats(c *gin.Context) {
	hospitalID, err := parseUintParam(c, "hospital_id")
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid hospital ID")
		return
	}

	stats, err := h.resourceService.GetAuditStats(hospitalID)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, stats)
}
