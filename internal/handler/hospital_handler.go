package handler

import (
	"net/http"

	"hospital-resource-booking/internal/models"
	"hospital-resource-booking/internal/repository"
	"hospital-resource-booking/pkg/utils"

	"github.com/gin-gonic/gin"
)

type HospitalHandler struct {
	hospitalRepo     *repository.HospitalRepository
	userHospitalRepo *repository.UserHospitalRepository
	userRepo         *repository.UserRepository
}

func NewHospitalHandler(
	hospitalRepo *repository.HospitalRepository,
	userHospitalRepo *repository.UserHospitalRepository,
	userRepo *repository.UserRepository,
) *HospitalHandler {
	return &HospitalHandler{
		hospitalRepo:     hospitalRepo,
		userHospitalRepo: userHospitalRepo,
		userRepo:         userRepo,
	}
}

// List returns all active hospitals
func (h *HospitalHandler) List(c *gin.Context) {
	hospitals, err := h.hospitalRepo.GetAllHospitals()
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"hospitals": hospitals,
		"count":     len(hospitals),
	})
}

// ListMine returns the hospitals the authority user is assigned to
func (h *HospitalHandler) ListMine(c *gin.Context) {
	userID, _ := currentUser(c)

	hospitals, err := h.hospitalRepo.GetHospitalsByUserID(userID)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"hospitals": hospitals,
		"count":     len(hospitals),
	})
}

type CreateHospitalRequest struct {
	Code          string `json:"code" binding:"required,max=50"`
	Name          string `json:"name" binding:"required,max=255"`
	Address       string `json:"address"`
	City          string `json:"city" binding:"omitempty,max=100"`
	ContactNumber string `json:"contact_number" binding:"omitempty,max=50"`
}

// Create registers a new hospital (admin only)
func (h *HospitalHandler) Create(c *gin.Context) {
	var req CreateHospitalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	hospital := &models.Hospital{
		Code:          req.Code,
		Name:          req.Name,
		Address:       req.Address,
		City:          req.City,
		ContactNumber: req.ContactNumber,
		IsActive:      true,
	}
	if err := h.hospitalRepo.CreateHospital(hospital); err != nil {
		respondError(c, err)
		return
	}

	utils.CreatedResponse(c, hospital)
}

type AssignAuthorityRequest struct {
	UserID uint `json:"user_id" binding:"required"`
}

// AssignAuthority grants an authority user access to a hospital (admin only)
func (h *HospitalHandler) AssignAuthority(c *gin.Context) {
	hospitalID, err := parseUintParam(c, "hospital_id")
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid hospital ID")
		return
	}

	var req AssignAuthorityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if _, err := h.hospitalRepo.GetHospitalByID(hospitalID); err != nil {
		respondError(c, err)
		return
	}

	user, err := h.userRepo.FindUserByID(req.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	if user.Role != models.RoleAuthority {
		utils.ErrorResponse(c, http.StatusBadRequest, "Only authority users can be assigned to hospitals")
		return
	}

	if err := h.userHospitalRepo.AssignUserToHospital(req.UserID, hospitalID); err != nil {
		respondError(c, err)
		return
	}

	hospitalIDs, err := h.userHospitalRepo.GetUserHospitals(req.UserID)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"user_id":      req.UserID,
		"hospital_ids": hospitalIDs,
	})
}

// RemoveAuthority revokes an authority user's hospital access (admin only)
func (h *HospitalHandler) RemoveAuthority(c *gin.Context) {
	hospitalID, err := parseUintParam(c, "hospital_id")
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid hospital ID")
		return
	}
	userID, err := parseUintParam(c, "user_id")
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid user ID")
		return
	}

	if err := h.userHospitalRepo.RemoveUserFromHospital(userID, hospitalID); err != nil {
		respondError(c, err)
		return
	}

	utils.MessageResponse(c, "Authority removed from hospital")
}
