package handler

import (
	"net/http"
	"strings"
	"time"

	"hospital-resource-booking/internal/models"
	"hospital-resource-booking/internal/repository"
	"hospital-resource-booking/internal/service"
	"hospital-resource-booking/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type BookingHandler struct {
	bookingService   *service.BookingService
	userHospitalRepo *repository.UserHospitalRepository
}

func NewBookingHandler(bookingService *service.BookingService, userHospitalRepo *repository.UserHospitalRepository) *BookingHandler {
	return &BookingHandler{
		bookingService:   bookingService,
		userHospitalRepo: userHospitalRepo,
	}
}

type CreateBookingRequest struct {
	HospitalID         uint            `json:"hospital_id" binding:"required"`
	ResourceType       string          `json:"resource_type" binding:"required,oneof=bed icu operation_theatre ventilator"`
	PatientName        string          `json:"patient_name" binding:"required,max=255"`
	PatientAge         int             `json:"patient_age" binding:"omitempty,min=0,max=150"`
	MedicalCondition   string          `json:"medical_condition"`
	ContactNumber      string          `json:"contact_number" binding:"omitempty,max=50"`
	Urgency            string          `json:"urgency" binding:"omitempty,oneof=low medium high critical"`
	ScheduledDate      time.Time       `json:"scheduled_date" binding:"required"`
	EstimatedDuration  int             `json:"estimated_duration" binding:"omitempty,min=1"`
	ResourcesAllocated int             `json:"resources_allocated" binding:"omitempty,min=1"`
	PaymentAmount      decimal.Decimal `json:"payment_amount"`
}

// Create handles new booking requests
func (h *BookingHandler) Create(c *gin.Context) {
	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	userID, _ := currentUser(c)
	booking, err := h.bookingService.CreateBooking(service.CreateBookingInput{
		UserID:             userID,
		HospitalID:         req.HospitalID,
		ResourceType:       models.ResourceType(req.ResourceType),
		PatientName:        req.PatientName,
		PatientAge:         req.PatientAge,
		MedicalCondition:   req.MedicalCondition,
		ContactNumber:      req.ContactNumber,
		Urgency:            models.Urgency(req.Urgency),
		ScheduledDate:      req.ScheduledDate,
		EstimatedDuration:  req.EstimatedDuration,
		ResourcesAllocated: req.ResourcesAllocated,
		PaymentAmount:      req.PaymentAmount,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	utils.CreatedResponse(c, booking)
}

// Get returns a single booking. Regular users may only see their own.
func (h *BookingHandler) Get(c *gin.Context) {
	bookingID, err := parseUintParam(c, "id")
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid booking ID")
		return
	}

	booking, err := h.bookingService.GetBooking(bookingID)
	if err != nil {
		respondError(c, err)
		return
	}

	userID, role := currentUser(c)
	if role == models.RoleUser && booking.UserID != userID {
		utils.ErrorResponse(c, http.StatusForbidden, "Access denied")
		return
	}

	utils.SuccessResponse(c, booking)
}

// ListMine returns the authenticated user's bookings
func (h *BookingHandler) ListMine(c *gin.Context) {
	userID, _ := currentUser(c)
	limit, offset := paginationParams(c)

	bookings, err := h.bookingService.GetUserBookings(userID, limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"bookings": bookings,
		"count":    len(bookings),
	})
}

// ListByHospital returns a hospital's bookings for its authorities
func (h *BookingHandler) ListByHospital(c *gin.Context) {
	hospitalID, err := parseUintParam(c, "hospital_id")
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid hospital ID")
		return
	}

	var statuses []models.BookingStatus
	if raw := c.Query("status"); raw != "" {
		for _, s := range strings.Split(raw, ",") {
			status := models.BookingStatus(strings.TrimSpace(s))
			if !status.Valid() {
				utils.ErrorResponse(c, http.StatusBadRequest, "Unknown status: "+s)
				return
			}
			statuses = append(statuses, status)
		}
	}

	limit, offset := paginationParams(c)
	bookings, err := h.bookingService.GetHospitalBookings(hospitalID, statuses, limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"bookings": bookings,
		"count":    len(bookings),
	})
}

// History returns the full transition path of a booking
func (h *BookingHandler) History(c *gin.Context) {
	bookingID, err := parseUintParam(c, "id")
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid booking ID")
		return
	}

	booking, err := h.bookingService.GetBooking(bookingID)
	if err != nil {
		respondError(c, err)
		return
	}

	userID, role := currentUser(c)
	if role == models.RoleUser && booking.UserID != userID {
		utils.ErrorResponse(c, http.StatusForbidden, "Access denied")
		return
	}

	entries, err := h.bookingService.GetBookingHistory(bookingID)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"history": entries,
		"count":   len(entries),
	})
}

// HistoryMine returns transition entries across all of the user's bookings
func (h *BookingHandler) HistoryMine(c *gin.Context) {
	userID, _ := currentUser(c)
	limit, offset := paginationParams(c)

	entries, err := h.bookingService.GetUserHistory(userID, limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"history": entries,
		"count":   len(entries),
	})
}

// TransitionStats returns per-status transition counts for a hospital
func (h *BookingHandler) TransitionStats(c *gin.Context) {
	hospitalID, err := parseUintParam(c, "hospital_id")
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid hospital ID")
		return
	}

	stats, err := h.bookingService.GetTransitionStats(hospitalID)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, stats)
}

type ApproveBookingRequest struct {
	ResourcesAllocated    *int       `json:"resources_allocated" binding:"omitempty,min=1"`
	ScheduledDate         *time.Time `json:"scheduled_date"`
	Notes                 string     `json:"notes"`
	AutoAllocateResources *bool      `json:"auto_allocate_resources"`
}

// Approve handles booking approval by a hospital authority
func (h *BookingHandler) Approve(c *gin.Context) {
	bookingID, err := parseUintParam(c, "id")
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid booking ID")
		return
	}

	var req ApproveBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	userID, ok := h.requireHospitalAccess(c, bookingID)
	if !ok {
		return
	}

	booking, err := h.bookingService.ApproveBooking(bookingID, userID, service.ApproveOptions{
		ResourcesAllocated:    req.ResourcesAllocated,
		ScheduledDate:         req.ScheduledDate,
		Notes:                 req.Notes,
		AutoAllocateResources: req.AutoAllocateResources,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, booking)
}

type DeclineBookingRequest struct {
	Reason string `json:"reason" binding:"required,max=255"`
	Notes  string `json:"notes"`
}

// Decline handles booking decline by a hospital authority
func (h *BookingHandler) Decline(c *gin.Context) {
	bookingID, err := parseUintParam(c, "id")
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid booking ID")
		return
	}

	var req DeclineBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	userID, ok := h.requireHospitalAccess(c, bookingID)
	if !ok {
		return
	}

	booking, err := h.bookingService.DeclineBooking(bookingID, userID, req.Reason, req.Notes)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, booking)
}

type CompleteBookingRequest struct {
	Notes string `json:"notes"`
}

// Complete handles booking completion by a hospital authority
func (h *BookingHandler) Complete(c *gin.Context) {
	bookingID, err := parseUintParam(c, "id")
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid booking ID")
		return
	}

	var req CompleteBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	userID, ok := h.requireHospitalAccess(c, bookingID)
	if !ok {
		return
	}

	booking, err := h.bookingService.CompleteBooking(bookingID, userID, req.Notes)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, booking)
}

type CancelBookingRequest struct {
	Reason string `json:"reason" binding:"required,max=255"`
}

// Cancel handles cancellation by the booking owner or a hospital authority
func (h *BookingHandler) Cancel(c *gin.Context) {
	bookingID, err := parseUintParam(c, "id")
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid booking ID")
		return
	}

	var req CancelBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	booking, err := h.bookingService.GetBooking(bookingID)
	if err != nil {
		respondError(c, err)
		return
	}

	userID, role := currentUser(c)
	switch role {
	case models.RoleUser:
		if booking.UserID != userID {
			utils.ErrorResponse(c, http.StatusForbidden, "Access denied")
			return
		}
	case models.RoleAuthority:
		if !h.hasHospitalAccess(userID, booking.HospitalID) {
			utils.ErrorResponse(c, http.StatusForbidden, "You are not assigned to this hospital")
			return
		}
	}

	cancelled, err := h.bookingService.CancelBooking(bookingID, &userID, req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, cancelled)
}

// Pay captures the booking payment from the user's balance
func (h *BookingHandler) Pay(c *gin.Context) {
	bookingID, err := parseUintParam(c, "id")
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid booking ID")
		return
	}

	userID, _ := currentUser(c)
	change, err := h.bookingService.CapturePayment(bookingID, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, change)
}

// requireHospitalAccess loads the booking and verifies the caller may act
// for its hospital. Admins bypass the assignment check.
func (h *BookingHandler) requireHospitalAccess(c *gin.Context, bookingID uint) (uint, bool) {
	booking, err := h.bookingService.GetBooking(bookingID)
	if err != nil {
		respondError(c, err)
		return 0, false
	}

	userID, role := currentUser(c)
	if role == models.RoleAuthority && !h.hasHospitalAccess(userID, booking.HospitalID) {
		utils.ErrorResponse(c, http.StatusForbidden, "You are not assigned to this hospital")
		return 0, false
	}
	return userID, true
}

func (h *BookingHandler) hasHospitalAccess(userID, hospitalID uint) bool {
	ok, err := h.userHospitalRepo.HasAccess(userID, hospitalID)
	return err == nil && ok
}

func paginationParams(c *gin.Context) (limit, offset int) {
	limit = 50
	if v := c.Query("limit"); v != "" {
		if n, err := parsePositiveInt(v); err == nil {
			limit = n
		}
	}
	if v := c.Query("offset"); v != "" {
		if n, err := parsePositiveInt(v); err == nil {
			offset = n
		}
	}
	return limit, offset
}
