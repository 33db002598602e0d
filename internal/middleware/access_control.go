package middleware

import (
	"net/http"
	"strconv"

	"hospital-resource-booking/internal/models"
	"hospital-resource-booking/internal/repository"
	"hospital-resource-booking/pkg/utils"

	"github.com/gin-gonic/gin"
)

// AccessControlMiddleware provides hospital-scoped access control
type AccessControlMiddleware struct {
	userHospitalRepo *repository.UserHospitalRepository
}

// NewAccessControlMiddleware creates a new access control middleware
func NewAccessControlMiddleware(userHospitalRepo *repository.UserHospitalRepository) *AccessControlMiddleware {
	return &AccessControlMiddleware{
		userHospitalRepo: userHospitalRepo,
	}
}

// CheckHospitalAccess verifies the user is assigned to the hospital in the path.
// Expected path parameter: :hospital_id or :id. Admins pass unconditionally.
func (m *AccessControlMiddleware) CheckHospitalAccess() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Get user info from context (set by AuthMiddleware)
		userID, exists := c.Get("userID")
		if !exists {
			utils.ErrorResponse(c, http.StatusUnauthorized, "User not authenticated")
			c.Abort()
			return
		}

		role, exists := c.Get("role")
		if !exists {
			utils.ErrorResponse(c, http.StatusUnauthorized, "User role not found")
			c.Abort()
			return
		}

		// Admin users have access to all hospitals
		if role.(string) == models.RoleAdmin {
			c.Next()
			return
		}

		// Parse hospital ID from path parameter
		hospitalIDStr := c.Param("hospital_id")
		if hospitalIDStr == "" {
			hospitalIDStr = c.Param("id")
		}

		hospitalID, err := strconv.ParseUint(hospitalIDStr, 10, 32)
		if err != nil {
			utils.ErrorResponse(c, http.StatusBadRequest, "Invalid hospital ID")
			c.Abort()
			return
		}

		// The token carries the scope snapshot from issue time; an
		// assignment made after the token was issued falls through to
		// the join table.
		if scope, ok := c.Get("hospitalIDs"); ok {
			if ids, ok := scope.([]uint); ok && containsHospital(ids, uint(hospitalID)) {
				c.Next()
				return
			}
		}

		hasAccess, err := m.userHospitalRepo.HasAccess(userID.(uint), uint(hospitalID))
		if err != nil {
			utils.ErrorResponse(c, http.StatusInternalServerError, "Failed to verify access")
			c.Abort()
			return
		}

		if !hasAccess {
			utils.ErrorResponse(c, http.StatusForbidden, "Access denied: you don't have permission to access this hospital")
			c.Abort()
			return
		}

		c.Next()
	}
}

func containsHospital(ids []uint, hospitalID uint) bool {
	for _, id := range ids {
		if id == hospitalID {
			return true
		}
	}
	return false
}
