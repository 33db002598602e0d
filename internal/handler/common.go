package handler

import (
	"errors"
	"net/http"
	"strconv"

	"hospital-resource-booking/pkg/apperrors"
	"hospital-resource-booking/pkg/utils"

	"github.com/gin-gonic/gin"
)

// parseUintParam parses a numeric path parameter
func parseUintParam(c *gin.Context, name string) (uint, error) {
	value, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(value), nil
}

// parsePositiveInt parses a non-negative integer query value
func parsePositiveInt(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, errors.New("not a non-negative integer")
	}
	return n, nil
}

// currentUser extracts the identity injected by the auth middleware
func currentUser(c *gin.Context) (uint, string) {
	userID, _ := c.Get("userID")
	role, _ := c.Get("role")
	return userID.(uint), role.(string)
}

// respondError maps the service error taxonomy to HTTP statuses
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		utils.ErrorResponse(c, http.StatusNotFound, err.Error())
	case errors.Is(err, apperrors.ErrValidation):
		utils.ErrorResponse(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, apperrors.ErrInvalidStateTransition),
		errors.Is(err, apperrors.ErrInsufficientResources),
		errors.Is(err, apperrors.ErrInsufficientBalance):
		utils.ErrorResponse(c, http.StatusConflict, err.Error())
	default:
		utils.ErrorResponse(c, http.StatusInternalServerError, err.Error())
	}
}
