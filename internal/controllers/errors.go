package controllers

import (
	"net/http"
	"strconv"

	"github.com/PizzaFlow/backend/internal/apperrors"
	"github.com/PizzaFlow/backend/internal/middleware"
	"github.com/PizzaFlow/backend/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

var log = logrus.WithField("component", "controllers")

// respondWithError maps service errors to status codes and APIError bodies.
// Internal causes are logged and never returned to the caller.
func respondWithError(c *gin.Context, err error) {
	if e, ok := apperrors.IsValidationError(err); ok {
		var details map[string]interface{}
		if len(e.Details) > 0 {
			details = map[string]interface{}{"fields": e.Details}
		}
		c.JSON(http.StatusBadRequest, models.APIError{Code: models.ErrValidationFailed, Message: e.Message, Details: details})
		return
	}
	if e, ok := apperrors.IsNotFoundError(err); ok {
		c.JSON(http.StatusNotFound, models.NewAPIError(models.ErrNotFound, e.Error()))
		return
	}
	if e, ok := apperrors.IsConflictError(err); ok {
		c.JSON(http.StatusConflict, models.NewAPIError(models.ErrConflict, e.Message))
		return
	}
	if e, ok := apperrors.IsForbiddenError(err); ok {
		c.JSON(http.StatusForbidden, models.NewAPIError(models.ErrForbidden, e.Message))
		return
	}
	if e, ok := apperrors.IsUnauthorizedError(err); ok {
		c.JSON(http.StatusUnauthorized, models.NewAPIError(models.ErrUnauthorized, e.Message))
		return
	}

	entry := log.WithError(err).WithFields(logrus.Fields{
		"path":       c.FullPath(),
		"request_id": c.GetString(middleware.RequestIDKey),
	})
	if e, ok := apperrors.IsInternalError(err); ok {
		entry.WithField("cause", e.Cause).Error(e.Message)
	} else {
		entry.Error("Unhandled error")
	}
	c.JSON(http.StatusInternalServerError, models.NewAPIError(models.ErrInternalServer, "Internal server error"))
}

func respondBadRequest(c *gin.Context, message string, err error) {
	var details map[string]interface{}
	if err != nil {
		details = map[string]interface{}{"reason": err.Error()}
	}
	c.JSON(http.StatusBadRequest, models.NewAPIError(models.ErrBadRequest, message, details))
}

// parseID reads a positive numeric path parameter.
func parseID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		respondBadRequest(c, "Invalid "+name+" format", nil)
		return 0, false
	}
	return uint(id), true
}

// currentUserID returns the authenticated caller set by the auth middleware.
func currentUserID(c *gin.Context) (uint, bool) {
	identity, ok := middleware.CurrentIdentity(c)
	if !ok || identity.UserID == 0 {
		c.JSON(http.StatusUnauthorized, models.NewAPIError(models.ErrUnauthorized, "User not authenticated"))
		return 0, false
	}
	return identity.UserID, true
}
