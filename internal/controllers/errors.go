package controllers

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"

	"shorturl-api/internal/apperrors"
	"shorturl-api/internal/authz"
	"shorturl-api/internal/middleware"
)

// respondError maps an error kind to its HTTP status. Unexpected errors are
// logged and reported to Sentry.
func respondError(c *gin.Context, err error) {
	var status int
	var message string

	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		status, message = http.StatusNotFound, apperrors.Message(err, "Resource not found")
	case errors.Is(err, apperrors.ErrExpired):
		status, message = http.StatusGone, apperrors.Message(err, "The shortened URL has expired")
	case errors.Is(err, apperrors.ErrConflict):
		status, message = http.StatusConflict, apperrors.Message(err, "Resource already exists")
	case errors.Is(err, apperrors.ErrForbidden):
		status, message = http.StatusForbidden, apperrors.Message(err, "You can not perform this action.")
	case errors.Is(err, apperrors.ErrInvalidCredentials):
		status, message = http.StatusUnauthorized, apperrors.Message(err, "Incorrect email or password.")
	case errors.Is(err, apperrors.ErrBadRequest):
		status, message = http.StatusBadRequest, apperrors.Message(err, "Invalid request")
	case errors.Is(err, context.DeadlineExceeded):
		status, message = http.StatusGatewayTimeout, "Request timed out"
	default:
		log.Printf("ERROR: %s %s: %v", c.Request.Method, c.FullPath(), err)
		sentry.CaptureException(err)
		status, message = http.StatusInternalServerError, "Internal server error"
	}

	c.JSON(status, gin.H{"error": message})
}

func respondBindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"error":   "Invalid request body",
		"details": err.Error(),
	})
}

func respondInvalidID(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"error":   "The ID must be a valid UUID.",
		"details": err.Error(),
	})
}

// requireIdentity returns the authenticated caller or answers 401.
func requireIdentity(c *gin.Context) (authz.Identity, bool) {
	identity, ok := middleware.CurrentIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": middleware.UnauthorizedMessage,
		})
	}
	return identity, ok
}
