package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/smartquizzer/quizzer-backend/internal/middleware"
	"github.com/smartquizzer/quizzer-backend/internal/response"
	"github.com/smartquizzer/quizzer-backend/internal/service"
)

// failFromService maps a service error onto the response envelope.
// Unknown errors become 500 and are attached to the context for the
// request logger.
func failFromService(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	case errors.Is(err, service.ErrSessionCompleted):
		response.Fail(c, http.StatusConflict, response.ErrQuizCompleted)
	case errors.Is(err, service.ErrSessionClosed):
		response.Fail(c, http.StatusConflict, response.ErrQuizAbandoned)
	case errors.Is(err, service.ErrAlreadyAnswered):
		response.Fail(c, http.StatusConflict, response.ErrAlreadyAnswered)
	case errors.Is(err, service.ErrUsernameTaken):
		response.Fail(c, http.StatusConflict, response.ErrUsernameTaken)
	case errors.Is(err, service.ErrGenerationFailed):
		response.Fail(c, http.StatusUnprocessableEntity, response.ErrGenerationFailed)
	case errors.Is(err, service.ErrInvalidContent):
		response.Fail(c, http.StatusUnprocessableEntity, response.ErrInvalidContent)
	case errors.Is(err, service.ErrInvalidCredentials):
		response.Fail(c, http.StatusUnauthorized, response.ErrInvalidCredentials)
	default:
		_ = c.Error(err)
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}

// parseIDParam reads a positive int64 path parameter.
func parseIDParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return 0, false
	}
	return id, true
}

// parsePage reads ?skip= and ?limit=. Missing values are zero, which the
// services replace with their defaults.
func parsePage(c *gin.Context) (skip, limit int, ok bool) {
	fields := map[string]string{}

	if v := c.Query("skip"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			fields["skip"] = "skip must be a non-negative integer"
		}
		skip = n
	}
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			fields["limit"] = "limit must be a positive integer"
		}
		limit = n
	}

	if len(fields) > 0 {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return 0, 0, false
	}
	return skip, limit, true
}

// requireUserID reads the authenticated user from the JWT claims.
func requireUserID(c *gin.Context) (int64, bool) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return 0, false
	}
	return claims.UserID, true
}
