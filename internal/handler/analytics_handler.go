package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/smartquizzer/quizzer-backend/internal/response"
)

// AnalyticsHandler serves per-user performance analytics.
type AnalyticsHandler struct {
	analytics AnalyticsUseCase
}

// NewAnalyticsHandler creates a new AnalyticsHandler.
func NewAnalyticsHandler(analytics AnalyticsUseCase) *AnalyticsHandler {
	return &AnalyticsHandler{analytics: analytics}
}

// Overview godoc
// GET /api/v1/analytics/overview
// Returns totals, topic breakdown, progress chart and recent quizzes.
func (h *AnalyticsHandler) Overview(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	overview, err := h.analytics.GetOverview(c.Request.Context(), userID)
	if err != nil {
		failFromService(c, err)
		return
	}

	response.Success(c, http.StatusOK, overview)
}
