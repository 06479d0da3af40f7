package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/smartquizzer/quizzer-backend/internal/response"
)

// UserHandler handles account endpoints.
type UserHandler struct {
	accounts AccountUseCase
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(accounts AccountUseCase) *UserHandler {
	return &UserHandler{accounts: accounts}
}

// DeleteMe godoc
// DELETE /api/v1/users/me
// Deletes the caller's account with all content, quizzes and responses.
func (h *UserHandler) DeleteMe(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	if err := h.accounts.DeleteAccount(c.Request.Context(), userID); err != nil {
		failFromService(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{})
}
