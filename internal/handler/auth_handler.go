package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/smartquizzer/quizzer-backend/internal/model"
	"github.com/smartquizzer/quizzer-backend/internal/response"
	"github.com/smartquizzer/quizzer-backend/internal/validator"
)

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	auth AuthUseCase
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(auth AuthUseCase) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// Register godoc
// POST /api/v1/auth/register
// Creates an account and returns a token for it.
func (h *AuthHandler) Register(c *gin.Context) {
	var req model.RegisterRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	user, err := h.auth.Register(c.Request.Context(), req)
	if err != nil {
		failFromService(c, err)
		return
	}

	token, err := h.auth.GenerateToken(user)
	if err != nil {
		failFromService(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{
		"access_token": token,
		"token_type":   "bearer",
		"user":         user,
	})
}

// Login godoc
// POST /api/v1/auth/login
// Validates username + password, returns JWT.
func (h *AuthHandler) Login(c *gin.Context) {
	var req model.LoginRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	token, user, err := h.auth.Login(c.Request.Context(), req)
	if err != nil {
		failFromService(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"access_token": token,
		"token_type":   "bearer",
		"user":         user,
	})
}

// Me godoc
// GET /api/v1/auth/me
// Returns the profile of the currently authenticated user.
func (h *AuthHandler) Me(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	user, err := h.auth.Me(c.Request.Context(), userID)
	if err != nil {
		failFromService(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"user": user})
}
