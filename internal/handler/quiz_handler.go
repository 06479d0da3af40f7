package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/smartquizzer/quizzer-backend/internal/model"
	"github.com/smartquizzer/quizzer-backend/internal/response"
	"github.com/smartquizzer/quizzer-backend/internal/validator"
)

// QuizHandler handles quiz session endpoints.
type QuizHandler struct {
	quizzes QuizUseCase
}

// NewQuizHandler creates a new QuizHandler.
func NewQuizHandler(quizzes QuizUseCase) *QuizHandler {
	return &QuizHandler{quizzes: quizzes}
}

// Generate godoc
// POST /api/v1/quiz/generate
// Starts a session over questions generated (or cached) for a content item.
func (h *QuizHandler) Generate(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req model.GenerateQuizRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	quiz, err := h.quizzes.Create(c.Request.Context(), userID, req)
	if err != nil {
		failFromService(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"quiz": quiz})
}

// History godoc
// GET /api/v1/quiz/history?skip=&limit=
func (h *QuizHandler) History(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	skip, limit, ok := parsePage(c)
	if !ok {
		return
	}

	sessions, err := h.quizzes.History(c.Request.Context(), userID, skip, limit)
	if err != nil {
		failFromService(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"quizzes": sessions})
}

// Get godoc
// GET /api/v1/quiz/:id
// Returns the session with its questions, answer keys hidden.
func (h *QuizHandler) Get(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	quizID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	quiz, err := h.quizzes.Get(c.Request.Context(), quizID, userID)
	if err != nil {
		failFromService(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"quiz": quiz})
}

// SubmitAnswer godoc
// POST /api/v1/quiz/:id/submit-answer
// Records one answer and returns correctness plus the advised next difficulty.
func (h *QuizHandler) SubmitAnswer(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	quizID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req model.SubmitAnswerRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	result, err := h.quizzes.SubmitAnswer(c.Request.Context(), userID, quizID, req)
	if err != nil {
		failFromService(c, err)
		return
	}

	response.Success(c, http.StatusOK, result)
}

// Complete godoc
// POST /api/v1/quiz/:id/complete
// Finalizes the session and returns its results.
func (h *QuizHandler) Complete(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	quizID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	results, err := h.quizzes.Complete(c.Request.Context(), userID, quizID)
	if err != nil {
		failFromService(c, err)
		return
	}

	response.Success(c, http.StatusOK, results)
}

// Abandon godoc
// POST /api/v1/quiz/:id/abandon
func (h *QuizHandler) Abandon(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	quizID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.quizzes.Abandon(c.Request.Context(), userID, quizID); err != nil {
		failFromService(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"status": model.SessionStatusAbandoned})
}
