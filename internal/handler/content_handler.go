package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/smartquizzer/quizzer-backend/internal/model"
	"github.com/smartquizzer/quizzer-backend/internal/response"
	"github.com/smartquizzer/quizzer-backend/internal/validator"
)

// ContentHandler handles study material endpoints.
type ContentHandler struct {
	contents ContentUseCase
}

// NewContentHandler creates a new ContentHandler.
func NewContentHandler(contents ContentUseCase) *ContentHandler {
	return &ContentHandler{contents: contents}
}

// CreateText godoc
// POST /api/v1/content
// Stores a plain-text upload.
func (h *ContentHandler) CreateText(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req model.CreateTextContentRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	content, err := h.contents.CreateText(c.Request.Context(), userID, req)
	if err != nil {
		failFromService(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"content": content})
}

// List godoc
// GET /api/v1/content?skip=&limit=
func (h *ContentHandler) List(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	skip, limit, ok := parsePage(c)
	if !ok {
		return
	}

	contents, err := h.contents.List(c.Request.Context(), userID, skip, limit)
	if err != nil {
		failFromService(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"contents": contents})
}

// Get godoc
// GET /api/v1/content/:id
func (h *ContentHandler) Get(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	content, err := h.contents.Get(c.Request.Context(), id, userID)
	if err != nil {
		failFromService(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"content": content})
}

// Delete godoc
// DELETE /api/v1/content/:id
// Removes the content, its questions and its cached question sets.
func (h *ContentHandler) Delete(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.contents.Delete(c.Request.Context(), id, userID); err != nil {
		failFromService(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{})
}
