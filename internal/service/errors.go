package service

import (
	"errors"

	"github.com/smartquizzer/quizzer-backend/internal/model"
)

// Domain errors. Handlers map them to HTTP statuses.
var (
	// Not found, also returned when the caller does not own the resource.
	ErrNotFound = errors.New("not found")

	// Conflict.
	ErrSessionCompleted = errors.New("quiz already completed")
	ErrSessionClosed    = errors.New("quiz was abandoned")
	ErrAlreadyAnswered  = errors.New("question already answered")
	ErrUsernameTaken    = errors.New("username or email already registered")

	// Validation failure.
	ErrGenerationFailed = errors.New("failed to generate questions")
	ErrInvalidContent   = errors.New("content has no usable text")

	ErrInvalidCredentials = errors.New("invalid credentials")
)

// ensureInProgress rejects any operation on a terminal session.
func ensureInProgress(s *model.QuizSession) error {
	switch s.Status {
	case model.SessionStatusCompleted:
		return ErrSessionCompleted
	case model.SessionStatusAbandoned:
		return ErrSessionClosed
	}
	return nil
}
