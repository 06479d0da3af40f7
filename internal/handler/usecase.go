package handler

import (
	"context"

	"github.com/smartquizzer/quizzer-backend/internal/model"
)

// AuthUseCase is the account and token surface the auth endpoints need.
type AuthUseCase interface {
	Register(ctx context.Context, req model.RegisterRequest) (*model.User, error)
	Login(ctx context.Context, req model.LoginRequest) (string, *model.User, error)
	Me(ctx context.Context, userID int64) (*model.User, error)
	GenerateToken(u *model.User) (string, error)
}

// ContentUseCase manages uploaded study material.
type ContentUseCase interface {
	CreateText(ctx context.Context, userID int64, req model.CreateTextContentRequest) (*model.Content, error)
	Get(ctx context.Context, id, userID int64) (*model.Content, error)
	List(ctx context.Context, userID int64, skip, limit int) ([]model.Content, error)
	Delete(ctx context.Context, id, userID int64) error
}

// QuizUseCase drives quiz sessions.
type QuizUseCase interface {
	Create(ctx context.Context, userID int64, req model.GenerateQuizRequest) (*model.QuizWithQuestions, error)
	Get(ctx context.Context, quizID, userID int64) (*model.QuizWithQuestions, error)
	History(ctx context.Context, userID int64, skip, limit int) ([]model.QuizSession, error)
	SubmitAnswer(ctx context.Context, userID, quizID int64, req model.SubmitAnswerRequest) (*model.AnswerResult, error)
	Complete(ctx context.Context, userID, quizID int64) (*model.QuizResults, error)
	Abandon(ctx context.Context, userID, quizID int64) error
}

// AnalyticsUseCase serves the performance rollup.
type AnalyticsUseCase interface {
	GetOverview(ctx context.Context, userID int64) (*model.AnalyticsResponse, error)
}

// AccountUseCase covers account removal.
type AccountUseCase interface {
	DeleteAccount(ctx context.Context, userID int64) error
}
