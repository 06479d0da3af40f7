package service

import (
	"context"
	"time"

	"github.com/smartquizzer/quizzer-backend/internal/event"
	"github.com/smartquizzer/quizzer-backend/internal/model"
)

// Store interfaces are implemented by the pgx repositories. Lookups of
// missing rows return pgx.ErrNoRows.

type UserStore interface {
	Create(ctx context.Context, u *model.User) error
	GetByID(ctx context.Context, id int64) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	Delete(ctx context.Context, id int64) error
}

type ContentStore interface {
	Create(ctx context.Context, c *model.Content) error
	GetByID(ctx context.Context, id int64) (*model.Content, error)
	ListByUser(ctx context.Context, userID int64, skip, limit int) ([]model.Content, error)
	Delete(ctx context.Context, id int64) error
}

type QuestionStore interface {
	CreateBatch(ctx context.Context, questions []model.Question) error
	GetByID(ctx context.Context, id int64) (*model.Question, error)
	GetByIDs(ctx context.Context, ids []int64) ([]model.Question, error)
}

type QuizStore interface {
	Create(ctx context.Context, s *model.QuizSession) error
	GetByID(ctx context.Context, id int64) (*model.QuizSession, error)
	ListByUser(ctx context.Context, userID int64, skip, limit int) ([]model.QuizSession, error)
	ListCompletedByUser(ctx context.Context, userID int64) ([]model.QuizSession, error)
	RecordResponse(ctx context.Context, resp *model.Response, check func(*model.QuizSession) error) error
	RecentResponses(ctx context.Context, quizID int64, limit int) ([]model.Response, error)
	Complete(ctx context.Context, id int64, finalize func(*model.QuizSession, []model.Response) (model.Completion, error)) ([]model.Response, error)
	Abandon(ctx context.Context, id int64, check func(*model.QuizSession) error) error
}

// Cache is a best-effort JSON cache; failures surface as misses.
type Cache interface {
	Get(ctx context.Context, key string, dst any) bool
	Set(ctx context.Context, key string, value any, ttl time.Duration)
	Delete(ctx context.Context, key string)
	Exists(ctx context.Context, key string) bool
}

// QuestionGenerator produces raw candidate questions from content text.
type QuestionGenerator interface {
	Generate(ctx context.Context, content string, count int, difficulty model.Difficulty, types []model.QuestionType) ([]model.CandidateQuestion, error)
}

// CompletionScheduler runs the follow-up work of a completed quiz
// asynchronously: analytics invalidation and event publishing.
type CompletionScheduler interface {
	Schedule(e *event.QuizCompleted)
}
