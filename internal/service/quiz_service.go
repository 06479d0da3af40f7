package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/samber/lo"
	"github.com/smartquizzer/quizzer-backend/internal/adaptive"
	"github.com/smartquizzer/quizzer-backend/internal/config"
	"github.com/smartquizzer/quizzer-backend/internal/event"
	"github.com/smartquizzer/quizzer-backend/internal/generator"
	"github.com/smartquizzer/quizzer-backend/internal/metrics"
	"github.com/smartquizzer/quizzer-backend/internal/model"
	"github.com/smartquizzer/quizzer-backend/internal/repository"
)

const (
	DefaultNumQuestions = 10
	DefaultHistoryLimit = 20
	MaxHistoryLimit     = 100
)

// DefaultQuestionTypes is used when a quiz request names no types.
var DefaultQuestionTypes = []model.QuestionType{model.QuestionTypeMCQ, model.QuestionTypeTrueFalse}

// QuizService runs the quiz session lifecycle: creation from cached or
// generated questions, answer submission with adaptive difficulty, and
// completion.
type QuizService struct {
	contents  ContentStore
	questions QuestionStore
	quizzes   QuizStore
	cache     Cache
	generator QuestionGenerator
	scheduler CompletionScheduler
	locks     *sessionLocks

	questionTTL     time.Duration
	contentMaxChars int
	log             zerolog.Logger
}

// NewQuizService creates a new QuizService.
func NewQuizService(
	contents ContentStore,
	questions QuestionStore,
	quizzes QuizStore,
	cache Cache,
	gen QuestionGenerator,
	scheduler CompletionScheduler,
	cfg *config.Config,
	log zerolog.Logger,
) *QuizService {
	return &QuizService{
		contents:        contents,
		questions:       questions,
		quizzes:         quizzes,
		cache:           cache,
		generator:       gen,
		scheduler:       scheduler,
		locks:           newSessionLocks(),
		questionTTL:     cfg.QuestionCacheTTL,
		contentMaxChars: cfg.ContentMaxChars,
		log:             log.With().Str("component", "quiz_service").Logger(),
	}
}

// Create builds a new session for content owned by userID. Questions come
// from the cache when available; otherwise they are generated, stored and
// cached before the session is created.
func (s *QuizService) Create(ctx context.Context, userID int64, req model.GenerateQuizRequest) (*model.QuizWithQuestions, error) {
	count := req.NumQuestions
	if count <= 0 {
		count = DefaultNumQuestions
	}
	difficulty := req.Difficulty
	if difficulty == "" {
		difficulty = model.DifficultyMedium
	}
	types := req.QuestionTypes
	if len(types) == 0 {
		types = DefaultQuestionTypes
	}

	content, err := s.contents.GetByID(ctx, req.ContentID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get content: %w", err)
	}
	if content.UserID != userID {
		return nil, ErrNotFound
	}

	source := "cache"
	var pool []model.Question
	cacheKey := config.CacheKey.Questions(content.ID, difficulty)
	if !s.cache.Get(ctx, cacheKey, &pool) || len(pool) == 0 {
		source = "generator"
		pool, err = s.generate(ctx, content, count, difficulty, types)
		if err != nil {
			return nil, err
		}
		s.cache.Set(ctx, cacheKey, pool, s.questionTTL)
	}

	chosen := pool[:min(count, len(pool))]

	session := &model.QuizSession{
		UserID:            userID,
		ContentID:         &content.ID,
		Topic:             &content.Title,
		QuestionIDs:       lo.Map(chosen, func(q model.Question, _ int) int64 { return q.ID }),
		TotalQuestions:    len(chosen),
		InitialDifficulty: difficulty,
	}
	if err := s.quizzes.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("create quiz: %w", err)
	}

	metrics.QuizzesCreated.WithLabelValues(source).Inc()
	s.log.Info().
		Int64("quiz_id", session.ID).
		Int64("content_id", content.ID).
		Int("questions", session.TotalQuestions).
		Str("source", source).
		Msg("Quiz created")

	return &model.QuizWithQuestions{
		QuizSession: *session,
		Questions:   lo.Map(chosen, func(q model.Question, _ int) model.QuestionForTaker { return q.ForTaker() }),
	}, nil
}

// generate calls the generator, validates its output and stores the
// resulting questions.
func (s *QuizService) generate(ctx context.Context, content *model.Content, count int, difficulty model.Difficulty, types []model.QuestionType) ([]model.Question, error) {
	text := generator.Truncate(content.RawText, s.contentMaxChars)
	if text == "" {
		return nil, ErrInvalidContent
	}

	start := time.Now()
	candidates, err := s.generator.Generate(ctx, text, count, difficulty, types)
	if err != nil {
		metrics.GenerationDuration.WithLabelValues("error").Observe(time.Since(start).Seconds())
		s.log.Error().Err(err).Int64("content_id", content.ID).Msg("Question generation failed")
		return nil, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}
	metrics.GenerationDuration.WithLabelValues("ok").Observe(time.Since(start).Seconds())

	questions := generator.Validate(candidates, types, difficulty)
	if len(questions) == 0 {
		s.log.Warn().Int64("content_id", content.ID).Int("candidates", len(candidates)).Msg("No usable questions generated")
		return nil, ErrGenerationFailed
	}
	for i := range questions {
		questions[i].ContentID = content.ID
	}

	if err := s.questions.CreateBatch(ctx, questions); err != nil {
		return nil, fmt.Errorf("store questions: %w", err)
	}
	return questions, nil
}

// getOwned loads a session and hides sessions of other users.
func (s *QuizService) getOwned(ctx context.Context, quizID, userID int64) (*model.QuizSession, error) {
	session, err := s.quizzes.GetByID(ctx, quizID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get quiz: %w", err)
	}
	if session.UserID != userID {
		return nil, ErrNotFound
	}
	return session, nil
}

// Get returns a session with its questions in snapshot order, answers hidden.
func (s *QuizService) Get(ctx context.Context, quizID, userID int64) (*model.QuizWithQuestions, error) {
	session, err := s.getOwned(ctx, quizID, userID)
	if err != nil {
		return nil, err
	}

	questions, err := s.questions.GetByIDs(ctx, session.QuestionIDs)
	if err != nil {
		return nil, fmt.Errorf("get questions: %w", err)
	}

	return &model.QuizWithQuestions{
		QuizSession: *session,
		Questions:   lo.Map(questions, func(q model.Question, _ int) model.QuestionForTaker { return q.ForTaker() }),
	}, nil
}

// History lists a user's sessions, most recently started first.
func (s *QuizService) History(ctx context.Context, userID int64, skip, limit int) ([]model.QuizSession, error) {
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	limit = min(limit, MaxHistoryLimit)

	sessions, err := s.quizzes.ListByUser(ctx, userID, skip, limit)
	if err != nil {
		return nil, fmt.Errorf("list quizzes: %w", err)
	}
	return sessions, nil
}

// SubmitAnswer records an answer, reports its correctness and advises the
// difficulty for what comes next.
func (s *QuizService) SubmitAnswer(ctx context.Context, userID, quizID int64, req model.SubmitAnswerRequest) (*model.AnswerResult, error) {
	unlock := s.locks.Lock(quizID)
	defer unlock()

	session, err := s.getOwned(ctx, quizID, userID)
	if err != nil {
		return nil, err
	}
	if err := ensureInProgress(session); err != nil {
		return nil, err
	}

	question, err := s.questions.GetByID(ctx, req.QuestionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get question: %w", err)
	}
	if !session.Contains(question.ID) {
		return nil, ErrNotFound
	}

	correct := adaptive.IsCorrect(req.UserAnswer, question.CorrectAnswer)
	resp := &model.Response{
		QuizID:              quizID,
		QuestionID:          question.ID,
		UserAnswer:          req.UserAnswer,
		IsCorrect:           correct,
		TimeTakenSeconds:    req.TimeTakenSeconds,
		DifficultyAtAttempt: question.Difficulty,
	}

	err = s.quizzes.RecordResponse(ctx, resp, ensureInProgress)
	if err != nil {
		switch {
		case errors.Is(err, ErrSessionCompleted), errors.Is(err, ErrSessionClosed):
			return nil, err
		case errors.Is(err, repository.ErrDuplicateResponse):
			return nil, ErrAlreadyAnswered
		case errors.Is(err, pgx.ErrNoRows):
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("record response: %w", err)
	}

	metrics.AnswersSubmitted.WithLabelValues(strconv.FormatBool(correct)).Inc()

	return &model.AnswerResult{
		IsCorrect:      correct,
		CorrectAnswer:  question.CorrectAnswer,
		Explanation:    question.Explanation,
		NextDifficulty: s.nextDifficulty(ctx, quizID, question.Difficulty),
	}, nil
}

// nextDifficulty runs the controller on the recent history of a session.
// The answer is already stored, so a failed lookup only degrades the advice.
func (s *QuizService) nextDifficulty(ctx context.Context, quizID int64, current model.Difficulty) model.Difficulty {
	recent, err := s.quizzes.RecentResponses(ctx, quizID, adaptive.HistoryLimit)
	if err != nil {
		s.log.Warn().Err(err).Int64("quiz_id", quizID).Msg("Load response history failed")
		return current
	}

	history := make([]bool, 0, len(recent))
	for i := len(recent) - 1; i >= 0; i-- {
		history = append(history, recent[i].IsCorrect)
	}
	return adaptive.NextDifficulty(current, history)
}

// Complete finalizes a session and schedules the analytics refresh.
func (s *QuizService) Complete(ctx context.Context, userID, quizID int64) (*model.QuizResults, error) {
	unlock := s.locks.Lock(quizID)
	defer unlock()

	session, err := s.getOwned(ctx, quizID, userID)
	if err != nil {
		return nil, err
	}
	if err := ensureInProgress(session); err != nil {
		return nil, err
	}

	var completion model.Completion
	responses, err := s.quizzes.Complete(ctx, quizID, func(locked *model.QuizSession, responses []model.Response) (model.Completion, error) {
		if err := ensureInProgress(locked); err != nil {
			return model.Completion{}, err
		}
		completion = adaptive.Score(responses)
		completion.CompletedAt = time.Now().UTC()
		return completion, nil
	})
	if err != nil {
		if errors.Is(err, ErrSessionCompleted) || errors.Is(err, ErrSessionClosed) {
			return nil, err
		}
		return nil, fmt.Errorf("complete quiz: %w", err)
	}

	metrics.QuizzesCompleted.Inc()
	s.scheduler.Schedule(event.NewQuizCompleted(userID, quizID, completion.Score, completion.Accuracy,
		completion.CorrectAnswers, completion.TotalAnswered))

	s.log.Info().
		Int64("quiz_id", quizID).
		Float64("score", completion.Score).
		Int("answered", completion.TotalAnswered).
		Msg("Quiz completed")

	return &model.QuizResults{
		QuizID:                quizID,
		Score:                 completion.Score,
		CorrectAnswers:        completion.CorrectAnswers,
		TotalQuestions:        completion.TotalAnswered,
		TotalTimeSeconds:      completion.TotalTimeSeconds,
		Accuracy:              completion.Accuracy,
		DifficultyProgression: adaptive.Progression(responses),
	}, nil
}

// Abandon closes an in-progress session without scoring it.
func (s *QuizService) Abandon(ctx context.Context, userID, quizID int64) error {
	unlock := s.locks.Lock(quizID)
	defer unlock()

	session, err := s.getOwned(ctx, quizID, userID)
	if err != nil {
		return err
	}
	if err := ensureInProgress(session); err != nil {
		return err
	}

	if err := s.quizzes.Abandon(ctx, quizID, ensureInProgress); err != nil {
		if errors.Is(err, ErrSessionCompleted) || errors.Is(err, ErrSessionClosed) {
			return err
		}
		return fmt.Errorf("abandon quiz: %w", err)
	}

	s.log.Info().Int64("quiz_id", quizID).Msg("Quiz abandoned")
	return nil
}
