package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/samber/lo"
	"github.com/smartquizzer/quizzer-backend/internal/adaptive"
	"github.com/smartquizzer/quizzer-backend/internal/config"
	"github.com/smartquizzer/quizzer-backend/internal/generator"
	"github.com/smartquizzer/quizzer-backend/internal/model"
)

const (
	MasteredAccuracy    = 80.0
	NeedsWorkAccuracy   = 60.0
	ProgressChartLength = 10
	RecentQuizzesLength = 5
)

// AnalyticsService computes and caches per-user performance rollups.
type AnalyticsService struct {
	users   UserStore
	quizzes QuizStore
	cache   Cache
	ttl     time.Duration
	log     zerolog.Logger
}

// NewAnalyticsService creates a new AnalyticsService.
func NewAnalyticsService(users UserStore, quizzes QuizStore, cache Cache, cfg *config.Config, log zerolog.Logger) *AnalyticsService {
	return &AnalyticsService{
		users:   users,
		quizzes: quizzes,
		cache:   cache,
		ttl:     cfg.AnalyticsCacheTTL,
		log:     log.With().Str("component", "analytics_service").Logger(),
	}
}

// GetOverview returns the cached rollup for userID, recomputing it from
// completed sessions on a miss.
func (s *AnalyticsService) GetOverview(ctx context.Context, userID int64) (*model.AnalyticsResponse, error) {
	key := config.CacheKey.Analytics(userID)

	var cached model.AnalyticsResponse
	if s.cache.Get(ctx, key, &cached) {
		return &cached, nil
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	sessions, err := s.quizzes.ListCompletedByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list completed quizzes: %w", err)
	}

	result := Aggregate(sessions, user.SkillLevel)
	s.cache.Set(ctx, key, result, s.ttl)

	s.log.Debug().Int64("user_id", userID).Int("quizzes", len(sessions)).Msg("Analytics recomputed")
	return result, nil
}

// Invalidate drops the cached rollup of userID.
func (s *AnalyticsService) Invalidate(ctx context.Context, userID int64) {
	s.cache.Delete(ctx, config.CacheKey.Analytics(userID))
}

// Aggregate builds the analytics rollup from completed sessions ordered by
// completion time, oldest first.
func Aggregate(sessions []model.QuizSession, skill model.SkillLevel) *model.AnalyticsResponse {
	result := &model.AnalyticsResponse{
		Overview: model.AnalyticsOverview{
			CurrentSkillLevel:  skill,
			TopicsMastered:     []string{},
			TopicsToImprove:    []string{},
			PerformanceByTopic: []model.TopicPerformance{},
		},
		ProgressChart: []model.ProgressPoint{},
		RecentQuizzes: []model.RecentQuiz{},
	}
	if len(sessions) == 0 {
		return result
	}

	totalQuestions := lo.SumBy(sessions, func(q model.QuizSession) int { return q.TotalQuestions })
	totalCorrect := lo.SumBy(sessions, func(q model.QuizSession) int { return q.CorrectAnswers })

	overview := &result.Overview
	overview.TotalQuizzes = len(sessions)
	overview.TotalQuestionsAnswered = totalQuestions
	overview.OverallAccuracy = percentage(totalCorrect, totalQuestions)

	scores := lo.FilterMap(sessions, func(q model.QuizSession, _ int) (float64, bool) {
		if q.Score == nil {
			return 0, false
		}
		return *q.Score, true
	})
	if len(scores) > 0 {
		overview.AvgScore = adaptive.Round2(lo.Sum(scores) / float64(len(scores)))
	}

	byTopic := lo.GroupBy(sessions, func(q model.QuizSession) string {
		if q.Topic == nil || *q.Topic == "" {
			return generator.DefaultTopic
		}
		return *q.Topic
	})
	topics := lo.Keys(byTopic)
	sort.Strings(topics)

	for _, topic := range topics {
		group := byTopic[topic]
		total := lo.SumBy(group, func(q model.QuizSession) int { return q.TotalQuestions })
		if total == 0 {
			continue
		}
		correct := lo.SumBy(group, func(q model.QuizSession) int { return q.CorrectAnswers })
		accuracy := percentage(correct, total)

		overview.PerformanceByTopic = append(overview.PerformanceByTopic, model.TopicPerformance{
			Topic:          topic,
			QuizCount:      len(group),
			TotalQuestions: total,
			CorrectAnswers: correct,
			Accuracy:       accuracy,
		})

		switch {
		case accuracy >= MasteredAccuracy:
			overview.TopicsMastered = append(overview.TopicsMastered, topic)
		case accuracy < NeedsWorkAccuracy:
			overview.TopicsToImprove = append(overview.TopicsToImprove, topic)
		}
	}

	for _, q := range lastN(sessions, ProgressChartLength) {
		if q.TotalQuestions == 0 {
			continue
		}
		result.ProgressChart = append(result.ProgressChart, model.ProgressPoint{
			Date:              completedAt(q),
			Accuracy:          percentage(q.CorrectAnswers, q.TotalQuestions),
			QuestionsAnswered: q.TotalQuestions,
		})
	}

	for _, q := range lastN(sessions, RecentQuizzesLength) {
		result.RecentQuizzes = append(result.RecentQuizzes, model.RecentQuiz{
			ID:          q.ID,
			Topic:       q.Topic,
			Score:       q.Score,
			CompletedAt: completedAt(q),
		})
	}

	return result
}

func percentage(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return adaptive.Round2(float64(part) / float64(whole) * 100)
}

func lastN[T any](items []T, n int) []T {
	return items[max(len(items)-n, 0):]
}

func completedAt(q model.QuizSession) time.Time {
	if q.CompletedAt != nil {
		return *q.CompletedAt
	}
	return q.StartedAt
}
