package model

import "time"

// TopicPerformance is the rollup of completed sessions sharing a topic.
type TopicPerformance struct {
	Topic          string  `json:"topic"`
	QuizCount      int     `json:"quiz_count"`
	TotalQuestions int     `json:"total_questions"`
	CorrectAnswers int     `json:"correct_answers"`
	Accuracy       float64 `json:"accuracy"`
}

// AnalyticsOverview is the headline section of a user's analytics.
type AnalyticsOverview struct {
	TotalQuizzes           int                `json:"total_quizzes"`
	TotalQuestionsAnswered int                `json:"total_questions_answered"`
	OverallAccuracy        float64            `json:"overall_accuracy"`
	AvgScore               float64            `json:"avg_score"`
	CurrentSkillLevel      SkillLevel         `json:"current_skill_level"`
	TopicsMastered         []string           `json:"topics_mastered"`
	TopicsToImprove        []string           `json:"topics_to_improve"`
	PerformanceByTopic     []TopicPerformance `json:"performance_by_topic"`
}

// ProgressPoint is one completed session on the progress chart.
type ProgressPoint struct {
	Date              time.Time `json:"date"`
	Accuracy          float64   `json:"accuracy"`
	QuestionsAnswered int       `json:"questions_answered"`
}

// RecentQuiz is a short summary of a recently completed session.
type RecentQuiz struct {
	ID          int64     `json:"id"`
	Topic       *string   `json:"topic"`
	Score       *float64  `json:"score"`
	CompletedAt time.Time `json:"completed_at"`
}

// AnalyticsResponse is the cached per-user performance rollup.
type AnalyticsResponse struct {
	Overview      AnalyticsOverview `json:"overview"`
	ProgressChart []ProgressPoint   `json:"progress_chart"`
	RecentQuizzes []RecentQuiz      `json:"recent_quizzes"`
}
