// Package event publishes quiz domain events to RabbitMQ.
package event

import (
	"time"

	"github.com/google/uuid"
)

const (
	ExchangeName = "quizzer.events"

	TypeQuizCompleted = "quiz.completed"
)

// QuizCompleted is emitted once a session is finalized.
type QuizCompleted struct {
	EventID        string    `json:"event_id"`
	EventType      string    `json:"event_type"`
	UserID         int64     `json:"user_id"`
	QuizID         int64     `json:"quiz_id"`
	Score          float64   `json:"score"`
	Accuracy       float64   `json:"accuracy"`
	CorrectAnswers int       `json:"correct_answers"`
	TotalAnswered  int       `json:"total_answered"`
	Timestamp      time.Time `json:"timestamp"`
}

// NewQuizCompleted stamps a QuizCompleted event with a fresh id.
func NewQuizCompleted(userID, quizID int64, score, accuracy float64, correct, total int) *QuizCompleted {
	return &QuizCompleted{
		EventID:        uuid.NewString(),
		EventType:      TypeQuizCompleted,
		UserID:         userID,
		QuizID:         quizID,
		Score:          score,
		Accuracy:       accuracy,
		CorrectAnswers: correct,
		TotalAnswered:  total,
		Timestamp:      time.Now().UTC(),
	}
}
