package model

import "time"

// SessionStatus enumerates quiz session states. InProgress is the only
// non-terminal state.
type SessionStatus string

const (
	SessionStatusInProgress SessionStatus = "in_progress"
	SessionStatusCompleted  SessionStatus = "completed"
	SessionStatusAbandoned  SessionStatus = "abandoned"
)

// Terminal reports whether no further transition is allowed out of s.
func (s SessionStatus) Terminal() bool {
	return s == SessionStatusCompleted || s == SessionStatusAbandoned
}

// QuizSession is one attempt at a fixed set of questions by one user.
type QuizSession struct {
	ID                int64         `json:"id"`
	UserID            int64         `json:"user_id"`
	ContentID         *int64        `json:"content_id"`
	Topic             *string       `json:"topic"`
	QuestionIDs       []int64       `json:"question_ids"`
	TotalQuestions    int           `json:"total_questions"`
	InitialDifficulty Difficulty    `json:"initial_difficulty"`
	Status            SessionStatus `json:"status"`
	Score             *float64      `json:"score"`
	CorrectAnswers    int           `json:"correct_answers"`
	TotalTimeSeconds  *int          `json:"total_time_seconds"`
	StartedAt         time.Time     `json:"started_at"`
	CompletedAt       *time.Time    `json:"completed_at"`
}

// Contains reports whether questionID is part of the session snapshot.
func (s *QuizSession) Contains(questionID int64) bool {
	for _, id := range s.QuestionIDs {
		if id == questionID {
			return true
		}
	}
	return false
}

// QuizWithQuestions is a session plus its question snapshot in order.
type QuizWithQuestions struct {
	QuizSession
	Questions []QuestionForTaker `json:"questions"`
}

// Response is a single answer to one question within one session.
type Response struct {
	ID                  int64      `json:"id"`
	QuizID              int64      `json:"quiz_id"`
	QuestionID          int64      `json:"question_id"`
	UserAnswer          string     `json:"user_answer"`
	IsCorrect           bool       `json:"is_correct"`
	TimeTakenSeconds    *int       `json:"time_taken_seconds,omitempty"`
	DifficultyAtAttempt Difficulty `json:"difficulty_at_attempt"`
	CreatedAt           time.Time  `json:"created_at"`
}

// Completion holds the values written to a session when it is finalized.
type Completion struct {
	Score            float64
	Accuracy         float64
	CorrectAnswers   int
	TotalAnswered    int
	TotalTimeSeconds int
	CompletedAt      time.Time
}

// GenerateQuizRequest is the payload for creating a quiz session.
type GenerateQuizRequest struct {
	ContentID     int64          `json:"content_id" binding:"required,min=1"`
	NumQuestions  int            `json:"num_questions" binding:"omitempty,min=5,max=50"`
	Difficulty    Difficulty     `json:"difficulty" binding:"omitempty,difficulty"`
	QuestionTypes []QuestionType `json:"question_types" binding:"omitempty,dive,question_type"`
}

// SubmitAnswerRequest is the payload for answering one question.
type SubmitAnswerRequest struct {
	QuestionID       int64  `json:"question_id" binding:"required,min=1"`
	UserAnswer       string `json:"user_answer" binding:"required,max=500"`
	TimeTakenSeconds *int   `json:"time_taken_seconds" binding:"omitempty,min=0"`
}

// AnswerResult is returned after each submission.
type AnswerResult struct {
	IsCorrect      bool       `json:"is_correct"`
	CorrectAnswer  string     `json:"correct_answer"`
	Explanation    *string    `json:"explanation"`
	NextDifficulty Difficulty `json:"next_difficulty"`
}

// QuizResults is returned when a session is completed.
type QuizResults struct {
	QuizID                int64        `json:"quiz_id"`
	Score                 float64      `json:"score"`
	CorrectAnswers        int          `json:"correct_answers"`
	TotalQuestions        int          `json:"total_questions"`
	TotalTimeSeconds      int          `json:"total_time_seconds"`
	Accuracy              float64      `json:"accuracy"`
	DifficultyProgression []Difficulty `json:"difficulty_progression"`
}
