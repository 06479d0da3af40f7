package model

import "time"

// QuestionType enumerates the supported question formats.
type QuestionType string

const (
	QuestionTypeMCQ         QuestionType = "mcq"
	QuestionTypeTrueFalse   QuestionType = "true_false"
	QuestionTypeShortAnswer QuestionType = "short_answer"
)

// Valid reports whether t is a known question type.
func (t QuestionType) Valid() bool {
	switch t {
	case QuestionTypeMCQ, QuestionTypeTrueFalse, QuestionTypeShortAnswer:
		return true
	}
	return false
}

// TrueFalseOptions is the normalized option list of a true/false question.
var TrueFalseOptions = []string{"True", "False"}

// Question is a generated question. It is never mutated after creation.
type Question struct {
	ID            int64        `json:"id"`
	ContentID     int64        `json:"content_id"`
	QuestionText  string       `json:"question_text"`
	QuestionType  QuestionType `json:"question_type"`
	Options       []string     `json:"options,omitempty"`
	CorrectAnswer string       `json:"correct_answer"`
	Explanation   *string      `json:"explanation,omitempty"`
	Difficulty    Difficulty   `json:"difficulty"`
	Topic         *string      `json:"topic,omitempty"`
	CreatedAt     time.Time    `json:"created_at"`
}

// QuestionForTaker is a question without its answer key, sent to quiz takers.
type QuestionForTaker struct {
	ID           int64        `json:"id"`
	QuestionText string       `json:"question_text"`
	QuestionType QuestionType `json:"question_type"`
	Options      []string     `json:"options,omitempty"`
	Difficulty   Difficulty   `json:"difficulty"`
	Topic        *string      `json:"topic,omitempty"`
}

// ForTaker strips the answer key and explanation.
func (q *Question) ForTaker() QuestionForTaker {
	return QuestionForTaker{
		ID:           q.ID,
		QuestionText: q.QuestionText,
		QuestionType: q.QuestionType,
		Options:      q.Options,
		Difficulty:   q.Difficulty,
		Topic:        q.Topic,
	}
}

// CandidateQuestion is a raw question produced by a generator before
// validation. Pointer fields distinguish "missing" from "empty".
type CandidateQuestion struct {
	Question      string   `json:"question"`
	Type          string   `json:"type"`
	Options       []string `json:"options,omitempty"`
	CorrectAnswer string   `json:"correct_answer"`
	Explanation   *string  `json:"explanation,omitempty"`
	Difficulty    *string  `json:"difficulty,omitempty"`
	Topic         *string  `json:"topic,omitempty"`
}
