// Package generator turns content text into quiz questions using an LLM and
// filters the raw output into well-formed questions.
package generator

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/samber/lo"
	"github.com/smartquizzer/quizzer-backend/internal/model"
)

// ErrNotConfigured is returned by Disabled.
var ErrNotConfigured = errors.New("question generator not configured")

// DefaultTopic is assigned to questions generated without a topic.
const DefaultTopic = "General"

// Disabled is used when no LLM credentials are configured. Cached question
// sets keep working; cache misses fail.
type Disabled struct{}

func (Disabled) Generate(context.Context, string, int, model.Difficulty, []model.QuestionType) ([]model.CandidateQuestion, error) {
	return nil, ErrNotConfigured
}

// Truncate cuts text to at most maxChars characters.
func Truncate(text string, maxChars int) string {
	if maxChars <= 0 || utf8.RuneCountInString(text) <= maxChars {
		return text
	}
	return string([]rune(text)[:maxChars])
}

// Validate drops malformed candidates and normalizes the rest.
//   - question, type and correct_answer are required
//   - type must be one of allowed
//   - mcq needs exactly 4 options; true_false options become ["True","False"];
//     short_answer carries no options
//   - missing explanation becomes "", topic becomes "General" and difficulty
//     becomes the requested one
func Validate(candidates []model.CandidateQuestion, allowed []model.QuestionType, difficulty model.Difficulty) []model.Question {
	questions := make([]model.Question, 0, len(candidates))

	for _, c := range candidates {
		text := strings.TrimSpace(c.Question)
		answer := strings.TrimSpace(c.CorrectAnswer)
		qType := model.QuestionType(strings.TrimSpace(c.Type))
		if text == "" || answer == "" || qType == "" {
			continue
		}
		if !lo.Contains(allowed, qType) {
			continue
		}

		var options []string
		switch qType {
		case model.QuestionTypeMCQ:
			if len(c.Options) != 4 {
				continue
			}
			options = c.Options
		case model.QuestionTypeTrueFalse:
			options = append([]string(nil), model.TrueFalseOptions...)
		case model.QuestionTypeShortAnswer:
			options = nil
		default:
			continue
		}

		explanation := ""
		if c.Explanation != nil {
			explanation = *c.Explanation
		}

		topic := DefaultTopic
		if c.Topic != nil && strings.TrimSpace(*c.Topic) != "" {
			topic = strings.TrimSpace(*c.Topic)
		}

		level := difficulty
		if c.Difficulty != nil {
			if d, err := model.ParseDifficulty(*c.Difficulty); err == nil {
				level = d
			}
		}

		questions = append(questions, model.Question{
			QuestionText:  text,
			QuestionType:  qType,
			Options:       options,
			CorrectAnswer: answer,
			Explanation:   &explanation,
			Difficulty:    level,
			Topic:         &topic,
		})
	}

	return questions
}
