// Package adaptive holds the pure quiz rules: answer checking, the rolling
// difficulty controller and session scoring.
package adaptive

import (
	"math"
	"strings"

	"github.com/samber/lo"
	"github.com/smartquizzer/quizzer-backend/internal/model"
)

const (
	// HistoryLimit is how many recent responses are loaded for the controller.
	HistoryLimit = 10
	// PerformanceWindow is the number of most recent responses that count.
	PerformanceWindow = 5
	// MinResponses is the minimum history length before any adjustment.
	MinResponses = 2

	IncreaseThreshold = 0.80
	DecreaseThreshold = 0.40
)

// IsCorrect compares an answer against the canonical one, ignoring case and
// surrounding whitespace.
func IsCorrect(answer, canonical string) bool {
	return strings.ToLower(strings.TrimSpace(answer)) == strings.ToLower(strings.TrimSpace(canonical))
}

// NextDifficulty advises the difficulty for upcoming content given the
// correctness history of a session in chronological order.
func NextDifficulty(current model.Difficulty, history []bool) model.Difficulty {
	if len(history) < MinResponses {
		return current
	}

	window := history[max(len(history)-PerformanceWindow, 0):]
	correct := lo.Count(window, true)
	accuracy := float64(correct) / float64(len(window))

	switch {
	case accuracy >= IncreaseThreshold:
		return current.Harder()
	case accuracy <= DecreaseThreshold:
		return current.Easier()
	default:
		return current
	}
}

// Score finalizes a session from its responses in submission order.
// Score equals accuracy; responses are not weighted by difficulty.
func Score(responses []model.Response) model.Completion {
	total := len(responses)
	correct := lo.CountBy(responses, func(r model.Response) bool { return r.IsCorrect })
	totalTime := lo.SumBy(responses, func(r model.Response) int {
		if r.TimeTakenSeconds == nil {
			return 0
		}
		return *r.TimeTakenSeconds
	})

	var accuracy float64
	if total > 0 {
		accuracy = Round2(float64(correct) / float64(total) * 100)
	}

	return model.Completion{
		Score:            accuracy,
		Accuracy:         accuracy,
		CorrectAnswers:   correct,
		TotalAnswered:    total,
		TotalTimeSeconds: totalTime,
	}
}

// Progression lists the difficulty of each answered question in order.
func Progression(responses []model.Response) []model.Difficulty {
	return lo.Map(responses, func(r model.Response, _ int) model.Difficulty {
		return r.DifficultyAtAttempt
	})
}

// Round2 rounds to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
