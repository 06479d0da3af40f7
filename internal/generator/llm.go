package generator

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/samber/lo"
	"github.com/smartquizzer/quizzer-backend/internal/model"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

const (
	systemPrompt = "You are an expert educational content creator. Generate high-quality quiz questions that test understanding, not just memorization."
	maxTokens    = 3000
)

// LLMGenerator asks a chat model for questions in JSON mode.
type LLMGenerator struct {
	llm         llms.Model
	temperature float64
	log         zerolog.Logger
}

// NewOpenAICompatible builds a generator on any OpenAI-compatible endpoint
// (Groq, OpenAI, local gateways).
func NewOpenAICompatible(baseURL, apiKey, modelName string, temperature float64, log zerolog.Logger) (*LLMGenerator, error) {
	llm, err := openai.New(
		openai.WithBaseURL(baseURL),
		openai.WithToken(apiKey),
		openai.WithModel(modelName),
	)
	if err != nil {
		return nil, fmt.Errorf("create llm client: %w", err)
	}
	return NewLLMGenerator(llm, temperature, log), nil
}

// NewLLMGenerator wraps an existing model.
func NewLLMGenerator(llm llms.Model, temperature float64, log zerolog.Logger) *LLMGenerator {
	return &LLMGenerator{
		llm:         llm,
		temperature: temperature,
		log:         log.With().Str("component", "question_generator").Logger(),
	}
}

// Generate returns the raw candidate questions produced by the model.
func (g *LLMGenerator) Generate(ctx context.Context, content string, count int, difficulty model.Difficulty, types []model.QuestionType) ([]model.CandidateQuestion, error) {
	messages := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, systemPrompt),
		llms.TextParts(llms.ChatMessageTypeHuman, buildPrompt(content, count, difficulty, types)),
	}

	resp, err := g.llm.GenerateContent(ctx, messages,
		llms.WithTemperature(g.temperature),
		llms.WithMaxTokens(maxTokens),
		llms.WithJSONMode(),
	)
	if err != nil {
		return nil, fmt.Errorf("generate content: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("generate content: empty response")
	}

	candidates, err := parseCandidates(resp.Choices[0].Content)
	if err != nil {
		return nil, err
	}

	g.log.Debug().
		Int("requested", count).
		Int("returned", len(candidates)).
		Str("difficulty", difficulty.String()).
		Msg("Questions generated")

	return candidates, nil
}

func buildPrompt(content string, count int, difficulty model.Difficulty, types []model.QuestionType) string {
	typeNames := strings.Join(lo.Map(types, func(t model.QuestionType, _ int) string { return string(t) }), ", ")

	var b strings.Builder
	fmt.Fprintf(&b, "Generate %d educational quiz questions from the following content.\n\n", count)
	fmt.Fprintf(&b, "CONTENT:\n%s\n\n", content)
	b.WriteString("REQUIREMENTS:\n")
	fmt.Fprintf(&b, "- Difficulty level: %s (easy/medium/hard)\n", difficulty)
	fmt.Fprintf(&b, "- Question types: %s\n", typeNames)
	b.WriteString("- For mcq: provide exactly 4 options with only 1 correct answer\n")
	b.WriteString("- For true_false: provide clear true or false statements\n")
	b.WriteString("- For short_answer: the correct answer is a short phrase\n")
	b.WriteString("- Include a brief explanation and a topic for each question\n\n")
	b.WriteString("OUTPUT FORMAT (JSON):\n")
	fmt.Fprintf(&b, `{"questions": [{"question": "...", "type": "mcq", "options": ["A", "B", "C", "D"], "correct_answer": "B", "explanation": "...", "difficulty": "%s", "topic": "..."}]}`, difficulty)
	return b.String()
}

// parseCandidates accepts the model output, tolerating a surrounding code fence.
func parseCandidates(raw string) ([]model.CandidateQuestion, error) {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.TrimPrefix(raw, "```")
	raw = strings.TrimSuffix(raw, "```")

	var payload struct {
		Questions []model.CandidateQuestion `json:"questions"`
	}
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &payload); err != nil {
		return nil, fmt.Errorf("decode questions: %w", err)
	}
	return payload.Questions, nil
}
