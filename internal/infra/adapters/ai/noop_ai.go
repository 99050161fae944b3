package ai

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"

	"gym-membership/internal/domain/ports/adapter"
)

var _ adapter.AIServiceAdapter = (*NoopAIAdapter)(nil)

// NoopAIAdapter serves local development without provider keys. It answers
// every structured request with a fixed, schema-valid workout plan.
type NoopAIAdapter struct {
	log *zerolog.Logger
}

func NewNoopAIAdapter(logger *zerolog.Logger) *NoopAIAdapter {
	return &NoopAIAdapter{log: logger}
}

type noopExercise struct {
	Name  string `json:"name"`
	Sets  string `json:"sets"`
	Reps  string `json:"reps"`
	Rest  string `json:"rest"`
	Notes string `json:"notes,omitempty"`
}

type noopDay struct {
	Day       string         `json:"day"`
	Focus     string         `json:"focus"`
	Exercises []noopExercise `json:"exercises"`
}

type noopPlan struct {
	Title          string    `json:"title"`
	WeeklySchedule []noopDay `json:"weeklySchedule"`
	Disclaimer     string    `json:"disclaimer"`
}

var noopResponse = noopPlan{
	Title: "Foundations Full-Body Starter",
	WeeklySchedule: []noopDay{
		{Day: "Day 1", Focus: "Full Body", Exercises: []noopExercise{
			{Name: "Bodyweight Squat", Sets: "3", Reps: "10-12", Rest: "60 seconds"},
			{Name: "Push-up", Sets: "3", Reps: "8-10", Rest: "60 seconds", Notes: "Drop to knees if needed."},
		}},
		{Day: "Day 2", Focus: "Conditioning", Exercises: []noopExercise{
			{Name: "Brisk Walk", Sets: "1", Reps: "20 minutes", Rest: "n/a"},
		}},
	},
	Disclaimer: "Consult a healthcare professional before starting any new fitness program.",
}

func (a *NoopAIAdapter) ListModels(ctx context.Context) ([]string, error) {
	return []string{"noop-ai-model"}, nil
}

func (a *NoopAIAdapter) GetModelInfo(model string) (adapter.ModelInfo, error) {
	return adapter.ModelInfo{
		Name:        "noop-ai-model",
		Description: "Noop AI model for local development",
		MaxTokens:   1024,
		Supports:    []string{"json_schema"},
	}, nil
}

// CountTokens approximates four characters per token.
func (a *NoopAIAdapter) CountTokens(ctx context.Context, model string, messages []adapter.Message) (int, error) {
	n := 0
	for _, m := range messages {
		n += (len(m.Content) + 3) / 4
	}
	return n, nil
}

func (a *NoopAIAdapter) GenerateJSON(ctx context.Context, req adapter.StructuredRequest) (string, adapter.Usage, error) {
	u := adapter.Usage{Provider: ProviderNoop, Model: "noop-ai-model"}
	// simulate slight processing time and respect ctx
	select {
	case <-time.After(100 * time.Millisecond):
	case <-ctx.Done():
		return "", u, ctx.Err()
	}
	b, err := json.Marshal(noopResponse)
	if err != nil {
		return "", u, err
	}
	in, _ := a.CountTokens(ctx, req.Model, req.Messages)
	u.PromptTokens, u.CompletionTokens = in, len(b)/4
	u.TotalTokens = u.PromptTokens + u.CompletionTokens
	if a.log != nil {
		a.log.Debug().Str("schema", req.SchemaName).Int("messages", len(req.Messages)).Msg("noop ai structured request")
	}
	return string(b), u, nil
}
