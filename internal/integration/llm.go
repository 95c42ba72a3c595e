package integration

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/peakform/trainer-crm/internal/model"
)

// ProgramPlan is the structured plan the LLM is asked to produce.
// It maps directly onto a Program row plus its Exercises.
type ProgramPlan struct {
	Name            string         `json:"name"`
	Description     string         `json:"description"`
	DurationWeeks   int            `json:"duration_weeks"`
	DifficultyLevel string         `json:"difficulty_level"`
	Exercises       []PlanExercise `json:"exercises"`
}

// PlanExercise is one exercise inside a generated plan.
type PlanExercise struct {
	Name            string `json:"name"`
	Description     string `json:"description"`
	ExerciseType    string `json:"exercise_type"`
	MuscleGroup     string `json:"muscle_group"`
	Equipment       string `json:"equipment"`
	Sets            int    `json:"sets"`
	Reps            string `json:"reps"`
	DurationMinutes int    `json:"duration_minutes"`
	RestSeconds     int    `json:"rest_seconds"`
	Notes           string `json:"notes"`
}

// ProgramGenerator asks an LLM to draft a workout program for a
// client.
type ProgramGenerator struct {
	client *openai.Client
	model  string
}

// NewProgramGenerator returns a ProgramGenerator.  An empty API key
// leaves it disabled.
func NewProgramGenerator(apiKey, model string) *ProgramGenerator {
	if apiKey == "" {
		return &ProgramGenerator{model: model}
	}
	return &ProgramGenerator{client: openai.NewClient(apiKey), model: model}
}

// Enabled reports whether program generation is available.
func (g *ProgramGenerator) Enabled() bool { return g.client != nil }

// Model returns the configured model name, recorded on generated
// programs.
func (g *ProgramGenerator) Model() string { return g.model }

const programSystemPrompt = `You are an experienced personal trainer. Design a workout program for the client described by the user. Respond with a single JSON object with keys: name, description, duration_weeks (int), difficulty_level (beginner/intermediate/advanced), exercises (array of objects with keys name, description, exercise_type, muscle_group, equipment, sets (int), reps (string, e.g. "8-12"), duration_minutes (int), rest_seconds (int), notes). No text outside the JSON.`

// Generate builds a prompt from the client's profile and the requested
// goal, calls the model and parses the JSON reply.  The raw reply is
// returned alongside the parsed plan so callers can persist it.
func (g *ProgramGenerator) Generate(ctx context.Context, client *model.Client, goal string, durationWeeks int) (*ProgramPlan, string, error) {
	if !g.Enabled() {
		return nil, "", ErrDisabled
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Client: %s.\n", client.FullName())
	if client.Gender != nil {
		fmt.Fprintf(&sb, "Gender: %s.\n", *client.Gender)
	}
	if client.FitnessLevel != nil {
		fmt.Fprintf(&sb, "Fitness level: %s.\n", *client.FitnessLevel)
	}
	if client.HeightCm != nil && client.WeightKg != nil {
		fmt.Fprintf(&sb, "Height: %.0f cm, weight: %.1f kg.\n", *client.HeightCm, *client.WeightKg)
	}
	if client.MedicalConditions != nil && *client.MedicalConditions != "" {
		fmt.Fprintf(&sb, "Medical conditions to respect: %s.\n", *client.MedicalConditions)
	}
	fmt.Fprintf(&sb, "Goal: %s.\n", goal)
	if durationWeeks > 0 {
		fmt.Fprintf(&sb, "Program length: %d weeks.\n", durationWeeks)
	}

	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: programSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: sb.String()},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return nil, "", err
	}
	if len(resp.Choices) == 0 {
		return nil, "", fmt.Errorf("llm: empty completion")
	}

	raw := resp.Choices[0].Message.Content
	var plan ProgramPlan
	if err := json.Unmarshal([]byte(raw), &plan); err != nil {
		return nil, "", fmt.Errorf("llm: parse reply: %w", err)
	}
	if plan.Name == "" || len(plan.Exercises) == 0 {
		return nil, "", fmt.Errorf("llm: incomplete plan")
	}
	return &plan, raw, nil
}
