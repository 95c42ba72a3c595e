package integration

import (
	"context"
	"fmt"
	"strconv"

	openai "github.com/sashabaranov/go-openai"
)

// ChatTurn is one prior message in an assistant conversation.
type ChatTurn struct {
	FromUser bool
	Text     string
}

// Assistant answers trainer questions about programming, clients and
// the platform through a chat model.
type Assistant struct {
	client *openai.Client
	model  string
}

// NewAssistant returns an Assistant.  An empty API key leaves it
// disabled.
func NewAssistant(apiKey, model string) *Assistant {
	if apiKey == "" {
		return &Assistant{model: model}
	}
	return &Assistant{client: openai.NewClient(apiKey), model: model}
}

// Enabled reports whether the assistant is available.
func (a *Assistant) Enabled() bool { return a.client != nil }

const assistantSystemPrompt = `You are a helpful AI fitness assistant for a personal training management platform.

Your role is to help personal trainers with:
- Creating effective workout programs
- Exercise recommendations and form tips
- Nutrition guidance
- Client management best practices
- Training methodologies and techniques

Keep responses concise, practical, and actionable. Use fitness industry terminology appropriately.
Be encouraging and professional. When discussing exercises, mention proper form and safety.

Available platform features: client management, session scheduling and online booking, program builder with AI generation, progress tracking with measurements and photos, payments, email and SMS messaging.

If asked about features not listed above, let the user know it may be coming in future updates.`

// Reply sends the message with up to the last six turns of history for
// context and returns the model's answer.
func (a *Assistant) Reply(ctx context.Context, trainerID uint64, message string, history []ChatTurn) (string, error) {
	if !a.Enabled() {
		return "", ErrDisabled
	}

	messages := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: assistantSystemPrompt},
	}
	if len(history) > 6 {
		history = history[len(history)-6:]
	}
	for _, turn := range history {
		role := openai.ChatMessageRoleAssistant
		if turn.FromUser {
			role = openai.ChatMessageRoleUser
		}
		messages = append(messages, openai.ChatCompletionMessage{Role: role, Content: turn.Text})
	}
	messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: message})

	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       a.model,
		Messages:    messages,
		MaxTokens:   500,
		Temperature: 0.7,
		User:        strconv.FormatUint(trainerID, 10),
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("llm: empty completion")
	}
	return resp.Choices[0].Message.Content, nil
}
