package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/peakform/trainer-crm/internal/integration"
)

// ChatHandler serves the trainer-facing assistant.  When the LLM is
// not configured it falls back to canned guidance instead of failing.
type ChatHandler struct {
	Assistant *integration.Assistant
	Log       *zap.Logger
}

func NewChatHandler(a *integration.Assistant, log *zap.Logger) *ChatHandler {
	return &ChatHandler{Assistant: a, Log: log}
}

type chatReq struct {
	Message string `json:"message" validate:"required"`
	History []struct {
		Sender string `json:"sender"`
		Text   string `json:"text"`
	} `json:"history"`
}

// Ask answers a trainer question, carrying recent history for context.
func (h *ChatHandler) Ask(c echo.Context) error {
	var req chatReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}
	if err := c.Validate(&req); err != nil {
		return fail(c, http.StatusBadRequest, "message required")
	}

	if !h.Assistant.Enabled() {
		return ok(c, http.StatusOK, echo.Map{"response": fallbackReply(req.Message)})
	}

	history := make([]integration.ChatTurn, 0, len(req.History))
	for _, m := range req.History {
		history = append(history, integration.ChatTurn{FromUser: m.Sender == "user", Text: m.Text})
	}

	ctx, cancel := longCtx(c)
	defer cancel()

	reply, err := h.Assistant.Reply(ctx, trainerID(c), req.Message, history)
	if err != nil {
		h.Log.Warn("assistant reply failed", zap.Error(err))
		return ok(c, http.StatusOK, echo.Map{"response": fallbackReply(req.Message)})
	}
	return ok(c, http.StatusOK, echo.Map{"response": reply})
}

// Suggestions returns starter questions for the page the trainer is
// on (?page=).
func (h *ChatHandler) Suggestions(c echo.Context) error {
	page := c.QueryParam("page")
	s, found := chatSuggestions[page]
	if !found {
		s = chatSuggestions["dashboard"]
	}
	return ok(c, http.StatusOK, echo.Map{"suggestions": s})
}

var chatSuggestions = map[string][]string{
	"dashboard": {
		"What should I focus on this week?",
		"Give me tips for client retention",
		"How can I improve my training business?",
	},
	"clients": {
		"Best practices for onboarding new clients",
		"How to track client progress effectively",
		"Client communication tips",
	},
	"programs": {
		"Create a beginner strength program",
		"Design a fat loss workout",
		"What's a good program split?",
	},
	"sessions": {
		"How to structure a 1-hour session",
		"Tips for group training sessions",
		"Session planning best practices",
	},
}

// fallbackReply covers the common questions when no model is
// configured.
func fallbackReply(message string) string {
	m := strings.ToLower(message)
	switch {
	case containsAny(m, "workout", "program", "exercise"):
		return "To create a workout program, open Programs and add one, or use the generator to draft a plan from the client's profile and goal."
	case containsAny(m, "client", "add client"):
		return "To add a new client, open Clients and create a profile. You can track their progress, assign programs and schedule sessions from there."
	case containsAny(m, "session", "schedule", "booking"):
		return "To schedule a training session, open Sessions and add one; booking requests from your public page appear under Bookings for you to confirm."
	case containsAny(m, "help", "how do", "feature"):
		return "The platform offers client management, session scheduling, online booking, program building, progress tracking, payments and messaging. What would you like to know more about?"
	default:
		return "I'm here to help! I can assist with workout programming, exercise selection, client management and using the platform. What would you like to know?"
	}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
