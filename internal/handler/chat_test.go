package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/peakform/trainer-crm/internal/integration"
)

func newChatHandler() *ChatHandler {
	return NewChatHandler(integration.NewAssistant("", "gpt-4o"), zap.NewNop())
}

func chatContext(method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = NewValidator()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("user_id", testTrainerID)
	return c, rec
}

func TestChatFallsBackWithoutModel(t *testing.T) {
	h := newChatHandler()

	c, rec := chatContext(http.MethodPost, "/", `{"message":"How do I build a workout program?"}`)
	require.NoError(t, h.Ask(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "workout program")
}

func TestChatRequiresMessage(t *testing.T) {
	h := newChatHandler()

	c, rec := chatContext(http.MethodPost, "/", `{}`)
	require.NoError(t, h.Ask(c))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestChatSuggestionsByPage(t *testing.T) {
	h := newChatHandler()

	c, rec := chatContext(http.MethodGet, "/?page=programs", "")
	require.NoError(t, h.Suggestions(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "program split")

	c, rec = chatContext(http.MethodGet, "/?page=unknown", "")
	require.NoError(t, h.Suggestions(c))
	assert.Contains(t, rec.Body.String(), "client retention")
}
