package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/peakform/trainer-crm/internal/queue"
	"github.com/peakform/trainer-crm/internal/repository"
	"github.com/peakform/trainer-crm/internal/service"
	"github.com/peakform/trainer-crm/internal/utils"
)

// MessagingHandler queues direct email and SMS messages to clients.
// Delivery happens asynchronously in the queue consumer.
type MessagingHandler struct {
	Clients   *repository.ClientRepo
	Publisher *service.Publisher
	Log       *zap.Logger
}

func NewMessagingHandler(cl *repository.ClientRepo, pub *service.Publisher, log *zap.Logger) *MessagingHandler {
	return &MessagingHandler{Clients: cl, Publisher: pub, Log: log}
}

type emailReq struct {
	ClientID uint64 `json:"client_id" validate:"required"`
	Subject  string `json:"subject" validate:"required"`
	Body     string `json:"body" validate:"required"`
}

type smsReq struct {
	ClientID uint64 `json:"client_id" validate:"required"`
	Body     string `json:"body" validate:"required,max=1600"`
}

// Email queues an email to a client.
func (h *MessagingHandler) Email(c echo.Context) error {
	var req emailReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}
	if err := c.Validate(&req); err != nil {
		return fail(c, http.StatusBadRequest, "client_id, subject and body required")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	client, err := h.Clients.GetByID(ctx, trainerID(c), req.ClientID)
	if err != nil {
		return repoErr(c, err)
	}

	ev := queue.NotificationEvent{
		Kind:           queue.KindDirectEmail,
		TrainerID:      trainerID(c),
		RecipientEmail: client.Email,
		RecipientName:  client.FullName(),
		Subject:        strings.TrimSpace(req.Subject),
		Body:           req.Body,
		OccurredAt:     time.Now().UTC().Format(time.RFC3339),
	}
	if err := h.Publisher.Publish(ctx, ev); err != nil {
		h.Log.Warn("email publish failed", zap.Uint64("client_id", client.ID), zap.Error(err))
		return fail(c, http.StatusBadGateway, "message queue unavailable")
	}
	return ok(c, http.StatusAccepted, echo.Map{"queued": true})
}

// SMS queues a text message to a client.  The response reports the
// segment count so the UI can show billing impact.
func (h *MessagingHandler) SMS(c echo.Context) error {
	var req smsReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}
	if err := c.Validate(&req); err != nil {
		return fail(c, http.StatusBadRequest, "client_id and body (max 1600 chars) required")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	client, err := h.Clients.GetByID(ctx, trainerID(c), req.ClientID)
	if err != nil {
		return repoErr(c, err)
	}
	if client.Phone == nil || *client.Phone == "" {
		return fail(c, http.StatusBadRequest, "client has no phone number")
	}

	ev := queue.NotificationEvent{
		Kind:           queue.KindDirectSMS,
		TrainerID:      trainerID(c),
		RecipientPhone: *client.Phone,
		RecipientName:  client.FullName(),
		Body:           req.Body,
		OccurredAt:     time.Now().UTC().Format(time.RFC3339),
	}
	if err := h.Publisher.Publish(ctx, ev); err != nil {
		h.Log.Warn("sms publish failed", zap.Uint64("client_id", client.ID), zap.Error(err))
		return fail(c, http.StatusBadGateway, "message queue unavailable")
	}
	return ok(c, http.StatusAccepted, echo.Map{
		"queued":   true,
		"segments": utils.SMSSegments(req.Body),
	})
}
