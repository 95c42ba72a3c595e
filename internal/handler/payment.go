package handler

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/peakform/trainer-crm/internal/integration"
	"github.com/peakform/trainer-crm/internal/model"
	"github.com/peakform/trainer-crm/internal/repository"
)

// PaymentHandler raises Stripe PaymentIntents for clients and records
// webhook outcomes.
type PaymentHandler struct {
	Payments *repository.PaymentRepo
	Clients  *repository.ClientRepo
	Stripe   *integration.StripeClient
	Log      *zap.Logger
}

func NewPaymentHandler(p *repository.PaymentRepo, cl *repository.ClientRepo, st *integration.StripeClient, log *zap.Logger) *PaymentHandler {
	return &PaymentHandler{Payments: p, Clients: cl, Stripe: st, Log: log}
}

type intentReq struct {
	ClientID    uint64  `json:"client_id" validate:"required"`
	AmountCents int64   `json:"amount_cents" validate:"required,gt=0"`
	Currency    string  `json:"currency"`
	Description *string `json:"description"`
}

type paymentView struct {
	ID             uint64  `json:"id"`
	ClientID       uint64  `json:"client_id"`
	AmountCents    int64   `json:"amount_cents"`
	Currency       string  `json:"currency"`
	Status         string  `json:"status"`
	StripeIntentID string  `json:"stripe_intent_id"`
	Description    *string `json:"description"`
	CreatedAt      string  `json:"created_at"`
}

func paymentToView(p *model.Payment) paymentView {
	return paymentView{
		ID:             p.ID,
		ClientID:       p.ClientID,
		AmountCents:    p.AmountCents,
		Currency:       p.Currency,
		Status:         p.Status,
		StripeIntentID: p.StripeIntentID,
		Description:    p.Description,
		CreatedAt:      p.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// CreateIntent raises a PaymentIntent for a client and stores the
// pending payment row.
func (h *PaymentHandler) CreateIntent(c echo.Context) error {
	if !h.Stripe.Enabled() {
		return fail(c, http.StatusServiceUnavailable, "payments are not configured")
	}
	var req intentReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}
	if err := c.Validate(&req); err != nil {
		return fail(c, http.StatusBadRequest, "client_id and a positive amount_cents required")
	}
	currency := strings.ToLower(strings.TrimSpace(req.Currency))
	if currency == "" {
		currency = "usd"
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	tid := trainerID(c)
	if _, err := h.Clients.GetByID(ctx, tid, req.ClientID); err != nil {
		return repoErr(c, err)
	}

	description := ""
	if req.Description != nil {
		description = *req.Description
	}
	intent, err := h.Stripe.CreateIntent(req.AmountCents, currency, description, uuid.NewString())
	if err != nil {
		h.Log.Warn("payment intent creation failed", zap.Uint64("client_id", req.ClientID), zap.Error(err))
		return fail(c, http.StatusBadGateway, "payment intent creation failed")
	}

	p := &model.Payment{
		TrainerID:      tid,
		ClientID:       req.ClientID,
		AmountCents:    req.AmountCents,
		Currency:       currency,
		Status:         model.PaymentPending,
		StripeIntentID: intent.ID,
		Description:    req.Description,
	}
	if err := h.Payments.Create(ctx, p); err != nil {
		return repoErr(c, err)
	}

	return ok(c, http.StatusCreated, echo.Map{
		"payment":       paymentToView(p),
		"client_secret": intent.ClientSecret,
	})
}

// List returns the trainer's payments, optionally filtered by
// ?client_id=.
func (h *PaymentHandler) List(c echo.Context) error {
	var clientID uint64
	if s := c.QueryParam("client_id"); s != "" {
		id, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return fail(c, http.StatusBadRequest, "invalid client_id")
		}
		clientID = id
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	payments, err := h.Payments.List(ctx, trainerID(c), clientID)
	if err != nil {
		return repoErr(c, err)
	}
	views := make([]paymentView, 0, len(payments))
	for i := range payments {
		views = append(views, paymentToView(&payments[i]))
	}
	return ok(c, http.StatusOK, echo.Map{"payments": views})
}

// Webhook receives Stripe events.  Only intent outcomes are acted on;
// events for intents this application never raised are acknowledged
// and dropped.
func (h *PaymentHandler) Webhook(c echo.Context) error {
	payload, err := io.ReadAll(io.LimitReader(c.Request().Body, 1<<16))
	if err != nil {
		return fail(c, http.StatusBadRequest, "read error")
	}
	event, err := h.Stripe.ParseWebhook(payload, c.Request().Header.Get("Stripe-Signature"))
	if err != nil {
		return fail(c, http.StatusBadRequest, "signature verification failed")
	}

	var status string
	switch event.Type {
	case "payment_intent.succeeded":
		status = model.PaymentSucceeded
	case "payment_intent.payment_failed":
		status = model.PaymentFailed
	default:
		return ok(c, http.StatusOK, echo.Map{"received": true})
	}

	var intent struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(event.Data.Raw, &intent); err != nil || intent.ID == "" {
		return fail(c, http.StatusBadRequest, "malformed event")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Payments.UpdateStatusByIntent(ctx, intent.ID, status); err != nil {
		if err == repository.ErrNotFound {
			h.Log.Info("webhook for unknown intent", zap.String("intent_id", intent.ID))
			return ok(c, http.StatusOK, echo.Map{"received": true})
		}
		return repoErr(c, err)
	}
	h.Log.Info("payment status updated", zap.String("intent_id", intent.ID), zap.String("status", status))
	return ok(c, http.StatusOK, echo.Map{"received": true})
}
