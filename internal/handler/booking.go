package handler

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/peakform/trainer-crm/internal/model"
	"github.com/peakform/trainer-crm/internal/queue"
	"github.com/peakform/trainer-crm/internal/repository"
	"github.com/peakform/trainer-crm/internal/schedule"
	"github.com/peakform/trainer-crm/internal/service"
)

// BookingHandler serves the trainer-facing booking endpoints: listing
// requests, entering them manually and driving the status machine.
type BookingHandler struct {
	Bookings     *repository.BookingRepo
	Sessions     *repository.SessionRepo
	Clients      *repository.ClientRepo
	Availability *repository.AvailabilityRepo
	Settings     *repository.SettingsRepo
	Publisher    *service.Publisher
	Log          *zap.Logger
}

func NewBookingHandler(b *repository.BookingRepo, s *repository.SessionRepo, cl *repository.ClientRepo,
	a *repository.AvailabilityRepo, st *repository.SettingsRepo, pub *service.Publisher, log *zap.Logger) *BookingHandler {
	return &BookingHandler{Bookings: b, Sessions: s, Clients: cl, Availability: a, Settings: st, Publisher: pub, Log: log}
}

type bookingCreateReq struct {
	ClientID        *uint64 `json:"client_id"`
	GuestName       *string `json:"guest_name"`
	GuestEmail      *string `json:"guest_email"`
	GuestPhone      *string `json:"guest_phone"`
	RequestedDate   string  `json:"requested_date" validate:"required"`
	RequestedTime   string  `json:"requested_time" validate:"required"`
	DurationMinutes int     `json:"duration_minutes"`
	SessionType     *string `json:"session_type"`
	ClientNotes     *string `json:"client_notes"`
}

type bookingStatusReq struct {
	Status        string  `json:"status" validate:"required"`
	DeclineReason *string `json:"decline_reason"`
}

type bookingView struct {
	ID              uint64  `json:"id"`
	Reference       string  `json:"reference"`
	ClientID        *uint64 `json:"client_id"`
	SlotID          *uint64 `json:"slot_id"`
	GuestName       *string `json:"guest_name"`
	GuestEmail      *string `json:"guest_email"`
	GuestPhone      *string `json:"guest_phone"`
	RequestedDate   string  `json:"requested_date"`
	RequestedTime   string  `json:"requested_time"`
	DurationMinutes int     `json:"duration_minutes"`
	SessionType     *string `json:"session_type"`
	Status          string  `json:"status"`
	ClientNotes     *string `json:"client_notes"`
	DeclineReason   *string `json:"decline_reason"`
	SessionID       *uint64 `json:"session_id"`
	RequestedAt     string  `json:"requested_at"`
	ConfirmedAt     *string `json:"confirmed_at"`
	CancelledAt     *string `json:"cancelled_at"`
}

func bookingToView(b *model.Booking) bookingView {
	return bookingView{
		ID:              b.ID,
		Reference:       b.Reference,
		ClientID:        b.ClientID,
		SlotID:          b.SlotID,
		GuestName:       b.GuestName,
		GuestEmail:      b.GuestEmail,
		GuestPhone:      b.GuestPhone,
		RequestedDate:   b.RequestedDate.Format("2006-01-02"),
		RequestedTime:   b.RequestedTime,
		DurationMinutes: b.DurationMinutes,
		SessionType:     b.SessionType,
		Status:          b.Status,
		ClientNotes:     b.ClientNotes,
		DeclineReason:   b.DeclineReason,
		SessionID:       b.SessionID,
		RequestedAt:     b.RequestedAt.UTC().Format(time.RFC3339),
		ConfirmedAt:     timeStr(b.ConfirmedAt),
		CancelledAt:     timeStr(b.CancelledAt),
	}
}

// List returns the trainer's booking requests with an optional
// ?status= filter.
func (h *BookingHandler) List(c echo.Context) error {
	page, perPage, limit, offset := pagination(c)
	f := repository.BookingFilter{Limit: limit, Offset: offset}
	if s := c.QueryParam("status"); s != "" {
		if s != model.BookingPending && !model.RequestedBookingStatus(s) {
			return fail(c, http.StatusBadRequest, "unknown status")
		}
		f.Status = s
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	bookings, total, err := h.Bookings.List(ctx, trainerID(c), f)
	if err != nil {
		return repoErr(c, err)
	}
	views := make([]bookingView, 0, len(bookings))
	for i := range bookings {
		views = append(views, bookingToView(&bookings[i]))
	}
	return ok(c, http.StatusOK, echo.Map{
		"bookings":   views,
		"pagination": pageMeta{Page: page, PerPage: perPage, Total: total},
	})
}

// Create enters a booking request on behalf of a client or guest.
func (h *BookingHandler) Create(c echo.Context) error {
	var req bookingCreateReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}
	if err := c.Validate(&req); err != nil {
		return fail(c, http.StatusBadRequest, "requested_date and requested_time required")
	}

	tid := trainerID(c)
	ctx, cancel := reqCtx(c)
	defer cancel()

	b, msg, err := h.buildBooking(ctx, tid, &req)
	if err != nil {
		return repoErr(c, err)
	}
	if msg != "" {
		return fail(c, http.StatusBadRequest, msg)
	}

	if err := h.Bookings.Create(ctx, b); err != nil {
		return repoErr(c, err)
	}
	return ok(c, http.StatusCreated, bookingToView(b))
}

// buildBooking validates a booking request and assembles the model,
// matching it to a covering template slot.  A non-empty msg reports a
// validation failure.
func (h *BookingHandler) buildBooking(ctx context.Context, tid uint64, req *bookingCreateReq) (*model.Booking, string, error) {
	date, err := parseDate(req.RequestedDate)
	if err != nil {
		return nil, "requested_date must be YYYY-MM-DD", nil
	}
	if _, err := schedule.ParseClock(req.RequestedTime); err != nil {
		return nil, "requested_time must be HH:MM", nil
	}
	if req.ClientID == nil && (req.GuestName == nil || req.GuestEmail == nil) {
		return nil, "client_id or guest_name+guest_email required", nil
	}
	if req.SessionType != nil && !model.ValidSessionType(*req.SessionType) {
		return nil, "unknown session_type", nil
	}
	if req.ClientID != nil {
		if _, err := h.Clients.GetByID(ctx, tid, *req.ClientID); err != nil {
			return nil, "", err
		}
	}
	if req.DurationMinutes <= 0 {
		settings, err := h.Settings.GetOrCreate(ctx, tid)
		if err != nil {
			return nil, "", err
		}
		req.DurationMinutes = settings.DefaultDurationMinutes
	}

	b := &model.Booking{
		Reference:       uuid.NewString(),
		TrainerID:       tid,
		ClientID:        req.ClientID,
		GuestName:       req.GuestName,
		GuestEmail:      req.GuestEmail,
		GuestPhone:      req.GuestPhone,
		RequestedDate:   date,
		RequestedTime:   schedule.NormalizeClock(req.RequestedTime),
		DurationMinutes: req.DurationMinutes,
		SessionType:     req.SessionType,
		Status:          model.BookingPending,
		ClientNotes:     req.ClientNotes,
	}

	// Record which template slot the request falls into so per-slot
	// capacity can be tracked.  Trainer-entered bookings outside any
	// slot stay unmatched.
	slots, err := h.Availability.ListSlots(ctx, tid, true)
	if err != nil {
		return nil, "", err
	}
	if slot := schedule.MatchSlot(slots, date, b.RequestedTime); slot != nil {
		b.SlotID = &slot.ID
	}
	return b, "", nil
}

// UpdateStatus drives the booking state machine.  Confirming creates
// the linked session in the same transaction, conflict-checked; on a
// calendar clash the whole transition rolls back and the booking stays
// pending.
func (h *BookingHandler) UpdateStatus(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "invalid id")
	}
	var req bookingStatusReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}
	if !model.RequestedBookingStatus(req.Status) {
		return fail(c, http.StatusBadRequest, "status must be confirmed, declined or cancelled")
	}

	tid := trainerID(c)
	ctx, cancel := reqCtx(c)
	defer cancel()

	tx, err := h.Bookings.DB().BeginTx(ctx, nil)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "begin tx failed")
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	b, err := h.Bookings.GetByIDTx(ctx, tx, tid, id)
	if err != nil {
		return repoErr(c, err)
	}
	if !model.ValidBookingTransition(b.Status, req.Status) {
		return fail(c, http.StatusConflict, "cannot move booking from "+b.Status+" to "+req.Status)
	}

	now := time.Now().UTC()
	switch req.Status {
	case model.BookingConfirmed:
		session, err := h.confirmIntoSession(ctx, tx, tid, b)
		if err != nil {
			return repoErr(c, err)
		}
		b.SessionID = &session.ID
		b.ConfirmedAt = &now
	case model.BookingDeclined:
		b.DeclineReason = req.DeclineReason
	case model.BookingCancelled:
		// A confirmed booking owns a calendar session; free its time in
		// the same transaction.  A session already completed (or gone)
		// keeps its status.
		if b.SessionID != nil {
			if err := h.Sessions.CancelTx(ctx, tx, tid, *b.SessionID); err != nil && err != repository.ErrNotFound {
				return repoErr(c, err)
			}
		}
		b.CancelledAt = &now
	}
	b.Status = req.Status

	if err := h.Bookings.UpdateStatusTx(ctx, tx, b); err != nil {
		return repoErr(c, err)
	}
	if err := tx.Commit(); err != nil {
		return fail(c, http.StatusInternalServerError, "commit failed")
	}
	committed = true

	h.publishStatusEvent(c, b)
	return ok(c, http.StatusOK, bookingToView(b))
}

// confirmIntoSession creates the calendar session backing a confirmed
// booking inside the caller's transaction.
func (h *BookingHandler) confirmIntoSession(ctx context.Context, tx *sql.Tx, tid uint64, b *model.Booking) (*model.Session, error) {
	minutes, err := schedule.ParseClock(b.RequestedTime)
	if err != nil {
		return nil, err
	}
	d := b.RequestedDate
	start := time.Date(d.Year(), d.Month(), d.Day(), minutes/60, minutes%60, 0, 0, time.UTC)
	end := start.Add(time.Duration(b.DurationMinutes) * time.Minute)

	title := "Training session"
	var clientID uint64
	if b.ClientID != nil {
		client, err := h.Clients.GetByID(ctx, tid, *b.ClientID)
		if err != nil {
			return nil, err
		}
		clientID = client.ID
		title = "Training with " + client.FullName()
	} else if b.GuestName != nil {
		title = "Training with " + *b.GuestName
	}

	sessionType := model.SessionTypePersonal
	if b.SessionType != nil {
		sessionType = *b.SessionType
	}

	if err := h.Sessions.LockTrainerTx(ctx, tx, tid); err != nil {
		return nil, err
	}
	conflict, err := h.Sessions.FindConflictTx(ctx, tx, tid, start, end, 0)
	if err != nil {
		return nil, err
	}
	if conflict != nil {
		return nil, conflict
	}

	s := &model.Session{
		TrainerID:      tid,
		ClientID:       clientID,
		Title:          title,
		SessionType:    sessionType,
		ScheduledStart: start,
		ScheduledEnd:   end,
		Status:         model.SessionScheduled,
		Notes:          b.ClientNotes,
	}
	if err := h.Sessions.CreateTx(ctx, tx, s); err != nil {
		return nil, err
	}
	return s, nil
}

// publishStatusEvent notifies the booking's contact about the
// transition, best-effort.
func (h *BookingHandler) publishStatusEvent(c echo.Context, b *model.Booking) {
	kind := ""
	switch b.Status {
	case model.BookingConfirmed:
		kind = queue.KindBookingConfirmed
	case model.BookingDeclined:
		kind = queue.KindBookingDeclined
	case model.BookingCancelled:
		kind = queue.KindBookingCancelled
	default:
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	ev := queue.NotificationEvent{
		Kind:             kind,
		TrainerID:        b.TrainerID,
		BookingReference: b.Reference,
		RequestedDate:    b.RequestedDate.Format("2006-01-02"),
		RequestedTime:    b.RequestedTime,
		OccurredAt:       time.Now().UTC().Format(time.RFC3339),
	}
	if b.DeclineReason != nil {
		ev.DeclineReason = *b.DeclineReason
	}
	if b.GuestEmail != nil {
		ev.RecipientEmail = *b.GuestEmail
		if b.GuestName != nil {
			ev.RecipientName = *b.GuestName
		}
	} else if b.ClientID != nil {
		client, err := h.Clients.GetByID(ctx, b.TrainerID, *b.ClientID)
		if err == nil {
			ev.RecipientEmail = client.Email
			ev.RecipientName = client.FullName()
		}
	}
	if ev.RecipientEmail == "" {
		return
	}
	if err := h.Publisher.Publish(ctx, ev); err != nil {
		h.Log.Warn("booking notification publish failed", zap.String("kind", kind), zap.Error(err))
	}
}
