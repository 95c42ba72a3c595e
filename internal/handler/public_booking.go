package handler

import (
	"context"
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

// PublicBookingHandler serves the unauthenticated booking pages: page
// info, day availability and guest booking creation.  Routes are
// keyed by the trainer's booking page slug.
type PublicBookingHandler struct {
	Users        *repository.UserRepo
	Settings     *repository.SettingsRepo
	Availability *repository.AvailabilityRepo
	Bookings     *repository.BookingRepo
	Publisher    *service.Publisher
	Log          *zap.Logger
}

func NewPublicBookingHandler(u *repository.UserRepo, st *repository.SettingsRepo, a *repository.AvailabilityRepo,
	b *repository.BookingRepo, pub *service.Publisher, log *zap.Logger) *PublicBookingHandler {
	return &PublicBookingHandler{Users: u, Settings: st, Availability: a, Bookings: b, Publisher: pub, Log: log}
}

type publicBookingReq struct {
	GuestName     string  `json:"guest_name" validate:"required"`
	GuestEmail    string  `json:"guest_email" validate:"required,email"`
	GuestPhone    *string `json:"guest_phone"`
	RequestedDate string  `json:"requested_date" validate:"required"`
	RequestedTime string  `json:"requested_time" validate:"required"`
	SessionType   *string `json:"session_type"`
	Notes         *string `json:"notes"`
}

// Page returns the booking page header plus the weekly template, the
// response is cached by the redis middleware.
func (h *PublicBookingHandler) Page(c echo.Context) error {
	slug := c.Param("slug")

	ctx, cancel := reqCtx(c)
	defer cancel()

	trainer, err := h.Users.GetByBookingSlug(ctx, slug)
	if err != nil {
		return repoErr(c, err)
	}
	settings, err := h.Settings.GetOrCreate(ctx, trainer.ID)
	if err != nil {
		return repoErr(c, err)
	}
	if !settings.EnableOnlineBooking {
		return fail(c, http.StatusNotFound, "booking page not found")
	}
	slots, err := h.Availability.ListSlots(ctx, trainer.ID, true)
	if err != nil {
		return repoErr(c, err)
	}

	views := make([]slotView, 0, len(slots))
	for i := range slots {
		views = append(views, slotToView(&slots[i]))
	}
	return ok(c, http.StatusOK, echo.Map{
		"trainer_name":      trainer.FullName,
		"business_name":     trainer.BusinessName,
		"page_title":        settings.BookingPageTitle,
		"page_description":  settings.BookingPageDescription,
		"allow_guests":      settings.AllowGuestBooking,
		"min_advance_hours": settings.MinAdvanceHours,
		"max_advance_days":  settings.MaxAdvanceDays,
		"weekly_slots":      views,
	})
}

// DayAvailability resolves one date for the public page.
func (h *PublicBookingHandler) DayAvailability(c echo.Context) error {
	slug := c.Param("slug")
	date, err := parseDate(c.Param("date"))
	if err != nil {
		return fail(c, http.StatusBadRequest, "date must be YYYY-MM-DD")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	trainer, err := h.Users.GetByBookingSlug(ctx, slug)
	if err != nil {
		return repoErr(c, err)
	}
	settings, err := h.Settings.GetOrCreate(ctx, trainer.ID)
	if err != nil {
		return repoErr(c, err)
	}
	if !settings.EnableOnlineBooking {
		return fail(c, http.StatusNotFound, "booking page not found")
	}
	day, err := resolveDay(ctx, h.Availability, h.Bookings, trainer.ID, date)
	if err != nil {
		return repoErr(c, err)
	}
	return ok(c, http.StatusOK, dayToResponse(date, day))
}

// Create takes a guest booking request.  The booking window, guest
// policy and per-slot capacity from the trainer's settings are all
// enforced here; the route itself sits behind the rate limiter.
func (h *PublicBookingHandler) Create(c echo.Context) error {
	slug := c.Param("slug")
	var req publicBookingReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}
	if err := c.Validate(&req); err != nil {
		return fail(c, http.StatusBadRequest, "guest_name, guest_email, requested_date and requested_time required")
	}
	date, err := parseDate(req.RequestedDate)
	if err != nil {
		return fail(c, http.StatusBadRequest, "requested_date must be YYYY-MM-DD")
	}
	minutes, err := schedule.ParseClock(req.RequestedTime)
	if err != nil {
		return fail(c, http.StatusBadRequest, "requested_time must be HH:MM")
	}
	if req.SessionType != nil && !model.ValidSessionType(*req.SessionType) {
		return fail(c, http.StatusBadRequest, "unknown session_type")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	trainer, err := h.Users.GetByBookingSlug(ctx, slug)
	if err != nil {
		return repoErr(c, err)
	}
	settings, err := h.Settings.GetOrCreate(ctx, trainer.ID)
	if err != nil {
		return repoErr(c, err)
	}
	if !settings.EnableOnlineBooking {
		return fail(c, http.StatusNotFound, "booking page not found")
	}
	if !settings.AllowGuestBooking {
		return fail(c, http.StatusForbidden, "guest booking is disabled")
	}

	// Booking window checks against the requested start instant.
	start := time.Date(date.Year(), date.Month(), date.Day(), minutes/60, minutes%60, 0, 0, time.UTC)
	now := time.Now().UTC()
	if start.Before(now.Add(time.Duration(settings.MinAdvanceHours) * time.Hour)) {
		return fail(c, http.StatusBadRequest, "booking requires more advance notice")
	}
	if start.After(now.Add(time.Duration(settings.MaxAdvanceDays) * 24 * time.Hour)) {
		return fail(c, http.StatusBadRequest, "booking is too far in the future")
	}

	// The request must land inside an open slot with capacity left.
	day, err := resolveDay(ctx, h.Availability, h.Bookings, trainer.ID, date)
	if err != nil {
		return repoErr(c, err)
	}
	if !day.Available {
		msg := "no availability on this date"
		if day.Reason != "" {
			msg = day.Reason
		}
		return fail(c, http.StatusConflict, msg)
	}
	requested := schedule.NormalizeClock(req.RequestedTime)
	var matched *schedule.SlotOpening
	for i := range day.Openings {
		o := &day.Openings[i]
		startMin, _ := schedule.ParseClock(o.StartTime)
		endMin, _ := schedule.ParseClock(o.EndTime)
		if startMin <= minutes && minutes < endMin {
			matched = o
			break
		}
	}
	if matched == nil {
		return fail(c, http.StatusConflict, "requested time is not inside an open slot")
	}

	b := &model.Booking{
		Reference:       uuid.NewString(),
		TrainerID:       trainer.ID,
		SlotID:          &matched.SlotID,
		GuestName:       &req.GuestName,
		GuestEmail:      &req.GuestEmail,
		GuestPhone:      req.GuestPhone,
		RequestedDate:   date,
		RequestedTime:   requested,
		DurationMinutes: settings.DefaultDurationMinutes,
		SessionType:     req.SessionType,
		Status:          model.BookingPending,
		ClientNotes:     req.Notes,
	}
	if b.SessionType == nil && matched.SessionType != nil {
		b.SessionType = matched.SessionType
	}

	if err := h.Bookings.Create(ctx, b); err != nil {
		return repoErr(c, err)
	}

	if settings.NotifyNewBooking {
		h.publishRequested(trainer, b)
	}

	return ok(c, http.StatusCreated, echo.Map{
		"reference":      b.Reference,
		"status":         b.Status,
		"requested_date": b.RequestedDate.Format("2006-01-02"),
		"requested_time": b.RequestedTime,
	})
}

func (h *PublicBookingHandler) publishRequested(trainer *model.User, b *model.Booking) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	ev := queue.NotificationEvent{
		Kind:             queue.KindBookingRequested,
		TrainerID:        trainer.ID,
		TrainerEmail:     trainer.Email,
		TrainerName:      trainer.FullName,
		BookingReference: b.Reference,
		RequestedDate:    b.RequestedDate.Format("2006-01-02"),
		RequestedTime:    b.RequestedTime,
		OccurredAt:       time.Now().UTC().Format(time.RFC3339),
	}
	if b.GuestName != nil {
		ev.RecipientName = *b.GuestName
	}
	if err := h.Publisher.Publish(ctx, ev); err != nil {
		h.Log.Warn("booking request notification publish failed", zap.Error(err))
	}
}
