package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/peakform/trainer-crm/internal/model"
	"github.com/peakform/trainer-crm/internal/repository"
	"github.com/peakform/trainer-crm/internal/schedule"
)

// AvailabilityHandler serves the weekly slot template, the date-range
// exceptions and the day availability resolver.
type AvailabilityHandler struct {
	Availability *repository.AvailabilityRepo
	Bookings     *repository.BookingRepo
}

func NewAvailabilityHandler(a *repository.AvailabilityRepo, b *repository.BookingRepo) *AvailabilityHandler {
	return &AvailabilityHandler{Availability: a, Bookings: b}
}

type slotCreateReq struct {
	DayOfWeek   int     `json:"day_of_week"`
	StartTime   string  `json:"start_time" validate:"required"`
	EndTime     string  `json:"end_time" validate:"required"`
	SessionType *string `json:"session_type"`
	MaxBookings int     `json:"max_bookings"`
}

type slotPatchReq struct {
	DayOfWeek   *int    `json:"day_of_week"`
	StartTime   *string `json:"start_time"`
	EndTime     *string `json:"end_time"`
	SessionType *string `json:"session_type"`
	MaxBookings *int    `json:"max_bookings"`
	IsActive    *bool   `json:"is_active"`
}

type slotView struct {
	ID          uint64  `json:"id"`
	DayOfWeek   int     `json:"day_of_week"`
	DayName     string  `json:"day_name"`
	StartTime   string  `json:"start_time"`
	EndTime     string  `json:"end_time"`
	SessionType *string `json:"session_type"`
	MaxBookings int     `json:"max_bookings"`
	IsActive    bool    `json:"is_active"`
}

func slotToView(s *model.AvailabilitySlot) slotView {
	return slotView{
		ID:          s.ID,
		DayOfWeek:   s.DayOfWeek,
		DayName:     model.DayNames[s.DayOfWeek],
		StartTime:   s.StartTime,
		EndTime:     s.EndTime,
		SessionType: s.SessionType,
		MaxBookings: s.MaxBookings,
		IsActive:    s.IsActive,
	}
}

// validateWindow checks HH:MM syntax and start < end.
func validateWindow(start, end string) (string, bool) {
	s, err := schedule.ParseClock(start)
	if err != nil {
		return "start_time must be HH:MM", false
	}
	e, err := schedule.ParseClock(end)
	if err != nil {
		return "end_time must be HH:MM", false
	}
	if s >= e {
		return "end_time must be after start_time", false
	}
	return "", true
}

// ListSlots returns the weekly template ordered by day and start time.
func (h *AvailabilityHandler) ListSlots(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	slots, err := h.Availability.ListSlots(ctx, trainerID(c), false)
	if err != nil {
		return repoErr(c, err)
	}
	views := make([]slotView, 0, len(slots))
	for i := range slots {
		views = append(views, slotToView(&slots[i]))
	}
	return ok(c, http.StatusOK, echo.Map{"slots": views})
}

// CreateSlot adds a weekly opening.  Overlap between slots is allowed;
// a trainer can keep a personal and a group window over the same
// hours.
func (h *AvailabilityHandler) CreateSlot(c echo.Context) error {
	var req slotCreateReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}
	if req.DayOfWeek < 0 || req.DayOfWeek > 6 {
		return fail(c, http.StatusBadRequest, "day_of_week must be 0 (Monday) to 6 (Sunday)")
	}
	if msg, valid := validateWindow(req.StartTime, req.EndTime); !valid {
		return fail(c, http.StatusBadRequest, msg)
	}
	if req.MaxBookings < 1 {
		req.MaxBookings = 1
	}
	if req.SessionType != nil && !model.ValidSessionType(*req.SessionType) {
		return fail(c, http.StatusBadRequest, "unknown session_type")
	}

	slot := &model.AvailabilitySlot{
		TrainerID:   trainerID(c),
		DayOfWeek:   req.DayOfWeek,
		StartTime:   schedule.NormalizeClock(req.StartTime),
		EndTime:     schedule.NormalizeClock(req.EndTime),
		SessionType: req.SessionType,
		MaxBookings: req.MaxBookings,
		IsActive:    true,
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Availability.CreateSlot(ctx, slot); err != nil {
		return repoErr(c, err)
	}
	return ok(c, http.StatusCreated, slotToView(slot))
}

// PatchSlot merges a typed partial update into the stored slot.
func (h *AvailabilityHandler) PatchSlot(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "invalid id")
	}
	var req slotPatchReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	slot, err := h.Availability.GetSlot(ctx, trainerID(c), id)
	if err != nil {
		return repoErr(c, err)
	}

	if req.DayOfWeek != nil {
		if *req.DayOfWeek < 0 || *req.DayOfWeek > 6 {
			return fail(c, http.StatusBadRequest, "day_of_week must be 0 (Monday) to 6 (Sunday)")
		}
		slot.DayOfWeek = *req.DayOfWeek
	}
	if req.StartTime != nil {
		slot.StartTime = schedule.NormalizeClock(*req.StartTime)
	}
	if req.EndTime != nil {
		slot.EndTime = schedule.NormalizeClock(*req.EndTime)
	}
	if msg, valid := validateWindow(slot.StartTime, slot.EndTime); !valid {
		return fail(c, http.StatusBadRequest, msg)
	}
	if req.SessionType != nil {
		if !model.ValidSessionType(*req.SessionType) {
			return fail(c, http.StatusBadRequest, "unknown session_type")
		}
		slot.SessionType = req.SessionType
	}
	if req.MaxBookings != nil {
		if *req.MaxBookings < 1 {
			return fail(c, http.StatusBadRequest, "max_bookings must be at least 1")
		}
		slot.MaxBookings = *req.MaxBookings
	}
	if req.IsActive != nil {
		slot.IsActive = *req.IsActive
	}

	if err := h.Availability.UpdateSlot(ctx, slot); err != nil {
		return repoErr(c, err)
	}
	return ok(c, http.StatusOK, slotToView(slot))
}

// DeleteSlot removes a weekly opening.
func (h *AvailabilityHandler) DeleteSlot(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "invalid id")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Availability.DeleteSlot(ctx, trainerID(c), id); err != nil {
		return repoErr(c, err)
	}
	return ok(c, http.StatusOK, echo.Map{"deleted": true})
}

type exceptionCreateReq struct {
	StartDate        string  `json:"start_date" validate:"required"`
	EndDate          string  `json:"end_date" validate:"required"`
	ExceptionType    string  `json:"exception_type" validate:"required"`
	SpecialStartTime *string `json:"special_start_time"`
	SpecialEndTime   *string `json:"special_end_time"`
	Reason           *string `json:"reason"`
}

type exceptionView struct {
	ID               uint64  `json:"id"`
	StartDate        string  `json:"start_date"`
	EndDate          string  `json:"end_date"`
	ExceptionType    string  `json:"exception_type"`
	SpecialStartTime *string `json:"special_start_time"`
	SpecialEndTime   *string `json:"special_end_time"`
	Reason           *string `json:"reason"`
}

func exceptionToView(e *model.AvailabilityException) exceptionView {
	return exceptionView{
		ID:               e.ID,
		StartDate:        e.StartDate.Format("2006-01-02"),
		EndDate:          e.EndDate.Format("2006-01-02"),
		ExceptionType:    e.ExceptionType,
		SpecialStartTime: e.SpecialStartTime,
		SpecialEndTime:   e.SpecialEndTime,
		Reason:           e.Reason,
	}
}

// ListExceptions returns the most recent overrides.
func (h *AvailabilityHandler) ListExceptions(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	exceptions, err := h.Availability.ListExceptions(ctx, trainerID(c))
	if err != nil {
		return repoErr(c, err)
	}
	views := make([]exceptionView, 0, len(exceptions))
	for i := range exceptions {
		views = append(views, exceptionToView(&exceptions[i]))
	}
	return ok(c, http.StatusOK, echo.Map{"exceptions": views})
}

// CreateException records a date-range override.
func (h *AvailabilityHandler) CreateException(c echo.Context) error {
	var req exceptionCreateReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}
	start, err := parseDate(req.StartDate)
	if err != nil {
		return fail(c, http.StatusBadRequest, "start_date must be YYYY-MM-DD")
	}
	end, err := parseDate(req.EndDate)
	if err != nil {
		return fail(c, http.StatusBadRequest, "end_date must be YYYY-MM-DD")
	}
	if end.Before(start) {
		return fail(c, http.StatusBadRequest, "end_date must not be before start_date")
	}
	if !model.ValidExceptionType(req.ExceptionType) {
		return fail(c, http.StatusBadRequest, "unknown exception_type")
	}
	if req.ExceptionType == model.ExceptionSpecialHours {
		if req.SpecialStartTime == nil || req.SpecialEndTime == nil {
			return fail(c, http.StatusBadRequest, "special hours need special_start_time and special_end_time")
		}
		if msg, valid := validateWindow(*req.SpecialStartTime, *req.SpecialEndTime); !valid {
			return fail(c, http.StatusBadRequest, msg)
		}
	}

	e := &model.AvailabilityException{
		TrainerID:        trainerID(c),
		StartDate:        start,
		EndDate:          end,
		ExceptionType:    req.ExceptionType,
		SpecialStartTime: req.SpecialStartTime,
		SpecialEndTime:   req.SpecialEndTime,
		Reason:           req.Reason,
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Availability.CreateException(ctx, e); err != nil {
		return repoErr(c, err)
	}
	return ok(c, http.StatusCreated, exceptionToView(e))
}

// DeleteException removes an override.
func (h *AvailabilityHandler) DeleteException(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "invalid id")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Availability.DeleteException(ctx, trainerID(c), id); err != nil {
		return repoErr(c, err)
	}
	return ok(c, http.StatusOK, echo.Map{"deleted": true})
}

// CheckAvailability resolves one date against the template, the
// exceptions and current booking demand.
func (h *AvailabilityHandler) CheckAvailability(c echo.Context) error {
	date, err := parseDate(c.Param("date"))
	if err != nil {
		return fail(c, http.StatusBadRequest, "date must be YYYY-MM-DD")
	}
	tid := trainerID(c)

	ctx, cancel := reqCtx(c)
	defer cancel()

	day, err := resolveDay(ctx, h.Availability, h.Bookings, tid, date)
	if err != nil {
		return repoErr(c, err)
	}
	return ok(c, http.StatusOK, dayToResponse(date, day))
}

// resolveDay loads the template, covering exceptions and booking
// demand for a date and runs the pure resolver.  Shared with the
// public booking endpoints.
func resolveDay(ctx context.Context, avail *repository.AvailabilityRepo, bookings *repository.BookingRepo, trainerID uint64, date time.Time) (schedule.DayAvailability, error) {
	slots, err := avail.ListSlots(ctx, trainerID, true)
	if err != nil {
		return schedule.DayAvailability{}, err
	}
	exceptions, err := avail.ExceptionsCovering(ctx, trainerID, date)
	if err != nil {
		return schedule.DayAvailability{}, err
	}
	demand, err := bookings.DemandForDate(ctx, trainerID, date)
	if err != nil {
		return schedule.DayAvailability{}, err
	}
	return schedule.ResolveDay(slots, exceptions, demand, date), nil
}

type openingView struct {
	SlotID         uint64  `json:"slot_id"`
	StartTime      string  `json:"start_time"`
	EndTime        string  `json:"end_time"`
	SessionType    *string `json:"session_type"`
	SlotsRemaining int     `json:"slots_remaining"`
}

func dayToResponse(date time.Time, day schedule.DayAvailability) echo.Map {
	openings := make([]openingView, 0, len(day.Openings))
	for _, o := range day.Openings {
		openings = append(openings, openingView{
			SlotID:         o.SlotID,
			StartTime:      o.StartTime,
			EndTime:        o.EndTime,
			SessionType:    o.SessionType,
			SlotsRemaining: o.SlotsRemaining,
		})
	}
	resp := echo.Map{
		"date":            date.Format("2006-01-02"),
		"available":       day.Available,
		"available_slots": openings,
	}
	if day.Reason != "" {
		resp["reason"] = day.Reason
	}
	return resp
}
