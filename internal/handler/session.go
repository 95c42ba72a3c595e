package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/peakform/trainer-crm/internal/integration"
	"github.com/peakform/trainer-crm/internal/model"
	"github.com/peakform/trainer-crm/internal/repository"
	"github.com/peakform/trainer-crm/internal/schedule"
)

// SessionHandler serves the session calendar: CRUD, conflict-checked
// scheduling, the free-gap finder and aggregate stats.
type SessionHandler struct {
	Sessions *repository.SessionRepo
	Clients  *repository.ClientRepo
	Zoom     *integration.ZoomClient
	Log      *zap.Logger
}

func NewSessionHandler(s *repository.SessionRepo, cl *repository.ClientRepo, zoom *integration.ZoomClient, log *zap.Logger) *SessionHandler {
	return &SessionHandler{Sessions: s, Clients: cl, Zoom: zoom, Log: log}
}

type sessionCreateReq struct {
	ClientID       uint64  `json:"client_id" validate:"required"`
	Title          string  `json:"title" validate:"required"`
	Description    *string `json:"description"`
	SessionType    string  `json:"session_type" validate:"required"`
	Location       *string `json:"location"`
	ScheduledStart string  `json:"scheduled_start" validate:"required"` // RFC3339
	ScheduledEnd   string  `json:"scheduled_end" validate:"required"`
	Notes          *string `json:"notes"`
}

// sessionPatchReq carries optional fields; nil leaves the stored value
// unchanged.
type sessionPatchReq struct {
	ClientID       *uint64 `json:"client_id"`
	Title          *string `json:"title"`
	Description    *string `json:"description"`
	SessionType    *string `json:"session_type"`
	Location       *string `json:"location"`
	ScheduledStart *string `json:"scheduled_start"`
	ScheduledEnd   *string `json:"scheduled_end"`
	Status         *string `json:"status"`
	Notes          *string `json:"notes"`
	TrainerNotes   *string `json:"trainer_notes"`
	ClientFeedback *string `json:"client_feedback"`
}

type completeReq struct {
	TrainerNotes *string `json:"trainer_notes"`
}

type sessionView struct {
	ID             uint64  `json:"id"`
	ClientID       uint64  `json:"client_id"`
	Title          string  `json:"title"`
	Description    *string `json:"description"`
	SessionType    string  `json:"session_type"`
	Location       *string `json:"location"`
	MeetingURL     *string `json:"meeting_url,omitempty"`
	ScheduledStart string  `json:"scheduled_start"`
	ScheduledEnd   string  `json:"scheduled_end"`
	ActualStart    *string `json:"actual_start"`
	ActualEnd      *string `json:"actual_end"`
	Status         string  `json:"status"`
	Notes          *string `json:"notes"`
	TrainerNotes   *string `json:"trainer_notes"`
	ClientFeedback *string `json:"client_feedback"`
	CreatedAt      string  `json:"created_at"`
}

func sessionToView(s *model.Session) sessionView {
	return sessionView{
		ID:             s.ID,
		ClientID:       s.ClientID,
		Title:          s.Title,
		Description:    s.Description,
		SessionType:    s.SessionType,
		Location:       s.Location,
		MeetingURL:     s.MeetingURL,
		ScheduledStart: s.ScheduledStart.UTC().Format(time.RFC3339),
		ScheduledEnd:   s.ScheduledEnd.UTC().Format(time.RFC3339),
		ActualStart:    timeStr(s.ActualStart),
		ActualEnd:      timeStr(s.ActualEnd),
		Status:         s.Status,
		Notes:          s.Notes,
		TrainerNotes:   s.TrainerNotes,
		ClientFeedback: s.ClientFeedback,
		CreatedAt:      s.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func timeStr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(time.RFC3339)
	return &s
}

// List returns sessions filtered by ?status=, ?client_id=, ?from=,
// ?to= with pagination.
func (h *SessionHandler) List(c echo.Context) error {
	page, perPage, limit, offset := pagination(c)
	f := repository.SessionFilter{Limit: limit, Offset: offset}

	if s := c.QueryParam("status"); s != "" {
		if !model.ValidSessionStatus(s) {
			return fail(c, http.StatusBadRequest, "unknown status")
		}
		f.Status = s
	}
	if s := c.QueryParam("client_id"); s != "" {
		id, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return fail(c, http.StatusBadRequest, "invalid client_id")
		}
		f.ClientID = id
	}
	if s := c.QueryParam("from"); s != "" {
		t, err := parseDate(s)
		if err != nil {
			return fail(c, http.StatusBadRequest, "from must be YYYY-MM-DD")
		}
		f.From = &t
	}
	if s := c.QueryParam("to"); s != "" {
		t, err := parseDate(s)
		if err != nil {
			return fail(c, http.StatusBadRequest, "to must be YYYY-MM-DD")
		}
		end := t.Add(24*time.Hour - time.Second)
		f.To = &end
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	sessions, total, err := h.Sessions.List(ctx, trainerID(c), f)
	if err != nil {
		return repoErr(c, err)
	}
	views := make([]sessionView, 0, len(sessions))
	for i := range sessions {
		views = append(views, sessionToView(&sessions[i]))
	}
	return ok(c, http.StatusOK, echo.Map{
		"sessions":   views,
		"pagination": pageMeta{Page: page, PerPage: perPage, Total: total},
	})
}

// Create schedules a session.  The conflict scan and the insert run in
// one transaction behind a lock on the trainer row, so two concurrent
// writes for the same trainer cannot both pass the scan.
func (h *SessionHandler) Create(c echo.Context) error {
	var req sessionCreateReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}
	if err := c.Validate(&req); err != nil {
		return fail(c, http.StatusBadRequest, "client_id, title, session_type and times required")
	}
	if !model.ValidSessionType(req.SessionType) {
		return fail(c, http.StatusBadRequest, "unknown session_type")
	}
	start, err := time.Parse(time.RFC3339, req.ScheduledStart)
	if err != nil {
		return fail(c, http.StatusBadRequest, "scheduled_start must be RFC3339")
	}
	end, err := time.Parse(time.RFC3339, req.ScheduledEnd)
	if err != nil {
		return fail(c, http.StatusBadRequest, "scheduled_end must be RFC3339")
	}
	if !end.After(start) {
		return fail(c, http.StatusBadRequest, "scheduled_end must be after scheduled_start")
	}

	tid := trainerID(c)
	ctx, cancel := reqCtx(c)
	defer cancel()

	// Ownership check before any write.
	if _, err := h.Clients.GetByID(ctx, tid, req.ClientID); err != nil {
		return repoErr(c, err)
	}

	s := &model.Session{
		TrainerID:      tid,
		ClientID:       req.ClientID,
		Title:          req.Title,
		Description:    req.Description,
		SessionType:    req.SessionType,
		Location:       req.Location,
		ScheduledStart: start.UTC(),
		ScheduledEnd:   end.UTC(),
		Status:         model.SessionScheduled,
		Notes:          req.Notes,
	}

	// Online sessions get a meeting link best-effort before the row is
	// written; a Zoom failure never blocks scheduling.
	if req.Location != nil && *req.Location == model.SessionTypeOnline && h.Zoom.Enabled() {
		url, zerr := h.Zoom.CreateMeeting(ctx, s.Title, s.ScheduledStart, int(end.Sub(start).Minutes()))
		if zerr != nil {
			h.Log.Warn("zoom meeting create failed", zap.Error(zerr))
		} else {
			s.MeetingURL = &url
		}
	}

	tx, err := h.Sessions.DB().BeginTx(ctx, nil)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "begin tx failed")
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if err := h.Sessions.LockTrainerTx(ctx, tx, tid); err != nil {
		return repoErr(c, err)
	}
	conflict, err := h.Sessions.FindConflictTx(ctx, tx, tid, s.ScheduledStart, s.ScheduledEnd, 0)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "conflict scan failed")
	}
	if conflict != nil {
		return repoErr(c, conflict)
	}
	if err := h.Sessions.CreateTx(ctx, tx, s); err != nil {
		return fail(c, http.StatusInternalServerError, "create session failed")
	}
	if err := tx.Commit(); err != nil {
		return fail(c, http.StatusInternalServerError, "commit failed")
	}
	committed = true

	return ok(c, http.StatusCreated, sessionToView(s))
}

// Get returns one session.
func (h *SessionHandler) Get(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "invalid id")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	s, err := h.Sessions.GetByID(ctx, trainerID(c), id)
	if err != nil {
		return repoErr(c, err)
	}
	return ok(c, http.StatusOK, sessionToView(s))
}

// Patch merges a typed partial update and re-runs the conflict scan
// whenever the schedule changes.
func (h *SessionHandler) Patch(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "invalid id")
	}
	var req sessionPatchReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}

	tid := trainerID(c)
	ctx, cancel := reqCtx(c)
	defer cancel()

	s, err := h.Sessions.GetByID(ctx, tid, id)
	if err != nil {
		return repoErr(c, err)
	}

	timesChanged := false
	if req.ClientID != nil {
		if _, err := h.Clients.GetByID(ctx, tid, *req.ClientID); err != nil {
			return repoErr(c, err)
		}
		s.ClientID = *req.ClientID
	}
	if req.Title != nil {
		if *req.Title == "" {
			return fail(c, http.StatusBadRequest, "title cannot be empty")
		}
		s.Title = *req.Title
	}
	if req.Description != nil {
		s.Description = req.Description
	}
	if req.SessionType != nil {
		if !model.ValidSessionType(*req.SessionType) {
			return fail(c, http.StatusBadRequest, "unknown session_type")
		}
		s.SessionType = *req.SessionType
	}
	if req.Location != nil {
		s.Location = req.Location
	}
	if req.ScheduledStart != nil {
		t, err := time.Parse(time.RFC3339, *req.ScheduledStart)
		if err != nil {
			return fail(c, http.StatusBadRequest, "scheduled_start must be RFC3339")
		}
		s.ScheduledStart = t.UTC()
		timesChanged = true
	}
	if req.ScheduledEnd != nil {
		t, err := time.Parse(time.RFC3339, *req.ScheduledEnd)
		if err != nil {
			return fail(c, http.StatusBadRequest, "scheduled_end must be RFC3339")
		}
		s.ScheduledEnd = t.UTC()
		timesChanged = true
	}
	if req.Status != nil {
		if !model.ValidSessionStatus(*req.Status) {
			return fail(c, http.StatusBadRequest, "unknown status")
		}
		s.Status = *req.Status
	}
	if req.Notes != nil {
		s.Notes = req.Notes
	}
	if req.TrainerNotes != nil {
		s.TrainerNotes = req.TrainerNotes
	}
	if req.ClientFeedback != nil {
		s.ClientFeedback = req.ClientFeedback
	}
	if !s.ScheduledEnd.After(s.ScheduledStart) {
		return fail(c, http.StatusBadRequest, "scheduled_end must be after scheduled_start")
	}

	tx, err := h.Sessions.DB().BeginTx(ctx, nil)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "begin tx failed")
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if timesChanged && s.Status == model.SessionScheduled {
		if err := h.Sessions.LockTrainerTx(ctx, tx, tid); err != nil {
			return repoErr(c, err)
		}
		conflict, err := h.Sessions.FindConflictTx(ctx, tx, tid, s.ScheduledStart, s.ScheduledEnd, s.ID)
		if err != nil {
			return fail(c, http.StatusInternalServerError, "conflict scan failed")
		}
		if conflict != nil {
			return repoErr(c, conflict)
		}
	}
	if err := h.Sessions.UpdateTx(ctx, tx, s); err != nil {
		return repoErr(c, err)
	}
	if err := tx.Commit(); err != nil {
		return fail(c, http.StatusInternalServerError, "commit failed")
	}
	committed = true

	return ok(c, http.StatusOK, sessionToView(s))
}

// Delete soft-deletes to cancelled, or removes the row entirely with
// ?permanent=true.
func (h *SessionHandler) Delete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "invalid id")
	}

	tid := trainerID(c)
	ctx, cancel := reqCtx(c)
	defer cancel()

	if c.QueryParam("permanent") == "true" {
		if err := h.Sessions.Delete(ctx, tid, id); err != nil {
			return repoErr(c, err)
		}
		return ok(c, http.StatusOK, echo.Map{"deleted": true})
	}

	s, err := h.Sessions.GetByID(ctx, tid, id)
	if err != nil {
		return repoErr(c, err)
	}
	s.Status = model.SessionCancelled

	tx, err := h.Sessions.DB().BeginTx(ctx, nil)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "begin tx failed")
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if err := h.Sessions.UpdateTx(ctx, tx, s); err != nil {
		return repoErr(c, err)
	}
	if err := tx.Commit(); err != nil {
		return fail(c, http.StatusInternalServerError, "commit failed")
	}
	committed = true

	return ok(c, http.StatusOK, echo.Map{"cancelled": true})
}

// Complete marks a session completed, stamping actual_end.
func (h *SessionHandler) Complete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "invalid id")
	}
	var req completeReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}

	tid := trainerID(c)
	ctx, cancel := reqCtx(c)
	defer cancel()

	s, err := h.Sessions.GetByID(ctx, tid, id)
	if err != nil {
		return repoErr(c, err)
	}
	if s.Status != model.SessionScheduled {
		return fail(c, http.StatusConflict, "only scheduled sessions can be completed")
	}

	now := time.Now().UTC()
	s.Status = model.SessionCompleted
	s.ActualEnd = &now
	if s.ActualStart == nil {
		s.ActualStart = &s.ScheduledStart
	}
	if req.TrainerNotes != nil {
		s.TrainerNotes = req.TrainerNotes
	}

	tx, err := h.Sessions.DB().BeginTx(ctx, nil)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "begin tx failed")
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if err := h.Sessions.UpdateTx(ctx, tx, s); err != nil {
		return repoErr(c, err)
	}
	if err := tx.Commit(); err != nil {
		return fail(c, http.StatusInternalServerError, "commit failed")
	}
	committed = true

	return ok(c, http.StatusOK, sessionToView(s))
}

// Stats returns counts by status and type plus the upcoming-week
// count.
func (h *SessionHandler) Stats(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	st, err := h.Sessions.Stats(ctx, trainerID(c))
	if err != nil {
		return repoErr(c, err)
	}
	return ok(c, http.StatusOK, echo.Map{
		"total":     st.Total,
		"by_status": st.ByStatus,
		"by_type":   st.ByType,
		"upcoming":  st.Upcoming,
	})
}

// Availability finds free gaps of at least ?duration= minutes inside
// the 08:00-20:00 working window of ?date=.
func (h *SessionHandler) Availability(c echo.Context) error {
	date, err := parseDate(c.QueryParam("date"))
	if err != nil {
		return fail(c, http.StatusBadRequest, "date must be YYYY-MM-DD")
	}
	duration := 60
	if s := c.QueryParam("duration"); s != "" {
		duration, err = strconv.Atoi(s)
		if err != nil || duration < 1 {
			return fail(c, http.StatusBadRequest, "duration must be a positive integer")
		}
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	sessions, err := h.Sessions.ListForDay(ctx, trainerID(c), date)
	if err != nil {
		return repoErr(c, err)
	}

	booked := make([]schedule.Interval, 0, len(sessions))
	for _, s := range sessions {
		booked = append(booked, schedule.Interval{Start: s.ScheduledStart, End: s.ScheduledEnd})
	}
	workStart, workEnd := schedule.WorkWindow(date)
	gaps := schedule.FindGaps(workStart, workEnd, booked, time.Duration(duration)*time.Minute)

	type gapView struct {
		Start           string `json:"start"`
		End             string `json:"end"`
		DurationMinutes int    `json:"duration_minutes"`
	}
	type bookedView struct {
		ID    uint64 `json:"id"`
		Title string `json:"title"`
		Start string `json:"start"`
		End   string `json:"end"`
	}
	gapViews := make([]gapView, 0, len(gaps))
	for _, g := range gaps {
		gapViews = append(gapViews, gapView{
			Start:           g.Start.UTC().Format(time.RFC3339),
			End:             g.End.UTC().Format(time.RFC3339),
			DurationMinutes: g.DurationMinutes,
		})
	}
	bookedViews := make([]bookedView, 0, len(sessions))
	for _, s := range sessions {
		bookedViews = append(bookedViews, bookedView{
			ID:    s.ID,
			Title: s.Title,
			Start: s.ScheduledStart.UTC().Format(time.RFC3339),
			End:   s.ScheduledEnd.UTC().Format(time.RFC3339),
		})
	}

	return ok(c, http.StatusOK, echo.Map{
		"date":             date.Format("2006-01-02"),
		"duration_minutes": duration,
		"free_gaps":        gapViews,
		"booked_sessions":  bookedViews,
	})
}
