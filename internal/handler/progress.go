package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/peakform/trainer-crm/internal/model"
	"github.com/peakform/trainer-crm/internal/repository"
)

// ProgressHandler serves client measurement tracking: dated entries,
// photos and per-client trend stats.
type ProgressHandler struct {
	Progress *repository.ProgressRepo
	Clients  *repository.ClientRepo
}

func NewProgressHandler(p *repository.ProgressRepo, cl *repository.ClientRepo) *ProgressHandler {
	return &ProgressHandler{Progress: p, Clients: cl}
}

type progressCreateReq struct {
	ClientID          uint64                 `json:"client_id" validate:"required"`
	EntryDate         string                 `json:"entry_date"`
	Weight            *float64               `json:"weight"`
	BodyFatPercentage *float64               `json:"body_fat_percentage"`
	MuscleMass        *float64               `json:"muscle_mass"`
	Chest             *float64               `json:"chest"`
	Waist             *float64               `json:"waist"`
	Hips              *float64               `json:"hips"`
	Thigh             *float64               `json:"thigh"`
	Arm               *float64               `json:"arm"`
	CustomMetrics     map[string]interface{} `json:"custom_metrics"`
	Notes             *string                `json:"notes"`
	MoodRating        *int                   `json:"mood_rating" validate:"omitempty,min=1,max=10"`
	EnergyLevel       *int                   `json:"energy_level" validate:"omitempty,min=1,max=10"`
}

type progressPatchReq struct {
	EntryDate         *string                `json:"entry_date"`
	Weight            *float64               `json:"weight"`
	BodyFatPercentage *float64               `json:"body_fat_percentage"`
	MuscleMass        *float64               `json:"muscle_mass"`
	Chest             *float64               `json:"chest"`
	Waist             *float64               `json:"waist"`
	Hips              *float64               `json:"hips"`
	Thigh             *float64               `json:"thigh"`
	Arm               *float64               `json:"arm"`
	CustomMetrics     map[string]interface{} `json:"custom_metrics"`
	Notes             *string                `json:"notes"`
	MoodRating        *int                   `json:"mood_rating" validate:"omitempty,min=1,max=10"`
	EnergyLevel       *int                   `json:"energy_level" validate:"omitempty,min=1,max=10"`
}

type photoCreateReq struct {
	ClientID     uint64   `json:"client_id" validate:"required"`
	PhotoURL     string   `json:"photo_url" validate:"required,url"`
	PhotoType    *string  `json:"photo_type"`
	Caption      *string  `json:"caption"`
	WeightAtTime *float64 `json:"weight_at_time"`
}

type progressView struct {
	ID                uint64                 `json:"id"`
	ClientID          uint64                 `json:"client_id"`
	EntryDate         string                 `json:"entry_date"`
	Weight            *float64               `json:"weight"`
	BodyFatPercentage *float64               `json:"body_fat_percentage"`
	MuscleMass        *float64               `json:"muscle_mass"`
	Chest             *float64               `json:"chest"`
	Waist             *float64               `json:"waist"`
	Hips              *float64               `json:"hips"`
	Thigh             *float64               `json:"thigh"`
	Arm               *float64               `json:"arm"`
	CustomMetrics     map[string]interface{} `json:"custom_metrics"`
	Notes             *string                `json:"notes"`
	MoodRating        *int                   `json:"mood_rating"`
	EnergyLevel       *int                   `json:"energy_level"`
	CreatedAt         string                 `json:"created_at"`
}

func progressToView(e *model.ProgressEntry) progressView {
	v := progressView{
		ID:                e.ID,
		ClientID:          e.ClientID,
		EntryDate:         e.EntryDate.Format("2006-01-02"),
		Weight:            e.Weight,
		BodyFatPercentage: e.BodyFatPercentage,
		MuscleMass:        e.MuscleMass,
		Chest:             e.Chest,
		Waist:             e.Waist,
		Hips:              e.Hips,
		Thigh:             e.Thigh,
		Arm:               e.Arm,
		CustomMetrics:     map[string]interface{}{},
		Notes:             e.Notes,
		MoodRating:        e.MoodRating,
		EnergyLevel:       e.EnergyLevel,
		CreatedAt:         e.CreatedAt.UTC().Format(time.RFC3339),
	}
	if e.CustomMetrics != nil {
		_ = json.Unmarshal([]byte(*e.CustomMetrics), &v.CustomMetrics)
	}
	return v
}

// List returns progress entries with optional ?client_id=,
// ?start_date= and ?end_date= filters.
func (h *ProgressHandler) List(c echo.Context) error {
	page, perPage, limit, offset := pagination(c)
	f := repository.ProgressFilter{Limit: limit, Offset: offset}
	if s := c.QueryParam("client_id"); s != "" {
		id, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return fail(c, http.StatusBadRequest, "invalid client_id")
		}
		f.ClientID = id
	}
	if s := c.QueryParam("start_date"); s != "" {
		d, err := parseDate(s)
		if err != nil {
			return fail(c, http.StatusBadRequest, "start_date must be YYYY-MM-DD")
		}
		f.From = &d
	}
	if s := c.QueryParam("end_date"); s != "" {
		d, err := parseDate(s)
		if err != nil {
			return fail(c, http.StatusBadRequest, "end_date must be YYYY-MM-DD")
		}
		f.To = &d
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	entries, total, err := h.Progress.List(ctx, trainerID(c), f)
	if err != nil {
		return repoErr(c, err)
	}
	views := make([]progressView, 0, len(entries))
	for i := range entries {
		views = append(views, progressToView(&entries[i]))
	}
	return ok(c, http.StatusOK, echo.Map{
		"entries":    views,
		"pagination": pageMeta{Page: page, PerPage: perPage, Total: total},
	})
}

// Create records a new progress entry for a client.  entry_date
// defaults to today.
func (h *ProgressHandler) Create(c echo.Context) error {
	var req progressCreateReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}
	if err := c.Validate(&req); err != nil {
		return fail(c, http.StatusBadRequest, "client_id required; ratings must be 1-10")
	}
	entryDate := time.Now().UTC().Truncate(24 * time.Hour)
	if req.EntryDate != "" {
		d, err := parseDate(req.EntryDate)
		if err != nil {
			return fail(c, http.StatusBadRequest, "entry_date must be YYYY-MM-DD")
		}
		entryDate = d
	}

	tid := trainerID(c)
	ctx, cancel := reqCtx(c)
	defer cancel()

	if _, err := h.Clients.GetByID(ctx, tid, req.ClientID); err != nil {
		return repoErr(c, err)
	}

	e := &model.ProgressEntry{
		TrainerID:         tid,
		ClientID:          req.ClientID,
		EntryDate:         entryDate,
		Weight:            req.Weight,
		BodyFatPercentage: req.BodyFatPercentage,
		MuscleMass:        req.MuscleMass,
		Chest:             req.Chest,
		Waist:             req.Waist,
		Hips:              req.Hips,
		Thigh:             req.Thigh,
		Arm:               req.Arm,
		Notes:             req.Notes,
		MoodRating:        req.MoodRating,
		EnergyLevel:       req.EnergyLevel,
	}
	if len(req.CustomMetrics) > 0 {
		raw, err := json.Marshal(req.CustomMetrics)
		if err != nil {
			return fail(c, http.StatusBadRequest, "invalid custom_metrics")
		}
		s := string(raw)
		e.CustomMetrics = &s
	}

	if err := h.Progress.Create(ctx, e); err != nil {
		return repoErr(c, err)
	}
	return ok(c, http.StatusCreated, progressToView(e))
}

// Patch merges a partial update into an existing entry.
func (h *ProgressHandler) Patch(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "invalid id")
	}
	var req progressPatchReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}
	if err := c.Validate(&req); err != nil {
		return fail(c, http.StatusBadRequest, "ratings must be 1-10")
	}

	tid := trainerID(c)
	ctx, cancel := reqCtx(c)
	defer cancel()

	e, err := h.Progress.GetByID(ctx, tid, id)
	if err != nil {
		return repoErr(c, err)
	}
	if req.EntryDate != nil {
		d, err := parseDate(*req.EntryDate)
		if err != nil {
			return fail(c, http.StatusBadRequest, "entry_date must be YYYY-MM-DD")
		}
		e.EntryDate = d
	}
	if req.Weight != nil {
		e.Weight = req.Weight
	}
	if req.BodyFatPercentage != nil {
		e.BodyFatPercentage = req.BodyFatPercentage
	}
	if req.MuscleMass != nil {
		e.MuscleMass = req.MuscleMass
	}
	if req.Chest != nil {
		e.Chest = req.Chest
	}
	if req.Waist != nil {
		e.Waist = req.Waist
	}
	if req.Hips != nil {
		e.Hips = req.Hips
	}
	if req.Thigh != nil {
		e.Thigh = req.Thigh
	}
	if req.Arm != nil {
		e.Arm = req.Arm
	}
	if req.CustomMetrics != nil {
		raw, err := json.Marshal(req.CustomMetrics)
		if err != nil {
			return fail(c, http.StatusBadRequest, "invalid custom_metrics")
		}
		s := string(raw)
		e.CustomMetrics = &s
	}
	if req.Notes != nil {
		e.Notes = req.Notes
	}
	if req.MoodRating != nil {
		e.MoodRating = req.MoodRating
	}
	if req.EnergyLevel != nil {
		e.EnergyLevel = req.EnergyLevel
	}

	if err := h.Progress.Update(ctx, e); err != nil {
		return repoErr(c, err)
	}
	return ok(c, http.StatusOK, progressToView(e))
}

// Delete removes a progress entry.
func (h *ProgressHandler) Delete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "invalid id")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Progress.Delete(ctx, trainerID(c), id); err != nil {
		return repoErr(c, err)
	}
	return ok(c, http.StatusOK, echo.Map{"deleted": true})
}

// Stats compares a client's first and latest entries over a window
// (?days=, default 90).
func (h *ProgressHandler) Stats(c echo.Context) error {
	clientID, err := strconv.ParseUint(c.Param("client_id"), 10, 64)
	if err != nil {
		return fail(c, http.StatusBadRequest, "invalid client_id")
	}
	days := 90
	if s := c.QueryParam("days"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			return fail(c, http.StatusBadRequest, "days must be a positive integer")
		}
		days = n
	}

	tid := trainerID(c)
	ctx, cancel := reqCtx(c)
	defer cancel()

	if _, err := h.Clients.GetByID(ctx, tid, clientID); err != nil {
		return repoErr(c, err)
	}
	since := time.Now().UTC().AddDate(0, 0, -days)
	entries, err := h.Progress.ListForClient(ctx, tid, clientID, since)
	if err != nil {
		return repoErr(c, err)
	}
	if len(entries) == 0 {
		return ok(c, http.StatusOK, echo.Map{"total_entries": 0, "date_range_days": days})
	}

	first, latest := &entries[0], &entries[len(entries)-1]
	return ok(c, http.StatusOK, echo.Map{
		"total_entries":     len(entries),
		"date_range_days":   days,
		"first_entry_date":  first.EntryDate.Format("2006-01-02"),
		"latest_entry_date": latest.EntryDate.Format("2006-01-02"),
		"weight_change":     floatDelta(first.Weight, latest.Weight),
		"body_fat_change":   floatDelta(first.BodyFatPercentage, latest.BodyFatPercentage),
		"latest_measurements": echo.Map{
			"weight":   latest.Weight,
			"body_fat": latest.BodyFatPercentage,
			"chest":    latest.Chest,
			"waist":    latest.Waist,
			"hips":     latest.Hips,
		},
	})
}

// Photos lists progress photos, optionally scoped to one client.
func (h *ProgressHandler) Photos(c echo.Context) error {
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

	photos, err := h.Progress.ListPhotos(ctx, trainerID(c), clientID)
	if err != nil {
		return repoErr(c, err)
	}
	views := make([]echo.Map, 0, len(photos))
	for i := range photos {
		p := &photos[i]
		views = append(views, echo.Map{
			"id":             p.ID,
			"client_id":      p.ClientID,
			"photo_url":      p.PhotoURL,
			"photo_type":     p.PhotoType,
			"caption":        p.Caption,
			"weight_at_time": p.WeightAtTime,
			"taken_at":       p.TakenAt.UTC().Format(time.RFC3339),
		})
	}
	return ok(c, http.StatusOK, echo.Map{"photos": views})
}

// AddPhoto records a progress photo by URL; the image itself lives in
// external storage.
func (h *ProgressHandler) AddPhoto(c echo.Context) error {
	var req photoCreateReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}
	if err := c.Validate(&req); err != nil {
		return fail(c, http.StatusBadRequest, "client_id and a valid photo_url required")
	}
	if req.PhotoType != nil && !model.ValidPhotoType(*req.PhotoType) {
		return fail(c, http.StatusBadRequest, "photo_type must be front, back, side or custom")
	}

	tid := trainerID(c)
	ctx, cancel := reqCtx(c)
	defer cancel()

	if _, err := h.Clients.GetByID(ctx, tid, req.ClientID); err != nil {
		return repoErr(c, err)
	}

	p := &model.ProgressPhoto{
		TrainerID:    tid,
		ClientID:     req.ClientID,
		PhotoURL:     req.PhotoURL,
		PhotoType:    req.PhotoType,
		Caption:      req.Caption,
		WeightAtTime: req.WeightAtTime,
	}
	if err := h.Progress.CreatePhoto(ctx, p); err != nil {
		return repoErr(c, err)
	}
	return ok(c, http.StatusCreated, echo.Map{"id": p.ID, "photo_url": p.PhotoURL})
}

func floatDelta(first, latest *float64) *float64 {
	if first == nil || latest == nil {
		return nil
	}
	d := *latest - *first
	return &d
}
