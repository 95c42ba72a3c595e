package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/peakform/trainer-crm/internal/model"
	"github.com/peakform/trainer-crm/internal/repository"
)

// ClientHandler serves the client CRUD endpoints.
type ClientHandler struct {
	Clients *repository.ClientRepo
}

func NewClientHandler(r *repository.ClientRepo) *ClientHandler {
	return &ClientHandler{Clients: r}
}

type clientCreateReq struct {
	FirstName         string   `json:"first_name" validate:"required"`
	LastName          string   `json:"last_name" validate:"required"`
	Email             string   `json:"email" validate:"required,email"`
	Phone             *string  `json:"phone"`
	DateOfBirth       *string  `json:"date_of_birth"` // YYYY-MM-DD
	Gender            *string  `json:"gender"`
	FitnessGoal       *string  `json:"fitness_goal"`
	FitnessLevel      *string  `json:"fitness_level"`
	MedicalConditions *string  `json:"medical_conditions"`
	HeightCm          *float64 `json:"height_cm"`
	WeightKg          *float64 `json:"weight_kg"`
	MembershipType    *string  `json:"membership_type"`
	MembershipStart   *string  `json:"membership_start"`
	MembershipEnd     *string  `json:"membership_end"`
	Notes             *string  `json:"notes"`
}

// clientPatchReq carries optional fields for partial update; nil means
// "leave unchanged".
type clientPatchReq struct {
	FirstName         *string  `json:"first_name"`
	LastName          *string  `json:"last_name"`
	Email             *string  `json:"email"`
	Phone             *string  `json:"phone"`
	DateOfBirth       *string  `json:"date_of_birth"`
	Gender            *string  `json:"gender"`
	FitnessGoal       *string  `json:"fitness_goal"`
	FitnessLevel      *string  `json:"fitness_level"`
	MedicalConditions *string  `json:"medical_conditions"`
	HeightCm          *float64 `json:"height_cm"`
	WeightKg          *float64 `json:"weight_kg"`
	MembershipType    *string  `json:"membership_type"`
	MembershipStart   *string  `json:"membership_start"`
	MembershipEnd     *string  `json:"membership_end"`
	IsActive          *bool    `json:"is_active"`
	Notes             *string  `json:"notes"`
}

type clientView struct {
	ID                uint64   `json:"id"`
	FirstName         string   `json:"first_name"`
	LastName          string   `json:"last_name"`
	FullName          string   `json:"full_name"`
	Email             string   `json:"email"`
	Phone             *string  `json:"phone"`
	DateOfBirth       *string  `json:"date_of_birth"`
	Gender            *string  `json:"gender"`
	FitnessGoal       *string  `json:"fitness_goal"`
	FitnessLevel      *string  `json:"fitness_level"`
	MedicalConditions *string  `json:"medical_conditions"`
	HeightCm          *float64 `json:"height_cm"`
	WeightKg          *float64 `json:"weight_kg"`
	BMI               *float64 `json:"bmi,omitempty"`
	MembershipType    *string  `json:"membership_type"`
	MembershipStart   *string  `json:"membership_start"`
	MembershipEnd     *string  `json:"membership_end"`
	IsActive          bool     `json:"is_active"`
	Notes             *string  `json:"notes"`
	CreatedAt         string   `json:"created_at"`
}

func clientToView(c *model.Client, withBMI bool) clientView {
	v := clientView{
		ID:                c.ID,
		FirstName:         c.FirstName,
		LastName:          c.LastName,
		FullName:          c.FullName(),
		Email:             c.Email,
		Phone:             c.Phone,
		DateOfBirth:       dateStr(c.DateOfBirth),
		Gender:            c.Gender,
		FitnessGoal:       c.FitnessGoal,
		FitnessLevel:      c.FitnessLevel,
		MedicalConditions: c.MedicalConditions,
		HeightCm:          c.HeightCm,
		WeightKg:          c.WeightKg,
		MembershipType:    c.MembershipType,
		MembershipStart:   dateStr(c.MembershipStart),
		MembershipEnd:     dateStr(c.MembershipEnd),
		IsActive:          c.IsActive,
		Notes:             c.Notes,
		CreatedAt:         c.CreatedAt.UTC().Format(time.RFC3339),
	}
	if withBMI {
		v.BMI = c.BMI()
	}
	return v
}

func dateStr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format("2006-01-02")
	return &s
}

func parseDatePtr(s *string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	t, err := parseDate(*s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// List returns the trainer's clients with optional ?search= and
// ?active_only= filters.
func (h *ClientHandler) List(c echo.Context) error {
	page, perPage, limit, offset := pagination(c)
	f := repository.ListFilter{
		ActiveOnly: c.QueryParam("active_only") == "true",
		Search:     strings.TrimSpace(c.QueryParam("search")),
		Limit:      limit,
		Offset:     offset,
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	clients, total, err := h.Clients.List(ctx, trainerID(c), f)
	if err != nil {
		return repoErr(c, err)
	}
	views := make([]clientView, 0, len(clients))
	for i := range clients {
		views = append(views, clientToView(&clients[i], false))
	}
	return ok(c, http.StatusOK, echo.Map{
		"clients":    views,
		"pagination": pageMeta{Page: page, PerPage: perPage, Total: total},
	})
}

// Create adds a client to the trainer's roster.
func (h *ClientHandler) Create(c echo.Context) error {
	var req clientCreateReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}
	if err := c.Validate(&req); err != nil {
		return fail(c, http.StatusBadRequest, "first_name, last_name and email required")
	}

	dob, err := parseDatePtr(req.DateOfBirth)
	if err != nil {
		return fail(c, http.StatusBadRequest, "date_of_birth must be YYYY-MM-DD")
	}
	memStart, err := parseDatePtr(req.MembershipStart)
	if err != nil {
		return fail(c, http.StatusBadRequest, "membership_start must be YYYY-MM-DD")
	}
	memEnd, err := parseDatePtr(req.MembershipEnd)
	if err != nil {
		return fail(c, http.StatusBadRequest, "membership_end must be YYYY-MM-DD")
	}

	client := &model.Client{
		TrainerID:         trainerID(c),
		FirstName:         strings.TrimSpace(req.FirstName),
		LastName:          strings.TrimSpace(req.LastName),
		Email:             strings.ToLower(strings.TrimSpace(req.Email)),
		Phone:             req.Phone,
		DateOfBirth:       dob,
		Gender:            req.Gender,
		FitnessGoal:       req.FitnessGoal,
		FitnessLevel:      req.FitnessLevel,
		MedicalConditions: req.MedicalConditions,
		HeightCm:          req.HeightCm,
		WeightKg:          req.WeightKg,
		MembershipType:    req.MembershipType,
		MembershipStart:   memStart,
		MembershipEnd:     memEnd,
		Notes:             req.Notes,
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Clients.Create(ctx, client); err != nil {
		return repoErr(c, err)
	}
	return ok(c, http.StatusCreated, clientToView(client, true))
}

// Get returns one client with the computed BMI.
func (h *ClientHandler) Get(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "invalid id")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	client, err := h.Clients.GetByID(ctx, trainerID(c), id)
	if err != nil {
		return repoErr(c, err)
	}
	return ok(c, http.StatusOK, clientToView(client, true))
}

// Patch applies a partial update.  The row is loaded first and only
// the fields present in the body are merged, so concurrent editors
// cannot blank each other's fields.
func (h *ClientHandler) Patch(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "invalid id")
	}
	var req clientPatchReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	client, err := h.Clients.GetByID(ctx, trainerID(c), id)
	if err != nil {
		return repoErr(c, err)
	}

	if req.FirstName != nil {
		client.FirstName = strings.TrimSpace(*req.FirstName)
	}
	if req.LastName != nil {
		client.LastName = strings.TrimSpace(*req.LastName)
	}
	if req.Email != nil {
		client.Email = strings.ToLower(strings.TrimSpace(*req.Email))
	}
	if req.Phone != nil {
		client.Phone = req.Phone
	}
	if req.DateOfBirth != nil {
		dob, err := parseDatePtr(req.DateOfBirth)
		if err != nil {
			return fail(c, http.StatusBadRequest, "date_of_birth must be YYYY-MM-DD")
		}
		client.DateOfBirth = dob
	}
	if req.Gender != nil {
		client.Gender = req.Gender
	}
	if req.FitnessGoal != nil {
		client.FitnessGoal = req.FitnessGoal
	}
	if req.FitnessLevel != nil {
		client.FitnessLevel = req.FitnessLevel
	}
	if req.MedicalConditions != nil {
		client.MedicalConditions = req.MedicalConditions
	}
	if req.HeightCm != nil {
		client.HeightCm = req.HeightCm
	}
	if req.WeightKg != nil {
		client.WeightKg = req.WeightKg
	}
	if req.MembershipType != nil {
		client.MembershipType = req.MembershipType
	}
	if req.MembershipStart != nil {
		t, err := parseDatePtr(req.MembershipStart)
		if err != nil {
			return fail(c, http.StatusBadRequest, "membership_start must be YYYY-MM-DD")
		}
		client.MembershipStart = t
	}
	if req.MembershipEnd != nil {
		t, err := parseDatePtr(req.MembershipEnd)
		if err != nil {
			return fail(c, http.StatusBadRequest, "membership_end must be YYYY-MM-DD")
		}
		client.MembershipEnd = t
	}
	if req.IsActive != nil {
		client.IsActive = *req.IsActive
	}
	if req.Notes != nil {
		client.Notes = req.Notes
	}

	if client.FirstName == "" || client.LastName == "" || client.Email == "" {
		return fail(c, http.StatusBadRequest, "first_name, last_name and email cannot be empty")
	}

	if err := h.Clients.Update(ctx, client); err != nil {
		return repoErr(c, err)
	}
	return ok(c, http.StatusOK, clientToView(client, true))
}

// Delete soft-deletes a client by clearing is_active.
func (h *ClientHandler) Delete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "invalid id")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Clients.Deactivate(ctx, trainerID(c), id); err != nil {
		return repoErr(c, err)
	}
	return ok(c, http.StatusOK, echo.Map{"deactivated": true})
}
