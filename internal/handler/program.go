package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/peakform/trainer-crm/internal/integration"
	"github.com/peakform/trainer-crm/internal/model"
	"github.com/peakform/trainer-crm/internal/repository"
)

// ProgramHandler serves workout program CRUD plus AI generation.
type ProgramHandler struct {
	Programs  *repository.ProgramRepo
	Clients   *repository.ClientRepo
	Generator *integration.ProgramGenerator
	Log       *zap.Logger
}

func NewProgramHandler(p *repository.ProgramRepo, cl *repository.ClientRepo, gen *integration.ProgramGenerator, log *zap.Logger) *ProgramHandler {
	return &ProgramHandler{Programs: p, Clients: cl, Generator: gen, Log: log}
}

type exerciseReq struct {
	Name            string  `json:"name" validate:"required"`
	Description     *string `json:"description"`
	ExerciseType    *string `json:"exercise_type"`
	MuscleGroup     *string `json:"muscle_group"`
	Equipment       *string `json:"equipment"`
	Sets            *int    `json:"sets"`
	Reps            *string `json:"reps"`
	DurationMinutes *int    `json:"duration_minutes"`
	RestSeconds     *int    `json:"rest_seconds"`
	Notes           *string `json:"notes"`
}

type programCreateReq struct {
	ClientID        uint64        `json:"client_id" validate:"required"`
	Name            string        `json:"name" validate:"required"`
	Description     *string       `json:"description"`
	Goal            *string       `json:"goal"`
	DurationWeeks   *int          `json:"duration_weeks"`
	DifficultyLevel *string       `json:"difficulty_level"`
	StartDate       *string       `json:"start_date"`
	EndDate         *string       `json:"end_date"`
	Notes           *string       `json:"notes"`
	Exercises       []exerciseReq `json:"exercises"`
}

type programPatchReq struct {
	Name            *string `json:"name"`
	Description     *string `json:"description"`
	Goal            *string `json:"goal"`
	DurationWeeks   *int    `json:"duration_weeks"`
	DifficultyLevel *string `json:"difficulty_level"`
	Status          *string `json:"status"`
	StartDate       *string `json:"start_date"`
	EndDate         *string `json:"end_date"`
	Notes           *string `json:"notes"`
}

type generateReq struct {
	ClientID      uint64 `json:"client_id" validate:"required"`
	Goal          string `json:"goal" validate:"required"`
	DurationWeeks int    `json:"duration_weeks"`
}

type exerciseView struct {
	ID              uint64  `json:"id"`
	Name            string  `json:"name"`
	Description     *string `json:"description"`
	ExerciseType    *string `json:"exercise_type"`
	MuscleGroup     *string `json:"muscle_group"`
	Equipment       *string `json:"equipment"`
	Sets            *int    `json:"sets"`
	Reps            *string `json:"reps"`
	DurationMinutes *int    `json:"duration_minutes"`
	RestSeconds     *int    `json:"rest_seconds"`
	OrderIndex      int     `json:"order_index"`
	Notes           *string `json:"notes"`
}

type programView struct {
	ID              uint64         `json:"id"`
	ClientID        uint64         `json:"client_id"`
	Name            string         `json:"name"`
	Description     *string        `json:"description"`
	Goal            *string        `json:"goal"`
	DurationWeeks   *int           `json:"duration_weeks"`
	DifficultyLevel *string        `json:"difficulty_level"`
	IsAIGenerated   bool           `json:"is_ai_generated"`
	AIModel         *string        `json:"ai_model,omitempty"`
	Status          string         `json:"status"`
	StartDate       *string        `json:"start_date"`
	EndDate         *string        `json:"end_date"`
	Notes           *string        `json:"notes"`
	Exercises       []exerciseView `json:"exercises,omitempty"`
	CreatedAt       string         `json:"created_at"`
}

func programToView(p *model.Program, exercises []model.Exercise) programView {
	v := programView{
		ID:              p.ID,
		ClientID:        p.ClientID,
		Name:            p.Name,
		Description:     p.Description,
		Goal:            p.Goal,
		DurationWeeks:   p.DurationWeeks,
		DifficultyLevel: p.DifficultyLevel,
		IsAIGenerated:   p.IsAIGenerated,
		AIModel:         p.AIModel,
		Status:          p.Status,
		StartDate:       dateStr(p.StartDate),
		EndDate:         dateStr(p.EndDate),
		Notes:           p.Notes,
		CreatedAt:       p.CreatedAt.UTC().Format(time.RFC3339),
	}
	for i := range exercises {
		e := &exercises[i]
		v.Exercises = append(v.Exercises, exerciseView{
			ID:              e.ID,
			Name:            e.Name,
			Description:     e.Description,
			ExerciseType:    e.ExerciseType,
			MuscleGroup:     e.MuscleGroup,
			Equipment:       e.Equipment,
			Sets:            e.Sets,
			Reps:            e.Reps,
			DurationMinutes: e.DurationMinutes,
			RestSeconds:     e.RestSeconds,
			OrderIndex:      e.OrderIndex,
			Notes:           e.Notes,
		})
	}
	return v
}

// List returns the trainer's programs, optionally filtered by
// ?client_id=.
func (h *ProgramHandler) List(c echo.Context) error {
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

	programs, err := h.Programs.List(ctx, trainerID(c), clientID)
	if err != nil {
		return repoErr(c, err)
	}
	views := make([]programView, 0, len(programs))
	for i := range programs {
		views = append(views, programToView(&programs[i], nil))
	}
	return ok(c, http.StatusOK, echo.Map{"programs": views})
}

// Create stores a program with its exercises in one transaction.
func (h *ProgramHandler) Create(c echo.Context) error {
	var req programCreateReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}
	if err := c.Validate(&req); err != nil {
		return fail(c, http.StatusBadRequest, "client_id and name required")
	}
	for i := range req.Exercises {
		if strings.TrimSpace(req.Exercises[i].Name) == "" {
			return fail(c, http.StatusBadRequest, "exercise name required")
		}
	}
	start, err := parseDatePtr(req.StartDate)
	if err != nil {
		return fail(c, http.StatusBadRequest, "start_date must be YYYY-MM-DD")
	}
	end, err := parseDatePtr(req.EndDate)
	if err != nil {
		return fail(c, http.StatusBadRequest, "end_date must be YYYY-MM-DD")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	tid := trainerID(c)
	if _, err := h.Clients.GetByID(ctx, tid, req.ClientID); err != nil {
		return repoErr(c, err)
	}

	p := &model.Program{
		TrainerID:       tid,
		ClientID:        req.ClientID,
		Name:            strings.TrimSpace(req.Name),
		Description:     req.Description,
		Goal:            req.Goal,
		DurationWeeks:   req.DurationWeeks,
		DifficultyLevel: req.DifficultyLevel,
		Status:          model.ProgramActive,
		StartDate:       start,
		EndDate:         end,
		Notes:           req.Notes,
	}

	tx, err := h.Programs.DB().BeginTx(ctx, nil)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "database error")
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if err := h.Programs.CreateTx(ctx, tx, p); err != nil {
		return repoErr(c, err)
	}
	exercises := make([]model.Exercise, 0, len(req.Exercises))
	for i, er := range req.Exercises {
		e := model.Exercise{
			ProgramID:       p.ID,
			Name:            strings.TrimSpace(er.Name),
			Description:     er.Description,
			ExerciseType:    er.ExerciseType,
			MuscleGroup:     er.MuscleGroup,
			Equipment:       er.Equipment,
			Sets:            er.Sets,
			Reps:            er.Reps,
			DurationMinutes: er.DurationMinutes,
			RestSeconds:     er.RestSeconds,
			OrderIndex:      i,
			Notes:           er.Notes,
		}
		if err := h.Programs.AddExerciseTx(ctx, tx, &e); err != nil {
			return repoErr(c, err)
		}
		exercises = append(exercises, e)
	}
	if err := tx.Commit(); err != nil {
		return fail(c, http.StatusInternalServerError, "database error")
	}
	committed = true

	return ok(c, http.StatusCreated, programToView(p, exercises))
}

// Get returns one program with its exercises.
func (h *ProgramHandler) Get(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "invalid id")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	p, exercises, err := h.Programs.GetByID(ctx, trainerID(c), id)
	if err != nil {
		return repoErr(c, err)
	}
	return ok(c, http.StatusOK, programToView(p, exercises))
}

// Patch applies a partial update to the program row.
func (h *ProgramHandler) Patch(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "invalid id")
	}
	var req programPatchReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	p, exercises, err := h.Programs.GetByID(ctx, trainerID(c), id)
	if err != nil {
		return repoErr(c, err)
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return fail(c, http.StatusBadRequest, "name cannot be empty")
		}
		p.Name = name
	}
	if req.Description != nil {
		p.Description = req.Description
	}
	if req.Goal != nil {
		p.Goal = req.Goal
	}
	if req.DurationWeeks != nil {
		p.DurationWeeks = req.DurationWeeks
	}
	if req.DifficultyLevel != nil {
		p.DifficultyLevel = req.DifficultyLevel
	}
	if req.Status != nil {
		if !model.ValidProgramStatus(*req.Status) {
			return fail(c, http.StatusBadRequest, "unknown status")
		}
		p.Status = *req.Status
	}
	if req.StartDate != nil {
		t, err := parseDatePtr(req.StartDate)
		if err != nil {
			return fail(c, http.StatusBadRequest, "start_date must be YYYY-MM-DD")
		}
		p.StartDate = t
	}
	if req.EndDate != nil {
		t, err := parseDatePtr(req.EndDate)
		if err != nil {
			return fail(c, http.StatusBadRequest, "end_date must be YYYY-MM-DD")
		}
		p.EndDate = t
	}
	if req.Notes != nil {
		p.Notes = req.Notes
	}

	if err := h.Programs.Update(ctx, p); err != nil {
		return repoErr(c, err)
	}
	return ok(c, http.StatusOK, programToView(p, exercises))
}

// AddExercise appends one exercise to an existing program.
func (h *ProgramHandler) AddExercise(c echo.Context) error {
	programID, err := pathID(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "invalid id")
	}
	var req exerciseReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}
	if err := c.Validate(&req); err != nil {
		return fail(c, http.StatusBadRequest, "name required")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	_, existing, err := h.Programs.GetByID(ctx, trainerID(c), programID)
	if err != nil {
		return repoErr(c, err)
	}

	e := model.Exercise{
		ProgramID:       programID,
		Name:            strings.TrimSpace(req.Name),
		Description:     req.Description,
		ExerciseType:    req.ExerciseType,
		MuscleGroup:     req.MuscleGroup,
		Equipment:       req.Equipment,
		Sets:            req.Sets,
		Reps:            req.Reps,
		DurationMinutes: req.DurationMinutes,
		RestSeconds:     req.RestSeconds,
		OrderIndex:      len(existing),
		Notes:           req.Notes,
	}
	if err := h.Programs.AddExercise(ctx, &e); err != nil {
		return repoErr(c, err)
	}
	return ok(c, http.StatusCreated, exerciseView{
		ID:              e.ID,
		Name:            e.Name,
		Description:     e.Description,
		ExerciseType:    e.ExerciseType,
		MuscleGroup:     e.MuscleGroup,
		Equipment:       e.Equipment,
		Sets:            e.Sets,
		Reps:            e.Reps,
		DurationMinutes: e.DurationMinutes,
		RestSeconds:     e.RestSeconds,
		OrderIndex:      e.OrderIndex,
		Notes:           e.Notes,
	})
}

// DeleteExercise removes one exercise from a program.
func (h *ProgramHandler) DeleteExercise(c echo.Context) error {
	programID, err := pathID(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "invalid id")
	}
	exerciseID, err := strconv.ParseUint(c.Param("exercise_id"), 10, 64)
	if err != nil {
		return fail(c, http.StatusBadRequest, "invalid exercise_id")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Programs.DeleteExercise(ctx, trainerID(c), programID, exerciseID); err != nil {
		return repoErr(c, err)
	}
	return ok(c, http.StatusOK, echo.Map{"deleted": true})
}

// Delete removes a program and its exercises.
func (h *ProgramHandler) Delete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "invalid id")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Programs.Delete(ctx, trainerID(c), id); err != nil {
		return repoErr(c, err)
	}
	return ok(c, http.StatusOK, echo.Map{"deleted": true})
}

// Generate asks the language model for a program tailored to the
// client's profile and stores it with its exercises.  Nothing is
// persisted when generation fails.
func (h *ProgramHandler) Generate(c echo.Context) error {
	if !h.Generator.Enabled() {
		return fail(c, http.StatusServiceUnavailable, "program generation is not configured")
	}
	var req generateReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}
	if err := c.Validate(&req); err != nil {
		return fail(c, http.StatusBadRequest, "client_id and goal required")
	}
	weeks := req.DurationWeeks
	if weeks < 1 {
		weeks = 8
	}

	tid := trainerID(c)

	// Generation can take a while, well past the usual request budget;
	// the same context covers the lookup, the upstream call and the
	// insert.
	ctx, cancel := longCtx(c)
	defer cancel()

	client, err := h.Clients.GetByID(ctx, tid, req.ClientID)
	if err != nil {
		return repoErr(c, err)
	}

	plan, raw, err := h.Generator.Generate(ctx, client, req.Goal, weeks)
	if err != nil {
		h.Log.Warn("program generation failed", zap.Uint64("client_id", client.ID), zap.Error(err))
		return fail(c, http.StatusBadGateway, "program generation failed")
	}

	aiModel := h.Generator.Model()
	p := &model.Program{
		TrainerID:       tid,
		ClientID:        client.ID,
		Name:            plan.Name,
		Description:     strPtr(plan.Description),
		Goal:            &req.Goal,
		DurationWeeks:   &plan.DurationWeeks,
		DifficultyLevel: strPtr(plan.DifficultyLevel),
		IsAIGenerated:   true,
		AIModel:         &aiModel,
		Status:          model.ProgramActive,
		ProgramData:     &raw,
	}

	tx, err := h.Programs.DB().BeginTx(ctx, nil)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "database error")
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if err := h.Programs.CreateTx(ctx, tx, p); err != nil {
		return repoErr(c, err)
	}
	exercises := make([]model.Exercise, 0, len(plan.Exercises))
	for i, pe := range plan.Exercises {
		e := model.Exercise{
			ProgramID:       p.ID,
			Name:            pe.Name,
			Description:     strPtr(pe.Description),
			ExerciseType:    strPtr(pe.ExerciseType),
			MuscleGroup:     strPtr(pe.MuscleGroup),
			Equipment:       strPtr(pe.Equipment),
			Sets:            intPtr(pe.Sets),
			Reps:            strPtr(pe.Reps),
			DurationMinutes: intPtr(pe.DurationMinutes),
			RestSeconds:     intPtr(pe.RestSeconds),
			OrderIndex:      i,
			Notes:           strPtr(pe.Notes),
		}
		if err := h.Programs.AddExerciseTx(ctx, tx, &e); err != nil {
			return repoErr(c, err)
		}
		exercises = append(exercises, e)
	}
	if err := tx.Commit(); err != nil {
		return fail(c, http.StatusInternalServerError, "database error")
	}
	committed = true

	return ok(c, http.StatusCreated, programToView(p, exercises))
}

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func intPtr(n int) *int {
	if n == 0 {
		return nil
	}
	return &n
}
