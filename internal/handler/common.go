// Package handler implements the HTTP endpoints.  Every response uses
// the envelope {"success":true,"data":...} or
// {"success":false,"error":"..."}.
package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/peakform/trainer-crm/internal/repository"
)

// Validator adapts go-playground/validator to echo's Validator
// interface so handlers can call c.Validate on bound DTOs.
type Validator struct {
	v *validator.Validate
}

// NewValidator builds the request validator.
func NewValidator() *Validator {
	return &Validator{v: validator.New()}
}

// Validate implements echo.Validator.
func (val *Validator) Validate(i interface{}) error {
	if err := val.v.Struct(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

func ok(c echo.Context, status int, data interface{}) error {
	return c.JSON(status, echo.Map{"success": true, "data": data})
}

func fail(c echo.Context, status int, msg string) error {
	return c.JSON(status, echo.Map{"success": false, "error": msg})
}

// repoErr maps repository sentinels onto HTTP responses.  Anything
// unrecognized becomes a 500 with a generic message.
func repoErr(c echo.Context, err error) error {
	var conflict *repository.ConflictError
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return fail(c, http.StatusNotFound, "not found")
	case errors.Is(err, repository.ErrForbidden):
		return fail(c, http.StatusForbidden, "forbidden")
	case errors.As(err, &conflict):
		return fail(c, http.StatusConflict, conflict.Error())
	}
	return fail(c, http.StatusInternalServerError, "internal error")
}

// trainerID reads the authenticated user's id set by the JWT
// middleware.  Routes behind JWTAuth always have it.
func trainerID(c echo.Context) uint64 {
	id, _ := c.Get("user_id").(uint64)
	return id
}

// pathID parses the :id route parameter.
func pathID(c echo.Context) (uint64, error) {
	return strconv.ParseUint(c.Param("id"), 10, 64)
}

// reqCtx derives a bounded context for database work from the request.
func reqCtx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), 5*time.Second)
}

// longCtx is for requests that call slow upstreams (LLM generation).
func longCtx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), 90*time.Second)
}

const maxPerPage = 100

// pagination reads ?page= and ?per_page= with defaults 1 and 20,
// capping per_page at 100.
func pagination(c echo.Context) (page, perPage, limit, offset int) {
	page, _ = strconv.Atoi(c.QueryParam("page"))
	if page < 1 {
		page = 1
	}
	perPage, _ = strconv.Atoi(c.QueryParam("per_page"))
	if perPage < 1 {
		perPage = 20
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}
	return page, perPage, perPage, (page - 1) * perPage
}

// pageMeta is the pagination block attached to list responses.
type pageMeta struct {
	Page    int `json:"page"`
	PerPage int `json:"per_page"`
	Total   int `json:"total"`
}

// parseDate parses a YYYY-MM-DD path or query value as a UTC date.
func parseDate(s string) (time.Time, error) {
	return time.Parse("2006-01-02", s)
}
