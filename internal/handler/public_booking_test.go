package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/peakform/trainer-crm/internal/repository"
	"github.com/peakform/trainer-crm/internal/service"
)

func newPublicBookingHandler(t *testing.T) (*PublicBookingHandler, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	h := NewPublicBookingHandler(
		repository.NewUserRepo(db),
		repository.NewSettingsRepo(db),
		repository.NewAvailabilityRepo(db),
		repository.NewBookingRepo(db),
		service.NewPublisher("", zap.NewNop()),
		zap.NewNop(),
	)
	return h, mock
}

var settingsCols = []string{
	"id", "trainer_id", "enable_online_booking", "require_approval", "allow_guest_booking",
	"min_advance_hours", "max_advance_days", "default_duration_minutes", "buffer_time_minutes", "cancellation_hours",
	"notify_new_booking", "notify_cancellation", "send_reminders", "reminder_hours_before",
	"booking_page_slug", "booking_page_title", "booking_page_description", "created_at", "updated_at",
}

func trainerSettingsRow(enabled bool) *sqlmock.Rows {
	now := time.Now().UTC()
	return sqlmock.NewRows(settingsCols).AddRow(
		1, testTrainerID, enabled, true, true,
		24, 30, 60, 0, 24,
		true, true, true, 24,
		"alex", nil, nil, now, now,
	)
}

func trainerRow() *sqlmock.Rows {
	now := time.Now().UTC()
	return sqlmock.NewRows([]string{
		"id", "email", "password_hash", "role", "full_name", "business_name", "is_active", "created_at", "updated_at",
	}).AddRow(testTrainerID, "alex@example.com", "x", "trainer", "Alex", nil, true, now, now)
}

func dayAvailabilityRequest(t *testing.T, h *PublicBookingHandler, slug, date string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("slug", "date")
	c.SetParamValues(slug, date)

	require.NoError(t, h.DayAvailability(c))
	return rec
}

func TestDayAvailabilityResolvesDate(t *testing.T) {
	h, mock := newPublicBookingHandler(t)

	date := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC) // a Monday
	now := time.Now().UTC()

	mock.ExpectQuery(`SELECT u.id, (.+) FROM users u JOIN booking_settings bs`).
		WithArgs("alex").
		WillReturnRows(trainerRow())
	mock.ExpectQuery(`SELECT (.+) FROM booking_settings WHERE trainer_id = \?`).
		WithArgs(testTrainerID).
		WillReturnRows(trainerSettingsRow(true))
	mock.ExpectQuery(`SELECT (.+) FROM availability_slots WHERE trainer_id = \? AND is_active = 1`).
		WithArgs(testTrainerID).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "trainer_id", "day_of_week", "start_time", "end_time", "session_type", "max_bookings", "is_active", "created_at", "updated_at",
		}).AddRow(1, testTrainerID, 0, "09:00:00", "12:00:00", "personal", 3, true, now, now))
	mock.ExpectQuery(`SELECT (.+) FROM availability_exceptions WHERE trainer_id = \?`).
		WithArgs(testTrainerID, date, date).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "trainer_id", "start_date", "end_date", "exception_type", "special_start_time", "special_end_time", "reason", "created_at",
		}))
	mock.ExpectQuery(`SELECT slot_id, COUNT\(\*\) FROM bookings`).
		WithArgs(testTrainerID, date).
		WillReturnRows(sqlmock.NewRows([]string{"slot_id", "count"}).AddRow(1, 1))

	rec := dayAvailabilityRequest(t, h, "alex", "2026-03-02")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"available":true`)
	assert.Contains(t, rec.Body.String(), `"start_time":"09:00"`)
	assert.Contains(t, rec.Body.String(), `"slots_remaining":2`)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDayAvailabilityHiddenWhenBookingDisabled(t *testing.T) {
	h, mock := newPublicBookingHandler(t)

	mock.ExpectQuery(`SELECT u.id, (.+) FROM users u JOIN booking_settings bs`).
		WithArgs("alex").
		WillReturnRows(trainerRow())
	mock.ExpectQuery(`SELECT (.+) FROM booking_settings WHERE trainer_id = \?`).
		WithArgs(testTrainerID).
		WillReturnRows(trainerSettingsRow(false))

	rec := dayAvailabilityRequest(t, h, "alex", "2026-03-02")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}
