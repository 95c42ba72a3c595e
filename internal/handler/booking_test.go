package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
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

const (
	testTrainerID = uint64(7)
	testBookingID = uint64(5)
)

func newBookingHandler(t *testing.T) (*BookingHandler, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	h := NewBookingHandler(
		repository.NewBookingRepo(db),
		repository.NewSessionRepo(db),
		repository.NewClientRepo(db),
		repository.NewAvailabilityRepo(db),
		repository.NewSettingsRepo(db),
		service.NewPublisher("", zap.NewNop()),
		zap.NewNop(),
	)
	return h, mock
}

func statusRequest(t *testing.T, h *BookingHandler, body string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPatch, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("5")
	c.Set("user_id", testTrainerID)

	require.NoError(t, h.UpdateStatus(c))
	return rec
}

var bookingCols = []string{
	"id", "reference", "trainer_id", "client_id", "slot_id", "guest_name", "guest_email", "guest_phone",
	"requested_date", "requested_time", "duration_minutes", "session_type", "status",
	"client_notes", "decline_reason", "session_id", "requested_at", "confirmed_at", "cancelled_at",
}

func pendingGuestRow() *sqlmock.Rows {
	return sqlmock.NewRows(bookingCols).AddRow(
		testBookingID, "ref-1", testTrainerID, nil, nil, "Jamie", "jamie@example.com", nil,
		time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), "10:00:00", 60, nil, "pending",
		nil, nil, nil, time.Now().UTC(), nil, nil,
	)
}

func TestUpdateStatusRejectsUnknownStatus(t *testing.T) {
	h, mock := newBookingHandler(t)

	rec := statusRequest(t, h, `{"status":"done"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateStatusDecline(t *testing.T) {
	h, mock := newBookingHandler(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT (.+) FROM bookings WHERE id = \? AND trainer_id = \? FOR UPDATE`).
		WithArgs(testBookingID, testTrainerID).
		WillReturnRows(pendingGuestRow())
	mock.ExpectExec(`UPDATE bookings SET status = \?`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	rec := statusRequest(t, h, `{"status":"declined","decline_reason":"fully booked"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"declined"`)
	assert.Contains(t, rec.Body.String(), `"decline_reason":"fully booked"`)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateStatusInvalidTransition(t *testing.T) {
	h, mock := newBookingHandler(t)

	declined := sqlmock.NewRows(bookingCols).AddRow(
		testBookingID, "ref-1", testTrainerID, nil, nil, "Jamie", "jamie@example.com", nil,
		time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), "10:00:00", 60, nil, "declined",
		nil, nil, nil, time.Now().UTC(), nil, nil,
	)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT (.+) FROM bookings WHERE id = \? AND trainer_id = \? FOR UPDATE`).
		WithArgs(testBookingID, testTrainerID).
		WillReturnRows(declined)
	mock.ExpectRollback()

	rec := statusRequest(t, h, `{"status":"confirmed"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "cannot move booking from declined to confirmed")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateStatusConfirmCreatesSession(t *testing.T) {
	h, mock := newBookingHandler(t)

	start := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT (.+) FROM bookings WHERE id = \? AND trainer_id = \? FOR UPDATE`).
		WithArgs(testBookingID, testTrainerID).
		WillReturnRows(pendingGuestRow())
	mock.ExpectQuery(`SELECT id FROM users WHERE id = \? FOR UPDATE`).
		WithArgs(testTrainerID).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(testTrainerID))
	mock.ExpectQuery(`SELECT id, title, scheduled_start FROM sessions`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "scheduled_start"}))
	mock.ExpectExec(`INSERT INTO sessions`).
		WillReturnResult(sqlmock.NewResult(31, 1))
	mock.ExpectQuery(`SELECT (.+) FROM sessions WHERE id = \?`).
		WithArgs(uint64(31)).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "trainer_id", "client_id", "title", "description", "session_type", "location", "meeting_url",
			"scheduled_start", "scheduled_end", "actual_start", "actual_end", "status",
			"notes", "trainer_notes", "client_feedback", "created_at", "updated_at",
		}).AddRow(
			31, testTrainerID, 0, "Training with Jamie", nil, "personal", nil, nil,
			start, end, nil, nil, "scheduled",
			nil, nil, nil, time.Now().UTC(), time.Now().UTC(),
		))
	mock.ExpectExec(`UPDATE bookings SET status = \?`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	rec := statusRequest(t, h, `{"status":"confirmed"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"confirmed"`)
	assert.Contains(t, rec.Body.String(), `"session_id":31`)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateStatusCancelFreesLinkedSession(t *testing.T) {
	h, mock := newBookingHandler(t)

	sessionID := uint64(31)
	now := time.Now().UTC()
	confirmed := sqlmock.NewRows(bookingCols).AddRow(
		testBookingID, "ref-1", testTrainerID, nil, nil, "Jamie", "jamie@example.com", nil,
		time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), "10:00:00", 60, nil, "confirmed",
		nil, nil, sessionID, now, now, nil,
	)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT (.+) FROM bookings WHERE id = \? AND trainer_id = \? FOR UPDATE`).
		WithArgs(testBookingID, testTrainerID).
		WillReturnRows(confirmed)
	mock.ExpectExec(`UPDATE sessions SET status = 'cancelled' WHERE id = \? AND trainer_id = \? AND status = 'scheduled'`).
		WithArgs(sessionID, testTrainerID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE bookings SET status = \?`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	rec := statusRequest(t, h, `{"status":"cancelled"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"cancelled"`)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateStatusConfirmConflictRollsBack(t *testing.T) {
	h, mock := newBookingHandler(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT (.+) FROM bookings WHERE id = \? AND trainer_id = \? FOR UPDATE`).
		WithArgs(testBookingID, testTrainerID).
		WillReturnRows(pendingGuestRow())
	mock.ExpectQuery(`SELECT id FROM users WHERE id = \? FOR UPDATE`).
		WithArgs(testTrainerID).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(testTrainerID))
	mock.ExpectQuery(`SELECT id, title, scheduled_start FROM sessions`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "scheduled_start"}).
			AddRow(3, "Existing session", time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)))
	mock.ExpectRollback()

	rec := statusRequest(t, h, `{"status":"confirmed"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "Existing session")
	assert.NoError(t, mock.ExpectationsWereMet())
}
