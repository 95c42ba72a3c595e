package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var settingsCols = []string{
	"id", "trainer_id", "enable_online_booking", "require_approval", "allow_guest_booking",
	"min_advance_hours", "max_advance_days", "default_duration_minutes", "buffer_time_minutes", "cancellation_hours",
	"notify_new_booking", "notify_cancellation", "send_reminders", "reminder_hours_before",
	"booking_page_slug", "booking_page_title", "booking_page_description", "created_at", "updated_at",
}

func settingsRow() *sqlmock.Rows {
	now := time.Now().UTC()
	return sqlmock.NewRows(settingsCols).AddRow(
		1, 7, true, true, true,
		12, 30, 60, 0, 24,
		true, true, true, 24,
		nil, nil, nil, now, now,
	)
}

func TestGetOrCreateExistingRow(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewSettingsRepo(db)

	mock.ExpectQuery(`SELECT (.+) FROM booking_settings WHERE trainer_id = \?`).
		WithArgs(uint64(7)).
		WillReturnRows(settingsRow())

	s, err := repo.GetOrCreate(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), s.TrainerID)
	assert.Equal(t, 60, s.DefaultDurationMinutes)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetOrCreateInsertsDefaults(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewSettingsRepo(db)

	mock.ExpectQuery(`SELECT (.+) FROM booking_settings WHERE trainer_id = \?`).
		WithArgs(uint64(7)).
		WillReturnRows(sqlmock.NewRows(settingsCols))
	mock.ExpectExec(`INSERT IGNORE INTO booking_settings`).
		WithArgs(uint64(7)).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery(`SELECT (.+) FROM booking_settings WHERE trainer_id = \?`).
		WithArgs(uint64(7)).
		WillReturnRows(settingsRow())

	s, err := repo.GetOrCreate(context.Background(), 7)
	require.NoError(t, err)
	assert.True(t, s.EnableOnlineBooking)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSlugTaken(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewSettingsRepo(db)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM booking_settings WHERE booking_page_slug = \? AND trainer_id <> \?`).
		WithArgs("coach-dana", uint64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(1))

	taken, err := repo.SlugTaken(context.Background(), "coach-dana", 7)
	require.NoError(t, err)
	assert.True(t, taken)
	assert.NoError(t, mock.ExpectationsWereMet())
}
