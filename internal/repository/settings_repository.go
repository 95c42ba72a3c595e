package repository

import (
	"context"
	"database/sql"

	"github.com/peakform/trainer-crm/internal/model"
)

// SettingsRepo manages the per-trainer booking configuration row.
type SettingsRepo struct {
	db *sql.DB
}

// NewSettingsRepo returns a new SettingsRepo bound to the given
// database.
func NewSettingsRepo(db *sql.DB) *SettingsRepo { return &SettingsRepo{db: db} }

const settingsColumns = `id, trainer_id, enable_online_booking, require_approval, allow_guest_booking,
    min_advance_hours, max_advance_days, default_duration_minutes, buffer_time_minutes, cancellation_hours,
    notify_new_booking, notify_cancellation, send_reminders, reminder_hours_before,
    booking_page_slug, booking_page_title, booking_page_description, created_at, updated_at`

// GetOrCreate returns the trainer's settings row, inserting one with
// column defaults on first access.
func (r *SettingsRepo) GetOrCreate(ctx context.Context, trainerID uint64) (*model.BookingSettings, error) {
	s, err := r.get(ctx, trainerID)
	if err != ErrNotFound {
		return s, err
	}
	// INSERT IGNORE so two first reads racing on the unique trainer
	// key both succeed.
	if _, err := r.db.ExecContext(ctx,
		`INSERT IGNORE INTO booking_settings (trainer_id) VALUES (?)`, trainerID); err != nil {
		return nil, err
	}
	return r.get(ctx, trainerID)
}

func (r *SettingsRepo) get(ctx context.Context, trainerID uint64) (*model.BookingSettings, error) {
	var s model.BookingSettings
	err := r.db.QueryRowContext(ctx,
		`SELECT `+settingsColumns+` FROM booking_settings WHERE trainer_id = ?`, trainerID).
		Scan(&s.ID, &s.TrainerID, &s.EnableOnlineBooking, &s.RequireApproval, &s.AllowGuestBooking,
			&s.MinAdvanceHours, &s.MaxAdvanceDays, &s.DefaultDurationMinutes, &s.BufferTimeMinutes, &s.CancellationHours,
			&s.NotifyNewBooking, &s.NotifyCancellation, &s.SendReminders, &s.ReminderHoursBefore,
			&s.BookingPageSlug, &s.BookingPageTitle, &s.BookingPageDescription, &s.CreatedAt, &s.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Update persists the full settings row.
func (r *SettingsRepo) Update(ctx context.Context, s *model.BookingSettings) error {
	const q = `UPDATE booking_settings SET enable_online_booking = ?, require_approval = ?, allow_guest_booking = ?,
        min_advance_hours = ?, max_advance_days = ?, default_duration_minutes = ?, buffer_time_minutes = ?, cancellation_hours = ?,
        notify_new_booking = ?, notify_cancellation = ?, send_reminders = ?, reminder_hours_before = ?,
        booking_page_slug = ?, booking_page_title = ?, booking_page_description = ?
        WHERE trainer_id = ?`
	res, err := r.db.ExecContext(ctx, q,
		s.EnableOnlineBooking, s.RequireApproval, s.AllowGuestBooking,
		s.MinAdvanceHours, s.MaxAdvanceDays, s.DefaultDurationMinutes, s.BufferTimeMinutes, s.CancellationHours,
		s.NotifyNewBooking, s.NotifyCancellation, s.SendReminders, s.ReminderHoursBefore,
		s.BookingPageSlug, s.BookingPageTitle, s.BookingPageDescription,
		s.TrainerID,
	)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// SlugTaken reports whether another trainer already uses the slug.
func (r *SettingsRepo) SlugTaken(ctx context.Context, slug string, trainerID uint64) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM booking_settings WHERE booking_page_slug = ? AND trainer_id <> ?`,
		slug, trainerID).Scan(&n)
	return n > 0, err
}
