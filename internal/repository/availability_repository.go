package repository

import (
    "context"
    "database/sql"
    "time"

    "github.com/peakform/trainer-crm/internal/model"
    "github.com/peakform/trainer-crm/internal/schedule"
)

// AvailabilityRepo provides access to the weekly slot template
// (availability_slots) and the date-range overrides
// (availability_exceptions).
type AvailabilityRepo struct {
    db *sql.DB
}

// NewAvailabilityRepo returns a new AvailabilityRepo bound to the
// given database.
func NewAvailabilityRepo(db *sql.DB) *AvailabilityRepo { return &AvailabilityRepo{db: db} }

const slotColumns = `id, trainer_id, day_of_week, start_time, end_time, session_type, max_bookings, is_active, created_at, updated_at`

// CreateSlot inserts a weekly availability slot.
func (r *AvailabilityRepo) CreateSlot(ctx context.Context, s *model.AvailabilitySlot) error {
    const q = `INSERT INTO availability_slots (trainer_id, day_of_week, start_time, end_time, session_type, max_bookings, is_active)
               VALUES (?, ?, ?, ?, ?, ?, ?)`
    res, err := r.db.ExecContext(ctx, q, s.TrainerID, s.DayOfWeek, s.StartTime, s.EndTime, s.SessionType, s.MaxBookings, s.IsActive)
    if err != nil {
        return err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return err
    }
    s.ID = uint64(id)
    return nil
}

// GetSlot returns one of the trainer's slots, or ErrNotFound.
func (r *AvailabilityRepo) GetSlot(ctx context.Context, trainerID, id uint64) (*model.AvailabilitySlot, error) {
    var s model.AvailabilitySlot
    err := r.db.QueryRowContext(ctx,
        `SELECT `+slotColumns+` FROM availability_slots WHERE id = ? AND trainer_id = ?`, id, trainerID).
        Scan(&s.ID, &s.TrainerID, &s.DayOfWeek, &s.StartTime, &s.EndTime, &s.SessionType, &s.MaxBookings, &s.IsActive, &s.CreatedAt, &s.UpdatedAt)
    if err == sql.ErrNoRows {
        return nil, ErrNotFound
    }
    if err != nil {
        return nil, err
    }
    normalizeSlot(&s)
    return &s, nil
}

// ListSlots returns the trainer's slots ordered by (day_of_week,
// start_time).  When activeOnly is set, inactive slots are skipped.
func (r *AvailabilityRepo) ListSlots(ctx context.Context, trainerID uint64, activeOnly bool) ([]model.AvailabilitySlot, error) {
    q := `SELECT ` + slotColumns + ` FROM availability_slots WHERE trainer_id = ?`
    if activeOnly {
        q += ` AND is_active = 1`
    }
    q += ` ORDER BY day_of_week, start_time`
    rows, err := r.db.QueryContext(ctx, q, trainerID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()

    var out []model.AvailabilitySlot
    for rows.Next() {
        var s model.AvailabilitySlot
        if err := rows.Scan(&s.ID, &s.TrainerID, &s.DayOfWeek, &s.StartTime, &s.EndTime, &s.SessionType, &s.MaxBookings, &s.IsActive, &s.CreatedAt, &s.UpdatedAt); err != nil {
            return nil, err
        }
        normalizeSlot(&s)
        out = append(out, s)
    }
    return out, rows.Err()
}

// UpdateSlot persists the full slot row.
func (r *AvailabilityRepo) UpdateSlot(ctx context.Context, s *model.AvailabilitySlot) error {
    const q = `UPDATE availability_slots SET day_of_week = ?, start_time = ?, end_time = ?, session_type = ?, max_bookings = ?, is_active = ?
               WHERE id = ? AND trainer_id = ?`
    res, err := r.db.ExecContext(ctx, q, s.DayOfWeek, s.StartTime, s.EndTime, s.SessionType, s.MaxBookings, s.IsActive, s.ID, s.TrainerID)
    if err != nil {
        return err
    }
    if n, _ := res.RowsAffected(); n == 0 {
        return ErrNotFound
    }
    return nil
}

// DeleteSlot removes a slot from the weekly template.
func (r *AvailabilityRepo) DeleteSlot(ctx context.Context, trainerID, id uint64) error {
    res, err := r.db.ExecContext(ctx,
        `DELETE FROM availability_slots WHERE id = ? AND trainer_id = ?`, id, trainerID)
    if err != nil {
        return err
    }
    if n, _ := res.RowsAffected(); n == 0 {
        return ErrNotFound
    }
    return nil
}

const exceptionColumns = `id, trainer_id, start_date, end_date, exception_type, special_start_time, special_end_time, reason, created_at`

// CreateException inserts a date-range override.
func (r *AvailabilityRepo) CreateException(ctx context.Context, e *model.AvailabilityException) error {
    const q = `INSERT INTO availability_exceptions (trainer_id, start_date, end_date, exception_type, special_start_time, special_end_time, reason)
               VALUES (?, ?, ?, ?, ?, ?, ?)`
    res, err := r.db.ExecContext(ctx, q, e.TrainerID, e.StartDate, e.EndDate, e.ExceptionType, e.SpecialStartTime, e.SpecialEndTime, e.Reason)
    if err != nil {
        return err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return err
    }
    e.ID = uint64(id)
    return nil
}

// ListExceptions returns the trainer's most recent exceptions, newest
// range first, capped at 100 rows.
func (r *AvailabilityRepo) ListExceptions(ctx context.Context, trainerID uint64) ([]model.AvailabilityException, error) {
    const q = `SELECT ` + exceptionColumns + ` FROM availability_exceptions
               WHERE trainer_id = ? ORDER BY start_date DESC LIMIT 100`
    rows, err := r.db.QueryContext(ctx, q, trainerID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()

    var out []model.AvailabilityException
    for rows.Next() {
        var e model.AvailabilityException
        if err := rows.Scan(&e.ID, &e.TrainerID, &e.StartDate, &e.EndDate, &e.ExceptionType, &e.SpecialStartTime, &e.SpecialEndTime, &e.Reason, &e.CreatedAt); err != nil {
            return nil, err
        }
        normalizeException(&e)
        out = append(out, e)
    }
    return out, rows.Err()
}

// ExceptionsCovering returns the exceptions whose inclusive date range
// contains the target date.
func (r *AvailabilityRepo) ExceptionsCovering(ctx context.Context, trainerID uint64, date time.Time) ([]model.AvailabilityException, error) {
    const q = `SELECT ` + exceptionColumns + ` FROM availability_exceptions
               WHERE trainer_id = ? AND start_date <= ? AND end_date >= ?`
    rows, err := r.db.QueryContext(ctx, q, trainerID, date, date)
    if err != nil {
        return nil, err
    }
    defer rows.Close()

    var out []model.AvailabilityException
    for rows.Next() {
        var e model.AvailabilityException
        if err := rows.Scan(&e.ID, &e.TrainerID, &e.StartDate, &e.EndDate, &e.ExceptionType, &e.SpecialStartTime, &e.SpecialEndTime, &e.Reason, &e.CreatedAt); err != nil {
            return nil, err
        }
        normalizeException(&e)
        out = append(out, e)
    }
    return out, rows.Err()
}

// DeleteException removes a date-range override.
func (r *AvailabilityRepo) DeleteException(ctx context.Context, trainerID, id uint64) error {
    res, err := r.db.ExecContext(ctx,
        `DELETE FROM availability_exceptions WHERE id = ? AND trainer_id = ?`, id, trainerID)
    if err != nil {
        return err
    }
    if n, _ := res.RowsAffected(); n == 0 {
        return ErrNotFound
    }
    return nil
}

// MySQL TIME columns scan as "HH:MM:SS"; normalize to the "HH:MM"
// form used on the wire.
func normalizeSlot(s *model.AvailabilitySlot) {
    s.StartTime = schedule.NormalizeClock(s.StartTime)
    s.EndTime = schedule.NormalizeClock(s.EndTime)
}

func normalizeException(e *model.AvailabilityException) {
    if e.SpecialStartTime != nil {
        v := schedule.NormalizeClock(*e.SpecialStartTime)
        e.SpecialStartTime = &v
    }
    if e.SpecialEndTime != nil {
        v := schedule.NormalizeClock(*e.SpecialEndTime)
        e.SpecialEndTime = &v
    }
}
