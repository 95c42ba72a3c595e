package repository

import (
    "context"
    "database/sql"
    "strings"
    "time"

    "github.com/peakform/trainer-crm/internal/model"
    "github.com/peakform/trainer-crm/internal/schedule"
)

// BookingRepo provides access to the bookings table.
type BookingRepo struct {
    db *sql.DB
}

// NewBookingRepo returns a new BookingRepo bound to the given database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

// DB exposes the underlying handle so handlers can begin transactions.
func (r *BookingRepo) DB() *sql.DB { return r.db }

const bookingColumns = `id, reference, trainer_id, client_id, slot_id, guest_name, guest_email, guest_phone,
    requested_date, requested_time, duration_minutes, session_type, status,
    client_notes, decline_reason, session_id, requested_at, confirmed_at, cancelled_at`

// Create inserts a booking request and reads the row back to populate
// defaults and timestamps.
func (r *BookingRepo) Create(ctx context.Context, b *model.Booking) error {
    const q = `INSERT INTO bookings (reference, trainer_id, client_id, slot_id, guest_name, guest_email, guest_phone,
        requested_date, requested_time, duration_minutes, session_type, status, client_notes)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
    res, err := r.db.ExecContext(ctx, q,
        b.Reference, b.TrainerID, b.ClientID, b.SlotID, b.GuestName, b.GuestEmail, b.GuestPhone,
        b.RequestedDate, b.RequestedTime, b.DurationMinutes, b.SessionType, b.Status, b.ClientNotes,
    )
    if err != nil {
        return err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return err
    }
    b.ID = uint64(id)
    if err := r.db.QueryRowContext(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = ?`, b.ID).
        Scan(scanBookingDest(b)...); err != nil {
        return err
    }
    normalizeBooking(b)
    return nil
}

// GetByID returns the trainer's booking with the given id, or
// ErrNotFound.
func (r *BookingRepo) GetByID(ctx context.Context, trainerID, id uint64) (*model.Booking, error) {
    var b model.Booking
    err := r.db.QueryRowContext(ctx,
        `SELECT `+bookingColumns+` FROM bookings WHERE id = ? AND trainer_id = ?`, id, trainerID).
        Scan(scanBookingDest(&b)...)
    if err == sql.ErrNoRows {
        return nil, ErrNotFound
    }
    if err != nil {
        return nil, err
    }
    normalizeBooking(&b)
    return &b, nil
}

// GetByIDTx is GetByID inside an existing transaction, locking the row
// for the duration of the transaction.
func (r *BookingRepo) GetByIDTx(ctx context.Context, tx *sql.Tx, trainerID, id uint64) (*model.Booking, error) {
    var b model.Booking
    err := tx.QueryRowContext(ctx,
        `SELECT `+bookingColumns+` FROM bookings WHERE id = ? AND trainer_id = ? FOR UPDATE`, id, trainerID).
        Scan(scanBookingDest(&b)...)
    if err == sql.ErrNoRows {
        return nil, ErrNotFound
    }
    if err != nil {
        return nil, err
    }
    normalizeBooking(&b)
    return &b, nil
}

// BookingFilter narrows the booking listing.
type BookingFilter struct {
    Status string
    Limit  int
    Offset int
}

// List returns the trainer's bookings, most recent requested date
// first, plus the total row count for pagination.
func (r *BookingRepo) List(ctx context.Context, trainerID uint64, f BookingFilter) ([]model.Booking, int, error) {
    where := []string{"trainer_id = ?"}
    args := []interface{}{trainerID}
    if f.Status != "" {
        where = append(where, "status = ?")
        args = append(args, f.Status)
    }
    cond := strings.Join(where, " AND ")

    var total int
    if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM bookings WHERE `+cond, args...).Scan(&total); err != nil {
        return nil, 0, err
    }

    q := `SELECT ` + bookingColumns + ` FROM bookings WHERE ` + cond + ` ORDER BY requested_date DESC, requested_time DESC LIMIT ? OFFSET ?`
    rows, err := r.db.QueryContext(ctx, q, append(args, f.Limit, f.Offset)...)
    if err != nil {
        return nil, 0, err
    }
    defer rows.Close()

    var out []model.Booking
    for rows.Next() {
        var b model.Booking
        if err := rows.Scan(scanBookingDest(&b)...); err != nil {
            return nil, 0, err
        }
        normalizeBooking(&b)
        out = append(out, b)
    }
    return out, total, rows.Err()
}

// DemandForDate counts pending and confirmed bookings for one
// trainer/date, grouped by the slot each booking was matched to.
// Bookings with no slot reference land in Unmatched and weigh against
// every slot of the day.
func (r *BookingRepo) DemandForDate(ctx context.Context, trainerID uint64, date time.Time) (schedule.Demand, error) {
    const q = `SELECT slot_id, COUNT(*) FROM bookings
               WHERE trainer_id = ? AND requested_date = ? AND status IN ('pending', 'confirmed')
               GROUP BY slot_id`
    demand := schedule.Demand{PerSlot: map[uint64]int{}}
    rows, err := r.db.QueryContext(ctx, q, trainerID, date)
    if err != nil {
        return demand, err
    }
    defer rows.Close()

    for rows.Next() {
        var slotID sql.NullInt64
        var n int
        if err := rows.Scan(&slotID, &n); err != nil {
            return demand, err
        }
        if slotID.Valid {
            demand.PerSlot[uint64(slotID.Int64)] = n
        } else {
            demand.Unmatched = n
        }
    }
    return demand, rows.Err()
}

// UpdateStatusTx applies a status transition inside an existing
// transaction, stamping confirmed_at/cancelled_at and the optional
// decline reason or linked session.  The caller validates the
// transition first.
func (r *BookingRepo) UpdateStatusTx(ctx context.Context, tx *sql.Tx, b *model.Booking) error {
    const q = `UPDATE bookings SET status = ?, decline_reason = ?, session_id = ?, confirmed_at = ?, cancelled_at = ?
               WHERE id = ? AND trainer_id = ?`
    res, err := tx.ExecContext(ctx, q,
        b.Status, b.DeclineReason, b.SessionID, b.ConfirmedAt, b.CancelledAt, b.ID, b.TrainerID)
    if err != nil {
        return err
    }
    if n, _ := res.RowsAffected(); n == 0 {
        return ErrNotFound
    }
    return nil
}

// CountPending returns the number of pending bookings for the
// dashboard.
func (r *BookingRepo) CountPending(ctx context.Context, trainerID uint64) (int, error) {
    var n int
    err := r.db.QueryRowContext(ctx,
        `SELECT COUNT(*) FROM bookings WHERE trainer_id = ? AND status = 'pending'`, trainerID).Scan(&n)
    return n, err
}

// MySQL TIME columns scan as "HH:MM:SS"; normalize to "HH:MM".
func normalizeBooking(b *model.Booking) {
    b.RequestedTime = schedule.NormalizeClock(b.RequestedTime)
}

func scanBookingDest(b *model.Booking) []interface{} {
    return []interface{}{
        &b.ID, &b.Reference, &b.TrainerID, &b.ClientID, &b.SlotID, &b.GuestName, &b.GuestEmail, &b.GuestPhone,
        &b.RequestedDate, &b.RequestedTime, &b.DurationMinutes, &b.SessionType, &b.Status,
        &b.ClientNotes, &b.DeclineReason, &b.SessionID, &b.RequestedAt, &b.ConfirmedAt, &b.CancelledAt,
    }
}
