package repository

import (
    "context"
    "database/sql"
    "strings"
    "time"

    "github.com/peakform/trainer-crm/internal/model"
)

// SessionRepo provides access to the sessions table, including the
// conflict scan that guards every scheduling write.
type SessionRepo struct {
    db *sql.DB
}

// NewSessionRepo returns a new SessionRepo bound to the given database.
func NewSessionRepo(db *sql.DB) *SessionRepo { return &SessionRepo{db: db} }

// DB exposes the underlying handle so handlers can begin transactions.
func (r *SessionRepo) DB() *sql.DB { return r.db }

const sessionColumns = `id, trainer_id, client_id, title, description, session_type, location, meeting_url,
    scheduled_start, scheduled_end, actual_start, actual_end, status,
    notes, trainer_notes, client_feedback, created_at, updated_at`

// LockTrainerTx takes a row lock on the trainer's user row.  Every
// scheduling write acquires this lock before the conflict scan, so two
// concurrent writers for the same trainer serialize: the conflict
// check and the subsequent insert/update are atomic with respect to
// each other.  The lock is released at commit/rollback.
func (r *SessionRepo) LockTrainerTx(ctx context.Context, tx *sql.Tx, trainerID uint64) error {
    var id uint64
    err := tx.QueryRowContext(ctx, `SELECT id FROM users WHERE id = ? FOR UPDATE`, trainerID).Scan(&id)
    if err == sql.ErrNoRows {
        return ErrNotFound
    }
    return err
}

// FindConflictTx looks for an existing session of the trainer whose
// [scheduled_start, scheduled_end) interval overlaps the candidate
// interval.  Sessions with status cancelled or no-show are excluded; a
// cancelled slot frees its time.  excludeID skips the session being
// updated (0 for creation).  Touching endpoints do not conflict.
//
// Returns a *ConflictError naming the clashing session, or nil when
// the interval is free.
func (r *SessionRepo) FindConflictTx(ctx context.Context, tx *sql.Tx, trainerID uint64, start, end time.Time, excludeID uint64) (*ConflictError, error) {
    const q = `SELECT id, title, scheduled_start FROM sessions
               WHERE trainer_id = ?
                 AND id <> ?
                 AND status IN ('scheduled', 'completed')
                 AND (
                       (scheduled_start <= ? AND scheduled_end > ?)
                    OR (scheduled_start < ? AND scheduled_end >= ?)
                    OR (scheduled_start >= ? AND scheduled_end <= ?)
                 )
               ORDER BY scheduled_start
               LIMIT 1`
    var c ConflictError
    err := tx.QueryRowContext(ctx, q, trainerID, excludeID,
        start, start, // existing contains the new start
        end, end, // existing contains the new end
        start, end, // new contains the existing
    ).Scan(&c.SessionID, &c.Title, &c.StartsAt)
    if err == sql.ErrNoRows {
        return nil, nil
    }
    if err != nil {
        return nil, err
    }
    return &c, nil
}

// CreateTx inserts a session within an existing transaction and reads
// the row back to populate defaults and timestamps.
func (r *SessionRepo) CreateTx(ctx context.Context, tx *sql.Tx, s *model.Session) error {
    const q = `INSERT INTO sessions (trainer_id, client_id, title, description, session_type, location, meeting_url,
        scheduled_start, scheduled_end, status, notes, trainer_notes)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
    res, err := tx.ExecContext(ctx, q,
        s.TrainerID, s.ClientID, s.Title, s.Description, s.SessionType, s.Location, s.MeetingURL,
        s.ScheduledStart, s.ScheduledEnd, s.Status, s.Notes, s.TrainerNotes,
    )
    if err != nil {
        return err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return err
    }
    s.ID = uint64(id)
    return tx.QueryRowContext(ctx, `SELECT `+sessionColumns+` FROM sessions WHERE id = ?`, s.ID).
        Scan(scanSessionDest(s)...)
}

// UpdateTx persists the full session row within an existing
// transaction.  Callers merge a typed patch into a freshly loaded
// struct before calling.
func (r *SessionRepo) UpdateTx(ctx context.Context, tx *sql.Tx, s *model.Session) error {
    const q = `UPDATE sessions SET client_id = ?, title = ?, description = ?, session_type = ?, location = ?, meeting_url = ?,
        scheduled_start = ?, scheduled_end = ?, actual_start = ?, actual_end = ?, status = ?,
        notes = ?, trainer_notes = ?, client_feedback = ?
        WHERE id = ? AND trainer_id = ?`
    res, err := tx.ExecContext(ctx, q,
        s.ClientID, s.Title, s.Description, s.SessionType, s.Location, s.MeetingURL,
        s.ScheduledStart, s.ScheduledEnd, s.ActualStart, s.ActualEnd, s.Status,
        s.Notes, s.TrainerNotes, s.ClientFeedback,
        s.ID, s.TrainerID,
    )
    if err != nil {
        return err
    }
    if n, _ := res.RowsAffected(); n == 0 {
        return ErrNotFound
    }
    return nil
}

// CancelTx marks a session cancelled within an existing transaction.
// Only a still-scheduled session is touched; a completed one keeps its
// status.
func (r *SessionRepo) CancelTx(ctx context.Context, tx *sql.Tx, trainerID, id uint64) error {
    res, err := tx.ExecContext(ctx,
        `UPDATE sessions SET status = 'cancelled' WHERE id = ? AND trainer_id = ? AND status = 'scheduled'`,
        id, trainerID)
    if err != nil {
        return err
    }
    if n, _ := res.RowsAffected(); n == 0 {
        return ErrNotFound
    }
    return nil
}

// GetByID returns the trainer's session with the given id, or
// ErrNotFound.
func (r *SessionRepo) GetByID(ctx context.Context, trainerID, id uint64) (*model.Session, error) {
    var s model.Session
    err := r.db.QueryRowContext(ctx,
        `SELECT `+sessionColumns+` FROM sessions WHERE id = ? AND trainer_id = ?`, id, trainerID).
        Scan(scanSessionDest(&s)...)
    if err == sql.ErrNoRows {
        return nil, ErrNotFound
    }
    if err != nil {
        return nil, err
    }
    return &s, nil
}

// SessionFilter narrows the session listing.
type SessionFilter struct {
    Status   string
    ClientID uint64
    From     *time.Time
    To       *time.Time
    Limit    int
    Offset   int
}

// List returns the trainer's sessions newest first, plus the total row
// count for pagination.
func (r *SessionRepo) List(ctx context.Context, trainerID uint64, f SessionFilter) ([]model.Session, int, error) {
    where := []string{"trainer_id = ?"}
    args := []interface{}{trainerID}
    if f.Status != "" {
        where = append(where, "status = ?")
        args = append(args, f.Status)
    }
    if f.ClientID != 0 {
        where = append(where, "client_id = ?")
        args = append(args, f.ClientID)
    }
    if f.From != nil {
        where = append(where, "scheduled_start >= ?")
        args = append(args, *f.From)
    }
    if f.To != nil {
        where = append(where, "scheduled_start <= ?")
        args = append(args, *f.To)
    }
    cond := strings.Join(where, " AND ")

    var total int
    if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sessions WHERE `+cond, args...).Scan(&total); err != nil {
        return nil, 0, err
    }

    q := `SELECT ` + sessionColumns + ` FROM sessions WHERE ` + cond + ` ORDER BY scheduled_start DESC LIMIT ? OFFSET ?`
    rows, err := r.db.QueryContext(ctx, q, append(args, f.Limit, f.Offset)...)
    if err != nil {
        return nil, 0, err
    }
    defer rows.Close()

    var out []model.Session
    for rows.Next() {
        var s model.Session
        if err := rows.Scan(scanSessionDest(&s)...); err != nil {
            return nil, 0, err
        }
        out = append(out, s)
    }
    return out, total, rows.Err()
}

// ListForDay returns the trainer's scheduled and completed sessions
// whose start falls on the given date, in chronological order.  Used
// by the free-gap finder.
func (r *SessionRepo) ListForDay(ctx context.Context, trainerID uint64, date time.Time) ([]model.Session, error) {
    dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
    dayEnd := dayStart.Add(24 * time.Hour)
    const q = `SELECT ` + sessionColumns + ` FROM sessions
               WHERE trainer_id = ? AND status IN ('scheduled', 'completed')
                 AND scheduled_start >= ? AND scheduled_start < ?
               ORDER BY scheduled_start`
    rows, err := r.db.QueryContext(ctx, q, trainerID, dayStart, dayEnd)
    if err != nil {
        return nil, err
    }
    defer rows.Close()

    var out []model.Session
    for rows.Next() {
        var s model.Session
        if err := rows.Scan(scanSessionDest(&s)...); err != nil {
            return nil, err
        }
        out = append(out, s)
    }
    return out, rows.Err()
}

// Delete permanently removes a session row.
func (r *SessionRepo) Delete(ctx context.Context, trainerID, id uint64) error {
    res, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ? AND trainer_id = ?`, id, trainerID)
    if err != nil {
        return err
    }
    if n, _ := res.RowsAffected(); n == 0 {
        return ErrNotFound
    }
    return nil
}

// SessionStats aggregates counts for the stats endpoint.
type SessionStats struct {
    Total    int
    ByStatus map[string]int
    ByType   map[string]int
    Upcoming int // scheduled sessions starting within the next 7 days
}

// Stats computes per-status and per-type counts plus the upcoming
// session count for the trainer.
func (r *SessionRepo) Stats(ctx context.Context, trainerID uint64) (*SessionStats, error) {
    st := &SessionStats{ByStatus: map[string]int{}, ByType: map[string]int{}}

    rows, err := r.db.QueryContext(ctx,
        `SELECT status, COUNT(*) FROM sessions WHERE trainer_id = ? GROUP BY status`, trainerID)
    if err != nil {
        return nil, err
    }
    for rows.Next() {
        var status string
        var n int
        if err := rows.Scan(&status, &n); err != nil {
            rows.Close()
            return nil, err
        }
        st.ByStatus[status] = n
        st.Total += n
    }
    rows.Close()
    if err := rows.Err(); err != nil {
        return nil, err
    }

    rows, err = r.db.QueryContext(ctx,
        `SELECT session_type, COUNT(*) FROM sessions WHERE trainer_id = ? GROUP BY session_type`, trainerID)
    if err != nil {
        return nil, err
    }
    for rows.Next() {
        var typ string
        var n int
        if err := rows.Scan(&typ, &n); err != nil {
            rows.Close()
            return nil, err
        }
        st.ByType[typ] = n
    }
    rows.Close()
    if err := rows.Err(); err != nil {
        return nil, err
    }

    now := time.Now().UTC()
    err = r.db.QueryRowContext(ctx,
        `SELECT COUNT(*) FROM sessions
         WHERE trainer_id = ? AND status = 'scheduled' AND scheduled_start >= ? AND scheduled_start <= ?`,
        trainerID, now, now.Add(7*24*time.Hour)).Scan(&st.Upcoming)
    if err != nil {
        return nil, err
    }
    return st, nil
}

func scanSessionDest(s *model.Session) []interface{} {
    return []interface{}{
        &s.ID, &s.TrainerID, &s.ClientID, &s.Title, &s.Description, &s.SessionType, &s.Location, &s.MeetingURL,
        &s.ScheduledStart, &s.ScheduledEnd, &s.ActualStart, &s.ActualEnd, &s.Status,
        &s.Notes, &s.TrainerNotes, &s.ClientFeedback, &s.CreatedAt, &s.UpdatedAt,
    }
}
