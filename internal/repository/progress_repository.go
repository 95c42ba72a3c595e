package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/peakform/trainer-crm/internal/model"
)

// ProgressRepo provides access to progress entries and photos.
type ProgressRepo struct {
	db *sql.DB
}

// NewProgressRepo returns a new ProgressRepo bound to the given
// database.
func NewProgressRepo(db *sql.DB) *ProgressRepo { return &ProgressRepo{db: db} }

const progressColumns = `id, trainer_id, client_id, entry_date, weight, body_fat_percentage, muscle_mass,
    chest, waist, hips, thigh, arm, custom_metrics, notes, mood_rating, energy_level, created_at, updated_at`

const photoColumns = `id, trainer_id, client_id, photo_url, photo_type, caption, weight_at_time, taken_at`

// Create inserts a progress entry and reads the row back.
func (r *ProgressRepo) Create(ctx context.Context, e *model.ProgressEntry) error {
	const q = `INSERT INTO progress_entries (trainer_id, client_id, entry_date, weight, body_fat_percentage, muscle_mass,
        chest, waist, hips, thigh, arm, custom_metrics, notes, mood_rating, energy_level)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q,
		e.TrainerID, e.ClientID, e.EntryDate, e.Weight, e.BodyFatPercentage, e.MuscleMass,
		e.Chest, e.Waist, e.Hips, e.Thigh, e.Arm, e.CustomMetrics, e.Notes, e.MoodRating, e.EnergyLevel,
	)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	e.ID = uint64(id)
	return r.db.QueryRowContext(ctx, `SELECT `+progressColumns+` FROM progress_entries WHERE id = ?`, e.ID).
		Scan(scanProgressDest(e)...)
}

// ProgressFilter narrows the entry listing.
type ProgressFilter struct {
	ClientID uint64
	From     *time.Time
	To       *time.Time
	Limit    int
	Offset   int
}

// List returns the trainer's progress entries newest first, plus the
// total row count for pagination.
func (r *ProgressRepo) List(ctx context.Context, trainerID uint64, f ProgressFilter) ([]model.ProgressEntry, int, error) {
	where := []string{"trainer_id = ?"}
	args := []interface{}{trainerID}
	if f.ClientID != 0 {
		where = append(where, "client_id = ?")
		args = append(args, f.ClientID)
	}
	if f.From != nil {
		where = append(where, "entry_date >= ?")
		args = append(args, *f.From)
	}
	if f.To != nil {
		where = append(where, "entry_date <= ?")
		args = append(args, *f.To)
	}
	cond := strings.Join(where, " AND ")

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM progress_entries WHERE `+cond, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	q := `SELECT ` + progressColumns + ` FROM progress_entries WHERE ` + cond + ` ORDER BY entry_date DESC, id DESC LIMIT ? OFFSET ?`
	rows, err := r.db.QueryContext(ctx, q, append(args, f.Limit, f.Offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []model.ProgressEntry
	for rows.Next() {
		var e model.ProgressEntry
		if err := rows.Scan(scanProgressDest(&e)...); err != nil {
			return nil, 0, err
		}
		out = append(out, e)
	}
	return out, total, rows.Err()
}

// ListForClient returns one client's entries since the given date in
// chronological order.  Used by the stats endpoint to compare first
// and latest measurements.
func (r *ProgressRepo) ListForClient(ctx context.Context, trainerID, clientID uint64, since time.Time) ([]model.ProgressEntry, error) {
	const q = `SELECT ` + progressColumns + ` FROM progress_entries
               WHERE trainer_id = ? AND client_id = ? AND entry_date >= ?
               ORDER BY entry_date, id`
	rows, err := r.db.QueryContext(ctx, q, trainerID, clientID, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.ProgressEntry
	for rows.Next() {
		var e model.ProgressEntry
		if err := rows.Scan(scanProgressDest(&e)...); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// GetByID returns the trainer's progress entry with the given id, or
// ErrNotFound.
func (r *ProgressRepo) GetByID(ctx context.Context, trainerID, id uint64) (*model.ProgressEntry, error) {
	var e model.ProgressEntry
	err := r.db.QueryRowContext(ctx,
		`SELECT `+progressColumns+` FROM progress_entries WHERE id = ? AND trainer_id = ?`, id, trainerID).
		Scan(scanProgressDest(&e)...)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// Update persists the full entry row.
func (r *ProgressRepo) Update(ctx context.Context, e *model.ProgressEntry) error {
	const q = `UPDATE progress_entries SET entry_date = ?, weight = ?, body_fat_percentage = ?, muscle_mass = ?,
        chest = ?, waist = ?, hips = ?, thigh = ?, arm = ?, custom_metrics = ?, notes = ?, mood_rating = ?, energy_level = ?
        WHERE id = ? AND trainer_id = ?`
	res, err := r.db.ExecContext(ctx, q,
		e.EntryDate, e.Weight, e.BodyFatPercentage, e.MuscleMass,
		e.Chest, e.Waist, e.Hips, e.Thigh, e.Arm, e.CustomMetrics, e.Notes, e.MoodRating, e.EnergyLevel,
		e.ID, e.TrainerID,
	)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a progress entry.
func (r *ProgressRepo) Delete(ctx context.Context, trainerID, id uint64) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM progress_entries WHERE id = ? AND trainer_id = ?`, id, trainerID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// CreatePhoto records a progress photo.
func (r *ProgressRepo) CreatePhoto(ctx context.Context, p *model.ProgressPhoto) error {
	const q = `INSERT INTO progress_photos (trainer_id, client_id, photo_url, photo_type, caption, weight_at_time)
               VALUES (?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q,
		p.TrainerID, p.ClientID, p.PhotoURL, p.PhotoType, p.Caption, p.WeightAtTime)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = uint64(id)
	return r.db.QueryRowContext(ctx, `SELECT `+photoColumns+` FROM progress_photos WHERE id = ?`, p.ID).
		Scan(&p.ID, &p.TrainerID, &p.ClientID, &p.PhotoURL, &p.PhotoType, &p.Caption, &p.WeightAtTime, &p.TakenAt)
}

// ListPhotos returns the trainer's photos newest first, optionally
// scoped to one client, capped at 100.
func (r *ProgressRepo) ListPhotos(ctx context.Context, trainerID, clientID uint64) ([]model.ProgressPhoto, error) {
	q := `SELECT ` + photoColumns + ` FROM progress_photos WHERE trainer_id = ?`
	args := []interface{}{trainerID}
	if clientID != 0 {
		q += ` AND client_id = ?`
		args = append(args, clientID)
	}
	q += ` ORDER BY taken_at DESC LIMIT 100`
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.ProgressPhoto
	for rows.Next() {
		var p model.ProgressPhoto
		if err := rows.Scan(&p.ID, &p.TrainerID, &p.ClientID, &p.PhotoURL, &p.PhotoType, &p.Caption, &p.WeightAtTime, &p.TakenAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func scanProgressDest(e *model.ProgressEntry) []interface{} {
	return []interface{}{
		&e.ID, &e.TrainerID, &e.ClientID, &e.EntryDate, &e.Weight, &e.BodyFatPercentage, &e.MuscleMass,
		&e.Chest, &e.Waist, &e.Hips, &e.Thigh, &e.Arm, &e.CustomMetrics, &e.Notes, &e.MoodRating, &e.EnergyLevel,
		&e.CreatedAt, &e.UpdatedAt,
	}
}
