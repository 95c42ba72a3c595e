package repository

import (
	"context"
	"database/sql"

	"github.com/peakform/trainer-crm/internal/model"
)

// ProgramRepo provides access to workout programs and their exercises.
type ProgramRepo struct {
	db *sql.DB
}

// NewProgramRepo returns a new ProgramRepo bound to the given
// database.
func NewProgramRepo(db *sql.DB) *ProgramRepo { return &ProgramRepo{db: db} }

// DB exposes the underlying handle so handlers can begin transactions.
func (r *ProgramRepo) DB() *sql.DB { return r.db }

const programColumns = `id, trainer_id, client_id, name, description, goal, duration_weeks, difficulty_level,
    is_ai_generated, ai_model, status, start_date, end_date, program_data, notes, created_at, updated_at`

const exerciseColumns = `id, program_id, name, description, exercise_type, muscle_group, equipment,
    sets, reps, duration_minutes, rest_seconds, order_index, notes, created_at`

// CreateTx inserts a program within an existing transaction.
func (r *ProgramRepo) CreateTx(ctx context.Context, tx *sql.Tx, p *model.Program) error {
	const q = `INSERT INTO programs (trainer_id, client_id, name, description, goal, duration_weeks, difficulty_level,
        is_ai_generated, ai_model, status, start_date, end_date, program_data, notes)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, q,
		p.TrainerID, p.ClientID, p.Name, p.Description, p.Goal, p.DurationWeeks, p.DifficultyLevel,
		p.IsAIGenerated, p.AIModel, p.Status, p.StartDate, p.EndDate, p.ProgramData, p.Notes,
	)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = uint64(id)
	return tx.QueryRowContext(ctx, `SELECT `+programColumns+` FROM programs WHERE id = ?`, p.ID).
		Scan(scanProgramDest(p)...)
}

// AddExerciseTx appends an exercise to a program within an existing
// transaction.
func (r *ProgramRepo) AddExerciseTx(ctx context.Context, tx *sql.Tx, e *model.Exercise) error {
	const q = `INSERT INTO exercises (program_id, name, description, exercise_type, muscle_group, equipment,
        sets, reps, duration_minutes, rest_seconds, order_index, notes)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, q,
		e.ProgramID, e.Name, e.Description, e.ExerciseType, e.MuscleGroup, e.Equipment,
		e.Sets, e.Reps, e.DurationMinutes, e.RestSeconds, e.OrderIndex, e.Notes,
	)
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

// AddExercise appends an exercise outside a transaction.
func (r *ProgramRepo) AddExercise(ctx context.Context, e *model.Exercise) error {
	const q = `INSERT INTO exercises (program_id, name, description, exercise_type, muscle_group, equipment,
        sets, reps, duration_minutes, rest_seconds, order_index, notes)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q,
		e.ProgramID, e.Name, e.Description, e.ExerciseType, e.MuscleGroup, e.Equipment,
		e.Sets, e.Reps, e.DurationMinutes, e.RestSeconds, e.OrderIndex, e.Notes,
	)
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

// DeleteExercise removes one exercise, scoped to the trainer through
// its program.
func (r *ProgramRepo) DeleteExercise(ctx context.Context, trainerID, programID, exerciseID uint64) error {
	const q = `DELETE e FROM exercises e
               JOIN programs p ON p.id = e.program_id
               WHERE e.id = ? AND p.id = ? AND p.trainer_id = ?`
	res, err := r.db.ExecContext(ctx, q, exerciseID, programID, trainerID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// GetByID returns the trainer's program with its exercises ordered by
// order_index, or ErrNotFound.
func (r *ProgramRepo) GetByID(ctx context.Context, trainerID, id uint64) (*model.Program, []model.Exercise, error) {
	var p model.Program
	err := r.db.QueryRowContext(ctx,
		`SELECT `+programColumns+` FROM programs WHERE id = ? AND trainer_id = ?`, id, trainerID).
		Scan(scanProgramDest(&p)...)
	if err == sql.ErrNoRows {
		return nil, nil, ErrNotFound
	}
	if err != nil {
		return nil, nil, err
	}

	exercises, err := r.listExercises(ctx, p.ID)
	if err != nil {
		return nil, nil, err
	}
	return &p, exercises, nil
}

func (r *ProgramRepo) listExercises(ctx context.Context, programID uint64) ([]model.Exercise, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+exerciseColumns+` FROM exercises WHERE program_id = ? ORDER BY order_index, id`, programID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Exercise
	for rows.Next() {
		var e model.Exercise
		if err := rows.Scan(&e.ID, &e.ProgramID, &e.Name, &e.Description, &e.ExerciseType, &e.MuscleGroup, &e.Equipment,
			&e.Sets, &e.Reps, &e.DurationMinutes, &e.RestSeconds, &e.OrderIndex, &e.Notes, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// List returns the trainer's programs newest first, optionally scoped
// to one client.
func (r *ProgramRepo) List(ctx context.Context, trainerID, clientID uint64) ([]model.Program, error) {
	q := `SELECT ` + programColumns + ` FROM programs WHERE trainer_id = ?`
	args := []interface{}{trainerID}
	if clientID != 0 {
		q += ` AND client_id = ?`
		args = append(args, clientID)
	}
	q += ` ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Program
	for rows.Next() {
		var p model.Program
		if err := rows.Scan(scanProgramDest(&p)...); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Update persists the full program row.
func (r *ProgramRepo) Update(ctx context.Context, p *model.Program) error {
	const q = `UPDATE programs SET name = ?, description = ?, goal = ?, duration_weeks = ?, difficulty_level = ?,
        status = ?, start_date = ?, end_date = ?, program_data = ?, notes = ?
        WHERE id = ? AND trainer_id = ?`
	res, err := r.db.ExecContext(ctx, q,
		p.Name, p.Description, p.Goal, p.DurationWeeks, p.DifficultyLevel,
		p.Status, p.StartDate, p.EndDate, p.ProgramData, p.Notes,
		p.ID, p.TrainerID,
	)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a program; exercises cascade.
func (r *ProgramRepo) Delete(ctx context.Context, trainerID, id uint64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM programs WHERE id = ? AND trainer_id = ?`, id, trainerID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func scanProgramDest(p *model.Program) []interface{} {
	return []interface{}{
		&p.ID, &p.TrainerID, &p.ClientID, &p.Name, &p.Description, &p.Goal, &p.DurationWeeks, &p.DifficultyLevel,
		&p.IsAIGenerated, &p.AIModel, &p.Status, &p.StartDate, &p.EndDate, &p.ProgramData, &p.Notes,
		&p.CreatedAt, &p.UpdatedAt,
	}
}
