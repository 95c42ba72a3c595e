package repository

import (
    "context"
    "database/sql"
    "strings"

    "github.com/peakform/trainer-crm/internal/model"
)

// ClientRepo provides CRUD access to the clients table.  Every query
// is scoped by trainer_id so one tenant can never see another's rows.
type ClientRepo struct {
    db *sql.DB
}

// NewClientRepo returns a new ClientRepo bound to the given database.
func NewClientRepo(db *sql.DB) *ClientRepo { return &ClientRepo{db: db} }

const clientColumns = `id, trainer_id, first_name, last_name, email, phone, date_of_birth, gender,
    fitness_goal, fitness_level, medical_conditions, height_cm, weight_kg,
    membership_type, membership_start, membership_end, is_active, notes, created_at, updated_at`

// Create inserts a client and populates the generated ID and
// timestamps on the passed struct.
func (r *ClientRepo) Create(ctx context.Context, c *model.Client) error {
    const q = `INSERT INTO clients (trainer_id, first_name, last_name, email, phone, date_of_birth, gender,
        fitness_goal, fitness_level, medical_conditions, height_cm, weight_kg,
        membership_type, membership_start, membership_end, notes)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
    res, err := r.db.ExecContext(ctx, q,
        c.TrainerID, c.FirstName, c.LastName, c.Email, c.Phone, c.DateOfBirth, c.Gender,
        c.FitnessGoal, c.FitnessLevel, c.MedicalConditions, c.HeightCm, c.WeightKg,
        c.MembershipType, c.MembershipStart, c.MembershipEnd, c.Notes,
    )
    if err != nil {
        return err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return err
    }
    c.ID = uint64(id)
    got, err := r.GetByID(ctx, c.TrainerID, c.ID)
    if err != nil {
        return err
    }
    *c = *got
    return nil
}

// GetByID returns the trainer's client with the given id, or
// ErrNotFound when absent or owned by someone else.
func (r *ClientRepo) GetByID(ctx context.Context, trainerID, id uint64) (*model.Client, error) {
    var c model.Client
    err := r.db.QueryRowContext(ctx,
        `SELECT `+clientColumns+` FROM clients WHERE id = ? AND trainer_id = ?`, id, trainerID).
        Scan(&c.ID, &c.TrainerID, &c.FirstName, &c.LastName, &c.Email, &c.Phone, &c.DateOfBirth, &c.Gender,
            &c.FitnessGoal, &c.FitnessLevel, &c.MedicalConditions, &c.HeightCm, &c.WeightKg,
            &c.MembershipType, &c.MembershipStart, &c.MembershipEnd, &c.IsActive, &c.Notes, &c.CreatedAt, &c.UpdatedAt)
    if err == sql.ErrNoRows {
        return nil, ErrNotFound
    }
    if err != nil {
        return nil, err
    }
    return &c, nil
}

// ListFilter narrows the client listing.  Search matches against
// first/last name and email.
type ListFilter struct {
    ActiveOnly bool
    Search     string
    Limit      int
    Offset     int
}

// List returns the trainer's clients ordered by last then first name,
// plus the total row count for pagination.
func (r *ClientRepo) List(ctx context.Context, trainerID uint64, f ListFilter) ([]model.Client, int, error) {
    where := []string{"trainer_id = ?"}
    args := []interface{}{trainerID}
    if f.ActiveOnly {
        where = append(where, "is_active = 1")
    }
    if f.Search != "" {
        where = append(where, "(first_name LIKE ? OR last_name LIKE ? OR email LIKE ?)")
        pat := "%" + f.Search + "%"
        args = append(args, pat, pat, pat)
    }
    cond := strings.Join(where, " AND ")

    var total int
    if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM clients WHERE `+cond, args...).Scan(&total); err != nil {
        return nil, 0, err
    }

    q := `SELECT ` + clientColumns + ` FROM clients WHERE ` + cond + ` ORDER BY last_name, first_name LIMIT ? OFFSET ?`
    rows, err := r.db.QueryContext(ctx, q, append(args, f.Limit, f.Offset)...)
    if err != nil {
        return nil, 0, err
    }
    defer rows.Close()

    var out []model.Client
    for rows.Next() {
        var c model.Client
        if err := rows.Scan(&c.ID, &c.TrainerID, &c.FirstName, &c.LastName, &c.Email, &c.Phone, &c.DateOfBirth, &c.Gender,
            &c.FitnessGoal, &c.FitnessLevel, &c.MedicalConditions, &c.HeightCm, &c.WeightKg,
            &c.MembershipType, &c.MembershipStart, &c.MembershipEnd, &c.IsActive, &c.Notes, &c.CreatedAt, &c.UpdatedAt); err != nil {
            return nil, 0, err
        }
        out = append(out, c)
    }
    return out, total, rows.Err()
}

// Update persists the full client row.  Callers merge a patch into a
// freshly loaded struct first, so a lost update cannot clobber fields
// the caller never saw.
func (r *ClientRepo) Update(ctx context.Context, c *model.Client) error {
    const q = `UPDATE clients SET first_name = ?, last_name = ?, email = ?, phone = ?, date_of_birth = ?, gender = ?,
        fitness_goal = ?, fitness_level = ?, medical_conditions = ?, height_cm = ?, weight_kg = ?,
        membership_type = ?, membership_start = ?, membership_end = ?, is_active = ?, notes = ?
        WHERE id = ? AND trainer_id = ?`
    res, err := r.db.ExecContext(ctx, q,
        c.FirstName, c.LastName, c.Email, c.Phone, c.DateOfBirth, c.Gender,
        c.FitnessGoal, c.FitnessLevel, c.MedicalConditions, c.HeightCm, c.WeightKg,
        c.MembershipType, c.MembershipStart, c.MembershipEnd, c.IsActive, c.Notes,
        c.ID, c.TrainerID,
    )
    if err != nil {
        return err
    }
    if n, _ := res.RowsAffected(); n == 0 {
        return ErrNotFound
    }
    return nil
}

// Deactivate soft-deletes a client by clearing is_active.
func (r *ClientRepo) Deactivate(ctx context.Context, trainerID, id uint64) error {
    res, err := r.db.ExecContext(ctx,
        `UPDATE clients SET is_active = 0 WHERE id = ? AND trainer_id = ?`, id, trainerID)
    if err != nil {
        return err
    }
    if n, _ := res.RowsAffected(); n == 0 {
        return ErrNotFound
    }
    return nil
}

// CountActive returns the number of active clients for the dashboard.
func (r *ClientRepo) CountActive(ctx context.Context, trainerID uint64) (int, error) {
    var n int
    err := r.db.QueryRowContext(ctx,
        `SELECT COUNT(*) FROM clients WHERE trainer_id = ? AND is_active = 1`, trainerID).Scan(&n)
    return n, err
}
