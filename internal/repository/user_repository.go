package repository

import (
    "context"
    "database/sql"
    "errors"

    "github.com/go-sql-driver/mysql"

    "github.com/peakform/trainer-crm/internal/model"
)

// UserRepo provides access to the users table.
type UserRepo struct {
    db *sql.DB
}

// NewUserRepo returns a new UserRepo bound to the given database.
func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{db: db} }

// DB exposes the underlying handle so handlers can begin transactions.
func (r *UserRepo) DB() *sql.DB { return r.db }

const userColumns = `id, email, password_hash, role, full_name, business_name, is_active, created_at, updated_at`

// Create inserts a new user and populates the generated ID and
// timestamps on the passed struct.
func (r *UserRepo) Create(ctx context.Context, u *model.User) error {
    const q = `INSERT INTO users (email, password_hash, role, full_name, business_name) VALUES (?, ?, ?, ?, ?)`
    res, err := r.db.ExecContext(ctx, q, u.Email, u.PasswordHash, u.Role, u.FullName, u.BusinessName)
    if err != nil {
        var me *mysql.MySQLError
        if errors.As(err, &me) && me.Number == 1062 {
            return ErrEmailExists
        }
        return err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return err
    }
    u.ID = uint64(id)
    return r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, u.ID).
        Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Role, &u.FullName, &u.BusinessName, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
}

// GetByEmail returns the user with the given email, or ErrNotFound.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
    return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email)
}

// GetByID returns the user with the given id, or ErrNotFound.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (*model.User, error) {
    return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
}

// GetByBookingSlug resolves a public booking page slug to its trainer.
// Only active trainers with online booking enabled are returned.
func (r *UserRepo) GetByBookingSlug(ctx context.Context, slug string) (*model.User, error) {
    const q = `SELECT u.id, u.email, u.password_hash, u.role, u.full_name, u.business_name, u.is_active, u.created_at, u.updated_at
               FROM users u
               JOIN booking_settings bs ON bs.trainer_id = u.id
               WHERE bs.booking_page_slug = ? AND bs.enable_online_booking = 1 AND u.is_active = 1`
    return r.getOne(ctx, q, slug)
}

func (r *UserRepo) getOne(ctx context.Context, q string, args ...interface{}) (*model.User, error) {
    var u model.User
    err := r.db.QueryRowContext(ctx, q, args...).
        Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Role, &u.FullName, &u.BusinessName, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
    if err == sql.ErrNoRows {
        return nil, ErrNotFound
    }
    if err != nil {
        return nil, err
    }
    return &u, nil
}
