package repository

import (
    "context"
    "database/sql"
    "time"

    "github.com/peakform/trainer-crm/internal/model"
)

// TokenRepo manages refresh tokens.  Raw tokens never touch the
// database; callers hash them first (utils.HashRefreshRaw).
type TokenRepo struct {
    db *sql.DB
}

// NewTokenRepo returns a new TokenRepo bound to the given database.
func NewTokenRepo(db *sql.DB) *TokenRepo { return &TokenRepo{db: db} }

// Store persists a hashed refresh token for a user.
func (r *TokenRepo) Store(ctx context.Context, userID uint64, tokenHash string, expiresAt time.Time) error {
    const q = `INSERT INTO refresh_tokens (user_id, token_hash, expires_at) VALUES (?, ?, ?)`
    _, err := r.db.ExecContext(ctx, q, userID, tokenHash, expiresAt)
    return err
}

// FindActive returns the refresh token matching the hash if it is
// unrevoked and unexpired, or ErrNotFound.
func (r *TokenRepo) FindActive(ctx context.Context, tokenHash string) (*model.RefreshToken, error) {
    const q = `SELECT id, user_id, token_hash, expires_at, revoked_at, created_at
               FROM refresh_tokens
               WHERE token_hash = ? AND revoked_at IS NULL AND expires_at > UTC_TIMESTAMP()`
    var t model.RefreshToken
    err := r.db.QueryRowContext(ctx, q, tokenHash).
        Scan(&t.ID, &t.UserID, &t.TokenHash, &t.ExpiresAt, &t.RevokedAt, &t.CreatedAt)
    if err == sql.ErrNoRows {
        return nil, ErrNotFound
    }
    if err != nil {
        return nil, err
    }
    return &t, nil
}

// Revoke marks a refresh token as revoked.  Revoking an already
// revoked or unknown token returns ErrNotFound.
func (r *TokenRepo) Revoke(ctx context.Context, tokenHash string) error {
    const q = `UPDATE refresh_tokens SET revoked_at = UTC_TIMESTAMP() WHERE token_hash = ? AND revoked_at IS NULL`
    res, err := r.db.ExecContext(ctx, q, tokenHash)
    if err != nil {
        return err
    }
    if n, _ := res.RowsAffected(); n == 0 {
        return ErrNotFound
    }
    return nil
}

// RevokeAllForUser revokes every active refresh token of a user.
func (r *TokenRepo) RevokeAllForUser(ctx context.Context, userID uint64) error {
    const q = `UPDATE refresh_tokens SET revoked_at = UTC_TIMESTAMP() WHERE user_id = ? AND revoked_at IS NULL`
    _, err := r.db.ExecContext(ctx, q, userID)
    return err
}
