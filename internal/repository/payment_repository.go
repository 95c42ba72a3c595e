package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/peakform/trainer-crm/internal/model"
)

// PaymentRepo provides access to the payments table.
type PaymentRepo struct {
	db *sql.DB
}

// NewPaymentRepo returns a new PaymentRepo bound to the given
// database.
func NewPaymentRepo(db *sql.DB) *PaymentRepo { return &PaymentRepo{db: db} }

const paymentColumns = `id, trainer_id, client_id, amount_cents, currency, status, stripe_intent_id, description, created_at, updated_at`

// Create inserts a payment record tied to a Stripe PaymentIntent.
func (r *PaymentRepo) Create(ctx context.Context, p *model.Payment) error {
	const q = `INSERT INTO payments (trainer_id, client_id, amount_cents, currency, status, stripe_intent_id, description)
               VALUES (?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q,
		p.TrainerID, p.ClientID, p.AmountCents, p.Currency, p.Status, p.StripeIntentID, p.Description)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = uint64(id)
	return r.db.QueryRowContext(ctx, `SELECT `+paymentColumns+` FROM payments WHERE id = ?`, p.ID).
		Scan(scanPaymentDest(p)...)
}

// List returns the trainer's payments newest first, optionally scoped
// to one client.
func (r *PaymentRepo) List(ctx context.Context, trainerID, clientID uint64) ([]model.Payment, error) {
	q := `SELECT ` + paymentColumns + ` FROM payments WHERE trainer_id = ?`
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

	var out []model.Payment
	for rows.Next() {
		var p model.Payment
		if err := rows.Scan(scanPaymentDest(&p)...); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// RevenueStats carries the dashboard revenue figures, succeeded
// payments only.
type RevenueStats struct {
	TotalCents  int64
	RecentCents int64 // succeeded payments created at or after the cutoff
}

// Revenue sums succeeded payments for the trainer, total and since the
// given cutoff, in one aggregate query.
func (r *PaymentRepo) Revenue(ctx context.Context, trainerID uint64, since time.Time) (*RevenueStats, error) {
	const q = `SELECT COALESCE(SUM(amount_cents), 0),
	                  COALESCE(SUM(CASE WHEN created_at >= ? THEN amount_cents ELSE 0 END), 0)
	           FROM payments
	           WHERE trainer_id = ? AND status = 'succeeded'`
	var st RevenueStats
	if err := r.db.QueryRowContext(ctx, q, since, trainerID).Scan(&st.TotalCents, &st.RecentCents); err != nil {
		return nil, err
	}
	return &st, nil
}

// UpdateStatusByIntent records the outcome a Stripe webhook reported
// for an intent.  Unknown intents return ErrNotFound; the webhook
// handler treats that as ignorable.
func (r *PaymentRepo) UpdateStatusByIntent(ctx context.Context, intentID, status string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE payments SET status = ? WHERE stripe_intent_id = ?`, status, intentID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func scanPaymentDest(p *model.Payment) []interface{} {
	return []interface{}{
		&p.ID, &p.TrainerID, &p.ClientID, &p.AmountCents, &p.Currency, &p.Status,
		&p.StripeIntentID, &p.Description, &p.CreatedAt, &p.UpdatedAt,
	}
}
