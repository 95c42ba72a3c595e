package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPaymentMock(t *testing.T) (*PaymentRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewPaymentRepo(db), mock
}

func TestRevenue(t *testing.T) {
	repo, mock := newPaymentMock(t)
	since := time.Date(2026, 7, 29, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT COALESCE\(SUM\(amount_cents\), 0\), COALESCE\(SUM\(CASE WHEN created_at >= \? THEN amount_cents ELSE 0 END\), 0\) FROM payments WHERE trainer_id = \? AND status = 'succeeded'`).
		WithArgs(since, uint64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"total", "recent"}).AddRow(250000, 40000))

	st, err := repo.Revenue(context.Background(), 7, since)
	require.NoError(t, err)
	assert.Equal(t, int64(250000), st.TotalCents)
	assert.Equal(t, int64(40000), st.RecentCents)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRevenueEmpty(t *testing.T) {
	repo, mock := newPaymentMock(t)
	since := time.Date(2026, 7, 29, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT COALESCE\(SUM\(amount_cents\), 0\)`).
		WithArgs(since, uint64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"total", "recent"}).AddRow(0, 0))

	st, err := repo.Revenue(context.Background(), 7, since)
	require.NoError(t, err)
	assert.Zero(t, st.TotalCents)
	assert.Zero(t, st.RecentCents)
	assert.NoError(t, mock.ExpectationsWereMet())
}
