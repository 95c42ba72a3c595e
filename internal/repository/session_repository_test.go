package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMock(t *testing.T) (*SessionRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewSessionRepo(db), mock
}

func TestLockTrainerTx(t *testing.T) {
	repo, mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT id FROM users WHERE id = \? FOR UPDATE`).
		WithArgs(uint64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))

	tx, err := repo.DB().Begin()
	require.NoError(t, err)
	defer tx.Rollback()

	require.NoError(t, repo.LockTrainerTx(context.Background(), tx, 7))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLockTrainerTxUnknownTrainer(t *testing.T) {
	repo, mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT id FROM users WHERE id = \? FOR UPDATE`).
		WithArgs(uint64(99)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	tx, err := repo.DB().Begin()
	require.NoError(t, err)
	defer tx.Rollback()

	assert.ErrorIs(t, repo.LockTrainerTx(context.Background(), tx, 99), ErrNotFound)
}

func TestFindConflictTxFree(t *testing.T) {
	repo, mock := newMock(t)
	start := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT id, title, scheduled_start FROM sessions`).
		WithArgs(uint64(7), uint64(0), start, start, end, end, start, end).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "scheduled_start"}))

	tx, err := repo.DB().Begin()
	require.NoError(t, err)
	defer tx.Rollback()

	conflict, err := repo.FindConflictTx(context.Background(), tx, 7, start, end, 0)
	require.NoError(t, err)
	assert.Nil(t, conflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindConflictTxClash(t *testing.T) {
	repo, mock := newMock(t)
	start := time.Date(2026, 3, 2, 10, 30, 0, 0, time.UTC)
	end := start.Add(time.Hour)
	existing := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT id, title, scheduled_start FROM sessions`).
		WithArgs(uint64(7), uint64(12), start, start, end, end, start, end).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "scheduled_start"}).
			AddRow(3, "Training with Dana", existing))

	tx, err := repo.DB().Begin()
	require.NoError(t, err)
	defer tx.Rollback()

	conflict, err := repo.FindConflictTx(context.Background(), tx, 7, start, end, 12)
	require.NoError(t, err)
	require.NotNil(t, conflict)
	assert.Equal(t, uint64(3), conflict.SessionID)
	assert.Equal(t, "Training with Dana", conflict.Title)
	assert.Contains(t, conflict.Error(), "Training with Dana")
	assert.NoError(t, mock.ExpectationsWereMet())
}
