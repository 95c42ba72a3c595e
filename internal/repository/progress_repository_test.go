package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/peakform/trainer-crm/internal/model"
)

func newProgressMock(t *testing.T) (*ProgressRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewProgressRepo(db), mock
}

var progressCols = []string{
	"id", "trainer_id", "client_id", "entry_date", "weight", "body_fat_percentage", "muscle_mass",
	"chest", "waist", "hips", "thigh", "arm", "custom_metrics", "notes", "mood_rating", "energy_level",
	"created_at", "updated_at",
}

func TestProgressCreateReadsRowBack(t *testing.T) {
	repo, mock := newProgressMock(t)
	entryDate := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	now := time.Now().UTC()
	weight := 82.5

	mock.ExpectExec(`INSERT INTO progress_entries`).
		WillReturnResult(sqlmock.NewResult(11, 1))
	mock.ExpectQuery(`SELECT (.+) FROM progress_entries WHERE id = \?`).
		WithArgs(uint64(11)).
		WillReturnRows(sqlmock.NewRows(progressCols).AddRow(
			11, 7, 3, entryDate, weight, nil, nil,
			nil, nil, nil, nil, nil, nil, nil, nil, nil,
			now, now,
		))

	e := &model.ProgressEntry{TrainerID: 7, ClientID: 3, EntryDate: entryDate, Weight: &weight}
	require.NoError(t, repo.Create(context.Background(), e))
	assert.Equal(t, uint64(11), e.ID)
	require.NotNil(t, e.Weight)
	assert.Equal(t, weight, *e.Weight)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProgressListForClientOrdering(t *testing.T) {
	repo, mock := newProgressMock(t)
	since := time.Date(2026, 5, 30, 0, 0, 0, 0, time.UTC)
	now := time.Now().UTC()

	mock.ExpectQuery(`SELECT (.+) FROM progress_entries WHERE trainer_id = \? AND client_id = \? AND entry_date >= \? ORDER BY entry_date, id`).
		WithArgs(uint64(7), uint64(3), since).
		WillReturnRows(sqlmock.NewRows(progressCols).
			AddRow(1, 7, 3, time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC), 84.0, nil, nil,
				nil, nil, nil, nil, nil, nil, nil, nil, nil, now, now).
			AddRow(2, 7, 3, time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC), 82.5, nil, nil,
				nil, nil, nil, nil, nil, nil, nil, nil, nil, now, now))

	entries, err := repo.ListForClient(context.Background(), 7, 3, since)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.True(t, entries[0].EntryDate.Before(entries[1].EntryDate))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProgressDeleteMissing(t *testing.T) {
	repo, mock := newProgressMock(t)

	mock.ExpectExec(`DELETE FROM progress_entries WHERE id = \? AND trainer_id = \?`).
		WithArgs(uint64(99), uint64(7)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, repo.Delete(context.Background(), 7, 99), ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
