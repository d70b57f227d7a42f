package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"next_read/models"
)

func newMock(t *testing.T) (*LeadStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewLeadStore(db), mock
}

func TestSaveLead(t *testing.T) {
	store, mock := newMock(t)
	rec := models.LeadRecord{
		ID:               gofakeit.UUID(),
		Email:            gofakeit.Email(),
		SuggestedArticle: gofakeit.BookTitle(),
		Subscribed:       true,
		Status:           models.LeadStatusDelivered,
		CreatedAt:        time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC),
	}

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO lead_submissions")).
		WithArgs(rec.ID, rec.Email, rec.SuggestedArticle, true, models.LeadStatusDelivered, "", rec.CreatedAt).
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, store.SaveLead(context.Background(), rec))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveLead_Error(t *testing.T) {
	store, mock := newMock(t)
	mock.ExpectExec("INSERT INTO lead_submissions").WillReturnError(errors.New("connection refused"))

	err := store.SaveLead(context.Background(), models.LeadRecord{ID: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insert lead x")
}

func TestPurgeLeadsBefore(t *testing.T) {
	store, mock := newMock(t)
	cutoff := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM lead_submissions WHERE created_at < ?")).
		WithArgs(cutoff).
		WillReturnResult(sqlmock.NewResult(0, 7))

	n, err := store.PurgeLeadsBefore(context.Background(), cutoff)
	require.NoError(t, err)
	assert.Equal(t, int64(7), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCountByStatus(t *testing.T) {
	store, mock := newMock(t)
	since := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery("SELECT status, COUNT").
		WithArgs(since).
		WillReturnRows(sqlmock.NewRows([]string{"status", "count"}).
			AddRow(models.LeadStatusDelivered, 12).
			AddRow(models.LeadStatusFailed, 2))

	counts, err := store.CountByStatus(context.Background(), since)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"delivered": 12, "failed": 2}, counts)
}

func TestEnsureSchema(t *testing.T) {
	store, mock := newMock(t)
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS lead_submissions").WillReturnResult(sqlmock.NewResult(0, 0))
	require.NoError(t, store.EnsureSchema(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abcdef", 3))
	assert.Equal(t, "ab", truncate("ab", 3))
}
