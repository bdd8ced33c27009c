package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/Dan9191/market-planner/internal/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockRepository(t *testing.T) (*Repository, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	return NewRepository(mockDB), mock, mockDB
}

func sampleDraft() *models.Draft {
	return &models.Draft{
		ID:           uuid.MustParse("6f1c1d5e-3d7a-4a8e-9a52-0b8f3c1f2e10"),
		Owner:        "42",
		GeneratedAt:  time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC),
		StartDate:    models.NewDate(2024, time.January, 1),
		EndDate:      models.NewDate(2024, time.January, 31),
		BaseCurrency: "USD",
		Entries: []models.ScheduleEntry{{
			Date:        models.NewDate(2024, time.January, 1),
			CompanyID:   3,
			CompanyName: "Acme",
			Amount:      decimal.RequireFromString("12.5"),
			Priority:    models.PriorityUrgent,
			DaysLeft:    4,
			IsUrgent:    true,
			Currency:    "USD",
		}},
	}
}

func TestRepository_Migrate(t *testing.T) {
	repo, mock, mockDB := newMockRepository(t)
	defer mockDB.Close()

	mock.ExpectExec(`CREATE SCHEMA IF NOT EXISTS planner`).WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.Migrate(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_SaveDraft(t *testing.T) {
	t.Run("replaces draft and clears overlay", func(t *testing.T) {
		repo, mock, mockDB := newMockRepository(t)
		defer mockDB.Close()
		draft := sampleDraft()

		mock.ExpectBegin()
		mock.ExpectExec(`DELETE FROM planner.draft_paid_items WHERE owner = \$1`).
			WithArgs("42").
			WillReturnResult(sqlmock.NewResult(0, 2))
		mock.ExpectExec(`INSERT INTO planner.drafts .* ON CONFLICT \(owner\) DO UPDATE`).
			WithArgs("42", draft.ID.String(), sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		require.NoError(t, repo.SaveDraft(context.Background(), draft))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rolls back on insert failure", func(t *testing.T) {
		repo, mock, mockDB := newMockRepository(t)
		defer mockDB.Close()

		mock.ExpectBegin()
		mock.ExpectExec(`DELETE FROM planner.draft_paid_items`).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec(`INSERT INTO planner.drafts`).WillReturnError(errors.New("disk full"))
		mock.ExpectRollback()

		err := repo.SaveDraft(context.Background(), sampleDraft())
		assert.ErrorContains(t, err, "failed to save draft")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRepository_FindDraft(t *testing.T) {
	t.Run("decodes stored payload", func(t *testing.T) {
		repo, mock, mockDB := newMockRepository(t)
		defer mockDB.Close()

		payload, err := json.Marshal(sampleDraft())
		require.NoError(t, err)
		mock.ExpectQuery(`SELECT payload FROM planner.drafts WHERE owner = \$1`).
			WithArgs("42").
			WillReturnRows(sqlmock.NewRows([]string{"payload"}).AddRow(payload))

		draft, err := repo.FindDraft(context.Background(), "42")
		require.NoError(t, err)
		require.Len(t, draft.Entries, 1)
		assert.Equal(t, "Acme", draft.Entries[0].CompanyName)
		assert.True(t, draft.Entries[0].Amount.Equal(decimal.RequireFromString("12.5")))
		assert.Equal(t, "2024-01-01", draft.Entries[0].Date.String())
		assert.Equal(t, models.PriorityUrgent, draft.Entries[0].Priority)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns ErrDraftNotFound", func(t *testing.T) {
		repo, mock, mockDB := newMockRepository(t)
		defer mockDB.Close()

		mock.ExpectQuery(`SELECT payload FROM planner.drafts`).
			WithArgs("7").
			WillReturnError(sql.ErrNoRows)

		_, err := repo.FindDraft(context.Background(), "7")
		assert.ErrorIs(t, err, ErrDraftNotFound)
	})
}

func TestRepository_DeleteDraft(t *testing.T) {
	repo, mock, mockDB := newMockRepository(t)
	defer mockDB.Close()

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM planner.draft_paid_items WHERE owner = \$1`).WithArgs("42").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM planner.drafts WHERE owner = \$1`).WithArgs("42").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.DeleteDraft(context.Background(), "42"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_PaidItems(t *testing.T) {
	repo, mock, mockDB := newMockRepository(t)
	defer mockDB.Close()

	mock.ExpectExec(`INSERT INTO planner.draft_paid_items .* ON CONFLICT \(owner, item_key\) DO NOTHING`).
		WithArgs("42", "2024-01-01-3").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`SELECT item_key FROM planner.draft_paid_items WHERE owner = \$1`).
		WithArgs("42").
		WillReturnRows(sqlmock.NewRows([]string{"item_key"}).AddRow("2024-01-01-3").AddRow("2024-01-02-5"))

	require.NoError(t, repo.MarkItemPaid(context.Background(), "42", "2024-01-01-3"))
	paid, err := repo.PaidItems(context.Background(), "42")
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"2024-01-01-3": true, "2024-01-02-5": true}, paid)
	assert.NoError(t, mock.ExpectationsWereMet())
}
