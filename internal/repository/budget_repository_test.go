package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBudgetRepository_ListByUser(t *testing.T) {
	t.Parallel()

	db, mock := newMockDB(t)
	defer func() { _ = db.Close() }()
	repo := NewBudgetRepository(db)

	userID := uuid.New()
	catA, catB := uuid.New(), uuid.New()
	now := time.Now()

	rows := sqlmock.NewRows([]string{"id", "user_id", "category_id", "amount", "currency", "period", "created_at", "updated_at"}).
		AddRow(uuid.New(), userID, catA, "500.00", "USD", "monthly", now, now).
		AddRow(uuid.New(), userID, catB, "0", "USD", "monthly", now, now)

	mock.ExpectQuery(`SELECT (.+) FROM budgets WHERE user_id = \$1`).
		WithArgs(userID).
		WillReturnRows(rows)

	budgets, err := repo.ListByUser(context.Background(), userID)

	require.NoError(t, err)
	require.Len(t, budgets, 2)
	assert.Equal(t, catA, budgets[0].CategoryID)
	assert.True(t, decimal.NewFromInt(500).Equal(budgets[0].Amount))
	assert.True(t, budgets[1].Amount.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBudgetRepository_ListByUser_Error(t *testing.T) {
	t.Parallel()

	db, mock := newMockDB(t)
	defer func() { _ = db.Close() }()
	repo := NewBudgetRepository(db)

	mock.ExpectQuery(`SELECT (.+) FROM budgets`).
		WillReturnError(errors.New("connection reset"))

	budgets, err := repo.ListByUser(context.Background(), uuid.New())

	assert.Error(t, err)
	assert.Empty(t, budgets)
}

func TestCategoryRepository_GetName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		setup   func(sqlmock.Sqlmock, uuid.UUID)
		want    string
		wantErr error
	}{
		{
			name: "found",
			setup: func(m sqlmock.Sqlmock, id uuid.UUID) {
				m.ExpectQuery(`SELECT name FROM categories WHERE id = \$1`).
					WithArgs(id).
					WillReturnRows(sqlmock.NewRows([]string{"name"}).AddRow("Groceries"))
			},
			want: "Groceries",
		},
		{
			name: "missing",
			setup: func(m sqlmock.Sqlmock, id uuid.UUID) {
				m.ExpectQuery(`SELECT name FROM categories`).
					WithArgs(id).
					WillReturnRows(sqlmock.NewRows([]string{"name"}))
			},
			wantErr: ErrCategoryNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			db, mock := newMockDB(t)
			defer func() { _ = db.Close() }()
			repo := NewCategoryRepository(db)

			id := uuid.New()
			tt.setup(mock, id)

			name, err := repo.GetName(context.Background(), id)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, name)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
