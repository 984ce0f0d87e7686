package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wealthpath/notifications/internal/model"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	mockDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock: %v", err)
	}
	sqlxDB := sqlx.NewDb(mockDB, "sqlmock")
	return sqlxDB, mock
}

func TestTransactionRepository_SumExpenses(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		rows    *sqlmock.Rows
		err     error
		want    decimal.Decimal
		wantErr bool
	}{
		{
			name: "with spending",
			rows: sqlmock.NewRows([]string{"coalesce"}).AddRow("412.50"),
			want: decimal.RequireFromString("412.50"),
		},
		{
			name: "no records",
			rows: sqlmock.NewRows([]string{"coalesce"}).AddRow("0"),
			want: decimal.Zero,
		},
		{
			name:    "database error",
			err:     errors.New("timeout"),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			db, mock := newMockDB(t)
			defer func() { _ = db.Close() }()
			repo := NewTransactionRepository(db)

			userID, categoryID := uuid.New(), uuid.New()
			from := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
			to := time.Date(2025, 3, 16, 0, 0, 0, 0, time.UTC)

			exp := mock.ExpectQuery(`SELECT COALESCE\(SUM\(amount\), 0\)\s+FROM transactions .+ transaction_date >= \$3::date AND transaction_date < \$4::date`).
				WithArgs(userID, categoryID, from, to)
			if tt.err != nil {
				exp.WillReturnError(tt.err)
			} else {
				exp.WillReturnRows(tt.rows)
			}

			spent, err := repo.SumExpenses(context.Background(), userID, categoryID, from, to)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(spent), "got %s", spent)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestTransactionRepository_ListExpenses(t *testing.T) {
	t.Parallel()

	db, mock := newMockDB(t)
	defer func() { _ = db.Close() }()
	repo := NewTransactionRepository(db)

	userID, categoryID := uuid.New(), uuid.New()
	from := time.Date(2025, 2, 14, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 3, 16, 0, 0, 0, 0, time.UTC)
	day := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows([]string{"id", "user_id", "category_id", "type", "amount", "transaction_date", "created_at"}).
		AddRow(uuid.New(), userID, categoryID, "expense", "25.00", day, day).
		AddRow(uuid.New(), userID, categoryID, "expense", "40.10", day, day)

	mock.ExpectQuery(`SELECT (.+) FROM transactions\s+WHERE user_id = \$1 AND type = 'expense' .+ transaction_date >= \$3::date AND transaction_date < \$4::date`).
		WithArgs(userID, sqlmock.AnyArg(), from, to).
		WillReturnRows(rows)

	txs, err := repo.ListExpenses(context.Background(), userID, &categoryID, from, to)

	require.NoError(t, err)
	require.Len(t, txs, 2)
	assert.Equal(t, model.TransactionTypeExpense, txs[0].Type)
	assert.True(t, decimal.RequireFromString("40.10").Equal(txs[1].Amount))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionRepository_ListExpenses_AllCategories(t *testing.T) {
	t.Parallel()

	db, mock := newMockDB(t)
	defer func() { _ = db.Close() }()
	repo := NewTransactionRepository(db)

	userID := uuid.New()
	from := time.Now().AddDate(0, 0, -30)
	to := time.Now()

	mock.ExpectQuery(`SELECT (.+) FROM transactions`).
		WithArgs(userID, nil, from, to).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "category_id", "type", "amount", "transaction_date", "created_at"}))

	txs, err := repo.ListExpenses(context.Background(), userID, nil, from, to)

	require.NoError(t, err)
	assert.Empty(t, txs)
	assert.NoError(t, mock.ExpectationsWereMet())
}
