package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/wealthpath/notifications/internal/model"
)

type TransactionRepository struct {
	db *sqlx.DB
}

func NewTransactionRepository(db *sqlx.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

// SumExpenses totals expense records of one category with from <= transaction_date < to.
// Only the calendar dates of from and to are used.
func (r *TransactionRepository) SumExpenses(ctx context.Context, userID, categoryID uuid.UUID, from, to time.Time) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(amount), 0)
		FROM transactions
		WHERE user_id = $1 AND category_id = $2 AND type = 'expense'
		AND transaction_date >= $3::date AND transaction_date < $4::date`

	var spent decimal.Decimal
	err := r.db.GetContext(ctx, &spent, query, userID, categoryID, from, to)
	return spent, err
}

// ListExpenses returns expense records with from <= transaction_date < to,
// optionally restricted to one category.
func (r *TransactionRepository) ListExpenses(ctx context.Context, userID uuid.UUID, categoryID *uuid.UUID, from, to time.Time) ([]model.Transaction, error) {
	var transactions []model.Transaction
	query := `
		SELECT id, user_id, category_id, type, amount, transaction_date, created_at
		FROM transactions
		WHERE user_id = $1 AND type = 'expense'
		AND ($2::uuid IS NULL OR category_id = $2)
		AND transaction_date >= $3::date AND transaction_date < $4::date
		ORDER BY transaction_date`
	err := r.db.SelectContext(ctx, &transactions, query, userID, categoryID, from, to)
	return transactions, err
}
