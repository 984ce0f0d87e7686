package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/wealthpath/notifications/internal/model"
)

var ErrCategoryNotFound = errors.New("category not found")

type BudgetRepository struct {
	db *sqlx.DB
}

func NewBudgetRepository(db *sqlx.DB) *BudgetRepository {
	return &BudgetRepository{db: db}
}

// ListByUser returns every budget row belonging to the user.
func (r *BudgetRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Budget, error) {
	var budgets []model.Budget
	query := `
		SELECT id, user_id, category_id, amount, currency, period, created_at, updated_at
		FROM budgets
		WHERE user_id = $1
		ORDER BY category_id`
	err := r.db.SelectContext(ctx, &budgets, query, userID)
	return budgets, err
}

type CategoryRepository struct {
	db *sqlx.DB
}

func NewCategoryRepository(db *sqlx.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

func (r *CategoryRepository) GetName(ctx context.Context, id uuid.UUID) (string, error) {
	var name string
	query := `SELECT name FROM categories WHERE id = $1`
	err := r.db.GetContext(ctx, &name, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrCategoryNotFound
	}
	return name, err
}
