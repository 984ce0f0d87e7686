package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/wealthpath/notifications/internal/model"
	"github.com/wealthpath/notifications/internal/repository"
	"github.com/wealthpath/notifications/pkg/datetime"
)

// UnknownCategoryName labels categories that no longer resolve.
const UnknownCategoryName = "Uncategorized"

var hundred = decimal.NewFromInt(100)

// BudgetStore lists a user's monthly budgets.
type BudgetStore interface {
	ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Budget, error)
}

// ExpenseStore reads expense records over [from, to) by calendar date.
type ExpenseStore interface {
	SumExpenses(ctx context.Context, userID, categoryID uuid.UUID, from, to time.Time) (decimal.Decimal, error)
	ListExpenses(ctx context.Context, userID uuid.UUID, categoryID *uuid.UUID, from, to time.Time) ([]model.Transaction, error)
}

// CategoryStore resolves category display names.
type CategoryStore interface {
	GetName(ctx context.Context, id uuid.UUID) (string, error)
}

// BudgetThresholdEvaluator finds budgets whose month-to-date spend has
// crossed the user's warning percentage.
type BudgetThresholdEvaluator struct {
	budgets      BudgetStore
	expenses     ExpenseStore
	categories   CategoryStore
	storeTimeout time.Duration
	logger       *slog.Logger
}

func NewBudgetThresholdEvaluator(budgets BudgetStore, expenses ExpenseStore, categories CategoryStore, storeTimeout time.Duration, logger *slog.Logger) *BudgetThresholdEvaluator {
	if logger == nil {
		logger = slog.Default()
	}
	return &BudgetThresholdEvaluator{
		budgets:      budgets,
		expenses:     expenses,
		categories:   categories,
		storeTimeout: storeTimeout,
		logger:       logger,
	}
}

// Evaluate returns one warning per budget at or above threshold percent.
// now must already be in the user's zone; the month runs from the first of
// the local month through local today. Budgets with a non-positive amount
// are skipped.
func (e *BudgetThresholdEvaluator) Evaluate(ctx context.Context, userID uuid.UUID, threshold int, now time.Time) ([]model.BudgetWarning, error) {
	budgets, err := callStore(ctx, e.storeTimeout, e.logger, "list budgets", func(ctx context.Context) ([]model.Budget, error) {
		return e.budgets.ListByUser(ctx, userID)
	})
	if err != nil {
		return nil, err
	}

	from := datetime.CalendarDate(datetime.StartOfMonth(now))
	to := datetime.CalendarDate(now).AddDate(0, 0, 1)
	limit := decimal.NewFromInt(int64(threshold))

	var warnings []model.BudgetWarning
	for _, b := range budgets {
		if !b.Amount.IsPositive() {
			continue
		}

		spent, err := callStore(ctx, e.storeTimeout, e.logger, "sum expenses", func(ctx context.Context) (decimal.Decimal, error) {
			return e.expenses.SumExpenses(ctx, userID, b.CategoryID, from, to)
		})
		if err != nil {
			return nil, err
		}

		pct := BudgetPercentage(spent, b.Amount)
		if pct.LessThan(limit) {
			continue
		}

		name, err := categoryName(ctx, e.categories, e.storeTimeout, e.logger, b.CategoryID)
		if err != nil {
			return nil, err
		}

		warnings = append(warnings, model.BudgetWarning{
			CategoryID:   b.CategoryID,
			CategoryName: name,
			Spent:        spent,
			BudgetAmount: b.Amount,
			Percentage:   pct,
			Currency:     b.Currency,
		})
	}

	return warnings, nil
}

// BudgetPercentage returns spent as a percentage of amount. amount must be positive.
func BudgetPercentage(spent, amount decimal.Decimal) decimal.Decimal {
	return spent.Mul(hundred).Div(amount)
}

func categoryName(ctx context.Context, categories CategoryStore, timeout time.Duration, logger *slog.Logger, id uuid.UUID) (string, error) {
	name, err := callStore(ctx, timeout, logger, "get category name", func(ctx context.Context) (string, error) {
		return categories.GetName(ctx, id)
	})
	if errors.Is(err, repository.ErrCategoryNotFound) {
		return UnknownCategoryName, nil
	}
	return name, err
}
