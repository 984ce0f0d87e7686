package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TransactionTypeIncome   TransactionType = "income"
	TransactionTypeExpense  TransactionType = "expense"
	TransactionTypeTransfer TransactionType = "transfer"
)

type Category struct {
	ID        uuid.UUID       `db:"id" json:"id"`
	UserID    uuid.UUID       `db:"user_id" json:"userId"`
	Name      string          `db:"name" json:"name"`
	Type      TransactionType `db:"type" json:"type"`
	CreatedAt time.Time       `db:"created_at" json:"createdAt"`
}

// Budget is the monthly spending ceiling for one category.
type Budget struct {
	ID         uuid.UUID       `db:"id" json:"id"`
	UserID     uuid.UUID       `db:"user_id" json:"userId"`
	CategoryID uuid.UUID       `db:"category_id" json:"categoryId"`
	Amount     decimal.Decimal `db:"amount" json:"amount"`
	Currency   string          `db:"currency" json:"currency"`
	Period     string          `db:"period" json:"period"` // monthly
	CreatedAt  time.Time       `db:"created_at" json:"createdAt"`
	UpdatedAt  time.Time       `db:"updated_at" json:"updatedAt"`
}

type Transaction struct {
	ID              uuid.UUID       `db:"id" json:"id"`
	UserID          uuid.UUID       `db:"user_id" json:"userId"`
	CategoryID      uuid.UUID       `db:"category_id" json:"categoryId"`
	Type            TransactionType `db:"type" json:"type"`
	Amount          decimal.Decimal `db:"amount" json:"amount"`
	TransactionDate time.Time       `db:"transaction_date" json:"transactionDate"`
	CreatedAt       time.Time       `db:"created_at" json:"createdAt"`
}

// BudgetWarning is a category whose month-to-date spend crossed the user's
// warning threshold.
type BudgetWarning struct {
	CategoryID   uuid.UUID       `json:"categoryId"`
	CategoryName string          `json:"categoryName"`
	Spent        decimal.Decimal `json:"spent"`
	BudgetAmount decimal.Decimal `json:"budgetAmount"`
	Percentage   decimal.Decimal `json:"percentage"`
	Currency     string          `json:"currency"`
}

// SpendingAnomaly is a category whose spend today exceeds its trailing baseline.
type SpendingAnomaly struct {
	CategoryID   uuid.UUID       `json:"categoryId"`
	CategoryName string          `json:"categoryName"`
	TodaySpent   decimal.Decimal `json:"todaySpent"`
	Average      decimal.Decimal `json:"average"`
	StdDev       decimal.Decimal `json:"stdDev"`
}
