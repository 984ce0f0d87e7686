package service

import (
	"context"
	"log/slog"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/wealthpath/notifications/internal/model"
	"github.com/wealthpath/notifications/pkg/datetime"
)

const (
	DefaultAnomalyLookbackDays     = 30
	DefaultAnomalyStdDevMultiplier = 2.0
)

type AnomalyConfig struct {
	LookbackDays     int
	StdDevMultiplier float64
	// AggregateDaily builds the baseline from per-day totals instead of
	// individual record amounts.
	AggregateDaily bool
	StoreTimeout   time.Duration
}

// AnomalyDetector flags categories where today's spend is well above the
// trailing baseline.
type AnomalyDetector struct {
	expenses   ExpenseStore
	categories CategoryStore
	cfg        AnomalyConfig
	multiplier decimal.Decimal
	logger     *slog.Logger
}

func NewAnomalyDetector(expenses ExpenseStore, categories CategoryStore, cfg AnomalyConfig, logger *slog.Logger) *AnomalyDetector {
	if cfg.LookbackDays <= 0 {
		cfg.LookbackDays = DefaultAnomalyLookbackDays
	}
	if cfg.StdDevMultiplier <= 0 {
		cfg.StdDevMultiplier = DefaultAnomalyStdDevMultiplier
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &AnomalyDetector{
		expenses:   expenses,
		categories: categories,
		cfg:        cfg,
		multiplier: decimal.NewFromFloat(cfg.StdDevMultiplier),
		logger:     logger,
	}
}

// Evaluate compares today's spend per category against the preceding
// lookback window. now must already be in the user's zone; records are
// matched by calendar date. Categories with no history are never flagged.
func (d *AnomalyDetector) Evaluate(ctx context.Context, userID uuid.UUID, now time.Time) ([]model.SpendingAnomaly, error) {
	today := datetime.CalendarDate(now)
	todayKey := datetime.DateString(today)
	from := today.AddDate(0, 0, -d.cfg.LookbackDays)
	to := today.AddDate(0, 0, 1)

	records, err := callStore(ctx, d.cfg.StoreTimeout, d.logger, "list expenses", func(ctx context.Context) ([]model.Transaction, error) {
		return d.expenses.ListExpenses(ctx, userID, nil, from, to)
	})
	if err != nil {
		return nil, err
	}

	type bucket struct {
		history []decimal.Decimal
		daily   map[string]decimal.Decimal
		today   decimal.Decimal
	}
	buckets := make(map[uuid.UUID]*bucket)
	for _, r := range records {
		b, ok := buckets[r.CategoryID]
		if !ok {
			b = &bucket{daily: make(map[string]decimal.Decimal)}
			buckets[r.CategoryID] = b
		}
		// DATE columns carry no zone; the stored day is the user's day.
		day := datetime.DateString(r.TransactionDate)
		if day >= todayKey {
			b.today = b.today.Add(r.Amount)
			continue
		}
		b.history = append(b.history, r.Amount)
		b.daily[day] = b.daily[day].Add(r.Amount)
	}

	categoryIDs := make([]uuid.UUID, 0, len(buckets))
	for id := range buckets {
		categoryIDs = append(categoryIDs, id)
	}
	sort.Slice(categoryIDs, func(i, j int) bool { return categoryIDs[i].String() < categoryIDs[j].String() })

	var anomalies []model.SpendingAnomaly
	for _, id := range categoryIDs {
		b := buckets[id]

		baseline := b.history
		if d.cfg.AggregateDaily {
			baseline = make([]decimal.Decimal, 0, len(b.daily))
			for _, total := range b.daily {
				baseline = append(baseline, total)
			}
		}

		flagged, mean, stdDev := IsAnomalous(baseline, b.today, d.multiplier)
		if !flagged {
			continue
		}

		name, err := categoryName(ctx, d.categories, d.cfg.StoreTimeout, d.logger, id)
		if err != nil {
			return nil, err
		}

		anomalies = append(anomalies, model.SpendingAnomaly{
			CategoryID:   id,
			CategoryName: name,
			TodaySpent:   b.today,
			Average:      mean,
			StdDev:       stdDev,
		})
	}

	return anomalies, nil
}

// IsAnomalous reports whether today > mean + k*stddev of history and today is
// positive. stddev is the population standard deviation. An empty history is
// never anomalous.
func IsAnomalous(history []decimal.Decimal, today, k decimal.Decimal) (flagged bool, mean, stdDev decimal.Decimal) {
	if len(history) == 0 {
		return false, decimal.Zero, decimal.Zero
	}

	n := decimal.NewFromInt(int64(len(history)))
	mean = decimal.Sum(decimal.Zero, history...).Div(n)

	variance := decimal.Zero
	for _, v := range history {
		diff := v.Sub(mean)
		variance = variance.Add(diff.Mul(diff))
	}
	variance = variance.Div(n)
	stdDev = decimal.NewFromFloat(math.Sqrt(variance.InexactFloat64()))

	limit := mean.Add(k.Mul(stdDev))
	return today.IsPositive() && today.GreaterThan(limit), mean, stdDev
}
