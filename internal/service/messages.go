package service

import (
	"fmt"

	"github.com/wealthpath/notifications/internal/model"
	"github.com/wealthpath/notifications/pkg/currency"
)

func dailyReminderMessage() (title, body string) {
	return "Daily reminder", "Don't forget to record today's expenses."
}

// budgetWarningMessage escalates the wording once the budget is used up.
func budgetWarningMessage(w model.BudgetWarning) (title, body string) {
	pct := w.Percentage.Round(0).IntPart()
	spent := currency.Format(w.Spent, w.Currency)
	limit := currency.Format(w.BudgetAmount, w.Currency)

	if w.Percentage.GreaterThanOrEqual(hundred) {
		return "Budget exceeded",
			fmt.Sprintf("You've spent %s of your %s %s budget (%d%%).", spent, limit, w.CategoryName, pct)
	}
	return "Budget alert",
		fmt.Sprintf("You've used %d%% of your %s budget (%s of %s).", pct, w.CategoryName, spent, limit)
}

func anomalyMessage(a model.SpendingAnomaly) (title, body string) {
	return "Unusual spending",
		fmt.Sprintf("You spent %s on %s today, well above your usual %s.",
			currency.Format(a.TodaySpent, currency.DefaultCode), a.CategoryName,
			currency.Format(a.Average, currency.DefaultCode))
}
