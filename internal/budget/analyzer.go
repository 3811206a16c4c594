// Package budget computes budget consumption, pro-rata overspend forecasts
// and discretionary spending adjustments for the calendar month of a given
// evaluation date.
package budget

import (
	"log/slog"
	"math"

	"fintrack/internal/core"
	"fintrack/internal/log"
)

// Status is the consumption of one active limit during the current month.
type Status struct {
	Limit               core.BudgetLimit `json:"limit"`
	Spent               core.Money       `json:"spent"`
	Remaining           core.Money       `json:"remaining"`
	PercentageUsed      float64          `json:"percentageUsed"`
	ProjectedSpend      core.Money       `json:"projectedSpend"`
	ProjectedPercentage float64          `json:"projectedPercentage"`
	WillExceed          bool             `json:"willExceed"`
	IsOverBudget        bool             `json:"isOverBudget"`
}

// OverspendProjection forecasts whether total spending exceeds the monthly
// income. Only WillOverspend is set when no overspend is predicted.
type OverspendProjection struct {
	WillOverspend          bool          `json:"willOverspend"`
	Spent                  core.Money    `json:"spent"`
	ProjectedSpend         core.Money    `json:"projectedSpend"`
	DaysRemaining          int           `json:"daysRemaining,omitempty"`
	DaysUntilOverspend     int           `json:"daysUntilOverspend,omitempty"`
	ProjectedOverspendDate core.Date     `json:"projectedOverspendDate"`
	CategoryAtRisk         core.Category `json:"categoryAtRisk,omitempty"`
	RecommendedDailyLimit  core.Money    `json:"recommendedDailyLimit"`
}

// Analyzer evaluates budgets over a merged (real plus projected) view.
type Analyzer struct {
	logger *slog.Logger
}

// NewAnalyzer creates an analyzer. A nil logger falls back to slog.Default.
func NewAnalyzer(logger *slog.Logger) *Analyzer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Analyzer{logger: logger}
}

// Status returns one entry per active, valid limit, in input order.
func (a *Analyzer) Status(txs []core.Transaction, limits []core.BudgetLimit, asOf core.Date) []Status {
	month := asOf.Period()
	expenses := monthExpenses(txs, month)

	out := make([]Status, 0, len(limits))
	for _, l := range limits {
		if !l.IsActive {
			continue
		}
		if err := l.Validate(); err != nil {
			a.logger.Warn("Skipping invalid budget limit",
				log.FieldComponent, log.ComponentBudget,
				log.FieldLimitID, l.ID,
				log.FieldError, err)
			continue
		}

		var spent core.Money
		for _, t := range expenses {
			if l.Matches(t) {
				spent = spent.Add(t.Amount)
			}
		}

		f := ProRata(spent, asOf)
		limit := l.MonthlyLimit.Float()
		out = append(out, Status{
			Limit:               l,
			Spent:               spent,
			Remaining:           l.MonthlyLimit.Sub(spent),
			PercentageUsed:      percentOf(spent.Float(), limit),
			ProjectedSpend:      core.MoneyFromFloat(f.Projected),
			ProjectedPercentage: percentOf(f.Projected, limit),
			WillExceed:          f.Projected > limit,
			IsOverBudget:        spent.Cents > l.MonthlyLimit.Cents,
		})
	}
	return out
}

// OverspendProjection applies the pro-rata forecast to every expense of the
// month and compares it with monthlyIncome.
func (a *Analyzer) OverspendProjection(txs []core.Transaction, monthlyIncome core.Money, asOf core.Date) OverspendProjection {
	ov := core.Overview(txs, asOf.Period())
	f := ProRata(ov.Total, asOf)
	if f.Projected <= monthlyIncome.Float() {
		return OverspendProjection{}
	}

	remaining := monthlyIncome.Sub(ov.Total)
	daysUntil := 0
	recommended := core.Money{}
	if remaining.Cents > 0 {
		daysUntil = int(math.Floor(remaining.Float() / f.AvgDaily))
		recommended = core.MoneyFromFloat(remaining.Float() / float64(max(1, f.DaysRemaining)))
	}

	return OverspendProjection{
		WillOverspend:          true,
		Spent:                  ov.Total,
		ProjectedSpend:         core.MoneyFromFloat(f.Projected),
		DaysRemaining:          f.DaysRemaining,
		DaysUntilOverspend:     daysUntil,
		ProjectedOverspendDate: asOf.AddDays(daysUntil),
		CategoryAtRisk:         categoryAtRisk(ov, asOf),
		RecommendedDailyLimit:  recommended,
	}
}

// categoryAtRisk is the category with the highest projected month-end
// spend. Ties keep the first category seen.
func categoryAtRisk(ov core.MonthOverview, asOf core.Date) core.Category {
	var (
		best    core.Category
		highest = -1.0
	)
	for _, ca := range ov.ByCategory {
		if p := ProRata(ca.Amount, asOf).Projected; p > highest {
			best, highest = ca.Category, p
		}
	}
	return best
}

func monthExpenses(txs []core.Transaction, p core.Period) []core.Transaction {
	var out []core.Transaction
	for _, t := range txs {
		if t.IsExpense() && t.InPeriod(p) {
			out = append(out, t)
		}
	}
	return out
}
