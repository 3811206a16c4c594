package alerts

import (
	"fmt"

	"fintrack/internal/core"
)

const (
	// TrailingMonths is the history averaged by the unusual spending rule.
	TrailingMonths = 3
	// SubscriptionWindowDays bounds how recent a new subscription charge is.
	SubscriptionWindowDays = 7
	// InvoiceWindowDays bounds how close an invoice due date is to asOf.
	InvoiceWindowDays = 30
)

type rule struct {
	typ      Type
	severity Severity
	eval     func(e *Engine, s snapshot, threshold float64) []Alert
}

// rules run in this order and alerts are emitted in the same order.
var rules = []rule{
	{TypeLimit80, SeverityWarning, limitNear},
	{TypeLimit100, SeverityDanger, limitExceeded},
	{TypeUnusualSpending, SeverityWarning, unusualSpending},
	{TypeNewSubscription, SeverityInfo, newSubscription},
	{TypeHighInvoice, SeverityWarning, highInvoice},
	{TypeOverspendProjection, SeverityDanger, overspendProjection},
}

func limitNear(_ *Engine, s snapshot, threshold float64) []Alert {
	var out []Alert
	for _, st := range s.statuses {
		if st.IsOverBudget || st.PercentageUsed < threshold || st.PercentageUsed >= 100 {
			continue
		}
		out = append(out, Alert{
			ID:    AlertID(TypeLimit80, st.Limit.ID, s.period),
			Title: "Budget almost used",
			Message: fmt.Sprintf("You have used %.0f%% of your %s budget (%s of %s).",
				st.PercentageUsed, st.Limit.Label(), st.Spent, st.Limit.MonthlyLimit),
			Scope: st.Limit.ID,
			Value: st.PercentageUsed,
		})
	}
	return out
}

func limitExceeded(_ *Engine, s snapshot, _ float64) []Alert {
	var out []Alert
	for _, st := range s.statuses {
		if !st.IsOverBudget {
			continue
		}
		out = append(out, Alert{
			ID:    AlertID(TypeLimit100, st.Limit.ID, s.period),
			Title: "Budget exceeded",
			Message: fmt.Sprintf("Your %s budget of %s is exceeded by %s.",
				st.Limit.Label(), st.Limit.MonthlyLimit, st.Spent.Sub(st.Limit.MonthlyLimit)),
			Scope: st.Limit.ID,
			Value: st.PercentageUsed,
		})
	}
	return out
}

func unusualSpending(_ *Engine, s snapshot, threshold float64) []Alert {
	var history []core.MonthOverview
	for i := 1; i <= TrailingMonths; i++ {
		history = append(history, core.Overview(s.Transactions, s.period.AddMonths(-i)))
	}

	var out []Alert
	for _, ca := range s.current.ByCategory {
		var sum core.Money
		for _, h := range history {
			sum = sum.Add(h.CategoryTotal(ca.Category))
		}
		mean := sum.Float() / TrailingMonths
		if mean <= 0 || ca.Amount.Float() <= mean*threshold/100 {
			continue
		}
		pct := 100 * ca.Amount.Float() / mean
		out = append(out, Alert{
			ID:    AlertID(TypeUnusualSpending, string(ca.Category), s.period),
			Title: "Unusual spending",
			Message: fmt.Sprintf("Spending on %s is %s this month, %.0f%% of the %d-month average of %s.",
				ca.Category, ca.Amount, pct, TrailingMonths, core.MoneyFromFloat(mean)),
			Scope: string(ca.Category),
			Value: pct,
		})
	}
	return out
}

func newSubscription(_ *Engine, s snapshot, threshold float64) []Alert {
	var (
		all   []core.Transaction
		total core.Money
	)
	for _, t := range s.Transactions {
		if t.IsProjected || !t.IsExpense() || t.Category != core.CategorySubscriptions {
			continue
		}
		all = append(all, t)
		total = total.Add(t.Amount)
	}
	if len(all) == 0 {
		return nil
	}
	avg := total.Float() / float64(len(all))

	var out []Alert
	for _, t := range all {
		if t.Date.IsZero() || t.Date.After(s.AsOf) || core.DaysBetween(t.Date, s.AsOf) > SubscriptionWindowDays {
			continue
		}
		if t.Amount.Float() <= avg*threshold/100 {
			continue
		}
		out = append(out, Alert{
			ID:    AlertID(TypeNewSubscription, t.ID, s.period),
			Title: "New subscription",
			Message: fmt.Sprintf("%q costs %s, above your average subscription of %s.",
				t.Description, t.Amount, core.MoneyFromFloat(avg)),
			Scope: t.ID,
			Value: t.Amount.Euros(),
		})
	}
	return out
}

func highInvoice(_ *Engine, s snapshot, threshold float64) []Alert {
	var total core.Money
	for _, inv := range s.Invoices {
		total = total.Add(inv.Total)
	}
	if len(s.Invoices) == 0 || total.Cents <= 0 {
		return nil
	}
	avg := total.Float() / float64(len(s.Invoices))

	var out []Alert
	for _, inv := range s.Invoices {
		if inv.DueDate.IsZero() || core.DaysBetween(inv.DueDate, s.AsOf) > InvoiceWindowDays {
			continue
		}
		if inv.Total.Float() <= avg*threshold/100 {
			continue
		}
		pct := 100 * inv.Total.Float() / avg
		out = append(out, Alert{
			ID:    AlertID(TypeHighInvoice, inv.ID, s.period),
			Title: "High card invoice",
			Message: fmt.Sprintf("The %s invoice due %s is %s, %.0f%% of your average invoice.",
				inv.Issuer, inv.DueDate, inv.Total, pct),
			Scope: inv.ID,
			Value: pct,
		})
	}
	return out
}

func overspendProjection(e *Engine, s snapshot, _ float64) []Alert {
	if s.MonthlyIncome.Cents <= 0 {
		return nil
	}
	p := e.analyzer.OverspendProjection(s.Transactions, s.MonthlyIncome, s.AsOf)
	if !p.WillOverspend || p.DaysRemaining <= 0 {
		return nil
	}
	msg := fmt.Sprintf("At the current pace you will spend %s against an income of %s. Overspend is expected on %s",
		p.ProjectedSpend, s.MonthlyIncome, p.ProjectedOverspendDate)
	if p.CategoryAtRisk != "" {
		msg += fmt.Sprintf(", driven by %s", p.CategoryAtRisk)
	}
	msg += fmt.Sprintf(". Keep daily spending under %s.", p.RecommendedDailyLimit)
	return []Alert{{
		ID:      AlertID(TypeOverspendProjection, "global", s.period),
		Title:   "Overspend projected",
		Message: msg,
		Scope:   "global",
		Value:   p.ProjectedSpend.Euros(),
	}}
}
