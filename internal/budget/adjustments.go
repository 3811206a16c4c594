package budget

import (
	"fmt"
	"sort"

	"fintrack/internal/core"
)

const (
	// ReductionRate is the share of the average spend suggested as a cut.
	ReductionRate = 0.20
	// LookbackMonths is how many full months feed the average.
	LookbackMonths = 3
)

// MinimumMeaningfulReduction hides suggestions too small to matter.
var MinimumMeaningfulReduction = core.Cents(2000)

// DiscretionaryCategories are the categories a user can cut back on.
var DiscretionaryCategories = []core.Category{
	core.CategoryFood,
	core.CategoryEntertainment,
	core.CategoryShopping,
	core.CategorySubscriptions,
	core.CategoryTravel,
}

// AdjustmentSuggestion proposes a lower monthly ceiling for one category.
type AdjustmentSuggestion struct {
	Category       core.Category `json:"category"`
	CurrentAverage core.Money    `json:"currentAverage"`
	SuggestedLimit core.Money    `json:"suggestedLimit"`
	Reduction      core.Money    `json:"reduction"`
	ShareOfIncome  float64       `json:"shareOfIncome"`
	Reason         string        `json:"reason"`
}

// Adjustments suggests a 20% cut on every discretionary category whose
// average over the three full months before asOf makes the cut meaningful.
// Suggestions are ordered by reduction. With a positive savingsTarget the
// list stops once the cumulative reduction reaches it.
func (a *Analyzer) Adjustments(txs []core.Transaction, monthlyIncome, savingsTarget core.Money, asOf core.Date) []AdjustmentSuggestion {
	current := asOf.Period()
	totals := map[core.Category]core.Money{}
	for i := 1; i <= LookbackMonths; i++ {
		for _, ca := range core.Overview(txs, current.AddMonths(-i)).ByCategory {
			totals[ca.Category] = totals[ca.Category].Add(ca.Amount)
		}
	}

	var out []AdjustmentSuggestion
	for _, c := range DiscretionaryCategories {
		avg := core.MoneyFromFloat(totals[c].Float() / LookbackMonths)
		reduction := core.MoneyFromFloat(avg.Float() * ReductionRate)
		if reduction.Cents < MinimumMeaningfulReduction.Cents {
			continue
		}
		s := AdjustmentSuggestion{
			Category:       c,
			CurrentAverage: avg,
			SuggestedLimit: avg.Sub(reduction),
			Reduction:      reduction,
			Reason: fmt.Sprintf("Average %s spending is %s per month; a %d%% cut saves %s.",
				c, avg, int(ReductionRate*100), reduction),
		}
		if monthlyIncome.Cents > 0 {
			s.ShareOfIncome = percentOf(avg.Float(), monthlyIncome.Float())
		}
		out = append(out, s)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Reduction.Cents > out[j].Reduction.Cents
	})

	if savingsTarget.Cents <= 0 {
		return out
	}
	var saved core.Money
	for i, s := range out {
		saved = saved.Add(s.Reduction)
		if saved.Cents >= savingsTarget.Cents {
			return out[:i+1]
		}
	}
	return out
}
