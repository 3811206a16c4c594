package core

// CategoryAmount represents an amount aggregated by category.
type CategoryAmount struct {
	Category Category
	Amount   Money
}

// MonthOverview is a compact expense summary for a specific period.
type MonthOverview struct {
	Period     Period
	Total      Money
	ByCategory []CategoryAmount // first-seen order
}

// Overview aggregates the expenses of txs that fall inside p.
func Overview(txs []Transaction, p Period) MonthOverview {
	ov := MonthOverview{Period: p}
	index := map[Category]int{}
	for _, t := range txs {
		if !t.IsExpense() || !t.InPeriod(p) {
			continue
		}
		ov.Total = ov.Total.Add(t.Amount)
		i, ok := index[t.Category]
		if !ok {
			i = len(ov.ByCategory)
			index[t.Category] = i
			ov.ByCategory = append(ov.ByCategory, CategoryAmount{Category: t.Category})
		}
		ov.ByCategory[i].Amount = ov.ByCategory[i].Amount.Add(t.Amount)
	}
	return ov
}

// CategoryTotal returns the amount spent in c, zero when absent.
func (o MonthOverview) CategoryTotal(c Category) Money {
	for _, ca := range o.ByCategory {
		if ca.Category == c {
			return ca.Amount
		}
	}
	return Money{}
}
