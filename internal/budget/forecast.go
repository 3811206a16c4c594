package budget

import "fintrack/internal/core"

// Forecast is a pro-rata extrapolation of a month-to-date amount to the end
// of the month. Amounts are in minor units.
type Forecast struct {
	DaysPassed    int
	DaysRemaining int
	AvgDaily      float64
	Projected     float64
}

// ProRata extrapolates spent, observed up to asOf, linearly to month end.
// The divisor is at least one day.
func ProRata(spent core.Money, asOf core.Date) Forecast {
	daysPassed := asOf.Day()
	daysRemaining := asOf.Period().Days() - daysPassed
	avg := spent.Float() / float64(max(1, daysPassed))
	return Forecast{
		DaysPassed:    daysPassed,
		DaysRemaining: daysRemaining,
		AvgDaily:      avg,
		Projected:     spent.Float() + avg*float64(daysRemaining),
	}
}

// percentOf returns 100*part/whole. A zero whole yields +Inf or NaN, which
// callers avoid by validating limits first.
func percentOf(part, whole float64) float64 {
	return 100 * part / whole
}
