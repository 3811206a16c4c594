package projection

import (
	"fmt"

	"fintrack/internal/core"
)

// DayClamper is the strategy that places an anchor day-of-month inside a
// target period. Each implementation decides what happens when the day
// does not exist in that month (day 31 in April, day 30 in February).
type DayClamper interface {
	Place(target core.Period, day int) core.Date
}

// TargetMonthEnd clamps a missing day to the last day of the target month.
// This is the calendar-correct policy and the default.
type TargetMonthEnd struct{}

// Place returns day inside target, or target's last day when day overflows.
func (TargetMonthEnd) Place(target core.Period, day int) core.Date {
	last := target.Days()
	if day > last {
		day = last
	}
	return core.NewDate(target.Year, int(target.Month), day)
}

// PreviousMonthEnd reproduces the legacy behavior that rolls a missing day
// back to day 0 of the target month, i.e. the last day of the previous
// month. The resulting date lies outside the target period.
type PreviousMonthEnd struct{}

// Place returns day inside target, or the day before target starts.
func (PreviousMonthEnd) Place(target core.Period, day int) core.Date {
	if day > target.Days() {
		return core.NewDate(target.Year, int(target.Month), 0)
	}
	return core.NewDate(target.Year, int(target.Month), day)
}

const (
	ClampTargetMonth   = "target_month"
	ClampPreviousMonth = "previous_month"
)

var clampStrategies = map[string]DayClamper{
	ClampTargetMonth:   TargetMonthEnd{},
	ClampPreviousMonth: PreviousMonthEnd{},
}

// GetDayClamper returns the clamp strategy registered under name.
func GetDayClamper(name string) (DayClamper, error) {
	c, ok := clampStrategies[name]
	if !ok {
		return nil, fmt.Errorf("unknown clamp policy: %s", name)
	}
	return c, nil
}
