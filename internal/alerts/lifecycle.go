package alerts

import (
	"time"

	"fintrack/internal/core"
)

// Merge appends the generated alerts whose id is not already present.
// Existing alerts keep their read and dismissed state. added lists only the
// alerts that were new.
func Merge(existing, generated []Alert) (merged, added []Alert) {
	seen := make(map[string]struct{}, len(existing)+len(generated))
	merged = make([]Alert, 0, len(existing)+len(generated))
	for _, a := range existing {
		seen[a.ID] = struct{}{}
		merged = append(merged, a)
	}
	for _, a := range generated {
		if _, ok := seen[a.ID]; ok {
			continue
		}
		seen[a.ID] = struct{}{}
		merged = append(merged, a)
		added = append(added, a)
	}
	return merged, added
}

// MarkRead marks the alert with id as read.
func MarkRead(alerts []Alert, id string) ([]Alert, bool) {
	return update(alerts, id, func(a *Alert) { a.IsRead = true })
}

// Dismiss hides the alert with id. A dismissed alert is also read.
func Dismiss(alerts []Alert, id string) ([]Alert, bool) {
	return update(alerts, id, func(a *Alert) {
		a.IsRead = true
		a.IsDismissed = true
	})
}

func update(alerts []Alert, id string, fn func(*Alert)) ([]Alert, bool) {
	out := append([]Alert(nil), alerts...)
	for i := range out {
		if out[i].ID == id {
			fn(&out[i])
			return out, true
		}
	}
	return out, false
}

// Prune drops alerts created more than retention before now. Alerts without
// a creation date are kept, and so are alerts of now's month or later: their
// ids would be generated again and come back unread.
func Prune(alerts []Alert, retention time.Duration, now core.Date) []Alert {
	cutoff := core.DateOf(now.Add(-retention))
	current := now.Period()
	out := make([]Alert, 0, len(alerts))
	for _, a := range alerts {
		if p, err := core.ParsePeriod(a.Period); err == nil && !p.Before(current) {
			out = append(out, a)
			continue
		}
		if !a.CreatedAt.IsZero() && a.CreatedAt.Before(cutoff) {
			continue
		}
		out = append(out, a)
	}
	return out
}

// Unread returns the alerts neither read nor dismissed.
func Unread(alerts []Alert) []Alert {
	var out []Alert
	for _, a := range alerts {
		if !a.IsRead && !a.IsDismissed {
			out = append(out, a)
		}
	}
	return out
}
