package projection

import (
	"reflect"
	"testing"
	"time"

	"fintrack/internal/core"
)

func recurring(id, desc string, day core.Date) core.Transaction {
	return core.Transaction{
		ID:          id,
		Description: desc,
		Amount:      core.Cents(3990),
		Date:        day,
		Type:        core.Expense,
		Category:    core.CategorySubscriptions,
		IsRecurring: true,
		Tags:        []string{"streaming"},
	}
}

func period(y int, m time.Month) core.Period {
	return core.Period{Year: y, Month: m}
}

func TestProjectIsIdempotent(t *testing.T) {
	p := New()
	txs := []core.Transaction{recurring("netflix", "Netflix", core.NewDate(2024, 1, 15))}

	first := p.Project(txs, period(2024, time.March))
	second := p.Project(txs, period(2024, time.March))

	if len(first) != 1 {
		t.Fatalf("expected one projection, got %d", len(first))
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("projections differ:\n%+v\n%+v", first, second)
	}

	got := first[0]
	if got.ID != "netflix-proj-2024-03" {
		t.Errorf("ID = %q", got.ID)
	}
	if got.Date.String() != "2024-03-15" || !got.IsProjected || got.RecurringSourceID != "netflix" {
		t.Errorf("unexpected projection %+v", got)
	}
	if got.Amount != txs[0].Amount || got.Category != txs[0].Category || got.Description != txs[0].Description {
		t.Errorf("fields not copied: %+v", got)
	}
	if !txs[0].PaymentDate.IsZero() || txs[0].IsProjected {
		t.Errorf("source was mutated: %+v", txs[0])
	}
}

func TestProjectDoesNotShareTags(t *testing.T) {
	txs := []core.Transaction{recurring("gym", "Gym", core.NewDate(2024, 1, 5))}
	out := New().Project(txs, period(2024, time.February))
	out[0].Tags[0] = "changed"
	if txs[0].Tags[0] != "streaming" {
		t.Fatalf("projection shares tag slice with its source")
	}
}

func TestProjectClampPolicies(t *testing.T) {
	txs := []core.Transaction{recurring("rent", "Rent", core.NewDate(2024, 1, 31))}

	tests := []struct {
		name   string
		clamp  DayClamper
		target core.Period
		want   string
	}{
		{"target month end in 30-day month", TargetMonthEnd{}, period(2024, time.April), "2024-04-30"},
		{"target month end in leap February", TargetMonthEnd{}, period(2024, time.February), "2024-02-29"},
		{"target month end when day exists", TargetMonthEnd{}, period(2024, time.March), "2024-03-31"},
		{"legacy previous month end", PreviousMonthEnd{}, period(2024, time.April), "2024-03-31"},
		{"legacy when day exists", PreviousMonthEnd{}, period(2024, time.May), "2024-05-31"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := New(WithClamp(tt.clamp)).Project(txs, tt.target)
			if len(out) != 1 {
				t.Fatalf("expected one projection, got %d", len(out))
			}
			if got := out[0].Date.String(); got != tt.want {
				t.Errorf("Date = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestProjectSuppressedWhenAlreadyPosted(t *testing.T) {
	txs := []core.Transaction{
		recurring("spotify", "Spotify", core.NewDate(2024, 1, 10)),
		{
			ID:          "spotify-march",
			Description: " spotify ",
			Amount:      core.Cents(3990),
			Date:        core.NewDate(2024, 3, 9),
			Type:        core.Expense,
			Category:    core.CategorySubscriptions,
		},
	}

	if out := New().Project(txs, period(2024, time.March)); len(out) != 0 {
		t.Fatalf("expected suppression, got %+v", out)
	}
	if out := New().Project(txs, period(2024, time.April)); len(out) != 1 {
		t.Fatalf("expected a projection for April, got %d", len(out))
	}
}

func TestProjectRespectsEndDate(t *testing.T) {
	src := recurring("course", "Online course", core.NewDate(2024, 1, 20))
	src.RecurringEndDate = core.NewDate(2024, 4, 2)
	txs := []core.Transaction{src}

	if out := New().Project(txs, period(2024, time.March)); len(out) != 1 {
		t.Fatalf("March is before cancellation, got %d", len(out))
	}
	for _, m := range []time.Month{time.April, time.May} {
		if out := New().Project(txs, period(2024, m)); len(out) != 0 {
			t.Fatalf("%s is at/after cancellation, got %+v", m, out)
		}
	}
}

func TestProjectBoundaryPolicies(t *testing.T) {
	txs := []core.Transaction{recurring("phone", "Phone plan", core.NewDate(2024, 3, 8))}

	tests := []struct {
		name     string
		boundary BoundaryPolicy
		target   core.Period
		want     int
	}{
		{"strict skips anchor month", BoundaryStrict, period(2024, time.March), 0},
		{"strict projects next month", BoundaryStrict, period(2024, time.April), 1},
		{"inclusive projects anchor month", BoundaryInclusive, period(2024, time.March), 1},
		{"never before anchor", BoundaryInclusive, period(2024, time.February), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := New(WithBoundary(tt.boundary)).Project(txs, tt.target)
			if len(out) != tt.want {
				t.Errorf("got %d projections, want %d", len(out), tt.want)
			}
		})
	}
}

func TestProjectUsesPaymentDateAsAnchor(t *testing.T) {
	src := recurring("insurance", "Car insurance", core.NewDate(2024, 1, 28))
	src.PaymentDate = core.NewDate(2024, 2, 5)
	out := New().Project([]core.Transaction{src}, period(2024, time.February))
	if len(out) != 0 {
		t.Fatalf("February is the anchor month under the payment date, got %+v", out)
	}

	out = New().Project([]core.Transaction{src}, period(2024, time.March))
	if len(out) != 1 {
		t.Fatalf("expected one projection, got %d", len(out))
	}
	if out[0].Date.String() != "2024-03-05" || out[0].PaymentDate.String() != "2024-03-05" {
		t.Errorf("unexpected dates %s / %s", out[0].Date, out[0].PaymentDate)
	}
}

func TestProjectSkipsBadRecordsOnly(t *testing.T) {
	txs := []core.Transaction{
		recurring("broken", "Broken", core.Date{}),
		recurring("ok", "Water", core.NewDate(2024, 1, 3)),
		{ID: "one-off", Description: "Dinner", Date: core.NewDate(2024, 1, 3)},
	}
	out := New().Project(txs, period(2024, time.June))
	if len(out) != 1 || out[0].RecurringSourceID != "ok" {
		t.Fatalf("unexpected projections %+v", out)
	}
}

func TestProjectRangeAndMerge(t *testing.T) {
	txs := []core.Transaction{recurring("netflix", "Netflix", core.NewDate(2024, 1, 15))}
	projected := New().ProjectRange(txs, period(2024, time.November), 3)

	want := []string{"netflix-proj-2024-11", "netflix-proj-2024-12", "netflix-proj-2025-01"}
	if len(projected) != len(want) {
		t.Fatalf("got %d projections", len(projected))
	}
	for i, id := range want {
		if projected[i].ID != id {
			t.Errorf("projection %d id = %s, want %s", i, projected[i].ID, id)
		}
	}

	merged := Merge(append(txs, projected[0]), projected)
	if len(merged) != 4 {
		t.Fatalf("merge should drop projected entries from the real side, got %d", len(merged))
	}
}

func TestGetDayClamper(t *testing.T) {
	if c, err := GetDayClamper(ClampPreviousMonth); err != nil || c != (PreviousMonthEnd{}) {
		t.Fatalf("got %v, %v", c, err)
	}
	if _, err := GetDayClamper("nearest"); err == nil {
		t.Fatalf("expected error for unknown policy")
	}
}
