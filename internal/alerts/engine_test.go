package alerts

import (
	"strings"
	"testing"
	"time"

	"fintrack/internal/core"
)

func expense(id string, cat core.Category, cents int64, d core.Date) core.Transaction {
	return core.Transaction{
		ID:          id,
		Description: id,
		Amount:      core.Cents(cents),
		Date:        d,
		Type:        core.Expense,
		Category:    cat,
	}
}

func onlyRule(t Type) []Configuration {
	var out []Configuration
	for _, c := range DefaultConfigurations() {
		c.Enabled = c.Type == t
		out = append(out, c)
	}
	return out
}

func ids(alerts []Alert) []string {
	var out []string
	for _, a := range alerts {
		out = append(out, a.ID)
	}
	return out
}

func TestLimitRules(t *testing.T) {
	asOf := core.NewDate(2024, 6, 10)
	txs := []core.Transaction{
		expense("market", core.CategoryFood, 85000, core.NewDate(2024, 6, 3)),
		expense("cinema", core.CategoryEntertainment, 30000, core.NewDate(2024, 6, 4)),
	}
	limits := []core.BudgetLimit{
		{ID: "food", Scope: core.CategoryScope{Category: core.CategoryFood}, MonthlyLimit: core.Cents(100000), IsActive: true},
		{ID: "fun", Scope: core.CategoryScope{Category: core.CategoryEntertainment}, MonthlyLimit: core.Cents(20000), IsActive: true},
		{ID: "calm", Scope: core.CategoryScope{Category: core.CategoryTravel}, MonthlyLimit: core.Cents(20000), IsActive: true},
	}

	tests := []struct {
		name     string
		rule     Type
		want     []string
		severity Severity
	}{
		{"near limit", TypeLimit80, []string{"limit_80:food:2024-06"}, SeverityWarning},
		{"over limit", TypeLimit100, []string{"limit_100:fun:2024-06"}, SeverityDanger},
	}
	e := NewEngine(nil, nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := e.Generate(Input{Transactions: txs, Limits: limits, AsOf: asOf, Configs: onlyRule(tt.rule)})
			if strings.Join(ids(got), ",") != strings.Join(tt.want, ",") {
				t.Fatalf("ids = %v, want %v", ids(got), tt.want)
			}
			if got[0].Severity != tt.severity || got[0].Type != tt.rule || !got[0].CreatedAt.Equal(asOf) {
				t.Errorf("unexpected alert %+v", got[0])
			}
		})
	}
}

func TestLimit80CustomThreshold(t *testing.T) {
	asOf := core.NewDate(2024, 6, 10)
	txs := []core.Transaction{expense("market", core.CategoryFood, 85000, asOf)}
	limits := []core.BudgetLimit{{ID: "food", Scope: core.GlobalScope{}, MonthlyLimit: core.Cents(100000), IsActive: true}}

	configs := onlyRule(TypeLimit80)
	configs[0].Threshold = threshold(90)
	if got := NewEngine(nil, nil).Generate(Input{Transactions: txs, Limits: limits, AsOf: asOf, Configs: configs}); len(got) != 0 {
		t.Fatalf("expected no alert below custom threshold, got %v", ids(got))
	}
}

func TestUnusualSpending(t *testing.T) {
	asOf := core.NewDate(2024, 6, 20)
	txs := []core.Transaction{
		expense("m3", core.CategoryFood, 20000, core.NewDate(2024, 3, 5)),
		expense("m4", core.CategoryFood, 20000, core.NewDate(2024, 4, 5)),
		expense("m5", core.CategoryFood, 20000, core.NewDate(2024, 5, 5)),
		expense("m6", core.CategoryFood, 31000, core.NewDate(2024, 6, 5)),
		expense("first-time", core.CategoryTravel, 90000, core.NewDate(2024, 6, 5)),
		expense("steady3", core.CategoryTransport, 10000, core.NewDate(2024, 3, 5)),
		expense("steady4", core.CategoryTransport, 10000, core.NewDate(2024, 4, 5)),
		expense("steady5", core.CategoryTransport, 10000, core.NewDate(2024, 5, 5)),
		expense("steady-now", core.CategoryTransport, 12000, core.NewDate(2024, 6, 5)),
	}

	got := NewEngine(nil, nil).Generate(Input{Transactions: txs, AsOf: asOf, Configs: onlyRule(TypeUnusualSpending)})
	if len(got) != 1 || got[0].ID != "unusual_spending:food:2024-06" {
		t.Fatalf("ids = %v", ids(got))
	}
	if got[0].Value != 155 {
		t.Errorf("Value = %v", got[0].Value)
	}
}

func TestNewSubscription(t *testing.T) {
	asOf := core.NewDate(2024, 6, 20)
	txs := []core.Transaction{
		expense("music", core.CategorySubscriptions, 2000, core.NewDate(2024, 3, 1)),
		expense("video", core.CategorySubscriptions, 2000, core.NewDate(2024, 4, 1)),
		expense("cloud", core.CategorySubscriptions, 2000, core.NewDate(2024, 6, 18)),
		expense("gym", core.CategorySubscriptions, 6000, core.NewDate(2024, 6, 15)),
		expense("old-big", core.CategorySubscriptions, 6000, core.NewDate(2024, 6, 1)),
	}
	projected := expense("gym-proj", core.CategorySubscriptions, 90000, core.NewDate(2024, 6, 19))
	projected.IsProjected = true
	txs = append(txs, projected)

	got := NewEngine(nil, nil).Generate(Input{Transactions: txs, AsOf: asOf, Configs: onlyRule(TypeNewSubscription)})
	if len(got) != 1 || got[0].ID != "new_subscription:gym:2024-06" || got[0].Severity != SeverityInfo {
		t.Fatalf("alerts = %+v", got)
	}
}

func TestHighInvoice(t *testing.T) {
	asOf := core.NewDate(2024, 6, 20)
	invoices := []core.CardInvoice{
		{ID: "jan", Issuer: "Nubank", DueDate: core.NewDate(2024, 1, 10), Total: core.Cents(100000)},
		{ID: "feb", Issuer: "Nubank", DueDate: core.NewDate(2024, 2, 10), Total: core.Cents(100000)},
		{ID: "jul", Issuer: "Nubank", DueDate: core.NewDate(2024, 7, 10), Total: core.Cents(200000)},
	}

	got := NewEngine(nil, nil).Generate(Input{Invoices: invoices, AsOf: asOf, Configs: onlyRule(TypeHighInvoice)})
	if len(got) != 1 || got[0].ID != "high_invoice:jul:2024-06" {
		t.Fatalf("ids = %v", ids(got))
	}
}

func TestOverspendProjectionRule(t *testing.T) {
	txs := []core.Transaction{expense("rent", core.CategoryHousing, 280000, core.NewDate(2024, 6, 2))}
	income := core.Cents(300000)
	e := NewEngine(nil, nil)

	got := e.Generate(Input{Transactions: txs, MonthlyIncome: income, AsOf: core.NewDate(2024, 6, 25), Configs: onlyRule(TypeOverspendProjection)})
	if len(got) != 1 || got[0].ID != "overspend_projection:global:2024-06" || got[0].Severity != SeverityDanger {
		t.Fatalf("alerts = %+v", got)
	}
	if !strings.Contains(got[0].Message, "40.00") {
		t.Errorf("message lacks the recommended daily limit: %s", got[0].Message)
	}

	// Last day of the month: nothing left to plan for.
	if got := e.Generate(Input{Transactions: txs, MonthlyIncome: core.Cents(100000), AsOf: core.NewDate(2024, 6, 30), Configs: onlyRule(TypeOverspendProjection)}); len(got) != 0 {
		t.Fatalf("expected no alert on the last day, got %v", ids(got))
	}
}

func TestGenerateIsDeterministicAndUsesDefaults(t *testing.T) {
	asOf := core.NewDate(2024, 6, 25)
	txs := []core.Transaction{
		expense("rent", core.CategoryHousing, 280000, core.NewDate(2024, 6, 2)),
	}
	limits := []core.BudgetLimit{{ID: "all", Scope: core.GlobalScope{}, MonthlyLimit: core.Cents(200000), IsActive: true}}
	in := Input{Transactions: txs, Limits: limits, MonthlyIncome: core.Cents(300000), AsOf: asOf}

	e := NewEngine(nil, nil)
	first, second := e.Generate(in), e.Generate(in)
	if len(first) != 2 {
		t.Fatalf("ids = %v", ids(first))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("alert %d differs between runs:\n%+v\n%+v", i, first[i], second[i])
		}
	}
	if first[0].Type != TypeLimit100 || first[1].Type != TypeOverspendProjection {
		t.Errorf("rules out of order: %v", ids(first))
	}
}

func TestMergeAddsOnlyNewIDs(t *testing.T) {
	asOf := core.NewDate(2024, 6, 10)
	txs := []core.Transaction{expense("cinema", core.CategoryEntertainment, 30000, asOf)}
	limits := []core.BudgetLimit{{ID: "fun", Scope: core.GlobalScope{}, MonthlyLimit: core.Cents(20000), IsActive: true}}
	e := NewEngine(nil, nil)

	stored, added := Merge(nil, e.Generate(Input{Transactions: txs, Limits: limits, AsOf: asOf}))
	if len(stored) != 1 || len(added) != 1 {
		t.Fatalf("first merge stored=%d added=%d", len(stored), len(added))
	}
	stored, _ = MarkRead(stored, stored[0].ID)

	later := core.NewDate(2024, 6, 12)
	stored, added = Merge(stored, e.Generate(Input{Transactions: txs, Limits: limits, AsOf: later}))
	if len(stored) != 1 || len(added) != 0 {
		t.Fatalf("second merge stored=%d added=%d", len(stored), len(added))
	}
	if !stored[0].IsRead || !stored[0].CreatedAt.Equal(asOf) {
		t.Errorf("existing alert was overwritten: %+v", stored[0])
	}
}

func TestLifecycle(t *testing.T) {
	now := core.NewDate(2024, 6, 30)
	alerts := []Alert{
		{ID: "a", CreatedAt: core.NewDate(2024, 1, 1)},
		{ID: "b", CreatedAt: core.NewDate(2024, 6, 1)},
		{ID: "c"},
	}

	dismissed, ok := Dismiss(alerts, "b")
	if !ok || !dismissed[1].IsDismissed || !dismissed[1].IsRead {
		t.Fatalf("Dismiss = %+v, %v", dismissed, ok)
	}
	if alerts[1].IsDismissed {
		t.Errorf("Dismiss modified its input")
	}
	if _, ok := MarkRead(alerts, "missing"); ok {
		t.Errorf("MarkRead reported an unknown id")
	}
	if got := Unread(dismissed); len(got) != 2 {
		t.Errorf("Unread = %v", ids(got))
	}

	pruned := Prune(dismissed, 90*24*time.Hour, now)
	if strings.Join(ids(pruned), ",") != "b,c" {
		t.Errorf("Prune = %v", ids(pruned))
	}
}

func TestPruneKeepsCurrentMonth(t *testing.T) {
	now := core.NewDate(2024, 3, 15)
	alerts := []Alert{
		{ID: "limit_80:global:2024-03", Period: "2024-03", CreatedAt: core.NewDate(2024, 3, 2), IsDismissed: true},
		{ID: "limit_80:global:2024-02", Period: "2024-02", CreatedAt: core.NewDate(2024, 2, 20)},
		{ID: "legacy", CreatedAt: core.NewDate(2024, 3, 1)},
	}

	got := Prune(alerts, 24*time.Hour, now)
	if strings.Join(ids(got), ",") != "limit_80:global:2024-03" {
		t.Errorf("Prune = %v", ids(got))
	}
}

func TestTypeIsKnown(t *testing.T) {
	for _, c := range DefaultConfigurations() {
		if !c.Type.IsKnown() {
			t.Errorf("%s is not a rule", c.Type)
		}
	}
	if Type("bogus").IsKnown() {
		t.Errorf("bogus type reported as known")
	}
}
