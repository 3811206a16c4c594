package core

import (
	"encoding/json"
	"testing"
	"time"
)

func TestDateValidate(t *testing.T) {
	cases := []struct {
		d  Date
		ok bool
	}{
		{NewDate(2025, 1, 1), true},
		{NewDate(2025, 12, 31), true},
		{Date{Time: time.Time{}}, false},
	}
	for i, tc := range cases {
		err := tc.d.Validate()
		if tc.ok && err != nil {
			t.Fatalf("case %d expected ok, got %v", i, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestDateOfDropsTimeOfDay(t *testing.T) {
	loc := time.FixedZone("UTC-3", -3*3600)
	d := DateOf(time.Date(2024, 3, 31, 23, 30, 0, 0, loc))
	if d.String() != "2024-03-31" {
		t.Fatalf("got %s, want 2024-03-31", d)
	}

	p, err := ParseDate("2024-03-31T23:30:00-03:00")
	if err != nil || !p.Equal(d) {
		t.Fatalf("ParseDate kept zone conversion: %v err=%v", p, err)
	}
}

func TestDateJSON(t *testing.T) {
	var tx Transaction
	in := `{"id":"t1","description":"Rent","amount":1200,"date":"2024-01-31","paymentDate":null,"type":"EXPENSE","category":"housing"}`
	if err := json.Unmarshal([]byte(in), &tx); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if tx.Date.String() != "2024-01-31" || !tx.PaymentDate.IsZero() {
		t.Fatalf("unexpected dates: %v %v", tx.Date, tx.PaymentDate)
	}
	if tx.Amount.Cents != 120000 {
		t.Fatalf("unexpected amount %d", tx.Amount.Cents)
	}
	if err := json.Unmarshal([]byte(`{"date":"31/01/2024"}`), &tx); err == nil {
		t.Fatalf("expected error for malformed date")
	}
}

func TestPeriodArithmetic(t *testing.T) {
	p := Period{Year: 2024, Month: time.January}
	if got := p.AddMonths(-1); got != (Period{Year: 2023, Month: time.December}) {
		t.Fatalf("AddMonths(-1) = %v", got)
	}
	if got := p.AddMonths(13); got != (Period{Year: 2025, Month: time.February}) {
		t.Fatalf("AddMonths(13) = %v", got)
	}
	if d := (Period{Year: 2024, Month: time.February}).Days(); d != 29 {
		t.Fatalf("leap February has %d days", d)
	}
	if !p.Before(p.AddMonths(1)) || p.After(p) || p.Compare(p) != 0 {
		t.Fatalf("comparison broken")
	}
	if !p.Contains(NewDate(2024, 1, 31)) || p.Contains(NewDate(2024, 2, 1)) {
		t.Fatalf("Contains broken")
	}
}

func TestBucketDatePrefersPaymentDate(t *testing.T) {
	tx := Transaction{Date: NewDate(2024, 1, 28), PaymentDate: NewDate(2024, 2, 10)}
	if !tx.InPeriod(Period{Year: 2024, Month: time.February}) {
		t.Fatalf("payment date should drive bucketing")
	}
	if (Transaction{}).InPeriod(Period{Year: 2024, Month: time.February}) {
		t.Fatalf("zero dates never fall in a period")
	}
}

func TestTransactionValidate(t *testing.T) {
	good := Transaction{
		ID:          "t1",
		Description: "ok",
		Amount:      Money{Cents: 100},
		Date:        NewDate(2025, 1, 1),
		Type:        Expense,
		Category:    CategoryFood,
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bad := []func(*Transaction){
		func(tx *Transaction) { tx.ID = "" },
		func(tx *Transaction) { tx.Date = Date{} },
		func(tx *Transaction) { tx.Description = " " },
		func(tx *Transaction) { tx.Amount = Money{Cents: -1} },
		func(tx *Transaction) { tx.Type = "TRANSFER" },
		func(tx *Transaction) { tx.Category = "pets" },
	}
	for i, mutate := range bad {
		tx := good.Clone()
		mutate(&tx)
		if err := tx.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestOverviewKeepsFirstSeenOrder(t *testing.T) {
	p := Period{Year: 2024, Month: time.May}
	txs := []Transaction{
		{Type: Expense, Category: CategoryTransport, Amount: Cents(500), Date: NewDate(2024, 5, 2)},
		{Type: Expense, Category: CategoryFood, Amount: Cents(700), Date: NewDate(2024, 5, 3)},
		{Type: Expense, Category: CategoryTransport, Amount: Cents(300), Date: NewDate(2024, 5, 4)},
		{Type: Income, Category: CategorySalary, Amount: Cents(9000), Date: NewDate(2024, 5, 5)},
		{Type: Expense, Category: CategoryFood, Amount: Cents(100), Date: NewDate(2024, 6, 1)},
	}
	ov := Overview(txs, p)
	if ov.Total.Cents != 1500 {
		t.Fatalf("total = %d", ov.Total.Cents)
	}
	if len(ov.ByCategory) != 2 || ov.ByCategory[0].Category != CategoryTransport {
		t.Fatalf("unexpected categories %+v", ov.ByCategory)
	}
	if ov.CategoryTotal(CategoryFood).Cents != 700 || !ov.CategoryTotal(CategoryHealth).IsZero() {
		t.Fatalf("CategoryTotal broken")
	}
}
