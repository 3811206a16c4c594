package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Expense TransactionType = "EXPENSE"
	Income  TransactionType = "INCOME"
)

const (
	CategoryFood          Category = "food"
	CategoryTransport     Category = "transport"
	CategoryHousing       Category = "housing"
	CategoryUtilities     Category = "utilities"
	CategoryHealth        Category = "health"
	CategoryEducation     Category = "education"
	CategoryEntertainment Category = "entertainment"
	CategoryShopping      Category = "shopping"
	CategorySubscriptions Category = "subscriptions"
	CategoryTravel        Category = "travel"
	CategorySalary        Category = "salary"
	CategoryInvestments   Category = "investments"
	CategoryOther         Category = "other"
)

type (
	TransactionType string

	Category string

	// Transaction is a single money movement. Projected transactions are
	// synthetic copies of recurring ones and are never persisted.
	Transaction struct {
		ID                string          `json:"id"`
		Description       string          `json:"description"`
		Amount            Money           `json:"amount"`
		Date              Date            `json:"date"`
		PaymentDate       Date            `json:"paymentDate,omitempty"`
		Type              TransactionType `json:"type"`
		Category          Category        `json:"category"`
		Issuer            string          `json:"cardIssuer,omitempty"`
		IsRecurring       bool            `json:"isRecurring,omitempty"`
		RecurringEndDate  Date            `json:"recurringEndDate,omitempty"`
		IsProjected       bool            `json:"isProjected,omitempty"`
		RecurringSourceID string          `json:"recurringSourceId,omitempty"`
		Tags              []string        `json:"tags,omitempty"`
		IsDuplicate       bool            `json:"isDuplicate,omitempty"`
		DuplicateOf       string          `json:"duplicateOf,omitempty"`
		IgnoredReason     string          `json:"ignoredReason,omitempty"`
		IgnoredAgainst    string          `json:"ignoredAgainst,omitempty"`
	}

	// CardInvoice is an imported credit card statement total.
	CardInvoice struct {
		ID      string `json:"id"`
		Issuer  string `json:"issuer"`
		DueDate Date   `json:"dueDate"`
		Total   Money  `json:"total"`
	}
)

var (
	ErrEmptyID          = errors.New("empty id")
	ErrEmptyDescription = errors.New("empty description")
	ErrInvalidType      = errors.New("invalid transaction type")
	ErrInvalidCategory  = errors.New("invalid category")
)

var knownCategories = map[Category]struct{}{
	CategoryFood:          {},
	CategoryTransport:     {},
	CategoryHousing:       {},
	CategoryUtilities:     {},
	CategoryHealth:        {},
	CategoryEducation:     {},
	CategoryEntertainment: {},
	CategoryShopping:      {},
	CategorySubscriptions: {},
	CategoryTravel:        {},
	CategorySalary:        {},
	CategoryInvestments:   {},
	CategoryOther:         {},
}

// IsValid reports whether c is one of the known category tags.
func (c Category) IsValid() bool {
	_, ok := knownCategories[c]
	return ok
}

func (t TransactionType) IsValid() bool {
	return t == Expense || t == Income
}

// BucketDate is the date used for period bucketing: the cash-flow date when
// present, the purchase date otherwise.
func (t Transaction) BucketDate() Date {
	if !t.PaymentDate.IsZero() {
		return t.PaymentDate
	}
	return t.Date
}

// IsExpense reports whether t moves money out.
func (t Transaction) IsExpense() bool {
	return t.Type == Expense
}

// InPeriod reports whether the bucket date of t falls inside p.
func (t Transaction) InPeriod(p Period) bool {
	d := t.BucketDate()
	if d.IsZero() {
		return false
	}
	return p.Contains(d)
}

func (t Transaction) Validate() error {
	if strings.TrimSpace(t.ID) == "" {
		return ErrEmptyID
	}
	if err := t.Date.Validate(); err != nil {
		return err
	}
	if len(strings.TrimSpace(t.Description)) == 0 {
		return ErrEmptyDescription
	}
	if t.Amount.Cents < 0 {
		return ErrInvalidAmount
	}
	if !t.Type.IsValid() {
		return ErrInvalidType
	}
	if !t.Category.IsValid() {
		return ErrInvalidCategory
	}
	return nil
}

func (i CardInvoice) Validate() error {
	if strings.TrimSpace(i.ID) == "" {
		return ErrEmptyID
	}
	if err := i.DueDate.Validate(); err != nil {
		return err
	}
	if i.Total.Cents < 0 {
		return ErrInvalidAmount
	}
	return nil
}

// Clone returns a copy of t that shares no slices with the original.
func (t Transaction) Clone() Transaction {
	c := t
	if t.Tags != nil {
		c.Tags = append([]string(nil), t.Tags...)
	}
	return c
}

// Now returns today's calendar date in the local time zone.
func Now() Date {
	return DateOf(time.Now())
}
