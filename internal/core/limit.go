package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

const (
	ScopeGlobal   ScopeType = "global"
	ScopeCategory ScopeType = "category"
	ScopeCard     ScopeType = "card"
)

var (
	ErrInvalidScope = errors.New("invalid budget limit scope")
	ErrEmptyIssuer  = errors.New("empty card issuer")
)

type (
	ScopeType string

	// LimitScope is the discriminator of a BudgetLimit. It is closed: only
	// GlobalScope, CategoryScope and CardScope implement it.
	LimitScope interface {
		Type() ScopeType
		// Key identifies the scope inside alert ids.
		Key() string
		isLimitScope()
	}

	GlobalScope struct{}

	CategoryScope struct {
		Category Category
	}

	CardScope struct {
		Issuer string
	}

	// BudgetLimit is a user-defined monthly ceiling.
	BudgetLimit struct {
		ID           string
		Scope        LimitScope
		MonthlyLimit Money
		IsActive     bool
	}

	budgetLimitJSON struct {
		ID           string    `json:"id"`
		Type         ScopeType `json:"type"`
		Category     Category  `json:"category,omitempty"`
		CardIssuer   string    `json:"cardIssuer,omitempty"`
		MonthlyLimit Money     `json:"monthlyLimit"`
		IsActive     bool      `json:"isActive"`
	}
)

func (GlobalScope) Type() ScopeType   { return ScopeGlobal }
func (CategoryScope) Type() ScopeType { return ScopeCategory }
func (CardScope) Type() ScopeType     { return ScopeCard }

func (GlobalScope) Key() string     { return "global" }
func (s CategoryScope) Key() string { return "category:" + string(s.Category) }
func (s CardScope) Key() string     { return "card:" + strings.ToLower(strings.TrimSpace(s.Issuer)) }

func (GlobalScope) isLimitScope()   {}
func (CategoryScope) isLimitScope() {}
func (CardScope) isLimitScope()     {}

// Matches reports whether t counts against the limit's scope. Category
// matching is exact; card matching is a case-insensitive substring test on
// the transaction issuer.
func (l BudgetLimit) Matches(t Transaction) bool {
	switch s := l.Scope.(type) {
	case GlobalScope:
		return true
	case CategoryScope:
		return t.Category == s.Category
	case CardScope:
		issuer := strings.ToLower(strings.TrimSpace(s.Issuer))
		return issuer != "" && strings.Contains(strings.ToLower(t.Issuer), issuer)
	default:
		return false
	}
}

// Label is a short human description of the scope.
func (l BudgetLimit) Label() string {
	switch s := l.Scope.(type) {
	case GlobalScope:
		return "overall spending"
	case CategoryScope:
		return string(s.Category)
	case CardScope:
		return "card " + s.Issuer
	default:
		return "unknown scope"
	}
}

func (l BudgetLimit) Validate() error {
	if strings.TrimSpace(l.ID) == "" {
		return ErrEmptyID
	}
	if err := l.MonthlyLimit.Validate(); err != nil {
		return err
	}
	switch s := l.Scope.(type) {
	case GlobalScope:
		return nil
	case CategoryScope:
		if !s.Category.IsValid() {
			return ErrInvalidCategory
		}
		return nil
	case CardScope:
		if strings.TrimSpace(s.Issuer) == "" {
			return ErrEmptyIssuer
		}
		return nil
	default:
		return ErrInvalidScope
	}
}

func (l BudgetLimit) MarshalJSON() ([]byte, error) {
	out := budgetLimitJSON{
		ID:           l.ID,
		MonthlyLimit: l.MonthlyLimit,
		IsActive:     l.IsActive,
	}
	switch s := l.Scope.(type) {
	case GlobalScope:
		out.Type = ScopeGlobal
	case CategoryScope:
		out.Type = ScopeCategory
		out.Category = s.Category
	case CardScope:
		out.Type = ScopeCard
		out.CardIssuer = s.Issuer
	default:
		return nil, ErrInvalidScope
	}
	return json.Marshal(out)
}

func (l *BudgetLimit) UnmarshalJSON(data []byte) error {
	var in budgetLimitJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	var scope LimitScope
	switch in.Type {
	case ScopeGlobal:
		scope = GlobalScope{}
	case ScopeCategory:
		if in.Category == "" {
			return fmt.Errorf("%w: category limit without category", ErrInvalidScope)
		}
		scope = CategoryScope{Category: in.Category}
	case ScopeCard:
		if in.CardIssuer == "" {
			return fmt.Errorf("%w: card limit without issuer", ErrInvalidScope)
		}
		scope = CardScope{Issuer: in.CardIssuer}
	default:
		return fmt.Errorf("%w: %q", ErrInvalidScope, in.Type)
	}
	*l = BudgetLimit{
		ID:           in.ID,
		Scope:        scope,
		MonthlyLimit: in.MonthlyLimit,
		IsActive:     in.IsActive,
	}
	return nil
}
