// Package alerts evaluates rule-based budget notifications.
//
// Every alert carries a deterministic id built from its rule type, its scope
// and the evaluated month, so repeated evaluations during the same month
// produce the same ids and Merge never stores an alert twice.
package alerts

import (
	"fmt"

	"fintrack/internal/core"
)

type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityDanger  Severity = "danger"
)

type Type string

const (
	TypeLimit80             Type = "limit_80"
	TypeLimit100            Type = "limit_100"
	TypeUnusualSpending     Type = "unusual_spending"
	TypeNewSubscription     Type = "new_subscription"
	TypeHighInvoice         Type = "high_invoice"
	TypeOverspendProjection Type = "overspend_projection"
)

// Alert is a persisted notification.
type Alert struct {
	ID          string    `json:"id"`
	Type        Type      `json:"type"`
	Severity    Severity  `json:"severity"`
	Title       string    `json:"title"`
	Message     string    `json:"message"`
	Scope       string    `json:"scope"`
	Period      string    `json:"period"`
	Value       float64   `json:"value"`
	Threshold   float64   `json:"threshold,omitempty"`
	IsRead      bool      `json:"isRead"`
	IsDismissed bool      `json:"isDismissed"`
	CreatedAt   core.Date `json:"createdAt"`
}

// Configuration toggles one rule and optionally overrides its threshold.
type Configuration struct {
	Type      Type     `json:"type"`
	Enabled   bool     `json:"enabled"`
	Threshold *float64 `json:"threshold,omitempty"`
}

// AlertID builds the de-duplication key of an alert.
func AlertID(t Type, scope string, p core.Period) string {
	return fmt.Sprintf("%s:%s:%s", t, scope, p)
}

func threshold(v float64) *float64 { return &v }

// DefaultConfigurations is the configuration set used when none is stored.
// Thresholds are percentages.
func DefaultConfigurations() []Configuration {
	return []Configuration{
		{Type: TypeLimit80, Enabled: true, Threshold: threshold(80)},
		{Type: TypeLimit100, Enabled: true},
		{Type: TypeUnusualSpending, Enabled: true, Threshold: threshold(150)},
		{Type: TypeNewSubscription, Enabled: true, Threshold: threshold(120)},
		{Type: TypeHighInvoice, Enabled: true, Threshold: threshold(120)},
		{Type: TypeOverspendProjection, Enabled: true},
	}
}

// IsKnown reports whether t names a rule of the engine.
func (t Type) IsKnown() bool {
	for _, r := range rules {
		if r.typ == t {
			return true
		}
	}
	return false
}
