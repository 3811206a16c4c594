// Package store persists the engine's collections behind a small
// key-value port. Each key holds a whole JSON array; reads return the full
// collection and writes replace it.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"fintrack/internal/log"
)

// Collection keys.
const (
	KeyTransactions        = "transactions"
	KeyBudgetLimits        = "budget_limits"
	KeyAlertConfigurations = "alert_configurations"
	KeyBudgetAlerts        = "budget_alerts"
	KeyCardInvoices        = "card_invoices"
)

// Keys lists every collection key.
var Keys = []string{
	KeyTransactions,
	KeyBudgetLimits,
	KeyAlertConfigurations,
	KeyBudgetAlerts,
	KeyCardInvoices,
}

// Store is an opaque key-value document store.
type Store interface {
	// Get returns nil, nil when key has never been written.
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

// Load reads the collection stored under key. A missing or malformed
// collection decodes to nil; malformed elements are skipped. Only errors
// from the store itself are returned.
func Load[T any](ctx context.Context, s Store, key string) ([]T, error) {
	data, err := s.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", key, err)
	}
	if len(data) == 0 {
		return nil, nil
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		slog.WarnContext(ctx, "Discarding malformed collection",
			log.FieldComponent, log.ComponentStore,
			log.FieldKey, key,
			log.FieldError, err)
		return nil, nil
	}

	out := make([]T, 0, len(raw))
	for i, r := range raw {
		var v T
		if err := json.Unmarshal(r, &v); err != nil {
			slog.WarnContext(ctx, "Skipping malformed element",
				log.FieldComponent, log.ComponentStore,
				log.FieldKey, key,
				"index", i,
				log.FieldError, err)
			continue
		}
		out = append(out, v)
	}
	return out, nil
}

// Save replaces the collection stored under key.
func Save[T any](ctx context.Context, s Store, key string, items []T) error {
	if items == nil {
		items = []T{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := s.Set(ctx, key, data); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}
