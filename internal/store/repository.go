package store

import (
	"context"

	"fintrack/internal/alerts"
	"fintrack/internal/core"
)

// Repository gives typed access to the collections of a Store.
type Repository struct {
	store Store
}

func NewRepository(s Store) *Repository {
	return &Repository{store: s}
}

func (r *Repository) Transactions(ctx context.Context) ([]core.Transaction, error) {
	return Load[core.Transaction](ctx, r.store, KeyTransactions)
}

func (r *Repository) SaveTransactions(ctx context.Context, txs []core.Transaction) error {
	return Save(ctx, r.store, KeyTransactions, txs)
}

func (r *Repository) BudgetLimits(ctx context.Context) ([]core.BudgetLimit, error) {
	return Load[core.BudgetLimit](ctx, r.store, KeyBudgetLimits)
}

func (r *Repository) SaveBudgetLimits(ctx context.Context, limits []core.BudgetLimit) error {
	return Save(ctx, r.store, KeyBudgetLimits, limits)
}

// AlertConfigurations falls back to alerts.DefaultConfigurations when no
// usable configuration is stored.
func (r *Repository) AlertConfigurations(ctx context.Context) ([]alerts.Configuration, error) {
	configs, err := Load[alerts.Configuration](ctx, r.store, KeyAlertConfigurations)
	if err != nil {
		return nil, err
	}
	known := configs[:0]
	for _, c := range configs {
		if c.Type.IsKnown() {
			known = append(known, c)
		}
	}
	if len(known) == 0 {
		return alerts.DefaultConfigurations(), nil
	}
	return known, nil
}

func (r *Repository) SaveAlertConfigurations(ctx context.Context, configs []alerts.Configuration) error {
	return Save(ctx, r.store, KeyAlertConfigurations, configs)
}

func (r *Repository) Alerts(ctx context.Context) ([]alerts.Alert, error) {
	return Load[alerts.Alert](ctx, r.store, KeyBudgetAlerts)
}

func (r *Repository) SaveAlerts(ctx context.Context, list []alerts.Alert) error {
	return Save(ctx, r.store, KeyBudgetAlerts, list)
}

func (r *Repository) CardInvoices(ctx context.Context) ([]core.CardInvoice, error) {
	return Load[core.CardInvoice](ctx, r.store, KeyCardInvoices)
}

func (r *Repository) SaveCardInvoices(ctx context.Context, invoices []core.CardInvoice) error {
	return Save(ctx, r.store, KeyCardInvoices, invoices)
}
