package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"fintrack/internal/alerts"
	"fintrack/internal/budget"
	"fintrack/internal/core"
	"fintrack/internal/duplicates"
	"fintrack/internal/log"
)

// ProcessResult is the outcome of one ProcessAndSaveAlerts run.
type ProcessResult struct {
	// Alerts is the full persisted set after the merge.
	Alerts []alerts.Alert
	// Added holds the alerts that did not exist before this run.
	Added []alerts.Alert
}

// ProcessAndSaveAlerts evaluates the alert rules over txs plus their
// projections for asOf's month, using the stored limits, invoices and
// configurations, then merges the result into the stored alerts. Existing
// alerts keep their state; only new ids are added.
func (e *Engine) ProcessAndSaveAlerts(ctx context.Context, txs []core.Transaction, monthlyIncome core.Money, asOf core.Date) (ProcessResult, error) {
	if err := e.requireRepo(); err != nil {
		return ProcessResult{}, err
	}
	limits, err := e.repo.BudgetLimits(ctx)
	if err != nil {
		return ProcessResult{}, fmt.Errorf("load limits: %w", err)
	}
	invoices, err := e.repo.CardInvoices(ctx)
	if err != nil {
		return ProcessResult{}, fmt.Errorf("load invoices: %w", err)
	}
	configs, err := e.repo.AlertConfigurations(ctx)
	if err != nil {
		return ProcessResult{}, fmt.Errorf("load alert configurations: %w", err)
	}
	existing, err := e.repo.Alerts(ctx)
	if err != nil {
		return ProcessResult{}, fmt.Errorf("load alerts: %w", err)
	}

	generated := e.GenerateAlerts(alerts.Input{
		Transactions:  e.MergedView(txs, asOf),
		Limits:        limits,
		Invoices:      invoices,
		MonthlyIncome: monthlyIncome,
		AsOf:          asOf,
		Configs:       configs,
	})
	merged, added := alerts.Merge(existing, generated)
	if len(added) > 0 {
		if err := e.repo.SaveAlerts(ctx, merged); err != nil {
			return ProcessResult{}, fmt.Errorf("save alerts: %w", err)
		}
	}

	e.logger.InfoContext(ctx, "Alerts processed",
		log.FieldComponent, log.ComponentAlerts,
		log.FieldPeriod, asOf.Period().String(),
		"generated", len(generated),
		"added", len(added),
		"stored", len(merged))

	return ProcessResult{Alerts: merged, Added: added}, nil
}

// Snapshot is the month view the CLI reports on.
type Snapshot struct {
	Period    string                     `json:"period"`
	AsOf      core.Date                  `json:"asOf"`
	Projected []core.Transaction         `json:"projected"`
	Overview  []core.CategoryAmount      `json:"byCategory"`
	Total     core.Money                 `json:"total"`
	Statuses  []budget.Status            `json:"budgets"`
	Overspend budget.OverspendProjection `json:"overspend"`
	Unread    []alerts.Alert             `json:"unreadAlerts"`
}

// Snapshot loads the stored transactions and limits and evaluates the month
// containing asOf over the merged view.
func (e *Engine) Snapshot(ctx context.Context, monthlyIncome core.Money, asOf core.Date) (Snapshot, error) {
	if err := e.requireRepo(); err != nil {
		return Snapshot{}, err
	}
	txs, err := e.repo.Transactions(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("load transactions: %w", err)
	}
	limits, err := e.repo.BudgetLimits(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("load limits: %w", err)
	}
	stored, err := e.repo.Alerts(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("load alerts: %w", err)
	}

	projected := e.ProjectRecurringTransactions(txs, asOf)
	view := append(append([]core.Transaction(nil), txs...), projected...)
	ov := core.Overview(view, asOf.Period())
	return Snapshot{
		Period:    asOf.Period().String(),
		AsOf:      asOf,
		Projected: projected,
		Overview:  ov.ByCategory,
		Total:     ov.Total,
		Statuses:  e.CalculateBudgetStatus(view, limits, asOf),
		Overspend: e.CalculateOverspendProjection(view, monthlyIncome, asOf),
		Unread:    alerts.Unread(stored),
	}, nil
}

// MarkAlertRead reports whether an alert with id exists.
func (e *Engine) MarkAlertRead(ctx context.Context, id string) (bool, error) {
	return e.updateAlerts(ctx, id, alerts.MarkRead)
}

// DismissAlert reports whether an alert with id exists.
func (e *Engine) DismissAlert(ctx context.Context, id string) (bool, error) {
	return e.updateAlerts(ctx, id, alerts.Dismiss)
}

func (e *Engine) updateAlerts(ctx context.Context, id string, fn func([]alerts.Alert, string) ([]alerts.Alert, bool)) (bool, error) {
	if err := e.requireRepo(); err != nil {
		return false, err
	}
	stored, err := e.repo.Alerts(ctx)
	if err != nil {
		return false, fmt.Errorf("load alerts: %w", err)
	}
	updated, ok := fn(stored, id)
	if !ok {
		return false, nil
	}
	if err := e.repo.SaveAlerts(ctx, updated); err != nil {
		return false, fmt.Errorf("save alerts: %w", err)
	}
	return true, nil
}

// PruneAlerts drops alerts older than retention and returns how many were
// removed.
func (e *Engine) PruneAlerts(ctx context.Context, retention time.Duration, now core.Date) (int, error) {
	if err := e.requireRepo(); err != nil {
		return 0, err
	}
	stored, err := e.repo.Alerts(ctx)
	if err != nil {
		return 0, fmt.Errorf("load alerts: %w", err)
	}
	kept := alerts.Prune(stored, retention, now)
	removed := len(stored) - len(kept)
	if removed == 0 {
		return 0, nil
	}
	if err := e.repo.SaveAlerts(ctx, kept); err != nil {
		return 0, fmt.Errorf("save alerts: %w", err)
	}
	e.logger.InfoContext(ctx, "Alerts pruned",
		log.FieldComponent, log.ComponentAlerts,
		log.FieldOperation, log.OpPrune,
		log.FieldCount, removed)
	return removed, nil
}

// Resolution settles one duplicate candidate. OriginalID alone confirms it
// as a copy of that transaction. DismissReason dismisses it, only against
// OriginalID when that is set too.
type Resolution struct {
	OriginalID    string
	DismissReason string
}

// ResolveDuplicate applies r to the stored transaction id.
func (e *Engine) ResolveDuplicate(ctx context.Context, id string, r Resolution) (core.Transaction, error) {
	hasOriginal := strings.TrimSpace(r.OriginalID) != ""
	dismiss := strings.TrimSpace(r.DismissReason) != ""
	if !hasOriginal && !dismiss {
		return core.Transaction{}, ErrInvalidResolution
	}
	confirm := hasOriginal && !dismiss
	if err := e.requireRepo(); err != nil {
		return core.Transaction{}, err
	}
	txs, err := e.repo.Transactions(ctx)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("load transactions: %w", err)
	}

	idx := indexOf(txs, id)
	if idx < 0 {
		return core.Transaction{}, fmt.Errorf("%w: %s", ErrTransactionNotFound, id)
	}
	if hasOriginal && indexOf(txs, strings.TrimSpace(r.OriginalID)) < 0 {
		return core.Transaction{}, fmt.Errorf("%w: %s", ErrTransactionNotFound, r.OriginalID)
	}

	var resolved core.Transaction
	if confirm {
		resolved, err = duplicates.Confirm(txs[idx], r.OriginalID)
	} else {
		resolved, err = duplicates.Dismiss(txs[idx], r.OriginalID, r.DismissReason)
	}
	if err != nil {
		return core.Transaction{}, err
	}

	txs[idx] = resolved
	if err := e.repo.SaveTransactions(ctx, txs); err != nil {
		return core.Transaction{}, fmt.Errorf("save transactions: %w", err)
	}
	e.logger.InfoContext(ctx, "Duplicate resolved",
		log.FieldComponent, log.ComponentDuplicates,
		log.FieldOperation, log.OpResolve,
		log.FieldTransactionID, id,
		"duplicate_of", resolved.DuplicateOf,
		"ignored_reason", resolved.IgnoredReason,
		"ignored_against", resolved.IgnoredAgainst)
	return resolved, nil
}

func indexOf(txs []core.Transaction, id string) int {
	for i, t := range txs {
		if t.ID == id {
			return i
		}
	}
	return -1
}
