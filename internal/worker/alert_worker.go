package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"fintrack/internal/alerts"
	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/services"
	"fintrack/internal/store"
)

// Publisher fans newly raised alerts out to other consumers.
type Publisher interface {
	PublishAlert(ctx context.Context, alert alerts.Alert) error
}

// RunResult summarizes one evaluation cycle.
type RunResult struct {
	Added         int
	Pruned        int
	Published     int
	PublishErrors int
}

// AlertWorker periodically evaluates the alert rules against the stored
// transactions, persists new alerts and prunes old ones.
type AlertWorker struct {
	engine    *services.Engine
	repo      *store.Repository
	publisher Publisher
	income    core.Money
	retention time.Duration
	interval  time.Duration
	now       func() core.Date
	logger    *log.Logger
}

// NewAlertWorker creates a worker. publisher may be nil, in which case new
// alerts are only persisted.
func NewAlertWorker(engine *services.Engine, repo *store.Repository, publisher Publisher, income core.Money, retention, interval time.Duration) *AlertWorker {
	return &AlertWorker{
		engine:    engine,
		repo:      repo,
		publisher: publisher,
		income:    income,
		retention: retention,
		interval:  interval,
		now:       core.Now,
		logger: log.New(log.Config{
			Handler:   slog.Default().Handler(),
			Component: log.ComponentWorker,
		}),
	}
}

// RunOnce performs a single evaluation cycle.
func (w *AlertWorker) RunOnce(ctx context.Context) (RunResult, error) {
	asOf := w.now()

	txs, err := w.repo.Transactions(ctx)
	if err != nil {
		return RunResult{}, fmt.Errorf("load transactions: %w", err)
	}

	processed, err := w.engine.ProcessAndSaveAlerts(ctx, txs, w.income, asOf)
	if err != nil {
		return RunResult{}, fmt.Errorf("process alerts: %w", err)
	}
	res := RunResult{Added: len(processed.Added)}

	if w.retention > 0 {
		pruned, err := w.engine.PruneAlerts(ctx, w.retention, asOf)
		if err != nil {
			return res, fmt.Errorf("prune alerts: %w", err)
		}
		res.Pruned = pruned
	}

	if w.publisher == nil {
		return res, nil
	}
	for _, a := range processed.Added {
		if err := w.publisher.PublishAlert(ctx, a); err != nil {
			res.PublishErrors++
			w.logger.WarnContext(ctx, "Failed to publish alert",
				log.NewFields().
					WithOperation(log.OpPublish).
					WithAlert(a.ID).
					WithError(err).
					ToSlice()...)
			continue
		}
		res.Published++
	}
	return res, nil
}

// Run evaluates once immediately and then on every tick until ctx is
// cancelled. Cycle failures are logged and do not stop the loop.
func (w *AlertWorker) Run(ctx context.Context) error {
	w.runAndLog(ctx, "Initial alert evaluation")

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.InfoContext(ctx, "Alert worker stopping",
				log.FieldOperation, log.OpShutdown)
			return nil
		case <-ticker.C:
			w.runAndLog(ctx, "Periodic alert evaluation")
		}
	}
}

func (w *AlertWorker) runAndLog(ctx context.Context, label string) {
	start := time.Now()
	res, err := w.RunOnce(ctx)
	if err != nil {
		w.logger.ErrorContext(ctx, label+" failed",
			log.NewFields().
				WithOperation(log.OpEvaluate).
				WithError(err).
				ToSlice()...)
		return
	}
	w.logger.InfoContext(ctx, label+" complete",
		log.FieldOperation, log.OpEvaluate,
		"added", res.Added,
		"pruned", res.Pruned,
		"published", res.Published,
		"publish_errors", res.PublishErrors,
		log.FieldDuration, time.Since(start).Milliseconds(),
		"next_check", time.Now().Add(w.interval).Format("15:04:05"))
}
