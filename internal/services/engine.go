// Package services wires the projection, budget, duplicate and alert
// components into the operations exposed to the binaries, and persists
// their results through the store.
package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"hash/fnv"
	"log/slog"

	"fintrack/internal/alerts"
	"fintrack/internal/budget"
	"fintrack/internal/cache"
	"fintrack/internal/core"
	"fintrack/internal/duplicates"
	"fintrack/internal/log"
	"fintrack/internal/projection"
	"fintrack/internal/similarity"
	"fintrack/internal/store"
)

var (
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrInvalidResolution   = errors.New("resolution needs an original id, a dismiss reason, or both to dismiss a single pair")
)

// Engine is the entry point of every exposed operation.
type Engine struct {
	repo      *store.Repository
	projector *projection.Projector
	analyzer  *budget.Analyzer
	detector  *duplicates.Detector
	alerts    *alerts.Engine
	cache     cache.Cache[[]core.Transaction]
	logger    *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithProjector replaces the default strict, target-month-clamping projector.
func WithProjector(p *projection.Projector) Option {
	return func(e *Engine) {
		if p != nil {
			e.projector = p
		}
	}
}

// WithProjectionCache memoizes projections per target month and input set.
func WithProjectionCache(c cache.Cache[[]core.Transaction]) Option {
	return func(e *Engine) { e.cache = c }
}

func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// NewEngine creates an engine over repo. repo may be nil for callers that
// only use the pure operations.
func NewEngine(repo *store.Repository, opts ...Option) *Engine {
	e := &Engine{repo: repo, logger: slog.Default()}
	for _, opt := range opts {
		opt(e)
	}
	if e.projector == nil {
		e.projector = projection.New(projection.WithLogger(e.logger))
	}
	e.analyzer = budget.NewAnalyzer(e.logger)
	e.detector = duplicates.NewDetector(e.logger)
	e.alerts = alerts.NewEngine(e.analyzer, e.logger)
	return e
}

// ProjectRecurringTransactions returns the synthetic occurrences of txs in
// the month containing target.
func (e *Engine) ProjectRecurringTransactions(txs []core.Transaction, target core.Date) []core.Transaction {
	period := target.Period()
	if e.cache == nil {
		return e.projector.Project(txs, period)
	}

	key, err := projectionKey(txs, period)
	if err != nil {
		e.logger.Warn("Projection cache bypassed",
			log.FieldComponent, log.ComponentCache,
			log.FieldError, err)
		return e.projector.Project(txs, period)
	}
	if hit, ok := e.cache.Get(key); ok {
		return cloneAll(hit)
	}
	out := e.projector.Project(txs, period)
	e.cache.Set(key, cloneAll(out))
	return out
}

// MergedView returns txs plus the projections for asOf's month.
func (e *Engine) MergedView(txs []core.Transaction, asOf core.Date) []core.Transaction {
	return projection.Merge(txs, e.ProjectRecurringTransactions(txs, asOf))
}

func (e *Engine) CalculateBudgetStatus(txs []core.Transaction, limits []core.BudgetLimit, asOf core.Date) []budget.Status {
	return e.analyzer.Status(txs, limits, asOf)
}

func (e *Engine) CalculateOverspendProjection(txs []core.Transaction, monthlyIncome core.Money, asOf core.Date) budget.OverspendProjection {
	return e.analyzer.OverspendProjection(txs, monthlyIncome, asOf)
}

func (e *Engine) GenerateBudgetAdjustments(txs []core.Transaction, monthlyIncome, savingsTarget core.Money, asOf core.Date) []budget.AdjustmentSuggestion {
	return e.analyzer.Adjustments(txs, monthlyIncome, savingsTarget, asOf)
}

func (e *Engine) CalculateSimilarity(a, b string) float64 {
	return similarity.Similarity(a, b)
}

func (e *Engine) FuzzyMatch(target, query string, threshold float64) bool {
	return similarity.FuzzyMatch(target, query, threshold)
}

func (e *Engine) FindDuplicateGroups(txs []core.Transaction) []duplicates.Group {
	return e.detector.FindGroups(txs)
}

// GenerateAlerts evaluates the alert rules over in without touching the
// store.
func (e *Engine) GenerateAlerts(in alerts.Input) []alerts.Alert {
	return e.alerts.Generate(in)
}

// projectionKey identifies a projection by target month and a hash of the
// input transactions.
func projectionKey(txs []core.Transaction, p core.Period) (string, error) {
	data, err := json.Marshal(txs)
	if err != nil {
		return "", fmt.Errorf("fingerprint transactions: %w", err)
	}
	h := fnv.New64a()
	h.Write(data)
	return fmt.Sprintf("%s:%x", p, h.Sum64()), nil
}

func cloneAll(txs []core.Transaction) []core.Transaction {
	if txs == nil {
		return nil
	}
	out := make([]core.Transaction, len(txs))
	for i, t := range txs {
		out[i] = t.Clone()
	}
	return out
}

func (e *Engine) requireRepo() error {
	if e.repo == nil {
		return errors.New("engine has no store")
	}
	return nil
}
