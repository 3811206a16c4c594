package alerts

import (
	"log/slog"

	"fintrack/internal/budget"
	"fintrack/internal/core"
	"fintrack/internal/log"
)

// Input is everything one evaluation looks at. Transactions is the merged
// real plus projected view.
type Input struct {
	Transactions  []core.Transaction
	Limits        []core.BudgetLimit
	Invoices      []core.CardInvoice
	MonthlyIncome core.Money
	AsOf          core.Date
	Configs       []Configuration
}

// snapshot holds the values shared by every rule of one evaluation.
type snapshot struct {
	Input
	period   core.Period
	statuses []budget.Status
	current  core.MonthOverview
}

// Engine runs the ordered rule list.
type Engine struct {
	analyzer *budget.Analyzer
	logger   *slog.Logger
}

// NewEngine creates an engine. A nil analyzer or logger gets a default.
func NewEngine(analyzer *budget.Analyzer, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	if analyzer == nil {
		analyzer = budget.NewAnalyzer(logger)
	}
	return &Engine{analyzer: analyzer, logger: logger}
}

// Generate evaluates every enabled rule in order. Rules missing from
// in.Configs fall back to DefaultConfigurations. CreatedAt is in.AsOf.
func (e *Engine) Generate(in Input) []Alert {
	snap := snapshot{
		Input:    in,
		period:   in.AsOf.Period(),
		statuses: e.analyzer.Status(in.Transactions, in.Limits, in.AsOf),
		current:  core.Overview(in.Transactions, in.AsOf.Period()),
	}
	configs := resolveConfigs(in.Configs)

	var out []Alert
	for _, r := range rules {
		cfg := configs[r.typ]
		if !cfg.Enabled {
			continue
		}
		var th float64
		if cfg.Threshold != nil {
			th = *cfg.Threshold
		}
		fired := r.eval(e, snap, th)
		for i := range fired {
			fired[i].Type = r.typ
			fired[i].Severity = r.severity
			fired[i].Period = snap.period.String()
			fired[i].Threshold = th
			fired[i].CreatedAt = in.AsOf
		}
		out = append(out, fired...)
	}

	e.logger.Debug("Alert rules evaluated",
		log.FieldComponent, log.ComponentAlerts,
		log.FieldPeriod, snap.period.String(),
		log.FieldCount, len(out))
	return out
}

// resolveConfigs indexes configs by type on top of the defaults. A stored
// configuration without a threshold keeps the default one.
func resolveConfigs(configs []Configuration) map[Type]Configuration {
	out := map[Type]Configuration{}
	for _, c := range DefaultConfigurations() {
		out[c.Type] = c
	}
	for _, c := range configs {
		def, ok := out[c.Type]
		if !ok {
			continue
		}
		if c.Threshold == nil {
			c.Threshold = def.Threshold
		}
		out[c.Type] = c
	}
	return out
}
