package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"

	"fintrack/internal/alerts"
	"fintrack/internal/config"
	"fintrack/internal/core"
	"fintrack/internal/services"
	"fintrack/internal/similarity"
	"fintrack/internal/store"
)

type app struct {
	engine *services.Engine
	repo   *store.Repository
	cfg    *config.Config
	out    io.Writer
}

// monthFlags are the flags shared by every month report.
type monthFlags struct {
	date    string
	income  string
	savings string
}

func (a *app) newFlagSet(name string, mf *monthFlags) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	if mf != nil {
		fs.StringVar(&mf.date, "date", "", "reference date YYYY-MM-DD (default today)")
		fs.StringVar(&mf.income, "income", "", "monthly income (default MONTHLY_INCOME)")
		fs.StringVar(&mf.savings, "savings", "", "savings target (default SAVINGS_TARGET)")
	}
	return fs
}

func (mf monthFlags) asOf() (core.Date, error) {
	if mf.date == "" {
		return core.Now(), nil
	}
	return core.ParseDate(mf.date)
}

func moneyOr(s string, fallback core.Money) (core.Money, error) {
	if s == "" {
		return fallback, nil
	}
	return core.ParseMoney(s)
}

func (a *app) run(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "snapshot":
		return a.snapshot(ctx, args)
	case "project":
		return a.project(ctx, args)
	case "status":
		return a.status(ctx, args)
	case "overspend":
		return a.overspend(ctx, args)
	case "adjust":
		return a.adjust(ctx, args)
	case "duplicates":
		return a.duplicates(ctx, args)
	case "resolve":
		return a.resolve(ctx, args)
	case "alerts":
		return a.alerts(ctx, args)
	case "similarity":
		return a.similarity(args)
	case "limits":
		return a.limits(ctx, args)
	case "invoices":
		return a.invoices(ctx, args)
	case "transactions":
		return a.transactions(ctx, args)
	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, cmd)
	}
}

func (a *app) writeJSON(v any) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (a *app) snapshot(ctx context.Context, args []string) error {
	var mf monthFlags
	if err := a.newFlagSet("snapshot", &mf).Parse(args); err != nil {
		return err
	}
	asOf, err := mf.asOf()
	if err != nil {
		return err
	}
	income, err := moneyOr(mf.income, a.cfg.MonthlyIncome)
	if err != nil {
		return fmt.Errorf("income: %w", err)
	}
	snap, err := a.engine.Snapshot(ctx, income, asOf)
	if err != nil {
		return err
	}
	return a.writeJSON(snap)
}

func (a *app) project(ctx context.Context, args []string) error {
	var mf monthFlags
	fs := a.newFlagSet("project", &mf)
	months := fs.Int("months", 1, "number of months to project from -date")
	if err := fs.Parse(args); err != nil {
		return err
	}
	asOf, err := mf.asOf()
	if err != nil {
		return err
	}
	txs, err := a.repo.Transactions(ctx)
	if err != nil {
		return err
	}
	var out []core.Transaction
	for i := 0; i < max(1, *months); i++ {
		target := asOf.Period().AddMonths(i).Start()
		out = append(out, a.engine.ProjectRecurringTransactions(txs, target)...)
	}
	if out == nil {
		out = []core.Transaction{}
	}
	return a.writeJSON(out)
}

// monthView loads the stored transactions merged with asOf's projections.
func (a *app) monthView(ctx context.Context, asOf core.Date) ([]core.Transaction, error) {
	txs, err := a.repo.Transactions(ctx)
	if err != nil {
		return nil, err
	}
	return a.engine.MergedView(txs, asOf), nil
}

func (a *app) status(ctx context.Context, args []string) error {
	var mf monthFlags
	if err := a.newFlagSet("status", &mf).Parse(args); err != nil {
		return err
	}
	asOf, err := mf.asOf()
	if err != nil {
		return err
	}
	view, err := a.monthView(ctx, asOf)
	if err != nil {
		return err
	}
	limits, err := a.repo.BudgetLimits(ctx)
	if err != nil {
		return err
	}
	return a.writeJSON(a.engine.CalculateBudgetStatus(view, limits, asOf))
}

func (a *app) overspend(ctx context.Context, args []string) error {
	var mf monthFlags
	if err := a.newFlagSet("overspend", &mf).Parse(args); err != nil {
		return err
	}
	asOf, err := mf.asOf()
	if err != nil {
		return err
	}
	income, err := moneyOr(mf.income, a.cfg.MonthlyIncome)
	if err != nil {
		return fmt.Errorf("income: %w", err)
	}
	view, err := a.monthView(ctx, asOf)
	if err != nil {
		return err
	}
	return a.writeJSON(a.engine.CalculateOverspendProjection(view, income, asOf))
}

func (a *app) adjust(ctx context.Context, args []string) error {
	var mf monthFlags
	if err := a.newFlagSet("adjust", &mf).Parse(args); err != nil {
		return err
	}
	asOf, err := mf.asOf()
	if err != nil {
		return err
	}
	income, err := moneyOr(mf.income, a.cfg.MonthlyIncome)
	if err != nil {
		return fmt.Errorf("income: %w", err)
	}
	savings, err := moneyOr(mf.savings, a.cfg.SavingsTarget)
	if err != nil {
		return fmt.Errorf("savings: %w", err)
	}
	txs, err := a.repo.Transactions(ctx)
	if err != nil {
		return err
	}
	return a.writeJSON(a.engine.GenerateBudgetAdjustments(txs, income, savings, asOf))
}

func (a *app) duplicates(ctx context.Context, args []string) error {
	if err := a.newFlagSet("duplicates", nil).Parse(args); err != nil {
		return err
	}
	txs, err := a.repo.Transactions(ctx)
	if err != nil {
		return err
	}
	return a.writeJSON(a.engine.FindDuplicateGroups(txs))
}

func (a *app) resolve(ctx context.Context, args []string) error {
	fs := a.newFlagSet("resolve", nil)
	id := fs.String("id", "", "candidate transaction id")
	original := fs.String("original", "", "group original; alone it confirms the candidate as its duplicate")
	reason := fs.String("reason", "", "dismiss the candidate with this reason, only against -original when given")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id == "" {
		return fmt.Errorf("%w: -id is required", errUsage)
	}
	tx, err := a.engine.ResolveDuplicate(ctx, *id, services.Resolution{
		OriginalID:    *original,
		DismissReason: *reason,
	})
	if err != nil {
		return err
	}
	return a.writeJSON(tx)
}

func (a *app) alerts(ctx context.Context, args []string) error {
	if len(args) == 0 {
		args = []string{"list"}
	}
	switch args[0] {
	case "list":
		fs := a.newFlagSet("alerts list", nil)
		unread := fs.Bool("unread", false, "only unread alerts")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		stored, err := a.repo.Alerts(ctx)
		if err != nil {
			return err
		}
		if *unread {
			stored = filterUnread(stored)
		}
		return a.writeJSON(stored)
	case "process":
		var mf monthFlags
		if err := a.newFlagSet("alerts process", &mf).Parse(args[1:]); err != nil {
			return err
		}
		asOf, err := mf.asOf()
		if err != nil {
			return err
		}
		income, err := moneyOr(mf.income, a.cfg.MonthlyIncome)
		if err != nil {
			return fmt.Errorf("income: %w", err)
		}
		txs, err := a.repo.Transactions(ctx)
		if err != nil {
			return err
		}
		res, err := a.engine.ProcessAndSaveAlerts(ctx, txs, income, asOf)
		if err != nil {
			return err
		}
		return a.writeJSON(res.Added)
	case "read", "dismiss":
		if len(args) != 2 {
			return fmt.Errorf("%w: alerts %s <id>", errUsage, args[0])
		}
		update := a.engine.MarkAlertRead
		if args[0] == "dismiss" {
			update = a.engine.DismissAlert
		}
		found, err := update(ctx, args[1])
		if err != nil {
			return err
		}
		if !found {
			return fmt.Errorf("alert %q not found", args[1])
		}
		return nil
	case "prune":
		fs := a.newFlagSet("alerts prune", nil)
		retention := fs.Duration("retention", a.cfg.AlertRetention, "drop alerts older than this")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		n, err := a.engine.PruneAlerts(ctx, *retention, core.Now())
		if err != nil {
			return err
		}
		return a.writeJSON(map[string]int{"pruned": n})
	default:
		return fmt.Errorf("%w: unknown alerts command %q", errUsage, args[0])
	}
}

func (a *app) similarity(args []string) error {
	fs := a.newFlagSet("similarity", nil)
	threshold := fs.Float64("threshold", similarity.DefaultThreshold, "fuzzy match threshold")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 2 {
		return fmt.Errorf("%w: similarity <a> <b>", errUsage)
	}
	x, y := fs.Arg(0), fs.Arg(1)
	return a.writeJSON(struct {
		Score float64 `json:"score"`
		Match bool    `json:"match"`
	}{
		Score: a.engine.CalculateSimilarity(x, y),
		Match: a.engine.FuzzyMatch(x, y, *threshold),
	})
}

func (a *app) limits(ctx context.Context, args []string) error {
	if len(args) == 0 || args[0] == "list" {
		limits, err := a.repo.BudgetLimits(ctx)
		if err != nil {
			return err
		}
		return a.writeJSON(limits)
	}
	if args[0] != "add" {
		return fmt.Errorf("%w: unknown limits command %q", errUsage, args[0])
	}

	fs := a.newFlagSet("limits add", nil)
	scope := fs.String("scope", "global", "global, category or card")
	category := fs.String("category", "", "category for a category limit")
	issuer := fs.String("issuer", "", "card issuer for a card limit")
	amount := fs.String("amount", "", "monthly limit")
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}
	monthly, err := core.ParseMoney(*amount)
	if err != nil {
		return fmt.Errorf("amount: %w", err)
	}

	limit := core.BudgetLimit{ID: uuid.NewString(), MonthlyLimit: monthly, IsActive: true}
	switch core.ScopeType(*scope) {
	case core.ScopeGlobal:
		limit.Scope = core.GlobalScope{}
	case core.ScopeCategory:
		limit.Scope = core.CategoryScope{Category: core.Category(strings.ToLower(*category))}
	case core.ScopeCard:
		limit.Scope = core.CardScope{Issuer: *issuer}
	default:
		return fmt.Errorf("%w: %q", core.ErrInvalidScope, *scope)
	}
	if err := limit.Validate(); err != nil {
		return err
	}

	limits, err := a.repo.BudgetLimits(ctx)
	if err != nil {
		return err
	}
	if err := a.repo.SaveBudgetLimits(ctx, append(limits, limit)); err != nil {
		return err
	}
	return a.writeJSON(limit)
}

func (a *app) invoices(ctx context.Context, args []string) error {
	if len(args) == 0 || args[0] == "list" {
		invoices, err := a.repo.CardInvoices(ctx)
		if err != nil {
			return err
		}
		return a.writeJSON(invoices)
	}
	if args[0] != "add" {
		return fmt.Errorf("%w: unknown invoices command %q", errUsage, args[0])
	}

	fs := a.newFlagSet("invoices add", nil)
	issuer := fs.String("issuer", "", "card issuer")
	due := fs.String("due", "", "due date YYYY-MM-DD")
	total := fs.String("total", "", "invoice total")
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}
	dueDate, err := core.ParseDate(*due)
	if err != nil {
		return err
	}
	amount, err := core.ParseMoney(*total)
	if err != nil {
		return fmt.Errorf("total: %w", err)
	}
	inv := core.CardInvoice{ID: uuid.NewString(), Issuer: *issuer, DueDate: dueDate, Total: amount}
	if err := inv.Validate(); err != nil {
		return err
	}

	invoices, err := a.repo.CardInvoices(ctx)
	if err != nil {
		return err
	}
	if err := a.repo.SaveCardInvoices(ctx, append(invoices, inv)); err != nil {
		return err
	}
	return a.writeJSON(inv)
}

// transactions import appends the transactions of a JSON array file,
// assigning ids to those without one.
func (a *app) transactions(ctx context.Context, args []string) error {
	if len(args) == 0 || args[0] == "list" {
		txs, err := a.repo.Transactions(ctx)
		if err != nil {
			return err
		}
		return a.writeJSON(txs)
	}
	if args[0] != "import" || len(args) != 2 {
		return fmt.Errorf("%w: transactions list | import <file.json>", errUsage)
	}

	data, err := os.ReadFile(args[1])
	if err != nil {
		return err
	}
	var incoming []core.Transaction
	if err := json.Unmarshal(data, &incoming); err != nil {
		return fmt.Errorf("decode %s: %w", args[1], err)
	}
	for i := range incoming {
		if incoming[i].ID == "" {
			incoming[i].ID = uuid.NewString()
		}
		if err := incoming[i].Validate(); err != nil {
			return fmt.Errorf("transaction %d: %w", i, err)
		}
	}

	txs, err := a.repo.Transactions(ctx)
	if err != nil {
		return err
	}
	if err := a.repo.SaveTransactions(ctx, append(txs, incoming...)); err != nil {
		return err
	}
	return a.writeJSON(map[string]int{"imported": len(incoming)})
}

func filterUnread(list []alerts.Alert) []alerts.Alert {
	out := alerts.Unread(list)
	if out == nil {
		return []alerts.Alert{}
	}
	return out
}
