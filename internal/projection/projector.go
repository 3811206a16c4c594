// Package projection expands recurring transactions into synthetic monthly
// occurrences.
//
// A projected transaction is a copy of its recurring source with a new id,
// new dates and IsProjected set. Projections are recomputed on every call
// and never persisted; the same input always yields the same output.
package projection

import (
	"fmt"
	"log/slog"
	"strings"

	"fintrack/internal/core"
	"fintrack/internal/log"
)

// BoundaryPolicy decides whether the anchor's own month receives a projection.
type BoundaryPolicy string

const (
	// BoundaryStrict projects only into months strictly after the anchor month.
	BoundaryStrict BoundaryPolicy = "strict"
	// BoundaryInclusive also projects into the anchor month itself.
	BoundaryInclusive BoundaryPolicy = "inclusive"
)

func (b BoundaryPolicy) IsValid() bool {
	return b == BoundaryStrict || b == BoundaryInclusive
}

// Projector expands recurring transactions into a target period.
type Projector struct {
	boundary BoundaryPolicy
	clamp    DayClamper
	logger   *slog.Logger
}

// Option configures a Projector.
type Option func(*Projector)

// WithBoundary selects the anchor month policy.
func WithBoundary(b BoundaryPolicy) Option {
	return func(p *Projector) {
		if b.IsValid() {
			p.boundary = b
		}
	}
}

// WithClamp selects the day-of-month clamp strategy.
func WithClamp(c DayClamper) Option {
	return func(p *Projector) {
		if c != nil {
			p.clamp = c
		}
	}
}

// WithLogger sets the logger used for skipped records.
func WithLogger(l *slog.Logger) Option {
	return func(p *Projector) {
		if l != nil {
			p.logger = l
		}
	}
}

// New creates a projector with strict boundary and target-month clamping
// unless overridden.
func New(opts ...Option) *Projector {
	p := &Projector{
		boundary: BoundaryStrict,
		clamp:    TargetMonthEnd{},
		logger:   slog.Default(),
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Boundary returns the configured boundary policy.
func (p *Projector) Boundary() BoundaryPolicy { return p.boundary }

// ProjectedID is the deterministic id of the projection of sourceID into target.
func ProjectedID(sourceID string, target core.Period) string {
	return fmt.Sprintf("%s-proj-%04d-%02d", sourceID, target.Year, int(target.Month))
}

// Project returns the synthetic occurrences of every recurring transaction
// in txs for the target period. Records without a usable anchor date are
// skipped individually.
func (p *Projector) Project(txs []core.Transaction, target core.Period) []core.Transaction {
	posted := postedDescriptions(txs, target)

	var out []core.Transaction
	for _, src := range txs {
		if !src.IsRecurring || src.IsProjected {
			continue
		}

		anchor := src.BucketDate()
		if err := anchor.Validate(); err != nil {
			p.logger.Warn("Skipping recurring transaction with invalid anchor date",
				log.FieldComponent, log.ComponentProjection,
				log.FieldTransactionID, src.ID,
				log.FieldError, err)
			continue
		}

		if !src.RecurringEndDate.IsZero() && src.RecurringEndDate.Period().Compare(target) <= 0 {
			continue
		}

		if !p.reaches(anchor.Period(), target) {
			continue
		}

		if ids, ok := posted[descriptionKey(src.Description)]; ok && hasOtherID(ids, src.ID) {
			continue
		}

		out = append(out, p.occurrence(src, anchor, target))
	}
	return out
}

// ProjectRange projects into months consecutive periods starting at from.
func (p *Projector) ProjectRange(txs []core.Transaction, from core.Period, months int) []core.Transaction {
	var out []core.Transaction
	for i := 0; i < months; i++ {
		out = append(out, p.Project(txs, from.AddMonths(i))...)
	}
	return out
}

func (p *Projector) reaches(anchor, target core.Period) bool {
	if p.boundary == BoundaryInclusive {
		return target.Compare(anchor) >= 0
	}
	return target.After(anchor)
}

func (p *Projector) occurrence(src core.Transaction, anchor core.Date, target core.Period) core.Transaction {
	when := p.clamp.Place(target, anchor.Day())

	occ := src.Clone()
	occ.ID = ProjectedID(src.ID, target)
	occ.Date = when
	if !src.PaymentDate.IsZero() {
		occ.PaymentDate = when
	}
	occ.IsProjected = true
	occ.RecurringSourceID = src.ID
	return occ
}

// postedDescriptions indexes the ids of real transactions already booked in
// target by normalized description.
func postedDescriptions(txs []core.Transaction, target core.Period) map[string][]string {
	idx := map[string][]string{}
	for _, t := range txs {
		if t.IsProjected || !t.InPeriod(target) {
			continue
		}
		k := descriptionKey(t.Description)
		idx[k] = append(idx[k], t.ID)
	}
	return idx
}

func hasOtherID(ids []string, id string) bool {
	for _, other := range ids {
		if other != id {
			return true
		}
	}
	return false
}

func descriptionKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Merge returns the real transactions followed by the projected ones.
func Merge(real, projected []core.Transaction) []core.Transaction {
	out := make([]core.Transaction, 0, len(real)+len(projected))
	for _, t := range real {
		if !t.IsProjected {
			out = append(out, t)
		}
	}
	return append(out, projected...)
}
