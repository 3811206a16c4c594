// Package duplicates groups probable duplicate transactions for manual review.
//
// Detection is heuristic: a pair is compared on amount, description, date,
// category and issuer, and each signal either adds a reason, raises the
// duplicate flag, or both. A candidate is accepted only when the flag is set
// and at least MinReasons reasons agree.
package duplicates

import (
	"log/slog"
	"sort"
	"strings"

	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/similarity"
)

const (
	// DateWindowDays is the maximum distance in days for the date signal.
	DateWindowDays = 3
	// MinReasons is the number of agreeing signals required for a match.
	MinReasons = 2
)

// AmountTolerance is the largest amount difference still considered equal.
var AmountTolerance = core.Cents(1)

// Reason names one signal that matched.
type Reason string

const (
	ReasonAmount      Reason = "same_amount"
	ReasonDescription Reason = "similar_description"
	ReasonDate        Reason = "close_date"
	ReasonCategory    Reason = "same_category"
	ReasonIssuer      Reason = "same_issuer"
)

type (
	// Candidate is a transaction suspected to duplicate a group's original.
	Candidate struct {
		Transaction core.Transaction `json:"transaction"`
		Similarity  float64          `json:"similarity"`
		Reasons     []Reason         `json:"reasons"`
	}

	// Group is an original transaction and its suspected duplicates, best
	// match first.
	Group struct {
		Original   core.Transaction `json:"original"`
		Candidates []Candidate      `json:"candidates"`
	}
)

// Detector finds duplicate groups.
type Detector struct {
	threshold float64
	logger    *slog.Logger
}

// NewDetector creates a detector using the default description threshold.
func NewDetector(logger *slog.Logger) *Detector {
	if logger == nil {
		logger = slog.Default()
	}
	return &Detector{threshold: similarity.DefaultThreshold, logger: logger}
}

// FindGroups scans txs newest first. Each unvisited transaction seeds a
// group with every older unvisited transaction that matches it; seeds and
// accepted candidates are never reconsidered. Confirmed duplicates and
// projected transactions are ignored. A dismissed transaction is only kept
// apart from the original it was dismissed against; a dismissal without an
// original excludes it entirely.
func (d *Detector) FindGroups(txs []core.Transaction) []Group {
	pool := make([]core.Transaction, 0, len(txs))
	for _, t := range txs {
		if t.IsDuplicate || t.IsProjected || (t.IgnoredReason != "" && t.IgnoredAgainst == "") {
			continue
		}
		pool = append(pool, t)
	}
	sort.SliceStable(pool, func(i, j int) bool {
		return pool[i].Date.After(pool[j].Date)
	})

	visited := make([]bool, len(pool))
	var groups []Group
	for i, seed := range pool {
		if visited[i] {
			continue
		}
		var candidates []Candidate
		var matched []int
		for j := i + 1; j < len(pool); j++ {
			if visited[j] || dismissedPair(seed, pool[j]) {
				continue
			}
			c, ok := d.compare(seed, pool[j])
			if !ok {
				continue
			}
			candidates = append(candidates, c)
			matched = append(matched, j)
		}
		if len(candidates) == 0 {
			continue
		}
		visited[i] = true
		for _, j := range matched {
			visited[j] = true
		}
		sort.SliceStable(candidates, func(a, b int) bool {
			return candidates[a].Similarity > candidates[b].Similarity
		})
		groups = append(groups, Group{Original: seed, Candidates: candidates})
	}

	d.logger.Debug("Duplicate scan completed",
		log.FieldComponent, log.ComponentDuplicates,
		"transactions", len(pool),
		"groups", len(groups))
	return groups
}

func (d *Detector) compare(t, o core.Transaction) (Candidate, bool) {
	var (
		reasons []Reason
		flagged bool
	)

	diff := t.Amount.Sub(o.Amount).Cents
	if diff < 0 {
		diff = -diff
	}
	if diff <= AmountTolerance.Cents {
		reasons = append(reasons, ReasonAmount)
		flagged = true
	}

	score := similarity.Similarity(t.Description, o.Description)
	if d.descriptionsMatch(t.Description, o.Description, score) {
		reasons = append(reasons, ReasonDescription)
		flagged = true
	}

	if !t.Date.IsZero() && !o.Date.IsZero() {
		if days := core.DaysBetween(t.Date, o.Date); days <= DateWindowDays {
			reasons = append(reasons, ReasonDate)
			if days == 0 {
				flagged = true
			}
		}
	}

	if t.Category == o.Category && t.Type == o.Type {
		reasons = append(reasons, ReasonCategory)
	}

	ti, oi := strings.TrimSpace(t.Issuer), strings.TrimSpace(o.Issuer)
	if ti != "" && strings.EqualFold(ti, oi) {
		reasons = append(reasons, ReasonIssuer)
	}

	if !flagged || len(reasons) < MinReasons {
		return Candidate{}, false
	}
	return Candidate{Transaction: o, Similarity: score, Reasons: reasons}, true
}

// descriptionsMatch requires both descriptions and an overall score of at
// least the detector threshold.
func (d *Detector) descriptionsMatch(a, b string, score float64) bool {
	if similarity.Normalize(a) == "" || similarity.Normalize(b) == "" {
		return false
	}
	return score >= d.threshold
}
