package gaps

import (
	"sort"

	"github.com/rs/zerolog"

	"github.com/jswierk/allocator/internal/domain"
)

// Priority labels, ordered by urgency.
const (
	PriorityHigh     = "high"
	PriorityMedium   = "medium"
	PriorityConsider = "consider"
	PriorityHold     = "hold"
	PrioritySkip     = "skip"
)

// Gap thresholds in percentage points.
const (
	HighGapThreshold   = 10.0
	MediumGapThreshold = 3.0
	HoldBandWidth      = 3.0
)

// Row is one asset class in the gap analysis. Rows are created fresh per
// run and never mutated afterwards.
type Row struct {
	Region     domain.Region               `json:"region"`
	CurrentPct float64                     `json:"current_pct"`
	TargetPct  float64                     `json:"target_pct"`
	Gap        float64                     `json:"gap"` // target - current, percentage points
	Priority   string                      `json:"priority"`
	Valuation  *domain.ValuationSignal     `json:"valuation,omitempty"`
	Stance     *domain.InstitutionalStance `json:"stance,omitempty"`
}

// Analysis is the full gap analysis result.
type Analysis struct {
	Rows           []Row           `json:"rows"`
	HighPriority   []domain.Region `json:"high_priority"`
	MediumPriority []domain.Region `json:"medium_priority"`
}

// Analyzer compares current and target allocations per asset class.
type Analyzer struct {
	log zerolog.Logger
}

// NewAnalyzer creates a new gap analyzer.
func NewAnalyzer(log zerolog.Logger) *Analyzer {
	return &Analyzer{log: log.With().Str("component", "gap_analyzer").Logger()}
}

// Analyze builds one row per asset class in the union of both maps, with
// absent entries defaulting to zero. Allocations are in percentage points
// over the risky-asset universe; they need not sum to exactly 100. Rows
// come back ordered by absolute gap descending (region name as tie-break)
// so downstream allocation ordering is deterministic.
func (a *Analyzer) Analyze(
	current map[domain.Region]float64,
	target map[domain.Region]float64,
	valuations map[domain.Region]domain.ValuationSignal,
	stances map[domain.Region]domain.InstitutionalStance,
) Analysis {
	regions := unionRegions(current, target)

	analysis := Analysis{Rows: make([]Row, 0, len(regions))}
	for _, region := range regions {
		row := Row{
			Region:     region,
			CurrentPct: current[region],
			TargetPct:  target[region],
		}
		row.Gap = row.TargetPct - row.CurrentPct

		if v, ok := valuations[region]; ok {
			row.Valuation = &v
		}
		if s, ok := stances[region]; ok {
			row.Stance = &s
		}

		row.Priority = classify(row.Gap, row.Valuation, row.Stance)

		switch row.Priority {
		case PriorityHigh:
			analysis.HighPriority = append(analysis.HighPriority, region)
		case PriorityMedium:
			analysis.MediumPriority = append(analysis.MediumPriority, region)
		}

		analysis.Rows = append(analysis.Rows, row)
	}

	sort.SliceStable(analysis.Rows, func(i, j int) bool {
		gi, gj := abs(analysis.Rows[i].Gap), abs(analysis.Rows[j].Gap)
		if gi != gj {
			return gi > gj
		}
		return analysis.Rows[i].Region < analysis.Rows[j].Region
	})

	a.log.Debug().
		Int("num_rows", len(analysis.Rows)).
		Int("high_priority", len(analysis.HighPriority)).
		Msg("Gap analysis complete")

	return analysis
}

// classify assigns the action priority by fixed ordered rules; the first
// matching rule wins, so ties need no randomization.
func classify(gap float64, valuation *domain.ValuationSignal, stance *domain.InstitutionalStance) string {
	favorable := valuation != nil && *valuation == domain.SignalFavorable
	overweightView := stance != nil && *stance == domain.StanceOverweight

	switch {
	case gap >= HighGapThreshold:
		return PriorityHigh
	case gap > MediumGapThreshold:
		return PriorityMedium
	case gap > 0 && (favorable || overweightView):
		return PriorityConsider
	case abs(gap) <= HoldBandWidth:
		return PriorityHold
	default: // gap < -HoldBandWidth
		return PrioritySkip
	}
}

func unionRegions(current, target map[domain.Region]float64) []domain.Region {
	seen := make(map[domain.Region]bool, len(current)+len(target))
	regions := make([]domain.Region, 0, len(current)+len(target))
	for r := range current {
		if !seen[r] {
			seen[r] = true
			regions = append(regions, r)
		}
	}
	for r := range target {
		if !seen[r] {
			seen[r] = true
			regions = append(regions, r)
		}
	}
	sort.Slice(regions, func(i, j int) bool { return regions[i] < regions[j] })
	return regions
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
