package contributions

import (
	"fmt"
	"sort"

	"github.com/rs/zerolog"

	"github.com/jswierk/allocator/internal/domain"
	"github.com/jswierk/allocator/internal/modules/gaps"
)

// DefaultMinAllocationEUR is the smallest position top-up worth placing.
const DefaultMinAllocationEUR = 500.0

// ReconcileToleranceEUR bounds the accepted rounding drift between the
// contribution and the sum of allocations plus the unallocated pool.
const ReconcileToleranceEUR = 0.01

// Recommendation is a single cash deployment suggestion.
type Recommendation struct {
	Region              domain.Region `json:"region"`
	AmountEUR           float64       `json:"amount_eur"`
	ShareOfContribution float64       `json:"share_of_contribution"` // percent
	Rationale           string        `json:"rationale"`
}

// PreviewPosition shows the simulated post-allocation state of one asset
// class. Pure arithmetic over the inputs, no re-optimization.
type PreviewPosition struct {
	Region      domain.Region `json:"region"`
	CurrentEUR  float64       `json:"current_eur"`
	CurrentPct  float64       `json:"current_pct"`
	AmountAdded float64       `json:"amount_added"`
	NewEUR      float64       `json:"new_eur"`
	NewPct      float64       `json:"new_pct"`
	TargetPct   float64       `json:"target_pct"`
	GapAfter    float64       `json:"gap_after"`
}

// Plan is the full contribution allocation result. The amounts reconcile
// exactly: sum of recommendations plus Unallocated equals the contribution.
type Plan struct {
	ContributionEUR float64           `json:"contribution_eur"`
	Recommendations []Recommendation  `json:"recommendations"`
	UnallocatedEUR  float64           `json:"unallocated_eur"`
	Preview         []PreviewPosition `json:"preview"`
	Rationale       string            `json:"rationale,omitempty"`
}

// Allocator distributes a new cash contribution across underweight
// positions following the gap analysis.
type Allocator struct {
	log zerolog.Logger
}

// NewAllocator creates a new contribution allocator.
func NewAllocator(log zerolog.Logger) *Allocator {
	return &Allocator{log: log.With().Str("component", "contribution_allocator").Logger()}
}

// Allocate runs the greedy waterfall: eligible rows (positive gap with an
// actionable priority) split the contribution proportionally to their gaps
// in a single pass. Proposed amounts below minAllocation are zeroed into
// the unallocated pool and deliberately not redistributed; simplicity over
// optimality is the documented policy.
func (a *Allocator) Allocate(
	contributionEUR float64,
	portfolioValueEUR float64,
	analysis gaps.Analysis,
	minAllocationEUR float64,
) (*Plan, error) {
	if contributionEUR <= 0 {
		return nil, domain.NewValidationError("contribution_eur", "must be positive, got %.2f", contributionEUR)
	}
	if portfolioValueEUR < 0 {
		return nil, domain.NewValidationError("portfolio_value_eur", "must not be negative, got %.2f", portfolioValueEUR)
	}
	if minAllocationEUR <= 0 {
		minAllocationEUR = DefaultMinAllocationEUR
	}

	eligible := eligibleRows(analysis.Rows)

	plan := &Plan{ContributionEUR: contributionEUR}

	if len(eligible) == 0 {
		plan.UnallocatedEUR = contributionEUR
		plan.Rationale = "portfolio is already at or above target in every asset class; nothing to deploy"
		plan.Preview = buildPreview(analysis.Rows, nil, portfolioValueEUR, contributionEUR)
		a.log.Info().Float64("contribution_eur", contributionEUR).Msg("No underweight positions, contribution left unallocated")
		return plan, nil
	}

	var gapSum float64
	for _, row := range eligible {
		gapSum += row.Gap
	}

	// Single-pass proportional split: each eligible row gets its share of
	// the contribution by gap fraction, computed once against the full
	// eligible set. Fractions sum to 1, so amounts reconcile by
	// construction before the minimum-threshold pass.
	allocations := make(map[domain.Region]float64, len(eligible))
	var unallocated float64
	for _, row := range eligible {
		amount := row.Gap / gapSum * contributionEUR
		if amount < minAllocationEUR {
			unallocated += amount
			continue
		}
		allocations[row.Region] = amount
	}

	futureValue := portfolioValueEUR + contributionEUR
	for _, row := range eligible {
		amount, ok := allocations[row.Region]
		if !ok {
			continue
		}
		currentEUR := row.CurrentPct / 100 * portfolioValueEUR
		newPct := (currentEUR + amount) / futureValue * 100
		plan.Recommendations = append(plan.Recommendations, Recommendation{
			Region:              row.Region,
			AmountEUR:           amount,
			ShareOfContribution: amount / contributionEUR * 100,
			Rationale: fmt.Sprintf("%.1f%% underweight → %.1f%% after (target: %.1f%%)",
				row.Gap, newPct, row.TargetPct),
		})
	}
	plan.UnallocatedEUR = unallocated
	plan.Preview = buildPreview(analysis.Rows, allocations, portfolioValueEUR, contributionEUR)

	a.log.Info().
		Float64("contribution_eur", contributionEUR).
		Int("num_recommendations", len(plan.Recommendations)).
		Float64("unallocated_eur", plan.UnallocatedEUR).
		Msg("Contribution allocated")

	return plan, nil
}

// eligibleRows filters to positive-gap rows with an actionable priority and
// orders them by priority tier, then gap magnitude descending within a tier.
func eligibleRows(rows []gaps.Row) []gaps.Row {
	tier := map[string]int{
		gaps.PriorityHigh:     0,
		gaps.PriorityMedium:   1,
		gaps.PriorityConsider: 2,
	}

	var eligible []gaps.Row
	for _, row := range rows {
		if _, actionable := tier[row.Priority]; actionable && row.Gap > 0 {
			eligible = append(eligible, row)
		}
	}

	sort.SliceStable(eligible, func(i, j int) bool {
		ti, tj := tier[eligible[i].Priority], tier[eligible[j].Priority]
		if ti != tj {
			return ti < tj
		}
		if eligible[i].Gap != eligible[j].Gap {
			return eligible[i].Gap > eligible[j].Gap
		}
		return eligible[i].Region < eligible[j].Region
	})

	return eligible
}

// buildPreview simulates adding each allocation to its current EUR value
// and recomputes percentages against the grown portfolio total.
func buildPreview(
	rows []gaps.Row,
	allocations map[domain.Region]float64,
	portfolioValueEUR float64,
	contributionEUR float64,
) []PreviewPosition {
	futureValue := portfolioValueEUR + contributionEUR

	preview := make([]PreviewPosition, 0, len(rows))
	for _, row := range rows {
		currentEUR := row.CurrentPct / 100 * portfolioValueEUR
		added := allocations[row.Region]
		newEUR := currentEUR + added

		var newPct float64
		if futureValue > 0 {
			newPct = newEUR / futureValue * 100
		}

		preview = append(preview, PreviewPosition{
			Region:      row.Region,
			CurrentEUR:  currentEUR,
			CurrentPct:  row.CurrentPct,
			AmountAdded: added,
			NewEUR:      newEUR,
			NewPct:      newPct,
			TargetPct:   row.TargetPct,
			GapAfter:    row.TargetPct - newPct,
		})
	}

	sort.SliceStable(preview, func(i, j int) bool {
		if preview[i].GapAfter != preview[j].GapAfter {
			return preview[i].GapAfter > preview[j].GapAfter
		}
		return preview[i].Region < preview[j].Region
	})

	return preview
}
