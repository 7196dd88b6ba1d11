package rebalancing

import (
	"fmt"
	"math"
	"sort"

	"github.com/rs/zerolog"

	"github.com/jswierk/allocator/internal/domain"
)

// DefaultThresholdPct is the drift that flags a position for rebalancing.
const DefaultThresholdPct = 5.0

// TaxNote is the standard caveat attached to every sell suggestion. Actual
// tax owed is never computed here.
const TaxNote = "Selling may trigger taxable gains; consider tax implications first. Quarterly rebalancing is typically sufficient."

// SellRecommendation flags an overweight position as a reduction candidate.
type SellRecommendation struct {
	Region     domain.Region `json:"region"`
	CurrentPct float64       `json:"current_pct"`
	TargetPct  float64       `json:"target_pct"`
	ExcessPct  float64       `json:"excess_pct"` // current - target
	Rationale  string        `json:"rationale"`
}

// CheckResult is the outcome of one drift check.
type CheckResult struct {
	IsRebalanceRecommended bool                 `json:"is_rebalance_recommended"`
	MaxDeviationPct        float64              `json:"max_deviation_pct"`
	OverweightPositions    []SellRecommendation `json:"overweight_positions"`
	UnderweightPositions   []domain.Region      `json:"underweight_positions"`
	TaxNote                string               `json:"tax_note"`
}

// Checker flags positions whose drift from target exceeds a threshold.
type Checker struct {
	log zerolog.Logger
}

// NewChecker creates a new rebalance checker.
func NewChecker(log zerolog.Logger) *Checker {
	return &Checker{log: log.With().Str("component", "rebalance_checker").Logger()}
}

// Check compares current and target allocations over the union of both
// maps. Rebalancing is recommended iff at least one position is overweight
// by strictly more than the threshold; drift exactly at the threshold does
// not trigger. MaxDeviationPct covers underweight rows too, for visibility.
// Underweight positions come back as plain tags: sizing the buys is the
// contribution allocator's job.
func (c *Checker) Check(
	current map[domain.Region]float64,
	target map[domain.Region]float64,
	thresholdPct float64,
) CheckResult {
	if thresholdPct <= 0 {
		thresholdPct = DefaultThresholdPct
	}

	result := CheckResult{TaxNote: TaxNote}

	for _, region := range unionRegions(current, target) {
		currentPct := current[region]
		targetPct := target[region]
		drift := currentPct - targetPct

		if dev := math.Abs(drift); dev > result.MaxDeviationPct {
			result.MaxDeviationPct = dev
		}

		switch {
		case drift > thresholdPct:
			result.OverweightPositions = append(result.OverweightPositions, SellRecommendation{
				Region:     region,
				CurrentPct: currentPct,
				TargetPct:  targetPct,
				ExcessPct:  drift,
				Rationale:  fmt.Sprintf("position is %.1f%% above its target allocation", drift),
			})
		case drift < -thresholdPct:
			result.UnderweightPositions = append(result.UnderweightPositions, region)
		}
	}

	result.IsRebalanceRecommended = len(result.OverweightPositions) > 0

	c.log.Debug().
		Bool("recommended", result.IsRebalanceRecommended).
		Float64("max_deviation_pct", result.MaxDeviationPct).
		Int("overweight", len(result.OverweightPositions)).
		Int("underweight", len(result.UnderweightPositions)).
		Msg("Rebalance check complete")

	return result
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
