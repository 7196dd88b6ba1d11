package views

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/jswierk/allocator/internal/domain"
)

// Additive return adjustments, in decimal.
const (
	StanceOverweightAdjustment   = 0.01  // +1.0pp
	StanceUnderweightAdjustment  = -0.01 // -1.0pp
	ValuationFavorableAdjustment = 0.005 // +0.5pp
	ValuationCautiousAdjustment  = -0.01 // -1.0pp
)

// Settings controls the view-blending stage.
type Settings struct {
	Enabled   bool    // when false, base returns pass through unchanged
	ReturnMin float64 // lower edge of the sanity band, decimal
	ReturnMax float64 // upper edge of the sanity band, decimal
}

// Adjustment records the view blending applied to a single asset class.
type Adjustment struct {
	Region         domain.Region `json:"region"`
	BaseReturn     float64       `json:"base_return"`
	Adjustment     float64       `json:"adjustment"`
	AdjustedReturn float64       `json:"adjusted_return"`
	Sources        []string      `json:"sources"`
	Rationale      string        `json:"rationale"`
	Suspicious     bool          `json:"suspicious"`
	SuspicionNote  string        `json:"suspicion_note,omitempty"`
}

// Result is the outcome of one view-blending pass over the asset universe.
// Adjustments preserve the input asset order.
type Result struct {
	Adjustments       []Adjustment `json:"adjustments"`
	AnySuspicious     bool         `json:"any_suspicious"`
	AdjustmentsActive bool         `json:"adjustments_active"`
}

// AdjustedReturns extracts the adjusted expected-return vector in input order.
func (r Result) AdjustedReturns() []float64 {
	out := make([]float64, len(r.Adjustments))
	for i, adj := range r.Adjustments {
		out[i] = adj.AdjustedReturn
	}
	return out
}

// Adjuster blends qualitative views into expected returns before
// optimization. It is a pure function of its inputs: same assets and
// settings always produce the same result.
type Adjuster struct {
	settings Settings
	log      zerolog.Logger
}

// NewAdjuster creates a new view adjuster.
func NewAdjuster(settings Settings, log zerolog.Logger) *Adjuster {
	return &Adjuster{
		settings: settings,
		log:      log.With().Str("component", "view_adjuster").Logger(),
	}
}

// AdjustReturns applies stance and valuation adjustments to each asset's
// base expected return. Stance and valuation contributions are independent
// and summed. Values outside the sanity band are flagged, never clamped;
// the caller decides whether to confirm, reject, or override them.
func (a *Adjuster) AdjustReturns(assets []domain.AssetClass) Result {
	result := Result{
		Adjustments:       make([]Adjustment, 0, len(assets)),
		AdjustmentsActive: a.settings.Enabled,
	}

	for _, asset := range assets {
		adj := a.adjustSingle(asset)
		if adj.Suspicious {
			result.AnySuspicious = true
		}
		result.Adjustments = append(result.Adjustments, adj)
	}

	a.log.Debug().
		Int("num_assets", len(assets)).
		Bool("enabled", a.settings.Enabled).
		Bool("any_suspicious", result.AnySuspicious).
		Msg("Applied view adjustments")

	return result
}

func (a *Adjuster) adjustSingle(asset domain.AssetClass) Adjustment {
	var total float64
	var sources []string
	var rationaleParts []string

	if a.settings.Enabled {
		if asset.Stance != nil {
			var delta float64
			switch *asset.Stance {
			case domain.StanceOverweight:
				delta = StanceOverweightAdjustment
			case domain.StanceUnderweight:
				delta = StanceUnderweightAdjustment
			}
			if delta != 0 {
				total += delta
				sources = append(sources, "Institutional consensus")
				rationaleParts = append(rationaleParts,
					fmt.Sprintf("institutional %s (%+.1f%%)", *asset.Stance, delta*100))
			}
		}

		if asset.Valuation != nil {
			var delta float64
			switch *asset.Valuation {
			case domain.SignalFavorable:
				delta = ValuationFavorableAdjustment
			case domain.SignalCautious:
				delta = ValuationCautiousAdjustment
			}
			if delta != 0 {
				total += delta
				sources = append(sources, "Valuation analysis")
				rationaleParts = append(rationaleParts,
					fmt.Sprintf("valuation %s (%+.1f%%)", *asset.Valuation, delta*100))
			}
		}
	}

	adjusted := asset.ExpectedReturn + total

	adj := Adjustment{
		Region:         asset.Region,
		BaseReturn:     asset.ExpectedReturn,
		Adjustment:     total,
		AdjustedReturn: adjusted,
		Sources:        sources,
		Rationale:      strings.Join(rationaleParts, " + "),
	}
	if adj.Rationale == "" {
		adj.Sources = []string{"No adjustment applied"}
		adj.Rationale = "Base return (no view adjustment)"
	}

	if adjusted < a.settings.ReturnMin || adjusted > a.settings.ReturnMax {
		adj.Suspicious = true
		adj.SuspicionNote = fmt.Sprintf(
			"expected return %.2f%% is outside the sanity band [%.1f%%, %.1f%%]; confirm or override before optimizing",
			adjusted*100, a.settings.ReturnMin*100, a.settings.ReturnMax*100)
	}

	return adj
}
