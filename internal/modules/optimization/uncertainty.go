package optimization

import (
	"github.com/jswierk/allocator/pkg/formulas"
)

// Uncertainty thresholds over the expected-return spread, in percentage points.
const (
	SpreadLowMaxPct    = 1.5
	SpreadMediumMaxPct = 3.0

	// ConcentratedHerfindahl marks a portfolio concentrated enough to bump
	// the uncertainty level one notch.
	ConcentratedHerfindahl = 0.40

	// ConfidenceMultiplier scales the return spread into the reported
	// confidence interval.
	ConfidenceMultiplier = 1.0
)

// EstimateUncertainty derives a qualitative confidence label for the
// expected-return assumptions from the spread of the input vector and the
// Herfindahl concentration of the resulting weights. The label is advisory
// and never alters the optimization result.
func EstimateUncertainty(expectedReturns []float64, weights []float64, portfolioReturn float64) UncertaintyReport {
	spread := formulas.Spread(expectedReturns)
	spreadPct := spread * 100
	herfindahl := formulas.Herfindahl(weights)

	level := "low"
	switch {
	case spreadPct > SpreadMediumMaxPct:
		level = "high"
	case spreadPct >= SpreadLowMaxPct:
		level = "medium"
	}

	// Concentration amplifies estimation error in the dominant positions.
	if herfindahl > ConcentratedHerfindahl {
		switch level {
		case "low":
			level = "medium"
		case "medium":
			level = "high"
		}
	}

	margin := ConfidenceMultiplier * spread
	return UncertaintyReport{
		Level:           level,
		ReturnSpreadPct: spreadPct,
		Herfindahl:      herfindahl,
		ConfidenceInterval: [2]float64{
			portfolioReturn - margin,
			portfolioReturn + margin,
		},
	}
}
