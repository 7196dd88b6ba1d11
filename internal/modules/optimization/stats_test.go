package optimization

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/jswierk/allocator/internal/domain"
)

func TestStatsEngine_Calculate(t *testing.T) {
	regions := []domain.Region{domain.RegionUS, domain.RegionGold}
	weights := []float64{0.6, 0.4}
	mu := []float64{0.07, 0.03}

	// Uncorrelated assets, vols 0.16 and 0.15.
	sigma := mat.NewSymDense(2, []float64{
		0.0256, 0,
		0, 0.0225,
	})

	stats := NewStatsEngine().Calculate(regions, weights, mu, sigma, 3.0, 0.025)

	assert.InDelta(t, 0.6*0.07+0.4*0.03, stats.Return, 1e-12)

	wantVar := 0.36*0.0256 + 0.16*0.0225
	assert.InDelta(t, wantVar, stats.Variance, 1e-12)

	require.NotNil(t, stats.SharpeRatio)
	assert.InDelta(t, (stats.Return-0.025)/stats.Volatility, *stats.SharpeRatio, 1e-12)

	assert.InDelta(t, stats.Return-1.5*wantVar, stats.CRRAUtility, 1e-12)
}

func TestStatsEngine_RiskContributionsSumToOne(t *testing.T) {
	regions := []domain.Region{domain.RegionUS, domain.RegionEurope, domain.RegionGold}
	weights := []float64{0.5, 0.3, 0.2}
	mu := []float64{0.07, 0.065, 0.03}

	sigma := mat.NewSymDense(3, []float64{
		0.0256, 0.0231, 0.0012,
		0.0231, 0.0289, 0.0020,
		0.0012, 0.0020, 0.0225,
	})

	stats := NewStatsEngine().Calculate(regions, weights, mu, sigma, 3.0, 0.025)

	var sum float64
	for _, rc := range stats.RiskContribution {
		sum += rc
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
}

func TestStatsEngine_ZeroVolatility(t *testing.T) {
	regions := []domain.Region{domain.RegionUS, domain.RegionGold}
	weights := []float64{0.5, 0.5}
	mu := []float64{0.07, 0.03}
	sigma := mat.NewSymDense(2, nil) // all zero

	stats := NewStatsEngine().Calculate(regions, weights, mu, sigma, 3.0, 0.025)

	// Sharpe is undefined at zero volatility, not infinite.
	assert.Nil(t, stats.SharpeRatio)
	assert.Zero(t, stats.Volatility)
	for _, rc := range stats.RiskContribution {
		assert.Zero(t, rc)
	}
}
