package optimization

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jswierk/allocator/internal/domain"
)

func fiveRegionRequest() Request {
	return Request{
		Regions: []domain.Region{
			domain.RegionUS, domain.RegionEurope, domain.RegionJapan,
			domain.RegionEM, domain.RegionGold,
		},
		ExpectedReturns: []float64{0.07, 0.065, 0.055, 0.075, 0.03},
		Volatilities:    []float64{0.16, 0.17, 0.16, 0.20, 0.15},
		Correlations: [][]float64{
			{1.00, 0.85, 0.70, 0.75, 0.05},
			{0.85, 1.00, 0.70, 0.75, 0.05},
			{0.70, 0.70, 1.00, 0.65, 0.05},
			{0.75, 0.75, 0.65, 1.00, 0.10},
			{0.05, 0.05, 0.05, 0.10, 1.00},
		},
		Gamma: 3.0,
	}
}

func TestService_Optimize(t *testing.T) {
	service := NewService(zerolog.Nop())

	result, err := service.Optimize(fiveRegionRequest())
	require.NoError(t, err)

	// Defaults fill in when the request leaves them zero.
	assert.Equal(t, DefaultMaxWeight, result.MaxWeight)

	var sum float64
	for _, region := range result.Regions {
		w := result.Weights[region]
		assert.GreaterOrEqual(t, w, 0.0)
		assert.LessOrEqual(t, w, DefaultMaxWeight+1e-9)
		sum += w
	}
	assert.InDelta(t, 1.0, sum, WeightSumTolerance)

	assert.Greater(t, result.Stats.Volatility, 0.0)
	assert.NotNil(t, result.Stats.SharpeRatio)
	assert.False(t, result.Regularized)
	assert.NotEmpty(t, result.Uncertainty.Level)
}

func TestService_Optimize_IsDeterministic(t *testing.T) {
	service := NewService(zerolog.Nop())

	first, err := service.Optimize(fiveRegionRequest())
	require.NoError(t, err)
	second, err := service.Optimize(fiveRegionRequest())
	require.NoError(t, err)

	// Identical inputs must reproduce the weights bit for bit.
	require.Equal(t, first.Regions, second.Regions)
	for _, region := range first.Regions {
		assert.Equal(t, first.Weights[region], second.Weights[region], "region %s", region)
	}
	assert.Equal(t, first.Iterations, second.Iterations)
	assert.Equal(t, first.Stats.Return, second.Stats.Return)
}

func TestService_Optimize_DefaultGamma(t *testing.T) {
	service := NewService(zerolog.Nop())

	req := fiveRegionRequest()
	req.Gamma = 0

	result, err := service.Optimize(req)
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultGamma, result.Gamma)
}

func TestService_Optimize_ValidationErrorSurfaces(t *testing.T) {
	service := NewService(zerolog.Nop())

	req := fiveRegionRequest()
	req.Correlations[0][1] = 1.5
	req.Correlations[1][0] = 1.5

	_, err := service.Optimize(req)
	require.Error(t, err)

	var validationErr *domain.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "correlation_matrix", validationErr.Field)
}

func TestService_Optimize_RegularizedFlagSet(t *testing.T) {
	service := NewService(zerolog.Nop())

	req := Request{
		Regions:         []domain.Region{domain.RegionUS, domain.RegionEurope},
		ExpectedReturns: []float64{0.07, 0.07},
		Volatilities:    []float64{0.16, 0.16},
		Correlations: [][]float64{
			{1.0, 1.0},
			{1.0, 1.0},
		},
		Gamma: 3.0,
	}

	result, err := service.Optimize(req)
	require.NoError(t, err)
	assert.True(t, result.Regularized)
}

func TestResult_WeightVector(t *testing.T) {
	result := Result{
		Regions: []domain.Region{domain.RegionGold, domain.RegionUS},
		Weights: map[domain.Region]float64{
			domain.RegionUS:   0.6,
			domain.RegionGold: 0.4,
		},
	}
	assert.Equal(t, []float64{0.4, 0.6}, result.WeightVector())
}
