package optimization

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/jswierk/allocator/internal/domain"
	"github.com/jswierk/allocator/pkg/formulas"
)

// StatsEngine derives portfolio-level statistics from a weight vector and
// the (μ, Σ) pair it was optimized against.
type StatsEngine struct{}

// NewStatsEngine creates a new statistics engine.
func NewStatsEngine() *StatsEngine {
	return &StatsEngine{}
}

// Calculate computes return, variance, volatility, Sharpe ratio, CRRA
// utility, and the Euler risk decomposition. Sharpe is nil when volatility
// is zero: the ratio is undefined, not infinite.
func (e *StatsEngine) Calculate(
	regions []domain.Region,
	weights []float64,
	mu []float64,
	sigma *mat.SymDense,
	gamma float64,
	riskFreeRate float64,
) PortfolioStatistics {
	n := len(weights)

	portfolioReturn := formulas.DotProduct(mu, weights)

	sigmaW := mat.NewVecDense(n, nil)
	sigmaW.MulVec(sigma, mat.NewVecDense(n, weights))

	var variance float64
	for i := 0; i < n; i++ {
		variance += weights[i] * sigmaW.AtVec(i)
	}
	if variance < 0 {
		variance = 0
	}
	volatility := math.Sqrt(variance)

	var sharpe *float64
	if volatility > 0 {
		v := (portfolioReturn - riskFreeRate) / volatility
		sharpe = &v
	}

	utility := portfolioReturn - (gamma/2)*variance

	// Euler decomposition: rc_i = w_i·(Σw)_i / w'Σw, summing to 1.
	riskContribution := make(map[domain.Region]float64, n)
	for i, region := range regions {
		if variance > 0 {
			riskContribution[region] = weights[i] * sigmaW.AtVec(i) / variance
		} else {
			riskContribution[region] = 0
		}
	}

	return PortfolioStatistics{
		Return:           portfolioReturn,
		Variance:         variance,
		Volatility:       volatility,
		SharpeRatio:      sharpe,
		CRRAUtility:      utility,
		RiskContribution: riskContribution,
	}
}
