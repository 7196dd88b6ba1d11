package optimization

import (
	"time"

	"github.com/jswierk/allocator/internal/domain"
)

// Default solver parameters
const (
	DefaultMaxWeight     = 0.50
	DefaultRiskFreeRate  = 0.025
	MaxIterations        = 20000
	WeightSumTolerance   = 1e-6
	ConvergenceTolerance = 1e-11
)

// Request carries the inputs of one optimization call. All vectors are
// indexed by Regions; the correlation matrix uses the same ordering.
// Returns and volatilities are annualized decimals.
type Request struct {
	Regions         []domain.Region
	ExpectedReturns []float64
	Volatilities    []float64
	Correlations    [][]float64
	Gamma           float64
	MaxWeight       float64 // 0 means DefaultMaxWeight
	RiskFreeRate    float64
}

// PortfolioStatistics holds the derived portfolio-level figures for a weight
// vector. All values are decimals; RiskContribution entries sum to 1 (Euler
// decomposition) unless portfolio variance is zero.
type PortfolioStatistics struct {
	Return           float64                   `json:"return"`
	Variance         float64                   `json:"variance"`
	Volatility       float64                   `json:"volatility"`
	SharpeRatio      *float64                  `json:"sharpe_ratio"` // nil when volatility is zero
	CRRAUtility      float64                   `json:"crra_utility"`
	RiskContribution map[domain.Region]float64 `json:"risk_contribution"`
}

// UncertaintyReport qualifies how much confidence the expected-return inputs
// deserve. Advisory metadata only; it never alters the optimization result.
type UncertaintyReport struct {
	Level              string     `json:"level"` // low, medium, high
	ReturnSpreadPct    float64    `json:"return_spread_pct"`
	Herfindahl         float64    `json:"herfindahl"`
	ConfidenceInterval [2]float64 `json:"confidence_interval"` // portfolio return ± k·spread, decimal
}

// Result is the complete outcome of one optimization run.
type Result struct {
	Timestamp   time.Time                 `json:"timestamp"`
	Regions     []domain.Region           `json:"regions"`
	Weights     map[domain.Region]float64 `json:"weights"` // decimal, sum to 1 within tolerance
	Gamma       float64                   `json:"gamma"`
	MaxWeight   float64                   `json:"max_weight"`
	Regularized bool                      `json:"regularized"` // covariance needed a diagonal bump
	Iterations  int                       `json:"iterations"`
	Stats       PortfolioStatistics       `json:"stats"`
	Uncertainty UncertaintyReport         `json:"uncertainty"`
}

// WeightVector returns the weights in Regions order.
func (r *Result) WeightVector() []float64 {
	out := make([]float64, len(r.Regions))
	for i, region := range r.Regions {
		out[i] = r.Weights[region]
	}
	return out
}
