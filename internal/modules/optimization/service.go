package optimization

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/jswierk/allocator/internal/domain"
)

// Service orchestrates one optimization call: validation, covariance
// construction, the constrained solve, and the derived statistics. Each
// call is an independent pure computation over the request; the service
// holds no state between calls.
type Service struct {
	stats *StatsEngine
	log   zerolog.Logger
}

// NewService creates a new optimization service.
func NewService(log zerolog.Logger) *Service {
	return &Service{
		stats: NewStatsEngine(),
		log:   log.With().Str("component", "optimizer").Logger(),
	}
}

// Optimize solves the constrained utility maximization and returns weights
// with portfolio statistics and an uncertainty qualifier. Validation
// problems surface as *domain.ValidationError; a solver that exhausts its
// budget surfaces as *domain.OptimizationFailureError.
func (s *Service) Optimize(req Request) (*Result, error) {
	if req.MaxWeight == 0 {
		req.MaxWeight = DefaultMaxWeight
	}
	if req.RiskFreeRate == 0 {
		req.RiskFreeRate = DefaultRiskFreeRate
	}
	if req.Gamma == 0 {
		req.Gamma = domain.DefaultGamma
	}

	if err := validateRequest(req); err != nil {
		return nil, err
	}

	sigma, regularized := buildCovariance(req.Volatilities, req.Correlations)
	if regularized {
		s.log.Warn().Msg("Covariance matrix near-singular, applied diagonal regularization")
	}

	solver := NewSolver()
	weights, iterations, err := solver.Solve(req.ExpectedReturns, sigma, req.Gamma, req.MaxWeight)
	if err != nil {
		return nil, err
	}

	stats := s.stats.Calculate(req.Regions, weights, req.ExpectedReturns, sigma, req.Gamma, req.RiskFreeRate)
	uncertainty := EstimateUncertainty(req.ExpectedReturns, weights, stats.Return)

	weightMap := make(map[domain.Region]float64, len(req.Regions))
	for i, region := range req.Regions {
		weightMap[region] = weights[i]
	}

	s.log.Info().
		Int("num_assets", len(req.Regions)).
		Float64("gamma", req.Gamma).
		Int("iterations", iterations).
		Float64("portfolio_return", stats.Return).
		Float64("portfolio_volatility", stats.Volatility).
		Str("uncertainty", uncertainty.Level).
		Msg("Optimization complete")

	return &Result{
		Timestamp:   time.Now().UTC(),
		Regions:     req.Regions,
		Weights:     weightMap,
		Gamma:       req.Gamma,
		MaxWeight:   req.MaxWeight,
		Regularized: regularized,
		Iterations:  iterations,
		Stats:       stats,
		Uncertainty: uncertainty,
	}, nil
}
