package optimization

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/jswierk/allocator/internal/domain"
)

const (
	symmetryTolerance = 1e-9
	diagonalTolerance = 1e-9
	psdTolerance      = -1e-8 // smallest eigenvalue allowed before rejecting
	singularCutoff    = 1e-10 // smallest eigenvalue before regularizing
	regularizationEps = 1e-8  // relative to mean diagonal (trace/n)
)

// validateRequest checks vector lengths, parameter ranges, and the
// correlation matrix invariants. Violations are never auto-corrected.
func validateRequest(req Request) error {
	n := len(req.Regions)

	if n < 2 {
		return domain.NewValidationError("assets", "at least two asset classes are required, got %d", n)
	}
	if len(req.ExpectedReturns) != n {
		return domain.NewValidationError("expected_returns", "expected %d entries, got %d", n, len(req.ExpectedReturns))
	}
	if len(req.Volatilities) != n {
		return domain.NewValidationError("volatilities", "expected %d entries, got %d", n, len(req.Volatilities))
	}
	for i, vol := range req.Volatilities {
		if vol < 0 {
			return domain.NewValidationError("volatilities", "volatility for %s is negative (%.4f)", req.Regions[i], vol)
		}
		if math.IsNaN(vol) || math.IsInf(vol, 0) {
			return domain.NewValidationError("volatilities", "volatility for %s is not finite", req.Regions[i])
		}
	}
	for i, ret := range req.ExpectedReturns {
		if math.IsNaN(ret) || math.IsInf(ret, 0) {
			return domain.NewValidationError("expected_returns", "expected return for %s is not finite", req.Regions[i])
		}
	}
	if req.Gamma <= 0 {
		return domain.NewValidationError("gamma", "risk aversion must be positive, got %.4f", req.Gamma)
	}

	maxWeight := req.MaxWeight
	if maxWeight <= 0 || maxWeight > 1 {
		return domain.NewValidationError("max_weight", "concentration cap must be in (0, 1], got %.4f", maxWeight)
	}
	if float64(n)*maxWeight < 1 {
		return domain.NewValidationError("max_weight",
			"cap %.2f over %d assets cannot reach full investment (n*w_max < 1)", maxWeight, n)
	}

	return validateCorrelations(req.Correlations, n)
}

func validateCorrelations(corr [][]float64, n int) error {
	if len(corr) != n {
		return domain.NewValidationError("correlation_matrix", "expected %dx%d matrix, got %d rows", n, n, len(corr))
	}
	for i, row := range corr {
		if len(row) != n {
			return domain.NewValidationError("correlation_matrix", "row %d has %d entries, expected %d", i, len(row), n)
		}
	}
	for i := 0; i < n; i++ {
		if math.Abs(corr[i][i]-1.0) > diagonalTolerance {
			return domain.NewValidationError("correlation_matrix", "diagonal entry [%d][%d] must be 1.0, got %.6f", i, i, corr[i][i])
		}
		for j := 0; j < n; j++ {
			v := corr[i][j]
			if math.IsNaN(v) || v < -1 || v > 1 {
				return domain.NewValidationError("correlation_matrix", "entry [%d][%d] = %.4f is outside [-1, 1]", i, j, v)
			}
			if math.Abs(v-corr[j][i]) > symmetryTolerance {
				return domain.NewValidationError("correlation_matrix", "matrix is not symmetric at [%d][%d]", i, j)
			}
		}
	}

	// Positive semi-definiteness is required for a valid covariance matrix.
	sym := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			sym.SetSym(i, j, corr[i][j])
		}
	}
	var eig mat.EigenSym
	if !eig.Factorize(sym, false) {
		return domain.NewValidationError("correlation_matrix", "eigendecomposition failed")
	}
	values := eig.Values(nil)
	for _, v := range values {
		if v < psdTolerance {
			return domain.NewValidationError("correlation_matrix",
				"matrix is not positive semi-definite (eigenvalue %.2e)", v)
		}
	}

	return nil
}

// buildCovariance constructs Σ = D·C·D from the volatility vector and the
// correlation matrix. A singular Σ (duplicate assets, near-perfect
// correlation, zero volatility) gets a small diagonal bump ε·I with
// ε = regularizationEps · trace(Σ)/n, so the solver still has a usable
// strictly convex problem. Returns Σ and whether regularization applied.
func buildCovariance(volatilities []float64, corr [][]float64) (*mat.SymDense, bool) {
	n := len(volatilities)
	sigma := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			sigma.SetSym(i, j, volatilities[i]*volatilities[j]*corr[i][j])
		}
	}

	var eig mat.EigenSym
	if !eig.Factorize(sigma, false) {
		return regularize(sigma), true
	}
	values := eig.Values(nil)
	minEig := values[0]
	for _, v := range values[1:] {
		if v < minEig {
			minEig = v
		}
	}
	if minEig < singularCutoff {
		return regularize(sigma), true
	}
	return sigma, false
}

func regularize(sigma *mat.SymDense) *mat.SymDense {
	n := sigma.SymmetricDim()
	var trace float64
	for i := 0; i < n; i++ {
		trace += sigma.At(i, i)
	}
	eps := regularizationEps * trace / float64(n)
	if eps <= 0 {
		eps = regularizationEps
	}
	out := mat.NewSymDense(n, nil)
	out.CopySym(sigma)
	for i := 0; i < n; i++ {
		out.SetSym(i, i, out.At(i, i)+eps)
	}
	return out
}

// largestEigenvalue returns λmax(Σ), used for the solver step size.
func largestEigenvalue(sigma *mat.SymDense) float64 {
	var eig mat.EigenSym
	if !eig.Factorize(sigma, false) {
		return 0
	}
	values := eig.Values(nil)
	max := values[0]
	for _, v := range values[1:] {
		if v > max {
			max = v
		}
	}
	return max
}
