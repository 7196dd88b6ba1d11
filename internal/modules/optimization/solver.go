package optimization

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/jswierk/allocator/internal/domain"
)

// Solver maximizes the CRRA mean-variance objective
//
//	μ'w - (γ/2)·w'Σw
//
// over the capped simplex {Σw = 1, 0 ≤ w_i ≤ wMax} by projected gradient
// descent with a fixed step 1/L, L = γ·λmax(Σ). The problem is a concave
// QP, so the method converges to the global optimum; the objective is
// monotonically non-decreasing from the equal-weight starting point.
//
// Solver state is local to each Solve call; instantiate freely per request.
type Solver struct {
	maxIterations int
}

// NewSolver creates a solver with the default iteration budget.
func NewSolver() *Solver {
	return &Solver{maxIterations: MaxIterations}
}

// Solve returns the optimal weights and the number of iterations used.
// Exhausting the iteration budget is an OptimizationFailureError, never a
// silent fallback to equal weights.
func (s *Solver) Solve(mu []float64, sigma *mat.SymDense, gamma, maxWeight float64) ([]float64, int, error) {
	n := len(mu)

	step := 1.0
	if l := gamma * largestEigenvalue(sigma); l > 1e-12 {
		step = 1.0 / l
	}

	// Equal weights are always feasible here (validation guarantees
	// n·maxWeight >= 1) and anchor the objective sanity bound.
	w := make([]float64, n)
	for i := range w {
		w[i] = 1.0 / float64(n)
	}

	grad := make([]float64, n)
	next := make([]float64, n)
	sigmaW := mat.NewVecDense(n, nil)

	for iter := 1; iter <= s.maxIterations; iter++ {
		// ∇(-objective) = γΣw - μ
		sigmaW.MulVec(sigma, mat.NewVecDense(n, w))
		for i := 0; i < n; i++ {
			grad[i] = gamma*sigmaW.AtVec(i) - mu[i]
		}

		for i := 0; i < n; i++ {
			next[i] = w[i] - step*grad[i]
		}
		projectCappedSimplex(next, maxWeight)

		var maxDelta float64
		for i := 0; i < n; i++ {
			if d := math.Abs(next[i] - w[i]); d > maxDelta {
				maxDelta = d
			}
		}
		copy(w, next)

		if maxDelta < ConvergenceTolerance {
			return w, iter, nil
		}
	}

	return nil, s.maxIterations, &domain.OptimizationFailureError{
		Iterations: s.maxIterations,
		Reason:     "projected gradient steps did not stabilize",
	}
}

// projectCappedSimplex projects v in place onto {Σw = 1, 0 ≤ w_i ≤ cap}.
// With w_i(λ) = clamp(v_i - λ, 0, cap), the sum is monotone in λ, so a
// bisection on λ finds the unique feasible projection.
func projectCappedSimplex(v []float64, cap float64) {
	lo, hi := v[0], v[0]
	for _, x := range v[1:] {
		if x < lo {
			lo = x
		}
		if x > hi {
			hi = x
		}
	}
	// At λ = lo - cap every coordinate saturates at cap (sum = n·cap ≥ 1);
	// at λ = hi every coordinate is zero.
	lo -= cap

	for i := 0; i < 100; i++ {
		mid := (lo + hi) / 2
		if cappedSum(v, mid, cap) > 1.0 {
			lo = mid
		} else {
			hi = mid
		}
	}

	lambda := (lo + hi) / 2
	for i := range v {
		v[i] = clampWeight(v[i]-lambda, cap)
	}

	// Distribute the residual bisection error over unsaturated coordinates
	// so the sum lands within floating tolerance of exactly 1.
	var sum float64
	for _, w := range v {
		sum += w
	}
	residual := 1.0 - sum
	if residual != 0 {
		for i := range v {
			if v[i] > 0 && v[i] < cap {
				adjusted := clampWeight(v[i]+residual, cap)
				residual -= adjusted - v[i]
				v[i] = adjusted
				if residual == 0 {
					break
				}
			}
		}
	}
}

func cappedSum(v []float64, lambda, cap float64) float64 {
	var sum float64
	for _, x := range v {
		sum += clampWeight(x-lambda, cap)
	}
	return sum
}

func clampWeight(w, cap float64) float64 {
	return math.Max(0, math.Min(cap, w))
}
