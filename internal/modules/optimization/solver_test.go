package optimization

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func diagSigma(vols []float64) *mat.SymDense {
	n := len(vols)
	sigma := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		sigma.SetSym(i, i, vols[i]*vols[i])
	}
	return sigma
}

func objective(mu []float64, sigma *mat.SymDense, gamma float64, w []float64) float64 {
	n := len(w)
	var ret float64
	for i := 0; i < n; i++ {
		ret += mu[i] * w[i]
	}
	sigmaW := mat.NewVecDense(n, nil)
	sigmaW.MulVec(sigma, mat.NewVecDense(n, w))
	var variance float64
	for i := 0; i < n; i++ {
		variance += w[i] * sigmaW.AtVec(i)
	}
	return ret - gamma/2*variance
}

func TestSolver_TwoAssetsCapBindsBoth(t *testing.T) {
	// With two assets and a 0.50 cap, full investment forces exactly 50/50
	// no matter how attractive one asset looks.
	mu := []float64{0.12, 0.02}
	sigma := diagSigma([]float64{0.18, 0.12})

	weights, iterations, err := NewSolver().Solve(mu, sigma, 3.0, 0.50)
	require.NoError(t, err)

	assert.InDelta(t, 0.50, weights[0], 1e-9)
	assert.InDelta(t, 0.50, weights[1], 1e-9)
	assert.Greater(t, iterations, 0)
}

func TestSolver_InteriorOptimumMatchesClosedForm(t *testing.T) {
	// Uncorrelated two-asset case with loose cap. KKT gives
	// w1 = (μ1-μ2+γσ2²) / (γ(σ1²+σ2²)).
	mu := []float64{0.08, 0.04}
	sigma := diagSigma([]float64{0.20, 0.10})
	gamma := 3.0

	weights, _, err := NewSolver().Solve(mu, sigma, gamma, 1.0)
	require.NoError(t, err)

	want := (mu[0] - mu[1] + gamma*0.01) / (gamma * (0.04 + 0.01))
	assert.InDelta(t, want, weights[0], 1e-6)
	assert.InDelta(t, 1.0-want, weights[1], 1e-6)
}

func TestSolver_WeightsSumToOneWithinTolerance(t *testing.T) {
	mu := []float64{0.07, 0.065, 0.055, 0.075, 0.03}
	vols := []float64{0.16, 0.17, 0.16, 0.20, 0.15}
	n := len(mu)

	sigma := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			corr := 0.4
			if i == j {
				corr = 1.0
			}
			sigma.SetSym(i, j, vols[i]*vols[j]*corr)
		}
	}

	weights, _, err := NewSolver().Solve(mu, sigma, 3.0, 0.50)
	require.NoError(t, err)

	var sum float64
	for _, w := range weights {
		require.GreaterOrEqual(t, w, -1e-12)
		require.LessOrEqual(t, w, 0.50+1e-12)
		sum += w
	}
	assert.InDelta(t, 1.0, sum, WeightSumTolerance)
}

func TestSolver_BeatsEqualWeights(t *testing.T) {
	mu := []float64{0.09, 0.03, 0.06}
	sigma := diagSigma([]float64{0.22, 0.10, 0.16})
	gamma := 4.0

	weights, _, err := NewSolver().Solve(mu, sigma, gamma, 0.60)
	require.NoError(t, err)

	equal := []float64{1.0 / 3, 1.0 / 3, 1.0 / 3}
	assert.GreaterOrEqual(t,
		objective(mu, sigma, gamma, weights),
		objective(mu, sigma, gamma, equal)-1e-12)
}

func TestSolver_HigherGammaShrinksRiskyWeight(t *testing.T) {
	mu := []float64{0.10, 0.03}
	sigma := diagSigma([]float64{0.25, 0.08})

	cautious, _, err := NewSolver().Solve(mu, sigma, 8.0, 1.0)
	require.NoError(t, err)
	bold, _, err := NewSolver().Solve(mu, sigma, 1.5, 1.0)
	require.NoError(t, err)

	assert.Less(t, cautious[0], bold[0])
}

func TestProjectCappedSimplex(t *testing.T) {
	tests := []struct {
		name string
		v    []float64
		cap  float64
		want []float64
	}{
		{
			name: "already feasible",
			v:    []float64{0.3, 0.3, 0.4},
			cap:  0.5,
			want: []float64{0.3, 0.3, 0.4},
		},
		{
			name: "one coordinate dominates and hits the cap",
			v:    []float64{5.0, 0.0, 0.0},
			cap:  0.5,
			want: []float64{0.5, 0.25, 0.25},
		},
		{
			name: "negative entries get zeroed",
			v:    []float64{1.2, -0.5, 0.3},
			cap:  1.0,
			want: []float64{0.95, 0, 0.05},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := append([]float64(nil), tt.v...)
			projectCappedSimplex(v, tt.cap)

			var sum float64
			for i, w := range v {
				assert.InDelta(t, tt.want[i], w, 1e-9)
				sum += w
			}
			assert.InDelta(t, 1.0, sum, 1e-9)
		})
	}
}

func TestProjectCappedSimplex_SumAlwaysOne(t *testing.T) {
	cases := [][]float64{
		{0.9, 0.9, 0.9},
		{-1, -1, 3},
		{0.1, 0.1, 0.1, 0.1},
		{100, 0, 0, 0, 0},
	}
	for _, v := range cases {
		projectCappedSimplex(v, 0.5)
		var sum float64
		for _, w := range v {
			require.False(t, math.IsNaN(w))
			require.GreaterOrEqual(t, w, 0.0)
			require.LessOrEqual(t, w, 0.5+1e-12)
			sum += w
		}
		assert.InDelta(t, 1.0, sum, 1e-9)
	}
}
