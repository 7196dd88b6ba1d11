package formulas

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSpread(t *testing.T) {
	assert.Zero(t, Spread(nil))
	assert.Zero(t, Spread([]float64{0.05}))
	assert.InDelta(t, 0.04, Spread([]float64{0.03, 0.07, 0.05}), 1e-12)
}

func TestHerfindahl(t *testing.T) {
	// Equal weights over n assets give 1/n.
	assert.InDelta(t, 0.25, Herfindahl([]float64{0.25, 0.25, 0.25, 0.25}), 1e-12)
	// A single-asset portfolio is maximally concentrated.
	assert.InDelta(t, 1.0, Herfindahl([]float64{1.0, 0, 0}), 1e-12)
}

func TestDotProduct(t *testing.T) {
	assert.InDelta(t, 0.054, DotProduct([]float64{0.6, 0.4}, []float64{0.07, 0.03}), 1e-12)
	assert.Zero(t, DotProduct([]float64{1}, []float64{1, 2}))
}
