package formulas

// Spread returns max - min of a slice of float64 values
func Spread(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	min, max := data[0], data[0]
	for _, v := range data[1:] {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	return max - min
}

// Herfindahl calculates the Herfindahl concentration index: sum of squared weights.
// Equal weights over n assets give 1/n; a single-asset portfolio gives 1.
func Herfindahl(weights []float64) float64 {
	var h float64
	for _, w := range weights {
		h += w * w
	}
	return h
}

// DotProduct calculates the dot product of two equal-length vectors
func DotProduct(x, y []float64) float64 {
	if len(x) != len(y) {
		return 0
	}
	var sum float64
	for i := range x {
		sum += x[i] * y[i]
	}
	return sum
}
