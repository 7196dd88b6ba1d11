package domain

// Default market assumptions used when a request omits them.
const (
	DefaultRiskFreeRate = 0.025 // ECB-anchored
	DefaultMaxWeight    = 0.50  // concentration cap per asset class
	DefaultGamma        = 3.0
)

// DefaultVolatilities are long-run annualized volatility assumptions.
var DefaultVolatilities = map[Region]float64{
	RegionUS:     0.16,
	RegionEurope: 0.18,
	RegionJapan:  0.20,
	RegionEM:     0.22,
	RegionGold:   0.15,
}
