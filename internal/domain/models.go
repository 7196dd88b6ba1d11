package domain

// Region identifies an asset class in the risky-asset universe.
type Region string

const (
	RegionUS     Region = "US"
	RegionEurope Region = "Europe"
	RegionJapan  Region = "Japan"
	RegionEM     Region = "EM"
	RegionGold   Region = "Gold"
)

// KnownRegions is the closed set of asset classes the advisor ships with.
// Extend through RegisterRegion rather than scattering string literals.
var KnownRegions = []Region{RegionUS, RegionEurope, RegionJapan, RegionEM, RegionGold}

var regionSet = func() map[Region]bool {
	m := make(map[Region]bool, len(KnownRegions))
	for _, r := range KnownRegions {
		m[r] = true
	}
	return m
}()

// RegisterRegion adds a new asset class to the known universe at startup.
// Registration is not synchronized; call before serving requests.
func RegisterRegion(r Region) {
	if !regionSet[r] {
		regionSet[r] = true
		KnownRegions = append(KnownRegions, r)
	}
}

// IsKnownRegion reports whether r has been registered.
func IsKnownRegion(r Region) bool {
	return regionSet[r]
}

// InstitutionalStance is a qualitative institutional view on a region.
type InstitutionalStance string

const (
	StanceOverweight  InstitutionalStance = "overweight"
	StanceNeutral     InstitutionalStance = "neutral"
	StanceUnderweight InstitutionalStance = "underweight"
)

// Valid reports whether the stance is one of the accepted values.
func (s InstitutionalStance) Valid() bool {
	switch s {
	case StanceOverweight, StanceNeutral, StanceUnderweight:
		return true
	}
	return false
}

// ValuationSignal is a qualitative valuation read on a region.
type ValuationSignal string

const (
	SignalFavorable ValuationSignal = "favorable"
	SignalNeutral   ValuationSignal = "neutral"
	SignalCautious  ValuationSignal = "cautious"
)

// Valid reports whether the signal is one of the accepted values.
func (s ValuationSignal) Valid() bool {
	switch s {
	case SignalFavorable, SignalNeutral, SignalCautious:
		return true
	}
	return false
}

// AssetClass bundles the per-region estimates fed into one optimization call.
// Instances are immutable for the duration of the call.
type AssetClass struct {
	Region         Region               `json:"region"`
	ExpectedReturn float64              `json:"expected_return"` // annualized, decimal
	Volatility     float64              `json:"volatility"`      // annualized, decimal
	Stance         *InstitutionalStance `json:"stance,omitempty"`
	Valuation      *ValuationSignal     `json:"valuation,omitempty"`
}

// Holding is a single position in the investor's current portfolio.
// Percentage is derived; Recompute is the only authoritative source for it.
type Holding struct {
	Region     Region  `json:"region"`
	Ticker     string  `json:"ticker,omitempty"`
	ISIN       string  `json:"isin,omitempty"`
	ValueEUR   float64 `json:"value_eur"`
	Percentage float64 `json:"percentage"`

	// Optional fund metadata used only for advisory screening.
	TER            *float64 `json:"ter,omitempty"`
	IsAccumulating *bool    `json:"is_accumulating,omitempty"`
	IsUCITS        *bool    `json:"is_ucits,omitempty"`
	Currency       string   `json:"currency,omitempty"`
}

// MaxTER is the advisory cost ceiling for fund screening.
const MaxTER = 0.005

// ConstraintViolations returns advisory policy violations for the holding.
// Violations never block a computation; they are surfaced to the caller.
func (h Holding) ConstraintViolations() []string {
	var violations []string
	if h.IsAccumulating != nil && !*h.IsAccumulating {
		violations = append(violations, "must be accumulating (not distributing)")
	}
	if h.Currency != "" && h.Currency != "EUR" {
		violations = append(violations, "must be EUR-denominated (got "+h.Currency+")")
	}
	if h.IsUCITS != nil && !*h.IsUCITS {
		violations = append(violations, "must be UCITS-compliant")
	}
	if h.TER != nil && *h.TER > MaxTER {
		violations = append(violations, "TER exceeds 0.50% limit")
	}
	return violations
}

// Recompute rewrites every holding's Percentage from its value and the
// portfolio total. A zero or negative total zeroes all percentages.
func Recompute(holdings []Holding) {
	var total float64
	for _, h := range holdings {
		total += h.ValueEUR
	}
	for i := range holdings {
		if total > 0 {
			holdings[i].Percentage = holdings[i].ValueEUR / total * 100
		} else {
			holdings[i].Percentage = 0
		}
	}
}
