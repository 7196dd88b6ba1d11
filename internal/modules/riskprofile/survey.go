package riskprofile

import (
	"github.com/jswierk/allocator/internal/domain"
)

// Gamma bounds produced by the survey.
const (
	GammaMin = 1.0
	GammaMax = 10.0
)

// Survey weights per indicator.
const (
	weightLossAversion    = 0.3
	weightWealthGamble    = 0.3
	weightPortfolioChoice = 0.2
	weightIncomeRisk      = 0.2
)

// SurveyResponses are the four answers of the risk questionnaire, each on
// a 0-100 scale.
type SurveyResponses struct {
	LossThreshold   float64 `json:"loss_threshold"`   // max tolerable loss percentage
	RiskPercentage  float64 `json:"risk_percentage"`  // max loss accepted in a 50/50 gamble
	StockAllocation float64 `json:"stock_allocation"` // preferred risky-asset allocation
	SafeChoice      float64 `json:"safe_choice"`      // job security probability required
}

// Validate checks every answer is on the 0-100 scale.
func (r SurveyResponses) Validate() error {
	fields := []struct {
		name  string
		value float64
	}{
		{"loss_threshold", r.LossThreshold},
		{"risk_percentage", r.RiskPercentage},
		{"stock_allocation", r.StockAllocation},
		{"safe_choice", r.SafeChoice},
	}
	for _, f := range fields {
		if f.value < 0 || f.value > 100 {
			return domain.NewValidationError(f.name, "must be between 0 and 100, got %.1f", f.value)
		}
	}
	return nil
}

// Profile is the qualitative interpretation of a gamma value.
type Profile struct {
	RiskProfile       string `json:"risk_profile"`
	Description       string `json:"description"`
	TypicalAllocation string `json:"typical_allocation"`
	InvestorType      string `json:"investor_type"`
	Percentile        string `json:"percentile"`
}

// ScaleItem describes one band of the gamma scale.
type ScaleItem struct {
	Range           string `json:"range"`
	Profile         string `json:"profile"`
	TypicalInvestor string `json:"typical_investor"`
}

// GammaFromResponses scores the weighted survey answers into a risk
// aversion coefficient, clamped to [GammaMin, GammaMax].
func GammaFromResponses(r SurveyResponses) float64 {
	indicators := map[string]float64{
		"loss_aversion":    r.LossThreshold / 25,          // 0-100% to 0-4
		"wealth_gamble":    (100 - r.RiskPercentage) / 25, // inverse scale
		"portfolio_choice": (100 - r.StockAllocation) / 20,
		"income_risk":      r.SafeChoice / 20,
	}

	weighted := indicators["loss_aversion"]*weightLossAversion +
		indicators["wealth_gamble"]*weightWealthGamble +
		indicators["portfolio_choice"]*weightPortfolioChoice +
		indicators["income_risk"]*weightIncomeRisk

	if weighted < GammaMin {
		return GammaMin
	}
	if weighted > GammaMax {
		return GammaMax
	}
	return weighted
}

// Interpret maps a gamma value to its risk profile band.
func Interpret(gamma float64) Profile {
	switch {
	case gamma < 2:
		return Profile{
			RiskProfile:       "Very Aggressive",
			Description:       "You're comfortable with significant risk for higher returns",
			TypicalAllocation: "80-100% risky assets",
			InvestorType:      "Growth/Aggressive Growth investor",
			Percentile:        "Top 10% most aggressive investors",
		}
	case gamma < 3:
		return Profile{
			RiskProfile:       "Aggressive",
			Description:       "You're willing to accept substantial risk for better returns",
			TypicalAllocation: "70-80% risky assets",
			InvestorType:      "Growth investor",
			Percentile:        "Top 25% of aggressive investors",
		}
	case gamma < 4:
		return Profile{
			RiskProfile:       "Moderate",
			Description:       "You seek balance between risk and security",
			TypicalAllocation: "50-70% risky assets",
			InvestorType:      "Balanced investor",
			Percentile:        "Middle 30% of investors (average risk tolerance)",
		}
	case gamma < 6:
		return Profile{
			RiskProfile:       "Conservative",
			Description:       "You prioritize security over high returns",
			TypicalAllocation: "30-50% risky assets",
			InvestorType:      "Income with Growth investor",
			Percentile:        "Bottom 25% more conservative investors",
		}
	default:
		return Profile{
			RiskProfile:       "Very Conservative",
			Description:       "You strongly prefer security and stability",
			TypicalAllocation: "10-30% risky assets",
			InvestorType:      "Income/Preservation investor",
			Percentile:        "Bottom 10% most conservative investors",
		}
	}
}

// Scale returns the full gamma scale description.
func Scale() []ScaleItem {
	return []ScaleItem{
		{Range: "1.0-2.0", Profile: "Very Aggressive", TypicalInvestor: "Professional traders, very aggressive investors"},
		{Range: "2.0-3.0", Profile: "Aggressive", TypicalInvestor: "Young investors with stable income, growth-focused"},
		{Range: "3.0-4.0", Profile: "Moderate", TypicalInvestor: "Average retail investors, balanced approach"},
		{Range: "4.0-6.0", Profile: "Conservative", TypicalInvestor: "Conservative investors, pre-retirees"},
		{Range: "6.0+", Profile: "Very Conservative", TypicalInvestor: "Very conservative investors, retirees"},
	}
}
