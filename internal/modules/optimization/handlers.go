package optimization

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/jswierk/allocator/internal/domain"
	"github.com/jswierk/allocator/internal/modules/views"
)

// RunStore persists completed optimization runs. Saving is best-effort;
// a store failure never fails the request.
type RunStore interface {
	Save(result *Result) (int64, error)
}

// Handler handles HTTP requests for the optimization module.
type Handler struct {
	service *Service
	store   RunStore
	viewCfg views.Settings
	log     zerolog.Logger
}

// NewHandler creates a new optimization handler. store may be nil.
func NewHandler(service *Service, store RunStore, viewCfg views.Settings, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		store:   store,
		viewCfg: viewCfg,
		log:     log.With().Str("handler", "optimization").Logger(),
	}
}

// OptimizeRequest is the JSON body of POST /api/optimize. Percentages in
// the response are derived from the decimal weights the core produces.
type OptimizeRequest struct {
	Assets            []domain.Region                               `json:"assets"`
	ExpectedReturns   []float64                                     `json:"expected_returns"`
	Volatilities      []float64                                     `json:"volatilities"`
	CorrelationMatrix [][]float64                                   `json:"correlation_matrix"`
	CRRA              float64                                       `json:"crra"`
	MaxWeight         float64                                       `json:"max_weight"`
	RiskFreeRate      float64                                       `json:"risk_free_rate"`
	UseViews          *bool                                         `json:"use_views"`
	Stances           map[domain.Region]domain.InstitutionalStance  `json:"institutional_stances"`
	Valuations        map[domain.Region]domain.ValuationSignal      `json:"valuations"`
	ConfirmSuspicious bool                                          `json:"confirm_suspicious"`
}

// HandleOptimize handles POST /api/optimize.
//
// The flow is the two-phase compute-and-flag protocol: view blending runs
// first, and if any adjusted return falls outside the sanity band the
// response carries the flagged rows with requires_confirmation=true and no
// solve happens. Re-invoking with confirm_suspicious=true proceeds.
func (h *Handler) HandleOptimize(w http.ResponseWriter, r *http.Request) {
	var req OptimizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}

	if err := h.validateSignals(req); err != nil {
		h.writeDomainError(w, err)
		return
	}

	// Vector lengths must line up before assets are built; a short vector
	// must never turn into zero-padded entries.
	if len(req.ExpectedReturns) != len(req.Assets) {
		h.writeDomainError(w, domain.NewValidationError("expected_returns",
			"expected %d entries, got %d", len(req.Assets), len(req.ExpectedReturns)))
		return
	}
	if len(req.Volatilities) != 0 && len(req.Volatilities) != len(req.Assets) {
		h.writeDomainError(w, domain.NewValidationError("volatilities",
			"expected %d entries, got %d", len(req.Assets), len(req.Volatilities)))
		return
	}
	for _, region := range req.Assets {
		if !domain.IsKnownRegion(region) {
			h.writeDomainError(w, domain.NewValidationError("assets", "unknown asset class %q", region))
			return
		}
	}

	// Fill volatilities from long-run defaults when omitted entirely.
	if len(req.Volatilities) == 0 && len(req.Assets) > 0 {
		vols, ok := defaultVolatilities(req.Assets)
		if !ok {
			h.writeError(w, http.StatusBadRequest, "volatilities are required for asset classes without defaults")
			return
		}
		req.Volatilities = vols
	}

	assets := make([]domain.AssetClass, len(req.Assets))
	for i, region := range req.Assets {
		assets[i] = domain.AssetClass{
			Region:         region,
			ExpectedReturn: req.ExpectedReturns[i],
			Volatility:     req.Volatilities[i],
		}
		if stance, ok := req.Stances[region]; ok {
			s := stance
			assets[i].Stance = &s
		}
		if signal, ok := req.Valuations[region]; ok {
			v := signal
			assets[i].Valuation = &v
		}
	}

	viewCfg := h.viewCfg
	if req.UseViews != nil {
		viewCfg.Enabled = *req.UseViews
	}
	adjuster := views.NewAdjuster(viewCfg, h.log)
	viewResult := adjuster.AdjustReturns(assets)

	if viewResult.AnySuspicious && !req.ConfirmSuspicious {
		h.writeJSON(w, http.StatusOK, map[string]interface{}{
			"requires_confirmation": true,
			"view_adjustments":      viewResult.Adjustments,
			"message":               "one or more expected returns fall outside the sanity band; re-submit with confirm_suspicious=true to proceed",
		})
		return
	}

	result, err := h.service.Optimize(Request{
		Regions:         req.Assets,
		ExpectedReturns: viewResult.AdjustedReturns(),
		Volatilities:    req.Volatilities,
		Correlations:    req.CorrelationMatrix,
		Gamma:           req.CRRA,
		MaxWeight:       req.MaxWeight,
		RiskFreeRate:    req.RiskFreeRate,
	})
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	if h.store != nil {
		if _, err := h.store.Save(result); err != nil {
			h.log.Error().Err(err).Msg("Failed to persist optimization run")
		}
	}

	h.writeJSON(w, http.StatusOK, h.resultToResponse(result, viewResult))
}

// resultToResponse converts decimal core output to the percent-based wire
// format.
func (h *Handler) resultToResponse(result *Result, viewResult views.Result) map[string]interface{} {
	weightsPct := make(map[domain.Region]float64, len(result.Weights))
	for region, weight := range result.Weights {
		weightsPct[region] = weight * 100
	}
	riskContributionPct := make(map[domain.Region]float64, len(result.Stats.RiskContribution))
	for region, rc := range result.Stats.RiskContribution {
		riskContributionPct[region] = rc * 100
	}

	stats := map[string]interface{}{
		"return":            result.Stats.Return * 100,
		"volatility":        result.Stats.Volatility * 100,
		"sharpe_ratio":      result.Stats.SharpeRatio,
		"crra_utility":      result.Stats.CRRAUtility,
		"risk_contribution": riskContributionPct,
	}

	response := map[string]interface{}{
		"optimal_weights": weightsPct,
		"portfolio_stats": stats,
		"uncertainty":     result.Uncertainty,
		"regularized":     result.Regularized,
	}
	if viewResult.AdjustmentsActive {
		response["view_adjustments"] = viewResult.Adjustments
	}
	return response
}

func (h *Handler) validateSignals(req OptimizeRequest) error {
	for region, stance := range req.Stances {
		if !stance.Valid() {
			return domain.NewValidationError("institutional_stances", "invalid stance %q for %s", stance, region)
		}
	}
	for region, signal := range req.Valuations {
		if !signal.Valid() {
			return domain.NewValidationError("valuations", "invalid valuation signal %q for %s", signal, region)
		}
	}
	return nil
}

func defaultVolatilities(regions []domain.Region) ([]float64, bool) {
	vols := make([]float64, len(regions))
	for i, region := range regions {
		vol, ok := domain.DefaultVolatilities[region]
		if !ok {
			return nil, false
		}
		vols[i] = vol
	}
	return vols, true
}

// writeDomainError maps the error taxonomy to HTTP statuses: validation
// problems are 400, solver non-convergence is 422, anything else is 500.
func (h *Handler) writeDomainError(w http.ResponseWriter, err error) {
	var validationErr *domain.ValidationError
	var optimizationErr *domain.OptimizationFailureError

	switch {
	case errors.As(err, &validationErr):
		h.writeError(w, http.StatusBadRequest, validationErr.Error())
	case errors.As(err, &optimizationErr):
		h.writeError(w, http.StatusUnprocessableEntity, optimizationErr.Error())
	default:
		h.log.Error().Err(err).Msg("Optimization request failed")
		h.writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// writeJSON writes a JSON response
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// writeError writes an error response
func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
