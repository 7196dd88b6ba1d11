package gaps

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/jswierk/allocator/internal/domain"
)

// Handler handles gap analysis HTTP requests.
type Handler struct {
	analyzer *Analyzer
	log      zerolog.Logger
}

// NewHandler creates a new gap analysis handler.
func NewHandler(analyzer *Analyzer, log zerolog.Logger) *Handler {
	return &Handler{
		analyzer: analyzer,
		log:      log.With().Str("handler", "gaps").Logger(),
	}
}

// AnalysisRequest is the JSON body of POST /api/optimize/gap-analysis.
// Allocations are percentages over the risky-asset universe.
type AnalysisRequest struct {
	CurrentAllocation map[domain.Region]float64                    `json:"current_allocation"`
	TargetAllocation  map[domain.Region]float64                    `json:"target_allocation"`
	Valuations        map[domain.Region]domain.ValuationSignal     `json:"valuations"`
	Stances           map[domain.Region]domain.InstitutionalStance `json:"institutional_stances"`
}

// HandleAnalyze handles POST /api/optimize/gap-analysis.
func (h *Handler) HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req AnalysisRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}
	if len(req.CurrentAllocation) == 0 && len(req.TargetAllocation) == 0 {
		h.writeError(w, http.StatusBadRequest, "at least one of current_allocation or target_allocation is required")
		return
	}
	for region, signal := range req.Valuations {
		if !signal.Valid() {
			h.writeError(w, http.StatusBadRequest, "invalid valuation signal for "+string(region))
			return
		}
	}
	for region, stance := range req.Stances {
		if !stance.Valid() {
			h.writeError(w, http.StatusBadRequest, "invalid institutional stance for "+string(region))
			return
		}
	}

	analysis := h.analyzer.Analyze(req.CurrentAllocation, req.TargetAllocation, req.Valuations, req.Stances)
	h.writeJSON(w, http.StatusOK, analysis)
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
