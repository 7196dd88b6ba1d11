package rebalancing

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/jswierk/allocator/internal/domain"
)

// Handler handles rebalance check HTTP requests.
type Handler struct {
	checker          *Checker
	defaultThreshold float64
	log              zerolog.Logger
}

// NewHandler creates a new rebalancing handler.
func NewHandler(checker *Checker, defaultThreshold float64, log zerolog.Logger) *Handler {
	return &Handler{
		checker:          checker,
		defaultThreshold: defaultThreshold,
		log:              log.With().Str("handler", "rebalancing").Logger(),
	}
}

// CheckRequest is the JSON body of POST /api/optimize/rebalance-check.
type CheckRequest struct {
	CurrentAllocation map[domain.Region]float64 `json:"current_allocation"`
	TargetAllocation  map[domain.Region]float64 `json:"target_allocation"`
	Threshold         float64                   `json:"rebalance_threshold"`
}

// HandleCheck handles POST /api/optimize/rebalance-check.
func (h *Handler) HandleCheck(w http.ResponseWriter, r *http.Request) {
	var req CheckRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}
	if len(req.CurrentAllocation) == 0 && len(req.TargetAllocation) == 0 {
		h.writeError(w, http.StatusBadRequest, "at least one of current_allocation or target_allocation is required")
		return
	}
	if req.Threshold < 0 {
		h.writeError(w, http.StatusBadRequest, "rebalance_threshold must not be negative")
		return
	}

	threshold := req.Threshold
	if threshold == 0 {
		threshold = h.defaultThreshold
	}

	result := h.checker.Check(req.CurrentAllocation, req.TargetAllocation, threshold)
	h.writeJSON(w, http.StatusOK, result)
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
