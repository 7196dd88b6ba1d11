package contributions

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/jswierk/allocator/internal/domain"
	"github.com/jswierk/allocator/internal/modules/gaps"
)

// Handler handles contribution allocation HTTP requests.
type Handler struct {
	allocator        *Allocator
	minAllocationEUR float64
	log              zerolog.Logger
}

// NewHandler creates a new contribution handler.
func NewHandler(allocator *Allocator, minAllocationEUR float64, log zerolog.Logger) *Handler {
	return &Handler{
		allocator:        allocator,
		minAllocationEUR: minAllocationEUR,
		log:              log.With().Str("handler", "contributions").Logger(),
	}
}

// AllocateRequest is the JSON body of POST /api/optimize/allocate.
type AllocateRequest struct {
	ContributionAmount    float64       `json:"contribution_amount"`
	CurrentPortfolioValue float64       `json:"current_portfolio_value"`
	GapAnalysis           gaps.Analysis `json:"gap_analysis"`
	MinAllocation         float64       `json:"min_allocation"`
}

// HandleAllocate handles POST /api/optimize/allocate.
func (h *Handler) HandleAllocate(w http.ResponseWriter, r *http.Request) {
	var req AllocateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}

	minAllocation := req.MinAllocation
	if minAllocation <= 0 {
		minAllocation = h.minAllocationEUR
	}

	plan, err := h.allocator.Allocate(req.ContributionAmount, req.CurrentPortfolioValue, req.GapAnalysis, minAllocation)
	if err != nil {
		var validationErr *domain.ValidationError
		if errors.As(err, &validationErr) {
			h.writeError(w, http.StatusBadRequest, validationErr.Error())
			return
		}
		h.log.Error().Err(err).Msg("Allocation request failed")
		h.writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	h.writeJSON(w, http.StatusOK, plan)
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
