package portfolio

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/jswierk/allocator/internal/domain"
)

// Handler handles portfolio screening HTTP requests.
type Handler struct {
	log zerolog.Logger
}

// NewHandler creates a new portfolio handler.
func NewHandler(log zerolog.Logger) *Handler {
	return &Handler{log: log.With().Str("handler", "portfolio").Logger()}
}

// ValidateRequest is the JSON body of POST /api/portfolio/validate.
type ValidateRequest struct {
	Holdings []domain.Holding `json:"holdings"`
}

// Position is one screened holding: percentages recomputed from values,
// with any advisory policy violations attached.
type Position struct {
	domain.Holding
	Violations []string `json:"violations,omitempty"`
}

// HandleValidate handles POST /api/portfolio/validate. Percentages in the
// request are ignored; the value/total ratio is the only source of truth.
// Violations are advisory and never turn into an error status.
func (h *Handler) HandleValidate(w http.ResponseWriter, r *http.Request) {
	var req ValidateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}
	if len(req.Holdings) == 0 {
		h.writeError(w, http.StatusBadRequest, "holdings is required")
		return
	}
	for _, holding := range req.Holdings {
		if holding.ValueEUR < 0 {
			h.writeError(w, http.StatusBadRequest, "holding value for "+string(holding.Region)+" must not be negative")
			return
		}
	}

	domain.Recompute(req.Holdings)

	var totalEUR float64
	anyViolations := false
	positions := make([]Position, 0, len(req.Holdings))
	for _, holding := range req.Holdings {
		violations := holding.ConstraintViolations()
		if len(violations) > 0 {
			anyViolations = true
		}
		totalEUR += holding.ValueEUR
		positions = append(positions, Position{Holding: holding, Violations: violations})
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"positions":      positions,
		"total_eur":      totalEUR,
		"any_violations": anyViolations,
	})
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
