package riskprofile

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/jswierk/allocator/internal/domain"
)

// Handler handles CRRA survey HTTP requests.
type Handler struct {
	log zerolog.Logger
}

// NewHandler creates a new risk profile handler.
func NewHandler(log zerolog.Logger) *Handler {
	return &Handler{log: log.With().Str("handler", "riskprofile").Logger()}
}

// HandleCalculate handles POST /api/crra/calculate.
func (h *Handler) HandleCalculate(w http.ResponseWriter, r *http.Request) {
	var req SurveyResponses
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		var validationErr *domain.ValidationError
		if errors.As(err, &validationErr) {
			h.writeError(w, http.StatusBadRequest, validationErr.Error())
			return
		}
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	gamma := GammaFromResponses(req)
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"crra":    gamma,
		"profile": Interpret(gamma),
	})
}

// InterpretRequest is the JSON body of POST /api/crra/interpret.
type InterpretRequest struct {
	CRRA float64 `json:"crra"`
}

// HandleInterpret handles POST /api/crra/interpret.
func (h *Handler) HandleInterpret(w http.ResponseWriter, r *http.Request) {
	var req InterpretRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}
	if req.CRRA < GammaMin || req.CRRA > GammaMax {
		h.writeError(w, http.StatusBadRequest, "crra must be between 1 and 10")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"crra":    req.CRRA,
		"profile": Interpret(req.CRRA),
	})
}

// HandleScale handles GET /api/crra/scale.
func (h *Handler) HandleScale(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]interface{}{"scale": Scale()})
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
