package suggestions

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/fdg312/family-hub/internal/weekview"
)

// Handler handles HTTP requests for AI week proposals.
type Handler struct {
	generator *Generator
	household HouseholdContext
}

// NewHandler creates a handler. household is used when a request omits it.
func NewHandler(generator *Generator, household HouseholdContext) *Handler {
	return &Handler{generator: generator, household: household}
}

// HandleGenerate handles POST /v1/weeks/{start}/proposal
func (h *Handler) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	start, err := weekview.ParseWeekStart(r.PathValue("start"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_date", err.Error())
		return
	}

	var req GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid request body")
		return
	}

	household := h.household
	if req.Household != nil {
		household = *req.Household
		if household.ChildName == "" {
			household.ChildName = h.household.ChildName
		}
	}

	result, err := h.generator.Generate(r.Context(), start, req.Constraints, household)
	if err != nil {
		if errors.Is(err, ErrInvalidConstraints) {
			writeError(w, http.StatusBadRequest, "invalid_constraints", err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", "Failed to generate proposal")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(result)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}
