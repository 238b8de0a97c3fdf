package weekview

import (
	"encoding/json"
	"errors"
	"net/http"
)

// WeekResponse is a week plus its alerts in display order.
type WeekResponse struct {
	*Week
	ToutesAlertes []string `json:"toutes_alertes"`
}

// Handler handles HTTP requests for week views.
type Handler struct {
	cache *Cache
}

// NewHandler creates a new week view handler.
func NewHandler(cache *Cache) *Handler {
	return &Handler{cache: cache}
}

// HandleGet handles GET /v1/weeks/{start}
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	start, err := ParseWeekStart(r.PathValue("start"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_date", err.Error())
		return
	}

	week, err := h.cache.GetOrBuild(r.Context(), start)
	if err != nil {
		if errors.Is(err, ErrDataAccess) {
			writeError(w, http.StatusServiceUnavailable, "week_unavailable", "Failed to load the week, please retry")
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", "Failed to build week")
		return
	}

	alerts := week.OrderedAlerts()
	if alerts == nil {
		alerts = []string{}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(WeekResponse{Week: week, ToutesAlertes: alerts})
}

// HandleInvalidate handles DELETE /v1/weeks/{start}/cache
func (h *Handler) HandleInvalidate(w http.ResponseWriter, r *http.Request) {
	start, err := ParseWeekStart(r.PathValue("start"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_date", err.Error())
		return
	}

	if err := h.cache.Invalidate(r.Context(), start); err != nil {
		writeError(w, http.StatusInternalServerError, "cache_error", "Failed to invalidate week cache")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{
		"invalidated": string(KeyFor(start)),
	})
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
