package api

import (
	"net/http"

	"github.com/ayusman/mudra/internal/store"
)

// AccuracyHandler reports accuracy-harness results.
type AccuracyHandler struct {
	store *store.Store
}

// NewAccuracyHandler creates a new AccuracyHandler with the given store.
func NewAccuracyHandler(s *store.Store) *AccuracyHandler {
	return &AccuracyHandler{store: s}
}

type summaryResponse struct {
	Total    int     `json:"total"`
	Correct  int     `json:"correct"`
	Accuracy float64 `json:"accuracy"`
}

type accuracyResponse struct {
	Session    string                     `json:"session,omitempty"`
	Overall    summaryResponse            `json:"overall"`
	ByExpected map[string]summaryResponse `json:"by_expected"`
}

func toSummaryResponse(s store.TrialSummary) summaryResponse {
	return summaryResponse{Total: s.Total, Correct: s.Correct, Accuracy: s.Accuracy()}
}

// ServeHTTP handles GET /api/accuracy[?session=ID]. The per-label
// breakdown always covers every session.
func (h *AccuracyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	session := r.URL.Query().Get("session")
	overall, err := h.store.Trials().Summary(session)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to summarize trials")
		return
	}
	byExpected, err := h.store.Trials().SummaryByExpected()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to summarize trials")
		return
	}

	response := accuracyResponse{
		Session:    session,
		Overall:    toSummaryResponse(overall),
		ByExpected: make(map[string]summaryResponse, len(byExpected)),
	}
	for label, s := range byExpected {
		response.ByExpected[label] = toSummaryResponse(s)
	}

	writeJSON(w, http.StatusOK, response)
}
