package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/ayusman/mudra/internal/store"
)

// DefaultDispatchLimit caps GET /api/dispatches without a limit parameter.
const DefaultDispatchLimit = 50

// DispatchHandler serves the dispatch history.
type DispatchHandler struct {
	store *store.Store
}

// NewDispatchHandler creates a new DispatchHandler with the given store.
func NewDispatchHandler(s *store.Store) *DispatchHandler {
	return &DispatchHandler{store: s}
}

// ServeHTTP routes /api/dispatches and /api/dispatches/{id}.
func (h *DispatchHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/api/dispatches")
	id = strings.TrimPrefix(id, "/")
	if id == "" {
		h.list(w, r)
		return
	}
	h.get(w, id)
}

type dispatchResponse struct {
	ID        string `json:"id"`
	Label     string `json:"label"`
	Command   string `json:"command"`
	Volume    *int   `json:"volume,omitempty"`
	Success   bool   `json:"success"`
	Error     string `json:"error,omitempty"`
	LatencyMs int64  `json:"latency_ms"`
	CreatedAt string `json:"created_at"`
}

type listDispatchesResponse struct {
	Dispatches []dispatchResponse `json:"dispatches"`
	Total      int                `json:"total"`
	Failed     int                `json:"failed"`
}

func toDispatchResponse(d *store.Dispatch) dispatchResponse {
	resp := dispatchResponse{
		ID:        d.ID,
		Label:     d.Label,
		Command:   d.Command,
		Success:   d.Success,
		Error:     d.Error,
		LatencyMs: d.LatencyMs,
		CreatedAt: d.CreatedAt.Format(timeFormat),
	}
	if d.Volume >= 0 {
		v := d.Volume
		resp.Volume = &v
	}
	return resp
}

// list handles GET /api/dispatches?limit=N, newest first.
func (h *DispatchHandler) list(w http.ResponseWriter, r *http.Request) {
	limit, ok := queryInt(r, "limit", DefaultDispatchLimit)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid limit")
		return
	}

	dispatches, err := h.store.Dispatches().List(limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list dispatches")
		return
	}
	total, failed, err := h.store.Dispatches().Count()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to count dispatches")
		return
	}

	response := listDispatchesResponse{
		Dispatches: make([]dispatchResponse, 0, len(dispatches)),
		Total:      total,
		Failed:     failed,
	}
	for _, d := range dispatches {
		response.Dispatches = append(response.Dispatches, toDispatchResponse(d))
	}

	writeJSON(w, http.StatusOK, response)
}

// get handles GET /api/dispatches/{id}.
func (h *DispatchHandler) get(w http.ResponseWriter, id string) {
	d, err := h.store.Dispatches().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Dispatch not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get dispatch")
		return
	}

	writeJSON(w, http.StatusOK, toDispatchResponse(d))
}
