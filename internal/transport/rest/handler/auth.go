package handler

import (
	"net/http"

	"mediqa/casesim/internal/service"
	"mediqa/casesim/internal/transport/rest/middleware"

	"github.com/goccy/go-json"
)

// TabHandler handles tab session endpoints
type TabHandler struct {
	tabSvc *service.TabService
}

// NewTabHandler creates a new tab handler
func NewTabHandler(tabSvc *service.TabService) *TabHandler {
	return &TabHandler{tabSvc: tabSvc}
}

// Open handles POST /v1/tabs
func (h *TabHandler) Open(w http.ResponseWriter, r *http.Request) {
	resp, err := h.tabSvc.Open(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, resp)
}

// Reload handles POST /v1/tabs/reload
func (h *TabHandler) Reload(w http.ResponseWriter, r *http.Request) {
	snap, err := h.tabSvc.Reload(r.Context(), middleware.GetTabID(r.Context()))
	writeState(w, snap, err)
}

// Close handles DELETE /v1/tabs
func (h *TabHandler) Close(w http.ResponseWriter, r *http.Request) {
	if err := h.tabSvc.Close(middleware.GetTabID(r.Context())); err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// History handles GET /v1/history
func (h *TabHandler) History(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", service.DefaultHistoryLimit)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid limit")
		return
	}

	attempts, err := h.tabSvc.History(r.Context(), middleware.GetTabID(r.Context()), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"attempts": attempts,
	})
}

// Helper functions
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
