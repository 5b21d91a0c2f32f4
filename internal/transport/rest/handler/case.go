package handler

import (
	"net/http"
	"strconv"

	"mediqa/casesim/internal/model"
	"mediqa/casesim/internal/service"
	"mediqa/casesim/internal/transport/rest/middleware"

	"github.com/goccy/go-json"
	"github.com/pkg/errors"
)

// StateResponse is the body of every case endpoint
type StateResponse struct {
	State *model.Snapshot `json:"state"`
	Error string          `json:"error,omitempty"`
}

// InputRequest is the request body for PUT /v1/case/input
type InputRequest struct {
	Text string `json:"text"`
}

// FocusRequest is the request body for PUT /v1/case/focus
type FocusRequest struct {
	Focused bool `json:"focused"`
}

// KeyRequest is the request body for POST /v1/case/keys
type KeyRequest struct {
	Key string `json:"key"`
}

// CaseHandler drives the tab's controller
type CaseHandler struct {
	tabSvc *service.TabService
}

// NewCaseHandler creates a new case handler
func NewCaseHandler(tabSvc *service.TabService) *CaseHandler {
	return &CaseHandler{tabSvc: tabSvc}
}

func (h *CaseHandler) controller(w http.ResponseWriter, r *http.Request) (*service.Controller, bool) {
	ctrl, err := h.tabSvc.Controller(middleware.GetTabID(r.Context()))
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return nil, false
	}
	return ctrl, true
}

// Get handles GET /v1/case
func (h *CaseHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := h.controller(w, r)
	if !ok {
		return
	}
	writeState(w, ctrl.Snapshot(), nil)
}

// New handles POST /v1/case/new
func (h *CaseHandler) New(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := h.controller(w, r)
	if !ok {
		return
	}
	snap, err := ctrl.NewCase(r.Context())
	writeState(w, snap, err)
}

// SetInput handles PUT /v1/case/input
func (h *CaseHandler) SetInput(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := h.controller(w, r)
	if !ok {
		return
	}
	var req InputRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	snap, err := ctrl.SetInput(req.Text)
	writeState(w, snap, err)
}

// SetFocus handles PUT /v1/case/focus
func (h *CaseHandler) SetFocus(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := h.controller(w, r)
	if !ok {
		return
	}
	var req FocusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	writeState(w, ctrl.SetFocus(req.Focused), nil)
}

// Advance handles POST /v1/case/advance
func (h *CaseHandler) Advance(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := h.controller(w, r)
	if !ok {
		return
	}
	snap, err := ctrl.Advance(r.Context())
	writeState(w, snap, err)
}

// Retreat handles POST /v1/case/retreat
func (h *CaseHandler) Retreat(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := h.controller(w, r)
	if !ok {
		return
	}
	snap, err := ctrl.Retreat(r.Context())
	writeState(w, snap, err)
}

// Key handles POST /v1/case/keys
func (h *CaseHandler) Key(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := h.controller(w, r)
	if !ok {
		return
	}
	var req KeyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Key == "" {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	snap, err := ctrl.HandleKey(r.Context(), req.Key)
	writeState(w, snap, err)
}

func writeState(w http.ResponseWriter, snap *model.Snapshot, err error) {
	if err != nil {
		writeJSON(w, statusFor(err), &StateResponse{State: snap, Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, &StateResponse{State: snap})
}

// statusFor maps controller errors to HTTP status codes
func statusFor(err error) int {
	var ve *service.ValidationError
	var se *service.SubmissionError
	var ne *service.NetworkError
	var be *service.BackendError
	switch {
	case errors.As(err, &ve):
		return http.StatusUnprocessableEntity
	case errors.Is(err, service.ErrTabNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrSubmissionInFlight),
		errors.Is(err, service.ErrNotViewing),
		errors.Is(err, service.ErrAtFirstQuestion),
		errors.Is(err, service.ErrNoActiveCase):
		return http.StatusConflict
	case errors.As(err, &se), errors.As(err, &ne), errors.As(err, &be):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func queryInt(r *http.Request, key string, def int) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, errors.Errorf("invalid %s %q", key, raw)
	}
	return n, nil
}
