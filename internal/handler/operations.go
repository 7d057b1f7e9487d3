package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"tcsgo-engine/internal/engine"
	"tcsgo-engine/internal/identity"
	"tcsgo-engine/internal/middleware"
	"tcsgo-engine/internal/notify"
	"tcsgo-engine/pkg/apierror"
	"tcsgo-engine/pkg/response"

	"github.com/go-chi/chi/v5"
)

// OperationsHandler exposes the engine's operations to the command layer.
type OperationsHandler struct {
	engine *engine.Engine
}

// NewOperationsHandler creates an operations handler.
func NewOperationsHandler(eng *engine.Engine) *OperationsHandler {
	return &OperationsHandler{engine: eng}
}

// opRequest is the common body of every mutating operation.
type opRequest struct {
	EventID  string `json:"eventId"`
	Platform string `json:"platform"`
	Username string `json:"username"`
	Alias    string `json:"alias"`
	Qty      int    `json:"qty"`
	ItemRef  string `json:"itemRef"`
	Token    string `json:"token"`
}

func (h *OperationsHandler) decode(w http.ResponseWriter, r *http.Request) (*opRequest, bool) {
	var req opRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, apierror.Validation("BAD_REQUEST", "invalid JSON body"))
		return nil, false
	}
	if req.EventID == "" {
		req.EventID = middleware.GetEventID(r.Context())
	}
	return &req, true
}

func (h *OperationsHandler) identity(req *opRequest) engine.Identity {
	return engine.Identity{Platform: req.Platform, Username: req.Username}
}

// BuyCase handles POST /api/v1/ops/buy-case.
func (h *OperationsHandler) BuyCase(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}
	env := h.engine.BuyCase(r.Context(), req.EventID, h.identity(req), req.Alias, req.Qty)
	response.Raw(w, http.StatusOK, env)
}

// BuyKey handles POST /api/v1/ops/buy-key.
func (h *OperationsHandler) BuyKey(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}
	env := h.engine.BuyKey(r.Context(), req.EventID, h.identity(req), req.Qty)
	response.Raw(w, http.StatusOK, env)
}

// OpenCase handles POST /api/v1/ops/open-case.
func (h *OperationsHandler) OpenCase(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}
	env := h.engine.OpenCase(r.Context(), req.EventID, h.identity(req), req.Alias)
	response.Raw(w, http.StatusOK, env)
}

// SellStart handles POST /api/v1/ops/sell-start.
func (h *OperationsHandler) SellStart(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}
	env := h.engine.SellStart(r.Context(), req.EventID, h.identity(req), req.ItemRef)
	response.Raw(w, http.StatusOK, env)
}

// SellConfirm handles POST /api/v1/ops/sell-confirm.
func (h *OperationsHandler) SellConfirm(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}
	env := h.engine.SellConfirm(r.Context(), req.EventID, h.identity(req), req.Token)
	response.Raw(w, http.StatusOK, env)
}

// ListInventory handles GET /api/v1/inventory/{platform}/{username}.
func (h *OperationsHandler) ListInventory(w http.ResponseWriter, r *http.Request) {
	id := engine.Identity{
		Platform: chi.URLParam(r, "platform"),
		Username: chi.URLParam(r, "username"),
	}
	data, err := h.engine.ListInventory(r.Context(), id)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.OK(w, data)
}

// GetResult handles GET /api/v1/results/{event_id} (the polled channel).
func (h *OperationsHandler) GetResult(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "event_id")
	env, err := h.engine.Result(r.Context(), eventID)
	if err != nil {
		if errors.Is(err, notify.ErrNoResult) {
			response.Error(w, apierror.NotFound("RESULT_NOT_FOUND", "no result for event"))
			return
		}
		response.Error(w, err)
		return
	}
	response.Raw(w, http.StatusOK, env)
}

// Reconcile handles POST /api/v1/admin/reconcile.
func (h *OperationsHandler) Reconcile(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Users []identity.LinkedUser `json:"users"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, apierror.Validation("BAD_REQUEST", "invalid JSON body"))
		return
	}
	report, err := h.engine.Reconcile(r.Context(), req.Users)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.OK(w, report)
}
