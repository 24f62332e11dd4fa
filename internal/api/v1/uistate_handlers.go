package v1

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/madhava-poojari/jobs-admin-console/internal/auth"
	"github.com/madhava-poojari/jobs-admin-console/internal/logger"
	"github.com/madhava-poojari/jobs-admin-console/internal/store"
	"github.com/madhava-poojari/jobs-admin-console/internal/uistate"
	"github.com/madhava-poojari/jobs-admin-console/internal/utils"
)

type UIStateHandler struct {
	store *store.Store
	log   *logger.Logger
	locks *uistate.Locks
}

func NewUIStateHandler(s *store.Store, log *logger.Logger) *UIStateHandler {
	return &UIStateHandler{store: s, log: log, locks: &uistate.Locks{}}
}

func (h *UIStateHandler) manager(w http.ResponseWriter, r *http.Request) (*uistate.Manager, bool) {
	op := auth.GetOperatorFromCtx(r.Context())
	if op == nil {
		utils.WriteJSONResponse(w, http.StatusUnauthorized, false, "unauthorized", nil, nil)
		return nil, false
	}
	return uistate.NewManager(h.store.UIState(op.ID), h.log, uistate.WithLock(h.locks.For(op.ID))), true
}

func decodeInto(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		utils.WriteJSONResponse(w, http.StatusBadRequest, false, "Invalid request body", nil, err)
		return false
	}
	return true
}

func (h *UIStateHandler) saved(w http.ResponseWriter, r *http.Request, m *uistate.Manager, err error) {
	if err != nil {
		utils.WriteJSONResponse(w, http.StatusInternalServerError, false, "failed to save ui state", nil, err)
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, true, "saved", m.Snapshot(r.Context()), nil)
}

// GET /ui-state
func (h *UIStateHandler) Get(w http.ResponseWriter, r *http.Request) {
	m, ok := h.manager(w, r)
	if !ok {
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, true, "success", m.Snapshot(r.Context()), nil)
}

// PUT /ui-state/sidebar {open}
func (h *UIStateHandler) SetSidebar(w http.ResponseWriter, r *http.Request) {
	m, ok := h.manager(w, r)
	if !ok {
		return
	}
	var req struct {
		Open *bool `json:"open"`
	}
	if !decodeInto(w, r, &req) {
		return
	}
	if req.Open == nil {
		utils.WriteJSONResponse(w, http.StatusBadRequest, false, "open is required", nil, nil)
		return
	}
	h.saved(w, r, m, m.SetSidebarOpen(r.Context(), *req.Open))
}

type positionReq struct {
	Position int `json:"position"`
}

// PUT /ui-state/scroll/{id} {position}
func (h *UIStateHandler) SetScroll(w http.ResponseWriter, r *http.Request) {
	m, ok := h.manager(w, r)
	if !ok {
		return
	}
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	var req positionReq
	if !decodeInto(w, r, &req) {
		return
	}
	if id == "" || req.Position < 0 {
		utils.WriteJSONResponse(w, http.StatusBadRequest, false, "invalid scroll position", nil, nil)
		return
	}
	h.saved(w, r, m, m.SetScrollPosition(r.Context(), id, req.Position))
}

// PUT /ui-state/menu {menu}
func (h *UIStateHandler) SetMenu(w http.ResponseWriter, r *http.Request) {
	m, ok := h.manager(w, r)
	if !ok {
		return
	}
	var req struct {
		Menu string `json:"menu"`
	}
	if !decodeInto(w, r, &req) {
		return
	}
	h.saved(w, r, m, m.SetExpandedMenu(r.Context(), req.Menu))
}

// PUT /ui-state/active-page {page}
func (h *UIStateHandler) SetActivePage(w http.ResponseWriter, r *http.Request) {
	m, ok := h.manager(w, r)
	if !ok {
		return
	}
	var req struct {
		Page string `json:"page"`
	}
	if !decodeInto(w, r, &req) {
		return
	}
	h.saved(w, r, m, m.SetActivePage(r.Context(), req.Page))
}

// PUT /ui-state/sidebar-scroll {position}
func (h *UIStateHandler) SetSidebarScroll(w http.ResponseWriter, r *http.Request) {
	m, ok := h.manager(w, r)
	if !ok {
		return
	}
	var req positionReq
	if !decodeInto(w, r, &req) {
		return
	}
	if req.Position < 0 {
		utils.WriteJSONResponse(w, http.StatusBadRequest, false, "invalid scroll position", nil, nil)
		return
	}
	h.saved(w, r, m, m.SetSidebarScroll(r.Context(), req.Position))
}
