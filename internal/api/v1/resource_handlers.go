package v1

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/madhava-poojari/jobs-admin-console/internal/console"
	"github.com/madhava-poojari/jobs-admin-console/internal/logger"
	"github.com/madhava-poojari/jobs-admin-console/internal/utils"
)

const (
	maxRecordBody      = 1 << 20
	ConfirmTokenHeader = "X-Confirm-Token"
)

type ResourceHandler struct {
	console *console.Console
	log     *logger.Logger
}

func NewResourceHandler(c *console.Console, log *logger.Logger) *ResourceHandler {
	return &ResourceHandler{console: c, log: log}
}

func (h *ResourceHandler) binding(w http.ResponseWriter, r *http.Request) (console.Binding, bool) {
	name := chi.URLParam(r, "resource")
	b, ok := h.console.Binding(name)
	if !ok {
		utils.WriteJSONResponse(w, http.StatusNotFound, false, "unknown resource", nil, name)
		return nil, false
	}
	return b, true
}

func (h *ResourceHandler) bindingAndID(w http.ResponseWriter, r *http.Request) (console.Binding, int64, bool) {
	b, ok := h.binding(w, r)
	if !ok {
		return nil, 0, false
	}
	id, ok := pathID(r)
	if !ok {
		utils.WriteJSONResponse(w, http.StatusBadRequest, false, "invalid id", nil, nil)
		return nil, 0, false
	}
	return b, id, true
}

// GET /resources
func (h *ResourceHandler) ListResources(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSONResponse(w, http.StatusOK, true, "success", h.console.Visible(actorFrom(r)), nil)
}

// GET /resources/{resource}
func (h *ResourceHandler) List(w http.ResponseWriter, r *http.Request) {
	b, ok := h.binding(w, r)
	if !ok {
		return
	}
	rows, pg, err := b.List(r.Context(), actorFrom(r), listQuery(r))
	if err != nil {
		writeError(w, err, "", fmt.Sprintf("Failed to load %s", b.Name()))
		return
	}
	utils.WriteJSONList(w, "success", rows, pg.Meta())
}

// GET /resources/{resource}/{id}
func (h *ResourceHandler) Get(w http.ResponseWriter, r *http.Request) {
	b, id, ok := h.bindingAndID(w, r)
	if !ok {
		return
	}
	rec, err := b.Get(r.Context(), actorFrom(r), id)
	if err != nil {
		writeError(w, err, "", fmt.Sprintf("Failed to load %s", strings.ToLower(b.Noun())))
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, true, "success", rec, nil)
}

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRecordBody))
	if err != nil {
		utils.WriteJSONResponse(w, http.StatusBadRequest, false, "Invalid request body", nil, err)
		return nil, false
	}
	return body, true
}

// POST /resources/{resource}
func (h *ResourceHandler) Create(w http.ResponseWriter, r *http.Request) {
	b, ok := h.binding(w, r)
	if !ok {
		return
	}
	body, ok := readBody(w, r)
	if !ok {
		return
	}
	res, err := b.Create(r.Context(), actorFrom(r), body)
	if err != nil {
		writeError(w, err, res.Message.Text, fmt.Sprintf("Failed to save %s", strings.ToLower(b.Noun())))
		return
	}
	utils.WriteJSONResponse(w, http.StatusCreated, true, res.Message.Text, res.Record, nil)
}

// PUT /resources/{resource}/{id}
func (h *ResourceHandler) Update(w http.ResponseWriter, r *http.Request) {
	b, id, ok := h.bindingAndID(w, r)
	if !ok {
		return
	}
	body, ok := readBody(w, r)
	if !ok {
		return
	}
	res, err := b.Update(r.Context(), actorFrom(r), id, body)
	if err != nil {
		writeError(w, err, res.Message.Text, fmt.Sprintf("Failed to save %s", strings.ToLower(b.Noun())))
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, true, res.Message.Text, res.Record, nil)
}

type confirmResp struct {
	ConfirmToken string    `json:"confirm_token"`
	ExpiresAt    time.Time `json:"expires_at"`
	Prompt       string    `json:"prompt"`
}

// DELETE /resources/{resource}/{id}
//
// The first call answers 409 with a confirmation token; repeating the call
// with the token in X-Confirm-Token performs the delete.
func (h *ResourceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	b, id, ok := h.bindingAndID(w, r)
	if !ok {
		return
	}
	actor := actorFrom(r)
	if !actor.Perms.Can(b.Area().Manage()) {
		utils.WriteJSONResponse(w, http.StatusForbidden, false, "forbidden", nil, string(b.Area().Manage()))
		return
	}

	token := r.Header.Get(ConfirmTokenHeader)
	if err := h.console.Confirm.Confirm(actor.OperatorID, b.Name(), id, token); err != nil {
		tok, exp := h.console.Confirm.Issue(actor.OperatorID, b.Name(), id)
		prompt := fmt.Sprintf("Are you sure you want to delete this %s?", strings.ToLower(b.Noun()))
		utils.WriteJSONResponse(w, http.StatusConflict, false, "confirmation required",
			confirmResp{ConfirmToken: tok, ExpiresAt: exp, Prompt: prompt}, err)
		return
	}

	res, err := b.Delete(r.Context(), actor, id)
	if err != nil {
		writeError(w, err, res.Message.Text, fmt.Sprintf("Failed to delete %s", strings.ToLower(b.Noun())))
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, true, res.Message.Text, nil, nil)
}

// DELETE /resources/confirmations/{token} dismisses a pending delete.
func (h *ResourceHandler) CancelDelete(w http.ResponseWriter, r *http.Request) {
	h.console.Confirm.Cancel(actorFrom(r).OperatorID, chi.URLParam(r, "token"))
	utils.WriteJSONResponse(w, http.StatusOK, true, "cancelled", nil, nil)
}

// PATCH /resources/{resource}/{id}/activate
func (h *ResourceHandler) Activate(w http.ResponseWriter, r *http.Request) {
	h.setActive(w, r, true)
}

// PATCH /resources/{resource}/{id}/deactivate
func (h *ResourceHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	h.setActive(w, r, false)
}

func (h *ResourceHandler) setActive(w http.ResponseWriter, r *http.Request, active bool) {
	b, id, ok := h.bindingAndID(w, r)
	if !ok {
		return
	}
	res, err := b.SetActive(r.Context(), actorFrom(r), id, active)
	if err != nil {
		writeError(w, err, res.Message.Text, "Failed to update status")
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, true, res.Message.Text, nil, nil)
}

type reorderReq struct {
	From *int `json:"from"`
	To   *int `json:"to"`
}

// POST /resources/{resource}/reorder {from, to}
func (h *ResourceHandler) Reorder(w http.ResponseWriter, r *http.Request) {
	b, ok := h.binding(w, r)
	if !ok {
		return
	}
	var req reorderReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.From == nil || req.To == nil {
		utils.WriteJSONResponse(w, http.StatusBadRequest, false, "from and to are required", nil, err)
		return
	}

	items, res, err := b.Reorder(r.Context(), actorFrom(r), *req.From, *req.To)
	if err != nil {
		if items != nil {
			// persist failed; the body carries the server order the list was reset to
			utils.WriteJSONResponse(w, statusFor(err), false, res.Message.Text, items, err)
			return
		}
		writeError(w, err, res.Message.Text, "Failed to update sequence")
		return
	}
	msg := res.Message.Text
	if msg == "" {
		msg = "no change"
	}
	utils.WriteJSONResponse(w, http.StatusOK, true, msg, items, nil)
}
