package v1

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/madhava-poojari/jobs-admin-console/internal/audit"
	"github.com/madhava-poojari/jobs-admin-console/internal/auth"
	"github.com/madhava-poojari/jobs-admin-console/internal/models"
	"github.com/madhava-poojari/jobs-admin-console/internal/service"
	"github.com/madhava-poojari/jobs-admin-console/internal/store"
	"github.com/madhava-poojari/jobs-admin-console/internal/utils"
)

const resourceOperators = "operators"

type OperatorHandler struct {
	operators *service.OperatorService
	audit     audit.Recorder
}

func NewOperatorHandler(operators *service.OperatorService, rec audit.Recorder) *OperatorHandler {
	return &OperatorHandler{operators: operators, audit: rec}
}

func (h *OperatorHandler) record(r *http.Request, targetID, change string) {
	if h.audit == nil {
		return
	}
	actor := ""
	if op := auth.GetOperatorFromCtx(r.Context()); op != nil {
		actor = op.ID
	}
	h.audit.Record(r.Context(), audit.Event{
		Action:     audit.ActionOperator,
		Resource:   resourceOperators,
		OperatorID: actor,
		Details:    map[string]string{"target": targetID, "change": change},
	})
}

// GET /operators
func (h *OperatorHandler) List(w http.ResponseWriter, r *http.Request) {
	ops, err := h.operators.List(r.Context())
	if err != nil {
		utils.WriteJSONResponse(w, http.StatusInternalServerError, false, "error fetching operators", nil, err)
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, true, "success", ops, nil)
}

// POST /operators
func (h *OperatorHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email       string   `json:"email"`
		Password    string   `json:"password"`
		Name        string   `json:"name"`
		Role        string   `json:"role"`
		Permissions []string `json:"permissions"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSONResponse(w, http.StatusBadRequest, false, "Invalid request body", nil, err)
		return
	}
	role := models.Role(req.Role)
	if req.Role == "" {
		role = models.RoleViewer
	}
	op, err := h.operators.CreateOperator(r.Context(), req.Email, req.Password, req.Name, role, req.Permissions)
	if err != nil {
		utils.WriteJSONResponse(w, http.StatusBadRequest, false, "error creating operator", nil, err)
		return
	}
	h.record(r, op.ID, "created")
	utils.WriteJSONResponse(w, http.StatusCreated, true, "Operator created successfully", op, nil)
}

// PUT /operators/{id}
func (h *OperatorHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var payload service.OperatorUpdate
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.WriteJSONResponse(w, http.StatusBadRequest, false, "invalid request", nil, err)
		return
	}

	current := auth.GetOperatorFromCtx(r.Context())
	if current != nil && current.ID == id && ((payload.Active != nil && !*payload.Active) || payload.Role != nil) {
		utils.WriteJSONResponse(w, http.StatusBadRequest, false, "you cannot change your own role or status", nil, nil)
		return
	}

	op, err := h.operators.UpdateOperator(r.Context(), id, payload)
	if err != nil {
		if store.IsNotFound(err) {
			utils.WriteJSONResponse(w, http.StatusNotFound, false, "operator not found", nil, nil)
			return
		}
		utils.WriteJSONResponse(w, statusFor(err), false, "couldnt process the updates", nil, err)
		return
	}
	h.record(r, id, "updated")
	utils.WriteJSONResponse(w, http.StatusOK, true, "Operator updated successfully", op, nil)
}
