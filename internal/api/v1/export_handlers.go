package v1

import (
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/madhava-poojari/jobs-admin-console/internal/audit"
	"github.com/madhava-poojari/jobs-admin-console/internal/auth"
	"github.com/madhava-poojari/jobs-admin-console/internal/export"
	"github.com/madhava-poojari/jobs-admin-console/internal/marketplace"
	"github.com/madhava-poojari/jobs-admin-console/internal/models"
	"github.com/madhava-poojari/jobs-admin-console/internal/permission"
	"github.com/madhava-poojari/jobs-admin-console/internal/store"
	"github.com/madhava-poojari/jobs-admin-console/internal/utils"
)

const (
	presignTTL        = 15 * time.Minute
	defaultExportList = 20
)

// employer list filters forwarded to the marketplace on export
var employerFilters = []string{"city_id", "category_id", "is_verified"}

type ExportHandler struct {
	exporter *export.Exporter
	store    *store.Store
	audit    audit.Recorder
}

func NewExportHandler(e *export.Exporter, s *store.Store, rec audit.Recorder) *ExportHandler {
	return &ExportHandler{exporter: e, store: s, audit: rec}
}

type exportResp struct {
	*models.ExportRecord
	DownloadURL string `json:"download_url"`
}

func (h *ExportHandler) withURL(r *http.Request, rec *models.ExportRecord) exportResp {
	url, err := h.exporter.DownloadURL(r.Context(), rec, presignTTL)
	if err != nil || url == "" {
		url = fmt.Sprintf("/api/v1/exports/%s/download", rec.ID)
	}
	return exportResp{ExportRecord: rec, DownloadURL: url}
}

// GET /employers/export
func (h *ExportHandler) ExportEmployers(w http.ResponseWriter, r *http.Request) {
	op := auth.GetOperatorFromCtx(r.Context())
	if op == nil {
		utils.WriteJSONResponse(w, http.StatusUnauthorized, false, "unauthorized", nil, nil)
		return
	}

	v := r.URL.Query()
	q := marketplace.ListQuery{Search: v.Get("search"), Active: parseBool(v.Get("active")), Filters: map[string]string{}}
	for _, f := range employerFilters {
		if val := v.Get(f); val != "" {
			q.Filters[f] = val
		}
	}

	rec, err := h.exporter.Employers(r.Context(), op.ID, q)
	if err != nil {
		writeError(w, err, marketplace.ErrorMessage(err, ""), "Failed to export employers")
		return
	}
	if h.audit != nil {
		h.audit.Record(r.Context(), audit.Event{
			Action:     audit.ActionExported,
			Resource:   export.ResourceEmployers,
			OperatorID: op.ID,
			Details:    map[string]interface{}{"export_id": rec.ID, "rows": rec.RowCount},
		})
	}
	utils.WriteJSONResponse(w, http.StatusCreated, true, "Employers exported successfully", h.withURL(r, rec), nil)
}

// GET /exports lists the caller's recent exports.
func (h *ExportHandler) ListExports(w http.ResponseWriter, r *http.Request) {
	op := auth.GetOperatorFromCtx(r.Context())
	if op == nil {
		utils.WriteJSONResponse(w, http.StatusUnauthorized, false, "unauthorized", nil, nil)
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 {
		limit = defaultExportList
	}
	recs, err := h.store.ListExports(r.Context(), op.ID, limit)
	if err != nil {
		utils.WriteJSONResponse(w, http.StatusInternalServerError, false, "failed to list exports", nil, err)
		return
	}
	out := make([]exportResp, 0, len(recs))
	for i := range recs {
		out = append(out, h.withURL(r, &recs[i]))
	}
	utils.WriteJSONResponse(w, http.StatusOK, true, "success", out, nil)
}

// GET /exports/{id}/download redirects to a presigned URL when the storage
// has one and streams the file otherwise.
func (h *ExportHandler) Download(w http.ResponseWriter, r *http.Request) {
	op := auth.GetOperatorFromCtx(r.Context())
	if op == nil {
		utils.WriteJSONResponse(w, http.StatusUnauthorized, false, "unauthorized", nil, nil)
		return
	}
	rec, err := h.store.GetExport(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err, "", "export not found")
		return
	}
	if rec.OperatorID != op.ID && !auth.PermissionsFromCtx(r.Context()).Can(permission.OperatorsManage) {
		utils.WriteJSONResponse(w, http.StatusForbidden, false, "forbidden", nil, nil)
		return
	}

	if url, err := h.exporter.DownloadURL(r.Context(), rec, presignTTL); err == nil && url != "" {
		http.Redirect(w, r, url, http.StatusFound)
		return
	}

	f, err := h.exporter.Storage().Open(r.Context(), rec.ObjectKey)
	if err != nil {
		writeError(w, err, "", "export file not available")
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", rec.Filename))
	w.WriteHeader(http.StatusOK)
	_, _ = io.Copy(w, f)
}
