package v1

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/madhava-poojari/jobs-admin-console/internal/auth"
	"github.com/madhava-poojari/jobs-admin-console/internal/console"
	"github.com/madhava-poojari/jobs-admin-console/internal/export"
	"github.com/madhava-poojari/jobs-admin-console/internal/forms"
	"github.com/madhava-poojari/jobs-admin-console/internal/listpage"
	"github.com/madhava-poojari/jobs-admin-console/internal/marketplace"
	"github.com/madhava-poojari/jobs-admin-console/internal/permission"
	"github.com/madhava-poojari/jobs-admin-console/internal/reorder"
	"github.com/madhava-poojari/jobs-admin-console/internal/service"
	"github.com/madhava-poojari/jobs-admin-console/internal/store"
	"github.com/madhava-poojari/jobs-admin-console/internal/utils"
)

func actorFrom(r *http.Request) console.Actor {
	a := console.Actor{Perms: auth.PermissionsFromCtx(r.Context())}
	if op := auth.GetOperatorFromCtx(r.Context()); op != nil {
		a.OperatorID = op.ID
	}
	return a
}

// statusFor maps domain errors onto HTTP statuses. Anything unknown is
// treated as an upstream failure.
func statusFor(err error) int {
	switch {
	case errors.Is(err, permission.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, forms.ErrValidation):
		return http.StatusUnprocessableEntity
	case errors.Is(err, console.ErrBadPayload),
		errors.Is(err, reorder.ErrOutOfRange),
		errors.Is(err, reorder.ErrNotSequenced),
		errors.Is(err, service.ErrInvalidRole),
		errors.Is(err, service.ErrUnknownPermission):
		return http.StatusBadRequest
	case errors.Is(err, listpage.ErrConfirmationRequired):
		return http.StatusConflict
	case errors.Is(err, export.ErrObjectNotFound), store.IsNotFound(err):
		return http.StatusNotFound
	case errors.Is(err, forms.ErrBusy):
		return http.StatusConflict
	}
	return marketplace.StatusCode(err)
}

// writeError answers with the operator-facing message when there is one,
// fallback otherwise.
func writeError(w http.ResponseWriter, err error, message, fallback string) {
	if message == "" {
		message = fallback
	}
	utils.WriteJSONResponse(w, statusFor(err), false, message, nil, err)
}

func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func parseBool(raw string) *bool {
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return nil
	}
	return &b
}

// listQuery reads search, active, sort, desc, page, limit and lang.
func listQuery(r *http.Request) listpage.Query {
	v := r.URL.Query()
	q := listpage.Query{
		Search: v.Get("search"),
		Active: parseBool(v.Get("active")),
		SortBy: listpage.SortKey(v.Get("sort")),
		Lang:   v.Get("lang"),
	}
	if d := parseBool(v.Get("desc")); d != nil {
		q.Desc = *d
	}
	q.Page, _ = strconv.Atoi(v.Get("page"))
	q.Limit, _ = strconv.Atoi(v.Get("limit"))
	return q
}
