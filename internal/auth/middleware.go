package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/madhava-poojari/jobs-admin-console/internal/config"
	"github.com/madhava-poojari/jobs-admin-console/internal/models"
	"github.com/madhava-poojari/jobs-admin-console/internal/permission"
	"github.com/madhava-poojari/jobs-admin-console/internal/utils"
)

type ctxKey string

const (
	ctxOperatorKey    ctxKey = "currentOperator"
	ctxPermissionsKey ctxKey = "permissions"
)

type OperatorStore interface {
	GetOperatorByID(ctx context.Context, id string) (*models.Operator, error)
}

func GetOperatorFromCtx(ctx context.Context) *models.Operator {
	if op, ok := ctx.Value(ctxOperatorKey).(*models.Operator); ok {
		return op
	}
	return nil
}

// PermissionsFromCtx returns the signed-in operator's grants, or an empty
// set outside an authenticated request.
func PermissionsFromCtx(ctx context.Context) permission.Set {
	if s, ok := ctx.Value(ctxPermissionsKey).(permission.Set); ok {
		return s
	}
	return permission.Set{}
}

// WithOperator stores op and its resolved permissions in ctx.
func WithOperator(ctx context.Context, op *models.Operator) context.Context {
	perms := permission.Resolve(op.Role, op.Active, utils.StringsFromDatatypesJSON(op.Permissions))
	ctx = context.WithValue(ctx, ctxOperatorKey, op)
	return context.WithValue(ctx, ctxPermissionsKey, perms)
}

// AuthMiddleware validates the bearer JWT, loads the operator, ensures it is
// active and puts it in the context with its permission set.
func AuthMiddleware(cfg *config.Config, s OperatorStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authz := r.Header.Get("Authorization")
			if authz == "" {
				utils.WriteJSONResponse(w, http.StatusUnauthorized, false, "missing authorization", nil, nil)
				return
			}
			parts := strings.SplitN(authz, " ", 2)
			if len(parts) != 2 || parts[0] != "Bearer" {
				utils.WriteJSONResponse(w, http.StatusUnauthorized, false, "invalid authorization header", nil, nil)
				return
			}
			claims, err := ParseAndValidateToken(cfg, parts[1])
			if err != nil {
				utils.WriteJSONResponse(w, http.StatusUnauthorized, false, "invalid token", nil, nil)
				return
			}
			op, err := s.GetOperatorByID(r.Context(), claims.OperatorID)
			if err != nil {
				utils.WriteJSONResponse(w, http.StatusUnauthorized, false, "operator not found", nil, nil)
				return
			}
			if !op.Active {
				utils.WriteJSONResponse(w, http.StatusForbidden, false, "account disabled", nil, nil)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithOperator(r.Context(), op)))
		})
	}
}

// RequirePermission rejects requests whose operator lacks p.
func RequirePermission(p permission.Permission) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if GetOperatorFromCtx(r.Context()) == nil {
				utils.WriteJSONResponse(w, http.StatusUnauthorized, false, "unauthorized", nil, nil)
				return
			}
			if !PermissionsFromCtx(r.Context()).Can(p) {
				utils.WriteJSONResponse(w, http.StatusForbidden, false, "forbidden", nil, string(p))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
