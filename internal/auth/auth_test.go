package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/madhava-poojari/jobs-admin-console/internal/config"
	"github.com/madhava-poojari/jobs-admin-console/internal/models"
	"github.com/madhava-poojari/jobs-admin-console/internal/permission"
	"github.com/madhava-poojari/jobs-admin-console/internal/utils"
)

type operatorMap map[string]*models.Operator

func (m operatorMap) GetOperatorByID(ctx context.Context, id string) (*models.Operator, error) {
	if op, ok := m[id]; ok {
		return op, nil
	}
	return nil, errors.New("not found")
}

func testConfig() *config.Config {
	return &config.Config{JWTSecret: "test-secret", AccessTokenTTL: time.Minute}
}

func TestTokenRoundTrip(t *testing.T) {
	cfg := testConfig()
	tok, err := GenerateAccessToken(cfg, "OPR00AAAAA", "admin")
	require.NoError(t, err)

	claims, err := ParseAndValidateToken(cfg, tok)
	require.NoError(t, err)
	assert.Equal(t, "OPR00AAAAA", claims.OperatorID)
	assert.Equal(t, "admin", claims.Role)

	other := testConfig()
	other.JWTSecret = "different"
	_, err = ParseAndValidateToken(other, tok)
	assert.Error(t, err)
}

func TestExpiredTokenRejected(t *testing.T) {
	cfg := testConfig()
	cfg.AccessTokenTTL = -time.Minute
	tok, err := GenerateAccessToken(cfg, "OPR00AAAAA", "admin")
	require.NoError(t, err)
	_, err = ParseAndValidateToken(cfg, tok)
	assert.Error(t, err)
}

func protected(cfg *config.Config, ops operatorMap, p permission.Permission) http.Handler {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		op := GetOperatorFromCtx(r.Context())
		w.Header().Set("X-Operator", op.ID)
		w.WriteHeader(http.StatusNoContent)
	})
	return AuthMiddleware(cfg, ops)(RequirePermission(p)(ok))
}

func do(t *testing.T, h http.Handler, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestMiddlewarePermissions(t *testing.T) {
	cfg := testConfig()
	ops := operatorMap{
		"OPR00VIEW1": {ID: "OPR00VIEW1", Role: models.RoleViewer, Active: true},
		"OPR00VIEW2": {ID: "OPR00VIEW2", Role: models.RoleViewer, Active: true,
			Permissions: utils.DatatypesJSONFromStrings([]string{"masters.manage"})},
		"OPR00GONE1": {ID: "OPR00GONE1", Role: models.RoleSuperAdmin, Active: false},
	}
	h := protected(cfg, ops, permission.MastersManage)

	assert.Equal(t, http.StatusUnauthorized, do(t, h, "").Code)
	assert.Equal(t, http.StatusUnauthorized, do(t, h, "garbage").Code)

	tok, _ := GenerateAccessToken(cfg, "OPR00VIEW1", "viewer")
	assert.Equal(t, http.StatusForbidden, do(t, h, tok).Code)

	tok, _ = GenerateAccessToken(cfg, "OPR00VIEW2", "viewer")
	rec := do(t, h, tok)
	assert.Equal(t, http.StatusNoContent, rec.Code, "extra grant on top of the viewer preset")
	assert.Equal(t, "OPR00VIEW2", rec.Header().Get("X-Operator"))

	tok, _ = GenerateAccessToken(cfg, "OPR00GONE1", "super_admin")
	assert.Equal(t, http.StatusForbidden, do(t, h, tok).Code)

	tok, _ = GenerateAccessToken(cfg, "OPR00MISSING", "admin")
	assert.Equal(t, http.StatusUnauthorized, do(t, h, tok).Code)
}
