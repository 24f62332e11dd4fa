package v1

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/madhava-poojari/jobs-admin-console/internal/audit"
	"github.com/madhava-poojari/jobs-admin-console/internal/auth"
	"github.com/madhava-poojari/jobs-admin-console/internal/config"
	"github.com/madhava-poojari/jobs-admin-console/internal/console"
	"github.com/madhava-poojari/jobs-admin-console/internal/export"
	"github.com/madhava-poojari/jobs-admin-console/internal/logger"
	"github.com/madhava-poojari/jobs-admin-console/internal/marketplace"
	"github.com/madhava-poojari/jobs-admin-console/internal/models"
	"github.com/madhava-poojari/jobs-admin-console/internal/service"
	"github.com/madhava-poojari/jobs-admin-console/internal/store"
)

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Meta    json.RawMessage `json:"meta"`
}

type echoTranslator struct{}

func (echoTranslator) Translate(ctx context.Context, text, target string) (string, error) {
	return "HI:" + text, nil
}

// marketplaceStub answers the few state endpoints the tests hit.
func marketplaceStub() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/masters/states", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"data":[` +
			`{"id":1,"name_english":"Bihar","is_active":true,"sequence":1},` +
			`{"id":2,"name_english":"Goa","is_active":true,"sequence":2}]}`))
	})
	mux.HandleFunc("/api/masters/states/1", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"data":{"id":1,"name_english":"Bihar","is_active":true,"sequence":1}}`))
	})
	mux.HandleFunc("/api/employers", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"data":[` +
			`{"id":7,"name":"Ravi, Sons","mobile":"9876543210","is_active":true,"is_verified":true}],` +
			`"meta":{"total":1,"limit":100,"totalPages":1}}`))
	})
	return mux
}

type testEnv struct {
	handler http.Handler
	store   *store.Store
	cfg     *config.Config
	admin   *models.Operator
	viewer  *models.Operator
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	cfg := &config.Config{
		DatabaseDriver:  "sqlite",
		JWTSecret:       "test-secret",
		AccessTokenTTL:  15 * time.Minute,
		RefreshTTL:      time.Hour,
		TranslateTarget: "hi",
	}
	s := store.New(db, cfg)
	require.NoError(t, s.Migrate())

	upstream := httptest.NewServer(marketplaceStub())
	t.Cleanup(upstream.Close)
	client, err := marketplace.New(marketplace.Config{BaseURL: upstream.URL + "/api", HTTPClient: upstream.Client()}, logger.Nop())
	require.NoError(t, err)
	reg := marketplace.NewRegistry(client)

	auditor := audit.NewAuditor(s, logger.Nop())
	cons := console.New(reg, console.Deps{Translator: echoTranslator{}, Audit: auditor, Log: logger.Nop()})
	exporter := export.NewExporter(reg.Employers, export.NewFileStorage(t.TempDir()), s, logger.Nop())

	api := NewAPI(Deps{
		Cfg:        cfg,
		Store:      s,
		Console:    cons,
		Exporter:   exporter,
		Translator: echoTranslator{},
		Audit:      auditor,
		Log:        logger.Nop(),
	})

	osvc := service.NewOperatorService(s)
	ctx := context.Background()
	admin, err := osvc.CreateOperator(ctx, "root@example.com", "correct-horse", "Root", models.RoleSuperAdmin, nil)
	require.NoError(t, err)
	viewer, err := osvc.CreateOperator(ctx, "look@example.com", "correct-horse", "Looker", models.RoleViewer, nil)
	require.NoError(t, err)

	return &testEnv{handler: api.Routes(), store: s, cfg: cfg, admin: admin, viewer: viewer}
}

func (e *testEnv) token(t *testing.T, op *models.Operator) string {
	t.Helper()
	tok, err := auth.GenerateAccessToken(e.cfg, op.ID, string(op.Role))
	require.NoError(t, err)
	return tok
}

func (e *testEnv) do(t *testing.T, method, path, token, body string, mods ...func(*http.Request)) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for _, m := range mods {
		m(req)
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)

	var env envelope
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	}
	return rec, env
}

func refreshCookieFrom(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == refreshCookie {
			return c
		}
	}
	t.Fatalf("no %s cookie in response", refreshCookie)
	return nil
}

func TestHealth(t *testing.T) {
	e := newTestEnv(t)
	rec, env := e.do(t, http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, env.Success)
}

func TestLoginRefreshLogout(t *testing.T) {
	e := newTestEnv(t)

	rec, _ := e.do(t, http.MethodPost, "/auth/login", "", `{"email":"root@example.com","password":"wrong"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, env := e.do(t, http.MethodPost, "/auth/login", "", `{"email":"ROOT@example.com","password":"correct-horse"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var tokens tokenResp
	require.NoError(t, json.Unmarshal(env.Data, &tokens))
	assert.NotEmpty(t, tokens.AccessToken)
	assert.Equal(t, e.admin.ID, tokens.Operator.ID)
	first := refreshCookieFrom(t, rec)
	assert.True(t, first.HttpOnly)

	withCookie := func(c *http.Cookie) func(*http.Request) {
		return func(r *http.Request) { r.AddCookie(&http.Cookie{Name: c.Name, Value: c.Value}) }
	}

	rec, env = e.do(t, http.MethodPost, "/auth/refresh", "", "", withCookie(first))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.NoError(t, json.Unmarshal(env.Data, &tokens))
	assert.NotEmpty(t, tokens.AccessToken)
	second := refreshCookieFrom(t, rec)
	assert.NotEqual(t, first.Value, second.Value)

	// rotated tokens are single use
	rec, _ = e.do(t, http.MethodPost, "/auth/refresh", "", "", withCookie(first))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, _ = e.do(t, http.MethodPost, "/auth/logout", "", "", withCookie(second))
	assert.Equal(t, http.StatusOK, rec.Code)
	rec, _ = e.do(t, http.MethodPost, "/auth/refresh", "", "", withCookie(second))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestGoogleSignInNotConfigured(t *testing.T) {
	e := newTestEnv(t)
	rec, _ := e.do(t, http.MethodPost, "/auth/google", "", `{"code":"abc"}`)
	assert.Equal(t, http.StatusNotImplemented, rec.Code)
}

func TestMe(t *testing.T) {
	e := newTestEnv(t)

	rec, _ := e.do(t, http.MethodGet, "/me", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, env := e.do(t, http.MethodGet, "/me", e.token(t, e.viewer), "")
	require.Equal(t, http.StatusOK, rec.Code)
	var me struct {
		Operator    models.Operator          `json:"operator"`
		Permissions []string                 `json:"permissions"`
		Resources   []map[string]interface{} `json:"resources"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &me))
	assert.Equal(t, e.viewer.ID, me.Operator.ID)
	assert.Contains(t, me.Permissions, "masters.view")
	assert.NotContains(t, me.Permissions, "masters.manage")
	require.NotEmpty(t, me.Resources)
	for _, r := range me.Resources {
		assert.Equal(t, false, r["can_manage"], r["name"])
	}
}

func TestListResourceAndUnknown(t *testing.T) {
	e := newTestEnv(t)
	tok := e.token(t, e.viewer)

	rec, env := e.do(t, http.MethodGet, "/resources/states?search=goa", tok, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var rows []map[string]interface{}
	require.NoError(t, json.Unmarshal(env.Data, &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, "Goa", rows[0]["name_english"])
	assert.NotEmpty(t, env.Meta)

	rec, _ = e.do(t, http.MethodGet, "/resources/planets", tok, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestViewerCannotManage(t *testing.T) {
	e := newTestEnv(t)
	tok := e.token(t, e.viewer)

	rec, _ := e.do(t, http.MethodDelete, "/resources/states/1", tok, "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec, _ = e.do(t, http.MethodPost, "/resources/states", tok, `{"name_english":"Kerala"}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec, _ = e.do(t, http.MethodGet, "/operators", tok, "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec, _ = e.do(t, http.MethodGet, "/employers/export", tok, "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestDeleteAsksForConfirmation(t *testing.T) {
	e := newTestEnv(t)
	tok := e.token(t, e.admin)

	rec, env := e.do(t, http.MethodDelete, "/resources/states/1", tok, "")
	require.Equal(t, http.StatusConflict, rec.Code, rec.Body.String())
	var c confirmResp
	require.NoError(t, json.Unmarshal(env.Data, &c))
	require.NotEmpty(t, c.ConfirmToken)
	assert.Equal(t, "Are you sure you want to delete this state?", c.Prompt)

	// a token for another record does not carry over
	rec, _ = e.do(t, http.MethodDelete, "/resources/states/2", tok, "", func(r *http.Request) {
		r.Header.Set(ConfirmTokenHeader, c.ConfirmToken)
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	// a dismissed token can no longer confirm
	rec, env = e.do(t, http.MethodDelete, "/resources/states/1", tok, "")
	require.Equal(t, http.StatusConflict, rec.Code)
	require.NoError(t, json.Unmarshal(env.Data, &c))
	rec, _ = e.do(t, http.MethodDelete, "/resources/confirmations/"+c.ConfirmToken, tok, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	rec, _ = e.do(t, http.MethodDelete, "/resources/states/1", tok, "", func(r *http.Request) {
		r.Header.Set(ConfirmTokenHeader, c.ConfirmToken)
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestConfirmTokenIsNotSharedBetweenOperators(t *testing.T) {
	e := newTestEnv(t)
	other, err := service.NewOperatorService(e.store).CreateOperator(context.Background(),
		"second@example.com", "correct-horse", "Second", models.RoleSuperAdmin, nil)
	require.NoError(t, err)

	rec, env := e.do(t, http.MethodDelete, "/resources/states/1", e.token(t, e.admin), "")
	require.Equal(t, http.StatusConflict, rec.Code)
	var c confirmResp
	require.NoError(t, json.Unmarshal(env.Data, &c))

	withToken := func(r *http.Request) { r.Header.Set(ConfirmTokenHeader, c.ConfirmToken) }
	rec, _ = e.do(t, http.MethodDelete, "/resources/states/1", e.token(t, other), "", withToken)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec, _ = e.do(t, http.MethodDelete, "/resources/confirmations/"+c.ConfirmToken, e.token(t, other), "")
	assert.Equal(t, http.StatusOK, rec.Code)

	// still good for the operator it was issued to
	rec, _ = e.do(t, http.MethodDelete, "/resources/states/1", e.token(t, e.admin), "", withToken)
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestCreateValidationError(t *testing.T) {
	e := newTestEnv(t)
	tok := e.token(t, e.admin)

	rec, env := e.do(t, http.MethodPost, "/resources/states", tok, `{"state_code":"KL"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code, rec.Body.String())
	assert.False(t, env.Success)

	rec, _ = e.do(t, http.MethodPost, "/resources/states", tok, `not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReorderNeedsBothIndexes(t *testing.T) {
	e := newTestEnv(t)
	tok := e.token(t, e.admin)

	rec, _ := e.do(t, http.MethodPost, "/resources/states/reorder", tok, `{"from":0}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec, _ = e.do(t, http.MethodPost, "/resources/employers/reorder", tok, `{"from":0,"to":1}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec, env := e.do(t, http.MethodPost, "/resources/states/reorder", tok, `{"from":1,"to":1}`)
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "no change", env.Message)
}

func TestUIStateRoundTrip(t *testing.T) {
	e := newTestEnv(t)
	tok := e.token(t, e.admin)

	rec, _ := e.do(t, http.MethodPut, "/ui-state/sidebar", tok, `{"open":true}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	rec, _ = e.do(t, http.MethodPut, "/ui-state/scroll/states", tok, `{"position":120}`)
	require.Equal(t, http.StatusOK, rec.Code)
	rec, _ = e.do(t, http.MethodPut, "/ui-state/active-page", tok, `{"page":"states"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	rec, _ = e.do(t, http.MethodPut, "/ui-state/scroll/states", tok, `{"position":-4}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, env := e.do(t, http.MethodGet, "/ui-state", tok, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var snap struct {
		SidebarOpen     bool           `json:"sidebar_open"`
		ScrollPositions map[string]int `json:"scroll_positions"`
		ActivePage      string         `json:"active_page"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &snap))
	assert.True(t, snap.SidebarOpen)
	assert.Equal(t, 120, snap.ScrollPositions["states"])
	assert.Equal(t, "states", snap.ActivePage)

	// state is per operator
	_, env = e.do(t, http.MethodGet, "/ui-state", e.token(t, e.viewer), "")
	require.NoError(t, json.Unmarshal(env.Data, &snap))
	assert.Empty(t, snap.ActivePage)
}

func TestOperatorManagement(t *testing.T) {
	e := newTestEnv(t)
	tok := e.token(t, e.admin)

	rec, _ := e.do(t, http.MethodPut, "/operators/"+e.admin.ID, tok, `{"role":"viewer"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, env := e.do(t, http.MethodPost, "/operators", tok, `{"email":"new@example.com","password":"long-enough","name":"New"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created models.Operator
	require.NoError(t, json.Unmarshal(env.Data, &created))
	assert.Equal(t, models.RoleViewer, created.Role)

	rec, _ = e.do(t, http.MethodPut, "/operators/"+created.ID, tok, `{"active":false}`)
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	rec, _ = e.do(t, http.MethodPut, "/operators/OPR00NOPE0", tok, `{"name":"x"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	var events int64
	require.NoError(t, e.store.DB.Model(&models.OutboxEvent{}).Where("type = ?", audit.ActionOperator).Count(&events).Error)
	assert.EqualValues(t, 2, events)
}

func TestTranslate(t *testing.T) {
	e := newTestEnv(t)
	tok := e.token(t, e.viewer)

	rec, env := e.do(t, http.MethodPost, "/translate", tok, `{"text":"Driver"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var out map[string]string
	require.NoError(t, json.Unmarshal(env.Data, &out))
	assert.Equal(t, "HI:Driver", out["translated_text"])
	assert.Equal(t, "hi", out["target"])

	rec, _ = e.do(t, http.MethodPost, "/translate", tok, `{"text":"   "}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestExportAndDownload(t *testing.T) {
	e := newTestEnv(t)
	tok := e.token(t, e.admin)

	rec, env := e.do(t, http.MethodGet, "/employers/export?city_id=3", tok, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var out struct {
		ID          string `json:"id"`
		DownloadURL string `json:"download_url"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &out))
	require.NotEmpty(t, out.ID)
	assert.Equal(t, "/api/v1/exports/"+out.ID+"/download", out.DownloadURL)

	rec, _ = e.do(t, http.MethodGet, "/exports/"+out.ID+"/download", tok, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "employers_")
	assert.Contains(t, rec.Body.String(), `"Ravi, Sons"`)

	// someone else's export
	rec, _ = e.do(t, http.MethodGet, "/exports/"+out.ID+"/download", e.token(t, e.viewer), "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestConcurrentScrollWritesKeepEveryEntry(t *testing.T) {
	e := newTestEnv(t)
	tok := e.token(t, e.admin)

	const n = 20
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			req := httptest.NewRequest(http.MethodPut, fmt.Sprintf("/ui-state/scroll/p%d", i), strings.NewReader(fmt.Sprintf(`{"position":%d}`, i)))
			req.Header.Set("Authorization", "Bearer "+tok)
			rec := httptest.NewRecorder()
			e.handler.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusOK, rec.Code)
		}(i)
	}
	wg.Wait()

	_, env := e.do(t, http.MethodGet, "/ui-state", tok, "")
	var snap struct {
		ScrollPositions map[string]int `json:"scroll_positions"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &snap))
	assert.Len(t, snap.ScrollPositions, n)
}
