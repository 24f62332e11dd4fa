package v1

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/madhava-poojari/jobs-admin-console/internal/audit"
	"github.com/madhava-poojari/jobs-admin-console/internal/auth"
	"github.com/madhava-poojari/jobs-admin-console/internal/config"
	"github.com/madhava-poojari/jobs-admin-console/internal/console"
	"github.com/madhava-poojari/jobs-admin-console/internal/export"
	"github.com/madhava-poojari/jobs-admin-console/internal/logger"
	"github.com/madhava-poojari/jobs-admin-console/internal/permission"
	"github.com/madhava-poojari/jobs-admin-console/internal/service"
	"github.com/madhava-poojari/jobs-admin-console/internal/store"
	"github.com/madhava-poojari/jobs-admin-console/internal/translation"
)

// Deps is everything the HTTP layer talks to.
type Deps struct {
	Cfg        *config.Config
	Store      *store.Store
	Console    *console.Console
	Exporter   *export.Exporter
	Translator translation.Translator
	Audit      audit.Recorder
	Log        *logger.Logger
}

type API struct {
	deps   Deps
	router *chi.Mux
	log    *logger.Logger
}

func NewAPI(d Deps) *API {
	if d.Log == nil {
		d.Log = logger.Nop()
	}
	api := &API{deps: d, router: chi.NewRouter(), log: d.Log.Named("http")}
	api.router.Use(middleware.RequestID)
	api.router.Use(middleware.RealIP)
	api.router.Use(RequestLogger(api.log))
	api.router.Use(middleware.Recoverer)

	api.routes()
	return api
}

func (a *API) Routes() *chi.Mux {
	return a.router
}

func (a *API) routes() {
	osvc := service.NewOperatorService(a.deps.Store)

	authH := NewAuthHandler(a.deps.Cfg, osvc, a.deps.Store, a.deps.Console)
	resH := NewResourceHandler(a.deps.Console, a.log)
	exportH := NewExportHandler(a.deps.Exporter, a.deps.Store, a.deps.Audit)
	uiH := NewUIStateHandler(a.deps.Store, a.log)
	opH := NewOperatorHandler(osvc, a.deps.Audit)
	trH := NewTranslateHandler(a.deps.Translator, a.deps.Cfg.TranslateTarget)

	authMW := auth.AuthMiddleware(a.deps.Cfg, a.deps.Store)
	r := a.router

	r.Route("/auth", func(r chi.Router) {
		r.Options("/*", func(w http.ResponseWriter, r *http.Request) {})
		r.Post("/login", authH.Login)
		r.Post("/logout", authH.Logout)
		r.Post("/refresh", authH.Refresh)
		r.Post("/google", authH.GoogleSignIn)
	})

	r.Group(func(r chi.Router) {
		r.Use(authMW)
		r.Use(trackOperator)

		r.Get("/me", authH.Me)
		r.Post("/translate", trH.Translate)

		r.Route("/resources", func(r chi.Router) {
			r.Get("/", resH.ListResources)
			r.Delete("/confirmations/{token}", resH.CancelDelete)
			r.Route("/{resource}", func(r chi.Router) {
				r.Get("/", resH.List)
				r.Post("/", resH.Create)
				r.Post("/reorder", resH.Reorder)
				r.Get("/{id}", resH.Get)
				r.Put("/{id}", resH.Update)
				r.Delete("/{id}", resH.Delete)
				r.Patch("/{id}/activate", resH.Activate)
				r.Patch("/{id}/deactivate", resH.Deactivate)
			})
		})

		r.With(auth.RequirePermission(permission.EmployersExport)).Get("/employers/export", exportH.ExportEmployers)
		r.Route("/exports", func(r chi.Router) {
			r.Get("/", exportH.ListExports)
			r.Get("/{id}/download", exportH.Download)
		})

		r.Route("/ui-state", func(r chi.Router) {
			r.Get("/", uiH.Get)
			r.Put("/sidebar", uiH.SetSidebar)
			r.Put("/scroll/{id}", uiH.SetScroll)
			r.Put("/menu", uiH.SetMenu)
			r.Put("/active-page", uiH.SetActivePage)
			r.Put("/sidebar-scroll", uiH.SetSidebarScroll)
		})

		r.Route("/operators", func(r chi.Router) {
			r.Use(auth.RequirePermission(permission.OperatorsManage))
			r.Get("/", opH.List)
			r.Post("/", opH.Create)
			r.Put("/{id}", opH.Update)
		})
	})

	r.Route("/health", func(r chi.Router) {
		r.Options("/*", func(w http.ResponseWriter, r *http.Request) {})
		r.Get("/", HealthHandler(a.deps.Store))
	})
}
