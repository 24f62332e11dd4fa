package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	v1 "github.com/madhava-poojari/jobs-admin-console/internal/api/v1"
	"github.com/madhava-poojari/jobs-admin-console/internal/config"
)

type Server struct {
	cfg  *config.Config
	deps v1.Deps
}

func NewServer(cfg *config.Config, deps v1.Deps) *Server {
	deps.Cfg = cfg
	return &Server{cfg: cfg, deps: deps}
}

// Handler is the root router: CORS for the console origins and the API
// under /api/v1.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token", v1.ConfirmTokenHeader},
		ExposedHeaders:   []string{"Link", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	api := v1.NewAPI(s.deps)
	r.Mount("/api/v1", api.Routes())
	return r
}

func (s *Server) NewHTTPServer() *http.Server {
	return &http.Server{
		Addr:         s.cfg.BindAddr,
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
	}
}
