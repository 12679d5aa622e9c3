// Package server assembles the HTTP API from its feature packages.
package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"tdc-backend/internal/accounts"
	"tdc-backend/internal/auth"
	"tdc-backend/internal/blogposts"
	"tdc-backend/internal/cache"
	"tdc-backend/internal/courses"
	"tdc-backend/internal/media"
	"tdc-backend/internal/middleware"
	"tdc-backend/internal/upload"
	"tdc-backend/internal/validation"
)

type Deps struct {
	Courses   courses.Repository
	BlogPosts blogposts.Repository
	Users     accounts.Repository
	Media     media.Store
	Cache     cache.Cache
	Manager   *auth.Manager
	Log       *slog.Logger

	CacheTTL     time.Duration
	Location     *time.Location
	Origins      []string
	UploadPolicy upload.Policy
	// UploadDir is served under /uploads/ when set.
	UploadDir string

	LoginLimiter  *middleware.RateLimiter
	UploadLimiter *middleware.RateLimiter
	Registry      *prometheus.Registry
	// RequestTimeout bounds every request; zero means 30s.
	RequestTimeout time.Duration
}

type Server struct {
	Accounts *accounts.Service
	Router   http.Handler
}

func New(d Deps) *Server {
	if d.Cache == nil {
		d.Cache = cache.NewNoop()
	}
	if d.Registry == nil {
		d.Registry = prometheus.NewRegistry()
	}
	if d.RequestTimeout <= 0 {
		d.RequestTimeout = 30 * time.Second
	}
	val := validation.New()

	accountsService := accounts.NewService(d.Users, d.Manager)
	accountsHandler := accounts.NewHandler(accountsService, val, d.Log)
	coursesHandler := courses.NewHandler(courses.NewService(d.Courses, d.Location), val, d.Cache, d.CacheTTL, d.Log)
	postsHandler := blogposts.NewHandler(blogposts.NewService(d.BlogPosts, d.Location), val, d.Cache, d.CacheTTL, d.Log)
	mediaHandler := media.NewHandler(media.NewService(d.Media, d.UploadPolicy), d.Log)

	metrics := middleware.NewMetrics(d.Registry)

	r := chi.NewRouter()
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Recoverer)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(d.Log))
	r.Use(middleware.CORS(d.Origins))
	r.Use(chiMiddleware.Timeout(d.RequestTimeout))
	r.Use(metrics.Middleware)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	r.Handle("/metrics", promhttp.HandlerFor(d.Registry, promhttp.HandlerOpts{}))
	if d.UploadDir != "" {
		r.Handle("/uploads/*", http.StripPrefix("/uploads/", http.FileServer(http.Dir(d.UploadDir))))
	}

	admin := middleware.AdminAuth(d.Manager)
	r.Route("/api", func(api chi.Router) {
		accountsHandler.Routes(api, admin, d.LoginLimiter)
		coursesHandler.Routes(api, admin)
		postsHandler.Routes(api, admin)
		if d.Media != nil {
			mediaHandler.Routes(api, admin, d.UploadLimiter)
		}
	})

	return &Server{Accounts: accountsService, Router: r}
}
