// Package server wires the HTTP surface: public frontend endpoints, the
// authenticated admin API, and the health check.
package server

import (
	"context"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/featvid/featvid/internal/auth"
	"github.com/featvid/featvid/internal/database"
	"github.com/featvid/featvid/internal/floating"
	"github.com/featvid/featvid/internal/media"
	"github.com/featvid/featvid/internal/metasync"
	"github.com/featvid/featvid/internal/ratelimit"
	"github.com/featvid/featvid/internal/settings"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type Config struct {
	DB               database.DBTX
	Pinger           Pinger
	Storage          media.ObjectStorage
	GeoIP            floating.CountryResolver
	JWTSecret        string
	BaseURL          string
	S3PublicEndpoint string
	AspectRatio      floating.AspectRatioFunc
}

type Server struct {
	router chi.Router
	pinger Pinger

	authHandler     *auth.Handler
	mediaHandler    *media.Handler
	floatingHandler *floating.Handler
	eventHandler    *floating.EventHandler
	builderHandler  *metasync.Handler
}

func New(cfg Config) *Server {
	r := chi.NewRouter()
	r.Use(slogMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(securityHeaders(SecurityConfig{
		BaseURL:         cfg.BaseURL,
		StorageEndpoint: cfg.S3PublicEndpoint,
	}))

	s := &Server{router: r, pinger: cfg.Pinger}

	if cfg.DB != nil {
		if cfg.JWTSecret == "" {
			log.Fatal("JWT_SECRET is required; set the environment variable")
		}

		secureCookies := strings.HasPrefix(cfg.BaseURL, "https://")
		s.authHandler = auth.NewHandler(cfg.DB, cfg.JWTSecret, secureCookies)

		library := media.NewLibrary(cfg.DB, cfg.Storage)
		s.mediaHandler = media.NewHandler(library)

		store := settings.NewStore(cfg.DB)
		resolver := floating.NewResolver(cfg.DB, library, store, cfg.AspectRatio)
		s.floatingHandler = floating.NewHandler(cfg.DB, resolver, store)
		s.eventHandler = floating.NewEventHandler(cfg.DB, cfg.GeoIP)

		controller := metasync.NewController(cfg.DB, library)
		s.builderHandler = metasync.NewHandler(cfg.DB, controller)
	}

	s.routes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Get("/api/health", s.handleHealth)

	if s.authHandler == nil {
		return
	}

	authLimiter := ratelimit.NewLimiter(0.5, 5)
	s.router.Route("/api/auth", func(r chi.Router) {
		r.Use(authLimiter.Middleware)
		r.Post("/login", s.authHandler.Login)
		r.Post("/refresh", s.authHandler.Refresh)
		r.Post("/logout", s.authHandler.Logout)
	})

	// Public frontend surface: payload resolution and event capture.
	frontendLimiter := ratelimit.NewLimiter(5, 20)
	s.router.Route("/api/frontend", func(r chi.Router) {
		r.Use(frontendLimiter.Middleware)
		r.Get("/floating-video", s.floatingHandler.Payload)
		r.Post("/floating-videos/{id}/events", s.eventHandler.Record)
	})

	adminLimiter := ratelimit.NewLimiter(2, 10)
	s.router.Route("/api/floating-videos", func(r chi.Router) {
		r.Use(adminLimiter.Middleware)
		r.Use(s.authHandler.Middleware)
		r.Use(auth.RequireAdmin)
		r.Get("/", s.floatingHandler.List)
		r.Post("/", s.floatingHandler.Create)
		r.Get("/limits", s.floatingHandler.Limits)
		r.Get("/search-pages", s.floatingHandler.SearchPages)
		r.Get("/search-terms", s.floatingHandler.SearchTerms)
		r.Get("/pages/{id}", s.floatingHandler.GetPage)
		r.Get("/terms/{id}", s.floatingHandler.GetTerm)
		r.Get("/options", s.floatingHandler.GetOptions)
		r.Put("/options", s.floatingHandler.UpdateOptions)
		r.Get("/{id}", s.floatingHandler.Get)
		r.Put("/{id}", s.floatingHandler.Update)
		r.Delete("/{id}", s.floatingHandler.Delete)
	})

	s.router.Route("/api/media", func(r chi.Router) {
		r.Use(adminLimiter.Middleware)
		r.Use(s.authHandler.Middleware)
		r.Use(auth.RequireAdmin)
		r.Post("/", s.mediaHandler.Create)
		r.Get("/{id}", s.mediaHandler.Get)
		r.Delete("/{id}", s.mediaHandler.Delete)
	})

	s.router.Route("/api/posts/{id}", func(r chi.Router) {
		r.Use(adminLimiter.Middleware)
		r.Use(s.authHandler.Middleware)
		r.Use(auth.RequireAdmin)
		r.Get("/builder", s.builderHandler.GetBuilderData)
		r.Put("/builder", s.builderHandler.SaveBuilderData)
		r.Get("/featured-video", s.builderHandler.GetFeaturedVideo)
		r.Put("/featured-video", s.builderHandler.SaveFeaturedVideo)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if s.pinger != nil {
		if err := s.pinger.Ping(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"unhealthy","error":"database unreachable"}`))
			return
		}
	}
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
