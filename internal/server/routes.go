package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	"github.com/lawnchairsociety/shipyard/internal/logger"
)

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(s.corsMiddleware())
	r.Use(requestLogger)

	r.Route("/api", func(r chi.Router) {
		r.Use(s.rateLimiter.Middleware)

		r.Get("/health", s.handleHealth)
		r.Get("/random", s.handleRandom)
		r.Get("/history", s.handleHistory)

		r.Get("/ships", s.handleCatalog)
		r.Get("/ships/{seed}", s.handleShip)
		r.Get("/ships/{seed}/{format}", s.handleExport)
	})

	r.Get("/ws", s.handleWebSocketUpgrade)

	return r
}

// corsMiddleware applies the same origin policy as WebSocket upgrades.
func (s *Server) corsMiddleware() func(http.Handler) http.Handler {
	c := cors.New(cors.Options{
		AllowOriginRequestFunc: func(r *http.Request, origin string) bool {
			return s.cfg.Server.IsOriginAllowed(origin, r.Host)
		},
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		ExposedHeaders: []string{"X-Ship-Seed", "X-Ship-Fingerprint"},
		MaxAge:         300,
	})
	return c.Handler
}

func requestLogger(next http.Handler) http.Handler {
	log := logger.With("http")
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		log.Debug("Request served",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start))
	})
}
