// Package api exposes the analysis service, report rendering and the
// practice simulator over HTTP.
package api

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/MikeSquared-Agency/oars/internal/analysis"
	"github.com/MikeSquared-Agency/oars/internal/simulator"
	"github.com/MikeSquared-Agency/oars/internal/store"
)

// ReportStore looks up finished analyses by id. The Redis cache satisfies it.
type ReportStore interface {
	Get(ctx context.Context, id string) (*analysis.Result, error)
}

// ScoreHistory lists recent scores. The Postgres archive satisfies it.
type ScoreHistory interface {
	RecentScores(ctx context.Context, limit int) ([]store.ScoreRow, error)
}

// Deps are the collaborators behind the routes. Simulator, Reports and
// Scores are optional; their routes answer 503 when nil.
type Deps struct {
	Analysis    *analysis.Service
	Simulator   *simulator.Simulator
	Reports     ReportStore
	Scores      ScoreHistory
	APIToken    string
	CORSOrigins []string
	Logger      *slog.Logger
}

type Server struct {
	router     *chi.Mux
	port       int
	httpServer *http.Server

	analysis  *analysis.Service
	simulator *simulator.Simulator
	reports   ReportStore
	scores    ScoreHistory
	logger    *slog.Logger
}

func NewServer(port int, deps Deps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	origins := deps.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	s := &Server{
		router:    router,
		port:      port,
		analysis:  deps.Analysis,
		simulator: deps.Simulator,
		reports:   deps.Reports,
		scores:    deps.Scores,
		logger:    logger,
	}

	router.Get("/health", s.health)

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(BearerAuthMiddleware(deps.APIToken))
		r.Get("/oars/status", s.status)

		r.Group(func(r chi.Router) {
			r.Use(noStore)
			r.Post("/analyze", s.analyze)
			r.Post("/report", s.renderReport)
			r.Get("/report/{id}", s.cachedReport)
		})
		r.Get("/scores", s.recentScores)
		r.Post("/reply", s.reply)
	})

	router.With(BearerAuthMiddleware(deps.APIToken)).Get("/ws/practice", s.practice)

	return s
}

func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.port)
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	s.logger.Info("API server starting", "addr", addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

// BearerAuthMiddleware requires "Authorization: Bearer <token>" on every
// request. Browsers cannot set headers on websocket upgrades, so a token
// query parameter is accepted too. An empty token disables the check.
func BearerAuthMiddleware(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if token == "" {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
			if got == "" {
				got = r.URL.Query().Get("token")
			}
			if subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
				writeError(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func noStore(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-store")
		next.ServeHTTP(w, r)
	})
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"agent":     "oars",
		"status":    "ok",
		"llm":       s.analysis != nil && s.analysis.LLMEnabled(),
		"simulator": s.simulator != nil,
		"reports":   s.reports != nil,
		"history":   s.scores != nil,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
