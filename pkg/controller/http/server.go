package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/secmon-lab/sleuth/pkg/utils/logging"
	"github.com/secmon-lab/sleuth/pkg/utils/safe"
)

type Server struct {
	router              *chi.Mux
	slackWebhookHandler *SlackWebhookHandler
	slackCommandHandler *SlackCommandHandler
	slackSigningSecret  string
	metricsHandler      http.Handler
}

type Options func(*Server)

func WithSlackWebhook(handler *SlackWebhookHandler) Options {
	return func(s *Server) {
		s.slackWebhookHandler = handler
	}
}

func WithSlackCommand(handler *SlackCommandHandler) Options {
	return func(s *Server) {
		s.slackCommandHandler = handler
	}
}

// WithSlackSigningSecret enables signature verification of /hooks/slack/*.
func WithSlackSigningSecret(secret string) Options {
	return func(s *Server) {
		s.slackSigningSecret = secret
	}
}

// WithMetrics exposes handler at /metrics.
func WithMetrics(handler http.Handler) Options {
	return func(s *Server) {
		s.metricsHandler = handler
	}
}

func New(opts ...Options) *Server {
	r := chi.NewRouter()

	s := &Server{
		router: r,
	}
	for _, opt := range opts {
		opt(s)
	}

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(accessLogger)
	r.Use(middleware.Recoverer)

	r.Get("/health", healthHandler)

	if s.metricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", s.metricsHandler)
	}

	// Slack endpoints use signature verification instead of auth
	if s.slackWebhookHandler != nil || s.slackCommandHandler != nil {
		r.Route("/hooks/slack", func(r chi.Router) {
			if s.slackSigningSecret != "" {
				r.Use(SlackSignatureMiddleware(s.slackSigningSecret))
			} else {
				logging.Default().Warn("Slack signing secret is not set, request signatures are not verified")
			}

			if s.slackWebhookHandler != nil {
				r.Post("/event", s.slackWebhookHandler.ServeHTTP)
			}
			if s.slackCommandHandler != nil {
				r.Post("/command", s.slackCommandHandler.ServeHTTP)
			}
		})
	}

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// accessLogger is a middleware that logs HTTP requests
func accessLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			logging.Default().Info("access",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"remote", r.RemoteAddr,
				"request_id", middleware.GetReqID(r.Context()),
			)
		}()

		next.ServeHTTP(ww, r)
	})
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	safe.Write(r.Context(), w, []byte(`{"status":"ok"}`))
}
