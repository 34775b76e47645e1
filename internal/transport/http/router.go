package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shubhamsinghsisodiya01/tacnique-quiz/internal/app"
	"github.com/shubhamsinghsisodiya01/tacnique-quiz/internal/auth"
)

// RouterOptions configures the HTTP surface.
type RouterOptions struct {
	// Limiter throttles the public quiz and submit endpoints; nil disables throttling.
	Limiter        Limiter
	AllowedOrigins []string
	Timeout        time.Duration
	// Admin verifies tokens for the authoring routes; nil refuses them all.
	Admin *auth.Service
	// TrustProxyHeaders takes the client address from X-Forwarded-For or X-Real-IP.
	// Enable only behind a proxy that overwrites those headers.
	TrustProxyHeaders bool
}

// Handler serves the quiz API.
type Handler struct {
	scoring   *app.ScoringService
	authoring *app.AuthoringService
}

func NewHandler(scoring *app.ScoringService, authoring *app.AuthoringService) *Handler {
	return &Handler{scoring: scoring, authoring: authoring}
}

// NewRouter wires the handler into a chi router. Paths accept an optional trailing slash.
func NewRouter(h *Handler, opts RouterOptions) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	if opts.TrustProxyHeaders {
		r.Use(middleware.RealIP)
	}
	r.Use(accessLog, middleware.Recoverer)
	r.Use(middleware.StripSlashes)
	if opts.Timeout > 0 {
		r.Use(middleware.Timeout(opts.Timeout))
	}
	if len(opts.AllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: opts.AllowedOrigins,
			AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
			MaxAge:         300,
		}))
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/quizzes", func(r chi.Router) {
		r.Get("/", h.listQuizzes)
		r.With(requireAdmin(opts.Admin)).Get("/{quizID}", h.getQuiz)
		r.Group(func(r chi.Router) {
			if opts.Limiter != nil {
				r.Use(throttle(opts.Limiter))
			}
			r.Get("/{quizID}/public", h.getPublicQuiz)
			r.Post("/{quizID}/submit", h.submit)
		})
	})

	r.Route("/admin", func(r chi.Router) {
		r.Use(requireAdmin(opts.Admin))
		r.Post("/quizzes", h.createQuiz)
		r.Delete("/quizzes/{quizID}", h.deleteQuiz)
		r.Post("/quizzes/{quizID}/questions", h.addQuestion)
		r.Put("/questions/{questionID}", h.updateQuestion)
		r.Delete("/questions/{questionID}", h.deleteQuestion)
		r.Post("/questions/{questionID}/choices", h.addChoice)
		r.Put("/choices/{choiceID}", h.updateChoice)
		r.Delete("/choices/{choiceID}", h.deleteChoice)
	})
	return r
}
