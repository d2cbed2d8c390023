package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"revisit-backend/internal/handlers"
	"revisit-backend/internal/middleware"
)

func New(
	jwtAuth *middleware.JWTAuth,
	authHandler *handlers.AuthHandler,
	problemHandler *handlers.ProblemHandler,
	settingsHandler *handlers.SettingsHandler,
	frontendURL string,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.CORS(frontendURL))

	// Auth rate limiter (10 req/min per IP)
	authLimiter := middleware.NewRateLimiter(10, time.Minute)

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/v1", func(r chi.Router) {

		// ──── Auth Routes (public) ────
		r.Route("/auth", func(r chi.Router) {
			r.Use(authLimiter.Middleware)
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
			r.Post("/refresh", authHandler.Refresh)

			// Logout requires auth
			r.Group(func(r chi.Router) {
				r.Use(jwtAuth.Middleware)
				r.Post("/logout", authHandler.Logout)
			})
		})

		// ──── Problem Routes ────
		r.Route("/problems", func(r chi.Router) {
			r.Use(jwtAuth.Middleware)
			r.Get("/", problemHandler.List)
			r.Post("/", problemHandler.Create)
			r.Get("/today", problemHandler.Today)
			r.Get("/weights", problemHandler.Weights)
			r.Get("/{id}", problemHandler.Get)
			r.Put("/{id}", problemHandler.Update)
			r.Delete("/{id}", problemHandler.Delete)
			r.Post("/{id}/revisit", problemHandler.Revisit)
			r.Post("/{id}/retire", problemHandler.Retire)
		})

		// ──── Settings Routes ────
		r.Route("/settings", func(r chi.Router) {
			r.Use(jwtAuth.Middleware)
			r.Get("/", settingsHandler.Get)
			r.Put("/", settingsHandler.Update)
		})
	})

	return r
}
