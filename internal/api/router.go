package api

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/hugh/teamly/internal/api/handlers"
	"github.com/hugh/teamly/internal/api/middleware"
	"github.com/hugh/teamly/internal/auth"
	"github.com/hugh/teamly/internal/database/models"
	"github.com/hugh/teamly/internal/team"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Router struct {
	chi.Router
}

type RouterConfig struct {
	DB               *gorm.DB
	Redis            *redis.Client
	Logger           *slog.Logger
	AuthService      *auth.Service
	TeamService      *team.Service
	AccessExpirySecs int
	AllowedOrigins   []string // CORS allowed origins
	RateLimitReqs    int      // Rate limit requests per window
	RateLimitSecs    int      // Rate limit window in seconds
}

func NewRouter(cfg RouterConfig) *Router {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.Logging(cfg.Logger))

	// Rate limiting - applied globally to prevent abuse
	if cfg.RateLimitReqs > 0 {
		r.Use(middleware.RateLimit(cfg.RateLimitReqs, cfg.RateLimitSecs))
	}

	// CORS - restrict to configured origins, or allow localhost in development
	allowedOrigins := cfg.AllowedOrigins
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"http://localhost:3000", "http://localhost:8080"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(cfg.DB, cfg.Redis)
	authHandler := handlers.NewAuthHandler(cfg.AuthService, cfg.AccessExpirySecs)
	teamHandler := handlers.NewTeamHandler(cfg.TeamService)

	// Health endpoints (no auth required)
	r.Get("/health", healthHandler.Health)
	r.Get("/ready", healthHandler.Ready)

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		// Public auth endpoints
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)
		r.Post("/auth/refresh", authHandler.Refresh)
		r.Post("/auth/logout", authHandler.Logout)

		// Invitation acceptance is public: the token is the credential.
		r.Post("/team/accept-invitation/{token}", teamHandler.AcceptInvitation)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.AuthService))

			r.Get("/auth/me", authHandler.Me)

			r.Route("/team", func(r chi.Router) {
				r.Get("/members", teamHandler.ListMembers)
				r.Get("/roster", teamHandler.Roster)

				// Admin-only membership mutations
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireRole(models.RoleAdmin))
					r.Post("/invite", teamHandler.Invite)
					r.Get("/invitations", teamHandler.ListInvitations)
					r.Put("/members/{id}/role", teamHandler.UpdateRole)
					r.Delete("/members/{id}", teamHandler.RemoveMember)
				})
			})
		})
	})

	return &Router{r}
}
