package api

import (
	"net/http"
	"time"

	"miniblog/internal/api/handler"
	"miniblog/internal/api/middleware"
	"miniblog/internal/app/service"
	"miniblog/internal/common/security"
	"miniblog/internal/platform/config"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/jwtauth/v5"
)

func NewRouter(
	cfg *config.Config,
	tokens *security.TokenManager,
	authService *service.AuthService,
	postService *service.PostService,
) http.Handler {
	r := chi.NewRouter()

	// Base Middlewares
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(60 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.CORSAllowedOrigin},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(middleware.SecurityHeaders)

	// Parses the token from "Authorization: Bearer T" and puts it in context.
	// Enforcement happens in middleware.Authenticator on protected routes.
	r.Use(jwtauth.Verifier(tokens.JWTAuth()))

	// Public health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	r.Route("/api", func(api chi.Router) {
		authHandler := handler.NewAuthHandler(authService, cfg.Development())
		api.Route("/users", authHandler.RegisterRoutes)

		postHandler := handler.NewPostHandler(postService, authService, cfg.Development())
		api.Route("/posts", postHandler.RegisterRoutes)
	})

	return r
}
