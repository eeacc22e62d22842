package main

import (
	"database/sql"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/inkpress/blog-api/internal/config"
	"github.com/inkpress/blog-api/internal/db"
	"github.com/inkpress/blog-api/internal/handlers"
	"github.com/inkpress/blog-api/internal/middleware"
	"github.com/inkpress/blog-api/internal/models"
	"github.com/inkpress/blog-api/internal/repo"
	"github.com/inkpress/blog-api/internal/scheduler"
	"github.com/inkpress/blog-api/internal/token"
)

func main() {
	cfg := config.Load()

	setupLogger(cfg.LogFormat)

	if cfg.Env == "prod" && cfg.JWTSecret == "your_jwt_secret_here" {
		slog.Error("JWT_SECRET must be set in prod")
		os.Exit(1)
	}

	database, err := db.Connect(cfg.DBHost, cfg.DBPort, cfg.DBName, cfg.DBUser, cfg.DBPass,
		cfg.DBMaxOpenConns, cfg.DBMaxIdleConns)
	if err != nil {
		slog.Error("connect to database", "err", err)
		os.Exit(1)
	}
	slog.Info("connected to database", "host", cfg.DBHost, "name", cfg.DBName)

	if err := db.Run(cfg.DatabaseURL()); err != nil {
		slog.Error("run migrations", "err", err)
		os.Exit(1)
	}

	// Pending-posts reminder job
	cronRunner := scheduler.Run(repo.NewPostRepo(database), cfg.PendingReminderCron)
	defer cronRunner.Stop()

	r := newRouter(database, cfg)

	useTLS := cfg.TLSCertFile != "" && cfg.TLSKeyFile != ""
	addr := ":" + cfg.Port
	if useTLS {
		slog.Info("starting server with TLS", "addr", addr)
		err = http.ListenAndServeTLS(addr, cfg.TLSCertFile, cfg.TLSKeyFile, r)
	} else {
		slog.Info("starting server", "addr", addr)
		err = http.ListenAndServe(addr, r)
	}
	if err != nil {
		slog.Error("server stopped", "err", err)
		os.Exit(1)
	}
}

// newRouter wires repositories, handlers and middleware into the API router.
func newRouter(database *sql.DB, cfg config.Config) http.Handler {
	// Repositories
	userRepo := repo.NewUserRepo(database)
	postRepo := repo.NewPostRepo(database)
	feedbackRepo := repo.NewFeedbackRepo(database)
	modRepo := repo.NewModerationRepo(database)

	// Token service
	tokens := token.NewService([]byte(cfg.JWTSecret), time.Duration(cfg.JWTTTLHours)*time.Hour)

	// Handlers
	authH := &handlers.AuthHandler{Users: userRepo, Tokens: tokens}
	userH := &handlers.UserHandler{Users: userRepo}
	postH := &handlers.PostHandler{Posts: postRepo, ModLog: modRepo}
	feedbackH := &handlers.FeedbackHandler{Store: feedbackRepo}

	useTLS := cfg.TLSCertFile != "" && cfg.TLSKeyFile != ""

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(middleware.RequestLog)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Prometheus)
	r.Use(middleware.SecurityHeaders(useTLS))
	r.Use(middleware.CORS(cfg.CORSAllowedOrigins))
	r.Use(middleware.MaxBytes(middleware.DefaultMaxBodyBytes))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	authLimiter := middleware.AuthRateLimiter()

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(authLimiter.Middleware)
				r.Post("/register", authH.Register)
				r.Post("/login", authH.Login)
			})
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAuth(tokens, userRepo))
				r.Get("/me", authH.Me)
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireRole(models.RoleAdmin))
					r.Patch("/admin/users/{id}/role", userH.SetRole)
				})
			})
		})

		r.Route("/posts", func(r chi.Router) {
			// Public reads carry an optional identity so authors and admins
			// can fetch their pending posts by id.
			r.Group(func(r chi.Router) {
				r.Use(middleware.OptionalAuth(tokens, userRepo))
				r.Get("/", postH.ListPosts)
				r.Get("/{id}", postH.GetPost)
			})

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAuth(tokens, userRepo))
				r.Get("/my-posts", postH.MyPosts)
				r.Post("/", postH.CreatePost)
				r.Patch("/{id}", postH.UpdatePost)
				r.Delete("/{id}", postH.DeletePost)

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireRole(models.RoleAdmin))
					r.Get("/admin/pending", postH.PendingPosts)
					r.Get("/admin/log", postH.ListModerationLog)
					r.Patch("/admin/{id}/approve", postH.ApprovePost)
				})
			})
		})

		r.Post("/feedback", feedbackH.SubmitFeedback)
		r.Post("/subscribe", feedbackH.Subscribe)
	})

	return r
}

func setupLogger(format string) {
	var handler slog.Handler
	if format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, nil)
	} else {
		handler = slog.NewTextHandler(os.Stdout, nil)
	}
	slog.SetDefault(slog.New(handler))
}
