package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"

	"github.com/qalamlab/tabeer/internal/ai"
	api "github.com/qalamlab/tabeer/internal/api/http"
	"github.com/qalamlab/tabeer/internal/audit"
	auth "github.com/qalamlab/tabeer/internal/auth/middleware"
	"github.com/qalamlab/tabeer/internal/config"
	"github.com/qalamlab/tabeer/internal/db"
	"github.com/qalamlab/tabeer/internal/grading"
	"github.com/qalamlab/tabeer/internal/rbac"
	"github.com/qalamlab/tabeer/internal/submission"
)

func main() {
	_ = godotenv.Load()
	cfg := config.FromEnv()

	// --- DB ---
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	dbh, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		log.Fatalf("db open failed: %v", err)
	}
	if err := db.EnsureAdmin(ctx, dbh, cfg.AdminUser, cfg.AdminPassHash); err != nil {
		log.Fatalf("ensure admin: %v", err)
	}
	store := submission.NewSQLStore(dbh, cfg.DBDriver)
	events := audit.NewEventRepo(dbh)

	// --- Grading ---
	scorer := grading.NewHeuristicScorer(grading.WithJitter(cfg.ScoreJitter))
	var evaluator grading.Evaluator
	if cfg.AIAPIKey != "" {
		evaluator = ai.NewClient(ai.Config{
			APIKey:  cfg.AIAPIKey,
			BaseURL: cfg.AIBaseURL,
			Model:   cfg.AIModel,
		})
	} else {
		log.Printf("AI_API_KEY not set, analyses use the local heuristic")
	}
	svc := grading.NewService(evaluator, scorer)

	// --- Auth ---
	authSvc := auth.NewAuthService(cfg.AuthSecret)

	// --- Router ---
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(150 * time.Second)) // analyses can wait on the model
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Post("/auth/login", auth.LoginHandler(authSvc, dbh))
	r.Post("/auth/register", auth.RegisterHandler(authSvc, dbh))

	// Protected API (JWT → role in context → RBAC)
	r.Group(func(pr chi.Router) {
		pr.Use(auth.JWTMiddleware(authSvc))
		pr.Use(auth.AttachRoleFromDB(dbh))

		pr.Get("/topics", api.TopicsHandler())

		// Student flow
		pr.With(rbac.Require("submission:create")).
			Post("/submissions", api.CreateSubmissionHandler(store, svc, events))
		pr.With(rbac.RequireAny("submission:view-own", "submission:view-all")).
			Get("/submissions", api.ListSubmissionsHandler(store))
		pr.With(rbac.RequireAny("submission:view-own", "submission:view-all")).
			Get("/submissions/{submissionID}", api.GetSubmissionHandler(store))
		pr.With(rbac.Require("submission:reflect")).
			Post("/submissions/{submissionID}/reflection", api.SaveReflectionHandler(store))
		pr.With(rbac.Require("submission:rate")).
			Post("/submissions/{submissionID}/rating", api.RateSubmissionHandler(store))

		// Instructor flow
		pr.With(rbac.Require("submission:grade")).
			Post("/submissions/{submissionID}/grade", api.ApplyTeacherGradeHandler(store, events))
		pr.With(rbac.Require("submission:export")).
			Get("/export/submissions.csv", api.ExportSubmissionsCSVHandler(store))

		// Users (teacher/admin)
		pr.With(rbac.Require("users:bulk_upsert")).
			Post("/users/bulk", api.BulkUpsertUsersHandler(dbh))
		pr.With(rbac.Require("users:list")).
			Get("/users", api.ListUsersHandler(dbh))
		pr.With(rbac.Require("user:change_password")).
			Post("/users/change-password", api.ChangePasswordHandler(dbh))

		// Admin
		pr.With(rbac.Require("users:create")).
			Post("/users", api.CreateUserHandler(dbh))
		pr.With(rbac.Require("users:update")).
			Patch("/users/{userID}", api.UpdateUserHandler(dbh))
		pr.With(rbac.Require("users:delete")).
			Delete("/users/{userID}", api.DeleteUserHandler(dbh))
		pr.With(rbac.Require("admin:overview")).
			Get("/admin/overview", api.OverviewHandler(store))
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if err := dbh.PingContext(r.Context()); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(200)
	})

	log.Printf("listening on %s (db=%s)", cfg.HTTPAddr, cfg.DBDriver)
	log.Fatal(http.ListenAndServe(cfg.HTTPAddr, r))
}
