package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	api "github.com/mind-engage/scorminspect/internal/api/http"
	"github.com/mind-engage/scorminspect/internal/auth"
	"github.com/mind-engage/scorminspect/internal/config"
	"github.com/mind-engage/scorminspect/internal/db"
	"github.com/mind-engage/scorminspect/internal/pkgstore"
	"github.com/mind-engage/scorminspect/internal/storage"
)

func main() {
	cfg := config.FromEnv()
	maxUpload := cfg.MaxUploadMB << 20

	// --- Store ---
	var store pkgstore.Store
	if cfg.DBDriver == "memory" {
		store = pkgstore.NewMemoryStore()
	} else {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		dbh, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
		if err != nil {
			log.Fatalf("db open failed: %v", err)
		}
		store = pkgstore.NewSQLStore(dbh, cfg.DBDriver)
	}

	bs, err := storage.NewFSStore(cfg.BlobBasePath)
	if err != nil {
		log.Fatalf("blob store: %v", err)
	}

	authSvc := auth.NewAuthService(cfg.AuthHMACSecret, cfg.AdminUser, cfg.AdminPassHash)

	// --- Router ---
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins(),
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if cfg.EnableLocalAuth {
		r.Post("/auth/login", auth.LoginHandler(authSvc))
	}

	r.Group(func(pr chi.Router) {
		pr.Use(auth.JWTMiddleware(authSvc))

		pr.With(auth.RequireRole("admin", "analyst")).
			Post("/packages", api.UploadPackageHandler(store, bs, maxUpload))
		pr.With(auth.RequireRole("admin", "analyst")).
			Get("/packages", api.ListPackagesHandler(store))
		pr.With(auth.RequireRole("admin", "analyst")).
			Get("/packages/{id}", api.GetPackageHandler(store))
		pr.With(auth.RequireRole("admin", "analyst")).
			Post("/packages/{id}/validate", api.ValidateStoredPackageHandler(store, bs))
		pr.With(auth.RequireRole("admin", "analyst")).
			Get("/packages/{id}/reports", api.ListRepairReportsHandler(store))

		pr.With(auth.RequireRole("admin", "analyst")).
			Post("/packages/validate", api.ValidatePackageHandler(maxUpload))
		// writing repaired archives back out is admin-only
		pr.With(auth.RequireRole("admin")).
			Post("/packages/validate/repair", api.RepairPackageHandler(maxUpload))
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })

	log.Printf("listening on %s (mode=%s, db=%s)", cfg.HTTPAddr, cfg.Mode, cfg.DBDriver)
	log.Fatal(http.ListenAndServe(cfg.HTTPAddr, r))
}
