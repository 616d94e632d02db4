package main

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"

	"github.com/camden-git/permsysbackend/config"
	"github.com/camden-git/permsysbackend/database"
	"github.com/camden-git/permsysbackend/handlers"
	"github.com/camden-git/permsysbackend/repository"
	"github.com/camden-git/permsysbackend/services"
)

func main() {
	if err := godotenv.Load(); err != nil {
		logrus.WithError(err).Info("no .env file loaded")
	}
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.WithError(err).Fatal("failed to load configuration")
	}

	db, err := database.InitGormDB(cfg.DatabasePath)
	if err != nil {
		logrus.WithError(err).Fatal("failed to initialize database")
	}
	if err := database.AutoMigrateModels(db); err != nil {
		logrus.WithError(err).Fatal("failed to migrate database schema")
	}
	if err := database.MigratePlaintextPasswords(db); err != nil {
		logrus.WithError(err).Fatal("failed to migrate plaintext credentials")
	}
	if cfg.SeedOnStart {
		if err := database.Seed(db); err != nil {
			logrus.WithError(err).Fatal("failed to seed demo data")
		}
	}

	sqlDB, err := db.DB()
	if err != nil {
		logrus.WithError(err).Fatal("failed to get sql.DB from GORM")
	}
	defer sqlDB.Close()

	projectRepo := repository.NewGormProjectRepository(db)
	permissionRepo := repository.NewGormPermissionRepository(db)
	groupRepo := repository.NewGormGroupRepository(db)
	userRepo := repository.NewGormUserRepository(db)

	resolver := services.NewPermissionResolver(groupRepo, permissionRepo)
	importer := services.NewBulkImporter(permissionRepo, groupRepo)
	exportSvc := services.NewExportService(sqlDB)

	secret := []byte(cfg.JWTSecret)
	tokenTTL := time.Duration(cfg.TokenTTLHours) * time.Hour

	authHandler := handlers.NewAuthHandler(userRepo, resolver, secret, tokenTTL, cfg.SecureCookies)
	projectHandler := handlers.NewProjectHandler(projectRepo, importer)
	permissionHandler := handlers.NewPermissionHandler(permissionRepo)
	groupHandler := handlers.NewGroupHandler(groupRepo, permissionRepo, projectRepo)
	userHandler := handlers.NewUserHandler(userRepo, groupRepo)
	exportHandler := handlers.NewExportHandler(exportSvc)

	r := chi.NewRouter()

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	})

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(corsHandler.Handler)

	r.Route("/api", func(r chi.Router) {
		// surfaces outside the session gate
		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", authHandler.Login)
			r.Post("/logout", authHandler.Logout)
			r.Get("/me", authHandler.Me)
		})
		r.Post("/setup/first-admin", userHandler.CreateFirstAdmin)
		r.Route("/export", func(r chi.Router) {
			r.Get("/all", exportHandler.ExportAll)
			r.Get("/project/{apiKey}", exportHandler.ExportProject)
			r.Get("/project/{apiKey}/xlsx", exportHandler.ExportProjectWorkbook)
			r.Get("/project/{apiKey}/group/{groupName}", exportHandler.ExportGroup)
		})

		// everything below requires a valid session token
		r.Group(func(r chi.Router) {
			r.Use(handlers.AuthMiddleware(secret))

			r.Route("/projects", func(r chi.Router) {
				r.Get("/", projectHandler.ListProjects)
				r.Post("/", projectHandler.CreateProject)
				r.Route("/{projectId}", func(r chi.Router) {
					r.Delete("/", projectHandler.DeleteProject)
					r.Post("/bulk-import", projectHandler.BulkImport)
					r.Get("/bulk-import/template", projectHandler.BulkImportTemplate)
					r.Post("/bulk-import/spreadsheet", projectHandler.BulkImportSpreadsheet)
					r.Post("/groups", groupHandler.CreateGroup)
				})
			})

			r.Route("/permissions", func(r chi.Router) {
				r.Post("/", permissionHandler.CreatePermission)
				r.Put("/{id}", permissionHandler.UpdatePermission)
				r.Delete("/{id}", permissionHandler.DeletePermission)
			})

			r.Route("/groups", func(r chi.Router) {
				r.Post("/{groupId}/permissions", groupHandler.TogglePermission)
				r.Delete("/{groupId}", groupHandler.DeleteGroup)
			})

			r.Route("/users", func(r chi.Router) {
				r.Get("/", userHandler.ListUsers)
				r.Post("/", userHandler.CreateUser)
				r.Put("/{id}/group", userHandler.SetUserGroup)
				r.Delete("/{id}", userHandler.DeleteUser)
			})
		})
	})

	serverAddr := ":" + cfg.Port
	logrus.WithFields(logrus.Fields{
		"addr":     serverAddr,
		"database": cfg.DatabasePath,
	}).Info("server starting")

	server := &http.Server{
		Addr:         serverAddr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	logrus.Fatal(server.ListenAndServe())
}
