package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/camden-git/permsysbackend/database"
	"github.com/camden-git/permsysbackend/repository"
	"github.com/camden-git/permsysbackend/services"
)

var testSecret = []byte("test-secret")

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:?_fk=1"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	// a single connection keeps the in-memory database alive and shared
	sqlDB.SetMaxOpenConns(1)

	if err := database.AutoMigrateModels(db); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return db
}

// newTestApp wires the full API router over an in-memory database, mirroring
// the production route layout.
func newTestApp(t *testing.T, db *gorm.DB) *chi.Mux {
	t.Helper()

	sqlDB, err := db.DB()
	require.NoError(t, err)

	projectRepo := repository.NewGormProjectRepository(db)
	permissionRepo := repository.NewGormPermissionRepository(db)
	groupRepo := repository.NewGormGroupRepository(db)
	userRepo := repository.NewGormUserRepository(db)

	resolver := services.NewPermissionResolver(groupRepo, permissionRepo)
	importer := services.NewBulkImporter(permissionRepo, groupRepo)
	exportSvc := services.NewExportService(sqlDB)

	authHandler := NewAuthHandler(userRepo, resolver, testSecret, time.Hour, false)
	projectHandler := NewProjectHandler(projectRepo, importer)
	permissionHandler := NewPermissionHandler(permissionRepo)
	groupHandler := NewGroupHandler(groupRepo, permissionRepo, projectRepo)
	userHandler := NewUserHandler(userRepo, groupRepo)
	exportHandler := NewExportHandler(exportSvc)

	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
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

		r.Group(func(r chi.Router) {
			r.Use(AuthMiddleware(testSecret))

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
	return r
}

func newSeededApp(t *testing.T) (*chi.Mux, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)
	require.NoError(t, database.Seed(db))
	return newTestApp(t, db), db
}

func doRequest(t *testing.T, app http.Handler, method, path string, body interface{}, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}

	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out))
}

func login(t *testing.T, app http.Handler, username, password string) *http.Cookie {
	t.Helper()
	rec := doRequest(t, app, http.MethodPost, "/api/auth/login", map[string]string{
		"username": username,
		"password": password,
	})
	require.Equal(t, http.StatusOK, rec.Code, "login failed: %s", rec.Body.String())

	for _, c := range rec.Result().Cookies() {
		if c.Name == SessionCookieName {
			return c
		}
	}
	t.Fatal("login response did not set a session cookie")
	return nil
}

func apiError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	decodeBody(t, rec, &body)
	return body["error"]
}
