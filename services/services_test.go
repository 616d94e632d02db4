package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/camden-git/permsysbackend/database"
	"github.com/camden-git/permsysbackend/models"
	"github.com/camden-git/permsysbackend/repository"
)

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

type testRepos struct {
	projects    repository.ProjectRepository
	permissions repository.PermissionRepository
	groups      repository.GroupRepository
	users       repository.UserRepository
}

func newTestRepos(db *gorm.DB) testRepos {
	return testRepos{
		projects:    repository.NewGormProjectRepository(db),
		permissions: repository.NewGormPermissionRepository(db),
		groups:      repository.NewGormGroupRepository(db),
		users:       repository.NewGormUserRepository(db),
	}
}

func createTestProject(t *testing.T, repos testRepos, name string) *models.Project {
	t.Helper()
	project := &models.Project{Name: name, APIKey: uuid.NewString()}
	require.NoError(t, repos.projects.Create(project))
	return project
}

func createTestPermission(t *testing.T, repos testRepos, projectID uint, key string) *models.Permission {
	t.Helper()
	perm := &models.Permission{ProjectID: projectID, Key: key}
	require.NoError(t, repos.permissions.Create(perm))
	return perm
}

func createTestGroup(t *testing.T, repos testRepos, projectID uint, name string) *models.PermissionGroup {
	t.Helper()
	group := &models.PermissionGroup{ProjectID: projectID, Name: name}
	require.NoError(t, repos.groups.Create(group))
	return group
}

func linkTestPermission(t *testing.T, repos testRepos, groupID, permissionID uint, enabled bool) {
	t.Helper()
	require.NoError(t, repos.groups.CreateGroupPermission(&models.GroupPermission{
		GroupID: groupID, PermissionID: permissionID, Enabled: enabled,
	}))
}
