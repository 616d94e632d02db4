package repository

import (
	"github.com/camden-git/permsysbackend/models"
)

// ProjectRepository defines the methods for project data operations
type ProjectRepository interface {
	Create(project *models.Project) error
	GetByID(id uint) (*models.Project, error)
	GetByAPIKey(apiKey string) (*models.Project, error)
	ListAll() ([]models.Project, error)
	Delete(id uint) error
}

// PermissionRepository defines the methods for permission data operations
type PermissionRepository interface {
	Create(permission *models.Permission) error
	GetByID(id uint) (*models.Permission, error)
	GetByProjectAndKey(projectID uint, key string) (*models.Permission, error)
	ListByProject(projectID uint) ([]models.Permission, error)
	Update(permission *models.Permission) error
	Delete(id uint) error
}

// GroupRepository defines the methods for permission group and
// group-permission link data operations
type GroupRepository interface {
	Create(group *models.PermissionGroup) error
	GetByID(id uint) (*models.PermissionGroup, error)
	GetByProjectAndName(projectID uint, name string) (*models.PermissionGroup, error)
	ListByProject(projectID uint) ([]models.PermissionGroup, error)
	Delete(id uint) error

	// group-permission link management
	CreateGroupPermission(gp *models.GroupPermission) error
	UpsertGroupPermission(gp *models.GroupPermission) error
	GetGroupPermission(groupID, permissionID uint) (*models.GroupPermission, error)
	ListGroupPermissions(groupID uint) ([]models.GroupPermission, error)
}

// UserRepository defines the methods for user data operations
type UserRepository interface {
	Create(user *models.User) error
	GetByID(id uint) (*models.User, error)
	GetByUsername(username string) (*models.User, error)
	ListAll() ([]models.User, error)
	SetGroup(userID uint, groupID *uint) error
	Delete(id uint) error
	Count() (int64, error)
}
