package repository

import (
	"github.com/camden-git/permsysbackend/models"
	"gorm.io/gorm"
)

type GormProjectRepository struct {
	db *gorm.DB
}

func NewGormProjectRepository(db *gorm.DB) ProjectRepository {
	return &GormProjectRepository{db: db}
}

func (r *GormProjectRepository) Create(project *models.Project) error {
	return translateError(r.db.Create(project).Error)
}

func (r *GormProjectRepository) GetByID(id uint) (*models.Project, error) {
	var project models.Project
	err := r.db.First(&project, id).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &project, nil
}

func (r *GormProjectRepository) GetByAPIKey(apiKey string) (*models.Project, error) {
	var project models.Project
	err := r.db.Where("api_key = ?", apiKey).First(&project).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &project, nil
}

// ListAll returns every project with its permissions and groups, and each
// group's explicit enablement rows, fully nested for the admin UI.
func (r *GormProjectRepository) ListAll() ([]models.Project, error) {
	var projects []models.Project
	err := r.db.
		Preload("Permissions", func(db *gorm.DB) *gorm.DB { return db.Order("permissions.id") }).
		Preload("PermissionGroups", func(db *gorm.DB) *gorm.DB { return db.Order("permission_groups.id") }).
		Preload("PermissionGroups.GroupPermissions").
		Order("projects.id").
		Find(&projects).Error
	return projects, translateError(err)
}

// Delete removes a project and everything under it. SQLite deployments do not
// always have native cascades available, so the children are deleted first,
// in dependency order, inside one transaction.
func (r *GormProjectRepository) Delete(id uint) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var permissionIDs []uint
		if err := tx.Model(&models.Permission{}).Where("project_id = ?", id).
			Pluck("id", &permissionIDs).Error; err != nil {
			return err
		}
		var groupIDs []uint
		if err := tx.Model(&models.PermissionGroup{}).Where("project_id = ?", id).
			Pluck("id", &groupIDs).Error; err != nil {
			return err
		}

		if len(groupIDs) > 0 {
			if err := tx.Where("group_id IN ?", groupIDs).Delete(&models.GroupPermission{}).Error; err != nil {
				return err
			}
			// detach users pointing at the doomed groups
			if err := tx.Model(&models.User{}).Where("permission_group_id IN ?", groupIDs).
				Update("permission_group_id", nil).Error; err != nil {
				return err
			}
		}
		if len(permissionIDs) > 0 {
			if err := tx.Where("permission_id IN ?", permissionIDs).Delete(&models.GroupPermission{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("project_id = ?", id).Delete(&models.Permission{}).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", id).Delete(&models.PermissionGroup{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Project{}, id).Error
	})
	return translateError(err)
}
