package repository

import (
	"github.com/camden-git/permsysbackend/models"
	"gorm.io/gorm"
)

type GormPermissionRepository struct {
	db *gorm.DB
}

func NewGormPermissionRepository(db *gorm.DB) PermissionRepository {
	return &GormPermissionRepository{db: db}
}

func (r *GormPermissionRepository) Create(permission *models.Permission) error {
	return translateError(r.db.Create(permission).Error)
}

func (r *GormPermissionRepository) GetByID(id uint) (*models.Permission, error) {
	var permission models.Permission
	err := r.db.First(&permission, id).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &permission, nil
}

func (r *GormPermissionRepository) GetByProjectAndKey(projectID uint, key string) (*models.Permission, error) {
	var permission models.Permission
	err := r.db.Where("project_id = ? AND key = ?", projectID, key).First(&permission).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &permission, nil
}

func (r *GormPermissionRepository) ListByProject(projectID uint) ([]models.Permission, error) {
	var permissions []models.Permission
	err := r.db.Where("project_id = ?", projectID).Order("id").Find(&permissions).Error
	return permissions, translateError(err)
}

func (r *GormPermissionRepository) Update(permission *models.Permission) error {
	return translateError(r.db.Save(permission).Error)
}

// Delete removes a permission and its group links, children first.
func (r *GormPermissionRepository) Delete(id uint) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("permission_id = ?", id).Delete(&models.GroupPermission{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Permission{}, id).Error
	})
	return translateError(err)
}
