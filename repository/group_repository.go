package repository

import (
	"github.com/camden-git/permsysbackend/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type GormGroupRepository struct {
	db *gorm.DB
}

func NewGormGroupRepository(db *gorm.DB) GroupRepository {
	return &GormGroupRepository{db: db}
}

func (r *GormGroupRepository) Create(group *models.PermissionGroup) error {
	return translateError(r.db.Create(group).Error)
}

func (r *GormGroupRepository) GetByID(id uint) (*models.PermissionGroup, error) {
	var group models.PermissionGroup
	err := r.db.First(&group, id).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &group, nil
}

func (r *GormGroupRepository) GetByProjectAndName(projectID uint, name string) (*models.PermissionGroup, error) {
	var group models.PermissionGroup
	err := r.db.Where("project_id = ? AND name = ?", projectID, name).First(&group).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &group, nil
}

func (r *GormGroupRepository) ListByProject(projectID uint) ([]models.PermissionGroup, error) {
	var groups []models.PermissionGroup
	err := r.db.Where("project_id = ?", projectID).Order("id").Find(&groups).Error
	return groups, translateError(err)
}

// Delete removes a group, its links, and any user references to it, children
// first inside one transaction.
func (r *GormGroupRepository) Delete(id uint) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("group_id = ?", id).Delete(&models.GroupPermission{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.User{}).Where("permission_group_id = ?", id).
			Update("permission_group_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&models.PermissionGroup{}, id).Error
	})
	return translateError(err)
}

// CreateGroupPermission inserts a link row and fails with ErrDuplicateKey if
// the (group, permission) pair already exists. The bulk importer relies on
// that to keep re-runs from re-enabling existing links.
func (r *GormGroupRepository) CreateGroupPermission(gp *models.GroupPermission) error {
	return translateError(r.db.Create(gp).Error)
}

// UpsertGroupPermission creates the link row or updates its enabled flag in
// place; the composite primary key guarantees a single row per pair.
func (r *GormGroupRepository) UpsertGroupPermission(gp *models.GroupPermission) error {
	err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "group_id"}, {Name: "permission_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{"enabled": gp.Enabled}),
	}).Create(gp).Error
	return translateError(err)
}

func (r *GormGroupRepository) GetGroupPermission(groupID, permissionID uint) (*models.GroupPermission, error) {
	var gp models.GroupPermission
	err := r.db.Where("group_id = ? AND permission_id = ?", groupID, permissionID).First(&gp).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &gp, nil
}

func (r *GormGroupRepository) ListGroupPermissions(groupID uint) ([]models.GroupPermission, error) {
	var links []models.GroupPermission
	err := r.db.Where("group_id = ?", groupID).Order("permission_id").Find(&links).Error
	return links, translateError(err)
}
