package repository

import (
	"github.com/camden-git/permsysbackend/models"
	"gorm.io/gorm"
)

type GormUserRepository struct {
	db *gorm.DB
}

func NewGormUserRepository(db *gorm.DB) UserRepository {
	return &GormUserRepository{db: db}
}

func (r *GormUserRepository) Create(user *models.User) error {
	return translateError(r.db.Create(user).Error)
}

func (r *GormUserRepository) GetByID(id uint) (*models.User, error) {
	var user models.User
	err := r.db.Preload("PermissionGroup").First(&user, id).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &user, nil
}

func (r *GormUserRepository) GetByUsername(username string) (*models.User, error) {
	var user models.User
	err := r.db.Preload("PermissionGroup").Where("username = ?", username).First(&user).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &user, nil
}

func (r *GormUserRepository) ListAll() ([]models.User, error) {
	var users []models.User
	err := r.db.Order("id").Find(&users).Error
	return users, translateError(err)
}

// SetGroup reassigns (or, with nil, clears) a user's permission group.
func (r *GormUserRepository) SetGroup(userID uint, groupID *uint) error {
	res := r.db.Model(&models.User{}).Where("id = ?", userID).Update("permission_group_id", groupID)
	if res.Error != nil {
		return translateError(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *GormUserRepository) Delete(id uint) error {
	return translateError(r.db.Delete(&models.User{}, id).Error)
}

func (r *GormUserRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&models.User{}).Count(&count).Error
	return count, translateError(err)
}
