package database

import (
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/camden-git/permsysbackend/models"
)

const seedProjectName = "Operations Site"

// Seed populates a demo project with two permissions, a Basic and an Admin
// group, and two users (admin/password, user/password). It is idempotent: if
// the demo project already exists nothing is touched.
func Seed(db *gorm.DB) error {
	var existing models.Project
	err := db.Where("name = ?", seedProjectName).First(&existing).Error
	if err == nil {
		log.Printf("Seed project '%s' already exists, skipping seed", seedProjectName)
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("failed to check for existing seed project: %w", err)
	}

	return db.Transaction(func(tx *gorm.DB) error {
		desc := "Main operations dashboard"
		project := models.Project{
			Name:        seedProjectName,
			Description: &desc,
			APIKey:      uuid.NewString(),
		}
		if err := tx.Create(&project).Error; err != nil {
			return fmt.Errorf("failed to create seed project: %w", err)
		}

		notifDesc := "Access to notifications menu"
		emailDesc := "Ability to edit emails"
		permNotification := models.Permission{ProjectID: project.ID, Key: "menu.notification", Description: &notifDesc}
		permEmails := models.Permission{ProjectID: project.ID, Key: "edit.emails", Description: &emailDesc}
		if err := tx.Create(&permNotification).Error; err != nil {
			return fmt.Errorf("failed to create seed permission: %w", err)
		}
		if err := tx.Create(&permEmails).Error; err != nil {
			return fmt.Errorf("failed to create seed permission: %w", err)
		}

		groupBasic := models.PermissionGroup{ProjectID: project.ID, Name: "Basic"}
		groupAdmin := models.PermissionGroup{ProjectID: project.ID, Name: "Admin"}
		if err := tx.Create(&groupBasic).Error; err != nil {
			return fmt.Errorf("failed to create seed group: %w", err)
		}
		if err := tx.Create(&groupAdmin).Error; err != nil {
			return fmt.Errorf("failed to create seed group: %w", err)
		}

		links := []models.GroupPermission{
			{GroupID: groupBasic.ID, PermissionID: permNotification.ID, Enabled: true},
			{GroupID: groupBasic.ID, PermissionID: permEmails.ID, Enabled: false},
			{GroupID: groupAdmin.ID, PermissionID: permNotification.ID, Enabled: true},
			{GroupID: groupAdmin.ID, PermissionID: permEmails.ID, Enabled: true},
		}
		if err := tx.Create(&links).Error; err != nil {
			return fmt.Errorf("failed to create seed group permissions: %w", err)
		}

		admin := models.User{Username: "admin", PermissionGroupID: &groupAdmin.ID}
		if err := admin.SetPassword("password"); err != nil {
			return fmt.Errorf("failed to hash seed password: %w", err)
		}
		basic := models.User{Username: "user", PermissionGroupID: &groupBasic.ID}
		if err := basic.SetPassword("password"); err != nil {
			return fmt.Errorf("failed to hash seed password: %w", err)
		}
		if err := tx.Create(&admin).Error; err != nil {
			return fmt.Errorf("failed to create seed user: %w", err)
		}
		if err := tx.Create(&basic).Error; err != nil {
			return fmt.Errorf("failed to create seed user: %w", err)
		}

		log.Printf("Seeded project '%s' (api key %s)", project.Name, project.APIKey)
		return nil
	})
}
