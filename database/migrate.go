package database

import (
	"fmt"
	"log"

	"gorm.io/gorm"

	"github.com/camden-git/permsysbackend/models"
)

// MigratePlaintextPasswords rewrites any user row still holding a plaintext
// credential with its bcrypt hash. The legacy deployment stored some
// passwords in the clear; hashing them once at startup keeps the login path
// bcrypt-only.
func MigratePlaintextPasswords(db *gorm.DB) error {
	var users []models.User
	if err := db.Find(&users).Error; err != nil {
		return fmt.Errorf("failed to list users for credential migration: %w", err)
	}

	migrated := 0
	for i := range users {
		u := &users[i]
		if u.HasHashedPassword() {
			continue
		}
		plaintext := u.PasswordHash
		if err := u.SetPassword(plaintext); err != nil {
			return fmt.Errorf("failed to hash credential for user %s: %w", u.Username, err)
		}
		if err := db.Model(&models.User{}).Where("id = ?", u.ID).
			Update("password_hash", u.PasswordHash).Error; err != nil {
			return fmt.Errorf("failed to store hashed credential for user %s: %w", u.Username, err)
		}
		migrated++
	}

	if migrated > 0 {
		log.Printf("Migrated %d plaintext credential(s) to bcrypt", migrated)
	}
	return nil
}
