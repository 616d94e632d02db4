package models

import (
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// User is an operator account. A user optionally belongs to one permission
// group; with no group they resolve to an empty permission set.
type User struct {
	ID                uint             `json:"id" gorm:"primaryKey"`
	Username          string           `json:"username" gorm:"uniqueIndex;not null"`
	PasswordHash      string           `json:"-" gorm:"not null"` // "-" means don't include in JSON responses
	PermissionGroupID *uint            `json:"permissionGroupId" gorm:"column:permission_group_id"`
	PermissionGroup   *PermissionGroup `json:"-" gorm:"foreignKey:PermissionGroupID"`
}

// SetPassword hashes the given password and sets it on the user model.
func (u *User) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hashedPassword)
	return nil
}

// CheckPassword verifies if the given password matches the user's hashed password.
func (u *User) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
	return err == nil
}

// HasHashedPassword reports whether the stored credential is a bcrypt hash.
// Rows imported from the legacy deployment may still hold plaintext until the
// startup migration rewrites them.
func (u *User) HasHashedPassword() bool {
	return strings.HasPrefix(u.PasswordHash, "$2a$") ||
		strings.HasPrefix(u.PasswordHash, "$2b$") ||
		strings.HasPrefix(u.PasswordHash, "$2y$")
}
