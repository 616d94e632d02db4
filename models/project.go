package models

// Project is the top-level tenant. Every permission and group belongs to
// exactly one project, and the project's API key addresses it on the
// unauthenticated export surface.
type Project struct {
	ID          uint    `json:"id" gorm:"primaryKey"`
	Name        string  `json:"name" gorm:"not null"`
	Description *string `json:"description"`
	APIKey      string  `json:"apiKey" gorm:"column:api_key;uniqueIndex;not null"`

	Permissions      []Permission      `json:"permissions,omitempty" gorm:"foreignKey:ProjectID"`
	PermissionGroups []PermissionGroup `json:"permissionGroups,omitempty" gorm:"foreignKey:ProjectID"`
}
