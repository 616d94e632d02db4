package models

// PermissionGroup is a named role within a project. Its name is unique per
// project.
type PermissionGroup struct {
	ID        uint    `json:"id" gorm:"primaryKey"`
	ProjectID uint    `json:"projectId" gorm:"index:idx_group_project_name,unique;not null"`
	Project   Project `json:"-" gorm:"foreignKey:ProjectID"`
	Name      string  `json:"name" gorm:"index:idx_group_project_name,unique;not null"`

	GroupPermissions []GroupPermission `json:"groupPermissions,omitempty" gorm:"foreignKey:GroupID"`
}

// TableName overrides the table name for PermissionGroup to be `permission_groups`
func (PermissionGroup) TableName() string {
	return "permission_groups"
}

// GroupPermission records, per group, whether a specific permission is turned
// on. It is a pure join entity keyed by (group_id, permission_id); a
// permission with no row is disabled for that group.
type GroupPermission struct {
	GroupID      uint            `json:"groupId" gorm:"primaryKey;autoIncrement:false"`
	Group        PermissionGroup `json:"-" gorm:"foreignKey:GroupID"`
	PermissionID uint            `json:"permissionId" gorm:"primaryKey;autoIncrement:false"`
	Permission   Permission      `json:"-" gorm:"foreignKey:PermissionID"`
	Enabled      bool            `json:"enabled" gorm:"not null;default:false"`
}

// TableName overrides the table name for GroupPermission to be `group_permissions`
func (GroupPermission) TableName() string {
	return "group_permissions"
}
