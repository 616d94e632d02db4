package models

// Permission is a named capability flag scoped to a project. The
// (project_id, key) pair is unique; creating a duplicate is rejected, never
// overwritten.
type Permission struct {
	ID          uint    `json:"id" gorm:"primaryKey"`
	ProjectID   uint    `json:"projectId" gorm:"index:idx_permission_project_key,unique;not null"`
	Project     Project `json:"-" gorm:"foreignKey:ProjectID"`
	Key         string  `json:"key" gorm:"index:idx_permission_project_key,unique;not null"`
	Description *string `json:"description"`
}
