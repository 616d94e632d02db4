package database

import (
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"
)

// read-side queries for the export projector. These run against the pooled
// *sql.DB rather than through GORM: the export surface is hot, unauthenticated,
// and only ever needs flat rows.

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Question)

type ProjectRow struct {
	ID          uint
	Name        string
	Description *string
	APIKey      string
}

type PermissionRow struct {
	ID          uint
	Key         string
	Description *string
}

type GroupRow struct {
	ID   uint
	Name string
}

type GroupPermissionRow struct {
	GroupID      uint
	PermissionID uint
	Enabled      bool
}

// ListProjects returns all projects ordered by id.
func ListProjects(db *sql.DB) ([]ProjectRow, error) {
	sqlStr, args, err := psql.Select("id", "name", "description", "api_key").
		From("projects").
		OrderBy("id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build SQL query for ListProjects: %w", err)
	}

	rows, err := db.Query(sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query projects: %w", err)
	}
	defer rows.Close()

	var projects []ProjectRow
	for rows.Next() {
		var p ProjectRow
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.APIKey); err != nil {
			return nil, fmt.Errorf("failed to scan project row: %w", err)
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

// GetProjectByAPIKey returns the project addressed by the given API key, or
// sql.ErrNoRows if the key does not resolve.
func GetProjectByAPIKey(db *sql.DB, apiKey string) (*ProjectRow, error) {
	sqlStr, args, err := psql.Select("id", "name", "description", "api_key").
		From("projects").
		Where(sq.Eq{"api_key": apiKey}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build SQL query for GetProjectByAPIKey: %w", err)
	}

	var p ProjectRow
	err = db.QueryRow(sqlStr, args...).Scan(&p.ID, &p.Name, &p.Description, &p.APIKey)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("failed to query project by api key: %w", err)
	}
	return &p, nil
}

// ListProjectPermissions returns a project's permissions in creation order.
func ListProjectPermissions(db *sql.DB, projectID uint) ([]PermissionRow, error) {
	sqlStr, args, err := psql.Select("id", "key", "description").
		From("permissions").
		Where(sq.Eq{"project_id": projectID}).
		OrderBy("id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build SQL query for ListProjectPermissions: %w", err)
	}

	rows, err := db.Query(sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query permissions for project %d: %w", projectID, err)
	}
	defer rows.Close()

	var perms []PermissionRow
	for rows.Next() {
		var p PermissionRow
		if err := rows.Scan(&p.ID, &p.Key, &p.Description); err != nil {
			return nil, fmt.Errorf("failed to scan permission row: %w", err)
		}
		perms = append(perms, p)
	}
	return perms, rows.Err()
}

// ListProjectGroups returns a project's permission groups in creation order.
func ListProjectGroups(db *sql.DB, projectID uint) ([]GroupRow, error) {
	sqlStr, args, err := psql.Select("id", "name").
		From("permission_groups").
		Where(sq.Eq{"project_id": projectID}).
		OrderBy("id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build SQL query for ListProjectGroups: %w", err)
	}

	rows, err := db.Query(sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query groups for project %d: %w", projectID, err)
	}
	defer rows.Close()

	var groups []GroupRow
	for rows.Next() {
		var g GroupRow
		if err := rows.Scan(&g.ID, &g.Name); err != nil {
			return nil, fmt.Errorf("failed to scan group row: %w", err)
		}
		groups = append(groups, g)
	}
	return groups, rows.Err()
}

// GetGroupByName resolves a group by name within a project, or sql.ErrNoRows.
func GetGroupByName(db *sql.DB, projectID uint, name string) (*GroupRow, error) {
	sqlStr, args, err := psql.Select("id", "name").
		From("permission_groups").
		Where(sq.Eq{"project_id": projectID, "name": name}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build SQL query for GetGroupByName: %w", err)
	}

	var g GroupRow
	err = db.QueryRow(sqlStr, args...).Scan(&g.ID, &g.Name)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("failed to query group %q for project %d: %w", name, projectID, err)
	}
	return &g, nil
}

// ListGroupFlags returns the explicit enablement rows for the given groups.
// Absent pairs mean disabled; the projector fills those in.
func ListGroupFlags(db *sql.DB, groupIDs []uint) ([]GroupPermissionRow, error) {
	if len(groupIDs) == 0 {
		return nil, nil
	}

	sqlStr, args, err := psql.Select("group_id", "permission_id", "enabled").
		From("group_permissions").
		Where(sq.Eq{"group_id": groupIDs}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build SQL query for ListGroupFlags: %w", err)
	}

	rows, err := db.Query(sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query group permissions: %w", err)
	}
	defer rows.Close()

	var flags []GroupPermissionRow
	for rows.Next() {
		var f GroupPermissionRow
		if err := rows.Scan(&f.GroupID, &f.PermissionID, &f.Enabled); err != nil {
			return nil, fmt.Errorf("failed to scan group permission row: %w", err)
		}
		flags = append(flags, f)
	}
	return flags, rows.Err()
}
