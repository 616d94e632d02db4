package services

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/camden-git/permsysbackend/database"
)

var (
	ErrProjectNotFound = errors.New("project not found")
	ErrGroupNotFound   = errors.New("group not found")
)

// ExportedPermission is one permission's state within an exported group.
type ExportedPermission struct {
	Key         string  `json:"key"`
	Description *string `json:"description,omitempty"`
	Enabled     bool    `json:"enabled"`
}

// ExportedGroup carries a group's state for every permission in its project;
// permissions with no explicit link row export as enabled=false.
type ExportedGroup struct {
	ID          uint                 `json:"id"`
	Name        string               `json:"name"`
	Permissions []ExportedPermission `json:"permissions"`
}

// ExportedProject is the denormalized external view of one project.
type ExportedProject struct {
	ID               uint            `json:"id"`
	Name             string          `json:"name"`
	Description      *string         `json:"description"`
	APIKey           string          `json:"apiKey"`
	PermissionGroups []ExportedGroup `json:"permissionGroups"`
}

// ExportService flattens the project/group/permission graph for external
// consumers. It reads through the squirrel-built query layer on the pooled
// *sql.DB; everything here is read-only.
type ExportService struct {
	db *sql.DB
}

func NewExportService(db *sql.DB) *ExportService {
	return &ExportService{db: db}
}

// All returns the denormalized view of every project.
func (s *ExportService) All() ([]ExportedProject, error) {
	projects, err := database.ListProjects(s.db)
	if err != nil {
		return nil, err
	}

	out := make([]ExportedProject, 0, len(projects))
	for _, p := range projects {
		exported, err := s.projectView(p)
		if err != nil {
			return nil, err
		}
		out = append(out, *exported)
	}
	return out, nil
}

// Project returns the denormalized view of the project addressed by apiKey.
func (s *ExportService) Project(apiKey string) (*ExportedProject, error) {
	p, err := database.GetProjectByAPIKey(s.db, apiKey)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProjectNotFound
		}
		return nil, err
	}
	return s.projectView(*p)
}

// GroupFlags returns one group's flat key→enabled mapping over every
// permission of its project.
func (s *ExportService) GroupFlags(apiKey, groupName string) (map[string]bool, error) {
	p, err := database.GetProjectByAPIKey(s.db, apiKey)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProjectNotFound
		}
		return nil, err
	}

	group, err := database.GetGroupByName(s.db, p.ID, groupName)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrGroupNotFound
		}
		return nil, err
	}

	permissions, err := database.ListProjectPermissions(s.db, p.ID)
	if err != nil {
		return nil, err
	}
	flags, err := database.ListGroupFlags(s.db, []uint{group.ID})
	if err != nil {
		return nil, err
	}

	explicit := make(map[uint]bool, len(flags))
	for _, f := range flags {
		explicit[f.PermissionID] = f.Enabled
	}

	result := make(map[string]bool, len(permissions))
	for _, perm := range permissions {
		result[perm.Key] = explicit[perm.ID]
	}
	return result, nil
}

func (s *ExportService) projectView(p database.ProjectRow) (*ExportedProject, error) {
	permissions, err := database.ListProjectPermissions(s.db, p.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load permissions for project %d: %w", p.ID, err)
	}
	groups, err := database.ListProjectGroups(s.db, p.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load groups for project %d: %w", p.ID, err)
	}

	groupIDs := make([]uint, 0, len(groups))
	for _, g := range groups {
		groupIDs = append(groupIDs, g.ID)
	}
	flags, err := database.ListGroupFlags(s.db, groupIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load group permissions for project %d: %w", p.ID, err)
	}

	// (groupID, permissionID) → enabled; pairs with no row default to false
	explicit := make(map[[2]uint]bool, len(flags))
	for _, f := range flags {
		explicit[[2]uint{f.GroupID, f.PermissionID}] = f.Enabled
	}

	exportedGroups := make([]ExportedGroup, 0, len(groups))
	for _, g := range groups {
		perms := make([]ExportedPermission, 0, len(permissions))
		for _, perm := range permissions {
			perms = append(perms, ExportedPermission{
				Key:         perm.Key,
				Description: perm.Description,
				Enabled:     explicit[[2]uint{g.ID, perm.ID}],
			})
		}
		exportedGroups = append(exportedGroups, ExportedGroup{ID: g.ID, Name: g.Name, Permissions: perms})
	}

	return &ExportedProject{
		ID:               p.ID,
		Name:             p.Name,
		Description:      p.Description,
		APIKey:           p.APIKey,
		PermissionGroups: exportedGroups,
	}, nil
}
