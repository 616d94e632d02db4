package services

import (
	"github.com/camden-git/permsysbackend/models"
	"github.com/camden-git/permsysbackend/repository"
)

// PermissionState is one entry of a resolved permission set.
type PermissionState struct {
	Key     string `json:"key"`
	Enabled bool   `json:"enabled"`
}

// PermissionResolver computes the effective permission set for a user or a
// group. Every permission of the group's project is reported, in creation
// order; a permission with no explicit GroupPermission row is disabled. The
// export projector applies the same rule, so login/"me" and export never
// disagree about a flag.
type PermissionResolver struct {
	GroupRepo      repository.GroupRepository
	PermissionRepo repository.PermissionRepository
}

func NewPermissionResolver(groupRepo repository.GroupRepository, permissionRepo repository.PermissionRepository) *PermissionResolver {
	return &PermissionResolver{GroupRepo: groupRepo, PermissionRepo: permissionRepo}
}

// ResolveUser returns the user's group name and effective permission set.
// A user without a group resolves to no group name and an empty set.
func (r *PermissionResolver) ResolveUser(user *models.User) (*string, []PermissionState, error) {
	if user.PermissionGroupID == nil {
		return nil, []PermissionState{}, nil
	}
	group, err := r.GroupRepo.GetByID(*user.PermissionGroupID)
	if err != nil {
		return nil, nil, err
	}
	states, err := r.ResolveGroup(group)
	if err != nil {
		return nil, nil, err
	}
	return &group.Name, states, nil
}

// ResolveGroup returns the group's effective enabled/disabled state for every
// permission in its project.
func (r *PermissionResolver) ResolveGroup(group *models.PermissionGroup) ([]PermissionState, error) {
	permissions, err := r.PermissionRepo.ListByProject(group.ProjectID)
	if err != nil {
		return nil, err
	}
	links, err := r.GroupRepo.ListGroupPermissions(group.ID)
	if err != nil {
		return nil, err
	}

	enabled := make(map[uint]bool, len(links))
	for _, link := range links {
		enabled[link.PermissionID] = link.Enabled
	}

	states := make([]PermissionState, 0, len(permissions))
	for _, perm := range permissions {
		states = append(states, PermissionState{
			Key:     perm.Key,
			Enabled: enabled[perm.ID],
		})
	}
	return states, nil
}
