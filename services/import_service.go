package services

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/camden-git/permsysbackend/models"
	"github.com/camden-git/permsysbackend/repository"
)

// ImportItem is one row of a bulk-import batch.
type ImportItem struct {
	Key         string `json:"key"`
	Description string `json:"description"`
	Group       string `json:"group,omitempty"`
}

// ImportResult reports what a bulk-import run created. Row failures are
// collected in Errors; they never abort the batch.
type ImportResult struct {
	PermissionsCreated int      `json:"permissionsCreated"`
	GroupsCreated      int      `json:"groupsCreated"`
	AssignmentsCreated int      `json:"assignmentsCreated"`
	Errors             []string `json:"errors"`
}

// BulkImporter reconciles an externally supplied list of
// (key, description, group) rows against a project. Lookups precede every
// insert, so re-running the same batch is a no-op; a DuplicateKey raced in by
// a concurrent run is re-read and treated as "already exists".
type BulkImporter struct {
	PermissionRepo repository.PermissionRepository
	GroupRepo      repository.GroupRepository
}

func NewBulkImporter(permissionRepo repository.PermissionRepository, groupRepo repository.GroupRepository) *BulkImporter {
	return &BulkImporter{PermissionRepo: permissionRepo, GroupRepo: groupRepo}
}

func (s *BulkImporter) Import(projectID uint, items []ImportItem) ImportResult {
	result := ImportResult{Errors: []string{}}

	for _, item := range items {
		if err := s.importItem(projectID, item, &result); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Failed to process %s: %v", item.Key, err))
			logrus.WithFields(logrus.Fields{
				"project_id": projectID,
				"key":        item.Key,
			}).WithError(err).Warn("bulk import row failed")
		}
	}
	return result
}

func (s *BulkImporter) importItem(projectID uint, item ImportItem, result *ImportResult) error {
	permissionID, created, err := s.ensurePermission(projectID, item)
	if err != nil {
		return err
	}
	if created {
		result.PermissionsCreated++
	}

	if item.Group == "" {
		return nil
	}

	groupID, created, err := s.ensureGroup(projectID, item.Group)
	if err != nil {
		return err
	}
	if created {
		result.GroupsCreated++
	}

	created, err = s.ensureAssignment(groupID, permissionID)
	if err != nil {
		return err
	}
	if created {
		result.AssignmentsCreated++
	}
	return nil
}

// ensurePermission reuses an existing (projectID, key) permission or creates
// one. An existing description is never overwritten.
func (s *BulkImporter) ensurePermission(projectID uint, item ImportItem) (uint, bool, error) {
	existing, err := s.PermissionRepo.GetByProjectAndKey(projectID, item.Key)
	if err == nil {
		return existing.ID, false, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return 0, false, err
	}

	perm := models.Permission{ProjectID: projectID, Key: item.Key}
	if item.Description != "" {
		desc := item.Description
		perm.Description = &desc
	}
	if err := s.PermissionRepo.Create(&perm); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			// lost the race to a concurrent import; the row exists now
			raced, err := s.PermissionRepo.GetByProjectAndKey(projectID, item.Key)
			if err != nil {
				return 0, false, err
			}
			return raced.ID, false, nil
		}
		return 0, false, err
	}
	return perm.ID, true, nil
}

func (s *BulkImporter) ensureGroup(projectID uint, name string) (uint, bool, error) {
	existing, err := s.GroupRepo.GetByProjectAndName(projectID, name)
	if err == nil {
		return existing.ID, false, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return 0, false, err
	}

	group := models.PermissionGroup{ProjectID: projectID, Name: name}
	if err := s.GroupRepo.Create(&group); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			raced, err := s.GroupRepo.GetByProjectAndName(projectID, name)
			if err != nil {
				return 0, false, err
			}
			return raced.ID, false, nil
		}
		return 0, false, err
	}
	return group.ID, true, nil
}

// ensureAssignment links the permission into the group with enabled=true,
// unless a link already exists — an existing flag is left untouched.
func (s *BulkImporter) ensureAssignment(groupID, permissionID uint) (bool, error) {
	_, err := s.GroupRepo.GetGroupPermission(groupID, permissionID)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return false, err
	}

	gp := models.GroupPermission{GroupID: groupID, PermissionID: permissionID, Enabled: true}
	if err := s.GroupRepo.CreateGroupPermission(&gp); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
