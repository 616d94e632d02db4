package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/camden-git/permsysbackend/models"
	"github.com/camden-git/permsysbackend/repository"
)

type GroupHandler struct {
	GroupRepo      repository.GroupRepository
	PermissionRepo repository.PermissionRepository
	ProjectRepo    repository.ProjectRepository
}

func NewGroupHandler(groupRepo repository.GroupRepository, permissionRepo repository.PermissionRepository, projectRepo repository.ProjectRepository) *GroupHandler {
	return &GroupHandler{GroupRepo: groupRepo, PermissionRepo: permissionRepo, ProjectRepo: projectRepo}
}

type GroupCreatePayload struct {
	Name string `json:"name"`
}

type GroupPermissionTogglePayload struct {
	PermissionID uint `json:"permissionId"`
	Enabled      bool `json:"enabled"`
}

// CreateGroup creates a permission group under a project.
func (h *GroupHandler) CreateGroup(w http.ResponseWriter, r *http.Request) {
	projectID, ok := parseIDParam(w, r, "projectId")
	if !ok {
		return
	}

	var payload GroupCreatePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteAPIError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if payload.Name == "" {
		WriteAPIError(w, http.StatusBadRequest, "Name is required")
		return
	}

	if _, err := h.ProjectRepo.GetByID(projectID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			WriteAPIError(w, http.StatusNotFound, "Project not found")
		} else {
			WriteAPIError(w, http.StatusInternalServerError, "Failed to load project")
		}
		return
	}

	group := models.PermissionGroup{ProjectID: projectID, Name: payload.Name}
	if err := h.GroupRepo.Create(&group); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			WriteAPIError(w, http.StatusConflict, "Group name already exists in this project")
		} else {
			WriteAPIError(w, http.StatusInternalServerError, "Failed to create group")
		}
		return
	}
	WriteJSON(w, http.StatusOK, group)
}

// TogglePermission upserts the group's enablement flag for one permission.
// The composite key on (groupId, permissionId) guarantees a single row per
// pair, and both sides must belong to the same project.
func (h *GroupHandler) TogglePermission(w http.ResponseWriter, r *http.Request) {
	groupID, ok := parseIDParam(w, r, "groupId")
	if !ok {
		return
	}

	var payload GroupPermissionTogglePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteAPIError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if payload.PermissionID == 0 {
		WriteAPIError(w, http.StatusBadRequest, "Permission ID is required")
		return
	}

	group, err := h.GroupRepo.GetByID(groupID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			WriteAPIError(w, http.StatusNotFound, "Group not found")
		} else {
			WriteAPIError(w, http.StatusInternalServerError, "Failed to load group")
		}
		return
	}
	permission, err := h.PermissionRepo.GetByID(payload.PermissionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			WriteAPIError(w, http.StatusNotFound, "Permission not found")
		} else {
			WriteAPIError(w, http.StatusInternalServerError, "Failed to load permission")
		}
		return
	}
	if permission.ProjectID != group.ProjectID {
		WriteAPIError(w, http.StatusBadRequest, "Permission and group belong to different projects")
		return
	}

	gp := models.GroupPermission{GroupID: group.ID, PermissionID: permission.ID, Enabled: payload.Enabled}
	if err := h.GroupRepo.UpsertGroupPermission(&gp); err != nil {
		WriteAPIError(w, http.StatusInternalServerError, "Failed to update group permission")
		return
	}
	WriteJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// DeleteGroup removes a group; its link rows go first so no orphaned rows
// remain.
func (h *GroupHandler) DeleteGroup(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "groupId")
	if !ok {
		return
	}
	if err := h.GroupRepo.Delete(id); err != nil {
		WriteAPIError(w, http.StatusInternalServerError, "Failed to delete group")
		return
	}
	WriteJSON(w, http.StatusOK, map[string]bool{"success": true})
}
