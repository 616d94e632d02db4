package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/camden-git/permsysbackend/models"
	"github.com/camden-git/permsysbackend/repository"
)

type PermissionHandler struct {
	PermissionRepo repository.PermissionRepository
}

func NewPermissionHandler(permissionRepo repository.PermissionRepository) *PermissionHandler {
	return &PermissionHandler{PermissionRepo: permissionRepo}
}

type PermissionCreatePayload struct {
	ProjectID   uint    `json:"projectId"`
	Key         string  `json:"key"`
	Description *string `json:"description"`
}

type PermissionUpdatePayload struct {
	Key         string  `json:"key"`
	Description *string `json:"description"`
}

func (h *PermissionHandler) CreatePermission(w http.ResponseWriter, r *http.Request) {
	var payload PermissionCreatePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteAPIError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if payload.ProjectID == 0 || payload.Key == "" {
		WriteAPIError(w, http.StatusBadRequest, "Project ID and Key are required")
		return
	}

	permission := models.Permission{
		ProjectID:   payload.ProjectID,
		Key:         payload.Key,
		Description: payload.Description,
	}
	if err := h.PermissionRepo.Create(&permission); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicateKey):
			WriteAPIError(w, http.StatusConflict, "Permission key already exists in this project")
		case errors.Is(err, repository.ErrInvalidReference):
			WriteAPIError(w, http.StatusNotFound, "Project not found")
		default:
			WriteAPIError(w, http.StatusInternalServerError, "Failed to create permission")
		}
		return
	}
	WriteJSON(w, http.StatusOK, permission)
}

func (h *PermissionHandler) UpdatePermission(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	var payload PermissionUpdatePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteAPIError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if payload.Key == "" {
		WriteAPIError(w, http.StatusBadRequest, "Key is required")
		return
	}

	permission, err := h.PermissionRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			WriteAPIError(w, http.StatusNotFound, "Permission not found")
		} else {
			WriteAPIError(w, http.StatusInternalServerError, "Failed to load permission")
		}
		return
	}

	permission.Key = payload.Key
	permission.Description = payload.Description
	if err := h.PermissionRepo.Update(permission); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			WriteAPIError(w, http.StatusConflict, "Permission key already exists in this project")
		} else {
			WriteAPIError(w, http.StatusInternalServerError, "Failed to update permission")
		}
		return
	}
	WriteJSON(w, http.StatusOK, permission)
}

// DeletePermission removes a permission; its group links go first so no
// orphaned rows remain.
func (h *PermissionHandler) DeletePermission(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}
	if err := h.PermissionRepo.Delete(id); err != nil {
		WriteAPIError(w, http.StatusInternalServerError, "Failed to delete permission")
		return
	}
	WriteJSON(w, http.StatusOK, map[string]bool{"success": true})
}
