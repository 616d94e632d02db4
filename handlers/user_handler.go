package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/camden-git/permsysbackend/models"
	"github.com/camden-git/permsysbackend/repository"
)

type UserHandler struct {
	UserRepo  repository.UserRepository
	GroupRepo repository.GroupRepository
}

func NewUserHandler(userRepo repository.UserRepository, groupRepo repository.GroupRepository) *UserHandler {
	return &UserHandler{UserRepo: userRepo, GroupRepo: groupRepo}
}

type UserCreatePayload struct {
	Username          string `json:"username"`
	Password          string `json:"password"`
	PermissionGroupID *uint  `json:"permissionGroupId"`
}

type UserGroupPayload struct {
	PermissionGroupID *uint `json:"permissionGroupId"`
}

type FirstAdminPayload struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.UserRepo.ListAll()
	if err != nil {
		WriteAPIError(w, http.StatusInternalServerError, "Failed to retrieve users")
		return
	}
	WriteJSON(w, http.StatusOK, users)
}

func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var payload UserCreatePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteAPIError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if payload.Username == "" || payload.Password == "" {
		WriteAPIError(w, http.StatusBadRequest, "Username and password are required")
		return
	}
	if payload.PermissionGroupID != nil {
		if _, err := h.GroupRepo.GetByID(*payload.PermissionGroupID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				WriteAPIError(w, http.StatusNotFound, "Group not found")
			} else {
				WriteAPIError(w, http.StatusInternalServerError, "Failed to load group")
			}
			return
		}
	}

	user := models.User{Username: payload.Username, PermissionGroupID: payload.PermissionGroupID}
	if err := user.SetPassword(payload.Password); err != nil {
		WriteAPIError(w, http.StatusInternalServerError, "Failed to hash password")
		return
	}
	if err := h.UserRepo.Create(&user); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			WriteAPIError(w, http.StatusConflict, "Username already exists")
		} else {
			WriteAPIError(w, http.StatusInternalServerError, "Failed to create user")
		}
		return
	}
	WriteJSON(w, http.StatusCreated, user)
}

// SetUserGroup reassigns (or clears, with null) a user's permission group.
func (h *UserHandler) SetUserGroup(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	var payload UserGroupPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteAPIError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if payload.PermissionGroupID != nil {
		if _, err := h.GroupRepo.GetByID(*payload.PermissionGroupID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				WriteAPIError(w, http.StatusNotFound, "Group not found")
			} else {
				WriteAPIError(w, http.StatusInternalServerError, "Failed to load group")
			}
			return
		}
	}

	if err := h.UserRepo.SetGroup(id, payload.PermissionGroupID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			WriteAPIError(w, http.StatusNotFound, "User not found")
		} else {
			WriteAPIError(w, http.StatusInternalServerError, "Failed to update user")
		}
		return
	}
	WriteJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}
	if err := h.UserRepo.Delete(id); err != nil {
		WriteAPIError(w, http.StatusInternalServerError, "Failed to delete user")
		return
	}
	WriteJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// CreateFirstAdmin creates the initial operator account. It is only usable
// while the users table is empty, so it can sit outside the auth gate.
func (h *UserHandler) CreateFirstAdmin(w http.ResponseWriter, r *http.Request) {
	count, err := h.UserRepo.Count()
	if err != nil {
		WriteAPIError(w, http.StatusInternalServerError, "Failed to check for existing users")
		return
	}
	if count > 0 {
		WriteAPIError(w, http.StatusForbidden, "Setup has already been completed")
		return
	}

	var payload FirstAdminPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteAPIError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if payload.Username == "" || payload.Password == "" {
		WriteAPIError(w, http.StatusBadRequest, "Username and password are required")
		return
	}

	user := models.User{Username: payload.Username}
	if err := user.SetPassword(payload.Password); err != nil {
		WriteAPIError(w, http.StatusInternalServerError, "Failed to hash password")
		return
	}
	if err := h.UserRepo.Create(&user); err != nil {
		// a concurrent setup call may have won the empty-table race
		if errors.Is(err, repository.ErrDuplicateKey) {
			WriteAPIError(w, http.StatusForbidden, "Setup has already been completed")
		} else {
			WriteAPIError(w, http.StatusInternalServerError, "Failed to create user")
		}
		return
	}
	WriteJSON(w, http.StatusCreated, map[string]string{"message": "Initial admin user created. Please log in."})
}
