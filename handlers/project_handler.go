package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/camden-git/permsysbackend/models"
	"github.com/camden-git/permsysbackend/repository"
	"github.com/camden-git/permsysbackend/services"
)

type ProjectHandler struct {
	ProjectRepo repository.ProjectRepository
	Importer    *services.BulkImporter
}

func NewProjectHandler(projectRepo repository.ProjectRepository, importer *services.BulkImporter) *ProjectHandler {
	return &ProjectHandler{ProjectRepo: projectRepo, Importer: importer}
}

type ProjectCreatePayload struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
}

type BulkImportPayload struct {
	Items []services.ImportItem `json:"items"`
}

// ListProjects returns all projects with nested permissions, groups, and
// explicit group-permission rows.
func (h *ProjectHandler) ListProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := h.ProjectRepo.ListAll()
	if err != nil {
		logrus.WithError(err).Error("failed to list projects")
		WriteAPIError(w, http.StatusInternalServerError, "Failed to retrieve projects")
		return
	}
	WriteJSON(w, http.StatusOK, projects)
}

// CreateProject creates a project with a freshly generated unique API key.
func (h *ProjectHandler) CreateProject(w http.ResponseWriter, r *http.Request) {
	var payload ProjectCreatePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteAPIError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if payload.Name == "" {
		WriteAPIError(w, http.StatusBadRequest, "Name is required")
		return
	}

	project := models.Project{
		Name:        payload.Name,
		Description: payload.Description,
		APIKey:      uuid.NewString(),
	}
	if err := h.ProjectRepo.Create(&project); err != nil {
		logrus.WithError(err).Error("failed to create project")
		WriteAPIError(w, http.StatusInternalServerError, "Failed to create project")
		return
	}
	WriteJSON(w, http.StatusOK, project)
}

// DeleteProject removes a project and cascades over its permissions, groups,
// and group-permission rows.
func (h *ProjectHandler) DeleteProject(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "projectId")
	if !ok {
		return
	}
	if err := h.ProjectRepo.Delete(id); err != nil {
		logrus.WithError(err).WithField("project_id", id).Error("failed to delete project")
		WriteAPIError(w, http.StatusInternalServerError, "Failed to delete project")
		return
	}
	WriteJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// BulkImport reconciles a JSON item batch against the project. Row failures
// land in the errors array of a 200 response, never a batch-level failure.
func (h *ProjectHandler) BulkImport(w http.ResponseWriter, r *http.Request) {
	projectID, ok := h.requireProject(w, r)
	if !ok {
		return
	}

	var payload BulkImportPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.Items == nil {
		WriteAPIError(w, http.StatusBadRequest, "Invalid payload")
		return
	}

	result := h.Importer.Import(projectID, payload.Items)
	WriteJSON(w, http.StatusOK, result)
}

// BulkImportTemplate serves the .xlsx template for spreadsheet imports.
func (h *ProjectHandler) BulkImportTemplate(w http.ResponseWriter, r *http.Request) {
	f, err := services.ImportTemplate()
	if err != nil {
		logrus.WithError(err).Error("failed to build import template")
		WriteAPIError(w, http.StatusInternalServerError, "Failed to build template")
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="permissions_template.xlsx"`)
	if err := f.Write(w); err != nil {
		logrus.WithError(err).Error("failed to stream import template")
	}
}

// BulkImportSpreadsheet accepts an uploaded .xlsx workbook and runs its rows
// through the same reconciliation as the JSON endpoint.
func (h *ProjectHandler) BulkImportSpreadsheet(w http.ResponseWriter, r *http.Request) {
	projectID, ok := h.requireProject(w, r)
	if !ok {
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		WriteAPIError(w, http.StatusBadRequest, "Spreadsheet file is required")
		return
	}
	defer file.Close()

	result, err := h.Importer.ImportSpreadsheet(projectID, file)
	if err != nil {
		WriteAPIError(w, http.StatusBadRequest, "Invalid spreadsheet: "+err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, result)
}

// requireProject parses the id URL param and confirms the project exists.
func (h *ProjectHandler) requireProject(w http.ResponseWriter, r *http.Request) (uint, bool) {
	id, ok := parseIDParam(w, r, "projectId")
	if !ok {
		return 0, false
	}
	if _, err := h.ProjectRepo.GetByID(id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			WriteAPIError(w, http.StatusNotFound, "Project not found")
		} else {
			WriteAPIError(w, http.StatusInternalServerError, "Failed to load project")
		}
		return 0, false
	}
	return id, true
}

// parseIDParam reads a numeric chi URL parameter, writing a 400 on failure.
func parseIDParam(w http.ResponseWriter, r *http.Request, name string) (uint, bool) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		WriteAPIError(w, http.StatusBadRequest, "Invalid "+name+" format")
		return 0, false
	}
	return uint(id), true
}
