package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/camden-git/permsysbackend/services"
)

// ExportHandler serves the unauthenticated, API-key-gated read views.
type ExportHandler struct {
	Svc *services.ExportService
}

func NewExportHandler(svc *services.ExportService) *ExportHandler {
	return &ExportHandler{Svc: svc}
}

func (h *ExportHandler) ExportAll(w http.ResponseWriter, r *http.Request) {
	projects, err := h.Svc.All()
	if err != nil {
		logrus.WithError(err).Error("failed to export projects")
		WriteAPIError(w, http.StatusInternalServerError, "Failed to export projects")
		return
	}
	WriteJSON(w, http.StatusOK, projects)
}

func (h *ExportHandler) ExportProject(w http.ResponseWriter, r *http.Request) {
	apiKey := chi.URLParam(r, "apiKey")
	project, err := h.Svc.Project(apiKey)
	if err != nil {
		h.writeExportError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, project)
}

// ExportGroup returns one group's flat key→enabled mapping.
func (h *ExportHandler) ExportGroup(w http.ResponseWriter, r *http.Request) {
	apiKey := chi.URLParam(r, "apiKey")
	groupName := chi.URLParam(r, "groupName")
	flags, err := h.Svc.GroupFlags(apiKey, groupName)
	if err != nil {
		h.writeExportError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, flags)
}

// ExportProjectWorkbook streams the project's export as an .xlsx download.
func (h *ExportHandler) ExportProjectWorkbook(w http.ResponseWriter, r *http.Request) {
	apiKey := chi.URLParam(r, "apiKey")
	f, err := h.Svc.ProjectWorkbook(apiKey)
	if err != nil {
		h.writeExportError(w, err)
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="permissions_export.xlsx"`)
	if err := f.Write(w); err != nil {
		logrus.WithError(err).Error("failed to stream export workbook")
	}
}

func (h *ExportHandler) writeExportError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrProjectNotFound):
		WriteAPIError(w, http.StatusNotFound, "Project not found")
	case errors.Is(err, services.ErrGroupNotFound):
		WriteAPIError(w, http.StatusNotFound, "Group not found")
	default:
		logrus.WithError(err).Error("export query failed")
		WriteAPIError(w, http.StatusInternalServerError, "Export failed")
	}
}
