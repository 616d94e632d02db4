package handlers

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/camden-git/permsysbackend/models"
	"github.com/camden-git/permsysbackend/services"
)

func seededProject(t *testing.T, db *gorm.DB) *models.Project {
	t.Helper()
	var project models.Project
	require.NoError(t, db.Where("name = ?", "Operations Site").First(&project).Error)
	return &project
}

func TestCreateProjectValidation(t *testing.T) {
	app, _ := newSeededApp(t)
	cookie := login(t, app, "admin", "password")

	rec := doRequest(t, app, http.MethodPost, "/api/projects/", map[string]string{}, cookie)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Name is required", apiError(t, rec))
}

func TestCreateProjectGeneratesAPIKey(t *testing.T) {
	app, _ := newSeededApp(t)
	cookie := login(t, app, "admin", "password")

	rec := doRequest(t, app, http.MethodPost, "/api/projects/", map[string]string{"name": "new-site"}, cookie)
	require.Equal(t, http.StatusOK, rec.Code)

	var project models.Project
	decodeBody(t, rec, &project)
	assert.Equal(t, "new-site", project.Name)
	assert.NotEmpty(t, project.APIKey)
	assert.NotZero(t, project.ID)
}

func TestListProjectsIncludesNestedGraph(t *testing.T) {
	app, _ := newSeededApp(t)
	cookie := login(t, app, "admin", "password")

	rec := doRequest(t, app, http.MethodGet, "/api/projects/", nil, cookie)
	require.Equal(t, http.StatusOK, rec.Code)

	var projects []models.Project
	decodeBody(t, rec, &projects)
	require.Len(t, projects, 1)
	assert.Len(t, projects[0].Permissions, 2)
	require.Len(t, projects[0].PermissionGroups, 2)
	assert.Len(t, projects[0].PermissionGroups[0].GroupPermissions, 2)
}

func TestDeleteProject(t *testing.T) {
	app, db := newSeededApp(t)
	cookie := login(t, app, "admin", "password")
	project := seededProject(t, db)

	rec := doRequest(t, app, http.MethodDelete, fmt.Sprintf("/api/projects/%d", project.ID), nil, cookie)
	require.Equal(t, http.StatusOK, rec.Code)

	var count int64
	require.NoError(t, db.Model(&models.Permission{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestCreatePermissionDuplicateConflict(t *testing.T) {
	app, db := newSeededApp(t)
	cookie := login(t, app, "admin", "password")
	project := seededProject(t, db)

	payload := map[string]interface{}{"projectId": project.ID, "key": "menu.reports"}
	rec := doRequest(t, app, http.MethodPost, "/api/permissions/", payload, cookie)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, app, http.MethodPost, "/api/permissions/", payload, cookie)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "Permission key already exists in this project", apiError(t, rec))
}

func TestCreatePermissionUnknownProject(t *testing.T) {
	app, _ := newSeededApp(t)
	cookie := login(t, app, "admin", "password")

	rec := doRequest(t, app, http.MethodPost, "/api/permissions/",
		map[string]interface{}{"projectId": 999, "key": "menu.reports"}, cookie)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Project not found", apiError(t, rec))
}

func TestUpdatePermission(t *testing.T) {
	app, db := newSeededApp(t)
	cookie := login(t, app, "admin", "password")

	var perm models.Permission
	require.NoError(t, db.Where("key = ?", "menu.notification").First(&perm).Error)

	rec := doRequest(t, app, http.MethodPut, fmt.Sprintf("/api/permissions/%d", perm.ID),
		map[string]string{"key": "menu.alerts"}, cookie)
	require.Equal(t, http.StatusOK, rec.Code)

	var updated models.Permission
	decodeBody(t, rec, &updated)
	assert.Equal(t, "menu.alerts", updated.Key)
}

func TestCreateGroupDuplicateConflict(t *testing.T) {
	app, db := newSeededApp(t)
	cookie := login(t, app, "admin", "password")
	project := seededProject(t, db)

	path := fmt.Sprintf("/api/projects/%d/groups", project.ID)
	rec := doRequest(t, app, http.MethodPost, path, map[string]string{"name": "Admin"}, cookie)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "Group name already exists in this project", apiError(t, rec))

	rec = doRequest(t, app, http.MethodPost, path, map[string]string{"name": "Editors"}, cookie)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestTogglePermissionRejectsCrossProject(t *testing.T) {
	app, db := newSeededApp(t)
	cookie := login(t, app, "admin", "password")

	// a permission in a second project must not be linkable to a seeded group
	other := models.Project{Name: "other", APIKey: "other-key"}
	require.NoError(t, db.Create(&other).Error)
	foreign := models.Permission{ProjectID: other.ID, Key: "foreign.key"}
	require.NoError(t, db.Create(&foreign).Error)

	var group models.PermissionGroup
	require.NoError(t, db.Where("name = ?", "Basic").First(&group).Error)

	rec := doRequest(t, app, http.MethodPost, fmt.Sprintf("/api/groups/%d/permissions", group.ID),
		map[string]interface{}{"permissionId": foreign.ID, "enabled": true}, cookie)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Permission and group belong to different projects", apiError(t, rec))
}

func TestTogglePermissionFlipsFlag(t *testing.T) {
	app, db := newSeededApp(t)
	cookie := login(t, app, "admin", "password")

	var group models.PermissionGroup
	require.NoError(t, db.Where("name = ?", "Basic").First(&group).Error)
	var perm models.Permission
	require.NoError(t, db.Where("key = ?", "edit.emails").First(&perm).Error)

	rec := doRequest(t, app, http.MethodPost, fmt.Sprintf("/api/groups/%d/permissions", group.ID),
		map[string]interface{}{"permissionId": perm.ID, "enabled": true}, cookie)
	require.Equal(t, http.StatusOK, rec.Code)

	var gp models.GroupPermission
	require.NoError(t, db.Where("group_id = ? AND permission_id = ?", group.ID, perm.ID).First(&gp).Error)
	assert.True(t, gp.Enabled)
}

func TestBulkImportEndpointIdempotent(t *testing.T) {
	app, db := newSeededApp(t)
	cookie := login(t, app, "admin", "password")
	project := seededProject(t, db)

	path := fmt.Sprintf("/api/projects/%d/bulk-import", project.ID)
	payload := map[string]interface{}{
		"items": []map[string]string{
			{"key": "menu.reports", "description": "Reports menu", "group": "Editors"},
		},
	}

	rec := doRequest(t, app, http.MethodPost, path, payload, cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	var result services.ImportResult
	decodeBody(t, rec, &result)
	assert.Equal(t, 1, result.PermissionsCreated)
	assert.Equal(t, 1, result.GroupsCreated)
	assert.Equal(t, 1, result.AssignmentsCreated)
	assert.Empty(t, result.Errors)

	rec = doRequest(t, app, http.MethodPost, path, payload, cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	decodeBody(t, rec, &result)
	assert.Zero(t, result.PermissionsCreated)
	assert.Zero(t, result.GroupsCreated)
	assert.Zero(t, result.AssignmentsCreated)
	assert.Empty(t, result.Errors)
}

func TestBulkImportUnknownProject(t *testing.T) {
	app, _ := newSeededApp(t)
	cookie := login(t, app, "admin", "password")

	rec := doRequest(t, app, http.MethodPost, "/api/projects/999/bulk-import",
		map[string]interface{}{"items": []map[string]string{}}, cookie)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Project not found", apiError(t, rec))
}

func TestBulkImportTemplateDownload(t *testing.T) {
	app, db := newSeededApp(t)
	cookie := login(t, app, "admin", "password")
	project := seededProject(t, db)

	rec := doRequest(t, app, http.MethodGet,
		fmt.Sprintf("/api/projects/%d/bulk-import/template", project.ID), nil, cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		rec.Header().Get("Content-Type"))
	assert.NotZero(t, rec.Body.Len())
}

func TestUserLifecycle(t *testing.T) {
	app, db := newSeededApp(t)
	cookie := login(t, app, "admin", "password")

	var group models.PermissionGroup
	require.NoError(t, db.Where("name = ?", "Basic").First(&group).Error)

	rec := doRequest(t, app, http.MethodPost, "/api/users/",
		map[string]interface{}{"username": "newbie", "password": "secret", "permissionGroupId": group.ID}, cookie)
	require.Equal(t, http.StatusCreated, rec.Code)
	var created models.User
	decodeBody(t, rec, &created)
	assert.Equal(t, "newbie", created.Username)

	rec = doRequest(t, app, http.MethodPost, "/api/users/",
		map[string]interface{}{"username": "newbie", "password": "secret"}, cookie)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "Username already exists", apiError(t, rec))

	// clear the group with an explicit null
	rec = doRequest(t, app, http.MethodPut, fmt.Sprintf("/api/users/%d/group", created.ID),
		map[string]interface{}{"permissionGroupId": nil}, cookie)
	require.Equal(t, http.StatusOK, rec.Code)

	var reloaded models.User
	require.NoError(t, db.First(&reloaded, created.ID).Error)
	assert.Nil(t, reloaded.PermissionGroupID)

	rec = doRequest(t, app, http.MethodDelete, fmt.Sprintf("/api/users/%d", created.ID), nil, cookie)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCreateUserUnknownGroup(t *testing.T) {
	app, _ := newSeededApp(t)
	cookie := login(t, app, "admin", "password")

	rec := doRequest(t, app, http.MethodPost, "/api/users/",
		map[string]interface{}{"username": "newbie", "password": "secret", "permissionGroupId": 999}, cookie)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Group not found", apiError(t, rec))
}

func TestExportGroupFlagsEndpoint(t *testing.T) {
	app, db := newSeededApp(t)
	project := seededProject(t, db)

	// export is keyed by the project API key, no session required
	rec := doRequest(t, app, http.MethodGet,
		fmt.Sprintf("/api/export/project/%s/group/Basic", project.APIKey), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var flags map[string]bool
	decodeBody(t, rec, &flags)
	assert.Equal(t, map[string]bool{
		"menu.notification": true,
		"edit.emails":       false,
	}, flags)
}

func TestExportGroupUnknown(t *testing.T) {
	app, db := newSeededApp(t)
	project := seededProject(t, db)

	rec := doRequest(t, app, http.MethodGet,
		fmt.Sprintf("/api/export/project/%s/group/Ghost", project.APIKey), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Group not found", apiError(t, rec))
}

func TestExportProjectUnknownKey(t *testing.T) {
	app, _ := newSeededApp(t)

	rec := doRequest(t, app, http.MethodGet, "/api/export/project/no-such-key", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Project not found", apiError(t, rec))
}

func TestExportProjectEndpoint(t *testing.T) {
	app, db := newSeededApp(t)
	project := seededProject(t, db)

	rec := doRequest(t, app, http.MethodGet, "/api/export/project/"+project.APIKey, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var exported services.ExportedProject
	decodeBody(t, rec, &exported)
	assert.Equal(t, project.APIKey, exported.APIKey)
	require.Len(t, exported.PermissionGroups, 2)
	for _, g := range exported.PermissionGroups {
		assert.Len(t, g.Permissions, 2)
	}
}

func TestExportWorkbookEndpoint(t *testing.T) {
	app, db := newSeededApp(t)
	project := seededProject(t, db)

	rec := doRequest(t, app, http.MethodGet,
		fmt.Sprintf("/api/export/project/%s/xlsx", project.APIKey), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		rec.Header().Get("Content-Type"))
	assert.NotZero(t, rec.Body.Len())
}
