package services

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func buildSheet(t *testing.T, rows [][]interface{}) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf
}

func TestParseImportSheet(t *testing.T) {
	buf := buildSheet(t, [][]interface{}{
		{"key", "description", "group"},
		{"menu.notification", "Show notification menu", "Basic"},
		{"edit.emails", "", ""},
		{"", "ignored row without a key", "Basic"},
	})

	items, err := ParseImportSheet(buf)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, ImportItem{Key: "menu.notification", Description: "Show notification menu", Group: "Basic"}, items[0])
	assert.Equal(t, ImportItem{Key: "edit.emails"}, items[1])
}

func TestParseImportSheetHeaderOrderAndCase(t *testing.T) {
	buf := buildSheet(t, [][]interface{}{
		{"Group", "KEY"},
		{"Admin", "admin.panel"},
	})

	items, err := ParseImportSheet(buf)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, ImportItem{Key: "admin.panel", Group: "Admin"}, items[0])
}

func TestParseImportSheetMissingKeyColumn(t *testing.T) {
	buf := buildSheet(t, [][]interface{}{
		{"description", "group"},
		{"something", "Basic"},
	})

	_, err := ParseImportSheet(buf)
	assert.Error(t, err)
}

func TestImportTemplateRoundTrips(t *testing.T) {
	f, err := ImportTemplate()
	require.NoError(t, err)
	defer f.Close()

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	items, err := ParseImportSheet(buf)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "menu.example", items[0].Key)
}

func TestImportSpreadsheetMatchesJSONImport(t *testing.T) {
	db := newTestDB(t)
	repos := newTestRepos(db)
	project := createTestProject(t, repos, "ops")
	importer := NewBulkImporter(repos.permissions, repos.groups)

	buf := buildSheet(t, [][]interface{}{
		{"key", "description", "group"},
		{"menu.notification", "Show notification menu", "Basic"},
		{"edit.emails", "Edit email templates", "Basic"},
	})

	result, err := importer.ImportSpreadsheet(project.ID, buf)
	require.NoError(t, err)
	assert.Equal(t, 2, result.PermissionsCreated)
	assert.Equal(t, 1, result.GroupsCreated)
	assert.Equal(t, 2, result.AssignmentsCreated)
	assert.Empty(t, result.Errors)

	// an identical JSON batch afterwards is a no-op
	again := importer.Import(project.ID, []ImportItem{
		{Key: "menu.notification", Description: "Show notification menu", Group: "Basic"},
		{Key: "edit.emails", Description: "Edit email templates", Group: "Basic"},
	})
	assert.Zero(t, again.PermissionsCreated)
	assert.Zero(t, again.GroupsCreated)
	assert.Zero(t, again.AssignmentsCreated)
}

func TestProjectWorkbook(t *testing.T) {
	svc, _, project := newExportFixture(t)

	f, err := svc.ProjectWorkbook(project.APIKey)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Permissions")
	require.NoError(t, err)
	require.Len(t, rows, 3, "header plus one row per permission")
	assert.Equal(t, []string{"key", "description", "Basic", "Admin"}, rows[0])
	assert.Equal(t, "menu.notification", rows[1][0])
	assert.Equal(t, "edit.emails", rows[2][0])
	assert.Equal(t, "TRUE", rows[1][2])
	assert.Equal(t, "TRUE", rows[1][3])
}
