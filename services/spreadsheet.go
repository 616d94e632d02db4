package services

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Spreadsheet import/export. The admin UI hands operators an .xlsx template
// with key/description/group columns; filled-in sheets come back through the
// same reconciliation path as JSON bulk imports.

const importSheetName = "Template"

// ImportTemplate builds the empty .xlsx template offered for download.
func ImportTemplate() (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName(f.GetSheetName(0), importSheetName); err != nil {
		return nil, err
	}
	rows := [][]interface{}{
		{"key", "description", "group"},
		{"menu.example", "Example permission", "Admin"},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(importSheetName, cell, &row); err != nil {
			return nil, err
		}
	}
	return f, nil
}

// ParseImportSheet decodes the first sheet of an uploaded workbook into
// import items. The header row maps columns by name, so column order does not
// matter; rows with an empty key are skipped.
func ParseImportSheet(r io.Reader) ([]ImportItem, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open spreadsheet: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("spreadsheet has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet %q is empty", sheets[0])
	}

	colIndex := map[string]int{}
	for i, header := range rows[0] {
		colIndex[strings.ToLower(strings.TrimSpace(header))] = i
	}
	keyCol, ok := colIndex["key"]
	if !ok {
		return nil, fmt.Errorf("sheet %q has no 'key' column", sheets[0])
	}
	descCol, hasDesc := colIndex["description"]
	groupCol, hasGroup := colIndex["group"]

	cellAt := func(row []string, idx int) string {
		if idx < len(row) {
			return strings.TrimSpace(row[idx])
		}
		return ""
	}

	var items []ImportItem
	for _, row := range rows[1:] {
		key := cellAt(row, keyCol)
		if key == "" {
			continue
		}
		item := ImportItem{Key: key}
		if hasDesc {
			item.Description = cellAt(row, descCol)
		}
		if hasGroup {
			item.Group = cellAt(row, groupCol)
		}
		items = append(items, item)
	}
	return items, nil
}

// ImportSpreadsheet decodes an uploaded workbook and runs the rows through
// the same reconciliation as a JSON bulk import.
func (s *BulkImporter) ImportSpreadsheet(projectID uint, r io.Reader) (ImportResult, error) {
	items, err := ParseImportSheet(r)
	if err != nil {
		return ImportResult{}, err
	}
	return s.Import(projectID, items), nil
}

// ProjectWorkbook renders a project's denormalized export as an .xlsx file:
// one row per permission, one column per group with TRUE/FALSE flags.
func (s *ExportService) ProjectWorkbook(apiKey string) (*excelize.File, error) {
	project, err := s.Project(apiKey)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	if err := f.SetSheetName(sheet, "Permissions"); err != nil {
		return nil, err
	}
	sheet = "Permissions"

	header := []interface{}{"key", "description"}
	for _, g := range project.PermissionGroups {
		header = append(header, g.Name)
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return nil, err
	}

	// every group carries the full project permission list in the same
	// order, so the first group's keys index the rows
	rowIdx := 2
	if len(project.PermissionGroups) > 0 {
		for i, perm := range project.PermissionGroups[0].Permissions {
			row := []interface{}{perm.Key, ""}
			if perm.Description != nil {
				row[1] = *perm.Description
			}
			for _, g := range project.PermissionGroups {
				row = append(row, g.Permissions[i].Enabled)
			}
			cell, err := excelize.CoordinatesToCellName(1, rowIdx)
			if err != nil {
				return nil, err
			}
			if err := f.SetSheetRow(sheet, cell, &row); err != nil {
				return nil, err
			}
			rowIdx++
		}
	}
	return f, nil
}
