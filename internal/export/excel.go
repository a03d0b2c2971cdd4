package export

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/xuri/excelize/v2"

	"plz-territory-go/internal/region"
	"plz-territory-go/pkg/model"
)

const (
	assignmentSheet     = "PLZ-Zuordnung"
	representativeSheet = "Vertriebler"
)

// AssignmentHeader is the header row of the assignment sheet
var AssignmentHeader = []string{"PLZ", "Vertriebler", "Farbe"}

// RepresentativeHeader is the header row of the representative sheet
var RepresentativeHeader = []string{"Vertriebler", "Farbe", "Anzahl PLZ"}

// AssignmentWorkbook renders the assignment snapshot as an .xlsx file with one
// row per region (sorted by code) and one row per representative with its region count.
func AssignmentWorkbook(assignments model.Assignments, reps []model.Representative) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	for _, sheet := range []string{assignmentSheet, representativeSheet} {
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, fmt.Errorf("failed to create sheet: %w", err)
		}
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("failed to remove default sheet: %w", err)
	}
	// Indices shift once Sheet1 is gone.
	index, err := f.GetSheetIndex(assignmentSheet)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
		Border: []excelize.Border{
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	codes := make([]string, 0, len(assignments))
	counts := make(map[string]int, len(reps))
	for code, owner := range assignments {
		codes = append(codes, code)
		if owner != nil {
			counts[owner.Name]++
		}
	}
	sort.Strings(codes)

	rows := make([][]any, 0, len(codes))
	for _, code := range codes {
		name, color := region.UnassignedLabel, region.UnassignedColor
		if owner := assignments[code]; owner != nil {
			name, color = owner.Name, owner.Color
		}
		rows = append(rows, []any{code, name, color})
	}
	if err := writeSheet(f, assignmentSheet, AssignmentHeader, rows, headerStyle, []float64{10, 30, 12}); err != nil {
		return nil, err
	}

	rows = make([][]any, 0, len(reps))
	for _, rep := range reps {
		rows = append(rows, []any{rep.Name, rep.Color, counts[rep.Name]})
	}
	if err := writeSheet(f, representativeSheet, RepresentativeHeader, rows, headerStyle, []float64{30, 12, 12}); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeSheet(f *excelize.File, sheet string, header []string, rows [][]any, headerStyle int, widths []float64) error {
	headerRow := make([]any, len(header))
	for i, h := range header {
		headerRow[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &headerRow); err != nil {
		return fmt.Errorf("failed to write header of %s: %w", sheet, err)
	}
	last, err := excelize.CoordinatesToCellName(len(header), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", last, headerStyle); err != nil {
		return fmt.Errorf("failed to set header style: %w", err)
	}

	for i, w := range widths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(sheet, col, col, w); err != nil {
			return fmt.Errorf("failed to set column width: %w", err)
		}
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d of %s: %w", i+2, sheet, err)
		}
	}
	return nil
}
