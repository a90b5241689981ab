package render

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/spektr-org/needsradar/engine"
)

// Sheet names of the exported workbook.
const (
	SheetDetail     = "Detalle"
	SheetRadar      = "Radar"
	SheetHierarchy  = "Jerarquía"
	SheetCategories = "Categorías"
)

// WorkbookXLSX writes a snapshot as a four-sheet workbook: the detail
// table, the region × axis matrix, the flattened hierarchy and the
// category ranking.
func WorkbookXLSX(w io.Writer, snap *engine.Snapshot) error {
	if snap == nil {
		return fmt.Errorf("render: nil snapshot")
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetDetail); err != nil {
		return fmt.Errorf("render: xlsx: %w", err)
	}
	for _, name := range []string{SheetRadar, SheetHierarchy, SheetCategories} {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("render: xlsx: %w", err)
		}
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("render: xlsx: %w", err)
	}

	sw := sheetWriter{f: f, header: bold}

	// Detail
	if t := snap.Table; t != nil {
		headers := make([]interface{}, len(t.Columns))
		for i, c := range t.Columns {
			headers[i] = c.Label
		}
		sw.row(SheetDetail, 1, headers, true)
		for i, r := range t.Rows {
			cells := make([]interface{}, len(r))
			for j, v := range r {
				cells[j] = v
			}
			sw.row(SheetDetail, i+2, cells, false)
		}
		sw.widths(SheetDetail, len(t.Columns), 22)
	}

	// Radar matrix: one row per series, one column per axis.
	radarHeader := []interface{}{"Región"}
	for _, a := range snap.Radar.Axes {
		radarHeader = append(radarHeader, a)
	}
	sw.row(SheetRadar, 1, radarHeader, true)
	for i, s := range snap.Radar.Series {
		cells := []interface{}{s.Region}
		for _, c := range s.Counts {
			cells = append(cells, c)
		}
		sw.row(SheetRadar, i+2, cells, false)
	}
	sw.widths(SheetRadar, len(radarHeader), 18)

	// Hierarchy
	sw.row(SheetHierarchy, 1, []interface{}{"Región", "Eje", "Temática", "Necesidades"}, true)
	row := 2
	if snap.Hierarchy != nil {
		for _, region := range snap.Hierarchy.Children {
			for _, axis := range region.Children {
				for _, theme := range axis.Children {
					sw.row(SheetHierarchy, row, []interface{}{region.Name, axis.Name, theme.Name, theme.Count}, false)
					row++
				}
			}
		}
	}
	sw.widths(SheetHierarchy, 4, 24)

	// Categories
	sw.row(SheetCategories, 1, []interface{}{"Categoría tecnológica", "Frecuencia"}, true)
	for i, c := range snap.Categories {
		sw.row(SheetCategories, i+2, []interface{}{c.Category, c.Count}, false)
	}
	sw.widths(SheetCategories, 2, 32)

	if sw.err != nil {
		return fmt.Errorf("render: xlsx: %w", sw.err)
	}
	f.SetActiveSheet(0)
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("render: xlsx write: %w", err)
	}
	return nil
}

// sheetWriter keeps the first error so the layout code stays linear.
type sheetWriter struct {
	f      *excelize.File
	header int
	err    error
}

func (s *sheetWriter) row(sheet string, row int, cells []interface{}, header bool) {
	if s.err != nil || len(cells) == 0 {
		return
	}
	start, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		s.err = err
		return
	}
	if err := s.f.SetSheetRow(sheet, start, &cells); err != nil {
		s.err = err
		return
	}
	if header {
		end, _ := excelize.CoordinatesToCellName(len(cells), row)
		s.err = s.f.SetCellStyle(sheet, start, end, s.header)
	}
}

func (s *sheetWriter) widths(sheet string, cols int, width float64) {
	if s.err != nil || cols == 0 {
		return
	}
	last, err := excelize.ColumnNumberToName(cols)
	if err != nil {
		s.err = err
		return
	}
	s.err = s.f.SetColWidth(sheet, "A", last, width)
}
