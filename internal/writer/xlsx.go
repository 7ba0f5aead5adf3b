// Package writer serializes extracted budget items into the fixed
// column layout expected by the downstream budget database import.
package writer

import (
	"fmt"
	"io"
	"os"

	"github.com/xuri/excelize/v2"

	"github.com/osroca/presupuesto-extractor/internal/models"
)

// Column order is part of the downstream contract; do not reorder.
var columns = []string{
	"seccion", "seccion_nombre", "subseccion", "subseccion_nombre",
	"clave", "descripcion", "unidad", "cantidad", "precio_unitario",
	"total", "titulo", "fecha", "archivo",
}

const sheetName = "BD"

// XLSXWriter writes items to an Excel workbook with a single BD sheet.
type XLSXWriter struct{}

// WriteToFile writes the workbook to the given path.
func (w *XLSXWriter) WriteToFile(path string, items []models.Item) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file %q: %w", path, err)
	}
	defer f.Close()

	return w.Write(f, items)
}

// Write writes the workbook to the given writer. Numeric cells default
// to 0 when the source field is null; text cells are left blank.
func (w *XLSXWriter) Write(out io.Writer, items []models.Item) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return fmt.Errorf("failed to set up sheet: %w", err)
	}

	boldStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	for i, h := range columns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheetName, cell, h); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
	}
	lastHeaderCell, _ := excelize.CoordinatesToCellName(len(columns), 1)
	if err := f.SetCellStyle(sheetName, "A1", lastHeaderCell, boldStyle); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}

	for r, item := range items {
		row := r + 2
		set := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheetName, cell, v)
		}
		set(1, item.Section)
		set(2, item.SectionName)
		set(3, item.Subsection)
		set(4, item.SubsectionName)
		set(5, item.Code)
		set(6, item.Description)
		set(7, item.Unit)
		set(8, numOrZero(item.Quantity))
		set(9, numOrZero(item.UnitPrice))
		set(10, numOrZero(item.Total))
		set(11, item.Title)
		set(12, item.Date)
		set(13, item.SourceFile)
	}

	rows := len(items)
	if rows < 1 {
		rows = 1
	}
	lastCell, _ := excelize.CoordinatesToCellName(len(columns), rows+1)
	if err := f.AutoFilter(sheetName, "A1:"+lastCell, nil); err != nil {
		return fmt.Errorf("failed to set autofilter: %w", err)
	}
	if err := f.SetPanes(sheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("failed to freeze header: %w", err)
	}
	if err := f.SetColWidth(sheetName, "A", "M", 18); err != nil {
		return fmt.Errorf("failed to set column widths: %w", err)
	}

	if err := f.Write(out); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func numOrZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
