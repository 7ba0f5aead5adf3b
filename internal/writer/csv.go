package writer

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/osroca/presupuesto-extractor/internal/models"
)

// CSVWriter writes items to CSV with the same column layout as the
// XLSX writer.
type CSVWriter struct {
	IncludeHeader bool
}

// WriteToFile writes items to a CSV file at the given path.
func (w *CSVWriter) WriteToFile(path string, items []models.Item) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file %q: %w", path, err)
	}
	defer f.Close()

	return w.Write(f, items)
}

// Write writes items in CSV format to the given writer.
func (w *CSVWriter) Write(out io.Writer, items []models.Item) error {
	writer := csv.NewWriter(out)
	defer writer.Flush()

	if w.IncludeHeader {
		if err := writer.Write(columns); err != nil {
			return fmt.Errorf("failed to write CSV header: %w", err)
		}
	}

	for _, item := range items {
		row := []string{
			item.Section,
			item.SectionName,
			item.Subsection,
			item.SubsectionName,
			item.Code,
			item.Description,
			item.Unit,
			formatAmount(item.Quantity),
			formatAmount(item.UnitPrice),
			formatAmount(item.Total),
			item.Title,
			item.Date,
			item.SourceFile,
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	return nil
}

// formatAmount renders a nullable amount; null becomes 0 per the
// downstream contract.
func formatAmount(v *float64) string {
	if v == nil {
		return "0.00"
	}
	return strconv.FormatFloat(*v, 'f', 2, 64)
}
