package writer

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/osroca/presupuesto-extractor/internal/models"
)

func f(v float64) *float64 { return &v }

func sampleItems() []models.Item {
	return []models.Item{
		{
			Section:     "1",
			SectionName: "Preliminares",
			Code:        "TDC-PRE-01",
			Description: "Limpieza y trazo del terreno",
			Unit:        "m2",
			Quantity:    f(450),
			UnitPrice:   f(35),
			Total:       f(15750),
			Title:       "Presupuesto de obra",
			Date:        "2023-03-14",
			SourceFile:  "torre.pdf",
		},
		{
			Section:        "2",
			SectionName:    "Cimentación",
			Subsection:     "2.1",
			SubsectionName: "Zapatas",
			Code:           "EST-01",
			Unit:           "kg",
			SourceFile:     "torre.pdf",
		},
	}
}

func TestCSVWriter_Write(t *testing.T) {
	var buf bytes.Buffer
	w := &CSVWriter{IncludeHeader: true}
	if err := w.Write(&buf, sampleItems()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("failed to re-read CSV: %v", err)
	}

	if len(records) != 3 {
		t.Fatalf("rows: got %d, want 3", len(records))
	}

	if got := strings.Join(records[0], ","); got != strings.Join(columns, ",") {
		t.Errorf("header: got %q", got)
	}

	row := records[1]
	if row[0] != "1" || row[4] != "TDC-PRE-01" || row[6] != "m2" {
		t.Errorf("row 1: got %v", row)
	}
	if row[7] != "450.00" || row[8] != "35.00" || row[9] != "15750.00" {
		t.Errorf("row 1 amounts: got %v", row[7:10])
	}
	if row[10] != "Presupuesto de obra" || row[11] != "2023-03-14" || row[12] != "torre.pdf" {
		t.Errorf("row 1 context: got %v", row[10:])
	}

	// Null amounts and blank text fields
	row = records[2]
	if row[7] != "0.00" || row[8] != "0.00" || row[9] != "0.00" {
		t.Errorf("row 2 null amounts: got %v", row[7:10])
	}
	if row[5] != "" || row[10] != "" || row[11] != "" {
		t.Errorf("row 2 blanks: got %v", row)
	}
	if row[2] != "2.1" || row[3] != "Zapatas" {
		t.Errorf("row 2 subsection: got (%q, %q)", row[2], row[3])
	}
}

func TestCSVWriter_NoHeader(t *testing.T) {
	var buf bytes.Buffer
	w := &CSVWriter{IncludeHeader: false}
	if err := w.Write(&buf, sampleItems()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("failed to re-read CSV: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("rows: got %d, want 2", len(records))
	}
	if records[0][4] != "TDC-PRE-01" {
		t.Errorf("first row: got %v", records[0])
	}
}

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		in   *float64
		want string
	}{
		{nil, "0.00"},
		{f(0), "0.00"},
		{f(28.5), "28.50"},
		{f(15750), "15750.00"},
	}

	for _, tt := range tests {
		if got := formatAmount(tt.in); got != tt.want {
			t.Errorf("formatAmount(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
