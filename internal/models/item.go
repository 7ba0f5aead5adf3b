package models

// Item represents a single extracted budget line item ("partida").
type Item struct {
	Section        string   `json:"section,omitempty"`        // e.g. "3"
	SectionName    string   `json:"sectionName,omitempty"`    // e.g. "Cimentación"
	Subsection     string   `json:"subsection,omitempty"`     // e.g. "3.2"
	SubsectionName string   `json:"subsectionName,omitempty"`
	Code           string   `json:"code"`                     // item key, e.g. "TDC-EST-01"
	Description    string   `json:"description,omitempty"`
	Unit           string   `json:"unit,omitempty"` // e.g. "m3", "pza", "lote"
	Quantity       *float64 `json:"quantity"`
	UnitPrice      *float64 `json:"unitPrice"`
	Total          *float64 `json:"total"`
	Title          string   `json:"title,omitempty"` // document title ("Presupuesto ...")
	Date           string   `json:"date,omitempty"`  // ISO date from the document text
	SourceFile     string   `json:"sourceFile"`
}

// UnmatchedLine is a line that looked like it carried an item code but
// could not be resolved into a complete item.
type UnmatchedLine struct {
	SourceFile string `json:"sourceFile"`
	Text       string `json:"text"`
}

// Document holds everything extracted from one budget PDF.
type Document struct {
	SourceFile string   `json:"sourceFile"`
	Title      string   `json:"title,omitempty"`
	Date       string   `json:"date,omitempty"`
	Items      []Item   `json:"items"`
	Unmatched  []string `json:"unmatched,omitempty"`
}
