// Package api exposes the extractor over HTTP: a health probe and a
// multipart conversion endpoint that accepts budget PDFs and returns
// the aggregated workbook.
package api

import (
	"bytes"
	"fmt"
	"log/slog"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/osroca/presupuesto-extractor/internal/extractor"
	"github.com/osroca/presupuesto-extractor/internal/models"
	"github.com/osroca/presupuesto-extractor/internal/parser"
	"github.com/osroca/presupuesto-extractor/internal/writer"
)

const Version = "1.0.0"

const xlsxMIME = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ConvertResponse is the JSON response from /api/convertir when JSON
// output is requested, and the error envelope otherwise.
type ConvertResponse struct {
	Success   bool                   `json:"success"`
	Error     string                 `json:"error,omitempty"`
	Items     []models.Item          `json:"items"`
	Unmatched []models.UnmatchedLine `json:"unmatched,omitempty"`
	Count     int                    `json:"count"`
	Version   string                 `json:"version,omitempty"`
}

// Handler holds the HTTP handlers for the API.
type Handler struct {
	Log *slog.Logger
}

func New(log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{Log: log}
}

// Register sets up the API routes on the fiber app.
func (h *Handler) Register(app *fiber.App) {
	app.Get("/api/health", h.HandleHealth)
	app.Post("/api/convertir", h.HandleConvert)
}

func (h *Handler) HandleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "ok",
		"version": Version,
		"engine":  "fiber",
	})
}

// HandleConvert accepts one or more budget PDFs in the multipart field
// "files" and responds with the aggregated extraction as an XLSX
// attachment, CSV, or JSON depending on the "output" form value.
func (h *Handler) HandleConvert(c *fiber.Ctx) error {
	form, err := c.MultipartForm()
	if err != nil {
		return writeError(c, fiber.StatusBadRequest, fmt.Sprintf("Failed to parse form: %v", err))
	}
	files := form.File["files"]
	if len(files) == 0 {
		return writeError(c, fiber.StatusBadRequest, "No file uploaded. Use form field 'files'.")
	}

	output := strings.ToLower(c.FormValue("output", "xlsx"))
	includeHeader := c.FormValue("header") != "false"
	switch output {
	case "xlsx", "csv", "json":
	default:
		return writeError(c, fiber.StatusBadRequest, fmt.Sprintf("Unknown output format %q. Use xlsx, csv, or json.", output))
	}

	tmpDir, err := os.MkdirTemp("", "presupuesto-")
	if err != nil {
		return writeError(c, fiber.StatusInternalServerError, "Failed to create temp dir.")
	}
	defer os.RemoveAll(tmpDir)

	p := &parser.Parser{}
	var allItems []models.Item
	var allUnmatched []models.UnmatchedLine

	for _, fh := range files {
		name := filepath.Base(fh.Filename)
		if !strings.HasSuffix(strings.ToLower(name), ".pdf") {
			return writeError(c, fiber.StatusBadRequest, fmt.Sprintf("Only PDF files are supported, got %q.", name))
		}

		pdfPath := filepath.Join(tmpDir, uuid.New().String()+".pdf")
		if err := saveUpload(c, fh, pdfPath); err != nil {
			return writeError(c, fiber.StatusInternalServerError, fmt.Sprintf("Failed to save %q: %v", name, err))
		}

		pages, err := extractor.ExtractText(pdfPath)
		if err != nil {
			return writeError(c, fiber.StatusUnprocessableEntity, fmt.Sprintf("PDF extraction failed for %q: %v", name, err))
		}

		doc := p.Parse(pages, name)
		h.Log.Info("parsed document",
			"file", name,
			"pages", len(pages),
			"items", len(doc.Items),
			"unmatched", len(doc.Unmatched))

		allItems = append(allItems, doc.Items...)
		for _, ln := range doc.Unmatched {
			allUnmatched = append(allUnmatched, models.UnmatchedLine{SourceFile: name, Text: ln})
		}
	}

	if len(allItems) == 0 {
		return writeError(c, fiber.StatusBadRequest, "No line items could be extracted. Check the format of your PDFs.")
	}

	switch output {
	case "json":
		return c.JSON(ConvertResponse{
			Success:   true,
			Items:     allItems,
			Unmatched: allUnmatched,
			Count:     len(allItems),
			Version:   Version,
		})
	case "csv":
		var buf bytes.Buffer
		w := &writer.CSVWriter{IncludeHeader: includeHeader}
		if err := w.Write(&buf, allItems); err != nil {
			return writeError(c, fiber.StatusInternalServerError, fmt.Sprintf("CSV generation failed: %v", err))
		}
		c.Set(fiber.HeaderContentType, "text/csv")
		c.Set(fiber.HeaderContentDisposition, `attachment; filename="presupuesto_bd.csv"`)
		return c.Send(buf.Bytes())
	default:
		var buf bytes.Buffer
		w := &writer.XLSXWriter{}
		if err := w.Write(&buf, allItems); err != nil {
			return writeError(c, fiber.StatusInternalServerError, fmt.Sprintf("XLSX generation failed: %v", err))
		}
		c.Set(fiber.HeaderContentType, xlsxMIME)
		c.Set(fiber.HeaderContentDisposition, `attachment; filename="presupuesto_bd.xlsx"`)
		return c.Send(buf.Bytes())
	}
}

func saveUpload(c *fiber.Ctx, fh *multipart.FileHeader, path string) error {
	return c.SaveFile(fh, path)
}

func writeError(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(ConvertResponse{
		Success: false,
		Error:   msg,
	})
}
