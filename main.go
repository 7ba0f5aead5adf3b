package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/osroca/presupuesto-extractor/internal/api"
	"github.com/osroca/presupuesto-extractor/internal/config"
	"github.com/osroca/presupuesto-extractor/internal/extractor"
	"github.com/osroca/presupuesto-extractor/internal/models"
	"github.com/osroca/presupuesto-extractor/internal/parser"
	"github.com/osroca/presupuesto-extractor/internal/writer"
)

func main() {
	// CLI flags
	outputFlag := flag.String("output", "", "Output file path (defaults to presupuesto_bd.<format>)")
	formatFlag := flag.String("format", "xlsx", "Output format: xlsx or csv")
	headerFlag := flag.Bool("header", true, "Include the column header row in CSV output")
	unmatchedFlag := flag.Bool("unmatched", false, "Print unresolved code-like lines for manual review")
	serveFlag := flag.Bool("serve", false, "Run the HTTP API instead of converting files")
	versionFlag := flag.Bool("version", false, "Print version and exit")
	helpFlag := flag.Bool("help", false, "Show usage help")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `Construction Budget PDF to XLSX Converter

Extracts budget line items (secciones, subsecciones, claves, unidades,
cantidades, precios) from construction budget PDFs and writes them into
a single spreadsheet ready for database import.

Usage:
  presupuesto-extractor [flags] <input.pdf> [input2.pdf ...]
  presupuesto-extractor -serve

Flags:
`)
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  # Convert one budget
  presupuesto-extractor presupuesto.pdf

  # Aggregate several budgets into one workbook
  presupuesto-extractor -output=obra_2024.xlsx torre_a.pdf torre_b.pdf

  # CSV output, reviewing lines the parser could not resolve
  presupuesto-extractor -format=csv -unmatched presupuesto.pdf

  # Run the upload API (PORT env var, default 8000)
  presupuesto-extractor -serve
`)
	}

	flag.Parse()

	if *versionFlag {
		fmt.Printf("presupuesto-extractor v%s\n", api.Version)
		os.Exit(0)
	}

	if *serveFlag {
		serve()
		return
	}

	if *helpFlag || flag.NArg() == 0 {
		flag.Usage()
		os.Exit(0)
	}

	format := strings.ToLower(*formatFlag)
	if format != "xlsx" && format != "csv" {
		fatalf("Unknown format %q. Supported: xlsx, csv\n", *formatFlag)
	}

	items, unmatched, err := processFiles(flag.Args())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if *unmatchedFlag && len(unmatched) > 0 {
		fmt.Printf("Unresolved code-like lines (%d):\n", len(unmatched))
		for _, u := range unmatched {
			fmt.Printf("  %s: %s\n", u.SourceFile, u.Text)
		}
	}

	if len(items) == 0 {
		fatalf("No line items could be extracted. Check the format of your PDFs.\n")
	}

	outPath := *outputFlag
	if outPath == "" {
		outPath = "presupuesto_bd." + format
	}

	if format == "csv" {
		w := &writer.CSVWriter{IncludeHeader: *headerFlag}
		err = w.WriteToFile(outPath, items)
	} else {
		w := &writer.XLSXWriter{}
		err = w.WriteToFile(outPath, items)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Wrote %d item(s) to %s\n", len(items), outPath)
}

// processFiles extracts and parses each input PDF independently and
// aggregates the results in input order.
func processFiles(inputPaths []string) ([]models.Item, []models.UnmatchedLine, error) {
	p := &parser.Parser{}
	var items []models.Item
	var unmatched []models.UnmatchedLine

	for _, inputPath := range inputPaths {
		if _, err := os.Stat(inputPath); os.IsNotExist(err) {
			return nil, nil, fmt.Errorf("input file not found: %s", inputPath)
		}
		if ext := strings.ToLower(filepath.Ext(inputPath)); ext != ".pdf" {
			return nil, nil, fmt.Errorf("expected .pdf file, got %q", ext)
		}

		fmt.Printf("Processing: %s\n", inputPath)

		pages, err := extractor.ExtractText(inputPath)
		if err != nil {
			return nil, nil, fmt.Errorf("PDF extraction failed for %s: %w", inputPath, err)
		}
		fmt.Printf("  Extracted text from %d page(s)\n", len(pages))

		doc := p.Parse(pages, filepath.Base(inputPath))
		fmt.Printf("  Found %d item(s)", len(doc.Items))
		if doc.Title != "" {
			fmt.Printf("  [%s]", doc.Title)
		}
		fmt.Println()
		if len(doc.Unmatched) > 0 {
			fmt.Printf("  %d line(s) could not be resolved\n", len(doc.Unmatched))
		}

		items = append(items, doc.Items...)
		for _, ln := range doc.Unmatched {
			unmatched = append(unmatched, models.UnmatchedLine{SourceFile: doc.SourceFile, Text: ln})
		}
	}

	return items, unmatched, nil
}

func serve() {
	cfg := config.Load()
	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	app := fiber.New(fiber.Config{
		AppName:   "presupuesto-extractor " + api.Version,
		BodyLimit: cfg.MaxUploadBytes,
	})

	h := api.New(log)
	h.Register(app)

	if cfg.StaticDir != "" {
		app.Static("/", cfg.StaticDir)
	}

	log.Info("starting server", "port", cfg.Port, "bodyLimit", cfg.MaxUploadBytes)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func fatalf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format, args...)
	os.Exit(1)
}
