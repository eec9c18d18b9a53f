// Command extract runs a one-shot invoice extraction: it sends the given
// document to the configured model provider, prints the structured record as
// JSON, and prints a prose summary produced by a second model call.
// Usage: extract [-csv out.csv] [-xlsx out.xlsx] [-no-summary] <document>
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"invex/internal/config"
	"invex/internal/domain"
	"invex/internal/export"
	"invex/internal/extractor"
	"invex/internal/service"

	// Register extractor providers.
	_ "invex/internal/extractor/claude"
	_ "invex/internal/extractor/gemini"
	_ "invex/internal/extractor/openai"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	csvPath := flag.String("csv", "", "also write the result as CSV to this path")
	xlsxPath := flag.String("xlsx", "", "also write the result as XLSX to this path")
	noSummary := flag.Bool("no-summary", false, "skip the summary model call")
	flag.Parse()

	if flag.NArg() != 1 {
		return fmt.Errorf("usage: extract [-csv out.csv] [-xlsx out.xlsx] [-no-summary] <document>")
	}
	path := flag.Arg(0)

	// .env is optional; the API key may already be in the environment.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if *noSummary {
		cfg.Summary.Enabled = false
	}

	ext, summarizer, err := extractor.Build(&cfg.Extractor)
	if err != nil {
		return fmt.Errorf("failed to build extractor: %w", err)
	}

	svc := service.NewExtractionService(ext, summarizer, cfg.Image, cfg.Summary)

	result, err := svc.ExtractFile(context.Background(), path)
	if err != nil {
		return fmt.Errorf("extraction failed: %w", err)
	}

	out, err := json.MarshalIndent(result.Invoice, "", "  ")
	if err != nil {
		return fmt.Errorf("rendering result: %w", err)
	}
	fmt.Println(string(out))

	if result.Summary != "" {
		fmt.Println()
		fmt.Println(result.Summary)
	}

	if *csvPath != "" {
		if err := writeCSV(*csvPath, result); err != nil {
			return err
		}
		log.Printf("wrote %s", *csvPath)
	}
	if *xlsxPath != "" {
		if err := writeXLSX(*xlsxPath, result); err != nil {
			return err
		}
		log.Printf("wrote %s", *xlsxPath)
	}

	return nil
}

func writeCSV(path string, result *domain.Extraction) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating CSV file: %w", err)
	}
	defer func() { _ = f.Close() }()

	if _, err := f.Write(export.BOM); err != nil {
		return fmt.Errorf("writing CSV BOM: %w", err)
	}
	w := export.NewCSVWriter(f)
	if err := w.WriteExtraction(result); err != nil {
		return fmt.Errorf("writing CSV: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("writing CSV: %w", err)
	}
	return nil
}

func writeXLSX(path string, result *domain.Extraction) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating XLSX file: %w", err)
	}
	defer func() { _ = f.Close() }()

	if err := export.WriteXLSX(f, result); err != nil {
		return fmt.Errorf("writing XLSX: %w", err)
	}
	return nil
}
