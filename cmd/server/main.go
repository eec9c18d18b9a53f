package main

import (
	"fmt"
	"log"

	"github.com/joho/godotenv"

	"invex/internal/config"
	"invex/internal/extractor"
	"invex/internal/handler"
	"invex/internal/router"
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
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	ext, summarizer, err := extractor.Build(&cfg.Extractor)
	if err != nil {
		return fmt.Errorf("failed to build extractor: %w", err)
	}

	extractionSvc := service.NewExtractionService(ext, summarizer, cfg.Image, cfg.Summary)

	extractionH := handler.NewExtractionHandler(extractionSvc)
	healthH := handler.NewHealthHandler()

	r := router.Setup(cfg.CORS.AllowedOrigins, extractionH, healthH)

	log.Printf("Server starting on %s", cfg.Server.Port)
	if err := r.Run(cfg.Server.Port); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}

	return nil
}
