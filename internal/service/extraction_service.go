package service

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"

	"invex/internal/config"
	"invex/internal/domain"
	"invex/internal/port"
	"invex/internal/preprocess"
	"invex/internal/schema"
)

// ExtractionService turns a document into a structured invoice record plus
// an optional prose summary.
type ExtractionService interface {
	ExtractFile(ctx context.Context, path string) (*domain.Extraction, error)
	Extract(ctx context.Context, data []byte) (*domain.Extraction, error)
}

type extractionService struct {
	extractor  port.DocumentExtractor
	summarizer port.InvoiceSummarizer
	imageCfg   config.ImageConfig
	summaryCfg config.SummaryConfig
}

// NewExtractionService creates an ExtractionService. summarizer may be nil,
// in which case no summary call is made.
func NewExtractionService(
	extractor port.DocumentExtractor,
	summarizer port.InvoiceSummarizer,
	imageCfg config.ImageConfig,
	summaryCfg config.SummaryConfig,
) ExtractionService {
	return &extractionService{
		extractor:  extractor,
		summarizer: summarizer,
		imageCfg:   imageCfg,
		summaryCfg: summaryCfg,
	}
}

// ExtractFile reads the document at path and extracts it. An unreadable path
// fails here, before any network call is attempted.
func (s *extractionService) ExtractFile(ctx context.Context, path string) (*domain.Extraction, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading document: %w", err)
	}
	return s.Extract(ctx, data)
}

// Extract runs one extraction over the document bytes. Each call issues its
// own remote request; there is no caching and no deduplication of concurrent
// calls for the same input.
func (s *extractionService) Extract(ctx context.Context, data []byte) (*domain.Extraction, error) {
	if s.extractor == nil {
		return nil, domain.ErrNoExtractor
	}
	if len(data) == 0 {
		return nil, domain.ErrEmptyFile
	}
	if maxBytes := s.imageCfg.MaxFileSizeMB * 1024 * 1024; maxBytes > 0 && int64(len(data)) > maxBytes {
		return nil, domain.ErrFileTooLarge
	}

	contentType := http.DetectContentType(data)
	if !domain.AllowedContentTypes[contentType] {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedFileType, contentType)
	}

	data, err := preprocess.Downscale(data, contentType, s.imageCfg.MaxDimension)
	if err != nil {
		return nil, fmt.Errorf("preprocessing image: %w", err)
	}

	out, err := s.extractor.Extract(ctx, port.ExtractInput{
		FileBytes:   data,
		ContentType: contentType,
	})
	if err != nil {
		return nil, fmt.Errorf("extracting document: %w", err)
	}

	inv, err := schema.Decode(out.StructuredData)
	if err != nil {
		return nil, err
	}

	ext := &domain.Extraction{
		ID:              uuid.New(),
		Invoice:         *inv,
		Confidence:      schema.DecodeConfidence(out.ConfidenceScores),
		ModelUsed:       out.ModelUsed,
		SecondaryModel:  out.SecondaryModel,
		FieldProvenance: out.FieldProvenance,
		ContentType:     contentType,
		CreatedAt:       time.Now().UTC(),
	}

	if s.summaryCfg.Enabled && s.summarizer != nil {
		summary, err := s.summarizer.Summarize(ctx, inv)
		if err != nil {
			// The structured record is still useful without a summary.
			log.Printf("extractionService: summary call failed: %v", err)
		} else {
			ext.Summary = summary
		}
	}

	return ext, nil
}
