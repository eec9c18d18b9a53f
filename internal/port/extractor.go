package port

import (
	"context"
	"encoding/json"

	"invex/internal/domain"
)

// ExtractInput carries the document bytes for one extraction call.
type ExtractInput struct {
	FileBytes   []byte
	ContentType string
}

// ExtractOutput contains the raw structured result from an LLM extractor.
type ExtractOutput struct {
	StructuredData   json.RawMessage
	ConfidenceScores json.RawMessage
	ModelUsed        string
	PromptUsed       string
	FieldProvenance  map[string]string // which model provided each field (dual extract mode)
	SecondaryModel   string            // secondary model used (dual extract mode)
}

// DocumentExtractor abstracts an LLM-backed invoice extractor. Each call
// issues exactly one outbound request per underlying provider; there is no
// caching and the remote model is non-deterministic, so repeated calls with
// identical input may return different content.
type DocumentExtractor interface {
	Extract(ctx context.Context, input ExtractInput) (*ExtractOutput, error)
}

// InvoiceSummarizer produces a short prose summary of an extracted invoice
// via a second model call.
type InvoiceSummarizer interface {
	Summarize(ctx context.Context, inv *domain.Invoice) (string, error)
}
