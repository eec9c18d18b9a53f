package domain

import (
	"time"

	"github.com/google/uuid"
)

// LineItem is one itemized charge within an invoice.
// No relationship between Quantity, UnitPrice and TotalPrice is enforced;
// the model may return inconsistent values and they are passed through as-is.
type LineItem struct {
	Description string  `json:"description"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	TotalPrice  float64 `json:"total_price"`
}

// Invoice is the structured record extracted from a document.
// Date is free-form text; no calendar format is enforced.
type Invoice struct {
	TotalAmount float64    `json:"total_amount"`
	Sender      string     `json:"sender"`
	Date        string     `json:"date"`
	LineItems   []LineItem `json:"line_items"`
}

// LineItemConfidence mirrors LineItem with per-field confidence in [0,1].
type LineItemConfidence struct {
	Description float64 `json:"description"`
	Quantity    float64 `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	TotalPrice  float64 `json:"total_price"`
}

// ConfidenceScores mirrors Invoice with per-field confidence in [0,1].
// 0.0 means the model did not find the field in the document.
type ConfidenceScores struct {
	TotalAmount float64              `json:"total_amount"`
	Sender      float64              `json:"sender"`
	Date        float64              `json:"date"`
	LineItems   []LineItemConfidence `json:"line_items"`
}

// Extraction is the request-scoped result of one extraction run. It has no
// persistence and is discarded after being returned or printed.
type Extraction struct {
	ID              uuid.UUID         `json:"id"`
	Invoice         Invoice           `json:"invoice"`
	Confidence      *ConfidenceScores `json:"confidence,omitempty"`
	Summary         string            `json:"summary,omitempty"`
	ModelUsed       string            `json:"model_used"`
	SecondaryModel  string            `json:"secondary_model,omitempty"`
	FieldProvenance map[string]string `json:"field_provenance,omitempty"`
	ContentType     string            `json:"content_type"`
	CreatedAt       time.Time         `json:"created_at"`
}

// AllowedContentTypes lists the document content types extractors accept.
var AllowedContentTypes = map[string]bool{
	"application/pdf": true,
	"image/jpeg":      true,
	"image/png":       true,
}
