// Package schema validates model output against the invoice response
// contract before any value is handed to callers.
package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"invex/internal/domain"
)

// SchemaError indicates a model response that does not conform to the
// declared invoice schema.
type SchemaError struct {
	MissingFields []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("response does not conform to invoice schema; missing fields: %s",
		strings.Join(e.MissingFields, ", "))
}

var requiredInvoiceFields = []string{"total_amount", "sender", "date", "line_items"}
var requiredItemFields = []string{"description", "quantity", "unit_price", "total_price"}

// Decode validates raw model output against the invoice schema and decodes it.
// Every required field must be present and non-null; a missing field fails the
// whole decode, never a partially populated record. Values are passed through
// without transformation.
func Decode(raw json.RawMessage) (*domain.Invoice, error) {
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, &SchemaError{MissingFields: requiredInvoiceFields}
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("decoding invoice object: %w", err)
	}

	var missing []string
	for _, name := range requiredInvoiceFields {
		if isAbsent(fields[name]) {
			missing = append(missing, name)
		}
	}

	if itemsRaw, ok := fields["line_items"]; ok && !isAbsent(itemsRaw) {
		var items []map[string]json.RawMessage
		if err := json.Unmarshal(itemsRaw, &items); err != nil {
			return nil, fmt.Errorf("decoding line_items: %w", err)
		}
		for i, item := range items {
			for _, name := range requiredItemFields {
				if isAbsent(item[name]) {
					missing = append(missing, fmt.Sprintf("line_items[%d].%s", i, name))
				}
			}
		}
	}

	if len(missing) > 0 {
		return nil, &SchemaError{MissingFields: missing}
	}

	var inv domain.Invoice
	if err := json.Unmarshal(raw, &inv); err != nil {
		return nil, fmt.Errorf("decoding invoice: %w", err)
	}
	return &inv, nil
}

// DecodeConfidence decodes confidence scores, which are best-effort: a
// missing or malformed confidence block is not a schema violation.
func DecodeConfidence(raw json.RawMessage) *domain.ConfidenceScores {
	if len(raw) == 0 {
		return nil
	}
	var scores domain.ConfidenceScores
	if err := json.Unmarshal(raw, &scores); err != nil {
		return nil
	}
	return &scores
}

func isAbsent(v json.RawMessage) bool {
	return v == nil || bytes.Equal(v, []byte("null"))
}
