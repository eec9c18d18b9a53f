package extractor

import (
	"encoding/json"
	"fmt"

	"invex/internal/domain"
)

// BuildInvoicePrompt returns the extraction prompt for invoice documents.
func BuildInvoicePrompt() string {
	return `You are a document data extraction assistant. Analyze the provided invoice document and extract its data into the following JSON structure.

IMPORTANT INSTRUCTIONS:
- Extract EVERY line item from the invoice. Do not skip, summarize, or omit any items.
- Copy the date exactly as it appears on the document; do not reformat it.
- "quantity" must be a whole number. "unit_price", "total_price" and "total_amount" are plain numbers with no currency symbols.

Return ONLY valid JSON with no markdown formatting, no code fences, no explanation, just the raw JSON object.

Return two top-level keys: "data" and "confidence_scores".

The "data" object must follow this schema:
{
  "total_amount": 0,
  "sender": "",
  "date": "",
  "line_items": [
    {
      "description": "",
      "quantity": 0,
      "unit_price": 0,
      "total_price": 0
    }
  ]
}

The "confidence_scores" object should mirror the "data" structure but with float values between 0.0 and 1.0 indicating your confidence for each extracted field. Use 0.0 for fields not found in the document.

Every field in the schema must be present in your output. If a field is not present in the document, use empty string for text and 0 for numbers.`
}

// BuildSummaryPrompt returns the prompt for the post-extraction summary call.
func BuildSummaryPrompt(inv *domain.Invoice) (string, error) {
	data, err := json.Marshal(inv)
	if err != nil {
		return "", fmt.Errorf("marshaling invoice: %w", err)
	}
	return fmt.Sprintf(`The following JSON is data extracted from an invoice:

%s

Write a short plain-text summary of this invoice in a few sentences: who sent it, when, what was charged, and the total amount. Return only the summary text, with no markdown formatting and no preamble.`, data), nil
}
