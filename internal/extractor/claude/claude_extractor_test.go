package claude_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"invex/internal/config"
	"invex/internal/domain"
	"invex/internal/extractor"
	"invex/internal/extractor/claude"
	"invex/internal/port"
)

func newTestExtractor(serverURL string) *claude.Extractor {
	cfg := &config.ProviderConfig{
		Provider:     "claude",
		APIKey:       "test-api-key",
		DefaultModel: "claude-sonnet-4-20250514",
		TimeoutSecs:  30,
	}
	return claude.NewExtractorWithEndpoint(cfg, serverURL)
}

func TestClaudeExtractor_Extract_Image_Success(t *testing.T) {
	responseBody := map[string]interface{}{
		"content": []map[string]interface{}{
			{
				"type": "text",
				"text": `{"data":{"total_amount":150.75,"sender":"ACME Corp","date":"15 January 2024","line_items":[{"description":"Widget","quantity":3,"unit_price":50.25,"total_price":150.75}]},"confidence_scores":{"total_amount":0.95,"sender":0.9,"date":0.85,"line_items":[{"description":0.9,"quantity":0.9,"unit_price":0.9,"total_price":0.9}]}}`,
			},
		},
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Verify request headers
		assert.Equal(t, "test-api-key", r.Header.Get("x-api-key"))
		assert.Equal(t, "2023-06-01", r.Header.Get("anthropic-version"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		// Verify request body
		var reqBody map[string]interface{}
		err := json.NewDecoder(r.Body).Decode(&reqBody)
		assert.NoError(t, err)
		assert.Equal(t, "claude-sonnet-4-20250514", reqBody["model"])
		assert.Equal(t, float64(8192), reqBody["max_tokens"])

		messages := reqBody["messages"].([]interface{})
		assert.Len(t, messages, 1)
		msg := messages[0].(map[string]interface{})
		assert.Equal(t, "user", msg["role"])

		content := msg["content"].([]interface{})
		assert.Len(t, content, 2)

		// First block: base64 image
		imgBlock := content[0].(map[string]interface{})
		assert.Equal(t, "image", imgBlock["type"])
		source := imgBlock["source"].(map[string]interface{})
		assert.Equal(t, "base64", source["type"])
		assert.Equal(t, "image/png", source["media_type"])

		// Second block: text prompt
		textBlock := content[1].(map[string]interface{})
		assert.Equal(t, "text", textBlock["type"])

		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(responseBody)
	}))
	defer server.Close()

	e := newTestExtractor(server.URL)

	result, err := e.Extract(context.Background(), port.ExtractInput{
		FileBytes:   []byte("fake png bytes"),
		ContentType: "image/png",
	})

	assert.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, "claude-sonnet-4-20250514", result.ModelUsed)
	assert.NotEmpty(t, result.PromptUsed)

	// Fields pass through exactly, with no transformation
	var inv domain.Invoice
	require.NoError(t, json.Unmarshal(result.StructuredData, &inv))
	assert.Equal(t, 150.75, inv.TotalAmount)
	assert.Equal(t, "ACME Corp", inv.Sender)
	assert.Equal(t, "15 January 2024", inv.Date)
	require.Len(t, inv.LineItems, 1)
	assert.Equal(t, "Widget", inv.LineItems[0].Description)
	assert.Equal(t, 3, inv.LineItems[0].Quantity)

	var scores domain.ConfidenceScores
	require.NoError(t, json.Unmarshal(result.ConfidenceScores, &scores))
	assert.Equal(t, 0.95, scores.TotalAmount)
}

func TestClaudeExtractor_Extract_PDF_Success(t *testing.T) {
	responseBody := map[string]interface{}{
		"content": []map[string]interface{}{
			{
				"type": "text",
				"text": `{"data":{"total_amount":10,"sender":"ACME","date":"01-02-2024","line_items":[]},"confidence_scores":{}}`,
			},
		},
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var reqBody map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&reqBody))

		messages := reqBody["messages"].([]interface{})
		msg := messages[0].(map[string]interface{})
		content := msg["content"].([]interface{})

		docBlock := content[0].(map[string]interface{})
		assert.Equal(t, "document", docBlock["type"])
		source := docBlock["source"].(map[string]interface{})
		assert.Equal(t, "application/pdf", source["media_type"])

		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(responseBody)
	}))
	defer server.Close()

	e := newTestExtractor(server.URL)

	result, err := e.Extract(context.Background(), port.ExtractInput{
		FileBytes:   []byte("%PDF-1.4 test content"),
		ContentType: "application/pdf",
	})

	assert.NoError(t, err)
	assert.NotNil(t, result)
}

func TestClaudeExtractor_Extract_UnsupportedContentType(t *testing.T) {
	e := newTestExtractor("http://unused.invalid")

	result, err := e.Extract(context.Background(), port.ExtractInput{
		FileBytes:   []byte("plain text"),
		ContentType: "text/plain",
	})

	assert.Error(t, err)
	assert.Nil(t, result)
	assert.Contains(t, err.Error(), "unsupported content type")
}

func TestClaudeExtractor_Extract_RateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "90")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"type":"rate_limit_error"}}`))
	}))
	defer server.Close()

	e := newTestExtractor(server.URL)

	result, err := e.Extract(context.Background(), port.ExtractInput{
		FileBytes:   []byte("fake"),
		ContentType: "image/jpeg",
	})

	assert.Error(t, err)
	assert.Nil(t, result)

	var rlErr *extractor.RateLimitError
	require.ErrorAs(t, err, &rlErr)
	assert.Equal(t, "claude", rlErr.Provider)
	assert.Equal(t, 90.0, rlErr.RetryAfter.Seconds())
}

func TestClaudeExtractor_Extract_Truncated(t *testing.T) {
	responseBody := map[string]interface{}{
		"content": []map[string]interface{}{
			{"type": "text", "text": `{"data":{"total_amount":1`},
		},
		"stop_reason": "max_tokens",
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(responseBody)
	}))
	defer server.Close()

	e := newTestExtractor(server.URL)

	result, err := e.Extract(context.Background(), port.ExtractInput{
		FileBytes:   []byte("fake"),
		ContentType: "image/png",
	})

	assert.Error(t, err)
	assert.Nil(t, result)
	assert.Contains(t, err.Error(), "output truncated")
}

func TestClaudeExtractor_Extract_MalformedModelOutput(t *testing.T) {
	responseBody := map[string]interface{}{
		"content": []map[string]interface{}{
			{"type": "text", "text": `Sure! Here is the JSON you asked for:`},
		},
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(responseBody)
	}))
	defer server.Close()

	e := newTestExtractor(server.URL)

	result, err := e.Extract(context.Background(), port.ExtractInput{
		FileBytes:   []byte("fake"),
		ContentType: "image/png",
	})

	assert.Error(t, err)
	assert.Nil(t, result)
	assert.Contains(t, err.Error(), "parsing LLM JSON output")
}

func TestClaudeExtractor_Summarize_Success(t *testing.T) {
	responseBody := map[string]interface{}{
		"content": []map[string]interface{}{
			{"type": "text", "text": "ACME Corp billed 150.75 on 15 January 2024 for three widgets."},
		},
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var reqBody map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&reqBody))

		// Text-only content, no document block
		messages := reqBody["messages"].([]interface{})
		msg := messages[0].(map[string]interface{})
		content := msg["content"].([]interface{})
		require.Len(t, content, 1)
		textBlock := content[0].(map[string]interface{})
		assert.Equal(t, "text", textBlock["type"])
		assert.Contains(t, textBlock["text"], "ACME Corp")

		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(responseBody)
	}))
	defer server.Close()

	e := newTestExtractor(server.URL)

	summary, err := e.Summarize(context.Background(), &domain.Invoice{
		TotalAmount: 150.75,
		Sender:      "ACME Corp",
		Date:        "15 January 2024",
	})

	assert.NoError(t, err)
	assert.Equal(t, "ACME Corp billed 150.75 on 15 January 2024 for three widgets.", summary)
}
