package extractor_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"invex/internal/domain"
	"invex/internal/extractor"
	"invex/internal/port"
	"invex/mocks"
)

func mergeOutput(model string, data, conf string) *port.ExtractOutput {
	return &port.ExtractOutput{
		StructuredData:   json.RawMessage(data),
		ConfidenceScores: json.RawMessage(conf),
		ModelUsed:        model,
		PromptUsed:       "test prompt",
	}
}

func decodeInvoice(t *testing.T, raw json.RawMessage) domain.Invoice {
	t.Helper()
	var inv domain.Invoice
	require.NoError(t, json.Unmarshal(raw, &inv))
	return inv
}

func TestMergeExtractor_SecondaryFillsMissingField(t *testing.T) {
	e1 := new(mocks.MockDocumentExtractor)
	e2 := new(mocks.MockDocumentExtractor)

	input := port.ExtractInput{FileBytes: []byte("test"), ContentType: "image/png"}
	e1.On("Extract", mock.Anything, input).Return(mergeOutput("claude",
		`{"total_amount":120.5,"sender":"","date":"01-02-2024","line_items":[]}`,
		`{"total_amount":0.9,"sender":0.0,"date":0.8}`), nil)
	e2.On("Extract", mock.Anything, input).Return(mergeOutput("gemini",
		`{"total_amount":120.5,"sender":"ACME Corp","date":"01-02-2024","line_items":[]}`,
		`{"total_amount":0.85,"sender":0.95,"date":0.8}`), nil)

	me := extractor.NewMergeExtractor(e1, e2)

	result, err := me.Extract(context.Background(), input)

	require.NoError(t, err)
	require.NotNil(t, result)

	inv := decodeInvoice(t, result.StructuredData)
	assert.Equal(t, "ACME Corp", inv.Sender)
	assert.Equal(t, 120.5, inv.TotalAmount)
	assert.Equal(t, "claude", result.ModelUsed)
	assert.Equal(t, "gemini", result.SecondaryModel)
	assert.Equal(t, "secondary", result.FieldProvenance["sender"])
	assert.Equal(t, "agree", result.FieldProvenance["total_amount"])
}

func TestMergeExtractor_LongerLineItemListWins(t *testing.T) {
	e1 := new(mocks.MockDocumentExtractor)
	e2 := new(mocks.MockDocumentExtractor)

	input := port.ExtractInput{FileBytes: []byte("test"), ContentType: "image/png"}
	e1.On("Extract", mock.Anything, input).Return(mergeOutput("claude",
		`{"total_amount":30,"sender":"ACME","date":"01-02-2024","line_items":[{"description":"Widget","quantity":1,"unit_price":30,"total_price":30}]}`,
		`{}`), nil)
	e2.On("Extract", mock.Anything, input).Return(mergeOutput("gemini",
		`{"total_amount":30,"sender":"ACME","date":"01-02-2024","line_items":[{"description":"Widget","quantity":1,"unit_price":10,"total_price":10},{"description":"Bolt","quantity":2,"unit_price":10,"total_price":20}]}`,
		`{}`), nil)

	me := extractor.NewMergeExtractor(e1, e2)

	result, err := me.Extract(context.Background(), input)

	require.NoError(t, err)
	inv := decodeInvoice(t, result.StructuredData)
	assert.Len(t, inv.LineItems, 2)
	assert.Equal(t, "secondary", result.FieldProvenance["line_items"])
}

func TestMergeExtractor_DisagreementPrefersHigherConfidence(t *testing.T) {
	e1 := new(mocks.MockDocumentExtractor)
	e2 := new(mocks.MockDocumentExtractor)

	input := port.ExtractInput{FileBytes: []byte("test"), ContentType: "image/png"}
	e1.On("Extract", mock.Anything, input).Return(mergeOutput("claude",
		`{"total_amount":100,"sender":"ACNE Corp","date":"01-02-2024","line_items":[]}`,
		`{"total_amount":0.9,"sender":0.4,"date":0.9}`), nil)
	e2.On("Extract", mock.Anything, input).Return(mergeOutput("gemini",
		`{"total_amount":100,"sender":"ACME Corp","date":"01-02-2024","line_items":[]}`,
		`{"total_amount":0.9,"sender":0.95,"date":0.9}`), nil)

	me := extractor.NewMergeExtractor(e1, e2)

	result, err := me.Extract(context.Background(), input)

	require.NoError(t, err)
	inv := decodeInvoice(t, result.StructuredData)
	assert.Equal(t, "ACME Corp", inv.Sender)
	assert.Equal(t, "secondary_confidence", result.FieldProvenance["sender"])
}

func TestMergeExtractor_PrimaryFails_UsesSecondary(t *testing.T) {
	e1 := new(mocks.MockDocumentExtractor)
	e2 := new(mocks.MockDocumentExtractor)

	input := port.ExtractInput{FileBytes: []byte("test"), ContentType: "image/png"}
	e1.On("Extract", mock.Anything, input).Return(nil, errors.New("claude down"))
	e2.On("Extract", mock.Anything, input).Return(mergeOutput("gemini",
		`{"total_amount":10,"sender":"ACME","date":"01-02-2024","line_items":[]}`, `{}`), nil)

	me := extractor.NewMergeExtractor(e1, e2)

	result, err := me.Extract(context.Background(), input)

	require.NoError(t, err)
	assert.Equal(t, "gemini", result.ModelUsed)
	assert.Equal(t, "secondary_only", result.FieldProvenance["_source"])
}

func TestMergeExtractor_BothFail(t *testing.T) {
	e1 := new(mocks.MockDocumentExtractor)
	e2 := new(mocks.MockDocumentExtractor)

	input := port.ExtractInput{FileBytes: []byte("test"), ContentType: "image/png"}
	e1.On("Extract", mock.Anything, input).Return(nil, errors.New("claude down"))
	e2.On("Extract", mock.Anything, input).Return(nil, errors.New("gemini down"))

	me := extractor.NewMergeExtractor(e1, e2)

	result, err := me.Extract(context.Background(), input)

	assert.Error(t, err)
	assert.Nil(t, result)
	assert.Contains(t, err.Error(), "both extractors failed")
}
