package extractor_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"invex/internal/config"
	"invex/internal/extractor"
	"invex/internal/port"
	"invex/mocks"
)

func TestNewExtractor_UnknownProvider(t *testing.T) {
	_, err := extractor.NewExtractor(&config.ProviderConfig{Provider: "does-not-exist"})

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unknown extractor provider")
}

func TestNewExtractor_RegisteredProvider(t *testing.T) {
	stub := new(mocks.MockDocumentExtractor)
	extractor.RegisterProvider("factory-test-stub", func(cfg *config.ProviderConfig) (port.DocumentExtractor, error) {
		return stub, nil
	})

	e, err := extractor.NewExtractor(&config.ProviderConfig{Provider: "factory-test-stub"})

	require.NoError(t, err)
	assert.Same(t, stub, e)
}
