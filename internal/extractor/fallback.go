package extractor

import (
	"context"
	"errors"
	"fmt"
	"log"

	"invex/internal/port"
)

// FallbackExtractor tries extractors in order until one succeeds. Each
// provider is attempted at most once per call; there is no retry of a failed
// provider and no backoff state between calls.
// It implements port.DocumentExtractor.
type FallbackExtractor struct {
	extractors []port.DocumentExtractor
	names      []string
}

// NewFallbackExtractor creates a FallbackExtractor from an ordered list of
// extractors and their names.
func NewFallbackExtractor(extractors []port.DocumentExtractor, names []string) *FallbackExtractor {
	return &FallbackExtractor{
		extractors: extractors,
		names:      names,
	}
}

func (f *FallbackExtractor) Extract(ctx context.Context, input port.ExtractInput) (*port.ExtractOutput, error) {
	var lastErr error
	allRateLimited := len(f.extractors) > 0
	maxRetryAfter := 0

	for i, e := range f.extractors {
		out, err := e.Extract(ctx, input)
		if err == nil {
			return out, nil
		}

		log.Printf("extractor.FallbackExtractor: %s failed: %v", f.names[i], err)
		lastErr = err

		var rlErr *RateLimitError
		if errors.As(err, &rlErr) {
			if secs := int(rlErr.RetryAfter.Seconds()); secs > maxRetryAfter {
				maxRetryAfter = secs
			}
		} else {
			allRateLimited = false
		}

		if ctx.Err() != nil {
			return nil, fmt.Errorf("extraction canceled: %w", ctx.Err())
		}
	}

	if lastErr == nil {
		return nil, errors.New("no extractors configured")
	}

	if allRateLimited {
		return nil, NewRateLimitError("all", fmt.Errorf("all extractors rate limited"), maxRetryAfter)
	}

	return nil, fmt.Errorf("all extractors failed: %w", lastErr)
}
