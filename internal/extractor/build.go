package extractor

import (
	"fmt"

	"invex/internal/config"
	"invex/internal/port"
)

// Build assembles the configured extractor stack. The returned summarizer is
// the primary provider's client, or nil when that provider cannot summarize.
func Build(cfg *config.ExtractorConfig) (port.DocumentExtractor, port.InvoiceSummarizer, error) {
	primary, err := NewExtractor(cfg.PrimaryConfig())
	if err != nil {
		return nil, nil, fmt.Errorf("building primary extractor: %w", err)
	}
	summarizer, _ := primary.(port.InvoiceSummarizer)

	switch cfg.Mode {
	case "", "single":
		return primary, summarizer, nil

	case "merge":
		sCfg := cfg.SecondaryConfig()
		if sCfg == nil {
			return nil, nil, fmt.Errorf("merge mode requires a secondary provider")
		}
		secondary, err := NewExtractor(sCfg)
		if err != nil {
			return nil, nil, fmt.Errorf("building secondary extractor: %w", err)
		}
		return NewMergeExtractor(primary, secondary), summarizer, nil

	case "fallback":
		extractors := []port.DocumentExtractor{primary}
		names := []string{cfg.Primary.Provider}
		for _, pc := range []*config.ProviderConfig{cfg.SecondaryConfig(), cfg.TertiaryConfig()} {
			if pc == nil {
				continue
			}
			e, err := NewExtractor(pc)
			if err != nil {
				return nil, nil, fmt.Errorf("building %s extractor: %w", pc.Provider, err)
			}
			extractors = append(extractors, e)
			names = append(names, pc.Provider)
		}
		return NewFallbackExtractor(extractors, names), summarizer, nil

	default:
		return nil, nil, fmt.Errorf("unknown extractor mode: %s", cfg.Mode)
	}
}
