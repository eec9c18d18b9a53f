package extractor

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"

	"invex/internal/domain"
	"invex/internal/port"
)

// MergeExtractor wraps two DocumentExtractors, runs both in parallel, and
// merges their results field by field, preferring the higher-confidence value.
type MergeExtractor struct {
	primary   port.DocumentExtractor
	secondary port.DocumentExtractor
}

// NewMergeExtractor creates a MergeExtractor from primary and secondary extractors.
func NewMergeExtractor(primary, secondary port.DocumentExtractor) *MergeExtractor {
	return &MergeExtractor{primary: primary, secondary: secondary}
}

func (m *MergeExtractor) Extract(ctx context.Context, input port.ExtractInput) (*port.ExtractOutput, error) {
	type result struct {
		output *port.ExtractOutput
		err    error
	}

	var wg sync.WaitGroup
	primaryCh := make(chan result, 1)
	secondaryCh := make(chan result, 1)

	wg.Add(2)
	go func() {
		defer wg.Done()
		out, err := m.primary.Extract(ctx, input)
		primaryCh <- result{out, err}
	}()
	go func() {
		defer wg.Done()
		out, err := m.secondary.Extract(ctx, input)
		secondaryCh <- result{out, err}
	}()

	wg.Wait()
	close(primaryCh)
	close(secondaryCh)

	pResult := <-primaryCh
	sResult := <-secondaryCh

	// Both failed
	if pResult.err != nil && sResult.err != nil {
		return nil, fmt.Errorf("both extractors failed: primary: %v; secondary: %v", pResult.err, sResult.err)
	}

	// Only secondary succeeded
	if pResult.err != nil {
		log.Printf("extractor.MergeExtractor: primary extractor failed (%v), using secondary only", pResult.err)
		sResult.output.FieldProvenance = map[string]string{"_source": "secondary_only"}
		sResult.output.SecondaryModel = sResult.output.ModelUsed
		return sResult.output, nil
	}

	// Only primary succeeded
	if sResult.err != nil {
		log.Printf("extractor.MergeExtractor: secondary extractor failed (%v), using primary only", sResult.err)
		pResult.output.FieldProvenance = map[string]string{"_source": "primary_only"}
		return pResult.output, nil
	}

	// Both succeeded, merge field by field
	return mergeOutputs(pResult.output, sResult.output)
}

func mergeOutputs(primary, secondary *port.ExtractOutput) (*port.ExtractOutput, error) {
	var pData, sData domain.Invoice
	if err := json.Unmarshal(primary.StructuredData, &pData); err != nil {
		return primary, nil // fall back to primary on decode error
	}
	if err := json.Unmarshal(secondary.StructuredData, &sData); err != nil {
		return primary, nil
	}

	var pConf, sConf domain.ConfidenceScores
	_ = json.Unmarshal(primary.ConfidenceScores, &pConf)
	_ = json.Unmarshal(secondary.ConfidenceScores, &sConf)

	provenance := make(map[string]string)
	merged := pData // start with primary

	mergeFloat(&merged.TotalAmount, sData.TotalAmount, &pConf.TotalAmount, sConf.TotalAmount, "total_amount", provenance)
	mergeString(&merged.Sender, sData.Sender, &pConf.Sender, sConf.Sender, "sender", provenance)
	mergeString(&merged.Date, sData.Date, &pConf.Date, sConf.Date, "date", provenance)

	// Merge line items: pick the array with more items; primary wins ties.
	if len(sData.LineItems) > len(pData.LineItems) {
		merged.LineItems = sData.LineItems
		provenance["line_items"] = "secondary"
		if len(sConf.LineItems) > 0 {
			pConf.LineItems = sConf.LineItems
		}
	} else {
		provenance["line_items"] = "primary"
	}

	mergedData, _ := json.Marshal(merged)
	mergedConf, _ := json.Marshal(pConf)

	return &port.ExtractOutput{
		StructuredData:   mergedData,
		ConfidenceScores: mergedConf,
		ModelUsed:        primary.ModelUsed,
		PromptUsed:       primary.PromptUsed,
		FieldProvenance:  provenance,
		SecondaryModel:   secondary.ModelUsed,
	}, nil
}

// mergeString implements the merge strategy for scalar string fields.
func mergeString(pVal *string, sVal string, pConf *float64, sConf float64, fieldPath string, provenance map[string]string) {
	if *pVal == sVal {
		// Agreement: boost confidence
		if *pConf < 1.0 {
			boosted := *pConf + (1.0-*pConf)*0.2
			if boosted > 1.0 {
				boosted = 1.0
			}
			*pConf = boosted
		}
		provenance[fieldPath] = "agree"
		return
	}

	if *pVal == "" && sVal != "" {
		*pVal = sVal
		*pConf = sConf
		provenance[fieldPath] = "secondary"
		return
	}

	if sVal == "" {
		provenance[fieldPath] = "primary"
		return
	}

	// Disagreement: keep the higher-confidence value
	if sConf > *pConf {
		*pVal = sVal
		*pConf = sConf * 0.8
		provenance[fieldPath] = "secondary_confidence"
		return
	}

	*pConf *= 0.6
	provenance[fieldPath] = "disagreement"
}

// mergeFloat implements the merge strategy for scalar float64 fields.
func mergeFloat(pVal *float64, sVal float64, pConf *float64, sConf float64, fieldPath string, provenance map[string]string) {
	if *pVal == sVal {
		if *pConf < 1.0 {
			boosted := *pConf + (1.0-*pConf)*0.2
			if boosted > 1.0 {
				boosted = 1.0
			}
			*pConf = boosted
		}
		provenance[fieldPath] = "agree"
		return
	}

	if *pVal == 0 && sVal != 0 {
		*pVal = sVal
		*pConf = sConf
		provenance[fieldPath] = "secondary"
		return
	}

	if sVal == 0 {
		provenance[fieldPath] = "primary"
		return
	}

	if sConf > *pConf {
		*pVal = sVal
		*pConf = sConf * 0.8
		provenance[fieldPath] = "secondary_confidence"
		return
	}

	*pConf *= 0.6
	provenance[fieldPath] = "disagreement"
}
