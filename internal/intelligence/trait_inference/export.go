package trait_inference

import (
	"encoding/json"
	"sort"
	"time"

	"github.com/turtacn/PhytoTrait-Intelligence/pkg/errors"
)

// ExportFormat names a serialization target for Export.
type ExportFormat string

// FormatJSON is the only format currently implemented.
const FormatJSON ExportFormat = "json"

// exportRecord is one serialized result: the raw tuple plus a nested
// enhancement block.
type exportRecord struct {
	SVO         exportTuple       `json:"svo"`
	Context     string            `json:"context"`
	Enhancement exportEnhancement `json:"enhancement"`
}

type exportTuple struct {
	Subject string `json:"subject"`
	Verb    string `json:"verb"`
	Object  string `json:"object"`
}

type exportEnhancement struct {
	DetectedTerms      []string              `json:"detected_terms"`
	Categories         []string              `json:"categories"`
	BotanicalRelevance float64               `json:"botanical_relevance"`
	OverallConfidence  float64               `json:"overall_confidence"`
	Inferences         []exportInference     `json:"inferences"`
	MeasurementData    map[string][][]string `json:"measurement_data,omitempty"`
	Timestamp          time.Time             `json:"enhancement_timestamp"`
}

type exportInference struct {
	Category             string         `json:"category"`
	Confidence           float64        `json:"confidence"`
	MeasurementPotential bool           `json:"measurement_potential"`
	AIDerivable          bool           `json:"ai_derivable"`
	InferredValues       InferredValues `json:"inferred_values"`
}

// Export serializes results to the requested interchange format.  Only JSON
// is supported; other formats return ErrCodeExportFormatInvalid.
func Export(results []*EnhancedSVO, format ExportFormat) ([]byte, error) {
	if format != FormatJSON {
		return nil, errors.New(errors.ErrCodeExportFormatInvalid, "unsupported export format").
			WithDetail(string(format))
	}

	records := make([]exportRecord, 0, len(results))
	for _, r := range results {
		inferences := make([]exportInference, 0, len(r.BotanicalInferences))
		for _, inf := range r.BotanicalInferences {
			inferences = append(inferences, exportInference{
				Category:             inf.TraitCategory,
				Confidence:           inf.Confidence,
				MeasurementPotential: inf.MeasurementPotential,
				AIDerivable:          inf.AIDerivable,
				InferredValues:       inf.InferredValues,
			})
		}
		records = append(records, exportRecord{
			SVO:     exportTuple{Subject: r.Subject, Verb: r.Verb, Object: r.Object},
			Context: r.ContextText,
			Enhancement: exportEnhancement{
				DetectedTerms:      r.DetectedTerms,
				Categories:         r.CategoriesDetected,
				BotanicalRelevance: r.BotanicalRelevance,
				OverallConfidence:  r.OverallConfidence,
				Inferences:         inferences,
				MeasurementData:    r.MeasurementData,
				Timestamp:          r.EnhancementTimestamp,
			},
		})
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeExportFailed, "failed to serialize results")
	}
	return data, nil
}

// TermFrequency is one entry in the top-terms ranking.
type TermFrequency struct {
	Term  string `json:"term"`
	Count int    `json:"count"`
}

// Summary aggregates statistics over a sequence of results.
type Summary struct {
	TotalProcessed       int             `json:"total_processed"`
	BotanicallyRelevant  int             `json:"botanically_relevant"`
	HighConfidence       int             `json:"high_confidence"`
	CategoryDistribution map[string]int  `json:"category_distribution"`
	TopTerms             []TermFrequency `json:"top_terms"`
	WithMeasurements     int             `json:"with_measurements"`
	MeasurementFraction  float64         `json:"measurement_fraction"`
	MeanRelevance        float64         `json:"mean_relevance"`
	MeanConfidence       float64         `json:"mean_confidence"`
}

// Thresholds used in Summarize.
const (
	relevantThreshold      = 0.5
	summaryConfidenceFloor = 0.8
	topTermLimit           = 20
)

// Summarize computes aggregate statistics across results.  An empty input
// yields a zero-valued summary rather than an error.
func Summarize(results []*EnhancedSVO) Summary {
	summary := Summary{
		CategoryDistribution: make(map[string]int),
		TopTerms:             []TermFrequency{},
	}
	if len(results) == 0 {
		return summary
	}

	termCounts := make(map[string]int)
	var relevanceSum, confidenceSum float64

	for _, r := range results {
		summary.TotalProcessed++
		if r.BotanicalRelevance > relevantThreshold {
			summary.BotanicallyRelevant++
		}
		if r.OverallConfidence > summaryConfidenceFloor {
			summary.HighConfidence++
		}
		for _, c := range r.CategoriesDetected {
			summary.CategoryDistribution[c]++
		}
		for _, t := range r.DetectedTerms {
			termCounts[t]++
		}
		if len(r.MeasurementData) > 0 {
			summary.WithMeasurements++
		}
		relevanceSum += r.BotanicalRelevance
		confidenceSum += r.OverallConfidence
	}

	ranked := make([]TermFrequency, 0, len(termCounts))
	for term, count := range termCounts {
		ranked = append(ranked, TermFrequency{Term: term, Count: count})
	}
	// Ties break alphabetically so the ranking is deterministic.
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		return ranked[i].Term < ranked[j].Term
	})
	if len(ranked) > topTermLimit {
		ranked = ranked[:topTermLimit]
	}
	summary.TopTerms = ranked

	total := float64(summary.TotalProcessed)
	summary.MeasurementFraction = float64(summary.WithMeasurements) / total
	summary.MeanRelevance = relevanceSum / total
	summary.MeanConfidence = confidenceSum / total
	return summary
}
