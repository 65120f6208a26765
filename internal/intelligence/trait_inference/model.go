// Package trait_inference implements the botanical trait inference engine:
// it enhances Subject-Verb-Object tuples with glossary-matched, confidence-
// scored trait inferences, extracted measurements, and aggregate relevance
// scoring, plus the batch, cache, export, and summary layers built on top.
package trait_inference

import (
	"time"
)

// ValidationStatus tracks human review of an inference.  Every inference is
// created pending; only an administrative reviewer outside this engine ever
// transitions it.
type ValidationStatus string

const (
	ValidationPending   ValidationStatus = "pending"
	ValidationValidated ValidationStatus = "validated"
	ValidationRejected  ValidationStatus = "rejected"
)

// Fixed method tags recorded on every result.
const (
	ExtractionMethodPatternAnalysis = "ai_pattern_analysis"
	ProcessingMethodStreamlinedPlus = "streamlined_plus"
)

// Measurement is one extracted size measurement.
type Measurement struct {
	Value float64 `json:"value"`
	Unit  string  `json:"unit"`
}

// CountValue is one extracted organ count.
type CountValue struct {
	Count int    `json:"count"`
	Item  string `json:"item"`
}

// InferredValues holds the category-specific structured values extracted
// for one inference.  Absent kinds are nil and omitted from serialization.
type InferredValues struct {
	Measurements  []Measurement `json:"measurements,omitempty"`
	Counts        []CountValue  `json:"counts,omitempty"`
	Colors        []string      `json:"colors,omitempty"`
	Descriptors   []string      `json:"descriptors,omitempty"`
	GrowthActions []string      `json:"growth_actions,omitempty"`
}

// IsZero reports whether no value kind was extracted.
func (v InferredValues) IsZero() bool {
	return len(v.Measurements) == 0 && len(v.Counts) == 0 &&
		len(v.Colors) == 0 && len(v.Descriptors) == 0 && len(v.GrowthActions) == 0
}

// BotanicalInference is one inferred trait from one matched glossary term
// within one SVO tuple.  Instances are immutable once built.
type BotanicalInference struct {
	// TraitCategory is the matched term's semantic category.
	TraitCategory string `json:"trait_category"`

	// Confidence accumulates weighted evidence from a 0.5 base and is
	// always clamped to [0, 1].
	Confidence float64 `json:"confidence"`

	// MeasurementPotential is true iff the term's declared unit is
	// quantitative.
	MeasurementPotential bool `json:"measurement_potential"`

	// AIDerivable is copied verbatim from the glossary entry.
	AIDerivable bool `json:"ai_derivable"`

	// SupportingTerms lists the matched term followed by its synonyms in
	// glossary order.
	SupportingTerms []string `json:"supporting_terms"`

	// InferredValues holds extracted structured values, kinds present only
	// when applicable.
	InferredValues InferredValues `json:"inferred_values"`

	// ExtractionMethod is always ExtractionMethodPatternAnalysis for this
	// pipeline.
	ExtractionMethod string `json:"extraction_method"`

	// ValidationStatus starts pending; the engine never transitions it.
	ValidationStatus ValidationStatus `json:"validation_status"`
}

// EnhancedSVO is the enriched result for one (subject, verb, object) tuple.
// It is immutable once returned by the engine; all scores are computed
// before construction completes, never mutated afterward.
type EnhancedSVO struct {
	Subject     string `json:"subject"`
	Verb        string `json:"verb"`
	Object      string `json:"object"`
	ContextText string `json:"context_text"`

	// BotanicalInferences holds one inference per matched glossary term,
	// in match-discovery order.
	BotanicalInferences []BotanicalInference `json:"botanical_inferences"`

	// DetectedTerms lists the bare matched term names in lookup order.
	// Duplicates returned by the glossary are preserved.
	DetectedTerms []string `json:"detected_terms"`

	// CategoriesDetected lists the distinct categories across all matches,
	// deduplicated in first-seen order.
	CategoriesDetected []string `json:"categories_detected"`

	// OverallConfidence and BotanicalRelevance both lie in [0, 1].
	// OverallConfidence rewards breadth of botanical signal and is NOT an
	// average of per-inference confidences.
	OverallConfidence  float64 `json:"overall_confidence"`
	BotanicalRelevance float64 `json:"botanical_relevance"`

	// MeasurementData maps measurement-pattern names to the raw regex
	// groups found in the full text.  Patterns without matches are absent.
	MeasurementData map[string][][]string `json:"measurement_data,omitempty"`

	// EnhancementTimestamp is the UTC construction time, informational only.
	EnhancementTimestamp time.Time `json:"enhancement_timestamp"`

	// ProcessingMethod is always ProcessingMethodStreamlinedPlus.
	ProcessingMethod string `json:"processing_method"`
}

// HasCategory reports whether category appears in CategoriesDetected.
func (e *EnhancedSVO) HasCategory(category string) bool {
	for _, c := range e.CategoriesDetected {
		if c == category {
			return true
		}
	}
	return false
}
