package trait_inference

import (
	"context"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/turtacn/PhytoTrait-Intelligence/internal/domain/glossary"
	"github.com/turtacn/PhytoTrait-Intelligence/pkg/errors"
	"github.com/turtacn/PhytoTrait-Intelligence/pkg/types/svo"
)

// ---------------------------------------------------------------------------
// Scoring constants
// ---------------------------------------------------------------------------

// Per-inference confidence starts at confidenceBase and accumulates the
// evidence weights below.  The base plus all five weights exceeds 1.0, so
// the final score is clamped to keep it a probability-like value.
const (
	confidenceBase         = 0.5
	weightExactMatch       = 0.3
	weightSynonymMatch     = 0.2
	weightMeasurement      = 0.25
	weightScientificTerm   = 0.2
	weightContextRelevance = 0.15
)

// Aggregate relevance bonuses, each individually capped.
const (
	relevancePerTerm        = 0.1
	relevanceTermCap        = 0.5
	relevancePerCategory    = 0.05
	relevanceCategoryCap    = 0.2
	relevanceMeasurement    = 0.2
	relevancePerAIDerivable = 0.1
	relevanceAIDerivableCap = 0.3
)

// Aggregate confidence boosts applied on top of the 1.0 default.
const (
	confidenceRelevanceFactor = 0.2
	confidencePerHighInf      = 0.05
	confidenceHighInfCap      = 0.15
	confidenceMeasurement     = 0.1
	highConfidenceThreshold   = 0.8
)

// Fixed vocabularies scanned during category-specific value extraction.
var (
	scientificMarkers = []string{"species", "genus", "hybrid", "cultivar"}
	colorPalette      = []string{"red", "blue", "green", "yellow", "purple", "white", "pink", "orange", "brown", "black"}
	floralDescriptors = []string{"large", "small", "prominent", "distinctive", "beautiful", "unusual"}
	growthActionVerbs = []string{"grows", "reaches", "extends", "spreads", "develops"}
)

// Categories carrying extra extraction rules.
const (
	categoryFloralOrgan = "Floral Organ"
	categoryVegetative  = "Vegetative"
)

// ---------------------------------------------------------------------------
// Dependency interfaces
// ---------------------------------------------------------------------------

// Metrics records operational telemetry.
type Metrics interface {
	RecordEnhancement(ctx context.Context, termCount int, durationMs float64)
	RecordBatch(ctx context.Context, size int, durationMs float64)
}

// Logger is a minimal structured logger.
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
	Debug(msg string, keysAndValues ...interface{})
}

// ---------------------------------------------------------------------------
// Configuration
// ---------------------------------------------------------------------------

// EngineConfig holds tuneable parameters for the enhancement pipeline.
type EngineConfig struct {
	MaxTextLength int `json:"max_text_length" yaml:"max_text_length" mapstructure:"max_text_length"`
}

// DefaultEngineConfig returns production-ready defaults.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		MaxTextLength: 100000,
	}
}

// ---------------------------------------------------------------------------
// Engine interface
// ---------------------------------------------------------------------------

// Engine is the top-level API for botanical trait enhancement.
type Engine interface {
	Enhance(ctx context.Context, tuple svo.Tuple, contextText string) (*EnhancedSVO, error)
	EnhanceBatch(ctx context.Context, tuples []svo.Tuple, contexts []string) ([]*EnhancedSVO, error)
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type engineImpl struct {
	lookup  glossary.Lookup
	config  EngineConfig
	metrics Metrics
	logger  Logger
}

// NewEngine constructs a fully-wired engine.
func NewEngine(lookup glossary.Lookup, config EngineConfig, metrics Metrics, logger Logger) (Engine, error) {
	if lookup == nil {
		return nil, errors.New(errors.CodeInvalidParam, "glossary lookup is required")
	}
	if config.MaxTextLength <= 0 {
		config.MaxTextLength = DefaultEngineConfig().MaxTextLength
	}
	if logger == nil {
		logger = &noopLogger{}
	}
	if metrics == nil {
		metrics = &noopMetrics{}
	}
	return &engineImpl{
		lookup:  lookup,
		config:  config,
		metrics: metrics,
		logger:  logger,
	}, nil
}

// Enhance enriches a single tuple.  The tuple is validated first; glossary
// failures abort the whole enhancement rather than producing a partial
// result.
func (e *engineImpl) Enhance(ctx context.Context, tuple svo.Tuple, contextText string) (*EnhancedSVO, error) {
	if err := tuple.Validate(); err != nil {
		return nil, err
	}

	start := time.Now()

	fullText := buildFullText(tuple, contextText, e.config.MaxTextLength)
	loweredContext := strings.ToLower(contextText)

	terms, err := e.lookup.FindTermsInText(fullText)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeGlossaryLookupFailed, "glossary lookup failed").
			WithDetail(tuple.String())
	}

	detected := make([]string, 0, len(terms))
	inferences := make([]BotanicalInference, 0, len(terms))
	categories := make([]string, 0, 4)
	seenCategories := make(map[string]struct{}, 4)
	aiDerivable := 0

	for _, term := range terms {
		detected = append(detected, term.Name)
		if _, ok := seenCategories[term.Category]; !ok {
			seenCategories[term.Category] = struct{}{}
			categories = append(categories, term.Category)
		}
		inf := e.inferTrait(term, fullText, loweredContext)
		if inf.AIDerivable {
			aiDerivable++
		}
		inferences = append(inferences, inf)
	}

	measurements := ExtractMeasurements(fullText)
	hasMeasurements := len(measurements) > 0

	relevance := botanicalRelevance(len(detected), len(categories), hasMeasurements, aiDerivable)

	highConfidence := 0
	for _, inf := range inferences {
		if inf.Confidence > highConfidenceThreshold {
			highConfidence++
		}
	}
	overall := aggregateConfidence(relevance, highConfidence, hasMeasurements)

	result := &EnhancedSVO{
		Subject:              tuple.Subject,
		Verb:                 tuple.Verb,
		Object:               tuple.Object,
		ContextText:          contextText,
		BotanicalInferences:  inferences,
		DetectedTerms:        detected,
		CategoriesDetected:   categories,
		OverallConfidence:    overall,
		BotanicalRelevance:   relevance,
		MeasurementData:      measurements,
		EnhancementTimestamp: time.Now().UTC(),
		ProcessingMethod:     ProcessingMethodStreamlinedPlus,
	}

	e.metrics.RecordEnhancement(ctx, len(detected), float64(time.Since(start).Microseconds())/1000.0)
	e.logger.Debug("tuple enhanced",
		"tuple", tuple.String(),
		"terms", len(detected),
		"categories", len(categories),
		"relevance", relevance,
	)
	return result, nil
}

// EnhanceBatch processes tuples independently in input order.  Contexts pair
// positionally and may be shorter than tuples; missing contexts default to
// empty.  The first per-tuple failure aborts the batch.
func (e *engineImpl) EnhanceBatch(ctx context.Context, tuples []svo.Tuple, contexts []string) ([]*EnhancedSVO, error) {
	if len(tuples) == 0 {
		return nil, errors.New(errors.ErrCodeSVOEmptyBatch, "batch contains no tuples")
	}
	if len(contexts) > len(tuples) {
		return nil, errors.New(errors.ErrCodeSVOContextCount, "more contexts than tuples").
			WithDetail(strconv.Itoa(len(contexts)) + " contexts for " + strconv.Itoa(len(tuples)) + " tuples")
	}

	start := time.Now()

	results := make([]*EnhancedSVO, 0, len(tuples))
	for i, tuple := range tuples {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeTimeout, "batch cancelled").
				WithDetail("at index " + strconv.Itoa(i))
		}
		contextText := ""
		if i < len(contexts) {
			contextText = contexts[i]
		}
		result, err := e.Enhance(ctx, tuple, contextText)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeBatchAborted, "batch aborted").
				WithDetail("tuple index " + strconv.Itoa(i))
		}
		results = append(results, result)
	}

	e.metrics.RecordBatch(ctx, len(tuples), float64(time.Since(start).Microseconds())/1000.0)
	return results, nil
}

// ---------------------------------------------------------------------------
// Per-term inference
// ---------------------------------------------------------------------------

// inferTrait builds one BotanicalInference for one matched glossary term.
// fullText and loweredContext must already be lowercase.
func (e *engineImpl) inferTrait(term glossary.Term, fullText, loweredContext string) BotanicalInference {
	confidence := confidenceBase

	if strings.Contains(fullText, strings.ToLower(term.Name)) {
		confidence += weightExactMatch
	}
	for _, syn := range term.Synonyms {
		if strings.Contains(fullText, strings.ToLower(syn)) {
			confidence += weightSynonymMatch
			break
		}
	}

	measurable := term.MeasurementPotential()
	if measurable && len(ExtractMeasurements(fullText)) > 0 {
		confidence += weightMeasurement
	}
	for _, marker := range scientificMarkers {
		if strings.Contains(fullText, marker) {
			confidence += weightScientificTerm
			break
		}
	}
	if loweredContext != "" && strings.Contains(loweredContext, strings.ToLower(term.Category)) {
		confidence += weightContextRelevance
	}

	supporting := make([]string, 0, 1+len(term.Synonyms))
	supporting = append(supporting, term.Name)
	supporting = append(supporting, term.Synonyms...)

	return BotanicalInference{
		TraitCategory:        term.Category,
		Confidence:           clamp01(confidence),
		MeasurementPotential: measurable,
		AIDerivable:          term.AIDerivable,
		SupportingTerms:      supporting,
		InferredValues:       extractInferredValues(term.Category, fullText),
		ExtractionMethod:     ExtractionMethodPatternAnalysis,
		ValidationStatus:     ValidationPending,
	}
}

// extractInferredValues runs the category-specific value extraction rules
// against the lowercase full text.
func extractInferredValues(category, fullText string) InferredValues {
	var values InferredValues

	for _, m := range measurementPatterns {
		switch m.name {
		case PatternSizeMeasurements:
			for _, g := range m.re.FindAllStringSubmatch(fullText, -1) {
				value, err := strconv.ParseFloat(g[1], 64)
				if err != nil {
					continue
				}
				values.Measurements = append(values.Measurements, Measurement{
					Value: value,
					Unit:  strings.ToLower(g[2]),
				})
			}
		case PatternQuantityCounts:
			for _, g := range m.re.FindAllStringSubmatch(fullText, -1) {
				count, err := strconv.Atoi(g[1])
				if err != nil {
					continue
				}
				values.Counts = append(values.Counts, CountValue{
					Count: count,
					Item:  strings.ToLower(g[2]),
				})
			}
		}
	}

	values.Colors = scanVocabulary(fullText, colorPalette)
	if category == categoryFloralOrgan {
		values.Descriptors = scanVocabulary(fullText, floralDescriptors)
	}
	if category == categoryVegetative {
		values.GrowthActions = scanVocabulary(fullText, growthActionVerbs)
	}
	return values
}

// ---------------------------------------------------------------------------
// Aggregate scoring
// ---------------------------------------------------------------------------

// botanicalRelevance sums four independently capped bonuses and caps the
// total at 1.0.
func botanicalRelevance(termCount, categoryCount int, hasMeasurements bool, aiDerivableCount int) float64 {
	score := minFloat(relevanceTermCap, relevancePerTerm*float64(termCount))
	if categoryCount > 1 {
		score += minFloat(relevanceCategoryCap, relevancePerCategory*float64(categoryCount-1))
	}
	if hasMeasurements {
		score += relevanceMeasurement
	}
	score += minFloat(relevanceAIDerivableCap, relevancePerAIDerivable*float64(aiDerivableCount))
	return clamp01(score)
}

// aggregateConfidence computes the final overall confidence from the 1.0
// default plus breadth-of-signal boosts.  It is a pure function of its
// inputs; it never reads back a previously stored score.
func aggregateConfidence(relevance float64, highConfidenceCount int, hasMeasurements bool) float64 {
	score := 1.0
	score += relevance * confidenceRelevanceFactor
	score += minFloat(confidenceHighInfCap, confidencePerHighInf*float64(highConfidenceCount))
	if hasMeasurements {
		score += confidenceMeasurement
	}
	return clamp01(score)
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

// buildFullText lowercase-concatenates the tuple elements and context,
// truncating past maxLen to bound regex work on pathological inputs.
func buildFullText(tuple svo.Tuple, contextText string, maxLen int) string {
	full := strings.ToLower(tuple.Subject + " " + tuple.Verb + " " + tuple.Object + " " + contextText)
	if len(full) > maxLen {
		full = full[:maxLen]
	}
	return full
}

// scanVocabulary returns the vocabulary words present in text as whole
// words, in vocabulary order.
func scanVocabulary(text string, vocabulary []string) []string {
	var found []string
	for _, word := range vocabulary {
		if containsWord(text, word) {
			found = append(found, word)
		}
	}
	return found
}

// containsWord reports whether word occurs in text bounded by non-letter
// runes on both sides.  Both arguments must be lowercase.
func containsWord(text, word string) bool {
	for offset := 0; ; {
		idx := strings.Index(text[offset:], word)
		if idx < 0 {
			return false
		}
		idx += offset
		before := idx == 0 || !isWordRune(rune(text[idx-1]))
		afterIdx := idx + len(word)
		after := afterIdx >= len(text) || !isWordRune(rune(text[afterIdx]))
		if before && after {
			return true
		}
		offset = idx + 1
	}
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

// ---------------------------------------------------------------------------
// No-op dependency fallbacks
// ---------------------------------------------------------------------------

type noopLogger struct{}

func (n *noopLogger) Info(string, ...interface{})  {}
func (n *noopLogger) Warn(string, ...interface{})  {}
func (n *noopLogger) Error(string, ...interface{}) {}
func (n *noopLogger) Debug(string, ...interface{}) {}

type noopMetrics struct{}

func (n *noopMetrics) RecordEnhancement(context.Context, int, float64) {}
func (n *noopMetrics) RecordBatch(context.Context, int, float64)      {}
