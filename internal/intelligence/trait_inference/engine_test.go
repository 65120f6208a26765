package trait_inference

import (
	"context"
	"math"
	"strings"
	"testing"

	"github.com/turtacn/PhytoTrait-Intelligence/internal/domain/glossary"
	"github.com/turtacn/PhytoTrait-Intelligence/pkg/errors"
	"github.com/turtacn/PhytoTrait-Intelligence/pkg/types/svo"
)

// ---------------------------------------------------------------------------
// Mocks and helpers
// ---------------------------------------------------------------------------

type mockLookup struct {
	fn    func(text string) ([]glossary.Term, error)
	calls int
}

func (m *mockLookup) FindTermsInText(text string) ([]glossary.Term, error) {
	m.calls++
	if m.fn == nil {
		return nil, nil
	}
	return m.fn(text)
}

func fixedTerms(terms ...glossary.Term) func(string) ([]glossary.Term, error) {
	return func(string) ([]glossary.Term, error) {
		return terms, nil
	}
}

func newTestEngine(t *testing.T, lookup glossary.Lookup) Engine {
	t.Helper()
	engine, err := NewEngine(lookup, DefaultEngineConfig(), nil, nil)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	return engine
}

func approxEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

var labellumTerm = glossary.Term{
	Name:            "labellum",
	Category:        "Floral Organ",
	AIDerivable:     true,
	MeasurementUnit: "mm",
	Synonyms:        []string{"lip"},
}

// ---------------------------------------------------------------------------
// Single-tuple enhancement
// ---------------------------------------------------------------------------

func TestEnhanceFloralOrgan(t *testing.T) {
	lookup := &mockLookup{fn: fixedTerms(labellumTerm)}
	engine := newTestEngine(t, lookup)

	tuple := svo.Tuple{Subject: "orchid", Verb: "displays", Object: "labellum"}
	contextText := "The orchid displays a prominent white labellum measuring 3.2 cm across"

	result, err := engine.Enhance(context.Background(), tuple, contextText)
	if err != nil {
		t.Fatalf("Enhance: %v", err)
	}

	if len(result.BotanicalInferences) != 1 {
		t.Fatalf("expected 1 inference, got %d", len(result.BotanicalInferences))
	}
	inf := result.BotanicalInferences[0]
	if inf.TraitCategory != "Floral Organ" {
		t.Errorf("category = %q, want Floral Organ", inf.TraitCategory)
	}
	if !inf.MeasurementPotential {
		t.Error("expected measurement_potential true for unit mm")
	}
	if !inf.AIDerivable {
		t.Error("expected ai_derivable carried from glossary entry")
	}
	// Base 0.5 + exact 0.3 + measurement 0.25 exceeds 1.0 and must clamp.
	if inf.Confidence != 1.0 {
		t.Errorf("confidence = %v, want 1.0 after clamping", inf.Confidence)
	}
	if got, want := inf.SupportingTerms, []string{"labellum", "lip"}; len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("supporting terms = %v, want %v", got, want)
	}
	if inf.ExtractionMethod != ExtractionMethodPatternAnalysis {
		t.Errorf("extraction method = %q", inf.ExtractionMethod)
	}
	if inf.ValidationStatus != ValidationPending {
		t.Errorf("validation status = %q, want pending", inf.ValidationStatus)
	}

	found := false
	for _, m := range inf.InferredValues.Measurements {
		if approxEqual(m.Value, 3.2) && m.Unit == "cm" {
			found = true
		}
	}
	if !found {
		t.Errorf("measurements = %v, want entry {3.2 cm}", inf.InferredValues.Measurements)
	}
	hasDescriptor := false
	for _, d := range inf.InferredValues.Descriptors {
		if d == "prominent" {
			hasDescriptor = true
		}
	}
	if !hasDescriptor {
		t.Errorf("descriptors = %v, want prominent", inf.InferredValues.Descriptors)
	}
	hasColor := false
	for _, c := range inf.InferredValues.Colors {
		if c == "white" {
			hasColor = true
		}
	}
	if !hasColor {
		t.Errorf("colors = %v, want white", inf.InferredValues.Colors)
	}

	if len(result.MeasurementData[PatternSizeMeasurements]) == 0 {
		t.Error("expected size_measurements in measurement data")
	}
	if result.ProcessingMethod != ProcessingMethodStreamlinedPlus {
		t.Errorf("processing method = %q", result.ProcessingMethod)
	}
	// 0.1 term + 0.2 measurement + 0.1 ai-derivable, no category diversity.
	if !approxEqual(result.BotanicalRelevance, 0.4) {
		t.Errorf("relevance = %v, want 0.4", result.BotanicalRelevance)
	}
}

func TestEnhanceNoMatches(t *testing.T) {
	lookup := &mockLookup{}
	engine := newTestEngine(t, lookup)

	tuple := svo.Tuple{Subject: "orchid", Verb: "displays", Object: "labellum"}
	result, err := engine.Enhance(context.Background(), tuple, "")
	if err != nil {
		t.Fatalf("Enhance: %v", err)
	}

	if len(result.DetectedTerms) != 0 {
		t.Errorf("detected terms = %v, want empty", result.DetectedTerms)
	}
	if len(result.BotanicalInferences) != 0 {
		t.Errorf("inferences = %v, want empty", result.BotanicalInferences)
	}
	if len(result.CategoriesDetected) != 0 {
		t.Errorf("categories = %v, want empty", result.CategoriesDetected)
	}
	if result.BotanicalRelevance != 0.0 {
		t.Errorf("relevance = %v, want 0.0", result.BotanicalRelevance)
	}
	if len(result.MeasurementData) != 0 {
		t.Errorf("measurement data = %v, want empty", result.MeasurementData)
	}
}

func TestEnhanceVegetativeGrowthActions(t *testing.T) {
	vegetative := glossary.Term{
		Name:            "stem",
		Category:        "Vegetative",
		MeasurementUnit: "cm",
	}
	lookup := &mockLookup{fn: fixedTerms(vegetative)}
	engine := newTestEngine(t, lookup)

	tuple := svo.Tuple{Subject: "stem", Verb: "reaches", Object: "2 m"}
	result, err := engine.Enhance(context.Background(), tuple, "the stem grows upward and spreads")
	if err != nil {
		t.Fatalf("Enhance: %v", err)
	}
	if len(result.BotanicalInferences) != 1 {
		t.Fatalf("expected 1 inference, got %d", len(result.BotanicalInferences))
	}
	actions := result.BotanicalInferences[0].InferredValues.GrowthActions
	if got, want := strings.Join(actions, ","), "grows,reaches,spreads"; got != want {
		t.Errorf("growth actions = %q, want %q", got, want)
	}
}

func TestEnhanceContextRelevanceWeight(t *testing.T) {
	term := glossary.Term{Name: "petal", Category: "Floral Organ", MeasurementUnit: "text"}
	lookup := &mockLookup{fn: fixedTerms(term)}
	engine := newTestEngine(t, lookup)

	tuple := svo.Tuple{Subject: "flower", Verb: "has", Object: "petal"}

	plain, err := engine.Enhance(context.Background(), tuple, "generic description")
	if err != nil {
		t.Fatalf("Enhance: %v", err)
	}
	boosted, err := engine.Enhance(context.Background(), tuple, "notes on the floral organ structure")
	if err != nil {
		t.Fatalf("Enhance: %v", err)
	}
	// Category string present in context adds exactly the context weight.
	diff := boosted.BotanicalInferences[0].Confidence - plain.BotanicalInferences[0].Confidence
	if !approxEqual(diff, weightContextRelevance) {
		t.Errorf("context weight delta = %v, want %v", diff, weightContextRelevance)
	}
}

func TestEnhanceDeterminism(t *testing.T) {
	lookup := &mockLookup{fn: fixedTerms(labellumTerm)}
	engine := newTestEngine(t, lookup)

	tuple := svo.Tuple{Subject: "orchid", Verb: "displays", Object: "labellum"}
	contextText := "prominent white labellum, 3.2 cm across"

	first, err := engine.Enhance(context.Background(), tuple, contextText)
	if err != nil {
		t.Fatalf("Enhance: %v", err)
	}
	second, err := engine.Enhance(context.Background(), tuple, contextText)
	if err != nil {
		t.Fatalf("Enhance: %v", err)
	}

	if first.BotanicalRelevance != second.BotanicalRelevance ||
		first.OverallConfidence != second.OverallConfidence ||
		len(first.BotanicalInferences) != len(second.BotanicalInferences) ||
		strings.Join(first.DetectedTerms, ",") != strings.Join(second.DetectedTerms, ",") {
		t.Error("identical inputs produced different enhancements")
	}
}

func TestEnhanceConfidenceBounds(t *testing.T) {
	terms := []glossary.Term{
		{Name: "species marker", Category: "Taxonomy", AIDerivable: true, MeasurementUnit: "cm", Synonyms: []string{"genus"}},
		{Name: "petal", Category: "Floral Organ", AIDerivable: true, MeasurementUnit: "mm"},
		{Name: "stem", Category: "Vegetative", AIDerivable: true, MeasurementUnit: "cm"},
	}
	lookup := &mockLookup{fn: fixedTerms(terms...)}
	engine := newTestEngine(t, lookup)

	tuple := svo.Tuple{Subject: "hybrid species", Verb: "grows", Object: "petal and stem"}
	result, err := engine.Enhance(context.Background(), tuple, "genus cultivar with 5 petals of 12.5 cm at 20 c over 3 weeks, 80% Floral Organ Vegetative Taxonomy")
	if err != nil {
		t.Fatalf("Enhance: %v", err)
	}

	for i, inf := range result.BotanicalInferences {
		if inf.Confidence < 0 || inf.Confidence > 1 {
			t.Errorf("inference %d confidence %v out of bounds", i, inf.Confidence)
		}
	}
	if result.OverallConfidence < 0 || result.OverallConfidence > 1 {
		t.Errorf("overall confidence %v out of bounds", result.OverallConfidence)
	}
	if result.BotanicalRelevance < 0 || result.BotanicalRelevance > 1 {
		t.Errorf("relevance %v out of bounds", result.BotanicalRelevance)
	}
}

func TestCategoriesDeduplicated(t *testing.T) {
	terms := []glossary.Term{
		{Name: "petal", Category: "Floral Organ", MeasurementUnit: "mm"},
		{Name: "sepal", Category: "Floral Organ", MeasurementUnit: "mm"},
		{Name: "stem", Category: "Vegetative", MeasurementUnit: "cm"},
	}
	lookup := &mockLookup{fn: fixedTerms(terms...)}
	engine := newTestEngine(t, lookup)

	result, err := engine.Enhance(context.Background(),
		svo.Tuple{Subject: "flower", Verb: "has", Object: "petal sepal stem"}, "")
	if err != nil {
		t.Fatalf("Enhance: %v", err)
	}

	if got, want := strings.Join(result.CategoriesDetected, ","), "Floral Organ,Vegetative"; got != want {
		t.Errorf("categories = %q, want %q", got, want)
	}
	// Detected terms mirror the lookup output and are not deduplicated.
	if len(result.DetectedTerms) != 3 {
		t.Errorf("detected terms = %v, want 3 entries", result.DetectedTerms)
	}
}

func TestEnhanceInvalidTuple(t *testing.T) {
	lookup := &mockLookup{}
	engine := newTestEngine(t, lookup)

	_, err := engine.Enhance(context.Background(), svo.Tuple{Subject: "", Verb: "displays", Object: "labellum"}, "")
	if !errors.IsCode(err, errors.ErrCodeSVOInvalidTuple) {
		t.Fatalf("expected SVO_001, got %v", err)
	}
	if lookup.calls != 0 {
		t.Error("glossary must not be consulted for an invalid tuple")
	}
}

func TestEnhanceLookupFailure(t *testing.T) {
	lookup := &mockLookup{fn: func(string) ([]glossary.Term, error) {
		return nil, errors.New(errors.ErrCodeDatabaseError, "connection lost")
	}}
	engine := newTestEngine(t, lookup)

	_, err := engine.Enhance(context.Background(), svo.Tuple{Subject: "a", Verb: "b", Object: "c"}, "")
	if !errors.IsCode(err, errors.ErrCodeGlossaryLookupFailed) {
		t.Fatalf("expected GLS_003, got %v", err)
	}
	if !errors.IsCode(err, errors.ErrCodeDatabaseError) {
		t.Error("expected the underlying cause preserved in the chain")
	}
}

// ---------------------------------------------------------------------------
// Batch processing
// ---------------------------------------------------------------------------

func TestEnhanceBatchOrderAndContextDefaults(t *testing.T) {
	lookup := &mockLookup{}
	engine := newTestEngine(t, lookup)

	tuples := []svo.Tuple{
		{Subject: "a1", Verb: "b1", Object: "c1"},
		{Subject: "a2", Verb: "b2", Object: "c2"},
		{Subject: "a3", Verb: "b3", Object: "c3"},
	}
	results, err := engine.EnhanceBatch(context.Background(), tuples, []string{"only first"})
	if err != nil {
		t.Fatalf("EnhanceBatch: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}
	for i, r := range results {
		if r.Subject != tuples[i].Subject {
			t.Errorf("result %d out of order: subject %q", i, r.Subject)
		}
	}
	if results[0].ContextText != "only first" {
		t.Errorf("first context = %q", results[0].ContextText)
	}
	if results[1].ContextText != "" || results[2].ContextText != "" {
		t.Error("missing contexts must default to empty")
	}
}

func TestEnhanceBatchAbortsOnFailure(t *testing.T) {
	lookup := &mockLookup{fn: func(text string) ([]glossary.Term, error) {
		if strings.Contains(text, "poison") {
			return nil, errors.New(errors.ErrCodeDatabaseError, "boom")
		}
		return nil, nil
	}}
	engine := newTestEngine(t, lookup)

	tuples := []svo.Tuple{
		{Subject: "fine", Verb: "is", Object: "ok"},
		{Subject: "poison", Verb: "is", Object: "bad"},
		{Subject: "never", Verb: "gets", Object: "here"},
	}
	_, err := engine.EnhanceBatch(context.Background(), tuples, nil)
	if !errors.IsCode(err, errors.ErrCodeBatchAborted) {
		t.Fatalf("expected ENH_004, got %v", err)
	}
	// Two lookups: the first succeeded, second failed, third never ran.
	if lookup.calls != 2 {
		t.Errorf("lookup calls = %d, want 2", lookup.calls)
	}
}

func TestEnhanceBatchValidation(t *testing.T) {
	engine := newTestEngine(t, &mockLookup{})

	if _, err := engine.EnhanceBatch(context.Background(), nil, nil); !errors.IsCode(err, errors.ErrCodeSVOEmptyBatch) {
		t.Errorf("empty batch: expected SVO_002, got %v", err)
	}
	tuples := []svo.Tuple{{Subject: "a", Verb: "b", Object: "c"}}
	if _, err := engine.EnhanceBatch(context.Background(), tuples, []string{"x", "y"}); !errors.IsCode(err, errors.ErrCodeSVOContextCount) {
		t.Errorf("context overflow: expected SVO_003, got %v", err)
	}
}

func TestEnhanceBatchCancellation(t *testing.T) {
	engine := newTestEngine(t, &mockLookup{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	tuples := []svo.Tuple{{Subject: "a", Verb: "b", Object: "c"}}
	if _, err := engine.EnhanceBatch(ctx, tuples, nil); !errors.IsCode(err, errors.ErrCodeTimeout) {
		t.Errorf("expected COMMON_007 on cancelled context, got %v", err)
	}
}

// ---------------------------------------------------------------------------
// Cache behavior
// ---------------------------------------------------------------------------

func TestCachedEngineTransparency(t *testing.T) {
	lookup := &mockLookup{fn: fixedTerms(labellumTerm)}
	bare := newTestEngine(t, lookup)
	cached := NewCachedEngine(bare, NewFIFOCache(10))

	tuple := svo.Tuple{Subject: "orchid", Verb: "displays", Object: "labellum"}
	contextText := "prominent white labellum, 3.2 cm"

	direct, err := bare.Enhance(context.Background(), tuple, contextText)
	if err != nil {
		t.Fatalf("Enhance: %v", err)
	}
	viaCache, err := cached.Enhance(context.Background(), tuple, contextText)
	if err != nil {
		t.Fatalf("cached Enhance: %v", err)
	}

	if direct.BotanicalRelevance != viaCache.BotanicalRelevance ||
		direct.OverallConfidence != viaCache.OverallConfidence ||
		len(direct.BotanicalInferences) != len(viaCache.BotanicalInferences) {
		t.Error("cache changed enhancement values")
	}

	calls := lookup.calls
	if _, err := cached.Enhance(context.Background(), tuple, contextText); err != nil {
		t.Fatalf("cached Enhance: %v", err)
	}
	if lookup.calls != calls {
		t.Error("cache hit still consulted the glossary")
	}
}

func TestCachedEngineFIFOEviction(t *testing.T) {
	lookup := &mockLookup{}
	bare := newTestEngine(t, lookup)
	cached := NewCachedEngine(bare, NewFIFOCache(2))

	tuples := []svo.Tuple{
		{Subject: "first", Verb: "v", Object: "o"},
		{Subject: "second", Verb: "v", Object: "o"},
		{Subject: "third", Verb: "v", Object: "o"},
	}
	for _, tuple := range tuples {
		if _, err := cached.Enhance(context.Background(), tuple, ""); err != nil {
			t.Fatalf("Enhance: %v", err)
		}
	}
	if lookup.calls != 3 {
		t.Fatalf("lookup calls = %d, want 3", lookup.calls)
	}

	// Inserting the third entry evicts the first (oldest), so reprocessing
	// the first tuple recomputes.
	if _, err := cached.Enhance(context.Background(), tuples[0], ""); err != nil {
		t.Fatalf("Enhance: %v", err)
	}
	if lookup.calls != 4 {
		t.Errorf("lookup calls = %d, want 4 after eviction", lookup.calls)
	}

	// The second and third entries are still cached.
	if _, err := cached.Enhance(context.Background(), tuples[2], ""); err != nil {
		t.Fatalf("Enhance: %v", err)
	}
	if lookup.calls != 4 {
		t.Errorf("lookup calls = %d, want cache hit for third tuple", lookup.calls)
	}
}
