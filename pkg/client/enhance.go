package client

import (
	"context"
	"net/http"
	"time"

	"github.com/turtacn/PhytoTrait-Intelligence/pkg/types/svo"
)

// Measurement is one unit-tagged numeric value inferred for a trait.
type Measurement struct {
	Value float64 `json:"value"`
	Unit  string  `json:"unit"`
}

// CountValue is one counted plant structure.
type CountValue struct {
	Count int    `json:"count"`
	Item  string `json:"item"`
}

// InferredValues carries the concrete values extracted for a trait.
type InferredValues struct {
	Measurements  []Measurement `json:"measurements,omitempty"`
	Counts        []CountValue  `json:"counts,omitempty"`
	Colors        []string      `json:"colors,omitempty"`
	Descriptors   []string      `json:"descriptors,omitempty"`
	GrowthActions []string      `json:"growth_actions,omitempty"`
}

// Inference is one confidence-scored trait inference.
type Inference struct {
	TraitCategory        string         `json:"trait_category"`
	Confidence           float64        `json:"confidence"`
	MeasurementPotential bool           `json:"measurement_potential"`
	AIDerivable          bool           `json:"ai_derivable"`
	SupportingTerms      []string       `json:"supporting_terms"`
	InferredValues       InferredValues `json:"inferred_values"`
	ExtractionMethod     string         `json:"extraction_method"`
	ValidationStatus     string         `json:"validation_status"`
}

// EnhancedSVO is an enhanced tuple as returned by the API.
type EnhancedSVO struct {
	Subject              string                `json:"subject"`
	Verb                 string                `json:"verb"`
	Object               string                `json:"object"`
	ContextText          string                `json:"context_text"`
	BotanicalInferences  []Inference           `json:"botanical_inferences"`
	DetectedTerms        []string              `json:"detected_terms"`
	CategoriesDetected   []string              `json:"categories_detected"`
	OverallConfidence    float64               `json:"overall_confidence"`
	BotanicalRelevance   float64               `json:"botanical_relevance"`
	MeasurementData      map[string][][]string `json:"measurement_data,omitempty"`
	EnhancementTimestamp time.Time             `json:"enhancement_timestamp"`
	ProcessingMethod     string                `json:"processing_method"`
}

// EnhanceRequest is the body of a single enhancement call.
type EnhanceRequest struct {
	SVO     svo.Tuple `json:"svo"`
	Context string    `json:"context,omitempty"`
}

// BatchRequest is the body of batch and job calls.
type BatchRequest struct {
	Tuples   []svo.Tuple `json:"tuples"`
	Contexts []string    `json:"contexts,omitempty"`
}

// BatchResult is the response of a strict batch call.
type BatchResult struct {
	JobID      string        `json:"job_id"`
	Results    []EnhancedSVO `json:"results"`
	DurationMs float64       `json:"duration_ms"`
}

// JobItem is one tuple outcome within a job.
type JobItem struct {
	Index  int          `json:"index"`
	Result *EnhancedSVO `json:"result,omitempty"`
	Error  string       `json:"error,omitempty"`
}

// JobResult is the response of a failure-isolating job call.
type JobResult struct {
	JobID        string    `json:"job_id"`
	Items        []JobItem `json:"items"`
	SuccessCount int       `json:"success_count"`
	FailureCount int       `json:"failure_count"`
	DurationMs   float64   `json:"duration_ms"`
}

// TermFrequency pairs a detected term with its occurrence count.
type TermFrequency struct {
	Term  string `json:"term"`
	Count int    `json:"count"`
}

// Summary aggregates statistics over a set of results.
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

// GlossaryTerm is one vocabulary entry.
type GlossaryTerm struct {
	Name            string   `json:"name"`
	Category        string   `json:"category"`
	AIDerivable     bool     `json:"ai_derivable"`
	MeasurementUnit string   `json:"measurement_unit"`
	Synonyms        []string `json:"synonyms,omitempty"`
}

type glossaryResponse struct {
	Terms []GlossaryTerm `json:"terms"`
	Count int            `json:"count"`
}

type resultsRequest struct {
	Results []EnhancedSVO `json:"results"`
	Format  string        `json:"format,omitempty"`
}

// Enhance enhances a single SVO tuple.
func (c *Client) Enhance(ctx context.Context, tuple svo.Tuple, contextText string) (*EnhancedSVO, error) {
	var out EnhancedSVO
	err := c.do(ctx, http.MethodPost, "/api/v1/enhance", EnhanceRequest{SVO: tuple, Context: contextText}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// EnhanceBatch enhances tuples strictly: the whole batch succeeds or fails.
func (c *Client) EnhanceBatch(ctx context.Context, tuples []svo.Tuple, contexts []string) (*BatchResult, error) {
	var out BatchResult
	err := c.do(ctx, http.MethodPost, "/api/v1/enhance/batch", BatchRequest{Tuples: tuples, Contexts: contexts}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// EnhanceJob enhances tuples concurrently with per-tuple failure isolation.
func (c *Client) EnhanceJob(ctx context.Context, tuples []svo.Tuple, contexts []string) (*JobResult, error) {
	var out JobResult
	err := c.do(ctx, http.MethodPost, "/api/v1/enhance/job", BatchRequest{Tuples: tuples, Contexts: contexts}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Export renders results as a serialized document in the given format.
func (c *Client) Export(ctx context.Context, results []EnhancedSVO, format string) ([]byte, error) {
	var raw []byte
	err := c.do(ctx, http.MethodPost, "/api/v1/results/export", resultsRequest{Results: results, Format: format}, &raw)
	if err != nil {
		return nil, err
	}
	return raw, nil
}

// Summarize computes aggregate statistics over results.
func (c *Client) Summarize(ctx context.Context, results []EnhancedSVO) (*Summary, error) {
	var out Summary
	err := c.do(ctx, http.MethodPost, "/api/v1/results/summary", resultsRequest{Results: results}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// GlossaryTerms lists the loaded botanical vocabulary.
func (c *Client) GlossaryTerms(ctx context.Context) ([]GlossaryTerm, error) {
	var out glossaryResponse
	err := c.do(ctx, http.MethodGet, "/api/v1/glossary/terms", nil, &out)
	if err != nil {
		return nil, err
	}
	return out.Terms, nil
}

// Health probes the server liveness endpoint.
func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/healthz", nil, nil)
}
