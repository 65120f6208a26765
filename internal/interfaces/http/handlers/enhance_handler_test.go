package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/PhytoTrait-Intelligence/internal/application/enhancement"
	"github.com/turtacn/PhytoTrait-Intelligence/internal/domain/glossary"
	"github.com/turtacn/PhytoTrait-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/PhytoTrait-Intelligence/internal/intelligence/trait_inference"
	apperrors "github.com/turtacn/PhytoTrait-Intelligence/pkg/errors"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// mockService
type mockService struct {
	enhanceFunc func(ctx context.Context, input *enhancement.EnhanceInput) (*trait_inference.EnhancedSVO, error)
	batchFunc   func(ctx context.Context, input *enhancement.BatchInput) (*enhancement.BatchOutput, error)
	jobFunc     func(ctx context.Context, input *enhancement.BatchInput) (*enhancement.JobOutput, error)
	exportFunc  func(results []*trait_inference.EnhancedSVO, format trait_inference.ExportFormat) ([]byte, error)
	termsFunc   func(ctx context.Context) ([]glossary.Term, error)
}

func (m *mockService) Enhance(ctx context.Context, input *enhancement.EnhanceInput) (*trait_inference.EnhancedSVO, error) {
	if m.enhanceFunc != nil {
		return m.enhanceFunc(ctx, input)
	}
	return &trait_inference.EnhancedSVO{Subject: input.Tuple.Subject, Verb: input.Tuple.Verb, Object: input.Tuple.Object}, nil
}

func (m *mockService) EnhanceBatch(ctx context.Context, input *enhancement.BatchInput) (*enhancement.BatchOutput, error) {
	if m.batchFunc != nil {
		return m.batchFunc(ctx, input)
	}
	results := make([]*trait_inference.EnhancedSVO, len(input.Tuples))
	for i, tuple := range input.Tuples {
		results[i] = &trait_inference.EnhancedSVO{Subject: tuple.Subject}
	}
	return &enhancement.BatchOutput{JobID: "job-test", Results: results}, nil
}

func (m *mockService) EnhanceJob(ctx context.Context, input *enhancement.BatchInput) (*enhancement.JobOutput, error) {
	if m.jobFunc != nil {
		return m.jobFunc(ctx, input)
	}
	return &enhancement.JobOutput{JobID: "job-test"}, nil
}

func (m *mockService) Export(results []*trait_inference.EnhancedSVO, format trait_inference.ExportFormat) ([]byte, error) {
	if m.exportFunc != nil {
		return m.exportFunc(results, format)
	}
	return trait_inference.Export(results, format)
}

func (m *mockService) Summarize(results []*trait_inference.EnhancedSVO) trait_inference.Summary {
	return trait_inference.Summarize(results)
}

func (m *mockService) GlossaryTerms(ctx context.Context) ([]glossary.Term, error) {
	if m.termsFunc != nil {
		return m.termsFunc(ctx)
	}
	return []glossary.Term{{Name: "labellum", Category: "Floral Organ"}}, nil
}

func newTestRouter(svc enhancement.Service) *gin.Engine {
	h := NewEnhanceHandler(svc, logging.NewNopLogger())
	g := NewGlossaryHandler(svc, logging.NewNopLogger())

	r := gin.New()
	api := r.Group("/api/v1")
	api.POST("/enhance", h.Enhance)
	api.POST("/enhance/batch", h.EnhanceBatch)
	api.POST("/enhance/job", h.EnhanceJob)
	api.POST("/results/export", h.Export)
	api.POST("/results/summary", h.Summarize)
	api.GET("/glossary/terms", g.ListTerms)
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestEnhanceEndpoint(t *testing.T) {
	r := newTestRouter(&mockService{})

	w := doJSON(t, r, http.MethodPost, "/api/v1/enhance", gin.H{
		"svo":     gin.H{"subject": "orchid", "verb": "has", "object": "labellum"},
		"context": "the labellum is prominent",
	})

	require.Equal(t, http.StatusOK, w.Code)
	var result trait_inference.EnhancedSVO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, "orchid", result.Subject)
}

func TestEnhanceEndpointRejectsMissingFields(t *testing.T) {
	r := newTestRouter(&mockService{})

	w := doJSON(t, r, http.MethodPost, "/api/v1/enhance", gin.H{
		"svo": gin.H{"subject": "orchid"},
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "COMMON_002", resp.Code)
}

func TestEnhanceEndpointMapsDomainErrors(t *testing.T) {
	svc := &mockService{
		enhanceFunc: func(ctx context.Context, input *enhancement.EnhanceInput) (*trait_inference.EnhancedSVO, error) {
			return nil, apperrors.New(apperrors.ErrCodeGlossaryLookupFailed, "glossary lookup failed")
		},
	}
	r := newTestRouter(svc)

	w := doJSON(t, r, http.MethodPost, "/api/v1/enhance", gin.H{
		"svo": gin.H{"subject": "a", "verb": "b", "object": "c"},
	})

	assert.Equal(t, http.StatusBadGateway, w.Code)
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "GLS_003", resp.Code)
}

func TestEnhanceEndpointMasksInternalErrors(t *testing.T) {
	svc := &mockService{
		enhanceFunc: func(ctx context.Context, input *enhancement.EnhanceInput) (*trait_inference.EnhancedSVO, error) {
			return nil, apperrors.New(apperrors.ErrCodeInternal, "pool exhausted on node 7")
		},
	}
	r := newTestRouter(svc)

	w := doJSON(t, r, http.MethodPost, "/api/v1/enhance", gin.H{
		"svo": gin.H{"subject": "a", "verb": "b", "object": "c"},
	})

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "node 7")
}

func TestBatchEndpoint(t *testing.T) {
	r := newTestRouter(&mockService{})

	w := doJSON(t, r, http.MethodPost, "/api/v1/enhance/batch", gin.H{
		"tuples": []gin.H{
			{"subject": "a", "verb": "b", "object": "c"},
			{"subject": "d", "verb": "e", "object": "f"},
		},
	})

	require.Equal(t, http.StatusOK, w.Code)
	var out enhancement.BatchOutput
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	assert.Equal(t, "job-test", out.JobID)
	assert.Len(t, out.Results, 2)
}

func TestBatchEndpointEmptyBatch(t *testing.T) {
	svc := &mockService{
		batchFunc: func(ctx context.Context, input *enhancement.BatchInput) (*enhancement.BatchOutput, error) {
			return nil, apperrors.New(apperrors.ErrCodeSVOEmptyBatch, "batch contains no tuples")
		},
	}
	r := newTestRouter(svc)

	w := doJSON(t, r, http.MethodPost, "/api/v1/enhance/batch", gin.H{"tuples": []gin.H{}})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "SVO_002", resp.Code)
}

func TestJobEndpoint(t *testing.T) {
	svc := &mockService{
		jobFunc: func(ctx context.Context, input *enhancement.BatchInput) (*enhancement.JobOutput, error) {
			return &enhancement.JobOutput{JobID: "job-9", SuccessCount: 1, FailureCount: 1}, nil
		},
	}
	r := newTestRouter(svc)

	w := doJSON(t, r, http.MethodPost, "/api/v1/enhance/job", gin.H{
		"tuples": []gin.H{{"subject": "a", "verb": "b", "object": "c"}},
	})

	require.Equal(t, http.StatusOK, w.Code)
	var out enhancement.JobOutput
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	assert.Equal(t, 1, out.FailureCount)
}

func TestExportEndpoint(t *testing.T) {
	r := newTestRouter(&mockService{})

	w := doJSON(t, r, http.MethodPost, "/api/v1/results/export", gin.H{
		"results": []gin.H{{"subject": "orchid", "verb": "has", "object": "labellum"}},
		"format":  "json",
	})

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Body.String(), "orchid")
}

func TestExportEndpointRejectsUnknownFormat(t *testing.T) {
	r := newTestRouter(&mockService{})

	w := doJSON(t, r, http.MethodPost, "/api/v1/results/export", gin.H{
		"results": []gin.H{{"subject": "a", "verb": "b", "object": "c"}},
		"format":  "xml",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "ENH_002", resp.Code)
}

func TestSummaryEndpoint(t *testing.T) {
	r := newTestRouter(&mockService{})

	w := doJSON(t, r, http.MethodPost, "/api/v1/results/summary", gin.H{
		"results": []gin.H{
			{"subject": "a", "verb": "b", "object": "c", "botanical_relevance": 0.6},
		},
	})

	require.Equal(t, http.StatusOK, w.Code)
	var summary trait_inference.Summary
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &summary))
	assert.Equal(t, 1, summary.TotalProcessed)
}

func TestGlossaryTermsEndpoint(t *testing.T) {
	r := newTestRouter(&mockService{})

	w := doJSON(t, r, http.MethodGet, "/api/v1/glossary/terms", nil)

	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Terms []glossary.Term `json:"terms"`
		Count int             `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 1, body.Count)
	assert.Equal(t, "labellum", body.Terms[0].Name)
}
