// Package handlers contains the HTTP handlers for the enhancement API.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/PhytoTrait-Intelligence/internal/application/enhancement"
	"github.com/turtacn/PhytoTrait-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/PhytoTrait-Intelligence/internal/intelligence/trait_inference"
	"github.com/turtacn/PhytoTrait-Intelligence/pkg/types/svo"
)

// EnhanceHandler serves the enhancement endpoints.
type EnhanceHandler struct {
	service enhancement.Service
	logger  logging.Logger
}

// NewEnhanceHandler creates a new enhancement handler.
func NewEnhanceHandler(service enhancement.Service, logger logging.Logger) *EnhanceHandler {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &EnhanceHandler{service: service, logger: logger.Named("http.enhance")}
}

// TupleRequest is the wire form of an SVO tuple.
type TupleRequest struct {
	Subject string `json:"subject" binding:"required"`
	Verb    string `json:"verb" binding:"required"`
	Object  string `json:"object" binding:"required"`
}

func (t TupleRequest) toTuple() svo.Tuple {
	return svo.Tuple{Subject: t.Subject, Verb: t.Verb, Object: t.Object}
}

// EnhanceRequest is the body of POST /enhance.
type EnhanceRequest struct {
	SVO     TupleRequest `json:"svo" binding:"required"`
	Context string       `json:"context"`
}

// BatchRequest is the body of POST /enhance/batch and /enhance/job.
// Empty batches pass binding so the service can report the dedicated
// empty-batch error code.
type BatchRequest struct {
	Tuples   []TupleRequest `json:"tuples"`
	Contexts []string       `json:"contexts"`
}

func (b BatchRequest) toInput() *enhancement.BatchInput {
	tuples := make([]svo.Tuple, len(b.Tuples))
	for i, t := range b.Tuples {
		tuples[i] = t.toTuple()
	}
	return &enhancement.BatchInput{Tuples: tuples, Contexts: b.Contexts}
}

// ResultsRequest carries previously produced results back for export or
// summarization.
type ResultsRequest struct {
	Results []*trait_inference.EnhancedSVO `json:"results"`
	Format  string                         `json:"format"`
}

// Enhance handles POST /api/v1/enhance.
func (h *EnhanceHandler) Enhance(c *gin.Context) {
	var req EnhanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	result, err := h.service.Enhance(c.Request.Context(), &enhancement.EnhanceInput{
		Tuple:   req.SVO.toTuple(),
		Context: req.Context,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// EnhanceBatch handles POST /api/v1/enhance/batch. The whole batch
// succeeds or fails together.
func (h *EnhanceHandler) EnhanceBatch(c *gin.Context) {
	var req BatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	out, err := h.service.EnhanceBatch(c.Request.Context(), req.toInput())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, out)
}

// EnhanceJob handles POST /api/v1/enhance/job. Per-tuple failures are
// reported inline instead of aborting the batch.
func (h *EnhanceHandler) EnhanceJob(c *gin.Context) {
	var req BatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	out, err := h.service.EnhanceJob(c.Request.Context(), req.toInput())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, out)
}

// Export handles POST /api/v1/results/export.
func (h *EnhanceHandler) Export(c *gin.Context) {
	var req ResultsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	format := trait_inference.FormatJSON
	if req.Format != "" {
		format = trait_inference.ExportFormat(req.Format)
	}

	data, err := h.service.Export(req.Results, format)
	if err != nil {
		respondError(c, err)
		return
	}

	c.Data(http.StatusOK, "application/json", data)
}

// Summarize handles POST /api/v1/results/summary.
func (h *EnhanceHandler) Summarize(c *gin.Context) {
	var req ResultsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	c.JSON(http.StatusOK, h.service.Summarize(req.Results))
}
