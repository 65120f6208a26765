package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/PhytoTrait-Intelligence/internal/application/enhancement"
	"github.com/turtacn/PhytoTrait-Intelligence/internal/infrastructure/monitoring/logging"
)

// GlossaryHandler serves the vocabulary inspection endpoints.
type GlossaryHandler struct {
	service enhancement.Service
	logger  logging.Logger
}

// NewGlossaryHandler creates a new glossary handler.
func NewGlossaryHandler(service enhancement.Service, logger logging.Logger) *GlossaryHandler {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &GlossaryHandler{service: service, logger: logger.Named("http.glossary")}
}

// ListTerms handles GET /api/v1/glossary/terms.
func (h *GlossaryHandler) ListTerms(c *gin.Context) {
	terms, err := h.service.GlossaryTerms(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"terms": terms,
		"count": len(terms),
	})
}
